package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ama5ter/aws2client/internal/gen"
	"github.com/ama5ter/aws2client/internal/render"
	genspec "github.com/ama5ter/aws2client/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	API         string // API description path/URL, or a directory of them
	Endpoints   string // endpoint catalog path/URL
	Docs        string // documentation spec path/URL (optional)
	InputFormat string // api|openapi
	Template    string // template file (built-in Go template when empty)
	Out         string // output file, or directory for batch input
	Module      string // module/package name override
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{InputFormat: "api"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compile API descriptions and render client bindings",
		Long: "Compile an API description, endpoint catalog, and documentation spec into a " +
			"service context and render it through a text template. Options can be provided " +
			"via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  aws2client generate --api s3.json --endpoints endpoints.json --docs s3.docs.json --out s3.go
  aws2client --config aws2client.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("api", "", "Path or URL to the API description (or a directory of them)")
	flags.String("endpoints", "", "Path or URL to the endpoint catalog")
	flags.String("docs", "", "Path or URL to the documentation spec")
	flags.String("input-format", "", "Input format (api|openapi); defaults to api")
	flags.String("template", "", "Template file to render (built-in Go template when omitted)")
	flags.String("out", "", "Output file (directory when --api is a directory)")
	flags.String("module", "", "Override the generated module/package name")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"api", &cfg.API},
		{"endpoints", &cfg.Endpoints},
		{"docs", &cfg.Docs},
		{"input-format", &cfg.InputFormat},
		{"template", &cfg.Template},
		{"out", &cfg.Out},
		{"module", &cfg.Module},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(value)
	}
	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.API = strings.TrimSpace(c.API)
	c.Endpoints = strings.TrimSpace(c.Endpoints)
	c.Docs = strings.TrimSpace(c.Docs)
	c.InputFormat = strings.ToLower(strings.TrimSpace(c.InputFormat))
	c.Template = strings.TrimSpace(c.Template)
	c.Out = strings.TrimSpace(c.Out)
	c.Module = strings.TrimSpace(c.Module)
}

func (c *GenerateConfig) validate() error {
	if c.API == "" {
		return newUsageError("generate: --api is required (set via flag or config file)")
	}
	if c.Endpoints == "" {
		return newUsageError("generate: --endpoints is required (set via flag or config file)")
	}
	switch c.InputFormat {
	case "", "api":
		c.InputFormat = "api"
	case "openapi":
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --input-format %q (allowed: api, openapi)", c.InputFormat))
	}
	return nil
}

// plannedOutput is one rendered service waiting to be written.
type plannedOutput struct {
	Module  string
	Path    string
	Content []byte
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	catalog, err := genspec.LoadEndpointCatalog(ctx, cfg.Endpoints)
	if err != nil {
		return wrapSpecError(err)
	}

	var docs *genspec.DocSpec
	if cfg.Docs != "" {
		docs, err = genspec.LoadDocSpec(ctx, cfg.Docs)
		if err != nil {
			return wrapSpecError(err)
		}
	}

	templateName, templateSource, err := resolveTemplate(cfg.Template)
	if err != nil {
		return err
	}

	inputs, batch, err := collectAPIInputs(cfg.API)
	if err != nil {
		return err
	}

	planned := make([]plannedOutput, 0, len(inputs))
	for _, input := range inputs {
		api, err := loadAPISpec(ctx, input, cfg.InputFormat)
		if err != nil {
			return wrapSpecError(err)
		}
		kind, err := gen.KindForProtocol(api.Metadata.Protocol)
		if err != nil {
			return wrapCompileError(err, input)
		}
		module := cfg.Module
		if module == "" || batch {
			module = moduleNameFor(api.Metadata.EndpointPrefix)
		}
		svc, err := gen.Build(kind, module, catalog, api, docs)
		if err != nil {
			return wrapCompileError(err, input)
		}
		content, err := render.Render(svc, templateName, templateSource)
		if err != nil {
			return err
		}
		planned = append(planned, plannedOutput{
			Module:  module,
			Path:    outputPathFor(cfg.Out, module, batch),
			Content: []byte(content),
		})
	}

	// Batch output is ordered by module name regardless of input order.
	sort.Slice(planned, func(i, j int) bool { return planned[i].Module < planned[j].Module })

	if cfg.DryRun {
		fmt.Fprintf(os.Stdout, "Planned writes (%d files):\n", len(planned))
		for _, p := range planned {
			fmt.Fprintf(os.Stdout, "- %s (%d bytes)\n", p.Path, len(p.Content))
		}
		return nil
	}

	for _, p := range planned {
		if err := render.Write(p.Path, p.Content, cfg.Force); err != nil {
			return wrapOutputError(err, p.Path)
		}
		if cfg.Verbose {
			fmt.Fprintf(os.Stdout, "Wrote %s\n", p.Path)
		}
	}
	return nil
}

func loadAPISpec(ctx context.Context, input, format string) (*genspec.APISpec, error) {
	if format == "openapi" {
		return genspec.LoadOpenAPISpec(ctx, input)
	}
	return genspec.LoadAPISpec(ctx, input)
}

// collectAPIInputs expands a directory argument into its spec files, sorted
// for deterministic batch runs.
func collectAPIInputs(api string) ([]string, bool, error) {
	st, err := os.Stat(api)
	if err != nil || !st.IsDir() {
		return []string{api}, false, nil
	}
	entries, rerr := os.ReadDir(api)
	if rerr != nil {
		return nil, false, newUsageError(fmt.Sprintf("generate: read directory %q: %v", api, rerr))
	}
	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			inputs = append(inputs, filepath.Join(api, entry.Name()))
		}
	}
	if len(inputs) == 0 {
		return nil, false, newUsageError(fmt.Sprintf("generate: directory %q contains no spec files", api))
	}
	sort.Strings(inputs)
	return inputs, true, nil
}

func resolveTemplate(path string) (string, string, error) {
	if path == "" {
		return "default", render.DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", newUsageError(fmt.Sprintf("generate: read template %q: %v", path, err))
	}
	return filepath.Base(path), string(data), nil
}

func outputPathFor(out, module string, batch bool) string {
	if batch {
		dir := out
		if dir == "" {
			dir = "."
		}
		return filepath.Join(dir, module+".go")
	}
	if out == "" {
		return module + ".go"
	}
	return out
}

// moduleNameFor derives a package-safe module name from an endpoint prefix.
func moduleNameFor(prefix string) string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var b strings.Builder
	for _, r := range prefix {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "client"
	}
	return b.String()
}

func wrapSpecError(err error) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		return newUsageError(msg)
	}
	return err
}

func wrapCompileError(err error, input string) error {
	var ce *gen.CompileError
	if errors.As(err, &ce) {
		return newUsageError(fmt.Sprintf("compile %s: %v", input, ce))
	}
	return err
}

func wrapOutputError(err error, path string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", path, msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		var ferr error
		switch normalized {
		case "api":
			cfg.API, ferr = valueAsString(value)
		case "endpoints":
			cfg.Endpoints, ferr = valueAsString(value)
		case "docs":
			cfg.Docs, ferr = valueAsString(value)
		case "inputformat":
			cfg.InputFormat, ferr = valueAsString(value)
		case "template":
			cfg.Template, ferr = valueAsString(value)
		case "out":
			cfg.Out, ferr = valueAsString(value)
		case "module":
			cfg.Module, ferr = valueAsString(value)
		case "dryrun":
			cfg.DryRun, ferr = valueAsBool(value)
		case "force":
			cfg.Force, ferr = valueAsBool(value)
		case "verbose":
			cfg.Verbose, ferr = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if ferr != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, ferr))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
