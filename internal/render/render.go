// Package render executes text templates against compiled Service contexts
// and writes the generated sources.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/ama5ter/aws2client/internal/gen"
	"github.com/ama5ter/aws2client/internal/naming"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"exported": naming.Exported,
		"snake":    naming.Snake,
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
	}
}

// Render executes a template source against a compiled Service context and
// returns the generated text.
func Render(svc *gen.Service, name, source string) (string, error) {
	if svc == nil {
		return "", fmt.Errorf("render: nil service context")
	}
	tmpl, err := template.New(name).Funcs(funcMap()).Parse(source)
	if err != nil {
		return "", fmt.Errorf("render: parse template %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, svc); err != nil {
		return "", fmt.Errorf("render: execute template %s: %w", name, err)
	}
	return b.String(), nil
}

// RenderFile renders the template stored at path.
func RenderFile(svc *gen.Service, path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("render: read template: %w", err)
	}
	return Render(svc, filepath.Base(path), string(source))
}

// Write places content at path atomically via temp file + rename. An existing
// regular file is only replaced when force is set.
func Write(path string, content []byte, force bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("render: resolve output path: %w", err)
	}
	if st, serr := os.Stat(abs); serr == nil && st.Mode().IsRegular() && !force {
		return fmt.Errorf("render: output %q already exists (use force to overwrite)", abs)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("render: mkdir: %w", err)
	}
	tmp := abs + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("render: write temp %s: %w", filepath.Base(abs), err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("render: rename %s: %w", filepath.Base(abs), err)
	}
	return nil
}
