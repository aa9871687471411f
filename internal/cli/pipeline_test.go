package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const pipelineAPIJSON = `{
  "metadata": {
    "apiVersion": "2006-03-01",
    "endpointPrefix": "s3",
    "protocol": "rest-xml",
    "serviceFullName": "Amazon Simple Storage Service"
  },
  "operations": {
    "GetObject": {
      "name": "GetObject",
      "http": {"method": "GET", "requestUri": "/{Bucket}/{Key+}"},
      "input": {"shape": "GetObjectRequest"}
    }
  },
  "shapes": {
    "GetObjectRequest": {
      "type": "structure",
      "members": {
        "Bucket": {"shape": "String", "location": "uri", "locationName": "Bucket"},
        "Key": {"shape": "String", "location": "uri", "locationName": "Key"}
      }
    },
    "String": {"type": "string"}
  }
}`

const pipelineEndpointsJSON = `{
  "services": {
    "s3": {
      "endpoints": {"us-east-1": {}}
    }
  }
}`

const pipelineDocsJSON = `{
  "service": "<p>Storage service.</p>",
  "operations": {
    "GetObject": "<p>Gets an object.</p>"
  }
}`

const pipelineOpenAPIYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Petstore\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /pets/{petId}:\n" +
	"    get:\n" +
	"      operationId: GetPet\n" +
	"      parameters:\n" +
	"        - name: petId\n" +
	"          in: path\n" +
	"          required: true\n" +
	"          schema:\n" +
	"            type: string\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n"

func writePipelineFixtures(t *testing.T, dir string) (api, endpoints, docs string) {
	t.Helper()
	api = filepath.Join(dir, "s3.json")
	endpoints = filepath.Join(dir, "endpoints.json")
	docs = filepath.Join(dir, "s3.docs.json")
	for path, content := range map[string]string{
		api:       pipelineAPIJSON,
		endpoints: pipelineEndpointsJSON,
		docs:      pipelineDocsJSON,
	} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return api, endpoints, docs
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	dir := t.TempDir()
	api, endpoints, docs := writePipelineFixtures(t, dir)
	outPath := filepath.Join(dir, "generated", "s3.go")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate",
		"--api", api,
		"--endpoints", endpoints,
		"--docs", docs,
		"--out", outPath,
		"--dry-run",
	})

	out := captureStdout(t, func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "Planned writes (1 files):") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	if !strings.Contains(out, outPath) {
		t.Fatalf("plan does not mention output path: %s", out)
	}
	// Dry-run must not create the output.
	if _, err := os.Stat(outPath); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesClient(t *testing.T) {
	dir := t.TempDir()
	api, endpoints, docs := writePipelineFixtures(t, dir)
	outPath := filepath.Join(dir, "generated", "s3.go")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate",
		"--api", api,
		"--endpoints", endpoints,
		"--docs", docs,
		"--out", outPath,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	src := string(data)
	for _, want := range []string{
		"package s3",
		"func (c *Client) GetObject(ctx context.Context, bucket string, key string)",
		"Gets an object",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
}

func TestGeneratePipeline_BatchDirectory(t *testing.T) {
	dir := t.TempDir()
	specDir := filepath.Join(dir, "specs")
	if err := os.MkdirAll(specDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(specDir, "s3.json"), []byte(pipelineAPIJSON), 0o600); err != nil {
		t.Fatalf("write api: %v", err)
	}
	endpoints := filepath.Join(dir, "endpoints.json")
	if err := os.WriteFile(endpoints, []byte(pipelineEndpointsJSON), 0o600); err != nil {
		t.Fatalf("write endpoints: %v", err)
	}
	outDir := filepath.Join(dir, "generated")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate",
		"--api", specDir,
		"--endpoints", endpoints,
		"--out", outDir,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "s3.go")); err != nil {
		t.Fatalf("expected batch output named after the module: %v", err)
	}
}

func TestGeneratePipeline_OpenAPIInput(t *testing.T) {
	dir := t.TempDir()
	api := filepath.Join(dir, "petstore.yaml")
	if err := os.WriteFile(api, []byte(pipelineOpenAPIYAML), 0o600); err != nil {
		t.Fatalf("write openapi: %v", err)
	}
	endpoints := filepath.Join(dir, "endpoints.json")
	if err := os.WriteFile(endpoints, []byte(`{"services": {"petstore": {"endpoints": {"us-east-1": {}}}}}`), 0o600); err != nil {
		t.Fatalf("write endpoints: %v", err)
	}
	outPath := filepath.Join(dir, "petstore.go")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate",
		"--api", api,
		"--endpoints", endpoints,
		"--input-format", "openapi",
		"--out", outPath,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "func (c *Client) GetPet(ctx context.Context, pet_id string)") {
		t.Fatalf("generated source missing GetPet method:\n%s", data)
	}
}

func TestGeneratePipeline_UnknownService(t *testing.T) {
	dir := t.TempDir()
	api, _, _ := writePipelineFixtures(t, dir)
	endpoints := filepath.Join(dir, "empty-endpoints.json")
	if err := os.WriteFile(endpoints, []byte(`{"services": {}}`), 0o600); err != nil {
		t.Fatalf("write endpoints: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"generate",
		"--api", api,
		"--endpoints", endpoints,
		"--out", filepath.Join(dir, "s3.go"),
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error for a service missing from the catalog")
	}
	if !strings.Contains(err.Error(), "UnknownEndpoint") {
		t.Fatalf("expected UnknownEndpoint in error, got: %v", err)
	}
}
