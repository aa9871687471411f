package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := LoadAPISpec(context.Background(), "   ")
	if err == nil {
		t.Fatalf("expected error for empty input")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := LoadAPISpec(context.Background(), "ftp://example.com/api.json")
	if err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadAPISpec(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadAPISpec(context.Background(), path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/api.json"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := LoadAPISpec(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2))
	if err == nil {
		t.Fatalf("expected network error")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_FromFileAndURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "api.json")
	if err := os.WriteFile(path, []byte(sampleAPIJSON), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	api, err := LoadAPISpec(context.Background(), path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if api.Metadata.EndpointPrefix != "s3" {
		t.Errorf("file load: %+v", api.Metadata)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleAPIJSON))
	}))
	defer srv.Close()

	api, err = LoadAPISpec(context.Background(), srv.URL+"/api.json")
	if err != nil {
		t.Fatalf("load url: %v", err)
	}
	if api.Metadata.EndpointPrefix != "s3" {
		t.Errorf("url load: %+v", api.Metadata)
	}
}

func TestLoad_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"services": {}}`))
	}))
	defer srv.Close()

	cat, err := LoadEndpointCatalog(context.Background(), srv.URL,
		WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat == nil || attempts != 3 {
		t.Fatalf("expected success on third attempt, got %d attempts", attempts)
	}
}

func TestLoadDocSpec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "docs.json")
	content := `{"service": "<p>Storage.</p>", "operations": {"GetObject": "<p>Gets.</p>"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	docs, err := LoadDocSpec(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if docs.Service == "" || docs.Operations["GetObject"] == "" {
		t.Errorf("docs: %+v", docs)
	}
}
