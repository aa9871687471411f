package render

// DefaultTemplate is the built-in Go client template used when no template
// path is supplied. It emits one method per action; path construction follows
// the compiled segments, so multi-segment values keep their separators.
const DefaultTemplate = `// Code generated by aws2client. DO NOT EDIT.

// Package {{.ModuleName}} is a minimal client for the {{.EndpointPrefix}} service.
package {{.ModuleName}}

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	endpointPrefix = "{{.EndpointPrefix}}"
	signingName    = "{{.SigningName}}"
{{- if .Global}}
	credentialScope = "{{.CredentialScope}}"
{{- end}}
)

// Client issues requests against a single service endpoint.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string
}

func escapePath(v string, greedy bool) string {
	if !greedy {
		return url.PathEscape(v)
	}
	parts := strings.Split(v, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}
{{range .Actions}}
// {{exported .FunctionName}} calls the {{.OperationName}} operation.
{{- if .Documentation}}
//
// {{.Documentation}}
{{- end}}
func (c *Client) {{exported .FunctionName}}(ctx context.Context{{range .PathParams}}, {{.Identifier}} string{{end}}{{range .HeaderParams}}, {{.Identifier}} string{{end}}) (*http.Response, error) {
	path := {{template "path" .Path}}
	req, err := http.NewRequestWithContext(ctx, {{if .Method}}{{printf "%q" .Method}}{{else}}"POST"{{end}}, strings.TrimSuffix(c.Endpoint, "/")+path, nil)
	if err != nil {
		return nil, err
	}
{{- range .HeaderParams}}
	req.Header.Set({{printf "%q" .LocationName}}, {{.Identifier}})
{{- end}}
	return c.HTTPClient.Do(req)
}
{{end}}
{{- define "path" -}}
{{- if and . .Segments -}}
{{- range $i, $s := .Segments}}{{if $i}} + {{end}}{{if $s.Param}}escapePath({{$s.Param.Identifier}}, {{$s.Greedy}}){{else}}{{printf "%q" $s.Literal}}{{end}}{{end -}}
{{- else -}}
"/"
{{- end -}}
{{- end -}}
`
