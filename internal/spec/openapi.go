package spec

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// LoadOpenAPISpec loads an OpenAPI document from a path or URL and maps it
// onto the APISpec model, so OpenAPI inputs drive the same compiler as native
// API descriptions. Swagger v2.0 documents are converted to v3 first.
func LoadOpenAPISpec(ctx context.Context, input string, opts ...Option) (*APISpec, error) {
	raw, location, err := ReadDocument(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	version, verr := detectOpenAPIVersion(raw)
	if verr != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, verr), Location: location, Cause: verr}
	}

	var doc *openapi3.T
	switch version {
	case 3:
		doc, err = openapi3.NewLoader().LoadFromData(raw)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
		}
	case 2:
		doc, err = convertV2ToV3(raw)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("convert v2 document %s: %v", location, err), Location: location, Cause: err}
		}
	}
	if verr := doc.Validate(ctx); verr != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("validate %s: %v", location, verr), Location: location, Cause: verr}
	}
	api, ferr := FromOpenAPI(doc)
	if ferr != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("convert %s: %v", location, ferr), Location: location, Cause: ferr}
	}
	return api, nil
}

// detectOpenAPIVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectOpenAPIVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

// FromOpenAPI converts an OpenAPI v3 document into the APISpec model. Path
// parameters become uri-bound shape members, header parameters become
// header-bound members, and the first 2xx response supplies the success
// status code and response-header members. Everything else stays in the body.
func FromOpenAPI(doc *openapi3.T) (*APISpec, error) {
	if doc == nil {
		return nil, fmt.Errorf("openapi: nil document")
	}

	api := &APISpec{
		Operations: map[string]Operation{},
		Shapes:     map[string]Shape{},
	}
	title := ""
	if doc.Info != nil {
		title = strings.TrimSpace(doc.Info.Title)
		api.Metadata.APIVersion = strings.TrimSpace(doc.Info.Version)
		api.Documentation = strings.TrimSpace(doc.Info.Description)
	}
	api.Metadata.Protocol = "rest-json"
	api.Metadata.ServiceFullName = title
	api.Metadata.EndpointPrefix = endpointPrefixFromTitle(title)

	if doc.Paths == nil {
		return api, nil
	}

	// Sort paths for determinism; the compiler re-sorts actions anyway.
	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		ops := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
			{"HEAD", item.Head},
			{"OPTIONS", item.Options},
		}
		for _, pair := range ops {
			if pair.op == nil {
				continue
			}
			name := operationName(pair.op, pair.method, p)
			for {
				if _, taken := api.Operations[name]; !taken {
					break
				}
				name += "_"
			}

			binding := &HTTPBinding{Method: pair.method, RequestURI: p}
			code, headers := successResponse(pair.op)
			binding.ResponseCode = code

			op := Operation{
				Name:          name,
				HTTP:          binding,
				Documentation: operationDoc(pair.op),
			}

			input := inputMembers(item, pair.op)
			if len(input) > 0 {
				shapeName := name + "Request"
				api.Shapes[shapeName] = Shape{Type: "structure", Members: input}
				op.Input = &ShapeRef{Shape: shapeName}
			}
			if len(headers) > 0 {
				shapeName := name + "Response"
				api.Shapes[shapeName] = Shape{Type: "structure", Members: headers}
				op.Output = &ShapeRef{Shape: shapeName}
			}

			api.Operations[name] = op
		}
	}

	return api, nil
}

// inputMembers collects path and header parameters, path-item level first so
// operation-level declarations override them, preserving declared order.
func inputMembers(item *openapi3.PathItem, op *openapi3.Operation) MemberList {
	var out MemberList
	seen := map[string]int{}
	add := func(refs openapi3.Parameters) {
		for _, pref := range refs {
			if pref == nil || pref.Value == nil {
				continue
			}
			p := pref.Value
			var location string
			switch p.In {
			case openapi3.ParameterInPath:
				location = "uri"
			case openapi3.ParameterInHeader:
				location = "header"
			default:
				continue // query and cookie parameters stay out of the binding
			}
			m := Member{Name: p.Name, Location: location, LocationName: p.Name}
			if idx, ok := seen[p.In+":"+p.Name]; ok {
				out[idx] = m
				continue
			}
			seen[p.In+":"+p.Name] = len(out)
			out = append(out, m)
		}
	}
	add(item.Parameters)
	add(op.Parameters)
	return out
}

// successResponse picks the lowest 2xx response; returns its status code and
// any declared response headers as header-bound members.
func successResponse(op *openapi3.Operation) (int, MemberList) {
	if op.Responses == nil {
		return 0, nil
	}
	codes := make([]int, 0, len(op.Responses))
	byCode := map[int]*openapi3.ResponseRef{}
	for status, rref := range op.Responses {
		n, err := strconv.Atoi(status)
		if err != nil || n < 200 || n > 299 {
			continue
		}
		codes = append(codes, n)
		byCode[n] = rref
	}
	if len(codes) == 0 {
		return 0, nil
	}
	sort.Ints(codes)
	code := codes[0]
	rref := byCode[code]
	if rref == nil || rref.Value == nil || len(rref.Value.Headers) == 0 {
		return code, nil
	}
	names := make([]string, 0, len(rref.Value.Headers))
	for name := range rref.Value.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	members := make(MemberList, 0, len(names))
	for _, name := range names {
		members = append(members, Member{Name: name, Location: "header", LocationName: name})
	}
	return code, members
}

func operationName(op *openapi3.Operation, method, path string) string {
	if id := strings.TrimSpace(op.OperationID); id != "" {
		return id
	}
	// Derive a CamelCase name from the method and path literals.
	var b strings.Builder
	b.WriteString(titleWord(strings.ToLower(method)))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}+")
		if seg == "" {
			continue
		}
		b.WriteString(titleWord(seg))
	}
	return b.String()
}

func operationDoc(op *openapi3.Operation) string {
	if d := strings.TrimSpace(op.Description); d != "" {
		return d
	}
	return strings.TrimSpace(op.Summary)
}

func endpointPrefixFromTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func titleWord(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
