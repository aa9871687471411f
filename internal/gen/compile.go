package gen

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ama5ter/aws2client/internal/naming"
	"github.com/ama5ter/aws2client/internal/spec"
)

// Kind discriminates the two transport bindings the compiler models: the
// generic RPC-style protocols and the path/header/status-code REST-style
// protocols.
type Kind int

const (
	KindRPC Kind = iota
	KindREST
)

// KindForProtocol maps a protocol identifier from the spec metadata to its
// binding kind.
func KindForProtocol(protocol string) (Kind, error) {
	switch protocol {
	case "json", "query":
		return KindRPC, nil
	case "rest-json", "rest-xml":
		return KindREST, nil
	}
	return 0, &CompileError{Code: UnsupportedProtocol, Message: fmt.Sprintf("protocol %q is not supported", protocol)}
}

type config struct {
	normalize func(string) string
	formatDoc func(string) string
}

// BuildOption configures the compiler's external collaborators.
type BuildOption func(*config)

// WithNormalizer overrides the identifier normalizer applied to operation and
// member names.
func WithNormalizer(fn func(string) string) BuildOption {
	return func(c *config) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// WithDocFormatter overrides the documentation formatter.
func WithDocFormatter(fn func(string) string) BuildOption {
	return func(c *config) {
		if fn != nil {
			c.formatDoc = fn
		}
	}
}

// Build resolves service-wide metadata and assembles the template-ready
// Service context. It is a pure function of its inputs: the spec structures
// are only read, and compiling the same documents twice yields structurally
// identical contexts.
func Build(kind Kind, moduleName string, catalog *spec.EndpointCatalog, api *spec.APISpec, docs *spec.DocSpec, opts ...BuildOption) (*Service, error) {
	cfg := &config{normalize: naming.Snake, formatDoc: FormatDoc}
	for _, opt := range opts {
		opt(cfg)
	}
	if docs == nil {
		docs = &spec.DocSpec{}
	}

	prefix := api.Metadata.EndpointPrefix
	if prefix == "" {
		return nil, &CompileError{Code: MissingEndpointPrefix, Message: "api spec has no metadata.endpointPrefix"}
	}

	var entry spec.EndpointEntry
	found := false
	if catalog != nil {
		entry, found = catalog.Services[prefix]
	}
	if !found {
		return nil, &CompileError{Code: UnknownEndpoint, EndpointPrefix: prefix, Message: "endpoint prefix not present in the endpoint catalog"}
	}

	// A service is global when the catalog explicitly marks it
	// non-regionalized; absence of the flag means regionalized.
	global := entry.IsRegionalized != nil && !*entry.IsRegionalized
	credentialScope := ""
	if global {
		credentialScope = entry.Endpoints["aws-global"].CredentialScope.Region
		if credentialScope == "" {
			return nil, &CompileError{Code: InconsistentGlobalEndpoint, EndpointPrefix: prefix, Message: "global endpoint lacks an aws-global credential scope region"}
		}
	}

	signingName := api.Metadata.SigningName
	if signingName == "" {
		signingName = prefix
	}

	actions, err := compileActions(kind, prefix, api, docs, cfg)
	if err != nil {
		return nil, err
	}

	return &Service{
		Abbreviation:    api.Metadata.ServiceAbbreviation,
		Actions:         actions,
		CredentialScope: credentialScope,
		Documentation:   cfg.formatDoc(docs.Service),
		EndpointPrefix:  prefix,
		Global:          global,
		JSONVersion:     api.Metadata.JSONVersion,
		ModuleName:      moduleName,
		Protocol:        api.Metadata.Protocol,
		SigningName:     signingName,
		TargetPrefix:    api.Metadata.TargetPrefix,
	}, nil
}

// actionCompiler is the per-binding-kind compiler variant. Both variants
// share the Parameter Classifier and shape resolution.
type actionCompiler interface {
	compile(name string, op spec.Operation) (Action, error)
}

func compileActions(kind Kind, prefix string, api *spec.APISpec, docs *spec.DocSpec, cfg *config) ([]Action, error) {
	var compiler actionCompiler
	switch kind {
	case KindRPC:
		compiler = rpcCompiler{cfg: cfg}
	case KindREST:
		compiler = restCompiler{api: api, cfg: cfg}
	default:
		return nil, &CompileError{Code: UnsupportedProtocol, EndpointPrefix: prefix, Message: fmt.Sprintf("unknown binding kind %d", kind)}
	}

	actions := make([]Action, 0, len(api.Operations))
	for name, op := range api.Operations {
		action, err := compiler.compile(name, op)
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				if ce.Operation == "" {
					ce.Operation = name
				}
				if ce.EndpointPrefix == "" {
					ce.EndpointPrefix = prefix
				}
			}
			return nil, err
		}
		action.Documentation = cfg.formatDoc(docFor(docs, name, op))
		actions = append(actions, action)
	}

	// Map enumeration order is incidental; the stable post-sort by function
	// name makes the emitted sequence deterministic.
	sort.Slice(actions, func(i, j int) bool { return actions[i].FunctionName < actions[j].FunctionName })
	for i := 1; i < len(actions); i++ {
		if actions[i].FunctionName == actions[i-1].FunctionName {
			return nil, &CompileError{
				Code:           DuplicateFunctionName,
				EndpointPrefix: prefix,
				Operation:      actions[i].OperationName,
				Message:        fmt.Sprintf("operations %s and %s normalize to the same function name %q", actions[i-1].OperationName, actions[i].OperationName, actions[i].FunctionName),
			}
		}
	}
	return actions, nil
}

func docFor(docs *spec.DocSpec, name string, op spec.Operation) string {
	if d, ok := docs.Operations[name]; ok && d != "" {
		return d
	}
	return op.Documentation
}

// rpcCompiler handles the generic RPC-style protocols: a fixed call arity of
// three (client handle, input parameters, call options) and no transport
// binding beyond the operation name.
type rpcCompiler struct {
	cfg *config
}

func (c rpcCompiler) compile(name string, _ spec.Operation) (Action, error) {
	return Action{
		Arity:         3,
		FunctionName:  c.cfg.normalize(name),
		OperationName: name,
	}, nil
}

// restCompiler handles the path/header/status-code REST-style protocols.
type restCompiler struct {
	api *spec.APISpec
	cfg *config
}

func (c restCompiler) compile(name string, op spec.Operation) (Action, error) {
	method, uri, code := "POST", "/", 0
	if op.HTTP != nil {
		if op.HTTP.Method != "" {
			method = op.HTTP.Method
		}
		if op.HTTP.RequestURI != "" {
			uri = op.HTTP.RequestURI
		}
		code = op.HTTP.ResponseCode
	}
	if code == 0 {
		code = 200
	}

	input := c.api.ShapeMembers(op.Input)
	pathParams := Classify(input, LocationPath, c.cfg.normalize)
	headerParams := Classify(input, LocationHeader, c.cfg.normalize)
	outputHeaders := Classify(c.api.ShapeMembers(op.Output), LocationHeader, c.cfg.normalize)

	path, err := CompilePath(uri, pathParams)
	if err != nil {
		return Action{}, err
	}

	return Action{
		Arity:         restArity(method, len(pathParams), len(headerParams)),
		Method:        method,
		RequestURI:    uri,
		ResponseCode:  code,
		FunctionName:  c.cfg.normalize(name),
		OperationName: name,
		PathParams:    pathParams,
		HeaderParams:  headerParams,
		OutputHeaders: outputHeaders,
		Path:          path,
	}, nil
}

// restArity derives the declared call arity. Retrieval verbs carry no body,
// so each request header becomes its own argument after the client handle and
// call options; every other verb takes path arguments plus handle, body, and
// options.
func restArity(method string, pathParams, headerParams int) int {
	switch method {
	case "GET", "HEAD":
		return pathParams + 2 + headerParams
	}
	return pathParams + 3
}
