package gen

// Template-ready context records. All three kinds are immutable value records
// built in a single compilation pass and never mutated afterward.

// Service is the fully resolved context for one API, handed to the renderer.
type Service struct {
	Abbreviation    string
	Actions         []Action
	CredentialScope string
	Documentation   string
	EndpointPrefix  string
	Global          bool
	JSONVersion     string
	ModuleName      string
	Protocol        string
	SigningName     string
	TargetPrefix    string
}

// Action is one callable operation with its resolved transport binding.
// Within a Service, Actions are sorted ascending by FunctionName.
type Action struct {
	Arity         int
	Documentation string
	Method        string
	RequestURI    string
	ResponseCode  int
	FunctionName  string
	OperationName string
	PathParams    []Parameter
	HeaderParams  []Parameter
	OutputHeaders []Parameter
	// Path is the compiled request path expression. Nil for RPC protocols,
	// which carry no URI binding.
	Path *PathExpr
}

// Parameter is one path- or header-bound field. It is owned exclusively by
// the Action that produced it.
type Parameter struct {
	// Identifier is the normalized target-language name.
	Identifier string
	// Name is the original field name in the source shape.
	Name string
	// LocationName is the literal token used in the URI template or as the
	// header name on the wire.
	LocationName string
}
