package gen

import (
	"fmt"
	"strings"
)

// Code categorizes compile errors. All of them are structural spec defects;
// none is transient, so no retry policy applies.
type Code string

const (
	MissingEndpointPrefix      Code = "MissingEndpointPrefix"
	UnknownEndpoint            Code = "UnknownEndpoint"
	MalformedURITemplate       Code = "MalformedUriTemplate"
	InconsistentGlobalEndpoint Code = "InconsistentGlobalEndpoint"
	UnsupportedProtocol        Code = "UnsupportedProtocol"
	DuplicateFunctionName      Code = "DuplicateFunctionName"
)

// CompileError is a structured compile failure carrying enough context to
// locate the offending spec entry.
type CompileError struct {
	Code           Code
	Message        string
	EndpointPrefix string
	Operation      string
	Cause          error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.EndpointPrefix != "" {
		fmt.Fprintf(&b, " (service %s)", e.EndpointPrefix)
	}
	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation %s)", e.Operation)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *CompileError) Unwrap() error { return e.Cause }
