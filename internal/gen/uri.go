package gen

import (
	"fmt"
	"net/url"
	"strings"
)

// PathSegment is one piece of a compiled request path: either literal text or
// a placeholder bound to a path parameter.
type PathSegment struct {
	// Literal holds verbatim template text when Param is nil.
	Literal string
	// Param is the bound path parameter for placeholder segments.
	Param *Parameter
	// Greedy marks a multi-segment placeholder ({name+}): the value's own
	// path separators stay unescaped.
	Greedy bool
}

// PathExpr is a compiled URI template. Evaluated with live parameter values
// it yields the final request path; templates can also range over Segments
// to emit equivalent path-construction code.
type PathExpr struct {
	Template string
	Segments []PathSegment
}

// CompilePath rewrites a URI template into a path expression. Placeholders
// take the form {name} or {name+}; matching against parameters is anchored on
// the whole brace-delimited token, so {id+} is never confused with {id}.
//
// A placeholder that names no classified path parameter, an unterminated or
// empty token, and a stray closing brace are all structural defects reported
// as MalformedUriTemplate.
func CompilePath(template string, params []Parameter) (*PathExpr, error) {
	byLocation := make(map[string]*Parameter, len(params))
	for i := range params {
		byLocation[params[i].LocationName] = &params[i]
	}

	expr := &PathExpr{Template: template}
	rest := template
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			if strings.IndexByte(rest, '}') != -1 {
				return nil, malformed(template, "unmatched '}'")
			}
			expr.Segments = append(expr.Segments, PathSegment{Literal: rest})
			break
		}
		if lit := rest[:open]; lit != "" {
			if strings.IndexByte(lit, '}') != -1 {
				return nil, malformed(template, "unmatched '}'")
			}
			expr.Segments = append(expr.Segments, PathSegment{Literal: lit})
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, '}')
		if end == -1 {
			return nil, malformed(template, "unterminated placeholder")
		}
		token := rest[:end]
		rest = rest[end+1:]

		name := strings.TrimSuffix(token, "+")
		greedy := len(name) != len(token)
		if name == "" || strings.ContainsAny(name, "{}+/") {
			return nil, malformed(template, fmt.Sprintf("invalid placeholder token %q", "{"+token+"}"))
		}
		param, ok := byLocation[name]
		if !ok {
			return nil, malformed(template, fmt.Sprintf("placeholder %q has no matching path parameter", "{"+token+"}"))
		}
		expr.Segments = append(expr.Segments, PathSegment{Param: param, Greedy: greedy})
	}
	return expr, nil
}

func malformed(template, msg string) error {
	return &CompileError{
		Code:    MalformedURITemplate,
		Message: fmt.Sprintf("uri template %q: %s", template, msg),
	}
}

// Evaluate renders the path with live values keyed by parameter identifier.
// Single-segment values are fully percent-encoded, path separators included;
// greedy values keep their separators and have each segment encoded on its
// own.
func (p *PathExpr) Evaluate(values map[string]string) string {
	var b strings.Builder
	for _, seg := range p.Segments {
		if seg.Param == nil {
			b.WriteString(seg.Literal)
			continue
		}
		b.WriteString(EscapePath(values[seg.Param.Identifier], seg.Greedy))
	}
	return b.String()
}

// EscapePath is the percent-encoding primitive behind placeholder
// substitution. With greedy set, '/' separators survive unescaped.
func EscapePath(value string, greedy bool) string {
	if !greedy {
		return url.PathEscape(value)
	}
	parts := strings.Split(value, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
