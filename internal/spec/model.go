package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Raw document model for the three input specs: the API description, the
// endpoint catalog, and the documentation spec. Field names mirror the
// wire-level keys of the source documents; the compiler in internal/gen
// consumes these structures read-only.

// APISpec is the machine-readable API description for one service.
type APISpec struct {
	Metadata      Metadata             `yaml:"metadata"`
	Operations    map[string]Operation `yaml:"operations"`
	Shapes        map[string]Shape     `yaml:"shapes"`
	Documentation string               `yaml:"documentation"`
}

// Metadata carries service-wide attributes from the API spec header.
type Metadata struct {
	APIVersion          string `yaml:"apiVersion"`
	EndpointPrefix      string `yaml:"endpointPrefix"`
	JSONVersion         string `yaml:"jsonVersion"`
	Protocol            string `yaml:"protocol"`
	ServiceAbbreviation string `yaml:"serviceAbbreviation"`
	ServiceFullName     string `yaml:"serviceFullName"`
	SigningName         string `yaml:"signingName"`
	TargetPrefix        string `yaml:"targetPrefix"`
}

// Operation is one callable API action with its transport binding.
type Operation struct {
	Name          string       `yaml:"name"`
	HTTP          *HTTPBinding `yaml:"http"`
	Input         *ShapeRef    `yaml:"input"`
	Output        *ShapeRef    `yaml:"output"`
	Documentation string       `yaml:"documentation"`
}

// HTTPBinding holds the REST transport binding for an operation.
type HTTPBinding struct {
	Method       string `yaml:"method"`
	RequestURI   string `yaml:"requestUri"`
	ResponseCode int    `yaml:"responseCode"`
}

// ShapeRef names a shape in the spec's shape table.
type ShapeRef struct {
	Shape string `yaml:"shape"`
}

// Shape is a named structural type describing a set of members and how each
// is bound to the wire (body, path, header).
type Shape struct {
	Type    string     `yaml:"type"`
	Members MemberList `yaml:"members"`
}

// Member is one field of a shape together with its binding metadata.
type Member struct {
	Name         string `yaml:"-"`
	Shape        string `yaml:"shape"`
	Location     string `yaml:"location"`
	LocationName string `yaml:"locationName"`
}

// MemberList preserves the declared member order of a shape. The source
// documents model members as an object; decoding through yaml.Node keeps the
// document order that a plain map would lose.
type MemberList []Member

// UnmarshalYAML decodes a members mapping in document order.
func (m *MemberList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("spec: shape members must be a mapping, got %s", nodeKind(value.Kind))
	}
	out := make(MemberList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var member Member
		if err := value.Content[i+1].Decode(&member); err != nil {
			return fmt.Errorf("spec: member %q: %w", value.Content[i].Value, err)
		}
		member.Name = value.Content[i].Value
		out = append(out, member)
	}
	*m = out
	return nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// ShapeMembers resolves a shape reference to its ordered member list. A nil
// reference or an unknown shape name yields an empty list; operations without
// an input or output shape simply have no bound parameters.
func (s *APISpec) ShapeMembers(ref *ShapeRef) MemberList {
	if s == nil || ref == nil || ref.Shape == "" {
		return nil
	}
	shape, ok := s.Shapes[ref.Shape]
	if !ok {
		return nil
	}
	return shape.Members
}

// EndpointCatalog maps endpoint prefixes to endpoint metadata.
type EndpointCatalog struct {
	Services map[string]EndpointEntry `yaml:"services"`
}

// EndpointEntry describes how one service is addressed. IsRegionalized
// defaults to true when absent.
type EndpointEntry struct {
	IsRegionalized *bool               `yaml:"isRegionalized"`
	Endpoints      map[string]Endpoint `yaml:"endpoints"`
}

// Endpoint is one concrete endpoint of a service.
type Endpoint struct {
	CredentialScope CredentialScope `yaml:"credentialScope"`
}

// CredentialScope is the region identifier used for request signing when a
// service is globally addressed.
type CredentialScope struct {
	Region string `yaml:"region"`
}

// DocSpec is the companion documentation document. Values are passed through
// the doc formatter; this package only carries them.
type DocSpec struct {
	Service    string            `yaml:"service"`
	Operations map[string]string `yaml:"operations"`
}
