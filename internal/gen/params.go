package gen

import "github.com/ama5ter/aws2client/internal/spec"

// Location selects which binding kind the classifier extracts.
type Location int

const (
	LocationPath Location = iota
	LocationHeader
)

// wire returns the literal used by the source documents for this kind.
func (l Location) wire() string {
	if l == LocationPath {
		return "uri"
	}
	return "header"
}

// Classify partitions shape members by binding location, preserving the
// shape's declared member order among the retained results. Members without
// a location are body-bound and never appear in either kind.
func Classify(members spec.MemberList, loc Location, normalize func(string) string) []Parameter {
	var out []Parameter
	for _, m := range members {
		if m.Location != loc.wire() {
			continue
		}
		locationName := m.LocationName
		if locationName == "" {
			locationName = m.Name
		}
		out = append(out, Parameter{
			Identifier:   normalize(m.Name),
			Name:         m.Name,
			LocationName: locationName,
		})
	}
	return out
}
