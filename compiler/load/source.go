// Package load discovers marked struct declarations in Go packages and
// returns them as raw source descriptions for the generator.
package load

import (
	"slices"
	"strings"

	"github.com/syssam/companion/decl"
)

// MarkerPrefix starts every directive recognized by the loader.
const MarkerPrefix = "companion:"

// Known markers.
const (
	// Bean marks a data type for the immutable, mutable and adapter companions.
	Bean = "bean"
	// Controller marks a type for the controller descriptor companion.
	Controller = "controller"
)

// Source is a marked struct declaration loaded from a user package.
type Source struct {
	Name        string    `json:"name"`
	Package     string    `json:"package"`  // import path
	PackageName string    `json:"pkg_name"` // package clause name
	Dir         string    `json:"dir"`      // directory of the package
	Module      *Module   `json:"module,omitempty"`
	Pos         string    `json:"-"`
	Doc         string    `json:"doc,omitempty"`
	Markers     []Marker  `json:"markers,omitempty"`
	TypeParams  []string  `json:"type_params,omitempty"`
	Members     []*Member `json:"members,omitempty"`
}

// Module is the Go module containing a source package.
type Module struct {
	Path string `json:"path"`
	Dir  string `json:"dir"`
}

// Marker is a parsed //companion:<name> directive.
type Marker struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// Member is an exported field of a source struct.
type Member struct {
	Name     string       `json:"name"`
	Type     decl.TypeRef `json:"type"`
	Tag      string       `json:"tag,omitempty"`
	Embedded bool         `json:"embedded,omitempty"`
	Comment  string       `json:"comment,omitempty"`
}

// QualifiedName returns the import path qualified name of the source type.
func (s *Source) QualifiedName() string {
	return s.Package + "." + s.Name
}

// Ref returns a reference to the source type.
func (s *Source) Ref() decl.TypeRef {
	return decl.Ref(s.Package, s.Name)
}

// HasMarker reports whether the source carries the named marker.
func (s *Source) HasMarker(name string) bool {
	return slices.ContainsFunc(s.Markers, func(m Marker) bool { return m.Name == name })
}

// MarkerNames returns the names of the markers in declaration order.
func (s *Source) MarkerNames() []string {
	names := make([]string, len(s.Markers))
	for i, m := range s.Markers {
		names[i] = m.Name
	}
	return names
}

// ParseMarker parses a comment line as a companion directive. It accepts
// "//companion:bean" and "//companion:bean arg1 arg2".
func ParseMarker(line string) (Marker, bool) {
	text, ok := strings.CutPrefix(line, "//"+MarkerPrefix)
	if !ok {
		return Marker{}, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Marker{}, false
	}
	m := Marker{Name: fields[0]}
	if len(fields) > 1 {
		m.Args = fields[1:]
	}
	return m, true
}
