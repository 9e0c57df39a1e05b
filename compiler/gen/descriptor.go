package gen

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/syssam/companion/compiler/load"
	"github.com/syssam/companion/decl"
)

// Role identifies the kind of companion a builder produces.
type Role string

// Built-in roles.
const (
	RoleImmutable  Role = "immutable"
	RoleMutable    Role = "mutable"
	RoleAdapter    Role = "adapter"
	RoleController Role = "controller"
)

// DefaultTarget is the name of the companion sub-package.
const DefaultTarget = "companion"

// Naming is the companion naming policy.
type Naming struct {
	// Target is the companion package path relative to the source package.
	Target string
	// Suffixes maps each role to the suffix appended to the source name.
	Suffixes map[Role]string
}

// DefaultNaming returns the default naming policy.
func DefaultNaming() Naming {
	return Naming{
		Target: DefaultTarget,
		Suffixes: map[Role]string{
			RoleImmutable:  "",
			RoleMutable:    "Mutable",
			RoleAdapter:    "Adapter",
			RoleController: "Controller",
		},
	}
}

// Clone returns a copy of n that shares no state with it.
func (n Naming) Clone() Naming {
	n.Suffixes = maps.Clone(n.Suffixes)
	return n
}

// Member is a source member as seen by builders.
type Member struct {
	Name     string
	Type     decl.TypeRef
	Tag      string
	Embedded bool
	Doc      string
}

// Descriptor is the per-source-type record every builder reads. It is
// created once by NewDescriptor and never modified; accessors hand out
// copies.
type Descriptor struct {
	source     decl.TypeRef
	pkg        string
	pkgName    string
	roles      []Role
	names      map[Role]decl.TypeRef
	members    []Member
	typeParams []string
	markers    []load.Marker
	doc        string
	dir        string
}

// NewDescriptor builds the descriptor of src, assigning a companion name in
// the companion package to every role.
func NewDescriptor(src *load.Source, naming Naming, roles ...Role) (*Descriptor, error) {
	if src == nil || src.Name == "" || src.Package == "" {
		return nil, NewConfigError("Source", nil, "source type must have a name and a package")
	}
	target := strings.Trim(naming.Target, "/")
	if target == "" {
		return nil, NewConfigError("Target", naming.Target, "companion package cannot be empty")
	}
	d := &Descriptor{
		source:     src.Ref(),
		pkg:        src.Package + "/" + target,
		pkgName:    path.Base(target),
		roles:      slices.Clone(roles),
		names:      make(map[Role]decl.TypeRef, len(roles)),
		typeParams: slices.Clone(src.TypeParams),
		doc:        src.Doc,
		dir:        src.Dir,
	}
	owners := make(map[string]Role, len(roles))
	for _, r := range roles {
		suffix, ok := naming.Suffixes[r]
		if !ok {
			return nil, NewConfigError("Suffixes", r, "no suffix configured for role")
		}
		if _, dup := d.names[r]; dup {
			return nil, NewConfigError("Roles", r, "role listed twice")
		}
		name := decl.Ref(d.pkg, src.Name+suffix)
		if prev, ok := owners[name.QualifiedName()]; ok {
			return nil, NewNamingConflictError(name.QualifiedName(), src.QualifiedName(), src.QualifiedName(),
				fmt.Sprintf("roles %s and %s share a name", prev, r))
		}
		owners[name.QualifiedName()] = r
		d.names[r] = name
	}
	for _, m := range src.Markers {
		d.markers = append(d.markers, load.Marker{Name: m.Name, Args: slices.Clone(m.Args)})
	}
	for _, m := range src.Members {
		d.members = append(d.members, Member{
			Name:     m.Name,
			Type:     m.Type.Clone(),
			Tag:      m.Tag,
			Embedded: m.Embedded,
			Doc:      m.Comment,
		})
	}
	return d, nil
}

// Source returns a reference to the source type.
func (d *Descriptor) Source() decl.TypeRef { return d.source.Clone() }

// SourcePackage returns the import path of the source package.
func (d *Descriptor) SourcePackage() string { return d.source.Package }

// SourceName returns the simple name of the source type.
func (d *Descriptor) SourceName() string { return d.source.Name }

// Package returns the import path of the companion package.
func (d *Descriptor) Package() string { return d.pkg }

// PackageName returns the package clause name of the companion package.
func (d *Descriptor) PackageName() string { return d.pkgName }

// Dir returns the directory of the source package, if known.
func (d *Descriptor) Dir() string { return d.dir }

// Doc returns the doc comment of the source type.
func (d *Descriptor) Doc() string { return d.doc }

// Roles returns the roles of the descriptor in pipeline order.
func (d *Descriptor) Roles() []Role { return slices.Clone(d.roles) }

// Name returns the companion name assigned to role.
func (d *Descriptor) Name(role Role) (decl.TypeRef, error) {
	name, ok := d.names[role]
	if !ok {
		return decl.TypeRef{}, NewUnresolvedReferenceError(d.source.QualifiedName(), "role "+string(role), "")
	}
	return name, nil
}

// Names returns the qualified companion names in role order.
func (d *Descriptor) Names() []string {
	out := make([]string, 0, len(d.roles))
	for _, r := range d.roles {
		out = append(out, d.names[r].QualifiedName())
	}
	return out
}

// Lookup reports whether qname is the qualified name of a companion.
func (d *Descriptor) Lookup(qname string) (Role, bool) {
	for _, r := range d.roles {
		if d.names[r].QualifiedName() == qname {
			return r, true
		}
	}
	return "", false
}

// Members returns the source members in declaration order.
func (d *Descriptor) Members() []Member {
	out := make([]Member, len(d.members))
	for i, m := range d.members {
		m.Type = m.Type.Clone()
		out[i] = m
	}
	return out
}

// TypeParams returns the type parameter names of a generic source type.
func (d *Descriptor) TypeParams() []string { return slices.Clone(d.typeParams) }

// Markers returns the names of the markers on the source type.
func (d *Descriptor) Markers() []string {
	out := make([]string, len(d.markers))
	for i, m := range d.markers {
		out[i] = m.Name
	}
	return out
}

// MarkerArgs returns the arguments of the named marker.
func (d *Descriptor) MarkerArgs(name string) ([]string, bool) {
	for _, m := range d.markers {
		if m.Name == name {
			return slices.Clone(m.Args), true
		}
	}
	return nil, false
}

// String returns the qualified source name.
func (d *Descriptor) String() string { return d.source.QualifiedName() }
