package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/companion/compiler/load"
	"github.com/syssam/companion/decl"
)

const (
	shapesPkg    = "example.com/shapes"
	companionPkg = shapesPkg + "/companion"
)

func pointSource() *load.Source {
	return &load.Source{
		Name:        "Point",
		Package:     shapesPkg,
		PackageName: "shapes",
		Doc:         "Point is a location on a plane.",
		Markers:     []load.Marker{{Name: load.Bean}},
		Members: []*load.Member{
			{Name: "X", Type: decl.Int, Tag: `json:"x"`},
			{Name: "Y", Type: decl.Int, Tag: `json:"y"`},
		},
	}
}

var beanRoles = []Role{RoleImmutable, RoleMutable, RoleAdapter}

func TestNewDescriptor(t *testing.T) {
	d, err := NewDescriptor(pointSource(), DefaultNaming(), beanRoles...)
	require.NoError(t, err)

	assert.Equal(t, shapesPkg, d.SourcePackage())
	assert.Equal(t, "Point", d.SourceName())
	assert.Equal(t, companionPkg, d.Package())
	assert.Equal(t, "companion", d.PackageName())
	assert.Equal(t, shapesPkg+".Point", d.String())
	assert.Equal(t, []string{"bean"}, d.Markers())
	assert.Equal(t, beanRoles, d.Roles())
	assert.Equal(t, []string{
		companionPkg + ".Point",
		companionPkg + ".PointMutable",
		companionPkg + ".PointAdapter",
	}, d.Names())

	name, err := d.Name(RoleMutable)
	require.NoError(t, err)
	assert.Equal(t, decl.Ref(companionPkg, "PointMutable"), name)

	role, ok := d.Lookup(companionPkg + ".PointAdapter")
	assert.True(t, ok)
	assert.Equal(t, RoleAdapter, role)
	_, ok = d.Lookup(shapesPkg + ".Point")
	assert.False(t, ok)
}

func TestDescriptorMissingRole(t *testing.T) {
	d, err := NewDescriptor(pointSource(), DefaultNaming(), RoleImmutable)
	require.NoError(t, err)
	_, err = d.Name(RoleMutable)
	require.Error(t, err)
	assert.True(t, IsUnresolvedReference(err))
}

func TestDescriptorReadOnly(t *testing.T) {
	src := pointSource()
	d, err := NewDescriptor(src, DefaultNaming(), beanRoles...)
	require.NoError(t, err)

	ms := d.Members()
	ms[0].Name = "Changed"
	roles := d.Roles()
	roles[0] = RoleController
	src.Members[1].Name = "Z"

	assert.Equal(t, "X", d.Members()[0].Name)
	assert.Equal(t, "Y", d.Members()[1].Name, "descriptor does not alias the source")
	assert.Equal(t, RoleImmutable, d.Roles()[0])
}

func TestDescriptorNaming(t *testing.T) {
	t.Run("custom suffix and target", func(t *testing.T) {
		n := DefaultNaming()
		n.Target = "gen/types"
		n.Suffixes[RoleMutable] = "Draft"
		d, err := NewDescriptor(pointSource(), n, RoleImmutable, RoleMutable)
		require.NoError(t, err)
		assert.Equal(t, shapesPkg+"/gen/types", d.Package())
		assert.Equal(t, "types", d.PackageName())
		name, _ := d.Name(RoleMutable)
		assert.Equal(t, "PointDraft", name.Name)
	})

	t.Run("two roles with one name", func(t *testing.T) {
		n := DefaultNaming()
		n.Suffixes[RoleMutable] = ""
		_, err := NewDescriptor(pointSource(), n, RoleImmutable, RoleMutable)
		require.Error(t, err)
		assert.True(t, IsNamingConflict(err))
		assert.Contains(t, err.Error(), "roles immutable and mutable")
	})

	t.Run("role without suffix", func(t *testing.T) {
		_, err := NewDescriptor(pointSource(), DefaultNaming(), Role("audit"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("empty target", func(t *testing.T) {
		n := DefaultNaming()
		n.Target = ""
		_, err := NewDescriptor(pointSource(), n, RoleImmutable)
		assert.True(t, IsConfigError(err))
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := NewDescriptor(nil, DefaultNaming(), RoleImmutable)
		assert.True(t, IsConfigError(err))
	})
}
