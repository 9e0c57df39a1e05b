package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingConflictError(t *testing.T) {
	t.Run("Error message with owners", func(t *testing.T) {
		err := NewNamingConflictError("x/companion.PointMutable", "x.Point", "x.PointMutable", "name already claimed")
		assert.Contains(t, err.Error(), "companion: naming conflict on x/companion.PointMutable")
		assert.Contains(t, err.Error(), "claimed by x.Point and x.PointMutable")
		assert.Contains(t, err.Error(), "name already claimed")
	})

	t.Run("Is matches ErrNamingConflict", func(t *testing.T) {
		err := NewNamingConflictError("n", "", "", "")
		assert.True(t, errors.Is(err, ErrNamingConflict))
		assert.False(t, errors.Is(err, ErrUnresolvedReference))
	})

	t.Run("IsNamingConflict helper", func(t *testing.T) {
		assert.True(t, IsNamingConflict(fmt.Errorf("wrapped: %w", NewNamingConflictError("n", "", "", ""))))
		assert.False(t, IsNamingConflict(errors.New("other")))
	})
}

func TestUnresolvedReferenceError(t *testing.T) {
	err := NewUnresolvedReferenceError("x.Point", "role mutable", "Point")
	assert.Equal(t, "companion: unresolved reference role mutable in Point for x.Point", err.Error())
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
	assert.True(t, IsUnresolvedReference(err))
	assert.False(t, IsUnresolvedReference(errors.New("other")))
}

func TestUnsupportedShapeError(t *testing.T) {
	t.Run("Error message with member", func(t *testing.T) {
		err := NewUnsupportedShapeError("x.Hooked", "OnChange", "func members cannot be copied")
		assert.Contains(t, err.Error(), "of x.Hooked")
		assert.Contains(t, err.Error(), "member OnChange")
		assert.Contains(t, err.Error(), "func members cannot be copied")
	})

	t.Run("Error message without member", func(t *testing.T) {
		err := NewUnsupportedShapeError("x.Box", "", "type parameters")
		assert.NotContains(t, err.Error(), "member")
	})

	t.Run("Is and helper", func(t *testing.T) {
		err := NewUnsupportedShapeError("x.Box", "", "")
		assert.True(t, errors.Is(err, ErrUnsupportedShape))
		assert.True(t, IsUnsupportedShape(err))
	})
}

func TestEmitError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewEmitError("x/companion.Point", "point.go", cause)

	assert.Contains(t, err.Error(), "companion: emit x/companion.Point")
	assert.Contains(t, err.Error(), "(file: point.go)")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrEmitFailed))
	assert.True(t, IsEmitError(err))
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Workers", -1, "must be positive")

		assert.Contains(t, err.Error(), "companion: config error")
		assert.Contains(t, err.Error(), "Workers")
		assert.Contains(t, err.Error(), "-1")
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Target", nil, "cannot be empty")

		assert.Contains(t, err.Error(), "Target")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, err.Is(ErrMissingConfig))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestPipelineError(t *testing.T) {
	cause := NewUnsupportedShapeError("x.Box", "", "type parameters")
	err := NewPipelineError("x.Box", RoleImmutable, PhaseBuild, cause)

	assert.Contains(t, err.Error(), "companion: generating x.Box in phase build (role: immutable)")
	assert.Contains(t, err.Error(), "type parameters")
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, errors.Is(err, ErrUnsupportedShape), "unwraps to the cause")
	assert.True(t, IsPipelineError(err))
	assert.True(t, IsUnsupportedShape(err))

	var pe *PipelineError
	assert.True(t, errors.As(fmt.Errorf("run: %w", err), &pe))
	assert.Equal(t, PhaseBuild, pe.Phase)
}
