package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrNamingConflict indicates two companions resolve to the same name.
	ErrNamingConflict = errors.New("companion: naming conflict")
	// ErrUnresolvedReference indicates a reference that names no known type.
	ErrUnresolvedReference = errors.New("companion: unresolved reference")
	// ErrUnsupportedShape indicates a source type a builder cannot handle.
	ErrUnsupportedShape = errors.New("companion: unsupported source shape")
	// ErrEmitFailed indicates the emitter rejected a declaration.
	ErrEmitFailed = errors.New("companion: emit failed")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("companion: missing configuration")
	// ErrGenerationFailed indicates the pipeline of a source type failed.
	ErrGenerationFailed = errors.New("companion: code generation failed")
)

// NamingConflictError reports a companion name claimed twice, either by two
// roles of one source type or by two source types.
type NamingConflictError struct {
	Name   string // qualified companion name
	Owner  string // current owner of the name
	Other  string // owner that tried to claim it
	Detail string
}

// Error implements the error interface.
func (e *NamingConflictError) Error() string {
	var b strings.Builder
	b.WriteString("companion: naming conflict on ")
	b.WriteString(e.Name)
	if e.Owner != "" && e.Other != "" {
		fmt.Fprintf(&b, " (claimed by %s and %s)", e.Owner, e.Other)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for NamingConflictError.
func (e *NamingConflictError) Is(target error) bool {
	return target == ErrNamingConflict
}

// NewNamingConflictError creates a new NamingConflictError.
func NewNamingConflictError(name, owner, other, detail string) *NamingConflictError {
	return &NamingConflictError{
		Name:   name,
		Owner:  owner,
		Other:  other,
		Detail: detail,
	}
}

// UnresolvedReferenceError reports a role missing from the companion-name
// table, or a type reference in a produced declaration that resolves to
// nothing.
type UnresolvedReferenceError struct {
	Source string // qualified source type name
	Ref    string // role or type that could not be resolved
	In     string // declaration containing the reference, if any
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	var b strings.Builder
	b.WriteString("companion: unresolved reference ")
	b.WriteString(e.Ref)
	if e.In != "" {
		b.WriteString(" in ")
		b.WriteString(e.In)
	}
	if e.Source != "" {
		b.WriteString(" for ")
		b.WriteString(e.Source)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for UnresolvedReferenceError.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// NewUnresolvedReferenceError creates a new UnresolvedReferenceError.
func NewUnresolvedReferenceError(source, ref, in string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{
		Source: source,
		Ref:    ref,
		In:     in,
	}
}

// UnsupportedShapeError reports a source type whose shape a builder cannot
// derive a companion from.
type UnsupportedShapeError struct {
	Source  string
	Member  string // offending member, if any
	Message string
}

// Error implements the error interface.
func (e *UnsupportedShapeError) Error() string {
	var b strings.Builder
	b.WriteString("companion: unsupported shape")
	if e.Source != "" {
		b.WriteString(" of ")
		b.WriteString(e.Source)
	}
	if e.Member != "" {
		b.WriteString(" member ")
		b.WriteString(e.Member)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for UnsupportedShapeError.
func (e *UnsupportedShapeError) Is(target error) bool {
	return target == ErrUnsupportedShape
}

// NewUnsupportedShapeError creates a new UnsupportedShapeError.
func NewUnsupportedShapeError(source, member, message string) *UnsupportedShapeError {
	return &UnsupportedShapeError{
		Source:  source,
		Member:  member,
		Message: message,
	}
}

// EmitError reports a declaration the emitter rejected.
type EmitError struct {
	Decl  string
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *EmitError) Error() string {
	var b strings.Builder
	b.WriteString("companion: emit ")
	b.WriteString(e.Decl)
	if e.Path != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EmitError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for EmitError.
func (e *EmitError) Is(target error) bool {
	return target == ErrEmitFailed
}

// NewEmitError creates a new EmitError.
func NewEmitError(declName, path string, cause error) *EmitError {
	return &EmitError{
		Decl:  declName,
		Path:  path,
		Cause: cause,
	}
}

// ConfigError represents a configuration error, such as a builder requiring
// a role no earlier builder produces.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("companion: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("companion: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// Phase names the pipeline step a failure happened in.
type Phase string

// Pipeline phases.
const (
	PhaseDescriptor Phase = "descriptor"
	PhaseClaim      Phase = "claim"
	PhaseBuild      Phase = "build"
	PhaseAmend      Phase = "amend"
	PhaseResolve    Phase = "resolve"
	PhaseEmit       Phase = "emit"
)

// PipelineError carries the source type and builder context of a failed
// pipeline. It unwraps to the error that aborted the pipeline.
type PipelineError struct {
	Source string
	Role   Role
	Phase  Phase
	Cause  error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString("companion: generating ")
	b.WriteString(e.Source)
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(string(e.Phase))
	}
	if e.Role != "" {
		b.WriteString(" (role: ")
		b.WriteString(string(e.Role))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for PipelineError.
func (e *PipelineError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(source string, role Role, phase Phase, cause error) *PipelineError {
	return &PipelineError{
		Source: source,
		Role:   role,
		Phase:  phase,
		Cause:  cause,
	}
}

// IsNamingConflict reports whether the error is a NamingConflictError.
func IsNamingConflict(err error) bool {
	var e *NamingConflictError
	return errors.As(err, &e)
}

// IsUnresolvedReference reports whether the error is an UnresolvedReferenceError.
func IsUnresolvedReference(err error) bool {
	var e *UnresolvedReferenceError
	return errors.As(err, &e)
}

// IsUnsupportedShape reports whether the error is an UnsupportedShapeError.
func IsUnsupportedShape(err error) bool {
	var e *UnsupportedShapeError
	return errors.As(err, &e)
}

// IsEmitError reports whether the error is an EmitError.
func IsEmitError(err error) bool {
	var e *EmitError
	return errors.As(err, &e)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsPipelineError reports whether the error is a PipelineError.
func IsPipelineError(err error) bool {
	var e *PipelineError
	return errors.As(err, &e)
}
