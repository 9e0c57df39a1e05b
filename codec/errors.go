package codec

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for codec failures.
var (
	// ErrIO indicates the underlying reader or writer failed.
	ErrIO = errors.New("codec: i/o failure")
	// ErrGeneration indicates a value could not be encoded.
	ErrGeneration = errors.New("codec: generation failure")
	// ErrProcessing indicates input could not be decoded.
	ErrProcessing = errors.New("codec: processing failure")
	// ErrUnknownFormat indicates an unsupported format name.
	ErrUnknownFormat = errors.New("codec: unknown format")
)

// IOError reports a failure of the underlying stream.
type IOError struct {
	Op    string // "read" or "write"
	Cause error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("codec: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// GenerationError reports a value the backend could not encode.
type GenerationError struct {
	Format Format
	Type   reflect.Type
	Cause  error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("codec: encoding %v as %s: %v", e.Type, e.Format, e.Cause)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// ProcessingError reports input the backend could not decode.
type ProcessingError struct {
	Format Format
	Type   reflect.Type
	Cause  error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("codec: decoding %s into %v: %v", e.Format, e.Type, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ProcessingError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for ProcessingError.
func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }
