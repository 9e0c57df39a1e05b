package builder

import (
	"slices"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/compiler/load"
)

// Bean returns the value companion pipeline in its static order:
// immutable, mutable, then the codec adapter.
func Bean() []gen.Builder {
	return []gen.Builder{Immutable(), Mutable(), Adapter(CodecLibrary())}
}

// Controllers returns the controller pipeline.
func Controllers() []gen.Builder {
	return []gen.Builder{Controller()}
}

// ForMarker returns the pipeline triggered by a marker, or nil if the
// marker triggers none.
func ForMarker(marker string) []gen.Builder {
	switch marker {
	case load.Bean:
		return Bean()
	case load.Controller:
		return Controllers()
	}
	return nil
}

// Markers returns the markers that trigger a pipeline.
func Markers() []string {
	return slices.Clone(markers)
}

var markers = []string{load.Bean, load.Controller}
