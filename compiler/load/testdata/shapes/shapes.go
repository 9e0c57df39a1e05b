package shapes

import "time"

// Point is a location on a plane.
//
//companion:bean
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
	// Label is shown next to the point.
	Label string
	hidden bool
}

//companion:bean
type Order struct {
	ID      string   `json:"id"`
	Items   []string `json:"items,omitempty"`
	Totals  map[string]float64
	Created time.Time
	Origin  *Point
	Extra   any
}

// Health reports the service status.
//
//companion:controller
type Health struct{}

//companion:bean
type Box[T any] struct {
	Value T
}

//companion:bean
type Hooked struct {
	Point
	OnChange func() error
}

// Plain carries no marker.
type Plain struct {
	A int
}
