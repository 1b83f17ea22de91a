package trees

import "github.com/paulmach/orb"

// Feature is one tree as returned by a feature query.
type Feature struct {
	ID        string
	Position  orb.Point
	Girth     string
	HeightEst float64

	// HasGirth and HasHeight record whether the source carried the attribute.
	HasGirth  bool
	HasHeight bool
}

// Record is the render-ready geometry for one tree. Records are shared
// between layers and must not be mutated once derived.
type Record struct {
	ID          string     `json:"id"`
	Position    orb.Point  `json:"position"`
	Polygon     orb.Ring   `json:"polygon"`
	Elevation   float64    `json:"elevation"`
	Translation [3]float64 `json:"translation"`
	Scale       [3]float64 `json:"scale"`
	Orientation [3]float64 `json:"orientation"`

	// Girth is the parsed girth the trunk was built from.
	Girth float64 `json:"girth"`

	GirthDefaulted bool `json:"girthDefaulted,omitempty"`
	HeightInvalid  bool `json:"heightInvalid,omitempty"`
	YawInvalid     bool `json:"yawInvalid,omitempty"`
}

// Degraded reports whether any input fell back to a default or NaN.
func (r *Record) Degraded() bool {
	return r.GirthDefaulted || r.HeightInvalid || r.YawInvalid
}
