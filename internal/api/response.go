package api

import (
	"math"

	"github.com/paulmach/orb"

	"treecanopy/internal/trees"
)

type VisibleResponse struct {
	Zoom  float64 `json:"zoom"`
	Pitch float64 `json:"pitch"`
	// MinHeight is null when the zoom is below the query range.
	MinHeight *float64       `json:"minHeight"`
	Count     int            `json:"count"`
	Trees     []TreeResponse `json:"trees"`
}

// TreeResponse is a record with NaN values sent as null.
type TreeResponse struct {
	ID          string      `json:"id"`
	Position    orb.Point   `json:"position"`
	Polygon     orb.Ring    `json:"polygon"`
	Girth       float64     `json:"girth"`
	Elevation   *float64    `json:"elevation"`
	Translation [3]*float64 `json:"translation"`
	Scale       [3]*float64 `json:"scale"`
	Orientation [3]*float64 `json:"orientation"`
	Degraded    []string    `json:"degraded,omitempty"`
}

func newTreeResponse(r *trees.Record) TreeResponse {
	tr := TreeResponse{
		ID:          r.ID,
		Position:    r.Position,
		Polygon:     r.Polygon,
		Girth:       r.Girth,
		Elevation:   finite(r.Elevation),
		Translation: finite3(r.Translation),
		Scale:       finite3(r.Scale),
		Orientation: finite3(r.Orientation),
	}
	if r.GirthDefaulted {
		tr.Degraded = append(tr.Degraded, "girth")
	}
	if r.HeightInvalid {
		tr.Degraded = append(tr.Degraded, "height")
	}
	if r.YawInvalid {
		tr.Degraded = append(tr.Degraded, "yaw")
	}
	return tr
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finite3(v [3]float64) [3]*float64 {
	return [3]*float64{finite(v[0]), finite(v[1]), finite(v[2])}
}
