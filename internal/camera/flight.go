package camera

import (
	"github.com/paulmach/orb"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Flight animates the camera towards a target view. Progress is tweened
// in float32 and the camera values are interpolated in float64 so that
// coordinates keep their precision.
type Flight struct {
	from, to Camera
	tween    *gween.Tween
	done     bool
}

// NewFlight starts a flight from c's current view. Viewport size is kept.
func NewFlight(c *Camera, center orb.Point, zoom, pitch float64, seconds float32) *Flight {
	to := *c
	to.Center = center
	to.SetZoom(zoom)
	to.SetPitch(pitch)
	return &Flight{
		from:  *c,
		to:    to,
		tween: gween.New(0, 1, seconds, ease.InOutQuad),
	}
}

// Update advances the flight by dt seconds and applies it to c. It
// reports true once the target view is reached.
func (f *Flight) Update(c *Camera, dt float32) bool {
	if f.done {
		return true
	}
	t, finished := f.tween.Update(dt)
	if finished {
		c.Center, c.ZoomLevel, c.PitchDeg = f.to.Center, f.to.ZoomLevel, f.to.PitchDeg
		f.done = true
		return true
	}
	k := float64(t)
	c.Center = orb.Point{
		lerp(f.from.Center[0], f.to.Center[0], k),
		lerp(f.from.Center[1], f.to.Center[1], k),
	}
	c.ZoomLevel = lerp(f.from.ZoomLevel, f.to.ZoomLevel, k)
	c.PitchDeg = lerp(f.from.PitchDeg, f.to.PitchDeg, k)
	return false
}

func (f *Flight) Done() bool { return f.done }

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
