package camera

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

var singapore = orb.Point{103.84708968044379, 1.2928590602954841}

func newTestCamera(pitch float64) *Camera {
	c := New(singapore, 17, pitch)
	c.SetViewport(800, 600)
	return c
}

func TestCenterProjectsToViewportCentre(t *testing.T) {
	for _, pitch := range []float64{0, 45, 85} {
		c := newTestCamera(pitch)
		x, y, ok := c.Project(singapore, 0)
		if !ok || math.Abs(x-400) > 1e-6 || math.Abs(y-300) > 1e-6 {
			t.Errorf("pitch %v: Project(center) = %v, %v, %v", pitch, x, y, ok)
		}
	}
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	for _, pitch := range []float64{0, 30, 65} {
		c := newTestCamera(pitch)
		for _, px := range [][2]float64{{10, 590}, {400, 300}, {780, 200}, {200, 450}} {
			p, ok := c.Unproject(px[0], px[1])
			if !ok {
				t.Fatalf("pitch %v: Unproject(%v) failed", pitch, px)
			}
			x, y, ok := c.Project(p, 0)
			if !ok || math.Abs(x-px[0]) > 1e-4 || math.Abs(y-px[1]) > 1e-4 {
				t.Errorf("pitch %v: round trip %v -> %v,%v", pitch, px, x, y)
			}
		}
	}
}

func TestNorthIsUp(t *testing.T) {
	c := newTestCamera(0)
	_, y, _ := c.Project(orb.Point{singapore[0], singapore[1] + 0.0005}, 0)
	if y >= 300 {
		t.Fatalf("point north of centre projected to y=%v, want < 300", y)
	}
}

func TestElevationLiftsWhenPitched(t *testing.T) {
	c := newTestCamera(60)
	_, ground, _ := c.Project(singapore, 0)
	_, top, _ := c.Project(singapore, 20)
	if top >= ground {
		t.Fatalf("elevated y=%v not above ground y=%v", top, ground)
	}
}

func TestUnprojectAboveHorizon(t *testing.T) {
	c := newTestCamera(85)
	if _, ok := c.Unproject(400, 0); ok {
		t.Fatalf("expected top of a steep view to miss the ground")
	}
	b := c.GroundBound(0, 0, 800, 600)
	if !b.Contains(singapore) {
		t.Fatalf("ground bound %v does not contain centre", b)
	}
}

func TestZoomAndPitchClamp(t *testing.T) {
	c := New(singapore, 30, 120)
	if c.Zoom() != MaxZoom || c.Pitch() != MaxPitch {
		t.Fatalf("zoom/pitch = %v/%v", c.Zoom(), c.Pitch())
	}
	c.SetZoom(1)
	c.SetPitch(-5)
	if c.Zoom() != MinZoom || c.Pitch() != 0 {
		t.Fatalf("zoom/pitch = %v/%v", c.Zoom(), c.Pitch())
	}
}

func TestPanMovesCentre(t *testing.T) {
	c := newTestCamera(0)
	c.Pan(100, 0)
	if c.Center[0] <= singapore[0] {
		t.Fatalf("pan right did not move east: %v", c.Center)
	}
	c.Pan(-100, 0)
	if math.Abs(c.Center[0]-singapore[0]) > 1e-9 || math.Abs(c.Center[1]-singapore[1]) > 1e-9 {
		t.Fatalf("pan not reversible: %v", c.Center)
	}
}

func TestMetresToPixelsDoublesPerZoom(t *testing.T) {
	c := newTestCamera(0)
	a := c.MetresToPixels(10)
	c.SetZoom(18)
	b := c.MetresToPixels(10)
	if math.Abs(b/a-2) > 1e-9 {
		t.Fatalf("ratio = %v, want 2", b/a)
	}
}

func TestFlightReachesTarget(t *testing.T) {
	c := newTestCamera(0)
	target := orb.Point{103.85, 1.30}
	f := NewFlight(c, target, 19, 60, 1)
	if f.Update(c, 0.5) {
		t.Fatalf("flight finished early")
	}
	if c.Zoom() <= 17 || c.Zoom() >= 19 {
		t.Fatalf("mid-flight zoom = %v", c.Zoom())
	}
	if !f.Update(c, 0.6) || !f.Done() {
		t.Fatalf("flight not finished")
	}
	if c.Center != target || c.Zoom() != 19 || c.Pitch() != 60 {
		t.Fatalf("camera = %+v", c)
	}
	if c.Width != 800 {
		t.Fatalf("viewport lost: %v", c.Width)
	}
}

func TestProjectENU(t *testing.T) {
	c := New(singapore, 18, 60)
	c.SetViewport(800, 600)
	x0, y0, d0, ok := c.ProjectENU(singapore, 0, 0, 0)
	if !ok || math.Abs(x0-400) > 1e-6 || math.Abs(y0-300) > 1e-6 {
		t.Fatalf("ProjectENU(origin) = %v, %v, %v", x0, y0, ok)
	}
	xe, _, _, _ := c.ProjectENU(singapore, 10, 0, 0)
	if want := 400 + c.MetresToPixels(10); math.Abs(xe-want) > 1e-6 {
		t.Fatalf("10m east: x = %v, want %v", xe, want)
	}
	_, _, dn, _ := c.ProjectENU(singapore, 0, 10, 0)
	_, yu, du, _ := c.ProjectENU(singapore, 0, 0, 10)
	if dn <= d0 {
		t.Fatalf("north point depth %v not behind origin %v", dn, d0)
	}
	if du >= d0 || yu >= y0 {
		t.Fatalf("raised point: depth %v y %v, origin depth %v y %v", du, yu, d0, y0)
	}
}
