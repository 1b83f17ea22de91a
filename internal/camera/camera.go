// Package camera is the map camera: a Web Mercator view with fractional
// zoom and a pitched perspective, measured in screen pixels.
package camera

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	TileSize = 512.0
	MinZoom  = 8.0
	MaxZoom  = 22.0
	MaxPitch = 85.0

	// camera distance from the look-at point, in viewport heights
	altitude = 1.5
	// ground points further than this many camera distances are dropped
	farLimit = 10.0
)

var halfWorld = math.Pi * orb.EarthRadius

type Camera struct {
	Center    orb.Point
	ZoomLevel float64
	PitchDeg  float64
	Width     float64
	Height    float64
}

func New(center orb.Point, zoom, pitch float64) *Camera {
	c := &Camera{Center: center}
	c.SetZoom(zoom)
	c.SetPitch(pitch)
	return c
}

func (c *Camera) Zoom() float64  { return c.ZoomLevel }
func (c *Camera) Pitch() float64 { return c.PitchDeg }

func (c *Camera) Viewport() (float64, float64) { return c.Width, c.Height }

func (c *Camera) SetViewport(w, h float64) {
	c.Width, c.Height = w, h
}

func (c *Camera) SetZoom(z float64) {
	c.ZoomLevel = math.Max(MinZoom, math.Min(MaxZoom, z))
}

func (c *Camera) SetPitch(p float64) {
	c.PitchDeg = math.Max(0, math.Min(MaxPitch, p))
}

// Pan moves the centre by a screen offset in pixels, ignoring pitch.
func (c *Camera) Pan(dx, dy float64) {
	wc := c.worldPixel(c.Center)
	c.Center = c.fromWorldPixel(orb.Point{wc[0] + dx, wc[1] + dy})
}

func (c *Camera) worldSize() float64 {
	return TileSize * math.Exp2(c.ZoomLevel)
}

func (c *Camera) worldPixel(p orb.Point) orb.Point {
	m := project.WGS84.ToMercator(p)
	s := c.worldSize()
	return orb.Point{
		(m[0]/halfWorld + 1) / 2 * s,
		(1 - m[1]/halfWorld) / 2 * s,
	}
}

func (c *Camera) fromWorldPixel(wp orb.Point) orb.Point {
	s := c.worldSize()
	m := orb.Point{
		(wp[0]/s*2 - 1) * halfWorld,
		(1 - wp[1]/s*2) * halfWorld,
	}
	return project.Mercator.ToWGS84(m)
}

// MetresToPixels converts a ground distance at the camera centre's
// latitude into pixels at the current zoom.
func (c *Camera) MetresToPixels(m float64) float64 {
	lat := c.Center[1] * math.Pi / 180
	return m * c.worldSize() / (2 * math.Pi * orb.EarthRadius * math.Cos(lat))
}

func (c *Camera) distance() float64 {
	h := c.Height
	if h <= 0 {
		h = 1
	}
	return altitude * h
}

// Project maps a position elevated by elev metres to screen pixels. ok is
// false for points behind the camera.
func (c *Camera) Project(p orb.Point, elev float64) (x, y float64, ok bool) {
	x, y, _, ok = c.ProjectENU(p, 0, 0, elev)
	return x, y, ok
}

// ProjectENU projects a point given as east/north/up metres from p. depth
// grows away from the camera and orders primitives for drawing.
func (c *Camera) ProjectENU(p orb.Point, east, north, up float64) (x, y, depth float64, ok bool) {
	wp := c.worldPixel(p)
	wc := c.worldPixel(c.Center)
	dx := wp[0] - wc[0] + c.MetresToPixels(east)
	f := wc[1] - wp[1] + c.MetresToPixels(north)
	return c.projectOffset(dx, f, c.MetresToPixels(up))
}

// projectOffset takes ground offsets from the centre in pixels, with f
// pointing north, and a height z in pixels.
func (c *Camera) projectOffset(dx, f, z float64) (x, y, depth float64, ok bool) {
	d := c.distance()
	theta := c.PitchDeg * math.Pi / 180
	sin, cos := math.Sincos(theta)
	depth = f*sin + d - z*cos
	if depth < d/farLimit {
		return 0, 0, 0, false
	}
	up := f*cos + z*sin
	k := d / depth
	return c.Width/2 + dx*k, c.Height/2 - up*k, depth, true
}

// Unproject maps a screen pixel to the ground. ok is false above the
// horizon.
func (c *Camera) Unproject(x, y float64) (orb.Point, bool) {
	dx, f, ok := c.groundOffset(x, y)
	if !ok {
		return orb.Point{}, false
	}
	return c.offsetToPoint(dx, f), true
}

func (c *Camera) groundOffset(x, y float64) (dx, f float64, ok bool) {
	d := c.distance()
	theta := c.PitchDeg * math.Pi / 180
	sin, cos := math.Sincos(theta)
	sx := x - c.Width/2
	sy := c.Height/2 - y
	den := d*cos - sy*sin
	if den <= 0 {
		return 0, 0, false
	}
	f = sy * d / den
	if f*sin+d > farLimit*d {
		return 0, 0, false
	}
	dx = sx * (f*sin + d) / d
	return dx, f, true
}

func (c *Camera) offsetToPoint(dx, f float64) orb.Point {
	wc := c.worldPixel(c.Center)
	return c.fromWorldPixel(orb.Point{wc[0] + dx, wc[1] - f})
}

// GroundBound is the lon/lat bound seen through the screen rectangle
// [x0,x1]x[y0,y1]. Rows above the horizon are clamped to the far limit.
func (c *Camera) GroundBound(x0, y0, x1, y1 float64) orb.Bound {
	b := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, y := range []float64{y0, y1} {
		for _, x := range []float64{x0, x1} {
			b = b.Extend(c.clampedGround(x, y))
		}
	}
	return b
}

func (c *Camera) clampedGround(x, y float64) orb.Point {
	if dx, f, ok := c.groundOffset(x, y); ok {
		return c.offsetToPoint(dx, f)
	}
	d := c.distance()
	sin := math.Sin(c.PitchDeg * math.Pi / 180)
	if sin <= 0 {
		return c.Center
	}
	f := (farLimit - 1) * d / sin
	dx := (x - c.Width/2) * farLimit
	return c.offsetToPoint(dx, f)
}
