package visibility

const (
	MinZoom   = 15.0
	MaxZoom   = 19.0
	MinHeight = 24.0
	MaxHeight = 0.0

	// Beyond PitchCutoff the query region's top edge descends; at
	// PitchCutoff+PitchSpan it reaches half the viewport width.
	PitchCutoff = 60.0
	PitchSpan   = 25.0
)

// Rect is a screen-space rectangle in pixels, origin top-left.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Threshold is the minimum estimated height a tree needs to be queried at
// zoom: 24m at zoom 15 down to 0m at zoom 19. Past 19 it keeps falling
// below zero, which admits every tree.
func Threshold(zoom float64) float64 {
	return MinHeight + (zoom-MinZoom)/(MaxZoom-MinZoom)*(MaxHeight-MinHeight)
}

// QueryTop is the y of the query region's top edge. It is measured from
// viewport width, not height.
func QueryTop(pitch, width float64) float64 {
	if pitch <= PitchCutoff {
		return 0
	}
	return (pitch - PitchCutoff) / PitchSpan * (width / 2)
}

// QueryRegion spans bottom-left (0, height) to top-right (width, top) of
// the camera's viewport.
func QueryRegion(cam Camera) Rect {
	w, h := cam.Viewport()
	return Rect{MinX: 0, MinY: QueryTop(cam.Pitch(), w), MaxX: w, MaxY: h}
}
