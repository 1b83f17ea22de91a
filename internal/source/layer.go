package source

import (
	"github.com/paulmach/orb"

	"treecanopy/internal/trees"
	"treecanopy/internal/visibility"
)

// Projector is the part of the map camera a screen query needs.
type Projector interface {
	Project(p orb.Point, elev float64) (x, y float64, ok bool)
	GroundBound(x0, y0, x1, y1 float64) orb.Bound
}

// QueryLayer is the invisible display layer over the tree source. It only
// exists to answer rendered-feature queries, and it only holds trees that
// carry both a girth and a height.
type QueryLayer struct {
	id      string
	cam     Projector
	idx     *Index
	minZoom float64
	zoom    func() float64
}

func NewQueryLayer(id string, cam Projector, d *Dataset) *QueryLayer {
	l := &QueryLayer{id: id, cam: cam}
	l.SetDataset(d)
	return l
}

// WithMinZoom hides the layer from queries below z.
func (l *QueryLayer) WithMinZoom(z float64, zoom func() float64) *QueryLayer {
	l.minZoom, l.zoom = z, zoom
	return l
}

// SetDataset swaps the backing data.
func (l *QueryLayer) SetDataset(d *Dataset) {
	var fs []trees.Feature
	if d != nil {
		for _, f := range d.Features {
			if Prefilter(f) {
				fs = append(fs, f)
			}
		}
	}
	l.idx = NewIndex(fs)
}

// View returns a copy of the layer that queries through cam. The copy
// shares the index, so per-request cameras do not re-index the dataset.
func (l *QueryLayer) View(cam Projector) *QueryLayer {
	c := *l
	c.cam = cam
	return &c
}

func (l *QueryLayer) ID() string { return l.id }

func (l *QueryLayer) Len() int { return l.idx.Len() }

// Prefilter keeps features that carry both girth and height.
func Prefilter(f trees.Feature) bool {
	return f.HasGirth && f.HasHeight
}

// QueryRenderedFeatures returns the layer's features whose on-screen
// position falls inside region and whose height passes q.
func (l *QueryLayer) QueryRenderedFeatures(region visibility.Rect, q visibility.Query) []trees.Feature {
	if !l.selected(q.Layers) {
		return nil
	}
	if l.zoom != nil && l.zoom() < l.minZoom {
		return nil
	}
	b := l.cam.GroundBound(region.MinX, region.MinY, region.MaxX, region.MaxY)
	var out []trees.Feature
	for _, f := range l.idx.Within(b) {
		if !(f.HeightEst > q.MinHeight) {
			continue
		}
		x, y, ok := l.cam.Project(f.Position, 0)
		if !ok || !region.Contains(x, y) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (l *QueryLayer) selected(layers []string) bool {
	if len(layers) == 0 {
		return true
	}
	for _, id := range layers {
		if id == l.id {
			return true
		}
	}
	return false
}
