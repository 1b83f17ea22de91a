// Package visibility decides which trees render for the current camera and
// hands their records to the render layers.
package visibility

import (
	"github.com/golang/glog"

	"treecanopy/internal/trees"
)

// TreeLayer is the query-only source layer trees are read from.
const TreeLayer = "trees"

// Camera is a read-only view of the map camera.
type Camera interface {
	Zoom() float64
	Pitch() float64
	Viewport() (width, height float64)
}

// Query filters a rendered-feature query.
type Query struct {
	Layers []string
	// MinHeight keeps features with HeightEst strictly greater.
	MinHeight float64
}

// FeatureSource answers screen-space feature queries.
type FeatureSource interface {
	QueryRenderedFeatures(region Rect, q Query) []trees.Feature
}

// Layer accepts the record list to draw.
type Layer interface {
	ID() string
	SetData(records []*trees.Record)
}

// Scheduler defers a job to the next frame boundary.
type Scheduler interface {
	Schedule(fn func())
}

type Stats struct {
	Queries  int
	Pushes   int
	Skipped  int
	Visible  int
	LastZoom float64
}

// Controller recomputes the visible record list on camera changes.
type Controller struct {
	cam     Camera
	src     FeatureSource
	deriver *trees.Deriver
	sched   Scheduler
	layers  []Layer

	lastIDs []string
	stats   Stats
}

func NewController(cam Camera, src FeatureSource, d *trees.Deriver, sched Scheduler, layers ...Layer) *Controller {
	return &Controller{
		cam:     cam,
		src:     src,
		deriver: d,
		sched:   sched,
		layers:  layers,
	}
}

// Refresh handles one camera-change event. Below MinZoom it does nothing
// and the layers keep their previous data. It reports whether a query ran.
func (c *Controller) Refresh() bool {
	zoom := c.cam.Zoom()
	if zoom < MinZoom {
		return false
	}
	region := QueryRegion(c.cam)
	feats := c.src.QueryRenderedFeatures(region, Query{
		Layers:    []string{TreeLayer},
		MinHeight: Threshold(zoom),
	})
	c.stats.Queries++
	c.stats.LastZoom = zoom
	glog.V(1).Infof("visibility: zoom=%.2f threshold=%.2f region=%+v trees=%d", zoom, Threshold(zoom), region, len(feats))

	c.sched.Schedule(func() {
		records := c.deriver.DeriveAll(feats)
		c.push(records)
	})
	return true
}

func (c *Controller) push(records []*trees.Record) {
	c.stats.Visible = len(records)
	if sameIDs(c.lastIDs, records) {
		c.stats.Skipped++
		return
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	c.lastIDs = ids
	for _, l := range c.layers {
		l.SetData(records)
	}
	c.stats.Pushes++
}

func (c *Controller) Stats() Stats { return c.stats }

// sameIDs compares against the previous push. Records are immutable per
// id, so equal id lists mean equal content.
func sameIDs(prev []string, records []*trees.Record) bool {
	if prev == nil || len(prev) != len(records) {
		return false
	}
	for i, r := range records {
		if prev[i] != r.ID {
			return false
		}
	}
	return true
}
