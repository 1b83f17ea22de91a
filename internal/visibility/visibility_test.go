package visibility

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"

	"treecanopy/internal/frame"
	"treecanopy/internal/trees"
)

type fakeCamera struct {
	zoom, pitch float64
	w, h        float64
}

func (c *fakeCamera) Zoom() float64                { return c.zoom }
func (c *fakeCamera) Pitch() float64               { return c.pitch }
func (c *fakeCamera) Viewport() (float64, float64) { return c.w, c.h }

type fakeSource struct {
	feats   []trees.Feature
	calls   int
	regions []Rect
	queries []Query
}

func (s *fakeSource) QueryRenderedFeatures(region Rect, q Query) []trees.Feature {
	s.calls++
	s.regions = append(s.regions, region)
	s.queries = append(s.queries, q)
	var out []trees.Feature
	for _, f := range s.feats {
		if f.HeightEst > q.MinHeight {
			out = append(out, f)
		}
	}
	return out
}

type fakeLayer struct {
	id   string
	sets int
	data []*trees.Record
}

func (l *fakeLayer) ID() string { return l.id }
func (l *fakeLayer) SetData(r []*trees.Record) {
	l.sets++
	l.data = r
}

func TestThreshold(t *testing.T) {
	tests := map[float64]float64{15: 24, 16: 18, 17: 12, 19: 0, 21: -12}
	for zoom, want := range tests {
		if got := Threshold(zoom); got != want {
			t.Errorf("Threshold(%v) = %v, want %v", zoom, got, want)
		}
	}
}

func TestQueryTop(t *testing.T) {
	const w = 1200
	tests := []struct {
		pitch, want float64
	}{
		{0, 0},
		{45, 0},
		{60, 0},
		{72.5, w / 4},
		{85, w / 2},
	}
	for _, tt := range tests {
		if got := QueryTop(tt.pitch, w); got != tt.want {
			t.Errorf("QueryTop(%v) = %v, want %v", tt.pitch, got, tt.want)
		}
	}
}

func TestQueryRegion(t *testing.T) {
	r := QueryRegion(&fakeCamera{zoom: 17, pitch: 85, w: 800, h: 600})
	want := Rect{MinX: 0, MinY: 400, MaxX: 800, MaxY: 600}
	if r != want {
		t.Fatalf("QueryRegion = %+v, want %+v", r, want)
	}
}

func newFixture(zoom float64) (*Controller, *fakeCamera, *fakeSource, *frame.Queue, *fakeLayer, *fakeLayer) {
	cam := &fakeCamera{zoom: zoom, pitch: 30, w: 800, h: 600}
	src := &fakeSource{feats: []trees.Feature{
		{ID: "t1", Position: orb.Point{103.8, 1.29}, Girth: "0.5m", HeightEst: 30, HasGirth: true, HasHeight: true},
		{ID: "t2", Position: orb.Point{103.8, 1.30}, Girth: "1.5", HeightEst: 10, HasGirth: true, HasHeight: true},
	}}
	q := frame.NewQueue()
	trunk := &fakeLayer{id: "trees-trunk"}
	crown := &fakeLayer{id: "trees-crown"}
	c := NewController(cam, src, trees.NewDeriver(0), q, trunk, crown)
	return c, cam, src, q, trunk, crown
}

func TestRefreshGuardBelowMinZoom(t *testing.T) {
	c, _, src, q, trunk, _ := newFixture(14.999)
	if c.Refresh() {
		t.Fatalf("Refresh() = true below zoom 15")
	}
	if src.calls != 0 || q.Pending() || trunk.sets != 0 {
		t.Fatalf("guard leaked work: calls=%d pending=%v sets=%d", src.calls, q.Pending(), trunk.sets)
	}
}

func TestRefreshLeavesLayersWhenZoomingOut(t *testing.T) {
	c, cam, _, q, trunk, _ := newFixture(16)
	c.Refresh()
	q.Flush()
	cam.zoom = 12
	c.Refresh()
	q.Flush()
	if trunk.sets != 1 || len(trunk.data) != 1 {
		t.Fatalf("layer changed below zoom 15: sets=%d len=%d", trunk.sets, len(trunk.data))
	}
}

func TestRefreshDefersPushToFrame(t *testing.T) {
	c, _, src, q, trunk, crown := newFixture(15)
	if !c.Refresh() {
		t.Fatalf("Refresh() = false at zoom 15")
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}
	if got := src.queries[0]; got.MinHeight != 24 || len(got.Layers) != 1 || got.Layers[0] != TreeLayer {
		t.Fatalf("query = %+v", got)
	}
	if trunk.sets != 0 {
		t.Fatalf("layer pushed synchronously")
	}
	q.Flush()
	if trunk.sets != 1 || crown.sets != 1 {
		t.Fatalf("sets = %d/%d, want 1/1", trunk.sets, crown.sets)
	}
	if len(trunk.data) != 1 || trunk.data[0].ID != "t1" {
		t.Fatalf("trunk data = %v", trunk.data)
	}
}

func TestEndToEndZoom16(t *testing.T) {
	c, _, _, q, _, crown := newFixture(16)
	c.Refresh()
	q.Flush()
	if len(crown.data) != 1 {
		t.Fatalf("visible = %d, want 1 (threshold 18)", len(crown.data))
	}
	r := crown.data[0]
	if r.Elevation != 22.5 || r.Translation != [3]float64{0, 0, 18} {
		t.Fatalf("record = %+v", r)
	}
	if len(r.Polygon) != 7 {
		t.Fatalf("polygon points = %d, want 7", len(r.Polygon))
	}
}

func TestRefreshSkipsUnchangedPush(t *testing.T) {
	c, _, _, q, trunk, _ := newFixture(19)
	c.Refresh()
	q.Flush()
	c.Refresh()
	q.Flush()
	if trunk.sets != 1 {
		t.Fatalf("sets = %d, want 1 for identical record list", trunk.sets)
	}
	st := c.Stats()
	if st.Queries != 2 || st.Pushes != 1 || st.Skipped != 1 || st.Visible != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestRapidRefreshesCoalesce(t *testing.T) {
	c, cam, _, q, trunk, _ := newFixture(15)
	for i := 0; i < 5; i++ {
		cam.zoom = 15 + float64(i)
		c.Refresh()
	}
	q.Flush()
	if trunk.sets != 1 {
		t.Fatalf("sets = %d, want 1", trunk.sets)
	}
	if len(trunk.data) != 2 {
		t.Fatalf("latest push should win, got %d records", len(trunk.data))
	}
}

func TestImmediateSchedulerPushesInline(t *testing.T) {
	cam := &fakeCamera{zoom: 19, w: 100, h: 100}
	var feats []trees.Feature
	for i := 0; i < 4; i++ {
		feats = append(feats, trees.Feature{ID: fmt.Sprintf("t%d", i), HeightEst: 5})
	}
	l := &fakeLayer{id: "x"}
	c := NewController(cam, &fakeSource{feats: feats}, trees.NewDeriver(0), frame.Immediate{}, l)
	c.Refresh()
	if l.sets != 1 || len(l.data) != 4 {
		t.Fatalf("sets=%d len=%d", l.sets, len(l.data))
	}
}
