package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"treecanopy/internal/source"
	"treecanopy/internal/trees"
)

var center = orb.Point{103.84708968044379, 1.2928590602954841}

func newTestHandler() *Handler {
	fs := []trees.Feature{
		{ID: "t1", Position: center, Girth: "1m", HeightEst: 20, HasGirth: true, HasHeight: true},
		{ID: "oak", Position: center, Girth: "0.8", HeightEst: 25, HasGirth: true, HasHeight: true},
		{ID: "t2", Position: center, Girth: "1m", HeightEst: 5, HasGirth: true, HasHeight: true},
		{ID: "bare", Position: center},
	}
	d := &source.Dataset{Name: "test", Features: fs, Bound: orb.Bound{Min: center, Max: center}}
	return NewHandler(d, trees.NewDeriver(0))
}

func get(t *testing.T, h *Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestReportHealth(t *testing.T) {
	rec := get(t, newTestHandler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report HealthReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "ok" || report.Trees != 4 || report.Dataset != "test" {
		t.Fatalf("report = %+v", report)
	}
}

func TestGetVisibleTrees(t *testing.T) {
	h := newTestHandler()
	rec := get(t, h, "/trees?lon=103.84708968044379&lat=1.2928590602954841&zoom=17.7&width=800&height=600")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var resp VisibleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Trees) != 2 {
		t.Fatalf("count = %d, want t1 and oak", resp.Count)
	}
	if resp.MinHeight == nil || *resp.MinHeight < 7.79 || *resp.MinHeight > 7.81 {
		t.Fatalf("minHeight = %v, want 7.8", resp.MinHeight)
	}
	byID := map[string]TreeResponse{}
	for _, tr := range resp.Trees {
		byID[tr.ID] = tr
	}
	t1, oak := byID["t1"], byID["oak"]
	if t1.Elevation == nil || *t1.Elevation != 15 {
		t.Fatalf("t1 elevation = %v, want 15", t1.Elevation)
	}
	if t1.Orientation[1] == nil || math.Abs(*t1.Orientation[1]-20) > 1e-9 {
		t.Fatalf("t1 yaw = %v, want 20", t1.Orientation[1])
	}
	if oak.Orientation[1] != nil {
		t.Fatalf("oak yaw = %v, want null", *oak.Orientation[1])
	}
	if len(oak.Degraded) != 1 || oak.Degraded[0] != "yaw" {
		t.Fatalf("oak degraded = %v", oak.Degraded)
	}
	if h.deriver.Len() != 2 {
		t.Fatalf("cached = %d, want 2", h.deriver.Len())
	}
}

func TestGetVisibleTreesBelowMinZoom(t *testing.T) {
	rec := get(t, newTestHandler(), "/trees?lon=103.847&lat=1.2928&zoom=14")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"minHeight":null`) || !strings.Contains(rec.Body.String(), `"trees":[]`) {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestGetVisibleTreesRejectsBadParams(t *testing.T) {
	tests := map[string]string{
		"missing lon":   "/trees?lat=1&zoom=16",
		"bad zoom":      "/trees?lon=1&lat=1&zoom=high",
		"zoom too far":  "/trees?lon=1&lat=1&zoom=30",
		"lat off world": "/trees?lon=1&lat=89&zoom=16",
		"steep pitch":   "/trees?lon=1&lat=1&zoom=16&pitch=90",
		"zero width":    "/trees?lon=1&lat=1&zoom=16&width=0",
	}
	for name, url := range tests {
		t.Run(name, func(t *testing.T) {
			rec := get(t, newTestHandler(), url)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var e ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&e); err != nil || e.Message == "" {
				t.Fatalf("error body: %+v, %v", e, err)
			}
		})
	}
}

func TestGetTreeByID(t *testing.T) {
	h := newTestHandler()
	rec := get(t, h, "/trees/t2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var tr TreeResponse
	if err := json.NewDecoder(rec.Body).Decode(&tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr.ID != "t2" || len(tr.Polygon) == 0 {
		t.Fatalf("tree = %+v", tr)
	}
	if _, ok := h.deriver.Lookup("t2"); !ok {
		t.Fatalf("t2 not cached after lookup")
	}

	rec = get(t, h, "/trees/bare")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"height"`) {
		t.Fatalf("bare tree: %d %s", rec.Code, rec.Body)
	}

	rec = get(t, h, "/trees/missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
