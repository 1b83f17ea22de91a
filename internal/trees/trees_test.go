package trees

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestParseGirth(t *testing.T) {
	tests := []struct {
		raw       string
		want      float64
		defaulted bool
	}{
		{"", 0.5, false},
		{"0.5", 0.5, false},
		{"0.5m", 0.5, false},
		{"1.5", 1.5, false},
		{"0.8-1.1", 1.1, false},
		{"1.2.3", 1.2, false},
		{".7", 0.7, false},
		{"2.", 2, false},
		{"unknown", 0.5, true},
		{"12 cm", 0.5, true},
		{".", 0.5, true},
		{strings.Repeat("9", 400), 0.5, true},
		{"100000", 100000, false},
	}
	for _, tt := range tests {
		g, defaulted := ParseGirth(tt.raw)
		if !near(g, tt.want, 1e-12) || defaulted != tt.defaulted {
			t.Errorf("ParseGirth(%q) = %v, %v; want %v, %v", tt.raw, g, defaulted, tt.want, tt.defaulted)
		}
	}
}

func TestStepsAndRadius(t *testing.T) {
	if got := Steps(0.5); got != 6 {
		t.Fatalf("Steps(0.5) = %v, want 6", got)
	}
	if got := Steps(1.5); got != 8 {
		t.Fatalf("Steps(1.5) = %v, want 8", got)
	}
	if got := TrunkRadius(0.5); !near(got, 0.318, 1e-3) {
		t.Fatalf("TrunkRadius(0.5) = %v, want ~0.318", got)
	}
	if got := TrunkRadius(1.5); !near(got, 0.955, 1e-3) {
		t.Fatalf("TrunkRadius(1.5) = %v, want ~0.955", got)
	}
}

func TestTrunkPolygonIsClosedCircle(t *testing.T) {
	center := orb.Point{103.847, 1.2928}
	for _, g := range []float64{0.5, 0.7, 1.5} {
		ring := TrunkPolygon(center, g)
		n := int(math.Ceil(Steps(g)))
		if len(ring) != n+1 {
			t.Fatalf("girth %v: ring has %d points, want %d", g, len(ring), n+1)
		}
		if !ring.Closed() {
			t.Fatalf("girth %v: ring not closed", g)
		}
		r := TrunkRadius(g)
		for i, p := range ring[:n] {
			if d := geo.Distance(center, p); !near(d, r, r*1e-3) {
				t.Errorf("girth %v vertex %d: distance %v, want %v", g, i, d, r)
			}
		}
	}
	// huge girths are capped rather than allocating one vertex per step
	for _, g := range []float64{100000, 1e6} {
		ring := TrunkPolygon(center, g)
		if len(ring) != MaxTrunkSides+1 || !ring.Closed() {
			t.Fatalf("girth %v: ring has %d points, want %d", g, len(ring), MaxTrunkSides+1)
		}
	}
	if ring := TrunkPolygon(center, math.Inf(1)); ring != nil {
		t.Fatalf("infinite girth: ring has %d points, want none", len(ring))
	}

	// first vertex sits due north
	ring := TrunkPolygon(center, 0.5)
	if !near(ring[0][0], center[0], 1e-12) || ring[0][1] <= center[1] {
		t.Fatalf("first vertex %v not north of %v", ring[0], center)
	}
}

func TestDeriveOverlongGirthDegrades(t *testing.T) {
	d := NewDeriver(0)
	pos := orb.Point{103.847, 1.2928}
	r := d.Derive(Feature{ID: "t1", Position: pos, Girth: strings.Repeat("9", 400), HeightEst: 10})
	if !r.GirthDefaulted || r.Girth != DefaultGirth || len(r.Polygon) != 7 {
		t.Fatalf("record = %+v, want the default hexagon with GirthDefaulted", r)
	}
	r = d.Derive(Feature{ID: "t2", Position: pos, Girth: "100000", HeightEst: 10})
	if len(r.Polygon) != MaxTrunkSides+1 {
		t.Fatalf("girth 100000: ring has %d points, want %d", len(r.Polygon), MaxTrunkSides+1)
	}
}

func TestYaw(t *testing.T) {
	tests := []struct {
		id   string
		want float64
		ok   bool
	}{
		{"t0", 0, true},
		{"t9", 180, true},
		{"tree-3", 60, true},
		{"t1", 20, true},
	}
	for _, tt := range tests {
		got, ok := Yaw(tt.id)
		if ok != tt.ok || !near(got, tt.want, 1e-9) {
			t.Errorf("Yaw(%q) = %v, %v; want %v, %v", tt.id, got, ok, tt.want, tt.ok)
		}
	}
	for _, id := range []string{"", "abc"} {
		if got, ok := Yaw(id); ok || !math.IsNaN(got) {
			t.Errorf("Yaw(%q) = %v, %v; want NaN, false", id, got, ok)
		}
	}
}

func TestDeriveEndToEnd(t *testing.T) {
	d := NewDeriver(0)
	pos := orb.Point{103.847, 1.2928}
	r := d.Derive(Feature{ID: "t1", Position: pos, Girth: "0.5m", HeightEst: 30})

	if r.Elevation != 22.5 {
		t.Errorf("Elevation = %v, want 22.5", r.Elevation)
	}
	if r.Translation != [3]float64{0, 0, 18} {
		t.Errorf("Translation = %v, want [0 0 18]", r.Translation)
	}
	want := [3]float64{1.98, 1.98, 2.673}
	for i := range want {
		if !near(r.Scale[i], want[i], 1e-9) {
			t.Errorf("Scale[%d] = %v, want %v", i, r.Scale[i], want[i])
		}
	}
	if len(r.Polygon) != 7 {
		t.Errorf("polygon has %d points, want 6 vertices plus closing point", len(r.Polygon))
	}
	if r.Degraded() {
		t.Errorf("record unexpectedly degraded: %+v", r)
	}
	if !near(r.Orientation[1], 20, 1e-9) {
		t.Errorf("yaw = %v, want 20", r.Orientation[1])
	}
}

func TestDeriveIsCachedByID(t *testing.T) {
	d := NewDeriver(0)
	a := d.Derive(Feature{ID: "t7", Position: orb.Point{1, 1}, Girth: "0.5", HeightEst: 10})
	b := d.Derive(Feature{ID: "t7", Position: orb.Point{2, 2}, Girth: "1.5", HeightEst: 40})
	if a != b {
		t.Fatalf("second Derive returned a new record")
	}
	if b.Elevation != 7.5 || b.Position != (orb.Point{1, 1}) {
		t.Fatalf("cached record changed: %+v", b)
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
	if got, ok := d.Lookup("t7"); !ok || got != a {
		t.Fatalf("Lookup(t7) = %v, %v", got, ok)
	}
}

func TestDeriveMarksDegradedInput(t *testing.T) {
	d := NewDeriver(0)
	r := d.Derive(Feature{ID: "tx", Girth: "n/a", HeightEst: math.NaN()})
	if !r.GirthDefaulted || !r.HeightInvalid || !r.YawInvalid {
		t.Fatalf("flags = %v %v %v, want all set", r.GirthDefaulted, r.HeightInvalid, r.YawInvalid)
	}
	if !math.IsNaN(r.Elevation) {
		t.Fatalf("Elevation = %v, want NaN", r.Elevation)
	}
	if r.Girth != DefaultGirth {
		t.Fatalf("Girth = %v, want default", r.Girth)
	}
}

func TestDeriverEvictsOldest(t *testing.T) {
	d := NewDeriver(2)
	d.Derive(Feature{ID: "a1", HeightEst: 1})
	d.Derive(Feature{ID: "a2", HeightEst: 1})
	d.Derive(Feature{ID: "a3", HeightEst: 1})
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
	if _, ok := d.Lookup("a1"); ok {
		t.Fatalf("a1 should have been evicted")
	}
	if _, ok := d.Lookup("a3"); !ok {
		t.Fatalf("a3 missing")
	}
}
