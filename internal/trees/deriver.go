package trees

import (
	"math"
	"sync"
)

// Deriver turns features into render records and caches them by id.
// Tree data is treated as immutable: the first record derived for an id is
// returned for every later feature with that id.
type Deriver struct {
	mu      sync.Mutex
	records map[string]*Record
	order   []string
	max     int
}

// NewDeriver returns a Deriver. maxEntries <= 0 keeps every record for the
// life of the Deriver; otherwise the oldest ids are evicted first.
func NewDeriver(maxEntries int) *Deriver {
	return &Deriver{
		records: make(map[string]*Record),
		max:     maxEntries,
	}
}

// Derive returns the record for f, computing it on first sight of f.ID.
func (d *Deriver) Derive(f Feature) *Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.records[f.ID]; ok {
		return r
	}
	r := derive(f)
	d.records[f.ID] = r
	if d.max > 0 {
		d.order = append(d.order, f.ID)
		for len(d.order) > d.max {
			delete(d.records, d.order[0])
			d.order = d.order[1:]
		}
	}
	return r
}

// DeriveAll maps fs through Derive, keeping order.
func (d *Deriver) DeriveAll(fs []Feature) []*Record {
	out := make([]*Record, 0, len(fs))
	for _, f := range fs {
		out = append(out, d.Derive(f))
	}
	return out
}

// Lookup returns the cached record for id.
func (d *Deriver) Lookup(id string) (*Record, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.records[id]
	return r, ok
}

// Len is the number of cached records.
func (d *Deriver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}

func derive(f Feature) *Record {
	g, defaulted := ParseGirth(f.Girth)
	h := f.HeightEst
	base := h * 0.66
	yaw, yawOK := Yaw(f.ID)
	return &Record{
		ID:             f.ID,
		Position:       f.Position,
		Polygon:        TrunkPolygon(f.Position, g),
		Elevation:      h * 0.75,
		Translation:    [3]float64{0, 0, h * 0.6},
		Scale:          [3]float64{base * 0.1, base * 0.1, base * 0.135},
		Orientation:    [3]float64{0, yaw, 0},
		Girth:          g,
		GirthDefaulted: defaulted,
		HeightInvalid:  !(h > 0) || math.IsInf(h, 0),
		YawInvalid:     !yawOK,
	}
}

// Yaw is the crown rotation in degrees for a tree id, taken from its last
// character: '0' gives 0 and '9' gives 180. Ids that do not end in a digit
// give NaN and ok=false.
func Yaw(id string) (deg float64, ok bool) {
	if id == "" {
		return math.NaN(), false
	}
	c := id[len(id)-1]
	if c < '0' || c > '9' {
		return math.NaN(), false
	}
	return float64(c-'0') / 9 * 180, true
}
