package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"treecanopy/internal/trees"
)

// LoadCSV reads trees from a CSV with a header row.
// Column detection (case-insensitive): id; lat|latitude|y; lon|lng|long|longitude|x;
// girth|girth_size; height_est|height. A wkt|geometry|geom column holding
// "POINT (lon lat)" may stand in for lat/lon.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}
	idxID, idxLat, idxLon, idxWKT, idxGirth, idxHeight := -1, -1, -1, -1, -1, -1
	for i, h := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id":
			if idxID == -1 {
				idxID = i
			}
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case "wkt", "geometry", "geom":
			if idxWKT == -1 {
				idxWKT = i
			}
		case "girth", "girth_size":
			if idxGirth == -1 {
				idxGirth = i
			}
		case "height_est", "height":
			if idxHeight == -1 {
				idxHeight = i
			}
		}
	}
	if (idxLat == -1 || idxLon == -1) && idxWKT == -1 {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}
	cell := func(row []string, i int) (string, bool) {
		if i < 0 || i >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[i])
		return v, v != ""
	}
	d := &Dataset{}
	for n, row := range recs[1:] {
		pos, ok := rowPosition(row, cell, idxLon, idxLat, idxWKT)
		if !ok {
			continue
		}
		t := trees.Feature{Position: pos}
		if id, ok := cell(row, idxID); ok {
			t.ID = id
		} else {
			t.ID = fmt.Sprintf("tree-%d", n)
		}
		if g, ok := cell(row, idxGirth); ok {
			t.Girth, t.HasGirth = g, true
		}
		if h, ok := cell(row, idxHeight); ok {
			if v, err := strconv.ParseFloat(h, 64); err == nil {
				t.HeightEst, t.HasHeight = v, true
			}
		}
		d.add(t)
	}
	if len(d.Features) == 0 {
		return nil, ErrNoFeatures
	}
	return d, nil
}

func rowPosition(row []string, cell func([]string, int) (string, bool), idxLon, idxLat, idxWKT int) (orb.Point, bool) {
	if w, ok := cell(row, idxWKT); ok {
		p, err := wkt.UnmarshalPoint(w)
		return p, err == nil
	}
	lonS, _ := cell(row, idxLon)
	latS, _ := cell(row, idxLat)
	lon, err1 := strconv.ParseFloat(lonS, 64)
	lat, err2 := strconv.ParseFloat(latS, 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}
