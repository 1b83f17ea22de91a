package tui

import (
	"fmt"
	"strconv"
	"strings"

	"treecanopy/internal/trees"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseGoto reads "lon,lat[,zoom]". hasZoom is false when no zoom is given.
func parseGoto(s string) (lon, lat, zoom float64, hasZoom bool, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false, fmt.Errorf("want lon,lat[,zoom], got %q", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, false, fmt.Errorf("parse %q: %w", p, err)
		}
		vals[i] = v
	}
	lon, lat = vals[0], vals[1]
	if lon < -180 || lon > 180 || lat < -85.05 || lat > 85.05 {
		return 0, 0, 0, false, fmt.Errorf("position %v,%v out of range", lon, lat)
	}
	if len(vals) == 3 {
		return lon, lat, vals[2], true, nil
	}
	return lon, lat, 0, false, nil
}

// degradedFlags names the inputs of r that fell back to a default or NaN.
func degradedFlags(r *trees.Record) string {
	var fl []string
	if r.GirthDefaulted {
		fl = append(fl, "girth")
	}
	if r.HeightInvalid {
		fl = append(fl, "height")
	}
	if r.YawInvalid {
		fl = append(fl, "yaw")
	}
	return strings.Join(fl, ",")
}
