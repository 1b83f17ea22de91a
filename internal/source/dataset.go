package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"treecanopy/internal/trees"
)

var (
	ErrNoFeatures  = errors.New("no tree features found")
	ErrUnsupported = errors.New("unsupported dataset format")
)

// Dataset is a static set of tree features plus their bounds.
type Dataset struct {
	Name     string
	Features []trees.Feature
	Bound    orb.Bound
}

func (d *Dataset) add(f trees.Feature) {
	if len(d.Features) == 0 {
		d.Bound = orb.Bound{Min: f.Position, Max: f.Position}
	} else {
		d.Bound = d.Bound.Extend(f.Position)
	}
	d.Features = append(d.Features, f)
}

// Load reads a dataset, picking the decoder from the file extension.
func Load(path string) (*Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		d   *Dataset
		err error
	)
	switch ext {
	case ".geojson", ".json":
		d, err = LoadGeoJSON(path)
	case ".csv":
		d, err = LoadCSV(path)
	case ".kml":
		d, err = LoadKML(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	d.Name = filepath.Base(path)
	return d, nil
}

// Supported reports whether Load understands the file extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json", ".csv", ".kml":
		return true
	}
	return false
}

// propString renders a girth attribute, which may arrive as text or number.
func propString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func propFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
