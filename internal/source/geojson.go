package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"treecanopy/internal/trees"
)

// LoadGeoJSON reads tree points from a GeoJSON Feature or FeatureCollection.
// Each Point (or every point of a MultiPoint) becomes a tree; attributes
// come from the properties id, girth (or girth_size) and height_est.
func LoadGeoJSON(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON decodes tree features from raw GeoJSON bytes.
func ParseGeoJSON(data []byte) (*Dataset, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var features []*geojson.Feature
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		features = []*geojson.Feature{f}
	default:
		return nil, fmt.Errorf("%w: geojson type %q", ErrUnsupported, head.Type)
	}

	d := &Dataset{}
	for i, gf := range features {
		base := featureFromProps(gf, i)
		switch g := gf.Geometry.(type) {
		case orb.Point:
			base.Position = g
			d.add(base)
		case orb.MultiPoint:
			for j, p := range g {
				t := base
				if len(g) > 1 {
					t.ID = fmt.Sprintf("%s-%d", base.ID, j)
				}
				t.Position = p
				d.add(t)
			}
		}
	}
	if len(d.Features) == 0 {
		return nil, ErrNoFeatures
	}
	return d, nil
}

func featureFromProps(gf *geojson.Feature, i int) trees.Feature {
	var t trees.Feature
	props := gf.Properties
	if id, ok := propString(props["id"]); ok && id != "" {
		t.ID = id
	} else if id, ok := propString(gf.ID); ok && id != "" {
		t.ID = id
	} else {
		t.ID = fmt.Sprintf("tree-%d", i)
	}
	if g, ok := propString(props["girth"]); ok {
		t.Girth, t.HasGirth = g, true
	} else if g, ok := propString(props["girth_size"]); ok {
		t.Girth, t.HasGirth = g, true
	}
	if h, ok := propFloat(props["height_est"]); ok {
		t.HeightEst, t.HasHeight = h, true
	}
	return t
}
