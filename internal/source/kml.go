package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"treecanopy/internal/trees"
)

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlPlacemark struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
	Data       []kmlData       `xml:"ExtendedData>Data"`
	SimpleData []kmlSimpleData `xml:"ExtendedData>SchemaData>SimpleData"`
}

// LoadKML reads trees from Placemark points. Attributes come from
// ExtendedData, either <Data> or <SchemaData><SimpleData>.
func LoadKML(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKML(f)
}

func ReadKML(r io.Reader) (*Dataset, error) {
	d := &Dataset{}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		if f, ok := placemarkFeature(pm, len(d.Features)); ok {
			d.add(f)
		}
	}
	if len(d.Features) == 0 {
		return nil, ErrNoFeatures
	}
	return d, nil
}

func placemarkFeature(pm kmlPlacemark, n int) (trees.Feature, bool) {
	if pm.Point == nil {
		return trees.Feature{}, false
	}
	// "lon,lat[,alt]"; altitude is ignored
	vals := strings.Split(strings.TrimSpace(pm.Point.Coordinates), ",")
	if len(vals) < 2 {
		return trees.Feature{}, false
	}
	lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
	if err1 != nil || err2 != nil {
		return trees.Feature{}, false
	}

	attrs := make(map[string]string, len(pm.Data)+len(pm.SimpleData))
	for _, a := range pm.Data {
		attrs[strings.ToLower(a.Name)] = strings.TrimSpace(a.Value)
	}
	for _, a := range pm.SimpleData {
		attrs[strings.ToLower(a.Name)] = strings.TrimSpace(a.Value)
	}

	f := trees.Feature{Position: orb.Point{lon, lat}}
	switch {
	case attrs["id"] != "":
		f.ID = attrs["id"]
	case pm.ID != "":
		f.ID = pm.ID
	case pm.Name != "":
		f.ID = strings.TrimSpace(pm.Name)
	default:
		f.ID = fmt.Sprintf("tree-%d", n)
	}
	for _, k := range []string{"girth", "girth_size"} {
		if v := attrs[k]; v != "" {
			f.Girth, f.HasGirth = v, true
			break
		}
	}
	if h, ok := propFloat(attrs["height_est"]); ok {
		f.HeightEst, f.HasHeight = h, true
	}
	return f, true
}
