package tui

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"treecanopy/internal/config"
	"treecanopy/internal/mesh"
	"treecanopy/internal/trees"
)

const (
	trunkLayerID = "trees-trunk"
	crownLayerID = "trees-crown"

	// material coefficients shared by both layers
	ambientCoef = 0.35
	diffuseCoef = 0.6
)

// renderLayer holds the records one drawing pass uses. It is fed by the
// visibility controller and drawn only inside its zoom range.
type renderLayer struct {
	id      string
	minZoom float64
	maxZoom float64
	color   [3]uint8

	data    []*trees.Record
	updates int
}

func newRenderLayer(id string, minZoom, maxZoom float64, color [3]uint8) *renderLayer {
	return &renderLayer{id: id, minZoom: minZoom, maxZoom: maxZoom, color: color}
}

func (l *renderLayer) ID() string { return l.id }

func (l *renderLayer) SetData(records []*trees.Record) {
	l.data = records
	l.updates++
}

func (l *renderLayer) Visible(zoom float64) bool {
	return zoom >= l.minZoom && zoom <= l.maxZoom
}

// lighting is an ambient light plus one directional light.
type lighting struct {
	ambient   float64
	color     [3]float64
	intensity float64
	dir       mesh.Vec3
}

func newLighting(cfg config.LightingConfig) lighting {
	c := parseHexColor(cfg.Directional.Color)
	d := cfg.Directional.Direction
	l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if l == 0 {
		l = 1
	}
	return lighting{
		ambient:   cfg.Ambient,
		color:     [3]float64{float64(c[0]) / 255, float64(c[1]) / 255, float64(c[2]) / 255},
		intensity: cfg.Directional.Intensity,
		dir:       mesh.Vec3{d[0] / l, d[1] / l, d[2] / l},
	}
}

// shade lights a surface of colour base with unit normal n.
func (l lighting) shade(base [3]uint8, n mesh.Vec3) lipgloss.Color {
	diffuse := -(n[0]*l.dir[0] + n[1]*l.dir[1] + n[2]*l.dir[2])
	if diffuse < 0 {
		diffuse = 0
	}
	var out [3]uint8
	for i := range base {
		k := ambientCoef*l.ambient + diffuseCoef*l.intensity*diffuse*l.color[i]
		out[i] = uint8(math.Min(255, math.Round(float64(base[i])*k)))
	}
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", out[0], out[1], out[2]))
}

// parseHexColor reads "#RRGGBB". Config validation guarantees the format.
func parseHexColor(s string) [3]uint8 {
	var c [3]uint8
	if len(s) != 7 {
		return c
	}
	for i := range c {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return [3]uint8{}
		}
		c[i] = uint8(v)
	}
	return c
}
