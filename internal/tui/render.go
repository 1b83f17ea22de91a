package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"treecanopy/internal/mesh"
	"treecanopy/internal/trees"
)

// metres per degree of latitude
const metresPerDegree = math.Pi * orb.EarthRadius / 180

// primitive is one projected face in micro-pixel coordinates.
type primitive struct {
	pts   [][2]float64
	depth float64
	color lipgloss.Color
}

func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)
	zoom := m.cam.Zoom()

	var prims []primitive
	if m.trunk.Visible(zoom) {
		for _, r := range m.trunk.data {
			prims = m.appendTrunk(prims, r)
		}
	}
	if m.crown.Visible(zoom) && m.mesh != nil {
		bounds := m.mesh.Bounds()
		for _, r := range m.crown.data {
			prims = m.appendCrown(prims, r, bounds)
		}
	}
	// far to near; each cell keeps the colour of the last fill
	sort.SliceStable(prims, func(i, j int) bool { return prims[i].depth > prims[j].depth })
	for _, p := range prims {
		br.pen = p.color
		br.fillPolygon(p.pts)
	}

	// Hover highlight: an orange circle on the hovered trunk
	if m.hovering && m.hoverMark {
		br.markCell(m.hoverMicX/2, m.hoverMicY/4, '◯')
	}
	return strings.Join(br.render(), "\n")
}

// appendTrunk adds the side quads and top cap of an extruded trunk. A
// trunk without a valid elevation is drawn as its footprint only.
func (m Model) appendTrunk(prims []primitive, r *trees.Record) []primitive {
	ring := r.Polygon
	if len(ring) < 4 {
		return prims
	}
	n := len(ring) - 1
	top := r.Elevation
	if r.HeightInvalid || math.IsNaN(top) {
		top = 0
	}
	ground := make([][2]float64, n)
	roof := make([][2]float64, n)
	gd := make([]float64, n)
	rd := make([]float64, n)
	for i := 0; i < n; i++ {
		e, no := enuOffset(r.Position, ring[i])
		x, y, d, ok := m.cam.ProjectENU(r.Position, e, no, 0)
		if !ok {
			return prims
		}
		ground[i], gd[i] = [2]float64{x, y}, d
		x, y, d, ok = m.cam.ProjectENU(r.Position, e, no, top)
		if !ok {
			return prims
		}
		roof[i], rd[i] = [2]float64{x, y}, d
	}
	if top > 0 {
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			e0, n0 := enuOffset(r.Position, ring[i])
			e1, n1 := enuOffset(r.Position, ring[j])
			normal := horizontalNormal((e0+e1)/2, (n0+n1)/2)
			prims = append(prims, primitive{
				pts:   [][2]float64{ground[i], ground[j], roof[j], roof[i]},
				depth: (gd[i] + gd[j] + rd[i] + rd[j]) / 4,
				color: m.light.shade(m.trunk.color, normal),
			})
		}
	}
	var depth float64
	for _, d := range rd {
		depth += d / float64(n)
	}
	return append(prims, primitive{
		pts:   roof,
		depth: depth,
		color: m.light.shade(m.trunk.color, mesh.Vec3{0, 0, 1}),
	})
}

// appendCrown adds every face of the crown mesh instanced for r. A crown
// whose scale is undefined is skipped; an undefined yaw draws unrotated.
// Crowns narrower than half a micro pixel become a single dot.
func (m Model) appendCrown(prims []primitive, r *trees.Record, b mesh.Bounds) []primitive {
	if r.HeightInvalid || math.IsNaN(r.Scale[0]) {
		return prims
	}
	if m.cam.MetresToPixels(b.Radius*r.Scale[0]) < 0.5 {
		mid := r.Translation[2] + (b.MinZ+b.MaxZ)/2*r.Scale[2]
		x, y, d, ok := m.cam.ProjectENU(r.Position, 0, 0, mid)
		if !ok {
			return prims
		}
		return append(prims, primitive{
			pts:   [][2]float64{{x, y}, {x, y}, {x, y}},
			depth: d,
			color: m.light.shade(m.crown.color, mesh.Vec3{0, 0, 1}),
		})
	}
	orient := r.Orientation
	if r.YawInvalid || math.IsNaN(orient[1]) {
		orient[1] = 0
	}
	vs := m.mesh.Transform(r.Scale, orient, r.Translation)
	scr := make([][2]float64, len(vs))
	depth := make([]float64, len(vs))
	vis := make([]bool, len(vs))
	for i, v := range vs {
		x, y, d, ok := m.cam.ProjectENU(r.Position, v[0], v[1], v[2])
		scr[i], depth[i], vis[i] = [2]float64{x, y}, d, ok
	}
	for _, f := range m.mesh.Faces {
		if !vis[f[0]] || !vis[f[1]] || !vis[f[2]] {
			continue
		}
		prims = append(prims, primitive{
			pts:   [][2]float64{scr[f[0]], scr[f[1]], scr[f[2]]},
			depth: (depth[f[0]] + depth[f[1]] + depth[f[2]]) / 3,
			color: m.light.shade(m.crown.color, mesh.Normal(vs, f)),
		})
	}
	return prims
}

// enuOffset is p in east/north metres from origin, on a local tangent plane.
func enuOffset(origin, p orb.Point) (east, north float64) {
	lat := origin[1] * math.Pi / 180
	return (p[0] - origin[0]) * metresPerDegree * math.Cos(lat),
		(p[1] - origin[1]) * metresPerDegree
}

func horizontalNormal(e, n float64) mesh.Vec3 {
	l := math.Hypot(e, n)
	if l == 0 {
		return mesh.Vec3{0, 0, 1}
	}
	return mesh.Vec3{e / l, n / l, 0}
}
