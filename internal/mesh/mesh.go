// Package mesh loads the static crown mesh shared by every tree.
package mesh

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed crown.yaml
var crownYAML []byte

type Vec3 [3]float64

// Mesh is an indexed triangle mesh. Z is up; units are metres before
// per-instance scaling.
type Mesh struct {
	Name     string   `yaml:"name"`
	Vertices []Vec3   `yaml:"vertices"`
	Faces    [][3]int `yaml:"faces"`
}

type Bounds struct {
	// Radius is the largest horizontal distance from the mesh axis.
	Radius     float64
	MinZ, MaxZ float64
}

var (
	defaultOnce sync.Once
	defaultMesh *Mesh
	defaultErr  error
)

// Default returns the embedded crown mesh, parsed once.
func Default() (*Mesh, error) {
	defaultOnce.Do(func() {
		defaultMesh, defaultErr = Parse(crownYAML)
	})
	return defaultMesh, defaultErr
}

func Load(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mesh: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Mesh, error) {
	var m Mesh
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mesh: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("mesh %q has no vertices", m.Name)
	}
	if len(m.Faces) == 0 {
		return fmt.Errorf("mesh %q has no faces", m.Name)
	}
	for i, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("mesh %q face %d: vertex %d out of range", m.Name, i, vi)
			}
		}
	}
	return nil
}

func (m *Mesh) Bounds() Bounds {
	b := Bounds{MinZ: math.Inf(1), MaxZ: math.Inf(-1)}
	for _, v := range m.Vertices {
		b.Radius = math.Max(b.Radius, math.Hypot(v[0], v[1]))
		b.MinZ = math.Min(b.MinZ, v[2])
		b.MaxZ = math.Max(b.MaxZ, v[2])
	}
	return b
}

// Transform scales, rotates and translates every vertex. orientation is
// [pitch, yaw, roll] in degrees; only yaw, about the vertical axis, is
// applied.
func (m *Mesh) Transform(scale, orientation, translation [3]float64) []Vec3 {
	sin, cos := math.Sincos(orientation[1] * math.Pi / 180)
	out := make([]Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		x, y, z := v[0]*scale[0], v[1]*scale[1], v[2]*scale[2]
		out[i] = Vec3{
			x*cos - y*sin + translation[0],
			x*sin + y*cos + translation[1],
			z + translation[2],
		}
	}
	return out
}

// Normal is the unit normal of face f over the transformed vertices vs.
func Normal(vs []Vec3, f [3]int) Vec3 {
	a, b, c := vs[f[0]], vs[f[1]], vs[f[2]]
	u := Vec3{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	w := Vec3{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	n := Vec3{
		u[1]*w[2] - u[2]*w[1],
		u[2]*w[0] - u[0]*w[2],
		u[0]*w[1] - u[1]*w[0],
	}
	l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return Vec3{0, 0, 1}
	}
	return Vec3{n[0] / l, n[1] / l, n[2] / l}
}
