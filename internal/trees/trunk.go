package trees

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// MaxTrunkSides caps the trunk ring for implausibly large girths.
const MaxTrunkSides = 64

// TrunkPolygon returns the trunk footprint for girth g as a closed ring
// around center. Vertices go counter-clockwise from north, one per whole
// step, with the first vertex repeated at the end. Rings never have more
// than MaxTrunkSides sides.
func TrunkPolygon(center orb.Point, g float64) orb.Ring {
	steps := Steps(g)
	if !(steps > 0) || math.IsInf(g, 0) {
		return nil
	}
	steps = math.Min(steps, MaxTrunkSides)
	radius := TrunkRadius(g)
	n := int(math.Ceil(steps))
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		bearing := float64(i) * -360 / steps
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}
	return append(ring, ring[0])
}
