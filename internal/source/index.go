package source

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"treecanopy/internal/trees"
)

// IndexZoom is the tile zoom features are bucketed at.
const IndexZoom maptile.Zoom = 16

// past this many tiles a bound query scans every feature instead
const maxTileScan = 4096

// Index buckets features by map tile so bound queries only touch the tiles
// they overlap.
type Index struct {
	features []trees.Feature
	tiles    map[maptile.Tile][]int
}

func NewIndex(fs []trees.Feature) *Index {
	idx := &Index{
		features: fs,
		tiles:    make(map[maptile.Tile][]int),
	}
	for i, f := range fs {
		t := maptile.At(f.Position, IndexZoom)
		idx.tiles[t] = append(idx.tiles[t], i)
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.features) }

// Tiles is the number of non-empty tiles.
func (idx *Index) Tiles() int { return len(idx.tiles) }

// Within returns the features inside b in dataset order.
func (idx *Index) Within(b orb.Bound) []trees.Feature {
	nw := maptile.At(orb.Point{b.Min[0], b.Max[1]}, IndexZoom)
	se := maptile.At(orb.Point{b.Max[0], b.Min[1]}, IndexZoom)
	var hits []int
	if span := uint64(se.X-nw.X+1) * uint64(se.Y-nw.Y+1); se.X < nw.X || se.Y < nw.Y || span > maxTileScan {
		for i, f := range idx.features {
			if b.Contains(f.Position) {
				hits = append(hits, i)
			}
		}
	} else {
		for x := nw.X; x <= se.X; x++ {
			for y := nw.Y; y <= se.Y; y++ {
				for _, i := range idx.tiles[maptile.New(x, y, IndexZoom)] {
					if b.Contains(idx.features[i].Position) {
						hits = append(hits, i)
					}
				}
			}
		}
		sort.Ints(hits)
	}
	out := make([]trees.Feature, len(hits))
	for n, i := range hits {
		out[n] = idx.features[i]
	}
	return out
}
