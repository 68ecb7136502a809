package geometry

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// polyItem makes a clipped polygonal geometry indexable by the R-tree
// while carrying its (site, ring) origin.
type polyItem struct {
	geom.Polygonal
	site int
	ring int
}

// coverageTree indexes the non-empty maximal buffers of all sites.
func coverageTree(sites []SiteArea) *rtree.Rtree {
	tree := rtree.NewTree(25, 50)
	for i := range sites {
		if Empty(sites[i].Coverage) {
			continue
		}
		tree.Insert(&polyItem{Polygonal: sites[i].Coverage, site: i})
	}
	return tree
}

// AssignPoints maps every point to the site whose maximal clipped
// buffer contains it, or -1 when no buffer does. Under a correct
// Voronoi partition at most one buffer can match; should numeric noise
// ever produce an overlap, the lowest site index wins so the result
// stays deterministic.
func AssignPoints(points []geom.Point, sites []SiteArea) []int {
	tree := coverageTree(sites)
	out := make([]int, len(points))
	for i, pt := range points {
		out[i] = -1
		candidates := tree.SearchIntersect(pt.Bounds())
		matches := make([]int, 0, 1)
		for _, c := range candidates {
			item := c.(*polyItem)
			if pt.Within(item.Polygonal) != geom.Outside {
				matches = append(matches, item.site)
			}
		}
		if len(matches) > 0 {
			sort.Ints(matches)
			out[i] = matches[0]
		}
	}
	return out
}

// PopulationPerRing sums sample weights into the ring containing each
// sample. Samples outside every ring are excluded; rings without
// samples stay at zero. The result is indexed [site][ring position].
func PopulationPerRing(samples []geom.Point, weights []float64, sites []SiteArea) [][]float64 {
	tree := rtree.NewTree(25, 50)
	for si := range sites {
		for ri := range sites[si].Rings {
			g := sites[si].Rings[ri].Geom
			if Empty(g) {
				continue
			}
			tree.Insert(&polyItem{Polygonal: g, site: si, ring: ri})
		}
	}

	out := make([][]float64, len(sites))
	for si := range sites {
		out[si] = make([]float64, len(sites[si].Rings))
	}
	for i, pt := range samples {
		// Rings are pairwise disjoint, so interior samples match exactly
		// one; a sample on a shared edge is charged once, to the lowest
		// (site, ring), keeping the sum independent of index order.
		best := -1
		bestRing := -1
		for _, c := range tree.SearchIntersect(pt.Bounds()) {
			item := c.(*polyItem)
			if pt.Within(item.Polygonal) == geom.Outside {
				continue
			}
			if best == -1 || item.site < best || (item.site == best && item.ring < bestRing) {
				best, bestRing = item.site, item.ring
			}
		}
		if best >= 0 {
			out[best][bestRing] += weights[i]
		}
	}
	return out
}
