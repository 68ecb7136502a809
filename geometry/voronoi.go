package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// Partition computes one Voronoi polygon per center, clipped to the
// outer ring of boundary. Each cell is built by intersecting the
// boundary with the half-plane closer to its own center than to every
// other center, so cells are pairwise disjoint and cover the boundary.
// A center fully occluded by its neighbors gets an empty polygon.
func Partition(centers []geom.Point, boundary geom.Polygon) []geom.Polygon {
	out := make([]geom.Polygon, len(centers))
	if len(boundary) == 0 {
		return out
	}
	base := boundary[0]
	for i, c := range centers {
		ring := append([]geom.Point(nil), base...)
		for j, other := range centers {
			if j == i {
				continue
			}
			ring = clipHalfPlane(ring, c, other)
			if len(ring) == 0 {
				break
			}
		}
		if len(ring) >= 3 {
			out[i] = geom.Polygon{ring}
		} else {
			out[i] = geom.Polygon{}
		}
	}
	return out
}

// clipHalfPlane keeps the part of ring closer to a than to b
// (Sutherland-Hodgman against the perpendicular bisector of a-b).
func clipHalfPlane(ring []geom.Point, a, b geom.Point) []geom.Point {
	if len(ring) == 0 {
		return nil
	}
	// Signed distance to the bisector, negative on a's side.
	nx, ny := b.X-a.X, b.Y-a.Y
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	f := func(p geom.Point) float64 {
		return nx*(p.X-mx) + ny*(p.Y-my)
	}

	out := make([]geom.Point, 0, len(ring)+1)
	for i := 0; i < len(ring); i++ {
		cur := ring[i]
		next := ring[(i+1)%len(ring)]
		fc, fn := f(cur), f(next)
		curIn, nextIn := fc <= 0, fn <= 0
		switch {
		case curIn && nextIn:
			out = append(out, next)
		case curIn && !nextIn:
			out = append(out, lerp(cur, next, fc, fn))
		case !curIn && nextIn:
			out = append(out, lerp(cur, next, fc, fn), next)
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// lerp interpolates the crossing point of edge cur-next with the
// bisector, given the signed distances at the endpoints.
func lerp(cur, next geom.Point, fc, fn float64) geom.Point {
	t := fc / (fc - fn)
	return geom.Point{
		X: cur.X + t*(next.X-cur.X),
		Y: cur.Y + t*(next.Y-cur.Y),
	}
}

// Envelope returns a rectangular boundary covering all points, expanded
// by margin meters on every side. Used when no study-area polygon is
// supplied.
func Envelope(pts []geom.Point, margin float64) geom.Polygon {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	minX -= margin
	minY -= margin
	maxX += margin
	maxY += margin
	return geom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}}
}
