package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// Config sets the buffer/ring decomposition of one run. Radii are in
// planar meters; Segments and RotationDeg control the polygonal circle
// approximation.
type Config struct {
	MinRadius   float64
	MaxRadius   float64
	Step        float64
	Segments    int
	RotationDeg float64
}

// Labels returns the ring radius labels min, min+step, ..., max.
// Labels are generated by index so the count never depends on
// floating-point accumulation of Step.
func (c Config) Labels() []float64 {
	n := int(math.Round((c.MaxRadius-c.MinRadius)/c.Step)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = c.MinRadius + float64(i)*c.Step
	}
	return out
}

// Ring is one annular demand band of a site, clipped to the site's
// Voronoi polygon. RepRadius is the band's representative distance
// (label minus half a step). Geom is nil when the clip leaves nothing.
type Ring struct {
	Label     float64
	RepRadius float64
	Geom      geom.Polygonal
}

// SiteArea is the derived geometry of one site: its Voronoi territory,
// its maximal clipped buffer (Coverage) and the clipped rings, ordered
// by radius label.
type SiteArea struct {
	Index    int
	ID       string
	Center   geom.Point
	Voronoi  geom.Polygon
	Coverage geom.Polygonal
	Rings    []Ring
}

// Empty reports whether a polygonal geometry carries no area. Boolean
// operations return nil for a void result.
func Empty(p geom.Polygonal) bool {
	return p == nil || p.Area() == 0
}

// Circle approximates a disk of the given radius as a regular polygon.
// rotationDeg offsets the first vertex.
func Circle(center geom.Point, radius float64, segments int, rotationDeg float64) geom.Polygon {
	ring := make([]geom.Point, segments)
	rot := rotationDeg * math.Pi / 180
	for i := 0; i < segments; i++ {
		a := rot + 2*math.Pi*float64(i)/float64(segments)
		ring[i] = geom.Point{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		}
	}
	return geom.Polygon{ring}
}

// BuildSiteAreas derives the Voronoi partition and the cumulative
// buffer/ring decomposition for every site. Centers must already be in
// planar meters; boundary clips the Voronoi cells. Rings of one site
// are pairwise disjoint and their union equals its Coverage.
func BuildSiteAreas(ids []string, centers []geom.Point, boundary geom.Polygon, cfg Config) []SiteArea {
	cells := Partition(centers, boundary)
	labels := cfg.Labels()
	sites := make([]SiteArea, len(centers))
	for i := range centers {
		s := SiteArea{Index: i, ID: ids[i], Center: centers[i], Voronoi: cells[i]}
		var prev geom.Polygon
		for li, r := range labels {
			buffer := Circle(centers[i], r, cfg.Segments, cfg.RotationDeg)
			var ring geom.Polygonal = buffer
			if li > 0 {
				ring = buffer.Difference(prev)
			}
			s.Rings = append(s.Rings, Ring{
				Label:     r,
				RepRadius: r - cfg.Step/2,
				Geom:      clipTo(ring, s.Voronoi),
			})
			if li == len(labels)-1 {
				s.Coverage = clipTo(buffer, s.Voronoi)
			}
			prev = buffer
		}
		sites[i] = s
	}
	return sites
}

// clipTo intersects g with the clip polygon, treating an empty clip as
// an empty result (a fully occluded Voronoi cell clips everything
// away).
func clipTo(g geom.Polygonal, clip geom.Polygon) geom.Polygonal {
	if g == nil || len(clip) == 0 {
		return nil
	}
	return g.Intersection(clip)
}
