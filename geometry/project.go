// Package geometry partitions space among cell sites and decomposes
// each site's coverage into concentric rings. All distance work happens
// in a locally accurate planar projection; callers hand in geographic
// coordinates and get geographic coordinates back.
package geometry

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

const wgs84Def = "+proj=longlat +datum=WGS84 +no_defs"

// Projector converts between geographic WGS84 coordinates and the UTM
// zone of the dataset centroid. The zone is expressed in tmerc form so
// the proj parser needs no zone registry.
type Projector struct {
	Zone    int
	South   bool
	forward proj.Transformer
	inverse proj.Transformer
}

// NewProjector picks the UTM zone containing the mean of the given
// geographic points and prepares both transform directions.
func NewProjector(lonlat []geom.Point) (*Projector, error) {
	if len(lonlat) == 0 {
		return nil, fmt.Errorf("geometry: no points to estimate a projection from")
	}
	var sumLon, sumLat float64
	for _, p := range lonlat {
		sumLon += p.X
		sumLat += p.Y
	}
	lon := sumLon / float64(len(lonlat))
	lat := sumLat / float64(len(lonlat))

	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	south := lat < 0
	y0 := 0.0
	if south {
		y0 = 10000000
	}
	centralMeridian := float64(zone)*6 - 183
	utmDef := fmt.Sprintf(
		"+proj=tmerc +lat_0=0 +lon_0=%g +k=0.9996 +x_0=500000 +y_0=%.0f +datum=WGS84 +units=m +no_defs",
		centralMeridian, y0)

	geoSR, err := proj.Parse(wgs84Def)
	if err != nil {
		return nil, fmt.Errorf("geometry: parsing WGS84: %v", err)
	}
	utmSR, err := proj.Parse(utmDef)
	if err != nil {
		return nil, fmt.Errorf("geometry: parsing UTM zone %d: %v", zone, err)
	}
	fwd, err := geoSR.NewTransform(utmSR)
	if err != nil {
		return nil, fmt.Errorf("geometry: building forward transform: %v", err)
	}
	inv, err := utmSR.NewTransform(geoSR)
	if err != nil {
		return nil, fmt.Errorf("geometry: building inverse transform: %v", err)
	}
	return &Projector{Zone: zone, South: south, forward: fwd, inverse: inv}, nil
}

// ToPlane reprojects a geographic geometry into UTM meters.
func (p *Projector) ToPlane(g geom.Geom) (geom.Geom, error) {
	return g.Transform(p.forward)
}

// ToGeographic reprojects a planar geometry back to WGS84.
func (p *Projector) ToGeographic(g geom.Geom) (geom.Geom, error) {
	return g.Transform(p.inverse)
}

// PointsToPlane reprojects a batch of geographic points.
func (p *Projector) PointsToPlane(pts []geom.Point) ([]geom.Point, error) {
	out := make([]geom.Point, len(pts))
	for i, pt := range pts {
		g, err := pt.Transform(p.forward)
		if err != nil {
			return nil, fmt.Errorf("geometry: projecting point %d: %v", i, err)
		}
		out[i] = g.(geom.Point)
	}
	return out, nil
}

// PolygonalToGeographic reprojects a planar polygonal geometry back to
// WGS84, passing empty geometries through untouched.
func (p *Projector) PolygonalToGeographic(poly geom.Polygonal) (geom.Polygonal, error) {
	if Empty(poly) {
		return poly, nil
	}
	g, err := p.ToGeographic(poly)
	if err != nil {
		return nil, err
	}
	return g.(geom.Polygonal), nil
}
