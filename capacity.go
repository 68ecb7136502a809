// Package capacity estimates whether the serving cell site of each
// point of interest can deliver a target downlink throughput once its
// spectrum is shared with the population inside the site's service
// area. It sequences the geometry builder, the visibility resolver and
// the demand aggregation over the radio model.
package capacity

import (
	"github.com/ctessum/geom"

	"github.com/wiless/capacity/radio"
)

// BufferFeature is one site's maximal clipped coverage buffer.
type BufferFeature struct {
	SiteID string
	Geom   geom.Polygonal
}

// RingFeature is one annular demand band of a site with its aggregated
// load figures. Label is the ring's outer radius in meters, RepRadius
// the representative distance the bitrate is evaluated at.
type RingFeature struct {
	SiteID       string
	Label        float64
	RepRadius    float64
	Geom         geom.Polygonal
	Population   float64
	BitratePerRB float64 // kbps per resource block at RepRadius
	DemandKbps   float64 // population bitrate demand per sector
	UtilizedRB   float64 // resource blocks consumed by this ring
}

// PointRecord is the per-point verdict. GroundDistance is NaN and
// Assigned false when no site serves the point; AvailableRB is then
// zero, which fails the sufficiency check by construction.
type PointRecord struct {
	POIID          string
	Lat            float64
	Lon            float64
	SiteID         string
	Assigned       bool
	GroundDistance float64
	IsVisible      bool
	RequiredRB     float64
	Serviceability radio.Serviceability
	SiteUtilizedRB float64
	AvailableRB    float64
	Sufficient     bool
}

// Result bundles the two geometry layers and the annotated point
// table, all in geographic WGS84 coordinates.
type Result struct {
	UTMZone int
	Buffers []BufferFeature
	Rings   []RingFeature
	Points  []PointRecord
}

// Observer is notified once per major pipeline stage. A nil observer
// changes nothing but silence; it must never influence results.
type Observer func(stage string)

func (o Observer) notify(stage string) {
	if o != nil {
		o(stage)
	}
}
