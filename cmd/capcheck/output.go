package main

import (
	"encoding/json"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/jszwec/csvutil"
	"github.com/wiless/d3"

	"github.com/wiless/capacity"
)

// areaVertex is one boundary-ring vertex of the optional study area.
type areaVertex struct {
	Lon float64 `csv:"lon"`
	Lat float64 `csv:"lat"`
}

func loadAreaRing(fname string) (geom.Polygon, error) {
	ring := make([]geom.Point, 0)
	d3.ForEachParse(fname, func(v areaVertex) {
		ring = append(ring, geom.Point{X: v.Lon, Y: v.Lat})
	})
	if len(ring) < 3 {
		return nil, os.ErrInvalid
	}
	return geom.Polygon{ring}, nil
}

// GeoJSON output structures. The layers are small enough that the
// generic encoder is all that is needed.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   polygonGeometry        `json:"geometry"`
}

type polygonGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

func encodeRings(p geom.Polygon) [][][2]float64 {
	coords := make([][][2]float64, 0, len(p))
	for _, ring := range p {
		r := make([][2]float64, 0, len(ring)+1)
		for _, pt := range ring {
			r = append(r, [2]float64{pt.X, pt.Y})
		}
		if len(ring) > 0 {
			r = append(r, [2]float64{ring[0].X, ring[0].Y}) // close the ring
		}
		coords = append(coords, r)
	}
	return coords
}

// encodePolygonal emits Polygon or MultiPolygon GeoJSON depending on
// what the clipping produced. A nil geometry encodes as an empty
// Polygon.
func encodePolygonal(p geom.Polygonal) polygonGeometry {
	switch g := p.(type) {
	case geom.Polygon:
		return polygonGeometry{Type: "Polygon", Coordinates: encodeRings(g)}
	case geom.MultiPolygon:
		coords := make([][][][2]float64, 0, len(g))
		for _, poly := range g {
			coords = append(coords, encodeRings(poly))
		}
		return polygonGeometry{Type: "MultiPolygon", Coordinates: coords}
	}
	return polygonGeometry{Type: "Polygon", Coordinates: [][][2]float64{}}
}

// pointRow is one line of the point verdict CSV.
type pointRow struct {
	POIID          string  `csv:"poi_id"`
	Lat            float64 `csv:"lat"`
	Lon            float64 `csv:"lon"`
	SiteID         string  `csv:"ict_id"`
	GroundDistance float64 `csv:"ground_distance"`
	IsVisible      bool    `csv:"is_visible"`
	RequiredRB     float64 `csv:"rbdlthtarg"`
	SiteUtilizedRB float64 `csv:"upoprbu"`
	AvailableRB    float64 `csv:"cellavcap"`
	Sufficient     bool    `csv:"sufcapch"`
	Serviceability string  `csv:"serviceability"`
}

func writeOutputs(outdir string, res *capacity.Result) error {
	buffers := featureCollection{Type: "FeatureCollection"}
	for _, b := range res.Buffers {
		buffers.Features = append(buffers.Features, feature{
			Type:       "Feature",
			Properties: map[string]interface{}{"ict_id": b.SiteID},
			Geometry:   encodePolygonal(b.Geom),
		})
	}
	if err := writeJSON(filepath.Join(outdir, "buffers.geojson"), buffers); err != nil {
		return err
	}

	rings := featureCollection{Type: "FeatureCollection"}
	for _, r := range res.Rings {
		rings.Features = append(rings.Features, feature{
			Type: "Feature",
			Properties: map[string]interface{}{
				"ict_id":     r.SiteID,
				"buffer":     r.Label,
				"radius":     r.RepRadius,
				"population": r.Population,
				"upoprbu":    jsonSafe(r.UtilizedRB),
			},
			Geometry: encodePolygonal(r.Geom),
		})
	}
	if err := writeJSON(filepath.Join(outdir, "rings.geojson"), rings); err != nil {
		return err
	}

	rows := make([]pointRow, 0, len(res.Points))
	for _, p := range res.Points {
		rows = append(rows, pointRow{
			POIID:          p.POIID,
			Lat:            p.Lat,
			Lon:            p.Lon,
			SiteID:         p.SiteID,
			GroundDistance: p.GroundDistance,
			IsVisible:      p.IsVisible,
			RequiredRB:     p.RequiredRB,
			SiteUtilizedRB: p.SiteUtilizedRB,
			AvailableRB:    p.AvailableRB,
			Sufficient:     p.Sufficient,
			Serviceability: p.Serviceability.String(),
		})
	}
	raw, err := csvutil.Marshal(rows)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(outdir, "points.csv"), raw, 0644)
}

// jsonSafe replaces NaN/Inf with nil so the JSON encoder does not
// reject the feature.
func jsonSafe(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func writeJSON(fname string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(fname, raw, 0644)
}
