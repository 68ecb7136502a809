// Package entities holds the read-only input collections of a capacity
// run: points of interest, cell sites, population samples and optional
// precomputed visibility pairs.
package entities

import (
	"fmt"
	"io/ioutil"

	"github.com/jszwec/csvutil"
	"github.com/wiless/d3"
)

// PointOfInterest is one location to be checked for serviceability.
type PointOfInterest struct {
	ID  string  `csv:"poi_id"`
	Lat float64 `csv:"lat"`
	Lon float64 `csv:"lon"`
}

// CellSite is one serving site. RadioType carries the deployment tag
// ("4G", "unknown", ...) as found in the source inventory.
type CellSite struct {
	ID        string  `csv:"ict_id"`
	Lat       float64 `csv:"lat"`
	Lon       float64 `csv:"lon"`
	RadioType string  `csv:"radio_type"`
}

// PopulationCell is one point sample of a population raster.
type PopulationCell struct {
	Lat        float64 `csv:"lat"`
	Lon        float64 `csv:"lon"`
	Population float64 `csv:"population"`
}

// VisibilityPair is one precomputed line-of-sight record. Order is the
// nearest-site rank; only rank 1 is consumed by the engine.
type VisibilityPair struct {
	POIID          string  `csv:"poi_id"`
	SiteID         string  `csv:"ict_id"`
	Order          int     `csv:"order"`
	GroundDistance float64 `csv:"ground_distance"`
	IsVisible      bool    `csv:"is_visible"`
}

// POICollection is an ordered set of points of interest.
type POICollection struct {
	Items []PointOfInterest
}

// CellSiteCollection is an ordered set of cell sites, unique by ID.
type CellSiteCollection struct {
	Items []CellSite
	seen  map[string]bool
}

// PopulationCollection is the set of population samples.
type PopulationCollection struct {
	Items []PopulationCell
}

// VisibilityPairCollection is the optional precomputed visibility table.
type VisibilityPairCollection struct {
	Items []VisibilityPair
}

// Add appends a site unless its ID was already seen. Duplicate site
// records are dropped before any geometry is built on them.
func (c *CellSiteCollection) Add(s CellSite) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[s.ID] {
		return
	}
	c.seen[s.ID] = true
	c.Items = append(c.Items, s)
}

// Len returns the number of unique sites.
func (c *CellSiteCollection) Len() int { return len(c.Items) }

// Rank1ByPOI indexes the rank-order-1 pairs by POI identifier. Later
// duplicates for the same POI are ignored.
func (v *VisibilityPairCollection) Rank1ByPOI() map[string]VisibilityPair {
	out := make(map[string]VisibilityPair, len(v.Items))
	for _, p := range v.Items {
		if p.Order != 1 {
			continue
		}
		if _, ok := out[p.POIID]; ok {
			continue
		}
		out[p.POIID] = p
	}
	return out
}

// LoadPOIs reads a POI CSV (poi_id,lat,lon).
func LoadPOIs(fname string) (*POICollection, error) {
	var c POICollection
	if err := loadCSV(fname, &c.Items); err != nil {
		return nil, fmt.Errorf("entities: loading POIs: %v", err)
	}
	return &c, nil
}

// LoadCellSites reads a cell-site CSV (ict_id,lat,lon,radio_type),
// deduplicating by ict_id in input order.
func LoadCellSites(fname string) (*CellSiteCollection, error) {
	var c CellSiteCollection
	d3.ForEachParse(fname, func(s CellSite) {
		c.Add(s)
	})
	if c.Len() == 0 {
		return nil, fmt.Errorf("entities: no cell sites parsed from %s", fname)
	}
	return &c, nil
}

// LoadPopulation reads a population CSV (lat,lon,population).
func LoadPopulation(fname string) (*PopulationCollection, error) {
	var c PopulationCollection
	if err := loadCSV(fname, &c.Items); err != nil {
		return nil, fmt.Errorf("entities: loading population: %v", err)
	}
	return &c, nil
}

// LoadVisibilityPairs reads a precomputed visibility CSV
// (poi_id,ict_id,order,ground_distance,is_visible).
func LoadVisibilityPairs(fname string) (*VisibilityPairCollection, error) {
	var c VisibilityPairCollection
	if err := loadCSV(fname, &c.Items); err != nil {
		return nil, fmt.Errorf("entities: loading visibility pairs: %v", err)
	}
	return &c, nil
}

func loadCSV(fname string, out interface{}) error {
	raw, err := ioutil.ReadFile(fname)
	if err != nil {
		return err
	}
	return csvutil.Unmarshal(raw, out)
}
