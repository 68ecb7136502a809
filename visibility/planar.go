package visibility

import (
	"math"

	"github.com/wiless/capacity/entities"
)

const earthRadiusM = 6371000.0

// FlatTerrainOracle is a terrain-free Oracle: the ground distance is
// the great-circle distance and every pair is visible. It stands in
// where no elevation dataset is wired up.
type FlatTerrainOracle struct{}

// PairAnalysis implements Oracle.
func (FlatTerrainOracle) PairAnalysis(poi entities.PointOfInterest, site entities.CellSite) (float64, bool, error) {
	return haversineM(poi.Lat, poi.Lon, site.Lat, site.Lon), true, nil
}

func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}
