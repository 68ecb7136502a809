package capacity

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/floats"

	"github.com/wiless/capacity/entities"
	"github.com/wiless/capacity/geometry"
	"github.com/wiless/capacity/itu"
	"github.com/wiless/capacity/radio"
	"github.com/wiless/capacity/visibility"
)

// Analyzer holds the immutable inputs of one capacity run. Collections
// are read-only throughout; every derived geometry lives only for the
// duration of Run.
type Analyzer struct {
	Params radio.Params
	Tables radio.BandTables

	POIs       *entities.POICollection
	Sites      *entities.CellSiteCollection
	Population *entities.PopulationCollection

	// Pairs switches the visibility phase to precomputed mode when
	// non-nil; Oracle is then never invoked.
	Pairs  *entities.VisibilityPairCollection
	Oracle visibility.Oracle

	// Area is the optional study boundary in geographic coordinates.
	Area geom.Polygon

	// UserMonthlyGB overrides the reference lookup when positive;
	// otherwise Reference and CountryISO3 must resolve it.
	UserMonthlyGB float64
	Reference     *itu.Reference
	CountryISO3   string

	AllowedRadioTypes []string
	Workers           int
	ShowProgress      bool
	Observer          Observer
}

// NewAnalyzer returns an Analyzer with the deployment defaults filled
// in; inputs still have to be attached before Run.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Params: radio.DefaultParams(), Workers: 1}
}

// Validate rejects incomplete or inconsistent inputs. Run calls it
// first; failures here are construction-time errors, never retried.
func (a *Analyzer) Validate() error {
	if err := a.Params.Validate(); err != nil {
		return err
	}
	if err := a.Tables.Validate(); err != nil {
		return err
	}
	if a.POIs == nil || len(a.POIs.Items) == 0 {
		return fmt.Errorf("capacity: no points of interest")
	}
	if a.Sites == nil || a.Sites.Len() == 0 {
		return fmt.Errorf("capacity: no cell sites")
	}
	if a.Population == nil {
		return fmt.Errorf("capacity: no population data")
	}
	if a.Pairs == nil && a.Oracle == nil {
		return fmt.Errorf("capacity: neither precomputed visibility pairs nor an oracle supplied")
	}
	if a.UserMonthlyGB <= 0 {
		if a.Reference == nil || a.CountryISO3 == "" {
			return fmt.Errorf("capacity: no monthly user volume: set UserMonthlyGB or Reference+CountryISO3")
		}
		if _, _, err := a.Reference.UserMonthlyGB(a.CountryISO3); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the full pipeline and returns the output layers in
// geographic coordinates.
func (a *Analyzer) Run() (*Result, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	userGB := a.UserMonthlyGB
	if userGB <= 0 {
		gb, year, err := a.Reference.UserMonthlyGB(a.CountryISO3)
		if err != nil {
			return nil, err
		}
		log.Infof("capacity: %s monthly volume %.2f GB/subscription (year %d)", a.CountryISO3, gb, year)
		userGB = gb
	}

	a.Observer.notify("project")
	poiPts := make([]geom.Point, len(a.POIs.Items))
	for i, p := range a.POIs.Items {
		poiPts[i] = geom.Point{X: p.Lon, Y: p.Lat}
	}
	proj, err := geometry.NewProjector(poiPts)
	if err != nil {
		return nil, err
	}
	log.Infof("capacity: projecting into UTM zone %d", proj.Zone)

	poiPlanar, err := proj.PointsToPlane(poiPts)
	if err != nil {
		return nil, err
	}
	sitePts := make([]geom.Point, a.Sites.Len())
	for i, s := range a.Sites.Items {
		sitePts[i] = geom.Point{X: s.Lon, Y: s.Lat}
	}
	sitePlanar, err := proj.PointsToPlane(sitePts)
	if err != nil {
		return nil, err
	}
	popPts := make([]geom.Point, len(a.Population.Items))
	popWeights := make([]float64, len(a.Population.Items))
	for i, c := range a.Population.Items {
		popPts[i] = geom.Point{X: c.Lon, Y: c.Lat}
		popWeights[i] = c.Population
	}
	popPlanar, err := proj.PointsToPlane(popPts)
	if err != nil {
		return nil, err
	}

	boundary := geometry.Envelope(sitePlanar, a.Params.MaxRadius)
	if len(a.Area) > 0 {
		g, err := proj.ToPlane(a.Area)
		if err != nil {
			return nil, fmt.Errorf("capacity: projecting study area: %v", err)
		}
		boundary = g.(geom.Polygon)
	}

	a.Observer.notify("partition")
	ids := make([]string, a.Sites.Len())
	for i, s := range a.Sites.Items {
		ids[i] = s.ID
	}
	siteAreas := geometry.BuildSiteAreas(ids, sitePlanar, boundary, geometry.Config{
		MinRadius:   a.Params.MinRadius,
		MaxRadius:   a.Params.MaxRadius,
		Step:        a.Params.RadiusStep,
		Segments:    a.Params.AnglesNum,
		RotationDeg: a.Params.RotationAngle,
	})

	a.Observer.notify("visibility")
	resolver := &visibility.Resolver{
		Oracle:            a.Oracle,
		Workers:           a.Workers,
		ShowProgress:      a.ShowProgress,
		AllowedRadioTypes: a.AllowedRadioTypes,
	}
	var vis []visibility.Result
	if a.Pairs != nil {
		vis = resolver.ResolvePrecomputed(a.POIs.Items, a.Pairs)
	} else {
		assignment := geometry.AssignPoints(poiPlanar, siteAreas)
		vis = resolver.ResolveLive(a.POIs.Items, a.Sites.Items, assignment)
	}

	a.Observer.notify("aggregate")
	userKbps := radio.NonBusyHourUserBitrate(a.Params, userGB)
	ringPop := geometry.PopulationPerRing(popPlanar, popWeights, siteAreas)

	rings := make([]RingFeature, 0, len(siteAreas)*len(a.Params.RadiusSteps()))
	utilizedBySite := make(map[string]float64, len(siteAreas))
	availableBySite := make(map[string]float64, len(siteAreas))
	avrb := vlib.VectorF{a.Params.AvRBPDSCH()}
	for si, s := range siteAreas {
		repRadii := make(vlib.VectorF, len(s.Rings))
		pops := make(vlib.VectorF, len(s.Rings))
		for ri, r := range s.Rings {
			repRadii[ri] = r.RepRadius
			pops[ri] = ringPop[si][ri]
		}
		perRB := radio.BitratePerRB(a.Params, a.Tables, repRadii)
		demand := radio.PopulationBitrateDemand(a.Params, userKbps, pops)
		util, err := radio.RBUtilization(demand, perRB)
		if err != nil {
			return nil, err
		}
		// Rings whose representative radius has no break-table coverage
		// carry NaN utilization; they contribute no load to the site.
		finite := make([]float64, 0, len(util))
		for _, u := range util {
			if !math.IsNaN(u) {
				finite = append(finite, u)
			}
		}
		total := floats.Sum(finite)
		avail, err := radio.AvailableCapacity(avrb, vlib.VectorF{total})
		if err != nil {
			return nil, err
		}
		utilizedBySite[s.ID] = total
		availableBySite[s.ID] = avail[0]

		for ri, r := range s.Rings {
			rings = append(rings, RingFeature{
				SiteID:       s.ID,
				Label:        r.Label,
				RepRadius:    r.RepRadius,
				Geom:         r.Geom,
				Population:   pops[ri],
				BitratePerRB: perRB[ri],
				DemandKbps:   demand[ri],
				UtilizedRB:   util[ri],
			})
		}
	}

	distances := make(vlib.VectorF, len(vis))
	for i, v := range vis {
		distances[i] = v.GroundDistance
	}
	required := radio.RequiredRB(a.Params, a.Tables, distances)

	available := make(vlib.VectorF, len(vis))
	for i, v := range vis {
		if v.Assigned {
			// Sites referenced by a precomputed table but absent from
			// the inventory keep the zero default.
			available[i] = availableBySite[v.SiteID]
		}
	}
	sufficient, err := radio.SufficiencyCheck(available, required)
	if err != nil {
		return nil, err
	}

	a.Observer.notify("finalize")
	result := &Result{UTMZone: proj.Zone}
	for _, s := range siteAreas {
		g, err := proj.PolygonalToGeographic(s.Coverage)
		if err != nil {
			return nil, fmt.Errorf("capacity: reprojecting buffer of %s: %v", s.ID, err)
		}
		result.Buffers = append(result.Buffers, BufferFeature{SiteID: s.ID, Geom: g})
	}
	for _, r := range rings {
		g, err := proj.PolygonalToGeographic(r.Geom)
		if err != nil {
			return nil, fmt.Errorf("capacity: reprojecting ring %v of %s: %v", r.Label, r.SiteID, err)
		}
		r.Geom = g
		result.Rings = append(result.Rings, r)
	}
	for i, p := range a.POIs.Items {
		v := vis[i]
		rec := PointRecord{
			POIID:          p.ID,
			Lat:            p.Lat,
			Lon:            p.Lon,
			SiteID:         v.SiteID,
			Assigned:       v.Assigned,
			GroundDistance: v.GroundDistance,
			IsVisible:      v.IsVisible,
			RequiredRB:     required[i],
			Serviceability: radio.Classify(required[i]),
			AvailableRB:    available[i],
			Sufficient:     sufficient[i],
		}
		if v.Assigned {
			rec.SiteUtilizedRB = utilizedBySite[v.SiteID]
		} else {
			rec.SiteUtilizedRB = math.NaN()
		}
		result.Points = append(result.Points, rec)
	}
	log.Infof("capacity: %d sites, %d rings, %d points analyzed", len(result.Buffers), len(result.Rings), len(result.Points))
	return result, nil
}
