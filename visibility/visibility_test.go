package visibility_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/wiless/capacity/entities"
	"github.com/wiless/capacity/visibility"
)

func TestDispatch(t *testing.T) {
	cases := []struct {
		assigned, precomputed bool
		want                  visibility.Mode
	}{
		{false, false, visibility.ModeSkip},
		{true, false, visibility.ModeOracle},
		{false, true, visibility.ModeLookup},
		{true, true, visibility.ModeLookup},
	}
	for _, c := range cases {
		if got := visibility.Dispatch(c.assigned, c.precomputed); got != c.want {
			t.Errorf("Dispatch(%v,%v) = %v, want %v", c.assigned, c.precomputed, got, c.want)
		}
	}
}

// countingOracle records how often each pair is analyzed.
type countingOracle struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (o *countingOracle) PairAnalysis(poi entities.PointOfInterest, site entities.CellSite) (float64, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string]int)
	}
	key := poi.ID + "/" + site.ID
	o.calls[key]++
	if o.fail[key] {
		return 0, false, errors.New("tile missing")
	}
	return 1234.5, true, nil
}

func testInputs() ([]entities.PointOfInterest, []entities.CellSite) {
	pois := []entities.PointOfInterest{
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"},
	}
	sites := []entities.CellSite{
		{ID: "s1", RadioType: "4G"},
		{ID: "s2", RadioType: "4G"},
	}
	return pois, sites
}

func TestResolveLive(t *testing.T) {
	pois, sites := testInputs()
	oracle := &countingOracle{}
	r := &visibility.Resolver{Oracle: oracle, Workers: 4}

	// p1 -> s1, p2 unassigned, p3 -> s2.
	got := r.ResolveLive(pois, sites, []int{0, -1, 1})

	if !got[0].Assigned || got[0].SiteID != "s1" || got[0].GroundDistance != 1234.5 || !got[0].IsVisible {
		t.Errorf("p1 result = %+v", got[0])
	}
	if got[1].Assigned || !math.IsNaN(got[1].GroundDistance) {
		t.Errorf("unassigned p2 result = %+v", got[1])
	}
	if !got[2].Assigned || got[2].SiteID != "s2" {
		t.Errorf("p3 result = %+v", got[2])
	}

	// Exactly one oracle call per assigned point, none for unassigned.
	if oracle.calls["p1/s1"] != 1 || oracle.calls["p3/s2"] != 1 || len(oracle.calls) != 2 {
		t.Errorf("oracle calls = %v", oracle.calls)
	}
}

func TestResolveLiveOracleFailure(t *testing.T) {
	pois, sites := testInputs()
	oracle := &countingOracle{fail: map[string]bool{"p1/s1": true}}
	r := &visibility.Resolver{Oracle: oracle}

	got := r.ResolveLive(pois, sites, []int{0, 0, 1})
	if got[0].Assigned || !math.IsNaN(got[0].GroundDistance) {
		t.Errorf("failed pair should resolve to undefined, got %+v", got[0])
	}
	// The failure aborts only that pair.
	if !got[1].Assigned || !got[2].Assigned {
		t.Errorf("other pairs affected: %+v %+v", got[1], got[2])
	}
}

func TestResolveLiveRadioTypeFilter(t *testing.T) {
	pois, sites := testInputs()
	sites[1].RadioType = "microwave"
	oracle := &countingOracle{}
	r := &visibility.Resolver{Oracle: oracle, AllowedRadioTypes: []string{"unknown", "2G", "3G", "4G", "5G"}}

	got := r.ResolveLive(pois, sites, []int{0, 1, 1})
	if !got[0].Assigned {
		t.Errorf("allowed radio type skipped: %+v", got[0])
	}
	if got[1].Assigned || got[2].Assigned {
		t.Errorf("disallowed radio type analyzed: %+v %+v", got[1], got[2])
	}
	if len(oracle.calls) != 1 {
		t.Errorf("oracle calls = %v", oracle.calls)
	}
}

func TestResolvePrecomputed(t *testing.T) {
	pois, _ := testInputs()
	pairs := &entities.VisibilityPairCollection{Items: []entities.VisibilityPair{
		{POIID: "p1", SiteID: "s2", Order: 2, GroundDistance: 999, IsVisible: false},
		{POIID: "p1", SiteID: "s1", Order: 1, GroundDistance: 500, IsVisible: true},
		{POIID: "p3", SiteID: "s2", Order: 1, GroundDistance: 2500, IsVisible: false},
	}}
	r := &visibility.Resolver{}

	got := r.ResolvePrecomputed(pois, pairs)
	if got[0].SiteID != "s1" || got[0].GroundDistance != 500 || !got[0].IsVisible {
		t.Errorf("p1: rank-1 row not selected: %+v", got[0])
	}
	if got[1].Assigned || !math.IsNaN(got[1].GroundDistance) {
		t.Errorf("p2 without a rank-1 row should stay unresolved: %+v", got[1])
	}
	if got[2].SiteID != "s2" || got[2].IsVisible {
		t.Errorf("p3 = %+v", got[2])
	}
}

func TestFlatTerrainOracle(t *testing.T) {
	o := visibility.FlatTerrainOracle{}
	d, vis, err := o.PairAnalysis(
		entities.PointOfInterest{ID: "p", Lat: 0, Lon: 0},
		entities.CellSite{ID: "s", Lat: 0, Lon: 0.01},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !vis {
		t.Error("flat terrain oracle must always report visible")
	}
	// 0.01 degrees of longitude at the equator is ~1113 m.
	if math.Abs(d-1113.2) > 5 {
		t.Errorf("ground distance = %v, want ~1113", d)
	}
}
