package radio_test

import (
	"math"
	"testing"

	"github.com/wiless/capacity/radio"
	"github.com/wiless/vlib"
)

func scenarioParams() radio.Params {
	p := radio.DefaultParams()
	p.BwL850 = 10
	p.BwL1800 = 10
	p.BwL2600 = 10
	p.CCO = 10
	p.RBNumMultiplier = 5
	p.DlThroughputTarget = 5
	p.MinRadius = 1000
	p.MaxRadius = 3000
	p.RadiusStep = 1000
	p.MbbSubscr = 100
	p.OpPopShare = 50
	p.NonBHU = 15
	return p
}

func scenarioTables() radio.BandTables {
	return radio.BandTables{
		L850:  radio.BreakTable{DistanceKm: []float64{2, 5, 10}, BitrateKbps: []float64{20000, 10000, 5000}},
		L1800: radio.BreakTable{DistanceKm: []float64{1, 3, 6}, BitrateKbps: []float64{15000, 8000, 3000}},
		L2600: radio.BreakTable{DistanceKm: []float64{0.5, 1, 2}, BitrateKbps: []float64{10000, 5000, 1000}},
	}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDerivedParams(t *testing.T) {
	p := scenarioParams()
	if p.Bw() != 30 {
		t.Errorf("Bw = %v, want 30", p.Bw())
	}
	if p.NRB() != 150 {
		t.Errorf("NRB = %v, want 150", p.NRB())
	}
	if !almost(p.AvRBPDSCH(), 60) {
		t.Errorf("AvRBPDSCH = %v, want 60", p.AvRBPDSCH())
	}
}

func TestDownlinkBitrateScenario(t *testing.T) {
	p := scenarioParams()
	tbl := scenarioTables()

	// 1.5 km picks the first breakpoint >= 1.5 per band: 2 km on L850
	// (20000), 3 km on L1800 (8000), 2 km on L2600 (1000).
	dl := radio.DownlinkBitrate(p, tbl, vlib.VectorF{1500})
	want := (20000.0 + 8000.0 + 1000.0) / 3
	if !almost(dl[0], want) {
		t.Errorf("DownlinkBitrate(1500m) = %v, want %v", dl[0], want)
	}

	// 900 m: L850 -> 20000, L1800 -> 15000, L2600 -> 5000.
	dl = radio.DownlinkBitrate(p, tbl, vlib.VectorF{900})
	want = (20000.0 + 15000.0 + 5000.0) / 3
	if !almost(dl[0], want) {
		t.Errorf("DownlinkBitrate(900m) = %v, want %v", dl[0], want)
	}
}

func TestRequiredRBScenario(t *testing.T) {
	p := scenarioParams()
	tbl := scenarioTables()

	// At a weighted bitrate of 15000 kbps and avrbpdsch 60:
	// 5*1024/(15000/60) = 20.48 RB.
	eq := radio.BandTables{
		L850:  radio.BreakTable{DistanceKm: []float64{2}, BitrateKbps: []float64{15000}},
		L1800: radio.BreakTable{DistanceKm: []float64{2}, BitrateKbps: []float64{15000}},
		L2600: radio.BreakTable{DistanceKm: []float64{2}, BitrateKbps: []float64{15000}},
	}
	rb := radio.RequiredRB(p, eq, vlib.VectorF{1500})
	if !almost(rb[0], 20.48) {
		t.Errorf("RequiredRB(1500m) = %v, want 20.48", rb[0])
	}

	// Beyond max radius: +Inf regardless of table content.
	rb = radio.RequiredRB(p, tbl, vlib.VectorF{p.MaxRadius + 1, 1e7})
	for i, v := range rb {
		if !math.IsInf(v, 1) {
			t.Errorf("RequiredRB beyond max radius [%d] = %v, want +Inf", i, v)
		}
	}

	// NaN ground distance (unassigned point) also resolves to +Inf.
	rb = radio.RequiredRB(p, tbl, vlib.VectorF{math.NaN()})
	if !math.IsInf(rb[0], 1) {
		t.Errorf("RequiredRB(NaN) = %v, want +Inf", rb[0])
	}
}

func TestBitrateMonotonicity(t *testing.T) {
	p := scenarioParams()
	tbl := scenarioTables()
	dists := vlib.VectorF{100, 400, 900, 1000, 1500, 1900, 2000}
	dl := radio.DownlinkBitrate(p, tbl, dists)
	for i := 1; i < len(dl); i++ {
		if dl[i] > dl[i-1] {
			t.Errorf("bitrate increased at %vm: %v > %v", dists[i], dl[i], dl[i-1])
		}
	}
}

func TestNoCoveragePropagation(t *testing.T) {
	p := scenarioParams()
	tbl := scenarioTables()

	// 2.5 km: L2600 has no breakpoint >= 2.5, so the weighted sum is
	// undefined even though L850 and L1800 still have coverage.
	dl := radio.DownlinkBitrate(p, tbl, vlib.VectorF{2500})
	if !math.IsNaN(dl[0]) {
		t.Errorf("DownlinkBitrate(2500m) = %v, want NaN", dl[0])
	}
	if got := radio.Classify(dl[0]); got != radio.NoCoverage {
		t.Errorf("Classify = %v, want NoCoverage", got)
	}

	// One bad element must not poison the batch.
	dl = radio.DownlinkBitrate(p, tbl, vlib.VectorF{2500, 1500})
	if math.IsNaN(dl[1]) {
		t.Error("valid element contaminated by unserviceable neighbor")
	}
}

func TestNonBusyHourUserBitrate(t *testing.T) {
	p := scenarioParams()
	got := radio.NonBusyHourUserBitrate(p, 2.0)
	want := 2.0 / 30.4 / 10 * 15 / 100 / 60 / 60 * 8589934592 / 1000
	if !almost(got, want) {
		t.Errorf("NonBusyHourUserBitrate(2GB) = %v, want %v", got, want)
	}
}

func TestPopulationBitrateDemand(t *testing.T) {
	p := scenarioParams()
	got := radio.PopulationBitrateDemand(p, 10, vlib.VectorF{300})
	// 10 kbps * 300 * 100% subscriptions * 50% share / 3 sectors.
	if !almost(got[0], 500) {
		t.Errorf("PopulationBitrateDemand = %v, want 500", got[0])
	}
}

func TestBroadcasting(t *testing.T) {
	u, err := radio.RBUtilization(vlib.VectorF{100}, vlib.VectorF{10, 20, 50})
	if err != nil {
		t.Fatal(err)
	}
	want := vlib.VectorF{10, 5, 2}
	for i := range want {
		if !almost(u[i], want[i]) {
			t.Errorf("RBUtilization[%d] = %v, want %v", i, u[i], want[i])
		}
	}

	av, err := radio.AvailableCapacity(vlib.VectorF{60}, u)
	if err != nil {
		t.Fatal(err)
	}
	if !almost(av[0], 50) || !almost(av[2], 58) {
		t.Errorf("AvailableCapacity = %v", av)
	}

	ok, err := radio.SufficiencyCheck(av, vlib.VectorF{55})
	if err != nil {
		t.Fatal(err)
	}
	if ok[0] || !ok[1] || !ok[2] {
		t.Errorf("SufficiencyCheck = %v, want [false true true]", ok)
	}
}

func TestBroadcastSizeMismatch(t *testing.T) {
	if _, err := radio.RBUtilization(vlib.VectorF{1, 2}, vlib.VectorF{1, 2, 3}); err == nil {
		t.Error("RBUtilization accepted mismatched sizes")
	}
	if _, err := radio.AvailableCapacity(vlib.VectorF{1, 2}, vlib.VectorF{1, 2, 3}); err == nil {
		t.Error("AvailableCapacity accepted mismatched sizes")
	}
	if _, err := radio.SufficiencyCheck(vlib.VectorF{1, 2}, vlib.VectorF{1, 2, 3}); err == nil {
		t.Error("SufficiencyCheck accepted mismatched sizes")
	}
}

func TestAvailableCapacityMayGoNegative(t *testing.T) {
	av, err := radio.AvailableCapacity(vlib.VectorF{60}, vlib.VectorF{90})
	if err != nil {
		t.Fatal(err)
	}
	if av[0] != -30 {
		t.Errorf("AvailableCapacity = %v, want -30 (not clamped)", av[0])
	}
}

func TestValidate(t *testing.T) {
	good := scenarioParams()
	if err := good.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	cases := map[string]func(*radio.Params){
		"zero bandwidth":   func(p *radio.Params) { p.BwL850, p.BwL1800, p.BwL2600 = 0, 0, 0 },
		"cco 100":          func(p *radio.Params) { p.CCO = 100 },
		"bad multiplier":   func(p *radio.Params) { p.RBNumMultiplier = 0 },
		"uneven step":      func(p *radio.Params) { p.RadiusStep = 700 },
		"inverted range":   func(p *radio.Params) { p.MinRadius, p.MaxRadius = 3000, 1000 },
		"no sectors":       func(p *radio.Params) { p.SectorsPerSite = 0 },
		"no target":        func(p *radio.Params) { p.DlThroughputTarget = 0 },
		"too few segments": func(p *radio.Params) { p.AnglesNum = 2 },
	}
	for name, mutate := range cases {
		p := scenarioParams()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: Validate accepted bad config", name)
		}
	}
}

func TestRadiusSteps(t *testing.T) {
	p := scenarioParams()
	steps := p.RadiusSteps()
	want := []float64{1000, 2000, 3000}
	if len(steps) != len(want) {
		t.Fatalf("RadiusSteps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("RadiusSteps[%d] = %v, want %v", i, steps[i], want[i])
		}
	}

	// A step that is not exactly representable must not drop the final
	// label to accumulated rounding.
	p.MinRadius, p.MaxRadius, p.RadiusStep = 0.2, 1.5, 0.1
	steps = p.RadiusSteps()
	if len(steps) != 14 || steps[13] != 1.5 {
		t.Errorf("RadiusSteps = %v, want 14 labels ending at 1.5", steps)
	}
}
