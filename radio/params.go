// Package radio implements the closed-form LTE capacity model: band
// break-table bitrates, resource-block budgets and the demand formulas
// evaluated over them. All functions are pure and vectorized; batches
// are vlib.VectorF values.
package radio

import (
	"fmt"
	"math"
)

// Unit-conversion constants of the monthly-volume chain.
const (
	DaysPerMonth = 30.4
	MinPerHour   = 60
	SecPerMin    = 60
	BitsInGbyte  = 8589934592 // 1024^3 * 8
	BitsInKbit   = 1000
	KbitsPerMbit = 1024
	MetersPerKm  = 1000.0
)

// Params is the immutable configuration of one capacity run. It is
// passed by value into every formula; nothing in this package mutates
// or retains it.
type Params struct {
	// Spectrum bandwidth per band in MHz.
	BwL850  float64 `mapstructure:"bw_l850"`
	BwL1800 float64 `mapstructure:"bw_l1800"`
	BwL2600 float64 `mapstructure:"bw_l2600"`

	CCO             float64 `mapstructure:"cco"`               // control channel overhead, %
	SectorsPerSite  int     `mapstructure:"sectors_per_site"`  // sectors per cell site
	RBNumMultiplier float64 `mapstructure:"rb_num_multiplier"` // RBs per MHz of bandwidth

	MinRadius  float64 `mapstructure:"min_radius"`  // meters
	MaxRadius  float64 `mapstructure:"max_radius"`  // meters
	RadiusStep float64 `mapstructure:"radius_step"` // meters

	AnglesNum     int     `mapstructure:"angles_num"`     // buffer circle segments
	RotationAngle float64 `mapstructure:"rotation_angle"` // buffer rotation, degrees

	DlThroughputTarget float64 `mapstructure:"dlthtarg"`   // Mbps
	MbbSubscr          float64 `mapstructure:"mbb_subscr"` // subscriptions per 100 people
	OpPopShare         float64 `mapstructure:"oppopshare"` // operator population share, %
	NonBHU             float64 `mapstructure:"nonbhu"`     // non-busy-hour usage, %
	NBHours            float64 `mapstructure:"nbhours"`    // non-busy hours per day
}

// DefaultParams mirrors the deployment defaults of the reference
// toolkit. Radius range and bandwidths still have to be set.
func DefaultParams() Params {
	return Params{
		SectorsPerSite:  3,
		RBNumMultiplier: 5,
		AnglesNum:       360,
		RotationAngle:   0,
		NBHours:         10,
		OpPopShare:      50,
	}
}

// Bw returns the total bandwidth in MHz over the three bands.
func (p Params) Bw() float64 {
	return p.BwL850 + p.BwL1800 + p.BwL2600
}

// NRB returns the number of resource blocks of the full carrier.
func (p Params) NRB() float64 {
	return p.Bw() * p.RBNumMultiplier
}

// AvRBPDSCH returns the average number of resource blocks available
// for PDSCH once the control-channel overhead is removed.
func (p Params) AvRBPDSCH() float64 {
	return (100 - p.CCO) / p.NRB() * 100
}

// BandWeights returns the bandwidth share of each band in table order
// (L850, L1800, L2600).
func (p Params) BandWeights() [3]float64 {
	bw := p.Bw()
	return [3]float64{p.BwL850 / bw, p.BwL1800 / bw, p.BwL2600 / bw}
}

// RadiusSteps returns the ring radius labels min, min+step, ..., max.
// Labels are generated by index so accumulated floating-point error in
// the step can never drop the final label.
func (p Params) RadiusSteps() []float64 {
	n := int(math.Round((p.MaxRadius-p.MinRadius)/p.RadiusStep)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = p.MinRadius + float64(i)*p.RadiusStep
	}
	return out
}

// Validate rejects configurations the model cannot run on. It is called
// once at construction; formulas assume a validated Params.
func (p Params) Validate() error {
	if p.Bw() <= 0 {
		return fmt.Errorf("radio: total bandwidth must be positive, got %v MHz", p.Bw())
	}
	if p.RBNumMultiplier <= 0 {
		return fmt.Errorf("radio: rb_num_multiplier must be positive, got %v", p.RBNumMultiplier)
	}
	if p.CCO >= 100 || p.CCO < 0 {
		return fmt.Errorf("radio: cco must be in [0,100), got %v", p.CCO)
	}
	if p.SectorsPerSite <= 0 {
		return fmt.Errorf("radio: sectors_per_site must be positive, got %d", p.SectorsPerSite)
	}
	if p.RadiusStep <= 0 || p.MaxRadius < p.MinRadius || p.MinRadius <= 0 {
		return fmt.Errorf("radio: bad radius range [%v,%v] step %v", p.MinRadius, p.MaxRadius, p.RadiusStep)
	}
	span := p.MaxRadius - p.MinRadius
	steps := span / p.RadiusStep
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return fmt.Errorf("radio: radius_step %v does not divide range [%v,%v]", p.RadiusStep, p.MinRadius, p.MaxRadius)
	}
	if p.AnglesNum < 3 {
		return fmt.Errorf("radio: angles_num must be at least 3, got %d", p.AnglesNum)
	}
	if p.DlThroughputTarget <= 0 {
		return fmt.Errorf("radio: dlthtarg must be positive, got %v", p.DlThroughputTarget)
	}
	if p.NBHours <= 0 {
		return fmt.Errorf("radio: nbhours must be positive, got %v", p.NBHours)
	}
	return nil
}
