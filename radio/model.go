package radio

import (
	"fmt"
	"math"

	"github.com/wiless/vlib"
)

// Unserviceable distances resolve to IEEE sentinels instead of raising:
// NaN when no break table row covers a distance, +Inf for a resource
// block requirement beyond the configured maximum radius. Classify maps
// a figure back to its tag so aggregation can never read a sentinel as
// a real zero.

// Serviceability tags one per-distance figure.
type Serviceability int

const (
	// Served marks a concrete, usable figure.
	Served Serviceability = iota
	// NoCoverage marks a distance beyond every breakpoint of a band.
	NoCoverage
	// BeyondRadius marks a distance past the maximum analysis radius.
	BeyondRadius
)

var serviceabilityNames = [...]string{"served", "no_coverage", "beyond_radius"}

func (s Serviceability) String() string {
	if int(s) >= len(serviceabilityNames) {
		return "unknown"
	}
	return serviceabilityNames[s]
}

// Classify tags a figure produced by this package.
func Classify(v float64) Serviceability {
	switch {
	case math.IsNaN(v):
		return NoCoverage
	case math.IsInf(v, 1):
		return BeyondRadius
	default:
		return Served
	}
}

// BitrateAtDistance evaluates one band's step function: for each
// distance in km, the bitrate of the first breakpoint >= the distance,
// NaN when the distance exceeds the table range.
func BitrateAtDistance(t BreakTable, distKm vlib.VectorF) vlib.VectorF {
	out := make(vlib.VectorF, len(distKm))
	for i, d := range distKm {
		out[i] = math.NaN()
		for j, brk := range t.DistanceKm {
			if brk >= d {
				out[i] = t.BitrateKbps[j]
				break
			}
		}
	}
	return out
}

// DownlinkBitrate returns the bandwidth-share-weighted downlink bitrate
// in kbps for each distance in meters. A band without coverage at a
// distance makes the whole weighted sum NaN there; missing bands are
// not substituted with zero.
func DownlinkBitrate(p Params, t BandTables, distM vlib.VectorF) vlib.VectorF {
	distKm := make(vlib.VectorF, len(distM))
	for i, d := range distM {
		distKm[i] = d / MetersPerKm
	}
	w := p.BandWeights()
	out := make(vlib.VectorF, len(distKm))
	for bi, b := range Bands {
		br := BitrateAtDistance(t.Table(b), distKm)
		for i := range out {
			out[i] += w[bi] * br[i]
		}
	}
	return out
}

// RequiredRB returns the resource blocks needed to sustain the download
// throughput target at each distance in meters. Distances beyond
// MaxRadius (or undefined) yield +Inf; a bitrate gap yields NaN. The
// comparison d <= MaxRadius is deliberately false for NaN distances,
// which routes unassigned points to +Inf.
func RequiredRB(p Params, t BandTables, distM vlib.VectorF) vlib.VectorF {
	dl := DownlinkBitrate(p, t, distM)
	av := p.AvRBPDSCH()
	out := make(vlib.VectorF, len(distM))
	for i, d := range distM {
		if d <= p.MaxRadius {
			out[i] = p.DlThroughputTarget * KbitsPerMbit / (dl[i] / av)
		} else {
			out[i] = math.Inf(1)
		}
	}
	return out
}

// BitratePerRB returns the bitrate carried by one PDSCH resource block
// at each distance in meters, in kbps.
func BitratePerRB(p Params, t BandTables, distM vlib.VectorF) vlib.VectorF {
	dl := DownlinkBitrate(p, t, distM)
	av := p.AvRBPDSCH()
	out := make(vlib.VectorF, len(dl))
	for i := range dl {
		out[i] = dl[i] / av
	}
	return out
}

// NonBusyHourUserBitrate converts an average monthly user volume in GB
// into the sustained per-user kbps of a non-busy hour.
func NonBusyHourUserBitrate(p Params, monthlyGB float64) float64 {
	return monthlyGB / DaysPerMonth / p.NBHours * p.NonBHU / 100 /
		MinPerHour / SecPerMin * BitsInGbyte / BitsInKbit
}

// PopulationBitrateDemand returns the sector-level bitrate demand in
// kbps of each population figure, given the per-user non-busy-hour
// bitrate.
func PopulationBitrateDemand(p Params, userKbps float64, pop vlib.VectorF) vlib.VectorF {
	out := make(vlib.VectorF, len(pop))
	for i, n := range pop {
		out[i] = userKbps * n * (p.MbbSubscr / 100) * (p.OpPopShare / 100) / float64(p.SectorsPerSite)
	}
	return out
}

// RBUtilization divides bitrate demand by bitrate per resource block.
// demand may be a scalar (length 1) broadcast over perRB.
func RBUtilization(demand, perRB vlib.VectorF) (vlib.VectorF, error) {
	if len(demand) != 1 && len(demand) != len(perRB) {
		return nil, fmt.Errorf("radio: demand must be scalar or match perRB: demand size %d, perRB size %d",
			len(demand), len(perRB))
	}
	out := make(vlib.VectorF, len(perRB))
	for i := range perRB {
		out[i] = at(demand, i) / perRB[i]
	}
	return out, nil
}

// AvailableCapacity subtracts utilized resource blocks from the total.
// total may be a scalar broadcast over utilized. Negative results mark
// over-subscription and are not clamped.
func AvailableCapacity(total, utilized vlib.VectorF) (vlib.VectorF, error) {
	if len(total) != 1 && len(total) != len(utilized) {
		return nil, fmt.Errorf("radio: total must be scalar or match utilized: total size %d, utilized size %d",
			len(total), len(utilized))
	}
	out := make(vlib.VectorF, len(utilized))
	for i := range utilized {
		out[i] = at(total, i) - utilized[i]
	}
	return out, nil
}

// SufficiencyCheck reports available > required element-wise; either
// argument may be a scalar broadcast to the other's length. NaN or +Inf
// on either side makes the check false.
func SufficiencyCheck(available, required vlib.VectorF) ([]bool, error) {
	n := len(available)
	if len(required) > n {
		n = len(required)
	}
	if (len(available) != 1 && len(available) != n) || (len(required) != 1 && len(required) != n) {
		return nil, fmt.Errorf("radio: inputs must match or be scalar: available size %d, required size %d",
			len(available), len(required))
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = at(available, i) > at(required, i)
	}
	return out, nil
}

// at indexes v, replicating a scalar.
func at(v vlib.VectorF, i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}
