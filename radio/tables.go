package radio

import (
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/jszwec/csvutil"
)

// Band names the three LTE spectrum groups of the model.
type Band string

const (
	BandL850  Band = "L850"
	BandL1800 Band = "L1800"
	BandL2600 Band = "L2600"
)

// Bands lists the bands in table order; weights and break tables follow
// this order everywhere.
var Bands = [3]Band{BandL850, BandL1800, BandL2600}

// BreakTable is one band's step function: DistanceKm is ascending and
// BitrateKbps[i] is achievable up to DistanceKm[i].
type BreakTable struct {
	DistanceKm  []float64
	BitrateKbps []float64
}

// BandTables holds the per-deployment break tables of the three bands.
type BandTables struct {
	L850  BreakTable
	L1800 BreakTable
	L2600 BreakTable
}

// Table returns the break table of band b.
func (t BandTables) Table(b Band) BreakTable {
	switch b {
	case BandL850:
		return t.L850
	case BandL1800:
		return t.L1800
	default:
		return t.L2600
	}
}

// Validate checks monotonic breakpoints and equal row counts per band.
func (t BandTables) Validate() error {
	for _, b := range Bands {
		bt := t.Table(b)
		if len(bt.DistanceKm) == 0 {
			return fmt.Errorf("radio: band %s break table is empty", b)
		}
		if len(bt.DistanceKm) != len(bt.BitrateKbps) {
			return fmt.Errorf("radio: band %s has %d breakpoints but %d bitrates",
				b, len(bt.DistanceKm), len(bt.BitrateKbps))
		}
		if !sort.Float64sAreSorted(bt.DistanceKm) {
			return fmt.Errorf("radio: band %s breakpoints are not ascending", b)
		}
	}
	return nil
}

// bandRow is one CSV row of the reference carrier-bandwidth tables,
// one column per band.
type bandRow struct {
	L850  float64 `csv:"L850"`
	L1800 float64 `csv:"L1800"`
	L2600 float64 `csv:"L2600"`
}

// LoadBandTables reads the two reference CSVs: breakpoint distances in
// kilometers and achievable downlink bitrates in kbps. Row i of the
// bitrate file corresponds to row i of the distance file.
func LoadBandTables(distanceFile, bitrateFile string) (BandTables, error) {
	var t BandTables
	dist, err := readBandRows(distanceFile)
	if err != nil {
		return t, fmt.Errorf("radio: loading bwdistance table: %v", err)
	}
	br, err := readBandRows(bitrateFile)
	if err != nil {
		return t, fmt.Errorf("radio: loading bwdlachievbr table: %v", err)
	}
	if len(dist) != len(br) {
		return t, fmt.Errorf("radio: distance table has %d rows, bitrate table %d", len(dist), len(br))
	}
	for i := range dist {
		t.L850.DistanceKm = append(t.L850.DistanceKm, dist[i].L850)
		t.L1800.DistanceKm = append(t.L1800.DistanceKm, dist[i].L1800)
		t.L2600.DistanceKm = append(t.L2600.DistanceKm, dist[i].L2600)
		t.L850.BitrateKbps = append(t.L850.BitrateKbps, br[i].L850)
		t.L1800.BitrateKbps = append(t.L1800.BitrateKbps, br[i].L1800)
		t.L2600.BitrateKbps = append(t.L2600.BitrateKbps, br[i].L2600)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func readBandRows(fname string) ([]bandRow, error) {
	raw, err := ioutil.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var rows []bandRow
	if err := csvutil.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
