// Package visibility resolves, for every (point, site) pair the
// aggregator assigned, a ground distance and a line-of-sight flag. The
// geometric line-of-sight computation itself lives behind the Oracle
// contract; this package decides when to invoke it, fans the calls out
// and merges the results deterministically.
package visibility

import (
	"math"
	"sync"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/wiless/capacity/entities"
)

// Oracle performs one point-to-site line-of-sight analysis over terrain
// data. Implementations must tolerate concurrent calls.
type Oracle interface {
	PairAnalysis(poi entities.PointOfInterest, site entities.CellSite) (groundDistance float64, isVisible bool, err error)
}

// Mode is the visibility decision for one point.
type Mode int

const (
	// ModeSkip leaves the point unresolved (no assigned site).
	ModeSkip Mode = iota
	// ModeLookup reuses a precomputed rank-1 pair.
	ModeLookup
	// ModeOracle invokes the live oracle.
	ModeOracle
)

// Dispatch maps (assignment status, precomputed-data availability) to
// the action taken for a point. Precomputed data disables the oracle
// for the whole run, never per point.
func Dispatch(assigned, havePrecomputed bool) Mode {
	switch {
	case havePrecomputed:
		return ModeLookup
	case assigned:
		return ModeOracle
	default:
		return ModeSkip
	}
}

// Result is the resolved visibility of one point. SiteID is empty when
// the point has no serving site; GroundDistance is NaN then.
type Result struct {
	POIID          string
	SiteID         string
	Assigned       bool
	GroundDistance float64
	IsVisible      bool
}

// Resolver fans visibility analyses out over the assigned pairs.
// Workers bounds the concurrent oracle calls; zero means serial.
// Progress output is advisory and changes nothing when disabled.
type Resolver struct {
	Oracle       Oracle
	Workers      int
	ShowProgress bool

	// AllowedRadioTypes restricts which site tags may be analyzed
	// live. Empty allows every tag.
	AllowedRadioTypes []string
}

// ResolveLive runs the oracle once per assigned point. assignment maps
// each POI index to a site index or -1; unassigned points get an
// unresolved Result without an oracle call. Output order follows POI
// input order regardless of worker count.
func (r *Resolver) ResolveLive(pois []entities.PointOfInterest, sites []entities.CellSite, assignment []int) []Result {
	out := make([]Result, len(pois))
	jobs := make([]int, 0, len(pois))
	for i, poi := range pois {
		si := assignment[i]
		if Dispatch(si >= 0, false) != ModeOracle {
			out[i] = unresolved(poi.ID)
			continue
		}
		if !r.radioTypeAllowed(sites[si].RadioType) {
			log.Debugf("visibility: poi %s: site %s radio type %q not analyzed", poi.ID, sites[si].ID, sites[si].RadioType)
			out[i] = unresolved(poi.ID)
			continue
		}
		jobs = append(jobs, i)
	}

	var bar *progressbar.ProgressBar
	if r.ShowProgress {
		bar = progressbar.Default(int64(len(jobs)), "Visibility Analysis")
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	ch := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				poi := pois[i]
				site := sites[assignment[i]]
				d, vis, err := r.Oracle.PairAnalysis(poi, site)
				if err != nil {
					log.Infof("visibility: pair (%s,%s): %v", poi.ID, site.ID, err)
					out[i] = unresolved(poi.ID)
				} else {
					out[i] = Result{POIID: poi.ID, SiteID: site.ID, Assigned: true, GroundDistance: d, IsVisible: vis}
				}
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}
	for _, i := range jobs {
		ch <- i
	}
	close(ch)
	wg.Wait()
	return out
}

// ResolvePrecomputed joins the rank-1 rows of a supplied visibility
// table by POI identifier. No oracle call happens; points without a
// rank-1 row stay unresolved.
func (r *Resolver) ResolvePrecomputed(pois []entities.PointOfInterest, pairs *entities.VisibilityPairCollection) []Result {
	rank1 := pairs.Rank1ByPOI()
	out := make([]Result, len(pois))
	for i, poi := range pois {
		p, ok := rank1[poi.ID]
		if !ok {
			out[i] = unresolved(poi.ID)
			continue
		}
		out[i] = Result{
			POIID:          poi.ID,
			SiteID:         p.SiteID,
			Assigned:       true,
			GroundDistance: p.GroundDistance,
			IsVisible:      p.IsVisible,
		}
	}
	return out
}

func (r *Resolver) radioTypeAllowed(tag string) bool {
	if len(r.AllowedRadioTypes) == 0 {
		return true
	}
	for _, t := range r.AllowedRadioTypes {
		if t == tag {
			return true
		}
	}
	return false
}

func unresolved(poiID string) Result {
	return Result{POIID: poiID, GroundDistance: math.NaN()}
}
