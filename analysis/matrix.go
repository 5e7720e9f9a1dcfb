package analysis

import (
	"math"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/regions"
	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

// Matrix is a square travel-time table over a station set. Minutes is
// indexed [destination][origin] (columns are origins), the diagonal is
// exactly zero, and pairs never observed together on a trip are NaN.
type Matrix struct {
	Stations []Station
	Minutes  [][]float64
}

// Defined reports whether the cell holds an observed value.
func (m Matrix) Defined(dest, origin int) bool {
	return !math.IsNaN(m.Minutes[dest][origin])
}

// MatrixOptions restricts which observations contribute to the matrix.
// When HourRange is set (inclusive, hours 0-23 after midnight wrap), a stop
// pair counts only if the origin's departure hour falls inside the range,
// and stations left with zero observations are dropped from the result.
type MatrixOptions struct {
	HourRange *[2]int
}

// TravelTimeMatrix averages observed travel minutes between every ordered
// station pair served together on some trip of the triple. Elapsed time is
// computed on un-normalized second counts, so overnight trips contribute
// correct durations.
func TravelTimeMatrix(ix *gtfs.Index, routeID, directionID, serviceID string, order []Station, opts MatrixOptions) Matrix {
	n := len(order)
	idx := make(map[string]int, n)
	for i, s := range order {
		idx[s.ID] = i
	}
	sum := make([][]float64, n)
	count := make([][]int, n)
	for i := range sum {
		sum[i] = make([]float64, n)
		count[i] = make([]int, n)
	}

	type call struct {
		station int
		depSec  int
		arrSec  int
	}
	for _, t := range ix.TripsFor(routeID, directionID, serviceID) {
		var calls []call
		seen := map[int]bool{}
		for _, st := range ix.StopTimesFor(t.ID) {
			i, ok := idx[ix.ParentID(st.StopID)]
			if !ok || seen[i] {
				continue
			}
			seen[i] = true
			calls = append(calls, call{station: i, depSec: st.DepartureSec, arrSec: st.ArrivalSec})
		}
		for a := 0; a < len(calls); a++ {
			if opts.HourRange != nil && !hourInRange(utils.HourOf(calls[a].depSec), *opts.HourRange) {
				continue
			}
			for b := a + 1; b < len(calls); b++ {
				o, d := calls[a].station, calls[b].station
				sum[o][d] += utils.ElapsedMinutes(calls[a].depSec, calls[b].arrSec)
				count[o][d]++
			}
		}
	}

	observed := make([]int, n)
	for o := 0; o < n; o++ {
		for d := 0; d < n; d++ {
			observed[o] += count[o][d]
			observed[d] += count[o][d]
		}
	}
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if opts.HourRange == nil || observed[i] > 0 {
			keep = append(keep, i)
		}
	}

	m := Matrix{Stations: make([]Station, len(keep)), Minutes: make([][]float64, len(keep))}
	for di, dOld := range keep {
		m.Stations[di] = order[dOld]
		row := make([]float64, len(keep))
		for oi, oOld := range keep {
			switch {
			case dOld == oOld:
				row[oi] = 0
			case count[oOld][dOld] > 0:
				row[oi] = sum[oOld][dOld] / float64(count[oOld][dOld])
			default:
				row[oi] = math.NaN()
			}
		}
		m.Minutes[di] = row
	}
	return m
}

// CombineBidirectional merges two single-direction matrices into one
// square table. After the origin/destination transpose the two directions
// occupy disjoint triangles, so undefined cells of base are filled from
// other. Matrices over different station sets are first re-indexed onto
// their union, keeping base's order and appending other's exclusive
// stations.
func CombineBidirectional(base, other Matrix) Matrix {
	union := make([]Station, len(base.Stations))
	copy(union, base.Stations)
	inBase := map[string]bool{}
	for _, s := range base.Stations {
		inBase[s.ID] = true
	}
	for _, s := range other.Stations {
		if !inBase[s.ID] {
			union = append(union, s)
		}
	}

	baseIdx := indexOf(base.Stations)
	otherIdx := indexOf(other.Stations)
	n := len(union)
	m := Matrix{Stations: union, Minutes: make([][]float64, n)}
	for d := 0; d < n; d++ {
		row := make([]float64, n)
		for o := 0; o < n; o++ {
			if d == o {
				row[o] = 0
				continue
			}
			row[o] = math.NaN()
			if bd, ok1 := baseIdx[union[d].ID]; ok1 {
				if bo, ok2 := baseIdx[union[o].ID]; ok2 && base.Defined(bd, bo) {
					row[o] = base.Minutes[bd][bo]
				}
			}
			if math.IsNaN(row[o]) {
				if od, ok1 := otherIdx[union[d].ID]; ok1 {
					if oo, ok2 := otherIdx[union[o].ID]; ok2 && other.Defined(od, oo) {
						row[o] = other.Minutes[od][oo]
					}
				}
			}
		}
		m.Minutes[d] = row
	}
	return m
}

// FilterOptions selects which stations of an order survive the
// express-serving filter. A station is kept when its region is listed in
// AllStopsRegions, when its region is not listed in ExpressRegions, or when
// at least MinTripShare of the triple's trips call there.
type FilterOptions struct {
	ExpressRegions  []string
	AllStopsRegions []string
	// MinTripShare is the share of trips that must call at a stop for it to
	// count as express-serving. Zero means the default of one half. The
	// value is tunable because it papers over approximate region
	// boundaries; corrected boundaries may want a different share.
	MinTripShare float64
}

// FilterStationOrder applies the express-serving stop filter to a station
// order, producing the "express view" of a route: all stops in some
// regions, only well-served stops in others.
func FilterStationOrder(ix *gtfs.Index, cls *regions.Classifier, routeID, directionID, serviceID string, order []Station, opts FilterOptions) []Station {
	share := opts.MinTripShare
	if share == 0 {
		share = 0.5
	}
	express := toSet(opts.ExpressRegions)
	allStops := toSet(opts.AllStopsRegions)

	trips := ix.TripsFor(routeID, directionID, serviceID)
	callCounts := map[string]int{}
	for _, t := range trips {
		seen := map[string]bool{}
		for _, id := range ix.StopSequence(t.ID) {
			pid := ix.ParentID(id)
			if !seen[pid] {
				seen[pid] = true
				callCounts[pid]++
			}
		}
	}

	var out []Station
	for _, s := range order {
		region := regionOfStop(ix, cls, s.ID)
		switch {
		case allStops[region]:
			out = append(out, s)
		case !express[region]:
			out = append(out, s)
		case len(trips) > 0 && float64(callCounts[s.ID]) >= share*float64(len(trips)):
			out = append(out, s)
		}
	}
	return out
}

func hourInRange(h int, r [2]int) bool {
	return h >= r[0] && h <= r[1]
}

func indexOf(stations []Station) map[string]int {
	m := make(map[string]int, len(stations))
	for i, s := range stations {
		m[s.ID] = i
	}
	return m
}

func toSet(names []string) map[string]bool {
	s := map[string]bool{}
	for _, n := range names {
		s[n] = true
	}
	return s
}
