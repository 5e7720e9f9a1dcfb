package analysis

import (
	"sort"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

// SkipStopPair names two routes that share a corridor in a skip-stop
// arrangement: the full-time route runs all day, the part-time route only
// during certain hours, and during those hours the two alternate stops.
// ExceptionStops lists, by name, the stops whose omission structurally
// identifies a full-time trip as a skip-stop (express) run; the two
// patterns are visually identical otherwise, so this set is an explicit
// exception list, never inferred.
type SkipStopPair struct {
	FullTimeRoute  string
	PartTimeRoute  string
	ExceptionStops []string
}

// DefaultSkipStopPair is the New York City J/Z arrangement.
func DefaultSkipStopPair() SkipStopPair {
	return SkipStopPair{
		FullTimeRoute:  "J",
		PartTimeRoute:  "Z",
		ExceptionStops: []string{"Hewes St", "Lorimer St", "Flushing Av"},
	}
}

// SkipStopAnalysis partitions a skip-stop corridor's stations and derives
// the part-time route's operating hours.
type SkipStopAnalysis struct {
	Pair           SkipStopPair
	OperatingHours []int // hours at which any part-time trip departs, sorted
	Shared         []Station
	FullTimeOnly   []Station
	PartTimeOnly   []Station
	ExpressTripIDs []string // full-time trips omitting every exception stop
}

// AnalyzeSkipStop runs the skip-stop special case for one direction and
// service pattern. The part-time route's hours come straight from its trip
// departures; no classification heuristic is involved.
func AnalyzeSkipStop(ix *gtfs.Index, pair SkipStopPair, directionID, serviceID string) SkipStopAnalysis {
	out := SkipStopAnalysis{Pair: pair}

	hours := map[int]bool{}
	for _, t := range ix.TripsFor(pair.PartTimeRoute, directionID, serviceID) {
		if st, ok := ix.Origin(t.ID); ok {
			hours[utils.HourOf(st.DepartureSec)] = true
		}
	}
	for h := range hours {
		out.OperatingHours = append(out.OperatingHours, h)
	}
	sort.Ints(out.OperatingHours)

	fullOrder := StationOrder(ix, pair.FullTimeRoute, directionID, serviceID)
	partOrder := StationOrder(ix, pair.PartTimeRoute, directionID, serviceID)
	partSet := map[string]bool{}
	for _, s := range partOrder {
		partSet[s.ID] = true
	}
	fullSet := map[string]bool{}
	for _, s := range fullOrder {
		fullSet[s.ID] = true
	}
	for _, s := range fullOrder {
		if partSet[s.ID] {
			out.Shared = append(out.Shared, s)
		} else {
			out.FullTimeOnly = append(out.FullTimeOnly, s)
		}
	}
	for _, s := range partOrder {
		if !fullSet[s.ID] {
			out.PartTimeOnly = append(out.PartTimeOnly, s)
		}
	}

	exceptions := map[string]bool{}
	for _, name := range pair.ExceptionStops {
		exceptions[name] = true
	}
	for _, t := range ix.TripsFor(pair.FullTimeRoute, directionID, serviceID) {
		skipsAll := true
		for _, id := range ix.StopSequence(t.ID) {
			if exceptions[ix.StopName(id)] || exceptions[ix.StopName(ix.ParentID(id))] {
				skipsAll = false
				break
			}
		}
		if skipsAll {
			out.ExpressTripIDs = append(out.ExpressTripIDs, t.ID)
		}
	}
	sort.Strings(out.ExpressTripIDs)
	return out
}
