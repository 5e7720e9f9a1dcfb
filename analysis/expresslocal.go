package analysis

import (
	"sort"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/regions"
	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

// Pattern labels for a trip within one region.
const (
	PatternLocal   = "local"
	PatternExpress = "express"
)

// TripClassification is one trip's express/local verdict per region. A
// region the trip does not operate in is absent from Patterns.
type TripClassification struct {
	TripID         string
	BranchTerminal string // terminal name when the triple is branched
	FirstDeparture string
	Patterns       map[string]string // region -> PatternLocal | PatternExpress
}

// Classification is the per-trip, per-region table for one
// (route, direction, service) triple.
type Classification struct {
	RouteID     string
	DirectionID string
	ServiceID   string
	Regions     []string // regions present in any reference pattern, stable order
	Trips       []TripClassification
}

// Classify builds the express/local table for a triple. Each branch
// terminal contributes its own reference pattern (the most complete trip
// ending there); a trip is compared region by region against its branch's
// reference:
//
//	trip makes no reference stops there -> region absent
//	trip makes every reference stop     -> local
//	trip makes two or more              -> express (it skips interior stops)
//	trip makes exactly one              -> local (short turn, not express)
//
// A triple with no trips yields an empty table.
func Classify(ix *gtfs.Index, cls *regions.Classifier, routeID, directionID, serviceID string) Classification {
	out := Classification{RouteID: routeID, DirectionID: directionID, ServiceID: serviceID}
	branches := Branches(ix, routeID, directionID, serviceID)
	if len(branches) == 0 {
		return out
	}
	branched := len(branches) > 1

	regionSeen := map[string]bool{}
	for _, b := range branches {
		// Reference stops grouped by region, parent-normalized.
		refByRegion := map[string]map[string]bool{}
		for _, id := range ix.StopSequence(b.RefTripID) {
			region := regionOfStop(ix, cls, id)
			if region == "" {
				continue
			}
			if refByRegion[region] == nil {
				refByRegion[region] = map[string]bool{}
			}
			refByRegion[region][ix.ParentID(id)] = true
			if !regionSeen[region] {
				regionSeen[region] = true
				out.Regions = append(out.Regions, region)
			}
		}

		for _, tripID := range b.TripIDs {
			tc := TripClassification{TripID: tripID, Patterns: map[string]string{}}
			if branched {
				tc.BranchTerminal = b.TerminalName
			}
			if st, ok := ix.Origin(tripID); ok {
				tc.FirstDeparture = st.Departure
			}
			tripStops := map[string]bool{}
			for _, id := range ix.StopSequence(tripID) {
				tripStops[ix.ParentID(id)] = true
			}
			for region, ref := range refByRegion {
				made := 0
				for id := range ref {
					if tripStops[id] {
						made++
					}
				}
				switch {
				case made == 0:
					// Trip does not operate in this region.
				case made == len(ref):
					tc.Patterns[region] = PatternLocal
				case made >= 2:
					tc.Patterns[region] = PatternExpress
				default:
					tc.Patterns[region] = PatternLocal
				}
			}
			out.Trips = append(out.Trips, tc)
		}
	}
	sort.Strings(out.Regions)
	sort.Slice(out.Trips, func(i, j int) bool { return out.Trips[i].TripID < out.Trips[j].TripID })
	return out
}

// ExpressWindow derives the first and last departure of trips classified
// express in the given region, or in any region when region is empty.
// ok is false when the triple has no express service there.
func ExpressWindow(c Classification, region string) (first, last string, ok bool) {
	firstSec, lastSec := 0, 0
	for _, tc := range c.Trips {
		express := false
		if region == "" {
			for _, p := range tc.Patterns {
				if p == PatternExpress {
					express = true
					break
				}
			}
		} else {
			express = tc.Patterns[region] == PatternExpress
		}
		if !express || tc.FirstDeparture == "" {
			continue
		}
		sec, err := utils.ParseClock(tc.FirstDeparture)
		if err != nil {
			continue
		}
		if !ok || sec < firstSec {
			firstSec, first = sec, tc.FirstDeparture
		}
		if !ok || sec > lastSec {
			lastSec, last = sec, tc.FirstDeparture
		}
		ok = true
	}
	return first, last, ok
}

// regionOfStop classifies a stop's coordinates, falling back to the parent
// station's coordinates for non-physical platform records.
func regionOfStop(ix *gtfs.Index, cls *regions.Classifier, stopID string) string {
	if s, ok := ix.Stop(stopID); ok && s.HasCoord {
		return cls.RegionOf(s.Lat, s.Lon)
	}
	if p, ok := ix.Stop(ix.ParentID(stopID)); ok && p.HasCoord {
		return cls.RegionOf(p.Lat, p.Lon)
	}
	return ""
}
