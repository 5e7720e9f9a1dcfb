package analysis

import (
	"sort"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
)

// Station is one entry of a canonical station order. ID is the
// parent-normalized stop id.
type Station struct {
	ID   string
	Name string
}

// Branch describes one terminal group of a (route, direction, service)
// triple: the trips sharing a final stop, with the group's most complete
// trip as its reference pattern.
type Branch struct {
	TerminalID   string
	TerminalName string
	TripCount    int
	StopCount    int // stop count of the reference trip
	TripIDs      []string
	RefTripID    string
}

// branchPrecedence is the display-order policy for branches: branches with
// more trips come first (full-time service before part-time), and among
// equally served branches the shorter one comes first. Terminal id breaks
// any remaining tie so the order is total.
func branchPrecedence(a, b Branch) bool {
	if a.TripCount != b.TripCount {
		return a.TripCount > b.TripCount
	}
	if a.StopCount != b.StopCount {
		return a.StopCount < b.StopCount
	}
	return a.TerminalID < b.TerminalID
}

// Branches groups the triple's trips by terminal and returns the groups in
// branchPrecedence order. A triple with no trips returns nil.
func Branches(ix *gtfs.Index, routeID, directionID, serviceID string) []Branch {
	trips := ix.TripsFor(routeID, directionID, serviceID)
	if len(trips) == 0 {
		return nil
	}
	groups := map[string][]string{}
	for _, t := range trips {
		term, ok := ix.Terminal(t.ID)
		if !ok {
			continue
		}
		groups[term.StopID] = append(groups[term.StopID], t.ID)
	}
	branches := make([]Branch, 0, len(groups))
	for termID, tripIDs := range groups {
		sort.Strings(tripIDs)
		b := Branch{
			TerminalID:   termID,
			TerminalName: ix.StopName(termID),
			TripCount:    len(tripIDs),
			TripIDs:      tripIDs,
		}
		for _, id := range tripIDs {
			if n := len(ix.StopTimesFor(id)); n > b.StopCount {
				b.StopCount = n
				b.RefTripID = id
			}
		}
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branchPrecedence(branches[i], branches[j]) })
	return branches
}

// BranchPoint locates the last stop common to every branch's reference
// trip, comparing parent-normalized ids. The position is taken from the
// first branch's reference trip. Returns false when the branches share no
// stop, or when there are fewer than two branches.
func BranchPoint(ix *gtfs.Index, branches []Branch) (Station, bool) {
	if len(branches) < 2 {
		return Station{}, false
	}
	common := map[string]bool{}
	for _, id := range ix.StopSequence(branches[0].RefTripID) {
		common[ix.ParentID(id)] = true
	}
	for _, b := range branches[1:] {
		onBranch := map[string]bool{}
		for _, id := range ix.StopSequence(b.RefTripID) {
			onBranch[ix.ParentID(id)] = true
		}
		for id := range common {
			if !onBranch[id] {
				delete(common, id)
			}
		}
	}
	var last Station
	found := false
	for _, id := range ix.StopSequence(branches[0].RefTripID) {
		if pid := ix.ParentID(id); common[pid] {
			last = Station{ID: pid, Name: stationName(ix, pid, id)}
			found = true
		}
	}
	return last, found
}

// StationOrder produces the canonical, deduplicated station ordering of a
// (route, direction, service) triple: the trunk up to the branch point,
// then each branch's exclusive stops in branchPrecedence order. An unknown
// or tripless triple yields an empty order.
func StationOrder(ix *gtfs.Index, routeID, directionID, serviceID string) []Station {
	branches := Branches(ix, routeID, directionID, serviceID)
	if len(branches) == 0 {
		return nil
	}
	if len(branches) == 1 {
		return dedupSequence(ix, ix.StopSequence(branches[0].RefTripID), map[string]bool{})
	}

	seen := map[string]bool{}
	var order []Station
	bp, hasBP := BranchPoint(ix, branches)
	if hasBP {
		// Trunk from the first branch's reference, through the branch point.
		for _, id := range ix.StopSequence(branches[0].RefTripID) {
			pid := ix.ParentID(id)
			if !seen[pid] {
				seen[pid] = true
				order = append(order, Station{ID: pid, Name: stationName(ix, pid, id)})
			}
			if pid == bp.ID {
				break
			}
		}
	}
	for _, b := range branches {
		order = append(order, dedupSequence(ix, ix.StopSequence(b.RefTripID), seen)...)
	}
	return order
}

// MergeStationOrders splices stops exclusive to other into base, each
// placed immediately after its nearest predecessor shared with base. Some
// platforms serve only one direction of travel, so merging both directions
// yields the full rider-facing station list.
func MergeStationOrders(base, other []Station) []Station {
	pos := map[string]int{}
	merged := make([]Station, len(base))
	copy(merged, base)
	for i, s := range merged {
		pos[s.ID] = i
	}
	lastShared := -1
	for _, s := range other {
		if at, ok := pos[s.ID]; ok {
			lastShared = at
			continue
		}
		insertAt := lastShared + 1
		merged = append(merged, Station{})
		copy(merged[insertAt+1:], merged[insertAt:])
		merged[insertAt] = s
		for i := insertAt; i < len(merged); i++ {
			pos[merged[i].ID] = i
		}
		lastShared = insertAt
	}
	return merged
}

func dedupSequence(ix *gtfs.Index, stopIDs []string, seen map[string]bool) []Station {
	var out []Station
	for _, id := range stopIDs {
		pid := ix.ParentID(id)
		if seen[pid] {
			continue
		}
		seen[pid] = true
		out = append(out, Station{ID: pid, Name: stationName(ix, pid, id)})
	}
	return out
}

// stationName prefers the parent station's name, falling back to the
// platform's own name when the feed has no parent record.
func stationName(ix *gtfs.Index, parentID, rawID string) string {
	if s, ok := ix.Stop(parentID); ok && s.Name != "" {
		return s.Name
	}
	return ix.StopName(rawID)
}
