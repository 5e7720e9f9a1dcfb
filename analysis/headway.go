package analysis

import (
	"sort"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

// HeadwayOptions narrows which departures contribute to a headway table.
type HeadwayOptions struct {
	DirectionID string
	ServiceID   string
	// StopID measures headways at a specific stop (parent-normalized);
	// empty measures at each trip's first stop.
	StopID string
	// IncludeBoundaryGaps keeps the first and last gap of the whole
	// period. Off by default: those gaps span the overnight service break
	// and would distort the first and last operating hour.
	IncludeBoundaryGaps bool
	// HourRange, when set, restricts both the gaps counted and the rows
	// emitted to the inclusive hour span.
	HourRange *[2]int
}

// HourRow is one hour's headway observations. Trains counts every
// departure in the hour, independent of how many gaps survive boundary
// exclusion.
type HourRow struct {
	Hour   int
	Gaps   []float64 // minutes between consecutive departures
	Trains int
}

// Average returns the mean gap of the hour, or 0 when no gaps landed there.
func (r HourRow) Average() float64 {
	if len(r.Gaps) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range r.Gaps {
		sum += g
	}
	return sum / float64(len(r.Gaps))
}

// HeadwayMeta records what a table was computed over.
type HeadwayMeta struct {
	RouteIDs       []string
	DirectionID    string
	ServiceID      string
	StopID         string
	BranchTerminal string   // substring the caller asked for, if any
	TerminalIDs    []string // resolved terminal stop ids
	BranchEnd      string   // "origin" or "destination"
	HourRange      *[2]int
}

// HeadwayTable is the per-hour gap and train-count distribution for a
// route, branch, or corridor.
type HeadwayTable struct {
	Rows []HourRow
	Meta HeadwayMeta
}

// CorridorElement is one member of a combined-corridor request: a route,
// optionally narrowed to a single branch by terminal-name substring.
type CorridorElement struct {
	RouteID        string
	BranchTerminal string
}

// Headways computes the single-route headway table.
func Headways(ix *gtfs.Index, routeID string, opts HeadwayOptions) (HeadwayTable, error) {
	return corridorHeadways(ix, []CorridorElement{{RouteID: routeID}}, opts)
}

// BranchHeadways isolates one branch of a route, resolved by
// case-insensitive terminal-name substring, and computes its headways.
// An unmatched substring returns a NotFoundError naming the real
// terminals.
func BranchHeadways(ix *gtfs.Index, routeID, terminalSubstring string, opts HeadwayOptions) (HeadwayTable, error) {
	return corridorHeadways(ix, []CorridorElement{{RouteID: routeID, BranchTerminal: terminalSubstring}}, opts)
}

// CombinedHeadways pools departures from every corridor element into one
// table: the effective wait at a stop served by several interchangeable
// routes. Elements that fail to resolve are reported in errs; the table
// still covers every element that resolved.
func CombinedHeadways(ix *gtfs.Index, elems []CorridorElement, opts HeadwayOptions) (HeadwayTable, []error) {
	table, err := corridorHeadways(ix, elems, opts)
	if err == nil {
		return table, nil
	}
	// Partial results: recompute over the elements that resolve, keeping
	// the errors for the ones that do not.
	var errs []error
	var good []CorridorElement
	for _, e := range elems {
		if _, elemErr := tripsForElement(ix, e, opts); elemErr != nil {
			errs = append(errs, elemErr)
		} else {
			good = append(good, e)
		}
	}
	table, _ = corridorHeadways(ix, good, opts)
	return table, errs
}

func corridorHeadways(ix *gtfs.Index, elems []CorridorElement, opts HeadwayOptions) (HeadwayTable, error) {
	meta := HeadwayMeta{
		DirectionID: opts.DirectionID,
		ServiceID:   opts.ServiceID,
		StopID:      opts.StopID,
		HourRange:   opts.HourRange,
	}
	var departures []int
	for _, e := range elems {
		meta.RouteIDs = append(meta.RouteIDs, e.RouteID)
		trips, err := tripsForElement(ix, e, opts)
		if err != nil {
			return HeadwayTable{Meta: meta}, err
		}
		if e.BranchTerminal != "" {
			meta.BranchTerminal = e.BranchTerminal
		}
		for _, t := range trips {
			if sec, ok := departureOf(ix, t.ID, opts.StopID); ok {
				departures = append(departures, sec)
			}
		}
	}
	if len(elems) == 1 && elems[0].BranchTerminal != "" {
		// Resolved again only to fill metadata; same decision table.
		trips := ix.TripsMatching(elems[0].RouteID, opts.DirectionID, opts.ServiceID)
		if match, err := MatchTerminal(ix, trips, elems[0].BranchTerminal); err == nil {
			meta.TerminalIDs = match.TerminalIDs
			if match.End == MatchOrigin {
				meta.BranchEnd = "origin"
			} else {
				meta.BranchEnd = "destination"
			}
		}
	}

	sort.Ints(departures)
	rows := map[int]*HourRow{}
	row := func(h int) *HourRow {
		if rows[h] == nil {
			rows[h] = &HourRow{Hour: h}
		}
		return rows[h]
	}
	for _, dep := range departures {
		h := utils.HourOf(dep)
		if opts.HourRange != nil && !hourInRange(h, *opts.HourRange) {
			continue
		}
		row(h).Trains++
	}
	for i := 1; i < len(departures); i++ {
		if !opts.IncludeBoundaryGaps && (i == 1 || i == len(departures)-1) {
			continue
		}
		h := utils.HourOf(departures[i-1])
		if opts.HourRange != nil && !hourInRange(h, *opts.HourRange) {
			continue
		}
		row(h).Gaps = append(row(h).Gaps, utils.ElapsedMinutes(departures[i-1], departures[i]))
	}

	table := HeadwayTable{Meta: meta}
	for h := 0; h < 24; h++ {
		if r, ok := rows[h]; ok && (r.Trains > 0 || len(r.Gaps) > 0) {
			table.Rows = append(table.Rows, *r)
		}
	}
	return table, nil
}

// tripsForElement resolves one corridor element to its contributing trips,
// applying the branch-terminal restriction when present.
func tripsForElement(ix *gtfs.Index, e CorridorElement, opts HeadwayOptions) ([]gtfs.Trip, error) {
	trips := ix.TripsMatching(e.RouteID, opts.DirectionID, opts.ServiceID)
	if e.BranchTerminal == "" {
		return trips, nil
	}
	match, err := MatchTerminal(ix, trips, e.BranchTerminal)
	if err != nil {
		return nil, err
	}
	wanted := map[string]bool{}
	for _, id := range match.TerminalIDs {
		wanted[id] = true
	}
	var out []gtfs.Trip
	for _, t := range trips {
		var st gtfs.StopTime
		var ok bool
		if match.End == MatchOrigin {
			st, ok = ix.Origin(t.ID)
		} else {
			st, ok = ix.Terminal(t.ID)
		}
		if ok && wanted[st.StopID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// departureOf picks the departure second contributed by a trip: at the
// requested stop when given, else at the trip's first stop.
func departureOf(ix *gtfs.Index, tripID, stopID string) (int, bool) {
	if stopID == "" {
		st, ok := ix.Origin(tripID)
		return st.DepartureSec, ok
	}
	want := ix.ParentID(stopID)
	for _, st := range ix.StopTimesFor(tripID) {
		if ix.ParentID(st.StopID) == want {
			return st.DepartureSec, true
		}
	}
	return 0, false
}
