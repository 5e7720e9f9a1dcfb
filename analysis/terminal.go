package analysis

import (
	"sort"
	"strings"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
)

// MatchEnd tags which end of the trip set a terminal name substring
// matched.
type MatchEnd int

const (
	MatchNeither MatchEnd = iota
	MatchOrigin
	MatchDestination
	MatchBoth
)

// significantShare is the share of a triple's trips a terminal must carry
// to count when comparing how "branchy" the two ends of a route are.
const significantShare = 0.05

// TerminalMatch is the resolved result of matching a terminal name
// substring against a trip set. End is MatchOrigin or MatchDestination
// after ambiguity resolution; Raw preserves the pre-resolution finding.
type TerminalMatch struct {
	Raw         MatchEnd
	End         MatchEnd
	TerminalIDs []string // matching stop ids at the resolved end, sorted
	Name        string   // display name of one matching terminal
}

// endProfile summarizes one end (origin or destination) of a trip set.
type endProfile struct {
	tripsPerTerminal map[string]int // stop_id -> trips ending/starting there
	total            int
}

func (p endProfile) distinct() int { return len(p.tripsPerTerminal) }

func (p endProfile) significant() int {
	n := 0
	for _, c := range p.tripsPerTerminal {
		if float64(c) >= significantShare*float64(p.total) {
			n++
		}
	}
	return n
}

// MatchTerminal resolves a case-insensitive terminal-name substring against
// the first and last stops of a trip set. The outcome follows a fixed
// decision table:
//
//	found at neither end          -> NotFoundError listing real terminals
//	found at destination end only -> MatchDestination
//	found at origin end only      -> MatchOrigin
//	found at both ends            -> the end with more distinct significant
//	                                 terminals (a terminal is significant at
//	                                 5% of trips); if still tied, the end
//	                                 with fewer distinct terminals overall
func MatchTerminal(ix *gtfs.Index, trips []gtfs.Trip, substr string) (TerminalMatch, error) {
	needle := strings.ToLower(substr)
	origin := endProfile{tripsPerTerminal: map[string]int{}, total: len(trips)}
	dest := endProfile{tripsPerTerminal: map[string]int{}, total: len(trips)}
	originHits := map[string]bool{}
	destHits := map[string]bool{}

	for _, t := range trips {
		if st, ok := ix.Origin(t.ID); ok {
			origin.tripsPerTerminal[st.StopID]++
			if strings.Contains(strings.ToLower(ix.StopName(st.StopID)), needle) {
				originHits[st.StopID] = true
			}
		}
		if st, ok := ix.Terminal(t.ID); ok {
			dest.tripsPerTerminal[st.StopID]++
			if strings.Contains(strings.ToLower(ix.StopName(st.StopID)), needle) {
				destHits[st.StopID] = true
			}
		}
	}

	switch {
	case len(originHits) == 0 && len(destHits) == 0:
		return TerminalMatch{Raw: MatchNeither}, &NotFoundError{
			What:      `terminal matching "` + substr + `"`,
			Available: terminalNames(ix, dest.tripsPerTerminal),
		}
	case len(destHits) > 0 && len(originHits) == 0:
		return resolved(ix, MatchDestination, MatchDestination, destHits), nil
	case len(originHits) > 0 && len(destHits) == 0:
		return resolved(ix, MatchOrigin, MatchOrigin, originHits), nil
	}

	// Matched at both ends: prefer the "more branchy" end.
	end := MatchDestination
	switch {
	case origin.significant() > dest.significant():
		end = MatchOrigin
	case origin.significant() < dest.significant():
		end = MatchDestination
	case origin.distinct() < dest.distinct():
		end = MatchOrigin
	}
	if end == MatchOrigin {
		return resolved(ix, MatchBoth, MatchOrigin, originHits), nil
	}
	return resolved(ix, MatchBoth, MatchDestination, destHits), nil
}

func resolved(ix *gtfs.Index, raw, end MatchEnd, hits map[string]bool) TerminalMatch {
	ids := make([]string, 0, len(hits))
	for id := range hits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return TerminalMatch{Raw: raw, End: end, TerminalIDs: ids, Name: ix.StopName(ids[0])}
}

func terminalNames(ix *gtfs.Index, tripsPerTerminal map[string]int) []string {
	seen := map[string]bool{}
	var names []string
	for id := range tripsPerTerminal {
		name := ix.StopName(id)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
