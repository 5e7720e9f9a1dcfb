package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTerminalAtDestination(t *testing.T) {
	ix := rockawayFixture(t)
	trips := ix.TripsFor("A", "0", "Weekday")

	match, err := MatchTerminal(ix, trips, "lefferts")
	require.NoError(t, err)
	assert.Equal(t, MatchDestination, match.End)
	assert.Equal(t, []string{"L2"}, match.TerminalIDs)
	assert.Equal(t, "Lefferts Blvd", match.Name)
}

func TestMatchTerminalAtOrigin(t *testing.T) {
	ix := rockawayFixture(t)
	trips := ix.TripsFor("A", "0", "Weekday")

	match, err := MatchTerminal(ix, trips, "hoyt")
	require.NoError(t, err)
	assert.Equal(t, MatchOrigin, match.End)
	assert.Equal(t, []string{"T1"}, match.TerminalIDs)
}

func TestMatchTerminalNotFoundListsAlternatives(t *testing.T) {
	ix := rockawayFixture(t)
	trips := ix.TripsFor("A", "0", "Weekday")

	_, err := MatchTerminal(ix, trips, "NoSuchPlace")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.ElementsMatch(t, []string{"Lefferts Blvd", "Far Rockaway"}, nf.Available)
	assert.Contains(t, err.Error(), "Lefferts Blvd")
	assert.Contains(t, err.Error(), "Far Rockaway")
	assert.Contains(t, err.Error(), "NoSuchPlace")
}

func TestMatchTerminalBothEndsPrefersBranchyEnd(t *testing.T) {
	// "Bay" matches the single shared origin and both destinations. The
	// destination end has two significant terminals against the origin's
	// one, so the destination end wins.
	f := newFixture(t).route("B").
		stop("O1", "Bay Ridge").
		stop("M1", "36 St").
		stop("D1", "Bay Pkwy").
		stop("D2", "Bayside")
	for i, dest := range []string{"D1", "D1", "D2", "D2"} {
		f.trip("B", "0", "Weekday", fmt.Sprintf("B%d", i+1),
			at("O1", clock(360+10*i)),
			at("M1", clock(365+10*i)),
			at(dest, clock(372+10*i)))
	}
	ix := f.build()
	trips := ix.TripsFor("B", "0", "Weekday")

	match, err := MatchTerminal(ix, trips, "bay")
	require.NoError(t, err)
	assert.Equal(t, MatchBoth, match.Raw)
	assert.Equal(t, MatchDestination, match.End)
	assert.ElementsMatch(t, []string{"D1", "D2"}, match.TerminalIDs)
}
