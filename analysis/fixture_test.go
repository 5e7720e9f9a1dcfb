package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

// call is one fixture stop time: stop id plus "HH:MM:SS" arrival and
// departure. A single time string means arrival == departure.
type call struct {
	stop string
	arr  string
	dep  string
}

func at(stop, when string) call { return call{stop: stop, arr: when, dep: when} }

// fixture wraps an index under construction.
type fixture struct {
	t  *testing.T
	ix *gtfs.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ix: gtfs.NewIndex()}
}

func (f *fixture) route(id string) *fixture {
	f.ix.AddRoute(gtfs.Route{ID: id, ShortName: id})
	return f
}

func (f *fixture) stop(id, name string) *fixture {
	f.ix.AddStop(gtfs.Stop{ID: id, Name: name})
	return f
}

func (f *fixture) stopAt(id, name string, lat, lon float64) *fixture {
	f.ix.AddStop(gtfs.Stop{ID: id, Name: name, Lat: lat, Lon: lon, HasCoord: true})
	return f
}

func (f *fixture) platform(id, name, parent string) *fixture {
	f.ix.AddStop(gtfs.Stop{ID: id, Name: name, ParentID: parent})
	return f
}

func (f *fixture) trip(route, dir, service, tripID string, calls ...call) *fixture {
	f.t.Helper()
	sts := make([]gtfs.StopTime, 0, len(calls))
	for i, c := range calls {
		arrSec, err := utils.ParseClock(c.arr)
		require.NoError(f.t, err)
		depSec, err := utils.ParseClock(c.dep)
		require.NoError(f.t, err)
		sts = append(sts, gtfs.StopTime{
			TripID:       tripID,
			StopID:       c.stop,
			Seq:          i + 1,
			Arrival:      c.arr,
			Departure:    c.dep,
			ArrivalSec:   arrSec,
			DepartureSec: depSec,
		})
	}
	f.ix.AddTrip(gtfs.Trip{ID: tripID, RouteID: route, DirectionID: dir, ServiceID: service}, sts)
	return f
}

func (f *fixture) build() *gtfs.Index {
	f.ix.Finalize()
	return f.ix
}

// clock shifts a base "HH:MM:SS" by whole minutes, for generating evenly
// spaced departures.
func clock(baseMin int) string {
	return utils.FormatClock(baseMin * 60)
}

// rockawayFixture models a route "A" whose trips terminate at either
// Lefferts Blvd or Far Rockaway beyond a shared trunk.
func rockawayFixture(t *testing.T) *gtfs.Index {
	f := newFixture(t).route("A").
		stop("T1", "Hoyt St").
		stop("T2", "Utica Av").
		stop("T3", "Broadway Junction").
		stop("T4", "Rockaway Blvd").
		stop("L1", "104 St").
		stop("L2", "Lefferts Blvd").
		stop("F1", "Aqueduct").
		stop("F2", "Howard Beach").
		stop("F3", "Beach 25 St").
		stop("F4", "Far Rockaway")

	trunk := func(startMin int) []call {
		return []call{
			at("T1", clock(startMin)),
			at("T2", clock(startMin+4)),
			at("T3", clock(startMin+8)),
			at("T4", clock(startMin+12)),
		}
	}
	lefferts := func(startMin int) []call {
		return append(trunk(startMin),
			at("L1", clock(startMin+16)),
			at("L2", clock(startMin+20)))
	}
	rockaway := func(startMin int) []call {
		return append(trunk(startMin),
			at("F1", clock(startMin+16)),
			at("F2", clock(startMin+20)),
			at("F3", clock(startMin+24)),
			at("F4", clock(startMin+28)))
	}

	// Lefferts carries more trips than Far Rockaway, so it sorts first.
	starts := []int{6 * 60, 6*60 + 20, 6*60 + 40, 7 * 60, 7*60 + 20, 7*60 + 40}
	for i, m := range starts {
		f.trip("A", "0", "Weekday", fmt.Sprintf("A-L%d", i+1), lefferts(m)...)
	}
	for i, m := range []int{6*60 + 10, 6*60 + 50, 7*60 + 30} {
		f.trip("A", "0", "Weekday", fmt.Sprintf("A-F%d", i+1), rockaway(m)...)
	}
	return f.build()
}
