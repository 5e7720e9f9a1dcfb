package gtfs

import (
	"strings"
	"testing"
)

const (
	routesCSV = "route_id,route_short_name,route_long_name\nA,A,Eighth Av Express\n"
	tripsCSV  = "route_id,service_id,trip_id,trip_headsign,direction_id\n" +
		"A,Weekday,A1,Far Rockaway,0\n" +
		"A,Weekday,A2,Far Rockaway,0\n"
	stopsCSV = "stop_id,stop_name,stop_lat,stop_lon,parent_station\n" +
		"H11,Far Rockaway,40.6057,-73.7554,\n" +
		"H11N,Far Rockaway,40.6057,-73.7554,H11\n" +
		"R01,Chambers St,,,\n"
	stopTimesCSV = "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"A1,06:00:00,06:01:00,R01,1\n" +
		"A1,06:20:00,06:20:30,H11N,2\n" +
		"A2,25:10:00,25:15:00,R01,1\n" +
		"A2,25:30:00,,H11N,2\n"
)

func loadFixture(t *testing.T) *Index {
	t.Helper()
	g := NewIndex()
	ld := newLoader(g)
	files := map[string]string{
		"routes.txt":     routesCSV,
		"trips.txt":      tripsCSV,
		"stops.txt":      stopsCSV,
		"stop_times.txt": stopTimesCSV,
	}
	for name, body := range files {
		if err := ld.consumeCSV(name, strings.NewReader(body)); err != nil {
			t.Fatalf("consume %s: %v", name, err)
		}
	}
	if err := ld.finish(); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestLoaderBuildsIndex(t *testing.T) {
	g := loadFixture(t)

	trips := g.TripsFor("A", "0", "Weekday")
	if len(trips) != 2 {
		t.Fatalf("TripsFor = %d trips, want 2", len(trips))
	}
	if trips[0].ID != "A1" || trips[1].ID != "A2" {
		t.Fatalf("trips not in id order: %v", trips)
	}

	sts := g.StopTimesFor("A1")
	if len(sts) != 2 {
		t.Fatalf("StopTimesFor(A1) = %d rows, want 2", len(sts))
	}
	if sts[0].StopID != "R01" || sts[1].StopID != "H11N" {
		t.Fatalf("stop times out of sequence: %v", sts)
	}
	if sts[1].ArrivalSec != 6*3600+20*60 {
		t.Fatalf("arrival seconds = %d", sts[1].ArrivalSec)
	}
}

func TestLoaderKeepsPostMidnightTimes(t *testing.T) {
	g := loadFixture(t)
	st, ok := g.Origin("A2")
	if !ok {
		t.Fatal("trip A2 has no origin")
	}
	if st.DepartureSec != 25*3600+15*60 {
		t.Fatalf("departure seconds = %d, want un-normalized 25h value", st.DepartureSec)
	}
}

func TestLoaderFillsMissingDepartureFromArrival(t *testing.T) {
	g := loadFixture(t)
	term, ok := g.Terminal("A2")
	if !ok {
		t.Fatal("trip A2 has no terminal")
	}
	if term.Departure != "25:30:00" || term.DepartureSec != term.ArrivalSec {
		t.Fatalf("blank departure not backfilled: %+v", term)
	}
}

func TestLoaderRejectsMalformedClock(t *testing.T) {
	g := NewIndex()
	ld := newLoader(g)
	bad := "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,junk,06:01:00,S1,1\n"
	if err := ld.consumeCSV("stop_times.txt", strings.NewReader(bad)); err == nil {
		t.Fatal("expected malformed clock time to fail the load")
	}
}

func TestParentIDNormalization(t *testing.T) {
	g := loadFixture(t)
	if got := g.ParentID("H11N"); got != "H11" {
		t.Fatalf("ParentID(H11N) = %q, want H11", got)
	}
	if got := g.ParentID("R01"); got != "R01" {
		t.Fatalf("ParentID(R01) = %q, want itself", got)
	}
	if got := g.ParentID("nope"); got != "nope" {
		t.Fatalf("ParentID(nope) = %q, want itself", got)
	}
}
