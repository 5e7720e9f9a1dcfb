package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
	"github.com/theoremus-urban-solutions/schedule-analytics/config"
	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/regions"
	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

type testEnvelope struct {
	AnalysisID string          `json:"analysis_id"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
}

func addTrip(t *testing.T, ix *gtfs.Index, route, dir, service, tripID string, stops, clocks []string) {
	t.Helper()
	require.Len(t, clocks, len(stops))
	sts := make([]gtfs.StopTime, 0, len(stops))
	for i, stop := range stops {
		sec, err := utils.ParseClock(clocks[i])
		require.NoError(t, err)
		sts = append(sts, gtfs.StopTime{
			TripID: tripID, StopID: stop, Seq: i + 1,
			Arrival: clocks[i], Departure: clocks[i],
			ArrivalSec: sec, DepartureSec: sec,
		})
	}
	ix.AddTrip(gtfs.Trip{ID: tripID, RouteID: route, DirectionID: dir, ServiceID: service}, sts)
}

// testServer serves a route with a trunk and two branch terminals.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	ix := gtfs.NewIndex()
	ix.AddRoute(gtfs.Route{ID: "A", ShortName: "A", LongName: "8 Avenue Express"})
	for _, s := range [][2]string{
		{"T1", "Hoyt St"}, {"T2", "Utica Av"},
		{"L1", "Lefferts Blvd"}, {"F1", "Far Rockaway"},
	} {
		ix.AddStop(gtfs.Stop{ID: s[0], Name: s[1]})
	}
	addTrip(t, ix, "A", "0", "Weekday", "A-L1",
		[]string{"T1", "T2", "L1"}, []string{"06:00:00", "06:05:00", "06:12:00"})
	addTrip(t, ix, "A", "0", "Weekday", "A-L2",
		[]string{"T1", "T2", "L1"}, []string{"06:20:00", "06:25:00", "06:32:00"})
	addTrip(t, ix, "A", "0", "Weekday", "A-F1",
		[]string{"T1", "T2", "F1"}, []string{"06:10:00", "06:15:00", "06:30:00"})
	addTrip(t, ix, "A", "1", "Weekday", "A-R1",
		[]string{"L1", "T2", "T1"}, []string{"06:40:00", "06:47:00", "06:52:00"})
	ix.Finalize()

	srv := New(ix, regions.NewClassifier(), analysis.NewDirectionLabels(), config.AppConfig{})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (int, testEnvelope) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHandleHealth(t *testing.T) {
	ts := testServer(t)
	status, env := get(t, ts, "/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, env.AnalysisID)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data["status"])
	assert.EqualValues(t, 4, data["trips"])
	assert.EqualValues(t, 4, data["stops"])
}

func TestHandleRoutes(t *testing.T) {
	ts := testServer(t)
	status, env := get(t, ts, "/api/routes")
	assert.Equal(t, http.StatusOK, status)

	var routes []map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &routes))
	require.Len(t, routes, 1)
	assert.Equal(t, "A", routes[0]["id"])
}

func TestHandleStationOrder(t *testing.T) {
	ts := testServer(t)

	status, env := get(t, ts, "/api/station-order?route=A&direction=0&service=Weekday")
	require.Equal(t, http.StatusOK, status)
	var order []analysis.Station
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Len(t, order, 4)
	assert.Equal(t, "T1", order[0].ID)

	status, env = get(t, ts, "/api/station-order?route=A")
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Contains(t, env.Errors[0], "service")

	status, _ = get(t, ts, "/api/station-order?route=A&service=Weekday&merge=true")
	assert.Equal(t, http.StatusOK, status)
}

func TestHandleTravelTimesCombined(t *testing.T) {
	ts := testServer(t)
	status, env := get(t, ts, "/api/travel-times?route=A&service=Weekday&combined=true")
	require.Equal(t, http.StatusOK, status)

	var payload struct {
		Stations []analysis.Station `json:"stations"`
		Minutes  [][]*float64       `json:"minutes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Stations)

	idx := map[string]int{}
	for i, s := range payload.Stations {
		idx[s.ID] = i
	}
	// Utica from Hoyt is 5 minutes southbound; the return direction fills
	// the opposite triangle.
	require.NotNil(t, payload.Minutes[idx["T2"]][idx["T1"]])
	assert.InDelta(t, 5.0, *payload.Minutes[idx["T2"]][idx["T1"]], 1e-9)
	require.NotNil(t, payload.Minutes[idx["T1"]][idx["T2"]])
	assert.InDelta(t, 5.0, *payload.Minutes[idx["T1"]][idx["T2"]], 1e-9)
	// Branch terminals never share a trip.
	assert.Nil(t, payload.Minutes[idx["F1"]][idx["L1"]])
}

func TestHandleTravelTimesBadHourRange(t *testing.T) {
	ts := testServer(t)
	status, env := get(t, ts, "/api/travel-times?route=A&service=Weekday&combined=true&hourFrom=9")
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Contains(t, env.Errors[0], "hourTo")

	status, _ = get(t, ts, "/api/travel-times?route=A&service=Weekday&combined=true&hourFrom=9&hourTo=25")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleHeadwaysBranchNotFound(t *testing.T) {
	ts := testServer(t)
	status, env := get(t, ts, "/api/headways?routes=A&direction=0&service=Weekday&branch=NoSuchPlace")
	assert.Equal(t, http.StatusNotFound, status)
	require.Len(t, env.Errors, 1)
	assert.Contains(t, env.Errors[0], "Lefferts Blvd")
	assert.Contains(t, env.Errors[0], "Far Rockaway")
}

func TestHandleHeadwaysCombinedPartial(t *testing.T) {
	ts := testServer(t)
	// The second route cannot resolve the branch; the first still serves.
	status, env := get(t, ts, "/api/headways?routes=A,NOPE&direction=0&service=Weekday&branch=Lefferts&includeBoundary=true")
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, env.Errors, 1)

	var resp struct {
		Table analysis.HeadwayTable `json:"table"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	trains := 0
	for _, row := range resp.Table.Rows {
		trains += row.Trains
	}
	assert.Equal(t, 2, trains)
}

func TestHandleHeadwaysMissingRoutes(t *testing.T) {
	ts := testServer(t)
	status, env := get(t, ts, "/api/headways")
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Contains(t, env.Errors[0], "routes")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t)
	// Touch an instrumented endpoint first so counters exist.
	_, _ = get(t, ts, "/api/routes")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "schedule_analytics_schedule_trips 4")
	assert.Contains(t, string(body), `schedule_analytics_requests_total{endpoint="routes"} 1`)
}
