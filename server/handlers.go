package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
	"github.com/theoremus-urban-solutions/schedule-analytics/export"
)

// envelope is the common response wrapper. AnalysisID lets clients
// correlate a stored result with the log line that produced it.
type envelope struct {
	AnalysisID string   `json:"analysis_id"`
	Data       any      `json:"data,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any, errs []string) {
	env := envelope{AnalysisID: uuid.NewString(), Data: data}
	for _, e := range errs {
		env.Errors = append(env.Errors, e)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, err error) {
	s.metrics.RequestErrors.WithLabelValues(endpoint).Inc()
	status := http.StatusInternalServerError
	var nf *analysis.NotFoundError
	if errors.As(err, &nf) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, nil, []string{err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, endpoint, msg string) {
	s.metrics.RequestErrors.WithLabelValues(endpoint).Inc()
	s.writeJSON(w, http.StatusBadRequest, nil, []string{msg})
}

func (s *Server) observe(endpoint string, start time.Time) {
	s.metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
	s.metrics.AnalysisDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"trips":  s.ix.TripCount(),
		"stops":  s.ix.StopCount(),
	}, nil)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	defer s.observe("routes", time.Now())
	type routeInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	var out []routeInfo
	for _, id := range s.ix.RouteIDs() {
		rt, _ := s.ix.Route(id)
		out = append(out, routeInfo{ID: id, Name: rt.Name()})
	}
	s.writeJSON(w, http.StatusOK, out, nil)
}

func (s *Server) handleStationOrder(w http.ResponseWriter, r *http.Request) {
	defer s.observe("station-order", time.Now())
	q := r.URL.Query()
	route, service := q.Get("route"), q.Get("service")
	if route == "" || service == "" {
		s.badRequest(w, "station-order", "route and service are required")
		return
	}
	if q.Get("merge") == "true" {
		order0 := analysis.StationOrder(s.ix, route, "0", service)
		order1 := analysis.StationOrder(s.ix, route, "1", service)
		s.writeJSON(w, http.StatusOK, analysis.MergeStationOrders(order0, order1), nil)
		return
	}
	direction := q.Get("direction")
	if direction == "" {
		s.badRequest(w, "station-order", "direction is required unless merge=true")
		return
	}
	s.writeJSON(w, http.StatusOK, analysis.StationOrder(s.ix, route, direction, service), nil)
}

func (s *Server) handleExpressLocal(w http.ResponseWriter, r *http.Request) {
	defer s.observe("express-local", time.Now())
	q := r.URL.Query()
	route, direction, service := q.Get("route"), q.Get("direction"), q.Get("service")
	if route == "" || direction == "" || service == "" {
		s.badRequest(w, "express-local", "route, direction and service are required")
		return
	}
	s.writeJSON(w, http.StatusOK, analysis.Classify(s.ix, s.cls, route, direction, service), nil)
}

func (s *Server) handleExpressWindows(w http.ResponseWriter, r *http.Request) {
	defer s.observe("express-windows", time.Now())
	cache := export.BuildWindowCache(s.ix, s.cls, s.labels)
	if service := r.URL.Query().Get("service"); service != "" {
		s.writeJSON(w, http.StatusOK, cache[service], nil)
		return
	}
	s.writeJSON(w, http.StatusOK, cache, nil)
}

// matrixPayload renders a Matrix with JSON-safe cells: undefined values
// become null.
type matrixPayload struct {
	Stations []analysis.Station `json:"stations"`
	Minutes  [][]*float64       `json:"minutes"`
}

func toPayload(m analysis.Matrix) matrixPayload {
	p := matrixPayload{Stations: m.Stations, Minutes: make([][]*float64, len(m.Minutes))}
	for d, row := range m.Minutes {
		out := make([]*float64, len(row))
		for o := range row {
			if m.Defined(d, o) {
				v := row[o]
				out[o] = &v
			}
		}
		p.Minutes[d] = out
	}
	return p
}

func parseHourRange(q map[string][]string) (*[2]int, string) {
	get := func(k string) string {
		if v, ok := q[k]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}
	fromS, toS := get("hourFrom"), get("hourTo")
	if fromS == "" && toS == "" {
		return nil, ""
	}
	if fromS == "" || toS == "" {
		return nil, "hourFrom and hourTo must be given together"
	}
	from, err1 := strconv.Atoi(fromS)
	to, err2 := strconv.Atoi(toS)
	if err1 != nil || err2 != nil || from < 0 || to > 23 || from > to {
		return nil, "hourFrom and hourTo must form an hour range within 0-23"
	}
	return &[2]int{from, to}, ""
}

func (s *Server) handleTravelTimes(w http.ResponseWriter, r *http.Request) {
	defer s.observe("travel-times", time.Now())
	q := r.URL.Query()
	route, service := q.Get("route"), q.Get("service")
	if route == "" || service == "" {
		s.badRequest(w, "travel-times", "route and service are required")
		return
	}
	hourRange, msg := parseHourRange(q)
	if msg != "" {
		s.badRequest(w, "travel-times", msg)
		return
	}
	opts := analysis.MatrixOptions{HourRange: hourRange}

	order := func(direction string) []analysis.Station {
		o := analysis.StationOrder(s.ix, route, direction, service)
		expressRegions := splitParam(q.Get("expressRegions"))
		if len(expressRegions) == 0 {
			return o
		}
		return analysis.FilterStationOrder(s.ix, s.cls, route, direction, service, o, analysis.FilterOptions{
			ExpressRegions:  expressRegions,
			AllStopsRegions: splitParam(q.Get("allStopsRegions")),
			MinTripShare:    s.cfg.Analysis.ExpressStopMinShare,
		})
	}

	if q.Get("combined") == "true" {
		m0 := analysis.TravelTimeMatrix(s.ix, route, "0", service, order("0"), opts)
		m1 := analysis.TravelTimeMatrix(s.ix, route, "1", service, order("1"), opts)
		s.writeJSON(w, http.StatusOK, toPayload(analysis.CombineBidirectional(m0, m1)), nil)
		return
	}
	direction := q.Get("direction")
	if direction == "" {
		s.badRequest(w, "travel-times", "direction is required unless combined=true")
		return
	}
	m := analysis.TravelTimeMatrix(s.ix, route, direction, service, order(direction), opts)
	s.writeJSON(w, http.StatusOK, toPayload(m), nil)
}

func (s *Server) handleHeadways(w http.ResponseWriter, r *http.Request) {
	defer s.observe("headways", time.Now())
	q := r.URL.Query()
	routes := splitParam(q.Get("routes"))
	if len(routes) == 0 {
		s.badRequest(w, "headways", "routes is required")
		return
	}
	hourRange, msg := parseHourRange(q)
	if msg != "" {
		s.badRequest(w, "headways", msg)
		return
	}
	opts := analysis.HeadwayOptions{
		DirectionID:         q.Get("direction"),
		ServiceID:           q.Get("service"),
		StopID:              q.Get("stop"),
		IncludeBoundaryGaps: q.Get("includeBoundary") == "true",
		HourRange:           hourRange,
	}
	branch := q.Get("branch")

	type headwayResponse struct {
		Table         analysis.HeadwayTable `json:"table"`
		DirectionName string                `json:"direction_name,omitempty"`
	}
	respond := func(table analysis.HeadwayTable, errs []string, status int) {
		resp := headwayResponse{Table: table}
		if len(routes) == 1 && opts.DirectionID != "" {
			resp.DirectionName = s.labels.Label(s.ix, routes[0], opts.DirectionID, opts.ServiceID)
		}
		s.writeJSON(w, status, resp, errs)
	}

	if len(routes) == 1 {
		var table analysis.HeadwayTable
		var err error
		if branch != "" {
			table, err = analysis.BranchHeadways(s.ix, routes[0], branch, opts)
		} else {
			table, err = analysis.Headways(s.ix, routes[0], opts)
		}
		if err != nil {
			s.writeError(w, "headways", err)
			return
		}
		respond(table, nil, http.StatusOK)
		return
	}

	elems := make([]analysis.CorridorElement, 0, len(routes))
	for _, rt := range routes {
		elems = append(elems, analysis.CorridorElement{RouteID: rt, BranchTerminal: branch})
	}
	table, errs := analysis.CombinedHeadways(s.ix, elems, opts)
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	respond(table, msgs, http.StatusOK)
}

// splitParam turns a comma-separated query value into its non-empty parts.
func splitParam(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
