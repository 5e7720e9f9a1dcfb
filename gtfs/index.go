package gtfs

import "sort"

// Index stores a loaded schedule snapshot in memory for fast lookups.
// The snapshot is immutable after loading; every accessor only reads, and
// anything it returns that callers might sort or filter is a fresh copy.
// Iteration orders are fixed by sorting, so identical inputs always produce
// identical derived results.
type Index struct {
	routes    map[string]Route
	trips     map[string]Trip
	stops     map[string]Stop
	stopTimes map[string][]StopTime // trip_id -> ordered by stop_sequence

	tripsByTriple map[tripleKey][]string // sorted trip_ids
	routeIDs      []string               // sorted
	serviceIDs    []string               // sorted
}

type tripleKey struct {
	route     string
	direction string
	service   string
}

// NewIndex creates an empty index. Feed rows are added with AddRoute,
// AddStop and AddTrip, then Finalize fixes the derived orderings.
func NewIndex() *Index {
	return &Index{
		routes:        map[string]Route{},
		trips:         map[string]Trip{},
		stops:         map[string]Stop{},
		stopTimes:     map[string][]StopTime{},
		tripsByTriple: map[tripleKey][]string{},
	}
}

// AddRoute registers a route.
func (g *Index) AddRoute(r Route) { g.routes[r.ID] = r }

// AddStop registers a stop.
func (g *Index) AddStop(s Stop) { g.stops[s.ID] = s }

// AddTrip registers a trip together with its stop times. The stop times are
// sorted by sequence number before storing.
func (g *Index) AddTrip(t Trip, sts []StopTime) {
	g.trips[t.ID] = t
	cp := make([]StopTime, len(sts))
	copy(cp, sts)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Seq < cp[j].Seq })
	g.stopTimes[t.ID] = cp
	k := tripleKey{t.RouteID, t.DirectionID, t.ServiceID}
	g.tripsByTriple[k] = append(g.tripsByTriple[k], t.ID)
}

// Finalize sorts the derived lookup orders. Call once after loading.
func (g *Index) Finalize() {
	for _, ids := range g.tripsByTriple {
		sort.Strings(ids)
	}
	g.routeIDs = g.routeIDs[:0]
	for id := range g.routes {
		g.routeIDs = append(g.routeIDs, id)
	}
	sort.Strings(g.routeIDs)
	seen := map[string]struct{}{}
	g.serviceIDs = g.serviceIDs[:0]
	for _, t := range g.trips {
		if _, ok := seen[t.ServiceID]; !ok {
			seen[t.ServiceID] = struct{}{}
			g.serviceIDs = append(g.serviceIDs, t.ServiceID)
		}
	}
	sort.Strings(g.serviceIDs)
}

// TripsFor returns the trips of a (route, direction, service) triple in
// trip-id order. An unknown triple yields an empty slice.
func (g *Index) TripsFor(routeID, directionID, serviceID string) []Trip {
	ids := g.tripsByTriple[tripleKey{routeID, directionID, serviceID}]
	out := make([]Trip, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.trips[id])
	}
	return out
}

// TripsMatching returns the trips of a route, narrowed by direction and
// service when those are non-empty. Results are ordered by (direction,
// service, trip id) so repeated calls are stable.
func (g *Index) TripsMatching(routeID, directionID, serviceID string) []Trip {
	var keys []tripleKey
	for k := range g.tripsByTriple {
		if k.route != routeID {
			continue
		}
		if directionID != "" && k.direction != directionID {
			continue
		}
		if serviceID != "" && k.service != serviceID {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].direction != keys[j].direction {
			return keys[i].direction < keys[j].direction
		}
		return keys[i].service < keys[j].service
	})
	var out []Trip
	for _, k := range keys {
		for _, id := range g.tripsByTriple[k] {
			out = append(out, g.trips[id])
		}
	}
	return out
}

// Trip returns a trip by id.
func (g *Index) Trip(tripID string) (Trip, bool) {
	t, ok := g.trips[tripID]
	return t, ok
}

// StopTimesFor returns a trip's stop times ordered by sequence number.
// The returned slice is shared and must not be modified.
func (g *Index) StopTimesFor(tripID string) []StopTime {
	return g.stopTimes[tripID]
}

// StopSequence returns a trip's ordered stop ids.
func (g *Index) StopSequence(tripID string) []string {
	sts := g.stopTimes[tripID]
	out := make([]string, 0, len(sts))
	for _, st := range sts {
		out = append(out, st.StopID)
	}
	return out
}

// Origin returns a trip's first stop time.
func (g *Index) Origin(tripID string) (StopTime, bool) {
	sts := g.stopTimes[tripID]
	if len(sts) == 0 {
		return StopTime{}, false
	}
	return sts[0], true
}

// Terminal returns a trip's last stop time.
func (g *Index) Terminal(tripID string) (StopTime, bool) {
	sts := g.stopTimes[tripID]
	if len(sts) == 0 {
		return StopTime{}, false
	}
	return sts[len(sts)-1], true
}

// Stop returns a stop by id.
func (g *Index) Stop(stopID string) (Stop, bool) {
	s, ok := g.stops[stopID]
	return s, ok
}

// StopName returns a stop's display name, or the id itself for unknown
// stops so derived tables never lose a column to missing metadata.
func (g *Index) StopName(stopID string) string {
	if s, ok := g.stops[stopID]; ok && s.Name != "" {
		return s.Name
	}
	return stopID
}

// ParentID normalizes a platform id to its parent station id; stops with no
// parent station map to themselves.
func (g *Index) ParentID(stopID string) string {
	if s, ok := g.stops[stopID]; ok && s.ParentID != "" {
		return s.ParentID
	}
	return stopID
}

// Route returns a route by id.
func (g *Index) Route(routeID string) (Route, bool) {
	r, ok := g.routes[routeID]
	return r, ok
}

// RouteIDs returns all route ids in sorted order.
func (g *Index) RouteIDs() []string {
	out := make([]string, len(g.routeIDs))
	copy(out, g.routeIDs)
	return out
}

// ServiceIDs returns all service-pattern ids in sorted order.
func (g *Index) ServiceIDs() []string {
	out := make([]string, len(g.serviceIDs))
	copy(out, g.serviceIDs)
	return out
}

// DirectionsFor returns the direction ids present for a (route, service)
// pair, sorted.
func (g *Index) DirectionsFor(routeID, serviceID string) []string {
	seen := map[string]struct{}{}
	var out []string
	for k := range g.tripsByTriple {
		if k.route == routeID && k.service == serviceID {
			if _, ok := seen[k.direction]; !ok {
				seen[k.direction] = struct{}{}
				out = append(out, k.direction)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TripCount reports the number of loaded trips.
func (g *Index) TripCount() int { return len(g.trips) }

// StopCount reports the number of loaded stops.
func (g *Index) StopCount() int { return len(g.stops) }
