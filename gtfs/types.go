package gtfs

// Route is one transit route from routes.txt.
type Route struct {
	ID        string
	ShortName string
	LongName  string
}

// Name returns the rider-facing route name, preferring the short name.
func (r Route) Name() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.LongName
}

// Trip is one scheduled end-to-end run. A trip belongs to exactly one
// (route, direction, service) triple.
type Trip struct {
	ID          string
	RouteID     string
	DirectionID string // "0" or "1"; meaning is route-specific
	ServiceID   string
	Headsign    string
}

// StopTime is one scheduled call of a trip at a stop. Arrival and Departure
// keep the raw GTFS clock strings (hours may exceed 23 for post-midnight
// service); ArrivalSec and DepartureSec are the parsed un-normalized
// service-day second counts used for all arithmetic.
type StopTime struct {
	TripID       string
	StopID       string
	Seq          int
	Arrival      string
	Departure    string
	ArrivalSec   int
	DepartureSec int
}

// Stop is one platform or station from stops.txt. ParentID is empty for
// stops without a parent station; Lat/Lon are zero and HasCoord false for
// non-physical stops.
type Stop struct {
	ID       string
	Name     string
	ParentID string
	Lat      float64
	Lon      float64
	HasCoord bool
}
