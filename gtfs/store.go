package gtfs

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS routes (
	route_id   TEXT PRIMARY KEY,
	short_name TEXT NOT NULL DEFAULT '',
	long_name  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS stops (
	stop_id        TEXT PRIMARY KEY,
	stop_name      TEXT NOT NULL DEFAULT '',
	parent_station TEXT NOT NULL DEFAULT '',
	lat            REAL,
	lon            REAL
);
CREATE TABLE IF NOT EXISTS trips (
	trip_id      TEXT PRIMARY KEY,
	route_id     TEXT NOT NULL,
	direction_id TEXT NOT NULL DEFAULT '',
	service_id   TEXT NOT NULL DEFAULT '',
	headsign     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS stop_times (
	trip_id        TEXT NOT NULL,
	stop_id        TEXT NOT NULL,
	seq            INTEGER NOT NULL,
	arrival        TEXT NOT NULL,
	departure      TEXT NOT NULL,
	arrival_sec    INTEGER NOT NULL,
	departure_sec  INTEGER NOT NULL,
	PRIMARY KEY (trip_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_stop_times_trip ON stop_times(trip_id);
`

// OpenDB opens (creating if needed) a SQLite snapshot database. Parsing a
// large feed takes seconds; reloading the snapshot takes milliseconds, so
// CLI runs against the same feed reuse the snapshot.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}
	return db, nil
}

// SaveTo writes the full snapshot into db, replacing any previous contents.
func (g *Index) SaveTo(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"routes", "stops", "trips", "stop_times"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	insRoute, err := tx.Prepare("INSERT INTO routes(route_id, short_name, long_name) VALUES(?,?,?)")
	if err != nil {
		return err
	}
	defer insRoute.Close()
	for _, id := range g.routeIDs {
		r := g.routes[id]
		if _, err := insRoute.Exec(r.ID, r.ShortName, r.LongName); err != nil {
			return err
		}
	}

	insStop, err := tx.Prepare("INSERT INTO stops(stop_id, stop_name, parent_station, lat, lon) VALUES(?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer insStop.Close()
	for _, s := range g.stops {
		var lat, lon any
		if s.HasCoord {
			lat, lon = s.Lat, s.Lon
		}
		if _, err := insStop.Exec(s.ID, s.Name, s.ParentID, lat, lon); err != nil {
			return err
		}
	}

	insTrip, err := tx.Prepare("INSERT INTO trips(trip_id, route_id, direction_id, service_id, headsign) VALUES(?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer insTrip.Close()
	insST, err := tx.Prepare("INSERT INTO stop_times(trip_id, stop_id, seq, arrival, departure, arrival_sec, departure_sec) VALUES(?,?,?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer insST.Close()
	for id, t := range g.trips {
		if _, err := insTrip.Exec(t.ID, t.RouteID, t.DirectionID, t.ServiceID, t.Headsign); err != nil {
			return err
		}
		for _, st := range g.stopTimes[id] {
			if _, err := insST.Exec(st.TripID, st.StopID, st.Seq, st.Arrival, st.Departure, st.ArrivalSec, st.DepartureSec); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadFrom rebuilds an index from a snapshot database.
func LoadFrom(db *sql.DB) (*Index, error) {
	g := NewIndex()

	rows, err := db.Query("SELECT route_id, short_name, long_name FROM routes")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.ShortName, &r.LongName); err != nil {
			rows.Close()
			return nil, err
		}
		g.AddRoute(r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT stop_id, stop_name, parent_station, lat, lon FROM stops")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var s Stop
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Name, &s.ParentID, &lat, &lon); err != nil {
			rows.Close()
			return nil, err
		}
		if lat.Valid && lon.Valid {
			s.Lat, s.Lon, s.HasCoord = lat.Float64, lon.Float64, true
		}
		g.AddStop(s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stByTrip := map[string][]StopTime{}
	rows, err = db.Query("SELECT trip_id, stop_id, seq, arrival, departure, arrival_sec, departure_sec FROM stop_times ORDER BY trip_id, seq")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var st StopTime
		if err := rows.Scan(&st.TripID, &st.StopID, &st.Seq, &st.Arrival, &st.Departure, &st.ArrivalSec, &st.DepartureSec); err != nil {
			rows.Close()
			return nil, err
		}
		stByTrip[st.TripID] = append(stByTrip[st.TripID], st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT trip_id, route_id, direction_id, service_id, headsign FROM trips")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.RouteID, &t.DirectionID, &t.ServiceID, &t.Headsign); err != nil {
			rows.Close()
			return nil, err
		}
		g.AddTrip(t, stByTrip[t.ID])
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g.Finalize()
	return g, nil
}
