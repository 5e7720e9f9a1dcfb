package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/schedule-analytics/utils"
)

var feedFiles = map[string]bool{
	"routes.txt":     true,
	"trips.txt":      true,
	"stops.txt":      true,
	"stop_times.txt": true,
}

// Load reads a GTFS feed from either a .zip archive or an extracted
// directory and returns a finalized index.
func Load(path string) (*Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadFromDir(path)
	}
	return loadFromZip(path)
}

func loadFromZip(path string) (*Index, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	g := NewIndex()
	ld := newLoader(g)
	for _, f := range zr.File {
		name := strings.ToLower(filepath.Base(f.Name))
		if !feedFiles[name] {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = ld.consumeCSV(name, r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := ld.finish(); err != nil {
		return nil, err
	}
	return g, nil
}

func loadFromDir(dir string) (*Index, error) {
	g := NewIndex()
	ld := newLoader(g)
	for name := range feedFiles {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		err = ld.consumeCSV(name, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := ld.finish(); err != nil {
		return nil, err
	}
	return g, nil
}

// loader accumulates rows across files; trips.txt and stop_times.txt may
// arrive in either order inside a zip, so trips are joined at finish time.
type loader struct {
	g         *Index
	trips     map[string]Trip
	stopTimes map[string][]StopTime
}

func newLoader(g *Index) *loader {
	return &loader{g: g, trips: map[string]Trip{}, stopTimes: map[string][]StopTime{}}
}

func (ld *loader) consumeCSV(name string, r io.Reader) error {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	field := func(row []string, i int) string {
		if i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	switch name {
	case "routes.txt":
		rID := idx("route_id")
		rSN := idx("route_short_name")
		rLN := idx("route_long_name")
		if rID < 0 {
			return fmt.Errorf("missing route_id column")
		}
		for _, row := range rec[1:] {
			ld.g.AddRoute(Route{
				ID:        field(row, rID),
				ShortName: field(row, rSN),
				LongName:  field(row, rLN),
			})
		}
	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		srv := idx("service_id")
		dir := idx("direction_id")
		hs := idx("trip_headsign")
		if tID < 0 || rID < 0 {
			return fmt.Errorf("missing trip_id or route_id column")
		}
		for _, row := range rec[1:] {
			ld.trips[field(row, tID)] = Trip{
				ID:          field(row, tID),
				RouteID:     field(row, rID),
				ServiceID:   field(row, srv),
				DirectionID: field(row, dir),
				Headsign:    field(row, hs),
			}
		}
	case "stops.txt":
		sID := idx("stop_id")
		sN := idx("stop_name")
		sP := idx("parent_station")
		sLat := idx("stop_lat")
		sLon := idx("stop_lon")
		if sID < 0 {
			return fmt.Errorf("missing stop_id column")
		}
		for _, row := range rec[1:] {
			s := Stop{
				ID:       field(row, sID),
				Name:     field(row, sN),
				ParentID: field(row, sP),
			}
			latS, lonS := field(row, sLat), field(row, sLon)
			if latS != "" && lonS != "" {
				lat, errLat := strconv.ParseFloat(latS, 64)
				lon, errLon := strconv.ParseFloat(lonS, 64)
				if errLat == nil && errLon == nil {
					s.Lat, s.Lon, s.HasCoord = lat, lon, true
				}
			}
			ld.g.AddStop(s)
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arr := idx("arrival_time")
		dep := idx("departure_time")
		if tID < 0 || sID < 0 || sq < 0 {
			return fmt.Errorf("missing trip_id, stop_id or stop_sequence column")
		}
		for _, row := range rec[1:] {
			seq, err := strconv.Atoi(field(row, sq))
			if err != nil {
				return fmt.Errorf("trip %s: bad stop_sequence %q", field(row, tID), field(row, sq))
			}
			st := StopTime{
				TripID:    field(row, tID),
				StopID:    field(row, sID),
				Seq:       seq,
				Arrival:   field(row, arr),
				Departure: field(row, dep),
			}
			// Non-timepoint rows may omit one of the two times.
			if st.Arrival == "" {
				st.Arrival = st.Departure
			}
			if st.Departure == "" {
				st.Departure = st.Arrival
			}
			if st.ArrivalSec, err = utils.ParseClock(st.Arrival); err != nil {
				return fmt.Errorf("trip %s stop %s: %w", st.TripID, st.StopID, err)
			}
			if st.DepartureSec, err = utils.ParseClock(st.Departure); err != nil {
				return fmt.Errorf("trip %s stop %s: %w", st.TripID, st.StopID, err)
			}
			ld.stopTimes[st.TripID] = append(ld.stopTimes[st.TripID], st)
		}
	}
	return nil
}

func (ld *loader) finish() error {
	for id, t := range ld.trips {
		ld.g.AddTrip(t, ld.stopTimes[id])
	}
	ld.g.Finalize()
	return nil
}
