package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
)

// DirectionLabels maps (route, direction) to a rider-facing label like
// "to Far Rockaway". Overrides loaded from a file win over the derived
// fallback.
type DirectionLabels struct {
	overrides map[[2]string]string
}

// NewDirectionLabels returns an empty label set that always derives.
func NewDirectionLabels() *DirectionLabels {
	return &DirectionLabels{overrides: map[[2]string]string{}}
}

// LoadDirectionLabels reads override rows from a CSV file with columns
// route_id, direction_id, label. A header row is optional.
func LoadDirectionLabels(path string) (*DirectionLabels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	l := NewDirectionLabels()
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("%s: row %d needs route_id, direction_id, label", path, i+1)
		}
		if i == 0 && row[0] == "route_id" {
			continue
		}
		l.overrides[[2]string{row[0], row[1]}] = row[2]
	}
	return l, nil
}

// Label resolves the display label for a route direction. Without an
// override it derives "to <terminal>" from the direction's most common
// terminal name; ties go to the lexicographically smaller name. An unknown
// direction yields "".
func (l *DirectionLabels) Label(ix *gtfs.Index, routeID, directionID, serviceID string) string {
	if v, ok := l.overrides[[2]string{routeID, directionID}]; ok {
		return v
	}
	counts := map[string]int{}
	for _, t := range ix.TripsMatching(routeID, directionID, serviceID) {
		if st, ok := ix.Terminal(t.ID); ok {
			counts[ix.StopName(st.StopID)]++
		}
	}
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return "to " + names[0]
}
