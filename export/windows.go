package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/regions"
)

// DirectionWindows holds one route direction's express service windows per
// region, plus its display label. The JSON form keeps region names at the
// same level as direction_name:
//
//	{"direction_name": "to Jamaica", "Manhattan": ["07:15:00", "09:40:00"]}
type DirectionWindows struct {
	DirectionName string
	Regions       map[string][2]string
}

// WindowCache is the derived express-window artifact, keyed
// service -> route -> direction.
type WindowCache map[string]map[string]map[string]DirectionWindows

// MarshalJSON flattens Regions next to direction_name.
func (d DirectionWindows) MarshalJSON() ([]byte, error) {
	obj := map[string]any{"direction_name": d.DirectionName}
	for region, w := range d.Regions {
		obj[region] = w
	}
	return json.Marshal(obj)
}

// UnmarshalJSON restores the flattened form.
func (d *DirectionWindows) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Regions = map[string][2]string{}
	for k, raw := range obj {
		if k == "direction_name" {
			if err := json.Unmarshal(raw, &d.DirectionName); err != nil {
				return err
			}
			continue
		}
		var w [2]string
		if err := json.Unmarshal(raw, &w); err != nil {
			return fmt.Errorf("window for %q: %w", k, err)
		}
		d.Regions[k] = w
	}
	return nil
}

// BuildWindowCache classifies every route of every service pattern and
// collects the express windows per region. Directions with no express
// service anywhere are omitted.
func BuildWindowCache(ix *gtfs.Index, cls *regions.Classifier, labels *analysis.DirectionLabels) WindowCache {
	cache := WindowCache{}
	for _, serviceID := range ix.ServiceIDs() {
		for _, routeID := range ix.RouteIDs() {
			for _, directionID := range ix.DirectionsFor(routeID, serviceID) {
				c := analysis.Classify(ix, cls, routeID, directionID, serviceID)
				dw := DirectionWindows{
					DirectionName: labels.Label(ix, routeID, directionID, serviceID),
					Regions:       map[string][2]string{},
				}
				for _, region := range c.Regions {
					if first, last, ok := analysis.ExpressWindow(c, region); ok {
						dw.Regions[regions.DisplayName(region)] = [2]string{first, last}
					}
				}
				if len(dw.Regions) == 0 {
					continue
				}
				if cache[serviceID] == nil {
					cache[serviceID] = map[string]map[string]DirectionWindows{}
				}
				if cache[serviceID][routeID] == nil {
					cache[serviceID][routeID] = map[string]DirectionWindows{}
				}
				cache[serviceID][routeID][directionID] = dw
			}
		}
	}
	return cache
}

// WriteWindowCache writes the cache as JSON, replacing the target file
// atomically so readers never observe a partial write.
func WriteWindowCache(path string, cache WindowCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".windows-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadWindowCache reads a previously written cache.
func LoadWindowCache(path string) (WindowCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache WindowCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return cache, nil
}
