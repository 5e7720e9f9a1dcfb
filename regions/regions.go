package regions

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed boundaries.yml
var defaultBoundaries []byte

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Boundary is a named closed polygon, expressed as a ring of points with the
// first point repeated last.
type Boundary struct {
	Name string
	Ring []Point
}

// Classifier assigns coordinates to named regions. Boundaries are evaluated
// in the order given; they are approximate and may overlap near edges, so
// the first containing region wins.
type Classifier struct {
	boundaries []Boundary
}

type boundaryFile struct {
	Version int `yaml:"version"`
	Regions []struct {
		Name string       `yaml:"name"`
		Ring [][2]float64 `yaml:"ring"`
	} `yaml:"regions"`
}

// NewClassifier returns a classifier over the built-in boundary set.
func NewClassifier() *Classifier {
	c, err := parseBoundaries(defaultBoundaries)
	if err != nil {
		// The embedded data is validated by tests; a parse failure here is a
		// build defect, not a runtime condition.
		panic(err)
	}
	return c
}

// NewClassifierFromFile loads boundary data from a YAML file, allowing
// boundary corrections without code changes.
func NewClassifierFromFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBoundaries(data)
}

func parseBoundaries(data []byte) (*Classifier, error) {
	var f boundaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("boundary data contains no regions")
	}
	c := &Classifier{}
	for _, r := range f.Regions {
		if len(r.Ring) < 4 {
			return nil, fmt.Errorf("region %q: ring needs at least 4 points", r.Name)
		}
		b := Boundary{Name: r.Name}
		for _, p := range r.Ring {
			b.Ring = append(b.Ring, Point{Lat: p[0], Lon: p[1]})
		}
		c.boundaries = append(c.boundaries, b)
	}
	return c, nil
}

// Names returns the region names in evaluation order.
func (c *Classifier) Names() []string {
	out := make([]string, 0, len(c.boundaries))
	for _, b := range c.boundaries {
		out = append(out, b.Name)
	}
	return out
}

// RegionOf returns the name of the first region containing the coordinate,
// or "" when the point lies outside every boundary.
func (c *Classifier) RegionOf(lat, lon float64) string {
	for _, b := range c.boundaries {
		if containsPoint(b.Ring, lat, lon) {
			return b.Name
		}
	}
	return ""
}

// containsPoint is a standard ray-casting test. The ring is closed, so the
// final segment duplicates the first point and contributes nothing.
func containsPoint(ring []Point, lat, lon float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Lat > lat) != (pj.Lat > lat) {
			x := (pj.Lon-pi.Lon)*(lat-pi.Lat)/(pj.Lat-pi.Lat) + pi.Lon
			if lon < x {
				inside = !inside
			}
		}
	}
	return inside
}

// DisplayName maps an internal region name to its rider-facing form.
func DisplayName(region string) string {
	if region == "Bronx" {
		return "The Bronx"
	}
	return region
}
