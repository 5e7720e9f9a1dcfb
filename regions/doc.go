// Package regions assigns stop coordinates to named geographic regions.
//
// The default boundary set covers the five New York City boroughs as simple
// polygons focused on the subway service area. Boundaries are versioned data
// (boundaries.yml), not code: corrections are made by editing or swapping
// the YAML file. Classification is a pure point-in-polygon test with a
// stable evaluation order, so results are reproducible bit-for-bit.
package regions
