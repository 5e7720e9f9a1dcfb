// Package utils provides shared helpers for the schedule analytics engine.
//
// It contains:
//   - GTFS clock-time parsing and formatting (times may exceed 24:00:00)
//   - Hour-of-day bucketing for post-midnight service
package utils
