// Package server exposes the schedule analytics engine over HTTP.
//
// Routes are read-only GET endpoints under /api; every response carries a
// generated analysis id for log correlation, and Prometheus metrics are
// served on /metrics from a dedicated registry.
package server
