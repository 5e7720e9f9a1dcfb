// Package export writes derived analytics artifacts: the express-window
// JSON cache consumed by downstream tooling, and CSV renderings of
// travel-time matrices.
package export
