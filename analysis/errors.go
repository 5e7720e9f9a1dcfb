package analysis

import (
	"fmt"
	"strings"
)

// NotFoundError reports that a caller-supplied identifier resolved to
// nothing. Available lists the real alternatives so the caller can correct
// the request.
type NotFoundError struct {
	What      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no %s found", e.What)
	}
	return fmt.Sprintf("no %s found; available: %s", e.What, strings.Join(e.Available, ", "))
}
