package quotafill

import (
	"errors"
	"fmt"
)

// Safeguard identifiers reported in SafeguardError.Safeguard.
const (
	SafeguardTimeout       = "timeout"
	SafeguardMaxRecords    = "max_records"
	SafeguardMaxIterations = "max_iterations"
)

// ErrSafeguard is matched by every *SafeguardError.
var ErrSafeguard = errors.New("quota fill safeguard tripped")

// SafeguardError reports that a fetch stopped before enough documents passed
// the filter.
type SafeguardError struct {
	Safeguard  string
	Iterations int
	Examined   int
	Passed     int
	Wanted     int
}

func (e *SafeguardError) Error() string {
	return fmt.Sprintf("quota fill stopped by %s safeguard: %d of %d items passed after examining %d in %d iterations",
		e.Safeguard, e.Passed, e.Wanted, e.Examined, e.Iterations)
}

func (e *SafeguardError) Is(target error) bool {
	return target == ErrSafeguard
}
