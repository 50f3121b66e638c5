package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDegenerateGeometry indicates a separation too small to define a direction.
	ErrDegenerateGeometry = errors.New("dynamo: degenerate geometry (near-zero separation)")

	// ErrUnknownEntity indicates a particle reference that no longer resolves.
	ErrUnknownEntity = errors.New("dynamo: unknown entity (stale particle reference)")

	// ErrNonFinite indicates a computed force or correction with NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrInvalidParameter indicates a parameter value is outside valid range.
	ErrInvalidParameter = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownScenario indicates a scenario name with no registered builder.
	ErrUnknownScenario = errors.New("dynamo: unknown scenario")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Substep int
	Time    float64
	Source  string
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("substep %d (t=%.4f) %s: %v", e.Substep, e.Time, e.Source, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
