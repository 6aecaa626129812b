package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a movable body constructed with mass <= 0.
	ErrInvalidMass = errors.New("dynamo: mass must be positive")

	// ErrDegenerateSpring indicates spring endpoints that coincide at construction.
	ErrDegenerateSpring = errors.New("dynamo: spring endpoints coincide (rest length is zero)")

	// ErrInvalidState indicates a body that cannot be integrated or a state with NaN/Inf.
	ErrInvalidState = errors.New("dynamo: invalid state")

	// ErrImmovableBody indicates a velocity change requested on a fixed anchor.
	ErrImmovableBody = errors.New("dynamo: body is a fixed anchor")

	// ErrUnknownBody indicates a body reference that does not resolve.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrContextCanceled indicates the simulation was interrupted between ticks.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// SimError is the flat record stored in a run result. Err, when set, is the
// sentinel the record matches under errors.Is.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
