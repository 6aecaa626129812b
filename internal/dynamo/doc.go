// Package dynamo holds the primitives shared by every layer of springsim:
// sentinel errors, tick-scoped error context and the chunked parallel loop
// used when a world steps with more than one worker.
//
//   - [ErrInvalidMass], [ErrDegenerateSpring]: construction failures
//   - [ErrInvalidState]: a body or state that cannot be integrated
//   - [SimulationError]: wraps an error with the tick it occurred on
//   - [ParallelFor]: splits [0, n) across workers and waits for all of them
//
// # Thread Safety
//
// Nothing in this package holds state. [ParallelFor] returns only after every
// chunk has finished, so callers can use it as a phase barrier.
package dynamo
