// Package dynamo holds the types shared by every layer of the particle
// kernel: the error kinds, the diagnostics [Snapshot] and the [Metric] and
// [Observer] contracts.
//
// # Errors
//
// Recoverable numeric and lookup failures are reported, not raised:
//
//   - [ErrDegenerateGeometry]: near-zero separation. The offending pair or
//     constraint is skipped for one substep.
//   - [ErrUnknownEntity]: a stale particle reference.
//   - [ErrNonFinite]: a NaN or Inf force or correction. The value is dropped.
//
// Wrap them with [SimulationError] to attach the substep and time, and test
// with errors.Is.
//
// Constraint breakage is a state transition, not an error.
package dynamo
