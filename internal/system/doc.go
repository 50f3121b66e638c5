// Package system owns a particle population together with its interactions
// and constraints, and advances it in fixed substeps.
//
// Each substep of [System.StepForward] runs, in order:
//
//  1. every interaction, accumulating forces into per-substep scratch
//  2. semi-implicit Euler integration of every particle, then a scratch reset
//  3. a dynamic projection of every constraint
//  4. velocity reconstruction from the position delta
//
// The order is load-bearing; the phases are never interleaved.
// [System.StaticConstraintPass] repeats constraint projection alone with an
// infinite time step to relax initial conditions.
//
// Recoverable errors raised during a step (degenerate geometry, stale
// references, non-finite values) are logged and counted on the tally scope;
// the offending contribution is skipped and the step continues.
//
// A System is not safe for concurrent use.
package system
