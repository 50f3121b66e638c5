// Package particle defines the point-mass record, the generation-counted
// [Store] that owns it, and the per-substep [Accumulators] that interactions
// and constraints write into.
//
// A [Ref] is a small value handle. It stays valid when the store reorders its
// dense array ([Store.Swap], [Store.Shuffle]) and stops resolving, with
// dynamo.ErrUnknownEntity, once the particle is removed.
//
// Scratch forces, impulses and displacements live in [Accumulators], indexed
// by dense position, not on the particle itself. The owner resets them after
// each integration and hooks [Accumulators.Swap] into [Store.OnSwap] so
// entries still queued follow a reordering.
package particle
