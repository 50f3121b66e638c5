// Package interaction dispatches force laws onto coupled particles.
//
// Three shapes are provided, chosen per interaction instance:
//
//   - [Simple]: a [SimpleForce] evaluated for each coupled particle on its
//     own state (constant forces, uniform gravity).
//   - [Field]: a [FieldForce] that first folds every coupled particle into
//     private state, integrates, answers per-particle queries and is then
//     cleared (mean-field gravity, box walls).
//   - [Pairwise]: a [PairForce] evaluated once per unordered pair and applied
//     with equal and opposite sign (gravity, electrostatics, Mie/Lennard-Jones).
//
// Errors from a law skip that particle or pair for the substep and are
// handed to the frame's Report sink. Non-finite results are dropped the same
// way with dynamo.ErrNonFinite.
package interaction
