// Package constraint implements compliant position-based constraints (XPBD).
//
// A concrete constraint supplies a [Function]: a scalar C over its coupled
// particles and the gradient of C with respect to each position. [XPBD]
// does the rest: the Lagrange multiplier update with compliance and
// dissipation, the per-particle correction weighted by inverse mass, the
// force estimate and breakage.
//
// Builtins:
//
//	Distance      Equation    C = d - L
//	NonPenetrate  Inequality  C = d - (r1 + r2)
//	ContactPlane  Inequality  C = (x - p).n - r
//
// An Equation is satisfied at C == 0, an Inequality at C >= 0. A static
// projection runs with dt = +Inf, so compliance and dissipation drop out and
// the correction is purely geometric.
package constraint
