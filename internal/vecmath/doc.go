// Package vecmath provides the 3D vector and 3x3 matrix algebra used by the
// particle kernel.
//
// [Vec3] and [Mat3] are aliases of the mgl64 types, so the full mgl64 method
// set (Add, Sub, Mul, Dot, Cross, Len, Mul3, Mul3x1, ...) is available. This
// package adds the pieces mgl64 leaves to the caller:
//
//   - [Unit]: normalization that reports a zero-length input instead of
//     producing NaN
//   - [IsFinite]: NaN/Inf detection for computed forces and corrections
//   - [CrossMatrix] and [Rotation]: Rodrigues axis-angle rotation
//   - [Polar] and [Spherical]: convenience constructors for placing particles
//
// Matrices are column-major, as in mgl64.
package vecmath
