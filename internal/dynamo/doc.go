// Package dynamo provides the primitives shared by the closure packages.
//
// It holds the domain errors every layer wraps and the data-parallel loop
// helper used for cell-wise field work:
//
//   - [ErrInvalidConfig]: coefficient or case settings out of range
//   - [ErrNotConverged]: a linear solve stopped above its tolerance
//   - [ErrDimensionMismatch]: field shapes or physical units disagree
//   - [ParallelFor]: chunked fan-out over [0, n)
//
// # Thread Safety
//
// ParallelFor only hands disjoint index ranges to its workers. Callers must
// make sure the body writes nothing outside its own range.
package dynamo
