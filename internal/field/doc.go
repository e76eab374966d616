// Package field provides cell-centred fields on a face-addressed mesh.
//
// A field stores one value per cell ([Field.Internal]) and one value per
// boundary face, grouped by patch ([Field.Boundary]). Every field carries its
// physical dimensions as gonum [unit.Dimensions]; arithmetic helpers refuse
// to add or compare fields whose dimensions differ.
//
//   - [Scalar]: volScalarField analogue
//   - [Vector]: cell vectors ([Vec3])
//   - [Tensor]: cell second-order tensors ([Tensor3])
package field
