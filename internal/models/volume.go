package models

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a volume is created with a
// non-positive width, height or depth.
var ErrInvalidDimensions = errors.New("volume dimensions must be positive")

// ErrInvalidVoxelSize is returned when a voxel dimension is not positive.
var ErrInvalidVoxelSize = errors.New("invalid voxel size: dx, dy and dz must be positive")

// VoxelSize is the physical size of a voxel along each axis.
type VoxelSize struct {
	X, Y, Z float64
}

// Validate checks that every component is positive.
func (s VoxelSize) Validate() error {
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return fmt.Errorf("%w: got %vx%vx%v", ErrInvalidVoxelSize, s.X, s.Y, s.Z)
	}
	return nil
}

// Volume represents a stack of 2D slices as a 3D grid of scalars
type Volume struct {
	// Data is the 3D volume data as a 1D array in row-major order
	// (slice, row, column)
	Data []float64

	// Absent marks voxels that lie outside the object. Absent voxels have no
	// value; Data holds 0 at their positions.
	Absent []bool

	// Width is the number of columns in each slice
	Width int

	// Height is the number of rows in each slice
	Height int

	// Depth is the number of slices
	Depth int

	// VoxelSize is the physical size of each voxel
	VoxelSize VoxelSize
}

// NewVolume allocates a zero-filled volume with unit voxel size. Every voxel
// starts present with value 0.
func NewVolume(depth, height, width int) (*Volume, error) {
	if depth <= 0 || height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDimensions, depth, height, width)
	}

	n := depth * height * width
	return &Volume{
		Data:      make([]float64, n),
		Absent:    make([]bool, n),
		Width:     width,
		Height:    height,
		Depth:     depth,
		VoxelSize: VoxelSize{X: 1, Y: 1, Z: 1},
	}, nil
}

// Len returns the total number of voxels.
func (v *Volume) Len() int {
	return v.Depth * v.Height * v.Width
}

// Index converts (slice, row, column) to an offset into Data.
func (v *Volume) Index(z, row, col int) int {
	return z*v.Width*v.Height + row*v.Width + col
}

// At returns the value at (z, row, col) and whether the voxel is present.
func (v *Volume) At(z, row, col int) (float64, bool) {
	idx := v.Index(z, row, col)
	if v.Absent[idx] {
		return 0, false
	}
	return v.Data[idx], true
}

// Value returns the voxel value with absent voxels read as 0.
func (v *Volume) Value(z, row, col int) float64 {
	idx := v.Index(z, row, col)
	if v.Absent[idx] {
		return 0
	}
	return v.Data[idx]
}

// Set stores a value and marks the voxel present.
func (v *Volume) Set(z, row, col int, value float64) {
	idx := v.Index(z, row, col)
	v.Data[idx] = value
	v.Absent[idx] = false
}

// SetAbsent marks the voxel as outside the object.
func (v *Volume) SetAbsent(z, row, col int) {
	idx := v.Index(z, row, col)
	v.Data[idx] = 0
	v.Absent[idx] = true
}

// IsAbsent reports whether the voxel is outside the object.
func (v *Volume) IsAbsent(z, row, col int) bool {
	return v.Absent[v.Index(z, row, col)]
}

// FillAbsent marks every voxel absent.
func (v *Volume) FillAbsent() {
	for i := range v.Data {
		v.Data[i] = 0
		v.Absent[i] = true
	}
}

// HasAbsent reports whether any voxel is absent.
func (v *Volume) HasAbsent() bool {
	for _, a := range v.Absent {
		if a {
			return true
		}
	}
	return false
}

// Slice returns the values and absent mask of slice z. The returned slices
// alias the volume's storage.
func (v *Volume) Slice(z int) ([]float64, []bool) {
	start := z * v.Width * v.Height
	end := start + v.Width*v.Height
	return v.Data[start:end], v.Absent[start:end]
}

// Dense returns a copy of the data with absent voxels replaced by 0.
func (v *Volume) Dense() []float64 {
	out := make([]float64, len(v.Data))
	for i, val := range v.Data {
		if !v.Absent[i] {
			out[i] = val
		}
	}
	return out
}
