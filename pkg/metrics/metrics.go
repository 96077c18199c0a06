// Package metrics derives scalar summaries from a voxel volume: a Riemann-sum
// volume and a gradient-based surface area approximation.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"slicestack3d/internal/models"
)

// Result holds the metrics computed for one volume.
type Result struct {
	// Volume is the sum of voxel values scaled by the voxel size, in cubic units
	Volume float64

	// SurfaceArea is the sum of gradient magnitudes, in units^2 by convention
	SurfaceArea float64
}

// SliceStat summarizes one slice of a volume.
type SliceStat struct {
	Index   int
	Filled  int     // present voxels equal to 1
	Present int     // voxels not marked absent
	Mean    float64 // mean of present values, 0 when none are present
	Max     float64 // normalization maximum, see SafeMax
}

// Volume sums all voxel values, counting absent voxels as 0, and scales the
// sum by dx*dy*dz. Voxels are membership indicators so this approximates
// (filled voxels) * dx * dy * dz.
func Volume(vol *models.Volume, dx, dy, dz float64) float64 {
	return floats.Sum(vol.Dense()) * dx * dy * dz
}

// VolumeOf is Volume using the volume's own voxel size.
func VolumeOf(vol *models.Volume) float64 {
	return Volume(vol, vol.VoxelSize.X, vol.VoxelSize.Y, vol.VoxelSize.Z)
}

// Gradient returns the finite-difference derivative of the volume along the
// slice, row and column axes. Absent voxels are read as 0. Interior points
// use central differences and the first and last points one-sided ones. An
// axis with a single sample has zero derivative.
func Gradient(vol *models.Volume) (gz, gy, gx []float64) {
	data := vol.Dense()
	gz = derivative(data, vol.Depth, vol.Width*vol.Height)
	gy = derivative(data, vol.Height, vol.Width)
	gx = derivative(data, vol.Width, 1)
	return gz, gy, gx
}

// derivative differentiates along the axis with n samples spaced stride apart.
func derivative(data []float64, n, stride int) []float64 {
	out := make([]float64, len(data))
	if n < 2 {
		return out
	}

	for i := range data {
		pos := (i / stride) % n
		switch pos {
		case 0:
			out[i] = data[i+stride] - data[i]
		case n - 1:
			out[i] = data[i] - data[i-stride]
		default:
			out[i] = (data[i+stride] - data[i-stride]) / 2
		}
	}
	return out
}

// SurfaceArea approximates the object's surface as the sum over voxels of the
// gradient magnitude. The result is large where the field changes sharply and
// zero for a constant field. It never fails on absent voxels.
func SurfaceArea(vol *models.Volume) float64 {
	gz, gy, gx := Gradient(vol)
	total := 0.0
	for i := range gz {
		total += math.Sqrt(gz[i]*gz[i] + gy[i]*gy[i] + gx[i]*gx[i])
	}
	return total
}

// Compute returns both metrics using the volume's voxel size.
func Compute(vol *models.Volume) Result {
	return Result{
		Volume:      VolumeOf(vol),
		SurfaceArea: SurfaceArea(vol),
	}
}

// SafeMax returns the largest present value. When nothing is present, or the
// maximum is not positive, it returns 1 so it can be used as a normalization
// denominator.
func SafeMax(values []float64, absent []bool) float64 {
	maxVal := math.Inf(-1)
	for i, v := range values {
		if absent != nil && absent[i] {
			continue
		}
		if math.IsNaN(v) {
			continue
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.IsInf(maxVal, -1) || maxVal <= 0 {
		return 1
	}
	return maxVal
}

// SliceStats summarizes every slice of the volume.
func SliceStats(vol *models.Volume) []SliceStat {
	stats := make([]SliceStat, vol.Depth)
	present := make([]float64, 0, vol.Width*vol.Height)

	for z := 0; z < vol.Depth; z++ {
		values, absent := vol.Slice(z)
		present = present[:0]
		filled := 0
		for i, v := range values {
			if absent[i] {
				continue
			}
			present = append(present, v)
			if v == 1 {
				filled++
			}
		}

		s := SliceStat{
			Index:   z,
			Filled:  filled,
			Present: len(present),
			Max:     SafeMax(values, absent),
		}
		if len(present) > 0 {
			s.Mean = stat.Mean(present, nil)
		}
		stats[z] = s
	}
	return stats
}
