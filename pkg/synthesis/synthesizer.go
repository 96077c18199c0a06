// Package synthesis generates synthetic slice stacks that mimic CT/MRI data.
// Each slice carries a filled disk centered on the slice; the two modes differ
// in what surrounds the disk and in how its radius changes along the stack.
package synthesis

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"slicestack3d/internal/models"
)

// Mode selects how the slice stack is filled.
type Mode string

const (
	// Uniform fills the background with pseudo-random values in [0,1) and
	// draws a disk of fixed radius on every slice.
	Uniform Mode = "uniform"

	// Shrinking leaves the background absent and draws a disk whose radius
	// shrinks linearly from MaxRadius to MaxRadius/2 across the stack.
	Shrinking Mode = "shrinking"
)

// Filled is the value written to voxels inside the disk.
const Filled = 1.0

var (
	// ErrInvalidShape is returned for non-positive slice dimensions or counts.
	ErrInvalidShape = errors.New("invalid shape: height, width and slice count must be positive")

	// ErrInvalidRadius is returned for a negative radius.
	ErrInvalidRadius = errors.New("invalid radius: must be non-negative")

	// ErrUnknownMode is returned when Params.Mode is not a known mode.
	ErrUnknownMode = errors.New("unknown synthesis mode")
)

// Params holds the synthesis parameters.
type Params struct {
	// Mode selects uniform or shrinking synthesis
	Mode Mode

	// Height and Width are the dimensions of each slice
	Height int
	Width  int

	// NumSlices is the number of slices in the stack
	NumSlices int

	// Radius is the disk radius used by Uniform
	Radius float64

	// MaxRadius is the radius of the first slice used by Shrinking
	MaxRadius float64

	// Seed seeds the Uniform background. Zero picks a random seed.
	Seed uint64
}

// DefaultParams returns the parameters of the reference 50x50x20 phantom.
func DefaultParams() Params {
	return Params{
		Mode:      Uniform,
		Height:    50,
		Width:     50,
		NumSlices: 20,
		Radius:    10,
		MaxRadius: 10,
	}
}

// ParseMode accepts both the short mode names and their long aliases.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "uniform", "uniform_radius":
		return Uniform, nil
	case "shrinking", "shrinking_radius_with_transparency":
		return Shrinking, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (p Params) validate() error {
	if p.Height <= 0 || p.Width <= 0 || p.NumSlices <= 0 {
		return fmt.Errorf("%w: %dx%d with %d slices", ErrInvalidShape, p.Height, p.Width, p.NumSlices)
	}
	return nil
}

// Generate builds a volume according to p.Mode.
func Generate(p Params) (*models.Volume, error) {
	switch p.Mode {
	case Uniform:
		return GenerateUniform(p)
	case Shrinking:
		return GenerateShrinking(p)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
}

// GenerateUniform fills every voxel with a pseudo-random value in [0,1) and
// then overwrites the voxels inside a disk of radius p.Radius with Filled.
// Only the disk is deterministic unless p.Seed is set.
func GenerateUniform(p Params) (*models.Volume, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Radius < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, p.Radius)
	}

	vol, err := models.NewVolume(p.NumSlices, p.Height, p.Width)
	if err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	for i := range vol.Data {
		vol.Data[i] = rng.Float64()
	}

	cr, cc := p.Height/2, p.Width/2
	for z := 0; z < p.NumSlices; z++ {
		fillDisk(vol, z, cr, cc, p.Radius)
	}

	return vol, nil
}

// GenerateShrinking marks every voxel absent and draws, on each slice, a disk
// whose radius comes from Radii(p.MaxRadius, p.NumSlices). The output is
// fully deterministic.
func GenerateShrinking(p Params) (*models.Volume, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.MaxRadius < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, p.MaxRadius)
	}

	vol, err := models.NewVolume(p.NumSlices, p.Height, p.Width)
	if err != nil {
		return nil, err
	}
	vol.FillAbsent()

	radii := Radii(p.MaxRadius, p.NumSlices)
	cr, cc := p.Height/2, p.Width/2
	for z, r := range radii {
		fillDisk(vol, z, cr, cc, r)
	}

	return vol, nil
}

// Radii returns numSlices evenly spaced radii from maxRadius down to
// maxRadius/2, endpoints included. A single slice gets maxRadius.
func Radii(maxRadius float64, numSlices int) []float64 {
	if numSlices <= 0 {
		return nil
	}
	radii := make([]float64, numSlices)
	if numSlices == 1 {
		radii[0] = maxRadius
		return radii
	}

	floats.Span(radii, maxRadius, maxRadius/2)
	// Span accumulates rounding error on the last step.
	radii[0] = maxRadius
	radii[numSlices-1] = maxRadius / 2
	return radii
}

// Inside reports whether (row, col) lies strictly within radius of the
// center. Voxels on the boundary are outside.
func Inside(row, col, centerRow, centerCol int, radius float64) bool {
	dr := float64(row - centerRow)
	dc := float64(col - centerCol)
	return dr*dr+dc*dc < radius*radius
}

// DiskArea counts the voxels of a height x width slice that Inside accepts
// for a disk centered at (height/2, width/2).
func DiskArea(height, width int, radius float64) int {
	cr, cc := height/2, width/2
	count := 0
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if Inside(row, col, cr, cc, radius) {
				count++
			}
		}
	}
	return count
}

func fillDisk(vol *models.Volume, z, cr, cc int, radius float64) {
	for row := 0; row < vol.Height; row++ {
		for col := 0; col < vol.Width; col++ {
			if Inside(row, col, cr, cc, radius) {
				vol.Set(z, row, col, Filled)
			}
		}
	}
}
