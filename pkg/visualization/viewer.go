package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"slicestack3d/internal/models"
	"slicestack3d/pkg/metrics"
	"slicestack3d/pkg/synthesis"
)

// Options controls how voxels are colored.
type Options struct {
	// SliceGap is the vertical distance between consecutive slices in the
	// stacked rendering
	SliceGap float64

	// Alpha is the opacity of present voxels, in [0,1]. Absent voxels are
	// always fully transparent.
	Alpha float64

	// Normalize divides each plane by its maximum present value before
	// looking up colors
	Normalize bool
}

// DefaultOptions returns options for volumes with absent voxels: opaque
// enough to read the object and normalized per plane.
func DefaultOptions() Options {
	return Options{SliceGap: 1, Alpha: 0.8, Normalize: true}
}

// ModeOptions returns the rendering defaults for a synthesis mode. Uniform
// stacks have no transparent background, so they are drawn at half opacity
// with raw values on the colormap.
func ModeOptions(mode synthesis.Mode) Options {
	if mode == synthesis.Uniform {
		return Options{SliceGap: 1, Alpha: 0.5}
	}
	return DefaultOptions()
}

// Viewer renders a volume as colored slices
type Viewer struct {
	// vol holds the voxel grid; it is never modified
	vol *models.Volume

	opts Options
}

// NewViewer creates a new viewer for vol
func NewViewer(vol *models.Volume, opts Options) *Viewer {
	if opts.SliceGap <= 0 {
		opts.SliceGap = 1
	}
	if opts.Alpha < 0 {
		opts.Alpha = 0
	} else if opts.Alpha > 1 {
		opts.Alpha = 1
	}
	return &Viewer{vol: vol, opts: opts}
}

// SliceColors returns the RGBA face colors of slice z. Present voxels are
// colored by value and absent voxels are transparent.
func (v *Viewer) SliceColors(z int) (*image.NRGBA, error) {
	return v.ExtractSlice("z", z)
}

// ExtractSlice extracts a colored 2D plane from the volume along the
// specified axis. A "z" plane is a stored slice; "x" and "y" planes cut
// through the stack.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.NRGBA, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	vol := v.vol
	var w, h int
	var at func(x, y int) int

	switch axis {
	case "x", "X":
		// YZ plane: horizontal axis is the slice index
		if position >= vol.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, vol.Width)
		}
		w, h = vol.Depth, vol.Height
		at = func(x, y int) int { return vol.Index(x, y, position) }

	case "y", "Y":
		// XZ plane: vertical axis is the slice index
		if position >= vol.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, vol.Height)
		}
		w, h = vol.Width, vol.Depth
		at = func(x, y int) int { return vol.Index(y, position, x) }

	case "z", "Z":
		if position >= vol.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, vol.Depth)
		}
		w, h = vol.Width, vol.Height
		at = func(x, y int) int { return vol.Index(position, y, x) }

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	values := make([]float64, w*h)
	absent := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := at(x, y)
			values[y*w+x] = vol.Data[idx]
			absent[y*w+x] = vol.Absent[idx]
		}
	}

	return v.colorize(values, absent, w, h), nil
}

// colorize maps a plane of values to colors. The normalization maximum comes
// from metrics.SafeMax so a plane without present voxels never divides by
// zero or NaN.
func (v *Viewer) colorize(values []float64, absent []bool, w, h int) *image.NRGBA {
	scale := 1.0
	if v.opts.Normalize {
		scale = metrics.SafeMax(values, absent)
	}
	alpha := uint8(v.opts.Alpha*255 + 0.5)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if absent[i] {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			c := Viridis(values[i] / scale)
			c.A = alpha
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// SaveSlice saves an extracted slice as a PNG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveSliceSequence extracts and saves every plane along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.vol.Width
	case "y", "Y":
		maxPos = v.vol.Height
	case "z", "Z":
		maxPos = v.vol.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
