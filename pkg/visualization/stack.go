package visualization

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"slicestack3d/pkg/metrics"
)

// Oblique projection used for the stacked view. Rows recede up and to the
// right; slices rise by SliceGap*stackScale.
const (
	rowShear   = 0.5
	rowLift    = 0.3
	stackScale = 2.0
)

// sliceStack draws every slice as a horizontal surface at its slice height.
// It implements plot.Plotter and plot.DataRanger.
type sliceStack struct {
	v *Viewer
}

func (s sliceStack) project(z, row, col float64) (x, y float64) {
	return col + rowShear*row, z*s.v.opts.SliceGap*stackScale + rowLift*row
}

// DataRange implements plot.DataRanger.
func (s sliceStack) DataRange() (xmin, xmax, ymin, ymax float64) {
	vol := s.v.vol
	xmax, _ = s.project(0, float64(vol.Height), float64(vol.Width))
	_, ymax = s.project(float64(vol.Depth-1), float64(vol.Height), 0)
	return 0, xmax, 0, ymax
}

// Plot implements plot.Plotter. Slices are painted bottom to top and, within a
// slice, far rows first so nearer faces blend over them.
func (s sliceStack) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	vol := s.v.vol
	corners := [4][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	pts := make([]vg.Point, 4)

	for z := 0; z < vol.Depth; z++ {
		img, err := s.v.SliceColors(z)
		if err != nil {
			continue
		}
		for row := vol.Height - 1; row >= 0; row-- {
			for col := 0; col < vol.Width; col++ {
				clr := img.NRGBAAt(col, row)
				if clr.A == 0 {
					continue
				}
				for i, d := range corners {
					x, y := s.project(float64(z), float64(row)+d[0], float64(col)+d[1])
					pts[i] = vg.Point{X: trX(x), Y: trY(y)}
				}
				c.FillPolygon(clr, pts)
			}
		}
	}
}

// RenderStack saves a stacked 3D-style view of the volume. The image format
// follows the file extension.
func (v *Viewer) RenderStack(path, title string) error {
	if title == "" {
		title = "3D Reconstruction of 2D Slices"
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column (oblique)"
	p.Y.Label.Text = "Slice"
	p.Add(sliceStack{v: v})

	if err := p.Save(10*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save stack plot: %w", err)
	}
	return nil
}

// RenderProfile saves a line chart of filled voxels per slice.
func (v *Viewer) RenderProfile(path string) error {
	stats := metrics.SliceStats(v.vol)

	pts := make(plotter.XYs, 0, len(stats))
	for _, s := range stats {
		pts = append(pts, plotter.XY{X: float64(s.Index), Y: float64(s.Filled)})
	}

	p := plot.New()
	p.Title.Text = "Filled Voxels per Slice"
	p.X.Label.Text = "Slice"
	p.Y.Label.Text = "Filled voxels"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create profile line: %w", err)
	}
	line.Width = vg.Points(1.5)
	line.Color = Viridis(0.3)
	p.Add(line, plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save profile plot: %w", err)
	}
	return nil
}
