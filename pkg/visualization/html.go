package visualization

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"slicestack3d/pkg/metrics"
)

// RenderHTML writes an interactive 3D scatter of the present voxels. Points
// are colored by their normalized value; absent voxels are left out.
// stride > 1 keeps every stride-th row and column to bound the payload.
func (v *Viewer) RenderHTML(w io.Writer, title string, stride int) error {
	if title == "" {
		title = "3D Reconstruction of 2D Slices"
	}

	vol := v.vol
	data := v.scatterData(stride)

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%dx%dx%d voxels, %d shown", vol.Depth, vol.Height, vol.Width, len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "Column"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Row"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Slice"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: viridisStops},
		}),
	)
	scatter.AddSeries("voxels", data)

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// scatterData collects the present voxels on every stride-th row and column
// as (column, row, height, value) points.
func (v *Viewer) scatterData(stride int) []opts.Chart3DData {
	if stride < 1 {
		stride = 1
	}

	vol := v.vol
	data := make([]opts.Chart3DData, 0, vol.Len()/(stride*stride)+1)
	for z := 0; z < vol.Depth; z++ {
		values, absent := vol.Slice(z)
		scale := 1.0
		if v.opts.Normalize {
			scale = metrics.SafeMax(values, absent)
		}
		for row := 0; row < vol.Height; row += stride {
			for col := 0; col < vol.Width; col += stride {
				i := row*vol.Width + col
				if absent[i] {
					continue
				}
				data = append(data, opts.Chart3DData{
					Value: []interface{}{col, row, float64(z) * v.opts.SliceGap, values[i] / scale},
				})
			}
		}
	}
	return data
}
