package visualization

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slicestack3d/internal/models"
	"slicestack3d/pkg/synthesis"
)

// createTestVolume builds a small shrinking-disk volume
func createTestVolume(t *testing.T, depth, size int) *models.Volume {
	t.Helper()
	p := synthesis.Params{
		Mode:      synthesis.Shrinking,
		Height:    size,
		Width:     size,
		NumSlices: depth,
		MaxRadius: float64(size) / 3,
	}
	vol, err := synthesis.Generate(p)
	if err != nil {
		t.Fatalf("Failed to generate test volume: %v", err)
	}
	return vol
}

// TestNewViewer verifies that options are sanitized
func TestNewViewer(t *testing.T) {
	vol := createTestVolume(t, 2, 8)

	viewer := NewViewer(vol, Options{SliceGap: -1, Alpha: 3})
	if viewer.opts.SliceGap != 1 {
		t.Errorf("Expected slice gap 1, got %f", viewer.opts.SliceGap)
	}
	if viewer.opts.Alpha != 1 {
		t.Errorf("Expected alpha clamped to 1, got %f", viewer.opts.Alpha)
	}

	viewer = NewViewer(vol, Options{Alpha: -0.5})
	if viewer.opts.Alpha != 0 {
		t.Errorf("Expected alpha clamped to 0, got %f", viewer.opts.Alpha)
	}
}

// TestExtractSlice verifies plane dimensions and argument checks
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 8, 5
	vol, err := models.NewVolume(depth, height, width)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}
	viewer := NewViewer(vol, DefaultOptions())

	cases := []struct {
		axis string
		pos  int
		w, h int
	}{
		{"z", depth - 1, width, height},
		{"x", width / 2, depth, height},
		{"y", height / 2, width, depth},
	}
	for _, c := range cases {
		img, err := viewer.ExtractSlice(c.axis, c.pos)
		if err != nil {
			t.Fatalf("Failed to extract %s slice: %v", c.axis, err)
		}
		b := img.Bounds()
		if b.Dx() != c.w || b.Dy() != c.h {
			t.Errorf("Expected %s slice dimensions %dx%d, got %dx%d", c.axis, c.w, c.h, b.Dx(), b.Dy())
		}
	}

	if _, err := viewer.ExtractSlice("invalid", 0); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
	if _, err := viewer.ExtractSlice("z", depth); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
	if _, err := viewer.ExtractSlice("x", -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

// TestSliceColorsTransparency verifies that absent voxels are transparent
// and present voxels carry the configured alpha
func TestSliceColorsTransparency(t *testing.T) {
	vol := createTestVolume(t, 3, 12)
	viewer := NewViewer(vol, DefaultOptions())

	img, err := viewer.SliceColors(0)
	if err != nil {
		t.Fatalf("SliceColors failed: %v", err)
	}

	center := img.NRGBAAt(6, 6)
	if center.A != 204 {
		t.Errorf("Expected center alpha 204, got %d", center.A)
	}
	want := Viridis(1)
	if center.R != want.R || center.G != want.G || center.B != want.B {
		t.Errorf("Expected filled voxel colored %v, got %v", want, center)
	}

	corner := img.NRGBAAt(0, 0)
	if corner != (color.NRGBA{}) {
		t.Errorf("Expected transparent corner, got %v", corner)
	}
}

// TestAllAbsentSlice verifies that a slice without present voxels renders
// fully transparent instead of failing
func TestAllAbsentSlice(t *testing.T) {
	vol, _ := models.NewVolume(2, 4, 4)
	vol.FillAbsent()
	viewer := NewViewer(vol, DefaultOptions())

	img, err := viewer.SliceColors(1)
	if err != nil {
		t.Fatalf("SliceColors failed: %v", err)
	}
	for _, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Expected fully transparent slice, found byte %d", b)
		}
	}
}

// TestUnnormalizedColors verifies raw values are used when normalization is off
func TestUnnormalizedColors(t *testing.T) {
	vol, _ := models.NewVolume(1, 2, 2)
	vol.Set(0, 0, 0, 0.5)

	norm := NewViewer(vol, Options{Alpha: 1, Normalize: true})
	raw := NewViewer(vol, Options{Alpha: 1})

	a, _ := norm.SliceColors(0)
	b, _ := raw.SliceColors(0)
	if a.NRGBAAt(0, 0) != Viridis(1) {
		t.Errorf("Expected normalized max to map to top of colormap, got %v", a.NRGBAAt(0, 0))
	}
	if b.NRGBAAt(0, 0) != Viridis(0.5) {
		t.Errorf("Expected raw value 0.5 to map to middle of colormap, got %v", b.NRGBAAt(0, 0))
	}
}

// TestViridis checks the colormap endpoints and clamping
func TestViridis(t *testing.T) {
	if got := Viridis(0); got != (color.NRGBA{R: 0x44, G: 0x01, B: 0x54, A: 255}) {
		t.Errorf("Unexpected low color %v", got)
	}
	if got := Viridis(1); got != (color.NRGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 255}) {
		t.Errorf("Unexpected high color %v", got)
	}
	if Viridis(math.NaN()) != Viridis(0) || Viridis(-2) != Viridis(0) || Viridis(7) != Viridis(1) {
		t.Error("Expected out of range values to be clamped")
	}
}

// TestSaveSliceSequence verifies one PNG per plane is written
func TestSaveSliceSequence(t *testing.T) {
	vol := createTestVolume(t, 4, 6)
	viewer := NewViewer(vol, DefaultOptions())
	dir := t.TempDir()

	for _, axis := range []string{"x", "y", "z"} {
		if err := viewer.SaveSliceSequence(axis, filepath.Join(dir, axis)); err != nil {
			t.Fatalf("SaveSliceSequence(%s) failed: %v", axis, err)
		}
	}

	expected := map[string]int{"x": 6, "y": 6, "z": 4}
	for axis, n := range expected {
		entries, err := os.ReadDir(filepath.Join(dir, axis))
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != n {
			t.Errorf("Expected %d %s slices, got %d", n, axis, len(entries))
		}
		first := filepath.Join(dir, axis, fmt.Sprintf("slice_%s_%03d.png", axis, 0))
		if _, err := os.Stat(first); err != nil {
			t.Errorf("Expected %s to exist: %v", first, err)
		}
	}

	if err := viewer.SaveSliceSequence("w", dir); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}

// TestRenderStackAndProfile verifies that the gonum/plot figures are written
func TestRenderStackAndProfile(t *testing.T) {
	vol := createTestVolume(t, 3, 10)
	viewer := NewViewer(vol, DefaultOptions())
	dir := t.TempDir()

	stackPath := filepath.Join(dir, "stack.png")
	if err := viewer.RenderStack(stackPath, ""); err != nil {
		t.Fatalf("RenderStack failed: %v", err)
	}
	profilePath := filepath.Join(dir, "profile.png")
	if err := viewer.RenderProfile(profilePath); err != nil {
		t.Fatalf("RenderProfile failed: %v", err)
	}

	for _, p := range []string{stackPath, profilePath} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", p, err)
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s to be non-empty", p)
		}
	}
}

// TestStackDataRange verifies the projected extent covers the whole stack
func TestStackDataRange(t *testing.T) {
	vol := createTestVolume(t, 5, 10)
	s := sliceStack{v: NewViewer(vol, Options{SliceGap: 2})}

	xmin, xmax, ymin, ymax := s.DataRange()
	if xmin != 0 || ymin != 0 {
		t.Errorf("Expected range to start at origin, got (%v, %v)", xmin, ymin)
	}
	if math.Abs(xmax-(10+rowShear*10)) > 1e-9 {
		t.Errorf("Unexpected xmax %v", xmax)
	}
	if math.Abs(ymax-(4*2*stackScale+rowLift*10)) > 1e-9 {
		t.Errorf("Unexpected ymax %v", ymax)
	}
}

// TestRenderHTML verifies that the interactive chart is produced
func TestRenderHTML(t *testing.T) {
	vol := createTestVolume(t, 3, 10)
	viewer := NewViewer(vol, DefaultOptions())

	var buf bytes.Buffer
	if err := viewer.RenderHTML(&buf, "Voxel Stack", 2); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Voxel Stack") {
		t.Error("Expected chart title in output")
	}
	if !strings.Contains(out, "echarts") {
		t.Error("Expected echarts script in output")
	}
}

// TestScatterDataStride verifies that the stride thins rows and columns
func TestScatterDataStride(t *testing.T) {
	vol, err := models.NewVolume(2, 4, 6)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}
	vol.SetAbsent(0, 0, 0)
	viewer := NewViewer(vol, DefaultOptions())

	if got := len(viewer.scatterData(1)); got != 47 {
		t.Errorf("Stride 1: expected 47 points, got %d", got)
	}
	// rows {0,2} x cols {0,2,4} per slice, minus the absent corner
	if got := len(viewer.scatterData(2)); got != 11 {
		t.Errorf("Stride 2: expected 11 points, got %d", got)
	}
	if got := len(viewer.scatterData(0)); got != 47 {
		t.Errorf("Stride 0: expected it to behave as 1, got %d points", got)
	}
}

// TestModeOptions verifies the per-mode rendering defaults
func TestModeOptions(t *testing.T) {
	uniform := ModeOptions(synthesis.Uniform)
	if uniform.Alpha != 0.5 || uniform.Normalize {
		t.Errorf("Uniform: expected alpha 0.5 with raw values, got %+v", uniform)
	}

	shrinking := ModeOptions(synthesis.Shrinking)
	if shrinking != DefaultOptions() {
		t.Errorf("Shrinking: expected %+v, got %+v", DefaultOptions(), shrinking)
	}
}
