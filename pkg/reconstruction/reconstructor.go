package reconstruction

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"slicestack3d/internal/models"
	"slicestack3d/pkg/metrics"
	"slicestack3d/pkg/synthesis"
	"slicestack3d/pkg/visualization"
)

// Params holds the pipeline parameters.
type Params struct {
	// Synthesis controls how the slice stack is generated.
	Synthesis synthesis.Params

	// VoxelSize scales the volume metric.
	VoxelSize models.VoxelSize

	// Render controls coloring of the visual outputs.
	Render visualization.Options

	// PlotFile receives the stacked 3D view. Empty skips it.
	PlotFile string

	// ProfileFile receives the filled-voxels-per-slice chart. Empty skips it.
	ProfileFile string

	// HTMLFile receives the interactive 3D chart. Empty skips it.
	HTMLFile string

	// HTMLStride keeps every HTMLStride-th row and column in the
	// interactive chart. Values below 1 mean 1.
	HTMLStride int

	// SlicesDir receives one PNG per plane along every axis. Empty skips it.
	SlicesDir string

	// Logger receives progress messages. Nil discards them.
	Logger *slog.Logger
}

// Reconstructor synthesizes a slice stack, measures it and renders it.
//
// The process consists of three steps:
// 1. Generating the slice stack
// 2. Computing volume and surface area
// 3. Rendering the requested visual outputs
type Reconstructor struct {
	// params stores the pipeline configuration
	params *Params

	// runID tags log lines of one run
	runID string

	logger *slog.Logger

	// volume is the synthesized stack, nil before Process
	volume *models.Volume

	// metrics stores the measurements after Process
	metrics metrics.Result
}

// NewReconstructor creates a new reconstructor instance with the provided parameters.
func NewReconstructor(params *Params) *Reconstructor {
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runID := uuid.NewString()
	return &Reconstructor{
		params: params,
		runID:  runID,
		logger: logger.With("run_id", runID),
	}
}

// Process runs the complete pipeline
func (r *Reconstructor) Process() error {
	// Step 1: Generate slices
	r.logger.Info("Step 1: Generating slice stack",
		"mode", r.params.Synthesis.Mode,
		"slices", r.params.Synthesis.NumSlices,
		"height", r.params.Synthesis.Height,
		"width", r.params.Synthesis.Width)

	// A zero VoxelSize keeps the unit default; anything else must be complete.
	if r.params.VoxelSize != (models.VoxelSize{}) {
		if err := r.params.VoxelSize.Validate(); err != nil {
			return err
		}
	}
	vol, err := synthesis.Generate(r.params.Synthesis)
	if err != nil {
		return fmt.Errorf("failed to generate slices: %w", err)
	}
	if r.params.VoxelSize != (models.VoxelSize{}) {
		vol.VoxelSize = r.params.VoxelSize
	}
	r.volume = vol

	// Step 2: Compute metrics
	r.logger.Info("Step 2: Computing volume and surface area")
	r.metrics = metrics.Compute(vol)
	r.logger.Debug("metrics computed",
		"volume", r.metrics.Volume,
		"surface_area", r.metrics.SurfaceArea)

	// Step 3: Render outputs
	if err := r.render(); err != nil {
		return fmt.Errorf("failed to render volume: %w", err)
	}

	return nil
}

func (r *Reconstructor) render() error {
	p := r.params
	if p.PlotFile == "" && p.ProfileFile == "" && p.HTMLFile == "" && p.SlicesDir == "" {
		r.logger.Debug("Step 3: No visual outputs requested")
		return nil
	}

	r.logger.Info("Step 3: Rendering visual outputs")
	viewer := visualization.NewViewer(r.volume, p.Render)

	if p.PlotFile != "" {
		if err := ensureDir(p.PlotFile); err != nil {
			return err
		}
		if err := viewer.RenderStack(p.PlotFile, r.title()); err != nil {
			return err
		}
		r.logger.Info("Saved stack plot", "path", p.PlotFile)
	}

	if p.ProfileFile != "" {
		if err := ensureDir(p.ProfileFile); err != nil {
			return err
		}
		if err := viewer.RenderProfile(p.ProfileFile); err != nil {
			return err
		}
		r.logger.Info("Saved profile plot", "path", p.ProfileFile)
	}

	if p.HTMLFile != "" {
		if err := r.writeHTML(viewer); err != nil {
			return err
		}
		r.logger.Info("Saved interactive chart", "path", p.HTMLFile)
	}

	if p.SlicesDir != "" {
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(p.SlicesDir, axis)
			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				return fmt.Errorf("failed to save %s-axis slices: %w", axis, err)
			}
			r.logger.Debug("Saved slices", "axis", axis, "dir", axisDir)
		}
	}

	return nil
}

func (r *Reconstructor) writeHTML(viewer *visualization.Viewer) error {
	if err := ensureDir(r.params.HTMLFile); err != nil {
		return err
	}
	file, err := os.Create(r.params.HTMLFile)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	return viewer.RenderHTML(file, r.title(), r.params.HTMLStride)
}

func (r *Reconstructor) title() string {
	if r.params.Synthesis.Mode == synthesis.Shrinking {
		return "3D Reconstruction of 2D Slices of Gradually Shrinking Circles"
	}
	return "3D Reconstruction of 2D Slices"
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// GetMetrics returns the measurements of the last run
func (r *Reconstructor) GetMetrics() metrics.Result {
	return r.metrics
}

// GetVolume returns the synthesized volume, nil before Process
func (r *Reconstructor) GetVolume() *models.Volume {
	return r.volume
}

// RunID returns the identifier attached to this run's log lines
func (r *Reconstructor) RunID() string {
	return r.runID
}

// Report prints the metrics. The volume line is only printed in uniform
// mode, where every voxel carries a value.
func (r *Reconstructor) Report(w io.Writer) error {
	if r.params.Synthesis.Mode == synthesis.Uniform {
		if _, err := fmt.Fprintf(w, "Calculated Volume: %v cubic units\n", r.metrics.Volume); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Calculated Surface Area: %v units^2\n", r.metrics.SurfaceArea)
	return err
}
