package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"slicestack3d/pkg/config"
	"slicestack3d/pkg/reconstruction"
)

// NewRootCmd creates the root command. Without arguments it runs the full
// pipeline with the default parameters.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slicestack3d",
		Short: "Synthesize a slice stack and measure its volume and surface area",
		Long: `slicestack3d generates a stack of 2D slices containing a disk, stacks
them into a 3D volume and prints the volume and the gradient-based surface
area approximation.

Two modes are available:
  uniform    random background, fixed radius on every slice (default)
  shrinking  absent background, radius shrinking to half across the stack`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("config", "", "Path to a YAML config file (default: search XDG config dirs)")
	f.String("mode", "", "Synthesis mode: uniform or shrinking")
	f.Int("height", 0, "Slice height in voxels")
	f.Int("width", 0, "Slice width in voxels")
	f.Int("slices", 0, "Number of slices")
	f.Float64("radius", 0, "Disk radius in uniform mode")
	f.Float64("max-radius", 0, "First-slice radius in shrinking mode")
	f.Uint64("seed", 0, "Seed for the random background (0 = random)")
	f.Float64("dx", 0, "Voxel size along columns")
	f.Float64("dy", 0, "Voxel size along rows")
	f.Float64("dz", 0, "Voxel size along slices")
	f.String("plot", "", "Write the stacked 3D view to this image file")
	f.String("profile", "", "Write the filled-voxels-per-slice chart to this image file")
	f.String("html", "", "Write an interactive 3D chart to this HTML file")
	f.String("slices-dir", "", "Write one PNG per plane along every axis into this directory")
	f.Float64("alpha", 0, "Opacity of present voxels in renderings (0 = mode default)")
	f.Int("html-stride", 1, "Keep every n-th row and column in the HTML chart")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, out io.Writer) error {
	configFlag, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(config.FindConfigFile(configFlag))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	synth, err := cfg.SynthesisParams()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Output.Verbose)
	slog.SetDefault(logger)

	params := &reconstruction.Params{
		Synthesis: synth,
		VoxelSize:   cfg.VoxelSize(),
		Render:      cfg.RenderOptions(synth.Mode),
		PlotFile:    cfg.Output.PlotFile,
		ProfileFile: cfg.Output.ProfileFile,
		HTMLFile:    cfg.Output.HTMLFile,
		HTMLStride:  cfg.Output.HTMLStride,
		SlicesDir:   cfg.Output.SlicesDir,
		Logger:      logger,
	}

	r := reconstruction.NewReconstructor(params)
	if err := r.Process(); err != nil {
		return fmt.Errorf("reconstruction failed: %w", err)
	}
	return r.Report(out)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("mode") {
		cfg.Synthesis.Mode, _ = f.GetString("mode")
	}
	if f.Changed("height") {
		cfg.Synthesis.Height, _ = f.GetInt("height")
	}
	if f.Changed("width") {
		cfg.Synthesis.Width, _ = f.GetInt("width")
	}
	if f.Changed("slices") {
		cfg.Synthesis.Slices, _ = f.GetInt("slices")
	}
	if f.Changed("radius") {
		cfg.Synthesis.Radius, _ = f.GetFloat64("radius")
	}
	if f.Changed("max-radius") {
		cfg.Synthesis.MaxRadius, _ = f.GetFloat64("max-radius")
	}
	if f.Changed("seed") {
		cfg.Synthesis.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("dx") {
		cfg.Voxel.DX, _ = f.GetFloat64("dx")
	}
	if f.Changed("dy") {
		cfg.Voxel.DY, _ = f.GetFloat64("dy")
	}
	if f.Changed("dz") {
		cfg.Voxel.DZ, _ = f.GetFloat64("dz")
	}
	if f.Changed("plot") {
		cfg.Output.PlotFile, _ = f.GetString("plot")
	}
	if f.Changed("profile") {
		cfg.Output.ProfileFile, _ = f.GetString("profile")
	}
	if f.Changed("html") {
		cfg.Output.HTMLFile, _ = f.GetString("html")
	}
	if f.Changed("slices-dir") {
		cfg.Output.SlicesDir, _ = f.GetString("slices-dir")
	}
	if f.Changed("alpha") {
		cfg.Output.Alpha, _ = f.GetFloat64("alpha")
	}
	if f.Changed("html-stride") {
		cfg.Output.HTMLStride, _ = f.GetInt("html-stride")
	}
	if f.Changed("verbose") {
		cfg.Output.Verbose, _ = f.GetBool("verbose")
	}
}

// setupLogger creates a text logger on stderr. Metrics go to stdout, so
// logging stays quiet unless verbose is set.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
