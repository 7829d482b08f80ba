package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/notargets/meshtopo/config"
)

// options holds the flag values of one command invocation
type options struct {
	configPath string
	verbose    bool

	format       string
	snapshot     string
	tolerance    float64
	skipOrdering bool
	setPolicy    string

	partitionSize int
	strategy      string
	maxImbalance  float64
	workers       int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var logger *zap.Logger

	rootCmd := &cobra.Command{
		Use:   "meshtopo",
		Short: "Build face topology for unstructured meshes",
		Long: `meshtopo derives the unique faces of an unstructured mesh, the one or two
elements adjacent to each face, and an oriented node order per face.

Meshes are read from the YAML mesh format or from Gambit neutral / Gmsh files.
Settings come from --config, then MESHTOPO_* environment variables, then flags.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	}
	loadConfig := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		applyFlags(cmd, opts, cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		logger, err = newLogger(cfg.LogLevel, opts.verbose)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	buildCmd := &cobra.Command{
		Use:   "build [mesh-file]",
		Short: "Build the face table of a mesh",
		Long: `Reads a mesh, builds its face table and prints a summary. With
--partition-size the mesh is split into partitions first; each partition is
built on its own and the partition boundaries are matched afterwards.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Mesh = args[0]
			}
			return runBuild(cmd.Context(), cmd.OutOrStdout(), cfg, logger)
		},
	}
	f := buildCmd.Flags()
	f.StringVar(&opts.format, "format", config.FormatAuto, "mesh format: auto, yaml or gmsh")
	f.StringVarP(&opts.snapshot, "output", "o", "", "write the face table snapshot to this file")
	f.Float64Var(&opts.tolerance, "tolerance", 0, "relative tolerance for degenerate faces")
	f.BoolVar(&opts.skipOrdering, "skip-ordering", false, "keep face nodes in creation order")
	f.StringVar(&opts.setPolicy, "set-policy", "", "node set projection: all or any")
	f.IntVar(&opts.partitionSize, "partition-size", 0, "target elements per partition, 0 builds the whole mesh")
	f.StringVar(&opts.strategy, "strategy", "", "partition strategy: block or roundrobin")
	f.Float64Var(&opts.maxImbalance, "max-imbalance", 0, "fail when max/mean partition size exceeds this")
	f.IntVar(&opts.workers, "workers", 0, "concurrent partition builds, 0 uses GOMAXPROCS")

	inspectCmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Print the summary of a face table snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			return runInspect(cmd.OutOrStdout(), args[0], logger)
		},
	}

	rootCmd.AddCommand(buildCmd, inspectCmd)
	return rootCmd
}

// applyFlags copies explicitly set flags over the loaded config
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("format") {
		cfg.Format = opts.format
	}
	if changed("output") {
		cfg.Snapshot = opts.snapshot
	}
	if changed("tolerance") {
		cfg.Faces.Tolerance = opts.tolerance
	}
	if changed("skip-ordering") {
		cfg.Faces.SkipOrdering = opts.skipOrdering
	}
	if changed("set-policy") {
		cfg.Faces.SetPolicy = opts.setPolicy
	}
	if changed("partition-size") {
		cfg.Partition.Size = opts.partitionSize
	}
	if changed("strategy") {
		cfg.Partition.Strategy = opts.strategy
	}
	if changed("max-imbalance") {
		cfg.Partition.MaxImbalance = opts.maxImbalance
	}
	if changed("workers") {
		cfg.Partition.Workers = opts.workers
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
