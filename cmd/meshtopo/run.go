package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/notargets/meshtopo/config"
	"github.com/notargets/meshtopo/faces"
	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/partitions"
)

func loadMesh(path, format string) (*mesh.Mesh, error) {
	if path == "" {
		return nil, fmt.Errorf("no mesh file given")
	}
	if format == config.FormatAuto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = config.FormatYAML
		default:
			format = config.FormatGmsh
		}
	}
	var (
		m   *mesh.Mesh
		err error
	)
	if format == config.FormatYAML {
		m, err = mesh.ReadYAMLFile(path)
	} else {
		m, err = mesh.ReadMeshFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh %s: %w", path, err)
	}
	return m, nil
}

func newFaceBuilder(src faces.Source, cfg *config.Config, logger *zap.Logger) (*faces.FaceBuilder, error) {
	policy, err := cfg.SetPolicy()
	if err != nil {
		return nil, err
	}
	fb := faces.NewFaceBuilder(src, logger)
	fb.Tolerance = cfg.Faces.Tolerance
	fb.SkipOrdering = cfg.Faces.SkipOrdering
	fb.SetPolicy = policy
	return fb, nil
}

func runBuild(ctx context.Context, w io.Writer, cfg *config.Config, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := loadMesh(cfg.Mesh, cfg.Format)
	if err != nil {
		return err
	}
	logger.Info("mesh loaded",
		zap.String("path", cfg.Mesh),
		zap.Int("nodes", m.NumNodes()),
		zap.Int("elements", m.Elements.NumElements()))

	if cfg.Partition.Size > 0 {
		return runPartitionedBuild(ctx, w, cfg, m, logger)
	}

	fb, err := newFaceBuilder(m, cfg, logger)
	if err != nil {
		return err
	}
	tbl, err := fb.Build()
	if err != nil {
		return fmt.Errorf("face build failed: %w", err)
	}
	printSummary(w, "", tbl)
	if cfg.Snapshot != "" {
		return writeSnapshot(cfg.Snapshot, tbl, logger)
	}
	return nil
}

func runPartitionedBuild(ctx context.Context, w io.Writer, cfg *config.Config, m *mesh.Mesh, logger *zap.Logger) error {
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	pb := &partitions.PartitionBuilder{
		Mesh:                m,
		Logger:              logger,
		TargetPartitionSize: cfg.Partition.Size,
		MaxImbalance:        cfg.Partition.MaxImbalance,
		Strategy:            strategy,
	}
	layout, err := pb.BuildPartitions()
	if err != nil {
		return err
	}
	parts, err := partitions.Split(layout, m)
	if err != nil {
		return err
	}
	newBuilder := func(src faces.Source, logger *zap.Logger) (*faces.FaceBuilder, error) {
		return newFaceBuilder(src, cfg, logger)
	}
	if err := partitions.BuildLocalFaces(ctx, parts, logger, cfg.Partition.Workers, newBuilder); err != nil {
		return fmt.Errorf("face build failed: %w", err)
	}
	fc, err := partitions.NewFaceConnector(parts)
	if err != nil {
		return err
	}
	if err := fc.Verify(); err != nil {
		return fmt.Errorf("partition boundaries do not match: %w", err)
	}

	stats := layout.PartitionStatistics()
	fmt.Fprintf(w, "partitions: %d (min %d, max %d, imbalance %.3f)\n",
		stats.NumPartitions, stats.MinElements, stats.MaxElements, stats.Imbalance)
	for _, lp := range parts {
		printSummary(w, fmt.Sprintf("partition %d ", lp.ID), lp.Faces)
		shared := 0
		for q := 0; q < fc.NumPartitions; q++ {
			shared += len(fc.GetPickIndices(lp.ID, q))
		}
		fmt.Fprintf(w, "partition %d shared faces: %d\n", lp.ID, shared)
		if cfg.Snapshot != "" {
			path := fmt.Sprintf("%s.p%d", cfg.Snapshot, lp.ID)
			if err := writeSnapshot(path, lp.Faces, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

func printSummary(w io.Writer, prefix string, tbl *faces.Table) {
	fmt.Fprintf(w, "%sfaces: %d\n", prefix, tbl.FaceCount())
	fmt.Fprintf(w, "%sboundary faces: %d\n", prefix, len(tbl.BoundaryFaces()))
	fmt.Fprintf(w, "%sinterior faces: %d\n", prefix, len(tbl.InteriorFaces()))
	names := make([]string, 0, len(tbl.Sets))
	for name := range tbl.Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%sset %s: %d faces\n", prefix, name, len(tbl.Sets[name]))
	}
}

func writeSnapshot(path string, tbl *faces.Table, logger *zap.Logger) error {
	data, err := faces.EncodeSnapshot(tbl)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info("snapshot written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func runInspect(w io.Writer, path string, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	tbl, err := faces.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	logger.Debug("snapshot decoded", zap.String("path", path))
	fmt.Fprintf(w, "nodes: %d\n", tbl.NodeCount())
	printSummary(w, "", tbl)
	return nil
}
