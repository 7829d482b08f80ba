package partitions

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/meshtopo/faces"
	"github.com/notargets/meshtopo/mesh"
)

// LocalPartition is the partition-local view of a mesh: its own node and
// element numbering plus maps back to the global mesh
type LocalPartition struct {
	ID   int
	Mesh *mesh.Mesh

	LocalToGlobalNode []int
	GlobalToLocalNode map[int]int
	LocalToGlobalElem map[mesh.ElementID]mesh.ElementID
	GlobalToLocalElem map[mesh.ElementID]mesh.ElementID

	// Faces is set by BuildLocalFaces
	Faces *faces.Table
}

// GlobalElement maps a local element id to its id in the global mesh
func (lp *LocalPartition) GlobalElement(local mesh.ElementID) (mesh.ElementID, error) {
	if g, ok := lp.LocalToGlobalElem[local]; ok {
		return g, nil
	}
	return mesh.NoElement, fmt.Errorf("partition %d has no local element %v", lp.ID, local)
}

// GlobalNodes maps local node ids to global ones
func (lp *LocalPartition) GlobalNodes(local []int) []int {
	out := make([]int, len(local))
	for i, n := range local {
		out[i] = lp.LocalToGlobalNode[n]
	}
	return out
}

type subRegionKey struct {
	region, subRegion int
}

// Split copies each partition's elements into its own mesh. Nodes are
// renumbered in order of first use, node sets are restricted to the nodes a
// partition holds, and the region and subregion names of the global mesh
// are kept.
func Split(layout *PartitionLayout, m *mesh.Mesh) ([]*LocalPartition, error) {
	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}

	parts := make([]*LocalPartition, layout.NumPartitions)
	for pID, p := range layout.Partitions {
		lp := &LocalPartition{
			ID:                p.ID,
			Mesh:              mesh.NewMesh(),
			GlobalToLocalNode: make(map[int]int),
			LocalToGlobalElem: make(map[mesh.ElementID]mesh.ElementID),
			GlobalToLocalElem: make(map[mesh.ElementID]mesh.ElementID),
		}
		subRegions := make(map[subRegionKey]mesh.ElementID)
		regions := make(map[int]int)

		for _, k := range p.Elements {
			gid := layout.ElementIDs[k]
			gsr, err := m.Elements.SubRegion(gid)
			if err != nil {
				return nil, fmt.Errorf("partition %d: %w", p.ID, err)
			}

			key := subRegionKey{gid.Region, gid.SubRegion}
			loc, ok := subRegions[key]
			if !ok {
				r, ok := regions[gid.Region]
				if !ok {
					lp.Mesh.Elements.AddRegion(m.Elements.Regions[gid.Region].Name)
					r = len(lp.Mesh.Elements.Regions) - 1
					regions[gid.Region] = r
				}
				lp.Mesh.Elements.Regions[r].AddSubRegion(gsr.Name, gsr.Shape)
				loc = mesh.ElementID{Region: r, SubRegion: len(lp.Mesh.Elements.Regions[r].SubRegions) - 1}
				subRegions[key] = loc
			}

			gnodes := gsr.Connectivity[gid.Index]
			lnodes := make([]int, len(gnodes))
			for i, gn := range gnodes {
				ln, ok := lp.GlobalToLocalNode[gn]
				if !ok {
					ln = lp.Mesh.Nodes.Add(m.Position(gn))[0]
					lp.GlobalToLocalNode[gn] = ln
					lp.LocalToGlobalNode = append(lp.LocalToGlobalNode, gn)
				}
				lnodes[i] = ln
			}

			lsr := lp.Mesh.Elements.Regions[loc.Region].SubRegions[loc.SubRegion]
			idx, err := lsr.AddElement(lnodes)
			if err != nil {
				return nil, fmt.Errorf("partition %d: %w", p.ID, err)
			}
			lid := mesh.ElementID{Region: loc.Region, SubRegion: loc.SubRegion, Index: idx}
			lp.LocalToGlobalElem[lid] = gid
			lp.GlobalToLocalElem[gid] = lid
		}

		for _, name := range m.NodeSetNames() {
			set, _ := m.NodeSet(name)
			local := make([]int, 0, len(set))
			for _, gn := range set {
				if ln, ok := lp.GlobalToLocalNode[gn]; ok {
					local = append(local, ln)
				}
			}
			if err := lp.Mesh.Nodes.AddSet(name, local); err != nil {
				return nil, fmt.Errorf("partition %d: %w", p.ID, err)
			}
		}
		parts[pID] = lp
	}
	return parts, nil
}

// BuilderFunc creates the face builder for one partition's mesh
type BuilderFunc func(src faces.Source, logger *zap.Logger) (*faces.FaceBuilder, error)

// BuildLocalFaces builds the face table of every partition. Each build sees
// only its own partition, so the builds run concurrently with at most
// workers in flight; workers <= 0 uses GOMAXPROCS. newBuilder carries the
// builder settings, nil builds with the defaults of faces.NewFaceBuilder.
func BuildLocalFaces(ctx context.Context, parts []*LocalPartition, logger *zap.Logger, workers int, newBuilder BuilderFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if newBuilder == nil {
		newBuilder = func(src faces.Source, logger *zap.Logger) (*faces.FaceBuilder, error) {
			return faces.NewFaceBuilder(src, logger), nil
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, lp := range parts {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			fb, err := newBuilder(lp.Mesh, logger.With(zap.Int("partition", lp.ID)))
			if err != nil {
				return fmt.Errorf("partition %d: %w", lp.ID, err)
			}
			tbl, err := fb.Build()
			if err != nil {
				return fmt.Errorf("partition %d: %w", lp.ID, err)
			}
			lp.Faces = tbl
			return nil
		})
	}
	return eg.Wait()
}
