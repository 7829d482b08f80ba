package partitions

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/notargets/meshtopo/element"
	"github.com/notargets/meshtopo/mesh"
)

// PartitionBuilder constructs partitions from a mesh
type PartitionBuilder struct {
	Mesh   *mesh.Mesh
	Logger *zap.Logger

	// Partitioning parameters
	TargetPartitionSize int     // Desired elements per partition
	MaxImbalance        float64 // Acceptable load imbalance, 0 disables the check
	Strategy            PartitionStrategy
}

// PartitionStrategy defines how elements are grouped
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive elements
	RoundRobin                              // Distribute cyclically
)

var strategyNames = map[PartitionStrategy]string{
	BlockPartition: "block",
	RoundRobin:     "roundrobin",
}

func (s PartitionStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy parses a strategy name as printed by String
func ParseStrategy(name string) (PartitionStrategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown partition strategy %q", name)
}

// BuildPartitions creates a partition layout from the mesh
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.Mesh == nil {
		return nil, fmt.Errorf("partition builder has no mesh")
	}
	if pb.TargetPartitionSize <= 0 {
		return nil, fmt.Errorf("target partition size must be positive, got %d", pb.TargetPartitionSize)
	}

	var ids []mesh.ElementID
	var types []element.GeometryType
	err := pb.Mesh.Elements.ForEachElement(func(id mesh.ElementID) error {
		sr, err := pb.Mesh.Elements.SubRegion(id)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		types = append(types, sr.Shape.GeometryType())
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Determine number of partitions needed
	numPartitions := pb.calculateNumPartitions(len(ids))

	// Partition the elements
	eToP := pb.partitionElements(len(ids), numPartitions)

	// Create partition structures
	partitions := pb.createPartitions(eToP, types, numPartitions)

	kpartMax := pb.calculateKpartMax(partitions)
	for i := range partitions {
		partitions[i].MaxElements = kpartMax
	}

	layout := &PartitionLayout{
		Partitions:    partitions,
		KpartMax:      kpartMax,
		TotalElements: len(ids),
		NumPartitions: numPartitions,
		EToP:          eToP,
		ElementIDs:    ids,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	stats := layout.PartitionStatistics()
	if pb.MaxImbalance > 0 && stats.Imbalance > pb.MaxImbalance {
		return nil, fmt.Errorf("partition imbalance %.3f exceeds %.3f", stats.Imbalance, pb.MaxImbalance)
	}

	pb.logger().Debug("partitions built",
		zap.Stringer("strategy", pb.Strategy),
		zap.Int("partitions", numPartitions),
		zap.Int("kpartMax", kpartMax),
		zap.Float64("imbalance", stats.Imbalance))
	return layout, nil
}

func (pb *PartitionBuilder) logger() *zap.Logger {
	if pb.Logger == nil {
		return zap.NewNop()
	}
	return pb.Logger
}

// calculateNumPartitions determines the partition count
func (pb *PartitionBuilder) calculateNumPartitions(numElements int) int {
	numPartitions := int(math.Ceil(float64(numElements) / float64(pb.TargetPartitionSize)))

	// Ensure at least one partition
	if numPartitions < 1 {
		numPartitions = 1
	}
	return numPartitions
}

// partitionElements assigns elements to partitions
func (pb *PartitionBuilder) partitionElements(numElements, numPartitions int) []int {
	eToP := make([]int, numElements)

	switch pb.Strategy {
	case RoundRobin:
		for i := 0; i < numElements; i++ {
			eToP[i] = i % numPartitions
		}

	default:
		elementsPerPartition := int(math.Ceil(float64(numElements) / float64(numPartitions)))
		for i := 0; i < numElements; i++ {
			eToP[i] = i / elementsPerPartition
			if eToP[i] >= numPartitions {
				eToP[i] = numPartitions - 1
			}
		}
	}

	return eToP
}

// createPartitions builds partition structures from element assignments
func (pb *PartitionBuilder) createPartitions(eToP []int, types []element.GeometryType, numPartitions int) []Partition {
	partitions := make([]Partition, numPartitions)

	for i := range partitions {
		partitions[i] = Partition{
			ID:           i,
			Elements:     make([]int, 0),
			ElementTypes: make([]element.GeometryType, 0),
		}
	}

	for elem, part := range eToP {
		partitions[part].Elements = append(partitions[part].Elements, elem)
		partitions[part].ElementTypes = append(partitions[part].ElementTypes, types[elem])
		partitions[part].NumElements++
	}

	for i := range partitions {
		partitions[i].TypeGroups = createElementGroups(&partitions[i])
	}

	return partitions
}

// createElementGroups organizes elements by type within a partition, in
// GeometryType order
func createElementGroups(p *Partition) []ElementGroup {
	if len(p.ElementTypes) == 0 {
		return nil
	}

	typeIndices := make(map[element.GeometryType][]int)
	for i, elemType := range p.ElementTypes {
		typeIndices[elemType] = append(typeIndices[elemType], i)
	}
	types := make([]element.GeometryType, 0, len(typeIndices))
	for g := range typeIndices {
		types = append(types, g)
	}
	sort.Slice(types, func(a, b int) bool { return types[a] < types[b] })

	groups := make([]ElementGroup, 0, len(types))
	currentIndex := 0
	for _, elemType := range types {
		indices := typeIndices[elemType]
		groups = append(groups, ElementGroup{
			ElementType: elemType,
			StartIndex:  currentIndex,
			Count:       len(indices),
			LocalIDs:    indices,
		})
		currentIndex += len(indices)
	}

	return groups
}

// calculateKpartMax finds maximum elements across all partitions
func (pb *PartitionBuilder) calculateKpartMax(partitions []Partition) int {
	kpartMax := 0
	for _, p := range partitions {
		if p.NumElements > kpartMax {
			kpartMax = p.NumElements
		}
	}
	return kpartMax
}
