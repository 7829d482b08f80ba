package mesh

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/notargets/meshtopo/element"
)

// File is the YAML mesh description
type File struct {
	Nodes   [][]float64      `yaml:"nodes"`
	Regions []RegionFile     `yaml:"regions"`
	Sets    map[string][]int `yaml:"sets,omitempty"`
}

// RegionFile describes one region of a YAML mesh
type RegionFile struct {
	Name       string          `yaml:"name"`
	SubRegions []SubRegionFile `yaml:"subregions"`
}

// SubRegionFile describes a block of elements of one type
type SubRegionFile struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Elements [][]int `yaml:"elements"`
}

// LoadYAML reads a YAML mesh description. Nodes may have two (z = 0) or three
// coordinates.
func LoadYAML(r io.Reader) (*Mesh, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse mesh: %w", err)
	}
	return f.Build()
}

// ReadYAMLFile loads a YAML mesh description from path
func ReadYAMLFile(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := LoadYAML(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Build converts the description into node and element stores
func (f *File) Build() (*Mesh, error) {
	m := NewMesh()
	for i, xyz := range f.Nodes {
		var p r3.Vec
		switch len(xyz) {
		case 2:
			p = r3.Vec{X: xyz[0], Y: xyz[1]}
		case 3:
			p = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		default:
			return nil, fmt.Errorf("node %d: expected 2 or 3 coordinates, got %d", i, len(xyz))
		}
		m.Nodes.Add(p)
	}
	for _, rf := range f.Regions {
		region := m.Elements.AddRegion(rf.Name)
		for _, sf := range rf.SubRegions {
			g, err := element.ParseGeometryType(sf.Type)
			if err != nil {
				return nil, fmt.Errorf("subregion %q: %w", sf.Name, err)
			}
			shape, err := element.ShapeFor(g)
			if err != nil {
				return nil, fmt.Errorf("subregion %q: %w", sf.Name, err)
			}
			sr := region.AddSubRegion(sf.Name, shape)
			for k, nodes := range sf.Elements {
				for _, n := range nodes {
					if n < 0 || n >= m.Nodes.NumNodes() {
						return nil, fmt.Errorf("subregion %q element %d: node %d out of range [0,%d)",
							sf.Name, k, n, m.Nodes.NumNodes())
					}
				}
				if _, err := sr.AddElement(nodes); err != nil {
					return nil, err
				}
			}
		}
	}
	for name, nodes := range f.Sets {
		if err := m.Nodes.AddSet(name, nodes); err != nil {
			return nil, err
		}
	}
	return m, nil
}
