package faces

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Center returns the arithmetic mean of the face's node positions
func (t *Table) Center(g Geometry, i int) r3.Vec {
	var c r3.Vec
	nodes := t.faces[i].Nodes
	for _, n := range nodes {
		c = r3.Add(c, g.Position(n))
	}
	return r3.Scale(1/float64(len(nodes)), c)
}

// AreaVector returns the face normal scaled by the face measure. Polygons
// use Newell's method over the ordered nodes; a two-node face returns its
// left-hand normal in the xy plane scaled by the edge length. After ordering,
// boundary faces point away from their element.
func (t *Table) AreaVector(g Geometry, i int) r3.Vec {
	nodes := t.faces[i].Nodes
	if len(nodes) == 2 {
		d := r3.Sub(g.Position(nodes[1]), g.Position(nodes[0]))
		return r3.Vec{X: -d.Y, Y: d.X}
	}
	var n r3.Vec
	for k := range nodes {
		p := g.Position(nodes[k])
		q := g.Position(nodes[(k+1)%len(nodes)])
		n = r3.Add(n, r3.Cross(p, q))
	}
	return r3.Scale(0.5, n)
}

// Normal returns the unit normal of face i, zero for a degenerate face
func (t *Table) Normal(g Geometry, i int) r3.Vec {
	a := t.AreaVector(g, i)
	if r3.Norm(a) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(a)
}

// Area returns the area of face i, or the length of a two-node face
func (t *Table) Area(g Geometry, i int) float64 {
	return r3.Norm(t.AreaVector(g, i))
}
