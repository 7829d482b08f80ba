package faces

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance is the relative size below which a basis vector is
// treated as zero
const DefaultTolerance = 1e-10

// FaceOrderer permutes face node lists into the orientation convention:
//   - two-node faces (2D edges) are directed so the slot-0 element lies on
//     the right of node 0 → node 1, which puts the outward normal on the left
//   - polygons are sorted counterclockwise seen from outside the slot-0
//     element, starting at the face's original first node
type FaceOrderer struct {
	Geometry  Geometry
	Tolerance float64
}

// OrderAll orders every face of t
func (fo *FaceOrderer) OrderAll(t *Table) error {
	for i := range t.faces {
		if err := fo.OrderFace(t, i); err != nil {
			return err
		}
	}
	return nil
}

// OrderFace orders face i of t. Only the node order changes.
func (fo *FaceOrderer) OrderFace(t *Table, i int) error {
	f := &t.faces[i]
	ec, err := fo.Geometry.Centroid(f.Adjacent[0])
	if err != nil {
		return err
	}
	ordered, reason := fo.order(f.Nodes, ec)
	if reason != "" {
		return &DegenerateGeometryError{
			Face:    i,
			Element: f.Adjacent[0],
			Nodes:   append([]int(nil), f.Nodes...),
			Reason:  reason,
		}
	}
	f.Nodes = ordered
	return nil
}

func (fo *FaceOrderer) tolerance() float64 {
	if fo.Tolerance > 0 {
		return fo.Tolerance
	}
	return DefaultTolerance
}

// order returns the oriented node list, or a non-empty reason when the
// geometry does not define an orientation
func (fo *FaceOrderer) order(nodes []int, elementCenter r3.Vec) ([]int, string) {
	tol := fo.tolerance()
	coords := make([]r3.Vec, len(nodes))
	var fc r3.Vec
	for n, nd := range nodes {
		coords[n] = fo.Geometry.Position(nd)
		fc = r3.Add(fc, coords[n])
	}
	fc = r3.Scale(1/float64(len(nodes)), fc)

	// face size, for scaling the tolerances
	size := 0.0
	for _, x := range coords {
		size = math.Max(size, r3.Norm(r3.Sub(x, fc)))
	}
	if size == 0 {
		return nil, "all nodes coincide"
	}

	if len(nodes) == 2 {
		return orderEdge(nodes, coords, fc, elementCenter, size, tol)
	}
	return orderPolygon(nodes, coords, fc, elementCenter, size, tol)
}

func orderEdge(nodes []int, coords []r3.Vec, fc, ec r3.Vec, size, tol float64) ([]int, string) {
	ex := r3.Sub(coords[1], coords[0])
	ey := r3.Sub(ec, fc)
	ez := r3.Cross(ex, ey)
	if math.Abs(ez.Z) <= tol*size*math.Max(r3.Norm(ey), size) {
		return nil, "element centroid lies on the edge line"
	}
	out := append([]int(nil), nodes...)
	// the element must be on the right of node 0 → node 1
	if ez.Z > 0 {
		out[0], out[1] = out[1], out[0]
	}
	return out, ""
}

func orderPolygon(nodes []int, coords []r3.Vec, fc, ec r3.Vec, size, tol float64) ([]int, string) {
	// approximate normal, pointing away from the element
	ez := r3.Sub(fc, ec)
	if r3.Norm(ez) <= tol*size {
		return nil, "element centroid coincides with the face centroid"
	}
	// in-plane axis towards the first node
	ex := r3.Sub(coords[0], fc)
	if r3.Norm(ex) <= tol*size {
		return nil, "first node coincides with the face centroid"
	}
	ex = r3.Unit(ex)

	collinear := true
	for _, x := range coords {
		if r3.Norm(r3.Cross(r3.Sub(x, fc), ex)) > tol*size {
			collinear = false
			break
		}
	}
	if collinear {
		return nil, "nodes are collinear"
	}

	ey := r3.Cross(ez, ex)
	if r3.Norm(ey) <= tol*r3.Norm(ez) {
		return nil, "element to face axis is parallel to the first node direction"
	}
	ey = r3.Unit(ey)

	spread := 0.0
	for _, x := range coords {
		spread = math.Max(spread, math.Abs(r3.Dot(r3.Sub(x, fc), ey)))
	}
	if spread <= tol*size {
		return nil, "element centroid lies in the face plane"
	}

	type polar struct {
		theta float64
		node  int
	}
	order := make([]polar, len(nodes))
	for n, x := range coords {
		v := r3.Sub(x, fc)
		order[n] = polar{theta: math.Atan2(r3.Dot(v, ey), r3.Dot(v, ex)), node: nodes[n]}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].theta < order[b].theta })

	// rotate so the list starts at the original first node
	first := 0
	for n := range order {
		if order[n].node == nodes[0] {
			first = n
			break
		}
	}
	out := make([]int, len(nodes))
	for n := range out {
		out[n] = order[(first+n)%len(order)].node
	}
	return out, ""
}
