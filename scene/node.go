package scene

import "github.com/go-gl/mathgl/mgl64"

// Node is an element of a scene graph. Each node owns its children
// exclusively (the graph is a tree, no cycles) and carries a local
// transform relative to its parent. A node may carry a Geometry.
type Node struct {
	Name string
	// Local transform relative to the parent node (column-major affine)
	Local mgl64.Mat4
	// Geometry carried by this node, nil for grouping nodes
	Geometry *Geometry

	children []*Node
}

// NewNode creates a node with an identity transform
func NewNode(name string) *Node {
	return &Node{
		Name:  name,
		Local: mgl64.Ident4(),
	}
}

// AddChild appends a child node
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
}

// Children returns the direct children of the node
func (n *Node) Children() []*Node {
	return n.children
}

// Walk visits the subtree rooted at n top-down, passing each node together
// with its world transform (the concatenation of all ancestor transforms,
// starting from parentWorld)
func (n *Node) Walk(parentWorld mgl64.Mat4, visit func(node *Node, world mgl64.Mat4)) {
	world := parentWorld.Mul4(n.Local)
	visit(n, world)
	for _, child := range n.children {
		child.Walk(world, visit)
	}
}

// Geometry is an immutable mesh reference, reduced to its local
// axis-aligned bounding box
type Geometry struct {
	Name string
	Min  mgl64.Vec3
	Max  mgl64.Vec3
}

// Corners returns the 8 corners of the local bounding box
func (g *Geometry) Corners() [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{g.Min.X(), g.Min.Y(), g.Min.Z()},
		{g.Max.X(), g.Min.Y(), g.Min.Z()},
		{g.Min.X(), g.Max.Y(), g.Min.Z()},
		{g.Max.X(), g.Max.Y(), g.Min.Z()},
		{g.Min.X(), g.Min.Y(), g.Max.Z()},
		{g.Max.X(), g.Min.Y(), g.Max.Z()},
		{g.Min.X(), g.Max.Y(), g.Max.Z()},
		{g.Max.X(), g.Max.Y(), g.Max.Z()},
	}
}
