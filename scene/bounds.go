package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds represents an axis-aligned bounding box in world space.
// An empty Bounds uses the (+Inf, -Inf) sentinel so that the first
// Extend sets both corners; once at least one point has been added,
// Min <= Max holds component-wise.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Empty returns the sentinel bounds containing no points
func Empty() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added to the bounds
func (b Bounds) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Extend grows the bounds to include point
func (b *Bounds) Extend(point mgl64.Vec3) {
	b.Min[0] = math.Min(b.Min[0], point[0])
	b.Min[1] = math.Min(b.Min[1], point[1])
	b.Min[2] = math.Min(b.Min[2], point[2])

	b.Max[0] = math.Max(b.Max[0], point[0])
	b.Max[1] = math.Max(b.Max[1], point[1])
	b.Max[2] = math.Max(b.Max[2], point[2])
}

// Center returns the midpoint of the bounds
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the bounds on each axis
func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// WorldBounds computes the world-space bounding box of all geometry in the
// subtree rooted at root. Every geometry contributes the 8 corners of its
// local bounding box, transformed by the concatenated ancestor transforms.
// The traversal never mutates the graph. If the subtree carries no geometry
// the sentinel bounds are returned unchanged; callers must check IsEmpty
// before dividing by the size.
func WorldBounds(root *Node) Bounds {
	bounds := Empty()

	root.Walk(mgl64.Ident4(), func(node *Node, world mgl64.Mat4) {
		if node.Geometry == nil {
			return
		}
		for _, corner := range node.Geometry.Corners() {
			worldCorner := world.Mul4x1(corner.Vec4(1))
			bounds.Extend(worldCorner.Vec3())
		}
	})

	return bounds
}
