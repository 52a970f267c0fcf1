package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultTargetSize is the horizontal extent a normalized model is
	// scaled to, in scene length units
	DefaultTargetSize = 6.0
	// DefaultTiltAngle tilts the model around the X axis for a more
	// informative default viewing angle
	DefaultTiltAngle = math.Pi / 10
)

// ErrNonFiniteTransform is returned when a node transform or geometry bound
// contains a NaN or Inf component
var ErrNonFiniteTransform = errors.New("scene: non-finite transform")

// ErrTargetSize is returned for a non-positive target size
var ErrTargetSize = errors.New("scene: target size must be positive")

// Result reports what a Normalize call did to the scene
type Result struct {
	// Bounds are the world bounds of the scene before normalization
	Bounds Bounds
	// Scale is the uniform scale factor that was applied
	Scale float64
	// Translation is the (-centerX, floorOffset, -centerZ) shift that
	// was applied
	Translation mgl64.Vec3
	// Degenerate is true when the scene carried no geometry, or geometry
	// with zero horizontal extent, and the scale fell back to 1.0
	Degenerate bool
}

// Normalizer centers, floor-aligns, scales and tilts a scene graph so that
// it presents well in a default viewport
type Normalizer struct {
	// TargetSize is the horizontal extent to scale the model to
	TargetSize float64
	// TiltAngle is the rotation around the X axis baked in last, in radians
	TiltAngle float64
}

// Normalize applies Normalizer defaults to root
func Normalize(root *Node, targetSize float64) (Result, error) {
	n := Normalizer{TargetSize: targetSize, TiltAngle: DefaultTiltAngle}
	return n.Normalize(root)
}

// Normalize computes the world bounds of root and rewrites the transform of
// every direct child so that the model is centered horizontally, rests on
// the Y=0 plane, spans TargetSize on its largest horizontal axis and is
// tilted by TiltAngle around X.
//
// The three operations are composed onto each child's existing transform in
// a fixed order: translate, then uniform scale about the origin, then the
// tilt rotation. The translation is derived from the original bounds; the
// bounds are never recomputed between steps.
//
// A scene without geometry, or with zero horizontal extent, keeps scale 1.0
// and is reported via Result.Degenerate rather than as an error.
func (n Normalizer) Normalize(root *Node) (Result, error) {
	if n.TargetSize <= 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrTargetSize, n.TargetSize)
	}
	if err := checkFinite(root); err != nil {
		return Result{}, err
	}

	bounds := WorldBounds(root)

	result := Result{
		Bounds: bounds,
		Scale:  1.0,
	}

	if !bounds.IsEmpty() {
		center := bounds.Center()
		size := bounds.Size()

		result.Translation = mgl64.Vec3{-center.X(), -bounds.Min.Y(), -center.Z()}

		horizontalExtent := math.Max(size.X(), size.Z())
		if horizontalExtent > 0 {
			result.Scale = n.TargetSize / horizontalExtent
		} else {
			result.Degenerate = true
		}
	} else {
		// No geometry anywhere: nothing to center or floor-align,
		// only the tilt is baked in
		result.Degenerate = true
	}

	transform := mgl64.HomogRotate3DX(n.TiltAngle).
		Mul4(mgl64.Scale3D(result.Scale, result.Scale, result.Scale)).
		Mul4(mgl64.Translate3D(result.Translation.X(), result.Translation.Y(), result.Translation.Z()))

	for _, child := range root.Children() {
		child.Local = transform.Mul4(child.Local)
	}

	return result, nil
}

// checkFinite walks the subtree and rejects NaN/Inf transform or geometry
// components before they can poison the bounds arithmetic
func checkFinite(root *Node) error {
	var err error
	root.Walk(mgl64.Ident4(), func(node *Node, _ mgl64.Mat4) {
		if err != nil {
			return
		}
		for _, v := range node.Local {
			if !isFinite(v) {
				err = fmt.Errorf("%w: node %q", ErrNonFiniteTransform, node.Name)
				return
			}
		}
		if node.Geometry == nil {
			return
		}
		for i := 0; i < 3; i++ {
			if !isFinite(node.Geometry.Min[i]) || !isFinite(node.Geometry.Max[i]) {
				err = fmt.Errorf("%w: geometry on node %q", ErrNonFiniteTransform, node.Name)
				return
			}
		}
	})
	return err
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
