// Package asset loads glTF scene assets into a scene graph and writes
// normalized transforms back, treating everything except nodes, transforms
// and geometry extents as opaque.
package asset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/atriumscan/atrium/scene"
)

// ErrNoScene is returned when the document declares no scene
var ErrNoScene = errors.New("asset: document has no scene")

// ErrNoBounds is returned when a mesh primitive carries no position
// accessor min/max, leaving its extents unknown
var ErrNoBounds = errors.New("asset: mesh has no position bounds")

// Document is a scene asset: the decoded node tree plus the underlying
// glTF document the transforms are written back into on Save
type Document struct {
	// Root is a synthetic identity node holding the asset's scene roots
	// as direct children
	Root *scene.Node

	doc     *gltf.Document
	indices map[*scene.Node]int
}

// Open reads a .gltf or .glb asset and decodes its node tree
func Open(path string) (*Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: open %s: %w", path, err)
	}
	return FromGLTF(doc)
}

// FromGLTF decodes an in-memory glTF document
func FromGLTF(doc *gltf.Document) (*Document, error) {
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScene
	}

	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = int(*doc.Scene)
	}
	if sceneIndex >= len(doc.Scenes) {
		return nil, fmt.Errorf("%w: scene index %d out of range", ErrNoScene, sceneIndex)
	}

	d := &Document{
		Root:    scene.NewNode("scene"),
		doc:     doc,
		indices: make(map[*scene.Node]int),
	}

	for _, rootIndex := range doc.Scenes[sceneIndex].Nodes {
		child, err := d.decodeNode(int(rootIndex))
		if err != nil {
			return nil, err
		}
		d.Root.AddChild(child)
	}

	return d, nil
}

// GLTF returns the underlying document. Sync must be called before reading
// transforms out of it.
func (d *Document) GLTF() *gltf.Document {
	return d.doc
}

// Sync writes the local transform of every decoded node back into the glTF
// document. The matrix field is set and the TRS fields reset to their
// defaults, since glTF treats them as mutually exclusive.
func (d *Document) Sync() {
	d.Root.Walk(mgl64.Ident4(), func(node *scene.Node, _ mgl64.Mat4) {
		index, ok := d.indices[node]
		if !ok {
			return
		}
		nd := d.doc.Nodes[index]
		nd.Matrix = [16]float64(node.Local)
		nd.Translation[0], nd.Translation[1], nd.Translation[2] = 0, 0, 0
		nd.Rotation[0], nd.Rotation[1], nd.Rotation[2], nd.Rotation[3] = 0, 0, 0, 1
		nd.Scale[0], nd.Scale[1], nd.Scale[2] = 1, 1, 1
	})
}

// Save syncs the node transforms and writes the document to path, in binary
// form for .glb and as JSON glTF otherwise
func (d *Document) Save(path string) error {
	d.Sync()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(d.doc, path)
	} else {
		err = gltf.Save(d.doc, path)
	}
	if err != nil {
		return fmt.Errorf("asset: save %s: %w", path, err)
	}
	return nil
}

func (d *Document) decodeNode(index int) (*scene.Node, error) {
	if index < 0 || index >= len(d.doc.Nodes) {
		return nil, fmt.Errorf("asset: node index %d out of range", index)
	}
	nd := d.doc.Nodes[index]

	node := scene.NewNode(nd.Name)
	node.Local = localMatrix(nd)
	d.indices[node] = index

	if nd.Mesh != nil {
		geometry, err := d.meshBounds(int(*nd.Mesh))
		if err != nil {
			return nil, fmt.Errorf("%w (node %q)", err, nd.Name)
		}
		node.Geometry = geometry
	}

	for _, childIndex := range nd.Children {
		child, err := d.decodeNode(int(childIndex))
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}

	return node, nil
}

// meshBounds unions the position accessor min/max of every primitive of the
// mesh into one local bounding box
func (d *Document) meshBounds(index int) (*scene.Geometry, error) {
	if index < 0 || index >= len(d.doc.Meshes) {
		return nil, fmt.Errorf("asset: mesh index %d out of range", index)
	}
	mesh := d.doc.Meshes[index]

	bounds := scene.Empty()
	for _, primitive := range mesh.Primitives {
		positionIndex, ok := primitive.Attributes["POSITION"]
		if !ok {
			continue
		}
		if int(positionIndex) >= len(d.doc.Accessors) {
			return nil, fmt.Errorf("asset: accessor index %d out of range", int(positionIndex))
		}
		accessor := d.doc.Accessors[positionIndex]
		if len(accessor.Min) < 3 || len(accessor.Max) < 3 {
			continue
		}
		bounds.Extend(mgl64.Vec3{
			float64(accessor.Min[0]),
			float64(accessor.Min[1]),
			float64(accessor.Min[2]),
		})
		bounds.Extend(mgl64.Vec3{
			float64(accessor.Max[0]),
			float64(accessor.Max[1]),
			float64(accessor.Max[2]),
		})
	}

	if bounds.IsEmpty() {
		return nil, fmt.Errorf("%w: mesh %q", ErrNoBounds, mesh.Name)
	}

	return &scene.Geometry{
		Name: mesh.Name,
		Min:  bounds.Min,
		Max:  bounds.Max,
	}, nil
}

// localMatrix extracts the node's local transform, preferring an explicit
// matrix over the TRS fields. glTF leaves absent fields at defaults the
// decoder may or may not fill in, so both the zero and the identity matrix
// are treated as "use TRS".
func localMatrix(nd *gltf.Node) mgl64.Mat4 {
	if matrixSet(nd) {
		return mgl64.Mat4(nd.Matrix)
	}

	translation := mgl64.Translate3D(
		float64(nd.Translation[0]),
		float64(nd.Translation[1]),
		float64(nd.Translation[2]),
	)

	rotation := mgl64.Ident4()
	if nd.Rotation[0] != 0 || nd.Rotation[1] != 0 || nd.Rotation[2] != 0 || nd.Rotation[3] != 0 {
		q := mgl64.Quat{
			W: float64(nd.Rotation[3]),
			V: mgl64.Vec3{
				float64(nd.Rotation[0]),
				float64(nd.Rotation[1]),
				float64(nd.Rotation[2]),
			},
		}
		rotation = q.Normalize().Mat4()
	}

	sx, sy, sz := float64(nd.Scale[0]), float64(nd.Scale[1]), float64(nd.Scale[2])
	if sx == 0 && sy == 0 && sz == 0 {
		sx, sy, sz = 1, 1, 1
	}

	return translation.Mul4(rotation).Mul4(mgl64.Scale3D(sx, sy, sz))
}

func matrixSet(nd *gltf.Node) bool {
	zero := true
	identity := true
	for i, v := range nd.Matrix {
		if v != 0 {
			zero = false
		}
		if i%5 == 0 {
			if v != 1 {
				identity = false
			}
		} else if v != 0 {
			identity = false
		}
	}
	return !zero && !identity
}
