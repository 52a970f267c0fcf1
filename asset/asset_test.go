package asset

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumscan/atrium/scene"
)

func index(i uint32) *uint32 {
	return &i
}

// roomDocument builds a two-node document: a translated room mesh and an
// empty grouping node
func roomDocument() *gltf.Document {
	return &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Accessors: []*gltf.Accessor{
			{
				ComponentType: gltf.ComponentFloat,
				Type:          gltf.AccessorVec3,
				Count:         8,
				Min:           []float64{0, 0, 0},
				Max:           []float64{2, 1, 4},
			},
		},
		Meshes: []*gltf.Mesh{
			{
				Name: "room mesh",
				Primitives: []*gltf.Primitive{
					{Attributes: map[string]uint32{"POSITION": 0}},
				},
			},
		},
		Nodes: []*gltf.Node{
			{
				Name:        "room",
				Mesh:        index(0),
				Translation: [3]float64{10, 0, -5},
			},
			{Name: "annotations"},
		},
		Scenes: []*gltf.Scene{
			{Name: "capture", Nodes: []uint32{0, 1}},
		},
	}
}

func TestFromGLTF(t *testing.T) {
	d, err := FromGLTF(roomDocument())
	require.NoError(t, err)

	children := d.Root.Children()
	require.Len(t, children, 2)

	room := children[0]
	assert.Equal(t, "room", room.Name)
	require.NotNil(t, room.Geometry)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, room.Geometry.Min)
	assert.Equal(t, mgl64.Vec3{2, 1, 4}, room.Geometry.Max)
	assert.Equal(t, mgl64.Translate3D(10, 0, -5), room.Local)

	assert.Nil(t, children[1].Geometry)

	b := scene.WorldBounds(d.Root)
	assert.Equal(t, mgl64.Vec3{10, 0, -5}, b.Min)
	assert.Equal(t, mgl64.Vec3{12, 1, -1}, b.Max)
}

func TestFromGLTFMatrixNode(t *testing.T) {
	doc := roomDocument()
	doc.Nodes[0].Translation = [3]float64{}
	doc.Nodes[0].Matrix = [16]float64(mgl64.Translate3D(1, 2, 3))

	d, err := FromGLTF(doc)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Translate3D(1, 2, 3), d.Root.Children()[0].Local)
}

func TestFromGLTFNestedChildren(t *testing.T) {
	doc := roomDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:  "fixture",
		Mesh:  index(0),
		Scale: [3]float64{2, 2, 2},
	})
	doc.Nodes[1].Children = []uint32{2}

	d, err := FromGLTF(doc)
	require.NoError(t, err)

	group := d.Root.Children()[1]
	require.Len(t, group.Children(), 1)
	fixture := group.Children()[0]
	assert.Equal(t, "fixture", fixture.Name)
	assert.Equal(t, mgl64.Scale3D(2, 2, 2), fixture.Local)
}

func TestFromGLTFErrors(t *testing.T) {
	t.Run("no scenes", func(t *testing.T) {
		_, err := FromGLTF(&gltf.Document{Asset: gltf.Asset{Version: "2.0"}})
		assert.ErrorIs(t, err, ErrNoScene)
	})

	t.Run("mesh without position bounds", func(t *testing.T) {
		doc := roomDocument()
		doc.Accessors[0].Min = nil
		doc.Accessors[0].Max = nil

		_, err := FromGLTF(doc)
		assert.ErrorIs(t, err, ErrNoBounds)
	})
}

func TestSyncWritesTransformsBack(t *testing.T) {
	d, err := FromGLTF(roomDocument())
	require.NoError(t, err)

	_, err = scene.Normalize(d.Root, scene.DefaultTargetSize)
	require.NoError(t, err)
	d.Sync()

	nd := d.GLTF().Nodes[0]
	assert.Equal(t, [16]float64(d.Root.Children()[0].Local), nd.Matrix)
	// TRS must be back at defaults so the matrix is authoritative
	assert.Equal(t, [3]float64{0, 0, 0}, nd.Translation)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, nd.Rotation)
	assert.Equal(t, [3]float64{1, 1, 1}, nd.Scale)
}

func TestSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gltf")

	d, err := FromGLTF(roomDocument())
	require.NoError(t, err)
	// Zero tilt so the target extent can be read back off the bounds
	n := scene.Normalizer{TargetSize: scene.DefaultTargetSize}
	result, err := n.Normalize(d.Root)
	require.NoError(t, err)
	require.False(t, result.Degenerate)
	require.NoError(t, d.Save(path))

	reopened, err := Open(path)
	require.NoError(t, err)

	// The saved asset carries the normalized transforms: the largest
	// horizontal extent spans the default target size
	b := scene.WorldBounds(reopened.Root)
	size := b.Size()
	assert.InDelta(t, scene.DefaultTargetSize, math.Max(size.X(), size.Z()), 1e-6)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.glb"))
	assert.Error(t, err)
}
