package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/atriumscan/atrium"
	"github.com/atriumscan/atrium/asset"
	"github.com/atriumscan/atrium/project"
	"github.com/atriumscan/atrium/scene"
)

// studioAsset builds a small captured-room document: a 2x1x4 shell sitting
// away from the origin, the kind of geometry a capture session produces
func studioAsset() *gltf.Document {
	meshIndex := uint32(0)
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
				Name: "studio shell",
				Primitives: []*gltf.Primitive{
					{Attributes: map[string]uint32{"POSITION": 0}},
				},
			},
		},
		Nodes: []*gltf.Node{
			{Name: "studio", Mesh: &meshIndex, Translation: [3]float64{12, 0, -7}},
		},
		Scenes: []*gltf.Scene{
			{Name: "capture", Nodes: []uint32{0}},
		},
	}
}

func main() {
	dir, err := os.MkdirTemp("", "atrium-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	store, err := project.NewStore(filepath.Join(dir, "projects"))
	if err != nil {
		log.Fatal(err)
	}

	workspace := atrium.NewWorkspace(store)
	workspace.Log = slog.Default()

	workspace.Events.Subscribe(atrium.ROOM_LOADED, func(event atrium.Event) {
		e := event.(atrium.RoomLoadedEvent)
		fmt.Printf("room %q measured: %.1f x %.1f x %.1f\n",
			e.Room.Name, e.Room.Dimensions[0], e.Room.Dimensions[1], e.Room.Dimensions[2])
	})
	workspace.Events.Subscribe(atrium.MODEL_EXPORTED, func(event atrium.Event) {
		e := event.(atrium.ModelExportedEvent)
		fmt.Printf("preview exported to %s\n", e.Path)
	})

	p, err := store.CreateProject("Studio apartment")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("created project %q (%s)\n", p.Name, p.ID)

	room, err := store.AddRoom(p.ID, "Studio")
	if err != nil {
		log.Fatal(err)
	}

	// Stand-in for a capture session writing the scanned room asset
	doc, err := asset.FromGLTF(studioAsset())
	if err != nil {
		log.Fatal(err)
	}
	if err := doc.Save(filepath.Join(store.ProjectDir(p.ID), room.Asset)); err != nil {
		log.Fatal(err)
	}

	if err := workspace.ScanRooms(p.ID); err != nil {
		log.Fatal(err)
	}

	before := scene.WorldBounds(doc.Root)
	fmt.Printf("captured bounds: min %v max %v\n", before.Min, before.Max)

	dst := filepath.Join(dir, "preview.glb")
	result, err := workspace.BuildModel(p.ID, dst)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("normalized with scale %.3f (translation %v)\n", result.Scale, result.Translation)

	preview, err := asset.Open(dst)
	if err != nil {
		log.Fatal(err)
	}
	after := scene.WorldBounds(preview.Root)
	fmt.Printf("preview bounds:  min %v max %v\n", after.Min, after.Max)
}
