// Package atrium ties room-capture projects, scene assets and the scene
// normalizer into one preview pipeline: collect a project's captured rooms,
// hand them to the structure builder, normalize the merged model and export
// it for preview.
package atrium

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atriumscan/atrium/asset"
	"github.com/atriumscan/atrium/project"
	"github.com/atriumscan/atrium/scene"
)

const DEFAULT_WORKERS = 1

// ErrNoRooms is returned when a project has no captured room assets
var ErrNoRooms = errors.New("atrium: project has no captured rooms")

// ErrMergerRequired is returned by the built-in merger for multi-room
// projects, which need a real structure builder
var ErrMergerRequired = errors.New("atrium: structure builder required for multi-room projects")

// Merger combines captured room assets into one building model. The real
// implementation is an external structure-building service; the built-in
// CopyMerger only covers the single-room case.
type Merger interface {
	Merge(roomPaths []string, dst string) error
}

// CopyMerger passes a single room asset through unchanged
type CopyMerger struct{}

func (CopyMerger) Merge(roomPaths []string, dst string) error {
	if len(roomPaths) != 1 {
		return fmt.Errorf("%w: got %d rooms", ErrMergerRequired, len(roomPaths))
	}

	src, err := os.Open(roomPaths[0])
	if err != nil {
		return fmt.Errorf("atrium: open room asset: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("atrium: create merged model: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("atrium: copy room asset: %w", err)
	}
	return out.Close()
}

// Workspace drives the capture-to-preview pipeline on top of a project store
type Workspace struct {
	Store  *project.Store
	Merger Merger
	// Workers bounds the fan-out when scanning room assets
	Workers int
	// TargetSize and TiltAngle parameterize the preview normalization
	TargetSize float64
	TiltAngle  float64

	Log    *slog.Logger
	Events Events
}

// NewWorkspace creates a workspace with the default single-room merger,
// preview normalization defaults and a discarding logger
func NewWorkspace(store *project.Store) *Workspace {
	return &Workspace{
		Store:      store,
		Merger:     CopyMerger{},
		Workers:    DEFAULT_WORKERS,
		TargetSize: scene.DefaultTargetSize,
		TiltAngle:  scene.DefaultTiltAngle,
		Log:        slog.New(slog.DiscardHandler),
		Events:     NewEvents(),
	}
}

type scanJob struct {
	index int
	room  project.Room
}

// ScanRooms opens every captured room asset of the project in parallel,
// measures its world bounds and stores the dimensions back on the room
// record. Rooms whose asset has not been written yet are skipped.
func (w *Workspace) ScanRooms(projectID string) error {
	p, err := w.Store.Project(projectID)
	if err != nil {
		return err
	}

	jobs := make([]scanJob, len(p.Rooms))
	for i, room := range p.Rooms {
		jobs[i] = scanJob{index: i, room: room}
	}

	bounds := make([]scene.Bounds, len(p.Rooms))
	scanned := make([]bool, len(p.Rooms))

	err = task(max(DEFAULT_WORKERS, w.Workers), jobs, func(job scanJob) error {
		path := filepath.Join(w.Store.ProjectDir(p.ID), job.room.Asset)
		doc, err := asset.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			w.Log.Debug("room asset not captured yet", "room", job.room.Name)
			return nil
		}
		if err != nil {
			return err
		}

		bounds[job.index] = scene.WorldBounds(doc.Root)
		scanned[job.index] = true
		return nil
	})
	if err != nil {
		return err
	}

	// The store serializes whole-list writes, so records are committed
	// sequentially after the parallel scan
	for i, room := range p.Rooms {
		if !scanned[i] {
			continue
		}
		if bounds[i].IsEmpty() {
			w.Log.Warn("room asset carries no geometry", "room", room.Name)
			continue
		}

		size := bounds[i].Size()
		room.Dimensions = [3]float64{size.X(), size.Y(), size.Z()}
		if err := w.Store.UpdateRoom(p.ID, room); err != nil {
			return err
		}
		w.Events.emit(RoomLoadedEvent{ProjectID: p.ID, Room: room, Bounds: bounds[i]})
	}
	w.Events.flush()

	return nil
}

// BuildModel merges the project's captured rooms into one building model,
// normalizes it for preview and writes the result to dst. The returned
// result reports the applied scale and the degenerate fallback.
func (w *Workspace) BuildModel(projectID, dst string) (scene.Result, error) {
	p, err := w.Store.Project(projectID)
	if err != nil {
		return scene.Result{}, err
	}

	var paths []string
	for _, room := range p.Rooms {
		path := filepath.Join(w.Store.ProjectDir(p.ID), room.Asset)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return scene.Result{}, fmt.Errorf("%w: project %s", ErrNoRooms, p.ID)
	}

	merged := filepath.Join(w.Store.ProjectDir(p.ID), "model"+filepath.Ext(dst))
	if err := w.Merger.Merge(paths, merged); err != nil {
		return scene.Result{}, err
	}
	w.Events.emit(ModelMergedEvent{ProjectID: p.ID, Rooms: len(paths), Path: merged})

	doc, err := asset.Open(merged)
	if err != nil {
		return scene.Result{}, err
	}

	n := scene.Normalizer{TargetSize: w.TargetSize, TiltAngle: w.TiltAngle}
	result, err := n.Normalize(doc.Root)
	if err != nil {
		return scene.Result{}, err
	}
	if result.Degenerate {
		w.Log.Warn("merged model has no usable geometry, scale fallback applied",
			"project", p.ID, "scale", result.Scale)
	}
	w.Events.emit(ModelNormalizedEvent{ProjectID: p.ID, Result: result})

	if err := doc.Save(dst); err != nil {
		return scene.Result{}, err
	}
	w.Events.emit(ModelExportedEvent{ProjectID: p.ID, Path: dst})
	w.Events.flush()

	w.Log.Info("model exported", "project", p.ID, "path", dst,
		"rooms", len(paths), "scale", result.Scale)

	return result, nil
}
