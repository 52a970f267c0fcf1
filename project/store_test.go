package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLoadEmptyStore(t *testing.T) {
	s := newTestStore(t)

	list, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateProject(t *testing.T) {
	s := newTestStore(t)

	p, err := s.CreateProject("Apartment")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Apartment", p.Name)
	assert.False(t, p.CreatedAt.IsZero())
	assert.DirExists(t, s.ProjectDir(p.ID))

	list, err := s.Load()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestCreateProjectAssignsDistinctIDs(t *testing.T) {
	s := newTestStore(t)

	a, err := s.CreateProject("A")
	require.NoError(t, err)
	b, err := s.CreateProject("B")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRenameProject(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("Old")
	require.NoError(t, err)

	require.NoError(t, s.RenameProject(p.ID, "New"))

	got, err := s.Project(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
}

func TestDeleteProject(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("Doomed")
	require.NoError(t, err)
	keep, err := s.CreateProject("Kept")
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(p.ID))

	list, err := s.Load()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
	assert.NoDirExists(t, s.ProjectDir(p.ID))

	assert.ErrorIs(t, s.DeleteProject(p.ID), ErrNotFound)
}

func TestProjectNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Project("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRoom(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("House")
	require.NoError(t, err)

	room, err := s.AddRoom(p.ID, "Kitchen")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, filepath.Join("rooms", room.ID+".glb"), room.Asset)
	assert.DirExists(t, filepath.Join(s.ProjectDir(p.ID), "rooms"))

	got, err := s.Project(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Rooms, 1)
	assert.Equal(t, "Kitchen", got.Rooms[0].Name)

	_, err = s.AddRoom("missing", "Kitchen")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRoom(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("House")
	require.NoError(t, err)
	room, err := s.AddRoom(p.ID, "Kitchen")
	require.NoError(t, err)

	room.Dimensions = [3]float64{4, 2.5, 5}
	require.NoError(t, s.UpdateRoom(p.ID, room))

	got, err := s.Project(p.ID)
	require.NoError(t, err)
	found, ok := got.Room(room.ID)
	require.True(t, ok)
	assert.Equal(t, [3]float64{4, 2.5, 5}, found.Dimensions)

	stranger := Room{ID: "missing"}
	assert.ErrorIs(t, s.UpdateRoom(p.ID, stranger), ErrNotFound)
}

func TestRemoveRoom(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("House")
	require.NoError(t, err)
	room, err := s.AddRoom(p.ID, "Kitchen")
	require.NoError(t, err)

	// Simulate a finished capture
	assetPath := filepath.Join(s.ProjectDir(p.ID), room.Asset)
	require.NoError(t, os.WriteFile(assetPath, []byte("glb"), 0o644))

	require.NoError(t, s.RemoveRoom(p.ID, room.ID))
	assert.NoFileExists(t, assetPath)

	got, err := s.Project(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Rooms)

	assert.ErrorIs(t, s.RemoveRoom(p.ID, room.ID), ErrNotFound)
}

func TestSaveIsAtomic(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateProject("A")
	require.NoError(t, err)

	// No temp file is left behind after a successful save
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestLoadCorruptList(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "projects.json"), []byte("{not json"), 0o644))

	_, err := s.Load()
	assert.Error(t, err)
}
