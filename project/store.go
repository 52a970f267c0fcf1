// Package project persists capture projects as flat JSON files: one list
// file plus one asset subdirectory per project. Every operation reads the
// whole list, mutates it and writes it back; there is no locking across
// processes.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const listFile = "projects.json"

// ErrNotFound is returned when a project or room id is unknown
var ErrNotFound = errors.New("project: not found")

// Store holds projects under a root directory
type Store struct {
	dir string
}

// NewStore opens a store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("project: create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory
func (s *Store) Dir() string {
	return s.dir
}

// ProjectDir returns the asset directory of a project
func (s *Store) ProjectDir(id string) string {
	return filepath.Join(s.dir, id)
}

// Load reads the full project list. A missing list file is an empty store.
func (s *Store) Load() ([]Project, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, listFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("project: read list: %w", err)
	}

	var list []Project
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("project: decode list: %w", err)
	}
	return list, nil
}

// Save writes the full project list back, atomically via a temp file rename
func (s *Store) Save(list []Project) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("project: encode list: %w", err)
	}

	path := filepath.Join(s.dir, listFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("project: write list: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("project: commit list: %w", err)
	}
	return nil
}

// CreateProject appends a new named project and creates its asset directory
func (s *Store) CreateProject(name string) (Project, error) {
	list, err := s.Load()
	if err != nil {
		return Project{}, err
	}

	p := Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := os.MkdirAll(s.ProjectDir(p.ID), 0o755); err != nil {
		return Project{}, fmt.Errorf("project: create project dir: %w", err)
	}

	if err := s.Save(append(list, p)); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Project returns the project with the given id
func (s *Store) Project(id string) (Project, error) {
	list, err := s.Load()
	if err != nil {
		return Project{}, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: project %s", ErrNotFound, id)
}

// RenameProject changes a project's display name
func (s *Store) RenameProject(id, name string) error {
	return s.update(id, func(p *Project) error {
		p.Name = name
		return nil
	})
}

// DeleteProject removes the project record and its asset directory
func (s *Store) DeleteProject(id string) error {
	list, err := s.Load()
	if err != nil {
		return err
	}

	k := -1
	for i, p := range list {
		if p.ID == id {
			k = i
			break
		}
	}
	if k == -1 {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}

	if err := s.Save(append(list[:k], list[k+1:]...)); err != nil {
		return err
	}
	return os.RemoveAll(s.ProjectDir(id))
}

// AddRoom registers a new room on a project and allocates its asset path
// under the project directory. The capture itself writes the asset file.
func (s *Store) AddRoom(projectID, name string) (Room, error) {
	room := Room{
		ID:         uuid.NewString(),
		Name:       name,
		CapturedAt: time.Now().UTC(),
	}
	room.Asset = filepath.Join("rooms", room.ID+".glb")

	err := s.update(projectID, func(p *Project) error {
		if err := os.MkdirAll(filepath.Join(s.ProjectDir(p.ID), "rooms"), 0o755); err != nil {
			return fmt.Errorf("project: create rooms dir: %w", err)
		}
		p.Rooms = append(p.Rooms, room)
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	return room, nil
}

// UpdateRoom replaces the stored record of a room
func (s *Store) UpdateRoom(projectID string, room Room) error {
	return s.update(projectID, func(p *Project) error {
		for i := range p.Rooms {
			if p.Rooms[i].ID == room.ID {
				p.Rooms[i] = room
				return nil
			}
		}
		return fmt.Errorf("%w: room %s", ErrNotFound, room.ID)
	})
}

// RemoveRoom drops a room record and deletes its asset file
func (s *Store) RemoveRoom(projectID, roomID string) error {
	var asset string
	err := s.update(projectID, func(p *Project) error {
		for i := range p.Rooms {
			if p.Rooms[i].ID == roomID {
				asset = filepath.Join(s.ProjectDir(p.ID), p.Rooms[i].Asset)
				p.Rooms = append(p.Rooms[:i], p.Rooms[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	})
	if err != nil {
		return err
	}
	if err := os.Remove(asset); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("project: remove room asset: %w", err)
	}
	return nil
}

// update loads the list, applies fn to the matching project and saves
func (s *Store) update(id string, fn func(p *Project) error) error {
	list, err := s.Load()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			if err := fn(&list[i]); err != nil {
				return err
			}
			return s.Save(list)
		}
	}
	return fmt.Errorf("%w: project %s", ErrNotFound, id)
}
