package project

import "time"

// Project is a captured building: a named collection of room scans with
// one asset directory on disk
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Rooms     []Room    `json:"rooms,omitempty"`
}

// Room is a single captured room inside a project
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Asset is the room's scene file, relative to the project directory
	Asset string `json:"asset"`
	// Dimensions are the room's world bounds extents (X, Y, Z), filled in
	// once the asset has been scanned
	Dimensions [3]float64 `json:"dimensions,omitempty"`
	CapturedAt time.Time  `json:"captured_at"`
}

// Room returns the room with the given id, or false
func (p *Project) Room(id string) (Room, bool) {
	for _, room := range p.Rooms {
		if room.ID == id {
			return room, true
		}
	}
	return Room{}, false
}
