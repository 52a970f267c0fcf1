package atrium

import (
	"github.com/atriumscan/atrium/project"
	"github.com/atriumscan/atrium/scene"
)

const (
	ROOM_LOADED EventType = iota
	MODEL_MERGED
	MODEL_NORMALIZED
	MODEL_EXPORTED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// RoomLoadedEvent fires once per room asset that was opened and measured
type RoomLoadedEvent struct {
	ProjectID string
	Room      project.Room
	Bounds    scene.Bounds
}

func (e RoomLoadedEvent) Type() EventType { return ROOM_LOADED }

// ModelMergedEvent fires after the structure builder combined the rooms
type ModelMergedEvent struct {
	ProjectID string
	Rooms     int
	Path      string
}

func (e ModelMergedEvent) Type() EventType { return MODEL_MERGED }

// ModelNormalizedEvent fires after the merged model was normalized
type ModelNormalizedEvent struct {
	ProjectID string
	Result    scene.Result
}

func (e ModelNormalizedEvent) Type() EventType { return MODEL_NORMALIZED }

// ModelExportedEvent fires after the normalized model was written out
type ModelExportedEvent struct {
	ProjectID string
	Path      string
}

func (e ModelExportedEvent) Type() EventType { return MODEL_EXPORTED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emit buffers an event until the next flush
func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
