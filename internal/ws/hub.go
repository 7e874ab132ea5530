package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"SchoolScan/entity"
)

// Event represents a WebSocket event sent to dashboard clients.
type Event struct {
	Type string      `json:"type"` // "attendance", "sweep"
	Data interface{} `json:"data"`
}

// AttendanceEvent is the payload broadcast for every ledger mutation the
// dashboard cares about.
type AttendanceEvent struct {
	IndexNumber string           `json:"index_number"`
	Name        string           `json:"name"`
	Class       string           `json:"class"`
	Event       entity.EventKind `json:"event"`
	Status      entity.Status    `json:"status"`
	Date        time.Time        `json:"date"`
	EntryTime   *time.Time       `json:"entry_time,omitempty"`
	LeaveTime   *time.Time       `json:"leave_time,omitempty"`
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastAttendance pushes one attendance transition to every connected
// dashboard. Non-blocking for the caller; slow clients get dropped.
func (h *Hub) BroadcastAttendance(student *entity.Student, record *entity.AttendanceRecord, kind entity.EventKind) {
	if student == nil || record == nil {
		return
	}

	eventType := "attendance"
	if kind == entity.EventAutoCheckout {
		eventType = "sweep"
	}

	event := &Event{
		Type: eventType,
		Data: AttendanceEvent{
			IndexNumber: student.IndexNumber,
			Name:        student.Name,
			Class:       student.Class,
			Event:       kind,
			Status:      record.Status,
			Date:        record.Date,
			EntryTime:   record.EntryTime,
			LeaveTime:   record.LeaveTime,
		},
	}

	select {
	case h.broadcast <- event:
	default:
		if h.log != nil {
			h.log.Warn("feed broadcast buffer full, event dropped")
		}
	}
}
