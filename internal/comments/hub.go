package comments

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"mangaproxy/pkg/models"
)

// Hub is a thin relay: browsers watching a manga's comment section
// subscribe to its room and receive new comments as they are posted.
// Nothing is queued or persisted here; persistence is the repo's job.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]struct{} // manga id -> subscribers
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) Subscribe(mangaID string, ws *websocket.Conn) {
	h.mu.Lock()
	room, ok := h.rooms[mangaID]
	if !ok {
		room = make(map[*websocket.Conn]struct{})
		h.rooms[mangaID] = room
	}
	room[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unsubscribe(mangaID string, ws *websocket.Conn) {
	h.mu.Lock()
	if room, ok := h.rooms[mangaID]; ok {
		delete(room, ws)
		if len(room) == 0 {
			delete(h.rooms, mangaID)
		}
	}
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish pushes a new comment to every subscriber of its manga. Dead
// connections are dropped on write failure.
func (h *Hub) Publish(cm models.Comment) {
	payload, err := json.Marshal(cm)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[cm.MangaID]
	if !ok {
		return
	}
	for ws := range room {
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = ws.Close()
			delete(room, ws)
		}
	}
}

// Subscribers reports the live connection count for a manga's room.
func (h *Hub) Subscribers(mangaID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[mangaID])
}
