// Package broadcast fans newly persisted access events out to connected
// dashboard viewers over WebSocket. Delivery is fire-and-forget: no
// acknowledgement, no replay for late joiners (they pull the log over
// HTTP on connect).
package broadcast

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cardwatch/server/internal/cardwatch/types"
)

// EventNewLog is the event name pushed after each successful ingestion.
const EventNewLog = "new-rfid-log"

const (
	// sendBuffer is the per-viewer queue. Publish drops frames for a
	// viewer whose buffer is full rather than block the ingest path.
	sendBuffer = 32

	writeTimeout = 10 * time.Second
	pingInterval = 60 * time.Second
)

// frame is the wire envelope pushed to viewers.
type frame struct {
	Event string            `json:"event"`
	Data  types.AccessEvent `json:"data"`
}

type viewer struct {
	id   string
	wc   *websocket.Conn
	send chan []byte
}

// Hub tracks the live set of attached viewers and delivers events to all
// of them. Safe for concurrent use.
type Hub struct {
	logger *log.Logger
	upgr   websocket.Upgrader

	mu      sync.Mutex
	viewers map[string]*viewer
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgr: websocket.Upgrader{
			// The dashboard may be served from a different origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		viewers: make(map[string]*viewer),
	}
}

// Publish offers ev to every attached viewer. It never blocks: a viewer
// whose send buffer is full misses this event.
func (h *Hub) Publish(ev types.AccessEvent) {
	b, err := json.Marshal(frame{Event: EventNewLog, Data: ev})
	if err != nil {
		h.logger.Printf("hub marshal: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.viewers {
		select {
		case v.send <- b:
		default:
			h.logger.Printf("hub: viewer %s lagging, dropped event %d", v.id, ev.ID)
		}
	}
}

// ViewerCount returns the number of currently attached viewers.
func (h *Hub) ViewerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// ServeHTTP upgrades the request and attaches the viewer until its
// connection drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wc, err := h.upgr.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		h.logger.Printf("hub upgrade failed: %v", err)
		return
	}

	v := &viewer{id: uuid.NewString(), wc: wc, send: make(chan []byte, sendBuffer)}
	h.attach(v)
	h.logger.Printf("viewer connected: %s", v.id)

	go v.writeLoop()
	v.readLoop() // returns when the client goes away

	h.detach(v)
	h.logger.Printf("viewer disconnected: %s", v.id)
}

// Close detaches every viewer and lets their write loops shut the
// connections down. Used on server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, v := range h.viewers {
		delete(h.viewers, id)
		close(v.send)
	}
}

func (h *Hub) attach(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[v.id] = v
}

func (h *Hub) detach(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[v.id]; !ok {
		return // already detached by Close
	}
	delete(h.viewers, v.id)
	close(v.send)
}

// writeLoop drains the send buffer onto the connection and keeps it alive
// with pings. It owns all writes to wc.
func (v *viewer) writeLoop() {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer v.wc.Close()

	for {
		select {
		case b, ok := <-v.send:
			if !ok {
				v.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				_ = v.wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			v.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := v.wc.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-t.C:
			v.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := v.wc.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; the protocol defines no
// client-to-server messages beyond connect and disconnect. It returns
// when the connection errors or closes.
func (v *viewer) readLoop() {
	for {
		if _, _, err := v.wc.ReadMessage(); err != nil {
			return
		}
	}
}
