package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/khwan789/KimchiClicker/internal/engine"
	"github.com/khwan789/KimchiClicker/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type    string           `json:"type"`
	Event   events.EventType `json:"event,omitempty"`
	Command string           `json:"command,omitempty"`
	Applied bool             `json:"applied,omitempty"`
	Err     string           `json:"err,omitempty"`
	State   *engine.Snapshot `json:"state,omitempty"`
	At      time.Time        `json:"at"`
}

// wsCommand is what clients send: the same names as POST /cmd/{name}.
type wsCommand struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	N     int64  `json:"n"`
	ID    string `json:"id"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan wsMessage
	host string
	id   string
}

// hub fans engine notifications out to websocket clients. Slow clients drop
// messages rather than stall the engine.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// onEvent runs inside engine calls, so the engine lock is already held.
func (h *hub) onEvent(ev events.Event) {
	if ev.Type == events.Changed && ev.Command == "step" {
		return // the pulse carries tick progress
	}
	if h.count() == 0 {
		return
	}
	snap := eng.Snapshot()
	h.broadcast(wsMessage{Type: "state", Event: ev.Type, Command: ev.Command, State: &snap, At: ev.At})
}

func (h *hub) broadcast(msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	c := &wsClient{
		conn: conn,
		send: make(chan wsMessage, 64),
		host: host,
		id:   fmt.Sprintf("%d", time.Now().UnixNano()),
	}
	lock.Lock()
	snap := eng.Snapshot()
	lock.Unlock()
	c.send <- wsMessage{Type: "state", State: &snap, At: time.Now()}
	h.add(c)

	go c.writePump()
	go c.readPump(h)
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("websocket write failed", "client", c.id, "err", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteJSON(wsMessage{Type: "ping", At: time.Now()}); err != nil {
				return
			}
		}
	}
}

// readPump runs client commands. Results go back on the same socket; the
// resulting state arrives through the broadcast.
func (c *wsClient) readPump(h *hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	for {
		var cmd wsCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "client", c.id, "err", err)
			}
			return
		}
		reply := wsMessage{Type: "result", Command: cmd.Name, At: time.Now()}
		if !limiterFor(c.host).Allow() {
			reply.Err = "too many requests"
		} else {
			lock.Lock()
			applied, err := eng.Dispatch(cmd.Name, engine.Args{Index: cmd.Index, N: cmd.N, ID: cmd.ID})
			lock.Unlock()
			reply.Applied = applied
			if err != nil {
				reply.Err = err.Error()
			}
		}
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			select {
			case c.send <- reply:
			default:
			}
		}
		h.mu.Unlock()
	}
}
