// Package wsctrl streams planner reports to WebSocket clients.
package wsctrl

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/ports"
	"github.com/Agrid-Dev/coolsim/internal/report"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades connections, sends the current report on connect and
// every new one afterwards.
type Handler struct {
	hub      *Hub
	svc      ports.PlannerService
	deviceID string
	log      *zap.Logger
}

func NewHandler(hub *Hub, svc ports.PlannerService, deviceID string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{hub: hub, svc: svc, deviceID: deviceID, log: log.With(zap.String("component", "ws"))}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.hub.Register(client)
	go client.writePump()

	if msg, err := h.encode(h.svc.Get()); err == nil {
		h.hub.Send(client, msg)
	}

	h.readPump(client)
}

// Observe is a planner observer broadcasting the new report.
func (h *Handler) Observe(s planner.Snapshot) {
	msg, err := h.encode(s)
	if err != nil {
		h.log.Error("encode report", zap.Error(err))
		return
	}
	h.hub.Broadcast(msg)
}

// readPump only drains control frames; clients do not send commands.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) encode(s planner.Snapshot) ([]byte, error) {
	return json.Marshal(report.New(h.deviceID, s, true))
}
