// Package progress pushes conversion progress to websocket clients.
//
// A single hub goroutine owns the client registry; all operations arrive as
// commands over a channel, so no mutex guards the maps.
package progress

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/RavinduThilinaka/pdf-conventor/internal/domain"
	"github.com/RavinduThilinaka/pdf-conventor/internal/metrics"
)

const (
	maxClientsPerWorkspace = 8
	writeTimeout           = 5 * time.Second
)

// Update is one progress message pushed to subscribers.
type Update struct {
	State   domain.RunState `json:"state"`
	Percent int             `json:"percent"`
}

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	workspaceID uuid.UUID
	conn        *websocket.Conn
	errCh       chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	workspaceID uuid.UUID
	conn        *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdPublish struct {
	workspaceID uuid.UUID
	data        []byte
}

func (cmdPublish) hubCmd() {}

type cmdClientCount struct {
	workspaceID uuid.UUID
	replyCh     chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// Hub fans progress updates out to the websocket clients of a workspace.
type Hub struct {
	cmds    chan hubCmd
	stopped chan struct{}
}

func NewHub() *Hub {
	h := &Hub{
		cmds:    make(chan hubCmd, 64),
		stopped: make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	clients := make(map[uuid.UUID]map[*websocket.Conn]struct{})

	for cmd := range h.cmds {
		switch c := cmd.(type) {
		case cmdRegister:
			conns := clients[c.workspaceID]
			if len(conns) >= maxClientsPerWorkspace {
				c.errCh <- websocket.ErrCloseSent
				continue
			}
			if conns == nil {
				conns = make(map[*websocket.Conn]struct{})
				clients[c.workspaceID] = conns
			}
			conns[c.conn] = struct{}{}
			metrics.ProgressClientsConnected.Inc()
			c.errCh <- nil

		case cmdUnregister:
			if conns, ok := clients[c.workspaceID]; ok {
				if _, present := conns[c.conn]; present {
					delete(conns, c.conn)
					metrics.ProgressClientsConnected.Dec()
				}
				if len(conns) == 0 {
					delete(clients, c.workspaceID)
				}
			}
			_ = c.conn.Close()

		case cmdPublish:
			for conn := range clients[c.workspaceID] {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, c.data); err != nil {
					// Slow or gone; drop the client rather than stall the hub.
					delete(clients[c.workspaceID], conn)
					metrics.ProgressClientsConnected.Dec()
					_ = conn.Close()
				}
			}

		case cmdClientCount:
			c.replyCh <- len(clients[c.workspaceID])

		case cmdStop:
			for _, conns := range clients {
				for conn := range conns {
					_ = conn.Close()
					metrics.ProgressClientsConnected.Dec()
				}
			}
			close(h.stopped)
			return
		}
	}
}

// Register subscribes a connection to a workspace's updates.
func (h *Hub) Register(workspaceID uuid.UUID, conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmds <- cmdRegister{workspaceID: workspaceID, conn: conn, errCh: errCh}:
		return <-errCh
	case <-h.stopped:
		return websocket.ErrCloseSent
	}
}

// Unregister drops a connection and closes it.
func (h *Hub) Unregister(workspaceID uuid.UUID, conn *websocket.Conn) {
	select {
	case h.cmds <- cmdUnregister{workspaceID: workspaceID, conn: conn}:
	case <-h.stopped:
	}
}

// Publish sends an update to every subscriber of the workspace.
func (h *Hub) Publish(workspaceID uuid.UUID, update Update) {
	data, err := json.Marshal(update)
	if err != nil {
		slog.Error("Failed to marshal progress update", "error", err)
		return
	}
	select {
	case h.cmds <- cmdPublish{workspaceID: workspaceID, data: data}:
	case <-h.stopped:
	}
}

// ClientCount reports how many clients a workspace currently has.
func (h *Hub) ClientCount(workspaceID uuid.UUID) int {
	replyCh := make(chan int, 1)
	select {
	case h.cmds <- cmdClientCount{workspaceID: workspaceID, replyCh: replyCh}:
		return <-replyCh
	case <-h.stopped:
		return 0
	}
}

// Stop closes every client connection and shuts the hub down.
func (h *Hub) Stop() {
	select {
	case h.cmds <- cmdStop{}:
		<-h.stopped
	case <-h.stopped:
	}
}
