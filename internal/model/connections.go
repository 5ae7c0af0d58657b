package model

import (
	"sync"

	"github.com/benbeisheim/variantchess-backend/internal/ws"
)

// Conn is the part of a websocket connection a room needs.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// RoomConnections holds at most one live connection per player. Writes are
// serialised under mu; a websocket allows one writer at a time.
type RoomConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewRoomConnections() *RoomConnections {
	return &RoomConnections{
		connections: make(map[string]Conn),
	}
}

// Register stores conn for playerID and returns the connection it replaced,
// if any. The caller closes the old one.
func (rc *RoomConnections) Register(playerID string, conn Conn) Conn {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	old := rc.connections[playerID]
	rc.connections[playerID] = conn
	return old
}

// Unregister drops conn only if it is still the player's current connection,
// so a stale read loop cannot evict its replacement.
func (rc *RoomConnections) Unregister(playerID string, conn Conn) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if current, ok := rc.connections[playerID]; ok && current == conn {
		delete(rc.connections, playerID)
		return true
	}
	return false
}

func (rc *RoomConnections) Send(playerID string, msg ws.Message) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	conn, ok := rc.connections[playerID]
	if !ok {
		return nil
	}
	if err := conn.WriteJSON(msg); err != nil {
		delete(rc.connections, playerID)
		return err
	}
	return nil
}

// Broadcast writes msg to every connection. Connections that fail are
// dropped and their player IDs returned.
func (rc *RoomConnections) Broadcast(msg ws.Message) []string {
	return rc.BroadcastExcept(msg, "")
}

func (rc *RoomConnections) BroadcastExcept(msg ws.Message, except string) []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	var failed []string
	for playerID, conn := range rc.connections {
		if playerID == except {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			delete(rc.connections, playerID)
			failed = append(failed, playerID)
		}
	}
	return failed
}

func (rc *RoomConnections) Count() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.connections)
}
