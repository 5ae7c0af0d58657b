package model

import (
	"sync"
	"time"

	"github.com/benbeisheim/variantchess-backend/internal/engine"
	"github.com/benbeisheim/variantchess-backend/internal/ws"
)

// MaxPlayers is the number of seats in a room.
const MaxPlayers = 2

// Room is one game between two players and the connections watching it.
// The engine game is the authority; the room adds seats, the per-ply gate
// and the one-shot draw notices.
type Room struct {
	ID          string
	mu          sync.Mutex
	game        *engine.Game
	players     []Player
	hasMoved    map[string]bool
	threefold   bool
	fiftyMove   bool
	createdAt   time.Time
	updatedAt   time.Time
	connections *RoomConnections // Connections just for this room
}

// Record is the persisted and broadcast form of a room.
type Record struct {
	ID                string          `json:"roomId"`
	Variant           string          `json:"variant"`
	Rows              int             `json:"rows"`
	Cols              int             `json:"cols"`
	Players           []Player        `json:"players"`
	Position          engine.Position `json:"position"`
	History           engine.History  `json:"history,omitempty"`
	Plies             int             `json:"plies"`
	Status            engine.Status   `json:"status"`
	HasMoved          map[string]bool `json:"hasMoved"`
	ThreefoldDeclared bool            `json:"threefoldDeclared"`
	FiftyDeclared     bool            `json:"fiftyDeclared"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// MoveResult is what one accepted move did to a room.
type MoveResult struct {
	Player          Player
	Outcome         engine.Outcome
	ThreefoldNotice bool
	FiftyMoveNotice bool
}

func NewRoom(id, variantID string, now time.Time) (*Room, error) {
	game, err := engine.NewGame(variantID)
	if err != nil {
		return nil, err
	}
	return &Room{
		ID:          id,
		game:        game,
		players:     make([]Player, 0, MaxPlayers),
		hasMoved:    make(map[string]bool),
		createdAt:   now,
		updatedAt:   now,
		connections: NewRoomConnections(),
	}, nil
}

// RestoreRoom rebuilds a room from its record. Connections are not part of
// the record and start empty.
func RestoreRoom(rec Record) (*Room, error) {
	game, err := engine.Restore(engine.Snapshot{
		Variant:  rec.Variant,
		Position: rec.Position,
		History:  rec.History,
		Status:   rec.Status,
	})
	if err != nil {
		return nil, err
	}
	hasMoved := make(map[string]bool, len(rec.HasMoved))
	for id, moved := range rec.HasMoved {
		hasMoved[id] = moved
	}
	return &Room{
		ID:          rec.ID,
		game:        game,
		players:     append(make([]Player, 0, MaxPlayers), rec.Players...),
		hasMoved:    hasMoved,
		threefold:   rec.ThreefoldDeclared,
		fiftyMove:   rec.FiftyDeclared,
		createdAt:   rec.CreatedAt,
		updatedAt:   rec.UpdatedAt,
		connections: NewRoomConnections(),
	}, nil
}

// AddPlayer seats playerID. A player already in the room gets their seat
// back; otherwise the first free color is assigned, White first.
func (r *Room) AddPlayer(playerID, displayName string, now time.Time) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.player(playerID); ok {
		return p, nil
	}
	if len(r.players) >= MaxPlayers {
		return Player{}, ErrRoomFull
	}
	p := NewPlayer(playerID, displayName)
	p.Color = engine.White
	for _, other := range r.players {
		if other.Color == engine.White {
			p.Color = engine.Black
		}
	}
	r.players = append(r.players, p)
	r.updatedAt = now
	return p, nil
}

// RemovePlayer frees the player's seat and reports how many remain.
func (r *Room) RemovePlayer(playerID string, now time.Time) (remaining int, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			delete(r.hasMoved, playerID)
			r.updatedAt = now
			return len(r.players), true
		}
	}
	return len(r.players), false
}

func (r *Room) Player(playerID string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player(playerID)
}

func (r *Room) player(playerID string) (Player, bool) {
	for _, p := range r.players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Variant() *engine.Variant {
	return r.game.Variant()
}

// Move checks the seat and turn gates, then hands the move to the engine.
// A rejected move leaves the room unchanged.
func (r *Room) Move(playerID string, m engine.Move, now time.Time) (MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.player(playerID)
	if !ok {
		return MoveResult{}, ErrNotInRoom
	}
	if len(r.players) < MaxPlayers {
		return MoveResult{}, ErrWaitingForOpponent
	}
	if r.game.Status().Finished() {
		return MoveResult{}, &engine.MoveError{Err: engine.ErrGameOver, Move: m, Rows: r.game.Variant().Rows}
	}
	if p.Color != r.game.ToMove() {
		return MoveResult{}, ErrNotYourTurn
	}
	if r.hasMoved[playerID] {
		return MoveResult{}, ErrAlreadyMoved
	}

	out, err := r.game.Propose(m)
	if err != nil {
		return MoveResult{}, err
	}

	r.hasMoved[playerID] = true
	if r.allMoved() {
		r.hasMoved = make(map[string]bool)
	}

	res := MoveResult{Player: p, Outcome: out}
	if out.Repetitions >= 3 && !r.threefold {
		r.threefold = true
		res.ThreefoldNotice = true
	}
	if out.Position.HalfmoveClock >= engine.FiftyMoveLimit && !r.fiftyMove {
		r.fiftyMove = true
		res.FiftyMoveNotice = true
	}
	r.updatedAt = now
	return res, nil
}

func (r *Room) allMoved() bool {
	for _, p := range r.players {
		if !r.hasMoved[p.ID] {
			return false
		}
	}
	return true
}

// Legal lists destinations for the piece on from.
func (r *Room) Legal(from engine.Coord) ([]engine.Coord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Legal(from)
}

// Moves lists every legal move of the side on move.
func (r *Room) Moves() []engine.Move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Moves()
}

// Record returns the full persisted form, history included.
func (r *Room) Record() Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(true)
}

// State is the record without history, as sent to clients.
func (r *Room) State() Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(false)
}

func (r *Room) record(withHistory bool) Record {
	snap := r.game.Snapshot()
	v := r.game.Variant()
	hasMoved := make(map[string]bool, len(r.hasMoved))
	for id, moved := range r.hasMoved {
		hasMoved[id] = moved
	}
	rec := Record{
		ID:                r.ID,
		Variant:           v.ID,
		Rows:              v.Rows,
		Cols:              v.Cols,
		Players:           append([]Player(nil), r.players...),
		Position:          snap.Position,
		Status:            snap.Status,
		Plies:             r.game.HistoryLen() - 1,
		HasMoved:          hasMoved,
		ThreefoldDeclared: r.threefold,
		FiftyDeclared:     r.fiftyMove,
		CreatedAt:         r.createdAt,
		UpdatedAt:         r.updatedAt,
	}
	if withHistory {
		rec.History = snap.History
	}
	return rec
}

// RegisterConnection attaches conn for a seated player. A previous
// connection for the same player is closed.
func (r *Room) RegisterConnection(playerID string, conn Conn) error {
	if _, ok := r.Player(playerID); !ok {
		return ErrNotAuthorized
	}
	if old := r.connections.Register(playerID, conn); old != nil && old != conn {
		old.Close()
	}
	return nil
}

func (r *Room) UnregisterConnection(playerID string, conn Conn) bool {
	return r.connections.Unregister(playerID, conn)
}

func (r *Room) Send(playerID string, msg ws.Message) error {
	return r.connections.Send(playerID, msg)
}

func (r *Room) Broadcast(msg ws.Message) []string {
	return r.connections.Broadcast(msg)
}

func (r *Room) BroadcastExcept(msg ws.Message, playerID string) []string {
	return r.connections.BroadcastExcept(msg, playerID)
}
