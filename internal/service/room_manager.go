// service/room_manager.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/engine"
	"github.com/benbeisheim/variantchess-backend/internal/model"
	"github.com/benbeisheim/variantchess-backend/internal/store"
	"github.com/benbeisheim/variantchess-backend/internal/ws"
)

var ErrRoomNotFound = errors.New("room does not exist")

// RoomManager is the registry of live rooms. Every room it holds is also
// written to the store, so Restore can rebuild the registry after a restart.
type RoomManager struct {
	rooms            map[string]*model.Room
	store            store.RoomStore
	queue            *model.Queue
	matchingChannels map[string]chan ws.Message
	logger           *zap.Logger
	now              func() time.Time
	newID            func() string
	mu               sync.RWMutex
}

type Option func(*RoomManager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(rm *RoomManager) { rm.now = now }
}

// WithIDs replaces the uuid room id generator.
func WithIDs(newID func() string) Option {
	return func(rm *RoomManager) { rm.newID = newID }
}

func NewRoomManager(st store.RoomStore, logger *zap.Logger, opts ...Option) *RoomManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	rm := &RoomManager{
		rooms:            make(map[string]*model.Room),
		store:            st,
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan ws.Message),
		logger:           logger,
		now:              time.Now,
		newID:            func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(rm)
	}
	return rm
}

// Restore loads every stored room into the registry. Records that no longer
// decode into a valid room are logged and skipped.
func (rm *RoomManager) Restore(ctx context.Context) (int, error) {
	recs, err := rm.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored rooms: %w", err)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	n := 0
	for _, rec := range recs {
		room, err := model.RestoreRoom(rec)
		if err != nil {
			rm.logger.Warn("skipping stored room", zap.String("room_id", rec.ID), zap.Error(err))
			continue
		}
		rm.rooms[room.ID] = room
		n++
	}
	return n, nil
}

func (rm *RoomManager) CreateRoom(ctx context.Context, variantID string) (*model.Room, error) {
	room, err := model.NewRoom(rm.newID(), variantID, rm.now())
	if err != nil {
		return nil, err
	}

	rm.mu.Lock()
	if _, exists := rm.rooms[room.ID]; exists {
		rm.mu.Unlock()
		return nil, fmt.Errorf("room %s already exists", room.ID)
	}
	rm.rooms[room.ID] = room
	rm.mu.Unlock()

	if err := rm.Persist(ctx, room); err != nil {
		rm.mu.Lock()
		delete(rm.rooms, room.ID)
		rm.mu.Unlock()
		return nil, err
	}
	rm.logger.Info("room created", zap.String("room_id", room.ID), zap.String("variant", room.Variant().ID))
	return room, nil
}

func (rm *RoomManager) GetRoom(roomID string) (*model.Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (rm *RoomManager) DeleteRoom(ctx context.Context, roomID string) error {
	rm.mu.Lock()
	delete(rm.rooms, roomID)
	rm.mu.Unlock()

	if err := rm.store.Delete(ctx, roomID); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	rm.logger.Info("room deleted", zap.String("room_id", roomID))
	return nil
}

// Persist writes the room's current record to the store.
func (rm *RoomManager) Persist(ctx context.Context, room *model.Room) error {
	if err := rm.store.Save(ctx, room.Record()); err != nil {
		return fmt.Errorf("save room %s: %w", room.ID, err)
	}
	return nil
}

func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

func (rm *RoomManager) Now() time.Time {
	return rm.now()
}

func (rm *RoomManager) JoinMatchmaking(player model.Player, variantID string) error {
	v, err := engine.Lookup(variantID)
	if err != nil {
		return err
	}
	if err := rm.queue.AddPlayer(player, v.ID, rm.now()); err != nil {
		rm.logger.Debug("matchmaking join rejected", zap.String("player_id", player.ID), zap.Error(err))
		return err
	}
	return nil
}

// RegisterMatchmakingChannel routes the player's matchFound message to ch.
// A channel registered earlier for the same player is closed.
func (rm *RoomManager) RegisterMatchmakingChannel(playerID string, ch chan ws.Message) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if existing, exists := rm.matchingChannels[playerID]; exists {
		delete(rm.matchingChannels, playerID)
		close(existing)
	}
	rm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch and takes the player out of the
// queue. It does nothing if ch was already replaced or used.
func (rm *RoomManager) UnregisterMatchmakingChannel(playerID string, ch chan ws.Message) {
	rm.mu.Lock()
	current, exists := rm.matchingChannels[playerID]
	if exists && current == ch {
		delete(rm.matchingChannels, playerID)
	}
	rm.mu.Unlock()

	// The queue calls hasChannel under its own lock, so never hold rm.mu here.
	if exists && current == ch {
		rm.queue.Remove(playerID)
	}
}

// RunMatchmaking pairs queued players every interval until ctx is done.
func (rm *RoomManager) RunMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.MatchOnce(ctx)
		}
	}
}

// MatchOnce pairs every ready couple currently in the queue and returns how
// many rooms it opened. Only players with a registered channel are paired.
// A failed match puts the players who are still waiting back in the queue
// and ends the round; the next tick retries.
func (rm *RoomManager) MatchOnce(ctx context.Context) int {
	matched := 0
	for {
		first, second, ok := rm.queue.NextPair(rm.hasChannel)
		if !ok {
			return matched
		}
		if err := rm.openMatch(ctx, first, second); err != nil {
			level := zap.ErrorLevel
			if errors.Is(err, errPlayerLeft) {
				level = zap.InfoLevel
			}
			rm.logger.Log(level, "matchmaking failed",
				zap.String("white", first.Player.ID),
				zap.String("black", second.Player.ID),
				zap.Error(err))
			return matched
		}
		matched++
	}
}

var errPlayerLeft = errors.New("matched player left before the room opened")

func (rm *RoomManager) hasChannel(playerID string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, ok := rm.matchingChannels[playerID]
	return ok
}

func (rm *RoomManager) openMatch(ctx context.Context, first, second model.QueuedPlayer) error {
	pair := []model.QueuedPlayer{first, second}
	chans, ok := rm.claimChannels(pair)
	if !ok {
		rm.requeue(pair)
		return errPlayerLeft
	}

	room, seats, err := rm.seatMatch(ctx, pair)
	if err != nil {
		rm.releaseChannels(pair, chans)
		rm.requeue(pair)
		return err
	}

	for i, p := range seats {
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, ws.MatchFoundPayload{
			RoomID:  room.ID,
			Color:   p.Color.String(),
			Variant: room.Variant().ID,
		})
		if err == nil {
			select {
			case chans[i] <- msg:
				rm.logger.Info("match found", zap.String("player_id", p.ID), zap.String("room_id", room.ID))
			default:
				rm.logger.Warn("failed to notify matched player", zap.String("player_id", p.ID))
			}
		}
		close(chans[i])
	}
	return nil
}

// claimChannels takes both players' channels out of the registry so that
// nothing else can close or replace them while the room is set up. Either
// both are claimed or neither is.
func (rm *RoomManager) claimChannels(pair []model.QueuedPlayer) ([]chan ws.Message, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	chans := make([]chan ws.Message, len(pair))
	for i, qp := range pair {
		ch, ok := rm.matchingChannels[qp.Player.ID]
		if !ok {
			return nil, false
		}
		chans[i] = ch
	}
	for _, qp := range pair {
		delete(rm.matchingChannels, qp.Player.ID)
	}
	return chans, true
}

// releaseChannels hands claimed channels back. A player who registered a new
// channel in the meantime keeps the new one and the claimed one is closed.
func (rm *RoomManager) releaseChannels(pair []model.QueuedPlayer, chans []chan ws.Message) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for i, qp := range pair {
		if _, replaced := rm.matchingChannels[qp.Player.ID]; replaced {
			close(chans[i])
			continue
		}
		rm.matchingChannels[qp.Player.ID] = chans[i]
	}
}

// requeue returns players who still hold a channel to the queue; the rest
// have gone away.
func (rm *RoomManager) requeue(pair []model.QueuedPlayer) {
	for _, qp := range pair {
		if !rm.hasChannel(qp.Player.ID) {
			continue
		}
		if err := rm.queue.Requeue(qp); err != nil {
			rm.logger.Debug("requeue skipped", zap.String("player_id", qp.Player.ID), zap.Error(err))
		}
	}
}

// seatMatch opens a room with both players seated in queue order. The room
// is deleted again if anything after its creation fails.
func (rm *RoomManager) seatMatch(ctx context.Context, pair []model.QueuedPlayer) (*model.Room, []model.Player, error) {
	room, err := rm.CreateRoom(ctx, pair[0].Variant)
	if err != nil {
		return nil, nil, err
	}

	seats, err := rm.seat(ctx, room, pair)
	if err != nil {
		if delErr := rm.DeleteRoom(ctx, room.ID); delErr != nil {
			rm.logger.Error("failed to delete abandoned room", zap.String("room_id", room.ID), zap.Error(delErr))
		}
		return nil, nil, err
	}
	return room, seats, nil
}

func (rm *RoomManager) seat(ctx context.Context, room *model.Room, pair []model.QueuedPlayer) ([]model.Player, error) {
	now := rm.now()
	seats := make([]model.Player, 0, len(pair))
	for _, qp := range pair {
		p, err := room.AddPlayer(qp.Player.ID, qp.Player.DisplayName, now)
		if err != nil {
			return nil, err
		}
		seats = append(seats, p)
	}
	if err := rm.Persist(ctx, room); err != nil {
		return nil, err
	}
	return seats, nil
}
