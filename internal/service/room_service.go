package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/engine"
	"github.com/benbeisheim/variantchess-backend/internal/model"
	"github.com/benbeisheim/variantchess-backend/internal/ws"
)

type RoomService struct {
	rooms  *RoomManager
	logger *zap.Logger
}

func NewRoomService(rooms *RoomManager, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{
		rooms:  rooms,
		logger: logger,
	}
}

func (rs *RoomService) Variants() []*engine.Variant {
	return engine.Variants()
}

// CreateRoom opens a room and seats the creator as White.
func (rs *RoomService) CreateRoom(ctx context.Context, playerID, displayName, variantID string) (model.Record, model.Player, error) {
	room, err := rs.rooms.CreateRoom(ctx, variantID)
	if err != nil {
		return model.Record{}, model.Player{}, err
	}
	player, err := room.AddPlayer(playerID, displayName, rs.rooms.Now())
	if err != nil {
		return model.Record{}, model.Player{}, err
	}
	if err := rs.rooms.Persist(ctx, room); err != nil {
		return model.Record{}, model.Player{}, err
	}
	return room.State(), player, nil
}

// JoinRoom seats playerID and tells everyone already connected.
func (rs *RoomService) JoinRoom(ctx context.Context, roomID, playerID, displayName string) (model.Player, error) {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return model.Player{}, err
	}
	_, seated := room.Player(playerID)
	player, err := room.AddPlayer(playerID, displayName, rs.rooms.Now())
	if err != nil {
		return model.Player{}, err
	}
	if seated {
		return player, nil
	}
	if err := rs.rooms.Persist(ctx, room); err != nil {
		return model.Player{}, err
	}

	rs.logger.Info("player joined room",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.Stringer("color", player.Color))
	rs.broadcastExcept(room, ws.MessageTypeOpponentJoined, ws.PlayerPayload{
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		Color:       player.Color.String(),
	}, player.ID)
	rs.broadcast(room, ws.MessageTypeRoomState, room.State())
	return player, nil
}

func (rs *RoomService) GetRoom(roomID string) (model.Record, error) {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return model.Record{}, err
	}
	return room.State(), nil
}

// LegalMoves lists the destination labels for the piece on from.
func (rs *RoomService) LegalMoves(roomID, from string) ([]string, error) {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	rows := room.Variant().Rows
	sq, err := engine.ParseSquare(from, rows)
	if err != nil {
		return nil, err
	}
	dests, err := room.Legal(sq)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(dests))
	for i, d := range dests {
		labels[i] = d.Label(rows)
	}
	return labels, nil
}

// AllMoves lists every legal move of the side on move, with squares labelled
// for the room's board.
func (rs *RoomService) AllMoves(roomID string) ([]ws.MovePayload, error) {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	rows := room.Variant().Rows
	moves := room.Moves()
	out := make([]ws.MovePayload, len(moves))
	for i, m := range moves {
		out[i] = ws.MovePayload{From: m.From.Label(rows), To: m.To.Label(rows)}
	}
	return out, nil
}

// HandleMove applies a client's move, persists the room and broadcasts the
// new state plus any status change or draw notice the move produced.
func (rs *RoomService) HandleMove(ctx context.Context, roomID, playerID string, payload ws.MovePayload) error {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return err
	}
	m, err := parseMove(payload, room.Variant().Rows)
	if err != nil {
		return err
	}

	res, err := room.Move(playerID, m, rs.rooms.Now())
	if err != nil {
		rs.logger.Debug("move rejected",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID),
			zap.Error(err))
		return err
	}
	if err := rs.rooms.Persist(ctx, room); err != nil {
		rs.logger.Error("failed to persist room", zap.String("room_id", roomID), zap.Error(err))
	}

	rs.broadcast(room, ws.MessageTypeRoomState, room.State())
	if res.Outcome.StatusChanged {
		rs.logger.Info("game status changed",
			zap.String("room_id", roomID),
			zap.String("winner", string(res.Outcome.Status.Winner)),
			zap.String("reason", string(res.Outcome.Status.Reason)))
		rs.broadcast(room, ws.MessageTypeStatusChanged, res.Outcome.Status)
	}
	if res.ThreefoldNotice {
		rs.broadcast(room, ws.MessageTypeThreefold, ws.NoticePayload{
			RoomID:      roomID,
			Repetitions: res.Outcome.Repetitions,
		})
	}
	if res.FiftyMoveNotice {
		rs.broadcast(room, ws.MessageTypeFiftyMoveRule, ws.NoticePayload{
			RoomID:        roomID,
			HalfmoveClock: res.Outcome.Position.HalfmoveClock,
		})
	}
	return nil
}

func parseMove(payload ws.MovePayload, rows int) (engine.Move, error) {
	from, err := engine.ParseSquare(payload.From, rows)
	if err != nil {
		return engine.Move{}, err
	}
	to, err := engine.ParseSquare(payload.To, rows)
	if err != nil {
		return engine.Move{}, err
	}
	promo, err := engine.ParseKind(payload.Promotion)
	if err != nil {
		return engine.Move{}, fmt.Errorf("%w: %v", engine.ErrInvalidPromotion, err)
	}
	return engine.Move{From: from, To: to, Promotion: promo}, nil
}

// RegisterConnection attaches conn to the room and sends the player the
// current state.
func (rs *RoomService) RegisterConnection(roomID, playerID string, conn model.Conn) error {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return err
	}
	if err := room.RegisterConnection(playerID, conn); err != nil {
		return err
	}
	msg, err := ws.NewMessage(ws.MessageTypeRoomState, room.State())
	if err != nil {
		return err
	}
	return room.Send(playerID, msg)
}

// SendTo writes msg to one player's connection in the room.
func (rs *RoomService) SendTo(roomID, playerID string, msg ws.Message) error {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return err
	}
	return room.Send(playerID, msg)
}

// Disconnect detaches conn. When conn was the player's live connection the
// player leaves the room; the last player out deletes it.
func (rs *RoomService) Disconnect(ctx context.Context, roomID, playerID string, conn model.Conn) {
	room, err := rs.rooms.GetRoom(roomID)
	if err != nil {
		return
	}
	if !room.UnregisterConnection(playerID, conn) {
		return
	}
	player, _ := room.Player(playerID)
	remaining, removed := room.RemovePlayer(playerID, rs.rooms.Now())
	if !removed {
		return
	}

	rs.logger.Info("player left room",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.Int("remaining", remaining))
	if remaining == 0 {
		if err := rs.rooms.DeleteRoom(ctx, roomID); err != nil {
			rs.logger.Error("failed to delete room", zap.String("room_id", roomID), zap.Error(err))
		}
		return
	}
	if err := rs.rooms.Persist(ctx, room); err != nil {
		rs.logger.Error("failed to persist room", zap.String("room_id", roomID), zap.Error(err))
	}
	rs.broadcast(room, ws.MessageTypePlayerDisconnected, ws.PlayerPayload{
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		Color:       player.Color.String(),
	})
}

func (rs *RoomService) JoinMatchmaking(playerID, displayName, variantID string) error {
	return rs.rooms.JoinMatchmaking(model.NewPlayer(playerID, displayName), variantID)
}

func (rs *RoomService) RegisterMatchmakingChannel(playerID string, ch chan ws.Message) {
	rs.rooms.RegisterMatchmakingChannel(playerID, ch)
}

func (rs *RoomService) UnregisterMatchmakingChannel(playerID string, ch chan ws.Message) {
	rs.rooms.UnregisterMatchmakingChannel(playerID, ch)
}

func (rs *RoomService) broadcast(room *model.Room, t ws.MessageType, payload interface{}) {
	rs.broadcastExcept(room, t, payload, "")
}

func (rs *RoomService) broadcastExcept(room *model.Room, t ws.MessageType, payload interface{}, except string) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		rs.logger.Error("failed to encode message", zap.String("type", string(t)), zap.Error(err))
		return
	}
	for _, id := range room.BroadcastExcept(msg, except) {
		rs.logger.Warn("dropped connection after failed write",
			zap.String("room_id", room.ID),
			zap.String("player_id", id))
	}
}
