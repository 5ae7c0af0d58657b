package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/service"
	"github.com/benbeisheim/variantchess-backend/internal/ws"
)

type WebSocketController struct {
	roomService *service.RoomService
	logger      *zap.Logger
}

func NewWebSocketController(roomService *service.RoomService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		roomService: roomService,
		logger:      logger,
	}
}

// HandleRoomConnection serves one player's socket for a room until the
// client goes away.
func (wsc *WebSocketController) HandleRoomConnection(c *websocket.Conn) {
	roomID := c.Params("roomId")
	playerID, _ := c.Locals("playerID").(string)
	log := wsc.logger.With(zap.String("room_id", roomID), zap.String("player_id", playerID))

	if err := wsc.roomService.RegisterConnection(roomID, playerID, c); err != nil {
		log.Info("rejected room connection", zap.Error(err))
		c.WriteJSON(errorMessage(err))
		c.Close()
		return
	}
	log.Debug("room connection opened")

	ctx := context.Background()
	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug("read loop ended", zap.Error(err))
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(roomID, playerID, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(ctx, roomID, playerID, msg); err != nil {
			wsc.reply(roomID, playerID, err)
		}
	}

	wsc.roomService.Disconnect(ctx, roomID, playerID, c)
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(ctx context.Context, roomID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		return wsc.roomService.HandleMove(ctx, roomID, playerID, move)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// reply sends err to the offending player only.
func (wsc *WebSocketController) reply(roomID, playerID string, err error) {
	if sendErr := wsc.roomService.SendTo(roomID, playerID, errorMessage(err)); sendErr != nil {
		wsc.logger.Debug("failed to send error",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID),
			zap.Error(sendErr))
	}
}

func errorMessage(err error) ws.Message {
	msg, _ := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	return msg
}

// HandleMatchmaking holds the socket open until the player is matched, then
// pushes the matchFound message and closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("playerID").(string)
	ch := make(chan ws.Message, 1)
	wsc.roomService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.roomService.UnregisterMatchmakingChannel(playerID, ch)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case msg, ok := <-ch:
		if ok {
			if err := c.WriteJSON(msg); err != nil {
				wsc.logger.Warn("failed to deliver match", zap.String("player_id", playerID), zap.Error(err))
			}
		}
	case <-gone:
	}
	c.Close()
	// The wrapper goes back to a pool when this handler returns; the reader
	// must be done with it first.
	<-gone
}
