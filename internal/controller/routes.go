package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/middleware"
	"github.com/benbeisheim/variantchess-backend/internal/service"
)

// Routes wires the REST and WebSocket endpoints onto app.
func Routes(app *fiber.App, roomService *service.RoomService, allowedOrigins []string, logger *zap.Logger) {
	rooms := NewRoomController(roomService, logger.Named("rooms"))
	sockets := NewWebSocketController(roomService, logger.Named("ws"))

	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID, X-Player-Name",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: !allowsAny(allowedOrigins),
	}))

	// Set up WebSocket routes
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         allowedOrigins,
	}
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/rooms/:roomId", middleware.WebSocketUpgrade("roomId"), websocket.New(sockets.HandleRoomConnection, wsConfig))
	app.Get("/ws/matchmaking", middleware.WebSocketUpgrade(""), websocket.New(sockets.HandleMatchmaking, wsConfig))

	// Set up REST routes
	app.Get("/api/variants", rooms.ListVariants)
	api := app.Group("/api", middleware.EnsurePlayerID())

	api.Post("/rooms", rooms.CreateRoom)
	api.Post("/rooms/:roomId/join", rooms.JoinRoom)
	api.Get("/rooms/:roomId", rooms.GetRoom)
	api.Get("/rooms/:roomId/legal", rooms.LegalMoves)
	api.Post("/matchmaking/join", rooms.JoinMatchmaking)
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
