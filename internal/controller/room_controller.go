package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/engine"
	"github.com/benbeisheim/variantchess-backend/internal/middleware"
	"github.com/benbeisheim/variantchess-backend/internal/model"
	"github.com/benbeisheim/variantchess-backend/internal/service"
)

type RoomController struct {
	roomService *service.RoomService
	logger      *zap.Logger
}

func NewRoomController(roomService *service.RoomService, logger *zap.Logger) *RoomController {
	return &RoomController{roomService: roomService, logger: logger}
}

type variantRequest struct {
	Variant string `json:"variant"`
}

// roomParam copies the route parameter out of fasthttp's reused request
// buffer.
func roomParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("roomId"))
}

func parseVariant(c *fiber.Ctx) (string, error) {
	var req variantRequest
	if len(c.Body()) == 0 {
		return "", nil
	}
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	return req.Variant, nil
}

func (rc *RoomController) ListVariants(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"variants": rc.roomService.Variants(),
	})
}

func (rc *RoomController) CreateRoom(c *fiber.Ctx) error {
	playerID, name := middleware.PlayerFromCtx(c)
	variant, err := parseVariant(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	state, player, err := rc.roomService.CreateRoom(c.UserContext(), playerID, name, variant)
	if err != nil {
		return rc.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Room created",
		"roomId":  state.ID,
		"color":   player.Color,
		"room":    state,
	})
}

func (rc *RoomController) JoinRoom(c *fiber.Ctx) error {
	roomID := roomParam(c)
	playerID, name := middleware.PlayerFromCtx(c)

	player, err := rc.roomService.JoinRoom(c.UserContext(), roomID, playerID, name)
	if err != nil {
		return rc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Room joined",
		"color":   player.Color,
	})
}

func (rc *RoomController) GetRoom(c *fiber.Ctx) error {
	state, err := rc.roomService.GetRoom(roomParam(c))
	if err != nil {
		return rc.fail(c, err)
	}
	return c.JSON(state)
}

func (rc *RoomController) LegalMoves(c *fiber.Ctx) error {
	from := c.Query("from")
	if from == "" {
		moves, err := rc.roomService.AllMoves(roomParam(c))
		if err != nil {
			return rc.fail(c, err)
		}
		return c.JSON(fiber.Map{
			"moves": moves,
		})
	}
	moves, err := rc.roomService.LegalMoves(roomParam(c), from)
	if err != nil {
		return rc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"from":  from,
		"moves": moves,
	})
}

func (rc *RoomController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID, name := middleware.PlayerFromCtx(c)
	variant, err := parseVariant(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := rc.roomService.JoinMatchmaking(playerID, name, variant); err != nil {
		return rc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (rc *RoomController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		rc.logger.Error("request failed", zap.String("path", utils.CopyString(c.Path())), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrRoomFull),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrAlreadyMoved),
		errors.Is(err, model.ErrWaitingForOpponent),
		errors.Is(err, engine.ErrGameOver):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrNotInRoom),
		errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, engine.ErrUnknownVariant),
		errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrEmptySquare),
		errors.Is(err, engine.ErrNotYourPiece),
		errors.Is(err, engine.ErrIllegalMove),
		errors.Is(err, engine.ErrInvalidPromotion):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
