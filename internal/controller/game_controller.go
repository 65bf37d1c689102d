package controller

import (
	"errors"

	"github.com/benbeisheim/chessboard-backend/internal/middleware"
	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/benbeisheim/chessboard-backend/internal/render"
	"github.com/benbeisheim/chessboard-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
	renderSize  int
}

func NewGameController(gameService *service.GameService, renderSize int) *GameController {
	return &GameController{gameService: gameService, renderSize: renderSize}
}

// respondError maps service and model errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrOutOfBounds), errors.Is(err, model.ErrEmptySquare):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"games": gc.gameService.ListGames()})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetGameState(c.Params("gameId"), middleware.ClientID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Click(c *fiber.Ctx) error {
	var req model.ClickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid click body"})
	}

	gameID := c.Params("gameId")
	clientID := middleware.ClientID(c)
	outcome, err := gc.gameService.HandleClick(gameID, clientID, req.Position())
	if err != nil {
		return respondError(c, err)
	}
	state, err := gc.gameService.GetGameState(gameID, clientID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"outcome": outcome,
		"state":   state,
	})
}

func (gc *GameController) Move(c *fiber.Ctx) error {
	var req model.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid move body"})
	}

	gameID := c.Params("gameId")
	verdict, err := gc.gameService.HandleMove(gameID, req)
	if errors.Is(err, model.ErrIllegalMove) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   err.Error(),
			"verdict": verdict,
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	state, err := gc.gameService.GetGameState(gameID, middleware.ClientID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"verdict": verdict,
		"state":   state,
	})
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	if err := gc.gameService.ResetGame(c.Params("gameId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Game reset"})
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) renderOptions(c *fiber.Ctx) (*model.Board, render.Options, error) {
	state, err := gc.gameService.GetGameState(c.Params("gameId"), middleware.ClientID(c))
	if err != nil {
		return nil, render.Options{}, err
	}
	opts := render.Options{Highlights: state.Destinations, Size: gc.renderSize}
	if state.Selection != nil {
		from := state.Selection.From
		opts.Selected = &from
	}
	return state.Board, opts, nil
}

func (gc *GameController) RenderSVG(c *fiber.Ctx) error {
	board, opts, err := gc.renderOptions(c)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(render.SVG(board, opts))
}

func (gc *GameController) RenderPNG(c *fiber.Ctx) error {
	board, opts, err := gc.renderOptions(c)
	if err != nil {
		return respondError(c, err)
	}
	opts.Size = c.QueryInt("size", opts.Size)
	if opts.Size < render.MinPNGSize || opts.Size > render.MaxPNGSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "size out of range"})
	}
	data, err := render.PNG(board, opts)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}
