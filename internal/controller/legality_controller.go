package controller

import (
	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/gofiber/fiber/v2"
)

// CheckMove answers a bare legality question for a piece kind and coordinate
// pair without touching any board. The caller supplies the capture and
// first-move context.
func CheckMove(c *fiber.Ctx) error {
	piece := model.Piece{
		Type:  model.PieceType(c.Query("piece")),
		Color: model.Color(c.Query("color")),
	}
	if !piece.Color.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "color must be white or black"})
	}
	from := model.Position{Row: c.QueryInt("fromRow", -1), Col: c.QueryInt("fromCol", -1)}
	to := model.Position{Row: c.QueryInt("toRow", -1), Col: c.QueryInt("toCol", -1)}
	if !from.Valid() || !to.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": model.ErrOutOfBounds.Error()})
	}

	// unknown piece kinds are answered, not rejected: they are never legal
	legal := model.IsLegalMove(piece, from, to, c.QueryBool("capture"), c.QueryBool("first"))
	return c.JSON(fiber.Map{
		"legal": legal,
		"piece": piece,
		"from":  from,
		"to":    to,
	})
}
