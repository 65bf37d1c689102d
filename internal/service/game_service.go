package service

import (
	"fmt"

	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.Infof("created game %s", gameID)
	return gameID, nil
}

func (gs *GameService) GetGameState(gameID, clientID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(clientID), nil
}

func (gs *GameService) GetBoard(gameID string) (*model.Board, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.Board(), nil
}

// HandleClick threads a client's square click through its pending selection.
func (gs *GameService) HandleClick(gameID, clientID string, pos model.Position) (model.Outcome, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.Outcome{}, err
	}
	outcome, err := game.Click(clientID, pos)
	if err != nil {
		return outcome, err
	}
	if outcome.Kind == model.OutcomeMoved {
		gs.persist(game)
	}
	return outcome, nil
}

// HandleMove applies a direct move request. Illegal moves come back as
// model.ErrIllegalMove together with the verdict.
func (gs *GameService) HandleMove(gameID string, move model.MoveRequest) (model.Verdict, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.Verdict{}, err
	}
	v, err := game.MakeMove(move.From, move.To)
	if err != nil {
		return v, err
	}
	gs.persist(game)
	return v, nil
}

func (gs *GameService) ResetGame(gameID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	game.Reset()
	gs.persist(game)
	return nil
}

func (gs *GameService) DeleteGame(gameID string) error {
	return gs.gameManager.DeleteGame(gameID)
}

func (gs *GameService) ListGames() []string {
	return gs.gameManager.GameIDs()
}

func (gs *GameService) RegisterConnection(gameID, clientID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(clientID, conn)
}

func (gs *GameService) UnregisterConnection(gameID, clientID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(clientID, conn)
}

// persist failures are logged; the in-memory board stays authoritative.
func (gs *GameService) persist(game *model.Game) {
	if err := gs.gameManager.Persist(game); err != nil {
		log.Errorf("persist game %s: %v", game.ID, err)
	}
}
