package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/benbeisheim/chessboard-backend/internal/storage"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// SnapshotStore persists board sessions between restarts.
type SnapshotStore interface {
	Save(snap storage.Snapshot) error
	Load(id string) (storage.Snapshot, error)
	Delete(id string) error
	List() ([]storage.Snapshot, error)
}

type GameManager struct {
	games  map[string]*model.Game
	rules  model.Rules
	store  SnapshotStore
	mu     sync.RWMutex
	saveMu sync.Mutex // orders snapshot reads with their writes
}

// NewGameManager creates a manager for boards played under rules. store may be
// nil, in which case nothing outlives the process.
func NewGameManager(rules model.Rules, store SnapshotStore) *GameManager {
	return &GameManager{
		games: make(map[string]*model.Game),
		rules: rules,
		store: store,
	}
}

// Restore loads every stored session into memory and returns how many were
// loaded. Snapshots that no longer parse are skipped. A session keeps the
// rule mode it was saved with.
func (gm *GameManager) Restore() (int, error) {
	if gm.store == nil {
		return 0, nil
	}
	snaps, err := gm.store.List()
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	n := 0
	for _, snap := range snaps {
		board, err := model.BoardFromFEN(snap.Placement)
		if err != nil {
			log.Warnf("skipping stored game %s: %v", snap.ID, err)
			continue
		}
		rules := model.Rules{Strict: snap.Strict}
		if rules != gm.rules {
			log.Infof("stored game %s keeps strict=%t (configured strict=%t)", snap.ID, snap.Strict, gm.rules.Strict)
		}
		gm.games[snap.ID] = model.RestoreGame(snap.ID, board, rules, snap.UpdatedAt)
		n++
	}
	return n, nil
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return fmt.Errorf("%s: %w", gameID, ErrGameExists)
	}
	game := model.NewGame(gameID, gm.rules)
	gm.games[gameID] = game
	gm.mu.Unlock()

	return gm.Persist(game)
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	return game, nil
}

func (gm *GameManager) DeleteGame(gameID string) error {
	gm.mu.Lock()
	_, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	if gm.store != nil {
		if err := gm.store.Delete(gameID); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", gameID, err)
		}
	}
	return nil
}

func (gm *GameManager) GameIDs() []string {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	ids := make([]string, 0, len(gm.games))
	for id := range gm.games {
		ids = append(ids, id)
	}
	return ids
}

// Persist writes the current board of game to the store. Saves are
// serialised and each reads the game after the previous one finished, so the
// stored board is never older than one already written.
func (gm *GameManager) Persist(game *model.Game) error {
	if gm.store == nil {
		return nil
	}
	gm.saveMu.Lock()
	defer gm.saveMu.Unlock()

	current := game.Snapshot()
	snap := storage.Snapshot{
		ID:        game.ID,
		Placement: current.Placement,
		Strict:    current.Strict,
		UpdatedAt: current.UpdatedAt,
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	if err := gm.store.Save(snap); err != nil {
		return fmt.Errorf("save snapshot %s: %w", game.ID, err)
	}
	return nil
}
