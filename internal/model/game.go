package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessboard-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections watching a specific game
type GameConnections struct {
	connections map[string]Conn // clientID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one board session. All moves on it are serialised by mu.
type Game struct {
	ID          string
	mu          sync.Mutex
	rules       Rules
	board       *Board
	selections  map[string]*Selection // clientID -> pending selection
	lastVerdict *Verdict
	updatedAt   time.Time
	connections *GameConnections
}

type GameState struct {
	ID           string     `json:"id"`
	Board        *Board     `json:"board"`
	Pieces       int        `json:"pieces"`
	Selection    *Selection `json:"selection"`
	Destinations []Position `json:"destinations"`
	LastVerdict  *Verdict   `json:"lastVerdict"`
	Strict       bool       `json:"strict"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func NewGame(id string, rules Rules) *Game {
	return RestoreGame(id, NewBoard(), rules, time.Now())
}

// RestoreGame wraps an existing board, for sessions loaded from storage.
func RestoreGame(id string, board *Board, rules Rules, updatedAt time.Time) *Game {
	return &Game{
		ID:          id,
		rules:       rules,
		board:       board,
		selections:  make(map[string]*Selection),
		updatedAt:   updatedAt,
		connections: NewGameConnections(),
	}
}

// Board returns a copy of the current board.
func (g *Game) Board() *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) UpdatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updatedAt
}

// Snapshot is a consistent copy of what a game persists.
type Snapshot struct {
	Placement string
	Strict    bool
	UpdatedAt time.Time
}

// Snapshot reads placement, rules and timestamp under one lock.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		Placement: g.board.FEN(),
		Strict:    g.rules.Strict,
		UpdatedAt: g.updatedAt,
	}
}

func (g *Game) GetState(clientID string) GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateFor(clientID)
}

func (g *Game) stateFor(clientID string) GameState {
	state := GameState{
		ID:           g.ID,
		Board:        g.board.Clone(),
		Pieces:       g.board.Count(),
		Destinations: []Position{},
		Strict:       g.rules.Strict,
		UpdatedAt:    g.updatedAt,
	}
	if sel, ok := g.selections[clientID]; ok && sel != nil {
		cp := *sel
		state.Selection = &cp
		if dests := g.rules.Destinations(g.board, sel.From); dests != nil {
			state.Destinations = dests
		}
	}
	if g.lastVerdict != nil {
		cp := *g.lastVerdict
		state.LastVerdict = &cp
	}
	return state
}

// Click feeds a square click from one client through its pending selection.
func (g *Game) Click(clientID string, pos Position) (Outcome, error) {
	if !pos.Valid() {
		return Outcome{}, fmt.Errorf("click %s: %w", pos, ErrOutOfBounds)
	}

	g.mu.Lock()
	next, outcome := g.rules.Click(g.board, g.selections[clientID], pos)
	if next == nil {
		delete(g.selections, clientID)
	} else {
		g.selections[clientID] = next
	}
	switch outcome.Kind {
	case OutcomeSelected:
		log.Debugf("game %s: %s selected %s at %s", g.ID, clientID, next.Piece, pos)
	case OutcomeMoved:
		g.afterMove(*outcome.Verdict)
	case OutcomeRejected:
		g.lastVerdict = outcome.Verdict
		log.Infof("game %s: illegal move %s to %s (%s)", g.ID, outcome.Verdict.From, pos, outcome.Verdict.Reason)
	}
	g.mu.Unlock()

	if outcome.Kind == OutcomeMoved {
		g.broadcastState()
	}
	return outcome, nil
}

// MakeMove attempts a move without going through a selection. An illegal move
// returns ErrIllegalMove along with the verdict and changes nothing.
func (g *Game) MakeMove(from, to Position) (Verdict, error) {
	if !from.Valid() || !to.Valid() {
		return Verdict{From: from, To: to, Reason: ReasonOutOfBounds}, fmt.Errorf("move %s to %s: %w", from, to, ErrOutOfBounds)
	}

	g.mu.Lock()
	v, err := g.rules.Apply(g.board, from, to)
	if err != nil {
		g.lastVerdict = &v
		g.mu.Unlock()
		if errors.Is(err, ErrIllegalMove) {
			log.Infof("game %s: illegal move %s to %s (%s)", g.ID, from, to, v.Reason)
		}
		return v, err
	}
	g.afterMove(v)
	g.mu.Unlock()

	g.broadcastState()
	return v, nil
}

// afterMove records a relocation. Callers hold g.mu.
func (g *Game) afterMove(v Verdict) {
	g.lastVerdict = &v
	g.updatedAt = time.Now()
	// selections made by other clients may point at a square that just changed
	for clientID, sel := range g.selections {
		if sel.From == v.From || sel.From == v.To {
			delete(g.selections, clientID)
		}
	}
	log.Infof("game %s: %s moved %s to %s", g.ID, v.Piece, v.From, v.To)
}

// Reset puts the pieces back in the starting layout.
func (g *Game) Reset() {
	g.mu.Lock()
	g.board = NewBoard()
	g.selections = make(map[string]*Selection)
	g.lastVerdict = nil
	g.updatedAt = time.Now()
	g.mu.Unlock()

	g.broadcastState()
}

// RegisterConnection starts pushing board state to conn. A client that is
// already connected keeps its first connection; the new one is closed and
// ErrDuplicateConnection is returned.
func (g *Game) RegisterConnection(clientID string, conn Conn) error {
	connID := fmt.Sprintf("%p", conn)

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[clientID]; exists {
		g.connections.mu.Unlock()
		if err := conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		); err != nil {
			log.Debugf("game %s: close message to duplicate %s: %v", g.ID, connID, err)
		}
		if err := conn.Close(); err != nil {
			log.Debugf("game %s: close duplicate %s: %v", g.ID, connID, err)
		}
		return fmt.Errorf("client %s on game %s: %w", clientID, g.ID, ErrDuplicateConnection)
	}
	g.connections.connections[clientID] = conn
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection %s for client %s", g.ID, connID, clientID)

	if err := g.sendState(clientID, conn); err != nil {
		log.Debugf("game %s: initial state to %s: %v", g.ID, clientID, err)
	}
	return nil
}

// UnregisterConnection forgets conn. It does nothing when clientID is now
// served by a different connection.
func (g *Game) UnregisterConnection(clientID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[clientID]; exists && current == conn {
		delete(g.connections.connections, clientID)
		log.Debugf("game %s: unregistered connection for client %s", g.ID, clientID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

// broadcastState pushes each connected client its view of the game.
func (g *Game) broadcastState() {
	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for clientID, conn := range g.connections.connections {
		active[clientID] = conn
	}
	g.connections.mu.RUnlock()

	for clientID, conn := range active {
		if err := g.sendState(clientID, conn); err != nil {
			g.connections.mu.Lock()
			delete(g.connections.connections, clientID)
			g.connections.mu.Unlock()
		}
	}
}

func (g *Game) sendState(clientID string, conn Conn) error {
	payload, err := json.Marshal(g.GetState(clientID))
	if err != nil {
		log.Errorf("game %s: marshal state: %v", g.ID, err)
		return err
	}
	if err := conn.WriteJSON(ws.Message{
		Type:    ws.MessageTypeBoardState,
		Payload: json.RawMessage(payload),
	}); err != nil {
		log.Warnf("game %s: failed to send state to client %s: %v", g.ID, clientID, err)
		return err
	}
	return nil
}
