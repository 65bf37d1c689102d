package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/chessboard-backend/internal/middleware"
	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/benbeisheim/chessboard-backend/internal/service"
	"github.com/benbeisheim/chessboard-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	clientID, _ := c.Locals(middleware.ClientIDKey).(string)

	conn := &lockedConn{Conn: c}
	if err := wsc.gameService.RegisterConnection(gameID, clientID, conn); err != nil {
		if errors.Is(err, model.ErrDuplicateConnection) {
			// already closed by the game
			log.Debugf("rejected connection: %v", err)
			return
		}
		log.Warnf("failed to register connection: %v", err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, clientID, conn)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("read error: %v", err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("parse error: %v", err)
			wsc.send(conn, ws.MessageTypeError, ws.ErrorPayload{Error: "malformed message"})
			continue
		}

		reply, err := wsc.handleMessage(gameID, clientID, msg)
		if err != nil {
			log.Debugf("handle error: %v", err)
			wsc.send(conn, ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
			continue
		}
		if reply != nil {
			wsc.send(conn, reply.Type, reply.Payload)
		}
	}
}

type wsReply struct {
	Type    ws.MessageType
	Payload interface{}
}

// handleMessage dispatches one inbound message and returns what to send back
// to the sender. Board state updates reach every client through the game's
// broadcast.
func (wsc *WebSocketController) handleMessage(gameID, clientID string, msg ws.Message) (*wsReply, error) {
	switch msg.Type {
	case ws.MessageTypeClick:
		var click model.ClickRequest
		if err := json.Unmarshal(msg.Payload, &click); err != nil {
			return nil, err
		}
		outcome, err := wsc.gameService.HandleClick(gameID, clientID, click.Position())
		if err != nil {
			return nil, err
		}
		return &wsReply{Type: ws.MessageTypeOutcome, Payload: outcome}, nil

	case ws.MessageTypeMove:
		var move model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, err
		}
		verdict, err := wsc.gameService.HandleMove(gameID, move)
		if err != nil && !errors.Is(err, model.ErrIllegalMove) {
			return nil, err
		}
		return &wsReply{Type: ws.MessageTypeVerdict, Payload: verdict}, nil

	case ws.MessageTypeReset:
		return nil, wsc.gameService.ResetGame(gameID)

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// lockedConn serialises writes: broadcasts triggered by other clients share the
// connection with replies written by this handler.
type lockedConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (lc *lockedConn) WriteJSON(v interface{}) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.Conn.WriteJSON(v)
}

func (lc *lockedConn) WriteMessage(messageType int, data []byte) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.Conn.WriteMessage(messageType, data)
}

func (wsc *WebSocketController) send(c *lockedConn, t ws.MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal %s payload: %v", t, err)
		return
	}
	if err := c.WriteJSON(ws.Message{Type: t, Payload: json.RawMessage(data)}); err != nil {
		log.Debugf("write %s: %v", t, err)
	}
}
