package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbeisheim/chessboard-backend/internal/middleware"
	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/benbeisheim/chessboard-backend/internal/service"
	"github.com/benbeisheim/chessboard-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	gs := service.NewGameService(service.NewGameManager(model.Rules{}, nil))
	gc := NewGameController(gs, 240)

	app := fiber.New()
	app.Get("/api/legal", CheckMove)
	board := app.Group("/api/board", middleware.EnsureClientID())
	board.Get("/", gc.ListGames)
	board.Post("/create", gc.CreateGame)
	board.Get("/:gameId", gc.GetGameState)
	board.Delete("/:gameId", gc.DeleteGame)
	board.Post("/:gameId/click", gc.Click)
	board.Post("/:gameId/move", gc.Move)
	board.Post("/:gameId/reset", gc.Reset)
	board.Get("/:gameId/render.svg", gc.RenderSVG)
	board.Get("/:gameId/render.png", gc.RenderPNG)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-Client-ID", "tester")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	testutil.AssertNoError(t, err, "read body")
	return resp.StatusCode, data
}

func createGame(t *testing.T, app *fiber.App) string {
	t.Helper()
	code, body := do(t, app, http.MethodPost, "/api/board/create", "")
	if code != http.StatusOK {
		t.Fatalf("create: status %d: %s", code, body)
	}
	var created struct {
		GameID string `json:"game_id"`
	}
	testutil.AssertNoError(t, json.Unmarshal(body, &created), "decode create")
	return created.GameID
}

func TestClientIDRequired(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/board/create", nil)
	resp, err := app.Test(req, -1)
	testutil.AssertNoError(t, err, "request")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestMoveEndpoint(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app)

	code, body := do(t, app, http.MethodPost, "/api/board/"+id+"/move",
		`{"from":{"row":6,"col":4},"to":{"row":3,"col":4}}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("illegal move status = %d: %s", code, body)
	}
	var rejected struct {
		Verdict model.Verdict `json:"verdict"`
	}
	testutil.AssertNoError(t, json.Unmarshal(body, &rejected), "decode rejection")
	if rejected.Verdict.Legal || rejected.Verdict.Reason != model.ReasonIllegal {
		t.Errorf("verdict = %+v", rejected.Verdict)
	}

	code, body = do(t, app, http.MethodPost, "/api/board/"+id+"/move",
		`{"from":{"row":6,"col":4},"to":{"row":4,"col":4}}`)
	if code != http.StatusOK {
		t.Fatalf("legal move status = %d: %s", code, body)
	}
	var moved struct {
		Verdict model.Verdict   `json:"verdict"`
		State   model.GameState `json:"state"`
	}
	testutil.AssertNoError(t, json.Unmarshal(body, &moved), "decode move")
	if !moved.Verdict.Legal {
		t.Errorf("verdict = %+v", moved.Verdict)
	}
	if got := moved.State.Board.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR" {
		t.Errorf("board = %s", got)
	}

	code, _ = do(t, app, http.MethodPost, "/api/board/"+id+"/move",
		`{"from":{"row":6,"col":4},"to":{"row":9,"col":4}}`)
	if code != http.StatusBadRequest {
		t.Errorf("out of bounds status = %d, want 400", code)
	}
	code, _ = do(t, app, http.MethodPost, "/api/board/"+id+"/move", `not json`)
	if code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", code)
	}
}

func TestClickEndpoint(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app)

	type clickResponse struct {
		Outcome model.Outcome   `json:"outcome"`
		State   model.GameState `json:"state"`
	}
	click := func(row, col int) clickResponse {
		t.Helper()
		body := fmt.Sprintf(`{"row":%d,"col":%d}`, row, col)
		code, data := do(t, app, http.MethodPost, "/api/board/"+id+"/click", body)
		if code != http.StatusOK {
			t.Fatalf("click status = %d: %s", code, data)
		}
		var resp clickResponse
		testutil.AssertNoError(t, json.Unmarshal(data, &resp), "decode click")
		return resp
	}

	resp := click(7, 6)
	if resp.Outcome.Kind != model.OutcomeSelected {
		t.Fatalf("first click = %s", resp.Outcome.Kind)
	}
	testutil.AssertEqual(t, resp.State.Destinations, []model.Position{{Row: 5, Col: 5}, {Row: 5, Col: 7}, {Row: 6, Col: 4}})

	resp = click(5, 5)
	if resp.Outcome.Kind != model.OutcomeMoved {
		t.Fatalf("second click = %s", resp.Outcome.Kind)
	}
	if resp.State.Selection != nil {
		t.Errorf("selection kept: %+v", resp.State.Selection)
	}

	resp = click(4, 4)
	if resp.Outcome.Kind != model.OutcomeIgnored {
		t.Errorf("click on empty square = %s", resp.Outcome.Kind)
	}
}

func TestGameNotFound(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/api/board/nope", "/api/board/nope/render.svg"} {
		if code, _ := do(t, app, http.MethodGet, path, ""); code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, code)
		}
	}
	if code, _ := do(t, app, http.MethodPost, "/api/board/nope/reset", ""); code != http.StatusNotFound {
		t.Errorf("reset = %d, want 404", code)
	}
}

func TestRenderEndpoints(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app)

	code, body := do(t, app, http.MethodGet, "/api/board/"+id+"/render.svg", "")
	if code != http.StatusOK || !strings.HasPrefix(string(body), "<svg") {
		t.Errorf("svg: %d %.40q", code, body)
	}

	code, body = do(t, app, http.MethodGet, "/api/board/"+id+"/render.png?size=128", "")
	if code != http.StatusOK || !strings.HasPrefix(string(body), "\x89PNG") {
		t.Errorf("png: status %d", code)
	}

	code, _ = do(t, app, http.MethodGet, "/api/board/"+id+"/render.png?size=9999", "")
	if code != http.StatusBadRequest {
		t.Errorf("oversized png = %d, want 400", code)
	}
}

func TestResetAndDelete(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app)
	do(t, app, http.MethodPost, "/api/board/"+id+"/move", `{"from":{"row":6,"col":0},"to":{"row":4,"col":0}}`)

	if code, _ := do(t, app, http.MethodPost, "/api/board/"+id+"/reset", ""); code != http.StatusOK {
		t.Fatalf("reset = %d", code)
	}
	_, body := do(t, app, http.MethodGet, "/api/board/"+id, "")
	var state model.GameState
	testutil.AssertNoError(t, json.Unmarshal(body, &state), "decode state")
	if state.Board.FEN() != model.NewBoard().FEN() {
		t.Errorf("board after reset = %s", state.Board.FEN())
	}

	if code, _ := do(t, app, http.MethodDelete, "/api/board/"+id, ""); code != http.StatusNoContent {
		t.Errorf("delete = %d", code)
	}
	_, body = do(t, app, http.MethodGet, "/api/board/", "")
	var list struct {
		Games []string `json:"games"`
	}
	testutil.AssertNoError(t, json.Unmarshal(body, &list), "decode list")
	if len(list.Games) != 0 {
		t.Errorf("games = %v", list.Games)
	}
}

func TestCheckMove(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		query string
		code  int
		legal bool
	}{
		{"piece=pawn&color=white&fromRow=6&fromCol=4&toRow=4&toCol=4&first=true", http.StatusOK, true},
		{"piece=pawn&color=white&fromRow=6&fromCol=4&toRow=3&toCol=4&first=true", http.StatusOK, false},
		{"piece=pawn&color=black&fromRow=1&fromCol=3&toRow=2&toCol=4&capture=true", http.StatusOK, true},
		{"piece=pawn&color=black&fromRow=1&fromCol=3&toRow=2&toCol=4", http.StatusOK, false},
		{"piece=knight&color=white&fromRow=7&fromCol=1&toRow=5&toCol=2", http.StatusOK, true},
		{"piece=dragon&color=white&fromRow=7&fromCol=1&toRow=5&toCol=2", http.StatusOK, false},
		{"piece=rook&color=green&fromRow=7&fromCol=0&toRow=7&toCol=7", http.StatusBadRequest, false},
		{"piece=rook&color=white&fromRow=7&fromCol=0", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		code, body := do(t, app, http.MethodGet, "/api/legal?"+tt.query, "")
		if code != tt.code {
			t.Errorf("%s: status %d, want %d", tt.query, code, tt.code)
			continue
		}
		if code != http.StatusOK {
			continue
		}
		var resp struct {
			Legal bool `json:"legal"`
		}
		testutil.AssertNoError(t, json.Unmarshal(body, &resp), "decode")
		if resp.Legal != tt.legal {
			t.Errorf("%s: legal = %t, want %t", tt.query, resp.Legal, tt.legal)
		}
	}
}
