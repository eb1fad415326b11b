package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"chessarbiter/internal/core"
	"chessarbiter/internal/server/processor"
	"chessarbiter/internal/server/service"
	"chessarbiter/internal/server/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app *fiber.App
	svc *service.Service
}

func newTestServer(t *testing.T, withStore bool) *testServer {
	t.Helper()

	var store *storage.Store
	if withStore {
		var err error
		store, err = storage.NewStore(filepath.Join(t.TempDir(), "chess.db"), false)
		require.NoError(t, err)
		require.NoError(t, store.InitDB())
	}

	svc := service.New(store, nil, []byte("http-test-secret-http-test-secre"))
	t.Cleanup(func() { svc.Shutdown(time.Second) })

	return &testServer{
		app: NewFiberApp(processor.New(svc), svc, true),
		svc: svc,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) createGame(t *testing.T, req core.CreateGameRequest, token string) core.GameResponse {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/v1/games", req, token)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	return decode[core.GameResponse](t, body)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	status, body := s.do(t, fiber.MethodGet, "/health", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	health := decode[map[string]any](t, body)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "disabled", health["storage"])
	assert.Equal(t, "disabled", health["archive"])
}

func TestGameLifecycle(t *testing.T) {
	s := newTestServer(t, false)
	g := s.createGame(t, core.CreateGameRequest{WhiteName: "Ann"}, "")
	base := "/api/v1/games/" + g.GameID

	status, body := s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "e2e4"}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "b", decode[core.GameResponse](t, body).Turn)

	status, body = s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "e2e4"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrWrongTurn, decode[core.ErrorResponse](t, body).Code)

	status, body = s.do(t, fiber.MethodGet, base, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"e2e4"}, decode[core.GameResponse](t, body).Moves)

	status, body = s.do(t, fiber.MethodPost, base+"/undo", nil, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Empty(t, decode[core.GameResponse](t, body).Moves)

	status, _ = s.do(t, fiber.MethodDelete, base, nil, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = s.do(t, fiber.MethodGet, base, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, core.ErrGameNotFound, decode[core.ErrorResponse](t, body).Code)
}

func TestSelectionAndPromotionRoutes(t *testing.T) {
	s := newTestServer(t, false)
	g := s.createGame(t, core.CreateGameRequest{FEN: "7k/P7/8/8/8/8/8/K7 w - - 0 1"}, "")
	base := "/api/v1/games/" + g.GameID

	status, body := s.do(t, fiber.MethodPost, base+"/select", core.SelectRequest{Square: "a7"}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	sel := decode[core.SelectionResponse](t, body)
	assert.Equal(t, "selected", sel.Result)
	assert.Equal(t, []string{"a8"}, sel.Destinations)

	status, body = s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "a8"}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "promotion", decode[core.GameResponse](t, body).State)

	status, body = s.do(t, fiber.MethodPost, base+"/promotion", core.PromotionRequest{Piece: "x"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidRequest, decode[core.ErrorResponse](t, body).Code)

	status, body = s.do(t, fiber.MethodPost, base+"/promotion", core.PromotionRequest{Piece: "n"}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "N6k/8/8/8/8/8/8/K7 b - - 0 1", decode[core.GameResponse](t, body).FEN)

	status, body = s.do(t, fiber.MethodGet, base+"/legal/h8", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.ElementsMatch(t, []string{"g8", "g7", "h7"}, decode[core.LegalMovesResponse](t, body).Destinations)

	status, body = s.do(t, fiber.MethodPost, base+"/reset", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "7k/P7/8/8/8/8/8/K7 w - - 0 1", decode[core.GameResponse](t, body).FEN)
}

func TestBoardAndPGN(t *testing.T) {
	s := newTestServer(t, false)
	g := s.createGame(t, core.CreateGameRequest{}, "")
	base := "/api/v1/games/" + g.GameID

	status, body := s.do(t, fiber.MethodGet, base+"/board", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[core.BoardResponse](t, body).Squares, 32)

	status, _ = s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "d2d4"}, "")
	require.Equal(t, fiber.StatusOK, status)

	status, body = s.do(t, fiber.MethodGet, base+"/pgn", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, decode[core.PGNResponse](t, body).PGN, "d4")
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, false)
	g := s.createGame(t, core.CreateGameRequest{}, "")
	base := "/api/v1/games/" + g.GameID

	status, body := s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: ""}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, decode[core.ErrorResponse](t, body).Details, "Move is required")

	status, _ = s.do(t, fiber.MethodPost, base+"/undo", core.UndoRequest{Count: 301}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/games/not-a-uuid", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	req, err := http.NewRequest(fiber.MethodPost, base+"/moves", bytes.NewReader([]byte("move=e2e4")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	status, body = s.do(t, fiber.MethodPost, "/api/v1/games", core.CreateGameRequest{FEN: "8/8/8/8/8/8/8/8 w - - 0 1"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidFEN, decode[core.ErrorResponse](t, body).Code)
}

func TestLongPoll(t *testing.T) {
	s := newTestServer(t, false)
	g := s.createGame(t, core.CreateGameRequest{}, "")
	base := "/api/v1/games/" + g.GameID

	// Stale count answers at once
	status, body := s.do(t, fiber.MethodGet, base+"?wait=true&moveCount=5", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[core.GameResponse](t, body).Moves)

	go func() {
		time.Sleep(100 * time.Millisecond)
		req, _ := http.NewRequest(fiber.MethodPost, base+"/moves", bytes.NewReader([]byte(`{"move":"c2c4"}`)))
		req.Header.Set("Content-Type", "application/json")
		if resp, err := s.app.Test(req, -1); err == nil {
			resp.Body.Close()
		}
	}()

	start := time.Now()
	status, body = s.do(t, fiber.MethodGet, base+"?wait=true&moveCount=0", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"c2c4"}, decode[core.GameResponse](t, body).Moves)
	assert.Less(t, time.Since(start), service.WaitTimeout)
}

func TestAuthAndOwnership(t *testing.T) {
	s := newTestServer(t, true)

	status, body := s.do(t, fiber.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Username: "Alice", Email: "alice@example.com", Password: "hunter22",
	}, "")
	require.Equal(t, fiber.StatusCreated, status, string(body))
	reg := decode[AuthResponse](t, body)
	assert.Equal(t, "alice", reg.Username)

	status, _ = s.do(t, fiber.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Username: "alice", Password: "hunter22",
	}, "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = s.do(t, fiber.MethodPost, "/api/v1/auth/login", LoginRequest{Identifier: "alice", Password: "wrong123"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = s.do(t, fiber.MethodPost, "/api/v1/auth/login", LoginRequest{Identifier: "ALICE@example.com", Password: "hunter22"}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	token := decode[AuthResponse](t, body).Token

	status, body = s.do(t, fiber.MethodGet, "/api/v1/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, reg.UserID, decode[UserResponse](t, body).UserID)

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	g := s.createGame(t, core.CreateGameRequest{}, token)
	base := "/api/v1/games/" + g.GameID

	status, body = s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "e2e4"}, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, core.ErrForbidden, decode[core.ErrorResponse](t, body).Code)

	status, _ = s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "e2e4"}, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, fiber.MethodPost, base+"/moves", core.MoveRequest{Move: "e2e4"}, token)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, fiber.MethodGet, base, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAuthWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)

	status, _ := s.do(t, fiber.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Username: "alice", Password: "hunter22",
	}, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestArchiveRoutesDisabled(t *testing.T) {
	s := newTestServer(t, false)

	status, _ := s.do(t, fiber.MethodGet, "/api/v1/archive", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := s.do(t, fiber.MethodGet, "/api/v1/archive/"+s.svc.GenerateGameID(), nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, core.ErrNotFound, decode[core.ErrorResponse](t, body).Code)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, validatePassword("abcdefg1"))
	assert.Error(t, validatePassword("short1"))
	assert.Error(t, validatePassword("lettersonly"))
	assert.Error(t, validatePassword("12345678"))
}
