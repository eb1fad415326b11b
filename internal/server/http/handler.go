package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessarbiter/internal/core"
	"chessarbiter/internal/server/processor"
	"chessarbiter/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: service.WaitTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	validateToken := svc.ValidateToken

	auth := api.Group("/auth")
	auth.Post("/register", perMinuteLimiter(5, "registrations"), h.RegisterHandler)
	auth.Post("/login", perMinuteLimiter(10, "login attempts"), h.LoginHandler)
	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)
	api.Use(OptionalAuth(validateToken))

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/select", h.SelectSquare)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Post("/games/:gameId/promotion", h.Promote)
	api.Post("/games/:gameId/cancel", h.Cancel)
	api.Post("/games/:gameId/reset", h.Reset)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Get("/games/:gameId/legal/:square", h.LegalMoves)
	api.Get("/games/:gameId/pgn", h.ExportPGN)
	api.Get("/archive", h.ListArchive)
	api.Get("/archive/:gameId", h.GetArchive)

	return app
}

func perMinuteLimiter(max int, what string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d %s per minute allowed", max, what),
			})
		},
	})
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound, core.ErrNotFound:
		return fiber.StatusNotFound
	case core.ErrUnauthorized:
		return fiber.StatusUnauthorized
	case core.ErrForbidden:
		return fiber.StatusForbidden
	case core.ErrUserExists:
		return fiber.StatusConflict
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// respond writes a processor response, using status on success
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, status int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(status).JSON(resp.Data)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

func validationBypass(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: "validation bypass detected",
		Code:  core.ErrInternalError,
	})
}

// gameRequest extracts the game ID and caller shared by every game route
func gameRequest(c *fiber.Ctx) (gameID, userID string, ok bool) {
	gameID = c.Params("gameId")
	userID, _ = c.Locals("userID").(string)
	return gameID, userID, isValidUUID(gameID)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"games":   h.svc.GameCount(),
		"storage": h.svc.GetStorageHealth(),
		"archive": h.svc.GetArchiveHealth(),
	})
}

// CreateGame starts a game, owned by the caller when a token is supplied
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateGameRequest](c)
	if !ok {
		return validationBypass(c)
	}
	userID, _ := c.Locals("userID").(string)

	resp := h.proc.Execute(processor.NewCreateGameCommand(userID, req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetGame returns the game state. With wait=true and the caller's moveCount it
// blocks until the move count changes or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID, _, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
	if c.Query("wait", "false") != "true" || !resp.Success {
		return respond(c, resp, fiber.StatusOK)
	}

	moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
	if err != nil {
		moveCount = -1
	}

	// Already stale, answer immediately
	current := resp.Data.(core.GameResponse)
	if moveCount != len(current.Moves) {
		return c.JSON(current)
	}

	ctx := c.Context()
	notify := h.svc.RegisterWait(ctx, gameID, moveCount)

	select {
	case <-notify:
		// Game might have been deleted meanwhile
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
	case <-ctx.Done():
		return nil
	}
}

func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	return respond(c, h.proc.Execute(processor.NewDeleteGameCommand(userID, gameID)), fiber.StatusNoContent)
}

func (h *HTTPHandler) SelectSquare(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.SelectRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return respond(c, h.proc.Execute(processor.NewSelectSquareCommand(userID, gameID, req)), fiber.StatusOK)
}

// MakeMove submits a UCI move, or a destination for the selected piece
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.MoveRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return respond(c, h.proc.Execute(processor.NewMakeMoveCommand(userID, gameID, req)), fiber.StatusOK)
}

func (h *HTTPHandler) Promote(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.PromotionRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return respond(c, h.proc.Execute(processor.NewPromoteCommand(userID, gameID, req)), fiber.StatusOK)
}

func (h *HTTPHandler) Cancel(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	return respond(c, h.proc.Execute(processor.NewCancelCommand(userID, gameID)), fiber.StatusOK)
}

func (h *HTTPHandler) Reset(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	return respond(c, h.proc.Execute(processor.NewResetCommand(userID, gameID)), fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	gameID, userID, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.UndoRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return respond(c, h.proc.Execute(processor.NewUndoMoveCommand(userID, gameID, req)), fiber.StatusOK)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID, _, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(gameID)), fiber.StatusOK)
}

func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	gameID, _, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	return respond(c, h.proc.Execute(processor.NewLegalMovesCommand(gameID, c.Params("square"))), fiber.StatusOK)
}

// ExportPGN returns the game so far as PGN text
func (h *HTTPHandler) ExportPGN(c *fiber.Ctx) error {
	gameID, _, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(processor.NewExportPGNCommand(gameID))
	if resp.Success && strings.Contains(c.Get(fiber.HeaderAccept), "application/x-chess-pgn") {
		c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
		return c.SendString(resp.Data.(core.PGNResponse).PGN)
	}
	return respond(c, resp, fiber.StatusOK)
}

func (h *HTTPHandler) GetArchive(c *fiber.Ctx) error {
	gameID, _, ok := gameRequest(c)
	if !ok {
		return invalidGameID(c)
	}
	return respond(c, h.proc.Execute(processor.NewGetArchiveCommand(gameID)), fiber.StatusOK)
}

// ListArchive returns every archived game without its PGN body
func (h *HTTPHandler) ListArchive(c *fiber.Ctx) error {
	entries, err := h.svc.ListArchived()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: err.Error(),
			Code:  core.ErrNotFound,
		})
	}

	list := make([]core.ArchiveResponse, 0, len(entries))
	for _, e := range entries {
		list = append(list, core.ArchiveResponse{
			GameID:     e.GameID,
			White:      e.White,
			Black:      e.Black,
			Result:     e.Result,
			Moves:      e.Moves,
			ArchivedAt: e.ArchivedAt,
		})
	}
	return c.JSON(list)
}
