package processor

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"chessarbiter/internal/board"
	"chessarbiter/internal/core"
	"chessarbiter/internal/engine"
	"chessarbiter/internal/game"
	"chessarbiter/internal/server/archive"
	"chessarbiter/internal/server/service"
	"chessarbiter/internal/server/storage"
)

// FEN shape check; board.ParseFEN does the real validation
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+( \d+){0,2}$`)

// Processor translates commands into service calls and engine errors into API error codes
type Processor struct {
	svc *service.Service
}

// New creates a processor over svc
func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdSelectSquare:
		return p.handleSelectSquare(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdPromote:
		return p.handlePromote(cmd)
	case CmdCancel:
		return p.mutate(cmd, func(g *game.Game) error {
			g.Cancel()
			return nil
		})
	case CmdReset:
		return p.mutate(cmd, func(g *game.Game) error {
			g.Reset()
			return nil
		})
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	case CmdExportPGN:
		return p.handleExportPGN(cmd)
	case CmdGetArchive:
		return p.handleGetArchive(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isFENSafe rejects control characters and anything not shaped like a FEN
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

// isMoveSafe accepts a UCI move or, after a selection, a lone destination square
func (p *Processor) isMoveSafe(move string) bool {
	for _, r := range move {
		if unicode.IsControl(r) {
			return false
		}
	}

	if len(move) != 2 && len(move) != 4 && len(move) != 5 {
		return false
	}

	for i := 0; i+1 < len(move) && i < 4; i += 2 {
		if move[i] < 'a' || move[i] > 'h' || move[i+1] < '1' || move[i+1] > '8' {
			return false
		}
	}

	if len(move) == 5 {
		switch move[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}

	return true
}

// handleCreateGame creates a new game, owned by the caller when authenticated
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	fen := strings.TrimSpace(args.FEN)
	if fen != "" && !p.isFENSafe(fen) {
		return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
	}

	whitePlayer := core.NewPlayer(args.WhiteName, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.BlackName, core.ColorBlack)

	gameID, err := p.svc.CreateGame(fen, whitePlayer, blackPlayer, cmd.UserID)
	if err != nil {
		return p.failure(err)
	}

	return p.view(gameID, func(g *game.Game) (any, error) {
		return p.buildGameResponse(gameID, g), nil
	})
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.view(cmd.GameID, func(g *game.Game) (any, error) {
		return p.buildGameResponse(cmd.GameID, g), nil
	})
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID, cmd.UserID); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true}
}

// handleSelectSquare picks a piece and lists where it can go
func (p *Processor) handleSelectSquare(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.SelectRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	sq, err := board.ParseSquare(strings.ToLower(strings.TrimSpace(args.Square)))
	if err != nil {
		return p.failure(err)
	}

	var resp core.SelectionResponse
	err = p.svc.Do(cmd.GameID, cmd.UserID, func(g *game.Game) error {
		sel, err := g.Select(sq)
		if err != nil {
			return err
		}

		resp = core.SelectionResponse{
			Result: sel.Result.String(),
			Square: sq.String(),
		}
		if sel.Result == engine.SelectPiece {
			resp.Piece = sel.Kind.String()
			resp.Color = sel.Owner.String()
			dests, err := g.LegalMoves(sq)
			if err != nil {
				return err
			}
			resp.Destinations = squareNames(dests)
		}
		gameResp := p.buildGameResponse(cmd.GameID, g)
		resp.Game = &gameResp
		return nil
	})
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{Success: true, Data: resp}
}

// handleMakeMove plays a UCI move, or moves the selected piece to a lone square
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	move := strings.ToLower(strings.TrimSpace(args.Move))
	if !p.isMoveSafe(move) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}

	if len(move) == 2 {
		to, err := board.ParseSquare(move)
		if err != nil {
			return p.failure(err)
		}
		return p.mutate(cmd, func(g *game.Game) error {
			_, err := g.MoveSelected(to)
			return err
		})
	}

	m, err := engine.ParseMove(move)
	if err != nil {
		return p.failure(err)
	}
	return p.mutate(cmd, func(g *game.Game) error {
		_, err := g.Move(m)
		return err
	})
}

func (p *Processor) handlePromote(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.PromotionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	kind, ok := board.ParseKind(args.Piece)
	if !ok {
		return p.errorResponse("unknown piece: "+args.Piece, core.ErrInvalidPromotion)
	}

	return p.mutate(cmd, func(g *game.Game) error {
		_, err := g.Promote(kind)
		return err
	})
}

// handleUndoMove takes back moves; the count defaults to one
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	return p.mutate(cmd, func(g *game.Game) error {
		return g.UndoMoves(args.Count)
	})
}

// handleGetBoard returns the ASCII board and every occupied square
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	return p.view(cmd.GameID, func(g *game.Game) (any, error) {
		placements := g.Occupancy()
		squares := make([]core.SquareInfo, 0, len(placements))
		for _, pl := range placements {
			squares = append(squares, core.SquareInfo{
				Square: pl.Square.String(),
				Piece:  pl.Kind.String(),
				Color:  pl.Color.String(),
			})
		}
		return core.BoardResponse{
			FEN:     g.CurrentFEN(),
			Board:   g.ASCII(),
			Squares: squares,
		}, nil
	})
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	name, _ := cmd.Args.(string)
	sq, err := board.ParseSquare(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return p.failure(err)
	}

	return p.view(cmd.GameID, func(g *game.Game) (any, error) {
		dests, err := g.LegalMoves(sq)
		if err != nil {
			return nil, err
		}
		return core.LegalMovesResponse{
			Square:       sq.String(),
			Destinations: squareNames(dests),
		}, nil
	})
}

func (p *Processor) handleExportPGN(cmd Command) ProcessorResponse {
	return p.view(cmd.GameID, func(g *game.Game) (any, error) {
		pgn, err := g.PGN()
		if err != nil {
			return nil, err
		}
		return core.PGNResponse{GameID: cmd.GameID, PGN: pgn}, nil
	})
}

func (p *Processor) handleGetArchive(cmd Command) ProcessorResponse {
	entry, err := p.svc.GetArchived(cmd.GameID)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.ArchiveResponse{
			GameID:     entry.GameID,
			White:      entry.White,
			Black:      entry.Black,
			Result:     entry.Result,
			Moves:      entry.Moves,
			PGN:        entry.PGN,
			ArchivedAt: entry.ArchivedAt,
		},
	}
}

// mutate runs fn under the game lock and answers with the resulting game state
func (p *Processor) mutate(cmd Command, fn func(*game.Game) error) ProcessorResponse {
	var resp core.GameResponse
	err := p.svc.Do(cmd.GameID, cmd.UserID, func(g *game.Game) error {
		if err := fn(g); err != nil {
			return err
		}
		resp = p.buildGameResponse(cmd.GameID, g)
		return nil
	})
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: resp}
}

// view runs a read-only fn under the game lock
func (p *Processor) view(gameID string, fn func(*game.Game) (any, error)) ProcessorResponse {
	var data any
	err := p.svc.View(gameID, func(g *game.Game) error {
		var err error
		data, err = fn(g)
		return err
	})
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: data}
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	resp := core.GameResponse{
		GameID: gameID,
		FEN:    g.CurrentFEN(),
		Turn:   g.NextTurnColor().String(),
		State:  g.State().String(),
		Phase:  g.Phase().String(),
		Moves:  g.Moves(),
		Players: core.PlayersResponse{
			White: g.GetPlayer(core.ColorWhite),
			Black: g.GetPlayer(core.ColorBlack),
		},
	}

	if status := g.Status(); status.State != engine.CheckNone {
		resp.Check = status.Player.String()
	}
	if sq, ok := g.Selected(); ok {
		resp.Selected = sq.String()
	} else if sq, ok := g.PendingPromotion(); ok {
		resp.Selected = sq.String()
	}

	if result := g.LastResult(); result != nil {
		info := &core.MoveInfo{
			Move:        result.Move.String(),
			PlayerColor: result.Color.String(),
			Castled:     result.Castled,
		}
		if result.Captured != 0 {
			info.Captured = string(result.Captured.Letter())
		}
		if result.Promotion != 0 {
			info.Promotion = strings.ToLower(string(result.Promotion.Letter()))
		}
		resp.LastMove = info
	}

	return resp
}

func squareNames(squares []board.Square) []string {
	names := make([]string, len(squares))
	for i, sq := range squares {
		names[i] = sq.String()
	}
	return names
}

// failure maps a domain error onto an API error code
func (p *Processor) failure(err error) ProcessorResponse {
	return p.errorResponse(err.Error(), errorCode(err))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return core.ErrGameNotFound
	case errors.Is(err, service.ErrForbidden):
		return core.ErrForbidden
	case errors.Is(err, service.ErrTooManyGames):
		return core.ErrResourceLimit
	case errors.Is(err, service.ErrArchiveDisabled), errors.Is(err, archive.ErrNotFound):
		return core.ErrNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return core.ErrUnauthorized
	case errors.Is(err, storage.ErrUserExists):
		return core.ErrUserExists
	case errors.Is(err, board.ErrInvalidFEN):
		return core.ErrInvalidFEN
	case errors.Is(err, board.ErrInvalidSquare):
		return core.ErrInvalidSquare
	case errors.Is(err, engine.ErrGameOver):
		return core.ErrGameOver
	case errors.Is(err, engine.ErrPromotionPending):
		return core.ErrPromotionPending
	case errors.Is(err, engine.ErrInvalidPromotionChoice):
		return core.ErrInvalidPromotion
	case errors.Is(err, engine.ErrWrongTurn):
		return core.ErrWrongTurn
	case errors.Is(err, engine.ErrNoSelection):
		return core.ErrNoSelection
	case errors.Is(err, engine.ErrIllegalMove):
		return core.ErrInvalidMove
	case errors.Is(err, game.ErrCannotUndo):
		return core.ErrInvalidRequest
	default:
		return core.ErrInternalError
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
