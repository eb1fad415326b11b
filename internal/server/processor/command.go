package processor

import (
	"chessarbiter/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdSelectSquare
	CmdMakeMove
	CmdPromote
	CmdCancel
	CmdReset
	CmdUndoMove
	CmdGetBoard
	CmdLegalMoves
	CmdExportPGN
	CmdGetArchive
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	UserID string // Authenticated caller, empty for anonymous requests
	GameID string // For game-specific commands
	Args   any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(userID string, req core.CreateGameRequest) Command {
	return Command{
		Type:   CmdCreateGame,
		UserID: userID,
		Args:   req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(userID, gameID string) Command {
	return Command{
		Type:   CmdDeleteGame,
		UserID: userID,
		GameID: gameID,
	}
}

func NewSelectSquareCommand(userID, gameID string, req core.SelectRequest) Command {
	return Command{
		Type:   CmdSelectSquare,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewMakeMoveCommand(userID, gameID string, req core.MoveRequest) Command {
	return Command{
		Type:   CmdMakeMove,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewPromoteCommand(userID, gameID string, req core.PromotionRequest) Command {
	return Command{
		Type:   CmdPromote,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewCancelCommand(userID, gameID string) Command {
	return Command{
		Type:   CmdCancel,
		UserID: userID,
		GameID: gameID,
	}
}

func NewResetCommand(userID, gameID string) Command {
	return Command{
		Type:   CmdReset,
		UserID: userID,
		GameID: gameID,
	}
}

func NewUndoMoveCommand(userID, gameID string, req core.UndoRequest) Command {
	return Command{
		Type:   CmdUndoMove,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

// NewLegalMovesCommand asks for the destinations of the piece on square
func NewLegalMovesCommand(gameID, square string) Command {
	return Command{
		Type:   CmdLegalMoves,
		GameID: gameID,
		Args:   square,
	}
}

func NewExportPGNCommand(gameID string) Command {
	return Command{
		Type:   CmdExportPGN,
		GameID: gameID,
	}
}

func NewGetArchiveCommand(gameID string) Command {
	return Command{
		Type:   CmdGetArchive,
		GameID: gameID,
	}
}
