package core

import "time"

// Request types

type CreateGameRequest struct {
	FEN       string `json:"fen,omitempty" validate:"omitempty,max=100"`
	WhiteName string `json:"whiteName,omitempty" validate:"omitempty,max=40"`
	BlackName string `json:"blackName,omitempty" validate:"omitempty,max=40"`
}

type SelectRequest struct {
	Square string `json:"square" validate:"required,len=2"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=2,max=5"` // UCI form, or a lone destination square after /select
}

type PromotionRequest struct {
	Piece string `json:"piece" validate:"required,oneof=q n r b Q N R B"`
}

type UndoRequest struct {
	Count int `json:"count,omitempty" validate:"omitempty,min=1,max=300"` // defaults to 1
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	FEN      string          `json:"fen"`
	Turn     string          `json:"turn"`            // "w" or "b"
	State    string          `json:"state"`           // "ongoing", "promotion", "white wins", "black wins"
	Phase    string          `json:"phase"`           // engine phase
	Check    string          `json:"check,omitempty"` // color in check, if any
	Selected string          `json:"selected,omitempty"`
	Moves    []string        `json:"moves"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Captured    string `json:"captured,omitempty"`
	Castled     bool   `json:"castled,omitempty"`
	Promotion   string `json:"promotion,omitempty"`
}

type SquareInfo struct {
	Square string `json:"square"`
	Piece  string `json:"piece"`
	Color  string `json:"color"`
}

type BoardResponse struct {
	FEN     string       `json:"fen"`
	Board   string       `json:"board"` // ASCII representation
	Squares []SquareInfo `json:"squares"`
}

type SelectionResponse struct {
	Result       string        `json:"result"` // "none", "selected", "rejected"
	Square       string        `json:"square"`
	Piece        string        `json:"piece,omitempty"`
	Color        string        `json:"color,omitempty"`
	Destinations []string      `json:"destinations,omitempty"`
	Game         *GameResponse `json:"game,omitempty"`
}

type LegalMovesResponse struct {
	Square       string   `json:"square"`
	Destinations []string `json:"destinations"`
}

type PGNResponse struct {
	GameID string `json:"gameId"`
	PGN    string `json:"pgn"`
}

type ArchiveResponse struct {
	GameID     string    `json:"gameId"`
	White      string    `json:"white"`
	Black      string    `json:"black"`
	Result     string    `json:"result"`
	Moves      int       `json:"moves"`
	PGN        string    `json:"pgn"`
	ArchivedAt time.Time `json:"archivedAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
