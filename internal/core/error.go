package core

// Error codes
const (
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrInvalidMove       = "INVALID_MOVE"
	ErrInvalidSquare     = "INVALID_SQUARE"
	ErrWrongTurn         = "WRONG_TURN"
	ErrNoSelection       = "NO_SELECTION"
	ErrPromotionPending  = "PROMOTION_PENDING"
	ErrInvalidPromotion  = "INVALID_PROMOTION_CHOICE"
	ErrGameOver          = "GAME_OVER"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrForbidden         = "FORBIDDEN"
	ErrResourceLimit     = "RESOURCE_LIMIT"
	ErrUserExists        = "USER_EXISTS"
	ErrNotFound          = "NOT_FOUND"
)
