package core

import (
	"github.com/google/uuid"
)

// Player is one side of a hot-seat game
type Player struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
	Name  string `json:"name"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player with a fresh ID, defaulting the name to the color label
func NewPlayer(name string, color Color) *Player {
	if name == "" {
		name = color.Name()
	}
	return &Player{
		ID:    uuid.New().String(),
		Color: color,
		Name:  name,
	}
}
