package model

import (
	"github.com/benbeisheim/variantchess-backend/internal/engine"
)

// Player is a seat in a room. The creator sits White.
type Player struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"displayName"`
	Color       engine.Color `json:"color"`
}

// DefaultDisplayName is used when a client does not send a name.
const DefaultDisplayName = "Anonymous"

func NewPlayer(id, displayName string) Player {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return Player{ID: id, DisplayName: displayName}
}
