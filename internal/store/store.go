// Package store persists room records so rooms survive a restart.
package store

import (
	"context"
	"errors"

	"github.com/benbeisheim/variantchess-backend/internal/model"
)

var ErrNotFound = errors.New("room record not found")

// RoomStore saves and loads room records by room ID.
type RoomStore interface {
	Save(ctx context.Context, rec model.Record) error
	Load(ctx context.Context, id string) (model.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Record, error)
	Close() error
}
