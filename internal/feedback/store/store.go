package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
)

var ErrNotFound = errors.New("feedback entry not found")

// Store persists accumulated feedback entries.
type Store interface {
	List(ctx context.Context) ([]model.Entry, error)
	Add(ctx context.Context, e *model.Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close()
}
