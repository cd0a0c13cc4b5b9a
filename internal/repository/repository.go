package repository

import (
	"context"

	"kapebot/internal/domain"
)

// PropertyRepository defines read-only access to the listing catalog
type PropertyRepository interface {
	All(ctx context.Context) ([]domain.Property, error)
}

// SessionStore defines session persistence by user id. Get returns
// (nil, nil) when no session exists.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*domain.Session, error)
	Set(ctx context.Context, userID string, s *domain.Session) error
	Delete(ctx context.Context, userID string) error
}

// GreetedStore remembers which users already saw the welcome menu
type GreetedStore interface {
	MarkGreeted(ctx context.Context, userID string) error
	WasGreeted(ctx context.Context, userID string) (bool, error)
}
