// Package repository declares the storage contracts the services consume.
// Implementations live in the memory, postgresql and mongodb subpackages.
package repository

import (
	"context"

	entity "game-exchange/internal/domain"

	"github.com/google/uuid"
)

// EntityStore is the read-only view of users and games the offer workflow
// needs. Missing records are reported as entity.NotFoundError.
type EntityStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetGame(ctx context.Context, id uuid.UUID) (*entity.Game, error)
}

// CatalogStore adds the plain CRUD used by user and game registration.
type CatalogStore interface {
	EntityStore
	CreateUser(ctx context.Context, user *entity.User) error
	ListUsers(ctx context.Context) ([]entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
	CreateGame(ctx context.Context, game *entity.Game) error
	ListGames(ctx context.Context, filter entity.GameFilter) ([]entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
}

// OfferStore is the only writer of offer state.
type OfferStore interface {
	// Insert assigns a fresh id, forces status to pending and persists the
	// offer. The passed struct is updated in place.
	Insert(ctx context.Context, offer *entity.TradeOffer) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.TradeOffer, error)
	// ListByOwnedRequestedGame returns offers whose requested game is owned
	// by userID, in insertion order.
	ListByOwnedRequestedGame(ctx context.Context, userID uuid.UUID) ([]entity.TradeOffer, error)
	// CompareAndSetStatus atomically writes next when the stored status
	// equals *expected (or unconditionally when expected is nil). A failed
	// precondition is an entity.ConflictError.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected *entity.OfferStatus, next entity.OfferStatus) (*entity.TradeOffer, error)
}

// HistoryRepository keeps the audit trail of status changes.
type HistoryRepository interface {
	SaveHistoryStatus(ctx context.Context, doc *entity.HistoryStatus) error
	ListHistory(ctx context.Context, relatedType, relatedID string) ([]entity.HistoryStatus, error)
}
