// Package memory provides mutex-guarded in-process stores used for local
// runs and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	entity "game-exchange/internal/domain"

	"github.com/google/uuid"
)

// EntityStore keeps users and games in maps plus insertion-ordered id slices
// so listings are stable.
type EntityStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]entity.User
	userOrder []uuid.UUID
	games     map[uuid.UUID]entity.Game
	gameOrder []uuid.UUID
}

func NewEntityStore() *EntityStore {
	return &EntityStore{
		users: make(map[uuid.UUID]entity.User),
		games: make(map[uuid.UUID]entity.Game),
	}
}

func (s *EntityStore) GetUser(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, entity.NotFoundError(fmt.Sprintf("user %s not found", id))
	}
	return &u, nil
}

func (s *EntityStore) GetGame(_ context.Context, id uuid.UUID) (*entity.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, entity.NotFoundError(fmt.Sprintf("game %s not found", id))
	}
	return &g, nil
}

func (s *EntityStore) CreateUser(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return entity.ConflictError(fmt.Sprintf("user %s already exists", user.ID))
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return entity.ConflictError("email already registered")
		}
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	s.users[user.ID] = *user
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *EntityStore) ListUsers(_ context.Context) ([]entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *EntityStore) UpdateUser(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return entity.NotFoundError(fmt.Sprintf("user %s not found", user.ID))
	}
	for id, u := range s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return entity.ConflictError("email already registered")
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *EntityStore) CreateGame(_ context.Context, game *entity.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[game.ID]; exists {
		return entity.ConflictError(fmt.Sprintf("game %s already exists", game.ID))
	}
	stamp(&game.CreatedAt, &game.UpdatedAt)
	s.games[game.ID] = *game
	s.gameOrder = append(s.gameOrder, game.ID)
	return nil
}

func (s *EntityStore) ListGames(_ context.Context, filter entity.GameFilter) ([]entity.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Game, 0)
	for _, id := range s.gameOrder {
		g := s.games[id]
		if filter.OwnerID != uuid.Nil && g.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Platform != "" && !strings.EqualFold(g.Platform, filter.Platform) {
			continue
		}
		if filter.Title != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(filter.Title)) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *EntityStore) UpdateGame(_ context.Context, game *entity.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[game.ID]
	if !ok {
		return entity.NotFoundError(fmt.Sprintf("game %s not found", game.ID))
	}
	game.CreatedAt = current.CreatedAt
	game.UpdatedAt = time.Now().UTC()
	s.games[game.ID] = *game
	return nil
}

// ownerOf is used by OfferStore for the incoming-offers projection.
func (s *EntityStore) ownerOf(gameID uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	return g.OwnerID, ok
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
