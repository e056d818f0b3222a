package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	entity "game-exchange/internal/domain"

	"github.com/google/uuid"
)

// OfferStore keeps offers in insertion order. Every mutation, including the
// compare-and-set, runs under the write lock, which is what serializes
// concurrent transitions of one offer.
type OfferStore struct {
	mu     sync.RWMutex
	offers map[uuid.UUID]*entity.TradeOffer
	order  []uuid.UUID
	seq    int64
	games  *EntityStore
	newID  func() uuid.UUID
}

// NewOfferStore needs the entity store to resolve requested-game ownership.
func NewOfferStore(games *EntityStore) *OfferStore {
	return &OfferStore{
		offers: make(map[uuid.UUID]*entity.TradeOffer),
		games:  games,
		newID:  uuid.New,
	}
}

func (s *OfferStore) Insert(_ context.Context, offer *entity.TradeOffer) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, exists := s.offers[id]; exists {
		return uuid.Nil, entity.ConflictError(fmt.Sprintf("offer id %s already in use", id))
	}
	s.seq++
	now := time.Now().UTC()
	offer.ID = id
	offer.Seq = s.seq
	offer.Status = entity.OfferPending
	offer.CreatedAt = now
	offer.UpdatedAt = now

	stored := *offer
	s.offers[id] = &stored
	s.order = append(s.order, id)
	return id, nil
}

func (s *OfferStore) Get(_ context.Context, id uuid.UUID) (*entity.TradeOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.offers[id]
	if !ok {
		return nil, entity.NotFoundError(fmt.Sprintf("offer %s not found", id))
	}
	out := *o
	return &out, nil
}

func (s *OfferStore) ListByOwnedRequestedGame(_ context.Context, userID uuid.UUID) ([]entity.TradeOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.TradeOffer, 0)
	for _, id := range s.order {
		o := s.offers[id]
		owner, ok := s.games.ownerOf(o.RequestedGameID)
		if ok && owner == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *OfferStore) CompareAndSetStatus(_ context.Context, id uuid.UUID, expected *entity.OfferStatus, next entity.OfferStatus) (*entity.TradeOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok {
		return nil, entity.NotFoundError(fmt.Sprintf("offer %s not found", id))
	}
	if expected != nil && o.Status != *expected {
		return nil, entity.ConflictError(fmt.Sprintf("offer %s is %s, expected %s", id, o.Status, *expected))
	}
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	out := *o
	return &out, nil
}
