package memory

import (
	"context"
	"sync"

	entity "game-exchange/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryRepository is the in-process status history used when no Mongo
// URI is configured.
type HistoryRepository struct {
	mu   sync.Mutex
	docs []entity.HistoryStatus
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) SaveHistoryStatus(_ context.Context, doc *entity.HistoryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *HistoryRepository) ListHistory(_ context.Context, relatedType, relatedID string) ([]entity.HistoryStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.HistoryStatus, 0)
	for _, d := range r.docs {
		if d.RelatedType == relatedType && d.RelatedID == relatedID {
			out = append(out, d)
		}
	}
	return out, nil
}
