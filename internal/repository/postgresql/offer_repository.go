package postgresql

import (
	"context"
	"fmt"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferRepository persists trade offers through gorm.
type OfferRepository struct {
	db    *gorm.DB
	log   *logger.Logger
	newID func() uuid.UUID
}

// NewOfferRepository scopes the logger to the repository.
func NewOfferRepository(db *gorm.DB, baseLog *logger.Logger) *OfferRepository {
	return &OfferRepository{
		db:    db,
		log:   baseLog.With("repo", "OfferRepository"),
		newID: uuid.New,
	}
}

// Insert stores a new pending offer under a fresh id.
func (r *OfferRepository) Insert(ctx context.Context, offer *entity.TradeOffer) (uuid.UUID, error) {
	row := *offer
	row.Seq = 0
	row.ID = r.newID()
	row.Status = entity.OfferPending

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, mapError(fmt.Sprintf("offer %s", row.ID), err)
	}
	*offer = row
	return row.ID, nil
}

// Get loads one offer by id.
func (r *OfferRepository) Get(ctx context.Context, id uuid.UUID) (*entity.TradeOffer, error) {
	var offer entity.TradeOffer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, mapError(fmt.Sprintf("offer %s", id), err)
	}
	return &offer, nil
}

// ListByOwnedRequestedGame resolves ownership at read time, so a game that
// changes hands moves its incoming offers with it.
func (r *OfferRepository) ListByOwnedRequestedGame(ctx context.Context, userID uuid.UUID) ([]entity.TradeOffer, error) {
	owned := r.db.Model(&entity.Game{}).Select("id").Where("owner_id = ?", userID)

	var offers []entity.TradeOffer
	err := r.db.WithContext(ctx).
		Where("requested_game_id IN (?)", owned).
		Order("seq ASC").
		Find(&offers).Error
	if err != nil {
		return nil, mapError("offers", err)
	}
	if offers == nil {
		offers = []entity.TradeOffer{}
	}
	return offers, nil
}

// CompareAndSetStatus is one UPDATE guarded on the current status, then a
// read of the row in the same transaction.
func (r *OfferRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected *entity.OfferStatus, next entity.OfferStatus) (*entity.TradeOffer, error) {
	var updated entity.TradeOffer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&entity.TradeOffer{}).Where("id = ?", id)
		if expected != nil {
			q = q.Where("status = ?", string(*expected))
		}
		res := q.Updates(map[string]any{
			"status":     string(next),
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}

		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		if expected != nil && res.RowsAffected == 0 {
			return entity.ConflictError(fmt.Sprintf("offer %s is %s, expected %s", id, updated.Status, *expected))
		}
		return nil
	})
	if err != nil {
		r.log.Debug("offer status CAS failed", "offer_id", id, "next", next, "err", err)
		return nil, mapError(fmt.Sprintf("offer %s", id), err)
	}
	return &updated, nil
}
