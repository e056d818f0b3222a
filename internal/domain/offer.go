package entity

import (
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Valid reports whether s is one of the three known offer statuses.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OfferStatus) Terminal() bool {
	return s == OfferAccepted || s == OfferRejected
}

// TradeOffer is a proposal to swap OfferedGameID (owned by RequesterID at
// creation) for RequestedGameID. Seq orders offers by insertion.
type TradeOffer struct {
	Seq             int64       `gorm:"primaryKey;autoIncrement" json:"-"`
	ID              uuid.UUID   `gorm:"uniqueIndex;not null" json:"id"`
	OfferedGameID   uuid.UUID   `gorm:"index;not null" json:"offered_game_id"`
	RequestedGameID uuid.UUID   `gorm:"index;not null" json:"requested_game_id"`
	RequesterID     uuid.UUID   `gorm:"index;not null" json:"requester_id"`
	Status          OfferStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (TradeOffer) TableName() string { return "offers" }

type CreateOfferInput struct {
	OfferedGameID   uuid.UUID `json:"offered_game_id" binding:"required"`
	RequestedGameID uuid.UUID `json:"requested_game_id" binding:"required"`
}

type UpdateOfferStatusInput struct {
	Status string `json:"status" binding:"required"`
}
