package entity

import (
	"time"

	"github.com/google/uuid"
)

type GameCondition string

const (
	ConditionMint GameCondition = "mint"
	ConditionGood GameCondition = "good"
	ConditionFair GameCondition = "fair"
	ConditionPoor GameCondition = "poor"
)

// Valid accepts the four grades and the empty value (condition not stated).
func (c GameCondition) Valid() bool {
	switch c {
	case "", ConditionMint, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type Game struct {
	ID             uuid.UUID     `gorm:"primaryKey" json:"id"`
	Title          string        `gorm:"not null;index" json:"title"`
	Platform       string        `gorm:"not null;index" json:"platform"`
	OwnerID        uuid.UUID     `gorm:"not null;index" json:"owner_id"`
	Publisher      string        `json:"publisher,omitempty"`
	Year           int           `json:"year,omitempty"`
	Condition      GameCondition `gorm:"size:8" json:"condition,omitempty"`
	PreviousOwners int           `json:"previous_owners"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type CreateGameInput struct {
	Title          string        `json:"title" binding:"required"`
	Platform       string        `json:"platform" binding:"required"`
	Publisher      string        `json:"publisher"`
	Year           int           `json:"year"`
	Condition      GameCondition `json:"condition"`
	PreviousOwners int           `json:"previous_owners"`
}

// GamePatch carries a partial update. Ownership is not editable.
type GamePatch struct {
	Title          *string        `json:"title"`
	Platform       *string        `json:"platform"`
	Publisher      *string        `json:"publisher"`
	Year           *int           `json:"year"`
	Condition      *GameCondition `json:"condition"`
	PreviousOwners *int           `json:"previous_owners"`
}

// GameFilter narrows ListGames; zero fields match everything.
type GameFilter struct {
	Title    string
	Platform string
	OwnerID  uuid.UUID
}
