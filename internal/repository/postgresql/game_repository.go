package postgresql

import (
	"context"
	"fmt"
	"strings"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameRepository persists catalog games through gorm.
type GameRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGameRepository scopes the logger to the repository.
func NewGameRepository(db *gorm.DB, baseLog *logger.Logger) *GameRepository {
	return &GameRepository{db: db, log: baseLog.With("repo", "GameRepository")}
}

// CreateGame inserts a game.
func (r *GameRepository) CreateGame(ctx context.Context, game *entity.Game) error {
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		return mapError("game", err)
	}
	return nil
}

// GetGame loads one game by id.
func (r *GameRepository) GetGame(ctx context.Context, id uuid.UUID) (*entity.Game, error) {
	var game entity.Game
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return nil, mapError(fmt.Sprintf("game %s", id), err)
	}
	return &game, nil
}

// ListGames applies the optional owner, platform and title filters.
// Title matches are case-insensitive substrings.
func (r *GameRepository) ListGames(ctx context.Context, filter entity.GameFilter) ([]entity.Game, error) {
	q := r.db.WithContext(ctx).Model(&entity.Game{})
	if filter.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Platform != "" {
		q = q.Where("LOWER(platform) = ?", strings.ToLower(filter.Platform))
	}
	if filter.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}

	var games []entity.Game
	if err := q.Order("created_at ASC, id ASC").Find(&games).Error; err != nil {
		return nil, mapError("games", err)
	}
	return games, nil
}

// UpdateGame writes the mutable catalog fields; owner_id is never touched.
func (r *GameRepository) UpdateGame(ctx context.Context, game *entity.Game) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Game{}).
		Where("id = ?", game.ID).
		Updates(map[string]any{
			"title":           game.Title,
			"platform":        game.Platform,
			"publisher":       game.Publisher,
			"year":            game.Year,
			"condition":       game.Condition,
			"previous_owners": game.PreviousOwners,
		})
	if res.Error != nil {
		return mapError("game", res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.NotFoundError(fmt.Sprintf("game %s not found", game.ID))
	}
	return nil
}
