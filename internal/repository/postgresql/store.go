package postgresql

import (
	"game-exchange/internal/logger"

	"gorm.io/gorm"
)

// CatalogStore joins the user and game repositories into the single
// repository.CatalogStore the services consume.
type CatalogStore struct {
	*UserRepository
	*GameRepository
}

// NewCatalogStore builds both repositories on the same connection.
func NewCatalogStore(db *gorm.DB, log *logger.Logger) *CatalogStore {
	return &CatalogStore{
		UserRepository: NewUserRepository(db, log),
		GameRepository: NewGameRepository(db, log),
	}
}
