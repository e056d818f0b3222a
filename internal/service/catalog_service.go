package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"
	"game-exchange/internal/repository"

	"github.com/google/uuid"
)

// TokenGenerator issues the bearer token handed back on registration.
type TokenGenerator interface {
	GenerateToken(userID uuid.UUID) (string, error)
}

// CatalogService is plain CRUD over users and games.
type CatalogService struct {
	store        repository.CatalogStore
	tokens       TokenGenerator
	log          *logger.Logger
	storeTimeout time.Duration
}

// NewCatalogService falls back to a 5s store timeout when none is given.
func NewCatalogService(store repository.CatalogStore, tokens TokenGenerator, baseLog *logger.Logger, storeTimeout time.Duration) *CatalogService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &CatalogService{
		store:        store,
		tokens:       tokens,
		log:          baseLog.With("service", "CatalogService"),
		storeTimeout: storeTimeout,
	}
}

func (s *CatalogService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Emails are stored lowercased so uniqueness holds in every store.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUser(u *entity.User) error {
	if strings.TrimSpace(u.Name) == "" {
		return entity.ValidationError("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return entity.ValidationError("email is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return entity.ValidationError(fmt.Sprintf("invalid email %q", u.Email))
	}
	return nil
}

func validateGame(g *entity.Game) error {
	if strings.TrimSpace(g.Title) == "" {
		return entity.ValidationError("title is required")
	}
	if strings.TrimSpace(g.Platform) == "" {
		return entity.ValidationError("platform is required")
	}
	if !g.Condition.Valid() {
		return entity.ValidationError(fmt.Sprintf("invalid condition %q: must be one of mint, good, fair, poor", g.Condition))
	}
	if g.Year < 0 {
		return entity.ValidationError("year cannot be negative")
	}
	if g.PreviousOwners < 0 {
		return entity.ValidationError("previous_owners cannot be negative")
	}
	return nil
}

// RegisterUser creates a user and returns it with a fresh bearer token.
func (s *CatalogService) RegisterUser(ctx context.Context, input entity.RegisterUserInput) (*entity.RegisterUserResponse, error) {
	user := &entity.User{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Email:   normalizeEmail(input.Email),
		Address: strings.TrimSpace(input.Address),
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	cctx, cancel := s.storeCtx(ctx)
	err := s.store.CreateUser(cctx, user)
	cancel()
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &entity.RegisterUserResponse{User: user, Token: token}, nil
}

// GetUser returns one user.
func (s *CatalogService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.GetUser(ctx, id)
}

// ListUsers returns all users.
func (s *CatalogService) ListUsers(ctx context.Context) ([]entity.User, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.ListUsers(ctx)
}

// UpdateUser applies patch to the caller's own record. A PUT is a patch with
// every field set.
func (s *CatalogService) UpdateUser(ctx context.Context, id uuid.UUID, patch entity.UserPatch, callerID uuid.UUID) (*entity.User, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	if id != callerID {
		return nil, entity.AuthorizationError("you can only update your own profile")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		user.Email = normalizeEmail(*patch.Email)
	}
	if patch.Address != nil {
		user.Address = strings.TrimSpace(*patch.Address)
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.UpdateUser(cctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGame lists a game owned by the caller, who must be registered.
func (s *CatalogService) CreateGame(ctx context.Context, input entity.CreateGameInput, callerID uuid.UUID) (*entity.Game, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	if _, err := s.GetUser(ctx, callerID); err != nil {
		return nil, err
	}

	game := &entity.Game{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(input.Title),
		Platform:       strings.TrimSpace(input.Platform),
		OwnerID:        callerID,
		Publisher:      strings.TrimSpace(input.Publisher),
		Year:           input.Year,
		Condition:      input.Condition,
		PreviousOwners: input.PreviousOwners,
	}
	if err := validateGame(game); err != nil {
		return nil, err
	}

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.CreateGame(cctx, game); err != nil {
		return nil, err
	}
	s.log.Info("game listed", "game_id", game.ID, "owner_id", callerID)
	return game, nil
}

// GetGame returns one game.
func (s *CatalogService) GetGame(ctx context.Context, id uuid.UUID) (*entity.Game, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.GetGame(ctx, id)
}

// ListGames returns the games matching filter.
func (s *CatalogService) ListGames(ctx context.Context, filter entity.GameFilter) ([]entity.Game, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.store.ListGames(ctx, filter)
}

// UpdateGame lets the owner edit catalog fields. Ownership is not
// transferable here.
func (s *CatalogService) UpdateGame(ctx context.Context, id uuid.UUID, patch entity.GamePatch, callerID uuid.UUID) (*entity.Game, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.OwnerID != callerID {
		return nil, entity.AuthorizationError("you can only update games you own")
	}

	if patch.Title != nil {
		game.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Platform != nil {
		game.Platform = strings.TrimSpace(*patch.Platform)
	}
	if patch.Publisher != nil {
		game.Publisher = strings.TrimSpace(*patch.Publisher)
	}
	if patch.Year != nil {
		game.Year = *patch.Year
	}
	if patch.Condition != nil {
		game.Condition = *patch.Condition
	}
	if patch.PreviousOwners != nil {
		game.PreviousOwners = *patch.PreviousOwners
	}
	if err := validateGame(game); err != nil {
		return nil, err
	}

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.UpdateGame(cctx, game); err != nil {
		return nil, err
	}
	return game, nil
}
