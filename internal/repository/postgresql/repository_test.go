package postgresql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUserAndGame(t *testing.T, catalog *CatalogStore, title string) (*entity.User, *entity.Game) {
	t.Helper()
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Name: "player", Email: uuid.NewString() + "@example.com"}
	if err := catalog.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	game := &entity.Game{ID: uuid.New(), Title: title, Platform: "SNES", OwnerID: user.ID}
	if err := catalog.CreateGame(ctx, game); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return user, game
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "whatever"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	catalog := NewCatalogStore(newTestDB(t), logger.Nop())
	ctx := context.Background()

	first := &entity.User{ID: uuid.New(), Name: "a", Email: "dup@example.com"}
	if err := catalog.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	second := &entity.User{ID: uuid.New(), Name: "b", Email: "dup@example.com"}
	if err := catalog.CreateUser(ctx, second); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUserRepositoryUpdateAndGet(t *testing.T) {
	catalog := NewCatalogStore(newTestDB(t), logger.Nop())
	ctx := context.Background()
	user, _ := seedUserAndGame(t, catalog, "Zelda")

	user.Address = "42 Cartridge Lane"
	if err := catalog.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, err := catalog.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Address != "42 Cartridge Lane" {
		t.Fatalf("expected updated address, got %q", got.Address)
	}

	missing := &entity.User{ID: uuid.New(), Name: "ghost", Email: "ghost@example.com"}
	if err := catalog.UpdateUser(ctx, missing); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := catalog.GetUser(ctx, uuid.New()); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGameRepositoryListFilters(t *testing.T) {
	catalog := NewCatalogStore(newTestDB(t), logger.Nop())
	ctx := context.Background()
	owner, _ := seedUserAndGame(t, catalog, "Super Metroid")
	_, _ = seedUserAndGame(t, catalog, "Chrono Trigger")

	extra := &entity.Game{ID: uuid.New(), Title: "Metroid", Platform: "NES", OwnerID: owner.ID}
	if err := catalog.CreateGame(ctx, extra); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	all, err := catalog.ListGames(ctx, entity.GameFilter{})
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 games, got %d", len(all))
	}

	byTitle, _ := catalog.ListGames(ctx, entity.GameFilter{Title: "metroid"})
	if len(byTitle) != 2 {
		t.Fatalf("expected 2 metroid games, got %d", len(byTitle))
	}
	byOwnerAndPlatform, _ := catalog.ListGames(ctx, entity.GameFilter{OwnerID: owner.ID, Platform: "nes"})
	if len(byOwnerAndPlatform) != 1 || byOwnerAndPlatform[0].ID != extra.ID {
		t.Fatalf("expected only the NES game, got %+v", byOwnerAndPlatform)
	}
}

func TestGameRepositoryListOrderIsStableOnEqualTimestamps(t *testing.T) {
	catalog := NewCatalogStore(newTestDB(t), logger.Nop())
	ctx := context.Background()
	owner, first := seedUserAndGame(t, catalog, "Star Fox")

	at := first.CreatedAt
	for _, title := range []string{"F-Zero", "Pilotwings", "Kirby"} {
		g := &entity.Game{ID: uuid.New(), Title: title, Platform: "SNES", OwnerID: owner.ID, CreatedAt: at}
		if err := catalog.CreateGame(ctx, g); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
	}

	games, err := catalog.ListGames(ctx, entity.GameFilter{})
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 4 {
		t.Fatalf("expected 4 games, got %d", len(games))
	}
	for i := 1; i < len(games); i++ {
		if games[i-1].ID.String() > games[i].ID.String() {
			t.Fatalf("games with equal created_at not ordered by id: %s before %s", games[i-1].ID, games[i].ID)
		}
	}
	again, _ := catalog.ListGames(ctx, entity.GameFilter{})
	for i := range games {
		if games[i].ID != again[i].ID {
			t.Fatalf("listing order changed between calls at %d", i)
		}
	}
}

func TestGameRepositoryUpdateKeepsOwner(t *testing.T) {
	catalog := NewCatalogStore(newTestDB(t), logger.Nop())
	ctx := context.Background()
	owner, game := seedUserAndGame(t, catalog, "Earthbound")

	game.Condition = entity.ConditionGood
	game.OwnerID = uuid.New()
	if err := catalog.UpdateGame(ctx, game); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}
	got, _ := catalog.GetGame(ctx, game.ID)
	if got.Condition != entity.ConditionGood {
		t.Fatalf("expected condition good, got %q", got.Condition)
	}
	if got.OwnerID != owner.ID {
		t.Fatalf("expected owner unchanged, got %s", got.OwnerID)
	}
}

func TestOfferRepositoryInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogStore(db, logger.Nop())
	offers := NewOfferRepository(db, logger.Nop())
	ctx := context.Background()
	requester, offered := seedUserAndGame(t, catalog, "Mega Man 2")
	_, requested := seedUserAndGame(t, catalog, "Castlevania")

	offer := &entity.TradeOffer{
		OfferedGameID:   offered.ID,
		RequestedGameID: requested.ID,
		RequesterID:     requester.ID,
		Status:          entity.OfferRejected,
	}
	id, err := offers.Insert(ctx, offer)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == uuid.Nil || offer.ID != id {
		t.Fatalf("expected assigned id, got %s / %s", id, offer.ID)
	}

	got, err := offers.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != entity.OfferPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}
	if got.RequestedGameID != requested.ID || got.RequesterID != requester.ID {
		t.Fatalf("unexpected stored offer: %+v", got)
	}

	if _, err := offers.Get(ctx, uuid.New()); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOfferRepositoryInsertIDCollision(t *testing.T) {
	db := newTestDB(t)
	offers := NewOfferRepository(db, logger.Nop())
	fixed := uuid.New()
	offers.newID = func() uuid.UUID { return fixed }
	ctx := context.Background()

	if _, err := offers.Insert(ctx, &entity.TradeOffer{}); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if _, err := offers.Insert(ctx, &entity.TradeOffer{}); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestOfferRepositoryListByOwnedRequestedGame(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogStore(db, logger.Nop())
	offers := NewOfferRepository(db, logger.Nop())
	ctx := context.Background()
	requester, offered := seedUserAndGame(t, catalog, "Contra")
	owner, requested := seedUserAndGame(t, catalog, "Metal Gear")

	var want []uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := offers.Insert(ctx, &entity.TradeOffer{OfferedGameID: offered.ID, RequestedGameID: requested.ID, RequesterID: requester.ID})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		want = append(want, id)
	}
	// Offer in the other direction must not show up for owner.
	if _, err := offers.Insert(ctx, &entity.TradeOffer{OfferedGameID: requested.ID, RequestedGameID: offered.ID, RequesterID: owner.ID}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := offers.ListByOwnedRequestedGame(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwnedRequestedGame: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d offers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("offer %d out of insertion order: got %s want %s", i, got[i].ID, want[i])
		}
	}

	none, err := offers.ListByOwnedRequestedGame(ctx, uuid.New())
	if err != nil {
		t.Fatalf("ListByOwnedRequestedGame: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestOfferRepositoryCompareAndSetStatus(t *testing.T) {
	db := newTestDB(t)
	offers := NewOfferRepository(db, logger.Nop())
	ctx := context.Background()
	id, _ := offers.Insert(ctx, &entity.TradeOffer{})

	pending := entity.OfferPending
	updated, err := offers.CompareAndSetStatus(ctx, id, &pending, entity.OfferAccepted)
	if err != nil {
		t.Fatalf("CompareAndSetStatus: %v", err)
	}
	if updated.Status != entity.OfferAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}

	if _, err := offers.CompareAndSetStatus(ctx, id, &pending, entity.OfferRejected); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := offers.Get(ctx, id)
	if got.Status != entity.OfferAccepted {
		t.Fatalf("expected status to stay accepted, got %s", got.Status)
	}

	if _, err := offers.CompareAndSetStatus(ctx, uuid.New(), &pending, entity.OfferAccepted); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOfferRepositoryConcurrentCASHasOneWinner(t *testing.T) {
	db := newTestDB(t)
	offers := NewOfferRepository(db, logger.Nop())
	ctx := context.Background()
	id, _ := offers.Insert(ctx, &entity.TradeOffer{})

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	pending := entity.OfferPending
	for i := 0; i < workers; i++ {
		next := entity.OfferAccepted
		if i%2 == 1 {
			next = entity.OfferRejected
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := offers.CompareAndSetStatus(ctx, id, &pending, next)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, entity.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != workers-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %d and %d", workers-1, wins, conflicts)
	}
}
