package memory

import (
	"context"
	"errors"
	"testing"

	entity "game-exchange/internal/domain"

	"github.com/google/uuid"
)

func TestEntityStoreUsers(t *testing.T) {
	s := NewEntityStore()
	ctx := context.Background()

	u := &entity.User{ID: uuid.New(), Name: "gamer123", Email: "gamer@example.com"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	dup := &entity.User{ID: uuid.New(), Name: "other", Email: "GAMER@example.com"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected email conflict, got %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil || got.Name != "gamer123" {
		t.Fatalf("GetUser: %v %+v", err, got)
	}
	if _, err := s.GetUser(ctx, uuid.New()); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got.Address = "1 Arcade Way"
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	users, _ := s.ListUsers(ctx)
	if len(users) != 1 || users[0].Address != "1 Arcade Way" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestEntityStoreListGamesFilter(t *testing.T) {
	s := NewEntityStore()
	ctx := context.Background()
	owner := uuid.New()

	for _, g := range []entity.Game{
		{ID: uuid.New(), Title: "Retro Racer", Platform: "NES", OwnerID: owner},
		{ID: uuid.New(), Title: "Space Race", Platform: "SNES", OwnerID: uuid.New()},
		{ID: uuid.New(), Title: "Castle Quest", Platform: "NES", OwnerID: owner},
	} {
		g := g
		if err := s.CreateGame(ctx, &g); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
	}

	cases := []struct {
		name   string
		filter entity.GameFilter
		want   int
	}{
		{"all", entity.GameFilter{}, 3},
		{"title substring", entity.GameFilter{Title: "race"}, 2},
		{"platform", entity.GameFilter{Platform: "nes"}, 2},
		{"owner", entity.GameFilter{OwnerID: owner}, 2},
		{"combined", entity.GameFilter{Title: "castle", OwnerID: owner}, 1},
	}
	for _, tc := range cases {
		got, err := s.ListGames(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(got) != tc.want {
			t.Fatalf("%s: expected %d games, got %d", tc.name, tc.want, len(got))
		}
	}
}

func TestHistoryRepositoryFiltersByRelated(t *testing.T) {
	r := NewHistoryRepository()
	ctx := context.Background()
	_ = r.SaveHistoryStatus(ctx, &entity.HistoryStatus{RelatedType: "offer", RelatedID: "a", NewStatus: "accepted"})
	_ = r.SaveHistoryStatus(ctx, &entity.HistoryStatus{RelatedType: "offer", RelatedID: "b", NewStatus: "rejected"})

	got, err := r.ListHistory(ctx, "offer", "a")
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(got) != 1 || got[0].NewStatus != "accepted" || got[0].ID.IsZero() {
		t.Fatalf("unexpected history %+v", got)
	}
}
