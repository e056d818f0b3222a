package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"
	"game-exchange/internal/repository"

	"github.com/google/uuid"
)

// Notifier accepts a message without blocking. A false return means the
// message was dropped.
type Notifier interface {
	Publish(msg entity.Notification) bool
}

// OfferMetrics records workflow outcomes. A nil value disables recording.
type OfferMetrics interface {
	OfferCreated()
	OfferTransition(status, result string)
}

type OfferService struct {
	entities repository.EntityStore
	offers   repository.OfferStore
	history  repository.HistoryRepository
	notifier Notifier
	metrics  OfferMetrics
	log      *logger.Logger

	storeTimeout    time.Duration
	rejectSelfTrade bool
}

type OfferOption func(*OfferService)

func WithHistory(h repository.HistoryRepository) OfferOption {
	return func(s *OfferService) { s.history = h }
}

func WithNotifier(n Notifier) OfferOption {
	return func(s *OfferService) { s.notifier = n }
}

func WithMetrics(m OfferMetrics) OfferOption {
	return func(s *OfferService) { s.metrics = m }
}

// WithStoreTimeout bounds every individual store call.
func WithStoreTimeout(d time.Duration) OfferOption {
	return func(s *OfferService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithSelfTradeGuard refuses offers for a game the caller already owns.
func WithSelfTradeGuard(enabled bool) OfferOption {
	return func(s *OfferService) { s.rejectSelfTrade = enabled }
}

func NewOfferService(entities repository.EntityStore, offers repository.OfferStore, baseLog *logger.Logger, opts ...OfferOption) *OfferService {
	s := &OfferService{
		entities:     entities,
		offers:       offers,
		log:          baseLog.With("service", "OfferService"),
		storeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OfferService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *OfferService) getGame(ctx context.Context, id uuid.UUID) (*entity.Game, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.entities.GetGame(ctx, id)
}

func (s *OfferService) getOffer(ctx context.Context, id uuid.UUID) (*entity.TradeOffer, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.offers.Get(ctx, id)
}

func requireCaller(callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return entity.ValidationError("caller identity is required")
	}
	return nil
}

// CreateOffer records a pending proposal to swap the caller's offered game for
// the requested game.
func (s *OfferService) CreateOffer(ctx context.Context, input entity.CreateOfferInput, callerID uuid.UUID) (*entity.TradeOffer, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	offered, err := s.getGame(ctx, input.OfferedGameID)
	if err != nil {
		return nil, err
	}
	requested, err := s.getGame(ctx, input.RequestedGameID)
	if err != nil {
		return nil, err
	}

	if offered.OwnerID != callerID {
		return nil, entity.AuthorizationError("you can only offer games you own")
	}
	if s.rejectSelfTrade && requested.OwnerID == callerID {
		return nil, entity.ValidationError("requested game is already yours")
	}

	offer := &entity.TradeOffer{
		OfferedGameID:   offered.ID,
		RequestedGameID: requested.ID,
		RequesterID:     callerID,
		Status:          entity.OfferPending,
	}

	insCtx, cancel := s.storeCtx(ctx)
	_, err = s.offers.Insert(insCtx, offer)
	cancel()
	if err != nil {
		return nil, err
	}

	s.log.Info("offer created", "offer_id", offer.ID, "requester_id", callerID, "requested_game_id", requested.ID)
	if s.metrics != nil {
		s.metrics.OfferCreated()
	}
	s.notify(ctx, entity.Notification{
		Type:    entity.NotificationOfferCreated,
		Subject: "New trade offer",
		Body:    fmt.Sprintf("You received an offer of %q for your game %q.", offered.Title, requested.Title),
	}, requested.OwnerID)

	return offer, nil
}

// GetOffersForUser lists offers whose requested game the caller owns.
func (s *OfferService) GetOffersForUser(ctx context.Context, callerID uuid.UUID) ([]entity.TradeOffer, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.offers.ListByOwnedRequestedGame(ctx, callerID)
}

// GetOffer returns one offer to either of its parties.
func (s *OfferService) GetOffer(ctx context.Context, offerID, callerID uuid.UUID) (*entity.TradeOffer, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.RequesterID == callerID {
		return offer, nil
	}
	requested, err := s.getGame(ctx, offer.RequestedGameID)
	if err != nil {
		return nil, err
	}
	if requested.OwnerID != callerID {
		return nil, entity.AuthorizationError("you are not a party to this offer")
	}
	return offer, nil
}

// UpdateOfferStatus moves a pending offer to newStatus. Only the requester
// and the owner of the requested game may act; terminal offers never move.
func (s *OfferService) UpdateOfferStatus(ctx context.Context, offerID uuid.UUID, newStatus string, callerID uuid.UUID) (*entity.TradeOffer, error) {
	next := entity.OfferStatus(newStatus)
	if !next.Valid() {
		s.recordTransition(newStatus, "invalid")
		return nil, entity.ValidationError(fmt.Sprintf("invalid status %q: must be one of pending, accepted, rejected", newStatus))
	}
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	requested, err := s.getGame(ctx, offer.RequestedGameID)
	if err != nil {
		return nil, err
	}

	if callerID != offer.RequesterID && callerID != requested.OwnerID {
		s.recordTransition(newStatus, "forbidden")
		return nil, entity.AuthorizationError("you are not a party to this offer")
	}
	if offer.Status.Terminal() {
		s.recordTransition(newStatus, "conflict")
		return nil, entity.ConflictError(fmt.Sprintf("offer is already %s", offer.Status))
	}

	expected := entity.OfferPending
	casCtx, cancel := s.storeCtx(ctx)
	updated, err := s.offers.CompareAndSetStatus(casCtx, offerID, &expected, next)
	cancel()
	if err != nil {
		result := "error"
		if errors.Is(err, entity.ErrConflict) {
			result = "conflict"
		}
		s.recordTransition(newStatus, result)
		return nil, err
	}
	s.recordTransition(newStatus, "ok")

	if next == offer.Status {
		return updated, nil
	}

	s.log.Info("offer status changed", "offer_id", offerID, "from", offer.Status, "to", next, "changed_by", callerID)
	s.saveHistory(ctx, offerID, offer.Status, next, callerID)
	s.notify(ctx, entity.Notification{
		Type:    entity.NotificationOfferStatusChanged,
		Subject: fmt.Sprintf("Trade offer %s", next),
		Body:    fmt.Sprintf("The offer for %q is now %s.", requested.Title, next),
	}, offer.RequesterID, requested.OwnerID)

	return updated, nil
}

// History returns the recorded status changes of an offer visible to caller.
func (s *OfferService) History(ctx context.Context, offerID, callerID uuid.UUID) ([]entity.HistoryStatus, error) {
	if _, err := s.GetOffer(ctx, offerID, callerID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []entity.HistoryStatus{}, nil
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.history.ListHistory(ctx, entity.HistoryRelatedOffer, offerID.String())
}

func (s *OfferService) recordTransition(status, result string) {
	if s.metrics != nil {
		s.metrics.OfferTransition(status, result)
	}
}

func (s *OfferService) saveHistory(ctx context.Context, offerID uuid.UUID, from, to entity.OfferStatus, by uuid.UUID) {
	if s.history == nil {
		return
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	doc := &entity.HistoryStatus{
		RelatedID:   offerID.String(),
		RelatedType: entity.HistoryRelatedOffer,
		OldStatus:   string(from),
		NewStatus:   string(to),
		ChangedBy:   by.String(),
		Timestamp:   time.Now().UTC(),
	}
	if err := s.history.SaveHistoryStatus(ctx, doc); err != nil {
		s.log.Warn("failed to save offer history", "offer_id", offerID, "err", err)
	}
}

// notify resolves recipient emails and hands the message to the notifier.
// Lookup failures and drops are logged only.
func (s *OfferService) notify(ctx context.Context, msg entity.Notification, userIDs ...uuid.UUID) {
	if s.notifier == nil {
		return
	}
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		uctx, cancel := s.storeCtx(ctx)
		user, err := s.entities.GetUser(uctx, id)
		cancel()
		if err != nil {
			s.log.Warn("notification recipient lookup failed", "user_id", id, "err", err)
			continue
		}
		msg.Recipients = append(msg.Recipients, user.Email)
	}
	if len(msg.Recipients) == 0 {
		return
	}
	if !s.notifier.Publish(msg) {
		s.log.Warn("notification dropped", "type", msg.Type)
	}
}
