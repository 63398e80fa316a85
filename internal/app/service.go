/**
 * @description
 * This file contains the core business logic for the swap-service. The
 * `Service` struct is the Swap Lifecycle Engine: it creates swap requests
 * against the coin ledger, drives the state machine
 * (PENDING → ACCEPTED → [IN_REVIEW] → COMPLETED, plus DECLINED/CANCELLED),
 * enforces the per-user exclusivity lock, appends system entries to each
 * swap's conversation log, and awards points and badges on completion.
 *
 * Key features:
 * - Every multi-record mutation delegates to one atomic repository call, so
 *   a failure leaves zero observable side effects.
 * - Publishes lifecycle events to RabbitMQ for other surfaces to observe;
 *   publish failures are logged but never roll back a committed transition.
 * - Writes an in-app notification for the counterparty on each transition.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For lifecycle event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/swaply/swap-service/internal/domain"
	"github.com/swaply/swap-service/internal/store"
	"github.com/swaply/swap-service/pkg/rabbitmq"
)

const (
	DefaultSwapFeeCoins     = 1
	DefaultCompletionPoints = 100
)

var (
	ErrSelfSwap      = errors.New("requester and receiver must be different users")
	ErrForbidden     = errors.New("caller is not permitted to perform this operation")
	ErrItemOwnership = errors.New("swap items do not belong to the expected participants")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyMessage  = errors.New("message text must not be empty")
	ErrRateLimited   = errors.New("too many swap requests; try again later")
)

// RateLimitedError carries the retry horizon alongside ErrRateLimited so the
// HTTP layer can set a Retry-After header.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string { return ErrRateLimited.Error() }
func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// RateLimiter is the contract for the distributed request limiter. A nil
// limiter disables limiting.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for the swap lifecycle.
type Service struct {
	repo              store.Repository
	events            rabbitmq.Publisher
	limiter           RateLimiter
	swapFee           int64
	completionPoints  int64
	createLimitPerMin int
}

// NewService creates a new swap lifecycle service instance.
func NewService(repo store.Repository, events rabbitmq.Publisher, swapFee, completionPoints int64) *Service {
	if swapFee <= 0 {
		swapFee = DefaultSwapFeeCoins
	}
	if completionPoints <= 0 {
		completionPoints = DefaultCompletionPoints
	}
	return &Service{
		repo:             repo,
		events:           events,
		swapFee:          swapFee,
		completionPoints: completionPoints,
	}
}

// SetRequestRateLimiter enables per-user rate limiting of swap creation.
func (s *Service) SetRequestRateLimiter(limiter RateLimiter, perMinute int) {
	s.limiter = limiter
	s.createLimitPerMin = perMinute
}

// ResolveInternalUserID converts the identity provider's subject claim into
// the internal UUID used by the repositories. Handlers accept subjects from
// validated JWTs; everything below this boundary operates on UUIDs.
func (s *Service) ResolveInternalUserID(ctx context.Context, subject string) (string, error) {
	return s.repo.FindUserIDByAuthSubject(ctx, subject)
}

// GetProfile returns the caller's user record including coins, points, and
// badges.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}

// ClaimFreeCoin grants the periodic free coin when due. The bool result
// reports whether a coin was granted on this call.
func (s *Service) ClaimFreeCoin(ctx context.Context, userID uuid.UUID) (*domain.User, bool, error) {
	return s.repo.GrantFreeCoin(ctx, userID)
}

// CreateSwap initiates a swap request from requester to the receiver named in
// req, debiting the flat request fee from the requester's coin balance.
//
// A repeat request while an earlier PENDING swap between the same pair is
// still open returns the existing swap without a second debit: the fee pays
// for opening a negotiation, and re-tapping the request button must not burn
// a second coin.
func (s *Service) CreateSwap(ctx context.Context, requesterID uuid.UUID, req domain.CreateSwapRequest) (*domain.Swap, error) {
	if requesterID == req.ReceiverID {
		return nil, ErrSelfSwap
	}
	if req.Kind != domain.SwapKindSkill && req.Kind != domain.SwapKindProject {
		return nil, fmt.Errorf("unknown swap kind %q", req.Kind)
	}

	if s.limiter != nil && s.createLimitPerMin > 0 {
		count, retryAfter, err := s.limiter.ConsumeRateLimit(ctx, "swap_create", requesterID.String(), s.createLimitPerMin, time.Minute)
		if err != nil {
			// A broken limiter must not block swap creation.
			log.Printf("level=warn component=swap_engine msg=\"rate limiter unavailable\" err=%v", err)
		} else if count > s.createLimitPerMin {
			log.Printf("level=warn component=swap_engine op=create outcome=rate_limited requester_id=%s count=%d", requesterID, count)
			return nil, &RateLimitedError{RetryAfterSeconds: retryAfter}
		}
	}

	if _, err := s.repo.FindUserByID(ctx, req.ReceiverID); err != nil {
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	offered, requested, err := s.resolveItems(ctx, req)
	if err != nil {
		return nil, err
	}
	if offered.UserID != requesterID || requested.UserID != req.ReceiverID {
		return nil, ErrItemOwnership
	}

	// Idempotent re-request: return the open negotiation instead of opening
	// a duplicate.
	if existing, err := s.repo.FindPendingSwapBetween(ctx, requesterID, req.ReceiverID); err == nil {
		log.Printf("level=info component=swap_engine op=create outcome=dedup swap_id=%s requester_id=%s", existing.ID, requesterID)
		existing.Messages, _ = s.repo.ListMessages(ctx, existing.ID)
		return existing, nil
	} else if !errors.Is(err, store.ErrSwapNotFound) {
		return nil, err
	}

	swap := &domain.Swap{
		ID:          uuid.New(),
		Kind:        req.Kind,
		RequesterID: requesterID,
		ReceiverID:  req.ReceiverID,
		Status:      domain.SwapStatusPending,
	}
	switch req.Kind {
	case domain.SwapKindSkill:
		swap.OfferedSkillID = &offered.ID
		swap.RequestedSkillID = &requested.ID
	case domain.SwapKindProject:
		swap.OfferedProjectID = &offered.ID
		swap.RequestedProjectID = &requested.ID
		swap.Deadline = req.Deadline
	}

	seed := &domain.Message{
		ID:       uuid.New(),
		SwapID:   swap.ID,
		SenderID: requesterID.String(),
		Kind:     domain.MessageKindSwapRequestCard,
		Body:     fmt.Sprintf("Swap request: offering %q for %q", offered.Title, requested.Title),
	}

	if err := s.repo.CreateSwapWithDebit(ctx, swap, s.swapFee, seed); err != nil {
		return nil, err
	}
	swap.Messages = []domain.Message{*seed}

	log.Printf("level=info component=swap_engine op=create outcome=success swap_id=%s kind=%s requester_id=%s receiver_id=%s",
		swap.ID, swap.Kind, swap.RequesterID, swap.ReceiverID)

	s.notify(ctx, swap.ReceiverID, domain.NotificationKindSwapRequest,
		fmt.Sprintf("New swap request: %q for your %q", offered.Title, requested.Title), swap.ID)
	s.publish(ctx, "swap.created", swap, nil)
	return swap, nil
}

func (s *Service) resolveItems(ctx context.Context, req domain.CreateSwapRequest) (offered, requested *domain.CatalogItem, err error) {
	switch req.Kind {
	case domain.SwapKindSkill:
		if offered, err = s.repo.FindSkillItem(ctx, req.OfferedItemID); err != nil {
			return nil, nil, fmt.Errorf("failed to resolve offered skill: %w", err)
		}
		if requested, err = s.repo.FindSkillItem(ctx, req.RequestedItemID); err != nil {
			return nil, nil, fmt.Errorf("failed to resolve requested skill: %w", err)
		}
	case domain.SwapKindProject:
		if offered, err = s.repo.FindProjectItem(ctx, req.OfferedItemID); err != nil {
			return nil, nil, fmt.Errorf("failed to resolve offered project: %w", err)
		}
		if requested, err = s.repo.FindProjectItem(ctx, req.RequestedItemID); err != nil {
			return nil, nil, fmt.Errorf("failed to resolve requested project: %w", err)
		}
	}
	return offered, requested, nil
}

// AcceptSwap transitions a PENDING swap to ACCEPTED. Only the receiver may
// accept, and neither participant may already hold another active swap.
func (s *Service) AcceptSwap(ctx context.Context, callerID, swapID uuid.UUID) (*domain.Swap, error) {
	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.ReceiverID != callerID {
		return nil, ErrForbidden
	}

	updated, err := s.repo.AcceptSwap(ctx, swapID,
		"Swap Accepted! Both participants are now locked into this collaboration until completion.")
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=swap_engine op=accept outcome=success swap_id=%s receiver_id=%s", swapID, callerID)
	s.notify(ctx, updated.RequesterID, domain.NotificationKindSystem, "Your swap request was accepted.", swapID)
	s.publish(ctx, "swap.accepted", updated, nil)
	return updated, nil
}

// DeclineSwap transitions a PENDING swap to DECLINED. Only the receiver may
// decline. The requester's debited coin is not refunded.
func (s *Service) DeclineSwap(ctx context.Context, callerID, swapID uuid.UUID) (*domain.Swap, error) {
	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.ReceiverID != callerID {
		return nil, ErrForbidden
	}

	updated, err := s.repo.DeclineSwap(ctx, swapID, "Swap Request Declined.")
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=swap_engine op=decline outcome=success swap_id=%s receiver_id=%s", swapID, callerID)
	s.notify(ctx, updated.RequesterID, domain.NotificationKindSystem, "Your swap request was declined.", swapID)
	s.publish(ctx, "swap.declined", updated, nil)
	return updated, nil
}

// CancelSwap lets the requester withdraw a swap request that is still
// PENDING. Like decline, the request fee is not refunded.
func (s *Service) CancelSwap(ctx context.Context, callerID, swapID uuid.UUID) (*domain.Swap, error) {
	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RequesterID != callerID {
		return nil, ErrForbidden
	}

	updated, err := s.repo.CancelSwap(ctx, swapID, "Swap Request Cancelled by the requester.")
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=swap_engine op=cancel outcome=success swap_id=%s requester_id=%s", swapID, callerID)
	s.notify(ctx, updated.ReceiverID, domain.NotificationKindSystem, "A swap request sent to you was cancelled.", swapID)
	s.publish(ctx, "swap.cancelled", updated, nil)
	return updated, nil
}

// CompleteDirect finalizes an ACCEPTED skill swap in one step: records the
// completion evidence, awards points to both participants, and applies badge
// thresholds. Either party may complete.
func (s *Service) CompleteDirect(ctx context.Context, callerID, swapID uuid.UUID, req domain.CompleteSwapRequest) (*domain.Swap, error) {
	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.HasParticipant(callerID) {
		return nil, ErrForbidden
	}
	if swap.Kind != domain.SwapKindSkill {
		return nil, store.ErrInvalidTransition
	}

	updated, grants, err := s.repo.CompleteSwap(ctx, swapID, store.CompleteSwapParams{
		FromStatus: domain.SwapStatusAccepted,
		Proof:      &req.Proof,
		Note:       &req.Note,
		PointsEach: s.completionPoints,
		SystemNote: fmt.Sprintf("Swap Completed! +%d points awarded to both participants.", s.completionPoints),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=swap_engine op=complete outcome=success swap_id=%s caller_id=%s badges=%d", swapID, callerID, len(grants))
	s.notify(ctx, updated.Counterparty(callerID), domain.NotificationKindSystem, "Your swap was marked completed.", swapID)
	s.publish(ctx, "swap.completed", updated, grants)
	return updated, nil
}

// SubmitForReview moves an ACCEPTED project swap to IN_REVIEW with the
// delivered work attached. Either party may submit; points wait for the
// requester's review.
func (s *Service) SubmitForReview(ctx context.Context, callerID, swapID uuid.UUID, req domain.CompleteSwapRequest) (*domain.Swap, error) {
	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.HasParticipant(callerID) {
		return nil, ErrForbidden
	}
	if swap.Kind != domain.SwapKindProject {
		return nil, store.ErrInvalidTransition
	}

	updated, err := s.repo.SubmitSwapForReview(ctx, swapID, req.Proof, req.Note,
		"Work submitted. Waiting for the requester to review the delivery.")
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=swap_engine op=submit outcome=success swap_id=%s caller_id=%s", swapID, callerID)
	s.notify(ctx, updated.Counterparty(callerID), domain.NotificationKindSystem, "A delivery is waiting for your review.", swapID)
	s.publish(ctx, "swap.submitted", updated, nil)
	return updated, nil
}

// ReviewSwap records the requester's verdict on an IN_REVIEW project swap and
// finalizes it, awarding completion points to both participants. Only the
// original requester — the party receiving the delivered project — may
// review.
func (s *Service) ReviewSwap(ctx context.Context, callerID, swapID uuid.UUID, req domain.ReviewSwapRequest) (*domain.Swap, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RequesterID != callerID {
		return nil, ErrForbidden
	}

	updated, grants, err := s.repo.CompleteSwap(ctx, swapID, store.CompleteSwapParams{
		FromStatus:    domain.SwapStatusInReview,
		Rating:        &req.Rating,
		ReviewComment: &req.Comment,
		PointsEach:    s.completionPoints,
		SystemNote: fmt.Sprintf("Review submitted (%d/5). Swap Completed! +%d points awarded to both participants.",
			req.Rating, s.completionPoints),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=swap_engine op=review outcome=success swap_id=%s requester_id=%s rating=%d", swapID, callerID, req.Rating)
	s.notify(ctx, updated.Counterparty(callerID), domain.NotificationKindSystem,
		fmt.Sprintf("Your delivery was reviewed: %d/5.", req.Rating), swapID)
	s.publish(ctx, "swap.completed", updated, grants)
	return updated, nil
}

// SendMessage appends a chat message to a swap's conversation log. Only
// participants may post.
func (s *Service) SendMessage(ctx context.Context, callerID, swapID uuid.UUID, req domain.SendMessageRequest) (*domain.Message, error) {
	if req.Text == "" && req.AttachmentURL == nil {
		return nil, ErrEmptyMessage
	}

	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.HasParticipant(callerID) {
		return nil, ErrForbidden
	}

	msg := &domain.Message{
		ID:            uuid.New(),
		SwapID:        swapID,
		SenderID:      callerID.String(),
		Kind:          domain.MessageKindText,
		Body:          req.Text,
		AttachmentURL: req.AttachmentURL,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.notify(ctx, swap.Counterparty(callerID), domain.NotificationKindMessage, "New message in your swap chat.", swapID)
	return msg, nil
}

// GetSwap returns a swap with its full conversation log. Only participants
// may read it.
func (s *Service) GetSwap(ctx context.Context, callerID, swapID uuid.UUID) (*domain.Swap, error) {
	swap, err := s.repo.FindSwapByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.HasParticipant(callerID) {
		return nil, ErrForbidden
	}
	swap.Messages, err = s.repo.ListMessages(ctx, swapID)
	if err != nil {
		return nil, err
	}
	return swap, nil
}

// ListSwaps returns every swap the caller participates in.
func (s *Service) ListSwaps(ctx context.Context, callerID uuid.UUID) ([]domain.Swap, error) {
	return s.repo.ListSwapsByUser(ctx, callerID)
}

// ListNotifications returns the caller's in-app notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, callerID uuid.UUID) ([]domain.Notification, error) {
	return s.repo.ListNotificationsByUser(ctx, callerID)
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, callerID, notificationID uuid.UUID) error {
	ok, err := s.repo.MarkNotificationRead(ctx, callerID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotificationNotFound
	}
	return nil
}

// notify writes an in-app notification for userID. Notification delivery is
// an observer of committed transitions, so failures are logged, never
// surfaced.
func (s *Service) notify(ctx context.Context, userID uuid.UUID, kind domain.NotificationKind, content string, swapID uuid.UUID) {
	link := "/swaps/" + swapID.String()
	n := &domain.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Kind:    kind,
		Content: content,
		Link:    &link,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		log.Printf("level=warn component=swap_engine msg=\"notification write failed\" user_id=%s err=%v", userID, err)
	}
}

// publish emits a lifecycle event after a committed transition.
func (s *Service) publish(ctx context.Context, routingKey string, swap *domain.Swap, grants []store.BadgeGrant) {
	if s.events == nil {
		return
	}

	event := rabbitmq.SwapEvent{
		SwapID:      swap.ID,
		Kind:        string(swap.Kind),
		Status:      string(swap.Status),
		RequesterID: swap.RequesterID,
		ReceiverID:  swap.ReceiverID,
		Timestamp:   time.Now(),
	}
	if len(grants) > 0 {
		event.AwardedBadges = make(map[string][]string)
		for _, g := range grants {
			key := g.UserID.String()
			event.AwardedBadges[key] = append(event.AwardedBadges[key], g.Badge)
		}
	}

	if err := s.events.PublishSwapEvent(ctx, routingKey, event); err != nil {
		log.Printf("level=warn component=swap_engine msg=\"event publish failed\" routing_key=%s swap_id=%s err=%v", routingKey, swap.ID, err)
	}
}
