/**
 * @description
 * This file provides an in-memory implementation of the `Repository`
 * interface. It backs local/offline mode and the engine's scenario tests:
 * the same contract as the PostgreSQL repository, with atomicity provided by
 * a single mutex instead of database transactions.
 *
 * @notes
 * - Every method takes the lock for its whole duration, so multi-record
 *   operations are atomic and the busy check cannot race, matching the
 *   guarantees of the transactional implementation.
 * - Returned entities are copies; callers never share memory with the store.
 */

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swaply/swap-service/internal/domain"
)

// MemoryRepository is an in-memory implementation of the Repository interface.
type MemoryRepository struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*domain.User
	skills        map[uuid.UUID]*domain.Skill
	projects      map[uuid.UUID]*domain.Project
	swaps         map[uuid.UUID]*domain.Swap
	messages      map[uuid.UUID][]domain.Message
	notifications map[uuid.UUID][]domain.Notification
	nextSeq       int64
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[uuid.UUID]*domain.User),
		skills:        make(map[uuid.UUID]*domain.Skill),
		projects:      make(map[uuid.UUID]*domain.Project),
		swaps:         make(map[uuid.UUID]*domain.Swap),
		messages:      make(map[uuid.UUID][]domain.Message),
		notifications: make(map[uuid.UUID][]domain.Notification),
	}
}

// SeedUser inserts a user, assigning an id when missing. Intended for tests
// and local mode bootstrap.
func (r *MemoryRepository) SeedUser(user domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = &user
	copied := user
	return copied
}

// SeedSkill inserts a skill listing.
func (r *MemoryRepository) SeedSkill(skill domain.Skill) domain.Skill {
	r.mu.Lock()
	defer r.mu.Unlock()
	if skill.ID == uuid.Nil {
		skill.ID = uuid.New()
	}
	skill.CreatedAt = time.Now()
	r.skills[skill.ID] = &skill
	return skill
}

// SeedProject inserts a project listing.
func (r *MemoryRepository) SeedProject(project domain.Project) domain.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()
	r.projects[project.ID] = &project
	return project
}

func (r *MemoryRepository) FindUserIDByAuthSubject(ctx context.Context, subject string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.AuthSubject == subject {
			return u.ID.String(), nil
		}
	}
	return "", ErrUserNotFound
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userCopy(userID)
}

func (r *MemoryRepository) userCopy(userID uuid.UUID) (*domain.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	copied.Badges = append([]string(nil), u.Badges...)
	return &copied, nil
}

// awardPointsLocked bumps points and applies badge thresholds. Caller holds
// the lock.
func (r *MemoryRepository) awardPointsLocked(userID uuid.UUID, amount int64) ([]string, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Points += amount

	completed := 0
	for _, s := range r.swaps {
		if s.HasParticipant(userID) && s.Status == domain.SwapStatusCompleted {
			completed++
		}
	}

	granted := domain.MissingBadges(u.Badges, completed, u.Points)
	u.Badges = append(u.Badges, granted...)
	u.UpdatedAt = time.Now()
	return granted, nil
}

func (r *MemoryRepository) GrantFreeCoin(ctx context.Context, userID uuid.UUID) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, false, ErrUserNotFound
	}
	granted := time.Now().After(u.NextFreeCoinDate)
	if granted {
		u.Coins++
		u.NextFreeCoinDate = time.Now().AddDate(0, 1, 0)
		u.UpdatedAt = time.Now()
	}
	user, err := r.userCopy(userID)
	return user, granted, err
}

func (r *MemoryRepository) FindSkillItem(ctx context.Context, skillID uuid.UUID) (*domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skills[skillID]
	if !ok {
		return nil, ErrSkillNotFound
	}
	return &domain.CatalogItem{ID: s.ID, UserID: s.UserID, Title: s.Title}, nil
}

func (r *MemoryRepository) FindProjectItem(ctx context.Context, projectID uuid.UUID) (*domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return &domain.CatalogItem{ID: p.ID, UserID: p.UserID, Title: p.Title}, nil
}

func (r *MemoryRepository) FindSwapByID(ctx context.Context, swapID uuid.UUID) (*domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swapCopy(swapID)
}

func (r *MemoryRepository) swapCopy(swapID uuid.UUID) (*domain.Swap, error) {
	s, ok := r.swaps[swapID]
	if !ok {
		return nil, ErrSwapNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *MemoryRepository) ListSwapsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swaps []domain.Swap
	for _, s := range r.swaps {
		if s.HasParticipant(userID) {
			swaps = append(swaps, *s)
		}
	}
	sort.Slice(swaps, func(i, j int) bool { return swaps[i].UpdatedAt.After(swaps[j].UpdatedAt) })
	return swaps, nil
}

func (r *MemoryRepository) FindPendingSwapBetween(ctx context.Context, requesterID, receiverID uuid.UUID) (*domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *domain.Swap
	for _, s := range r.swaps {
		if s.RequesterID == requesterID && s.ReceiverID == receiverID && s.Status == domain.SwapStatusPending {
			if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
				oldest = s
			}
		}
	}
	if oldest == nil {
		return nil, ErrSwapNotFound
	}
	copied := *oldest
	return &copied, nil
}

func (r *MemoryRepository) CreateSwapWithDebit(ctx context.Context, swap *domain.Swap, fee int64, seed *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[swap.RequesterID]
	if !ok {
		return ErrUserNotFound
	}
	if u.Coins < fee {
		return ErrInsufficientFunds
	}

	u.Coins -= fee
	now := time.Now()
	u.UpdatedAt = now
	swap.CreatedAt = now
	swap.UpdatedAt = now

	stored := *swap
	r.swaps[swap.ID] = &stored
	r.appendMessageLocked(seed)
	return nil
}

func (r *MemoryRepository) appendMessageLocked(msg *domain.Message) {
	r.nextSeq++
	msg.Seq = r.nextSeq
	msg.CreatedAt = time.Now()
	r.messages[msg.SwapID] = append(r.messages[msg.SwapID], *msg)
}

func (r *MemoryRepository) AcceptSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[swapID]
	if !ok {
		return nil, ErrSwapNotFound
	}
	if s.Status != domain.SwapStatusPending {
		return nil, ErrInvalidTransition
	}

	for _, participant := range []uuid.UUID{s.RequesterID, s.ReceiverID} {
		for _, other := range r.swaps {
			if other.ID != swapID && other.HasParticipant(participant) && other.Status.Active() {
				return nil, &UserBusyError{UserID: participant}
			}
		}
	}

	s.Status = domain.SwapStatusAccepted
	s.UpdatedAt = time.Now()
	r.appendMessageLocked(systemMessage(swapID, systemNote))
	copied := *s
	return &copied, nil
}

func (r *MemoryRepository) DeclineSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error) {
	return r.closePending(swapID, domain.SwapStatusDeclined, systemNote)
}

func (r *MemoryRepository) CancelSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error) {
	return r.closePending(swapID, domain.SwapStatusCancelled, systemNote)
}

func (r *MemoryRepository) closePending(swapID uuid.UUID, to domain.SwapStatus, systemNote string) (*domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[swapID]
	if !ok {
		return nil, ErrSwapNotFound
	}
	if s.Status != domain.SwapStatusPending {
		return nil, ErrInvalidTransition
	}

	s.Status = to
	s.UpdatedAt = time.Now()
	r.appendMessageLocked(systemMessage(swapID, systemNote))
	copied := *s
	return &copied, nil
}

func (r *MemoryRepository) SubmitSwapForReview(ctx context.Context, swapID uuid.UUID, proof, note, systemNote string) (*domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[swapID]
	if !ok {
		return nil, ErrSwapNotFound
	}
	if s.Status != domain.SwapStatusAccepted {
		return nil, ErrInvalidTransition
	}

	s.Status = domain.SwapStatusInReview
	s.CompletionProof = &proof
	s.CompletionNote = &note
	s.UpdatedAt = time.Now()
	r.appendMessageLocked(systemMessage(swapID, systemNote))
	copied := *s
	return &copied, nil
}

func (r *MemoryRepository) CompleteSwap(ctx context.Context, swapID uuid.UUID, params CompleteSwapParams) (*domain.Swap, []BadgeGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.swaps[swapID]
	if !ok {
		return nil, nil, ErrSwapNotFound
	}
	if s.Status != params.FromStatus {
		return nil, nil, ErrInvalidTransition
	}

	s.Status = domain.SwapStatusCompleted
	if params.Proof != nil {
		s.CompletionProof = params.Proof
	}
	if params.Note != nil {
		s.CompletionNote = params.Note
	}
	if params.Rating != nil {
		s.Rating = params.Rating
	}
	if params.ReviewComment != nil {
		s.ReviewComment = params.ReviewComment
	}
	s.UpdatedAt = time.Now()
	r.appendMessageLocked(systemMessage(swapID, params.SystemNote))

	participants := []uuid.UUID{s.RequesterID, s.ReceiverID}
	if participants[1].String() < participants[0].String() {
		participants[0], participants[1] = participants[1], participants[0]
	}

	var grants []BadgeGrant
	for _, participant := range participants {
		granted, err := r.awardPointsLocked(participant, params.PointsEach)
		if err != nil {
			return nil, nil, err
		}
		for _, badge := range granted {
			grants = append(grants, BadgeGrant{UserID: participant, Badge: badge})
		}
	}

	copied := *s
	return &copied, grants, nil
}

func (r *MemoryRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.swaps[msg.SwapID]; !ok {
		return ErrSwapNotFound
	}
	r.appendMessageLocked(msg)
	return nil
}

func (r *MemoryRepository) ListMessages(ctx context.Context, swapID uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Message(nil), r.messages[swapID]...), nil
}

func (r *MemoryRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.CreatedAt = time.Now()
	r.notifications[n.UserID] = append(r.notifications[n.UserID], *n)
	return nil
}

func (r *MemoryRepository) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := append([]domain.Notification(nil), r.notifications[userID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryRepository) MarkNotificationRead(ctx context.Context, userID uuid.UUID, notificationID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.notifications[userID]
	for i := range items {
		if items[i].ID == notificationID {
			items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}
