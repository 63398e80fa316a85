/**
 * @description
 * This file defines the `Repository` interface: the contract for all data
 * access the swap-service needs. The engine's atomicity guarantees lean on
 * this boundary — every multi-record operation (debit + swap insert, state
 * transition + message append + point award) is a single repository call that
 * either fully applies or fully rolls back, so the business layer never sees
 * partial state.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/swaply/swap-service/internal/domain"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrSwapNotFound         = errors.New("swap not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInsufficientFunds    = errors.New("insufficient coins")
	ErrInvalidTransition    = errors.New("transition not permitted from current swap status")
)

// UserBusyError reports which participant blocked an accept because they
// already hold an active swap.
type UserBusyError struct {
	UserID uuid.UUID
}

func (e *UserBusyError) Error() string {
	return fmt.Sprintf("user %s is locked into another active swap", e.UserID)
}

// BadgeGrant records one badge awarded to one user during a completion.
type BadgeGrant struct {
	UserID uuid.UUID
	Badge  string
}

// CompleteSwapParams carries everything a completion transition writes.
// FromStatus is the required current status (ACCEPTED for direct skill
// completion, IN_REVIEW for reviewed project completion); the optional
// artifact fields are written only when non-nil.
type CompleteSwapParams struct {
	FromStatus    domain.SwapStatus
	Proof         *string
	Note          *string
	Rating        *int
	ReviewComment *string
	PointsEach    int64
	SystemNote    string
}

// Repository defines the set of methods for interacting with persistent state.
// Implementations must make each method atomic: concurrent callers observe
// either none or all of a method's effects.
type Repository interface {
	// User and ledger methods. Coin debits and point awards have no
	// standalone entry points: they only happen inside the swap operations
	// below, which keeps the ledger invariants enforceable in one place.
	FindUserIDByAuthSubject(ctx context.Context, subject string) (string, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GrantFreeCoin(ctx context.Context, userID uuid.UUID) (*domain.User, bool, error)

	// Catalog reference methods (read-only)
	FindSkillItem(ctx context.Context, skillID uuid.UUID) (*domain.CatalogItem, error)
	FindProjectItem(ctx context.Context, projectID uuid.UUID) (*domain.CatalogItem, error)

	// Swap lifecycle methods
	FindSwapByID(ctx context.Context, swapID uuid.UUID) (*domain.Swap, error)
	ListSwapsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Swap, error)
	FindPendingSwapBetween(ctx context.Context, requesterID, receiverID uuid.UUID) (*domain.Swap, error)
	CreateSwapWithDebit(ctx context.Context, swap *domain.Swap, fee int64, seed *domain.Message) error
	AcceptSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error)
	DeclineSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error)
	CancelSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error)
	SubmitSwapForReview(ctx context.Context, swapID uuid.UUID, proof, note, systemNote string) (*domain.Swap, error)
	CompleteSwap(ctx context.Context, swapID uuid.UUID, params CompleteSwapParams) (*domain.Swap, []BadgeGrant, error)

	// Conversation log methods
	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, swapID uuid.UUID) ([]domain.Message, error)

	// In-app notification methods
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID uuid.UUID, notificationID uuid.UUID) (bool, error)
}
