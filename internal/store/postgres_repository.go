/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. All lifecycle transitions run inside a single pgx transaction
 * with `SELECT ... FOR UPDATE` row locks: the swap row first, then the
 * participant user rows in ascending id order, so concurrent accepts and
 * completions serialize deterministically and the per-user exclusivity check
 * cannot race.
 *
 * @dependencies
 * - context, fmt, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/swaply/swap-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const swapColumns = `id, kind, requester_id, receiver_id, offered_skill_id, requested_skill_id,
	offered_project_id, requested_project_id, status, deadline, completion_proof, completion_note,
	rating, review_comment, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwap(row rowScanner) (*domain.Swap, error) {
	var s domain.Swap
	err := row.Scan(
		&s.ID, &s.Kind, &s.RequesterID, &s.ReceiverID,
		&s.OfferedSkillID, &s.RequestedSkillID,
		&s.OfferedProjectID, &s.RequestedProjectID,
		&s.Status, &s.Deadline, &s.CompletionProof, &s.CompletionNote,
		&s.Rating, &s.ReviewComment, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindUserIDByAuthSubject resolves the internal UUID from the identity
// provider's subject claim.
func (r *PostgresRepository) FindUserIDByAuthSubject(ctx context.Context, subject string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, "SELECT id FROM users WHERE auth_subject = $1", subject).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return id, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, auth_subject, display_name, bio, location, job_title, avatar_url,
			coins, points, badges, next_free_coin_date, created_at, updated_at
		FROM users WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.AuthSubject, &user.DisplayName, &user.Bio, &user.Location,
		&user.JobTitle, &user.AvatarURL, &user.Coins, &user.Points, &user.Badges,
		&user.NextFreeCoinDate, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// awardPointsInTx locks the user row, bumps points, and appends missing
// badges derived from the completed-swap count visible inside the
// transaction. Callers own commit/rollback.
func awardPointsInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (*domain.User, []string, error) {
	var user domain.User
	query := `
		SELECT id, auth_subject, display_name, bio, location, job_title, avatar_url,
			coins, points, badges, next_free_coin_date, created_at, updated_at
		FROM users WHERE id = $1
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.AuthSubject, &user.DisplayName, &user.Bio, &user.Location,
		&user.JobTitle, &user.AvatarURL, &user.Coins, &user.Points, &user.Badges,
		&user.NextFreeCoinDate, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	newPoints := user.Points + amount

	var completed int
	countQuery := `
		SELECT COUNT(*) FROM swaps
		WHERE (requester_id = $1 OR receiver_id = $1) AND status = 'COMPLETED'
	`
	if err := tx.QueryRow(ctx, countQuery, userID).Scan(&completed); err != nil {
		return nil, nil, fmt.Errorf("failed to count completed swaps: %w", err)
	}

	granted := domain.MissingBadges(user.Badges, completed, newPoints)
	if granted == nil {
		granted = []string{}
	}

	updateQuery := `
		UPDATE users SET points = $2, badges = badges || $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, updateQuery, userID, newPoints, granted).Scan(&user.UpdatedAt); err != nil {
		return nil, nil, fmt.Errorf("failed to award points: %w", err)
	}

	user.Points = newPoints
	user.Badges = append(user.Badges, granted...)
	return &user, granted, nil
}

// GrantFreeCoin grants the periodic free coin when the user's grant date has
// passed, advancing the date one month. The bool result reports whether a
// coin was granted.
func (r *PostgresRepository) GrantFreeCoin(ctx context.Context, userID uuid.UUID) (*domain.User, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var due time.Time
	err = tx.QueryRow(ctx, "SELECT next_free_coin_date FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&due)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}

	granted := time.Now().After(due)
	if granted {
		query := `
			UPDATE users
			SET coins = coins + 1, next_free_coin_date = NOW() + INTERVAL '1 month', updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query, userID); err != nil {
			return nil, false, fmt.Errorf("failed to grant free coin: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit free coin grant: %w", err)
	}

	user, err := r.FindUserByID(ctx, userID)
	if err != nil {
		return nil, granted, err
	}
	return user, granted, nil
}

// FindSkillItem resolves the slim catalog view of a skill.
func (r *PostgresRepository) FindSkillItem(ctx context.Context, skillID uuid.UUID) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := r.db.QueryRow(ctx, "SELECT id, user_id, title FROM skills WHERE id = $1", skillID).
		Scan(&item.ID, &item.UserID, &item.Title)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindProjectItem resolves the slim catalog view of a project.
func (r *PostgresRepository) FindProjectItem(ctx context.Context, projectID uuid.UUID) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := r.db.QueryRow(ctx, "SELECT id, user_id, title FROM projects WHERE id = $1", projectID).
		Scan(&item.ID, &item.UserID, &item.Title)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindSwapByID retrieves a swap without its conversation log.
func (r *PostgresRepository) FindSwapByID(ctx context.Context, swapID uuid.UUID) (*domain.Swap, error) {
	query := fmt.Sprintf("SELECT %s FROM swaps WHERE id = $1", swapColumns)
	swap, err := scanSwap(r.db.QueryRow(ctx, query, swapID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	return swap, nil
}

// ListSwapsByUser returns every swap the user participates in, most recently
// updated first.
func (r *PostgresRepository) ListSwapsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Swap, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM swaps
		WHERE requester_id = $1 OR receiver_id = $1
		ORDER BY updated_at DESC
	`, swapColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var swaps []domain.Swap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, *s)
	}
	return swaps, rows.Err()
}

// FindPendingSwapBetween returns the oldest PENDING swap from requester to
// receiver, or ErrSwapNotFound when there is none.
func (r *PostgresRepository) FindPendingSwapBetween(ctx context.Context, requesterID, receiverID uuid.UUID) (*domain.Swap, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM swaps
		WHERE requester_id = $1 AND receiver_id = $2 AND status = 'PENDING'
		ORDER BY created_at
		LIMIT 1
	`, swapColumns)
	swap, err := scanSwap(r.db.QueryRow(ctx, query, requesterID, receiverID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	return swap, nil
}

// CreateSwapWithDebit atomically debits the requester's coin balance and
// creates the swap with its seeded swap-request-card message. If any step
// fails nothing is applied.
func (r *PostgresRepository) CreateSwapWithDebit(ctx context.Context, swap *domain.Swap, fee int64, seed *domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Lock the requester's row and validate funds.
	var coins int64
	err = tx.QueryRow(ctx, "SELECT coins FROM users WHERE id = $1 FOR UPDATE", swap.RequesterID).Scan(&coins)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock requester row: %w", err)
	}
	if coins < fee {
		return ErrInsufficientFunds
	}

	// 2. Debit the request fee.
	if _, err := tx.Exec(ctx, "UPDATE users SET coins = coins - $2, updated_at = NOW() WHERE id = $1", swap.RequesterID, fee); err != nil {
		return fmt.Errorf("failed to debit request fee: %w", err)
	}

	// 3. Insert the swap record.
	insertSwap := `
		INSERT INTO swaps (
			id, kind, requester_id, receiver_id, offered_skill_id, requested_skill_id,
			offered_project_id, requested_project_id, status, deadline
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, insertSwap,
		swap.ID, swap.Kind, swap.RequesterID, swap.ReceiverID,
		swap.OfferedSkillID, swap.RequestedSkillID,
		swap.OfferedProjectID, swap.RequestedProjectID,
		swap.Status, swap.Deadline,
	).Scan(&swap.CreatedAt, &swap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert swap record: %w", err)
	}

	// 4. Seed the conversation log with the swap-request card.
	if err := insertMessageInTx(ctx, tx, seed); err != nil {
		return fmt.Errorf("failed to seed swap-request message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit swap creation: %w", err)
	}
	return nil
}

// insertMessageInTx appends a message row, letting the database assign the
// sequence number and timestamp that define log order.
func insertMessageInTx(ctx context.Context, tx pgx.Tx, msg *domain.Message) error {
	query := `
		INSERT INTO swap_messages (id, swap_id, sender_id, kind, body, attachment_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq, created_at
	`
	return tx.QueryRow(ctx, query, msg.ID, msg.SwapID, msg.SenderID, msg.Kind, msg.Body, msg.AttachmentURL).
		Scan(&msg.Seq, &msg.CreatedAt)
}

// lockSwapForTransition locks the swap row and verifies its current status.
func lockSwapForTransition(ctx context.Context, tx pgx.Tx, swapID uuid.UUID, from domain.SwapStatus) (*domain.Swap, error) {
	query := fmt.Sprintf("SELECT %s FROM swaps WHERE id = $1 FOR UPDATE", swapColumns)
	swap, err := scanSwap(tx.QueryRow(ctx, query, swapID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to lock swap row: %w", err)
	}
	if swap.Status != from {
		return nil, ErrInvalidTransition
	}
	return swap, nil
}

// lockParticipants locks both participant user rows in ascending id order so
// concurrent accepts involving overlapping users serialize instead of
// deadlocking.
func lockParticipants(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) error {
	rows, err := tx.Query(ctx, "SELECT id FROM users WHERE id = $1 OR id = $2 ORDER BY id FOR UPDATE", a, b)
	if err != nil {
		return fmt.Errorf("failed to lock participant rows: %w", err)
	}
	defer rows.Close()
	count := 0
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if count != 2 {
		return ErrUserNotFound
	}
	return nil
}

// AcceptSwap transitions a PENDING swap to ACCEPTED after verifying neither
// participant already holds an active swap. The busy check runs under the
// participant row locks, so two racing accepts cannot both succeed.
func (r *PostgresRepository) AcceptSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	swap, err := lockSwapForTransition(ctx, tx, swapID, domain.SwapStatusPending)
	if err != nil {
		return nil, err
	}

	if err := lockParticipants(ctx, tx, swap.RequesterID, swap.ReceiverID); err != nil {
		return nil, err
	}

	busyQuery := `
		SELECT EXISTS(
			SELECT 1 FROM swaps
			WHERE (requester_id = $1 OR receiver_id = $1)
				AND status IN ('ACCEPTED', 'IN_REVIEW')
				AND id <> $2
		)
	`
	for _, participant := range []uuid.UUID{swap.RequesterID, swap.ReceiverID} {
		var busy bool
		if err := tx.QueryRow(ctx, busyQuery, participant, swapID).Scan(&busy); err != nil {
			return nil, fmt.Errorf("failed to check exclusivity lock: %w", err)
		}
		if busy {
			return nil, &UserBusyError{UserID: participant}
		}
	}

	err = tx.QueryRow(ctx, "UPDATE swaps SET status = 'ACCEPTED', updated_at = NOW() WHERE id = $1 RETURNING updated_at", swapID).
		Scan(&swap.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update swap status: %w", err)
	}
	swap.Status = domain.SwapStatusAccepted

	msg := systemMessage(swapID, systemNote)
	if err := insertMessageInTx(ctx, tx, msg); err != nil {
		return nil, fmt.Errorf("failed to append system message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit accept: %w", err)
	}
	return swap, nil
}

// DeclineSwap transitions a PENDING swap to DECLINED. The requester's debited
// coin is not refunded; the fee pays for the request, not the outcome.
func (r *PostgresRepository) DeclineSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error) {
	return r.closePendingSwap(ctx, swapID, domain.SwapStatusDeclined, systemNote)
}

// CancelSwap transitions a PENDING swap to CANCELLED, with the same
// no-refund semantics as decline.
func (r *PostgresRepository) CancelSwap(ctx context.Context, swapID uuid.UUID, systemNote string) (*domain.Swap, error) {
	return r.closePendingSwap(ctx, swapID, domain.SwapStatusCancelled, systemNote)
}

func (r *PostgresRepository) closePendingSwap(ctx context.Context, swapID uuid.UUID, to domain.SwapStatus, systemNote string) (*domain.Swap, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	swap, err := lockSwapForTransition(ctx, tx, swapID, domain.SwapStatusPending)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, "UPDATE swaps SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at", swapID, to).
		Scan(&swap.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update swap status: %w", err)
	}
	swap.Status = to

	if err := insertMessageInTx(ctx, tx, systemMessage(swapID, systemNote)); err != nil {
		return nil, fmt.Errorf("failed to append system message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit close: %w", err)
	}
	return swap, nil
}

// SubmitSwapForReview records the completion artifacts on an ACCEPTED project
// swap and moves it to IN_REVIEW. No points are awarded until the requester
// reviews the delivery.
func (r *PostgresRepository) SubmitSwapForReview(ctx context.Context, swapID uuid.UUID, proof, note, systemNote string) (*domain.Swap, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	swap, err := lockSwapForTransition(ctx, tx, swapID, domain.SwapStatusAccepted)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE swaps
		SET status = 'IN_REVIEW', completion_proof = $2, completion_note = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, query, swapID, proof, note).Scan(&swap.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update swap status: %w", err)
	}
	swap.Status = domain.SwapStatusInReview
	swap.CompletionProof = &proof
	swap.CompletionNote = &note

	if err := insertMessageInTx(ctx, tx, systemMessage(swapID, systemNote)); err != nil {
		return nil, fmt.Errorf("failed to append system message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit submit: %w", err)
	}
	return swap, nil
}

// CompleteSwap finalizes a swap: records the completion or review artifacts,
// moves the status to COMPLETED, appends the system message, awards points to
// both participants, and applies badge thresholds — all within one
// transaction.
func (r *PostgresRepository) CompleteSwap(ctx context.Context, swapID uuid.UUID, params CompleteSwapParams) (*domain.Swap, []BadgeGrant, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	swap, err := lockSwapForTransition(ctx, tx, swapID, params.FromStatus)
	if err != nil {
		return nil, nil, err
	}

	query := `
		UPDATE swaps
		SET status = 'COMPLETED',
			completion_proof = COALESCE($2, completion_proof),
			completion_note = COALESCE($3, completion_note),
			rating = COALESCE($4, rating),
			review_comment = COALESCE($5, review_comment),
			updated_at = NOW()
		WHERE id = $1
		RETURNING completion_proof, completion_note, rating, review_comment, updated_at
	`
	err = tx.QueryRow(ctx, query, swapID, params.Proof, params.Note, params.Rating, params.ReviewComment).
		Scan(&swap.CompletionProof, &swap.CompletionNote, &swap.Rating, &swap.ReviewComment, &swap.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to finalize swap: %w", err)
	}
	swap.Status = domain.SwapStatusCompleted

	if err := insertMessageInTx(ctx, tx, systemMessage(swapID, params.SystemNote)); err != nil {
		return nil, nil, fmt.Errorf("failed to append system message: %w", err)
	}

	// Award points to both participants in ascending id order. The completed
	// count queried inside the transaction already sees this swap's new
	// status, so badge thresholds include it.
	participants := []uuid.UUID{swap.RequesterID, swap.ReceiverID}
	if participants[1].String() < participants[0].String() {
		participants[0], participants[1] = participants[1], participants[0]
	}

	var grants []BadgeGrant
	for _, participant := range participants {
		_, granted, err := awardPointsInTx(ctx, tx, participant, params.PointsEach)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to award completion points: %w", err)
		}
		for _, badge := range granted {
			grants = append(grants, BadgeGrant{UserID: participant, Badge: badge})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit completion: %w", err)
	}
	return swap, grants, nil
}

func systemMessage(swapID uuid.UUID, body string) *domain.Message {
	return &domain.Message{
		ID:       uuid.New(),
		SwapID:   swapID,
		SenderID: domain.SystemSenderID,
		Kind:     domain.MessageKindSystem,
		Body:     body,
	}
}

// AppendMessage appends a chat entry to a swap's conversation log.
func (r *PostgresRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM swaps WHERE id = $1)", msg.SwapID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrSwapNotFound
	}

	if err := insertMessageInTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit message append: %w", err)
	}
	return nil
}

// ListMessages returns a swap's conversation log in append order.
func (r *PostgresRepository) ListMessages(ctx context.Context, swapID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, swap_id, seq, sender_id, kind, body, attachment_url, created_at
		FROM swap_messages
		WHERE swap_id = $1
		ORDER BY seq
	`
	rows, err := r.db.Query(ctx, query, swapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SwapID, &m.Seq, &m.SenderID, &m.Kind, &m.Body, &m.AttachmentURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreateNotification inserts an in-app notification row.
func (r *PostgresRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, content, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, n.ID, n.UserID, n.Kind, n.Content, n.Link).Scan(&n.CreatedAt)
}

// ListNotificationsByUser returns a user's notifications, newest first.
func (r *PostgresRepository) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, kind, content, link, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 100
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Content, &n.Link, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkNotificationRead flags one of the user's notifications as read. Returns
// false when the notification does not exist or belongs to another user.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, userID uuid.UUID, notificationID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, "UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2", notificationID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
