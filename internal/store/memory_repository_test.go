package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/swaply/swap-service/internal/domain"
)

func seedSwapPair(t *testing.T, repo *MemoryRepository, coins int64) (domain.User, domain.User) {
	t.Helper()
	requester := repo.SeedUser(domain.User{DisplayName: "alice", Coins: coins})
	receiver := repo.SeedUser(domain.User{DisplayName: "bob", Coins: coins})
	return requester, receiver
}

func newPendingSwap(t *testing.T, repo *MemoryRepository, requester, receiver domain.User) *domain.Swap {
	t.Helper()
	swap := &domain.Swap{
		ID:          uuid.New(),
		Kind:        domain.SwapKindSkill,
		RequesterID: requester.ID,
		ReceiverID:  receiver.ID,
		Status:      domain.SwapStatusPending,
	}
	seed := &domain.Message{
		ID:       uuid.New(),
		SwapID:   swap.ID,
		SenderID: requester.ID.String(),
		Kind:     domain.MessageKindSwapRequestCard,
		Body:     "Swap request",
	}
	if err := repo.CreateSwapWithDebit(context.Background(), swap, 1, seed); err != nil {
		t.Fatalf("CreateSwapWithDebit failed: %v", err)
	}
	return swap
}

func TestCreateSwapWithDebit_DebitsFeeAndSeedsMessage(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 3)

	swap := newPendingSwap(t, repo, requester, receiver)

	user, err := repo.FindUserByID(context.Background(), requester.ID)
	if err != nil {
		t.Fatalf("FindUserByID failed: %v", err)
	}
	if user.Coins != 2 {
		t.Fatalf("expected requester balance 2 after fee, got %d", user.Coins)
	}

	msgs, err := repo.ListMessages(context.Background(), swap.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one seeded message, got %d", len(msgs))
	}
	if msgs[0].Kind != domain.MessageKindSwapRequestCard {
		t.Fatalf("expected swap request card message, got %s", msgs[0].Kind)
	}
	if msgs[0].Seq == 0 {
		t.Fatal("expected seeded message to receive a sequence number")
	}
}

func TestCreateSwapWithDebit_InsufficientFundsLeavesNoTrace(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 0)

	swap := &domain.Swap{
		ID:          uuid.New(),
		Kind:        domain.SwapKindSkill,
		RequesterID: requester.ID,
		ReceiverID:  receiver.ID,
		Status:      domain.SwapStatusPending,
	}
	seed := &domain.Message{ID: uuid.New(), SwapID: swap.ID, SenderID: requester.ID.String(), Kind: domain.MessageKindSwapRequestCard}

	err := repo.CreateSwapWithDebit(context.Background(), swap, 1, seed)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if _, err := repo.FindSwapByID(context.Background(), swap.ID); !errors.Is(err, ErrSwapNotFound) {
		t.Fatalf("expected no swap to be recorded, got %v", err)
	}
	msgs, _ := repo.ListMessages(context.Background(), swap.ID)
	if len(msgs) != 0 {
		t.Fatalf("expected no messages to be recorded, got %d", len(msgs))
	}
}

func TestAcceptSwap_BusyParticipantRejected(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 5)
	third := repo.SeedUser(domain.User{DisplayName: "carol", Coins: 5})

	first := newPendingSwap(t, repo, requester, receiver)
	if _, err := repo.AcceptSwap(context.Background(), first.ID, "accepted"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	// receiver is now locked into the first swap
	second := newPendingSwap(t, repo, third, receiver)
	_, err := repo.AcceptSwap(context.Background(), second.ID, "accepted")
	var busy *UserBusyError
	if !errors.As(err, &busy) {
		t.Fatalf("expected UserBusyError, got %v", err)
	}
	if busy.UserID != receiver.ID {
		t.Fatalf("expected busy error to name the receiver %s, got %s", receiver.ID, busy.UserID)
	}

	got, err := repo.FindSwapByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("FindSwapByID failed: %v", err)
	}
	if got.Status != domain.SwapStatusPending {
		t.Fatalf("expected rejected swap to stay PENDING, got %s", got.Status)
	}
}

func TestAcceptSwap_ConcurrentAcceptsGrantOnlyOneLock(t *testing.T) {
	repo := NewMemoryRepository()
	shared := repo.SeedUser(domain.User{DisplayName: "shared", Coins: 10})

	const attempts = 8
	swaps := make([]*domain.Swap, attempts)
	for i := 0; i < attempts; i++ {
		other := repo.SeedUser(domain.User{Coins: 10})
		swaps[i] = newPendingSwap(t, repo, other, shared)
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(swapID uuid.UUID) {
			defer wg.Done()
			_, err := repo.AcceptSwap(context.Background(), swapID, "accepted")
			results <- err
		}(swaps[i].ID)
	}
	wg.Wait()
	close(results)

	accepted := 0
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		var busy *UserBusyError
		if !errors.As(err, &busy) {
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accept to win the exclusivity lock, got %d", accepted)
	}
}

func TestCompleteSwap_AwardsPointsAndBadgesOnce(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 5)

	swap := newPendingSwap(t, repo, requester, receiver)
	if _, err := repo.AcceptSwap(context.Background(), swap.ID, "accepted"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	updated, grants, err := repo.CompleteSwap(context.Background(), swap.ID, CompleteSwapParams{
		FromStatus: domain.SwapStatusAccepted,
		PointsEach: 100,
		SystemNote: "completed",
	})
	if err != nil {
		t.Fatalf("CompleteSwap failed: %v", err)
	}
	if updated.Status != domain.SwapStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", updated.Status)
	}
	if len(grants) != 2 {
		t.Fatalf("expected a First Swap grant per participant, got %d", len(grants))
	}

	for _, id := range []uuid.UUID{requester.ID, receiver.ID} {
		user, err := repo.FindUserByID(context.Background(), id)
		if err != nil {
			t.Fatalf("FindUserByID failed: %v", err)
		}
		if user.Points != 100 {
			t.Fatalf("expected 100 points for %s, got %d", id, user.Points)
		}
		if len(user.Badges) != 1 || user.Badges[0] != domain.BadgeFirstSwap {
			t.Fatalf("expected exactly the First Swap badge, got %v", user.Badges)
		}
	}

	// A second completed swap must not re-grant First Swap.
	second := newPendingSwap(t, repo, requester, receiver)
	if _, err := repo.AcceptSwap(context.Background(), second.ID, "accepted"); err != nil {
		t.Fatalf("second accept failed: %v", err)
	}
	if _, _, err := repo.CompleteSwap(context.Background(), second.ID, CompleteSwapParams{
		FromStatus: domain.SwapStatusAccepted,
		PointsEach: 100,
		SystemNote: "completed",
	}); err != nil {
		t.Fatalf("second CompleteSwap failed: %v", err)
	}
	user, _ := repo.FindUserByID(context.Background(), requester.ID)
	count := 0
	for _, b := range user.Badges {
		if b == domain.BadgeFirstSwap {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected First Swap badge to be granted once, found %d copies", count)
	}
}

func TestCompleteSwap_WrongSourceStatusRejected(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 5)
	swap := newPendingSwap(t, repo, requester, receiver)

	_, _, err := repo.CompleteSwap(context.Background(), swap.ID, CompleteSwapParams{
		FromStatus: domain.SwapStatusAccepted,
		PointsEach: 100,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for PENDING swap, got %v", err)
	}
}

func TestDeclineAndCancel_TerminalWithoutRefund(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 3)

	declined := newPendingSwap(t, repo, requester, receiver)
	if _, err := repo.DeclineSwap(context.Background(), declined.ID, "declined"); err != nil {
		t.Fatalf("DeclineSwap failed: %v", err)
	}
	if _, err := repo.AcceptSwap(context.Background(), declined.ID, "accepted"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition accepting a declined swap, got %v", err)
	}

	cancelled := newPendingSwap(t, repo, requester, receiver)
	if _, err := repo.CancelSwap(context.Background(), cancelled.ID, "cancelled"); err != nil {
		t.Fatalf("CancelSwap failed: %v", err)
	}

	user, _ := repo.FindUserByID(context.Background(), requester.ID)
	if user.Coins != 1 {
		t.Fatalf("expected both fees to stay debited (balance 1), got %d", user.Coins)
	}
}

func TestMessageLog_SequenceIsMonotonic(t *testing.T) {
	repo := NewMemoryRepository()
	requester, receiver := seedSwapPair(t, repo, 5)
	swap := newPendingSwap(t, repo, requester, receiver)

	for i := 0; i < 3; i++ {
		msg := &domain.Message{
			ID:       uuid.New(),
			SwapID:   swap.ID,
			SenderID: requester.ID.String(),
			Kind:     domain.MessageKindText,
			Body:     "hello",
		}
		if err := repo.AppendMessage(context.Background(), msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	msgs, err := repo.ListMessages(context.Background(), swap.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected seed plus three messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Seq <= msgs[i-1].Seq {
			t.Fatalf("expected strictly increasing seq, got %d after %d", msgs[i].Seq, msgs[i-1].Seq)
		}
	}
}

func TestGrantFreeCoin_RespectsSchedule(t *testing.T) {
	repo := NewMemoryRepository()
	due := repo.SeedUser(domain.User{Coins: 0, NextFreeCoinDate: time.Now().Add(-time.Hour)})
	notDue := repo.SeedUser(domain.User{Coins: 0, NextFreeCoinDate: time.Now().Add(time.Hour)})

	user, granted, err := repo.GrantFreeCoin(context.Background(), due.ID)
	if err != nil {
		t.Fatalf("GrantFreeCoin failed: %v", err)
	}
	if !granted || user.Coins != 1 {
		t.Fatalf("expected due user to be granted a coin, granted=%t coins=%d", granted, user.Coins)
	}
	if !user.NextFreeCoinDate.After(time.Now()) {
		t.Fatal("expected next free coin date to move into the future")
	}

	user, granted, err = repo.GrantFreeCoin(context.Background(), notDue.ID)
	if err != nil {
		t.Fatalf("GrantFreeCoin failed: %v", err)
	}
	if granted || user.Coins != 0 {
		t.Fatalf("expected not-due user to be skipped, granted=%t coins=%d", granted, user.Coins)
	}
}
