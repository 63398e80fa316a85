package domain

import "testing"

func TestEligibleBadges_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		points    int64
		want      []string
	}{
		{name: "no activity", completed: 0, points: 0, want: nil},
		{name: "first completion", completed: 1, points: 100, want: []string{BadgeFirstSwap}},
		{name: "below top swapper", completed: 4, points: 400, want: []string{BadgeFirstSwap}},
		{name: "top swapper", completed: 5, points: 500, want: []string{BadgeFirstSwap, BadgeTopSwapper}},
		{name: "skill master needs over 1000 points", completed: 1, points: 1000, want: []string{BadgeFirstSwap}},
		{name: "skill master", completed: 1, points: 1001, want: []string{BadgeFirstSwap, BadgeSkillMaster}},
		{name: "all badges", completed: 11, points: 1100, want: []string{BadgeFirstSwap, BadgeTopSwapper, BadgeSkillMaster}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleBadges(tt.completed, tt.points)
			if len(got) != len(tt.want) {
				t.Fatalf("EligibleBadges(%d, %d) = %v, want %v", tt.completed, tt.points, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("EligibleBadges(%d, %d) = %v, want %v", tt.completed, tt.points, got, tt.want)
				}
			}
		})
	}
}

func TestMissingBadges_SkipsHeldBadges(t *testing.T) {
	held := []string{BadgeFirstSwap}
	got := MissingBadges(held, 5, 500)
	if len(got) != 1 || got[0] != BadgeTopSwapper {
		t.Fatalf("expected only %q to be missing, got %v", BadgeTopSwapper, got)
	}
}

func TestMissingBadges_IdempotentWhenAllHeld(t *testing.T) {
	held := []string{BadgeFirstSwap, BadgeTopSwapper, BadgeSkillMaster}
	if got := MissingBadges(held, 20, 5000); len(got) != 0 {
		t.Fatalf("expected no missing badges, got %v", got)
	}
}

func TestSwapStatus_TerminalAndActive(t *testing.T) {
	terminal := []SwapStatus{SwapStatusDeclined, SwapStatusCompleted, SwapStatusCancelled}
	for _, status := range terminal {
		if !status.Terminal() {
			t.Errorf("expected %s to be terminal", status)
		}
		if status.Active() {
			t.Errorf("expected %s not to be active", status)
		}
	}

	active := []SwapStatus{SwapStatusAccepted, SwapStatusInReview}
	for _, status := range active {
		if status.Terminal() {
			t.Errorf("expected %s not to be terminal", status)
		}
		if !status.Active() {
			t.Errorf("expected %s to be active", status)
		}
	}

	if SwapStatusPending.Terminal() || SwapStatusPending.Active() {
		t.Error("PENDING must be neither terminal nor active")
	}
}
