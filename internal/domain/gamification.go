/**
 * @description
 * Badge threshold rules. Badges are a pure function of a user's completed-swap
 * count and point total, so grants are re-derivable from history alone and
 * re-evaluating past a threshold can never produce duplicates. Badges are
 * monotonic: once granted, never revoked.
 */

package domain

// Badge names granted automatically by the lifecycle engine.
const (
	BadgeFirstSwap   = "First Swap"
	BadgeTopSwapper  = "Top Swapper"
	BadgeSkillMaster = "Skill Master"
)

// Completion thresholds for the swap-count badges.
const (
	firstSwapThreshold  = 1
	topSwapperThreshold = 5
	skillMasterPoints   = 1000
)

// EligibleBadges returns every badge a user qualifies for given their
// completed-swap count and point total.
func EligibleBadges(completedSwaps int, points int64) []string {
	var badges []string
	if completedSwaps >= firstSwapThreshold {
		badges = append(badges, BadgeFirstSwap)
	}
	if completedSwaps >= topSwapperThreshold {
		badges = append(badges, BadgeTopSwapper)
	}
	if points > skillMasterPoints {
		badges = append(badges, BadgeSkillMaster)
	}
	return badges
}

// MissingBadges returns the eligible badges the user does not already hold,
// in grant order. The result is what an awarding transaction should append.
func MissingBadges(held []string, completedSwaps int, points int64) []string {
	has := make(map[string]bool, len(held))
	for _, b := range held {
		has[b] = true
	}

	var missing []string
	for _, b := range EligibleBadges(completedSwaps, points) {
		if !has[b] {
			missing = append(missing, b)
		}
	}
	return missing
}
