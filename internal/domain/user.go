/**
 * @description
 * This file defines the user entity as seen by the swap-service: profile
 * fields plus the ledger balances (coins, points) and the badge set. The
 * ledger columns are mutated only through repository operations so the
 * non-negativity invariant on coins holds everywhere.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a marketplace member. Coins are the virtual currency spent
// to initiate swap requests; points are the reputation score accumulated on
// swap completion. Badges grow monotonically and are never revoked.
type User struct {
	ID               uuid.UUID `json:"id"`
	AuthSubject      string    `json:"-"`
	DisplayName      string    `json:"display_name"`
	Bio              string    `json:"bio"`
	Location         string    `json:"location"`
	JobTitle         string    `json:"job_title"`
	AvatarURL        string    `json:"avatar_url"`
	Coins            int64     `json:"coins"`
	Points           int64     `json:"points"`
	Badges           []string  `json:"badges"`
	NextFreeCoinDate time.Time `json:"next_free_coin_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
