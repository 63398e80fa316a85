/**
 * @description
 * In-app notification records. The engine writes one for the counterparty on
 * every successful swap transition; clients poll and re-fetch, real-time
 * fan-out is layered outside this service.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind categorizes in-app notifications for client rendering.
type NotificationKind string

const (
	NotificationKindSwapRequest NotificationKind = "swap_request"
	NotificationKindMessage     NotificationKind = "message"
	NotificationKindSystem      NotificationKind = "system"
)

// Notification is an in-app notification addressed to one user.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Content   string           `json:"content"`
	Link      *string          `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
