/**
 * @description
 * This file defines the conversation log entry attached to a swap. The log is
 * append-only and strictly ordered by insertion; entries are never edited or
 * deleted.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemSenderID is the reserved pseudo-identity used for engine-generated
// entries. Clients rely on it to render system notices differently from real
// user messages, so it must never collide with a user id.
const SystemSenderID = "system"

// MessageKind is the rendering type of a conversation log entry.
type MessageKind string

const (
	MessageKindText            MessageKind = "text"
	MessageKindSystem          MessageKind = "system"
	MessageKindSwapRequestCard MessageKind = "swap_request_card"
)

// Message is a single entry in a swap's conversation log. SenderID is a user
// UUID in string form, or SystemSenderID for engine-generated entries.
// Seq is assigned by the store at append time and defines the only ordering
// guarantee the log makes.
type Message struct {
	ID            uuid.UUID   `json:"id"`
	SwapID        uuid.UUID   `json:"swap_id"`
	Seq           int64       `json:"seq"`
	SenderID      string      `json:"sender_id"`
	Kind          MessageKind `json:"kind"`
	Body          string      `json:"body"`
	AttachmentURL *string     `json:"attachment_url,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}
