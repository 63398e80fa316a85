/**
 * @description
 * This file defines the core domain models for the swap-service. A Swap is the
 * central entity: a two-party exchange agreement over either a pair of skills
 * or a pair of project deliverables, negotiated and executed through a
 * chat-centric workflow.
 *
 * @notes
 * - Exactly one of the skill pair or the project pair is populated, matching
 *   Kind. The repository enforces this at write time.
 * - Deadline is only meaningful for project swaps.
 * - Swaps are never deleted; terminal states are retained for history.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// SwapKind distinguishes skill exchanges from project-deliverable exchanges.
type SwapKind string

const (
	SwapKindSkill   SwapKind = "SKILL"
	SwapKindProject SwapKind = "PROJECT"
)

// SwapStatus is the lifecycle state of a swap.
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "PENDING"
	SwapStatusAccepted  SwapStatus = "ACCEPTED"
	SwapStatusDeclined  SwapStatus = "DECLINED"
	SwapStatusInReview  SwapStatus = "IN_REVIEW"
	SwapStatusCompleted SwapStatus = "COMPLETED"
	SwapStatusCancelled SwapStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are permitted from s.
func (s SwapStatus) Terminal() bool {
	switch s {
	case SwapStatusDeclined, SwapStatusCompleted, SwapStatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status counts toward the per-user exclusivity
// lock: a user may hold at most one swap in an active state at any time.
func (s SwapStatus) Active() bool {
	return s == SwapStatusAccepted || s == SwapStatusInReview
}

// Swap represents a two-party exchange agreement. This struct maps directly
// to the `swaps` table.
type Swap struct {
	ID                 uuid.UUID  `json:"id"`
	Kind               SwapKind   `json:"kind"`
	RequesterID        uuid.UUID  `json:"requester_id"`
	ReceiverID         uuid.UUID  `json:"receiver_id"`
	OfferedSkillID     *uuid.UUID `json:"offered_skill_id,omitempty"`
	RequestedSkillID   *uuid.UUID `json:"requested_skill_id,omitempty"`
	OfferedProjectID   *uuid.UUID `json:"offered_project_id,omitempty"`
	RequestedProjectID *uuid.UUID `json:"requested_project_id,omitempty"`
	Status             SwapStatus `json:"status"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	CompletionProof    *string    `json:"completion_proof,omitempty"`
	CompletionNote     *string    `json:"completion_note,omitempty"`
	Rating             *int       `json:"rating,omitempty"`
	ReviewComment      *string    `json:"review_comment,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Messages           []Message  `json:"messages,omitempty"`
}

// HasParticipant reports whether userID is the requester or the receiver.
func (s *Swap) HasParticipant(userID uuid.UUID) bool {
	return s.RequesterID == userID || s.ReceiverID == userID
}

// Counterparty returns the other participant relative to userID.
func (s *Swap) Counterparty(userID uuid.UUID) uuid.UUID {
	if s.RequesterID == userID {
		return s.ReceiverID
	}
	return s.RequesterID
}

// CreateSwapRequest is the DTO for initiating a new swap request.
// OfferedItemID must reference an item owned by the caller and
// RequestedItemID an item owned by the receiver; both are skills or both are
// projects depending on Kind.
type CreateSwapRequest struct {
	ReceiverID      uuid.UUID  `json:"receiver_id"`
	Kind            SwapKind   `json:"kind"`
	OfferedItemID   uuid.UUID  `json:"offered_item_id"`
	RequestedItemID uuid.UUID  `json:"requested_item_id"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// CompleteSwapRequest carries the completion evidence submitted when a
// participant finishes their side of a swap. Proof is an opaque reference to
// an uploaded file; the service never interprets it.
type CompleteSwapRequest struct {
	Proof string `json:"proof"`
	Note  string `json:"note"`
}

// ReviewSwapRequest is the requester's verdict on a delivered project.
type ReviewSwapRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SendMessageRequest is the DTO for posting a chat message into a swap's
// conversation log.
type SendMessageRequest struct {
	Text          string  `json:"text"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}
