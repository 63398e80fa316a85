/**
 * @description
 * Catalog entities: the skills and completed project deliverables users list
 * for bartering. The swap-service consumes these read-only, for summary text
 * and ownership checks; listing, browsing, and verification belong to the
 * catalog surface outside this service.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// SkillStatus is the verification state of a listed skill. Only VERIFIED
// skills are eligible to be offered in a swap request; that gate lives in the
// browse layer, so the engine only needs to resolve items and fail cleanly
// when one is missing.
type SkillStatus string

const (
	SkillStatusPending  SkillStatus = "PENDING"
	SkillStatusVerified SkillStatus = "VERIFIED"
	SkillStatusRejected SkillStatus = "REJECTED"
)

// Skill is a teachable skill listed by a user.
type Skill struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Level           string      `json:"level"`
	ExperienceYears int         `json:"experience_years"`
	ImageURL        string      `json:"image_url"`
	Status          SkillStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Project is a completed deliverable listed by a user. Projects have no
// verification gate.
type Project struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// CatalogItem is the slim view of a skill or project the engine consumes:
// enough to build human-readable summaries and check ownership.
type CatalogItem struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Title  string    `json:"title"`
}
