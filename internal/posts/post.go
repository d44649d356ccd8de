// Package posts implements editorial drafts derived from analyses and the
// review operations that move them toward publication.
package posts

import (
	"time"

	"github.com/google/uuid"
)

// Post is an editorial draft derived from exactly one analysis.
type Post struct {
	ID           uuid.UUID  `json:"id"`
	AnalysisID   uuid.UUID  `json:"analysis_id"`
	FindingID    uuid.UUID  `json:"finding_id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Excerpt      string     `json:"excerpt"`
	KeyLearnings []string   `json:"key_learnings"`
	Tags         []string   `json:"tags"`
	Status       Status     `json:"status"`
	Reviewer     string     `json:"reviewer"`
	ReviewNotes  string     `json:"review_notes"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	PublishedAt  *time.Time `json:"published_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateCommand carries a generated draft for persistence. Status defaults
// to pending review when empty.
type CreateCommand struct {
	AnalysisID   uuid.UUID
	FindingID    uuid.UUID
	Slug         string
	Title        string
	Content      string
	Excerpt      string
	KeyLearnings []string
	Tags         []string
	Status       Status
}

func (c CreateCommand) Validate() error {
	if c.AnalysisID == uuid.Nil || c.FindingID == uuid.Nil || c.Slug == "" || c.Title == "" {
		return ErrInvalid
	}
	if c.Status != "" && !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ApproveCommand is the request body for approving a post.
type ApproveCommand struct {
	Reviewer   string `json:"reviewer"`
	PublishNow bool   `json:"publish_now"`
}

// RejectCommand is the request body for rejecting a post.
type RejectCommand struct {
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes"`
}

// PublishCommand is the request body for publishing a post.
type PublishCommand struct {
	Reviewer string `json:"reviewer"`
	Force    bool   `json:"force"`
}
