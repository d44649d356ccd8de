// Package store is the record store consumed by the scheduler and the batch
// processor. Every scheduler run and every processor pass works inside one
// Tx; per-record work is isolated with Guard so a failed record never
// poisons the rest of the batch.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/internal/sources"
)

// Store opens transactions and serves the source reads needed before one.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	// ActiveSource returns sources.ErrNotFound for an unknown code and
	// sources.ErrInactive for a deactivated source.
	ActiveSource(ctx context.Context, code string) (*sources.Source, error)
	ActiveSources(ctx context.Context) ([]sources.Source, error)
}

// Tx is one logical unit of work. A Tx outlives cancellation of the
// context that began it so a cancelled pass can still commit the records
// it finished.
type Tx interface {
	TouchSource(ctx context.Context, id uuid.UUID, ts time.Time) error

	ExistsFinding(ctx context.Context, sourceID uuid.UUID, externalID string) (bool, error)
	// CreateFinding returns findings.ErrDuplicate when (source, external id)
	// is already captured.
	CreateFinding(ctx context.Context, cmd findings.CreateCommand) (*findings.Finding, error)

	// PendingClassification selects new, unclassified findings, oldest first.
	PendingClassification(ctx context.Context, limit int) ([]findings.Finding, error)
	// PendingAnalysis selects classified healthcare findings whose
	// confidence is at least threshold, oldest first.
	PendingAnalysis(ctx context.Context, limit int, threshold float64) ([]findings.Finding, error)

	// ClassifyFinding records a classification and its spend and moves a
	// new finding to classified.
	ClassifyFinding(ctx context.Context, id uuid.UUID, c findings.Classification) error
	// AdvanceFinding moves a finding forward only when it is still in from.
	AdvanceFinding(ctx context.Context, id uuid.UUID, from, to findings.Status) error

	CreateAnalysis(ctx context.Context, cmd analyses.CreateCommand) (*analyses.Analysis, error)
	CreatePost(ctx context.Context, cmd posts.CreateCommand) (*posts.Post, error)

	// Guard runs fn so that its writes are discarded on error while the
	// transaction stays usable.
	Guard(ctx context.Context, fn func() error) error

	Commit() error
	Rollback() error
}
