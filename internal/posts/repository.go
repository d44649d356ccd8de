package posts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates a Postgres-backed post System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "posts"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Post], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Slug")

	result, err := repository.ListPage(ctx, r.db, filters.Apply(qb), page, Scan)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Post, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, slug string) (*Post, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Slug", slug)

	p, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) Approve(ctx context.Context, id uuid.UUID, cmd ApproveCommand) (*Post, error) {
	return r.review(ctx, id, "approved", func(p *Post, now time.Time) error {
		return p.Approve(cmd.Reviewer, cmd.PublishNow, now)
	})
}

func (r *repo) Reject(ctx context.Context, id uuid.UUID, cmd RejectCommand) (*Post, error) {
	return r.review(ctx, id, "rejected", func(p *Post, now time.Time) error {
		return p.Reject(cmd.Reviewer, cmd.Notes, now)
	})
}

func (r *repo) Publish(ctx context.Context, id uuid.UUID, cmd PublishCommand) (*Post, error) {
	return r.review(ctx, id, "published", func(p *Post, now time.Time) error {
		return p.Publish(cmd.Reviewer, cmd.Force, now)
	})
}

// review locks the post, applies a transition, and writes the result.
// A post that reaches published carries its finding with it.
func (r *repo) review(
	ctx context.Context,
	id uuid.UUID,
	action string,
	apply func(p *Post, now time.Time) error,
) (*Post, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Post, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)

		p, err := repository.QueryOne(ctx, tx, q+" FOR UPDATE", args, Scan)
		if err != nil {
			return Post{}, err
		}

		if err := apply(&p, r.now().UTC()); err != nil {
			return Post{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE posts
			SET status = $1, reviewer = $2, review_notes = $3,
				reviewed_at = $4, published_at = $5, updated_at = NOW()
			WHERE id = $6`,
			p.Status, p.Reviewer, p.ReviewNotes, p.ReviewedAt, p.PublishedAt, p.ID,
		); err != nil {
			return Post{}, err
		}

		if p.Status == StatusPublished {
			if _, err := tx.ExecContext(
				ctx,
				"UPDATE findings SET status = 'published', updated_at = NOW() WHERE id = $1 AND status = 'analysed'",
				p.FindingID,
			); err != nil {
				return Post{}, fmt.Errorf("publish finding: %w", err)
			}
		}

		return p, nil
	})
	if err != nil {
		return nil, StoreErrors.Map(err)
	}

	r.logger.Info("post "+action, "id", p.ID, "slug", p.Slug, "reviewer", p.Reviewer)
	return &p, nil
}
