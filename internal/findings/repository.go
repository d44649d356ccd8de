package findings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a Postgres-backed finding System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "findings"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Finding], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "DeceasedName", "ContentText")

	result, err := repository.ListPage(ctx, r.db, filters.Apply(qb), page, Scan)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Finding, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &f, nil
}

func (r *repo) Exclude(ctx context.Context, id uuid.UUID) (*Finding, error) {
	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Finding, error) {
		var current Status
		if err := tx.QueryRowContext(
			ctx,
			"SELECT status FROM findings WHERE id = $1 FOR UPDATE",
			id,
		).Scan(&current); err != nil {
			return Finding{}, err
		}

		if !CanExclude(current) {
			return Finding{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, StatusExcluded)
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE findings SET status = $1, updated_at = NOW() WHERE id = $2",
			StatusExcluded, id,
		); err != nil {
			return Finding{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, q, args, Scan)
	})
	if err != nil {
		return nil, StoreErrors.Map(err)
	}

	r.logger.Info("finding excluded", "id", f.ID, "source", f.SourceCode)
	return &f, nil
}
