package analyses

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

// New creates a Postgres-backed analysis System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "analyses"),
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
) (*pagination.PageResult[Analysis], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Summary", "Model")

	result, err := repository.ListPage(ctx, r.db, filters.Apply(qb), page, Scan)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &a, nil
}

func (r *repo) Latest(ctx context.Context, findingID uuid.UUID) (*Analysis, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("FindingID", findingID).
		BuildFirst()

	a, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &a, nil
}
