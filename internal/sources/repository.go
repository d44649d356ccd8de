package sources

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a Postgres-backed source System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "sources"),
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
) (*pagination.PageResult[Source], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Code", "Name")

	result, err := repository.ListPage(ctx, r.db, filters.Apply(qb), page, Scan)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, code string) (*Source, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Code", code)

	s, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &s, nil
}

func (r *repo) SetActive(ctx context.Context, code string, active bool) (*Source, error) {
	q := fmt.Sprintf(`
		UPDATE sources s SET active = $1, updated_at = NOW()
		WHERE s.code = $2
		RETURNING %s`, projection.Columns())

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		return repository.QueryOne(ctx, tx, q, []any{active, code}, Scan)
	})
	if err != nil {
		return nil, StoreErrors.Map(err)
	}

	r.logger.Info("source activity changed", "code", s.Code, "active", s.Active)
	return &s, nil
}

func (r *repo) Seed(ctx context.Context, seeds []Seed) (int, error) {
	q := `
		INSERT INTO sources(code, name, country, region, base_url, adapter, schedule, active, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			region = EXCLUDED.region,
			base_url = EXCLUDED.base_url,
			adapter = EXCLUDED.adapter,
			schedule = EXCLUDED.schedule,
			config = EXCLUDED.config,
			updated_at = NOW()`

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		for _, s := range seeds {
			if _, err := tx.ExecContext(
				ctx, q,
				s.Code, s.Name, s.Country, s.Region, s.BaseURL,
				s.Adapter, s.Schedule, s.IsActive(), repository.JSON(s.Config),
			); err != nil {
				return 0, fmt.Errorf("seed %s: %w", s.Code, err)
			}
		}
		return len(seeds), nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("sources seeded", "count", n)
	return n, nil
}
