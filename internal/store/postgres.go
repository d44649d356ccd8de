package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Postgres-backed Store.
func New(db *sql.DB, logger *slog.Logger) Store {
	return &postgres{
		db:     db,
		logger: logger.With("system", "store"),
	}
}

func (s *postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &pgTx{tx: tx, logger: s.logger}, nil
}

func (s *postgres) ActiveSource(ctx context.Context, code string) (*sources.Source, error) {
	q, args := query.NewBuilder(sources.Projection()).BuildSingle("Code", code)

	src, err := repository.QueryOne(ctx, s.db, q, args, sources.Scan)
	if err != nil {
		return nil, sources.StoreErrors.Map(err)
	}
	if !src.Active {
		return nil, fmt.Errorf("%w: %s", sources.ErrInactive, code)
	}
	return &src, nil
}

func (s *postgres) ActiveSources(ctx context.Context) ([]sources.Source, error) {
	active := true
	q, args := query.
		NewBuilder(sources.Projection(), query.SortField{Field: "Code"}).
		WhereEquals("Active", &active).
		Build()

	return repository.QueryMany(ctx, s.db, q, args, sources.Scan)
}

type pgTx struct {
	tx         *sql.Tx
	logger     *slog.Logger
	savepoints int
}

func (t *pgTx) TouchSource(ctx context.Context, id uuid.UUID, ts time.Time) error {
	err := repository.ExecExpectOne(
		ctx, t.tx,
		"UPDATE sources SET last_run_at = $1, updated_at = NOW() WHERE id = $2",
		ts, id,
	)
	return sources.StoreErrors.Map(err)
}

func (t *pgTx) ExistsFinding(ctx context.Context, sourceID uuid.UUID, externalID string) (bool, error) {
	return repository.QueryExists(
		ctx, t.tx,
		"SELECT EXISTS(SELECT 1 FROM findings WHERE source_id = $1 AND external_id = $2)",
		sourceID, externalID,
	)
}

func (t *pgTx) CreateFinding(ctx context.Context, cmd findings.CreateCommand) (*findings.Finding, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var id uuid.UUID
	err := t.tx.QueryRowContext(
		ctx,
		`INSERT INTO findings (
			source_id, external_id, title, deceased_name, coroner_name,
			date_of_death, date_of_finding, source_url, pdf_url, pdf_text,
			content_text, content_html, categories, metadata, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		cmd.SourceID, cmd.ExternalID, cmd.Title, cmd.DeceasedName, cmd.CoronerName,
		cmd.DateOfDeath, cmd.DateOfFinding, cmd.SourceURL, cmd.PDFURL, cmd.PDFText,
		cmd.ContentText, cmd.ContentHTML,
		repository.JSON(orEmpty(cmd.Categories)), repository.JSON(orEmptyMap(cmd.Metadata)),
		findings.StatusNew,
	).Scan(&id)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", findings.ErrDuplicate, cmd.ExternalID)
		}
		return nil, fmt.Errorf("insert finding: %w", err)
	}

	q, args := query.NewBuilder(findings.Projection()).BuildSingle("ID", id)
	f, err := repository.QueryOne(ctx, t.tx, q, args, findings.Scan)
	if err != nil {
		return nil, fmt.Errorf("read finding: %w", err)
	}
	return &f, nil
}

func (t *pgTx) PendingClassification(ctx context.Context, limit int) ([]findings.Finding, error) {
	p := findings.Projection()
	q := fmt.Sprintf(
		`SELECT %s FROM %s
		WHERE f.status = $1 AND f.is_healthcare IS NULL
		ORDER BY f.created_at
		LIMIT $2
		FOR UPDATE OF f SKIP LOCKED`,
		p.Columns(), p.From(),
	)
	return repository.QueryMany(ctx, t.tx, q, []any{findings.StatusNew, limit}, findings.Scan)
}

func (t *pgTx) PendingAnalysis(ctx context.Context, limit int, threshold float64) ([]findings.Finding, error) {
	p := findings.Projection()
	q := fmt.Sprintf(
		`SELECT %s FROM %s
		WHERE f.status = $1 AND f.is_healthcare AND f.healthcare_confidence >= $2
		ORDER BY f.created_at
		LIMIT $3
		FOR UPDATE OF f SKIP LOCKED`,
		p.Columns(), p.From(),
	)
	return repository.QueryMany(ctx, t.tx, q, []any{findings.StatusClassified, threshold, limit}, findings.Scan)
}

func (t *pgTx) ClassifyFinding(ctx context.Context, id uuid.UUID, c findings.Classification) error {
	err := repository.ExecExpectOne(
		ctx, t.tx,
		`UPDATE findings
		SET is_healthcare = $1, healthcare_confidence = $2, metadata = metadata || $3::jsonb,
			status = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6`,
		c.IsHealthcare, c.Confidence, repository.JSON(c.Metadata()), findings.StatusClassified, id, findings.StatusNew,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return transitionError(findings.StatusNew, findings.StatusClassified)
	}
	return err
}

func (t *pgTx) AdvanceFinding(ctx context.Context, id uuid.UUID, from, to findings.Status) error {
	if !findings.CanAdvance(from, to) {
		return transitionError(from, to)
	}

	err := repository.ExecExpectOne(
		ctx, t.tx,
		"UPDATE findings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return transitionError(from, to)
	}
	return err
}

func (t *pgTx) CreateAnalysis(ctx context.Context, cmd analyses.CreateCommand) (*analyses.Analysis, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`INSERT INTO public.analyses AS a (
			finding_id, provider, model, prompt_version, summary, extraction,
			human_factors, latent_hazards, recommendations,
			tokens_input, tokens_output, cost_usd
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`,
		analyses.Projection().Columns(),
	)

	a, err := repository.QueryOne(ctx, t.tx, q, []any{
		cmd.FindingID, cmd.Provider, cmd.Model, cmd.PromptVersion, cmd.Summary,
		repository.JSON(cmd.Extraction), repository.JSON(cmd.HumanFactors),
		repository.JSON(orEmpty(cmd.LatentHazards)), repository.JSON(orEmpty(cmd.Recommendations)),
		cmd.TokensInput, cmd.TokensOutput, cmd.CostUSD,
	}, analyses.Scan)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", analyses.StoreErrors.Map(err))
	}
	return &a, nil
}

func (t *pgTx) CreatePost(ctx context.Context, cmd posts.CreateCommand) (*posts.Post, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	status := cmd.Status
	if status == "" {
		status = posts.StatusPendingReview
	}

	q := fmt.Sprintf(
		`INSERT INTO public.posts AS p (
			analysis_id, finding_id, slug, title, content, excerpt,
			key_learnings, tags, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`,
		posts.Projection().Columns(),
	)

	p, err := repository.QueryOne(ctx, t.tx, q, []any{
		cmd.AnalysisID, cmd.FindingID, cmd.Slug, cmd.Title, cmd.Content, cmd.Excerpt,
		repository.JSON(orEmpty(cmd.KeyLearnings)), repository.JSON(orEmpty(cmd.Tags)), status,
	}, posts.Scan)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", posts.StoreErrors.Map(err))
	}
	return &p, nil
}

func (t *pgTx) Guard(ctx context.Context, fn func() error) error {
	t.savepoints++
	return repository.Savepoint(ctx, t.tx, fmt.Sprintf("record_%d", t.savepoints), fn)
}

func (t *pgTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
