package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

const returning = " RETURNING id, name, stage, instructions, description, active"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
	pages  pagination.Config
}

// New returns the Postgres-backed prompt override System.
func New(db *sql.DB, logger *slog.Logger, pages pagination.Config) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "prompts"),
		pages:  pages,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pages)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pages)

	qb := query.
		NewBuilder(projection, byName).
		WhereSearch(page.Search, "Name", "Description")

	result, err := repository.ListPage(ctx, r.db, filters.Apply(qb), page, scan)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	p, err := repository.QueryOne(ctx, r.db, q, args, scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return r.write(ctx, "created",
		"INSERT INTO prompts (name, stage, instructions, description) VALUES ($1, $2, $3, $4)"+returning,
		cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description,
	)
}

// Update edits an override in place. Moving an active override to a stage
// that already has one fails with ErrDuplicate.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return r.write(ctx, "updated",
		"UPDATE prompts SET name = $1, stage = $2, instructions = $3, description = $4 WHERE id = $5"+returning,
		cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description, id,
	)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM prompts WHERE id = $1", id)
	if err != nil {
		return StoreErrors.Map(err)
	}
	r.logger.Info("prompt deleted", "id", id)
	return nil
}

// Activate makes id the override in force for its stage, clearing the
// previous one in the same transaction.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		_, err := tx.ExecContext(ctx, `
			UPDATE prompts SET active = false
			WHERE active AND id <> $1
			  AND stage = (SELECT stage FROM prompts WHERE id = $1)`,
			id,
		)
		if err != nil {
			return Prompt{}, fmt.Errorf("clear active: %w", err)
		}
		return repository.QueryOne(ctx, tx,
			"UPDATE prompts SET active = true WHERE id = $1"+returning,
			[]any{id}, scan,
		)
	})
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	r.logger.Info("prompt activated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.write(ctx, "deactivated", "UPDATE prompts SET active = false WHERE id = $1"+returning, id)
}

func (r *repo) Active(ctx context.Context, stage Stage) (*Prompt, error) {
	active := true
	q, args := query.NewBuilder(projection).
		WhereEquals("Stage", &stage).
		WhereEquals("Active", &active).
		BuildFirst()

	p, err := repository.QueryOne(ctx, r.db, q, args, scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) Effective(ctx context.Context, stage Stage) (*Effective, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return nil, err
	}

	instructions, err := Instructions(stage)
	if err != nil {
		return nil, err
	}
	spec, err := Spec(stage)
	if err != nil {
		return nil, err
	}
	e := &Effective{Stage: stage, Instructions: instructions, Spec: spec}

	p, err := r.Active(ctx, stage)
	switch {
	case err == nil:
		e.Instructions = p.Instructions
		e.Override = p
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return e, nil
}

// write runs a single-row statement ending in RETURNING and logs the
// outcome as "prompt <action>".
func (r *repo) write(ctx context.Context, action, stmt string, args ...any) (*Prompt, error) {
	p, err := repository.QueryOne(ctx, r.db, stmt, args, scan)
	if err != nil {
		return nil, StoreErrors.Map(err)
	}
	r.logger.Info("prompt "+action, "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}
