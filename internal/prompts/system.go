package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
)

// System stores stage instruction overrides and resolves which
// instructions the pipeline sends for each stage.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Create and Update reject commands failing Validate.
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Activate puts id in force for its stage, retiring any other active
	// override of that stage.
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Active returns the active override for stage or ErrNotFound.
	Active(ctx context.Context, stage Stage) (*Prompt, error)

	// Effective resolves what the pipeline sends for stage: the active
	// override's instructions or the built-in default, plus the output spec.
	Effective(ctx context.Context, stage Stage) (*Effective, error)
}
