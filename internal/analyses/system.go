package analyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
)

// System defines read access to analyses. Analyses are created by the
// batch processor through the record store.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Analysis], error)

	Find(ctx context.Context, id uuid.UUID) (*Analysis, error)
	Latest(ctx context.Context, findingID uuid.UUID) (*Analysis, error)
}
