package sources

import (
	"context"

	"github.com/JaimeStill/inquest/pkg/pagination"
)

// System defines the operator contract for source management.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Source], error)

	Find(ctx context.Context, code string) (*Source, error)
	SetActive(ctx context.Context, code string, active bool) (*Source, error)

	// Seed inserts new sources and refreshes the descriptive fields of
	// existing ones. Activity and last-run state are left untouched.
	Seed(ctx context.Context, seeds []Seed) (int, error)
}
