package findings

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
)

// System defines the operator contract for captured findings.
// Capture and lifecycle advancement go through the record store.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Finding], error)

	Find(ctx context.Context, id uuid.UUID) (*Finding, error)

	// Exclude moves a finding that has not been published to excluded.
	Exclude(ctx context.Context, id uuid.UUID) (*Finding, error)
}
