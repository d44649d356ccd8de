package posts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/pagination"
)

// System defines the review contract for posts. Drafts are created by the
// batch processor through the record store.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Post], error)

	Find(ctx context.Context, id uuid.UUID) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)

	Approve(ctx context.Context, id uuid.UUID, cmd ApproveCommand) (*Post, error)
	Reject(ctx context.Context, id uuid.UUID, cmd RejectCommand) (*Post, error)

	// Publish also moves the post's finding to published.
	Publish(ctx context.Context, id uuid.UUID, cmd PublishCommand) (*Post, error)
}
