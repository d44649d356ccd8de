package posts

import (
	"fmt"
	"strings"
	"time"
)

// Approve stamps the reviewer and moves a draft or pending post to
// approved, or straight to published when publishNow is set.
func (p *Post) Approve(reviewer string, publishNow bool, now time.Time) error {
	if strings.TrimSpace(reviewer) == "" {
		return ErrReviewerRequired
	}
	if p.Status != StatusDraft && p.Status != StatusPendingReview {
		return fmt.Errorf("%w: cannot approve %s post", ErrInvalidTransition, p.Status)
	}

	p.Reviewer = reviewer
	p.ReviewedAt = &now
	p.Status = StatusApproved

	if publishNow {
		p.Status = StatusPublished
		p.PublishedAt = &now
	}
	return nil
}

// Reject closes a post that has not been published or rejected.
func (p *Post) Reject(reviewer, notes string, now time.Time) error {
	if strings.TrimSpace(reviewer) == "" {
		return ErrReviewerRequired
	}
	if p.Status.Terminal() {
		return fmt.Errorf("%w: cannot reject %s post", ErrInvalidTransition, p.Status)
	}

	p.Reviewer = reviewer
	p.ReviewNotes = notes
	p.ReviewedAt = &now
	p.Status = StatusRejected
	return nil
}

// Publish moves an approved post to published. Draft and pending posts
// require force, which records the reviewer as having approved now.
func (p *Post) Publish(reviewer string, force bool, now time.Time) error {
	switch {
	case p.Status == StatusApproved:
	case p.Status.Terminal():
		return fmt.Errorf("%w: cannot publish %s post", ErrInvalidTransition, p.Status)
	case !force:
		return fmt.Errorf("%w: %s post requires approval or force", ErrInvalidTransition, p.Status)
	default:
		if strings.TrimSpace(reviewer) == "" {
			return ErrReviewerRequired
		}
		p.Reviewer = reviewer
		p.ReviewedAt = &now
	}

	p.Status = StatusPublished
	p.PublishedAt = &now
	return nil
}
