package posts

import (
	"encoding/json"
	"fmt"
)

// Status is a post's review state.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusPublished     Status = "published"
	StatusRejected      Status = "rejected"
)

func Statuses() []Status {
	return []Status{StatusDraft, StatusPendingReview, StatusApproved, StatusPublished, StatusRejected}
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusPublished, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further review operation applies.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusRejected
}

func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return v, nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
