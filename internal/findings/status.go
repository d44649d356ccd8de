package findings

import (
	"encoding/json"
	"fmt"
)

// Status is a finding's lifecycle state.
type Status string

const (
	StatusNew        Status = "new"
	StatusClassified Status = "classified"
	StatusAnalysed   Status = "analysed"
	StatusPublished  Status = "published"
	StatusExcluded   Status = "excluded"
)

var rank = map[Status]int{
	StatusNew:        0,
	StatusClassified: 1,
	StatusAnalysed:   2,
	StatusPublished:  3,
}

// Statuses returns every status value in lifecycle order.
func Statuses() []Status {
	return []Status{StatusNew, StatusClassified, StatusAnalysed, StatusPublished, StatusExcluded}
}

func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok || s == StatusExcluded
}

// ParseStatus validates s as a known status.
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

// CanAdvance reports whether a finding may move from one status to another.
// Moves run forward along new, classified, analysed, published.
// Excluded is terminal and reached only through CanExclude.
func CanAdvance(from, to Status) bool {
	f, ok := rank[from]
	if !ok {
		return false
	}
	t, ok := rank[to]
	if !ok {
		return false
	}
	return t > f
}

// CanExclude reports whether an operator may exclude a finding in status s.
func CanExclude(s Status) bool {
	return s != StatusPublished && s != StatusExcluded && s.Valid()
}
