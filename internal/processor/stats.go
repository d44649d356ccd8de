package processor

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Pass names, also used as metric labels.
const (
	PassClassify = "classify"
	PassAnalyse  = "analyse"
	PassRun      = "run"
)

// RecordError attributes a failure to the finding that caused it.
type RecordError struct {
	FindingID uuid.UUID `json:"finding_id"`
	Error     string    `json:"error"`
}

// Stats summarises one pass. Every selected finding that was not advanced
// appears in Errors, unless the pass was interrupted before reaching it.
type Stats struct {
	Pass            string        `json:"pass"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     time.Time     `json:"completed_at"`
	Processed       int           `json:"processed"`
	Classified      int           `json:"classified"`
	Healthcare      int           `json:"healthcare"`
	NonHealthcare   int           `json:"non_healthcare"`
	AnalysesCreated int           `json:"analyses_created"`
	PostsCreated    int           `json:"posts_created"`
	TokensIn        int           `json:"tokens_input"`
	TokensOut       int           `json:"tokens_output"`
	CostUSD         float64       `json:"cost_usd"`
	Errors          []RecordError `json:"errors"`
	Interrupted     bool          `json:"interrupted"`
	DurationSeconds float64       `json:"duration_seconds"`
	SuccessRate     float64       `json:"success_rate"`
}

func newStats(pass string, started time.Time) *Stats {
	return &Stats{
		Pass:      pass,
		StartedAt: started,
		Errors:    []RecordError{},
	}
}

func (s *Stats) fail(id uuid.UUID, format string, args ...any) {
	s.Errors = append(s.Errors, RecordError{
		FindingID: id,
		Error:     fmt.Sprintf(format, args...),
	})
}

func (s *Stats) usage(in, out int, cost float64) {
	s.TokensIn += in
	s.TokensOut += out
	s.CostUSD = math.Round((s.CostUSD+cost)*1e6) / 1e6
}

// add folds the record counters of o into s.
func (s *Stats) add(o *Stats) {
	s.Processed += o.Processed
	s.Classified += o.Classified
	s.Healthcare += o.Healthcare
	s.NonHealthcare += o.NonHealthcare
	s.AnalysesCreated += o.AnalysesCreated
	s.PostsCreated += o.PostsCreated
	s.usage(o.TokensIn, o.TokensOut, o.CostUSD)
	s.Errors = append(s.Errors, o.Errors...)
	s.Interrupted = s.Interrupted || o.Interrupted
}

func (s *Stats) finish(at time.Time) {
	s.CompletedAt = at
	s.DurationSeconds = at.Sub(s.StartedAt).Seconds()
	s.SuccessRate = 0
	if s.Processed > 0 {
		s.SuccessRate = float64(s.Processed-len(s.Errors)) / float64(s.Processed)
	}
}

// Combine sums a classification pass and an analysis pass into one
// summary spanning both.
func Combine(classify, analyse *Stats) *Stats {
	out := newStats(PassRun, classify.StartedAt)
	out.add(classify)
	out.add(analyse)
	out.finish(analyse.CompletedAt)
	return out
}
