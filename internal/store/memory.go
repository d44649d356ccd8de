package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/internal/sources"
)

type findingKey struct {
	source   uuid.UUID
	external string
}

// Memory is an in-process Store for dry runs and tests. Transactions are
// serialized; writes are undone on Rollback or a failed Guard.
type Memory struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	sources  map[string]*sources.Source
	findings map[uuid.UUID]*findings.Finding
	keys     map[findingKey]uuid.UUID
	order    []uuid.UUID
	analyses []analyses.Analysis
	posts    []posts.Post
	slugs    map[string]bool
	drafted  map[uuid.UUID]bool
	now      func() time.Time
}

// NewMemory creates an empty in-memory store holding srcs. Sources without
// an ID are assigned one.
func NewMemory(srcs ...sources.Source) *Memory {
	m := &Memory{
		sources:  make(map[string]*sources.Source),
		findings: make(map[uuid.UUID]*findings.Finding),
		keys:     make(map[findingKey]uuid.UUID),
		slugs:    make(map[string]bool),
		drafted:  make(map[uuid.UUID]bool),
		now:      time.Now,
	}
	for _, s := range srcs {
		m.PutSource(s)
	}
	return m
}

// PutSource registers or replaces a source by code.
func (m *Memory) PutSource(s sources.Source) sources.Source {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	m.sources[s.Code] = &s
	return s
}

// Source returns the stored source by code regardless of activity.
func (m *Memory) Source(code string) (sources.Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sources[code]
	if !ok {
		return sources.Source{}, false
	}
	return *s, true
}

// Findings returns every finding in capture order.
func (m *Memory) Findings() []findings.Finding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]findings.Finding, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.findings[id])
	}
	return out
}

// Finding returns one finding by ID.
func (m *Memory) Finding(id uuid.UUID) (findings.Finding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.findings[id]
	if !ok {
		return findings.Finding{}, false
	}
	return *f, true
}

func (m *Memory) Analyses() []analyses.Analysis {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.analyses)
}

func (m *Memory) Posts() []posts.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.posts)
}

func (m *Memory) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.txMu.Lock()
	return &memTx{m: m}, nil
}

func (m *Memory) ActiveSource(_ context.Context, code string) (*sources.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sources[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sources.ErrNotFound, code)
	}
	if !s.Active {
		return nil, fmt.Errorf("%w: %s", sources.ErrInactive, code)
	}
	out := *s
	return &out, nil
}

func (m *Memory) ActiveSources(context.Context) ([]sources.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []sources.Source
	for _, s := range m.sources {
		if s.Active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type memTx struct {
	m    *Memory
	undo []func()
	done bool
}

// write runs fn under the store lock and records its undo step.
func (t *memTx) write(fn func() (func(), error)) error {
	if t.done {
		return ErrTxDone
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	undo, err := fn()
	if err != nil {
		return err
	}
	if undo != nil {
		t.undo = append(t.undo, undo)
	}
	return nil
}

func (t *memTx) TouchSource(_ context.Context, id uuid.UUID, ts time.Time) error {
	return t.write(func() (func(), error) {
		for _, s := range t.m.sources {
			if s.ID != id {
				continue
			}
			prev := s.LastRunAt
			s.LastRunAt = &ts
			return func() { s.LastRunAt = prev }, nil
		}
		return nil, sources.ErrNotFound
	})
}

func (t *memTx) ExistsFinding(_ context.Context, sourceID uuid.UUID, externalID string) (bool, error) {
	if t.done {
		return false, ErrTxDone
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	_, ok := t.m.keys[findingKey{sourceID, externalID}]
	return ok, nil
}

func (t *memTx) CreateFinding(_ context.Context, cmd findings.CreateCommand) (*findings.Finding, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var out findings.Finding
	err := t.write(func() (func(), error) {
		key := findingKey{cmd.SourceID, cmd.ExternalID}
		if _, ok := t.m.keys[key]; ok {
			return nil, fmt.Errorf("%w: %s", findings.ErrDuplicate, cmd.ExternalID)
		}

		var code string
		for _, s := range t.m.sources {
			if s.ID == cmd.SourceID {
				code = s.Code
			}
		}
		if code == "" {
			return nil, fmt.Errorf("insert finding: %w", sources.ErrNotFound)
		}

		now := t.m.now().UTC()
		f := &findings.Finding{
			ID:            uuid.New(),
			SourceID:      cmd.SourceID,
			SourceCode:    code,
			ExternalID:    cmd.ExternalID,
			Title:         cmd.Title,
			DeceasedName:  cmd.DeceasedName,
			CoronerName:   cmd.CoronerName,
			DateOfDeath:   cmd.DateOfDeath,
			DateOfFinding: cmd.DateOfFinding,
			SourceURL:     cmd.SourceURL,
			PDFURL:        cmd.PDFURL,
			PDFText:       cmd.PDFText,
			ContentText:   cmd.ContentText,
			ContentHTML:   cmd.ContentHTML,
			Categories:    orEmpty(slices.Clone(cmd.Categories)),
			Metadata:      orEmptyMap(maps.Clone(cmd.Metadata)),
			Status:        findings.StatusNew,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		t.m.findings[f.ID] = f
		t.m.keys[key] = f.ID
		t.m.order = append(t.m.order, f.ID)
		out = *f

		return func() {
			delete(t.m.findings, f.ID)
			delete(t.m.keys, key)
			t.m.order = slices.DeleteFunc(t.m.order, func(id uuid.UUID) bool { return id == f.ID })
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *memTx) pending(limit int, match func(*findings.Finding) bool) ([]findings.Finding, error) {
	if t.done {
		return nil, ErrTxDone
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	var out []findings.Finding
	for _, id := range t.m.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		if f := t.m.findings[id]; match(f) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (t *memTx) PendingClassification(_ context.Context, limit int) ([]findings.Finding, error) {
	return t.pending(limit, func(f *findings.Finding) bool {
		return f.Status == findings.StatusNew && f.IsHealthcare == nil
	})
}

func (t *memTx) PendingAnalysis(_ context.Context, limit int, threshold float64) ([]findings.Finding, error) {
	return t.pending(limit, func(f *findings.Finding) bool {
		return f.Status == findings.StatusClassified && f.Healthcare(threshold)
	})
}

func (t *memTx) ClassifyFinding(_ context.Context, id uuid.UUID, c findings.Classification) error {
	return t.write(func() (func(), error) {
		f, ok := t.m.findings[id]
		if !ok || f.Status != findings.StatusNew {
			return nil, transitionError(findings.StatusNew, findings.StatusClassified)
		}

		prev := *f
		isHealthcare, confidence := c.IsHealthcare, c.Confidence
		f.IsHealthcare = &isHealthcare
		f.HealthcareConfidence = &confidence
		f.Metadata = maps.Clone(f.Metadata)
		if f.Metadata == nil {
			f.Metadata = map[string]any{}
		}
		maps.Copy(f.Metadata, c.Metadata())
		f.Status = findings.StatusClassified
		f.UpdatedAt = t.m.now().UTC()

		return func() { *f = prev }, nil
	})
}

func (t *memTx) AdvanceFinding(_ context.Context, id uuid.UUID, from, to findings.Status) error {
	if !findings.CanAdvance(from, to) {
		return transitionError(from, to)
	}

	return t.write(func() (func(), error) {
		f, ok := t.m.findings[id]
		if !ok || f.Status != from {
			return nil, transitionError(from, to)
		}

		prev := *f
		f.Status = to
		f.UpdatedAt = t.m.now().UTC()

		return func() { *f = prev }, nil
	})
}

func (t *memTx) CreateAnalysis(_ context.Context, cmd analyses.CreateCommand) (*analyses.Analysis, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var out analyses.Analysis
	err := t.write(func() (func(), error) {
		if _, ok := t.m.findings[cmd.FindingID]; !ok {
			return nil, fmt.Errorf("insert analysis: %w", findings.ErrNotFound)
		}

		out = analyses.Analysis{
			ID:              uuid.New(),
			FindingID:       cmd.FindingID,
			Provider:        cmd.Provider,
			Model:           cmd.Model,
			PromptVersion:   cmd.PromptVersion,
			Summary:         cmd.Summary,
			Extraction:      cmd.Extraction,
			HumanFactors:    cmd.HumanFactors,
			LatentHazards:   orEmpty(cmd.LatentHazards),
			Recommendations: orEmpty(cmd.Recommendations),
			TokensInput:     cmd.TokensInput,
			TokensOutput:    cmd.TokensOutput,
			CostUSD:         cmd.CostUSD,
			CreatedAt:       t.m.now().UTC(),
		}
		t.m.analyses = append(t.m.analyses, out)

		n := len(t.m.analyses) - 1
		return func() { t.m.analyses = t.m.analyses[:n] }, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *memTx) CreatePost(_ context.Context, cmd posts.CreateCommand) (*posts.Post, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	status := cmd.Status
	if status == "" {
		status = posts.StatusPendingReview
	}

	var out posts.Post
	err := t.write(func() (func(), error) {
		if t.m.slugs[cmd.Slug] || t.m.drafted[cmd.AnalysisID] {
			return nil, fmt.Errorf("insert post: %w", posts.ErrDuplicate)
		}

		now := t.m.now().UTC()
		out = posts.Post{
			ID:           uuid.New(),
			AnalysisID:   cmd.AnalysisID,
			FindingID:    cmd.FindingID,
			Slug:         cmd.Slug,
			Title:        cmd.Title,
			Content:      cmd.Content,
			Excerpt:      cmd.Excerpt,
			KeyLearnings: orEmpty(cmd.KeyLearnings),
			Tags:         orEmpty(cmd.Tags),
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		t.m.posts = append(t.m.posts, out)
		t.m.slugs[cmd.Slug] = true
		t.m.drafted[cmd.AnalysisID] = true

		n := len(t.m.posts) - 1
		return func() {
			t.m.posts = t.m.posts[:n]
			delete(t.m.slugs, cmd.Slug)
			delete(t.m.drafted, cmd.AnalysisID)
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *memTx) Guard(_ context.Context, fn func() error) error {
	if t.done {
		return ErrTxDone
	}

	mark := len(t.undo)
	if err := fn(); err != nil {
		t.rewind(mark)
		return err
	}
	return nil
}

func (t *memTx) rewind(mark int) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	for i := len(t.undo) - 1; i >= mark; i-- {
		t.undo[i]()
	}
	t.undo = t.undo[:mark]
}

func (t *memTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.undo = nil
	t.m.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.rewind(0)
	t.done = true
	t.m.txMu.Unlock()
	return nil
}
