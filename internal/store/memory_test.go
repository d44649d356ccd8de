package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/internal/store"
)

func newMemory(t *testing.T) (*store.Memory, sources.Source) {
	t.Helper()
	m := store.NewMemory()
	src := m.PutSource(sources.Source{Code: "demo_src", Name: "Demo", Active: true})
	return m, src
}

func createCmd(src sources.Source, externalID string) findings.CreateCommand {
	return findings.CreateCommand{
		SourceID:    src.ID,
		ExternalID:  externalID,
		Title:       "Report " + externalID,
		SourceURL:   "https://example.org/" + externalID,
		ContentText: "patient deteriorated on the ward",
	}
}

func TestMemoryActiveSource(t *testing.T) {
	m, _ := newMemory(t)
	m.PutSource(sources.Source{Code: "dormant", Active: false})

	tests := []struct {
		code    string
		wantErr error
	}{
		{"demo_src", nil},
		{"dormant", sources.ErrInactive},
		{"missing", sources.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := m.ActiveSource(context.Background(), tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ActiveSource(%q) error = %v, want %v", tt.code, err, tt.wantErr)
			}
		})
	}

	active, err := m.ActiveSources(context.Background())
	if err != nil {
		t.Fatalf("ActiveSources() error = %v", err)
	}
	if len(active) != 1 || active[0].Code != "demo_src" {
		t.Errorf("ActiveSources() = %+v, want only demo_src", active)
	}
}

func TestMemoryCreateFindingDedup(t *testing.T) {
	m, src := newMemory(t)
	ctx := context.Background()

	tx, err := m.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	f, err := tx.CreateFinding(ctx, createCmd(src, "r1"))
	if err != nil {
		t.Fatalf("CreateFinding() error = %v", err)
	}
	if f.Status != findings.StatusNew || f.SourceCode != "demo_src" {
		t.Errorf("finding = %s/%s, want new/demo_src", f.Status, f.SourceCode)
	}

	exists, err := tx.ExistsFinding(ctx, src.ID, "r1")
	if err != nil || !exists {
		t.Errorf("ExistsFinding() = %v, %v, want true", exists, err)
	}

	if _, err := tx.CreateFinding(ctx, createCmd(src, "r1")); !errors.Is(err, findings.ErrDuplicate) {
		t.Errorf("second CreateFinding() error = %v, want ErrDuplicate", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if got := len(m.Findings()); got != 1 {
		t.Errorf("len(Findings()) = %d, want 1", got)
	}
}

func TestMemoryRollback(t *testing.T) {
	m, src := newMemory(t)
	ctx := context.Background()

	tx, _ := m.Begin(ctx)
	if _, err := tx.CreateFinding(ctx, createCmd(src, "r1")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if got := len(m.Findings()); got != 0 {
		t.Errorf("len(Findings()) = %d, want 0 after rollback", got)
	}
	if err := tx.Commit(); !errors.Is(err, store.ErrTxDone) {
		t.Errorf("Commit() after rollback error = %v, want ErrTxDone", err)
	}

	tx, _ = m.Begin(ctx)
	if _, err := tx.CreateFinding(ctx, createCmd(src, "r1")); err != nil {
		t.Errorf("CreateFinding() after rollback error = %v", err)
	}
	tx.Commit()
}

func TestMemoryGuardRewindsFailedRecord(t *testing.T) {
	m, src := newMemory(t)
	ctx := context.Background()

	tx, _ := m.Begin(ctx)

	boom := errors.New("boom")
	err := tx.Guard(ctx, func() error {
		if _, err := tx.CreateFinding(ctx, createCmd(src, "bad")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Guard() error = %v, want boom", err)
	}

	err = tx.Guard(ctx, func() error {
		_, err := tx.CreateFinding(ctx, createCmd(src, "good"))
		return err
	})
	if err != nil {
		t.Fatalf("Guard() error = %v", err)
	}
	tx.Commit()

	got := m.Findings()
	if len(got) != 1 || got[0].ExternalID != "good" {
		t.Errorf("Findings() = %+v, want only good", got)
	}
}

func TestMemoryLifecycle(t *testing.T) {
	m, src := newMemory(t)
	ctx := context.Background()

	tx, _ := m.Begin(ctx)
	f, _ := tx.CreateFinding(ctx, createCmd(src, "r1"))
	other, _ := tx.CreateFinding(ctx, createCmd(src, "r2"))

	pending, err := tx.PendingClassification(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("PendingClassification() = %d, %v, want 2", len(pending), err)
	}

	if err := tx.ClassifyFinding(ctx, f.ID, findings.Classification{IsHealthcare: true, Confidence: 0.9}); err != nil {
		t.Fatalf("ClassifyFinding() error = %v", err)
	}
	if err := tx.ClassifyFinding(ctx, other.ID, findings.Classification{IsHealthcare: true, Confidence: 0.4}); err != nil {
		t.Fatalf("ClassifyFinding() error = %v", err)
	}
	if err := tx.ClassifyFinding(ctx, f.ID, findings.Classification{IsHealthcare: true, Confidence: 0.9}); !errors.Is(err, findings.ErrInvalidTransition) {
		t.Errorf("reclassify error = %v, want ErrInvalidTransition", err)
	}

	ready, err := tx.PendingAnalysis(ctx, 10, 0.7)
	if err != nil || len(ready) != 1 || ready[0].ID != f.ID {
		t.Fatalf("PendingAnalysis() = %+v, %v, want only r1", ready, err)
	}

	a, err := tx.CreateAnalysis(ctx, analyses.CreateCommand{FindingID: f.ID, Provider: "claude", Model: "m"})
	if err != nil {
		t.Fatalf("CreateAnalysis() error = %v", err)
	}

	cmd := posts.CreateCommand{AnalysisID: a.ID, FindingID: f.ID, Slug: "report-r1", Title: "Report"}
	p, err := tx.CreatePost(ctx, cmd)
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if p.Status != posts.StatusPendingReview {
		t.Errorf("post Status = %s, want pending_review", p.Status)
	}
	if _, err := tx.CreatePost(ctx, cmd); !errors.Is(err, posts.ErrDuplicate) {
		t.Errorf("duplicate CreatePost() error = %v, want ErrDuplicate", err)
	}

	if err := tx.AdvanceFinding(ctx, f.ID, findings.StatusClassified, findings.StatusAnalysed); err != nil {
		t.Fatalf("AdvanceFinding() error = %v", err)
	}
	if err := tx.AdvanceFinding(ctx, f.ID, findings.StatusAnalysed, findings.StatusClassified); !errors.Is(err, findings.ErrInvalidTransition) {
		t.Errorf("backward AdvanceFinding() error = %v, want ErrInvalidTransition", err)
	}
	tx.Commit()

	got, _ := m.Finding(f.ID)
	if got.Status != findings.StatusAnalysed {
		t.Errorf("Status = %s, want analysed", got.Status)
	}
	if len(m.Analyses()) != 1 || len(m.Posts()) != 1 {
		t.Errorf("analyses/posts = %d/%d, want 1/1", len(m.Analyses()), len(m.Posts()))
	}
}

func TestMemoryTouchSource(t *testing.T) {
	m, src := newMemory(t)
	ctx := context.Background()

	tx, _ := m.Begin(ctx)
	if err := tx.TouchSource(ctx, uuid.New(), src.CreatedAt); !errors.Is(err, sources.ErrNotFound) {
		t.Errorf("TouchSource(unknown) error = %v, want ErrNotFound", err)
	}
	if err := tx.TouchSource(ctx, src.ID, src.CreatedAt); err != nil {
		t.Fatalf("TouchSource() error = %v", err)
	}
	tx.Commit()

	got, _ := m.Source("demo_src")
	if got.LastRunAt == nil {
		t.Error("LastRunAt not set")
	}
}

func TestMemoryClassifyFindingKeepsUsage(t *testing.T) {
	m, src := newMemory(t)
	ctx := context.Background()

	cmd := createCmd(src, "r1")
	cmd.Metadata = map[string]any{"court": "Sydney"}

	tx, _ := m.Begin(ctx)
	f, _ := tx.CreateFinding(ctx, cmd)
	err := tx.ClassifyFinding(ctx, f.ID, findings.Classification{
		IsHealthcare: true,
		Confidence:   0.8,
		Usage:        findings.Usage{TokensIn: 100, TokensOut: 50, CostUSD: 0.00105},
	})
	if err != nil {
		t.Fatalf("ClassifyFinding() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, _ := m.Finding(f.ID)
	want := findings.Usage{TokensIn: 100, TokensOut: 50, CostUSD: 0.00105}
	if u := got.ClassificationUsage(); u != want {
		t.Errorf("ClassificationUsage() = %+v, want %+v", u, want)
	}
	if got.Metadata["court"] != "Sydney" {
		t.Errorf("metadata court = %v, want Sydney", got.Metadata["court"])
	}
}
