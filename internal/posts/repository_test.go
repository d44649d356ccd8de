package posts_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/pkg/pagination"
)

var postColumns = []string{
	"id", "analysis_id", "finding_id", "slug", "title", "content", "excerpt",
	"key_learnings", "tags", "status", "reviewer", "review_notes",
	"reviewed_at", "published_at", "created_at", "updated_at",
}

func postRow(id, findingID uuid.UUID, status posts.Status) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(postColumns).AddRow(
		id.String(), uuid.NewString(), findingID.String(), "missed-sepsis-1a2b3c4d",
		"Missed sepsis", "# Missed sepsis", "excerpt",
		[]byte(`["escalate early"]`), []byte(`["sepsis"]`),
		string(status), "", "", nil, nil, now, now,
	)
}

func newRepo(t *testing.T) (posts.System, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return posts.New(db, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}), mock
}

func TestRepoFindBySlug(t *testing.T) {
	sys, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM public.posts p WHERE p.slug = \$1`).
		WithArgs("missed-sepsis-1a2b3c4d").
		WillReturnRows(postRow(id, uuid.New(), posts.StatusPendingReview))

	p, err := sys.FindBySlug(context.Background(), "missed-sepsis-1a2b3c4d")
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if p.ID != id {
		t.Errorf("ID = %v, want %v", p.ID, id)
	}
	if len(p.KeyLearnings) != 1 || p.Tags[0] != "sepsis" {
		t.Errorf("KeyLearnings = %v Tags = %v", p.KeyLearnings, p.Tags)
	}
}

func TestRepoPublishMovesFinding(t *testing.T) {
	sys, mock := newRepo(t)
	id, findingID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM public.posts p WHERE p.id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(postRow(id, findingID, posts.StatusApproved))
	mock.ExpectExec(`UPDATE posts`).
		WithArgs("published", "", "", nil, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE findings SET status = 'published'`).
		WithArgs(findingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := sys.Publish(context.Background(), id, posts.PublishCommand{})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if p.Status != posts.StatusPublished {
		t.Errorf("Status = %s, want published", p.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoApproveKeepsFinding(t *testing.T) {
	sys, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM public.posts p WHERE p.id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(postRow(id, uuid.New(), posts.StatusPendingReview))
	mock.ExpectExec(`UPDATE posts`).
		WithArgs("approved", "editor", "", sqlmock.AnyArg(), nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := sys.Approve(context.Background(), id, posts.ApproveCommand{Reviewer: "editor"})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if p.Status != posts.StatusApproved || p.Reviewer != "editor" {
		t.Errorf("post = %s by %q, want approved by editor", p.Status, p.Reviewer)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoRejectInvalidTransition(t *testing.T) {
	sys, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM public.posts p`).
		WithArgs(id).
		WillReturnRows(postRow(id, uuid.New(), posts.StatusPublished))
	mock.ExpectRollback()

	_, err := sys.Reject(context.Background(), id, posts.RejectCommand{Reviewer: "editor"})
	if !errors.Is(err, posts.ErrInvalidTransition) {
		t.Errorf("Reject() error = %v, want ErrInvalidTransition", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoReviewMissing(t *testing.T) {
	sys, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM public.posts p`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := sys.Approve(context.Background(), id, posts.ApproveCommand{Reviewer: "editor"})
	if !errors.Is(err, posts.ErrNotFound) {
		t.Errorf("Approve() error = %v, want ErrNotFound", err)
	}
}
