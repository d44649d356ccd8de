package prompts_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/prompts"
	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// stubSystem serves a fixed set of prompts from memory.
type stubSystem struct {
	prompts map[uuid.UUID]prompts.Prompt
	filters prompts.Filters
	created *prompts.CreateCommand
	err     error
}

func newStub(ps ...prompts.Prompt) *stubSystem {
	s := &stubSystem{prompts: map[uuid.UUID]prompts.Prompt{}}
	for _, p := range ps {
		s.prompts[p.ID] = p
	}
	return s
}

func (s *stubSystem) Handler() *prompts.Handler { return newHandler(s) }

func (s *stubSystem) List(_ context.Context, page pagination.PageRequest, f prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	s.filters = f
	if s.err != nil {
		return nil, s.err
	}
	var items []prompts.Prompt
	for _, p := range s.prompts {
		items = append(items, p)
	}
	result := pagination.NewPageResult(items, len(items), page.Page, page.PageSize)
	return &result, nil
}

func (s *stubSystem) lookup(id uuid.UUID) (*prompts.Prompt, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.prompts[id]
	if !ok {
		return nil, prompts.ErrNotFound
	}
	return &p, nil
}

func (s *stubSystem) Find(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return s.lookup(id)
}

func (s *stubSystem) Create(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &cmd
	return &prompts.Prompt{ID: uuid.New(), Name: cmd.Name, Stage: cmd.Stage, Instructions: cmd.Instructions}, nil
}

func (s *stubSystem) Update(_ context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	p, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Instructions = cmd.Name, cmd.Instructions
	return p, nil
}

func (s *stubSystem) Delete(_ context.Context, id uuid.UUID) error {
	_, err := s.lookup(id)
	return err
}

func (s *stubSystem) Activate(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	p, err := s.lookup(id)
	if err == nil {
		p.Active = true
	}
	return p, err
}

func (s *stubSystem) Deactivate(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	p, err := s.lookup(id)
	if err == nil {
		p.Active = false
	}
	return p, err
}

func (s *stubSystem) Active(_ context.Context, stage prompts.Stage) (*prompts.Prompt, error) {
	for _, p := range s.prompts {
		if p.Stage == stage && p.Active {
			return &p, nil
		}
	}
	return nil, prompts.ErrNotFound
}

func (s *stubSystem) Effective(ctx context.Context, stage prompts.Stage) (*prompts.Effective, error) {
	instructions, _ := prompts.Instructions(stage)
	spec, _ := prompts.Spec(stage)
	e := &prompts.Effective{Stage: stage, Instructions: instructions, Spec: spec}
	if p, err := s.Active(ctx, stage); err == nil {
		e.Instructions = p.Instructions
		e.Override = p
	}
	return e, nil
}

func newHandler(sys prompts.System) *prompts.Handler {
	return prompts.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func serve(sys prompts.System, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, newHandler(sys).Routes())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	return rec
}

var strictID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

func strictClassify(active bool) prompts.Prompt {
	return prompts.Prompt{
		ID:           strictID,
		Name:         "strict-classify",
		Stage:        prompts.StageClassify,
		Instructions: "Weigh omissions of care as heavily as errors.",
		Description:  ptr("Stricter healthcare classification"),
		Active:       active,
	}
}

func TestHandlerStatus(t *testing.T) {
	id := "/prompts/" + strictID.String()
	missing := "/prompts/" + uuid.New().String()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		err    error
		want   int
	}{
		{"list", "GET", "/prompts", "", nil, http.StatusOK},
		{"list failure", "GET", "/prompts", "", errors.New("db down"), http.StatusInternalServerError},
		{"find", "GET", id, "", nil, http.StatusOK},
		{"find missing", "GET", missing, "", nil, http.StatusNotFound},
		{"find malformed id", "GET", "/prompts/not-a-uuid", "", nil, http.StatusBadRequest},
		{"create", "POST", "/prompts", `{"name":"n","stage":"draft","instructions":"i"}`, nil, http.StatusCreated},
		{"create unknown stage", "POST", "/prompts", `{"name":"n","stage":"enhance","instructions":"i"}`, nil, http.StatusBadRequest},
		{"create malformed body", "POST", "/prompts", `not json`, nil, http.StatusBadRequest},
		{"create duplicate", "POST", "/prompts", `{"name":"n","stage":"draft","instructions":"i"}`, prompts.ErrDuplicate, http.StatusConflict},
		{"update", "PUT", id, `{"name":"n","stage":"classify","instructions":"i"}`, nil, http.StatusOK},
		{"update missing", "PUT", missing, `{"name":"n","stage":"classify","instructions":"i"}`, nil, http.StatusNotFound},
		{"delete", "DELETE", id, "", nil, http.StatusNoContent},
		{"delete missing", "DELETE", missing, "", nil, http.StatusNotFound},
		{"activate", "POST", id + "/activate", "", nil, http.StatusOK},
		{"deactivate missing", "POST", missing + "/deactivate", "", nil, http.StatusNotFound},
		{"stages", "GET", "/prompts/stages", "", nil, http.StatusOK},
		{"effective", "GET", "/prompts/stages/extract", "", nil, http.StatusOK},
		{"effective unknown stage", "GET", "/prompts/stages/enhance", "", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newStub(strictClassify(false))
			sys.err = tt.err

			rec := serve(sys, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.target, rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestHandlerListFilters(t *testing.T) {
	sys := newStub(strictClassify(true))
	rec := serve(sys, "GET", "/prompts?stage=classify&name=strict&active=true", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sys.filters.Stage == nil || *sys.filters.Stage != prompts.StageClassify {
		t.Errorf("Stage filter = %v, want classify", sys.filters.Stage)
	}
	if sys.filters.Name == nil || *sys.filters.Name != "strict" {
		t.Errorf("Name filter = %v, want strict", sys.filters.Name)
	}

	var result pagination.PageResult[prompts.Prompt]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].ID != strictID {
		t.Errorf("result = %+v, want the strict-classify prompt", result)
	}
}

func TestHandlerCreateDecodesCommand(t *testing.T) {
	sys := newStub()
	rec := serve(sys, "POST", "/prompts", `{"name":"plain-draft","stage":"draft","instructions":"Write plainly."}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if sys.created == nil || sys.created.Stage != prompts.StageDraft || sys.created.Name != "plain-draft" {
		t.Errorf("created = %+v", sys.created)
	}
}

func TestHandlerActivateReportsState(t *testing.T) {
	sys := newStub(strictClassify(false))
	rec := serve(sys, "POST", "/prompts/"+strictID.String()+"/activate", "")

	var got prompts.Prompt
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Active {
		t.Errorf("Active = false after activate")
	}
}

func TestHandlerEffective(t *testing.T) {
	tests := []struct {
		name         string
		stage        prompts.Stage
		wantOverride bool
	}{
		{"override in force", prompts.StageClassify, true},
		{"built-in default", prompts.StageHumanFactors, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newStub(strictClassify(true))
			rec := serve(sys, "GET", "/prompts/stages/"+string(tt.stage), "")

			var got prompts.Effective
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Stage != tt.stage {
				t.Errorf("Stage = %s, want %s", got.Stage, tt.stage)
			}
			if got.Spec == "" {
				t.Errorf("Spec is empty")
			}

			if tt.wantOverride {
				if got.Override == nil || got.Override.ID != strictID {
					t.Fatalf("Override = %+v, want strict-classify", got.Override)
				}
				if got.Instructions != strictClassify(true).Instructions {
					t.Errorf("Instructions = %q, want the override text", got.Instructions)
				}
				return
			}

			want, _ := prompts.Instructions(tt.stage)
			if got.Override != nil || got.Instructions != want {
				t.Errorf("got override %+v, want built-in instructions", got.Override)
			}
		})
	}
}

func TestHandlerStages(t *testing.T) {
	rec := serve(newStub(), "GET", "/prompts/stages", "")

	var got []prompts.Stage
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []prompts.Stage{prompts.StageClassify, prompts.StageExtract, prompts.StageHumanFactors, prompts.StageDraft}
	if len(got) != len(want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stages[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
