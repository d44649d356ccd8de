package api

import (
	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/internal/processor"
	"github.com/JaimeStill/inquest/internal/prompts"
	"github.com/JaimeStill/inquest/internal/scheduler"
	"github.com/JaimeStill/inquest/internal/sources"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sources  sources.System
	Findings findings.System
	Analyses analyses.System
	Posts    posts.System
	Prompts  prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	return &Domain{
		Sources:  sources.New(db, runtime.Logger, runtime.Pagination),
		Findings: findings.New(db, runtime.Logger, runtime.Pagination),
		Analyses: analyses.New(db, runtime.Logger, runtime.Pagination),
		Posts:    posts.New(db, runtime.Logger, runtime.Pagination),
		Prompts:  prompts.New(db, runtime.Logger, runtime.Pagination),
	}
}

// Operations are the long-running services the API triggers on demand.
type Operations struct {
	Scheduler *scheduler.Scheduler
	Processor *processor.Processor
}
