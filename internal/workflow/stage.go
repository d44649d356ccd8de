package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/JaimeStill/inquest/internal/llm"
	"github.com/JaimeStill/inquest/internal/prompts"
	"github.com/JaimeStill/inquest/pkg/formatting"
)

// Stage budgets: content characters sent and output tokens allowed.
const (
	classifyContentLimit     = 8000
	classifyMaxTokens        = 500
	extractContentLimit      = 12000
	extractMaxTokens         = 2000
	humanFactorsContentLimit = 10000
	humanFactorsMaxTokens    = 3000
	draftFactorsLimit        = 4000
	draftMaxTokens           = 4000
	keyLearningSeeds         = 5
)

// runStage issues one gateway call. A transport failure is an error; an
// undecodable response is not. Members of the response that do not fit T
// are dropped and the rest kept.
func runStage[T any](
	ctx context.Context,
	rt *Runtime,
	stage prompts.Stage,
	vars map[string]string,
	cfg llm.Config,
) (*StageResult[T], error) {
	composed, err := ComposePrompt(ctx, rt, stage, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err)
	}

	resp, err := rt.LLM.Complete(ctx, composed.System, composed.User, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err)
	}

	result := &StageResult[T]{
		Provider:  resp.Provider,
		Model:     resp.Model,
		Override:  composed.Override,
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
		Cost:      resp.Cost,
	}

	value, err := formatting.Parse[T](resp.Content)
	var partial *formatting.PartialError
	if errors.As(err, &partial) {
		rt.logger().WarnContext(ctx, "stage response partially parsed",
			"stage", stage,
			"dropped", partial.Fields,
		)
		result.Dropped = partial.Fields
		err = nil
	}
	if err != nil {
		rt.logger().WarnContext(ctx, "stage response not parsed, using defaults",
			"stage", stage,
			"response_length", len(resp.Content),
		)
		result.Raw = resp.Content
		return result, nil
	}

	result.Value = value
	result.Parsed = true
	return result, nil
}
