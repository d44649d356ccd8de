// Package workflow runs the four-stage analysis pipeline over a finding:
// classify, extract, human factors, and draft. Each stage is one gateway
// call whose JSON response is decoded into a typed result; an undecodable
// response degrades to zero defaults instead of failing the finding.
package workflow

import (
	"context"
	"time"

	"github.com/JaimeStill/inquest/internal/findings"
)

// Execute classifies f and, when it is healthcare-related at threshold,
// runs the analysis stages. A non-healthcare finding returns after one
// call with only Classification set.
func Execute(ctx context.Context, rt *Runtime, f findings.Finding, threshold float64) (*Result, error) {
	result := &Result{StartedAt: time.Now().UTC()}

	cls, err := Classify(ctx, rt, f)
	if err != nil {
		return nil, err
	}
	result.Classification = cls

	if !cls.Value.Healthcare(threshold) {
		rt.logger().InfoContext(ctx, "finding not healthcare, skipping analysis",
			"finding_id", f.ID,
			"confidence", cls.Value.Confidence,
			"threshold", threshold,
		)
		result.CompletedAt = time.Now().UTC()
		return result, nil
	}

	if err := analyse(ctx, rt, f, result); err != nil {
		return nil, err
	}
	result.CompletedAt = time.Now().UTC()
	return result, nil
}

// Analyse runs extract, human factors, and draft over a finding that has
// already been classified.
func Analyse(ctx context.Context, rt *Runtime, f findings.Finding) (*Result, error) {
	result := &Result{StartedAt: time.Now().UTC()}
	if err := analyse(ctx, rt, f, result); err != nil {
		return nil, err
	}
	result.CompletedAt = time.Now().UTC()
	return result, nil
}

func analyse(ctx context.Context, rt *Runtime, f findings.Finding, result *Result) error {
	content := f.Content()
	if content == "" {
		return ErrNoContent
	}

	extraction, err := Extract(ctx, rt, content)
	if err != nil {
		return err
	}
	result.Extraction = extraction

	factors, err := AnalyseHumanFactors(ctx, rt, content, extraction)
	if err != nil {
		return err
	}
	result.HumanFactors = factors

	draft, err := WriteDraft(ctx, rt, extraction, factors)
	if err != nil {
		return err
	}
	result.Draft = draft

	rt.logger().InfoContext(ctx, "analysis complete",
		"finding_id", f.ID,
		"tokens_input", result.TokensIn(),
		"tokens_output", result.TokensOut(),
		"cost_usd", result.Cost(),
	)
	return nil
}
