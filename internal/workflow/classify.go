package workflow

import (
	"context"

	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/prompts"
)

// Classify decides whether a finding concerns healthcare delivery. With no
// content it classifies on the title alone. An undecodable response
// yields is_healthcare=false with zero confidence.
func Classify(ctx context.Context, rt *Runtime, f findings.Finding) (*StageResult[Classification], error) {
	content := f.Content()
	if content == "" {
		content = f.Title
	}

	result, err := runStage[Classification](ctx, rt, prompts.StageClassify, map[string]string{
		"title":   f.Title,
		"content": truncate(content, classifyContentLimit),
	}, rt.config(classifyMaxTokens, rt.Settings.Temperature))
	if err != nil {
		return nil, err
	}

	result.Value.Confidence = min(max(result.Value.Confidence, 0), 1)

	rt.logger().InfoContext(ctx, "classify stage complete",
		"finding_id", f.ID,
		"is_healthcare", result.Value.IsHealthcare,
		"confidence", result.Value.Confidence,
		"parsed", result.Parsed,
	)
	return result, nil
}
