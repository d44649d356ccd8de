package workflow

import (
	"context"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/prompts"
)

// Extract produces the structured incident summary.
func Extract(ctx context.Context, rt *Runtime, content string) (*StageResult[analyses.Extraction], error) {
	result, err := runStage[analyses.Extraction](ctx, rt, prompts.StageExtract, map[string]string{
		"content": truncate(content, extractContentLimit),
	}, rt.config(extractMaxTokens, rt.Settings.Temperature))
	if err != nil {
		return nil, err
	}

	rt.logger().InfoContext(ctx, "extract stage complete",
		"events", len(result.Value.SequenceOfEvents),
		"parsed", result.Parsed,
	)
	return result, nil
}
