package workflow

import (
	"context"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/prompts"
)

// AnalyseHumanFactors maps the incident onto the SEIPS domains. When the
// extraction was not parsed its raw text stands in for the summary.
func AnalyseHumanFactors(
	ctx context.Context,
	rt *Runtime,
	content string,
	extraction *StageResult[analyses.Extraction],
) (*StageResult[HumanFactorsReport], error) {
	result, err := runStage[HumanFactorsReport](ctx, rt, prompts.StageHumanFactors, map[string]string{
		"summary": summaryOf(extraction),
		"content": truncate(content, humanFactorsContentLimit),
	}, rt.config(humanFactorsMaxTokens, rt.Settings.Temperature))
	if err != nil {
		return nil, err
	}

	rt.logger().InfoContext(ctx, "human factors stage complete",
		"factors", result.Value.Count(),
		"hazards", len(result.Value.LatentHazards),
		"opportunities", len(result.Value.ImprovementOpportunities),
		"parsed", result.Parsed,
	)
	return result, nil
}

func summaryOf(extraction *StageResult[analyses.Extraction]) string {
	if extraction == nil {
		return ""
	}
	if !extraction.Parsed {
		return truncate(extraction.Raw, draftFactorsLimit)
	}
	return extraction.Value.Summary
}
