package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/prompts"
)

// WriteDraft turns the analysis into a post draft at the creative
// temperature. Missing key learnings fall back to the first improvement
// opportunities.
func WriteDraft(
	ctx context.Context,
	rt *Runtime,
	extraction *StageResult[analyses.Extraction],
	factors *StageResult[HumanFactorsReport],
) (*StageResult[Draft], error) {
	seeds := keyLearnings(factors)

	factorsJSON, err := json.MarshalIndent(factors.Value.HumanFactors, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: encode human factors: %w", ErrStageFailed, prompts.StageDraft, err)
	}
	factorsText := string(factorsJSON)
	if !factors.Parsed {
		factorsText = factors.Raw
	}

	bullets := make([]string, len(seeds))
	for i, s := range seeds {
		bullets[i] = "- " + s
	}

	result, err := runStage[Draft](ctx, rt, prompts.StageDraft, map[string]string{
		"summary":       summaryOf(extraction),
		"human_factors": truncate(factorsText, draftFactorsLimit),
		"key_learnings": strings.Join(bullets, "\n"),
	}, rt.config(draftMaxTokens, rt.Settings.CreativeTemperature))
	if err != nil {
		return nil, err
	}

	if len(result.Value.KeyLearnings) == 0 {
		result.Value.KeyLearnings = seeds
	}

	rt.logger().InfoContext(ctx, "draft stage complete",
		"title", result.Value.Title,
		"key_learnings", len(result.Value.KeyLearnings),
		"parsed", result.Parsed,
	)
	return result, nil
}

func keyLearnings(factors *StageResult[HumanFactorsReport]) []string {
	var seeds []string
	for _, opp := range factors.Value.ImprovementOpportunities {
		if len(seeds) == keyLearningSeeds {
			break
		}
		if text := strings.TrimSpace(opp.Recommendation); text != "" {
			seeds = append(seeds, text)
		}
	}
	return seeds
}
