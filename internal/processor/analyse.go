package processor

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/posts"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/workflow"
)

// Analyse runs the analysis pass: classified healthcare findings get the
// extract, human factors, and draft stages, one analysis, one post pending
// review, and move to analysed.
func (p *Processor) Analyse(ctx context.Context, limit int) (*Stats, error) {
	return p.pass(ctx, PassAnalyse, limit, p.pendingAnalysis, p.analyse)
}

func (p *Processor) pendingAnalysis(ctx context.Context, tx store.Tx, limit int) ([]findings.Finding, error) {
	return tx.PendingAnalysis(ctx, limit, p.cfg.Threshold)
}

func (p *Processor) analyse(ctx context.Context, f findings.Finding) (*work, error) {
	res, err := workflow.Analyse(ctx, p.rt, f)
	if err != nil {
		return nil, err
	}

	// The analysis record carries the spend of all four stages; the pass
	// stats count only what this pass spent.
	cmd := res.AnalysisCommand(f.ID, p.rt.Settings.PromptVersion)
	withClassification(&cmd, f.ClassificationUsage())
	return &work{
		tokensIn:  res.TokensIn(),
		tokensOut: res.TokensOut(),
		cost:      res.Cost(),
		persist: func(ctx context.Context, tx store.Tx, d *Stats) error {
			a, err := tx.CreateAnalysis(ctx, cmd)
			if err != nil {
				return err
			}
			d.AnalysesCreated++

			post, err := tx.CreatePost(ctx, postCommand(f, a.ID, res.Draft))
			if err != nil {
				return err
			}
			d.PostsCreated++

			if err := tx.AdvanceFinding(ctx, f.ID, findings.StatusClassified, findings.StatusAnalysed); err != nil {
				return err
			}

			p.logger.Debug("post drafted", "finding_id", f.ID, "post_id", post.ID, "slug", post.Slug)
			return nil
		},
	}, nil
}

func withClassification(cmd *analyses.CreateCommand, u findings.Usage) {
	cmd.TokensInput += u.TokensIn
	cmd.TokensOutput += u.TokensOut
	cmd.CostUSD = math.Round((cmd.CostUSD+u.CostUSD)*1e6) / 1e6
}

// postCommand builds the review draft. An unparsed draft keeps the raw
// response as its body under the finding title so an editor can repair it.
func postCommand(f findings.Finding, analysisID uuid.UUID, draft *workflow.StageResult[workflow.Draft]) posts.CreateCommand {
	d := draft.Value

	title := d.Title
	if title == "" {
		title = f.Title
	}
	content := d.ContentMarkdown
	if content == "" {
		content = draft.Raw
	}

	return posts.CreateCommand{
		AnalysisID:   analysisID,
		FindingID:    f.ID,
		Slug:         Slug(title, f.ID),
		Title:        title,
		Content:      content,
		Excerpt:      d.Excerpt,
		KeyLearnings: d.KeyLearnings,
		Tags:         d.Tags,
		Status:       posts.StatusPendingReview,
	}
}
