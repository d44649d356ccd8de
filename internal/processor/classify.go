package processor

import (
	"context"

	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/workflow"
)

// Classify runs the classification pass: new findings get the classify
// stage only and move to classified.
func (p *Processor) Classify(ctx context.Context, limit int) (*Stats, error) {
	return p.pass(ctx, PassClassify, limit, p.pendingClassification, p.classify)
}

func (p *Processor) pendingClassification(ctx context.Context, tx store.Tx, limit int) ([]findings.Finding, error) {
	return tx.PendingClassification(ctx, limit)
}

func (p *Processor) classify(ctx context.Context, f findings.Finding) (*work, error) {
	res, err := workflow.Classify(ctx, p.rt, f)
	if err != nil {
		return nil, err
	}

	cls := findings.Classification{
		IsHealthcare: res.Value.IsHealthcare,
		Confidence:   res.Value.Confidence,
		Usage:        findings.Usage{TokensIn: res.TokensIn, TokensOut: res.TokensOut, CostUSD: res.Cost},
	}
	return &work{
		tokensIn:  res.TokensIn,
		tokensOut: res.TokensOut,
		cost:      res.Cost,
		persist: func(ctx context.Context, tx store.Tx, d *Stats) error {
			if err := tx.ClassifyFinding(ctx, f.ID, cls); err != nil {
				return err
			}
			d.Classified++
			if res.Value.Healthcare(p.cfg.Threshold) {
				d.Healthcare++
			} else {
				d.NonHealthcare++
			}
			return nil
		},
	}, nil
}
