package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/inquest/internal/llm"
	"github.com/JaimeStill/inquest/internal/processor"
)

type passFn func(p *processor.Processor, ctx context.Context, limit int) (*processor.Stats, error)

func newPassCommand(opts *options, use, short string, pass passFn) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return processor.ErrInvalidLimit
			}

			a, err := open(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if a.svc.Processor == nil {
				return llm.ErrNoProvider
			}

			stats, err := pass(a.svc.Processor, cmd.Context(), limit)
			if stats != nil {
				if perr := newPrinter(cmd, opts).stats(stats); perr != nil {
					return errors.Join(err, perr)
				}
			}
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum findings per pass (0 uses the configured batch size)")
	return cmd
}

func newClassifyCommand(opts *options) *cobra.Command {
	return newPassCommand(opts, "classify", "Classify pending findings", (*processor.Processor).Classify)
}

func newAnalyseCommand(opts *options) *cobra.Command {
	return newPassCommand(opts, "analyse", "Analyse classified healthcare findings and draft posts", (*processor.Processor).Analyse)
}

func newProcessCommand(opts *options) *cobra.Command {
	return newPassCommand(opts, "process", "Classify, then analyse", (*processor.Processor).Run)
}
