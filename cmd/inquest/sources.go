package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/pkg/pagination"
)

func newSourcesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage ingestion sources",
	}

	cmd.AddCommand(
		newSourcesListCommand(opts),
		newSourcesSeedCommand(opts),
		newSourcesToggleCommand(opts, "enable", true),
		newSourcesToggleCommand(opts, "disable", false),
	)
	return cmd
}

func newSourcesListCommand(opts *options) *cobra.Command {
	var country string
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(opts)
			if err != nil {
				return err
			}
			defer a.close()

			var filters sources.Filters
			if country != "" {
				filters.Country = &country
			}
			if activeOnly {
				filters.Active = &activeOnly
			}

			all, err := pagination.Collect(cmd.Context(), a.cfg.API.Pagination.MaxPageSize,
				func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[sources.Source], error) {
					return a.svc.Domain.Sources.List(ctx, page, filters)
				})
			if err != nil {
				return err
			}

			return newPrinter(cmd, opts).sources(all)
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "filter by country")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "list active sources only")
	return cmd
}

func newSourcesSeedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sources file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(opts)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.svc.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sources from %s\n", n, a.cfg.SourcesFile)
			return nil
		},
	}
}

func newSourcesToggleCommand(opts *options, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
		Short: use + " scheduled scraping of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(opts)
			if err != nil {
				return err
			}
			defer a.close()

			src, err := a.svc.Domain.Sources.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			return newPrinter(cmd, opts).sources([]sources.Source{*src})
		},
	}
}
