package main

import (
	"github.com/spf13/cobra"
)

func newJobsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Show the scrape and processing schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(opts)
			if err != nil {
				return err
			}
			defer a.close()

			jobs, err := a.svc.Scheduler.Sync(cmd.Context())
			if err != nil {
				a.infra.Logger.Warn("some sources were not scheduled", "error", err)
			}
			if len(jobs) == 0 {
				jobs = a.svc.Scheduler.Jobs()
			}
			return newPrinter(cmd, opts).jobs(jobs)
		},
	}
}
