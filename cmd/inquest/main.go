// Command inquest runs scrape and analysis passes from the command line
// against the same database and configuration as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/inquest/internal/config"
)

type options struct {
	configFile string
	jsonOutput bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "inquest",
		Short:         "Coroner findings monitor",
		Long:          "Scrape coroner findings, classify them, and draft lessons-learned posts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", config.BaseConfigFile, "base configuration file")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(
		newScrapeCommand(opts),
		newClassifyCommand(opts),
		newAnalyseCommand(opts),
		newProcessCommand(opts),
		newSourcesCommand(opts),
		newJobsCommand(opts),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
