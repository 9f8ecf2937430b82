package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/fieldfix/internal/pipeline"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
	"github.com/lehigh-university-libraries/fieldfix/internal/report"
)

type linkOptions struct {
	persist     bool
	showSkipped bool
	sample      int
	reportDir   string
}

func newLinkCmd(root *rootOptions) *cobra.Command {
	opts := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "link <vocabulary> <descriptor>",
		Short: "Link raw classification codes against a reference vocabulary",
		Long: `Loads the reference table and the raw (record, code) pairs for a vocabulary,
keeps the pairs whose code exists in the reference table, and prints the totals.

The descriptor is a PostgreSQL connection string or a directory holding
Parquet/JSONL exports named after the configured tables.`,
		Example: `  # Check BBK subject codes against the catalog database
  fieldfix link bbk postgres://catalog@localhost/library

  # Link GRNTI codes from an export directory and store the links
  fieldfix link grnti ./exports --persist

  # Any vocabulary from --config
  fieldfix link udc ./exports --config vocab.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, root, opts, args[0], args[1])
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.persist, "persist", false, "Insert matched links into the vocabulary's link table")
	cmd.PersistentFlags().BoolVar(&opts.showSkipped, "show-skipped", false, "List codes with no reference entry")
	cmd.PersistentFlags().IntVar(&opts.sample, "sample", 0, "Print the INSERT statements for the first N links")
	cmd.PersistentFlags().StringVar(&opts.reportDir, "report-dir", "", "Save a YAML report of the run to this directory")

	for _, name := range []string{"bbk", "grnti"} {
		cmd.AddCommand(newLinkVocabularyCmd(root, opts, name))
	}

	return cmd
}

func newLinkVocabularyCmd(root *rootOptions, opts *linkOptions, name string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <descriptor>",
		Short: fmt.Sprintf("Link raw %s codes", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, root, opts, name, args[0])
		},
	}
}

func runLink(cmd *cobra.Command, root *rootOptions, opts *linkOptions, name, descriptor string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	vocab, err := cfg.Vocabulary(name)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := reference.Open(ctx, descriptor)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close store", "err", err)
		}
	}()

	start := time.Now()
	result, err := pipeline.Link(ctx, store, vocab, pipeline.LinkOptions{
		Persist:     opts.persist,
		ShowSkipped: opts.showSkipped || opts.reportDir != "",
	})
	if err != nil {
		return err
	}
	slog.Debug("Link finished", "vocabulary", vocab.Name, "elapsed", time.Since(start))

	return writeLinkOutput(cmd, vocab, opts, descriptor, result)
}

func writeLinkOutput(cmd *cobra.Command, vocab reference.Vocabulary, opts *linkOptions, descriptor string, result *pipeline.LinkReport) error {
	out := cmd.OutOrStdout()

	if err := report.WriteLinkSummary(out, result.Result); err != nil {
		return err
	}
	if opts.persist {
		fmt.Fprintf(out, "Persisted       : %d\n", result.Persisted)
	}
	if opts.showSkipped {
		if err := report.WriteSkippedKeys(out, result.Result.SkippedKeys); err != nil {
			return err
		}
	}
	if opts.sample > 0 {
		if err := report.WriteSample(out, vocab, result.Result.Links, opts.sample); err != nil {
			return err
		}
	}
	if opts.reportDir != "" {
		path, err := report.SaveLinkReport(opts.reportDir, descriptor, result, time.Now())
		if err != nil {
			return err
		}
		slog.Info("Link report saved", "path", path)
	}
	return nil
}
