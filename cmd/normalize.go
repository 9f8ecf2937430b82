package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/fieldfix/internal/dataset"
	"github.com/lehigh-university-libraries/fieldfix/internal/pipeline"
	"github.com/lehigh-university-libraries/fieldfix/internal/pubinfo"
	"github.com/lehigh-university-libraries/fieldfix/internal/report"
)

func newNormalizeCmd(root *rootOptions) *cobra.Command {
	var (
		input   string
		output  string
		format  string
		workers int
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize every field of a record dataset",
		Long: `Reads raw catalog records from a JSONL or Parquet file, runs the author,
imprint, BBK and GRNTI normalizers over each one, and writes the results in
input order.`,
		Example: `  # Normalize a JSONL export to YAML
  fieldfix normalize -i records.jsonl -o records.yaml

  # First 100 records of a Parquet file as CSV on stdout
  fieldfix normalize -i records.parquet --format csv --limit 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dataset.IsSupported(input) {
				return fmt.Errorf("%w: %s (supported: .parquet, .jsonl)", dataset.ErrUnsupportedFormat, input)
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			outFormat := report.FormatFromPath(output)
			if cmd.Flags().Changed("format") {
				if outFormat, err = report.ParseFormat(format); err != nil {
					return err
				}
			}
			if workers <= 0 {
				workers = cfg.Workers
			}

			loader := dataset.NewLoader(input)
			var records []dataset.Record
			if limit > 0 {
				records, err = loader.LoadSample(limit)
			} else {
				records, err = loader.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			slog.Info("Loaded records", "path", input, "count", len(records))

			normalizer := pipeline.NewNormalizer(pubinfo.NewParser(cfg.PublicationVocabulary()), cfg.Splitter())
			results, err := normalizer.Run(cmd.Context(), records, workers)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if err := report.WriteNormalized(out, outFormat, results); err != nil {
				return err
			}
			if output != "" && output != "-" {
				slog.Info("Normalized records saved", "path", output, "format", outFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Record dataset (.jsonl or .parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, csv, yaml")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent workers (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only process the first N records (0 = all)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
