package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/fieldfix/internal/author"
	"github.com/lehigh-university-libraries/fieldfix/internal/config"
	"github.com/lehigh-university-libraries/fieldfix/internal/grnti"
	"github.com/lehigh-university-libraries/fieldfix/internal/pubinfo"
)

// parser turns one raw value into output lines.
type parser func(cfg *config.Config, raw string) ([]string, error)

var parsers = []struct {
	name  string
	short string
	parse parser
}{
	{"author", "Normalize one author name", func(cfg *config.Config, raw string) ([]string, error) {
		return []string{author.Normalize(raw)}, nil
	}},
	{"authors", "Split and normalize a ';'-separated author list", func(cfg *config.Config, raw string) ([]string, error) {
		return author.Split(raw), nil
	}},
	{"field", "Decode a subfield-delimited author field (^A surname ^B initials)", func(cfg *config.Config, raw string) ([]string, error) {
		return []string{author.ParseField(raw)}, nil
	}},
	{"pubinfo", "Parse an imprint string into publisher, city and year", func(cfg *config.Config, raw string) ([]string, error) {
		info := pubinfo.NewParser(cfg.PublicationVocabulary()).Parse(raw)
		data, err := json.Marshal(info)
		if err != nil {
			return nil, err
		}
		return []string{string(data)}, nil
	}},
	{"bbk", "Split composite BBK field content into subject labels", func(cfg *config.Config, raw string) ([]string, error) {
		return cfg.Splitter().Split(raw), nil
	}},
	{"grnti", "Pad a GRNTI code to three segments", func(cfg *config.Config, raw string) ([]string, error) {
		return []string{grnti.Normalize(strings.TrimSpace(raw))}, nil
	}},
}

func newParseCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Normalize a single field value",
		Long: `Runs one normalizer over the given text, or over each line of stdin when no
text is given, and prints the result.`,
		Example: `  fieldfix parse author "Чернышев А .А"
  fieldfix parse pubinfo "АО АСКОН, М. СПб, 1999"
  cut -f3 export.tsv | fieldfix parse authors`,
	}

	for _, p := range parsers {
		cmd.AddCommand(&cobra.Command{
			Use:   p.name + " [text]",
			Short: p.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				if len(args) > 0 {
					return printParsed(cmd.OutOrStdout(), p.parse, cfg, strings.Join(args, " "))
				}
				return parseLines(cmd.InOrStdin(), cmd.OutOrStdout(), p.parse, cfg)
			},
		})
	}

	return cmd
}

func parseLines(in io.Reader, out io.Writer, parse parser, cfg *config.Config) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := printParsed(out, parse, cfg, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func printParsed(out io.Writer, parse parser, cfg *config.Config, raw string) error {
	lines, err := parse(cfg, raw)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
