package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
	"github.com/lehigh-university-libraries/fieldfix/internal/pipeline"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

// WriteLinkSummary prints the three-line totals block.
func WriteLinkSummary(w io.Writer, r *linker.Result) error {
	_, err := fmt.Fprintf(w, "Total raw pairs : %d\nMatched         : %d\nSkipped         : %d\n",
		r.Total(), len(r.Links), r.Skipped)
	return err
}

// WriteSkippedKeys lists unmatched keys with their occurrence counts in
// first-seen order.
func WriteSkippedKeys(w io.Writer, keys []string) error {
	counts := make(map[string]int, len(keys))
	var order []string
	for _, k := range keys {
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		if _, err := fmt.Fprintf(w, "  skipped %q x%d\n", k, counts[k]); err != nil {
			return err
		}
	}
	return nil
}

// WriteSample prints the INSERT statements for the first n links.
func WriteSample(w io.Writer, v reference.Vocabulary, links []linker.Link, n int) error {
	if n > len(links) {
		n = len(links)
	}
	for _, l := range links[:n] {
		_, err := fmt.Fprintf(w, "INSERT INTO %s (%s, %s) VALUES (%d, %d);\n",
			v.Links.Name, v.Links.RecordColumn, v.Links.ReferenceColumn, l.RecordID, l.ReferenceID)
		if err != nil {
			return err
		}
	}
	return nil
}

// LinkRun is the saved form of a link run.
type LinkRun struct {
	Vocabulary string   `yaml:"vocabulary"`
	Source     string   `yaml:"source"`
	Timestamp  string   `yaml:"timestamp"`
	Total      int      `yaml:"total"`
	Matched    int      `yaml:"matched"`
	Skipped    int      `yaml:"skipped"`
	Persisted  int64    `yaml:"persisted"`
	Unmatched  []string `yaml:"unmatched,omitempty"`
}

// SaveLinkReport writes a YAML record of the run to dir and returns its path.
// The source descriptor is stored without credentials.
func SaveLinkReport(dir, source string, r *pipeline.LinkReport, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := now.Format("2006-01-02_15-04-05")
	run := LinkRun{
		Vocabulary: r.Vocabulary,
		Source:     redact(source),
		Timestamp:  timestamp,
		Total:      r.Result.Total(),
		Matched:    len(r.Result.Links),
		Skipped:    r.Result.Skipped,
		Persisted:  r.Persisted,
		Unmatched:  r.Result.SkippedKeys,
	}

	data, err := yaml.Marshal(&run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", r.Vocabulary, timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// redact drops the password from URL and key=value descriptors.
func redact(descriptor string) string {
	if !reference.IsPostgresDescriptor(descriptor) {
		return descriptor
	}
	if scheme, rest, ok := strings.Cut(descriptor, "://"); ok {
		at := strings.LastIndex(rest, "@")
		if at < 0 {
			return descriptor
		}
		user, _, _ := strings.Cut(rest[:at], ":")
		return scheme + "://" + user + rest[at:]
	}
	fields := strings.Fields(descriptor)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}
