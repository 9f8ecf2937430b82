package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/fieldfix/internal/grnti"
	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

// ErrNoWriter is returned when persisting links without a LinkWriter.
var ErrNoWriter = errors.New("provider cannot persist links")

// LinkOptions controls a Link run.
type LinkOptions struct {
	// Persist writes the matched links to the vocabulary's link table
	Persist bool

	// ShowSkipped records the unmatched keys on the result
	ShowSkipped bool
}

// LinkReport is the outcome of linking one vocabulary.
type LinkReport struct {
	Vocabulary string         `json:"vocabulary" yaml:"vocabulary"`
	Result     *linker.Result `json:"result" yaml:"result"`
	Persisted  int64          `json:"persisted" yaml:"persisted"`
}

// Linker returns the configured linker for a vocabulary.
func Linker(v reference.Vocabulary, showSkipped bool) *linker.Linker {
	var opts []linker.Option
	if v.CaseInsensitive {
		opts = append(opts, linker.CaseInsensitive())
	}
	if showSkipped {
		opts = append(opts, linker.WithSkippedKeys())
	}
	return linker.New(opts...)
}

// PreparePairs applies the vocabulary's code normalization to raw pairs.
func PreparePairs(v reference.Vocabulary, pairs []linker.Pair) []linker.Pair {
	if v.Hierarchical {
		return grnti.NormalizePairs(pairs)
	}
	return pairs
}

// Link loads the reference map and raw pairs for v, filters them, and
// optionally persists the surviving links.
func Link(ctx context.Context, provider reference.Provider, v reference.Vocabulary, opts LinkOptions) (*LinkReport, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	ref, err := provider.LoadReferenceMap(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("loading %s reference map: %w", v.Name, err)
	}
	pairs, err := provider.LoadRawPairs(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("loading %s raw pairs: %w", v.Name, err)
	}
	slog.Info("Loaded vocabulary", "vocabulary", v.Name, "references", len(ref), "pairs", len(pairs))

	result := Linker(v, opts.ShowSkipped).Filter(PreparePairs(v, pairs), ref)
	report := &LinkReport{Vocabulary: v.Name, Result: result}

	if !opts.Persist {
		return report, nil
	}
	writer, ok := provider.(reference.LinkWriter)
	if !ok {
		return nil, ErrNoWriter
	}
	written, err := writer.WriteLinks(ctx, v, result.Links)
	if err != nil {
		return nil, fmt.Errorf("persisting %s links: %w", v.Name, err)
	}
	report.Persisted = written
	slog.Info("Persisted links", "vocabulary", v.Name, "written", written)
	return report, nil
}
