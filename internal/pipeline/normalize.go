// Package pipeline runs the field normalizers over catalog records and
// links raw vocabulary codes against reference tables.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/fieldfix/internal/author"
	"github.com/lehigh-university-libraries/fieldfix/internal/bbk"
	"github.com/lehigh-university-libraries/fieldfix/internal/dataset"
	"github.com/lehigh-university-libraries/fieldfix/internal/grnti"
	"github.com/lehigh-university-libraries/fieldfix/internal/pubinfo"
)

// DefaultWorkers is used when a non-positive worker count is requested.
const DefaultWorkers = 4

// Normalized is the cleaned form of one dataset.Record.
type Normalized struct {
	ID       int64        `json:"id" yaml:"id"`
	Authors  []string     `json:"authors" yaml:"authors"`
	Imprint  pubinfo.Info `json:"imprint" yaml:"imprint"`
	Subjects []string     `json:"subjects" yaml:"subjects"`
	GRNTI    []string     `json:"grnti" yaml:"grnti"`
}

// Normalizer applies every field normalizer to a record.
type Normalizer struct {
	parser   *pubinfo.Parser
	splitter *bbk.Splitter
}

// NewNormalizer builds a Normalizer. Nil arguments fall back to defaults.
func NewNormalizer(parser *pubinfo.Parser, splitter *bbk.Splitter) *Normalizer {
	if parser == nil {
		parser = pubinfo.NewParser(pubinfo.DefaultVocabulary())
	}
	if splitter == nil {
		splitter = bbk.NewSplitter()
	}
	return &Normalizer{parser: parser, splitter: splitter}
}

// Normalize cleans a single record. Authors from the free-text list come
// first, followed by names decoded from structured author fields; duplicates
// keep their first position.
func (n *Normalizer) Normalize(rec dataset.Record) Normalized {
	out := Normalized{
		ID:       rec.ID,
		Authors:  author.Split(rec.Authors),
		Imprint:  n.parser.Parse(rec.Imprint),
		Subjects: n.splitter.Collect(rec.Classification),
		GRNTI:    make([]string, 0, len(rec.GRNTI)),
	}

	seen := make(map[string]bool, len(out.Authors))
	for _, a := range out.Authors {
		seen[a] = true
	}
	for _, field := range rec.AuthorFields {
		a := author.ParseField(field)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out.Authors = append(out.Authors, a)
	}

	for _, code := range rec.GRNTI {
		if code == "" {
			continue
		}
		out.GRNTI = append(out.GRNTI, grnti.Normalize(code))
	}
	return out
}

// Run normalizes records with up to workers goroutines. Output order
// matches input order.
func (n *Normalizer) Run(ctx context.Context, records []dataset.Record, workers int) ([]Normalized, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	slog.Debug("Normalizing records", "count", len(records), "workers", workers)

	results := make([]Normalized, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[idx] = n.Normalize(rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("normalizing records: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normalizing records: %w", err)
	}
	return results, nil
}
