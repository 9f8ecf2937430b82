package reference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
)

const (
	connectAttempts = 3
	connectBackoff  = 500 * time.Millisecond
	linkBatchSize   = 1000
)

// PostgresStore reads vocabularies from and writes links to PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to dsn, retrying the initial ping a few times.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	backoff := connectBackoff
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempt, err)
		}
		slog.Warn("Database not reachable, retrying", "attempt", attempt, "backoff", backoff, "err", err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return NewPostgresStoreWithPool(pool), nil
}

// NewPostgresStoreWithPool reuses an existing pool.
func NewPostgresStoreWithPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

type referenceRow struct {
	ID   int64
	Code string
}

// LoadReferenceMap returns code -> id for the vocabulary's reference table.
func (s *PostgresStore) LoadReferenceMap(ctx context.Context, v Vocabulary) (linker.ReferenceMap, error) {
	rows, err := s.db.Query(ctx, referenceQuery(v))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", v.Reference.Name, err)
	}
	refs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[referenceRow])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", v.Reference.Name, err)
	}
	return buildReferenceMap(v, refs), nil
}

// LoadRawPairs returns the unvalidated (record, code) pairs for the vocabulary.
func (s *PostgresStore) LoadRawPairs(ctx context.Context, v Vocabulary) ([]linker.Pair, error) {
	rows, err := s.db.Query(ctx, rawPairsQuery(v))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", v.Raw.Name, err)
	}
	pairs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[linker.Pair])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", v.Raw.Name, err)
	}
	slog.Debug("Loaded raw pairs", "vocabulary", v.Name, "pairs", len(pairs))
	return pairs, nil
}

// WriteLinks inserts links in one transaction, ignoring rows that already exist.
func (s *PostgresStore) WriteLinks(ctx context.Context, v Vocabulary, links []linker.Link) (int64, error) {
	if v.Links.Name == "" {
		return 0, fmt.Errorf("vocabulary %q has no link table configured", v.Name)
	}

	query := insertLinkQuery(v)
	var written int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for start := 0; start < len(links); start += linkBatchSize {
			end := min(start+linkBatchSize, len(links))

			batch := &pgx.Batch{}
			for _, l := range links[start:end] {
				batch.Queue(query, l.RecordID, l.ReferenceID)
			}

			results := tx.SendBatch(ctx, batch)
			for range links[start:end] {
				tag, err := results.Exec()
				if err != nil {
					results.Close()
					return err
				}
				written += tag.RowsAffected()
			}
			if err := results.Close(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write links to %s: %w", v.Links.Name, err)
	}
	return written, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

func referenceQuery(v Vocabulary) string {
	return fmt.Sprintf("SELECT %s::bigint, COALESCE(%s::text, '') FROM %s",
		ident(v.Reference.IDColumn), ident(v.Reference.CodeColumn), ident(v.Reference.Name))
}

func rawPairsQuery(v Vocabulary) string {
	return fmt.Sprintf("SELECT %s::bigint, COALESCE(%s::text, '') FROM %s ORDER BY %s",
		ident(v.Raw.RecordColumn), ident(v.Raw.CodeColumn), ident(v.Raw.Name), ident(v.Raw.RecordColumn))
}

func insertLinkQuery(v Vocabulary) string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		ident(v.Links.Name), ident(v.Links.RecordColumn), ident(v.Links.ReferenceColumn))
}

// ident quotes a possibly schema-qualified name ("public.bbk").
func ident(name string) string {
	return pgx.Identifier(strings.Split(strings.TrimSpace(name), ".")).Sanitize()
}

func buildReferenceMap(v Vocabulary, refs []referenceRow) linker.ReferenceMap {
	m := make(linker.ReferenceMap, len(refs))
	collisions := 0
	for _, r := range refs {
		key := v.Key(r.Code)
		if key == "" {
			continue
		}
		if _, dup := m[key]; dup {
			collisions++
		}
		m[key] = r.ID
	}
	if collisions > 0 {
		slog.Warn("Reference codes collide after normalization", "vocabulary", v.Name, "collisions", collisions)
	}
	slog.Debug("Loaded reference map", "vocabulary", v.Name, "codes", len(m))
	return m
}
