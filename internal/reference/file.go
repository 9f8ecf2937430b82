package reference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/fieldfix/internal/dataset"
	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
)

var tableExtensions = []string{".parquet", ".jsonl", ".json"}

// FileStore serves tables exported as Parquet or JSONL files in a
// directory. A table "public.bbk" is read from public.bbk.<ext> or
// bbk.<ext>. Reference files carry "id" and "code" columns, raw pair files
// "record_id" and "code".
type FileStore struct {
	dir string
}

// NewFileStore creates a store over dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

type referenceFileRow struct {
	ID   int64  `json:"id" parquet:"id"`
	Code string `json:"code" parquet:"code"`
}

// LoadReferenceMap reads the vocabulary's reference table file.
func (s *FileStore) LoadReferenceMap(ctx context.Context, v Vocabulary) (linker.ReferenceMap, error) {
	path, err := s.tablePath(v.Reference.Name)
	if err != nil {
		return nil, err
	}
	rows, err := dataset.ReadFile[referenceFileRow](path, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	refs := make([]referenceRow, len(rows))
	for i, r := range rows {
		refs[i] = referenceRow{ID: r.ID, Code: r.Code}
	}
	return buildReferenceMap(v, refs), nil
}

// LoadRawPairs reads the vocabulary's raw pair file in file order.
func (s *FileStore) LoadRawPairs(ctx context.Context, v Vocabulary) ([]linker.Pair, error) {
	path, err := s.tablePath(v.Raw.Name)
	if err != nil {
		return nil, err
	}
	pairs, err := dataset.ReadFile[linker.Pair](path, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return pairs, nil
}

type linkFileRow struct {
	RecordID    int64 `json:"record_id" parquet:"record_id"`
	ReferenceID int64 `json:"reference_id" parquet:"reference_id"`
}

// WriteLinks writes links to <link table>.parquet, replacing earlier output.
func (s *FileStore) WriteLinks(ctx context.Context, v Vocabulary, links []linker.Link) (int64, error) {
	if v.Links.Name == "" {
		return 0, fmt.Errorf("vocabulary %q has no link table configured", v.Name)
	}

	rows := make([]linkFileRow, 0, len(links))
	seen := make(map[linker.Link]struct{}, len(links))
	for _, l := range links {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		rows = append(rows, linkFileRow{RecordID: l.RecordID, ReferenceID: l.ReferenceID})
	}

	path := filepath.Join(s.dir, v.Links.Name+".parquet")
	if err := dataset.WriteParquet(path, rows); err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) tablePath(table string) (string, error) {
	names := []string{table}
	if ext := filepath.Ext(table); ext != "" && ext != table {
		names = append(names, ext[1:])
	}
	for _, name := range names {
		for _, ext := range tableExtensions {
			path := filepath.Join(s.dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("no export found for table %q in %s", table, s.dir)
}
