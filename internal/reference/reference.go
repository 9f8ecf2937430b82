// Package reference loads controlled vocabularies and raw code pairs from
// the catalog database (or a directory of table exports) and persists the
// links produced from them.
package reference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
)

var (
	// ErrUnsupportedDescriptor is returned when a connection descriptor is
	// neither a PostgreSQL DSN nor an existing directory.
	ErrUnsupportedDescriptor = errors.New("unsupported connection descriptor")

	// ErrUnknownVocabulary is returned for vocabulary names with no configuration.
	ErrUnknownVocabulary = errors.New("unknown vocabulary")
)

// Table names a reference table and its columns.
type Table struct {
	Name       string `yaml:"name" json:"name"`
	IDColumn   string `yaml:"id_column" json:"id_column"`
	CodeColumn string `yaml:"code_column" json:"code_column"`
}

// RawTable names the staging table holding unvalidated (record, code) pairs.
type RawTable struct {
	Name         string `yaml:"name" json:"name"`
	RecordColumn string `yaml:"record_column" json:"record_column"`
	CodeColumn   string `yaml:"code_column" json:"code_column"`
}

// LinkTable names the table validated links are written to.
type LinkTable struct {
	Name            string `yaml:"name" json:"name"`
	RecordColumn    string `yaml:"record_column" json:"record_column"`
	ReferenceColumn string `yaml:"reference_column" json:"reference_column"`
}

// Vocabulary describes one controlled vocabulary (BBK, GRNTI, ...).
type Vocabulary struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Reference   Table     `yaml:"reference" json:"reference"`
	Raw         RawTable  `yaml:"raw" json:"raw"`
	Links       LinkTable `yaml:"links" json:"links"`

	// CaseInsensitive folds reference keys and lookup codes to upper case.
	CaseInsensitive bool `yaml:"case_insensitive,omitempty" json:"case_insensitive,omitempty"`

	// Hierarchical marks dot-segmented codes that are padded to three
	// segments before lookup.
	Hierarchical bool `yaml:"hierarchical,omitempty" json:"hierarchical,omitempty"`
}

// Validate checks that the table and column names needed for linking are set.
func (v Vocabulary) Validate() error {
	missing := []string{}
	check := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	check("reference.name", v.Reference.Name)
	check("reference.id_column", v.Reference.IDColumn)
	check("reference.code_column", v.Reference.CodeColumn)
	check("raw.name", v.Raw.Name)
	check("raw.record_column", v.Raw.RecordColumn)
	check("raw.code_column", v.Raw.CodeColumn)
	if len(missing) > 0 {
		return fmt.Errorf("vocabulary %q: missing %s", v.Name, strings.Join(missing, ", "))
	}
	return nil
}

// Key turns a stored reference code into its lookup key.
func (v Vocabulary) Key(code string) string {
	code = strings.TrimSpace(code)
	if v.CaseInsensitive {
		return strings.ToUpper(code)
	}
	return code
}

// Provider supplies reference maps and raw pairs.
type Provider interface {
	LoadReferenceMap(ctx context.Context, v Vocabulary) (linker.ReferenceMap, error)
	LoadRawPairs(ctx context.Context, v Vocabulary) ([]linker.Pair, error)
}

// LinkWriter persists validated links and returns how many were written.
type LinkWriter interface {
	WriteLinks(ctx context.Context, v Vocabulary, links []linker.Link) (int64, error)
}

// Store is a Provider that can also persist links.
type Store interface {
	Provider
	LinkWriter
	Close() error
}

// Open connects to the store named by descriptor: a PostgreSQL URL or
// key=value DSN, or a directory of table exports.
func Open(ctx context.Context, descriptor string) (Store, error) {
	descriptor = strings.TrimSpace(descriptor)
	if IsPostgresDescriptor(descriptor) {
		return NewPostgresStore(ctx, descriptor)
	}
	if info, err := os.Stat(descriptor); err == nil && info.IsDir() {
		return NewFileStore(descriptor), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDescriptor, descriptor)
}

// IsPostgresDescriptor reports whether descriptor looks like a PostgreSQL
// connection string.
func IsPostgresDescriptor(descriptor string) bool {
	lower := strings.ToLower(descriptor)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	for _, field := range strings.Fields(lower) {
		key, _, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "host", "dbname", "user", "port", "sslmode":
			return true
		}
	}
	return false
}
