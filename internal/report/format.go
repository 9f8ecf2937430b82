// Package report renders normalization and linking results.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/fieldfix/internal/pipeline"
)

// multiValueSep joins list values inside a single CSV cell.
const multiValueSep = "|"

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

var csvHeader = []string{"id", "authors", "publisher", "city", "year", "subjects", "grnti"}

// ParseFormat parses a format name. "yml" and "jsonl" are accepted aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "txt", "":
		return FormatText, nil
	case "json", "jsonl":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath guesses the format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatText
	}
	return f
}

// WriteNormalized encodes records to w in the given format.
func WriteNormalized(w io.Writer, format Format, records []pipeline.Normalized) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("encoding record %d: %w", r.ID, err)
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, records)
	case FormatText:
		return writeText(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func writeCSV(w io.Writer, records []pipeline.Normalized) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		year := ""
		if r.Imprint.HasYear() {
			year = strconv.Itoa(r.Imprint.Year)
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			strings.Join(r.Authors, multiValueSep),
			r.Imprint.Publisher,
			r.Imprint.City,
			year,
			strings.Join(r.Subjects, multiValueSep),
			strings.Join(r.GRNTI, multiValueSep),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, records []pipeline.Normalized) error {
	for _, r := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "Record %d\n", r.ID)
		for _, a := range r.Authors {
			fmt.Fprintf(&b, "  author    : %s\n", a)
		}
		if r.Imprint.Publisher != "" {
			fmt.Fprintf(&b, "  publisher : %s\n", r.Imprint.Publisher)
		}
		if r.Imprint.City != "" {
			fmt.Fprintf(&b, "  city      : %s\n", r.Imprint.City)
		}
		if r.Imprint.HasYear() {
			fmt.Fprintf(&b, "  year      : %d\n", r.Imprint.Year)
		}
		for _, s := range r.Subjects {
			fmt.Fprintf(&b, "  subject   : %s\n", s)
		}
		for _, g := range r.GRNTI {
			fmt.Fprintf(&b, "  grnti     : %s\n", g)
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
