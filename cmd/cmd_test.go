package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/fieldfix/internal/dataset"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FIELDFIX_CONFIG", "")
	t.Setenv("FIELDFIX_WORKERS", "")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func exportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "grnti.jsonl"),
		`{"id":1,"code":"12.00.00"}`+"\n"+`{"id":2,"code":"12.34.00"}`+"\n"+`{"id":3,"code":"12.34.56"}`+"\n")
	writeFile(t, filepath.Join(dir, "book_grnti_raw.jsonl"),
		`{"record_id":10,"code":"12"}`+"\n"+
			`{"record_id":11,"code":"12.34"}`+"\n"+
			`{"record_id":12,"code":"12.34.56"}`+"\n"+
			`{"record_id":13,"code":"99.1"}`+"\n")
	return dir
}

func TestLinkCommand(t *testing.T) {
	dir := exportDir(t)

	out, err := execute(t, "", "link", "grnti", dir)
	if err != nil {
		t.Fatalf("link error: %v", err)
	}
	want := "Total raw pairs : 4\nMatched         : 3\nSkipped         : 1\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	out, err = execute(t, "", "link", "grnti", dir, "--show-skipped", "--sample", "1", "--persist")
	if err != nil {
		t.Fatalf("link error: %v", err)
	}
	for _, s := range []string{
		"Persisted       : 3",
		`skipped "99.1.00" x1`,
		"INSERT INTO public.book_grnti (book_id, grnti_id) VALUES (10, 1);",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in %q", s, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "public.book_grnti.parquet")); err != nil {
		t.Errorf("expected persisted links file: %v", err)
	}
}

func TestLinkCommandErrors(t *testing.T) {
	if _, err := execute(t, "", "link", "grnti"); err == nil {
		t.Error("expected usage error for missing descriptor")
	}
	if _, err := execute(t, "", "link", "grnti", "a", "b"); err == nil {
		t.Error("expected usage error for extra arguments")
	}
	if _, err := execute(t, "", "link", "udk", t.TempDir()); !errors.Is(err, reference.ErrUnknownVocabulary) {
		t.Errorf("expected ErrUnknownVocabulary, got %v", err)
	}
	if _, err := execute(t, "", "link", "bbk", filepath.Join(t.TempDir(), "missing")); !errors.Is(err, reference.ErrUnsupportedDescriptor) {
		t.Errorf("expected ErrUnsupportedDescriptor, got %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"author", "", []string{"parse", "author", "Чернышев А .А"}, "Чернышев А.А.\n"},
		{"authors from stdin", "Иванов И.И.; Петров П.П.\nПукина А. С.\n", []string{"parse", "authors"}, "Иванов И.И.\nПетров П.П.\nПукина А.С.\n"},
		{"pubinfo", "", []string{"parse", "pubinfo", "Новоуральск, 1999"}, `{"city":"Новоуральск","year":1999}` + "\n"},
		{"grnti", "", []string{"parse", "grnti", "12.34"}, "12.34.00\n"},
		{"bbk", "", []string{"parse", "bbk", "A история B культура"}, "История\nКультура\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "records.jsonl")
	writeFile(t, input,
		`{"id":1,"authors":"Евтеев  Ю.И.","imprint":"Новоуральск, 1999","grnti":["12"]}`+"\n"+
			`{"id":2,"classification":[{"tag":"606","content":"A физика"}]}`+"\n")

	out, err := execute(t, "", "normalize", "-i", input, "--format", "csv", "--workers", "2")
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	want := "id,authors,publisher,city,year,subjects,grnti\n" +
		"1,Евтеев Ю.И.,,Новоуральск,1999,,12.00.00\n" +
		"2,,,,,Физика,\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	output := filepath.Join(dir, "out.yaml")
	if _, err := execute(t, "", "normalize", "-i", input, "-o", output, "--limit", "1"); err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Новоуральск") || strings.Contains(string(data), "Физика") {
		t.Errorf("unexpected YAML output: %s", data)
	}

	if _, err := execute(t, "", "normalize"); err == nil {
		t.Error("expected error without --input")
	}
	if _, err := execute(t, "", "normalize", "-i", filepath.Join(dir, "records.csv")); !errors.Is(err, dataset.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
