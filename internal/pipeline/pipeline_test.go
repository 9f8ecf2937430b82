package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/fieldfix/internal/bbk"
	"github.com/lehigh-university-libraries/fieldfix/internal/dataset"
	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
	"github.com/lehigh-university-libraries/fieldfix/internal/pubinfo"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil, nil)
	got := n.Normalize(dataset.Record{
		ID:           7,
		Authors:      "Иванов И.И.; Петров П.",
		AuthorFields: []string{"\x1fAИванов\x1fBИ.И.", "\x1fAСидоров\x1fBС.С."},
		Imprint:      "М.; Изд-во МГУ; 2005",
		Classification: []bbk.Field{
			{Tag: "606", Content: "A история (древняя) B культура"},
			{Tag: "700", Content: "X ignored"},
		},
		GRNTI: []string{"12", "", "12.34.56"},
	})

	want := Normalized{
		ID:       7,
		Authors:  []string{"Иванов И.И.", "Петров П.", "Сидоров С.С."},
		Imprint:  pubinfo.Info{Publisher: "Изд-во МГУ", City: "Москва", Year: 2005},
		Subjects: []string{"История", "Культура"},
		GRNTI:    []string{"12.00.00", "12.34.56"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestRunPreservesOrder(t *testing.T) {
	records := make([]dataset.Record, 50)
	for i := range records {
		records[i] = dataset.Record{ID: int64(i), Authors: fmt.Sprintf("Автор%d А.", i)}
	}

	got, err := NewNormalizer(nil, nil).Run(context.Background(), records, 8)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d results, want %d", len(got), len(records))
	}
	for i, r := range got {
		if r.ID != int64(i) {
			t.Fatalf("result %d has id %d", i, r.ID)
		}
		want := fmt.Sprintf("Автор%d А.", i)
		if len(r.Authors) != 1 || r.Authors[0] != want {
			t.Errorf("result %d authors = %v, want [%s]", i, r.Authors, want)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNormalizer(nil, nil).Run(ctx, []dataset.Record{{ID: 1}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type fakeStore struct {
	ref     linker.ReferenceMap
	pairs   []linker.Pair
	written []linker.Link
	loadErr error
}

func (f *fakeStore) LoadReferenceMap(ctx context.Context, v reference.Vocabulary) (linker.ReferenceMap, error) {
	return f.ref, f.loadErr
}

func (f *fakeStore) LoadRawPairs(ctx context.Context, v reference.Vocabulary) ([]linker.Pair, error) {
	return f.pairs, nil
}

func (f *fakeStore) WriteLinks(ctx context.Context, v reference.Vocabulary, links []linker.Link) (int64, error) {
	f.written = append(f.written, links...)
	return int64(len(links)), nil
}

// readOnlyProvider exposes only the Provider methods of its store.
type readOnlyProvider struct{ store *fakeStore }

func (r readOnlyProvider) LoadReferenceMap(ctx context.Context, v reference.Vocabulary) (linker.ReferenceMap, error) {
	return r.store.LoadReferenceMap(ctx, v)
}

func (r readOnlyProvider) LoadRawPairs(ctx context.Context, v reference.Vocabulary) ([]linker.Pair, error) {
	return r.store.LoadRawPairs(ctx, v)
}

func vocab(name string, caseInsensitive, hierarchical bool) reference.Vocabulary {
	return reference.Vocabulary{
		Name:            name,
		Reference:       reference.Table{Name: name, IDColumn: "id", CodeColumn: "code"},
		Raw:             reference.RawTable{Name: name + "_raw", RecordColumn: "book_id", CodeColumn: "code"},
		Links:           reference.LinkTable{Name: "book_" + name, RecordColumn: "book_id", ReferenceColumn: name + "_id"},
		CaseInsensitive: caseInsensitive,
		Hierarchical:    hierarchical,
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		name      string
		vocab     reference.Vocabulary
		store     *fakeStore
		opts      LinkOptions
		wantLinks []linker.Link
		wantSkip  int
		wantKeys  []string
	}{
		{
			name:  "hierarchical codes are padded before lookup",
			vocab: vocab("grnti", false, true),
			store: &fakeStore{
				ref:   linker.ReferenceMap{"12.00.00": 1, "12.34.00": 2},
				pairs: []linker.Pair{{RecordID: 10, Code: "12"}, {RecordID: 11, Code: "12.34"}, {RecordID: 12, Code: "99"}},
			},
			opts:      LinkOptions{ShowSkipped: true},
			wantLinks: []linker.Link{{RecordID: 10, ReferenceID: 1}, {RecordID: 11, ReferenceID: 2}},
			wantSkip:  1,
			wantKeys:  []string{"99.00.00"},
		},
		{
			name:  "case-insensitive vocabularies fold raw codes",
			vocab: vocab("bbk", true, false),
			store: &fakeStore{
				ref:   linker.ReferenceMap{"ИСТОРИЯ": 0},
				pairs: []linker.Pair{{RecordID: 1, Code: "история"}, {RecordID: 2, Code: "Физика"}},
			},
			wantLinks: []linker.Link{{RecordID: 1, ReferenceID: 0}},
			wantSkip:  1,
		},
		{
			name:      "persist writes matched links",
			vocab:     vocab("bbk", true, false),
			store:     &fakeStore{ref: linker.ReferenceMap{"A": 5}, pairs: []linker.Pair{{RecordID: 3, Code: "a"}}},
			opts:      LinkOptions{Persist: true},
			wantLinks: []linker.Link{{RecordID: 3, ReferenceID: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Link(context.Background(), tt.store, tt.vocab, tt.opts)
			if err != nil {
				t.Fatalf("Link() error: %v", err)
			}
			if !reflect.DeepEqual(report.Result.Links, tt.wantLinks) {
				t.Errorf("links = %v, want %v", report.Result.Links, tt.wantLinks)
			}
			if report.Result.Skipped != tt.wantSkip {
				t.Errorf("skipped = %d, want %d", report.Result.Skipped, tt.wantSkip)
			}
			if !reflect.DeepEqual(report.Result.SkippedKeys, tt.wantKeys) {
				t.Errorf("skipped keys = %v, want %v", report.Result.SkippedKeys, tt.wantKeys)
			}
			if tt.opts.Persist {
				if report.Persisted != int64(len(tt.wantLinks)) || !reflect.DeepEqual(tt.store.written, tt.wantLinks) {
					t.Errorf("persisted %d %v, want %v", report.Persisted, tt.store.written, tt.wantLinks)
				}
			} else if len(tt.store.written) != 0 {
				t.Errorf("unexpected writes: %v", tt.store.written)
			}
		})
	}
}

func TestLinkErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Link(context.Background(), &fakeStore{loadErr: boom}, vocab("bbk", true, false), LinkOptions{})
	if !errors.Is(err, boom) {
		t.Errorf("expected load error, got %v", err)
	}

	store := &fakeStore{ref: linker.ReferenceMap{"A": 1}, pairs: []linker.Pair{{RecordID: 1, Code: "a"}}}
	ro := readOnlyProvider{store: store}
	if _, ok := reference.Provider(ro).(reference.LinkWriter); ok {
		t.Fatal("readOnlyProvider must not implement LinkWriter")
	}
	_, err = Link(context.Background(), ro, vocab("bbk", true, false), LinkOptions{Persist: true})
	if !errors.Is(err, ErrNoWriter) {
		t.Errorf("expected ErrNoWriter, got %v", err)
	}
	if len(store.written) != 0 {
		t.Errorf("unexpected writes: %v", store.written)
	}

	report, err := Link(context.Background(), ro, vocab("bbk", true, false), LinkOptions{})
	if err != nil || len(report.Result.Links) != 1 {
		t.Errorf("read-only link without persist = %+v, %v", report, err)
	}

	_, err = Link(context.Background(), &fakeStore{}, reference.Vocabulary{Name: "empty"}, LinkOptions{})
	if err == nil {
		t.Error("expected validation error")
	}
}
