package linker

import (
	"reflect"
	"testing"
)

func TestFilterLinks(t *testing.T) {
	tests := []struct {
		name        string
		pairs       []Pair
		ref         ReferenceMap
		wantLinks   []Link
		wantSkipped int
	}{
		{
			name:        "hierarchical code is not normalized",
			pairs:       []Pair{{RecordID: 1, Code: "04"}},
			ref:         ReferenceMap{"04.00.00": 7},
			wantLinks:   []Link{},
			wantSkipped: 1,
		},
		{
			name:        "exact match",
			pairs:       []Pair{{RecordID: 1, Code: "04.00.00"}, {RecordID: 2, Code: "05.00.00"}},
			ref:         ReferenceMap{"04.00.00": 7},
			wantLinks:   []Link{{RecordID: 1, ReferenceID: 7}},
			wantSkipped: 1,
		},
		{
			name:        "case sensitive by default",
			pairs:       []Pair{{RecordID: 1, Code: "физика"}},
			ref:         ReferenceMap{"ФИЗИКА": 3},
			wantLinks:   []Link{},
			wantSkipped: 1,
		},
		{
			name:        "zero identifier is a hit",
			pairs:       []Pair{{RecordID: 9, Code: "X"}},
			ref:         ReferenceMap{"X": 0},
			wantLinks:   []Link{{RecordID: 9, ReferenceID: 0}},
			wantSkipped: 0,
		},
		{
			name:        "nil reference map",
			pairs:       []Pair{{RecordID: 1, Code: "A"}, {RecordID: 2, Code: "B"}},
			ref:         nil,
			wantLinks:   []Link{},
			wantSkipped: 2,
		},
		{
			name:        "no pairs",
			pairs:       nil,
			ref:         ReferenceMap{"A": 1},
			wantLinks:   []Link{},
			wantSkipped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FilterLinks(tt.pairs, tt.ref)
			if !reflect.DeepEqual(res.Links, tt.wantLinks) {
				t.Errorf("links = %+v, want %+v", res.Links, tt.wantLinks)
			}
			if res.Skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", res.Skipped, tt.wantSkipped)
			}
			if res.Total() != len(tt.pairs) {
				t.Errorf("total = %d, want %d", res.Total(), len(tt.pairs))
			}
			if res.SkippedKeys != nil {
				t.Errorf("skipped keys should not be recorded by default, got %q", res.SkippedKeys)
			}
		})
	}
}

func TestCaseInsensitive(t *testing.T) {
	ref := ReferenceMap{"ФИЗИКА": 3, "ХИМИЯ": 4}
	l := New(CaseInsensitive(), WithSkippedKeys())

	res := l.Filter([]Pair{
		{RecordID: 1, Code: "физика"},
		{RecordID: 2, Code: "ХИМИЯ"},
		{RecordID: 3, Code: "Биология"},
		{RecordID: 1, Code: "Физика"},
	}, ref)

	want := []Link{
		{RecordID: 1, ReferenceID: 3},
		{RecordID: 2, ReferenceID: 4},
		{RecordID: 1, ReferenceID: 3},
	}
	if !reflect.DeepEqual(res.Links, want) {
		t.Errorf("links = %+v, want %+v", res.Links, want)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
	if !reflect.DeepEqual(res.SkippedKeys, []string{"БИОЛОГИЯ"}) {
		t.Errorf("skipped keys = %q, want [БИОЛОГИЯ]", res.SkippedKeys)
	}
}

func TestWithKeyFuncNilKeepsDefault(t *testing.T) {
	res := New(WithKeyFunc(nil)).Filter([]Pair{{RecordID: 1, Code: "a"}}, ReferenceMap{"a": 1})
	if len(res.Links) != 1 {
		t.Errorf("expected verbatim match, got %+v", res)
	}
}
