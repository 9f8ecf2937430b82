// Package linker matches normalized codes against a reference vocabulary
// and produces (record, reference) links.
package linker

import "strings"

// ReferenceMap maps a canonical code to its reference identifier. It is
// owned by the caller and only read here.
type ReferenceMap map[string]int64

// Pair is a raw (record, code) association awaiting linking.
type Pair struct {
	RecordID int64  `json:"record_id" yaml:"record_id" parquet:"record_id"`
	Code     string `json:"code" yaml:"code" parquet:"code"`
}

// Link is a validated (record, reference) association.
type Link struct {
	RecordID    int64 `json:"record_id" yaml:"record_id"`
	ReferenceID int64 `json:"reference_id" yaml:"reference_id"`
}

// Result is the outcome of linking a batch of pairs.
type Result struct {
	Links   []Link `json:"links" yaml:"links"`
	Skipped int    `json:"skipped" yaml:"skipped"`

	// SkippedKeys holds the lookup keys that missed, in input order. Only
	// filled when the Linker was built WithSkippedKeys.
	SkippedKeys []string `json:"skipped_keys,omitempty" yaml:"skipped_keys,omitempty"`
}

// Total returns the number of pairs that were processed.
func (r *Result) Total() int {
	return len(r.Links) + r.Skipped
}

// KeyFunc derives the lookup key for a raw code.
type KeyFunc func(code string) string

// Linker filters pairs against a ReferenceMap. The zero value is not
// usable; build one with New.
type Linker struct {
	key         KeyFunc
	keepSkipped bool
}

// Option configures a Linker.
type Option func(*Linker)

// WithKeyFunc sets how codes are turned into lookup keys.
func WithKeyFunc(fn KeyFunc) Option {
	return func(l *Linker) {
		if fn != nil {
			l.key = fn
		}
	}
}

// CaseInsensitive upper-cases codes before lookup. The reference map keys
// must already be upper-cased.
func CaseInsensitive() Option {
	return WithKeyFunc(strings.ToUpper)
}

// WithSkippedKeys records the keys of unmatched pairs in Result.SkippedKeys.
func WithSkippedKeys() Option {
	return func(l *Linker) {
		l.keepSkipped = true
	}
}

// New creates a Linker that looks codes up verbatim unless configured
// otherwise.
func New(opts ...Option) *Linker {
	l := &Linker{key: identity}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Filter links every pair whose key is present in ref and counts the rest.
// It never fails; an empty or nil ref simply skips everything.
func (l *Linker) Filter(pairs []Pair, ref ReferenceMap) *Result {
	res := &Result{Links: make([]Link, 0, len(pairs))}
	for _, p := range pairs {
		key := l.key(p.Code)
		if id, ok := ref[key]; ok {
			res.Links = append(res.Links, Link{RecordID: p.RecordID, ReferenceID: id})
			continue
		}
		res.Skipped++
		if l.keepSkipped {
			res.SkippedKeys = append(res.SkippedKeys, key)
		}
	}
	return res
}

// FilterLinks links pairs with verbatim keys. Codes are not normalized;
// callers pre-normalize hierarchical codes.
func FilterLinks(pairs []Pair, ref ReferenceMap) *Result {
	return New().Filter(pairs, ref)
}

func identity(code string) string {
	return code
}
