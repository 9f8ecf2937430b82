// Package bbk extracts subject labels from composite BBK classification
// fields (#606, #610) where several labels are run together behind
// single-letter subfield markers.
package bbk

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTags are the field tags whose content carries BBK labels.
var DefaultTags = []string{"606", "610"}

// maxMarkerStrips bounds how many leading markers are removed from a label.
// The exports double markers at most once ("AB Химия"), so a third capital
// is kept as part of the label.
const maxMarkerStrips = 2

var (
	codeSeparatorRegex = regexp.MustCompile(`[;,]\s*|\s{2,}`)
	markerPrefixRegex  = regexp.MustCompile(`^[A-Z]\s*`)
	parentheticalRegex = regexp.MustCompile(`\([^)]*\)`)
)

// Field is one (tag, content) pair from a catalog record.
type Field struct {
	Tag     string `json:"tag" yaml:"tag" parquet:"tag"`
	Content string `json:"content" yaml:"content" parquet:"content"`
}

// Splitter turns BBK field content into Title-Case labels.
type Splitter struct {
	tags map[string]struct{}
	lang language.Tag
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithTags replaces the accepted field tags.
func WithTags(tags ...string) Option {
	return func(s *Splitter) {
		s.tags = make(map[string]struct{}, len(tags))
		for _, t := range tags {
			s.tags[strings.TrimSpace(t)] = struct{}{}
		}
	}
}

// WithLanguage sets the language used for title casing.
func WithLanguage(tag language.Tag) Option {
	return func(s *Splitter) {
		s.lang = tag
	}
}

// NewSplitter creates a Splitter accepting DefaultTags.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{lang: language.Russian}
	WithTags(DefaultTags...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accepts reports whether fields with this tag are split.
func (s *Splitter) Accepts(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// Collect returns the labels of every accepted field in input order.
// Fields with other tags are ignored. Repeated labels are kept.
func (s *Splitter) Collect(fields []Field) []string {
	title := cases.Title(s.lang)

	var labels []string
	for _, f := range fields {
		if !s.Accepts(f.Tag) {
			continue
		}
		labels = s.appendContent(labels, f.Content, title)
	}
	return labels
}

// Split returns the labels found in a single field content string,
// regardless of tag.
func (s *Splitter) Split(content string) []string {
	return s.appendContent(nil, content, cases.Title(s.lang))
}

func (s *Splitter) appendContent(labels []string, content string, title cases.Caser) []string {
	for _, code := range codeSeparatorRegex.Split(strings.TrimSpace(content), -1) {
		// Annotations go first so capitals inside "(UDC)" never start a subfield.
		code = strings.TrimSpace(parentheticalRegex.ReplaceAllString(code, " "))
		if code == "" {
			continue
		}
		for _, part := range splitMarkers(code) {
			if label := cleanLabel(part); label != "" {
				labels = append(labels, title.String(label))
			}
		}
	}
	return labels
}

// splitMarkers cuts a code before every ASCII capital that follows a
// non-marker rune, which starts an embedded subfield
// ("МеханикаBтеоретическая" -> "Механика", "Bтеоретическая"). A run of
// capitals stays together so doubled markers reach cleanLabel as one prefix.
func splitMarkers(code string) []string {
	var parts []string
	start := 0
	prevMarker := false
	for i, r := range code {
		marker := isMarker(r)
		if marker && !prevMarker && i > start {
			parts = append(parts, code[start:i])
			start = i
		}
		prevMarker = marker
	}
	return append(parts, code[start:])
}

func isMarker(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func cleanLabel(part string) string {
	part = strings.TrimSpace(part)
	for i := 0; i < maxMarkerStrips; i++ {
		part = markerPrefixRegex.ReplaceAllString(part, "")
	}
	part = strings.Map(func(r rune) rune {
		if r == '(' || r == ')' {
			return ' '
		}
		return r
	}, part)
	return strings.Join(strings.Fields(part), " ")
}
