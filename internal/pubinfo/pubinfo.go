// Package pubinfo parses free-form imprint statements (#210) into
// publisher, city and year.
package pubinfo

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// yearRegex matches exactly four digits at the end of the text.
	yearRegex       = regexp.MustCompile(`(?:^|[^0-9])([0-9]{4})\s*$`)
	tokenSplitRegex = regexp.MustCompile(`[;,]`)
	cityWordRegex   = regexp.MustCompile(`^\p{Lu}[\p{L}-]+$`)
)

const (
	quoteChars    = "«»“”\"„"
	trailingPunct = " \t,;"
)

// Info is a parsed imprint. Empty strings and a zero Year mean the part
// was not found. A trailing "0000" is still consumed as the year group, so
// it never leaks into the publisher or city, but it is reported as no year:
// year 0 is not a publication date.
type Info struct {
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	City      string `json:"city,omitempty" yaml:"city,omitempty"`
	Year      int    `json:"year,omitempty" yaml:"year,omitempty"`
}

// HasYear reports whether a year was extracted.
func (i Info) HasYear() bool {
	return i.Year != 0
}

// Parser classifies imprint tokens. It holds no mutable state and is safe
// for concurrent use.
type Parser struct {
	abbreviations map[string]string
	hints         []string
	suffixes      []string
}

// NewParser builds a Parser over a copy of v.
func NewParser(v Vocabulary) *Parser {
	p := &Parser{
		abbreviations: make(map[string]string, len(v.CityAbbreviations)),
		hints:         make([]string, 0, len(v.PublisherHints)),
		suffixes:      append([]string(nil), v.CitySuffixes...),
	}
	for k, city := range v.CityAbbreviations {
		p.abbreviations[k] = city
	}
	for _, h := range v.PublisherHints {
		if h = strings.ToLower(h); h != "" {
			p.hints = append(p.hints, h)
		}
	}
	return p
}

// Parse splits raw into publisher, city and year:
//
//	"Юнити- Дана, М, 1999"   -> {"Юнити- Дана", "Москва", 1999}
//	"Новоуральск, 1999"      -> {"", "Новоуральск", 1999}
//	"АО АСКОН, М. СПб, 1999" -> {"АО АСКОН", "Санкт-Петербург", 1999}
//
// The trailing year is removed first. The remaining tokens are tried as
// city, then as publisher, then fill whichever slot is still empty,
// publisher first.
func (p *Parser) Parse(raw string) Info {
	var info Info

	text := strings.TrimSpace(raw)
	if text == "" {
		return info
	}

	if m := yearRegex.FindStringSubmatchIndex(text); m != nil {
		info.Year, _ = strconv.Atoi(text[m[2]:m[3]])
		text = strings.TrimRight(text[:m[2]], trailingPunct)
	}

	for _, token := range tokenSplitRegex.Split(text, -1) {
		token = cleanup(token)
		if token == "" {
			continue
		}

		switch {
		case info.City == "" && p.looksLikeCity(token):
			info.City = p.expandCity(token)
		case info.Publisher == "" && p.looksLikePublisher(token):
			info.Publisher = token
		case info.Publisher == "":
			info.Publisher = token
		case info.City == "":
			info.City = p.expandCity(token)
		}
	}

	return info
}

func (p *Parser) looksLikeCity(token string) bool {
	if _, ok := p.abbreviations[token]; ok {
		return true
	}
	if cityWordRegex.MatchString(token) {
		return true
	}
	for _, s := range p.suffixes {
		if s != "" && strings.HasSuffix(token, s) {
			return true
		}
	}
	return false
}

func (p *Parser) looksLikePublisher(token string) bool {
	low := strings.ToLower(token)
	for _, h := range p.hints {
		if strings.Contains(low, h) {
			return true
		}
	}
	return false
}

func (p *Parser) expandCity(token string) string {
	if city, ok := p.abbreviations[token]; ok {
		return city
	}
	return token
}

// cleanup trims whitespace and surrounding quotes and collapses inner runs
// of whitespace.
func cleanup(token string) string {
	token = strings.Trim(strings.TrimSpace(token), quoteChars)
	return strings.Join(strings.Fields(token), " ")
}

var defaultParser = NewParser(DefaultVocabulary())

// Parse parses raw with the default vocabulary.
func Parse(raw string) Info {
	return defaultParser.Parse(raw)
}
