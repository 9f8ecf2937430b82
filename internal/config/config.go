// Package config loads fieldfix vocabulary configuration from YAML.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/fieldfix/internal/bbk"
	"github.com/lehigh-university-libraries/fieldfix/internal/pubinfo"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the complete runtime configuration.
type Config struct {
	// Workers is the default batch concurrency
	Workers int `yaml:"workers,omitempty"`

	// BBK configures the classification splitter
	BBK BBKConfig `yaml:"bbk"`

	// Publication is layered over pubinfo.DefaultVocabulary
	Publication pubinfo.Vocabulary `yaml:"publication"`

	// Vocabularies are the linkable reference vocabularies by name
	Vocabularies map[string]reference.Vocabulary `yaml:"vocabularies"`
}

// BBKConfig lists the classification field tags to split and the BCP 47
// language used to title-case labels.
type BBKConfig struct {
	Tags     []string `yaml:"tags"`
	Language string   `yaml:"language,omitempty"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg, err := parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return cfg, nil
}

// Load returns the embedded configuration with the file at path layered
// on top. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	custom, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return Merge(cfg, custom), nil
}

// Merge layers custom over base. Vocabularies are replaced by name.
func Merge(base, custom *Config) *Config {
	merged := &Config{
		Workers:      base.Workers,
		BBK:          base.BBK,
		Publication:  base.Publication.Merge(custom.Publication),
		Vocabularies: make(map[string]reference.Vocabulary, len(base.Vocabularies)+len(custom.Vocabularies)),
	}
	if custom.Workers > 0 {
		merged.Workers = custom.Workers
	}
	if len(custom.BBK.Tags) > 0 {
		merged.BBK.Tags = custom.BBK.Tags
	}
	if custom.BBK.Language != "" {
		merged.BBK.Language = custom.BBK.Language
	}
	for name, v := range base.Vocabularies {
		merged.Vocabularies[name] = v
	}
	for name, v := range custom.Vocabularies {
		merged.Vocabularies[name] = v
	}
	return merged
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.BBK.Language != "" {
		if _, err := language.Parse(cfg.BBK.Language); err != nil {
			return nil, fmt.Errorf("bbk.language: %w", err)
		}
	}
	for name, v := range cfg.Vocabularies {
		if v.Name == "" {
			v.Name = name
			cfg.Vocabularies[name] = v
		}
	}
	return &cfg, nil
}

// Vocabulary returns the named vocabulary after validating it.
func (c *Config) Vocabulary(name string) (reference.Vocabulary, error) {
	v, ok := c.Vocabularies[name]
	if !ok {
		return reference.Vocabulary{}, fmt.Errorf("%w: %q", reference.ErrUnknownVocabulary, name)
	}
	if err := v.Validate(); err != nil {
		return reference.Vocabulary{}, err
	}
	return v, nil
}

// VocabularyNames returns the configured vocabulary names, sorted.
func (c *Config) VocabularyNames() []string {
	names := make([]string, 0, len(c.Vocabularies))
	for name := range c.Vocabularies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublicationVocabulary returns the built-in imprint tables with the
// configured entries layered on top.
func (c *Config) PublicationVocabulary() pubinfo.Vocabulary {
	return pubinfo.DefaultVocabulary().Merge(c.Publication)
}

// Splitter builds the BBK splitter for the configured tags and language.
func (c *Config) Splitter() *bbk.Splitter {
	var opts []bbk.Option
	if len(c.BBK.Tags) > 0 {
		opts = append(opts, bbk.WithTags(c.BBK.Tags...))
	}
	if c.BBK.Language != "" {
		opts = append(opts, bbk.WithLanguage(language.Make(c.BBK.Language)))
	}
	return bbk.NewSplitter(opts...)
}
