package pubinfo

// Vocabulary holds the lookup tables the parser classifies tokens with.
type Vocabulary struct {
	// CityAbbreviations expands abbreviated city tokens ("М." -> "Москва").
	CityAbbreviations map[string]string `yaml:"city_abbreviations" json:"city_abbreviations"`

	// PublisherHints are lowercase substrings that mark a publisher token.
	PublisherHints []string `yaml:"publisher_hints" json:"publisher_hints"`

	// CitySuffixes are endings typical of city names. Matching is case-sensitive.
	CitySuffixes []string `yaml:"city_suffixes" json:"city_suffixes"`
}

// DefaultVocabulary returns the tables for Russian-language imprints.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		CityAbbreviations: map[string]string{
			"М":       "Москва",
			"М.":      "Москва",
			"СПб":     "Санкт-Петербург",
			"СПб.":    "Санкт-Петербург",
			"М. СПб":  "Санкт-Петербург",
			"Л":       "Ленинград",
			"Л.":      "Ленинград",
			"Екб":     "Екатеринбург",
			"Екат":    "Екатеринбург",
			"НН":      "Нижний Новгород",
			"Новосиб": "Новосибирск",
			"Каз":     "Казань",
			"Кр":      "Краснодар",
			"РнД":     "Ростов-на-Дону",
			"Сам":     "Самара",
			"Вл":      "Владивосток",
			"Влд":     "Волгоград",
			"Кл":      "Калининград",
			"Крс":     "Красноярск",
		},
		PublisherHints: []string{
			"изд", "press", "publisher",
			"ao ", "zao ", "ооо ", "ао ", "зао ", "оао ", "пао ", "акц",
			"gmbh", "ltd", "srl", "llc",
		},
		CitySuffixes: []string{
			"ск", "ск-на-Дону", "бург", "град", "город", "инск", "поль", "од",
		},
	}
}

// Merge returns v with the non-empty tables of other layered on top.
// Abbreviations are merged key by key; lists are replaced.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	out := Vocabulary{
		CityAbbreviations: make(map[string]string, len(v.CityAbbreviations)+len(other.CityAbbreviations)),
		PublisherHints:    v.PublisherHints,
		CitySuffixes:      v.CitySuffixes,
	}
	for k, city := range v.CityAbbreviations {
		out.CityAbbreviations[k] = city
	}
	for k, city := range other.CityAbbreviations {
		out.CityAbbreviations[k] = city
	}
	if len(other.PublisherHints) > 0 {
		out.PublisherHints = other.PublisherHints
	}
	if len(other.CitySuffixes) > 0 {
		out.CitySuffixes = other.CitySuffixes
	}
	return out
}
