package dataset

import "github.com/lehigh-university-libraries/fieldfix/internal/bbk"

// Record is one catalog record as exported from the legacy ILS, with the
// raw text of the fields fieldfix normalizes.
type Record struct {
	// Core identifier
	ID int64 `json:"id" parquet:"id"`

	// Free-form "Surname I.O.; Surname I.O." author list
	Authors string `json:"authors,omitempty" parquet:"authors,optional"`

	// Raw #700/#701 fields with subfield delimiters
	AuthorFields []string `json:"author_fields,omitempty" parquet:"author_fields,list"`

	// Raw #210 imprint statement
	Imprint string `json:"imprint,omitempty" parquet:"imprint,optional"`

	// Classification fields (#606, #610, ...) as tag/content pairs
	Classification []bbk.Field `json:"classification,omitempty" parquet:"classification,list"`

	// Raw GRNTI codes
	GRNTI []string `json:"grnti,omitempty" parquet:"grnti,list"`
}
