// Package character is the data-access layer for the PotterDB character
// catalog: full pagination traversal, normalization into summaries and
// details, client-side search, server-side filters and a time-boxed cache
// persisted in a key-value store.
package character

// UnknownValue replaces absent text attributes.
const UnknownValue = "Unknown"

// Summary is the minimal record shown in list views.
type Summary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// Detail is the full record of a single character. Text attributes are
// never empty; AliasNames is never nil.
type Detail struct {
	Summary
	House       string   `json:"house"`
	Patronus    string   `json:"patronus"`
	Species     string   `json:"species"`
	BloodStatus string   `json:"blood_status"`
	Gender      string   `json:"gender"`
	Wiki        string   `json:"wiki"`
	AliasNames  []string `json:"alias_names"`
	Born        string   `json:"born"`
	Died        string   `json:"died"`
}
