package character

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
)

// FilterPageSize is the page size used for filtered traversals
const FilterPageSize = 100

// FilterParams maps attribute names to the substring their value must contain.
type FilterParams map[string]string

var filterFields = []string{"house", "patronus", "species", "blood_status", "gender"}

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z_]*$`)

// FilterFields returns the filterable attribute names offered to users.
func FilterFields() []string {
	return slices.Clone(filterFields)
}

// Validate rejects attribute names that cannot form a filter parameter.
func (p FilterParams) Validate() error {
	var bad []string
	for field := range p {
		if !fieldNamePattern.MatchString(field) {
			bad = append(bad, fmt.Sprintf("%q", field))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return errors.Newf("invalid filter field %s", strings.Join(bad, ", ")).
		Component("character").
		Category(errors.CategoryValidation).
		Context("allowed_fields", strings.Join(filterFields, ",")).
		Build()
}

// BuildFilterQuery turns each non-blank entry into a filter[<field>_cont]
// parameter. Blank values are dropped.
func BuildFilterQuery(params FilterParams) url.Values {
	query := url.Values{}
	for field, value := range params {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		query.Set("filter["+field+"_cont]", value)
	}
	return query
}
