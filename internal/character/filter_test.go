package character

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
)

func TestBuildFilterQuery(t *testing.T) {
	got := BuildFilterQuery(FilterParams{
		"house":        "Gryffindor",
		"blood_status": "  Half-blood ",
		"patronus":     "",
		"species":      "   ",
		"born":         "1980",
	})

	want := url.Values{
		"filter[house_cont]":        {"Gryffindor"},
		"filter[blood_status_cont]": {"Half-blood"},
		"filter[born_cont]":         {"1980"},
	}
	assert.Equal(t, want, got)
}

func TestBuildFilterQueryEmpty(t *testing.T) {
	assert.Empty(t, BuildFilterQuery(nil))
	assert.Empty(t, BuildFilterQuery(FilterParams{"house": ""}))
}

func TestFilterParamsValidate(t *testing.T) {
	require.NoError(t, FilterParams{"house": "x", "blood_status": "y", "died": ""}.Validate())
	require.NoError(t, FilterParams(nil).Validate())

	for _, field := range []string{"House", "house]", "1st", "", "name cont", "house-name"} {
		t.Run(field, func(t *testing.T) {
			err := FilterParams{field: "x"}.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestFilterFieldsIsACopy(t *testing.T) {
	fields := FilterFields()
	assert.Equal(t, []string{"house", "patronus", "species", "blood_status", "gender"}, fields)

	fields[0] = "mutated"
	assert.Equal(t, "house", FilterFields()[0])
}
