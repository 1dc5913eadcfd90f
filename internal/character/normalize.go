package character

import (
	"strconv"

	"github.com/antonholmquist/jason"
)

// NormalizeSummary maps a raw provider record to a Summary. It accepts any
// record, including nil or one without an attributes block.
func NormalizeSummary(record *jason.Object) Summary {
	attrs := attributes(record)
	s := Summary{
		ID:   recordID(record),
		Name: textAttr(attrs, "name", UnknownValue),
	}
	if image := textAttr(attrs, "image", ""); image != "" {
		s.Image = &image
	}
	return s
}

// NormalizeDetail maps a raw provider record to a Detail with a fallback
// for every absent attribute.
func NormalizeDetail(record *jason.Object) Detail {
	attrs := attributes(record)
	return Detail{
		Summary:     NormalizeSummary(record),
		House:       textAttr(attrs, "house", UnknownValue),
		Patronus:    textAttr(attrs, "patronus", UnknownValue),
		Species:     textAttr(attrs, "species", UnknownValue),
		BloodStatus: textAttr(attrs, "blood_status", UnknownValue),
		Gender:      textAttr(attrs, "gender", UnknownValue),
		Wiki:        textAttr(attrs, "wiki", ""),
		AliasNames:  listAttr(attrs, "alias_names"),
		Born:        textAttr(attrs, "born", UnknownValue),
		Died:        textAttr(attrs, "died", UnknownValue),
	}
}

func attributes(record *jason.Object) *jason.Object {
	if record == nil {
		return nil
	}
	attrs, err := record.GetObject("attributes")
	if err != nil {
		return nil
	}
	return attrs
}

// recordID reads the identifier, accepting numeric ids as well
func recordID(record *jason.Object) string {
	if record == nil {
		return ""
	}
	if id, err := record.GetString("id"); err == nil {
		return id
	}
	if id, err := record.GetInt64("id"); err == nil {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

// textAttr returns the string attribute key, or fallback when it is absent,
// null, empty or not a string.
func textAttr(attrs *jason.Object, key, fallback string) string {
	if attrs == nil {
		return fallback
	}
	v, err := attrs.GetString(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

// listAttr returns the string elements of an array attribute, skipping
// anything that is not a non-empty string.
func listAttr(attrs *jason.Object, key string) []string {
	out := []string{}
	if attrs == nil {
		return out
	}
	values, err := attrs.GetValueArray(key)
	if err != nil {
		return out
	}
	for _, v := range values {
		if s, err := v.String(); err == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}
