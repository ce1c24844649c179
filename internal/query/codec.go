package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/foxzi/multiverse/internal/catalog"
)

// Encode serializes a FilterSet into a canonical query string.
// Empty filters are omitted, page is always present, keys are sorted.
func Encode(f catalog.FilterSet) string {
	return Values(f).Encode()
}

// Values returns the url.Values form of a FilterSet
func Values(f catalog.FilterSet) url.Values {
	f = f.Normalized()
	v := url.Values{}
	for _, key := range catalog.FilterKeys {
		if val := f.Get(key); val != "" {
			v.Set(key, val)
		}
	}
	v.Set(catalog.KeyPage, strconv.Itoa(f.Page))
	return v
}

// Decode parses a raw query string (with or without a leading "?").
// Unrecognized keys are ignored. A malformed query decodes as far as
// url.ParseQuery got, which is the same leniency browsers apply.
func Decode(raw string) catalog.FilterSet {
	raw = strings.TrimPrefix(raw, "?")
	v, _ := url.ParseQuery(raw)
	return FromValues(v)
}

// FromValues builds a FilterSet from parsed query values
func FromValues(v url.Values) catalog.FilterSet {
	f := catalog.FilterSet{
		Name:    v.Get(catalog.KeyName),
		Status:  v.Get(catalog.KeyStatus),
		Species: v.Get(catalog.KeySpecies),
		Type:    v.Get(catalog.KeyType),
		Gender:  v.Get(catalog.KeyGender),
		Page:    parsePage(v.Get(catalog.KeyPage)),
	}
	return f
}

// IsCanonical reports whether raw is exactly the canonical encoding
// of the FilterSet it decodes to.
func IsCanonical(raw string) bool {
	raw = strings.TrimPrefix(raw, "?")
	return raw == Encode(Decode(raw))
}

func parsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
