package filter

import (
	"strings"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFilters = `
# comment
amenity=restaurant EAT/DRINK_RESTAURANT
amenity=cafe EAT/DRINK_CAFE
shop= SHOP_OTHER
  =bakery SHOP_BAKERY
  =butcher SHOP_BUTCHER
  =deli
    cuisine=
      =italian SHOP_DELI_ITALIAN
tourism=hotel
  stars=5 ACCOMMODATION_LUXURY
  stars= ACCOMMODATION_HOTEL
`

func parse(t *testing.T, doc string) *Forest {
	t.Helper()
	f, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return f
}

func TestCategoryFor(t *testing.T) {
	f := parse(t, testFilters)

	for _, tc := range []struct {
		tags osm.Tags
		cat  string
		ok   bool
	}{
		{osm.Tags{"amenity": "restaurant"}, "EAT/DRINK_RESTAURANT", true},
		{osm.Tags{"amenity": "cafe"}, "EAT/DRINK_CAFE", true},
		{osm.Tags{"amenity": "bar"}, "", false},
		{osm.Tags{"shop": "bakery"}, "SHOP_BAKERY", true},
		{osm.Tags{"shop": "florist"}, "SHOP_OTHER", true},
		{osm.Tags{"shop": "deli", "cuisine": "italian"}, "SHOP_DELI_ITALIAN", true},
		// deli without category falls back to the shop rule
		{osm.Tags{"shop": "deli"}, "SHOP_OTHER", true},
		{osm.Tags{"tourism": "hotel", "stars": "5"}, "ACCOMMODATION_LUXURY", true},
		{osm.Tags{"tourism": "hotel", "stars": "3"}, "ACCOMMODATION_HOTEL", true},
		// missing key fails the whole branch
		{osm.Tags{"tourism": "hotel"}, "", false},
		{osm.Tags{"name": "foo"}, "", false},
		{nil, "", false},
	} {
		cat, ok := f.CategoryFor(tc.tags)
		assert.Equal(t, tc.ok, ok, "%v", tc.tags)
		assert.Equal(t, tc.cat, cat, "%v", tc.tags)
	}
}

func TestSingleRule(t *testing.T) {
	f := parse(t, "amenity=restaurant EAT/DRINK_RESTAURANT\n")

	cat, ok := f.CategoryFor(osm.Tags{"amenity": "restaurant"})
	assert.True(t, ok)
	assert.Equal(t, "EAT/DRINK_RESTAURANT", cat)

	_, ok = f.CategoryFor(osm.Tags{"amenity": "cafe"})
	assert.False(t, ok)
}

func TestFirstTreeWins(t *testing.T) {
	f := parse(t, "amenity= FIRST\nname= SECOND\n")
	cat, _ := f.CategoryFor(osm.Tags{"amenity": "x", "name": "y"})
	assert.Equal(t, "FIRST", cat)
	cat, _ = f.CategoryFor(osm.Tags{"name": "y"})
	assert.Equal(t, "SECOND", cat)
}

func TestKeysAndCategories(t *testing.T) {
	f := parse(t, testFilters)
	keys := f.Keys()
	for _, k := range []string{"amenity", "shop", "cuisine", "tourism", "stars"} {
		assert.Contains(t, keys, k)
	}
	assert.Len(t, keys, 5)

	assert.Equal(t, []string{
		"EAT/DRINK_RESTAURANT", "EAT/DRINK_CAFE", "SHOP_OTHER", "SHOP_BAKERY",
		"SHOP_BUTCHER", "SHOP_DELI_ITALIAN", "ACCOMMODATION_LUXURY", "ACCOMMODATION_HOTEL",
	}, f.Categories())

	assert.True(t, f.Relevant(osm.Tags{"shop": "x"}))
	assert.False(t, f.Relevant(osm.Tags{"cuisine": "x"}))
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		line int
		msg  string
	}{
		{"amenity restaurant\n", 1, `no "="`},
		{"=restaurant FOO\n", 1, "no key for top level"},
		{"amenity=cafe FOO\n    cuisine=x BAR\n", 2, "invalid indentation"},
		{"amenity=cafe FOO\n  = BAR\n", 2, "at least a key or a value"},
		{"amenity=cafe FOO\n  =x BAR\n", 2, "no key provided after a value"},
		{"amenity=cafe\n", 0, "no category"},
		{"shop=\n  =bakery\n", 0, "no category"},
		{"#x\n" + strings.Repeat(" ", 202) + "a=b C\n", 2, "max indentation"},
	} {
		_, err := Parse(strings.NewReader(tc.doc))
		require.Error(t, err, tc.doc)
		perr, ok := err.(*ParseError)
		require.True(t, ok, "%T", err)
		assert.Equal(t, tc.line, perr.Line, tc.doc)
		assert.Contains(t, perr.Error(), tc.msg)
	}
}
