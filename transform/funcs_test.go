package transform

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdatalake/osmwrangle/util"
)

func TestStandardizePhoneNumber(t *testing.T) {
	for _, tc := range []struct {
		phone string
		want  string
	}{
		{"0172 12 34 567", "+491721234567"},
		{"0049 (30) 123-456", "+4930123456"},
		{"+49 30 123456", "+4930123456"},
		{"30 123456", "30123456"},
		{"  ", ""},
		{"0", "+"},
	} {
		assert.Equal(t, tc.want, StandardizePhoneNumber(tc.phone, "49"), tc.phone)
	}
}

func TestLanguage(t *testing.T) {
	l, ok, err := Language("name_en", 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", l)

	_, ok, _ = Language("name_", 5)
	assert.False(t, ok)

	assert.True(t, IsValidISOLanguage("en"))
	assert.True(t, IsValidISOLanguage("el"))
	assert.False(t, IsValidISOLanguage("xx"))
	assert.False(t, IsValidISOLanguage("eng"))
	assert.False(t, IsValidISOLanguage(""))
}

func TestConcatenate(t *testing.T) {
	assert.Equal(t, "a  b", Concatenate("a", "b"))
	assert.Equal(t, "b", Concatenate("", "b"))
	assert.Equal(t, "a b c", Concatenate("a", "b", "c"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("OSM")

	v, ok, err := r.Call("getUUID", "node/1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, util.NameUUID("node/1").String(), v)

	v, _, err = r.Call("getUUID", "OSM", "node/1")
	require.NoError(t, err)
	assert.Equal(t, util.NameUUID("OSMnode/1").String(), v)

	// serial numbers for missing ids
	assert.Equal(t, util.NameUUID("OSM0").String(), r.FeatureUUID("OSM", ""))
	assert.Equal(t, util.NameUUID("OSM1").String(), r.FeatureUUID("OSM", ""))

	v, _, _ = r.Call("getDataSource")
	assert.Equal(t, "OSM", v)

	v, _, _ = r.Call("getLanguage", "name_de", "5")
	assert.Equal(t, "de", v)

	_, ok, err = r.Call("standardizePhoneNumber", "", "30")
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, _ = r.Call("keepOriginalID", "node/1")
	assert.Equal(t, "node/1", v)

	a, _, _ := r.Call("getRandomUUID")
	b, _, _ := r.Call("getRandomUUID")
	assert.NotEqual(t, a, b)

	_, _, err = r.Call("transliterate", "x")
	assert.Equal(t, ErrUnknownFunction, errors.Cause(err))

	_, _, err = r.Call("getUUID")
	assert.Error(t, err)

	r.Register("upper", func(args []string) (string, bool, error) { return "X", true, nil })
	v, _, _ = r.Call("upper")
	assert.Equal(t, "X", v)
}

func TestChecker(t *testing.T) {
	assert.Equal(t, "a 'b' c d", RemoveIllegalChars("a \"b\"\tc\nd"))
	assert.Equal(t, "http://www.example.org/a", CleanupURL(" www.example.org/<a> "))
	assert.Equal(t, "https://example.org/ab", CleanupURL("https://example.org/a\\b"))
	assert.Equal(t, "ftp://example.org", CleanupURL("ftp://example.org"))
	assert.Equal(t, "a_b_c", ReplaceWhiteSpace("a b \t c"))
	assert.Equal(t, "a;b c", CSVValue("a|b\nc"))
}
