package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdatalake/osmwrangle"
	"github.com/smartdatalake/osmwrangle/import_"
	"github.com/smartdatalake/osmwrangle/stats"
	"github.com/smartdatalake/osmwrangle/transform"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(content), 0644))
	return fname
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, osmwrangle.Version+"\n", out)
}

func TestClassify(t *testing.T) {
	fname := writeFile(t, "poi.yml", "Food #1\n  Restaurant #103\n")

	out, err := execute(t, "classify", "--print=false", fname)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, out, `"103"`)

	out, err = execute(t, "classify", "--print", fname)
	require.NoError(t, err)
	assert.Equal(t, "Food #1\n  Restaurant #103\n", out)

	outFile := filepath.Join(t.TempDir(), "poi.nt")
	_, err = execute(t, "classify", "--print=false", "--output", outFile, fname)
	require.NoError(t, err)
	b, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 7)
}

func TestClassifyErrors(t *testing.T) {
	_, err := execute(t, "classify", "--output", "-", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = execute(t, "classify", writeFile(t, "poi.txt", "Food #1\n"))
	assert.Error(t, err)

	_, err = execute(t, "classify")
	assert.Error(t, err)
}

func TestFilterClassification(t *testing.T) {
	fname := writeFile(t, "filters.txt", "amenity=cafe EAT_CAFE\namenity=restaurant EAT_RESTAURANT\n")
	out, err := execute(t, "filter-classification", "--output", "-", fname)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "CATEGORY_ID,CATEGORY,SUBCATEGORY_ID,SUBCATEGORY\n"), out)
	assert.Contains(t, out, "EAT,EAT,EAT_CAFE,CAFE\n")
	assert.Contains(t, out, "EAT,EAT,EAT_RESTAURANT,RESTAURANT\n")
}

func TestTransformMissingInput(t *testing.T) {
	_, err := execute(t, "transform", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing input")
}

func TestPrintSummary(t *testing.T) {
	res := &import_.Result{
		Summary: stats.Summary{
			Nodes: 10, Ways: 2, Relations: 1,
			Records: 4, Rejected: 2, Deferred: 1, Retried: 1, Triples: 40,
		},
		Timestamp:  time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC),
		Attributes: []transform.AttrCount{{Key: "name", Count: 4}},
		Bound:      orb.Bound{Min: orb.Point{23.7, 37.9}, Max: orb.Point{23.8, 38.0}},
		HasBound:   true,
	}
	buf := &bytes.Buffer{}
	printSummary(buf, res)
	out := buf.String()
	assert.Contains(t, out, "2020-03-01T12:00:00Z")
	assert.Contains(t, out, "10 nodes, 2 ways, 1 relations")
	assert.Contains(t, out, "Deferred relations:  1 (1 retried)")
	assert.Contains(t, out, "Triples:             40")
	assert.Contains(t, out, "23.700000 37.900000, 23.800000 38.000000")
	assert.Contains(t, out, "  name")
}
