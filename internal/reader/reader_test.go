package reader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sieve/internal/testutils"
)

func TestParseSingleDocument(t *testing.T) {
	docs, err := ParseString("name: Bill\nage: 26")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	m, ok := docs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bill", m["name"])
	assert.Equal(t, 26, m["age"])
}

func TestParseMultipleDocuments(t *testing.T) {
	docs, err := ParseString("a: 1\n---\nb: 2\n---\nc: 3")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestParseEmptyInput(t *testing.T) {
	docs, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParseTimestamps(t *testing.T) {
	docs, err := ParseString("day: 2015-01-01\nstamp: 2015-01-01 12:00:00")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	m := docs[0].(map[string]any)
	day, ok := m["day"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2015, day.Year())
	_, ok = m["stamp"].(time.Time)
	assert.True(t, ok)
}

func TestParseInvalidYaml(t *testing.T) {
	_, err := ParseString("a: [unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse yaml")
}

func TestParseFile(t *testing.T) {
	dir := testutils.TempTree(t, map[string]string{
		"data.yaml": "x: 1\n---\ny: 2\n",
	})

	docs, err := ParseFile(dir + "/data.yaml")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = ParseFile(dir + "/missing.yaml")
	assert.Error(t, err)
}
