package provider

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	s, err := OpenStore("") // in-memory
	require.NoError(t, err)
	defer s.Close()

	in := NormalizedVariant{
		Expression: "ENST00000000001.1:c.100del",
		Accession:  "ENST00000000001",
		Chrom:      "chr1",
		Start:      1300,
		End:        1302,
	}
	require.NoError(t, s.Put(kindVariant, in.Expression, &in))

	var out NormalizedVariant
	hit, err := s.Get(kindVariant, in.Expression, &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, in, out)
}

func TestStore_Miss(t *testing.T) {
	s, err := OpenStore("")
	require.NoError(t, err)
	defer s.Close()

	var out NormalizedVariant
	hit, err := s.Get(kindVariant, "unknown", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStore_Replace(t *testing.T) {
	s, err := OpenStore("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(kindStructure, "k", map[string]int{"a": 1}))
	require.NoError(t, s.Put(kindStructure, "k", map[string]int{"a": 2}))

	var out map[string]int
	hit, err := s.Get(kindStructure, "k", &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, 2, out["a"])
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "payloads.db")

	s, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(kindTracks, "id", []int{1, 2, 3}))
	require.NoError(t, s.Close())

	s, err = OpenStore(path)
	require.NoError(t, err)
	defer s.Close()

	var out []int
	hit, err := s.Get(kindTracks, "id", &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestStore_Clear(t *testing.T) {
	s, err := OpenStore("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(kindVariant, "x", 1))
	require.NoError(t, s.Clear())

	var out int
	hit, err := s.Get(kindVariant, "x", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}
