package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeShip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"USS COLE (DDG 67)", "USS COLE"},
		{"uss cole", "USS COLE"},
		{"USS  THE   SULLIVANS", "USS THE SULLIVANS"},
		{"USS COLE *", "USS COLE"},
		{"(DDG 67)", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeShip(c.in), "input %q", c.in)
	}
}

func testIndex(t *testing.T) *ShipIndex {
	t.Helper()
	return NewShipIndex([]string{
		"USS COLE",
		"USS MASON",
		"USS THE SULLIVANS",
		"USS GRAVELY",
	}, 0.60)
}

func TestShipIndex_MatchExact(t *testing.T) {
	idx := testIndex(t)
	name, score, ok := idx.Match("USS COLE (DDG 67)")
	require.True(t, ok)
	assert.Equal(t, "USS COLE", name)
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestShipIndex_MatchTokenOrderInsensitive(t *testing.T) {
	idx := testIndex(t)
	name, _, ok := idx.Match("THE SULLIVANS USS")
	require.True(t, ok)
	assert.Equal(t, "USS THE SULLIVANS", name)
}

func TestShipIndex_MatchToleratesOCRNoise(t *testing.T) {
	idx := testIndex(t)
	name, _, ok := idx.Match("USS GRAVELY.")
	require.True(t, ok)
	assert.Equal(t, "USS GRAVELY", name)
}

func TestShipIndex_BelowFloorKeepsCleanedLiteral(t *testing.T) {
	idx := testIndex(t)
	name, _, ok := idx.Match("HMS QUEEN ELIZABETH (R08)")
	assert.False(t, ok)
	assert.Equal(t, "HMS QUEEN ELIZABETH", name)
}

func TestShipIndex_EmptyAfterCleaning(t *testing.T) {
	idx := testIndex(t)
	name, _, ok := idx.Match("(DDG 67) 123")
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestLoadShipIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ships.txt")
	require.NoError(t, os.WriteFile(path, []byte("# fleet\nUSS COLE\n\nUSS MASON\n"), 0o644))

	idx, err := LoadShipIndex(path, 0.60)
	require.NoError(t, err)
	assert.Equal(t, []string{"USS COLE", "USS MASON"}, idx.Names())
}

func TestLoadShipIndex_Missing(t *testing.T) {
	_, err := LoadShipIndex(filepath.Join(t.TempDir(), "nope.txt"), 0.60)
	assert.Error(t, err)
}

func testRoster(t *testing.T) *Roster {
	t.Helper()
	return NewRoster([]Identity{
		{Rate: "STG1", Last: "SMITH", First: "JOHN"},
		{Rate: "STG2", Last: "RODRIGUEZ", First: "MARIA"},
		{Rate: "STGC", Last: "OKONKWO", First: "ADA"},
	}, 0.60)
}

func TestIdentity_Key(t *testing.T) {
	id := Identity{Rate: "STG1", Last: "Smith", First: "John"}
	assert.Equal(t, "STG1 SMITH,JOHN", id.Key())
}

func TestRoster_ResolveExact(t *testing.T) {
	r := testRoster(t)
	id, score, ok := r.Resolve("SMITH JOHN")
	require.True(t, ok)
	assert.Equal(t, "SMITH", id.Last)
	assert.Equal(t, "STG1", id.Rate)
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestRoster_ResolveNoisyName(t *testing.T) {
	r := testRoster(t)
	id, _, ok := r.Resolve("RODRIGUEZ, MARIA.")
	require.True(t, ok)
	assert.Equal(t, "RODRIGUEZ", id.Last)
	assert.Equal(t, "MARIA", id.First)
}

func TestRoster_BelowFloorFallsBackToLastToken(t *testing.T) {
	r := testRoster(t)
	id, _, ok := r.Resolve("XQ ZV BAXTER")
	assert.False(t, ok)
	assert.Equal(t, "BAXTER", id.Last)
	assert.Empty(t, id.Rate)
}

func TestRoster_ResolveEmpty(t *testing.T) {
	r := testRoster(t)
	_, _, ok := r.Resolve("  .. 12 ")
	assert.False(t, ok)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.txt")
	data := "# command roster\nSTG1|SMITH|JOHN\nSTG2|RODRIGUEZ\nDOE\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	r, err := LoadRoster(path, 0.60)
	require.NoError(t, err)
	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Identity{Rate: "STG1", Last: "SMITH", First: "JOHN"}, entries[0])
	assert.Equal(t, Identity{Rate: "STG2", Last: "RODRIGUEZ"}, entries[1])
	assert.Equal(t, Identity{Last: "DOE"}, entries[2])
}
