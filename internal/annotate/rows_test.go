package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/night-owl-018/seapay-certifier/internal/ocr"
)

func word(text string, top, height int) ocr.Word {
	return ocr.Word{Text: text, Top: top, Height: height, Width: 40, Left: 100, Conf: 90}
}

func TestDateVariants(t *testing.T) {
	got := DateVariants("01/05/2024")
	assert.ElementsMatch(t, []string{"01/05/2024", "1/5/2024", "1/5/24", "01/05/24"}, got)
}

func TestDateVariants_PaddedInputCollapses(t *testing.T) {
	// months and days that need no padding produce fewer distinct spellings
	got := DateVariants("11/25/2024")
	assert.ElementsMatch(t, []string{"11/25/2024", "11/25/24"}, got)
}

func TestDateVariants_UnparseableReturnsInput(t *testing.T) {
	assert.Equal(t, []string{"junk"}, DateVariants("junk"))
}

func TestNormalizeTokenDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1/5/24", "01/05/2024"},
		{"01/05/2024", "01/05/2024"},
		{"12/30/24,", "12/30/2024"},
		{"USS", ""},
		{"1145", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeTokenDate(c.in), "input %q", c.in)
	}
}

func TestBuildRows_ClustersByVerticalProximity(t *testing.T) {
	// Letter page is 792pt; with a 792px image the scale is 1:1 and pixel
	// centers equal point centers.
	words := []ocr.Word{
		word("01/05/24", 95, 10),
		word("USS", 96, 10),
		word("COLE", 97, 10),
		word("01/06/24", 130, 10),
		word("USS", 131, 10),
		word("COLE", 132, 10),
	}
	rows := BuildRows(1, words, 792)
	require.Len(t, rows, 2)
	assert.Equal(t, "01/05/24 USS COLE", rows[0].Text)
	assert.Equal(t, "01/06/24 USS COLE", rows[1].Text)
	assert.Less(t, rows[0].Y, rows[1].Y)
	assert.Equal(t, 1, rows[0].Page)
}

func TestBuildRows_ScalesImagePixelsToPoints(t *testing.T) {
	// a 1584px image maps 2 pixels to one point
	rows := BuildRows(1, []ocr.Word{word("X", 200, 0)}, 1584)
	require.Len(t, rows, 1)
	assert.InDelta(t, 100.0, rows[0].Y, 0.01)
}

func TestBuildRows_EmptyInput(t *testing.T) {
	assert.Nil(t, BuildRows(1, nil, 792))
	assert.Nil(t, BuildRows(1, []ocr.Word{word("X", 10, 10)}, 0))
}

func TestAssignDates_OccurrenceCountersRunInRowOrder(t *testing.T) {
	rows := []Row{
		{Text: "01/05/24 USS COLE"},
		{Text: "01/05/24 USS MASON"},
		{Text: "01/06/24 USS COLE"},
		{Text: "HEADER TEXT"},
	}
	AssignDates(rows, []string{"01/05/2024", "01/06/2024"})

	assert.Equal(t, "01/05/2024", rows[0].Date)
	assert.Equal(t, 1, rows[0].Occ)
	assert.Equal(t, "01/05/2024", rows[1].Date)
	assert.Equal(t, 2, rows[1].Occ)
	assert.Equal(t, "01/06/2024", rows[2].Date)
	assert.Equal(t, 1, rows[2].Occ)
	assert.Empty(t, rows[3].Date)
}

func TestAssignDates_MatchesOCRVariantSpellings(t *testing.T) {
	rows := []Row{{Text: "1/5/24 USS COLE"}}
	AssignDates(rows, []string{"01/05/2024"})
	assert.Equal(t, "01/05/2024", rows[0].Date)
}

func TestCollectDates_DedupesAndNormalizes(t *testing.T) {
	words := []ocr.Word{
		word("1/5/24", 0, 0),
		word("01/05/2024", 0, 0),
		word("1/6/24", 0, 0),
		word("USS", 0, 0),
	}
	got := CollectDates(words)
	assert.Equal(t, []string{"01/05/2024", "01/06/2024"}, got)
}

func TestMergeContinuations_AbsorbsHintedRows(t *testing.T) {
	rows := []Row{
		{Page: 1, Y: 100, Text: "01/05/24 USS COLE", Date: "01/05/2024"},
		{Page: 1, Y: 110, Text: "(M-1 TRANSIT)"},
		{Page: 1, Y: 130, Text: "01/06/24 USS COLE", Date: "01/06/2024"},
		{Page: 1, Y: 140, Text: "SIGNATURE BLOCK"},
	}
	out := MergeContinuations(rows)
	require.Len(t, out, 3)
	assert.Equal(t, "01/05/24 USS COLE (M-1 TRANSIT)", out[0].Text)
	assert.Equal(t, "SIGNATURE BLOCK", out[2].Text)
}

func TestMergeContinuations_NoDateRowAboveLeavesRow(t *testing.T) {
	rows := []Row{
		{Page: 1, Y: 50, Text: "SBTT NOTES"},
		{Page: 1, Y: 100, Text: "01/05/24 USS COLE", Date: "01/05/2024"},
	}
	out := MergeContinuations(rows)
	assert.Len(t, out, 2)
}

func TestNearestDateRow(t *testing.T) {
	rows := []Row{
		{Page: 1, Y: 100, Date: "01/05/2024"},
		{Page: 1, Y: 200, Date: "01/06/2024"},
		{Page: 2, Y: 140, Date: "01/07/2024"},
		{Page: 1, Y: 145, Text: "undated"},
	}
	got := NearestDateRow(rows, 1, 190)
	require.NotNil(t, got)
	assert.Equal(t, "01/06/2024", got.Date)

	assert.Nil(t, NearestDateRow(rows, 3, 100))
}

func TestExtractPrintedTotal(t *testing.T) {
	text := "SOME HEADER\nTOTAL SEA PAY DAYS: 37\nFOOTER"
	assert.Equal(t, "37", ExtractPrintedTotal(text))
	assert.Equal(t, "", ExtractPrintedTotal("TOTAL SEA PAY DAYS:"))
	assert.Equal(t, "", ExtractPrintedTotal("no label here"))
}

func TestIsTotalRow(t *testing.T) {
	assert.True(t, IsTotalRow("TOTAL SEA PAY DAYS 37"))
	assert.False(t, IsTotalRow("TOTAL DAYS 37"))
}

func TestCleanDigits(t *testing.T) {
	assert.Equal(t, "37", CleanDigits(" 3a7. "))
	assert.Equal(t, "", CleanDigits("none"))
}
