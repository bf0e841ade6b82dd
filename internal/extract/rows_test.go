package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntries_BasicRows(t *testing.T) {
	text := "01/10/2024 USS CHOSIN (ASW T-3)\n" +
		"01/11/2024 USS CHOSIN\n" +
		"NOT A DATE LINE\n" +
		"01/12/2024 USS PAUL HAMILTON\n"

	entries := ParseEntries(text, Period{}, 2024)
	require.Len(t, entries, 3)
	assert.Equal(t, "01/10/2024", entries[0].Date.String())
	assert.Equal(t, "01/11/2024", entries[1].Date.String())
	assert.Equal(t, "01/12/2024", entries[2].Date.String())
	assert.Contains(t, entries[0].Raw, "USS CHOSIN")
}

func TestParseEntries_ContinuationAbsorption(t *testing.T) {
	text := "01/10/2024 USS CHOSIN\n" +
		"(ASW T-3)\n" +
		"EXTRA LINE\n" +
		"01/11/2024 USS CHOSIN\n"

	entries := ParseEntries(text, Period{}, 2024)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Raw, "(ASW T-3)")
	assert.Contains(t, entries[0].Raw, "EXTRA LINE")
	assert.NotContains(t, entries[0].Raw, "01/11")
}

func TestParseEntries_OccurrenceIndex(t *testing.T) {
	text := "01/10/2024 USS CHOSIN\n" +
		"01/10/2024 USS PAUL HAMILTON\n" +
		"01/11/2024 USS CHOSIN\n"

	entries := ParseEntries(text, Period{}, 2024)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].OccurrenceIndex)
	assert.Equal(t, 2, entries[1].OccurrenceIndex)
	assert.Equal(t, 1, entries[2].OccurrenceIndex)
}

func TestParseEntries_TwoDigitYear(t *testing.T) {
	entries := ParseEntries("1/5/25 USS CHOSIN\n", Period{}, 2024)
	require.Len(t, entries, 1)
	assert.Equal(t, "01/05/2025", entries[0].Date.String())
}

func TestParseEntries_YearRollover(t *testing.T) {
	period := Period{
		Start: time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
	}

	entries := ParseEntries("12/30 USS CHOSIN\n01/02 USS CHOSIN\n", period, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, "12/30/2024", entries[0].Date.String())
	assert.Equal(t, "01/02/2025", entries[1].Date.String())
}

func TestParseEntries_NoYearNoPeriodUsesFallback(t *testing.T) {
	entries := ParseEntries("06/15 USS CHOSIN\n", Period{}, 2023)
	require.Len(t, entries, 1)
	assert.Equal(t, "06/15/2023", entries[0].Date.String())
}

func TestParseEntries_InvalidCalendarDateSkipped(t *testing.T) {
	entries := ParseEntries("02/30/2024 USS CHOSIN\n13/01/2024 USS CHOSIN\n", Period{}, 2024)
	assert.Empty(t, entries)
}

func TestSanitizeParentheticals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "scrubs garbage in known codes",
			in:   "USS CHOSIN (ASW° T-3�þICA)",
			want: "USS CHOSIN (ASW T-3)",
		},
		{
			name: "leaves unknown parentheticals alone",
			in:   "USS CHOSIN (SOME°NOTE)",
			want: "USS CHOSIN (SOME°NOTE)",
		},
		{
			name: "no parens passes through",
			in:   "USS CHOSIN",
			want: "USS CHOSIN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeParentheticals(tt.in))
		})
	}
}

func TestFindPeriod(t *testing.T) {
	p := FindPeriod("REPORTING PERIOD 11/01/2024 TO 02/28/2025\n01/10 USS CHOSIN")
	require.False(t, p.IsZero())
	assert.Equal(t, 2024, p.Start.Year())
	assert.Equal(t, 2025, p.End.Year())
	rp := p.Reported()
	assert.Equal(t, "11/01/2024", rp.From)
	assert.Equal(t, "02/28/2025", rp.To)
}

func TestFindPeriod_NoneFound(t *testing.T) {
	assert.True(t, FindPeriod("no dates here").IsZero())
}

func TestYearFromFilename(t *testing.T) {
	now := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2025, YearFromFilename("SMITH_SEA_PAY_2025.pdf", now))
	assert.Equal(t, 2026, YearFromFilename("SMITH_SEA_PAY.pdf", now))
}

func TestMemberName_Strategies(t *testing.T) {
	name, err := MemberName("NAME: BRANDON ANDERSEN SSN/DOD #: 123", "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "BRANDON ANDERSEN", name)

	name, err = MemberName("NAME: JOHN SMITH\nother text", "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "JOHN SMITH", name)

	name, err = MemberName("nothing useful here", "SMITH_JOHN_2025.pdf")
	require.NoError(t, err)
	assert.Equal(t, "SMITH JOHN", name)
}
