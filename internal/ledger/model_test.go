package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "01/05/2024", want: "01/05/2024"},
		{in: "1/5/2024", want: "01/05/2024"},
		{in: "01/05/24", want: "01/05/2024"},
		{in: "1/5/24", want: "01/05/2024"},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, d.String())
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 7)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"03/07/2024"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back.Time))
}

func TestEventSignature_IndependentOfPosition(t *testing.T) {
	ev := Event{
		Date:            NewDate(2024, time.January, 10),
		Ship:            "USS CHOSIN",
		Raw:             "USS CHOSIN (ASW T-3)",
		OccurrenceIndex: 1,
		EventIndex:      0,
	}
	other := ev
	other.EventIndex = 7
	other.Classification = Classification{IsValid: false, Reason: "x"}
	assert.Equal(t, ev.Signature(), other.Signature())
}

func TestEventSignature_DistinguishesEvents(t *testing.T) {
	a := Event{Date: NewDate(2024, time.January, 10), Ship: "USS CHOSIN", Raw: "A", OccurrenceIndex: 1}
	b := a
	b.OccurrenceIndex = 2
	assert.NotEqual(t, a.Signature(), b.Signature())
}

func TestLedger_MemberCreation(t *testing.T) {
	l := New()
	m := l.Member("STG1 SMITH,JOHN", "STG1", "SMITH", "JOHN")
	again := l.Member("STG1 SMITH,JOHN", "", "", "")
	assert.Same(t, m, again)
	assert.Equal(t, "STG1 SMITH,JOHN", m.Key())
}

func TestSheet_ReindexPartitions(t *testing.T) {
	s := Sheet{
		Rows: []Event{
			{Raw: "a", EventIndex: 5},
			{Raw: "b", EventIndex: 9},
		},
		InvalidEvents: []Event{
			{Raw: "c", EventIndex: 2},
			{Raw: "d", EventIndex: 8},
		},
	}
	s.ReindexPartitions()
	assert.Equal(t, 0, s.Rows[0].EventIndex)
	assert.Equal(t, 1, s.Rows[1].EventIndex)
	// rejected events publish -(i+1) so the index round-trips into an
	// override submission
	assert.Equal(t, -1, s.InvalidEvents[0].EventIndex)
	assert.Equal(t, -2, s.InvalidEvents[1].EventIndex)
}
