package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingReturnsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "review.json"), nil)
	l, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, l.Members)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.json")
	s := NewStore(path, nil)

	l := New()
	m := l.Member("STG1 SMITH,JOHN", "STG1", "SMITH", "JOHN")
	m.Sheets = append(m.Sheets, Sheet{
		SourceFile:      "SMITH_2024.pdf",
		ReportingPeriod: ReportingPeriod{From: "11/01/2024", To: "02/28/2025"},
		Rows: []Event{{
			Date:            NewDate(2024, time.November, 5),
			Ship:            "USS CHOSIN",
			Raw:             "USS CHOSIN",
			OccurrenceIndex: 1,
			Classification:  Classification{IsValid: true, Source: "parser"},
		}},
		InvalidEvents: []Event{{
			Date:            NewDate(2024, time.November, 6),
			Raw:             "MITE",
			OccurrenceIndex: 1,
			Classification:  Classification{IsValid: false, Reason: "In-Port Shore Side Event (MITE)", Source: "parser"},
		}},
	})

	require.NoError(t, s.Save(l))

	// the document on disk is the bare member map, not the legacy wrapper
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "members")
	assert.Contains(t, doc, "STG1 SMITH,JOHN")

	back, err := s.Load()
	require.NoError(t, err)
	require.Contains(t, back.Members, "STG1 SMITH,JOHN")
	sheet := back.Members["STG1 SMITH,JOHN"].Sheets[0]
	assert.Equal(t, "SMITH_2024.pdf", sheet.SourceFile)
	assert.Equal(t, "11/01/2024", sheet.ReportingPeriod.From)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "11/05/2024", sheet.Rows[0].Date.String())
	assert.True(t, sheet.Rows[0].Classification.IsValid)
	require.Len(t, sheet.InvalidEvents, 1)
	assert.False(t, sheet.InvalidEvents[0].Classification.IsValid)
}

func TestStore_LegacyMembersWrapperAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.json")
	legacy := `{
  "members": {
    "STG1 SMITH,JOHN": {
      "rate": "STG1",
      "last": "SMITH",
      "first": "JOHN",
      "sheets": [
        {
          "source_file": "a.pdf",
          "rows": [],
          "invalid_events": []
        }
      ]
    }
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := NewStore(path, nil)
	l, err := s.Load()
	require.NoError(t, err)
	require.Contains(t, l.Members, "STG1 SMITH,JOHN")
	assert.Equal(t, "SMITH", l.Members["STG1 SMITH,JOHN"].Last)
}

func TestStore_BareMemberMapAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.json")
	bare := `{
  "STG1 SMITH,JOHN": {
    "rate": "STG1",
    "last": "SMITH",
    "first": "JOHN",
    "sheets": []
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(bare), 0o644))

	s := NewStore(path, nil)
	l, err := s.Load()
	require.NoError(t, err)
	require.Contains(t, l.Members, "STG1 SMITH,JOHN")
	assert.Equal(t, "JOHN", l.Members["STG1 SMITH,JOHN"].First)
}

func TestStore_RejectsMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"members": {"X": {"sheets": "wrong"}}}`), 0o644))

	s := NewStore(path, nil)
	_, err := s.Load()
	assert.Error(t, err)
}
