package export

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

func ev(t *testing.T, date, ship string, valid bool, reason string) ledger.Event {
	t.Helper()
	d, err := ledger.ParseDate(date)
	require.NoError(t, err)
	return ledger.Event{
		Date: d,
		Ship: ship,
		Raw:  date + " " + ship,
		Classification: ledger.Classification{
			IsValid: valid,
			Reason:  reason,
			Source:  constants.SourceParser,
		},
	}
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	m := l.Member("STG1 SMITH,JOHN", "STG1", "SMITH", "JOHN")
	m.Sheets = append(m.Sheets, ledger.Sheet{
		SourceFile: "smith.pdf",
		Rows: []ledger.Event{
			ev(t, "01/02/2024", "USS COLE", true, ""),
			ev(t, "01/03/2024", "USS COLE", true, ""),
			ev(t, "03/10/2024", "USS MASON", true, ""),
		},
		InvalidEvents: []ledger.Event{
			ev(t, "01/03/2024", "USS MASON", false, constants.ReasonDuplicateDate),
		},
	})
	return l
}

func TestTrackerXLSX_RowsPerPeriod(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.TrackerXLSX(testLedger(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sea Pay")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two periods

	assert.Equal(t, "Rate", rows[0][0])
	assert.Equal(t, "Total Days", rows[0][7])

	assert.Equal(t, []string{"STG1", "SMITH", "JOHN", "USS COLE", "01/02/2024", "01/03/2024", "2", "3", "1"}, rows[1])
	assert.Equal(t, "USS MASON", rows[2][3])
	assert.Equal(t, "1", rows[2][6])
}

func TestTrackerXLSX_MemberWithoutPeriodsGetsZeroRow(t *testing.T) {
	l := ledger.New()
	m := l.Member("STG2 ADAMS,JANE", "STG2", "ADAMS", "JANE")
	m.Sheets = append(m.Sheets, ledger.Sheet{
		SourceFile:    "adams.pdf",
		InvalidEvents: []ledger.Event{ev(t, "02/01/2024", "SBTT", false, "In-Port Shore Side Event (SBTT)")},
	})

	svc := NewService(nil)
	data, err := svc.TrackerXLSX(l)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sea Pay")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ADAMS", rows[1][1])
	assert.Equal(t, "0", rows[1][6])
}

func TestWriteTracker_ReplacesFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(nil)

	path, err := svc.WriteTracker(testLedger(t), dir)
	require.NoError(t, err)
	assert.FileExists(t, path)

	// second write replaces in place
	again, err := svc.WriteTracker(testLedger(t), dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
