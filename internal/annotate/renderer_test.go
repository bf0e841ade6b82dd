package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/night-owl-018/seapay-certifier/internal/ledger"
	"github.com/night-owl-018/seapay-certifier/internal/ocr"
)

// one page at 1:1 scale: a 612x792 px raster maps a pixel to a point
func totalFixture(printed string) ([]Row, [][]ocr.Word, []float64, []float64) {
	rows := []Row{
		{Page: 0, Y: 400, Text: "01/05/2024 USS COLE", Date: "01/05/2024", Occ: 1},
		{Page: 0, Y: 700, Text: "TOTAL SEA PAY DAYS " + printed},
	}
	words := [][]ocr.Word{{
		{Text: printed, Left: 270, Top: 695, Width: 12, Height: 10, Conf: 95},
	}}
	return rows, words, []float64{1.0}, []float64{1.0}
}

func TestPlanTotal_MismatchStrikesAndCorrects(t *testing.T) {
	r := NewRenderer(nil, "black", nil)
	rows, words, sx, sy := totalFixture("5")

	plan := r.planTotal(Request{ComputedTotal: 7}, rows, words, sx, sy)
	require.NotNil(t, plan)
	assert.Equal(t, 0, plan.page)
	assert.InDelta(t, 700.0, plan.y, 0.001)
	assert.Equal(t, "7", plan.text)
	// strike span matches the printed numeral's box, not the fallback
	assert.InDelta(t, 270.0, plan.strikeFrom, 0.001)
	assert.InDelta(t, 282.0, plan.strikeTo, 0.001)
}

func TestPlanTotal_MatchLeavesSheetAlone(t *testing.T) {
	r := NewRenderer(nil, "black", nil)
	rows, words, sx, sy := totalFixture("7")

	assert.Nil(t, r.planTotal(Request{ComputedTotal: 7}, rows, words, sx, sy))
}

func TestPlanTotal_ExtractedFigurePreferredOverBoxText(t *testing.T) {
	r := NewRenderer(nil, "black", nil)
	rows, words, sx, sy := totalFixture("5")

	// the text-layer figure already agrees with the computed total, so the
	// noisier word-box reading does not trigger a correction
	assert.Nil(t, r.planTotal(Request{ComputedTotal: 7, ExtractedTotal: "7"}, rows, words, sx, sy))
}

func TestPlanTotal_NoNumeralOnRowUsesFallbackSpan(t *testing.T) {
	r := NewRenderer(nil, "black", nil)
	rows := []Row{{Page: 0, Y: 700, Text: "TOTAL SEA PAY DAYS"}}
	words := [][]ocr.Word{nil}

	plan := r.planTotal(Request{ComputedTotal: 3}, rows, words, []float64{1.0}, []float64{1.0})
	require.NotNil(t, plan)
	assert.InDelta(t, totalFallbackXStart, plan.strikeFrom, 0.001)
	assert.InDelta(t, totalFallbackXEnd, plan.strikeTo, 0.001)
	assert.Equal(t, "3", plan.text)
}

func TestPlanTotal_NoTotalRow(t *testing.T) {
	r := NewRenderer(nil, "black", nil)
	rows := []Row{{Page: 0, Y: 400, Text: "01/05/2024 USS COLE", Date: "01/05/2024", Occ: 1}}

	assert.Nil(t, r.planTotal(Request{ComputedTotal: 7}, rows, [][]ocr.Word{nil}, []float64{1.0}, []float64{1.0}))
}

func TestPlanTotal_RebuildWithoutForcedRowsSkips(t *testing.T) {
	r := NewRenderer(nil, "black", nil)
	rows, words, sx, sy := totalFixture("5")

	req := Request{ComputedTotal: 7, Rebuild: true}
	assert.Nil(t, r.planTotal(req, rows, words, sx, sy))

	req.OverrideValid = []ledger.Event{{}}
	assert.NotNil(t, r.planTotal(req, rows, words, sx, sy))
}
