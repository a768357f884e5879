package condition

import (
	"testing"
	"time"

	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/stretchr/testify/require"
)

func newEvaluator(t *testing.T, at time.Time) (*Evaluator, *clockutil.Virtual) {
	t.Helper()
	vc := clockutil.NewVirtual(at)
	return New(vc), vc
}

func utc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)
	return loc
}

func TestEmptyConditionsPass(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.True(t, e.Evaluate(nil))
	require.True(t, e.Evaluate(Conditions{}))
}

func TestTimeOfDayMatchesPeriod(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t))) // Monday 09:00 -> morning
	require.True(t, e.Evaluate(Conditions{"time_of_day": map[string]any{"periods": []any{"morning"}}}))
	require.False(t, e.Evaluate(Conditions{"time_of_day": map[string]any{"periods": []any{"night"}}}))
}

func TestTimeOfDayWrapsMidnight(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 2, 0, 0, 0, utc(t))) // 02:00 -> late_night (0,5)
	require.True(t, e.Evaluate(Conditions{"time_of_day": map[string]any{"periods": []any{"late_night"}}}))
}

func TestDayOfWeekMondayIsZero(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t))) // Monday
	require.True(t, e.Evaluate(Conditions{"day_of_week": map[string]any{"days": []any{0, 1, 2, 3, 4}}}))
	require.False(t, e.Evaluate(Conditions{"day_of_week": map[string]any{"days": []any{5, 6}}}))
}

func TestDateRangeBounds(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.True(t, e.Evaluate(Conditions{"date_range": map[string]any{
		"start_date": "2026-07-01", "end_date": "2026-07-31",
	}}))
	require.False(t, e.Evaluate(Conditions{"date_range": map[string]any{
		"start_date": "2026-08-01",
	}}))
}

// TestTimeRangeOvernightBoundary covers B2: an overnight time_range
// (e.g. 22:00-06:00) must correctly include both sides of midnight.
func TestTimeRangeOvernightBoundary(t *testing.T) {
	e, vc := newEvaluator(t, time.Date(2026, 7, 27, 23, 0, 0, 0, utc(t)))
	params := Conditions{"time_range": map[string]any{"start_time": "22:00", "end_time": "06:00"}}
	require.True(t, e.Evaluate(params))

	vc.Set(time.Date(2026, 7, 27, 5, 59, 0, 0, utc(t)))
	require.True(t, e.Evaluate(params))

	vc.Set(time.Date(2026, 7, 27, 6, 0, 0, 0, utc(t)))
	require.False(t, e.Evaluate(params))

	vc.Set(time.Date(2026, 7, 27, 12, 0, 0, 0, utc(t)))
	require.False(t, e.Evaluate(params))
}

func TestAllOfRequiresEveryCondition(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.False(t, e.Evaluate(Conditions{"all_of": []any{
		map[string]any{"day_of_week": map[string]any{"days": []any{0}}},
		map[string]any{"day_of_week": map[string]any{"days": []any{5}}},
	}}))
}

func TestAnyOfRequiresOneCondition(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.True(t, e.Evaluate(Conditions{"any_of": []any{
		map[string]any{"day_of_week": map[string]any{"days": []any{0}}},
		map[string]any{"day_of_week": map[string]any{"days": []any{5}}},
	}}))
}

func TestNotNegates(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.False(t, e.Evaluate(Conditions{"not": map[string]any{
		"day_of_week": map[string]any{"days": []any{0}},
	}}))
}

// TestUnknownOperatorFailsOpen covers P7: an unrecognised operator
// never blocks evaluation.
func TestUnknownOperatorFailsOpen(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.True(t, e.Evaluate(Conditions{"some_future_operator": map[string]any{"x": 1}}))
}

// TestMalformedParamsFailOpen covers params of the wrong shape: the
// handler reads them as absent and the operator passes.
func TestMalformedParamsFailOpen(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	require.True(t, e.Evaluate(Conditions{"time_of_day": "not-a-map"}))
}

func TestExternalProviderEquals(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	e.RegisterProvider("weather", func() any { return "sunny" })

	require.True(t, e.Evaluate(Conditions{"weather": map[string]any{"equals": "sunny"}}))
	require.False(t, e.Evaluate(Conditions{"weather": map[string]any{"equals": "rainy"}}))
}

func TestExternalProviderNestedKey(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	e.RegisterProvider("weather", func() any {
		return map[string]any{"condition": "sunny", "temp_c": 22}
	})

	require.True(t, e.Evaluate(Conditions{"weather": map[string]any{"condition": "sunny"}}))
	require.False(t, e.Evaluate(Conditions{"weather": map[string]any{"condition": "rainy"}}))
}

func TestCurrentContextReportsTimePeriod(t *testing.T) {
	e, _ := newEvaluator(t, time.Date(2026, 7, 27, 9, 0, 0, 0, utc(t)))
	ctx := e.CurrentContext()
	require.Equal(t, "morning", ctx.TimePeriod)
	require.Equal(t, 0, ctx.DayOfWeek)
	require.Equal(t, "Monday", ctx.DayName)
}
