// Package condition implements the Condition Evaluator: a pure
// predicate over the current moment (and optional external provider
// state) used to decide whether a schedule entry should be honoured
// (spec.md §4.8). Evaluation is fail-open throughout: a malformed or
// unrecognised operator never blocks content, it is simply ignored.
package condition

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sixthshift/artframed/internal/clockutil"
)

// Conditions is a raw condition tree, JSON-shaped the way it arrives
// from the HTTP API or a schedule/playlist entry: each top-level key is
// an operator name, ANDed together with the other keys.
type Conditions map[string]any

// Provider supplies current external state (weather, API status, a
// custom sensor) for the "external provider" condition operators.
type Provider func() any

// Evaluator holds built-in operator handlers plus registered external
// providers and custom handlers.
type Evaluator struct {
	clock     clockutil.Clock
	handlers  map[string]func(params any) bool
	providers map[string]Provider
}

// timePeriod is an [start, end) hour range; end < start means the
// period wraps past midnight.
type timePeriod struct{ start, end int }

var timePeriods = map[string]timePeriod{
	"early_morning": {5, 7},
	"morning":       {7, 12},
	"afternoon":     {12, 17},
	"evening":       {17, 21},
	"night":         {21, 24},
	"late_night":    {0, 5},
}

// New returns an Evaluator with the built-in operators registered.
func New(clock clockutil.Clock) *Evaluator {
	e := &Evaluator{
		clock:     clock,
		handlers:  make(map[string]func(params any) bool),
		providers: make(map[string]Provider),
	}
	e.handlers["time_of_day"] = e.evalTimeOfDay
	e.handlers["day_of_week"] = e.evalDayOfWeek
	e.handlers["date_range"] = e.evalDateRange
	e.handlers["time_range"] = e.evalTimeRange
	e.handlers["all_of"] = e.evalAllOf
	e.handlers["any_of"] = e.evalAnyOf
	e.handlers["not"] = e.evalNot
	return e
}

// RegisterProvider adds (or replaces) an external state provider under
// name, for use by conditions keyed on that name (e.g. {"weather":
// {"equals": "sunny"}}).
func (e *Evaluator) RegisterProvider(name string, provider Provider) {
	e.providers[name] = provider
}

// RegisterHandler adds (or replaces) a custom built-in-style operator.
func (e *Evaluator) RegisterHandler(name string, handler func(params any) bool) {
	e.handlers[name] = handler
}

// Evaluate returns true if every top-level operator in conditions
// passes (AND logic), or conditions is nil/empty. Errors in an
// individual operator, and unknown operator names with no matching
// provider, are logged and treated as passing (fail-open).
func (e *Evaluator) Evaluate(conditions Conditions) bool {
	if len(conditions) == 0 {
		return true
	}

	for opName, params := range conditions {
		if handler, ok := e.handlers[opName]; ok {
			if !safeEval(opName, handler, params) {
				return false
			}
			continue
		}
		if provider, ok := e.providers[opName]; ok {
			if !e.evalExternal(provider, params) {
				return false
			}
			continue
		}
		log.Warn().Str("operator", opName).Msg("unknown condition operator, ignoring")
	}

	return true
}

// safeEval recovers from a panicking handler (malformed params, a bad
// type assertion) and fails open, logging the recovered error.
func safeEval(opName string, handler func(params any) bool, params any) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("error", r).Str("operator", opName).Msg("condition evaluation failed, failing open")
			result = true
		}
	}()
	return handler(params)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asConditionsSlice(v any) []Conditions {
	items := asSlice(v)
	out := make([]Conditions, 0, len(items))
	for _, item := range items {
		out = append(out, Conditions(asMap(item)))
	}
	return out
}

func (e *Evaluator) evalTimeOfDay(params any) bool {
	periods := asSlice(asMap(params)["periods"])
	if len(periods) == 0 {
		return true
	}

	hour := e.clock.Now().Hour()
	for _, p := range periods {
		name, _ := p.(string)
		period, ok := timePeriods[name]
		if !ok {
			continue
		}
		if inHourRange(hour, period.start, period.end) {
			return true
		}
	}
	return false
}

func inHourRange(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func (e *Evaluator) evalDayOfWeek(params any) bool {
	days := asSlice(asMap(params)["days"])
	if len(days) == 0 {
		return true
	}

	day, _ := e.clock.DayHour(e.clock.Now())

	for _, d := range days {
		n, ok := toInt(d)
		if ok && n == day {
			return true
		}
	}
	return false
}

func (e *Evaluator) evalDateRange(params any) bool {
	m := asMap(params)
	today := e.clock.Now()

	if startStr, ok := m["start_date"].(string); ok && startStr != "" {
		start, err := time.ParseInLocation("2006-01-02", startStr, e.clock.Location())
		if err != nil {
			return true // fail open on malformed date
		}
		if today.Before(start) {
			return false
		}
	}
	if endStr, ok := m["end_date"].(string); ok && endStr != "" {
		end, err := time.ParseInLocation("2006-01-02", endStr, e.clock.Location())
		if err != nil {
			return true
		}
		// end_date is inclusive through the end of that calendar day.
		end = end.Add(24 * time.Hour)
		if !today.Before(end) {
			return false
		}
	}
	return true
}

func (e *Evaluator) evalTimeRange(params any) bool {
	m := asMap(params)
	startStr, sok := m["start_time"].(string)
	endStr, eok := m["end_time"].(string)
	if !sok || !eok || startStr == "" || endStr == "" {
		return true
	}

	start, err1 := time.Parse("15:04", startStr)
	end, err2 := time.Parse("15:04", endStr)
	if err1 != nil || err2 != nil {
		return true // fail open on malformed time
	}

	now := e.clock.Now()
	nowMinutes := now.Hour()*60 + now.Minute()
	startMinutes := start.Hour()*60 + start.Minute()
	endMinutes := end.Hour()*60 + end.Minute()

	if startMinutes <= endMinutes {
		return nowMinutes >= startMinutes && nowMinutes < endMinutes
	}
	// Overnight range, e.g. 22:00 to 06:00.
	return nowMinutes >= startMinutes || nowMinutes < endMinutes
}

func (e *Evaluator) evalAllOf(params any) bool {
	conditions := asConditionsSlice(params)
	if len(conditions) == 0 {
		return true
	}
	for _, c := range conditions {
		if !e.Evaluate(c) {
			return false
		}
	}
	return true
}

func (e *Evaluator) evalAnyOf(params any) bool {
	conditions := asConditionsSlice(params)
	if len(conditions) == 0 {
		return true
	}
	for _, c := range conditions {
		if e.Evaluate(c) {
			return true
		}
	}
	return false
}

func (e *Evaluator) evalNot(params any) bool {
	return !e.Evaluate(Conditions(asMap(params)))
}

func (e *Evaluator) evalExternal(provider Provider, params any) bool {
	state := provider()
	m := asMap(params)

	for key, expected := range m {
		switch key {
		case "equals":
			if state != expected {
				return false
			}
		case "contains":
			if !containsValue(state, expected) {
				return false
			}
		case "in":
			if !valueInSlice(state, asSlice(expected)) {
				return false
			}
		default:
			if stateMap, ok := state.(map[string]any); ok {
				if actual, exists := stateMap[key]; exists && actual != expected {
					return false
				}
			}
		}
	}
	return true
}

func containsValue(container, target any) bool {
	switch c := container.(type) {
	case string:
		s, ok := target.(string)
		return ok && contains(c, s)
	case []any:
		for _, v := range c {
			if v == target {
				return true
			}
		}
	}
	return false
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || (len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func valueInSlice(v any, slice []any) bool {
	for _, item := range slice {
		if item == v {
			return true
		}
	}
	return false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Context is a debug/introspection snapshot of everything the
// evaluator would currently consider, including external provider
// states (spec.md's supplemented get_current_context debug endpoint).
type Context struct {
	Time         string         `json:"time"`
	Date         string         `json:"date"`
	DayOfWeek    int            `json:"day_of_week"`
	DayName      string         `json:"day_name"`
	TimePeriod   string         `json:"time_period,omitempty"`
	Hour         int            `json:"hour"`
	ExternalData map[string]any `json:"external,omitempty"`
}

// CurrentContext returns the present moment and provider states as
// the evaluator would see them.
func (e *Evaluator) CurrentContext() Context {
	now := e.clock.Now()
	day, hour := e.clock.DayHour(now)

	period := ""
	for name, p := range timePeriods {
		if inHourRange(hour, p.start, p.end) {
			period = name
			break
		}
	}

	ctx := Context{
		Time:       now.Format("15:04:05"),
		Date:       now.Format("2006-01-02"),
		DayOfWeek:  day,
		DayName:    now.Weekday().String(),
		TimePeriod: period,
		Hour:       hour,
	}

	if len(e.providers) > 0 {
		ctx.ExternalData = make(map[string]any, len(e.providers))
		for name, provider := range e.providers {
			ctx.ExternalData[name] = provider()
		}
	}
	return ctx
}
