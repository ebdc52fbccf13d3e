package autoreply

import (
	"testing"
	"time"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

// 2024-01-01 was a Monday.
func monday(hour, min int) time.Time {
	return time.Date(2024, time.January, 1, hour, min, 0, 0, time.UTC)
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func minutes(m int) *int { return &m }

func oooRule(id int, start, end *time.Time) model.AutoReplyRule {
	return model.AutoReplyRule{
		ID:        id,
		Enabled:   true,
		Priority:  100,
		Type:      model.RuleOutOfOffice,
		StartDate: start,
		EndDate:   end,
		Subject:   "We are away",
		Body:      "Back soon.",
	}
}

func windowRule(id, dayMask int, start, end *int) model.AutoReplyRule {
	return model.AutoReplyRule{
		ID:          id,
		Enabled:     true,
		Priority:    100,
		Type:        model.RuleTimeWindow,
		DayMask:     dayMask,
		StartMinute: start,
		EndMinute:   end,
		Subject:     "Outside office hours",
		Body:        "We answer tomorrow.",
	}
}

func TestFirstMatch_OutOfOfficeDateRange(t *testing.T) {
	rules := []model.AutoReplyRule{
		oooRule(1, date(2024, time.January, 1), date(2024, time.January, 7)),
	}

	cases := []struct {
		name  string
		now   time.Time
		match bool
	}{
		{"first day matches", time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC), true},
		{"middle of range", time.Date(2024, time.January, 4, 23, 59, 0, 0, time.UTC), true},
		{"last day inclusive", time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC), true},
		{"day after end", time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), false},
		{"day before start", time.Date(2023, time.December, 31, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstMatch(rules, tc.now, time.UTC)
			if (got != nil) != tc.match {
				t.Errorf("FirstMatch at %v: got %v, want match=%v", tc.now, got, tc.match)
			}
		})
	}
}

func TestFirstMatch_OpenEndedDateRange(t *testing.T) {
	rules := []model.AutoReplyRule{
		oooRule(1, date(2024, time.January, 5), nil),
	}
	if got := FirstMatch(rules, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), time.UTC); got == nil {
		t.Error("Expected open-ended rule to match far in the future")
	}
	if got := FirstMatch(rules, time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC), time.UTC); got != nil {
		t.Error("Expected no match before the start date")
	}
}

func TestFirstMatch_TimeWindow(t *testing.T) {
	rules := []model.AutoReplyRule{
		windowRule(1, model.DayMonday, minutes(9*60), minutes(17*60)),
	}

	cases := []struct {
		name  string
		now   time.Time
		match bool
	}{
		{"inside window", monday(10, 0), true},
		{"window start inclusive", monday(9, 0), true},
		{"window end inclusive", monday(17, 0), true},
		{"just before start", monday(8, 59), false},
		{"just after end", monday(17, 1), false},
		{"right day bit wrong day", monday(10, 0).AddDate(0, 0, 1), false}, // Tuesday
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstMatch(rules, tc.now, time.UTC)
			if (got != nil) != tc.match {
				t.Errorf("FirstMatch at %v: got %v, want match=%v", tc.now, got, tc.match)
			}
		})
	}
}

func TestFirstMatch_WindowCrossingMidnight(t *testing.T) {
	// 22:00 through 06:00 on Mondays.
	rules := []model.AutoReplyRule{
		windowRule(1, model.DayMonday, minutes(22*60), minutes(6*60)),
	}

	cases := []struct {
		name  string
		now   time.Time
		match bool
	}{
		{"late evening", monday(23, 0), true},
		{"early morning", monday(5, 30), true},
		{"boundary end", monday(6, 0), true},
		{"after morning end", monday(6, 1), false},
		{"middle of day", monday(12, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstMatch(rules, tc.now, time.UTC)
			if (got != nil) != tc.match {
				t.Errorf("FirstMatch at %v: got %v, want match=%v", tc.now, got, tc.match)
			}
		})
	}
}

func TestFirstMatch_AllDayWindow(t *testing.T) {
	rules := []model.AutoReplyRule{
		windowRule(1, model.DaySaturday|model.DaySunday, nil, nil),
	}
	saturday := time.Date(2024, time.January, 6, 3, 12, 0, 0, time.UTC)
	if got := FirstMatch(rules, saturday, time.UTC); got == nil {
		t.Error("Expected all-day weekend rule to match Saturday night")
	}
	if got := FirstMatch(rules, monday(12, 0), time.UTC); got != nil {
		t.Error("Expected weekend rule not to match Monday")
	}
}

func TestFirstMatch_PriorityAndTies(t *testing.T) {
	low := windowRule(9, model.DayMonday, nil, nil)
	low.Priority = 2
	high := windowRule(3, model.DayMonday, nil, nil)
	high.Priority = 1
	tieA := windowRule(5, model.DayMonday, nil, nil)
	tieA.Priority = 1

	got := FirstMatch([]model.AutoReplyRule{low, tieA, high}, monday(10, 0), time.UTC)
	if got == nil || got.ID != 3 {
		t.Fatalf("Expected rule 3 (priority 1, lowest id), got %+v", got)
	}
}

func TestFirstMatch_DisabledRuleSkipped(t *testing.T) {
	disabled := windowRule(1, model.DayMonday, nil, nil)
	disabled.Enabled = false
	fallback := windowRule(2, model.DayMonday, nil, nil)

	got := FirstMatch([]model.AutoReplyRule{disabled, fallback}, monday(10, 0), time.UTC)
	if got == nil || got.ID != 2 {
		t.Fatalf("Expected disabled rule to be skipped, got %+v", got)
	}
}

func TestFirstMatch_BlankTemplateIsNonMatch(t *testing.T) {
	blank := windowRule(1, model.DayMonday, nil, nil)
	blank.Priority = 1
	blank.Subject = "  "
	blank.Body = ""
	real := windowRule(2, model.DayMonday, nil, nil)
	real.Priority = 2

	got := FirstMatch([]model.AutoReplyRule{blank, real}, monday(10, 0), time.UTC)
	if got == nil || got.ID != 2 {
		t.Fatalf("Expected scanning to continue past the blank rule, got %+v", got)
	}

	got = FirstMatch([]model.AutoReplyRule{blank}, monday(10, 0), time.UTC)
	if got != nil {
		t.Errorf("A lone blank rule must not match, got %+v", got)
	}
}

func TestFirstMatch_EvaluatesInConfiguredZone(t *testing.T) {
	// 23:30 UTC on Monday is already Tuesday 01:30 in UTC+2.
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := monday(23, 30)

	mondayOnly := []model.AutoReplyRule{windowRule(1, model.DayMonday, nil, nil)}
	if got := FirstMatch(mondayOnly, now, loc); got != nil {
		t.Errorf("Expected Monday rule to miss, local day is Tuesday")
	}

	tuesdayOnly := []model.AutoReplyRule{windowRule(2, model.DayTuesday, nil, nil)}
	if got := FirstMatch(tuesdayOnly, now, loc); got == nil {
		t.Error("Expected Tuesday rule to match local Tuesday morning")
	}
}

func TestFirstMatch_NoRules(t *testing.T) {
	if got := FirstMatch(nil, monday(10, 0), time.UTC); got != nil {
		t.Errorf("Expected nil for empty rule set, got %+v", got)
	}
}
