package model

import "time"

type RuleType string

const (
	RuleOutOfOffice RuleType = "out_of_office"
	RuleTimeWindow  RuleType = "time_window"
)

// Day bits for AutoReplyRule.DayMask. Bit n is time.Weekday n, so
// DaySunday == 1<<time.Sunday and so on.
const (
	DaySunday = 1 << iota
	DayMonday
	DayTuesday
	DayWednesday
	DayThursday
	DayFriday
	DaySaturday
)

// AutoReplyRule is an operator-configured, time-gated reply template.
// StartMinute/EndMinute are minutes since local midnight; nil means the
// window covers the whole day. StartDate/EndDate bound the rule to an
// inclusive local date range.
type AutoReplyRule struct {
	ID          int
	Enabled     bool
	Priority    int
	Type        RuleType
	StartDate   *time.Time
	EndDate     *time.Time
	DayMask     int
	StartMinute *int
	EndMinute   *int
	Subject     string
	Body        string
}
