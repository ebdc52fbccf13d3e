package autoreply

import (
	"sort"
	"strings"
	"time"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
)

// FirstMatch returns the first enabled rule that governs the given
// instant, evaluated in loc. Rules are checked in ascending priority,
// ties broken by id, so the answer is deterministic for a fixed rule
// set and instant. Nil means no rule applies.
func FirstMatch(rules []model.AutoReplyRule, now time.Time, loc *time.Location) *model.AutoReplyRule {
	ordered := make([]model.AutoReplyRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	local := now.In(loc)
	for i := range ordered {
		if ruleMatches(&ordered[i], local) {
			return &ordered[i]
		}
	}
	return nil
}

func ruleMatches(r *model.AutoReplyRule, local time.Time) bool {
	if !r.Enabled {
		return false
	}
	// A blank template cannot produce a reply, so the rule never matches
	// and scanning continues below it.
	if strings.TrimSpace(r.Subject) == "" && strings.TrimSpace(r.Body) == "" {
		return false
	}
	if r.StartDate != nil && dateOrdinal(local) < dateOrdinal(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && dateOrdinal(local) > dateOrdinal(*r.EndDate) {
		return false
	}
	if r.Type == model.RuleOutOfOffice {
		return true
	}
	return windowContains(r, local)
}

func windowContains(r *model.AutoReplyRule, local time.Time) bool {
	if r.DayMask&(1<<uint(local.Weekday())) == 0 {
		return false
	}
	if r.StartMinute == nil && r.EndMinute == nil {
		// All day.
		return true
	}
	start, end := 0, 24*60-1
	if r.StartMinute != nil {
		start = *r.StartMinute
	}
	if r.EndMinute != nil {
		end = *r.EndMinute
	}
	minute := local.Hour()*60 + local.Minute()
	if start <= end {
		return minute >= start && minute <= end
	}
	// Crossing midnight, e.g. 22:00 to 06:00.
	return minute >= start || minute <= end
}

// dateOrdinal compares calendar dates without caring which zone the
// date value was decoded in.
func dateOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
