package textproc

import (
	"regexp"
	"strconv"
)

var jobRefPattern = regexp.MustCompile(`#(\d+)`)

// ExtractJobID pulls the first job reference of the form #<digits> out
// of a subject line. Later references are ignored. Returns false when
// the subject has none, or when the digits overflow an int.
func ExtractJobID(subject string) (int, bool) {
	m := jobRefPattern.FindStringSubmatch(subject)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
