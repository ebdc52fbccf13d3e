package textproc

import (
	"regexp"
	"strings"
)

// Reply separators, checked in order against each line. The first hit
// ends the scan; everything below it is quoted history or a signature.
var replySeparators = []*regexp.Regexp{
	regexp.MustCompile(`^On .*wrote:\s*$`),
	regexp.MustCompile(`^From:`),
	regexp.MustCompile(`(?i)^-+\s*original message\s*-+`),
	regexp.MustCompile(`^_{2,}`),
}

// Strip removes quoted reply history and mail client signatures from a
// plain text body. The scan walks line by line and cuts at the first
// separator or quote marker; empty lines never end the scan. The result
// is trimmed of trailing blank lines and surrounding whitespace.
func Strip(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")

	kept := make([]string, 0, len(lines))
scan:
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			kept = append(kept, line)
			continue
		}
		if strings.HasPrefix(line, ">") {
			break
		}
		for _, sep := range replySeparators {
			if sep.MatchString(line) {
				break scan
			}
		}
		kept = append(kept, line)
	}

	for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
		kept = kept[:len(kept)-1]
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
