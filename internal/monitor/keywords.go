package monitor

import "strings"

// Match reports whether text contains any keyword, case-insensitively.
// Keywords are trimmed and blanks ignored; a set with no usable keyword
// matches everything and returns no matched keywords. Otherwise matched
// lists every hit in keyword order.
func Match(text string, keywords []string) (bool, []string) {
	keywords = usableKeywords(keywords)
	if len(keywords) == 0 {
		return true, []string{}
	}
	if text == "" {
		return false, nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			matched = append(matched, k)
		}
	}
	return len(matched) > 0, matched
}

func usableKeywords(in []string) []string {
	var out []string
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
