package sanitizer

import "strings"

// TrimAndNormalize collapses every whitespace run, line breaks included,
// into a single space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeText cleans free text while keeping its paragraphs: each line is
// collapsed, blank-line runs shrink to one and the text is trimmed.
func NormalizeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = TrimAndNormalize(line)
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
