package mail

import "strings"

// maxPromptRunes caps the body text handed to the classifier prompt.
// Long quoted threads add cost without adding signal.
const maxPromptRunes = 4000

// NormalizeText collapses runs of whitespace while preserving paragraph
// breaks, and trims the result.
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blankRun := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// TruncateForPrompt limits text to the prompt budget, cutting at a line
// boundary where possible and marking the cut.
func TruncateForPrompt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxPromptRunes {
		return text
	}

	cut := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(cut, "\n"); idx > maxPromptRunes/2 {
		cut = cut[:idx]
	}
	return cut + "\n[truncated]"
}
