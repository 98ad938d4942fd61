package transcription

import "strings"

// isRepetitionPattern reports whether text looks like model hallucination:
// empty text, one character repeated, one word repeated, or a two-word
// phrase cycling across the whole line.
func isRepetitionPattern(text string) bool {
	if text == "" {
		return true
	}

	// Single character repeated, e.g. "аааааа".
	chars := []rune(strings.ReplaceAll(text, " ", ""))
	if len(chars) > 2 {
		same := true
		for _, c := range chars[1:] {
			if c != chars[0] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}

	words := strings.Fields(text)
	if len(words) > 2 {
		same := true
		for _, w := range words[1:] {
			if w != words[0] {
				same = false
				break
			}
		}
		if same {
			return true
		}

		// Two-word cycle spanning the line, e.g. "foo bar foo bar foo bar".
		if len(words) > 4 {
			cycle := true
			for i, w := range words {
				if w != words[i%2] {
					cycle = false
					break
				}
			}
			if cycle {
				return true
			}
		}
	}

	return false
}

// lineFilter rejects hallucinated or duplicated lines. State is scoped to a
// single normalization pass; Record must only be called for accepted lines.
type lineFilter struct {
	seen map[string]struct{}
	last string
}

func newLineFilter() *lineFilter {
	return &lineFilter{seen: make(map[string]struct{})}
}

// Accept reports whether the text survives the filter. Checks run in order:
// empty, repetition pattern, global duplicate, consecutive duplicate.
func (f *lineFilter) Accept(text string) bool {
	if text == "" {
		return false
	}
	if isRepetitionPattern(text) {
		return false
	}
	if _, ok := f.seen[text]; ok {
		return false
	}
	if text == f.last {
		return false
	}
	return true
}

// Record marks the text as used so later duplicates are rejected.
func (f *lineFilter) Record(text string) {
	f.seen[text] = struct{}{}
	f.last = text
}
