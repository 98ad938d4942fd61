package transcription

import (
	"strconv"
	"strings"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

// ParseLines extracts timestamped lines from a raw model response. Lines
// without both a '[' and a ']', and lines whose bracketed token is not a
// strict MM:SS timestamp, are dropped without comment — the model emits
// plenty of decoration we don't want.
func ParseLines(raw string) []entities.RawLine {
	var lines []entities.RawLine
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		open := strings.Index(line, "[")
		close := strings.Index(line, "]")
		if open == -1 || close == -1 || close < open {
			continue
		}

		seconds, ok := parseTimestamp(line[open : close+1])
		if !ok {
			continue
		}
		text := strings.TrimSpace(line[close+1:])

		lines = append(lines, entities.RawLine{Timestamp: seconds, Text: text})
	}
	return lines
}

// parseTimestamp converts a "[MM:SS]" token to seconds. Both fields must be
// plain non-negative integers; minutes may exceed 59 for long sources.
func parseTimestamp(token string) (int, bool) {
	token = strings.TrimSpace(strings.Trim(token, "[]"))
	fields := strings.Split(token, ":")
	if len(fields) != 2 {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || seconds < 0 {
		return 0, false
	}
	return minutes*60 + seconds, true
}
