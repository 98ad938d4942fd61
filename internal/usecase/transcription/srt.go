package transcription

import (
	"fmt"
	"strings"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

// FormatSRTTimestamp renders whole seconds as an SRT timestamp. Millisecond
// precision is always ,000 since the timeline works in whole seconds.
func FormatSRTTimestamp(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d,000", hours, minutes, secs)
}

// FormatSRT renders a normalized timeline as SubRip text: index line, time
// range line, text, blank line between blocks.
func FormatSRT(entries []entities.SubtitleEntry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s\n",
			e.Index,
			FormatSRTTimestamp(e.StartSeconds),
			FormatSRTTimestamp(e.EndSeconds),
			e.Text))
	}
	return strings.Join(blocks, "\n")
}
