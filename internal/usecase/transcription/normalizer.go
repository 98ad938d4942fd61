package transcription

import "github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"

// Normalizer builds a clean, monotonic subtitle timeline from parsed lines.
// All state is scoped to one pass over one job's lines; create a fresh
// Normalizer per job.
type Normalizer struct {
	filter     *lineFilter
	seenStarts map[int]struct{}
	lastEnd    int
	entries    []entities.SubtitleEntry
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		filter:     newLineFilter(),
		seenStarts: make(map[int]struct{}),
	}
}

// Push feeds one parsed line through the filter and timeline rules and
// reports whether it produced an entry. Rules, in order:
//   - text must pass the hallucination/duplicate filter
//   - a start time already claimed in this pass drops the line
//   - start is clamped to max(timestamp, lastEnd+1) so entries never
//     overlap and always leave a 1 second gap
//   - every entry lasts exactly 3 seconds
//
// Filter and timeline state only advance when the line is accepted, so a
// line dropped for its timestamp does not poison a later identical text.
func (n *Normalizer) Push(line entities.RawLine) bool {
	if !n.filter.Accept(line.Text) {
		return false
	}
	if _, ok := n.seenStarts[line.Timestamp]; ok {
		return false
	}

	start := line.Timestamp
	if start < n.lastEnd+1 {
		start = n.lastEnd + 1
	}
	end := start + 3

	n.entries = append(n.entries, entities.SubtitleEntry{
		Index:        len(n.entries) + 1,
		StartSeconds: start,
		EndSeconds:   end,
		Text:         line.Text,
	})
	n.seenStarts[start] = struct{}{}
	n.filter.Record(line.Text)
	n.lastEnd = end
	return true
}

// Entries returns the normalized timeline accumulated so far.
func (n *Normalizer) Entries() []entities.SubtitleEntry {
	return n.entries
}
