package transcription

import (
	"testing"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

func push(n *Normalizer, ts int, text string) bool {
	return n.Push(entities.RawLine{Timestamp: ts, Text: text})
}

func TestNormalizer_ClampAndGap(t *testing.T) {
	n := NewNormalizer()

	if !push(n, 10, "first line of speech") {
		t.Fatal("first line should be accepted")
	}
	// Same raw timestamp but different text: start is clamped past the
	// previous entry's end plus the 1 second gap.
	if !push(n, 11, "second line of speech") {
		t.Fatal("second line should be accepted")
	}

	entries := n.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StartSeconds != 10 || entries[0].EndSeconds != 13 {
		t.Fatalf("first entry = [%d, %d], want [10, 13]", entries[0].StartSeconds, entries[0].EndSeconds)
	}
	if entries[1].StartSeconds != 14 || entries[1].EndSeconds != 17 {
		t.Fatalf("second entry = [%d, %d], want [14, 17]", entries[1].StartSeconds, entries[1].EndSeconds)
	}
}

func TestNormalizer_FixedDuration(t *testing.T) {
	n := NewNormalizer()
	push(n, 10, "one line here")
	push(n, 100, "another line there")
	push(n, 200, "a third line appears")

	for _, e := range n.Entries() {
		if e.EndSeconds-e.StartSeconds != 3 {
			t.Fatalf("entry %d has duration %d, want 3", e.Index, e.EndSeconds-e.StartSeconds)
		}
	}
}

func TestNormalizer_Monotonicity(t *testing.T) {
	n := NewNormalizer()
	// Out-of-order and colliding timestamps from a hallucinating model.
	push(n, 30, "line at thirty")
	push(n, 5, "line at five")
	push(n, 31, "line at thirty one")

	entries := n.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].StartSeconds < entries[i-1].EndSeconds+1 {
			t.Fatalf("entry %d starts at %d, before previous end %d + 1",
				i+1, entries[i].StartSeconds, entries[i-1].EndSeconds)
		}
	}
}

func TestNormalizer_DenseIndices(t *testing.T) {
	n := NewNormalizer()
	push(n, 10, "kept line one")
	push(n, 10, "dropped for duplicate start")
	push(n, 20, "kept line two")
	push(n, 20, "kept line two") // dropped duplicate text
	push(n, 30, "kept line three")

	entries := n.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Index != i+1 {
			t.Fatalf("entry %d has index %d, want %d", i, e.Index, i+1)
		}
	}
}

func TestNormalizer_DuplicateStartDroppedBeforeClamp(t *testing.T) {
	n := NewNormalizer()
	push(n, 10, "the first line")

	// Raw timestamp 10 is already claimed even though a clamp would have
	// moved this line to a free slot.
	if push(n, 10, "a different line") {
		t.Fatal("duplicate raw start time should be dropped")
	}
	if len(n.Entries()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(n.Entries()))
	}
}

func TestNormalizer_RejectedTimestampDoesNotPoisonText(t *testing.T) {
	n := NewNormalizer()
	push(n, 10, "the first line")

	if push(n, 10, "a recurring phrase") {
		t.Fatal("duplicate start should drop the line")
	}
	// The text was never recorded, so it may appear later.
	if !push(n, 20, "a recurring phrase") {
		t.Fatal("text from a timestamp-dropped line should still be usable")
	}
}

func TestNormalizer_HallucinationsFiltered(t *testing.T) {
	n := NewNormalizer()
	if push(n, 10, "") {
		t.Fatal("empty text should be dropped")
	}
	if push(n, 20, "aaaaaa") {
		t.Fatal("character run should be dropped")
	}
	if push(n, 30, "foo foo foo") {
		t.Fatal("repeated word should be dropped")
	}
	if push(n, 40, "foo bar foo bar foo bar") {
		t.Fatal("repeating bigram should be dropped")
	}
	if len(n.Entries()) != 0 {
		t.Fatalf("expected no entries, got %d", len(n.Entries()))
	}
}
