package transcription

import (
	"strings"
	"testing"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

func TestFormatSRTTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00,000"},
		{10, "00:00:10,000"},
		{75, "00:01:15,000"},
		{3661, "01:01:01,000"},
		{7325, "02:02:05,000"},
	}
	for _, tt := range tests {
		if got := FormatSRTTimestamp(tt.seconds); got != tt.want {
			t.Fatalf("FormatSRTTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatSRT(t *testing.T) {
	entries := []entities.SubtitleEntry{
		{Index: 1, StartSeconds: 10, EndSeconds: 13, Text: "First line"},
		{Index: 2, StartSeconds: 14, EndSeconds: 17, Text: "Second line"},
	}

	got := FormatSRT(entries)
	want := "1\n00:00:10,000 --> 00:00:13,000\nFirst line\n" +
		"\n" +
		"2\n00:00:14,000 --> 00:00:17,000\nSecond line\n"
	if got != want {
		t.Fatalf("FormatSRT mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatSRT_Empty(t *testing.T) {
	if got := FormatSRT(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFormatSRT_BlocksSeparatedByBlankLine(t *testing.T) {
	entries := []entities.SubtitleEntry{
		{Index: 1, StartSeconds: 1, EndSeconds: 4, Text: "a"},
		{Index: 2, StartSeconds: 5, EndSeconds: 8, Text: "b"},
		{Index: 3, StartSeconds: 9, EndSeconds: 12, Text: "c"},
	}
	blocks := strings.Split(FormatSRT(entries), "\n\n")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
}
