package transcription

import "testing"

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		token string
		want  int
		ok    bool
	}{
		{"[00:00]", 0, true},
		{"[00:10]", 10, true},
		{"[05:30]", 330, true},
		{"[75:00]", 4500, true}, // minutes beyond 59 are valid for long sources
		{"[1:05]", 65, true},
		{"[00:10:05]", 0, false}, // three fields
		{"[0010]", 0, false},
		{"[aa:bb]", 0, false},
		{"[-1:10]", 0, false},
		{"[]", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTimestamp(tt.token)
		if ok != tt.ok {
			t.Fatalf("parseTimestamp(%q) ok = %v, want %v", tt.token, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("parseTimestamp(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}
}

func TestParseLines(t *testing.T) {
	raw := "Here is the transcript:\n" +
		"[00:05] First line\n" +
		"\n" +
		"[00:10]   Second line  \n" +
		"no brackets here\n" +
		"[bad:stamp] dropped\n" +
		"] before [ dropped\n" +
		"[00:15] Third line"

	lines := ParseLines(raw)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Timestamp != 5 || lines[0].Text != "First line" {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].Timestamp != 10 || lines[1].Text != "Second line" {
		t.Fatalf("expected trimmed text, got %+v", lines[1])
	}
	if lines[2].Timestamp != 15 {
		t.Fatalf("unexpected third line %+v", lines[2])
	}
}

func TestParseLines_TextAfterBracketOnly(t *testing.T) {
	// A bracketed timestamp with no text still parses; the filter decides
	// what to do with empty text.
	lines := ParseLines("[00:05]")
	if len(lines) != 1 || lines[0].Text != "" {
		t.Fatalf("expected one empty-text line, got %+v", lines)
	}
}
