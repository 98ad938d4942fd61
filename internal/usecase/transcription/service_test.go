package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

type fakeSegmenter struct {
	chunks  []entities.AudioChunk
	err     error
	cleaned bool
}

func (f *fakeSegmenter) Split(ctx context.Context, audioPath string) ([]entities.AudioChunk, error) {
	return f.chunks, f.err
}

func (f *fakeSegmenter) Cleanup(chunks []entities.AudioChunk) {
	f.cleaned = true
}

type fakeTranscriber struct {
	mu      sync.Mutex
	texts   map[int]string
	errs    map[int]error
	calls   []int
	inUse   int
	maxSeen int
}

func (f *fakeTranscriber) TranscribeChunk(ctx context.Context, chunk entities.AudioChunk) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chunk.Index)
	f.inUse++
	if f.inUse > f.maxSeen {
		f.maxSeen = f.inUse
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inUse--
	f.mu.Unlock()

	if err, ok := f.errs[chunk.Index]; ok {
		return "", err
	}
	return f.texts[chunk.Index], nil
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok
}

func (f *fakeCache) Set(ctx context.Context, key, value string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
}

func newTestOutputs(t *testing.T) OutputWriter {
	t.Helper()
	w, err := newOutputWriterForTest(t.TempDir())
	if err != nil {
		t.Fatalf("output writer: %v", err)
	}
	return w
}

// minimal local OutputWriter so the usecase tests do not import the
// infrastructure package
type testOutputWriter struct{ dir string }

func newOutputWriterForTest(dir string) (*testOutputWriter, error) {
	return &testOutputWriter{dir: dir}, nil
}

func (w *testOutputWriter) WriteTranscript(stamp, content string) (string, error) {
	name := fmt.Sprintf("transcript_%s.txt", stamp)
	return name, os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0o644)
}

func (w *testOutputWriter) WriteSubtitles(stamp, content string) (string, error) {
	name := fmt.Sprintf("transcript_%s.srt", stamp)
	return name, os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0o644)
}

func (w *testOutputWriter) ReadFile(name string) (string, error) {
	content, err := os.ReadFile(filepath.Join(w.dir, name))
	return string(content), err
}

func writeTestAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.mp3")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test audio: %v", err)
	}
	return path
}

func TestTranscribe_EndToEnd(t *testing.T) {
	segmenter := &fakeSegmenter{chunks: []entities.AudioChunk{
		{Index: 0, StartOffset: 0},
		{Index: 1, StartOffset: 300},
	}}
	transcriber := &fakeTranscriber{texts: map[int]string{
		0: "[00:10] Hello from the studio\n[00:11] More news follows",
		1: "[05:00] Back after the break",
	}}

	svc := NewService(segmenter, transcriber, newTestOutputs(t), 2, nil, Options{})
	result, err := svc.Transcribe(context.Background(), Request{
		AudioPath:  writeTestAudio(t, "audio-bytes"),
		SourceName: "input.mp3",
	})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}

	if result.ChunkCount != 2 {
		t.Fatalf("expected 2 chunks, got %d", result.ChunkCount)
	}
	if !segmenter.cleaned {
		t.Fatal("chunks were not cleaned up")
	}

	// The plain transcript is the raw chunk outputs joined with a newline.
	wantTranscript := "[00:10] Hello from the studio\n[00:11] More news follows\n[05:00] Back after the break"
	if result.Transcript != wantTranscript {
		t.Fatalf("transcript mismatch:\ngot %q\nwant %q", result.Transcript, wantTranscript)
	}

	// Timeline: [00:10] -> [10,13], [00:11] clamps to [14,17], [05:00] -> [300,303].
	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].StartSeconds != 10 || result.Entries[0].EndSeconds != 13 {
		t.Fatalf("entry 1 = %+v", result.Entries[0])
	}
	if result.Entries[1].StartSeconds != 14 || result.Entries[1].EndSeconds != 17 {
		t.Fatalf("entry 2 = %+v", result.Entries[1])
	}
	if result.Entries[2].StartSeconds != 300 {
		t.Fatalf("entry 3 = %+v", result.Entries[2])
	}

	if result.TranscriptFile == "" || result.SubtitleFile == "" {
		t.Fatal("output files not recorded")
	}
	if !strings.HasSuffix(result.TranscriptFile, ".txt") || !strings.HasSuffix(result.SubtitleFile, ".srt") {
		t.Fatalf("unexpected output names %s / %s", result.TranscriptFile, result.SubtitleFile)
	}
}

func TestTranscribe_ChunkFailureIsIsolated(t *testing.T) {
	segmenter := &fakeSegmenter{chunks: []entities.AudioChunk{
		{Index: 0, StartOffset: 0},
		{Index: 1, StartOffset: 300},
		{Index: 2, StartOffset: 600},
	}}
	transcriber := &fakeTranscriber{
		texts: map[int]string{
			0: "[00:05] Opening remarks continue",
			2: "[10:05] Closing remarks begin",
		},
		errs: map[int]error{1: fmt.Errorf("gemini generateContent returned status 500")},
	}

	svc := NewService(segmenter, transcriber, newTestOutputs(t), 2, nil, Options{})
	result, err := svc.Transcribe(context.Background(), Request{
		AudioPath:  writeTestAudio(t, "audio-bytes"),
		SourceName: "input.mp3",
	})
	if err != nil {
		t.Fatalf("a single chunk failure must not fail the job: %v", err)
	}

	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries from surviving chunks, got %d", len(result.Entries))
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %+v", len(result.Diagnostics), result.Diagnostics)
	}
	d := result.Diagnostics[0]
	if d.Stage != entities.DiagnosticStageChunk || d.ChunkIndex != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestTranscribe_OrderPreservedAcrossWorkers(t *testing.T) {
	var chunks []entities.AudioChunk
	texts := make(map[int]string)
	for i := 0; i < 8; i++ {
		chunks = append(chunks, entities.AudioChunk{Index: i, StartOffset: i * 300})
		texts[i] = fmt.Sprintf("[%02d:00] Segment number %d speaking", i*5, i)
	}
	segmenter := &fakeSegmenter{chunks: chunks}
	transcriber := &fakeTranscriber{texts: texts}

	svc := NewService(segmenter, transcriber, newTestOutputs(t), 3, nil, Options{})
	result, err := svc.Transcribe(context.Background(), Request{
		AudioPath:  writeTestAudio(t, "audio-bytes"),
		SourceName: "input.mp3",
	})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}

	if transcriber.maxSeen > 3 {
		t.Fatalf("worker pool exceeded bound: %d concurrent", transcriber.maxSeen)
	}

	// Entries must follow chunk order regardless of completion order.
	if len(result.Entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(result.Entries))
	}
	for i, e := range result.Entries {
		want := fmt.Sprintf("Segment number %d speaking", i)
		if e.Text != want {
			t.Fatalf("entry %d out of order: %q", i+1, e.Text)
		}
	}
}

func TestTranscribe_SegmentationFailureIsFatal(t *testing.T) {
	segmenter := &fakeSegmenter{err: fmt.Errorf("no duration found in ffmpeg output")}
	transcriber := &fakeTranscriber{}

	svc := NewService(segmenter, transcriber, newTestOutputs(t), 2, nil, Options{})
	_, err := svc.Transcribe(context.Background(), Request{
		AudioPath:  writeTestAudio(t, "not-audio"),
		SourceName: "input.bin",
	})
	if err == nil {
		t.Fatal("expected fatal error for undecodable input")
	}
}

func TestTranscribe_CacheHitSkipsPipeline(t *testing.T) {
	segmenter := &fakeSegmenter{chunks: []entities.AudioChunk{{Index: 0, StartOffset: 0}}}
	transcriber := &fakeTranscriber{texts: map[int]string{0: "[00:03] Cached content here"}}
	cache := newFakeCache()
	outputs := newTestOutputs(t)

	svc := NewService(segmenter, transcriber, outputs, 2, nil, Options{Cache: cache})
	audioPath := writeTestAudio(t, "identical-bytes")

	first, err := svc.Transcribe(context.Background(), Request{AudioPath: audioPath, SourceName: "input.mp3"})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Cached {
		t.Fatal("first run must not be cached")
	}

	second, err := svc.Transcribe(context.Background(), Request{AudioPath: audioPath, SourceName: "input.mp3"})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !second.Cached {
		t.Fatal("second run should hit the cache")
	}
	if second.TranscriptFile != first.TranscriptFile {
		t.Fatalf("cached run returned different file %s", second.TranscriptFile)
	}
	if len(transcriber.calls) != 1 {
		t.Fatalf("expected 1 transcriber call total, got %d", len(transcriber.calls))
	}
}

func TestTranscribe_CrossChunkDeduplication(t *testing.T) {
	segmenter := &fakeSegmenter{chunks: []entities.AudioChunk{
		{Index: 0, StartOffset: 0},
		{Index: 1, StartOffset: 300},
	}}
	// The second chunk re-emits a line the first chunk already produced.
	transcriber := &fakeTranscriber{texts: map[int]string{
		0: "[00:10] A phrase the model loves",
		1: "[05:10] A phrase the model loves\n[05:15] Genuinely new material",
	}}

	svc := NewService(segmenter, transcriber, newTestOutputs(t), 1, nil, Options{})
	result, err := svc.Transcribe(context.Background(), Request{
		AudioPath:  writeTestAudio(t, "audio-bytes"),
		SourceName: "input.mp3",
	})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}

	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries after dedupe, got %d: %+v", len(result.Entries), result.Entries)
	}
	if result.Entries[1].Text != "Genuinely new material" {
		t.Fatalf("unexpected second entry %+v", result.Entries[1])
	}
}
