package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/ai"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/config"
)

func TestSegmentPrompt(t *testing.T) {
	prompt := segmentPrompt(600)
	if !strings.Contains(prompt, "starting from minute 10") {
		t.Fatalf("prompt missing start minute: %q", prompt)
	}
	if !strings.Contains(prompt, "[MM:SS]") {
		t.Fatalf("prompt missing timestamp format: %q", prompt)
	}

	if got := segmentPrompt(0); !strings.Contains(got, "starting from minute 0") {
		t.Fatalf("zero offset prompt wrong: %q", got)
	}
	// Offsets are truncated to whole minutes.
	if got := segmentPrompt(359); !strings.Contains(got, "starting from minute 5") {
		t.Fatalf("truncation wrong: %q", got)
	}
}

func fakeGeminiServer(t *testing.T, generateStatus *int32, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/upload/") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"file": map[string]string{"uri": "files/test-upload"},
			})
			return
		}
		if status := atomic.LoadInt32(generateStatus); status != 200 {
			w.WriteHeader(int(status))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "unavailable"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				}},
			},
		})
	}))
}

func writeChunkFile(t *testing.T) entities.AudioChunk {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temp_segment_0.mp3")
	if err := os.WriteFile(path, []byte("chunk-bytes"), 0o644); err != nil {
		t.Fatalf("write chunk: %v", err)
	}
	return entities.AudioChunk{Index: 0, Path: path, StartOffset: 0}
}

func TestTranscribeChunk_RemovesFileOnSuccess(t *testing.T) {
	status := int32(200)
	ts := fakeGeminiServer(t, &status, "[00:05] Some speech here")
	defer ts.Close()

	client := ai.NewGeminiClient(&config.GeminiConfig{APIKey: "k", BaseURL: ts.URL, Model: "gemini-2.0-flash"})
	transcriber := NewGeminiChunkTranscriber(client, 0, nil)

	chunk := writeChunkFile(t)
	text, err := transcriber.TranscribeChunk(context.Background(), chunk)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if text != "[00:05] Some speech here" {
		t.Fatalf("unexpected text %q", text)
	}
	if _, err := os.Stat(chunk.Path); !os.IsNotExist(err) {
		t.Fatal("chunk file should be removed after success")
	}
}

func TestTranscribeChunk_RemovesFileOnFailure(t *testing.T) {
	status := int32(500)
	ts := fakeGeminiServer(t, &status, "")
	defer ts.Close()

	client := ai.NewGeminiClient(&config.GeminiConfig{APIKey: "k", BaseURL: ts.URL, Model: "gemini-2.0-flash"})
	transcriber := NewGeminiChunkTranscriber(client, 0, nil)

	chunk := writeChunkFile(t)
	if _, err := transcriber.TranscribeChunk(context.Background(), chunk); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(chunk.Path); !os.IsNotExist(err) {
		t.Fatal("chunk file should be removed after failure")
	}
}

func TestTranscribeChunk_EmptyResponseIsError(t *testing.T) {
	status := int32(200)
	ts := fakeGeminiServer(t, &status, "   \n  ")
	defer ts.Close()

	client := ai.NewGeminiClient(&config.GeminiConfig{APIKey: "k", BaseURL: ts.URL, Model: "gemini-2.0-flash"})
	transcriber := NewGeminiChunkTranscriber(client, 0, nil)

	if _, err := transcriber.TranscribeChunk(context.Background(), writeChunkFile(t)); err == nil {
		t.Fatal("whitespace-only transcript should be an error")
	}
}
