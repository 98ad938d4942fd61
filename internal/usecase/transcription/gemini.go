package transcription

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/ai"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/jobcontext"
)

const chunkMimeType = "audio/mpeg"

// segmentPrompt builds the per-chunk instruction. Timestamps are asked for
// relative to the whole source, so the prompt anchors the model at the
// chunk's global start minute.
func segmentPrompt(startOffsetSeconds int) string {
	minutes := startOffsetSeconds / 60
	return fmt.Sprintf(
		"Generate a transcript for this audio segment. "+
			"Use the format [MM:SS] for timestamps, starting from "+
			"minute %d. Add timestamps every 3-5 seconds. "+
			"Format each line as: [MM:SS] Text content. "+
			"Only transcribe actual speech - do not generate placeholder content. "+
			"If there is silence or no clear speech, skip that section. "+
			"Each transcribed line must contain meaningful content.",
		minutes,
	)
}

// GeminiChunkTranscriber transcribes one chunk per call: upload the chunk
// to the Gemini file API, then generate the transcript text. The chunk file
// is removed on every exit path, success or not.
type GeminiChunkTranscriber struct {
	client     *ai.GeminiClient
	maxRetries int
	logger     *zap.Logger
}

// NewGeminiChunkTranscriber wires a Gemini client into the pipeline.
// maxRetries of 0 means a single attempt per chunk.
func NewGeminiChunkTranscriber(client *ai.GeminiClient, maxRetries int, logger *zap.Logger) *GeminiChunkTranscriber {
	return &GeminiChunkTranscriber{
		client:     client,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// TranscribeChunk uploads the chunk audio and returns the raw model text.
func (t *GeminiChunkTranscriber) TranscribeChunk(ctx context.Context, chunk entities.AudioChunk) (string, error) {
	defer func() {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) && t.logger != nil {
			t.logger.Warn("failed to remove chunk file",
				zap.Int("chunk", chunk.Index),
				zap.Error(err))
		}
	}()

	operation := func() (string, error) {
		return t.transcribeOnce(ctx, chunk)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(t.maxRetries)),
		ctx,
	)
	text, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty transcript for %s", chunk)
	}
	return text, nil
}

func (t *GeminiChunkTranscriber) transcribeOnce(ctx context.Context, chunk entities.AudioChunk) (string, error) {
	f, err := os.Open(chunk.Path)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("open chunk: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("stat chunk: %w", err))
	}

	fileURI, err := t.client.UploadFile(ctx, f, info.Size(), chunkMimeType)
	if err != nil {
		return "", retryable(fmt.Errorf("upload %s: %w", chunk, err))
	}

	text, err := t.client.GenerateTranscript(ctx, fileURI, chunkMimeType, segmentPrompt(chunk.StartOffset))
	if err != nil {
		return "", retryable(fmt.Errorf("generate %s: %w", chunk, err))
	}
	return text, nil
}

// retryable marks errors the retry policy should not re-attempt (auth
// failures, blocked prompts) as permanent.
func retryable(err error) error {
	if jobcontext.IsRetryableError(err) {
		return err
	}
	return backoff.Permanent(err)
}
