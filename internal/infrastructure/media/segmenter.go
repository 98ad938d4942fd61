package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

// commandRunner abstracts command execution so tests can fake ffmpeg.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ffmpeg prints "Duration: HH:MM:SS.cc" on stderr for any decodable input.
var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2})\.(\d+)`)

// Segmenter cuts source audio into fixed-length mp3 chunks with ffmpeg.
type Segmenter struct {
	ffmpegPath     string
	segmentSeconds int
	runner         commandRunner
	logger         *zap.Logger
}

// SegmenterOption customizes a Segmenter.
type SegmenterOption func(*Segmenter)

// WithCommandRunner replaces the process runner, used by tests.
func WithCommandRunner(r commandRunner) SegmenterOption {
	return func(s *Segmenter) { s.runner = r }
}

// NewSegmenter creates a Segmenter. segmentSeconds must be positive.
func NewSegmenter(ffmpegPath string, segmentSeconds int, logger *zap.Logger, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		ffmpegPath:     ffmpegPath,
		segmentSeconds: segmentSeconds,
		runner:         osCommandRunner{},
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split probes the source duration, cuts it into segmentSeconds-long chunks
// and returns them in order. Chunk i starts at i*segmentSeconds; the last
// chunk is whatever remains. The chunk files live in a fresh temp directory
// that Cleanup removes.
func (s *Segmenter) Split(ctx context.Context, audioPath string) ([]entities.AudioChunk, error) {
	duration, err := s.probeDuration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	totalSeconds := int(math.Ceil(duration.Seconds()))
	if totalSeconds == 0 {
		return nil, fmt.Errorf("audio %s has zero duration", audioPath)
	}

	tempDir, err := os.MkdirTemp("", "gemini-transcriber-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	offsets := planChunkOffsets(totalSeconds, s.segmentSeconds)
	chunks := make([]entities.AudioChunk, 0, len(offsets))
	for i, offset := range offsets {
		chunkPath := filepath.Join(tempDir, fmt.Sprintf("temp_segment_%d.mp3", i))
		if err := s.extractChunk(ctx, audioPath, chunkPath, offset); err != nil {
			os.RemoveAll(tempDir)
			return nil, fmt.Errorf("extract chunk %d: %w", i, err)
		}
		chunks = append(chunks, entities.AudioChunk{
			Index:       i,
			Path:        chunkPath,
			StartOffset: offset,
		})
	}

	if s.logger != nil {
		s.logger.Info("audio segmented",
			zap.String("source", audioPath),
			zap.Duration("duration", duration),
			zap.Int("chunks", len(chunks)))
	}
	return chunks, nil
}

// Cleanup removes the temp directory holding the chunk files.
func (s *Segmenter) Cleanup(chunks []entities.AudioChunk) {
	if len(chunks) == 0 || chunks[0].Path == "" {
		return
	}
	if err := os.RemoveAll(filepath.Dir(chunks[0].Path)); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove chunk dir", zap.Error(err))
	}
}

func (s *Segmenter) probeDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	// ffmpeg without an output file exits non-zero but still prints the
	// stream info we need, so the command error alone is not decisive.
	output, err := s.runner.CombinedOutput(ctx, s.ffmpegPath, "-hide_banner", "-i", audioPath)
	duration, parseErr := parseDurationFromFFmpegOutput(string(output))
	if parseErr != nil {
		if err != nil {
			return 0, fmt.Errorf("probe %s: %w", audioPath, err)
		}
		return 0, parseErr
	}
	return duration, nil
}

func (s *Segmenter) extractChunk(ctx context.Context, audioPath, chunkPath string, offsetSeconds int) error {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", audioPath,
		"-ss", strconv.Itoa(offsetSeconds),
		"-t", strconv.Itoa(s.segmentSeconds),
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		chunkPath,
	}
	if output, err := s.runner.CombinedOutput(ctx, s.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, output)
	}
	return nil
}

// planChunkOffsets returns the start offset of every chunk needed to cover
// totalSeconds: 0, segmentSeconds, 2*segmentSeconds, ... so the count is
// ceil(totalSeconds/segmentSeconds).
func planChunkOffsets(totalSeconds, segmentSeconds int) []int {
	count := (totalSeconds + segmentSeconds - 1) / segmentSeconds
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = i * segmentSeconds
	}
	return offsets
}

func parseDurationFromFFmpegOutput(output string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("no duration found in ffmpeg output")
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	centis, _ := strconv.Atoi(m[4])

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centis)*10*time.Millisecond
	return d, nil
}
