package transcription

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/Ketengan-Diffusion/Gemini-Transcriber/errors"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/adapter/repository"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

// Segmenter cuts source audio into ordered chunks.
type Segmenter interface {
	Split(ctx context.Context, audioPath string) ([]entities.AudioChunk, error)
	Cleanup(chunks []entities.AudioChunk)
}

// ChunkTranscriber turns one audio chunk into raw timestamped text.
type ChunkTranscriber interface {
	TranscribeChunk(ctx context.Context, chunk entities.AudioChunk) (string, error)
}

// ResultCache stores completed job outputs keyed by source content hash.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, expiration time.Duration)
}

// ArtifactStore mirrors output files to object storage.
type ArtifactStore interface {
	UploadText(ctx context.Context, objectName, content string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// OutputWriter persists output files locally.
type OutputWriter interface {
	WriteTranscript(stamp, content string) (string, error)
	WriteSubtitles(stamp, content string) (string, error)
	ReadFile(name string) (string, error)
}

// Request describes one transcription run.
type Request struct {
	AudioPath  string
	SourceName string
}

// Result is the outcome of one transcription run.
type Result struct {
	JobID          uuid.UUID                `json:"job_id"`
	Transcript     string                   `json:"transcript"`
	Entries        []entities.SubtitleEntry `json:"entries"`
	TranscriptFile string                   `json:"transcript_file"`
	SubtitleFile   string                   `json:"subtitle_file"`
	TranscriptURL  string                   `json:"transcript_url,omitempty"`
	SubtitleURL    string                   `json:"subtitle_url,omitempty"`
	ChunkCount     int                      `json:"chunk_count"`
	Diagnostics    []entities.Diagnostic    `json:"diagnostics,omitempty"`
	Cached         bool                     `json:"cached"`
}

// Service runs the transcription pipeline end to end.
type Service interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	segmenter   Segmenter
	transcriber ChunkTranscriber
	outputs     OutputWriter
	artifacts   ArtifactStore
	cache       ResultCache
	jobs        *repository.TranscriptionJobRepository
	cacheTTL    time.Duration
	workers     int
	logger      *zap.Logger
}

// Options carries the optional collaborators of the service. Any nil field
// simply disables that feature.
type Options struct {
	Artifacts ArtifactStore
	Cache     ResultCache
	Jobs      *repository.TranscriptionJobRepository
	CacheTTL  time.Duration
}

// NewService wires the pipeline. workers bounds concurrent chunk
// transcriptions and must be at least 1.
func NewService(segmenter Segmenter, transcriber ChunkTranscriber, outputs OutputWriter, workers int, logger *zap.Logger, opts Options) Service {
	if workers < 1 {
		workers = 1
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	return &service{
		segmenter:   segmenter,
		transcriber: transcriber,
		outputs:     outputs,
		artifacts:   opts.Artifacts,
		cache:       opts.Cache,
		jobs:        opts.Jobs,
		cacheTTL:    cacheTTL,
		workers:     workers,
		logger:      logger,
	}
}

// cachedOutputs is the JSON value stored in the result cache.
type cachedOutputs struct {
	TranscriptFile string `json:"transcript_file"`
	SubtitleFile   string `json:"subtitle_file"`
	ChunkCount     int    `json:"chunk_count"`
	EntryCount     int    `json:"entry_count"`
}

// Transcribe runs segmentation, per-chunk transcription, parsing, filtering,
// timeline normalization and output rendering for one audio file. Chunk and
// line failures are absorbed as diagnostics; only undecodable input or an
// output write failure abort the job.
func (s *service) Transcribe(ctx context.Context, req Request) (*Result, error) {
	job := entities.NewTranscriptionJob(req.SourceName)

	if cached := s.lookupCache(ctx, req.AudioPath, job.ID); cached != nil {
		return cached, nil
	}

	if s.jobs != nil {
		if err := s.jobs.CreateJob(ctx, job); err != nil {
			s.logWarn("failed to persist job", job.ID, err)
		} else if err := s.jobs.MarkJobAsProcessing(ctx, job.ID); err != nil {
			s.logWarn("failed to mark job processing", job.ID, err)
		}
	}

	chunks, err := s.segmenter.Split(ctx, req.AudioPath)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return nil, apperrors.ErrAudioDecodeFailed(req.SourceName, err)
	}
	defer s.segmenter.Cleanup(chunks)

	texts, diagnostics, err := s.transcribeChunks(ctx, chunks)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return nil, apperrors.ErrProcessingFailed(err)
	}

	// The plain transcript keeps every raw chunk response; only the SRT
	// timeline is filtered and normalized.
	var rawParts []string
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			rawParts = append(rawParts, text)
		}
	}
	transcript := strings.Join(rawParts, "\n")

	entries, lineDiags := s.normalize(texts)
	diagnostics = append(diagnostics, lineDiags...)

	result := &Result{
		JobID:       job.ID,
		Transcript:  transcript,
		Entries:     entries,
		ChunkCount:  len(chunks),
		Diagnostics: diagnostics,
	}

	stamp := time.Now().Format("20060102_150405")
	txtFile, err := s.outputs.WriteTranscript(stamp, transcript)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return nil, apperrors.ErrOutputWriteFailed(stamp+".txt", err)
	}
	srtFile, err := s.outputs.WriteSubtitles(stamp, FormatSRT(entries))
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return nil, apperrors.ErrOutputWriteFailed(stamp+".srt", err)
	}
	result.TranscriptFile = txtFile
	result.SubtitleFile = srtFile

	result.Diagnostics = append(result.Diagnostics, s.mirrorArtifacts(ctx, result, transcript, FormatSRT(entries))...)

	s.storeCache(ctx, req.AudioPath, result)
	s.completeJob(ctx, job, result)

	if s.logger != nil {
		s.logger.Info("transcription completed",
			zap.String("job_id", job.ID.String()),
			zap.Int("chunks", result.ChunkCount),
			zap.Int("entries", len(entries)),
			zap.Int("diagnostics", len(result.Diagnostics)))
	}
	return result, nil
}

// transcribeChunks runs the worker pool. The results slice preserves chunk
// order regardless of completion order. A chunk failure contributes an empty
// text and a diagnostic; only context cancellation aborts the pool.
func (s *service) transcribeChunks(ctx context.Context, chunks []entities.AudioChunk) ([]string, []entities.Diagnostic, error) {
	texts := make([]string, len(chunks))
	var mu sync.Mutex
	var diagnostics []entities.Diagnostic

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			text, err := s.transcriber.TranscribeChunk(gctx, chunk)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				diagnostics = append(diagnostics, entities.Diagnostic{
					Stage:      entities.DiagnosticStageChunk,
					ChunkIndex: chunk.Index,
					Detail:     err.Error(),
				})
				mu.Unlock()
				if s.logger != nil {
					s.logger.Warn("chunk transcription failed",
						zap.Int("chunk", chunk.Index),
						zap.Error(err))
				}
				return nil
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return texts, diagnostics, nil
}

// normalize parses every chunk's text in sequence and feeds the lines
// through one pass-scoped Normalizer. A panic while handling a line skips
// that line only.
func (s *service) normalize(texts []string) ([]entities.SubtitleEntry, []entities.Diagnostic) {
	normalizer := NewNormalizer()
	var diagnostics []entities.Diagnostic

	for chunkIndex, text := range texts {
		for _, line := range ParseLines(text) {
			if err := pushSafely(normalizer, line); err != nil {
				diagnostics = append(diagnostics, entities.Diagnostic{
					Stage:      entities.DiagnosticStageLine,
					ChunkIndex: chunkIndex,
					Detail:     err.Error(),
				})
			}
		}
	}
	return normalizer.Entries(), diagnostics
}

func pushSafely(n *Normalizer, line entities.RawLine) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("line %q: %v", line.Text, r)
		}
	}()
	n.Push(line)
	return nil
}

// mirrorArtifacts uploads the outputs to object storage when configured.
// Failures degrade to diagnostics; local files are already on disk.
func (s *service) mirrorArtifacts(ctx context.Context, result *Result, transcript, srt string) []entities.Diagnostic {
	if s.artifacts == nil {
		return nil
	}

	var diagnostics []entities.Diagnostic
	upload := func(name, content string) string {
		if err := s.artifacts.UploadText(ctx, name, content); err != nil {
			diagnostics = append(diagnostics, entities.Diagnostic{
				Stage:  entities.DiagnosticStageStorage,
				Detail: fmt.Sprintf("upload %s: %v", name, err),
			})
			return ""
		}
		url, err := s.artifacts.GetFileURL(ctx, name, 24*time.Hour)
		if err != nil {
			diagnostics = append(diagnostics, entities.Diagnostic{
				Stage:  entities.DiagnosticStageStorage,
				Detail: fmt.Sprintf("presign %s: %v", name, err),
			})
			return ""
		}
		return url
	}

	result.TranscriptURL = upload(result.TranscriptFile, transcript)
	result.SubtitleURL = upload(result.SubtitleFile, srt)
	return diagnostics
}

func (s *service) lookupCache(ctx context.Context, audioPath string, jobID uuid.UUID) *Result {
	if s.cache == nil {
		return nil
	}
	key, err := hashFile(audioPath)
	if err != nil {
		return nil
	}

	value, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil
	}
	var cached cachedOutputs
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		return nil
	}
	transcript, err := s.outputs.ReadFile(cached.TranscriptFile)
	if err != nil {
		// Outputs were cleaned up since caching; treat as a miss.
		return nil
	}

	if s.logger != nil {
		s.logger.Info("returning cached transcription",
			zap.String("job_id", jobID.String()),
			zap.String("transcript_file", cached.TranscriptFile))
	}
	return &Result{
		JobID:          jobID,
		Transcript:     transcript,
		TranscriptFile: cached.TranscriptFile,
		SubtitleFile:   cached.SubtitleFile,
		ChunkCount:     cached.ChunkCount,
		Cached:         true,
	}
}

func (s *service) storeCache(ctx context.Context, audioPath string, result *Result) {
	if s.cache == nil {
		return
	}
	key, err := hashFile(audioPath)
	if err != nil {
		return
	}
	value, err := json.Marshal(cachedOutputs{
		TranscriptFile: result.TranscriptFile,
		SubtitleFile:   result.SubtitleFile,
		ChunkCount:     result.ChunkCount,
		EntryCount:     len(result.Entries),
	})
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, string(value), s.cacheTTL)
}

func (s *service) completeJob(ctx context.Context, job *entities.TranscriptionJob, result *Result) {
	if s.jobs == nil {
		return
	}
	job.MarkAsCompleted(result.TranscriptFile, result.SubtitleFile, result.ChunkCount, len(result.Entries))
	if err := job.SetDiagnostics(result.Diagnostics); err != nil {
		s.logWarn("failed to encode diagnostics", job.ID, err)
	}
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		s.logWarn("failed to update job", job.ID, err)
	}
}

func (s *service) failJob(ctx context.Context, jobID uuid.UUID, cause error) {
	if s.jobs == nil {
		return
	}
	if err := s.jobs.MarkJobAsFailed(ctx, jobID, cause.Error()); err != nil {
		s.logWarn("failed to mark job failed", jobID, err)
	}
}

func (s *service) logWarn(msg string, jobID uuid.UUID, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("job_id", jobID.String()), zap.Error(err))
	}
}

// hashFile returns the hex SHA-256 of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
