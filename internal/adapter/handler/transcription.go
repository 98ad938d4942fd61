package handler

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/errors"
	dto "github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/adapter/dto/transcription"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/adapter/repository"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/storage"
	usecase "github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/usecase/transcription"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/jobcontext"
)

// Transcription handles transcription API endpoints
type Transcription struct {
	svc        usecase.Service
	outputs    *storage.OutputWriter
	jobs       *repository.TranscriptionJobRepository
	jobTimeout time.Duration
	logger     *zap.Logger
}

// NewTranscription creates a transcription handler. jobs may be nil when
// job history is disabled.
func NewTranscription(svc usecase.Service, outputs *storage.OutputWriter, jobs *repository.TranscriptionJobRepository, jobTimeout time.Duration, logger *zap.Logger) *Transcription {
	if jobTimeout == 0 {
		jobTimeout = 30 * time.Minute
	}
	return &Transcription{
		svc:        svc,
		outputs:    outputs,
		jobs:       jobs,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Create godoc
// @Summary Transcribe an audio file
// @Description Uploads an audio file, runs the transcription pipeline and returns the transcript with subtitle outputs
// @Tags transcriptions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file"
// @Success 200 {object} dto.TranscriptionResponse
// @Failure 400 {object} errors.AppError
// @Failure 422 {object} errors.AppError
// @Router /v1/transcriptions [post]
func (h *Transcription) Create(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrMissingAudioFile())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	defer src.Close()

	// Spool the upload to disk so ffmpeg can seek in it.
	tempPath, err := spoolUpload(src, fileHeader.Filename)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer os.Remove(tempPath)

	jobID := uuid.New()
	ctx, cancel := jobcontext.JobBegin(c.Request().Context(), jobID, "transcription", h.jobTimeout)
	defer cancel()

	if h.logger != nil {
		h.logger.Info("transcription started",
			zap.String("job_id", jobID.String()),
			zap.String("source", fileHeader.Filename),
			zap.Int64("size", fileHeader.Size))
	}

	result, err := h.svc.Transcribe(ctx, usecase.Request{
		AudioPath:  tempPath,
		SourceName: fileHeader.Filename,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if h.logger != nil {
		h.logger.Info("transcription finished",
			zap.String("job_id", result.JobID.String()),
			zap.Duration("elapsed", jobcontext.Elapsed(ctx)))
	}
	return HandleSuccess(h.logger, c, dto.FromResult(result))
}

// Download godoc
// @Summary Download a transcription output file
// @Description Serves a previously generated .txt or .srt output file
// @Tags transcriptions
// @Produce octet-stream
// @Param name path string true "Output file name"
// @Success 200 {file} file
// @Failure 404 {object} errors.AppError
// @Router /v1/transcriptions/files/{name} [get]
func (h *Transcription) Download(c echo.Context) error {
	var req dto.DownloadRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid file name"))
	}

	path, err := h.outputs.Path(req.Name)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrNotFound("output file"))
	}
	return c.Attachment(path, filepath.Base(path))
}

// List godoc
// @Summary List recent transcription jobs
// @Description Returns recent transcription jobs from the job history store
// @Tags transcriptions
// @Produce json
// @Param limit query int false "Maximum number of jobs" default(50)
// @Success 200 {array} dto.JobResponse
// @Failure 503 {object} errors.AppError
// @Router /v1/transcriptions [get]
func (h *Transcription) List(c echo.Context) error {
	if h.jobs == nil {
		return HandleError(h.logger, c, errors.ErrJobHistoryUnavailable())
	}

	var req dto.ListJobsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid limit"))
	}

	jobs, err := h.jobs.ListRecentJobs(c.Request().Context(), req.Limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list recent jobs", err))
	}

	responses := make([]dto.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, dto.FromJob(job))
	}
	return HandleSuccess(h.logger, c, responses)
}

// spoolUpload copies an uploaded stream to a temp file, keeping the original
// extension so ffmpeg can sniff the container format.
func spoolUpload(src io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".bin"
	}
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
