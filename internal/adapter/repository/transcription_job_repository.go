package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
)

// TranscriptionJobRepository handles transcription job persistence
type TranscriptionJobRepository struct {
	db *gorm.DB
}

// NewTranscriptionJobRepository creates a new transcription job repository
func NewTranscriptionJobRepository(db *gorm.DB) *TranscriptionJobRepository {
	return &TranscriptionJobRepository{db: db}
}

// CreateJob creates a new transcription job record
func (r *TranscriptionJobRepository) CreateJob(ctx context.Context, job *entities.TranscriptionJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves a transcription job by ID
func (r *TranscriptionJobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error) {
	var job entities.TranscriptionJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListRecentJobs retrieves the most recent transcription jobs
func (r *TranscriptionJobRepository) ListRecentJobs(ctx context.Context, limit int) ([]entities.TranscriptionJob, error) {
	var jobs []entities.TranscriptionJob
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob persists the full job state
func (r *TranscriptionJobRepository) UpdateJob(ctx context.Context, job *entities.TranscriptionJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", job.ID).
		Save(job).Error
}

// MarkJobAsProcessing marks a job as running
func (r *TranscriptionJobRepository) MarkJobAsProcessing(ctx context.Context, jobID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.TranscriptionJobStatusProcessing,
			"started_at": now,
			"updated_at": now,
		}).Error
}

// MarkJobAsFailed marks a job as failed with error message
func (r *TranscriptionJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.TranscriptionJobStatusFailed,
			"last_error":   errMsg,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}
