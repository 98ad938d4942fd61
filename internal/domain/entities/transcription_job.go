package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptionJobStatus represents the status of a transcription job
type TranscriptionJobStatus string

const (
	TranscriptionJobStatusPending    TranscriptionJobStatus = "pending"    // Created, pipeline not started yet
	TranscriptionJobStatusProcessing TranscriptionJobStatus = "processing" // Pipeline running
	TranscriptionJobStatusCompleted  TranscriptionJobStatus = "completed"  // Outputs written
	TranscriptionJobStatusFailed     TranscriptionJobStatus = "failed"     // Fatal pipeline error
)

// TranscriptionJob represents one transcription pipeline run
type TranscriptionJob struct {
	ID         uuid.UUID              `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SourceName string                 `json:"source_name" gorm:"type:varchar(512);not null"`
	Status     TranscriptionJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`

	// Pipeline results
	ChunkCount     int     `json:"chunk_count" gorm:"type:integer;default:0"`
	EntryCount     int     `json:"entry_count" gorm:"type:integer;default:0"`
	TranscriptFile *string `json:"transcript_file,omitempty" gorm:"type:varchar(512)"`
	SubtitleFile   *string `json:"subtitle_file,omitempty" gorm:"type:varchar(512)"`

	// Non-fatal failures absorbed during the run
	Diagnostics datatypes.JSON `json:"diagnostics,omitempty" gorm:"type:jsonb"`

	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTranscriptionJob creates a new pending transcription job
func NewTranscriptionJob(sourceName string) *TranscriptionJob {
	return &TranscriptionJob{
		ID:         uuid.New(),
		SourceName: sourceName,
		Status:     TranscriptionJobStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// MarkAsProcessing marks the job as running
func (j *TranscriptionJob) MarkAsProcessing() {
	j.Status = TranscriptionJobStatusProcessing
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted marks the job as completed with its output files
func (j *TranscriptionJob) MarkAsCompleted(transcriptFile, subtitleFile string, chunkCount, entryCount int) {
	j.Status = TranscriptionJobStatusCompleted
	j.TranscriptFile = &transcriptFile
	j.SubtitleFile = &subtitleFile
	j.ChunkCount = chunkCount
	j.EntryCount = entryCount
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks the job as failed with error message
func (j *TranscriptionJob) MarkAsFailed(errMsg string) {
	j.Status = TranscriptionJobStatusFailed
	j.LastError = &errMsg
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// SetDiagnostics attaches the run's diagnostics as JSON
func (j *TranscriptionJob) SetDiagnostics(diags []Diagnostic) error {
	if len(diags) == 0 {
		j.Diagnostics = nil
		return nil
	}
	raw, err := json.Marshal(diags)
	if err != nil {
		return err
	}
	j.Diagnostics = datatypes.JSON(raw)
	return nil
}

// GetDiagnostics decodes the stored diagnostics
func (j *TranscriptionJob) GetDiagnostics() ([]Diagnostic, error) {
	if len(j.Diagnostics) == 0 {
		return nil, nil
	}
	var diags []Diagnostic
	if err := json.Unmarshal(j.Diagnostics, &diags); err != nil {
		return nil, err
	}
	return diags, nil
}

// TableName specifies the table name for GORM
func (TranscriptionJob) TableName() string {
	return "transcription_jobs"
}
