package transcription

import (
	"time"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/domain/entities"
	usecase "github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/usecase/transcription"
)

// TranscriptionResponse is the response body for a completed transcription
type TranscriptionResponse struct {
	JobID          string                   `json:"job_id"`
	Transcript     string                   `json:"transcript"`
	Entries        []entities.SubtitleEntry `json:"entries,omitempty"`
	EntryCount     int                      `json:"entry_count"`
	ChunkCount     int                      `json:"chunk_count"`
	TranscriptFile string                   `json:"transcript_file"`
	SubtitleFile   string                   `json:"subtitle_file"`
	TranscriptURL  string                   `json:"transcript_url,omitempty"`
	SubtitleURL    string                   `json:"subtitle_url,omitempty"`
	Diagnostics    []entities.Diagnostic    `json:"diagnostics,omitempty"`
	Cached         bool                     `json:"cached"`
}

// FromResult maps a pipeline result to the response shape
func FromResult(r *usecase.Result) TranscriptionResponse {
	return TranscriptionResponse{
		JobID:          r.JobID.String(),
		Transcript:     r.Transcript,
		Entries:        r.Entries,
		EntryCount:     len(r.Entries),
		ChunkCount:     r.ChunkCount,
		TranscriptFile: r.TranscriptFile,
		SubtitleFile:   r.SubtitleFile,
		TranscriptURL:  r.TranscriptURL,
		SubtitleURL:    r.SubtitleURL,
		Diagnostics:    r.Diagnostics,
		Cached:         r.Cached,
	}
}

// JobResponse is one entry in the job history listing
type JobResponse struct {
	ID             string     `json:"id"`
	SourceName     string     `json:"source_name"`
	Status         string     `json:"status"`
	ChunkCount     int        `json:"chunk_count"`
	EntryCount     int        `json:"entry_count"`
	TranscriptFile *string    `json:"transcript_file,omitempty"`
	SubtitleFile   *string    `json:"subtitle_file,omitempty"`
	LastError      *string    `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// FromJob maps a stored job to the listing shape
func FromJob(j entities.TranscriptionJob) JobResponse {
	return JobResponse{
		ID:             j.ID.String(),
		SourceName:     j.SourceName,
		Status:         string(j.Status),
		ChunkCount:     j.ChunkCount,
		EntryCount:     j.EntryCount,
		TranscriptFile: j.TranscriptFile,
		SubtitleFile:   j.SubtitleFile,
		LastError:      j.LastError,
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
	}
}
