package entities

// RawLine is a single timestamped line as parsed from a model response,
// before filtering and timeline normalization.
type RawLine struct {
	Timestamp int // seconds from the start of the source audio
	Text      string
}

// SubtitleEntry is one normalized subtitle cue. Index is 1-based and dense,
// StartSeconds/EndSeconds are absolute positions in the source audio.
type SubtitleEntry struct {
	Index        int    `json:"index"`
	StartSeconds int    `json:"start_seconds"`
	EndSeconds   int    `json:"end_seconds"`
	Text         string `json:"text"`
}

// DiagnosticStage identifies which pipeline stage produced a diagnostic.
type DiagnosticStage string

const (
	DiagnosticStageChunk   DiagnosticStage = "chunk"
	DiagnosticStageLine    DiagnosticStage = "line"
	DiagnosticStageStorage DiagnosticStage = "storage"
	DiagnosticStageCache   DiagnosticStage = "cache"
)

// Diagnostic records a non-fatal failure absorbed during a transcription job.
type Diagnostic struct {
	Stage      DiagnosticStage `json:"stage"`
	ChunkIndex int             `json:"chunk_index"`
	Detail     string          `json:"detail"`
}
