package transcription

// ListJobsRequest represents query parameters for listing transcription jobs
type ListJobsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// DownloadRequest represents the path parameter for downloading an output file
type DownloadRequest struct {
	Name string `param:"name" validate:"required,filename"`
}
