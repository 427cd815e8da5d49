package episode

import "time"

// EpisodeResponse represents an episode in API responses
type EpisodeResponse struct {
	ID            string    `json:"id"`
	Show          string    `json:"show"`
	Host          string    `json:"host,omitempty"`
	Guest         string    `json:"guest,omitempty"`
	EpisodeNumber int       `json:"episode_number,omitempty"`
	Title         string    `json:"title,omitempty"`
	Language      string    `json:"language"`
	RecordingURL  string    `json:"recording_url"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ContentJobResponse represents a processing job in API responses
type ContentJobResponse struct {
	ID            string     `json:"id"`
	EpisodeID     string     `json:"episode_id"`
	JobType       string     `json:"job_type"`
	Status        string     `json:"status"`
	ExternalJobID string     `json:"external_job_id,omitempty"`
	RetryCount    int        `json:"retry_count"`
	LastError     string     `json:"last_error,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SubmitEpisodeResponse is returned after an episode is accepted for
// processing
type SubmitEpisodeResponse struct {
	Episode *EpisodeResponse    `json:"episode"`
	Job     *ContentJobResponse `json:"job"`
}

// QuotableMomentResponse is one verified quote in the result payload
type QuotableMomentResponse struct {
	Quote            string  `json:"quote"`
	Timestamp        string  `json:"timestamp"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Context          string  `json:"context,omitempty"`
	Speaker          string  `json:"speaker,omitempty"`
	LowConfidence    bool    `json:"low_confidence,omitempty"`
}

// ReelSuggestionResponse is one clip suggestion in the result payload
type ReelSuggestionResponse struct {
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	StartSeconds        float64 `json:"start_seconds"`
	EndSeconds          float64 `json:"end_seconds"`
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	Hook                string  `json:"hook,omitempty"`
	Closing             string  `json:"closing,omitempty"`
	EditingInstructions string  `json:"editing_instructions,omitempty"`
	LowConfidence       bool    `json:"low_confidence,omitempty"`
}

// ChapterResponse is one chapter line in the result payload. Line is the
// ready-to-paste platform format.
type ChapterResponse struct {
	Timestamp        string  `json:"timestamp"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Title            string  `json:"title"`
	Line             string  `json:"line"`
	LowConfidence    bool    `json:"low_confidence,omitempty"`
}

// VerificationResponse describes how trustworthy the result is
type VerificationResponse struct {
	Iterations       int      `json:"iterations"`
	Confidence       float64  `json:"confidence"`
	Verified         bool     `json:"verified"`
	UnresolvedErrors int      `json:"unresolved_errors,omitempty"`
	DroppedClaims    int      `json:"dropped_claims,omitempty"`
	GenerationErrors []string `json:"generation_errors,omitempty"`
}

// ContentResultResponse is the full generated content for an episode
type ContentResultResponse struct {
	ID                string                   `json:"id"`
	EpisodeID         string                   `json:"episode_id"`
	JobID             string                   `json:"job_id"`
	QuotableMoments   []QuotableMomentResponse `json:"quotable_moments"`
	ReelSuggestions   []ReelSuggestionResponse `json:"reel_suggestions"`
	ChapterTimestamps []ChapterResponse        `json:"chapter_timestamps"`
	ContentWarnings   []string                 `json:"content_warnings"`
	Verification      VerificationResponse     `json:"verification"`
	Language          string                   `json:"language,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}
