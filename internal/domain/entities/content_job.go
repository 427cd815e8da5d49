package entities

import (
	"time"

	"github.com/google/uuid"
)

// ContentJobStatus represents the status of a post-production job
type ContentJobStatus string

const (
	ContentJobStatusPending     ContentJobStatus = "pending"     // Waiting to be submitted for transcription
	ContentJobStatusSubmitted   ContentJobStatus = "submitted"   // Submitted to the transcription provider, waiting for transcript
	ContentJobStatusTranscribed ContentJobStatus = "transcribed" // Transcript stored, waiting for a pipeline worker
	ContentJobStatusGenerating  ContentJobStatus = "generating"  // Pipeline generating and verifying content
	ContentJobStatusCompleted   ContentJobStatus = "completed"   // All processing done
	ContentJobStatusFailed      ContentJobStatus = "failed"      // Processing failed
	ContentJobStatusRetrying    ContentJobStatus = "retrying"    // Retrying after failure
	ContentJobStatusCancelled   ContentJobStatus = "cancelled"   // Job was cancelled
)

// ContentJobType represents the type of job
type ContentJobType string

const (
	ContentJobTypeTranscription ContentJobType = "transcription" // Speech to text
	ContentJobTypeGeneration    ContentJobType = "generation"    // Content generation + verification
)

// ContentJob represents one processing job for an episode
type ContentJob struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EpisodeID     uuid.UUID        `json:"episode_id" gorm:"type:uuid;not null;index"`
	JobType       ContentJobType   `json:"job_type" gorm:"type:varchar(50);not null;index"`
	Status        ContentJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	ExternalJobID *string          `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"` // transcription provider transcript ID (nullable)
	RecordingURL  string           `json:"recording_url" gorm:"type:text;not null"`
	TranscriptID  *uuid.UUID       `json:"transcript_id,omitempty" gorm:"type:uuid;index"`
	ResultID      *uuid.UUID       `json:"result_id,omitempty" gorm:"type:uuid;index"`

	// Processing details
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	// Metadata
	Metadata ContentJobMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ContentJobMetadata stores additional metadata for jobs
type ContentJobMetadata struct {
	DurationSeconds      int     `json:"duration_seconds,omitempty"`
	Language             string  `json:"language,omitempty"`
	SpeakerCount         int     `json:"speaker_count,omitempty"`
	ProcessingTimeMs     int64   `json:"processing_time_ms,omitempty"`
	ReflectionIterations int     `json:"reflection_iterations,omitempty"`
	FinalConfidence      float64 `json:"final_confidence,omitempty"`
	Verified             bool    `json:"verified,omitempty"`
	ArtifactPath         string  `json:"artifact_path,omitempty"`
}

// NewContentJob creates a new job for an episode
func NewContentJob(episodeID uuid.UUID, jobType ContentJobType, recordingURL string) *ContentJob {
	return &ContentJob{
		ID:           uuid.New(),
		EpisodeID:    episodeID,
		JobType:      jobType,
		Status:       ContentJobStatusPending,
		RecordingURL: recordingURL,
		RetryCount:   0,
		MaxRetries:   3,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// IsRetryable checks if job can be retried
func (j *ContentJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries && j.Status == ContentJobStatusFailed
}

// CanBeSubmitted checks if job is ready to be submitted
func (j *ContentJob) CanBeSubmitted() bool {
	return j.Status == ContentJobStatusPending || (j.Status == ContentJobStatusFailed && j.IsRetryable())
}

// MarkAsSubmitted marks job as submitted to the transcription provider
func (j *ContentJob) MarkAsSubmitted(externalJobID string) {
	j.Status = ContentJobStatusSubmitted
	j.ExternalJobID = &externalJobID
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsTranscribed records the stored transcript and queues the job for a
// pipeline worker
func (j *ContentJob) MarkAsTranscribed(transcriptID uuid.UUID) {
	j.Status = ContentJobStatusTranscribed
	j.TranscriptID = &transcriptID
	j.UpdatedAt = time.Now()
}

// MarkAsGenerating marks job as running the content pipeline
func (j *ContentJob) MarkAsGenerating() {
	j.Status = ContentJobStatusGenerating
	j.UpdatedAt = time.Now()
}

// MarkAsCompleted marks job as completed successfully
func (j *ContentJob) MarkAsCompleted(resultID *uuid.UUID) {
	j.Status = ContentJobStatusCompleted
	j.ResultID = resultID
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks job as failed with error message
func (j *ContentJob) MarkAsFailed(errMsg string) {
	j.Status = ContentJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// IncrementRetry increments retry count and marks for retry
func (j *ContentJob) IncrementRetry(errMsg string) {
	j.RetryCount++
	j.Status = ContentJobStatusRetrying
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// MarkAsCancelled marks job as cancelled
func (j *ContentJob) MarkAsCancelled() {
	j.Status = ContentJobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (ContentJob) TableName() string {
	return "content_jobs"
}
