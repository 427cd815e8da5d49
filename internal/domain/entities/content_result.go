package entities

import (
	"time"

	"github.com/google/uuid"
)

// QuotableMoment is a verified quote in the final result. Timestamps carry
// both the HH:MM:SS form for editors and raw seconds for programmatic use.
type QuotableMoment struct {
	Quote            string  `json:"quote"`
	Timestamp        string  `json:"timestamp"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Context          string  `json:"context,omitempty"`
	Speaker          string  `json:"speaker,omitempty"`
	LowConfidence    bool    `json:"low_confidence,omitempty"`
}

// ReelSuggestion is a clip suggestion for the downstream media cutter.
type ReelSuggestion struct {
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	StartSeconds        float64 `json:"start_seconds"`
	EndSeconds          float64 `json:"end_seconds"`
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	Hook                string  `json:"hook,omitempty"`
	Closing             string  `json:"closing,omitempty"`
	EditingInstructions string  `json:"editing_instructions,omitempty"`
	ConfidenceLevel     string  `json:"confidence_level,omitempty"`
	LowConfidence       bool    `json:"low_confidence,omitempty"`
}

// ChapterStamp is one chapter line in platform format.
type ChapterStamp struct {
	Timestamp        string  `json:"timestamp"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Title            string  `json:"title"`
	LowConfidence    bool    `json:"low_confidence,omitempty"`
}

// PlatformLine renders the chapter as a "HH:MM:SS Title" line (the YouTube
// and Spotify chapter format).
func (c ChapterStamp) PlatformLine() string {
	return c.Timestamp + " " + c.Title
}

// VerificationMetadata records how the result was produced. Downstream
// consumers use it to decide whether the result can be trusted without human
// review, so it is mandatory output rather than logging.
type VerificationMetadata struct {
	Iterations       int      `json:"iterations"`
	Confidence       float64  `json:"confidence"`
	Verified         bool     `json:"verified"`
	UnresolvedErrors int      `json:"unresolved_errors,omitempty"`
	DroppedClaims    int      `json:"dropped_claims,omitempty"`
	GenerationErrors []string `json:"generation_errors,omitempty"`
}

// EpisodeContentResult is the final assembled output of one pipeline run.
// Immutable once returned; the only pipeline artifact that is persisted.
type EpisodeContentResult struct {
	ID                uuid.UUID            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EpisodeID         uuid.UUID            `json:"episode_id" gorm:"type:uuid;not null;index"`
	JobID             uuid.UUID            `json:"job_id" gorm:"type:uuid;index"`
	QuotableMoments   []QuotableMoment     `json:"quotable_moments" gorm:"type:jsonb;serializer:json"`
	ReelSuggestions   []ReelSuggestion     `json:"reel_suggestions" gorm:"type:jsonb;serializer:json"`
	ChapterTimestamps []ChapterStamp       `json:"chapter_timestamps" gorm:"type:jsonb;serializer:json"`
	ContentWarnings   []string             `json:"content_warnings" gorm:"type:jsonb;serializer:json"`
	Verification      VerificationMetadata `json:"verification_metadata" gorm:"type:jsonb;serializer:json"`
	Language          string               `json:"language,omitempty" gorm:"type:varchar(20)"`
	CreatedAt         time.Time            `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (EpisodeContentResult) TableName() string {
	return "episode_content_results"
}

// NewEpisodeContentResult creates an empty result shell for a run.
func NewEpisodeContentResult(episodeID, jobID uuid.UUID) *EpisodeContentResult {
	return &EpisodeContentResult{
		ID:                uuid.New(),
		EpisodeID:         episodeID,
		JobID:             jobID,
		QuotableMoments:   make([]QuotableMoment, 0),
		ReelSuggestions:   make([]ReelSuggestion, 0),
		ChapterTimestamps: make([]ChapterStamp, 0),
		ContentWarnings:   make([]string, 0),
		CreatedAt:         time.Now(),
	}
}
