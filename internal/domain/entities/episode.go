package entities

import (
	"time"

	"github.com/google/uuid"
)

// EpisodeStatus tracks an episode through the post-production workflow.
type EpisodeStatus string

const (
	EpisodeStatusCreated      EpisodeStatus = "created"
	EpisodeStatusTranscribing EpisodeStatus = "transcribing"
	EpisodeStatusGenerating   EpisodeStatus = "generating"
	EpisodeStatusCompleted    EpisodeStatus = "completed"
	EpisodeStatusFailed       EpisodeStatus = "failed"
)

// Episode is one podcast episode submitted for post-production. The metadata
// fields are contextual hints passed through to generator prompts; the core
// never validates them.
type Episode struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Show          string        `json:"show" gorm:"type:varchar(255)"`
	Host          string        `json:"host,omitempty" gorm:"type:varchar(255)"`
	Guest         string        `json:"guest,omitempty" gorm:"type:varchar(255)"`
	EpisodeNumber int           `json:"episode_number,omitempty"`
	Title         string        `json:"title,omitempty" gorm:"type:varchar(500)"`
	Language      string        `json:"language" gorm:"type:varchar(20);default:'en'"`
	RecordingURL  string        `json:"recording_url" gorm:"type:text;not null"`
	Status        EpisodeStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'created'"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Episode) TableName() string {
	return "episodes"
}

// NewEpisode creates an episode in the created state.
func NewEpisode(show, recordingURL, language string) *Episode {
	if language == "" {
		language = "en"
	}
	return &Episode{
		ID:           uuid.New(),
		Show:         show,
		Language:     language,
		RecordingURL: recordingURL,
		Status:       EpisodeStatusCreated,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// EpisodeInfo is the prompt-context view of the episode metadata.
type EpisodeInfo struct {
	Show          string `json:"show,omitempty"`
	Host          string `json:"host,omitempty"`
	Guest         string `json:"guest,omitempty"`
	EpisodeNumber int    `json:"episode_number,omitempty"`
	Language      string `json:"language,omitempty"`
}

// Info extracts the prompt-context metadata.
func (e *Episode) Info() EpisodeInfo {
	return EpisodeInfo{
		Show:          e.Show,
		Host:          e.Host,
		Guest:         e.Guest,
		EpisodeNumber: e.EpisodeNumber,
		Language:      e.Language,
	}
}
