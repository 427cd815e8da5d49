package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptWord is a single word with time and speaker info.
// The word sequence is the ground truth every generated claim is checked against;
// it is never mutated after ingestion.
type TranscriptWord struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Speaker    string  `json:"speaker,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Utterance is a contiguous single-speaker turn.
type Utterance struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Transcript is the stored transcript model for one episode.
type Transcript struct {
	ID             uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EpisodeID      uuid.UUID                                  `json:"episode_id" gorm:"type:uuid;not null;index"`
	Text           string                                     `json:"text" gorm:"type:text"`
	Language       string                                     `json:"language,omitempty" gorm:"type:varchar(20)"`
	Words          []TranscriptWord                           `json:"words,omitempty" gorm:"type:jsonb;serializer:json"`
	Utterances     []Utterance                                `json:"utterances,omitempty" gorm:"type:jsonb;serializer:json"`
	HasSpeakers    bool                                       `json:"has_speakers" gorm:"default:false"`
	SpeakerCount   int                                        `json:"speaker_count,omitempty"`
	DurationSec    float64                                    `json:"duration_sec,omitempty"`
	ModelUsed      string                                     `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	ProcessingTime int                                        `json:"processing_time,omitempty"` // in seconds
	RawData        datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt      time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates a new transcript for an episode
func NewTranscript(episodeID uuid.UUID) *Transcript {
	return &Transcript{
		ID:        uuid.New(),
		EpisodeID: episodeID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Normalize sorts words by start time, fills utterances from speaker turns when
// missing, and recomputes duration and speaker count. Words arriving from the
// transcription provider are usually ordered already; sorting keeps the
// non-decreasing start invariant regardless of provider quirks.
func (t *Transcript) Normalize() {
	sort.SliceStable(t.Words, func(i, j int) bool {
		return t.Words[i].Start < t.Words[j].Start
	})

	if len(t.Words) > 0 {
		t.DurationSec = t.Words[len(t.Words)-1].End
	}

	speakers := make(map[string]struct{})
	for _, w := range t.Words {
		if w.Speaker != "" {
			speakers[w.Speaker] = struct{}{}
		}
	}
	t.SpeakerCount = len(speakers)
	t.HasSpeakers = t.SpeakerCount > 0

	if len(t.Utterances) == 0 {
		t.Utterances = GroupWordsBySpeaker(t.Words)
	}
}

// GroupWordsBySpeaker folds the word sequence into speaker turns.
func GroupWordsBySpeaker(words []TranscriptWord) []Utterance {
	utterances := make([]Utterance, 0)
	for _, w := range words {
		n := len(utterances)
		if n == 0 || utterances[n-1].Speaker != w.Speaker {
			utterances = append(utterances, Utterance{
				Speaker: w.Speaker,
				Text:    w.Text,
				Start:   w.Start,
				End:     w.End,
			})
			continue
		}
		utterances[n-1].Text += " " + w.Text
		utterances[n-1].End = w.End
	}
	return utterances
}

// FormattedText renders the human-readable transcript with inline timestamp
// markers ("[HH:MM:SS] speaker: text"), the form consumed by generator prompts.
func (t *Transcript) FormattedText() string {
	if len(t.Utterances) == 0 {
		return t.Text
	}
	var b strings.Builder
	for _, u := range t.Utterances {
		speaker := u.Speaker
		if speaker == "" {
			speaker = "speaker_unknown"
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", FormatTimecode(u.Start), speaker, u.Text)
	}
	return b.String()
}
