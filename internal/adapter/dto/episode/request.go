package episode

// CreateEpisodeRequest represents the request to submit an episode for
// post-production. Metadata fields are optional prompt context.
type CreateEpisodeRequest struct {
	Show          string `json:"show" validate:"required,min=1,max=255"`
	Host          string `json:"host,omitempty" validate:"omitempty,max=255"`
	Guest         string `json:"guest,omitempty" validate:"omitempty,max=255"`
	EpisodeNumber int    `json:"episode_number,omitempty" validate:"omitempty,min=1"`
	Title         string `json:"title,omitempty" validate:"omitempty,max=500"`
	Language      string `json:"language,omitempty" validate:"omitempty,language_code"`
	RecordingURL  string `json:"recording_url" validate:"required,url"`
}

// ListEpisodesRequest represents query parameters for listing episodes
type ListEpisodesRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}
