package presenter

import (
	"github.com/podflow-team/podflow/internal/adapter/dto/episode"
	"github.com/podflow-team/podflow/internal/domain/entities"
)

// ToEpisodeResponse converts an Episode entity to its response DTO
func ToEpisodeResponse(e *entities.Episode) *episode.EpisodeResponse {
	if e == nil {
		return nil
	}
	return &episode.EpisodeResponse{
		ID:            e.ID.String(),
		Show:          e.Show,
		Host:          e.Host,
		Guest:         e.Guest,
		EpisodeNumber: e.EpisodeNumber,
		Title:         e.Title,
		Language:      e.Language,
		RecordingURL:  e.RecordingURL,
		Status:        string(e.Status),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToEpisodeListResponse converts a slice of episodes
func ToEpisodeListResponse(episodes []entities.Episode) []*episode.EpisodeResponse {
	responses := make([]*episode.EpisodeResponse, 0, len(episodes))
	for i := range episodes {
		responses = append(responses, ToEpisodeResponse(&episodes[i]))
	}
	return responses
}

// ToContentJobResponse converts a ContentJob entity to its response DTO
func ToContentJobResponse(j *entities.ContentJob) *episode.ContentJobResponse {
	if j == nil {
		return nil
	}
	resp := &episode.ContentJobResponse{
		ID:          j.ID.String(),
		EpisodeID:   j.EpisodeID.String(),
		JobType:     string(j.JobType),
		Status:      string(j.Status),
		RetryCount:  j.RetryCount,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.ExternalJobID != nil {
		resp.ExternalJobID = *j.ExternalJobID
	}
	if j.LastError != nil {
		resp.LastError = *j.LastError
	}
	return resp
}

// ToContentJobListResponse converts a slice of jobs
func ToContentJobListResponse(jobs []entities.ContentJob) []*episode.ContentJobResponse {
	responses := make([]*episode.ContentJobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, ToContentJobResponse(&jobs[i]))
	}
	return responses
}

// ToContentResultResponse converts a pipeline result to its response DTO
func ToContentResultResponse(r *entities.EpisodeContentResult) *episode.ContentResultResponse {
	if r == nil {
		return nil
	}

	quotes := make([]episode.QuotableMomentResponse, 0, len(r.QuotableMoments))
	for _, q := range r.QuotableMoments {
		quotes = append(quotes, episode.QuotableMomentResponse{
			Quote:            q.Quote,
			Timestamp:        q.Timestamp,
			TimestampSeconds: q.TimestampSeconds,
			Context:          q.Context,
			Speaker:          q.Speaker,
			LowConfidence:    q.LowConfidence,
		})
	}

	reels := make([]episode.ReelSuggestionResponse, 0, len(r.ReelSuggestions))
	for _, reel := range r.ReelSuggestions {
		reels = append(reels, episode.ReelSuggestionResponse{
			StartTime:           reel.StartTime,
			EndTime:             reel.EndTime,
			StartSeconds:        reel.StartSeconds,
			EndSeconds:          reel.EndSeconds,
			Title:               reel.Title,
			Description:         reel.Description,
			Hook:                reel.Hook,
			Closing:             reel.Closing,
			EditingInstructions: reel.EditingInstructions,
			LowConfidence:       reel.LowConfidence,
		})
	}

	chapters := make([]episode.ChapterResponse, 0, len(r.ChapterTimestamps))
	for _, c := range r.ChapterTimestamps {
		chapters = append(chapters, episode.ChapterResponse{
			Timestamp:        c.Timestamp,
			TimestampSeconds: c.TimestampSeconds,
			Title:            c.Title,
			Line:             c.PlatformLine(),
			LowConfidence:    c.LowConfidence,
		})
	}

	warnings := r.ContentWarnings
	if warnings == nil {
		warnings = make([]string, 0)
	}

	return &episode.ContentResultResponse{
		ID:                r.ID.String(),
		EpisodeID:         r.EpisodeID.String(),
		JobID:             r.JobID.String(),
		QuotableMoments:   quotes,
		ReelSuggestions:   reels,
		ChapterTimestamps: chapters,
		ContentWarnings:   warnings,
		Verification: episode.VerificationResponse{
			Iterations:       r.Verification.Iterations,
			Confidence:       r.Verification.Confidence,
			Verified:         r.Verification.Verified,
			UnresolvedErrors: r.Verification.UnresolvedErrors,
			DroppedClaims:    r.Verification.DroppedClaims,
			GenerationErrors: r.Verification.GenerationErrors,
		},
		Language:  r.Language,
		CreatedAt: r.CreatedAt,
	}
}
