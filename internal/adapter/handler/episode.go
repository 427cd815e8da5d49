package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/podflow-team/podflow/errors"
	episodedto "github.com/podflow-team/podflow/internal/adapter/dto/episode"
	"github.com/podflow-team/podflow/internal/adapter/presenter"
	"github.com/podflow-team/podflow/internal/domain/entities"
	episodeuse "github.com/podflow-team/podflow/internal/usecase/episode"
)

// EpisodeHandler handles episode submission and content retrieval endpoints
type EpisodeHandler struct {
	svc    episodeuse.Service
	logger *zap.Logger
}

// NewEpisodeHandler creates a new episode handler
func NewEpisodeHandler(svc episodeuse.Service, logger *zap.Logger) *EpisodeHandler {
	return &EpisodeHandler{svc: svc, logger: logger}
}

// CreateEpisode accepts an episode recording for post-production processing.
// Transcription and content generation continue asynchronously; poll the
// result endpoint for progress.
func (h *EpisodeHandler) CreateEpisode(c echo.Context) error {
	var req episodedto.CreateEpisodeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ep := entities.NewEpisode(req.Show, req.RecordingURL, req.Language)
	ep.Host = req.Host
	ep.Guest = req.Guest
	ep.EpisodeNumber = req.EpisodeNumber
	ep.Title = req.Title

	job, err := h.svc.SubmitEpisode(c.Request().Context(), ep)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to submit episode", zap.Error(err))
		}
		// The episode and job may still exist in a failed state; submission
		// errors here mean the transcription provider rejected the recording.
		if job == nil {
			return HandleError(h.logger, c, errors.ErrEpisodeCreationFailed(err))
		}
		return HandleError(h.logger, c, errors.ErrTranscriptionFailed(err))
	}

	return HandleAccepted(h.logger, c, episodedto.SubmitEpisodeResponse{
		Episode: presenter.ToEpisodeResponse(ep),
		Job:     presenter.ToContentJobResponse(job),
	})
}

// GetEpisode returns a single episode
func (h *EpisodeHandler) GetEpisode(c echo.Context) error {
	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid episode ID"))
	}

	ep, err := h.svc.GetEpisode(c.Request().Context(), episodeID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if ep == nil {
		return HandleError(h.logger, c, errors.ErrEpisodeNotFound(episodeID.String()))
	}

	return HandleSuccess(h.logger, c, presenter.ToEpisodeResponse(ep))
}

// ListEpisodes returns episodes, newest first
func (h *EpisodeHandler) ListEpisodes(c echo.Context) error {
	var req episodedto.ListEpisodesRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	episodes, err := h.svc.ListEpisodes(c.Request().Context(), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToEpisodeListResponse(episodes))
}

// ListJobs returns the processing jobs for an episode
func (h *EpisodeHandler) ListJobs(c echo.Context) error {
	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid episode ID"))
	}

	jobs, err := h.svc.ListJobs(c.Request().Context(), episodeID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToContentJobListResponse(jobs))
}

// GetResult returns the latest generated content for an episode
func (h *EpisodeHandler) GetResult(c echo.Context) error {
	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid episode ID"))
	}

	result, err := h.svc.GetResult(c.Request().Context(), episodeID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if result == nil {
		return HandleError(h.logger, c, errors.ErrResultNotFound(episodeID.String()))
	}

	return HandleSuccess(h.logger, c, presenter.ToContentResultResponse(result))
}
