package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// ContentResultRepository defines persistence operations for pipeline results.
type ContentResultRepository interface {
	SaveResult(ctx context.Context, result *entities.EpisodeContentResult) error
	GetResultByID(ctx context.Context, id uuid.UUID) (*entities.EpisodeContentResult, error)
	GetLatestResultByEpisodeID(ctx context.Context, episodeID uuid.UUID) (*entities.EpisodeContentResult, error)
	ListResultsByEpisodeID(ctx context.Context, episodeID uuid.UUID) ([]entities.EpisodeContentResult, error)
}
