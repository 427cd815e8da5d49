package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/internal/domain/repositories"
)

// ContentResultRepository is the gorm implementation of the result store.
type ContentResultRepository struct {
	db *gorm.DB
}

// NewContentResultRepository creates a new content result repository
func NewContentResultRepository(db *gorm.DB) repositories.ContentResultRepository {
	return &ContentResultRepository{db: db}
}

// SaveResult persists a pipeline result
func (r *ContentResultRepository) SaveResult(ctx context.Context, result *entities.EpisodeContentResult) error {
	if result == nil {
		return errors.New("result cannot be nil")
	}
	return r.db.WithContext(ctx).Create(result).Error
}

// GetResultByID retrieves a result by ID
func (r *ContentResultRepository) GetResultByID(ctx context.Context, id uuid.UUID) (*entities.EpisodeContentResult, error) {
	var result entities.EpisodeContentResult
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// GetLatestResultByEpisodeID retrieves the most recent result for an episode
func (r *ContentResultRepository) GetLatestResultByEpisodeID(ctx context.Context, episodeID uuid.UUID) (*entities.EpisodeContentResult, error) {
	var result entities.EpisodeContentResult
	if err := r.db.WithContext(ctx).
		Where("episode_id = ?", episodeID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// ListResultsByEpisodeID retrieves all results for an episode, newest first
func (r *ContentResultRepository) ListResultsByEpisodeID(ctx context.Context, episodeID uuid.UUID) ([]entities.EpisodeContentResult, error) {
	var results []entities.EpisodeContentResult
	if err := r.db.WithContext(ctx).
		Where("episode_id = ?", episodeID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
