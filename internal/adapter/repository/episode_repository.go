package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// EpisodeRepository handles episode data operations
type EpisodeRepository struct {
	db *gorm.DB
}

// NewEpisodeRepository creates a new episode repository
func NewEpisodeRepository(db *gorm.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// CreateEpisode creates a new episode
func (r *EpisodeRepository) CreateEpisode(ctx context.Context, episode *entities.Episode) error {
	if episode == nil {
		return errors.New("episode cannot be nil")
	}
	return r.db.WithContext(ctx).Create(episode).Error
}

// GetEpisodeByID retrieves an episode by ID
func (r *EpisodeRepository) GetEpisodeByID(ctx context.Context, id uuid.UUID) (*entities.Episode, error) {
	var episode entities.Episode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&episode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// ListEpisodes retrieves episodes ordered by creation time, newest first
func (r *EpisodeRepository) ListEpisodes(ctx context.Context, limit, offset int) ([]entities.Episode, error) {
	var episodes []entities.Episode
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// UpdateEpisodeStatus updates the status of an episode
func (r *EpisodeRepository) UpdateEpisodeStatus(ctx context.Context, id uuid.UUID, status entities.EpisodeStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Episode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpdateEpisode updates an episode
func (r *EpisodeRepository) UpdateEpisode(ctx context.Context, episode *entities.Episode) error {
	if episode == nil {
		return errors.New("episode cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Episode{}).
		Where("id = ?", episode.ID).
		Save(episode).Error
}

// DeleteEpisode deletes an episode
func (r *EpisodeRepository) DeleteEpisode(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Episode{}, id).Error
}
