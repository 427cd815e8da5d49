package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// ContentJobRepository handles content job data operations
type ContentJobRepository struct {
	db *gorm.DB
}

// NewContentJobRepository creates a new content job repository
func NewContentJobRepository(db *gorm.DB) *ContentJobRepository {
	return &ContentJobRepository{db: db}
}

// GetDB exposes the underlying handle for atomic claim updates
func (r *ContentJobRepository) GetDB() *gorm.DB {
	return r.db
}

// CreateJob creates a new content job
func (r *ContentJobRepository) CreateJob(ctx context.Context, job *entities.ContentJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves a job by ID
func (r *ContentJobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.ContentJob, error) {
	var job entities.ContentJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetJobByExternalID retrieves a job by the transcription provider's transcript ID
func (r *ContentJobRepository) GetJobByExternalID(ctx context.Context, externalID string) (*entities.ContentJob, error) {
	var job entities.ContentJob
	if err := r.db.WithContext(ctx).Where("external_job_id = ?", externalID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetLatestJobByEpisodeID retrieves the most recent job for an episode
func (r *ContentJobRepository) GetLatestJobByEpisodeID(ctx context.Context, episodeID uuid.UUID, jobType entities.ContentJobType) (*entities.ContentJob, error) {
	var job entities.ContentJob
	query := r.db.WithContext(ctx).Where("episode_id = ?", episodeID)
	if jobType != "" {
		query = query.Where("job_type = ?", jobType)
	}
	if err := query.Order("created_at DESC").First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListJobsByEpisodeID retrieves all jobs for an episode
func (r *ContentJobRepository) ListJobsByEpisodeID(ctx context.Context, episodeID uuid.UUID) ([]entities.ContentJob, error) {
	var jobs []entities.ContentJob
	if err := r.db.WithContext(ctx).
		Where("episode_id = ?", episodeID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobsByStatus retrieves jobs with a specific status, oldest first
func (r *ContentJobRepository) GetJobsByStatus(ctx context.Context, status entities.ContentJobStatus, limit int) ([]entities.ContentJob, error) {
	var jobs []entities.ContentJob
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobsForSubmission retrieves pending and retrying jobs ready for the transcription provider
func (r *ContentJobRepository) GetJobsForSubmission(ctx context.Context, limit int) ([]entities.ContentJob, error) {
	var jobs []entities.ContentJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []entities.ContentJobStatus{entities.ContentJobStatusPending, entities.ContentJobStatusRetrying}).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetStuckJobs retrieves submitted jobs whose webhook never arrived
func (r *ContentJobRepository) GetStuckJobs(ctx context.Context, cutoff time.Time) ([]entities.ContentJob, error) {
	var jobs []entities.ContentJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", entities.ContentJobStatusSubmitted, cutoff).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobStatus updates the status of a job
func (r *ContentJobRepository) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status entities.ContentJobStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// ClaimJob atomically transitions a job from one status to another. Returns
// false when another worker already claimed it.
func (r *ContentJobRepository) ClaimJob(ctx context.Context, jobID uuid.UUID, from, to entities.ContentJobStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ? AND status = ?", jobID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkJobAsSubmitted marks a job as submitted with the provider transcript ID
func (r *ContentJobRepository) MarkJobAsSubmitted(ctx context.Context, jobID uuid.UUID, externalID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":          entities.ContentJobStatusSubmitted,
			"external_job_id": externalID,
			"started_at":      now,
			"updated_at":      now,
		}).Error
}

// MarkJobAsTranscribed records the stored transcript and queues the job for a
// pipeline worker
func (r *ContentJobRepository) MarkJobAsTranscribed(ctx context.Context, jobID, transcriptID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        entities.ContentJobStatusTranscribed,
			"transcript_id": transcriptID,
			"updated_at":    now,
		}).Error
}

// MarkJobAsCompleted marks a job as completed with the result ID
func (r *ContentJobRepository) MarkJobAsCompleted(ctx context.Context, jobID uuid.UUID, resultID *uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.ContentJobStatusCompleted,
			"result_id":    resultID,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// MarkJobAsFailed marks a job as failed with error message
func (r *ContentJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.ContentJobStatusFailed,
			"last_error": errMsg,
			"updated_at": now,
		}).Error
}

// IncrementRetryCount increments the retry count and marks the job for retry
func (r *ContentJobRepository) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"status":      entities.ContentJobStatusRetrying,
			"last_error":  errMsg,
			"updated_at":  now,
		}).Error
}

// UpdateJobMetadata stores the pipeline metadata on a job
func (r *ContentJobRepository) UpdateJobMetadata(ctx context.Context, jobID uuid.UUID, metadata entities.ContentJobMetadata) error {
	return r.db.WithContext(ctx).
		Model(&entities.ContentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"metadata":   metadata,
			"updated_at": time.Now(),
		}).Error
}

// GetFailedJobs retrieves jobs that failed and can be retried
func (r *ContentJobRepository) GetFailedJobs(ctx context.Context, limit int) ([]entities.ContentJob, error) {
	var jobs []entities.ContentJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < max_retries", entities.ContentJobStatusFailed).
		Order("updated_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
