package episode

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/podflow-team/podflow/internal/adapter/repository"
	"github.com/podflow-team/podflow/internal/domain/entities"
	domainrepo "github.com/podflow-team/podflow/internal/domain/repositories"
	"github.com/podflow-team/podflow/internal/infrastructure/cache"
	"github.com/podflow-team/podflow/internal/usecase/content"
	pkgai "github.com/podflow-team/podflow/pkg/ai"
	"github.com/podflow-team/podflow/pkg/config"
	"github.com/podflow-team/podflow/pkg/jobcontext"
)

const resultCacheTTL = 10 * time.Minute

// ArtifactStore persists editor-facing artifact bundles. The MinIO client
// satisfies it; a nil store disables artifact upload.
type ArtifactStore interface {
	UploadMarkdown(ctx context.Context, objectName, content string) error
	UploadJSON(ctx context.Context, objectName string, data []byte) error
}

// Service drives an episode through transcription and content generation.
type Service interface {
	SubmitEpisode(ctx context.Context, ep *entities.Episode) (*entities.ContentJob, error)
	SubmitToTranscription(ctx context.Context, jobID uuid.UUID) error
	HandleTranscriptionWebhook(ctx context.Context, payload []byte, authToken string) error
	GetEpisode(ctx context.Context, episodeID uuid.UUID) (*entities.Episode, error)
	ListEpisodes(ctx context.Context, limit, offset int) ([]entities.Episode, error)
	ListJobs(ctx context.Context, episodeID uuid.UUID) ([]entities.ContentJob, error)
	GetResult(ctx context.Context, episodeID uuid.UUID) (*entities.EpisodeContentResult, error)
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type episodeService struct {
	episodeRepo    *repository.EpisodeRepository
	jobRepo        *repository.ContentJobRepository
	transcriptRepo *repository.TranscriptRepository
	resultRepo     domainrepo.ContentResultRepository
	asmClient      *pkgai.AssemblyAIClient
	asmSDKClient   *aai.Client
	orchestrator   *content.Orchestrator
	artifacts      ArtifactStore
	resultCache    cache.Cache
	cfg            *config.Config
	logger         *zap.Logger

	submitSemaphore     chan struct{} // limit concurrent transcription submissions
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the episode service
func NewService(
	episodeRepo *repository.EpisodeRepository,
	jobRepo *repository.ContentJobRepository,
	transcriptRepo *repository.TranscriptRepository,
	resultRepo domainrepo.ContentResultRepository,
	asm *pkgai.AssemblyAIClient,
	orchestrator *content.Orchestrator,
	artifacts ArtifactStore,
	resultCache cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	asmSDKClient := aai.NewClient(cfg.Assembly.APIKey)

	return &episodeService{
		episodeRepo:     episodeRepo,
		jobRepo:         jobRepo,
		transcriptRepo:  transcriptRepo,
		resultRepo:      resultRepo,
		asmClient:       asm,
		asmSDKClient:    asmSDKClient,
		orchestrator:    orchestrator,
		artifacts:       artifacts,
		resultCache:     resultCache,
		cfg:             cfg,
		logger:          logger,
		submitSemaphore: make(chan struct{}, 2),
		workerStopChan:  make(chan struct{}),
	}
}

// SubmitEpisode registers an episode and starts transcription for it.
func (s *episodeService) SubmitEpisode(ctx context.Context, ep *entities.Episode) (*entities.ContentJob, error) {
	if ep == nil {
		return nil, fmt.Errorf("episode cannot be nil")
	}
	if ep.RecordingURL == "" {
		return nil, fmt.Errorf("recording URL is required")
	}

	if err := s.episodeRepo.CreateEpisode(ctx, ep); err != nil {
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}

	job := entities.NewContentJob(ep.ID, entities.ContentJobTypeTranscription, ep.RecordingURL)
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create content job: %w", err)
	}

	if err := s.episodeRepo.UpdateEpisodeStatus(ctx, ep.ID, entities.EpisodeStatusTranscribing); err != nil {
		s.logger.Warn("failed to update episode status", zap.String("episode_id", ep.ID.String()), zap.Error(err))
	}

	if err := s.SubmitToTranscription(ctx, job.ID); err != nil {
		return job, err
	}
	return job, nil
}

// SubmitToTranscription submits a job's recording to the transcription
// provider. Retries with exponential backoff; concurrent submissions are
// bounded by a semaphore.
func (s *episodeService) SubmitToTranscription(ctx context.Context, jobID uuid.UUID) error {
	if s.asmClient == nil {
		return fmt.Errorf("transcription client not configured")
	}

	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get content job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("content job not found: %s", jobID)
	}
	if job.RecordingURL == "" {
		return fmt.Errorf("recording URL is required")
	}

	languageCode := s.cfg.Assembly.LanguageCode
	if ep, err := s.episodeRepo.GetEpisodeByID(ctx, job.EpisodeID); err == nil && ep != nil && ep.Language != "" {
		languageCode = ep.Language
	}

	s.submitSemaphore <- struct{}{}
	defer func() { <-s.submitSemaphore }()

	s.logger.Info("submitting recording for transcription",
		zap.String("job_id", job.ID.String()),
		zap.String("episode_id", job.EpisodeID.String()),
		zap.String("language", languageCode),
		zap.Int("retry_count", job.RetryCount),
	)

	webhookURL := ""
	if s.cfg.Assembly.WebhookBaseURL != "" {
		webhookURL = s.cfg.Assembly.WebhookBaseURL + "/v1/webhooks/assemblyai"
	}

	var transcriptID string
	submitFn := func() error {
		id, err := s.asmClient.TranscribeAudio(ctx, job.RecordingURL, languageCode, webhookURL, s.cfg.Assembly.WebhookSecret, map[string]string{
			"episode_id": job.EpisodeID.String(),
			"job_id":     job.ID.String(),
		})
		if err != nil {
			return err
		}
		transcriptID = id

		// The webhook can arrive within seconds of submission; the external
		// id must be in the database before it does.
		if err := s.jobRepo.MarkJobAsSubmitted(ctx, job.ID, transcriptID); err != nil {
			return fmt.Errorf("failed to record external job id: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		s.jobRepo.MarkJobAsFailed(ctx, job.ID, fmt.Sprintf("failed to submit for transcription: %v", err))
		s.logger.Error("transcription submission failed after retries",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("transcription job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("transcript_id", transcriptID),
	)
	return nil
}

// webhookPayload is the subset of the provider's webhook body we act on.
type webhookPayload struct {
	TranscriptID string `json:"transcript_id"`
	ID           string `json:"id"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// HandleTranscriptionWebhook processes provider webhook deliveries. The auth
// token is the webhook header value the provider echoes back; deliveries that
// fail verification are rejected when a secret is configured.
func (s *episodeService) HandleTranscriptionWebhook(ctx context.Context, payload []byte, authToken string) error {
	if s.cfg.Assembly.WebhookSecret != "" && !pkgai.VerifySharedToken(s.cfg.Assembly.WebhookSecret, authToken) {
		s.logger.Warn("rejected webhook with invalid auth token")
		return fmt.Errorf("invalid webhook auth token")
	}

	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	transcriptID := body.TranscriptID
	if transcriptID == "" {
		transcriptID = body.ID
	}
	if transcriptID == "" {
		return fmt.Errorf("transcript ID missing in webhook")
	}

	s.logger.Info("received transcription webhook",
		zap.String("transcript_id", transcriptID),
		zap.String("status", body.Status),
	)

	job, err := s.jobRepo.GetJobByExternalID(ctx, transcriptID)
	if err != nil {
		return fmt.Errorf("failed to find content job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("content job not found for transcript %s", transcriptID)
	}

	switch body.Status {
	case "completed":
		// Providers redeliver webhooks; a job already past submitted has
		// processed this transcript.
		if job.Status != entities.ContentJobStatusSubmitted {
			s.logger.Info("ignoring duplicate webhook delivery",
				zap.String("job_id", job.ID.String()),
				zap.String("job_status", string(job.Status)),
			)
			return nil
		}
		if err := s.handleCompletedTranscript(ctx, job, transcriptID); err != nil {
			s.logger.Error("failed to handle completed transcript",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
			return err
		}

	case "error":
		errMsg := fmt.Sprintf("transcription provider error: %s", body.Error)
		if err := s.jobRepo.MarkJobAsFailed(ctx, job.ID, errMsg); err != nil {
			s.logger.Error("failed to mark job as failed", zap.Error(err))
		}
		if err := s.episodeRepo.UpdateEpisodeStatus(ctx, job.EpisodeID, entities.EpisodeStatusFailed); err != nil {
			s.logger.Error("failed to update episode status", zap.Error(err))
		}

	default:
		// queued/processing deliveries only refresh the timestamp so the
		// timeout worker leaves the job alone.
		if err := s.jobRepo.UpdateJobStatus(ctx, job.ID, job.Status); err != nil {
			s.logger.Warn("failed to touch job", zap.Error(err))
		}
	}

	return nil
}

// handleCompletedTranscript fetches the full transcript from the provider,
// stores it, and queues the job for a pipeline worker.
func (s *episodeService) handleCompletedTranscript(ctx context.Context, job *entities.ContentJob, transcriptID string) error {
	transcript, err := s.asmSDKClient.Transcripts.Get(ctx, transcriptID)
	if err != nil {
		return fmt.Errorf("failed to fetch transcript: %w", err)
	}

	entity := entities.NewTranscript(job.EpisodeID)
	entity.ModelUsed = "assemblyai"
	if transcript.Text != nil {
		entity.Text = *transcript.Text
	}
	if transcript.LanguageCode != "" {
		entity.Language = string(transcript.LanguageCode)
	}
	if transcript.AudioDuration != nil {
		entity.ProcessingTime = int(*transcript.AudioDuration)
	}

	if len(transcript.Words) > 0 {
		words := make([]entities.TranscriptWord, 0, len(transcript.Words))
		for _, w := range transcript.Words {
			word := entities.TranscriptWord{}
			if w.Text != nil {
				word.Text = *w.Text
			}
			if w.Start != nil {
				word.Start = float64(*w.Start) / 1000.0 // ms to seconds
			}
			if w.End != nil {
				word.End = float64(*w.End) / 1000.0
			}
			if w.Confidence != nil {
				word.Confidence = *w.Confidence
			}
			if w.Speaker != nil {
				word.Speaker = *w.Speaker
			}
			words = append(words, word)
		}
		entity.Words = words
	}

	if len(transcript.Utterances) > 0 {
		utterances := make([]entities.Utterance, 0, len(transcript.Utterances))
		for _, u := range transcript.Utterances {
			utterance := entities.Utterance{}
			if u.Text != nil {
				utterance.Text = *u.Text
			}
			if u.Speaker != nil {
				utterance.Speaker = *u.Speaker
			}
			if u.Start != nil {
				utterance.Start = float64(*u.Start) / 1000.0
			}
			if u.End != nil {
				utterance.End = float64(*u.End) / 1000.0
			}
			utterances = append(utterances, utterance)
		}
		entity.Utterances = utterances
	}

	entity.Normalize()

	if err := s.transcriptRepo.CreateTranscript(ctx, entity); err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}

	s.logger.Info("transcript stored",
		zap.String("transcript_id", entity.ID.String()),
		zap.String("episode_id", job.EpisodeID.String()),
		zap.Int("word_count", len(entity.Words)),
		zap.Float64("duration_sec", entity.DurationSec),
	)

	if err := s.jobRepo.MarkJobAsTranscribed(ctx, job.ID, entity.ID); err != nil {
		return fmt.Errorf("failed to queue job for generation: %w", err)
	}
	if err := s.episodeRepo.UpdateEpisodeStatus(ctx, job.EpisodeID, entities.EpisodeStatusGenerating); err != nil {
		s.logger.Warn("failed to update episode status", zap.Error(err))
	}
	return nil
}

// runContentPipeline executes the generation pipeline for a claimed job and
// persists its result, artifacts and metadata.
func (s *episodeService) runContentPipeline(ctx context.Context, job *entities.ContentJob) error {
	start := time.Now()

	ep, err := s.episodeRepo.GetEpisodeByID(ctx, job.EpisodeID)
	if err != nil {
		return fmt.Errorf("failed to get episode: %w", err)
	}
	if ep == nil {
		return fmt.Errorf("episode not found: %s", job.EpisodeID)
	}

	var transcript *entities.Transcript
	if job.TranscriptID != nil {
		transcript, err = s.transcriptRepo.GetTranscriptByID(ctx, *job.TranscriptID)
	} else {
		transcript, err = s.transcriptRepo.GetTranscriptByEpisodeID(ctx, job.EpisodeID)
	}
	if err != nil {
		return fmt.Errorf("failed to get transcript: %w", err)
	}
	if transcript == nil {
		return fmt.Errorf("transcript not found for job %s", job.ID)
	}

	result, err := s.orchestrator.Run(ctx, content.RunInput{
		EpisodeID:  job.EpisodeID,
		JobID:      job.ID,
		Info:       ep.Info(),
		Transcript: transcript,
	})
	if err != nil {
		return fmt.Errorf("content pipeline failed: %w", err)
	}

	if err := s.resultRepo.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	artifactPath := s.uploadArtifacts(ctx, ep, job, result)

	metadata := entities.ContentJobMetadata{
		DurationSeconds:      int(transcript.DurationSec),
		Language:             result.Language,
		SpeakerCount:         transcript.SpeakerCount,
		ProcessingTimeMs:     time.Since(start).Milliseconds(),
		ReflectionIterations: result.Verification.Iterations,
		FinalConfidence:      result.Verification.Confidence,
		Verified:             result.Verification.Verified,
		ArtifactPath:         artifactPath,
	}
	if err := s.jobRepo.UpdateJobMetadata(ctx, job.ID, metadata); err != nil {
		s.logger.Warn("failed to store job metadata", zap.Error(err))
	}

	if err := s.jobRepo.MarkJobAsCompleted(ctx, job.ID, &result.ID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	if err := s.episodeRepo.UpdateEpisodeStatus(ctx, job.EpisodeID, entities.EpisodeStatusCompleted); err != nil {
		s.logger.Warn("failed to update episode status", zap.Error(err))
	}

	s.cacheResult(ctx, result)

	s.logger.Info("content pipeline completed",
		zap.String("job_id", job.ID.String()),
		zap.String("episode_id", job.EpisodeID.String()),
		zap.Bool("verified", result.Verification.Verified),
		zap.Float64("confidence", result.Verification.Confidence),
		zap.Int64("processing_ms", metadata.ProcessingTimeMs),
	)
	return nil
}

// uploadArtifacts writes the markdown report and raw JSON result to artifact
// storage. Artifact failures never fail the run.
func (s *episodeService) uploadArtifacts(ctx context.Context, ep *entities.Episode, job *entities.ContentJob, result *entities.EpisodeContentResult) string {
	if s.artifacts == nil {
		return ""
	}

	prefix := fmt.Sprintf("artifacts/%s/%s", job.EpisodeID, job.ID)

	if err := s.artifacts.UploadMarkdown(ctx, prefix+"/report.md", MarkdownReport(ep, result)); err != nil {
		s.logger.Warn("failed to upload markdown artifact", zap.Error(err))
		return ""
	}
	if data, err := json.Marshal(result); err == nil {
		if err := s.artifacts.UploadJSON(ctx, prefix+"/result.json", data); err != nil {
			s.logger.Warn("failed to upload json artifact", zap.Error(err))
		}
	}
	return prefix
}

func resultCacheKey(episodeID uuid.UUID) string {
	return "content_result:" + episodeID.String()
}

func (s *episodeService) cacheResult(ctx context.Context, result *entities.EpisodeContentResult) {
	if s.resultCache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.resultCache.Set(ctx, resultCacheKey(result.EpisodeID), string(data), resultCacheTTL); err != nil {
		s.logger.Warn("failed to cache result", zap.Error(err))
	}
}

// GetEpisode returns a single episode by ID.
func (s *episodeService) GetEpisode(ctx context.Context, episodeID uuid.UUID) (*entities.Episode, error) {
	return s.episodeRepo.GetEpisodeByID(ctx, episodeID)
}

// ListEpisodes returns episodes ordered by creation time, newest first.
func (s *episodeService) ListEpisodes(ctx context.Context, limit, offset int) ([]entities.Episode, error) {
	return s.episodeRepo.ListEpisodes(ctx, limit, offset)
}

// ListJobs returns all processing jobs for an episode.
func (s *episodeService) ListJobs(ctx context.Context, episodeID uuid.UUID) ([]entities.ContentJob, error) {
	return s.jobRepo.ListJobsByEpisodeID(ctx, episodeID)
}

// GetResult returns the latest result for an episode, served from cache when
// possible.
func (s *episodeService) GetResult(ctx context.Context, episodeID uuid.UUID) (*entities.EpisodeContentResult, error) {
	if s.resultCache != nil {
		if cached, err := s.resultCache.Get(ctx, resultCacheKey(episodeID)); err == nil {
			var result entities.EpisodeContentResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return &result, nil
			}
		}
	}

	result, err := s.resultRepo.GetLatestResultByEpisodeID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		s.cacheResult(ctx, result)
	}
	return result, nil
}

// StartWorkerPool starts the background workers: pipeline workers plus the
// submission, zombie-cleanup and webhook-timeout loops.
func (s *episodeService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	s.logger.Info("starting episode worker pool", zap.Int("worker_count", workerCount))

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.generationWorker(ctx, i)
	}

	s.workerWg.Add(1)
	go s.submissionWorker(ctx)

	s.workerWg.Add(1)
	go s.zombieCleanupWorker(ctx)

	s.workerWg.Add(1)
	go s.webhookTimeoutWorker(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *episodeService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	s.logger.Info("stopping episode worker pool")
	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false
	return nil
}

// generationWorker polls for transcribed jobs and runs the content pipeline.
func (s *episodeService) generationWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	s.logger.Info("generation worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("generation worker stopping", zap.Int("worker_id", workerID))
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsByStatus(parentCtx, entities.ContentJobStatusTranscribed, 1)
			if err != nil {
				s.logger.Error("failed to poll jobs", zap.Int("worker_id", workerID), zap.Error(err))
				continue
			}
			if len(jobs) == 0 {
				continue
			}

			job := jobs[0]
			claimed, err := s.jobRepo.ClaimJob(parentCtx, job.ID, entities.ContentJobStatusTranscribed, entities.ContentJobStatusGenerating)
			if err != nil {
				s.logger.Error("failed to claim job", zap.String("job_id", job.ID.String()), zap.Error(err))
				continue
			}
			if !claimed {
				continue
			}

			s.logger.Info("worker claimed job",
				zap.Int("worker_id", workerID),
				zap.String("job_id", job.ID.String()),
				zap.String("episode_id", job.EpisodeID.String()),
			)

			jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, string(job.JobType), workerID)
			err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
				return s.runContentPipeline(ctx, &job)
			})
			cancel()

			if err != nil {
				s.logger.Error("job failed after retries",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
				s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, err.Error())
				s.episodeRepo.UpdateEpisodeStatus(parentCtx, job.EpisodeID, entities.EpisodeStatusFailed)
			}
		}
	}
}

// submissionWorker polls for pending and retrying jobs and submits them for
// transcription.
func (s *episodeService) submissionWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	s.logger.Info("submission worker started")

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("submission worker stopping")
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsForSubmission(parentCtx, 5)
			if err != nil {
				s.logger.Error("failed to poll pending jobs", zap.Error(err))
				continue
			}

			for _, job := range jobs {
				claimed, err := s.jobRepo.ClaimJob(parentCtx, job.ID, job.Status, entities.ContentJobStatusSubmitted)
				if err != nil {
					s.logger.Error("failed to claim job", zap.String("job_id", job.ID.String()), zap.Error(err))
					continue
				}
				if !claimed {
					continue
				}

				if err := s.SubmitToTranscription(parentCtx, job.ID); err != nil {
					// SubmitToTranscription already marked the job failed.
					s.logger.Error("failed to submit job",
						zap.String("job_id", job.ID.String()),
						zap.Error(err),
					)
				}
			}
		}
	}
}

// zombieCleanupWorker resets jobs stuck in generating back to transcribed.
// A worker that died mid-pipeline leaves the job claimed forever otherwise.
func (s *episodeService) zombieCleanupWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsByStatus(parentCtx, entities.ContentJobStatusGenerating, 0)
			if err != nil {
				continue
			}
			for _, job := range jobs {
				if job.UpdatedAt.Before(time.Now().Add(-15 * time.Minute)) {
					s.logger.Warn("resetting zombie job",
						zap.String("job_id", job.ID.String()),
						zap.Time("updated_at", job.UpdatedAt),
					)
					s.jobRepo.UpdateJobStatus(parentCtx, job.ID, entities.ContentJobStatusTranscribed)
				}
			}
		}
	}
}

// webhookTimeoutWorker polls the provider for jobs stuck in submitted status.
// Covers both missed webhook deliveries and deployments with no reachable
// webhook URL at all.
func (s *episodeService) webhookTimeoutWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	s.logger.Info("webhook timeout worker started")

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("webhook timeout worker stopping")
			return

		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			jobs, err := s.jobRepo.GetStuckJobs(parentCtx, cutoff)
			if err != nil {
				s.logger.Error("failed to query stuck jobs", zap.Error(err))
				continue
			}

			for _, job := range jobs {
				if job.ExternalJobID == nil || *job.ExternalJobID == "" {
					s.logger.Warn("job has no external id, marking as failed",
						zap.String("job_id", job.ID.String()),
					)
					s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, "no external transcript ID")
					continue
				}
				transcriptID := *job.ExternalJobID

				transcript, err := s.asmSDKClient.Transcripts.Get(parentCtx, transcriptID)
				if err != nil {
					// Could be a transient provider error, leave the job alone.
					s.logger.Error("failed to poll transcription provider",
						zap.String("transcript_id", transcriptID),
						zap.Error(err),
					)
					continue
				}

				switch transcript.Status {
				case aai.TranscriptStatusCompleted:
					s.logger.Info("transcript completed without webhook, processing now",
						zap.String("job_id", job.ID.String()),
						zap.String("transcript_id", transcriptID),
					)
					if err := s.handleCompletedTranscript(parentCtx, &job, transcriptID); err != nil {
						s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, fmt.Sprintf("failed to process transcript: %v", err))
					}

				case aai.TranscriptStatusError:
					errMsg := "transcription failed"
					if transcript.Error != nil {
						errMsg = fmt.Sprintf("transcription provider error: %s", *transcript.Error)
					}
					s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, errMsg)
					s.episodeRepo.UpdateEpisodeStatus(parentCtx, job.EpisodeID, entities.EpisodeStatusFailed)

				case aai.TranscriptStatusQueued, aai.TranscriptStatusProcessing:
					// Refresh the timestamp to push the timeout window out.
					s.jobRepo.UpdateJobStatus(parentCtx, job.ID, job.Status)

				default:
					s.logger.Warn("unknown transcript status",
						zap.String("job_id", job.ID.String()),
						zap.String("status", string(transcript.Status)),
					)
				}
			}
		}
	}
}
