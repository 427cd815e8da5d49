package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/internal/infrastructure/vectorstore"
	"github.com/podflow-team/podflow/pkg/config"
)

// Orchestrator sequences chunking, retrieval, generation, verification and
// reflection into one EpisodeContentResult. It is the only component that
// knows all the others, and the only one exposed outside this package's
// pipeline internals.
type Orchestrator struct {
	embedder   Embedder
	store      vectorstore.Store
	cfg        *config.PipelineConfig
	chunker    *Chunker
	verifier   *Verifier
	reflection *ReflectionController
	generators *Generators
	logger     *zap.Logger
}

// NewOrchestrator wires the pipeline. Model and store are required; embedder
// may be nil, which selects the degraded lexical retrieval mode throughout.
func NewOrchestrator(model ChatModel, embedder Embedder, store vectorstore.Store, cfg *config.PipelineConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	critic := NewCritic(cfg)
	return &Orchestrator{
		embedder:   embedder,
		store:      store,
		cfg:        cfg,
		chunker:    NewChunker(embedder, cfg, logger),
		verifier:   NewVerifier(cfg),
		reflection: NewReflectionController(critic, cfg, logger),
		generators: NewGenerators(model, cfg, logger),
		logger:     logger,
	}
}

// RunInput is one pipeline invocation.
type RunInput struct {
	EpisodeID  uuid.UUID
	JobID      uuid.UUID
	Info       entities.EpisodeInfo
	Transcript *entities.Transcript
}

// kindOutcome is one content kind's branch result. Each branch writes only
// its own slot, so the four concurrent branches never contend.
type kindOutcome struct {
	outcome    *ReflectionOutcome
	violations int
	dropped    int
	genErr     error
}

// Run executes the pipeline for one transcript. The only hard failures are
// an empty transcript and caller cancellation; every sub-task failure is
// absorbed into the result's verification metadata instead.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*entities.EpisodeContentResult, error) {
	if in.Transcript == nil || len(in.Transcript.Words) == 0 {
		return nil, entities.ErrEmptyTranscript
	}
	words := in.Transcript.Words

	runID := in.JobID.String()
	if in.JobID == uuid.Nil {
		runID = uuid.NewString()
	}

	chunks, err := o.chunker.Chunk(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("chunk transcript: %w", err)
	}

	// The index lives for exactly one run; a fresh instance per run keeps
	// concurrent episodes from leaking chunks into each other.
	index := NewIndex(o.store, o.embedder, runID, o.cfg, o.logger)
	if err := index.Build(ctx, chunks); err != nil {
		return nil, fmt.Errorf("build retrieval index: %w", err)
	}
	defer index.Close(context.WithoutCancel(ctx))

	verify := func(claim entities.GeneratedClaim) entities.VerificationVerdict {
		return o.verifier.Verify(claim, words)
	}

	var (
		quotes   kindOutcome
		reels    kindOutcome
		chapters kindOutcome
		warnings struct {
			items  []string
			genErr error
		}
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		quotes = o.runReflected(egCtx, entities.ClaimKindQuote, verify,
			func(ctx context.Context) ([]entities.GeneratedClaim, int, error) {
				return o.generators.QuotableMoments(ctx, in.Info, index)
			})
		return egCtx.Err()
	})

	eg.Go(func() error {
		reels = o.runReflected(egCtx, entities.ClaimKindReel, verify,
			func(ctx context.Context) ([]entities.GeneratedClaim, int, error) {
				return o.generators.ReelSuggestions(ctx, in.Info, index)
			})
		return egCtx.Err()
	})

	eg.Go(func() error {
		chapters = o.runChapters(egCtx, in, index, verify)
		return egCtx.Err()
	})

	eg.Go(func() error {
		items, err := o.generators.ContentWarnings(egCtx, in.Info, index)
		if err != nil {
			o.logger.Warn("content warning generation failed", zap.Error(err))
			warnings.genErr = err
			return egCtx.Err()
		}
		warnings.items = items
		return egCtx.Err()
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// Either a run completes with metadata or it is abandoned cleanly; a
	// cancelled run never returns a partial result.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := o.assemble(in, quotes, reels, chapters, warnings.items, warnings.genErr)
	o.logger.Info("content pipeline run completed",
		zap.String("run_id", runID),
		zap.Int("chunks", len(chunks)),
		zap.Int("iterations", result.Verification.Iterations),
		zap.Float64("confidence", result.Verification.Confidence),
		zap.Bool("verified", result.Verification.Verified))
	return result, nil
}

// runReflected drives the reflection loop for one claim-producing kind. The
// first iteration calls the real generator; later iterations apply the
// critique's concrete repairs locally, which is what makes the loop converge
// instead of repeating the same error.
func (o *Orchestrator) runReflected(ctx context.Context, kind entities.ClaimKind, verify VerifyFunc, firstPass func(ctx context.Context) ([]entities.GeneratedClaim, int, error)) kindOutcome {
	var out kindOutcome
	var prior []entities.GeneratedClaim

	generate := func(ctx context.Context, iteration int, repairs []entities.RepairAction) ([]entities.GeneratedClaim, error) {
		if iteration == 1 {
			claims, violations, err := firstPass(ctx)
			out.violations = violations
			if err != nil {
				return nil, err
			}
			prior = claims
			return claims, nil
		}
		next, dropped := ApplyRepairs(prior, repairs, iteration)
		out.dropped += dropped
		prior = next
		return next, nil
	}

	outcome, err := o.reflection.Run(ctx, kind, generate, verify)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn("generation failed for content kind", zap.String("kind", string(kind)), zap.Error(err))
		}
		out.genErr = err
		return out
	}
	out.outcome = outcome
	return out
}

// runChapters executes the two-step chapter chain: titles first (strictly
// before timestamps), then per-title localization under the reflection loop.
func (o *Orchestrator) runChapters(ctx context.Context, in RunInput, index *Index, verify VerifyFunc) kindOutcome {
	titles, err := o.generators.ChapterTitles(ctx, in.Info, in.Transcript.FormattedText())
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn("chapter title generation failed", zap.Error(err))
		}
		return kindOutcome{genErr: err}
	}

	return o.runReflected(ctx, entities.ClaimKindChapter, verify,
		func(ctx context.Context) ([]entities.GeneratedClaim, int, error) {
			return o.generators.ChapterTimestamps(ctx, in.Info, titles, index)
		})
}

// assemble folds the branch outcomes into the final immutable result.
// Policy, applied consistently: claims whose quote was never located are
// excluded; claims with an unresolved timestamp error are kept and flagged
// low-confidence.
func (o *Orchestrator) assemble(in RunInput, quotes, reels, chapters kindOutcome, warningItems []string, warningErr error) *entities.EpisodeContentResult {
	result := entities.NewEpisodeContentResult(in.EpisodeID, in.JobID)
	result.Language = in.Info.Language
	result.ContentWarnings = append(result.ContentWarnings, warningItems...)

	meta := &result.Verification
	approved := true
	var confidenceSum float64
	var claimTotal int

	record := func(kind entities.ClaimKind, ko kindOutcome) map[uuid.UUID]entities.VerificationVerdict {
		meta.DroppedClaims += ko.violations + ko.dropped
		if ko.genErr != nil {
			meta.GenerationErrors = append(meta.GenerationErrors, fmt.Sprintf("%s: %v", kind, ko.genErr))
			approved = false
			return nil
		}
		if ko.outcome == nil {
			return nil
		}
		if ko.outcome.Iterations > meta.Iterations {
			meta.Iterations = ko.outcome.Iterations
		}
		if !ko.outcome.Approved {
			approved = false
		}
		n := len(ko.outcome.Claims)
		confidenceSum += ko.outcome.Critique.OverallConfidence * float64(n)
		claimTotal += n
		meta.UnresolvedErrors += len(ko.outcome.Critique.Errors)
		return ko.outcome.Verdicts
	}

	if verdicts := record(entities.ClaimKindQuote, quotes); verdicts != nil {
		for _, claim := range quotes.outcome.Claims {
			verdict := verdicts[claim.ID]
			if verdict.Status == entities.VerdictQuoteNotFound {
				meta.DroppedClaims++
				continue
			}
			result.QuotableMoments = append(result.QuotableMoments, entities.QuotableMoment{
				Quote:            claim.Quote.Quote,
				Timestamp:        entities.FormatTimecode(claim.Quote.ClaimedSeconds),
				TimestampSeconds: claim.Quote.ClaimedSeconds,
				Context:          claim.Quote.Context,
				Speaker:          claim.Quote.Speaker,
				LowConfidence:    verdict.Status == entities.VerdictTimestampError,
			})
		}
	}

	if verdicts := record(entities.ClaimKindReel, reels); verdicts != nil {
		for _, claim := range reels.outcome.Claims {
			verdict := verdicts[claim.ID]
			result.ReelSuggestions = append(result.ReelSuggestions, entities.ReelSuggestion{
				StartTime:           entities.FormatTimecode(claim.Reel.StartSeconds),
				EndTime:             entities.FormatTimecode(claim.Reel.EndSeconds),
				StartSeconds:        claim.Reel.StartSeconds,
				EndSeconds:          claim.Reel.EndSeconds,
				Title:               claim.Reel.Title,
				Description:         claim.Reel.Description,
				Hook:                claim.Reel.Hook,
				Closing:             claim.Reel.Closing,
				EditingInstructions: claim.Reel.EditingInstructions,
				ConfidenceLevel:     claim.Reel.ConfidenceLevel,
				LowConfidence:       verdict.Status == entities.VerdictTimestampError,
			})
		}
	}

	if verdicts := record(entities.ClaimKindChapter, chapters); verdicts != nil {
		for _, claim := range chapters.outcome.Claims {
			verdict := verdicts[claim.ID]
			result.ChapterTimestamps = append(result.ChapterTimestamps, entities.ChapterStamp{
				Timestamp:        entities.FormatTimecode(claim.Chapter.ClaimedSeconds),
				TimestampSeconds: claim.Chapter.ClaimedSeconds,
				Title:            claim.Chapter.Title,
				LowConfidence:    verdict.Status == entities.VerdictTimestampError,
			})
		}
	}

	if warningErr != nil {
		meta.GenerationErrors = append(meta.GenerationErrors, fmt.Sprintf("%s: %v", entities.ClaimKindWarning, warningErr))
		approved = false
	}

	if claimTotal > 0 {
		meta.Confidence = confidenceSum / float64(claimTotal)
	} else if len(meta.GenerationErrors) == 0 {
		meta.Confidence = 1
	}
	meta.Verified = approved && meta.UnresolvedErrors == 0 && len(meta.GenerationErrors) == 0

	return result
}
