package content

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/pkg/config"
)

// ChatModel is the language-model capability injected into every generator.
// There is no process-wide model singleton; the orchestrator passes a handle
// explicitly.
type ChatModel interface {
	ChatJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generators holds the four task-specific generators. Each issues narrowly
// scoped requests against retrieved context only; the full transcript is
// never re-sent for timestamp claims.
type Generators struct {
	model              ChatModel
	parser             *Parser
	topK               int
	chapterConcurrency int
	logger             *zap.Logger
}

// NewGenerators creates the generator set from pipeline config.
func NewGenerators(model ChatModel, cfg *config.PipelineConfig, logger *zap.Logger) *Generators {
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := cfg.RetrievalTopK
	if topK <= 0 {
		topK = 5
	}
	concurrency := cfg.ChapterConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Generators{
		model:              model,
		parser:             NewParser(),
		topK:               topK,
		chapterConcurrency: concurrency,
		logger:             logger,
	}
}

// checkRange rejects a claim whose timestamp lies outside the chunk that
// supplied it. Catching this before verification saves the round-trip; the
// claim never reaches the verifier.
func checkRange(claim entities.GeneratedClaim, start, end float64) error {
	switch claim.Kind {
	case entities.ClaimKindQuote:
		if claim.Quote.ClaimedSeconds < start || claim.Quote.ClaimedSeconds > end {
			return fmt.Errorf("%w: claimed %s outside chunk range %s-%s",
				entities.ErrRangeViolation,
				entities.FormatTimecode(claim.Quote.ClaimedSeconds),
				entities.FormatTimecode(start), entities.FormatTimecode(end))
		}
	case entities.ClaimKindReel:
		if claim.Reel.StartSeconds < start || claim.Reel.EndSeconds > end {
			return fmt.Errorf("%w: claimed range %s-%s outside chunk range %s-%s",
				entities.ErrRangeViolation,
				entities.FormatTimecode(claim.Reel.StartSeconds), entities.FormatTimecode(claim.Reel.EndSeconds),
				entities.FormatTimecode(start), entities.FormatTimecode(end))
		}
	case entities.ClaimKindChapter:
		if claim.Chapter.ClaimedSeconds < start || claim.Chapter.ClaimedSeconds > end {
			return fmt.Errorf("%w: claimed %s outside retrieved range %s-%s",
				entities.ErrRangeViolation,
				entities.FormatTimecode(claim.Chapter.ClaimedSeconds),
				entities.FormatTimecode(start), entities.FormatTimecode(end))
		}
	}
	return nil
}

// QuotableMoments retrieves the top chunks for the quote query and asks the
// model for at most one quote per chunk. Claims come back in retrieval order.
// Returns the claims, the range-violation count, and an error only when the
// whole sub-task produced nothing but failures.
func (g *Generators) QuotableMoments(ctx context.Context, info entities.EpisodeInfo, index *Index) ([]entities.GeneratedClaim, int, error) {
	retrieved, err := index.Search(ctx, RetrievalQuery{Text: quoteQuery, TopK: g.topK})
	if err != nil {
		return nil, 0, fmt.Errorf("quote retrieval: %w", err)
	}
	if len(retrieved) == 0 {
		return nil, 0, nil
	}

	system := quoteSystemPrompt(info.Language)
	var (
		claims     []entities.GeneratedClaim
		violations int
		callErrs   int
	)
	for _, rc := range retrieved {
		raw, err := g.model.ChatJSON(ctx, system, quoteUserPrompt(info, rc.TranscriptChunk))
		if err != nil {
			g.logger.Warn("quote generation call failed", zap.String("chunk", rc.ID), zap.Error(err))
			callErrs++
			continue
		}
		payload, err := g.parser.ParseQuote(raw)
		if err != nil {
			g.logger.Warn("quote response unparseable", zap.String("chunk", rc.ID), zap.Error(err))
			callErrs++
			continue
		}
		if payload == nil {
			continue
		}

		claim := entities.NewClaim(entities.ClaimKindQuote)
		claim.Quote = payload
		claim.SupportingChunkID = rc.ID
		if err := claim.Validate(); err != nil {
			g.logger.Warn("quote claim invalid", zap.String("chunk", rc.ID), zap.Error(err))
			callErrs++
			continue
		}
		if err := checkRange(claim, rc.Start, rc.End); err != nil {
			g.logger.Warn("quote claim rejected", zap.String("chunk", rc.ID), zap.Error(err))
			violations++
			continue
		}
		claims = append(claims, claim)
	}

	if len(claims) == 0 && callErrs > 0 {
		return nil, violations, fmt.Errorf("%w: all %d quote calls failed", entities.ErrGenerationFailed, callErrs)
	}
	return claims, violations, nil
}

// ReelSuggestions mirrors QuotableMoments for clip-range claims.
func (g *Generators) ReelSuggestions(ctx context.Context, info entities.EpisodeInfo, index *Index) ([]entities.GeneratedClaim, int, error) {
	retrieved, err := index.Search(ctx, RetrievalQuery{Text: reelQuery, TopK: g.topK})
	if err != nil {
		return nil, 0, fmt.Errorf("reel retrieval: %w", err)
	}
	if len(retrieved) == 0 {
		return nil, 0, nil
	}

	system := reelSystemPrompt(info.Language)
	var (
		claims     []entities.GeneratedClaim
		violations int
		callErrs   int
	)
	for _, rc := range retrieved {
		raw, err := g.model.ChatJSON(ctx, system, reelUserPrompt(info, rc.TranscriptChunk))
		if err != nil {
			g.logger.Warn("reel generation call failed", zap.String("chunk", rc.ID), zap.Error(err))
			callErrs++
			continue
		}
		payload, err := g.parser.ParseReel(raw)
		if err != nil {
			g.logger.Warn("reel response unparseable", zap.String("chunk", rc.ID), zap.Error(err))
			callErrs++
			continue
		}
		if payload == nil {
			continue
		}

		claim := entities.NewClaim(entities.ClaimKindReel)
		claim.Reel = payload
		claim.SupportingChunkID = rc.ID
		if err := claim.Validate(); err != nil {
			g.logger.Warn("reel claim invalid", zap.String("chunk", rc.ID), zap.Error(err))
			callErrs++
			continue
		}
		if err := checkRange(claim, rc.Start, rc.End); err != nil {
			g.logger.Warn("reel claim rejected", zap.String("chunk", rc.ID), zap.Error(err))
			violations++
			continue
		}
		claims = append(claims, claim)
	}

	if len(claims) == 0 && callErrs > 0 {
		return nil, violations, fmt.Errorf("%w: all %d reel calls failed", entities.ErrGenerationFailed, callErrs)
	}
	return claims, violations, nil
}

// ChapterTitles is step 1 of the chapter chain: topic identification over the
// summary-level transcript view, no timestamps. This step may legitimately
// see the whole formatted transcript because it makes no temporal claims.
func (g *Generators) ChapterTitles(ctx context.Context, info entities.EpisodeInfo, formattedTranscript string) ([]string, error) {
	raw, err := g.model.ChatJSON(ctx, chapterTitlesSystemPrompt(info.Language), chapterTitlesUserPrompt(info, formattedTranscript))
	if err != nil {
		return nil, fmt.Errorf("%w: chapter titles call: %v", entities.ErrGenerationFailed, err)
	}
	titles, err := g.parser.ParseChapterTitles(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrGenerationFailed, err)
	}
	return titles, nil
}

// ChapterTimestamps is step 2: for each title independently, retrieve the
// most relevant chunks and ask only where the topic begins. Calls across
// titles run concurrently under the configured limit; claims come back in
// title order.
func (g *Generators) ChapterTimestamps(ctx context.Context, info entities.EpisodeInfo, titles []string, index *Index) ([]entities.GeneratedClaim, int, error) {
	system := chapterTimestampSystemPrompt(info.Language)

	type slot struct {
		claim     *entities.GeneratedClaim
		violation bool
	}
	slots := make([]slot, len(titles))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.chapterConcurrency)
	for i, title := range titles {
		eg.Go(func() error {
			retrieved, err := index.Search(egCtx, RetrievalQuery{Text: title, TopK: 2})
			if err != nil || len(retrieved) == 0 {
				if err != nil {
					g.logger.Warn("chapter retrieval failed", zap.String("title", title), zap.Error(err))
				}
				return nil
			}

			raw, err := g.model.ChatJSON(egCtx, system, chapterTimestampUserPrompt(title, retrieved))
			if err != nil {
				g.logger.Warn("chapter timestamp call failed", zap.String("title", title), zap.Error(err))
				return nil
			}
			seconds, err := g.parser.ParseChapterTimestamp(raw)
			if err != nil {
				g.logger.Warn("chapter timestamp unparseable", zap.String("title", title), zap.Error(err))
				return nil
			}

			claim := entities.NewClaim(entities.ClaimKindChapter)
			claim.Chapter = &entities.ChapterClaim{Title: title, ClaimedSeconds: seconds}
			claim.SupportingChunkID = retrieved[0].ID

			rangeStart, rangeEnd := retrieved[0].Start, retrieved[0].End
			for _, rc := range retrieved[1:] {
				if rc.Start < rangeStart {
					rangeStart = rc.Start
				}
				if rc.End > rangeEnd {
					rangeEnd = rc.End
				}
			}
			if err := checkRange(claim, rangeStart, rangeEnd); err != nil {
				g.logger.Warn("chapter claim rejected", zap.String("title", title), zap.Error(err))
				slots[i] = slot{violation: true}
				return nil
			}
			slots[i] = slot{claim: &claim}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var (
		claims     []entities.GeneratedClaim
		violations int
	)
	for _, s := range slots {
		if s.violation {
			violations++
		}
		if s.claim != nil {
			claims = append(claims, *s.claim)
		}
	}
	return claims, violations, nil
}

// ContentWarnings retrieves broadly across the transcript and asks for
// qualitative flags in a single call. Warnings carry no timestamps and never
// enter timestamp verification.
func (g *Generators) ContentWarnings(ctx context.Context, info entities.EpisodeInfo, index *Index) ([]string, error) {
	retrieved, err := index.Search(ctx, RetrievalQuery{Text: warningQuery, TopK: g.topK * 2})
	if err != nil {
		return nil, fmt.Errorf("warning retrieval: %w", err)
	}
	if len(retrieved) == 0 {
		return nil, nil
	}

	raw, err := g.model.ChatJSON(ctx, warningSystemPrompt(info.Language), warningUserPrompt(info, retrieved))
	if err != nil {
		return nil, fmt.Errorf("%w: warning call: %v", entities.ErrGenerationFailed, err)
	}
	warnings, err := g.parser.ParseWarnings(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrGenerationFailed, err)
	}
	return warnings, nil
}
