package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/pkg/config"
)

// Critic aggregates verification verdicts into a pass/fail critique with
// concrete repair actions. Feedback always carries the corrected value when
// verification found one; generic retry instructions are not representable.
type Critic struct {
	approvalThreshold float64
	tolerance         float64
}

// NewCritic creates a critic from pipeline config.
func NewCritic(cfg *config.PipelineConfig) *Critic {
	threshold := cfg.ApprovalThreshold
	if threshold <= 0 {
		threshold = 0.90
	}
	tolerance := cfg.TimestampTolerance
	if tolerance <= 0 {
		tolerance = 5.0
	}
	return &Critic{approvalThreshold: threshold, tolerance: tolerance}
}

// verdict weights per severity: a missing quote counts far worse than a small
// timestamp deviation.
const (
	weightAccurate = 1.0
	weightMinor    = 0.5
	weightMajor    = 0.25
	weightCritical = 0.0
)

// Critique scores one iteration's claims. Repair actions preserve claim order.
func (c *Critic) Critique(claims []entities.GeneratedClaim, verdicts map[uuid.UUID]entities.VerificationVerdict) entities.Critique {
	if len(claims) == 0 {
		// Nothing claimed, nothing wrong. Zero-claim sub-tasks are approved.
		return entities.Critique{OverallConfidence: 1, Approved: true}
	}

	var total float64
	var errs []entities.RepairAction
	for _, claim := range claims {
		verdict, ok := verdicts[claim.ID]
		if !ok {
			// Unverified claims (warnings) count as accurate.
			total += weightAccurate
			continue
		}

		switch verdict.Status {
		case entities.VerdictAccurate:
			total += weightAccurate
		case entities.VerdictTimestampError:
			severity := entities.SeverityMinor
			weight := weightMinor
			if verdict.DeltaSeconds > 2*c.tolerance {
				severity = entities.SeverityMajor
				weight = weightMajor
			}
			total += weight
			actual := verdict.ActualSeconds
			errs = append(errs, entities.RepairAction{
				ClaimID:          claim.ID,
				Severity:         severity,
				Instruction:      fmt.Sprintf("use actual timestamp %s instead of claimed %s", entities.FormatTimecode(actual), entities.FormatTimecode(verdict.ClaimedSeconds)),
				CorrectedSeconds: &actual,
			})
		case entities.VerdictQuoteNotFound:
			total += weightCritical
			errs = append(errs, entities.RepairAction{
				ClaimID:     claim.ID,
				Severity:    entities.SeverityCritical,
				Instruction: "quoted text could not be located in the transcript; remove the claim",
				Drop:        true,
			})
		}
	}

	confidence := total / float64(len(claims))
	return entities.Critique{
		OverallConfidence: confidence,
		Errors:            errs,
		Approved:          confidence >= c.approvalThreshold,
	}
}

// GenerateFunc produces one content kind's claims for an iteration. On the
// first iteration repairs is empty; afterwards it carries the prior
// critique's repair actions.
type GenerateFunc func(ctx context.Context, iteration int, repairs []entities.RepairAction) ([]entities.GeneratedClaim, error)

// VerifyFunc checks one claim against ground truth.
type VerifyFunc func(claim entities.GeneratedClaim) entities.VerificationVerdict

// loopState is a state of the reflection machine.
type loopState int

const (
	stateGenerating loopState = iota
	stateVerifying
	stateRefining
	stateApproved
	stateMaxIterations
)

// ReflectionOutcome is the best attempt the loop produced, with the metadata
// consumers need to decide whether to trust it.
type ReflectionOutcome struct {
	Claims     []entities.GeneratedClaim
	Verdicts   map[uuid.UUID]entities.VerificationVerdict
	Critique   entities.Critique
	Iterations int
	Approved   bool
}

// ReflectionController drives the bounded generate -> verify -> critique ->
// refine loop for one content kind. On reaching the iteration cap without
// approval it returns the best-confidence attempt rather than failing.
type ReflectionController struct {
	critic        *Critic
	maxIterations int
	logger        *zap.Logger
}

// NewReflectionController creates a controller from pipeline config.
func NewReflectionController(critic *Critic, cfg *config.PipelineConfig, logger *zap.Logger) *ReflectionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	max := cfg.MaxIterations
	if max <= 0 {
		max = 3
	}
	return &ReflectionController{critic: critic, maxIterations: max, logger: logger}
}

// Run executes the reflection state machine. The only returned errors are
// context cancellation and a first-iteration generation failure; later
// iterations fall back to the best prior attempt.
func (rc *ReflectionController) Run(ctx context.Context, kind entities.ClaimKind, generate GenerateFunc, verify VerifyFunc) (*ReflectionOutcome, error) {
	var (
		state     = stateGenerating
		iteration int
		repairs   []entities.RepairAction
		claims    []entities.GeneratedClaim
		verdicts  map[uuid.UUID]entities.VerificationVerdict
		critique  entities.Critique
		best      *ReflectionOutcome
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch state {
		case stateGenerating:
			iteration++
			generated, err := generate(ctx, iteration, repairs)
			if err != nil {
				if best != nil {
					rc.logger.Warn("regeneration failed, keeping best prior attempt",
						zap.String("kind", string(kind)), zap.Int("iteration", iteration), zap.Error(err))
					best.Iterations = iteration
					return best, nil
				}
				return nil, err
			}
			claims = generated
			state = stateVerifying

		case stateVerifying:
			verdicts = make(map[uuid.UUID]entities.VerificationVerdict, len(claims))
			for _, claim := range claims {
				verdicts[claim.ID] = verify(claim)
			}
			critique = rc.critic.Critique(claims, verdicts)

			if best == nil || critique.OverallConfidence > best.Critique.OverallConfidence {
				best = &ReflectionOutcome{
					Claims:   claims,
					Verdicts: verdicts,
					Critique: critique,
				}
			}

			switch {
			case critique.Approved:
				state = stateApproved
			case iteration >= rc.maxIterations:
				state = stateMaxIterations
			default:
				state = stateRefining
			}

		case stateRefining:
			repairs = critique.Errors
			rc.logger.Debug("refining claims",
				zap.String("kind", string(kind)),
				zap.Int("iteration", iteration),
				zap.Int("repairs", len(repairs)),
				zap.Float64("confidence", critique.OverallConfidence))
			state = stateGenerating

		case stateApproved:
			best.Claims = claims
			best.Verdicts = verdicts
			best.Critique = critique
			best.Iterations = iteration
			best.Approved = true
			return best, nil

		case stateMaxIterations:
			rc.logger.Warn("iteration cap reached without approval",
				zap.String("kind", string(kind)),
				zap.Int("iterations", iteration),
				zap.Float64("best_confidence", best.Critique.OverallConfidence))
			best.Iterations = iteration
			best.Approved = false
			return best, nil
		}
	}
}

// ApplyRepairs rewrites claims per the repair actions: corrected timestamps
// are applied in place and unrepairable claims are dropped. It returns the
// surviving claims and the drop count. Generators use this to turn a critique
// into the next iteration without another model round-trip.
func ApplyRepairs(claims []entities.GeneratedClaim, repairs []entities.RepairAction, iteration int) ([]entities.GeneratedClaim, int) {
	byClaim := make(map[uuid.UUID]entities.RepairAction, len(repairs))
	for _, r := range repairs {
		byClaim[r.ClaimID] = r
	}

	out := make([]entities.GeneratedClaim, 0, len(claims))
	dropped := 0
	for _, claim := range claims {
		repair, ok := byClaim[claim.ID]
		if !ok {
			claim.Iteration = iteration
			out = append(out, claim)
			continue
		}
		if repair.Drop {
			dropped++
			continue
		}
		if repair.CorrectedSeconds != nil {
			claim.ApplyCorrection(*repair.CorrectedSeconds)
		}
		claim.Iteration = iteration
		out = append(out, claim)
	}
	return out, dropped
}
