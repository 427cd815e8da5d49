package content

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

func TestCritiqueZeroClaims(t *testing.T) {
	c := NewCritic(testPipelineConfig())
	critique := c.Critique(nil, nil)
	if !critique.Approved {
		t.Errorf("zero-claim sub-task should be approved")
	}
	if critique.OverallConfidence != 1 {
		t.Errorf("confidence = %f, want 1", critique.OverallConfidence)
	}
}

func TestCritiqueAllAccurate(t *testing.T) {
	c := NewCritic(testPipelineConfig())
	claims := []entities.GeneratedClaim{quoteClaim("a", 10), quoteClaim("b", 20)}
	verdicts := map[uuid.UUID]entities.VerificationVerdict{
		claims[0].ID: {ClaimID: claims[0].ID, Status: entities.VerdictAccurate},
		claims[1].ID: {ClaimID: claims[1].ID, Status: entities.VerdictAccurate},
	}
	critique := c.Critique(claims, verdicts)
	if !critique.Approved || critique.OverallConfidence != 1 {
		t.Errorf("all-accurate critique = %+v, want approved at confidence 1", critique)
	}
	if len(critique.Errors) != 0 {
		t.Errorf("expected no repair actions, got %d", len(critique.Errors))
	}
}

func TestCritiqueRepairActionsCarryCorrections(t *testing.T) {
	c := NewCritic(testPipelineConfig())
	claims := []entities.GeneratedClaim{quoteClaim("a", 120), quoteClaim("b", 20)}
	verdicts := map[uuid.UUID]entities.VerificationVerdict{
		claims[0].ID: {
			ClaimID:        claims[0].ID,
			Status:         entities.VerdictTimestampError,
			ClaimedSeconds: 120,
			ActualSeconds:  125,
			DeltaSeconds:   5,
		},
		claims[1].ID: {ClaimID: claims[1].ID, Status: entities.VerdictQuoteNotFound},
	}

	critique := c.Critique(claims, verdicts)
	if critique.Approved {
		t.Errorf("critique with errors should not be approved")
	}
	if len(critique.Errors) != 2 {
		t.Fatalf("expected 2 repair actions, got %d", len(critique.Errors))
	}

	repair := critique.Errors[0]
	if repair.CorrectedSeconds == nil || *repair.CorrectedSeconds != 125 {
		t.Errorf("timestamp repair must carry the concrete corrected value, got %+v", repair)
	}
	if repair.Severity != entities.SeverityMinor {
		t.Errorf("5s delta should be minor severity, got %s", repair.Severity)
	}

	drop := critique.Errors[1]
	if !drop.Drop {
		t.Errorf("quote-not-found repair must request a drop")
	}
	if drop.Severity != entities.SeverityCritical {
		t.Errorf("quote-not-found should be critical severity, got %s", drop.Severity)
	}
}

func TestCritiqueSeverityWeighting(t *testing.T) {
	c := NewCritic(testPipelineConfig())
	claims := []entities.GeneratedClaim{quoteClaim("a", 10), quoteClaim("b", 20)}

	// A small timestamp error weighs less against confidence than a missing
	// quote.
	minorVerdicts := map[uuid.UUID]entities.VerificationVerdict{
		claims[0].ID: {ClaimID: claims[0].ID, Status: entities.VerdictAccurate},
		claims[1].ID: {ClaimID: claims[1].ID, Status: entities.VerdictTimestampError, ActualSeconds: 23, DeltaSeconds: 3},
	}
	criticalVerdicts := map[uuid.UUID]entities.VerificationVerdict{
		claims[0].ID: {ClaimID: claims[0].ID, Status: entities.VerdictAccurate},
		claims[1].ID: {ClaimID: claims[1].ID, Status: entities.VerdictQuoteNotFound},
	}

	minor := c.Critique(claims, minorVerdicts)
	critical := c.Critique(claims, criticalVerdicts)
	if minor.OverallConfidence <= critical.OverallConfidence {
		t.Errorf("minor error confidence %f should exceed critical error confidence %f",
			minor.OverallConfidence, critical.OverallConfidence)
	}
}

func TestApplyRepairs(t *testing.T) {
	claims := []entities.GeneratedClaim{quoteClaim("a", 120), quoteClaim("b", 20), quoteClaim("c", 30)}
	corrected := 125.0
	repairs := []entities.RepairAction{
		{ClaimID: claims[0].ID, CorrectedSeconds: &corrected},
		{ClaimID: claims[1].ID, Drop: true},
	}

	next, dropped := ApplyRepairs(claims, repairs, 2)
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(next) != 2 {
		t.Fatalf("expected 2 surviving claims, got %d", len(next))
	}
	if next[0].Quote.ClaimedSeconds != 125.0 {
		t.Errorf("correction not applied: %f", next[0].Quote.ClaimedSeconds)
	}
	if next[0].Iteration != 2 || next[1].Iteration != 2 {
		t.Errorf("surviving claims should carry the new iteration number")
	}
	if next[1].ID != claims[2].ID {
		t.Errorf("untouched claim should survive unchanged")
	}
}

func TestReflectionConvergence(t *testing.T) {
	cfg := testPipelineConfig()
	rc := NewReflectionController(NewCritic(cfg), cfg, nil)

	// One claim with a known wrong timestamp; the verifier always reports the
	// correct value. A generator that applies the repair exactly must reach
	// approval within 2 iterations.
	const actual = 300.0
	var prior []entities.GeneratedClaim
	generate := func(_ context.Context, iteration int, repairs []entities.RepairAction) ([]entities.GeneratedClaim, error) {
		if iteration == 1 {
			prior = []entities.GeneratedClaim{quoteClaim("known quote", 100.0)}
			return prior, nil
		}
		next, _ := ApplyRepairs(prior, repairs, iteration)
		prior = next
		return next, nil
	}
	verify := func(claim entities.GeneratedClaim) entities.VerificationVerdict {
		v := entities.VerificationVerdict{
			ClaimID:        claim.ID,
			ClaimedSeconds: claim.Quote.ClaimedSeconds,
			ActualSeconds:  actual,
			DeltaSeconds:   claim.Quote.ClaimedSeconds - actual,
		}
		if v.DeltaSeconds < 0 {
			v.DeltaSeconds = -v.DeltaSeconds
		}
		if v.DeltaSeconds < 5 {
			v.Status = entities.VerdictAccurate
			v.Confidence = 1
		} else {
			v.Status = entities.VerdictTimestampError
		}
		return v
	}

	outcome, err := rc.Run(context.Background(), entities.ClaimKindQuote, generate, verify)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Approved {
		t.Fatalf("expected approval, critique %+v", outcome.Critique)
	}
	if outcome.Iterations > 2 {
		t.Errorf("converged in %d iterations, want <= 2", outcome.Iterations)
	}
	if outcome.Claims[0].Quote.ClaimedSeconds != actual {
		t.Errorf("final timestamp = %f, want %f", outcome.Claims[0].Quote.ClaimedSeconds, actual)
	}
}

func TestReflectionIterationCap(t *testing.T) {
	cfg := testPipelineConfig()
	rc := NewReflectionController(NewCritic(cfg), cfg, nil)

	generations := 0
	generate := func(_ context.Context, _ int, _ []entities.RepairAction) ([]entities.GeneratedClaim, error) {
		generations++
		// Never incorporates feedback: same wrong claim every time.
		return []entities.GeneratedClaim{quoteClaim("stubborn", 100.0)}, nil
	}
	verify := func(claim entities.GeneratedClaim) entities.VerificationVerdict {
		return entities.VerificationVerdict{
			ClaimID:        claim.ID,
			Status:         entities.VerdictTimestampError,
			ClaimedSeconds: 100,
			ActualSeconds:  500,
			DeltaSeconds:   400,
		}
	}

	outcome, err := rc.Run(context.Background(), entities.ClaimKindQuote, generate, verify)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Approved {
		t.Errorf("stubborn generator should never be approved")
	}
	if outcome.Iterations != 3 {
		t.Errorf("iterations = %d, want exactly 3", outcome.Iterations)
	}
	if generations != 3 {
		t.Errorf("generator called %d times, want 3", generations)
	}
}

func TestReflectionPlantedQuoteScenario(t *testing.T) {
	cfg := testPipelineConfig()
	rc := NewReflectionController(NewCritic(cfg), cfg, nil)
	verifier := NewVerifier(cfg)

	// 40-minute transcript with a known quote planted at 32:15 (1935s); the
	// first generation (incorrectly) claims 05:23 (323s).
	phrase := []string{"the", "most", "surprising", "lesson", "completely", "changed", "my", "mind"}
	words := phraseWords(phrase, 1935.0)

	var prior []entities.GeneratedClaim
	generate := func(_ context.Context, iteration int, repairs []entities.RepairAction) ([]entities.GeneratedClaim, error) {
		if iteration == 1 {
			prior = []entities.GeneratedClaim{quoteClaim("the most surprising lesson completely changed my mind", 323.0)}
			return prior, nil
		}
		next, _ := ApplyRepairs(prior, repairs, iteration)
		prior = next
		return next, nil
	}
	verify := func(claim entities.GeneratedClaim) entities.VerificationVerdict {
		return verifier.Verify(claim, words)
	}

	outcome, err := rc.Run(context.Background(), entities.ClaimKindQuote, generate, verify)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Approved {
		t.Fatalf("expected approval after reflection, critique %+v", outcome.Critique)
	}
	if outcome.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", outcome.Iterations)
	}
	got := outcome.Claims[0].Quote.ClaimedSeconds
	if got != 1935.0 {
		t.Errorf("final timestamp = %f, want 1935.0", got)
	}
	if entities.FormatTimecode(got) != "00:32:15" {
		t.Errorf("final timecode = %s, want 00:32:15", entities.FormatTimecode(got))
	}
}

func TestReflectionCancellation(t *testing.T) {
	cfg := testPipelineConfig()
	rc := NewReflectionController(NewCritic(cfg), cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	generate := func(_ context.Context, _ int, _ []entities.RepairAction) ([]entities.GeneratedClaim, error) {
		return nil, nil
	}
	verify := func(claim entities.GeneratedClaim) entities.VerificationVerdict {
		return entities.VerificationVerdict{ClaimID: claim.ID, Status: entities.VerdictAccurate}
	}

	if _, err := rc.Run(ctx, entities.ClaimKindQuote, generate, verify); err == nil {
		t.Fatal("expected context error from cancelled run")
	}
}
