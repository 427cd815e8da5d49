package entities

import "github.com/google/uuid"

// VerdictStatus classifies the outcome of verifying one claim.
type VerdictStatus string

const (
	VerdictAccurate       VerdictStatus = "ACCURATE"
	VerdictTimestampError VerdictStatus = "TIMESTAMP_ERROR"
	VerdictQuoteNotFound  VerdictStatus = "QUOTE_NOT_FOUND"
)

// VerificationVerdict is the verifier's judgement of one claim against the
// word-level ground truth. It is a pure value: same claim and same words
// always produce the same verdict.
type VerificationVerdict struct {
	ClaimID        uuid.UUID     `json:"claim_id"`
	Status         VerdictStatus `json:"status"`
	ClaimedSeconds float64       `json:"claimed_seconds"`
	ActualSeconds  float64       `json:"actual_seconds,omitempty"`
	DeltaSeconds   float64       `json:"delta_seconds,omitempty"`
	Correction     string        `json:"correction,omitempty"` // HH:MM:SS of the actual position, when found
	Confidence     float64       `json:"confidence"`
	Detail         string        `json:"detail,omitempty"` // e.g. which reel boundary failed
}

// Accurate reports whether the claim passed verification.
func (v VerificationVerdict) Accurate() bool {
	return v.Status == VerdictAccurate
}
