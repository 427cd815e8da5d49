package entities

import "github.com/google/uuid"

// RepairSeverity orders verification failures by how much they should weigh
// against the attempt's confidence.
type RepairSeverity string

const (
	SeverityMinor    RepairSeverity = "minor"    // timestamp off within 2x tolerance
	SeverityMajor    RepairSeverity = "major"    // timestamp substantially wrong
	SeverityCritical RepairSeverity = "critical" // quote not present in the transcript
)

// RepairAction tells the next iteration exactly how to fix one claim. When
// verification located the real position, CorrectedSeconds carries it; generic
// "try again" feedback is deliberately not representable here.
type RepairAction struct {
	ClaimID          uuid.UUID      `json:"claim_id"`
	Severity         RepairSeverity `json:"severity"`
	Instruction      string         `json:"instruction"`
	CorrectedSeconds *float64       `json:"corrected_seconds,omitempty"`
	Drop             bool           `json:"drop,omitempty"` // claim cannot be repaired, remove it
}

// Critique aggregates one iteration's verdicts into a pass/fail decision plus
// the ordered repair actions for a refinement pass.
type Critique struct {
	OverallConfidence float64        `json:"overall_confidence"`
	Errors            []RepairAction `json:"errors,omitempty"`
	Approved          bool           `json:"approved"`
}
