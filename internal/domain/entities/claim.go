package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// ClaimKind identifies the content kind a generated claim belongs to.
type ClaimKind string

const (
	ClaimKindQuote   ClaimKind = "quote"
	ClaimKindReel    ClaimKind = "reel"
	ClaimKindChapter ClaimKind = "chapter"
	ClaimKindWarning ClaimKind = "warning"
)

// QuoteClaim is a quotable moment with a claimed timestamp.
type QuoteClaim struct {
	Quote          string  `json:"quote"`
	ClaimedSeconds float64 `json:"claimed_seconds"`
	Context        string  `json:"context,omitempty"`
	Speaker        string  `json:"speaker,omitempty"`
}

// ReelClaim is a short-form clip suggestion with a claimed time range and the
// descriptive metadata the downstream video editor needs.
type ReelClaim struct {
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	StartSeconds        float64 `json:"start_seconds"`
	EndSeconds          float64 `json:"end_seconds"`
	Hook                string  `json:"hook,omitempty"`
	Closing             string  `json:"closing,omitempty"`
	EditingInstructions string  `json:"editing_instructions,omitempty"`
	ConfidenceLevel     string  `json:"confidence_level,omitempty"`
}

// ChapterClaim is a chapter title plus the timestamp where its topic begins.
// Step 1 of the chapter chain produces the title only; Step 2 fills the
// timestamp from a narrowly retrieved context.
type ChapterClaim struct {
	Title          string  `json:"title"`
	ClaimedSeconds float64 `json:"claimed_seconds"`
}

// WarningClaim is a qualitative content warning; it carries no timestamp and
// never enters timestamp verification.
type WarningClaim struct {
	Warning string `json:"warning"`
}

// GeneratedClaim is the closed union of claims a task generator can produce.
// Exactly one payload pointer is set, matching Kind. Every claim is traceable
// to the chunk that supplied its context; that traceability is what lets the
// verifier and the range check bound hallucination.
type GeneratedClaim struct {
	ID                uuid.UUID     `json:"id"`
	Kind              ClaimKind     `json:"kind"`
	Quote             *QuoteClaim   `json:"quote,omitempty"`
	Reel              *ReelClaim    `json:"reel,omitempty"`
	Chapter           *ChapterClaim `json:"chapter,omitempty"`
	Warning           *WarningClaim `json:"warning,omitempty"`
	SupportingChunkID string        `json:"supporting_chunk_id,omitempty"`
	Iteration         int           `json:"iteration"`
}

// NewClaim creates a claim shell for the given kind.
func NewClaim(kind ClaimKind) GeneratedClaim {
	return GeneratedClaim{ID: uuid.New(), Kind: kind}
}

// Validate checks the fixed required-field set for the claim's kind. Model
// output that fails this never reaches the verifier; the generator records it
// as a generation failure instead.
func (c GeneratedClaim) Validate() error {
	switch c.Kind {
	case ClaimKindQuote:
		if c.Quote == nil {
			return fmt.Errorf("quote claim missing payload")
		}
		if c.Quote.Quote == "" {
			return fmt.Errorf("quote claim missing quote text")
		}
		if c.Quote.ClaimedSeconds < 0 {
			return fmt.Errorf("quote claim has negative timestamp")
		}
	case ClaimKindReel:
		if c.Reel == nil {
			return fmt.Errorf("reel claim missing payload")
		}
		if c.Reel.Title == "" {
			return fmt.Errorf("reel claim missing title")
		}
		if c.Reel.EndSeconds <= c.Reel.StartSeconds {
			return fmt.Errorf("reel claim has empty or inverted range")
		}
	case ClaimKindChapter:
		if c.Chapter == nil {
			return fmt.Errorf("chapter claim missing payload")
		}
		if c.Chapter.Title == "" {
			return fmt.Errorf("chapter claim missing title")
		}
	case ClaimKindWarning:
		if c.Warning == nil || c.Warning.Warning == "" {
			return fmt.Errorf("warning claim missing text")
		}
	default:
		return fmt.Errorf("unknown claim kind %q", c.Kind)
	}
	return nil
}

// ClaimedSeconds returns the claim's primary timestamp. For reels this is the
// range start; warnings have no timestamp and return false.
func (c GeneratedClaim) ClaimedSeconds() (float64, bool) {
	switch c.Kind {
	case ClaimKindQuote:
		if c.Quote != nil {
			return c.Quote.ClaimedSeconds, true
		}
	case ClaimKindReel:
		if c.Reel != nil {
			return c.Reel.StartSeconds, true
		}
	case ClaimKindChapter:
		if c.Chapter != nil {
			return c.Chapter.ClaimedSeconds, true
		}
	}
	return 0, false
}

// ApplyCorrection rewrites the claim's timestamp with a verified value. Used
// by the reflection loop to carry concrete repair feedback into the next
// iteration instead of a generic retry.
func (c *GeneratedClaim) ApplyCorrection(seconds float64) {
	switch c.Kind {
	case ClaimKindQuote:
		if c.Quote != nil {
			c.Quote.ClaimedSeconds = seconds
		}
	case ClaimKindReel:
		if c.Reel != nil {
			width := c.Reel.EndSeconds - c.Reel.StartSeconds
			c.Reel.StartSeconds = seconds
			c.Reel.EndSeconds = seconds + width
		}
	case ClaimKindChapter:
		if c.Chapter != nil {
			c.Chapter.ClaimedSeconds = seconds
		}
	}
}
