package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// Parser handles parsing and validation of language-model JSON responses.
// Malformed output becomes a parse error at the generator boundary; it never
// reaches the verifier.
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// timecodeSeconds accepts both a JSON number of seconds and a "HH:MM:SS"
// string. Models alternate between the two no matter what the prompt asks for.
type timecodeSeconds float64

func (t *timecodeSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*t = 0
			return nil
		}
		seconds, err := entities.ParseTimecode(s)
		if err != nil {
			return err
		}
		*t = timecodeSeconds(seconds)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = timecodeSeconds(f)
	return nil
}

type quoteResponse struct {
	Quote     string          `json:"quote"`
	Timestamp timecodeSeconds `json:"timestamp"`
	Context   string          `json:"context"`
	Speaker   string          `json:"speaker"`
}

// ParseQuote parses a quotable-moment response. A response with an empty
// quote means the model found nothing in the chunk; that is a nil claim, not
// an error.
func (p *Parser) ParseQuote(raw string) (*entities.QuoteClaim, error) {
	raw = extractJSON(raw)

	var resp quoteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if strings.TrimSpace(resp.Quote) == "" {
		return nil, nil
	}
	return &entities.QuoteClaim{
		Quote:          strings.TrimSpace(resp.Quote),
		ClaimedSeconds: float64(resp.Timestamp),
		Context:        resp.Context,
		Speaker:        resp.Speaker,
	}, nil
}

type reelResponse struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	StartTime           timecodeSeconds `json:"start_time"`
	EndTime             timecodeSeconds `json:"end_time"`
	Hook                string          `json:"hook"`
	Closing             string          `json:"closing"`
	EditingInstructions string          `json:"editing_instructions"`
	ConfidenceLevel     string          `json:"confidence_level"`
}

// ParseReel parses a reel-suggestion response. An empty title means no
// suggestion for this chunk.
func (p *Parser) ParseReel(raw string) (*entities.ReelClaim, error) {
	raw = extractJSON(raw)

	var resp reelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse reel response: %w", err)
	}
	if strings.TrimSpace(resp.Title) == "" {
		return nil, nil
	}
	return &entities.ReelClaim{
		Title:               strings.TrimSpace(resp.Title),
		Description:         resp.Description,
		StartSeconds:        float64(resp.StartTime),
		EndSeconds:          float64(resp.EndTime),
		Hook:                resp.Hook,
		Closing:             resp.Closing,
		EditingInstructions: resp.EditingInstructions,
		ConfidenceLevel:     resp.ConfidenceLevel,
	}, nil
}

type chapterTitlesResponse struct {
	Titles []string `json:"titles"`
}

// ParseChapterTitles parses the step-1 chapter response: ordered titles, no
// timestamps.
func (p *Parser) ParseChapterTitles(raw string) ([]string, error) {
	raw = extractJSON(raw)

	var resp chapterTitlesResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse chapter titles response: %w", err)
	}

	titles := make([]string, 0, len(resp.Titles))
	for _, t := range resp.Titles {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("chapter titles response contained no titles")
	}
	return titles, nil
}

type chapterTimestampResponse struct {
	Timestamp timecodeSeconds `json:"timestamp"`
}

// ParseChapterTimestamp parses the step-2 response: the single point where a
// chapter's topic begins.
func (p *Parser) ParseChapterTimestamp(raw string) (float64, error) {
	raw = extractJSON(raw)

	var resp chapterTimestampResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return 0, fmt.Errorf("failed to parse chapter timestamp response: %w", err)
	}
	return float64(resp.Timestamp), nil
}

type warningsResponse struct {
	Warnings []string `json:"warnings"`
}

// ParseWarnings parses a content-warning response. An empty list is a valid
// outcome: most episodes have nothing to flag.
func (p *Parser) ParseWarnings(raw string) ([]string, error) {
	raw = extractJSON(raw)

	var resp warningsResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse warnings response: %w", err)
	}

	warnings := make([]string, 0, len(resp.Warnings))
	for _, w := range resp.Warnings {
		if w = strings.TrimSpace(w); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
