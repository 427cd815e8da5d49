package episode

import (
	"fmt"
	"strings"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// MarkdownReport renders the editor-facing artifact for a pipeline result.
// The report mirrors the JSON result; it exists so an editor can review an
// episode without touching the API.
func MarkdownReport(ep *entities.Episode, result *entities.EpisodeContentResult) string {
	var b strings.Builder

	title := "Episode Content Report"
	if ep != nil && ep.Show != "" {
		title = fmt.Sprintf("%s — %s", ep.Show, title)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if ep != nil {
		if ep.Title != "" {
			fmt.Fprintf(&b, "**Episode**: %s\n", ep.Title)
		}
		if ep.Host != "" {
			fmt.Fprintf(&b, "**Host**: %s\n", ep.Host)
		}
		if ep.Guest != "" {
			fmt.Fprintf(&b, "**Guest**: %s\n", ep.Guest)
		}
		b.WriteString("\n")
	}

	v := result.Verification
	b.WriteString("## Verification\n")
	fmt.Fprintf(&b, "- **Verified**: %t\n", v.Verified)
	fmt.Fprintf(&b, "- **Confidence**: %.2f\n", v.Confidence)
	fmt.Fprintf(&b, "- **Iterations**: %d\n", v.Iterations)
	if v.UnresolvedErrors > 0 {
		fmt.Fprintf(&b, "- **Unresolved errors**: %d\n", v.UnresolvedErrors)
	}
	if v.DroppedClaims > 0 {
		fmt.Fprintf(&b, "- **Dropped claims**: %d\n", v.DroppedClaims)
	}
	for _, e := range v.GenerationErrors {
		fmt.Fprintf(&b, "- **Generation error**: %s\n", e)
	}

	b.WriteString("\n## Content Warnings\n")
	if len(result.ContentWarnings) > 0 {
		for _, w := range result.ContentWarnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	} else {
		b.WriteString("No content warnings detected\n")
	}

	b.WriteString("\n## Quotable Moments\n")
	if len(result.QuotableMoments) == 0 {
		b.WriteString("None\n")
	}
	for i, q := range result.QuotableMoments {
		fmt.Fprintf(&b, "\n### Quote %d (%s)\n", i+1, q.Timestamp)
		fmt.Fprintf(&b, "> %s\n", q.Quote)
		if q.Speaker != "" {
			fmt.Fprintf(&b, "- **Speaker**: %s\n", q.Speaker)
		}
		if q.Context != "" {
			fmt.Fprintf(&b, "- **Context**: %s\n", q.Context)
		}
		if q.LowConfidence {
			b.WriteString("- **Low confidence**: timestamp could not be verified within tolerance\n")
		}
	}

	b.WriteString("\n## Reel Suggestions\n")
	if len(result.ReelSuggestions) == 0 {
		b.WriteString("None\n")
	}
	for i, r := range result.ReelSuggestions {
		fmt.Fprintf(&b, "\n### Reel %d: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "- **Time**: %s - %s\n", r.StartTime, r.EndTime)
		if r.Hook != "" {
			fmt.Fprintf(&b, "- **Hook**: %q\n", r.Hook)
		}
		if r.Closing != "" {
			fmt.Fprintf(&b, "- **Closing**: %q\n", r.Closing)
		}
		if r.Description != "" {
			fmt.Fprintf(&b, "- **Why**: %s\n", r.Description)
		}
		if r.EditingInstructions != "" {
			fmt.Fprintf(&b, "- **Editing**: %s\n", r.EditingInstructions)
		}
		if r.LowConfidence {
			b.WriteString("- **Low confidence**: boundaries could not be verified within tolerance\n")
		}
	}

	b.WriteString("\n## Chapter Timestamps\n")
	if len(result.ChapterTimestamps) == 0 {
		b.WriteString("None\n")
	}
	for _, c := range result.ChapterTimestamps {
		fmt.Fprintf(&b, "- %s\n", c.PlatformLine())
	}

	return b.String()
}
