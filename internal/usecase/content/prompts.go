package content

import (
	"fmt"
	"strings"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// Retrieval queries per content kind. Each generator retrieves against one of
// these instead of ever re-sending the full transcript.
const (
	quoteQuery   = "impactful controversial surprising memorable statement"
	reelQuery    = "engaging emotional dramatic high-energy segment"
	warningQuery = "inappropriate sensitive explicit content strong language"
)

// languageInstruction tells the model which language to respond in. Hebrew
// gets an explicit right-to-left note because models otherwise drift into
// English for structured output.
func languageInstruction(language string) string {
	switch strings.ToLower(language) {
	case "", "en":
		return "Respond in English."
	case "he":
		return "Respond in Hebrew. Keep all generated titles, quotes and descriptions in Hebrew, even though the JSON keys stay in English."
	default:
		return fmt.Sprintf("Respond in the episode language (%s). JSON keys stay in English.", language)
	}
}

func episodeContext(info entities.EpisodeInfo) string {
	var b strings.Builder
	if info.Show != "" {
		fmt.Fprintf(&b, "Show: %s\n", info.Show)
	}
	if info.EpisodeNumber > 0 {
		fmt.Fprintf(&b, "Episode: %d\n", info.EpisodeNumber)
	}
	if info.Host != "" {
		fmt.Fprintf(&b, "Host: %s\n", info.Host)
	}
	if info.Guest != "" {
		fmt.Fprintf(&b, "Guest: %s\n", info.Guest)
	}
	return b.String()
}

func quoteSystemPrompt(language string) string {
	return `You are a podcast post-production assistant. You find quotable moments: short, impactful statements that stand alone out of context.
You are given one transcript segment with its time range. Pick at most ONE quote from it, verbatim as spoken.
The timestamp MUST lie inside the segment's time range. If nothing in the segment is quotable, return an empty quote.
Return a JSON object: {"quote": "...", "timestamp": "HH:MM:SS", "context": "...", "speaker": "..."}. ` + languageInstruction(language)
}

func quoteUserPrompt(info entities.EpisodeInfo, chunk entities.TranscriptChunk) string {
	return fmt.Sprintf("%sSegment time range: %s - %s\n\nSegment:\n%s",
		episodeContext(info),
		entities.FormatTimecode(chunk.Start), entities.FormatTimecode(chunk.End),
		chunk.Text)
}

func reelSystemPrompt(language string) string {
	return `You are a podcast post-production assistant preparing short-form video reels. You are given one transcript segment with its time range.
Suggest at most ONE reel clip from it: a 20-90 second range that works as a standalone vertical video.
Both start_time and end_time MUST lie inside the segment's time range. If the segment has no reel-worthy moment, return an empty title.
Return a JSON object: {"title": "...", "description": "...", "start_time": "HH:MM:SS", "end_time": "HH:MM:SS", "hook": "...", "closing": "...", "editing_instructions": "...", "confidence_level": "high|medium|low"}. ` + languageInstruction(language)
}

func reelUserPrompt(info entities.EpisodeInfo, chunk entities.TranscriptChunk) string {
	return fmt.Sprintf("%sSegment time range: %s - %s\n\nSegment:\n%s",
		episodeContext(info),
		entities.FormatTimecode(chunk.Start), entities.FormatTimecode(chunk.End),
		chunk.Text)
}

// chapterTitlesSystemPrompt drives step 1 of the chapter chain: topic
// identification only. It deliberately asks for NO timestamps; temporal
// localization happens per-title in step 2 against a reduced context.
func chapterTitlesSystemPrompt(language string) string {
	return `You are a podcast post-production assistant. Read the full transcript below and produce an ordered list of 5-10 chapter titles covering the episode's topics in the order they are discussed.
Do NOT include timestamps. Titles only.
Return a JSON object: {"titles": ["...", "..."]}. ` + languageInstruction(language)
}

func chapterTitlesUserPrompt(info entities.EpisodeInfo, formattedTranscript string) string {
	return fmt.Sprintf("%s\nTranscript:\n%s", episodeContext(info), formattedTranscript)
}

func chapterTimestampSystemPrompt(language string) string {
	return `You are a podcast post-production assistant. You are given a chapter title and the transcript segment(s) where its topic is discussed.
Answer one question only: at what point does this chapter's topic begin?
The timestamp MUST lie inside the provided segments' time range.
Return a JSON object: {"timestamp": "HH:MM:SS"}. ` + languageInstruction(language)
}

func chapterTimestampUserPrompt(title string, retrieved []RetrievedChunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chapter title: %s\n\nSegments:\n", title)
	for _, rc := range retrieved {
		fmt.Fprintf(&b, "[%s - %s]\n%s\n\n",
			entities.FormatTimecode(rc.Start), entities.FormatTimecode(rc.End), rc.Text)
	}
	return b.String()
}

func warningSystemPrompt(language string) string {
	return `You are a podcast post-production assistant. Review the transcript segments for content an editor should flag before publishing: strong language, graphic descriptions, sensitive personal claims, legal or medical advice, potentially defamatory statements.
Return qualitative flags only, no timestamps. An empty list is the normal outcome for most episodes.
Return a JSON object: {"warnings": ["...", "..."]}. ` + languageInstruction(language)
}

func warningUserPrompt(info entities.EpisodeInfo, retrieved []RetrievedChunk) string {
	var b strings.Builder
	b.WriteString(episodeContext(info))
	b.WriteString("\nSegments:\n")
	for _, rc := range retrieved {
		fmt.Fprintf(&b, "%s\n\n", rc.Text)
	}
	return b.String()
}
