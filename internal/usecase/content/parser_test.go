package content

import (
	"testing"
)

func TestParseQuoteTimestampForms(t *testing.T) {
	p := NewParser()

	// Numeric seconds.
	quote, err := p.ParseQuote(`{"quote": "hello", "timestamp": 125.5}`)
	if err != nil {
		t.Fatalf("ParseQuote failed: %v", err)
	}
	if quote.ClaimedSeconds != 125.5 {
		t.Errorf("claimed = %f, want 125.5", quote.ClaimedSeconds)
	}

	// HH:MM:SS string.
	quote, err = p.ParseQuote(`{"quote": "hello", "timestamp": "01:02:03"}`)
	if err != nil {
		t.Fatalf("ParseQuote failed: %v", err)
	}
	if quote.ClaimedSeconds != 3723 {
		t.Errorf("claimed = %f, want 3723", quote.ClaimedSeconds)
	}

	// MM:SS string.
	quote, err = p.ParseQuote(`{"quote": "hello", "timestamp": "32:15"}`)
	if err != nil {
		t.Fatalf("ParseQuote failed: %v", err)
	}
	if quote.ClaimedSeconds != 1935 {
		t.Errorf("claimed = %f, want 1935", quote.ClaimedSeconds)
	}
}

func TestParseQuoteEmptyMeansNoClaim(t *testing.T) {
	p := NewParser()
	quote, err := p.ParseQuote(`{"quote": "", "timestamp": 0}`)
	if err != nil {
		t.Fatalf("ParseQuote failed: %v", err)
	}
	if quote != nil {
		t.Errorf("empty quote should yield nil claim, got %+v", quote)
	}
}

func TestParseQuoteMarkdownFences(t *testing.T) {
	p := NewParser()
	raw := "```json\n{\"quote\": \"fenced\", \"timestamp\": 10}\n```"
	quote, err := p.ParseQuote(raw)
	if err != nil {
		t.Fatalf("ParseQuote failed: %v", err)
	}
	if quote.Quote != "fenced" {
		t.Errorf("quote = %q, want fenced", quote.Quote)
	}
}

func TestParseQuoteMalformed(t *testing.T) {
	p := NewParser()
	if _, err := p.ParseQuote("I could not find a quote, sorry!"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestParseReel(t *testing.T) {
	p := NewParser()
	reel, err := p.ParseReel(`{
		"title": "The pivot story",
		"description": "Guest explains the pivot",
		"start_time": "00:10:00",
		"end_time": "00:10:45",
		"hook": "We almost went bankrupt",
		"confidence_level": "high"
	}`)
	if err != nil {
		t.Fatalf("ParseReel failed: %v", err)
	}
	if reel.StartSeconds != 600 || reel.EndSeconds != 645 {
		t.Errorf("range = [%f,%f], want [600,645]", reel.StartSeconds, reel.EndSeconds)
	}
	if reel.ConfidenceLevel != "high" {
		t.Errorf("confidence_level = %q, want high", reel.ConfidenceLevel)
	}
}

func TestParseChapterTitles(t *testing.T) {
	p := NewParser()
	titles, err := p.ParseChapterTitles(`{"titles": ["Intro", "", "  The main story  ", "Wrap-up"]}`)
	if err != nil {
		t.Fatalf("ParseChapterTitles failed: %v", err)
	}
	want := []string{"Intro", "The main story", "Wrap-up"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("title %d = %q, want %q", i, titles[i], want[i])
		}
	}

	if _, err := p.ParseChapterTitles(`{"titles": []}`); err == nil {
		t.Error("expected error for empty title list")
	}
}

func TestParseWarningsEmptyListIsValid(t *testing.T) {
	p := NewParser()
	warnings, err := p.ParseWarnings(`{"warnings": []}`)
	if err != nil {
		t.Fatalf("ParseWarnings failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want empty", warnings)
	}
}
