package content

import (
	"testing"

	"github.com/podflow-team/podflow/internal/domain/entities"
)

// phraseWords builds a transcript with the given phrase planted at startAt
// seconds, surrounded by filler words.
func phraseWords(phrase []string, startAt float64) []entities.TranscriptWord {
	const step = 0.5
	words := make([]entities.TranscriptWord, 0, 600)
	t := 0.0
	i := 0
	for t < startAt {
		words = append(words, entities.TranscriptWord{
			Text: "filler" + string(rune('a'+i%26)), Start: t, End: t + step, Speaker: "A",
		})
		t += step
		i++
	}
	for _, p := range phrase {
		words = append(words, entities.TranscriptWord{Text: p, Start: t, End: t + step, Speaker: "B"})
		t += step
	}
	for j := 0; j < 100; j++ {
		words = append(words, entities.TranscriptWord{
			Text: "trailer" + string(rune('a'+j%26)), Start: t, End: t + step, Speaker: "A",
		})
		t += step
	}
	return words
}

func quoteClaim(text string, claimed float64) entities.GeneratedClaim {
	claim := entities.NewClaim(entities.ClaimKindQuote)
	claim.Quote = &entities.QuoteClaim{Quote: text, ClaimedSeconds: claimed}
	return claim
}

func TestVerifyQuoteTimestampError(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := phraseWords([]string{"hello", "world"}, 125.0)

	verdict := v.Verify(quoteClaim("hello world", 120.0), words)
	if verdict.Status != entities.VerdictTimestampError {
		t.Fatalf("expected TIMESTAMP_ERROR, got %s", verdict.Status)
	}
	if verdict.ActualSeconds != 125.0 {
		t.Errorf("actual = %f, want 125.0", verdict.ActualSeconds)
	}
	if verdict.DeltaSeconds != 5.0 {
		t.Errorf("delta = %f, want 5.0", verdict.DeltaSeconds)
	}
	if verdict.Correction != "00:02:05" {
		t.Errorf("correction = %q, want 00:02:05", verdict.Correction)
	}
}

func TestVerifyQuoteToleranceBoundary(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := phraseWords([]string{"hello", "world"}, 125.0)

	// 4.99s off: inside the strict 5-second tolerance.
	verdict := v.Verify(quoteClaim("hello world", 120.01), words)
	if verdict.Status != entities.VerdictAccurate {
		t.Errorf("delta 4.99 should be ACCURATE, got %s", verdict.Status)
	}

	// 5.01s off: outside.
	verdict = v.Verify(quoteClaim("hello world", 119.99), words)
	if verdict.Status != entities.VerdictTimestampError {
		t.Errorf("delta 5.01 should be TIMESTAMP_ERROR, got %s", verdict.Status)
	}

	// Exactly 5.0 is an error: the tolerance is strict.
	verdict = v.Verify(quoteClaim("hello world", 120.0), words)
	if verdict.Status != entities.VerdictTimestampError {
		t.Errorf("delta 5.0 should be TIMESTAMP_ERROR, got %s", verdict.Status)
	}
}

func TestVerifyQuoteAccurate(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := phraseWords([]string{"hello", "world"}, 125.0)

	verdict := v.Verify(quoteClaim("hello world", 126.0), words)
	if verdict.Status != entities.VerdictAccurate {
		t.Fatalf("expected ACCURATE, got %s", verdict.Status)
	}
	if verdict.Confidence != 1.0 {
		t.Errorf("exact match confidence = %f, want 1.0", verdict.Confidence)
	}
}

func TestVerifyQuoteNotFound(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := phraseWords([]string{"hello", "world"}, 125.0)

	verdict := v.Verify(quoteClaim("this phrase does not exist", 60.0), words)
	if verdict.Status != entities.VerdictQuoteNotFound {
		t.Fatalf("expected QUOTE_NOT_FOUND, got %s", verdict.Status)
	}
	if verdict.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", verdict.Confidence)
	}
}

func TestVerifyQuoteNormalization(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := phraseWords([]string{"Well,", "that's", "the", "whole", "point", "of", "it!"}, 200.0)

	// Case, punctuation and diacritic differences are tolerated.
	verdict := v.Verify(quoteClaim("well thát's the whole point of it", 201.0), words)
	if verdict.Status != entities.VerdictAccurate {
		t.Fatalf("normalized match should be ACCURATE, got %s", verdict.Status)
	}

	// Substantive rewording is not.
	verdict = v.Verify(quoteClaim("actually that misses every point entirely somehow", 201.0), words)
	if verdict.Status != entities.VerdictQuoteNotFound {
		t.Errorf("reworded quote should be QUOTE_NOT_FOUND, got %s", verdict.Status)
	}
}

func TestVerifyQuoteDeterministic(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := phraseWords([]string{"hello", "world"}, 125.0)
	claim := quoteClaim("hello world", 120.0)

	first := v.Verify(claim, words)
	second := v.Verify(claim, words)
	if first != second {
		t.Errorf("verdicts differ for identical inputs:\n%+v\n%+v", first, second)
	}
}

func TestVerifyReelBoundaries(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := syntheticWords(1000, 0.5, 40) // spoken audio covers 0..500s

	claim := entities.NewClaim(entities.ClaimKindReel)
	claim.Reel = &entities.ReelClaim{Title: "clip", StartSeconds: 100, EndSeconds: 160}
	verdict := v.Verify(claim, words)
	if verdict.Status != entities.VerdictAccurate {
		t.Errorf("in-audio reel should be ACCURATE, got %s", verdict.Status)
	}

	// End boundary far past the recording.
	claim.Reel = &entities.ReelClaim{Title: "clip", StartSeconds: 480, EndSeconds: 600}
	verdict = v.Verify(claim, words)
	if verdict.Status != entities.VerdictTimestampError {
		t.Fatalf("out-of-audio reel end should be TIMESTAMP_ERROR, got %s", verdict.Status)
	}
	if verdict.Detail == "" {
		t.Errorf("expected detail naming the failing boundary")
	}
}

func TestVerifyChapterSnapsToAudio(t *testing.T) {
	v := NewVerifier(testPipelineConfig())
	words := syntheticWords(1000, 0.5, 40)

	claim := entities.NewClaim(entities.ClaimKindChapter)
	claim.Chapter = &entities.ChapterClaim{Title: "Intro", ClaimedSeconds: 42.1}
	verdict := v.Verify(claim, words)
	if verdict.Status != entities.VerdictAccurate {
		t.Errorf("in-audio chapter start should be ACCURATE, got %s", verdict.Status)
	}

	claim.Chapter = &entities.ChapterClaim{Title: "Outro", ClaimedSeconds: 900}
	verdict = v.Verify(claim, words)
	if verdict.Status != entities.VerdictTimestampError {
		t.Fatalf("chapter start past the recording should be TIMESTAMP_ERROR, got %s", verdict.Status)
	}
	if verdict.ActualSeconds != words[len(words)-1].Start {
		t.Errorf("correction should snap to last word start, got %f", verdict.ActualSeconds)
	}
}
