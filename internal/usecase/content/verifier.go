package content

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/pkg/config"
)

// Verifier checks generated claims against the word-level ground truth. It is
// a pure function of its inputs: no side effects, deterministic for identical
// claim and word sequence. The rest of the pipeline is judged against it.
type Verifier struct {
	tolerance      float64
	quoteThreshold float64
}

// NewVerifier creates a verifier from pipeline config.
func NewVerifier(cfg *config.PipelineConfig) *Verifier {
	tolerance := cfg.TimestampTolerance
	if tolerance <= 0 {
		tolerance = 5.0
	}
	threshold := cfg.QuoteMatchThreshold
	if threshold <= 0 {
		threshold = 0.85
	}
	return &Verifier{tolerance: tolerance, quoteThreshold: threshold}
}

// Tolerance returns the timestamp tolerance in seconds.
func (v *Verifier) Tolerance() float64 {
	return v.tolerance
}

// Verify produces a verdict for one claim.
func (v *Verifier) Verify(claim entities.GeneratedClaim, words []entities.TranscriptWord) entities.VerificationVerdict {
	switch claim.Kind {
	case entities.ClaimKindQuote:
		return v.verifyQuote(claim, words)
	case entities.ClaimKindReel:
		return v.verifyReel(claim, words)
	case entities.ClaimKindChapter:
		return v.verifyChapter(claim, words)
	default:
		// Warnings carry no timestamp and never enter verification.
		return entities.VerificationVerdict{
			ClaimID:    claim.ID,
			Status:     entities.VerdictAccurate,
			Confidence: 1,
		}
	}
}

func (v *Verifier) verifyQuote(claim entities.GeneratedClaim, words []entities.TranscriptWord) entities.VerificationVerdict {
	verdict := entities.VerificationVerdict{
		ClaimID:        claim.ID,
		ClaimedSeconds: claim.Quote.ClaimedSeconds,
	}

	claimTokens := normalizeTokens(claim.Quote.Quote)
	if len(claimTokens) == 0 {
		verdict.Status = entities.VerdictQuoteNotFound
		return verdict
	}

	indexed := normalizeWords(words)
	pos, similarity := bestPhraseMatch(claimTokens, indexed)
	if pos < 0 || similarity < v.quoteThreshold {
		verdict.Status = entities.VerdictQuoteNotFound
		verdict.Confidence = 0
		return verdict
	}

	actual := words[indexed[pos].wordIdx].Start
	delta := math.Abs(claim.Quote.ClaimedSeconds - actual)

	verdict.ActualSeconds = actual
	verdict.DeltaSeconds = delta
	verdict.Confidence = similarity
	if delta < v.tolerance {
		verdict.Status = entities.VerdictAccurate
	} else {
		verdict.Status = entities.VerdictTimestampError
		verdict.Correction = entities.FormatTimecode(actual)
	}
	return verdict
}

func (v *Verifier) verifyReel(claim entities.GeneratedClaim, words []entities.TranscriptWord) entities.VerificationVerdict {
	verdict := entities.VerificationVerdict{
		ClaimID:        claim.ID,
		ClaimedSeconds: claim.Reel.StartSeconds,
	}

	// Both boundaries are checked independently against the nearest word
	// boundary; words are contiguous, so a large deviation means the claimed
	// time points at silence or outside the recording entirely.
	actualStart := nearestWordBoundary(words, claim.Reel.StartSeconds)
	actualEnd := nearestWordBoundary(words, claim.Reel.EndSeconds)
	deltaStart := math.Abs(claim.Reel.StartSeconds - actualStart)
	deltaEnd := math.Abs(claim.Reel.EndSeconds - actualEnd)

	verdict.ActualSeconds = actualStart
	verdict.DeltaSeconds = math.Max(deltaStart, deltaEnd)
	if deltaStart < v.tolerance && deltaEnd < v.tolerance {
		verdict.Status = entities.VerdictAccurate
		verdict.Confidence = 1
		return verdict
	}

	verdict.Status = entities.VerdictTimestampError
	verdict.Correction = entities.FormatTimecode(actualStart)
	if deltaStart >= v.tolerance && deltaEnd >= v.tolerance {
		verdict.Detail = "both reel boundaries outside spoken audio"
	} else if deltaStart >= v.tolerance {
		verdict.Detail = "reel start boundary outside spoken audio"
	} else {
		verdict.Detail = "reel end boundary outside spoken audio"
	}
	return verdict
}

// verifyChapter snaps the claimed chapter start to the nearest word start.
// With no textual anchor there is nothing to locate; the check is that the
// timestamp points at spoken audio at all.
func (v *Verifier) verifyChapter(claim entities.GeneratedClaim, words []entities.TranscriptWord) entities.VerificationVerdict {
	verdict := entities.VerificationVerdict{
		ClaimID:        claim.ID,
		ClaimedSeconds: claim.Chapter.ClaimedSeconds,
	}
	if len(words) == 0 {
		verdict.Status = entities.VerdictQuoteNotFound
		return verdict
	}

	actual := nearestWordStart(words, claim.Chapter.ClaimedSeconds)
	delta := math.Abs(claim.Chapter.ClaimedSeconds - actual)

	verdict.ActualSeconds = actual
	verdict.DeltaSeconds = delta
	if delta < v.tolerance {
		verdict.Status = entities.VerdictAccurate
		verdict.Confidence = 1
	} else {
		verdict.Status = entities.VerdictTimestampError
		verdict.Correction = entities.FormatTimecode(actual)
		verdict.Detail = fmt.Sprintf("chapter start %s is not within spoken audio", entities.FormatTimecode(claim.Chapter.ClaimedSeconds))
	}
	return verdict
}

// foldDiacritics strips combining marks (Latin accents, Hebrew niqqud) so
// transcription and model output compare equal despite mark differences.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeToken(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeTokens(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := normalizeToken(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

type indexedToken struct {
	token   string
	wordIdx int
}

func normalizeWords(words []entities.TranscriptWord) []indexedToken {
	indexed := make([]indexedToken, 0, len(words))
	for i, w := range words {
		if t := normalizeToken(w.Text); t != "" {
			indexed = append(indexed, indexedToken{token: t, wordIdx: i})
		}
	}
	return indexed
}

// bestPhraseMatch finds the window of transcript tokens most similar to the
// claim phrase: exact contiguous match first, then ordered-token similarity
// over same-length windows, which tolerates small filler differences without
// accepting substantive rewording. Returns the earliest best position and its
// similarity.
func bestPhraseMatch(claimTokens []string, indexed []indexedToken) (int, float64) {
	n := len(claimTokens)
	if n == 0 || len(indexed) == 0 {
		return -1, 0
	}
	if len(indexed) < n {
		return 0, tokenSimilarity(claimTokens, tokensOf(indexed, 0, len(indexed)))
	}

	for i := 0; i+n <= len(indexed); i++ {
		if equalWindow(claimTokens, indexed, i) {
			return i, 1
		}
	}

	bestPos, bestSim := -1, 0.0
	for i := 0; i+n <= len(indexed); i++ {
		sim := tokenSimilarity(claimTokens, tokensOf(indexed, i, n))
		if sim > bestSim {
			bestSim, bestPos = sim, i
		}
	}
	return bestPos, bestSim
}

func tokensOf(indexed []indexedToken, start, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = indexed[start+i].token
	}
	return out
}

func equalWindow(claimTokens []string, indexed []indexedToken, start int) bool {
	for i, t := range claimTokens {
		if indexed[start+i].token != t {
			return false
		}
	}
	return true
}

// tokenSimilarity is the length of the longest common ordered subsequence
// divided by the longer side.
func tokenSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(lcsLen(a, b)) / float64(longer)
}

func lcsLen(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// nearestWordStart returns the word start time closest to the given seconds.
func nearestWordStart(words []entities.TranscriptWord, seconds float64) float64 {
	i := sort.Search(len(words), func(i int) bool { return words[i].Start >= seconds })
	best := math.Inf(1)
	nearest := 0.0
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(words) {
			continue
		}
		if d := math.Abs(words[j].Start - seconds); d < best {
			best = d
			nearest = words[j].Start
		}
	}
	return nearest
}

// nearestWordBoundary returns the word start or end time closest to the given
// seconds.
func nearestWordBoundary(words []entities.TranscriptWord, seconds float64) float64 {
	if len(words) == 0 {
		return 0
	}
	nearest := nearestWordStart(words, seconds)
	best := math.Abs(nearest - seconds)
	// Ends are not sorted in general (word ends can interleave with the next
	// start), but the candidates adjacent to the nearest start suffice.
	i := sort.Search(len(words), func(i int) bool { return words[i].Start >= seconds })
	for _, j := range []int{i - 2, i - 1, i} {
		if j < 0 || j >= len(words) {
			continue
		}
		if d := math.Abs(words[j].End - seconds); d < best {
			best = d
			nearest = words[j].End
		}
	}
	return nearest
}
