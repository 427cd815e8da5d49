package entities

import "fmt"

// TranscriptChunk is a derived, topically-coherent slice of the transcript.
// Chunks exist only for the duration of one generation run; they are always
// re-derivable from the word sequence and are never persisted.
type TranscriptChunk struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Speakers   []string `json:"speakers,omitempty"`
	TokenCount int      `json:"token_count"`
	// FirstWord/LastWord index into the run's word sequence, so a chunk's
	// word span can be recovered without re-scanning by time.
	FirstWord int `json:"first_word"`
	LastWord  int `json:"last_word"`
}

// ChunkID derives the stable chunk identifier from its position.
// Positional ids make claims traceable across identical re-runs.
func ChunkID(position int) string {
	return fmt.Sprintf("chunk_%04d", position)
}

// Contains reports whether a timestamp lies within the chunk's time bounds.
func (c TranscriptChunk) Contains(seconds float64) bool {
	return seconds >= c.Start && seconds <= c.End
}

// TimeRange is an optional [Min, Max] seconds filter on retrieval queries.
type TimeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Covers reports whether the chunk overlaps the range at all.
func (r TimeRange) Covers(c TranscriptChunk) bool {
	return c.End >= r.Min && c.Start <= r.Max
}
