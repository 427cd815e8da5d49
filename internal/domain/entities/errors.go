package entities

import "errors"

// Domain errors
var (
	// Episode errors
	ErrEpisodeNotFound  = errors.New("episode not found")
	ErrEmptyTranscript  = errors.New("transcript has no words")
	ErrTranscriptNotFound = errors.New("transcript not found")

	// Job errors
	ErrJobNotFound     = errors.New("content job not found")
	ErrJobNotRetryable = errors.New("content job is not retryable")

	// Pipeline errors
	ErrGenerationFailed = errors.New("generation failed")
	ErrRangeViolation   = errors.New("claimed timestamp outside supporting chunk range")
	ErrIndexEmpty       = errors.New("no chunks satisfy the retrieval filter")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidToken   = errors.New("invalid token")
)
