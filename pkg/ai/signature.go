package ai

import (
	"crypto/hmac"
)

// VerifySharedToken compares a webhook auth header value against the
// configured secret in constant time. The transcription provider echoes the
// header value set at submission verbatim.
func VerifySharedToken(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(secret), []byte(token))
}
