package tiny

import (
	"errors"
	"fmt"
	"strings"
)

// ErrThrottled signals that the upstream account is rate limited ("API
// Bloqueada" / HTTP 429). Paginated jobs must persist their resume
// point before sleeping, so the client never retries this internally
// outside snapshot mode.
var ErrThrottled = errors.New("tiny: api blocked by rate limit")

// blockedMarker is the well-known substring Tiny puts in the error list
// when the account hits its request quota.
const blockedMarker = "API Bloqueada"

// APIError carries the upstream error messages of a non-OK envelope.
type APIError struct {
	Endpoint string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("tiny: %s: unknown upstream error", e.Endpoint)
	}
	return fmt.Sprintf("tiny: %s: %s", e.Endpoint, strings.Join(e.Messages, "; "))
}

func isBlocked(messages []string) bool {
	for _, m := range messages {
		if strings.Contains(m, blockedMarker) {
			return true
		}
	}
	return false
}
