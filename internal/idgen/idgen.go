// Package idgen stamps asynchronous dispatch chains with a request ID,
// so every log line emitted while a call-checker falls back across
// replicas can be correlated back to the originating request.
package idgen

import "github.com/google/uuid"

// New returns a fresh request ID suitable for a single async dispatch
// chain's lifetime.
func New() string {
	return uuid.NewString()
}
