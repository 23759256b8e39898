// Package broker implements the client for the premium-download broker API.
// It turns one outbound request into a tagged Outcome so callers handle every
// result shape explicitly instead of branching on exceptions or raw statuses.
package broker

import "io"

// Outcome is the discriminated result of a single broker call. Exactly one
// concrete type is returned per call; callers switch over them.
type Outcome interface {
	isOutcome()
}

// Stream is a successful outcome: the broker is serving the file body.
// ContentLength is -1 when the broker did not announce a length.
// The caller owns Body and must close it.
type Stream struct {
	Body          io.ReadCloser
	ContentLength int64
	Filename      string
}

// Redirected means the broker answered with a redirect instead of a file.
// The pipeline treats this as terminal and never follows the target.
type Redirected struct {
	Location string
}

// APIError is a classified failure reported by the broker itself.
// Message is already human-readable.
type APIError struct {
	Code    int
	Message string
}

// TransportFailure is a network-level failure before any broker answer
// could be interpreted.
type TransportFailure struct {
	Cause error
}

func (Stream) isOutcome()           {}
func (Redirected) isOutcome()       {}
func (APIError) isOutcome()         {}
func (TransportFailure) isOutcome() {}

// apiErrorMessages maps broker error codes to user-facing messages.
var apiErrorMessages = map[int]string{
	400: "Invalid parameters",
	401: "Invalid API authentication",
	402: "Filehost is not supported",
	403: "Not enough traffic",
	404: "File not found",
	429: "Too many open connections",
	500: "Currently no available premium account for this filehost",
}
