package quiz

import "errors"

// Sentinel errors for the quiz engine. Check with errors.Is.
var (
	// ErrInvalidConfiguration means the requested constraints intersect to
	// an empty key/type pool; no questions are produced.
	ErrInvalidConfiguration = errors.New("quiz: invalid practice configuration")

	// ErrIllegalStateTransition indicates a UI/engine desync, e.g. an
	// answer submitted outside the active state. Not user-recoverable.
	ErrIllegalStateTransition = errors.New("quiz: illegal session state transition")

	// ErrSessionNotFound is returned by the session registry for an
	// unknown or already-discarded session ID.
	ErrSessionNotFound = errors.New("quiz: session not found")
)
