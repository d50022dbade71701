package chat

import "errors"

// ErrGenerationFailed wraps every upstream failure on the generation call
// path: transport errors, non-success statuses, undecodable or empty bodies.
// A failed generation never touches the session's history.
var ErrGenerationFailed = errors.New("generation failed")
