package anthropic

import "errors"

var (
	ErrAPIKeyNotSet  = errors.New("API key is not set")
	ErrBaseURLNotSet = errors.New("base URL is not set")
	ErrEmptyResponse = errors.New("response contains no content")
)
