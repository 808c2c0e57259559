package openai

import "errors"

var (
	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("model returned no choices")

	// ErrUnparsableResponse indicates no attempt produced valid JSON.
	ErrUnparsableResponse = errors.New("model response was not valid json")
)
