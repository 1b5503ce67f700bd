package llm

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey means a step that needs the text-generation API was
// requested without a credential configured.
var ErrNoAPIKey = errors.New("llm api key not configured (set OPENAI_API_KEY or pass --llm-api-key)")

// GenerationError wraps any failure of an external text-generation step.
// It aborts only the step that needed the API; outputs written before it
// remain valid.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func generationErr(op string, err error) error {
	return &GenerationError{Op: op, Err: err}
}
