package orchestrator

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks bad, oversized, or unsupported audio rejected
	// before pipeline entry.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound marks explicit operations on an unknown or
	// expired session id.
	ErrSessionNotFound = errors.New("session not found")
)

// Stage names the pipeline step a failure came from.
type Stage string

const (
	StageASR Stage = "asr"
	StageLLM Stage = "llm"
	StageTTS Stage = "tts"
)

// StageError wraps a port failure with the stage it belongs to. The
// pipeline never retries; the wrapped cause travels to the caller so the
// API layer can map the failure without leaking internals.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s stage timed out: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the stage died on its deadline.
func (e *StageError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func asrError(err error) error {
	return &StageError{Stage: StageASR, Err: err}
}

func llmError(err error) error {
	return &StageError{Stage: StageLLM, Err: err}
}

func ttsError(err error) error {
	return &StageError{Stage: StageTTS, Err: err}
}
