package asr

import (
	"context"
)

// Transcription is what an ASR engine produced from one audio resource.
type Transcription struct {
	Text       string
	Language   string
	Confidence *float64 // engines that don't score leave this nil
}

// Engine converts recorded audio to text. Implementations are black boxes
// that may take seconds; callers bound them with the context.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, languageHint string) (*Transcription, error)
	IsAlive() bool
}
