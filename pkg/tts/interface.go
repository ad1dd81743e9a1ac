package tts

import (
	"context"
	"time"
)

// Synthesis is a handle to synthesized audio on disk plus an estimated
// playback duration.
type Synthesis struct {
	AudioPath string
	Duration  time.Duration
	Format    string
}

// Synthesizer turns reply text into audio. Implementations own voice and
// language configuration; callers bound latency with the context.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Synthesis, error)
}
