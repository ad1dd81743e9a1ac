package orchestrator

import (
	"context"
	"time"

	"github.com/osinachi-dev/voxgate/internal/config"
	"github.com/osinachi-dev/voxgate/internal/session"
	"github.com/osinachi-dev/voxgate/internal/types"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/asr"
	"github.com/osinachi-dev/voxgate/pkg/llm"
	"github.com/osinachi-dev/voxgate/pkg/tts"
)

// Orchestrator drives one voice turn end to end: resolve session, ASR,
// history, LLM, TTS, persist turn. It is the only component that sequences
// the three ports. Ports are constructor-injected so tests swap in mocks.
type Orchestrator struct {
	store  *session.Store
	engine asr.Engine
	gen    llm.Generator
	synth  tts.Synthesizer
	pool   *WorkerPool
	cfg    config.PipelineConfig
	lang   string
	logger *Logger.Logger
}

func New(
	store *session.Store,
	engine asr.Engine,
	gen llm.Generator,
	synth tts.Synthesizer,
	pool *WorkerPool,
	cfg config.PipelineConfig,
	languageHint string,
	logger *Logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:  store,
		engine: engine,
		gen:    gen,
		synth:  synth,
		pool:   pool,
		cfg:    cfg,
		lang:   languageHint,
		logger: logger,
	}
}

// Process runs the full pipeline for one audio input. The stages are
// strictly sequential; each blocking port call runs on the shared bounded
// pool under its own timeout. Failures abort the request with a typed
// stage error and leave the session untouched.
//
// Known limitation: caller disconnects do not cancel an in-flight
// pipeline; the passed ctx is only consulted between and inside stages.
func (o *Orchestrator) Process(ctx context.Context, audioPath string, sessionID string) (*types.VoiceResult, error) {
	// Step 1: resolve session.
	sess, isNew := o.store.GetOrCreate(sessionID)
	sessionID = sess.ID
	if isNew {
		o.logger.Infof("pipeline using new session %s", sessionID)
	}

	start := time.Now()

	// Step 2: ASR.
	transcript, err := o.runASR(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	o.logger.Infof("asr completed for session %s: %q", sessionID, truncate(transcript.Text, 100))

	// Step 3: read-only history snapshot. Strictly after ASR so appends
	// from concurrent turns of the same session are visible.
	history := o.store.GetHistory(sessionID, 0)

	// Step 4: LLM.
	reply, err := o.runLLM(ctx, transcript.Text, history)
	if err != nil {
		return nil, err
	}
	o.logger.Infof("llm completed for session %s: %q", sessionID, truncate(reply.Text, 100))

	// Step 5: TTS.
	synthesis, err := o.runTTS(ctx, reply.Text)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start).Seconds()

	// Step 6: persist. A mid-flight eviction loses persistence but the
	// caller still gets the generated audio and text.
	meta := types.TurnMetadata{
		ASRConfidence:  transcript.Confidence,
		LLMTokens:      &reply.TokensUsed,
		ProcessingTime: &elapsed,
	}
	// Best-effort fallback number from the step 1 snapshot, replaced by
	// the authoritative one when the append lands.
	turnNumber := sess.TurnCount() + 1
	if assigned, ok := o.store.AppendTurn(sessionID, transcript.Text, reply.Text, meta); ok {
		turnNumber = assigned
	} else {
		o.logger.Errorf("session %s evicted mid-flight; turn not persisted", sessionID)
	}

	o.logger.Infof("pipeline completed in %.2fs (session %s, turn %d)", elapsed, sessionID, turnNumber)

	return &types.VoiceResult{
		AudioPath:      synthesis.AudioPath,
		Transcript:     transcript.Text,
		ReplyText:      reply.Text,
		SessionID:      sessionID,
		TurnNumber:     turnNumber,
		ProcessingTime: elapsed,
	}, nil
}

func (o *Orchestrator) runASR(ctx context.Context, audioPath string) (*asr.Transcription, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.ASRTimeout())
	defer cancel()

	var (
		out    *asr.Transcription
		runErr error
	)
	if err := o.pool.Submit(stageCtx, func() {
		out, runErr = o.engine.Transcribe(stageCtx, audioPath, o.lang)
	}); err != nil {
		return nil, asrError(err)
	}
	if runErr != nil {
		return nil, asrError(runErr)
	}
	return out, nil
}

func (o *Orchestrator) runLLM(ctx context.Context, userText string, history []types.Message) (*llm.Reply, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout())
	defer cancel()

	var (
		out    *llm.Reply
		runErr error
	)
	if err := o.pool.Submit(stageCtx, func() {
		out, runErr = o.gen.Generate(stageCtx, userText, history)
	}); err != nil {
		return nil, llmError(err)
	}
	if runErr != nil {
		return nil, llmError(runErr)
	}
	return out, nil
}

func (o *Orchestrator) runTTS(ctx context.Context, text string) (*tts.Synthesis, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.TTSTimeout())
	defer cancel()

	var (
		out    *tts.Synthesis
		runErr error
	)
	if err := o.pool.Submit(stageCtx, func() {
		out, runErr = o.synth.Synthesize(stageCtx, text)
	}); err != nil {
		return nil, ttsError(err)
	}
	if runErr != nil {
		return nil, ttsError(runErr)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
