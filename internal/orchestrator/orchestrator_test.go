package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/osinachi-dev/voxgate/internal/config"
	"github.com/osinachi-dev/voxgate/internal/session"
	"github.com/osinachi-dev/voxgate/internal/types"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/asr"
	"github.com/osinachi-dev/voxgate/pkg/llm"
	"github.com/osinachi-dev/voxgate/pkg/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockASR struct {
	text string
	conf *float64
	err  error
	// optional hook invoked before returning
	onCall func(ctx context.Context)
}

func (m *mockASR) Transcribe(ctx context.Context, audioPath, languageHint string) (*asr.Transcription, error) {
	if m.onCall != nil {
		m.onCall(ctx)
	}
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &asr.Transcription{Text: m.text, Language: languageHint, Confidence: m.conf}, nil
}

func (m *mockASR) IsAlive() bool { return true }

type mockLLM struct {
	reply   string
	tokens  int
	err     error
	gotText string
	gotHist []types.Message
}

func (m *mockLLM) Generate(ctx context.Context, userText string, history []types.Message) (*llm.Reply, error) {
	m.gotText = userText
	m.gotHist = history
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Reply{Text: m.reply, TokensUsed: m.tokens}, nil
}

type mockTTS struct {
	audioPath string
	err       error
	onCall    func()
}

func (m *mockTTS) Synthesize(ctx context.Context, text string) (*tts.Synthesis, error) {
	if m.onCall != nil {
		m.onCall()
	}
	if m.err != nil {
		return nil, m.err
	}
	return &tts.Synthesis{AudioPath: m.audioPath, Duration: time.Second, Format: "wav"}, nil
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Workers:        2,
		ASRTimeoutSecs: 5,
		LLMTimeoutSecs: 5,
		TTSTimeoutSecs: 5,
	}
}

func newTestOrchestrator(t *testing.T, engine asr.Engine, gen llm.Generator, synth tts.Synthesizer) (*Orchestrator, *session.Store) {
	t.Helper()
	store := session.NewStore(5, time.Hour, Logger.Nop())
	pool := NewWorkerPool(2)
	t.Cleanup(pool.Close)
	orch := New(store, engine, gen, synth, pool, testPipelineConfig(), "en", Logger.Nop())
	return orch, store
}

func TestProcess_EndToEnd(t *testing.T) {
	engine := &mockASR{text: "Hello, how are you?"}
	gen := &mockLLM{reply: "I am fine, thanks.", tokens: 12}
	synth := &mockTTS{audioPath: "/tmp/response.wav"}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	result, err := orch.Process(context.Background(), "/tmp/input.wav", "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.TurnNumber)
	assert.Equal(t, "Hello, how are you?", result.Transcript)
	assert.Equal(t, "I am fine, thanks.", result.ReplyText)
	assert.Equal(t, "/tmp/response.wav", result.AudioPath)
	assert.NotEmpty(t, result.SessionID)
	assert.GreaterOrEqual(t, result.ProcessingTime, 0.0)

	s, ok := store.Get(result.SessionID)
	require.True(t, ok)
	require.Len(t, s.Turns, 1)
	assert.Equal(t, "Hello, how are you?", s.Turns[0].UserMessage.Content)
	assert.Equal(t, "I am fine, thanks.", s.Turns[0].AssistantMessage.Content)
	require.NotNil(t, s.Turns[0].LLMTokens)
	assert.Equal(t, 12, *s.Turns[0].LLMTokens)
}

func TestProcess_ReusesSessionAndPassesHistory(t *testing.T) {
	engine := &mockASR{text: "second question"}
	gen := &mockLLM{reply: "second answer"}
	synth := &mockTTS{audioPath: "/tmp/out.wav"}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	id := store.Create()
	_, ok := store.AppendTurn(id, "first question", "first answer", types.TurnMetadata{})
	require.True(t, ok)

	result, err := orch.Process(context.Background(), "/tmp/in.wav", id)
	require.NoError(t, err)

	assert.Equal(t, id, result.SessionID)
	assert.Equal(t, 2, result.TurnNumber)

	// the generator saw the prior turn as structured history
	require.Len(t, gen.gotHist, 2)
	assert.Equal(t, types.USER, gen.gotHist[0].Role)
	assert.Equal(t, "first question", gen.gotHist[0].Content)
	assert.Equal(t, types.ASSISTANT, gen.gotHist[1].Role)
	assert.Equal(t, "first answer", gen.gotHist[1].Content)
	assert.Equal(t, "second question", gen.gotText)
}

func TestProcess_ASRFailureLeavesSessionUntouched(t *testing.T) {
	engine := &mockASR{err: errors.New("model exploded")}
	gen := &mockLLM{reply: "unused"}
	synth := &mockTTS{audioPath: "/tmp/out.wav"}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	id := store.Create()
	_, err := orch.Process(context.Background(), "/tmp/in.wav", id)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageASR, stageErr.Stage)
	assert.False(t, stageErr.Timeout())

	s, ok := store.Get(id)
	require.True(t, ok)
	assert.Empty(t, s.Turns, "no partial turn may be recorded")
}

func TestProcess_LLMFailureDiscardsTranscript(t *testing.T) {
	engine := &mockASR{text: "a perfectly good transcript"}
	gen := &mockLLM{err: errors.New("generation failed")}
	synth := &mockTTS{audioPath: "/tmp/out.wav"}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	id := store.Create()
	_, err := orch.Process(context.Background(), "/tmp/in.wav", id)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageLLM, stageErr.Stage)

	s, _ := store.Get(id)
	assert.Empty(t, s.Turns)
}

func TestProcess_TTSFailurePropagates(t *testing.T) {
	engine := &mockASR{text: "hi"}
	gen := &mockLLM{reply: "hello"}
	synth := &mockTTS{err: errors.New("synthesis failed")}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	id := store.Create()
	_, err := orch.Process(context.Background(), "/tmp/in.wav", id)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageTTS, stageErr.Stage)

	s, _ := store.Get(id)
	assert.Empty(t, s.Turns, "failed pipeline must not persist a turn")
}

func TestProcess_StageTimeoutIsTypedTimeout(t *testing.T) {
	engine := &mockASR{
		text: "never returned",
		onCall: func(ctx context.Context) {
			<-ctx.Done()
		},
	}
	gen := &mockLLM{reply: "unused"}
	synth := &mockTTS{audioPath: "/tmp/out.wav"}

	store := session.NewStore(5, time.Hour, Logger.Nop())
	pool := NewWorkerPool(2)
	defer pool.Close()
	cfg := testPipelineConfig()
	cfg.ASRTimeoutSecs = 1
	orch := New(store, engine, gen, synth, pool, cfg, "en", Logger.Nop())

	_, err := orch.Process(context.Background(), "/tmp/in.wav", "")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageASR, stageErr.Stage)
	assert.True(t, stageErr.Timeout())
}

func TestProcess_AppendFailureStillReturnsResult(t *testing.T) {
	engine := &mockASR{text: "hello"}
	gen := &mockLLM{reply: "world"}
	synth := &mockTTS{audioPath: "/tmp/out.wav"}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	id := store.Create()
	// evict the session mid-flight, racing the final append
	synth.onCall = func() { store.Delete(id) }

	result, err := orch.Process(context.Background(), "/tmp/in.wav", id)
	require.NoError(t, err, "caller still gets audio and text when persistence is lost")

	assert.Equal(t, "hello", result.Transcript)
	assert.Equal(t, "world", result.ReplyText)
	assert.Equal(t, 1, result.TurnNumber, "best-effort turn number from pipeline start")
	assert.Equal(t, 0, store.ActiveCount())
}

func TestProcess_ConcurrentRequestsDifferentSessions(t *testing.T) {
	engine := &mockASR{text: "hello"}
	gen := &mockLLM{reply: "world"}
	synth := &mockTTS{audioPath: "/tmp/out.wav"}
	orch, store := newTestOrchestrator(t, engine, gen, synth)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orch.Process(context.Background(), fmt.Sprintf("/tmp/in%d.wav", i), "")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, n, store.ActiveCount())
}
