package app

import (
	"context"

	"github.com/osinachi-dev/voxgate/internal/config"
	"github.com/osinachi-dev/voxgate/internal/files"
	"github.com/osinachi-dev/voxgate/internal/orchestrator"
	"github.com/osinachi-dev/voxgate/internal/server"
	"github.com/osinachi-dev/voxgate/internal/session"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/asr/whisper"
	"github.com/osinachi-dev/voxgate/pkg/tts/piper"
)

// App wires every component together. All dependencies are explicit; no
// package-level singletons anywhere.
type App struct {
	Config      *config.Settings
	Logger      *Logger.Logger
	Store       *session.Store
	Pool        *orchestrator.WorkerPool
	FileManager *files.Manager
	ServerDeps  server.Dependencies
}

func NewApp(ctx context.Context, cfg *config.Settings, logger *Logger.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	if err := app.setupDependencies(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) setupDependencies(ctx context.Context) error {
	fm, err := files.NewManager(a.Config.Files.TempDir, a.Logger)
	if err != nil {
		return err
	}
	a.FileManager = fm

	a.Store = session.NewStore(a.Config.Session.MaxTurns, a.Config.Session.Timeout(), a.Logger)
	a.Pool = orchestrator.NewWorkerPool(a.Config.Pipeline.Workers)

	engine := whisper.New(a.Config.ASR.WhisperURL, a.Logger)
	synth := piper.New(a.Config.TTS.PiperURL, a.Config.TTS.Voice, fm.TempDir(), a.Logger)
	gen, err := NewGenerator(ctx, a.Config.LLM, a.Logger)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		a.Store,
		engine,
		gen,
		synth,
		a.Pool,
		a.Config.Pipeline,
		a.Config.ASR.Language,
		a.Logger,
	)

	a.ServerDeps = server.NewServerDependencies(orch, a.Store, fm, a.Config, a.Logger)
	return nil
}

// Start kicks off the background session sweeper.
func (a *App) Start() {
	a.Store.StartSweeper(a.Config.Session.SweepEvery())
}

// Stop drains the worker pool and halts the sweeper.
func (a *App) Stop() {
	a.Store.StopSweeper()
	a.Pool.Close()
	a.FileManager.CleanupOld()
}
