package mediator

import (
	"context"
	"fmt"
	"time"

	"t2v/config"
	"t2v/internal/clients/modelhub"
	"t2v/internal/dependencies"
	"t2v/internal/driver"
	"t2v/internal/pipeline"
	"t2v/internal/services"
	"t2v/internal/video"

	"github.com/charmbracelet/log"
)

const janitorInterval = 10 * time.Minute

type App struct {
	api  *services.Api
	rpc  *dependencies.Rpc
	jobs *services.JobService
	hub  *services.Hub

	cancel context.CancelFunc
	// settings
	Config config.Config
}

// jobsContext keeps parent's values but not its cancellation, so a signal
// does not abort jobs before Shutdown has drained them.
func jobsContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(context.WithoutCancel(parent))
}

func NewApp(ctx context.Context, cfg config.Config) (*App, error) {

	task, err := pipeline.ParseTask(cfg.Pipeline.Task)
	if err != nil {
		return nil, fmt.Errorf("error creating newapp: %w", err)
	}

	rpc, err := dependencies.NewRpc(cfg.Rpc)
	if err != nil {
		return nil, fmt.Errorf("error creating newapp: %w", err)
	}

	p, err := pipeline.New(ctx, rpc, task, cfg.Pipeline.Model)
	if err != nil {
		rpc.Close()
		return nil, fmt.Errorf("error creating newapp: %w", err)
	}
	log.Info("pipeline loaded", "task", p.Task(), "model", p.Model(), "id", p.ID())

	jobsCtx, cancel := jobsContext(ctx)

	hub := services.NewHub()
	stats := video.NewStatsRecorder(nil)
	jobs := services.NewJobService(jobsCtx, hub, driver.New(p, cfg.Pipeline.Output), stats, p.Model(), cfg.Api)
	jobs.Run()
	jobs.RunJanitor(janitorInterval, cfg.Api.JobTTL())

	api := services.NewApi(services.ApiDeps{
		Jobs:    jobs,
		Hub:     hub,
		Usage:   video.NewUsageTracker(nil),
		Stats:   stats,
		Backend: rpc,
		Models:  modelhub.NewHubClient(cfg.Hub),
		Task:    string(p.Task()),
		Model:   p.Model(),
	}, cfg.Api)

	return &App{
		api:    api,
		rpc:    rpc,
		jobs:   jobs,
		hub:    hub,
		cancel: cancel,
		Config: cfg,
	}, nil
}

func (a *App) Start() error {
	return a.api.Start()
}

// Shutdown stops accepting requests, lets running and queued jobs finish,
// then cancels the jobs context and closes the backend connection.
func (a *App) Shutdown() {
	if err := a.api.Shutdown(); err != nil {
		log.Warn("api shutdown", "err", err)
	}
	a.jobs.Shutdown()
	a.cancel()
	a.hub.Shutdown()
	if a.rpc != nil {
		a.rpc.Close()
	}
}
