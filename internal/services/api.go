package services

import (
	"context"
	"fmt"

	"t2v/config"
	"t2v/internal/clients/modelhub"
	"t2v/internal/video"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type HealthChecker interface {
	Health(ctx context.Context) (bool, error)
}

type ModelInfoGetter interface {
	GetModelInfo(ctx context.Context, id string) (modelhub.ModelInfo, error)
}

type ApiDeps struct {
	Jobs    *JobService
	Hub     *Hub
	Usage   *video.UsageTracker
	Stats   *video.StatsRecorder
	Backend HealthChecker
	Models  ModelInfoGetter
	Task    string
	Model   string
}

type Api struct {
	server *fiber.App
	jobs   *JobService
	hub    *Hub
	usage  *video.UsageTracker
	stats  *video.StatsRecorder

	backend HealthChecker
	models  ModelInfoGetter
	task    string
	model   string

	port           string
	allowedOrigins string
}

func NewApi(deps ApiDeps, config config.ApiConfig) *Api {
	if config.AllowedOrigins == "" {
		config.AllowedOrigins = "*"
	}

	a := &Api{
		server:         fiber.New(fiber.Config{DisableStartupMessage: true}),
		jobs:           deps.Jobs,
		hub:            deps.Hub,
		usage:          deps.Usage,
		stats:          deps.Stats,
		backend:        deps.Backend,
		models:         deps.Models,
		task:           deps.Task,
		model:          deps.Model,
		port:           config.Port,
		allowedOrigins: config.AllowedOrigins,
	}

	allowCredentials := a.allowedOrigins != "*"

	a.server.Use(RequestLogger())
	a.server.Use(cors.New(cors.Config{
		AllowOrigins:     a.allowedOrigins,
		AllowCredentials: allowCredentials,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,Accept,Origin",
	}))

	a.addRoutes()
	return a
}

func (a *Api) Start() error {
	log.Info("api listening", "port", a.port)
	return a.server.Listen(fmt.Sprint(":", a.port))
}

func (a *Api) Shutdown() error {
	return a.server.Shutdown()
}

func (a *Api) addRoutes() {
	a.server.Add("GET", "/health", a.Health())
	a.server.Add("GET", "/video/capabilities", a.Capabilities())
	a.server.Add("POST", "/video/generate", a.GenerateVideo())
	a.server.Add("GET", "/video/status/:id", a.JobStatus())
	a.server.Add("GET", "/video/download/:id", a.DownloadVideo())
	a.server.Add("GET", "/video/jobs", a.ListJobs())
	a.server.Add("DELETE", "/video/jobs/:id", a.CancelJob())
	a.server.Add("GET", "/video/stats", a.Stats())
	a.server.Add("GET", "/models/:owner/:name", a.ModelInfo())

	// websocket connection
	a.server.Use("/ws", a.WsUpgrade())
	a.server.Get("/ws/:id", a.Notifications())
}
