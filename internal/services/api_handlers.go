package services

import (
	"context"
	"time"

	"t2v/internal/video"
	"t2v/types"

	"github.com/gofiber/fiber/v2"
)

const (
	backendServing     = "serving"
	backendNotServing  = "not_serving"
	backendUnreachable = "unreachable"
	backendUnknown     = "unknown"
)

func (a *Api) backendStatus(ctx context.Context) string {
	if a.backend == nil {
		return backendUnknown
	}
	ok, err := a.backend.Health(ctx)
	switch {
	case err != nil:
		return backendUnreachable
	case !ok:
		return backendNotServing
	default:
		return backendServing
	}
}

func (a *Api) Health() fiber.Handler {
	return func(ctx *fiber.Ctx) error {

		backend := a.backendStatus(ctx.UserContext())
		status := fiber.StatusOK
		if backend == backendNotServing || backend == backendUnreachable {
			status = fiber.StatusServiceUnavailable
		}

		return ctx.Status(status).JSON(types.HealthResponse{
			Status:    status,
			Backend:   backend,
			Clients:   a.hub.Connected(),
			TimeStamp: time.Now().Unix(),
		})
	}
}

func (a *Api) Capabilities() fiber.Handler {
	return func(ctx *fiber.Ctx) error {

		aspects := make([]string, 0, len(video.SupportedAspects))
		for _, asp := range video.SupportedAspects {
			aspects = append(aspects, string(asp))
		}
		styles := make([]string, 0, len(video.SupportedStyles))
		for _, st := range video.SupportedStyles {
			styles = append(styles, string(st))
		}

		return ctx.Status(fiber.StatusOK).JSON(types.CapabilitiesResponse{
			Task:                 a.task,
			Model:                a.model,
			SupportedResolutions: video.SupportedResolutions,
			SupportedAspects:     aspects,
			SupportedStyles:      styles,
			MaxDuration:          video.MaxDurationSeconds,
		})
	}
}

func (a *Api) Stats() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(a.stats.Snapshot())
	}
}
