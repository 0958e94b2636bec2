package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"t2v/internal/clients/modelhub"
	"t2v/internal/video"
	"t2v/types"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultDuration   = 5
	defaultResolution = "512x512"
)

func videoErrorResponse(ctx *fiber.Ctx, status int, err *video.Error) error {
	return ctx.Status(status).JSON(types.ErrorResponse{
		Error:   err.Message,
		Message: err.Message,
		Code:    err.Code,
	})
}

func jobResponse(job VideoJob, model string) types.JobResponse {
	return types.JobResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		Progress:  job.Progress,
		Model:     model,
		MimeType:  job.MimeType,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

// downloadName prefers the backend's filename hint, reduced to a plain base name.
func downloadName(job VideoJob) string {
	name := strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == '\\' || r == '/' {
			return -1
		}
		return r
	}, filepath.Base(strings.TrimSpace(job.FileName)))
	if name == "" || name == "." || name == ".." {
		return job.ID + ".mp4"
	}
	return name
}

func (a *Api) GenerateVideo() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("generate", ctx)

		var requestBody types.VideoGenerateRequest
		if err := ctx.BodyParser(&requestBody); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "invalid body",
			})
		}

		req := video.Request{
			Prompt:         requestBody.Prompt,
			NegativePrompt: requestBody.NegativePrompt,
			Duration:       requestBody.Duration,
			Resolution:     requestBody.Resolution,
			Aspect:         requestBody.Aspect,
			Style:          requestBody.Style,
			Options: video.Options{
				FPS:      requestBody.FPS,
				Seed:     requestBody.Seed,
				CFGScale: requestBody.CFGScale,
				Steps:    requestBody.Steps,
			},
			UserID: requestBody.UserID,
			Tier:   requestBody.Tier,
		}
		if req.Duration == 0 {
			req.Duration = defaultDuration
		}
		if req.Resolution == "" && req.Aspect == "" {
			req.Resolution = defaultResolution
		}

		if err := video.ValidateRequest(req); err != nil {
			var verr *video.Error
			if errors.As(err, &verr) {
				return videoErrorResponse(ctx, fiber.StatusBadRequest, verr)
			}
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: err.Error(), Message: "invalid request"})
		}

		if s := a.backendStatus(ctx.UserContext()); s == backendUnreachable || s == backendNotServing {
			return videoErrorResponse(ctx, fiber.StatusServiceUnavailable, video.ErrProviderUnavailable)
		}

		if ok, msg := a.usage.Reserve(req.UserID, req.Tier); !ok {
			return ctx.Status(fiber.StatusForbidden).JSON(types.ErrorResponse{
				Error:   msg,
				Message: video.ErrQuotaExceeded.Message,
				Code:    video.ErrQuotaExceeded.Code,
			})
		}

		job, err := a.jobs.Submit(req, requestBody.ClientID)
		if err != nil {
			a.usage.Release(req.UserID)
			code := fiber.StatusServiceUnavailable
			if errors.Is(err, ErrJobQueueFull) {
				code = fiber.StatusTooManyRequests
			}
			logger.Warn("failed to enqueue video job", "err", err)
			return ctx.Status(code).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "failed to enqueue video job",
			})
		}

		logger.Info("video job queued", "jobId", job.ID)
		return ctx.Status(fiber.StatusAccepted).JSON(types.VideoGenerateResponse{
			JobID:   job.ID,
			Status:  string(job.Status),
			Message: "Video generation started",
		})
	}
}

func (a *Api) JobStatus() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		job, err := a.jobs.Get(ctx.Params("id"))
		if err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "Job not found",
			})
		}

		return ctx.Status(fiber.StatusOK).JSON(jobResponse(job, a.model))
	}
}

func (a *Api) ListJobs() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		jobs := a.jobs.List()
		out := make([]types.JobResponse, 0, len(jobs))
		for _, job := range jobs {
			out = append(out, jobResponse(job, a.model))
		}
		return ctx.Status(fiber.StatusOK).JSON(types.ListJobsResponse{Jobs: out})
	}
}

func (a *Api) CancelJob() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id := ctx.Params("id")
		if err := a.jobs.Cancel(id); err != nil {
			code := fiber.StatusInternalServerError
			switch {
			case errors.Is(err, ErrJobNotFound):
				code = fiber.StatusNotFound
			case errors.Is(err, ErrJobFinished):
				code = fiber.StatusConflict
			}
			return ctx.Status(code).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "failed to cancel job",
			})
		}

		job, err := a.jobs.Get(id)
		if err != nil {
			return ctx.SendStatus(fiber.StatusNoContent)
		}
		return ctx.Status(fiber.StatusOK).JSON(jobResponse(job, a.model))
	}
}

func (a *Api) DownloadVideo() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		job, err := a.jobs.Get(ctx.Params("id"))
		if err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "Job not found",
			})
		}

		if job.Status != video.JobCompleted || job.Path == "" {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   fmt.Sprintf("job is %s", job.Status),
				Message: "Video not ready for download",
			})
		}

		data, err := os.ReadFile(job.Path)
		if err != nil {
			return ctx.Status(fiber.StatusGone).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "video file is no longer available",
			})
		}

		ctx.Set(fiber.HeaderContentType, job.MimeType)
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", downloadName(job)))
		ctx.Response().SetBodyRaw(data)
		return nil
	}
}

func (a *Api) ModelInfo() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if a.models == nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(types.ErrorResponse{
				Error:   "model hub not configured",
				Message: "service unavailable",
			})
		}

		id := ctx.Params("owner") + "/" + ctx.Params("name")
		info, err := a.models.GetModelInfo(ctx.UserContext(), id)
		if err != nil {
			code := fiber.StatusBadGateway
			switch {
			case errors.Is(err, modelhub.ErrModelNotFound):
				code = fiber.StatusNotFound
			case errors.Is(err, modelhub.ErrInvalidModelID):
				code = fiber.StatusBadRequest
			}
			return ctx.Status(code).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "failed to fetch model info",
			})
		}

		tasks := make([]string, 0, len(info.Tasks))
		for _, t := range info.Tasks {
			tasks = append(tasks, t.Name)
		}

		return ctx.Status(fiber.StatusOK).JSON(types.ModelInfoResponse{
			ModelID:     info.ID(),
			Tasks:       tasks,
			License:     info.License,
			Downloads:   info.Downloads,
			LastUpdated: info.LastUpdatedTime.Unix(),
		})
	}
}
