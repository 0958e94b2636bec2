// Package driver turns a text prompt into a video file on disk by way of a
// loaded pipeline.
package driver

import (
	"context"
	"fmt"

	"t2v/internal/pipeline"

	"github.com/charmbracelet/log"
)

const DefaultOutput = "output.mp4"

type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (pipeline.Result, error)
}

type Driver struct {
	runner Runner
	output string
	logger *log.Logger
}

func New(runner Runner, output string) *Driver {
	if output == "" {
		output = DefaultOutput
	}
	return &Driver{
		runner: runner,
		output: output,
		logger: log.With("component", "driver"),
	}
}

func (d *Driver) Output() string {
	return d.output
}

// Generate submits prompt unmodified as {"text": prompt} and writes the
// returned video to the configured output path, overwriting any previous file.
func (d *Driver) Generate(ctx context.Context, prompt string) (string, error) {
	if _, err := d.GenerateTo(ctx, pipeline.Input{pipeline.InputText: prompt}, d.output); err != nil {
		return "", err
	}
	return d.output, nil
}

// GenerateTo runs one inference with in and saves the output_video to dst.
// Nothing is written unless the pipeline returns a video.
func (d *Driver) GenerateTo(ctx context.Context, in pipeline.Input, dst string) (*pipeline.Video, error) {
	d.logger.Debug("running pipeline", "dst", dst)

	result, err := d.runner.Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("error generating video: %w", err)
	}

	video, err := result.OutputVideo()
	if err != nil {
		return nil, fmt.Errorf("error reading result: %w", err)
	}

	if err := video.Save(ctx, dst); err != nil {
		return nil, fmt.Errorf("error saving video to %s: %w", dst, err)
	}

	d.logger.Info("video saved", "dst", dst, "mimeType", video.MimeType())
	return video, nil
}
