package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Task string

const (
	TextToVideoSynthesis Task = "text-to-video-synthesis"
)

const (
	InputText   = "text"
	OutputVideo = "output_video"
)

var defaultModels = map[Task]string{
	TextToVideoSynthesis: "damo/text-to-video-synthesis",
}

var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrNoOutputVideo = errors.New("result has no output_video")
)

// Backend is the inference collaborator. It owns model loading and execution.
type Backend interface {
	Load(ctx context.Context, task, model string) (string, error)
	Run(ctx context.Context, pipelineID string, inputs map[string]any) (map[string]any, error)
}

type Input map[string]any

type Result map[string]any

type Pipeline struct {
	backend Backend
	task    Task
	model   string
	id      string
}

func DefaultModel(task Task) string {
	return defaultModels[task]
}

func ParseTask(s string) (Task, error) {
	t := Task(strings.TrimSpace(s))
	if _, ok := defaultModels[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
	}
	return t, nil
}

// New asks the backend to load model for task. An empty model selects the task default.
func New(ctx context.Context, backend Backend, task Task, model string) (*Pipeline, error) {
	def, ok := defaultModels[task]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = def
	}

	id, err := backend.Load(ctx, string(task), model)
	if err != nil {
		return nil, fmt.Errorf("error loading pipeline %s (%s): %w", task, model, err)
	}

	return &Pipeline{
		backend: backend,
		task:    task,
		model:   model,
		id:      id,
	}, nil
}

func (p *Pipeline) Task() Task { return p.task }

func (p *Pipeline) Model() string { return p.model }

func (p *Pipeline) ID() string { return p.id }

func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	out, err := p.backend.Run(ctx, p.id, map[string]any(in))
	if err != nil {
		return nil, fmt.Errorf("error running pipeline %s: %w", p.task, err)
	}
	return Result(out), nil
}

func (r Result) OutputVideo() (*Video, error) {
	v, ok := r[OutputVideo]
	if !ok || v == nil {
		return nil, ErrNoOutputVideo
	}
	return decodeVideo(v)
}
