package services

import (
	"context"
	"errors"
	"os"
	"slices"
	"sync"
	"time"

	"t2v/config"
	"t2v/internal/pipeline"
	"t2v/internal/video"
	"t2v/utils"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrJobServiceShuttingDown = errors.New("service shutting down")
	ErrJobQueueFull           = errors.New("queue full")
	ErrJobNotFound            = errors.New("job not found")
	ErrJobFinished            = errors.New("job already finished")
)

// Generator runs one inference and saves the video at dst.
type Generator interface {
	GenerateTo(ctx context.Context, in pipeline.Input, dst string) (*pipeline.Video, error)
}

type VideoJob struct {
	ID        string
	ClientID  string
	Request   video.Request
	Status    video.JobStatus
	Progress  int
	Path      string
	MimeType  string
	FileName  string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time

	cancel context.CancelFunc
}

type JobService struct {
	hub       *Hub
	gen       Generator
	stats     *video.StatsRecorder
	model     string
	outputDir string

	queue chan string
	group errgroup.Group
	// closed when the dispatcher started by Run returns
	dispatched chan struct{}

	mu      sync.RWMutex
	closing bool
	running bool
	jobs    map[string]*VideoJob
	ctx     context.Context
	logger  *log.Logger
	now     func() time.Time
}

func NewJobService(ctx context.Context, hub *Hub, gen Generator, stats *video.StatsRecorder, model string, config config.ApiConfig) *JobService {
	s := &JobService{
		hub:        hub,
		gen:        gen,
		stats:      stats,
		model:      model,
		outputDir:  config.OutputDir,
		queue:      make(chan string, config.QueueSize),
		dispatched: make(chan struct{}),
		jobs:       map[string]*VideoJob{},
		ctx:        ctx,
		logger:     log.With("component", "jobs"),
		now:        time.Now,
	}
	s.group.SetLimit(config.MaxConcurrent)
	return s
}

func (s *JobService) Run() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer close(s.dispatched)
		for {
			select {
			case <-s.ctx.Done():
				return
			case id, ok := <-s.queue:
				if !ok {
					return
				}
				jobID := id
				s.group.Go(func() error {
					s.runJob(jobID)
					return nil
				})
			}
		}
	}()
}

// RunJanitor drops terminal jobs older than maxAge every interval until the service context ends.
func (s *JobService) RunJanitor(interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(maxAge); n > 0 {
					s.logger.Info("cleaned up jobs", "count", n)
				}
			}
		}
	}()
}

func (s *JobService) Submit(req video.Request, clientID string) (VideoJob, error) {
	now := s.now()
	job := &VideoJob{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Request:   req,
		Status:    video.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return VideoJob{}, ErrJobServiceShuttingDown
	}

	select {
	case s.queue <- job.ID:
		s.jobs[job.ID] = job
		return *job, nil
	default:
		return VideoJob{}, ErrJobQueueFull
	}
}

func (s *JobService) Get(id string) (VideoJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return VideoJob{}, ErrJobNotFound
	}
	return *job, nil
}

func (s *JobService) List() []VideoJob {
	s.mu.RLock()
	jobs := make([]VideoJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	s.mu.RUnlock()

	slices.SortFunc(jobs, func(a, b VideoJob) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return jobs
}

func (s *JobService) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status.Terminal() {
		return ErrJobFinished
	}

	job.Status = video.JobCancelled
	job.Progress = 0
	job.UpdatedAt = s.now()
	if job.cancel != nil {
		job.cancel()
	}
	return nil
}

// Cleanup removes terminal jobs last updated before now-maxAge, together with their files.
func (s *JobService) Cleanup(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	var files []string
	deleted := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			if job.Path != "" {
				files = append(files, job.Path)
			}
			delete(s.jobs, id)
			deleted++
		}
	}
	s.mu.Unlock()

	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove video", "path", f, "err", err)
		}
	}
	return deleted
}

func (s *JobService) Shutdown() {
	s.mu.Lock()
	if !s.closing {
		s.closing = true
		close(s.queue)
	}
	running := s.running
	s.mu.Unlock()

	if running {
		<-s.dispatched
	}
	_ = s.group.Wait()
}

// WS only emits terminal states.
func (s *JobService) runJob(id string) {
	if s.ctx.Err() != nil {
		return
	}

	jobCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.Status != video.JobPending {
		s.mu.Unlock()
		return
	}
	job.Status = video.JobProcessing
	job.Progress = 10
	job.UpdatedAt = s.now()
	job.cancel = cancel
	req, clientID := job.Request, job.ClientID
	s.mu.Unlock()

	logger := s.logger.With("jobId", id)
	logger.Info("generating video", "model", s.model)

	dst, err := utils.SafeSubdir(s.outputDir, id+".mp4")
	var out *pipeline.Video
	if err == nil {
		out, err = s.gen.GenerateTo(jobCtx, req.Input(), dst)
	}

	s.mu.Lock()
	job.cancel = nil
	job.UpdatedAt = s.now()
	cancelled := job.Status == video.JobCancelled
	switch {
	case cancelled:
	case err != nil:
		job.Status = video.JobFailed
		job.Error = err.Error()
	default:
		job.Status = video.JobCompleted
		job.Progress = 100
		job.Path = dst
		job.MimeType = out.MimeType()
		job.FileName = out.FilenameHint()
	}
	s.mu.Unlock()

	if cancelled {
		if err == nil {
			_ = os.Remove(dst)
		}
		logger.Info("job cancelled")
		s.hub.SendTo(clientID, WSEvent{Type: "video.cancelled", JobID: id, Status: string(video.JobCancelled)})
		return
	}

	s.stats.Record(req, s.model, err)

	if err != nil {
		logger.Error("video generation failed", "err", err)
		s.hub.SendTo(clientID, WSEvent{
			Type:    "video.failed",
			JobID:   id,
			Status:  string(video.JobFailed),
			Code:    video.ErrGenerationFailed.Code,
			Message: err.Error(),
		})
		return
	}

	logger.Info("video generated", "path", dst)
	s.hub.SendTo(clientID, WSEvent{
		Type:        "video.completed",
		JobID:       id,
		Status:      string(video.JobCompleted),
		Message:     "video ready",
		DownloadURL: "/video/download/" + id,
	})
}
