package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"t2v/config"
	"t2v/internal/pipeline"
	"t2v/internal/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2',
	0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm',
}

type fakeGen struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	started chan string
	hint    string
	inputs  []pipeline.Input
}

func (g *fakeGen) GenerateTo(ctx context.Context, in pipeline.Input, dst string) (*pipeline.Video, error) {
	g.mu.Lock()
	g.inputs = append(g.inputs, in)
	g.mu.Unlock()

	if g.started != nil {
		g.started <- dst
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}

	v, err := pipeline.Result{pipeline.OutputVideo: map[string]any{
		"data":          base64.StdEncoding.EncodeToString(mp4Header),
		"mime_type":     "video/mp4",
		"filename_hint": g.hint,
	}}.OutputVideo()
	if err != nil {
		return nil, err
	}
	if err := v.Save(ctx, dst); err != nil {
		return nil, err
	}
	return v, nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testApiConfig(t *testing.T) config.ApiConfig {
	t.Helper()
	return config.ApiConfig{
		OutputDir:     t.TempDir(),
		QueueSize:     4,
		MaxConcurrent: 1,
	}
}

func newTestJobService(t *testing.T, gen Generator, cfg config.ApiConfig) (*JobService, *Hub, *video.StatsRecorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stats := video.NewStatsRecorder(nil)
	s := NewJobService(ctx, hub, gen, stats, "test/model", cfg)
	t.Cleanup(func() {
		cancel()
		s.Shutdown()
	})
	return s, hub, stats
}

func waitForStatus(t *testing.T, s *JobService, id string, want video.JobStatus) VideoJob {
	t.Helper()
	var job VideoJob
	require.Eventually(t, func() bool {
		var err error
		job, err = s.Get(id)
		return err == nil && job.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func readEvent(t *testing.T, c *WSClient) WSEvent {
	t.Helper()
	select {
	case b := <-c.send:
		var ev WSEvent
		require.NoError(t, json.Unmarshal(b, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return WSEvent{}
	}
}

func TestJobService_CompletesJob(t *testing.T) {
	gen := &fakeGen{}
	s, hub, stats := newTestJobService(t, gen, testApiConfig(t))
	client := NewWSClient("c1", nil)
	hub.Add(client)
	s.Run()

	job, err := s.Submit(video.Request{Prompt: "A cat playing with a ball", Duration: 5}, "c1")
	require.NoError(t, err)
	assert.Equal(t, video.JobPending, job.Status)

	done := waitForStatus(t, s, job.ID, video.JobCompleted)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, "video/mp4", done.MimeType)
	assert.Empty(t, done.FileName)

	data, err := os.ReadFile(done.Path)
	require.NoError(t, err)
	assert.Equal(t, mp4Header, data)

	ev := readEvent(t, client)
	assert.Equal(t, "video.completed", ev.Type)
	assert.Equal(t, job.ID, ev.JobID)
	assert.Equal(t, "/video/download/"+job.ID, ev.DownloadURL)

	gen.mu.Lock()
	require.Len(t, gen.inputs, 1)
	assert.Equal(t, "A cat playing with a ball", gen.inputs[0][pipeline.InputText])
	gen.mu.Unlock()

	snap := stats.Snapshot()
	assert.Equal(t, int64(1), snap.Successful)
	assert.Equal(t, "test/model", snap.MostUsedModel)
}

func TestJobService_FailedJob(t *testing.T) {
	gen := &fakeGen{err: errors.New("backend exploded")}
	s, hub, stats := newTestJobService(t, gen, testApiConfig(t))
	client := NewWSClient("c1", nil)
	hub.Add(client)
	s.Run()

	job, err := s.Submit(video.Request{Prompt: "p", Duration: 1}, "c1")
	require.NoError(t, err)

	failed := waitForStatus(t, s, job.ID, video.JobFailed)
	assert.Contains(t, failed.Error, "backend exploded")
	assert.Empty(t, failed.Path)

	ev := readEvent(t, client)
	assert.Equal(t, "video.failed", ev.Type)
	assert.Equal(t, video.ErrGenerationFailed.Code, ev.Code)

	assert.Equal(t, int64(1), stats.Snapshot().Failed)
}

func TestJobService_CancelRunningJob(t *testing.T) {
	gen := &fakeGen{block: make(chan struct{}), started: make(chan string, 1)}
	s, hub, _ := newTestJobService(t, gen, testApiConfig(t))
	client := NewWSClient("c1", nil)
	hub.Add(client)
	s.Run()

	job, err := s.Submit(video.Request{Prompt: "p", Duration: 1}, "c1")
	require.NoError(t, err)

	dst := <-gen.started
	require.NoError(t, s.Cancel(job.ID))

	ev := readEvent(t, client)
	assert.Equal(t, "video.cancelled", ev.Type)

	got, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, video.JobCancelled, got.Status)
	assert.NoFileExists(t, dst)

	assert.ErrorIs(t, s.Cancel(job.ID), ErrJobFinished)
	assert.ErrorIs(t, s.Cancel("missing"), ErrJobNotFound)
}

func TestJobService_QueueFull(t *testing.T) {
	cfg := testApiConfig(t)
	cfg.QueueSize = 1
	s, _, _ := newTestJobService(t, &fakeGen{}, cfg)

	_, err := s.Submit(video.Request{Prompt: "one", Duration: 1}, "")
	require.NoError(t, err)

	_, err = s.Submit(video.Request{Prompt: "two", Duration: 1}, "")
	assert.ErrorIs(t, err, ErrJobQueueFull)
	assert.Len(t, s.List(), 1)
}

func TestJobService_SubmitAfterShutdown(t *testing.T) {
	s, _, _ := newTestJobService(t, &fakeGen{}, testApiConfig(t))
	s.Run()
	s.Shutdown()

	_, err := s.Submit(video.Request{Prompt: "late", Duration: 1}, "")
	assert.ErrorIs(t, err, ErrJobServiceShuttingDown)
}

func TestJobService_Cleanup(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)}
	s, _, _ := newTestJobService(t, &fakeGen{}, testApiConfig(t))
	s.now = clock.now
	s.Run()

	job, err := s.Submit(video.Request{Prompt: "p", Duration: 1}, "")
	require.NoError(t, err)
	done := waitForStatus(t, s, job.ID, video.JobCompleted)
	require.FileExists(t, done.Path)

	assert.Equal(t, 0, s.Cleanup(time.Hour))

	clock.advance(2 * time.Hour)
	assert.Equal(t, 1, s.Cleanup(time.Hour))
	assert.NoFileExists(t, done.Path)

	_, err = s.Get(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobService_ListSortedByCreation(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)}
	s, _, _ := newTestJobService(t, &fakeGen{}, testApiConfig(t))
	s.now = clock.now

	first, err := s.Submit(video.Request{Prompt: "a", Duration: 1}, "")
	require.NoError(t, err)
	clock.advance(time.Second)
	second, err := s.Submit(video.Request{Prompt: "b", Duration: 1}, "")
	require.NoError(t, err)

	jobs := s.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, first.ID, jobs[0].ID)
	assert.Equal(t, second.ID, jobs[1].ID)
}

func TestJobService_ShutdownDrainsJobs(t *testing.T) {
	gen := &fakeGen{block: make(chan struct{}), started: make(chan string, 2)}
	s, _, _ := newTestJobService(t, gen, testApiConfig(t))
	s.Run()

	running, err := s.Submit(video.Request{Prompt: "a", Duration: 1}, "")
	require.NoError(t, err)
	<-gen.started
	queued, err := s.Submit(video.Request{Prompt: "b", Duration: 1}, "")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()
	close(gen.block)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return")
	}

	for _, id := range []string{running.ID, queued.ID} {
		job, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, video.JobCompleted, job.Status)
	}
}
