package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"t2v/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  []pipeline.Input
	result pipeline.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, in pipeline.Input) (pipeline.Result, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func videoResult(data string) pipeline.Result {
	return pipeline.Result{pipeline.OutputVideo: []byte(data)}
}

func TestGenerate_WritesOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.mp4")
	runner := &fakeRunner{result: videoResult("video-bytes")}

	path, err := New(runner, out).Generate(context.Background(), "A cat playing with a ball")
	require.NoError(t, err)
	assert.Equal(t, out, path)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, pipeline.Input{"text": "A cat playing with a ball"}, runner.calls[0])

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(got))

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_PromptIsNotModified(t *testing.T) {
	for _, prompt := range []string{"", "  padded  ", "multi\nline"} {
		runner := &fakeRunner{result: videoResult("v")}
		_, err := New(runner, filepath.Join(t.TempDir(), "o.mp4")).Generate(context.Background(), prompt)
		require.NoError(t, err)
		assert.Equal(t, prompt, runner.calls[0][pipeline.InputText])
		assert.Len(t, runner.calls[0], 1)
	}
}

func TestGenerate_FaultLeavesNoFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.mp4")
	boom := errors.New("out of memory")

	_, err := New(&fakeRunner{err: boom}, out).Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_FaultKeepsPreviousOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.mp4")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	_, err := New(&fakeRunner{result: pipeline.Result{}}, out).Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, pipeline.ErrNoOutputVideo)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestGenerate_RerunOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.mp4")
	runner := &fakeRunner{result: videoResult("first")}
	d := New(runner, out)

	_, err := d.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	runner.result = videoResult("second")
	_, err = d.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestNew_DefaultOutput(t *testing.T) {
	assert.Equal(t, "output.mp4", New(&fakeRunner{}, "").Output())
}
