package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "text-to-video-synthesis", cfg.Pipeline.Task)
	assert.Equal(t, "damo/text-to-video-synthesis", cfg.Pipeline.Model)
	assert.Equal(t, "output.mp4", cfg.Pipeline.Output)
	assert.Equal(t, "localhost", cfg.Rpc.Peer)
	assert.Equal(t, "50051", cfg.Rpc.Port)
	assert.Equal(t, "*", cfg.Api.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Api.JobTTL())
	assert.Equal(t, 256<<20, cfg.Rpc.MaxMessageBytes())
	assert.Zero(t, cfg.Rpc.CallTimeout())
	require.NoError(t, cfg.Validate())
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Rpc:      RpcConfig{Peer: "inference", Port: "9000", TimeoutSeconds: 30},
		Pipeline: PipelineConfig{Model: "me/model", Output: "/tmp/out.mp4"},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "inference", cfg.Rpc.Peer)
	assert.Equal(t, 30*time.Second, cfg.Rpc.CallTimeout())
	assert.Equal(t, "me/model", cfg.Pipeline.Model)
	assert.Equal(t, "/tmp/out.mp4", cfg.Pipeline.Output)
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Api.MaxConcurrent = 64
	cfg.Api.QueueSize = 4

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxConcurrent")
}

func TestApplyDefaults_HubTokenFromEnv(t *testing.T) {
	t.Setenv("MODELSCOPE_API_TOKEN", "secret")

	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "secret", cfg.Hub.ApiKey)

	cfg = Config{Hub: HubConfig{ApiKey: "explicit"}}
	cfg.ApplyDefaults()
	assert.Equal(t, "explicit", cfg.Hub.ApiKey)
}
