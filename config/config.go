package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultTask   = "text-to-video-synthesis"
	DefaultModel  = "damo/text-to-video-synthesis"
	DefaultOutput = "output.mp4"
)

type Config struct {
	Rpc      RpcConfig      `yaml:"rpc"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Api      ApiConfig      `yaml:"api"`
	Hub      HubConfig      `yaml:"hub"`
	Log      LogConfig      `yaml:"log"`
}

type RpcConfig struct {
	Peer string `yaml:"peer"`
	Port string `yaml:"port"`
	// 0 disables the per-call deadline.
	TimeoutSeconds     int `yaml:"timeoutSeconds"`
	DialTimeoutSeconds int `yaml:"dialTimeoutSeconds"`
	MaxMessageMB       int `yaml:"maxMessageMB"`
}

type PipelineConfig struct {
	Task   string `yaml:"task"`
	Model  string `yaml:"model"`
	Output string `yaml:"output"`
}

type ApiConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowedOrigins"`
	OutputDir      string `yaml:"outputDir"`
	QueueSize      int    `yaml:"queueSize"`
	MaxConcurrent  int    `yaml:"maxConcurrent"`
	JobTTLMinutes  int    `yaml:"jobTTLMinutes"`
}

type HubConfig struct {
	ApiKey         string `yaml:"apiKey"`
	ModelInfoUrl   string `yaml:"modelInfoUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ApplyDefaults fills every unset field. The pipeline section falls back to
// the text-to-video task, its default model and ./output.mp4.
func (c *Config) ApplyDefaults() {
	if c.Rpc.Peer == "" {
		c.Rpc.Peer = "localhost"
	}
	if c.Rpc.Port == "" {
		c.Rpc.Port = "50051"
	}
	if c.Rpc.TimeoutSeconds < 0 {
		c.Rpc.TimeoutSeconds = 0
	}
	if c.Rpc.DialTimeoutSeconds <= 0 {
		c.Rpc.DialTimeoutSeconds = 240
	}
	if c.Rpc.MaxMessageMB <= 0 {
		c.Rpc.MaxMessageMB = 256
	}

	if c.Pipeline.Task == "" {
		c.Pipeline.Task = DefaultTask
	}
	if c.Pipeline.Model == "" {
		c.Pipeline.Model = DefaultModel
	}
	if c.Pipeline.Output == "" {
		c.Pipeline.Output = DefaultOutput
	}

	if c.Api.Port == "" {
		c.Api.Port = "8081"
	}
	if c.Api.AllowedOrigins == "" {
		c.Api.AllowedOrigins = "*"
	}
	if c.Api.OutputDir == "" {
		c.Api.OutputDir = "videos"
	}
	if c.Api.QueueSize <= 0 {
		c.Api.QueueSize = 32
	}
	if c.Api.MaxConcurrent <= 0 {
		c.Api.MaxConcurrent = 1
	}
	if c.Api.JobTTLMinutes <= 0 {
		c.Api.JobTTLMinutes = 24 * 60
	}

	if c.Hub.ApiKey == "" {
		c.Hub.ApiKey = os.Getenv("MODELSCOPE_API_TOKEN")
	}
	if c.Hub.ModelInfoUrl == "" {
		c.Hub.ModelInfoUrl = "https://modelscope.cn/api/v1/models"
	}
	if c.Hub.TimeoutSeconds <= 0 {
		c.Hub.TimeoutSeconds = 30
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Rpc.Peer) == "" {
		errs = append(errs, errors.New("rpc.peer is required"))
	}
	if strings.TrimSpace(c.Pipeline.Output) == "" {
		errs = append(errs, errors.New("pipeline.output is required"))
	}
	if c.Api.MaxConcurrent > c.Api.QueueSize {
		errs = append(errs, fmt.Errorf("api.maxConcurrent (%d) exceeds api.queueSize (%d)", c.Api.MaxConcurrent, c.Api.QueueSize))
	}
	return errors.Join(errs...)
}

func (r RpcConfig) CallTimeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

func (r RpcConfig) DialTimeout() time.Duration {
	if r.DialTimeoutSeconds <= 0 {
		return 240 * time.Second
	}
	return time.Duration(r.DialTimeoutSeconds) * time.Second
}

func (r RpcConfig) MaxMessageBytes() int {
	if r.MaxMessageMB <= 0 {
		return 256 << 20
	}
	return r.MaxMessageMB << 20
}

func (a ApiConfig) JobTTL() time.Duration {
	return time.Duration(a.JobTTLMinutes) * time.Minute
}

func (h HubConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}
