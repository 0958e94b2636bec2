package types

import "time"

type VideoGenerateRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt"`
	Duration       int     `json:"duration"`
	Resolution     string  `json:"resolution"`
	Aspect         string  `json:"aspect"`
	Style          string  `json:"style"`
	FPS            int     `json:"fps"`
	Seed           int64   `json:"seed"`
	CFGScale       float64 `json:"cfgScale"`
	Steps          int     `json:"steps"`
	UserID         string  `json:"userId"`
	Tier           string  `json:"tier"`
	// ClientID selects the websocket that receives job events.
	ClientID string `json:"clientId"`
}

type VideoGenerateResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type JobResponse struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Model     string    `json:"model"`
	MimeType  string    `json:"mimeType,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type CapabilitiesResponse struct {
	Task                 string   `json:"task"`
	Model                string   `json:"model"`
	SupportedResolutions []string `json:"supportedResolutions"`
	SupportedAspects     []string `json:"supportedAspects"`
	SupportedStyles      []string `json:"supportedStyles"`
	MaxDuration          int      `json:"maxDuration"`
}

type ModelInfoResponse struct {
	ModelID     string   `json:"modelId"`
	Tasks       []string `json:"tasks"`
	License     string   `json:"license,omitempty"`
	Downloads   int64    `json:"downloads"`
	LastUpdated int64    `json:"lastUpdated"`
}

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status    int    `json:"status"`
	Backend   string `json:"backend"`
	Clients   int    `json:"clients"`
	TimeStamp int64  `json:"timestamp"`
}
