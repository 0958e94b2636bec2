package modelhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"t2v/config"
	"t2v/internal/clients/transport"
)

var (
	ErrInvalidModelID = errors.New("model id must look like owner/name")
	ErrModelNotFound  = errors.New("model not found")
)

type Hub struct {
	api_key    string
	httpClient *http.Client

	modelInfoUrl string
}

func NewHubClient(config config.HubConfig) *Hub {

	return &Hub{
		api_key:      config.ApiKey,
		modelInfoUrl: config.ModelInfoUrl,
		httpClient:   &http.Client{Timeout: config.Timeout()},
	}
}

func urlWithID(template, id string) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return ""
	}
	if strings.Contains(template, "{id}") {
		return strings.ReplaceAll(template, "{id}", id)
	}
	if strings.Contains(template, "%s") {
		// Allows config like: "https://.../%s/revisions"
		return fmt.Sprintf(template, id)
	}
	if strings.HasSuffix(template, "/") {
		return template + id
	}
	return template + "/" + id
}

func validID(id string) bool {
	owner, name, ok := strings.Cut(id, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/") && !strings.Contains(id, "..")
}

func (h *Hub) GetModelInfo(ctx context.Context, id string) (ModelInfo, error) {
	id = strings.TrimSpace(id)
	if !validID(id) {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrInvalidModelID, id)
	}

	headers := map[string]string{
		"Accept": "application/json",
	}
	if h.api_key != "" {
		headers["Authorization"] = "Bearer " + h.api_key
	}

	url := urlWithID(h.modelInfoUrl, id)
	resp, err := transport.Get[ModelResponse](h.httpClient, ctx, url, headers)
	if err != nil {
		if errors.Is(err, transport.ErrNotFound) {
			return ModelInfo{}, fmt.Errorf("%w: %s", ErrModelNotFound, id)
		}
		return ModelInfo{}, err
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("code %d", resp.Code)
		}
		return ModelInfo{}, fmt.Errorf("%w: %s: %s", ErrModelNotFound, id, msg)
	}

	return resp.Data, nil
}
