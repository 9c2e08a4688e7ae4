package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"homeserve/internal/infra"
	"homeserve/internal/pkg/config"
)

// Client forwards assistant prompts to the external assist service. The
// core adds no prompt logic of its own; it is a thin authenticated relay
// with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.AssistConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type assistRequestBody struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

type assistResponseBody struct {
	Reply string `json:"reply"`
}

func (c *Client) Send(ctx context.Context, message, language string) (string, error) {
	payload, err := json.Marshal(assistRequestBody{Message: message, Language: language})
	if err != nil {
		return "", infra.WrapRepoErr(infra.KindStoreFailure, "failed to encode assist request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assist", bytes.NewReader(payload))
	if err != nil {
		return "", infra.WrapRepoErr(infra.KindStoreFailure, "failed to build assist request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", infra.WrapRepoErr(infra.KindTransient, "assist service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("assist service returned %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 500 {
			return "", infra.WrapRepoErr(infra.KindTransient, "assist service failed", err)
		}
		return "", infra.WrapRepoErr(infra.KindStoreFailure, "assist request rejected", err)
	}

	var out assistResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", infra.WrapRepoErr(infra.KindStoreFailure, "failed to decode assist response", err)
	}
	return out.Reply, nil
}
