// internal/engine/provider/httpapi.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/common/httpclient"
)

// HTTPProvider sends messages through a generic JSON SMS gateway API:
// POST {url} with {"to","body","from"} and a bearer key, expecting
// {"message_id","cost"} back. Individual gateways differ only in endpoint
// and credentials, which is all this engine depends on.
type HTTPProvider struct {
	name   string
	url    string
	apiKey string
	from   string
	client *httpclient.Client
}

func NewHTTPProvider(name, url, apiKey, from string) *HTTPProvider {
	return &HTTPProvider{
		name:   name,
		url:    url,
		apiKey: apiKey,
		from:   from,
		client: httpclient.NewClient(15 * time.Second),
	}
}

func (p *HTTPProvider) Name() string { return p.name }

type httpSendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
	From string `json:"from,omitempty"`
}

type httpSendResponse struct {
	MessageID string  `json:"message_id"`
	Cost      float64 `json:"cost"`
	Error     string  `json:"error,omitempty"`
}

func (p *HTTPProvider) Send(ctx context.Context, destination, body string) (*Result, error) {
	payload, err := json.Marshal(httpSendRequest{To: destination, Body: body, From: p.from})
	if err != nil {
		return nil, engerrors.NewPermanentProviderFailureError(p.name, err)
	}

	resp, err := p.client.PostJSON(ctx, p.url, payload, map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	})
	if err != nil {
		// network errors and client timeouts are retryable
		return nil, engerrors.NewTransientProviderFailureError(p.name, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var out httpSendResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, engerrors.NewTransientProviderFailureError(p.name, err)
		}
		return &Result{Provider: p.name, MessageID: out.MessageID, Cost: out.Cost}, nil

	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode >= 500:
		return nil, engerrors.NewTransientProviderFailureError(p.name,
			fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, raw))

	default:
		// 4xx: malformed destination, rejected by carrier, bad credentials
		return nil, engerrors.NewPermanentProviderFailureError(p.name,
			fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, raw))
	}
}
