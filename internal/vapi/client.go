package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.vapi.ai"

// Client is a thin HTTP client for the voice-call provider. It covers
// the two endpoints the workflow consumes: fetching an assistant's
// current configuration and placing an outbound call.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Assistant is the subset of the provider's assistant object the
// trigger needs. Model is kept as a raw map so provider-managed fields
// survive the round trip into the call override untouched.
type Assistant struct {
	ID    string         `json:"id"`
	Model map[string]any `json:"model"`
}

type Customer struct {
	Number string `json:"number"`
}

type AssistantOverrides struct {
	Model map[string]any `json:"model,omitempty"`
}

type CallRequest struct {
	AssistantID        string              `json:"assistantId"`
	PhoneNumberID      string              `json:"phoneNumberId"`
	Customer           Customer            `json:"customer"`
	AssistantOverrides *AssistantOverrides `json:"assistantOverrides,omitempty"`
}

// Call is the provider's call object as returned from call placement.
type Call struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) GetAssistant(ctx context.Context, assistantID string) (Assistant, error) {
	var out Assistant
	err := c.do(ctx, http.MethodGet, "/assistant/"+assistantID, nil, &out)
	if err != nil {
		return Assistant{}, fmt.Errorf("fetch assistant config: %w", err)
	}
	return out, nil
}

func (c *Client) CreateCall(ctx context.Context, req CallRequest) (Call, error) {
	var out Call
	if err := c.do(ctx, http.MethodPost, "/call", req, &out); err != nil {
		return Call{}, fmt.Errorf("place call: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body capped so a misbehaving provider cannot blow up logs.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
