package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultGatewayURL = "https://exp.host/--/api/v2/push/send"

// Client talks to the Expo push gateway. One message per call; the drivers
// layer handles fan-out across a user's devices.
type Client struct {
	httpClient *http.Client
	gatewayURL string
}

func NewClient() *Client {
	url := os.Getenv("PUSH_GATEWAY_URL")
	if url == "" {
		url = defaultGatewayURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		gatewayURL: url,
	}
}

type pushMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound"`
	Priority string            `json:"priority"`
}

type pushTicket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type pushResponse struct {
	Data []pushTicket `json:"data"`
}

// SendPush delivers a single push message to a device token.
func (c *Client) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal([]pushMessage{{
		To:       token,
		Title:    title,
		Body:     body,
		Data:     data,
		Sound:    "default",
		Priority: "high",
	}})
	if err != nil {
		return fmt.Errorf("push: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push: gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push: gateway returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("push: decode response: %w", err)
	}
	for _, ticket := range parsed.Data {
		if ticket.Status == "error" {
			return fmt.Errorf("push: gateway rejected message: %s", ticket.Message)
		}
	}
	return nil
}
