package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"time"
)

const enrichmentAttempts = 3

// EnrichmentClient calls an external service that can improve a scripted
// reply. Failures fall back to the scripted reply; the assistant never
// blocks on this call succeeding.
type EnrichmentClient struct {
	httpClient *http.Client
	endpoint   string
}

func NewEnrichmentClient() *EnrichmentClient {
	return &EnrichmentClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		endpoint:   os.Getenv("CHAT_ENRICHMENT_URL"),
	}
}

type enrichmentRequest struct {
	Message string `json:"message"`
	Reply   string `json:"reply"`
}

type enrichmentResponse struct {
	Reply string `json:"reply"`
}

// Enrich asks the external service for a better reply, retrying with
// exponential backoff. On any persistent failure the scripted reply is
// returned unchanged.
func (c *EnrichmentClient) Enrich(ctx context.Context, message, scripted string) string {
	if c == nil || c.endpoint == "" {
		return scripted
	}

	body, err := json.Marshal(enrichmentRequest{Message: message, Reply: scripted})
	if err != nil {
		return scripted
	}

	for attempt := 0; attempt < enrichmentAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-ctx.Done():
				return scripted
			case <-time.After(delay):
			}
		}

		reply, err := c.call(ctx, body)
		if err != nil {
			log.Printf("Chat enrichment attempt %d failed: %v", attempt+1, err)
			continue
		}
		if reply != "" {
			return reply
		}
	}
	return scripted
}

func (c *EnrichmentClient) call(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enrichment service returned %d", resp.StatusCode)
	}

	var parsed enrichmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Reply, nil
}
