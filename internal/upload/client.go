package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// Client uploads images to the CDN via multipart POST and returns the
// hosted secure URL.
type Client struct {
	httpClient *http.Client
	uploadURL  string
	preset     string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		uploadURL:  os.Getenv("IMAGE_CDN_URL"),
		preset:     os.Getenv("IMAGE_CDN_PRESET"),
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image bytes and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if c.uploadURL == "" {
		return "", fmt.Errorf("upload: IMAGE_CDN_URL is not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("upload: build form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("upload: copy content: %w", err)
	}
	if c.preset != "" {
		if err := writer.WriteField("upload_preset", c.preset); err != nil {
			return "", fmt.Errorf("upload: write preset: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("upload: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: request: %w", err)
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("upload: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload: CDN returned %d: %s", resp.StatusCode, parsed.Error.Message)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload: CDN response missing secure_url")
	}
	return parsed.SecureURL, nil
}
