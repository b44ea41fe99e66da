package diagram

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const renderTimeout = 10 * time.Second

// Service submits validated diagram source to a Kroki-compatible rendering
// service and returns the rendered image as base64. Failures are terminal:
// callers degrade by keeping their content without a diagram.
type Service struct {
	baseURL string
	client  *http.Client
}

func NewService(baseURL string) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: renderTimeout},
	}
}

// Render validates, sanitizes and renders diagram source as an SVG, returned
// base64-encoded. There are no retries.
func (s *Service) Render(ctx context.Context, source string) (string, error) {
	if err := Validate(source); err != nil {
		log.Printf("[WARN] Diagram validation failed: %v", err)
		return "", err
	}

	sanitized := Sanitize(source)

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	url := s.baseURL + "/mermaid/svg"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(sanitized))
	if err != nil {
		return "", fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[WARN] Diagram rendering request failed: %v", err)
		return "", fmt.Errorf("diagram rendering request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[WARN] Diagram service returned status %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("diagram service returned status %d", resp.StatusCode)
	}

	imageBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read rendered diagram: %w", err)
	}
	if len(imageBytes) == 0 {
		return "", fmt.Errorf("diagram service returned an empty body")
	}

	return base64.StdEncoding.EncodeToString(imageBytes), nil
}
