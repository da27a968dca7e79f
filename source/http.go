package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spektr-org/podes/engine"
)

// ============================================================================
// HTTP SOURCE — Remote backend client
// ============================================================================
// One GET per call, no retry. Failures surface as a single error.
// ============================================================================

// HTTPSource reads GET <base>/api/villages.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates a client for a backend rooted at baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Villages implements Source.
func (h *HTTPSource) Villages(ctx context.Context) ([]engine.VillageRecord, error) {
	url := h.baseURL + "/api/villages"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrBackend, url, resp.StatusCode, truncate(string(body), 200))
	}
	return DecodeVillagesJSON(body)
}

// Close implements Source.
func (h *HTTPSource) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
