// internal/oracle/http.go
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

// HTTPOracle reads pool market stats from a JSON endpoint.
type HTTPOracle struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Oracle = (*HTTPOracle)(nil)

func NewHTTPOracle(baseURL string, logger *zap.Logger) *HTTPOracle {
	return &HTTPOracle{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger.Named("oracle"),
	}
}

type statsResponse struct {
	HoldersCount int64   `json:"holdersCount"`
	VolumeUsd    float64 `json:"volumeUsd"`
}

func (o *HTTPOracle) Read(ctx context.Context, poolAddress string) (*Reading, error) {
	endpoint := fmt.Sprintf("%s/pools/%s/stats", o.baseURL, url.PathEscape(poolAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("oracle request build: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oracle response read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned %d: %s", resp.StatusCode, string(body))
	}

	var stats statsResponse
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("oracle response decode: %w", err)
	}
	return &Reading{
		HoldersCount: stats.HoldersCount,
		VolumeUsd:    stats.VolumeUsd,
	}, nil
}
