package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"go.uber.org/zap"
)

// ScannerConfig configures the malware scanning client
type ScannerConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// Validate checks the configuration
func (c *ScannerConfig) Validate() error {
	if c == nil {
		return errors.New("scanner configuration is required")
	}
	if c.Endpoint == "" {
		return errors.New("scanner endpoint is required")
	}
	return nil
}

// HTTPMalwareScanner submits blobs to a scanning service (a clamd REST
// bridge in production) and reports whether they are infected.
type HTTPMalwareScanner struct {
	config     *ScannerConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPMalwareScanner creates a scanning client
func NewHTTPMalwareScanner(config *ScannerConfig, logger *zap.Logger) (*HTTPMalwareScanner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &HTTPMalwareScanner{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

type scanResponse struct {
	Infected  bool   `json:"infected"`
	Signature string `json:"signature"`
}

// Scan submits the content for scanning. A scan that cannot complete is an
// error; callers must treat that as a rejection, not a pass.
func (s *HTTPMalwareScanner) Scan(ctx context.Context, content []byte) (bool, string, error) {
	url := s.config.Endpoint + "/v1/scan"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return false, "", fmt.Errorf("failed to build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("scan request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, "", fmt.Errorf("failed to read scan response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("scanner returned status %d", resp.StatusCode)
	}

	var result scanResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, "", fmt.Errorf("failed to decode scan response: %w", err)
	}

	if result.Infected {
		s.logger.Warn("malware detected in uploaded content",
			zap.String("signature", result.Signature),
			zap.Int("size", len(content)),
		)
	}

	return result.Infected, result.Signature, nil
}

// Ensure HTTPMalwareScanner satisfies the application port
var _ onboardingapp.MalwareScanner = (*HTTPMalwareScanner)(nil)
