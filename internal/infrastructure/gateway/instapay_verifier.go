// Package gateway holds adapters for external verification providers: the
// InstaPay transaction lookup and the malware scanning service.
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

// InstaPayConfig configures the InstaPay verification client
type InstaPayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Validate checks the configuration
func (c *InstaPayConfig) Validate() error {
	if c == nil {
		return errors.New("instapay configuration is required")
	}
	if c.BaseURL == "" {
		return errors.New("instapay base URL is required")
	}
	if c.APIKey == "" {
		return errors.New("instapay API key is required")
	}
	return nil
}

// InstaPayVerifier confirms reported transactions against the InstaPay
// transaction inquiry API.
type InstaPayVerifier struct {
	config     *InstaPayConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewInstaPayVerifier creates an InstaPay verification client
func NewInstaPayVerifier(config *InstaPayConfig, logger *zap.Logger) (*InstaPayVerifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &InstaPayVerifier{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

type verifyRequest struct {
	TransactionID   string `json:"transaction_id"`
	ReceiverAddress string `json:"receiver_address"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
}

type verifyResponse struct {
	Confirmed       bool   `json:"confirmed"`
	ConfirmationRef string `json:"confirmation_ref"`
	Reason          string `json:"reason"`
}

// Confirm asks InstaPay whether the transaction exists with the given
// receiver and amount. The context deadline bounds the call; expiry is
// surfaced as an error, never a hang.
func (v *InstaPayVerifier) Confirm(ctx context.Context, transactionID, receiverAddress, amount, currency string) (bool, string, error) {
	payload, err := json.Marshal(verifyRequest{
		TransactionID:   transactionID,
		ReceiverAddress: receiverAddress,
		Amount:          amount,
		Currency:        currency,
	})
	if err != nil {
		return false, "", fmt.Errorf("failed to encode verification request: %w", err)
	}

	url := v.config.BaseURL + "/v1/transactions/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, "", fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.config.APIKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("instapay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, "", fmt.Errorf("failed to read instapay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("instapay returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("transaction_id", transactionID),
		)
		return false, "", fmt.Errorf("instapay returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, "", fmt.Errorf("failed to decode instapay response: %w", err)
	}

	if !result.Confirmed {
		v.logger.Info("transaction not confirmed by provider",
			zap.String("transaction_id", transactionID),
			zap.String("reason", result.Reason),
		)
	}

	return result.Confirmed, result.ConfirmationRef, nil
}

// Ensure InstaPayVerifier satisfies the application port
var _ onboardingapp.BankVerifier = (*InstaPayVerifier)(nil)
