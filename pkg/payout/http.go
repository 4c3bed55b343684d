package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// HTTPGateway sends payouts to a remote transfer service.
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

type transferRequest struct {
	To        common.Address `json:"to"`
	AmountWei string         `json:"amountWei"`
	Reference string         `json:"reference"`
}

// NewHTTPGateway creates a new HTTP payout gateway
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Pay posts a transfer of amount to to. reference is sent as the transfer
// reference and as the Idempotency-Key header, so the service can drop a
// repeated attempt. Any non-2xx answer is a failed transfer.
func (g *HTTPGateway) Pay(ctx context.Context, reference string, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if reference == "" {
		return ErrMissingReference
	}

	jsonBody, err := json.Marshal(transferRequest{
		To:        to,
		AmountWei: amount.String(),
		Reference: reference,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/transfers", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", reference)
	if g.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.APIKey))
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrTransferFailed, resp.StatusCode, string(body))
	}
	return nil
}
