package vrf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HTTPCoordinator requests randomness from a remote oracle. The oracle
// answers asynchronously by calling back the consumer URL.
type HTTPCoordinator struct {
	BaseURL     string
	CallbackURL string
	cfg         Config
	client      *http.Client
}

type randomnessRequest struct {
	KeyHash              common.Hash `json:"keyHash"`
	CallbackGasLimit     uint32      `json:"callbackGasLimit"`
	RequestConfirmations uint16      `json:"requestConfirmations"`
	NumWords             uint32      `json:"numWords"`
	Consumer             string      `json:"consumer"`
}

type randomnessResponse struct {
	RequestID hexutil.Bytes `json:"requestId"`
}

// NewHTTPCoordinator creates a new HTTP coordinator
func NewHTTPCoordinator(baseURL, callbackURL string, cfg Config, timeout time.Duration) *HTTPCoordinator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCoordinator{
		BaseURL:     baseURL,
		CallbackURL: callbackURL,
		cfg:         cfg,
		client:      &http.Client{Timeout: timeout},
	}
}

// RequestRandomness posts a randomness request and returns the id assigned
// by the oracle.
func (c *HTTPCoordinator) RequestRandomness(ctx context.Context) (common.Hash, error) {
	jsonBody, err := json.Marshal(randomnessRequest{
		KeyHash:              c.cfg.KeyHash,
		CallbackGasLimit:     c.cfg.CallbackGasLimit,
		RequestConfirmations: c.cfg.RequestConfirmations,
		NumWords:             c.cfg.numWords(),
		Consumer:             c.CallbackURL,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/requests", bytes.NewReader(jsonBody))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return common.Hash{}, fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, string(body))
	}

	var response randomnessResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(response.RequestID) == 0 || len(response.RequestID) > common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: request id must be 1 to 32 bytes", ErrBadResponse)
	}
	id := common.BytesToHash(response.RequestID)
	if id == (common.Hash{}) {
		return common.Hash{}, fmt.Errorf("%w: zero request id", ErrBadResponse)
	}
	return id, nil
}
