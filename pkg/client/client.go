// Package client is a small HTTP client for the raffle API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Message string
	Body    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the /api/v1 endpoints of one server
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for baseURL, e.g. http://localhost:4000. token may
// be empty for public endpoints.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that sends token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// UpkeepResponse is the answer of GET /lottery/upkeep
type UpkeepResponse struct {
	UpkeepNeeded bool                `json:"upkeepNeeded"`
	Conditions   lottery.UpkeepCheck `json:"conditions"`
}

// EnterResponse is the answer of POST /lottery/enter
type EnterResponse struct {
	Player          string `json:"player"`
	PaymentWei      string `json:"paymentWei"`
	NumberOfPlayers int    `json:"numberOfPlayers"`
	PoolWei         string `json:"poolWei"`
	Round           uint64 `json:"round"`
}

// FulfillResponse is the answer of POST /oracle/fulfill
type FulfillResponse struct {
	Round       uint64 `json:"round"`
	RequestID   string `json:"requestId"`
	Winner      string `json:"winner"`
	WinnerIndex int    `json:"winnerIndex"`
	Players     int    `json:"players"`
	PrizeWei    string `json:"prizeWei"`
}

// RoundsResponse is one page of completed rounds
type RoundsResponse struct {
	Rounds []*models.RoundResult `json:"rounds"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func (c *Client) Status(ctx context.Context) (*models.LotteryStatus, error) {
	var out models.LotteryStatus
	if err := c.do(ctx, http.MethodGet, "/lottery", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enter pays payment into the lottery. player is ignored by the server for
// player tokens.
func (c *Client) Enter(ctx context.Context, player string, payment *big.Int) (*EnterResponse, error) {
	body := map[string]string{"paymentWei": payment.String()}
	if player != "" {
		body["player"] = player
	}
	var out EnterResponse
	if err := c.do(ctx, http.MethodPost, "/lottery/enter", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckUpkeep(ctx context.Context) (*UpkeepResponse, error) {
	var out UpkeepResponse
	if err := c.do(ctx, http.MethodGet, "/lottery/upkeep", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PerformUpkeep returns the request id of the randomness request
func (c *Client) PerformUpkeep(ctx context.Context) (string, error) {
	var out struct {
		RequestID string `json:"requestId"`
	}
	if err := c.do(ctx, http.MethodPost, "/lottery/upkeep", nil, &out); err != nil {
		return "", err
	}
	return out.RequestID, nil
}

func (c *Client) Fulfill(ctx context.Context, requestID string, words []string) (*FulfillResponse, error) {
	body := map[string]any{"requestId": requestID, "randomWords": words}
	var out FulfillResponse
	if err := c.do(ctx, http.MethodPost, "/oracle/fulfill", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Rounds(ctx context.Context, limit, offset int) (*RoundsResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out RoundsResponse
	if err := c.do(ctx, http.MethodGet, "/rounds?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges the operator password for an operator token
func (c *Client) Login(ctx context.Context, password string) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IssueToken asks the server for a token for subject. Needs an operator
// token.
func (c *Client) IssueToken(ctx context.Context, subject, role string) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token", models.TokenRequest{Subject: subject, Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if json.Unmarshal(raw, &apiErr.Body) == nil {
			if msg, ok := apiErr.Body["error"].(string); ok {
				apiErr.Message = msg
			}
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
