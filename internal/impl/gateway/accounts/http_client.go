package impl_accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	port_accounts "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/accounts"

	"github.com/shopspring/decimal"
)

const maxErrorBody = 1 << 10

type accountPayload struct {
	ID       string      `json:"id,omitempty"`
	Currency string      `json:"currency"`
	Balance  json.Number `json:"balance"`
}

type updatePayload struct {
	ID              string      `json:"id"`
	Currency        string      `json:"currency"`
	Balance         json.Number `json:"balance"`
	ExpectedBalance json.Number `json:"expected_balance"`
}

// HTTPClient talks to the account store over REST:
// GET and PUT {base}/accounts/{id}. Writes are conditional: the PUT carries the
// balance it replaces and, when the store issued an ETag on read, If-Match.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

var _ port_accounts.Client = (*HTTPClient)(nil)

func (c *HTTPClient) GetAccount(ctx context.Context, id string) (port_accounts.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.accountURL(id), nil)
	if err != nil {
		return port_accounts.Account{}, fmt.Errorf("%w: build request: %w", port_accounts.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, id string, update port_accounts.Update) (port_accounts.Account, error) {
	body, err := json.Marshal(updatePayload{
		ID:              id,
		Currency:        update.Currency,
		Balance:         json.Number(update.Balance.String()),
		ExpectedBalance: json.Number(update.ExpectedBalance.String()),
	})
	if err != nil {
		return port_accounts.Account{}, fmt.Errorf("%w: encode account: %w", port_accounts.ErrRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.accountURL(id), bytes.NewReader(body))
	if err != nil {
		return port_accounts.Account{}, fmt.Errorf("%w: build request: %w", port_accounts.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if update.Version != "" {
		req.Header.Set("If-Match", update.Version)
	}

	return c.do(req)
}

func (c *HTTPClient) accountURL(id string) string {
	return c.baseURL + "/accounts/" + url.PathEscape(id)
}

func (c *HTTPClient) do(req *http.Request) (port_accounts.Account, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return port_accounts.Account{}, fmt.Errorf("%w: %s %s: %w", port_accounts.ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return port_accounts.Account{}, err
	}

	var payload accountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return port_accounts.Account{}, fmt.Errorf("%w: decode account: %w", port_accounts.ErrUnavailable, err)
	}

	balance, err := decimal.NewFromString(payload.Balance.String())
	if err != nil {
		return port_accounts.Account{}, fmt.Errorf("%w: account balance %q: %w", port_accounts.ErrUnavailable, payload.Balance, err)
	}

	return port_accounts.Account{
		ID:       payload.ID,
		Currency: payload.Currency,
		Balance:  balance,
		Version:  resp.Header.Get("ETag"),
	}, nil
}

// statusError maps a non-2xx response. Only statuses that prove the request was
// not applied are reported as definitive failures.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))

	var kind error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = port_accounts.ErrNotFound
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusPreconditionFailed,
		resp.StatusCode == http.StatusUnprocessableEntity:
		kind = port_accounts.ErrConflict
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode >= 500:
		kind = port_accounts.ErrUnavailable
	case resp.StatusCode >= 400:
		kind = port_accounts.ErrRejected
	default:
		kind = port_accounts.ErrUnavailable
	}

	return errors.Join(kind, detail)
}
