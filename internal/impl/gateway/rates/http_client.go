package impl_rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	port_rates "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/rates"

	"github.com/shopspring/decimal"
)

type ratePayload struct {
	From string      `json:"from"`
	To   string      `json:"to"`
	Rate json.Number `json:"rate"`
}

// HTTPClient queries the reporting service: GET {base}/api/rate?from=X&to=Y.
// There is no fallback rate; any doubt about the answer is ErrUnavailable.
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

var _ port_rates.Client = (*HTTPClient)(nil)

func (c *HTTPClient) GetRate(ctx context.Context, from, to string) (port_rates.ExchangeRate, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/rate?"+q.Encode(), nil)
	if err != nil {
		return port_rates.ExchangeRate{}, fmt.Errorf("%w: build request: %w", port_rates.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return port_rates.ExchangeRate{}, fmt.Errorf("%w: %s->%s: %w", port_rates.ErrUnavailable, from, to, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return port_rates.ExchangeRate{}, errors.Join(port_rates.ErrInvalidPair, statusDetail(resp))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return port_rates.ExchangeRate{}, errors.Join(port_rates.ErrUnavailable, statusDetail(resp))
	}

	var payload ratePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return port_rates.ExchangeRate{}, fmt.Errorf("%w: decode rate: %w", port_rates.ErrUnavailable, err)
	}

	rate, err := decimal.NewFromString(payload.Rate.String())
	if err != nil || !rate.IsPositive() {
		return port_rates.ExchangeRate{}, fmt.Errorf("%w: invalid rate %q for %s->%s", port_rates.ErrUnavailable, payload.Rate, from, to)
	}

	if !matches(payload.From, from) || !matches(payload.To, to) {
		return port_rates.ExchangeRate{}, fmt.Errorf("%w: asked %s->%s, got %s->%s",
			port_rates.ErrUnavailable, from, to, payload.From, payload.To)
	}

	return port_rates.ExchangeRate{From: from, To: to, Rate: rate}, nil
}

// matches tolerates providers that omit the echoed currency.
func matches(got, want string) bool {
	return got == "" || strings.EqualFold(got, want)
}

func statusDetail(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
