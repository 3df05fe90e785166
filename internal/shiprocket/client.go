package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gavran-magic/order-service/internal/config"
)

// ErrAuthFailed marks any failure to obtain a session token. Callers treat it
// differently from other carrier errors: a carrier that cannot even log us in
// must not block checkout.
var ErrAuthFailed = errors.New("shiprocket authentication failed")

// Client talks to the external Shiprocket API. One client owns one session
// token; the token is presence-only (no expiry tracking) and is acquired
// lazily on the first call that needs it. Every call is a single attempt,
// there is no retry.
type Client struct {
	logger   *slog.Logger
	httpc    *http.Client
	baseURL  string
	email    string
	password string

	mu    sync.Mutex
	token string
}

func New(logger *slog.Logger, cfg config.Shiprocket) *Client {
	return &Client{
		logger:   logger.With(slog.String("client", "shiprocket")),
		httpc:    &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		email:    cfg.Email,
		password: cfg.Password,
	}
}

// Authenticate logs in and replaces the cached session token.
func (c *Client) Authenticate(ctx context.Context) error {
	token, err := c.login(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// ensureToken returns the cached token, logging in first if none is present.
// The lock covers the whole check-and-set, so concurrent callers cannot
// corrupt the session; at worst one of them waits for the other's login.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{Email: c.email, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuthFailed, res.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(res.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if lr.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrAuthFailed)
	}

	c.logger.Debug("authenticated at carrier")
	return lr.Token, nil
}

// CheckServiceability asks the carrier which couriers can deliver between the
// two pincodes. An empty courier list is a valid answer, not an error.
func (c *Client) CheckServiceability(ctx context.Context, pickupPincode, deliveryPincode string, weight float64, cod bool) (Serviceability, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return Serviceability{}, err
	}

	codFlag := "0"
	if cod {
		codFlag = "1"
	}
	query := url.Values{
		"pickup_postcode":   {pickupPincode},
		"delivery_postcode": {deliveryPincode},
		"cod":               {codFlag},
		"weight":            {strconv.FormatFloat(weight, 'f', -1, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/courier/serviceability?"+query.Encode(), nil)
	if err != nil {
		return Serviceability{}, fmt.Errorf("failed to build serviceability request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpc.Do(req)
	if err != nil {
		return Serviceability{}, fmt.Errorf("serviceability request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Serviceability{}, fmt.Errorf("serviceability request failed: status %d: %s", res.StatusCode, readBody(res.Body))
	}

	var sr serviceabilityResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return Serviceability{}, fmt.Errorf("failed to decode serviceability response: %w", err)
	}

	return Serviceability{Couriers: sr.Data.AvailableCourierCompanies}, nil
}

// CreateOrder registers the order with the carrier and returns the identifier
// the carrier assigned to it.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (OrderResponse, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return OrderResponse{}, err
	}

	body, err := json.Marshal(order)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("failed to marshal carrier order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/create/adhoc", bytes.NewReader(body))
	if err != nil {
		return OrderResponse{}, fmt.Errorf("failed to build carrier order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpc.Do(req)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("carrier order request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return OrderResponse{}, fmt.Errorf("carrier order request failed: status %d: %s", res.StatusCode, readBody(res.Body))
	}

	var or OrderResponse
	if err := json.NewDecoder(res.Body).Decode(&or); err != nil {
		return OrderResponse{}, fmt.Errorf("failed to decode carrier order response: %w", err)
	}
	if or.OrderID == 0 {
		return OrderResponse{}, fmt.Errorf("carrier did not assign an order id")
	}

	return or, nil
}

const maxErrorBody = 512

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(b)
}
