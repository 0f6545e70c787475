package anubis

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/box-league/internal/domain/user"
	"github.com/riskibarqy/box-league/internal/platform/cache"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/riskibarqy/box-league/internal/platform/resilience"
	"github.com/riskibarqy/box-league/internal/usecase"
)

const (
	defaultPrincipalTTL     = time.Minute
	defaultPrincipalEntries = 10000
	maxResponseBytes        = 1 << 20
)

var errAnubisTransient = crerr.New("anubis transient failure")

type CircuitBreakerConfig = resilience.CircuitBreakerConfig

// Client verifies bearer tokens against the Anubis introspection endpoint.
// Verified principals are cached by token digest; rejected tokens are not.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	logger        *logging.Logger
	principals    *cache.Store[user.Principal]
	breaker       *resilience.CircuitBreaker
}

type ClientOption func(*Client)

// WithPrincipalCache overrides how long verified principals are reused. A zero ttl disables caching.
func WithPrincipalCache(ttl time.Duration, maxEntries int) ClientOption {
	return func(c *Client) {
		c.principals = cache.New[user.Principal](ttl, maxEntries)
	}
}

func NewClient(
	httpClient *http.Client,
	baseURL, introspectPath, adminKey string,
	breakerCfg CircuitBreakerConfig,
	logger *logging.Logger,
	opts ...ClientOption,
) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	c := &Client{
		httpClient:    httpClient,
		introspectURL: joinURL(baseURL, introspectPath),
		adminKey:      strings.TrimSpace(adminKey),
		logger:        logger,
		principals:    cache.New[user.Principal](defaultPrincipalTTL, defaultPrincipalEntries),
		breaker:       resilience.NewCircuitBreaker(breakerCfg),
	}
	c.breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("anubis circuit breaker state changed", "from", from, "to", to)
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	digest := sha256.Sum256([]byte(token))
	return c.principals.GetOrLoad(ctx, hex.EncodeToString(digest[:]), func(ctx context.Context) (user.Principal, error) {
		return c.introspect(ctx, token)
	})
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: anubis is temporarily unavailable: %w", usecase.ErrDependencyUnavailable, err)
	}

	principal, err := c.doIntrospect(ctx, token)
	c.breaker.Record(err, func(err error) bool { return errors.Is(err, errAnubisTransient) })
	return principal, err
}

func (c *Client) doIntrospect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: request introspection: %v", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: read introspect response: %v", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		c.logger.ErrorContext(ctx, "anubis rejected the admin key", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: anubis rejected the admin key", usecase.ErrDependencyUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "anubis introspection unavailable", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: %w: status %d", usecase.ErrDependencyUnavailable, errAnubisTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("anubis introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID:      decoded.UserID,
		Email:       decoded.Email,
		DisplayName: decoded.Name,
		Roles:       decoded.Roles,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool     `json:"active"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
}

// joinURL resolves path against baseURL unless path is already absolute.
func joinURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return baseURL
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case !strings.HasPrefix(path, "/"):
		path = "/" + path
	}
	return baseURL + path
}
