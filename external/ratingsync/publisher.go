package ratingsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/riskibarqy/box-league/internal/platform/resilience"
	"github.com/riskibarqy/box-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultMatchesPath = "/v1/matches"

var errRatingTransient = crerr.New("rating service transient failure")

type Config struct {
	BaseURL        string
	MatchesPath    string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher posts completed matches to the external rating service. The match
// id is sent as the idempotency key so a resubmitted week does not double count.
type Publisher struct {
	client      *http.Client
	baseURL     string
	matchesPath string
	token       string
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
}

var _ usecase.RatingPublisher = (*Publisher)(nil)

func NewPublisher(cfg Config, logger *logging.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	path := strings.TrimSpace(cfg.MatchesPath)
	if path == "" {
		path = defaultMatchesPath
	}

	p := &Publisher{
		client:      &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		matchesPath: "/" + strings.TrimLeft(path, "/"),
		token:       strings.TrimSpace(cfg.Token),
		logger:      logger,
		breaker:     resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
	p.breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("rating service circuit breaker state changed", "from", from, "to", to)
	})
	return p
}

func (p *Publisher) PublishMatch(ctx context.Context, submission usecase.RatingSubmission) error {
	if strings.TrimSpace(submission.MatchID) == "" {
		return crerr.New("match id is required")
	}
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "rating service circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("rating service is temporarily unavailable: %w", err)
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid RATING_SYNC_BASE_URL")
	}
	endpoint := baseURL + p.matchesPath

	body, err := sonic.Marshal(submission)
	if err != nil {
		return crerr.Wrap(err, "marshal rating submission")
	}
	bodyText := truncateForLog(string(body), 4096)
	curlPreview := buildCurlPreview(endpoint, submission.MatchID, bodyText)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("ratingsync.endpoint", endpoint),
			attribute.String("ratingsync.match_id", submission.MatchID),
			attribute.Int("ratingsync.week_number", submission.WeekNumber),
			attribute.Int("ratingsync.box_number", submission.BoxNumber),
			attribute.String("ratingsync.request_curl_preview", curlPreview),
		)
	}
	p.logger.DebugContext(ctx, "rating submission request", "match_id", submission.MatchID, "endpoint", endpoint, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create rating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", submission.MatchID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: submit match_id=%s endpoint=%s: %v", errRatingTransient, submission.MatchID, endpoint, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusConflict {
		p.logger.InfoContext(ctx, "match already rated", "match_id", submission.MatchID)
		p.recordCircuitResult(nil)
		return nil
	}
	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf("submit match_id=%s status=%d body=%s", submission.MatchID, resp.StatusCode, strings.TrimSpace(string(raw)))
		if isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %w", errRatingTransient, callErr)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "match submitted for rating", "match_id", submission.MatchID, "box", submission.BoxNumber)
	p.recordCircuitResult(nil)
	return nil
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(endpoint, matchID, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(endpoint))
	appendHeader("Authorization: Bearer ***")
	appendHeader("Content-Type: application/json")
	appendHeader("Idempotency-Key: " + matchID)
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func (p *Publisher) recordCircuitResult(err error) {
	p.breaker.Record(err, func(err error) bool { return errors.Is(err, errRatingTransient) })
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
