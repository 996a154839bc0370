// Package reports talks to the report backend that persists confirmed
// reports and answers status and statistics questions.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/pkg/metrics"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxRetries    = 2
	defaultRetryInterval = 200 * time.Millisecond
	maxErrorBody         = 512
)

// Config configures an HTTPClient.
type Config struct {
	BaseURL       string
	Token         string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// HTTPClient calls the report backend over HTTP.
type HTTPClient struct {
	baseURL       string
	token         string
	client        *http.Client
	maxRetries    uint64
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewHTTPClient creates an HTTPClient.
func NewHTTPClient(cfg Config, logger *zap.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         cfg.Token,
		client:        &http.Client{Timeout: cfg.Timeout},
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

type createPayload struct {
	OwnerID string `json:"ownerId"`
	model.ReportFields
}

// CreateReport persists a confirmed draft. The draft ID is sent as the
// idempotency key so a retried request cannot create a second report.
func (c *HTTPClient) CreateReport(ctx context.Context, req model.CreateReportRequest) (*model.CreatedReport, error) {
	payload, err := json.Marshal(createPayload{OwnerID: req.OwnerID, ReportFields: req.Fields})
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	var created model.CreatedReport
	err = c.do(ctx, "create", http.MethodPost, "/api/reports", payload, req.DraftID, &created)
	if err != nil {
		metrics.ReportCreateTotal.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	metrics.ReportCreateTotal.WithLabelValues("success").Inc()

	if created.ID == "" {
		return nil, fmt.Errorf("%w: response has no report id", ErrUnavailable)
	}
	return &created, nil
}

// ListByOwner returns the owner's most recent reports.
func (c *HTTPClient) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.ReportSummary, error) {
	q := url.Values{}
	q.Set("ownerId", ownerID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Reports []model.ReportSummary `json:"reports"`
	}
	if err := c.do(ctx, "list", http.MethodGet, "/api/reports?"+q.Encode(), nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// AreaStats returns report counts for an area.
func (c *HTTPClient) AreaStats(ctx context.Context, area string) (*model.AreaStats, error) {
	q := url.Values{}
	if area != "" {
		q.Set("area", area)
	}

	var stats model.AreaStats
	if err := c.do(ctx, "stats", http.MethodGet, "/api/reports/stats?"+q.Encode(), nil, "", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do sends a request, retrying transport failures and retryable statuses,
// and decodes a successful response into out.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body []byte, idempotencyKey string, out interface{}) error {
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := c.attempt(ctx, method, path, body, idempotencyKey, out)
		if err == nil {
			return nil
		}
		var apiErr *Error
		if errors.As(err, &apiErr) && !apiErr.Retryable {
			return backoff.Permanent(err)
		}
		c.logger.Warn("report backend call failed",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}, policy)

	metrics.ReportBackendDuration.WithLabelValues(op, outcome(err)).Observe(time.Since(start).Seconds())
	return err
}

func (c *HTTPClient) attempt(ctx context.Context, method, path string, body []byte, idempotencyKey string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: invalid response: %v", ErrUnavailable, err))
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}
