package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/telemetry"
)

// FormulasPath is appended to the configured base URL.
const FormulasPath = "/api/formulas"

const maxBodyBytes = 8 << 20

// ErrDecode wraps failures to parse the response body as a formula array.
var ErrDecode = errors.New("apiclient: malformed formulas response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.Code)
}

// Client fetches formulas from the formulas API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. Trailing slashes are trimmed.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the full formulas endpoint.
func (c *Client) URL() string {
	return c.baseURL + FormulasPath
}

// Fetch performs one GET of the formulas endpoint and decodes the array,
// preserving server order.
func (c *Client) Fetch(ctx context.Context) ([]formula.Formula, error) {
	ctx, span := telemetry.Tracer("apiclient").Start(ctx, "formulas.fetch")
	defer span.End()

	formulas, err := c.fetch(ctx, span.SetAttributes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("fetching formulas failed", zap.String("url", c.URL()), zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("formulas.count", len(formulas)))
	c.logger.Debug("fetched formulas", zap.String("url", c.URL()), zap.Int("count", len(formulas)))
	return formulas, nil
}

func (c *Client) fetch(ctx context.Context, annotate func(...attribute.KeyValue)) ([]formula.Formula, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching formulas: %w", err)
	}
	defer resp.Body.Close()

	annotate(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
			c.logger.Debug("draining error response", zap.Int("status", resp.StatusCode), zap.Error(err))
		}
		return nil, &StatusError{Code: resp.StatusCode, URL: c.URL()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d byte limit", ErrDecode, maxBodyBytes)
	}

	var formulas []formula.Formula
	if err := json.Unmarshal(body, &formulas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if formulas == nil {
		// a literal null is not an array
		return nil, fmt.Errorf("%w: expected array, got null", ErrDecode)
	}
	return formulas, nil
}
