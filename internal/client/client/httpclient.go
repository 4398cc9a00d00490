package client

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

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/logging"
	"github.com/dmitrijs2005/fmdata/internal/metrics"
)

const (
	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 10 << 20 // 10 MiB

	listOffset = "1"
)

// Operation names, used in errors, logs and metrics.
const (
	OpCreateSession = "create session"
	OpDeleteSession = "delete session"
	OpListRecords   = "list records"
	OpFindRecords   = "find records"
	OpGetRecord     = "get record"
	OpEditRecord    = "edit record"
	OpDeleteRecord  = "delete record"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements Client over the Data API's REST endpoints.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL          string
	doer             HTTPDoer
	timeout          time.Duration
	maxResponseBytes int64
	logger           logging.Logger
	metrics          *metrics.Recorder
}

type Option func(*HTTPClient)

func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *HTTPClient) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTimeout bounds every call. Zero or negative disables the bound and
// leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithMaxResponseBytes(n int64) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// NewHTTPClient returns a client for the database at baseURL, e.g.
// https://host/fmi/data/v1/databases/Contacts. An empty baseURL is accepted
// here and reported as ErrConfigMissing by every call.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:          strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		doer:             &http.Client{},
		timeout:          DefaultTimeout,
		maxResponseBytes: DefaultMaxResponseBytes,
		logger:           logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the database URL the client talks to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// CreateSession exchanges a basic credential for a bearer token.
func (c *HTTPClient) CreateSession(ctx context.Context, credential string) (string, string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", "", opError(OpCreateSession, ErrConfigMissing, errors.New("credential is not set"))
	}
	env, err := c.do(ctx, request{
		op:     OpCreateSession,
		method: http.MethodPost,
		path:   "/sessions",
		auth:   "Basic " + credential,
		body:   struct{}{},
	})
	if err != nil {
		return "", "", err
	}
	token, err := env.Token()
	if err != nil {
		return "", env.Code(), opError(OpCreateSession, ErrMalformedResponse, err)
	}
	return token, env.Code(), nil
}

// DeleteSession closes the server-side session for token.
func (c *HTTPClient) DeleteSession(ctx context.Context, token string) (string, error) {
	env, err := c.do(ctx, request{
		op:     OpDeleteSession,
		method: http.MethodDelete,
		path:   "/sessions/" + url.PathEscape(token),
	})
	if err != nil {
		return "", err
	}
	return env.Code(), nil
}

// ListRecords returns the first page of up to limit records of layout.
func (c *HTTPClient) ListRecords(ctx context.Context, token, layout string, limit int) (*RecordPage, error) {
	query := url.Values{}
	query.Set("_offset", listOffset)
	query.Set("_limit", strconv.Itoa(limit))

	env, err := c.do(ctx, request{
		op:     OpListRecords,
		method: http.MethodGet,
		path:   layoutPath(layout) + "/records",
		query:  query,
		auth:   bearer(token),
	})
	if err != nil {
		return nil, err
	}
	return recordPage(OpListRecords, env)
}

// FindRecords runs a find request; payload is sent unchanged.
func (c *HTTPClient) FindRecords(ctx context.Context, token, layout string, payload models.Payload) (*RecordPage, error) {
	env, err := c.do(ctx, request{
		op:     OpFindRecords,
		method: http.MethodPost,
		path:   layoutPath(layout) + "/_find",
		auth:   bearer(token),
		body:   payloadBody(payload),
	})
	if err != nil {
		return nil, err
	}
	return recordPage(OpFindRecords, env)
}

// GetRecord fetches one record by id. A successful reply with an empty data
// array is ErrNotFound.
func (c *HTTPClient) GetRecord(ctx context.Context, token, layout, id string) (models.Record, string, error) {
	env, err := c.do(ctx, request{
		op:     OpGetRecord,
		method: http.MethodGet,
		path:   recordPath(layout, id),
		auth:   bearer(token),
	})
	if err != nil {
		return nil, "", err
	}
	records, _, err := env.Records()
	if err != nil {
		return nil, env.Code(), opError(OpGetRecord, ErrMalformedResponse, err)
	}
	if len(records) == 0 {
		return nil, env.Code(), opError(OpGetRecord, ErrNotFound, fmt.Errorf("layout %q has no record %q", layout, id))
	}
	return records[0], env.Code(), nil
}

// EditRecord patches a record. When modID is set it is sent as "modId" so
// the server rejects the edit if the record changed since it was read.
// The caller's payload is never modified.
func (c *HTTPClient) EditRecord(ctx context.Context, token, layout, id string, payload models.Payload, modID *int) (string, error) {
	body := make(models.Payload, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	if modID != nil {
		body["modId"] = strconv.Itoa(*modID)
	}

	env, err := c.do(ctx, request{
		op:     OpEditRecord,
		method: http.MethodPatch,
		path:   recordPath(layout, id),
		auth:   bearer(token),
		body:   body,
	})
	if err != nil {
		return "", err
	}
	return env.Code(), nil
}

// DeleteRecord deletes a record by id.
func (c *HTTPClient) DeleteRecord(ctx context.Context, token, layout, id string) (string, error) {
	env, err := c.do(ctx, request{
		op:     OpDeleteRecord,
		method: http.MethodDelete,
		path:   recordPath(layout, id),
		auth:   bearer(token),
	})
	if err != nil {
		return "", err
	}
	return env.Code(), nil
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	auth   string
	body   any
}

// do issues exactly one HTTP call and decodes the envelope. Every failure
// is returned as an *Error carrying one of the taxonomy kinds.
func (c *HTTPClient) do(ctx context.Context, r request) (env *Envelope, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	requestID := uuid.NewString()
	log := c.logger.With("op", r.op, "request_id", requestID)

	defer func() {
		c.metrics.ObserveRequest(r.op, outcome(err), time.Since(startedAt))
		if err != nil {
			log.Warn(ctx, "data api call failed", "error", err, "duration_ms", time.Since(startedAt).Milliseconds())
		}
	}()

	if c.baseURL == "" {
		return nil, opError(r.op, ErrConfigMissing, errors.New("database url is not set"))
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reqBody io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, opError(r.op, ErrInvalidRequest, fmt.Errorf("payload is not JSON-encodable: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	callCtx := ctx
	cancel := func() {}
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, r.method, target, reqBody)
	if err != nil {
		return nil, opError(r.op, ErrConfigMissing, fmt.Errorf("invalid database url: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}

	log.Debug(ctx, "data api request", "method", r.method, "path", r.path)

	resp, err := c.doer.Do(req)
	if err != nil {
		if ctxErr := callCtx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return nil, opError(r.op, ErrNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, opError(r.op, ErrNetwork, fmt.Errorf("read response body: %w", err))
	}
	if int64(len(raw)) > c.maxResponseBytes {
		return nil, opError(r.op, ErrMalformedResponse, fmt.Errorf("response body exceeds %d bytes", c.maxResponseBytes))
	}

	env, err = Decode(raw)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.HTTPStatus = resp.StatusCode
			return env, opError(r.op, ErrAPI, apiErr)
		}
		return nil, opError(r.op, ErrMalformedResponse, fmt.Errorf("http %d: %w", resp.StatusCode, err))
	}

	log.Debug(ctx, "data api response",
		"status", resp.StatusCode,
		"code", env.Code(),
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	return env, nil
}

func recordPage(op string, env *Envelope) (*RecordPage, error) {
	records, info, err := env.Records()
	if err != nil {
		return nil, opError(op, ErrMalformedResponse, err)
	}
	return &RecordPage{Records: records, DataInfo: info, Code: env.Code()}, nil
}

func layoutPath(layout string) string {
	return "/layouts/" + url.PathEscape(layout)
}

func recordPath(layout, id string) string {
	return layoutPath(layout) + "/records/" + url.PathEscape(id)
}

func bearer(token string) string {
	return "Bearer " + token
}

func payloadBody(p models.Payload) any {
	if p == nil {
		return struct{}{}
	}
	return p
}

func outcome(err error) string {
	switch KindOf(err) {
	case nil:
		if err != nil {
			return metrics.OutcomeError
		}
		return metrics.OutcomeOK
	case ErrNetwork:
		return metrics.OutcomeNetwork
	case ErrMalformedResponse:
		return metrics.OutcomeMalformed
	case ErrAPI:
		return metrics.OutcomeAPI
	case ErrNotFound:
		return metrics.OutcomeNotFound
	case ErrConfigMissing:
		return metrics.OutcomeConfig
	case ErrInvalidRequest:
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

var _ Client = (*HTTPClient)(nil)
