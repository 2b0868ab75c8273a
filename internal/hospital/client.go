package hospital

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/hospital-booking/internal/observability/metrics"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

const defaultBaseURL = "http://localhost:5000"

var clientTracer = otel.Tracer("hospital.internal.hospital.client")

// Client wraps the REST calls the booking screen makes. Each call is a single
// request: no retries and no caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *Session
	logger     *logging.Logger
	metrics    *metrics.ClientMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSession attaches the session whose token authenticates requests.
func WithSession(s *Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records per-call metrics.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient constructs a hospital API client.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListDoctors fetches every doctor. Both a bare array and a {"doctors": [...]}
// envelope are accepted.
func (c *Client) ListDoctors(ctx context.Context) ([]Doctor, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "list_doctors", http.MethodGet, "/doctors", nil, &raw, true); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Doctor{}, nil
	}

	var doctors []Doctor
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doctors); err != nil {
			return nil, &NetworkError{Op: "list_doctors", Err: fmt.Errorf("decode response: %w", err)}
		}
		return doctors, nil
	}

	var wrapped struct {
		Doctors []Doctor `json:"doctors"`
		Data    []Doctor `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, &NetworkError{Op: "list_doctors", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(wrapped.Doctors) > 0 {
		return wrapped.Doctors, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return []Doctor{}, nil
}

// CreatePatient persists a patient and returns it with its server id.
func (c *Client) CreatePatient(ctx context.Context, draft PatientDraft) (*Patient, error) {
	var patient Patient
	err := c.doJSON(ctx, "create_patient", http.MethodPost, "/patients/", draft, &patient, true)
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) && isShapeRejection(netErr.StatusCode) {
			return nil, &ValidationError{
				Op:         "create_patient",
				StatusCode: netErr.StatusCode,
				Message:    serverMessage(netErr.raw),
			}
		}
		return nil, err
	}
	if patient.ID == 0 {
		return nil, &NetworkError{Op: "create_patient", Err: errors.New("response missing patient id")}
	}
	return &patient, nil
}

// CreateAppointment books a doctor for a patient. A 2xx reply may still carry
// a {"message": ...} payload; callers check Rejection on the result.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*AppointmentResult, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "create_appointment", http.MethodPost, "/appointments", req, &raw, true); err != nil {
		return nil, err
	}
	result := &AppointmentResult{Raw: raw}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return result, nil
	}
	if err := json.Unmarshal(trimmed, result); err != nil {
		return nil, &NetworkError{Op: "create_appointment", Err: fmt.Errorf("decode response: %w", err)}
	}
	return result, nil
}

// Login exchanges credentials for an access token. The token is returned to
// the caller and not stored by the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login", body, &resp, false); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return nil, ErrInvalidCredentials
	}
	return &resp, nil
}

func isShapeRejection(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusUnprocessableEntity
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body interface{}, out interface{}, authenticated bool) (err error) {
	ctx, span := clientTracer.Start(ctx, "hospital.client."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("hospital.path", path),
	)

	start := time.Now()
	status := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		c.metrics.ObserveRequest(op, status, time.Since(start).Seconds())
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			status = "encode_error"
			return fmt.Errorf("hospital: %s: marshal request: %w", op, mErr)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		status = "build_error"
		return fmt.Errorf("hospital: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token, tErr := c.session.Token(ctx)
		if tErr != nil {
			c.logger.Warn("hospital: could not read session token", "operation", op, "error", tErr)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status = "network_error"
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		status = "network_error"
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status = strconv.Itoa(resp.StatusCode)
		msg := truncate(string(respBody), 300)
		c.logger.Warn("hospital API non-2xx response", "operation", op, "status", resp.StatusCode, "path", path, "body", msg)
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Body: msg, raw: respBody}
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		status = "decode_error"
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
