package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	reqidmiddleware "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/middleware/requestid"
)

// envelope mirrors the response contract the backend services emit. Data is
// kept raw so the gateway can relay it without knowing every payload shape.
type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

// Attachment is a binary download relayed from a backend.
type Attachment struct {
	Payload     []byte
	ContentType string
	Disposition string
}

// Client calls one backend service over HTTP.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a Client for the given base URL.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Backends bundles one Client per service in the mesh.
type Backends struct {
	Auth          *Client
	Register      *Client
	Offering      *Client
	Enrollment    *Client
	StudentGrades *Client
	FacultyGrades *Client
}

// NewBackends wires every backend client from the gateway configuration.
func NewBackends(cfg config.GatewayConfig) *Backends {
	return &Backends{
		Auth:          NewClient(cfg.AuthAddr, cfg.CallTimeout),
		Register:      NewClient(cfg.RegisterAddr, cfg.CallTimeout),
		Offering:      NewClient(cfg.OfferingAddr, cfg.CallTimeout),
		Enrollment:    NewClient(cfg.EnrollmentAddr, cfg.CallTimeout),
		StudentGrades: NewClient(cfg.StudentGradesAddr, cfg.CallTimeout),
		FacultyGrades: NewClient(cfg.FacultyGradesAddr, cfg.CallTimeout),
	}
}

// Get performs a GET against the backend and returns the status plus the raw
// data portion of the envelope.
func (c *Client) Get(ctx context.Context, path, token, requestID string) (int, json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, token, requestID, nil)
}

// Post performs a POST with a pre-encoded JSON body.
func (c *Client) Post(ctx context.Context, path, token, requestID string, body []byte) (int, json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, token, requestID, body)
}

func (c *Client) do(ctx context.Context, method, path, token, requestID string, body []byte) (int, json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, err
	}
	c.setHeaders(req, token, requestID)

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, err
	}

	if res.StatusCode >= http.StatusBadRequest {
		return res.StatusCode, nil, decodeError(res.StatusCode, raw)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return res.StatusCode, nil, fmt.Errorf("undecodable backend response: %w", err)
		}
	}
	return res.StatusCode, env.Data, nil
}

// Download relays a binary response such as a roster export.
func (c *Client) Download(ctx context.Context, path, token, requestID string) (*Attachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token, requestID)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(res.StatusCode, raw)
	}

	return &Attachment{
		Payload:     raw,
		ContentType: res.Header.Get("Content-Type"),
		Disposition: res.Header.Get("Content-Disposition"),
	}, nil
}

func (c *Client) setHeaders(req *http.Request, token, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID != "" {
		req.Header.Set(reqidmiddleware.Header(), requestID)
	}
}

// decodeError turns a backend error body back into the typed error it left
// the service as. A body that does not decode never carries a business
// verdict, so it stays an untyped error and remains retryable.
func decodeError(status int, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Code != "" {
		return env.Error
	}
	return fmt.Errorf("backend returned status %d", status)
}
