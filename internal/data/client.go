package data

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
	"time"

	"github.com/google/uuid"

	"github.com/jaigner-hub/msgdesk/internal/config"
	"github.com/jaigner-hub/msgdesk/internal/logger"
)

// Client talks to the five collaborator HTTP APIs.
type Client struct {
	cfg  config.Config
	http *http.Client
	log  *slog.Logger
}

// NewClient creates an API client from the given config.
func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.Component("client"),
	}
}

func (c *Client) baseURL(svc Service) string {
	switch svc {
	case ServiceAuth:
		return c.cfg.AuthURL
	case ServiceMessaging:
		return c.cfg.MessageURL
	case ServiceDashboard:
		return c.cfg.DashboardURL
	case ServicePhonebook:
		return c.cfg.PhonebookURL
	case ServiceChat:
		return c.cfg.AgentURL
	}
	return ""
}

// call describes one request to a collaborator.
type call struct {
	svc    Service
	method string
	path   string
	query  url.Values
	in     interface{} // JSON body, nil for none
	out    interface{} // decode target, nil to ignore the body
}

// do issues the request and normalizes the outcome: transport failures become
// *TransportError, non-2xx responses *APIError with the body text folded in,
// and bodies that do not decode into out *DecodeError.
func (c *Client) do(ctx context.Context, r call) error {
	target := c.baseURL(r.svc) + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.in != nil {
		b, err := json.Marshal(r.in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "service", r.svc, "method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return &TransportError{Service: r.svc, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	c.log.Debug("request", "service", r.svc, "method", r.method, "path", r.path,
		"status", resp.StatusCode, "duration", time.Since(start), "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := ""
		if readErr == nil {
			text = string(data)
		}
		apiErr := &APIError{
			Service:    r.svc,
			Method:     r.method,
			Path:       r.path,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       StripANSI(text),
		}
		c.log.Warn("collaborator error", "service", r.svc, "status", resp.StatusCode, "request_id", reqID, "body", apiErr.Body)
		return apiErr
	}
	if readErr != nil {
		return &TransportError{Service: r.svc, Err: fmt.Errorf("read response: %w", readErr)}
	}

	if r.out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &DecodeError{Service: r.svc, Path: r.path, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return &DecodeError{Service: r.svc, Path: r.path, Err: err}
	}
	return nil
}

// unwrapURLError drops the *url.Error envelope so messages do not repeat the
// method and full URL, while keeping context errors reachable with errors.Is.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
