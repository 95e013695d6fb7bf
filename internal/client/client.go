// Package client talks to the external grading backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// ErrRequestFailed is the single failure kind surfaced to callers. Timeouts,
// non-2xx statuses, malformed bodies and transport errors all wrap it.
var ErrRequestFailed = errors.New("grading API request failed")

// DefaultTimeout bounds every call made by the client.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client performs the grade, generate-question and health calls.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the backend rooted at baseURL (e.g. "http://host:8080/api").
// A non-positive timeout falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "grader_client").Logger(),
	}
}

// SubmitGrade sends the question and code for grading and returns the normalized result.
func (c *Client) SubmitGrade(ctx context.Context, question, code string) (*model.GradeResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/grade", map[string]string{
		"question": question,
		"code":     code,
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, c.fail(http.MethodPost, "/grade", errors.New("malformed JSON body"))
	}

	res := NormalizeGrade(body)
	return &res, nil
}

// RequestQuestion asks the backend to generate a question on topic.
func (c *Client) RequestQuestion(ctx context.Context, topic string) (*model.GenerateQuestionResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/generate-question", model.GenerateQuestionRequest{Topic: topic})
	if err != nil {
		return nil, err
	}

	var res model.GenerateQuestionResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, c.fail(http.MethodPost, "/generate-question", err)
	}
	return &res, nil
}

// CheckHealth fetches the backend health status.
func (c *Client) CheckHealth(ctx context.Context) (*model.HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var res model.HealthResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, c.fail(http.MethodGet, "/health", err)
	}
	return &res, nil
}

// do executes one request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, c.fail(method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, c.fail(method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("Making request")
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail(method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(method, path, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 256)))
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Response received")

	return body, nil
}

// fail logs the cause and collapses it into ErrRequestFailed.
func (c *Client) fail(method, path string, cause error) error {
	c.log.Error().Err(cause).Str("method", method).Str("path", path).Msg("API error")
	return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, cause)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
