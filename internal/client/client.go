// Package client talks to the registration API the way the public form and
// the admin review screen do.
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
	"strings"

	"github.com/aanand-mishra/lamp-api/internal/types"
	"github.com/aanand-mishra/lamp-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is returned by Submit when the form breaks a field rule.
// Nothing is sent to the server in that case.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return response.ValidationMessage(e.Fields)
}

// APIError is a failure reported by the server, either as a
// {success:false} envelope or as a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registration api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("registration api: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the registration routes of one server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the server at baseURL. A nil httpClient means
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Submit checks the form rules and then creates the registration.
func (c *Client) Submit(ctx context.Context, req types.CreateRegistrationRequest) (types.Registration, error) {
	var created types.Registration

	if err := validate.Struct(req); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			return created, &ValidationError{Fields: fields}
		}
		return created, err
	}

	err := c.do(ctx, http.MethodPost, "/api/registrations", req, &created)
	return created, err
}

// List returns every registration, newest first.
func (c *Client) List(ctx context.Context) ([]types.Registration, error) {
	var regs []types.Registration
	if err := c.do(ctx, http.MethodGet, "/api/registrations", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// UpdateStatus sets the review status of registration id.
func (c *Client) UpdateStatus(ctx context.Context, id string, status types.Status) (types.Registration, error) {
	var updated types.Registration
	path := "/api/registrations/" + url.PathEscape(id) + "/status"
	err := c.do(ctx, http.MethodPatch, path, types.StatusRequest{Status: status}, &updated)
	return updated, err
}

// Delete removes registration id. Deleting an unknown id is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/registrations/"+url.PathEscape(id), nil, nil)
}

// envelope is response.Response with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
