// Package gateway checks whether a custom schema is exposed through the
// project's PostgREST API layer.
//
// Exposing a schema is a manual dashboard step (API settings, exposed
// schemas list) that no SQL grant can perform. When a client queries a
// schema that is not in the list, PostgREST answers with error code
// PGRST106. The probe requests the API root with an Accept-Profile header
// naming the schema and classifies the response.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CodeSchemaNotExposed is PostgREST's error code for a schema missing from
// the exposed schemas list.
const CodeSchemaNotExposed = "PGRST106"

// ErrSchemaNotExposed is returned when the gateway rejects the schema.
var ErrSchemaNotExposed = errors.New("schema is not exposed through the API gateway")

// NotExposedError wraps ErrSchemaNotExposed with the gateway's response
// detail and the corrective action.
type NotExposedError struct {
	Schema  string
	Code    string
	Message string
}

func (e *NotExposedError) Error() string {
	return fmt.Sprintf("schema %q is not exposed through the API gateway (%s: %s); add it to the exposed schemas list in the project's API settings",
		e.Schema, e.Code, e.Message)
}

func (e *NotExposedError) Unwrap() error {
	return ErrSchemaNotExposed
}

// Checker probes a PostgREST endpoint for schema exposure
type Checker struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewChecker creates a checker for the given PostgREST base URL. The API key
// is sent as both apikey header and bearer token when set; Supabase projects
// reject anonymous requests before schema resolution happens.
func NewChecker(apiURL, apiKey string) *Checker {
	return &Checker{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient overrides the HTTP client (tests).
func (c *Checker) WithHTTPClient(client *http.Client) *Checker {
	tmp := *c
	tmp.client = client
	return &tmp
}

// postgrestError is the JSON error body PostgREST returns.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// CheckExposure verifies that the schema is reachable through the gateway.
// Returns a *NotExposedError when the gateway answers with PGRST106, nil
// when the schema is exposed, and a generic error for anything else.
func (c *Checker) CheckExposure(ctx context.Context, schema string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to build exposure request: %w", err)
	}
	req.Header.Set("Accept-Profile", schema)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach API gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	var pgrstErr postgrestError
	if jsonErr := json.Unmarshal(body, &pgrstErr); jsonErr == nil && pgrstErr.Code == CodeSchemaNotExposed {
		return &NotExposedError{
			Schema:  schema,
			Code:    pgrstErr.Code,
			Message: pgrstErr.Message,
		}
	}

	return fmt.Errorf("gateway returned HTTP %d for schema %q: %s", resp.StatusCode, schema, strings.TrimSpace(string(body)))
}
