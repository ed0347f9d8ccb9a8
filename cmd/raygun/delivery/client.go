package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/assembler"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/config"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

const entriesPath = "/entries"

// ErrMissingAPIKey is returned, wrapped in an *Error, when no API key is configured.
var ErrMissingAPIKey = errors.New("raygun API key is not configured")

// Error is a failed delivery. StatusCode is 0 when no response was received.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("raygun API returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("failed to deliver report: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client posts reports to the Raygun entries endpoint. Every Send is a single
// request; nothing is retried or queued.
type Client struct {
	apiKey    string
	userAgent string
	rest      *resty.Client
}

func New(cfg config.Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport))

	return &Client{
		apiKey:    cfg.APIKey,
		userAgent: assembler.ClientName + "/" + assembler.ClientVersion,
		rest:      httpClient,
	}
}

// Send delivers report. Only 202 Accepted counts as success.
func (c *Client) Send(report *types.Report) error {
	if c.apiKey == "" {
		return &Error{Err: ErrMissingAPIKey}
	}

	body, err := json.Marshal(report)
	if err != nil {
		return &Error{Err: fmt.Errorf("failed to encode report: %w", err)}
	}

	response, err := c.rest.R().
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent).
		SetHeader("X-ApiKey", c.apiKey).
		SetBody(body).
		Post(entriesPath)
	if err != nil {
		return &Error{Err: err}
	}

	if response.StatusCode() != http.StatusAccepted {
		return &Error{StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	return nil
}
