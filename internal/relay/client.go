// Package relay talks to the greenhouse edge controller (the Raspberry Pi
// fronting the Arduino) over its local HTTP API. The controller is
// intermittently offline; every call is bounded by a fixed timeout and is
// never retried automatically, so a command either reaches the device
// promptly or fails fast with a classified error.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/config"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

// Sentinel errors classifying relay failures for the API edge.
var (
	// ErrTimeout indicates the controller did not answer within the
	// configured deadline. A late response is abandoned, never applied.
	ErrTimeout = errors.New("relay timeout")

	// ErrUnavailable indicates the controller refused the connection or
	// answered with a non-success status.
	ErrUnavailable = errors.New("relay unavailable")
)

// Client is the device relay client.
type Client struct {
	http   *resty.Client
	logger *logging.Logger
}

// NewClient creates a relay client from config. The timeout is fixed per
// call and retries are disabled: the caller decides whether a failure is
// fatal, not the transport.
func NewClient(cfg config.RelayConfig, logger *logging.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RelayTimeout()).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", cfg.APIKey)

	return &Client{
		http:   httpClient,
		logger: logger,
	}
}

type commandPayload struct {
	Actuator string `json:"actuator"`
	State    bool   `json:"state"`
	Pwm      *int   `json:"pwm,omitempty"`
}

// SendCommand pushes a manual actuator command to the controller.
func (c *Client) SendCommand(ctx context.Context, actuator string, state bool, pwm *int) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(commandPayload{Actuator: actuator, State: state, Pwm: pwm}).
		Post("/command")

	if err := c.classify("command", resp, err, start); err != nil {
		return err
	}

	c.logger.Debug("relay command delivered", "actuator", actuator, "state", state,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SyncThresholds pushes the full threshold set to the controller. The
// durable record is already written when this is called; the caller treats
// failure as a pending sync, not a lost edit.
func (c *Client) SyncThresholds(ctx context.Context, set thresholds.Set) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(set).
		Post("/thresholds")

	if err := c.classify("thresholds", resp, err, start); err != nil {
		return err
	}

	c.logger.Debug("relay thresholds synced", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ResumeAuto tells the controller to leave manual mode and resume its
// automation loop.
func (c *Client) ResumeAuto(ctx context.Context) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/auto/resume")

	if err := c.classify("auto/resume", resp, err, start); err != nil {
		return err
	}

	c.logger.Debug("relay auto mode resumed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// classify maps a transport result onto the package sentinels.
func (c *Client) classify(op string, resp *resty.Response, err error, start time.Time) error {
	if err != nil {
		kind := ErrUnavailable
		if isTimeout(err) {
			kind = ErrTimeout
		}
		c.logger.Warn("relay call failed", "op", op, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("%w: %s: %w", kind, op, err)
	}

	if resp.IsError() {
		c.logger.Warn("relay call rejected", "op", op, "status", resp.StatusCode())
		return fmt.Errorf("%w: %s: status %d", ErrUnavailable, op, resp.StatusCode())
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
