package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fruitexport/portal/internal/notify"
)

// Default toast messages.
const (
	MessageSuccess   = "Thao tác thành công!"
	MessageFailure   = "Có lỗi xảy ra!"
	MessageTransport = "Có lỗi kết nối xảy ra!"
)

// maxEnvelopeBytes bounds how much of a response body is decoded.
const maxEnvelopeBytes = 1 << 20

// ErrTransport marks submissions that never produced a usable envelope.
var ErrTransport = errors.New("submit: transport failure")

var errMissingSuccess = errors.New("envelope has no success field")

// Envelope is the JSON reply of every form endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Outcome classifies a finished submission.
type Outcome string

// Submission outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeTransport Outcome = "transport"
)

// Recorder observes submission outcomes.
type Recorder interface {
	ObserveSubmission(outcome string, duration time.Duration)
}

// Client submits forms over HTTP and reports outcomes to a Notifier.
type Client struct {
	http     *http.Client
	notifier notify.Notifier
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, notifier notify.Notifier, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{http: httpClient, notifier: notifier, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends form and decodes the envelope. A non-2xx reply carrying a
// failed envelope is returned as an application failure. Request errors,
// other non-2xx replies and undecodable bodies are reported as
// ErrTransport.
func (c *Client) Do(ctx context.Context, form Form) (Envelope, error) {
	if err := form.Validate(); err != nil {
		return Envelope{}, err
	}
	req, err := form.newRequest(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxEnvelopeBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		env, err := decodeEnvelope(body)
		_, _ = io.Copy(io.Discard, body)
		if err == nil && !env.Success {
			return env, nil
		}
		return Envelope{}, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: decode envelope: %v", ErrTransport, err)
	}
	return env, nil
}

// decodeEnvelope requires the "success" key so unrelated JSON bodies are
// not mistaken for envelopes.
func decodeEnvelope(r io.Reader) (Envelope, error) {
	var raw struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Envelope{}, err
	}
	if raw.Success == nil {
		return Envelope{}, errMissingSuccess
	}
	return Envelope{Success: *raw.Success, Message: raw.Message}, nil
}

// Pending is an in-flight submission.
type Pending struct {
	done    chan struct{}
	outcome Outcome
	env     Envelope
	err     error
}

// Done is closed once the submission has been handled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the submission has been handled.
func (p *Pending) Wait() (Outcome, Envelope, error) {
	<-p.done
	return p.outcome, p.env, p.err
}

// Submit sends form without blocking the caller. Exactly one toast is
// shown per submission; onSuccess runs once, only for a successful
// envelope. Concurrent submissions are independent and may complete in
// any order.
func (c *Client) Submit(ctx context.Context, form Form, onSuccess func(Envelope)) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.outcome, p.env, p.err = c.handle(ctx, form, onSuccess)
	}()
	return p
}

func (c *Client) handle(ctx context.Context, form Form, onSuccess func(Envelope)) (Outcome, Envelope, error) {
	start := time.Now()
	env, err := c.Do(ctx, form)
	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeTransport
		c.logger.Warn("form submission failed", slog.String("action", form.Action), slog.Any("error", err))
		c.notify(MessageTransport, notify.Danger)
	case env.Success:
		c.notify(messageOr(env.Message, MessageSuccess), notify.Success)
		if onSuccess != nil {
			onSuccess(env)
		}
	default:
		outcome = OutcomeFailure
		c.notify(messageOr(env.Message, MessageFailure), notify.Danger)
	}
	if c.recorder != nil {
		c.recorder.ObserveSubmission(string(outcome), time.Since(start))
	}
	return outcome, env, err
}

func (c *Client) notify(message string, severity notify.Severity) {
	if c.notifier != nil {
		c.notifier.Show(message, severity)
	}
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
