// Package capture is the public entry point of the reporter: every captured
// error or message is assembled into a report and delivered synchronously.
package capture

import (
	"time"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/assembler"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/config"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/delivery"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/environment"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/frames"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

// Sender delivers a finished report.
type Sender interface {
	Send(report *types.Report) error
}

// Reporter captures errors and messages. Captures share no mutable state and
// may run concurrently.
type Reporter struct {
	assembler *assembler.Assembler
	sender    Sender
}

type options struct {
	sender Sender
	env    environment.Provider
	now    func() time.Time
}

type Option func(*options)

// WithSender replaces the HTTP delivery client.
func WithSender(s Sender) Option {
	return func(o *options) { o.sender = s }
}

// WithEnvironment replaces the live system snapshot.
func WithEnvironment(p environment.Provider) Option {
	return func(o *options) { o.env = p }
}

// WithClock sets the clock used for occurredOn.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New(cfg config.Config, opts ...Option) *Reporter {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sender == nil {
		o.sender = delivery.New(cfg)
	}
	if o.env == nil {
		o.env = environment.NewSystem("/proc")
	}

	return &Reporter{
		assembler: assembler.New(cfg, o.env, o.now),
		sender:    o.sender,
	}
}

// CaptureException reports err raised with trace. The returned error is the
// delivery outcome; it never describes err itself.
func (r *Reporter) CaptureException(err error, trace []frames.RawFrame, extra map[string]any) error {
	return r.sender.Send(r.assembler.FromException(trace, err, extra))
}

// CaptureMessage reports a plain message without a stack trace.
func (r *Reporter) CaptureMessage(message string, extra map[string]any) error {
	return r.sender.Send(r.assembler.FromMessage(message, extra))
}

// CaptureRequestException reports err raised while serving a request.
func (r *Reporter) CaptureRequestException(req assembler.RequestContext, err error, trace []frames.RawFrame, extra map[string]any) error {
	return r.sender.Send(r.assembler.FromRequest(req, trace, err, extra))
}

// Capture reports err using the trace it carries, or the caller's trace when
// it carries none.
func (r *Reporter) Capture(err error, extra map[string]any) error {
	trace := frames.FromError(err)
	if trace == nil {
		trace = frames.Callers(1)
	}
	return r.CaptureException(err, trace, extra)
}
