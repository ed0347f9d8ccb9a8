// Package logging forwards error level logrus entries to raygun.
package logging

import (
	"errors"
	"os"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/delivery"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/frames"
)

// NodeKey is the entry field naming the node an entry originated on.
const NodeKey = "node"

// Capturer receives the entries selected by the hook.
type Capturer interface {
	CaptureException(err error, trace []frames.RawFrame, extra map[string]any) error
	CaptureMessage(message string, extra map[string]any) error
}

// Hook is a logrus.Hook reporting error, fatal and panic entries logged on
// this node. Entries that name a different node are ignored.
type Hook struct {
	capturer Capturer
	node     string
	fallback *logrus.Logger
}

func NewHook(c Capturer, node string) *Hook {
	fallback := logrus.New()
	fallback.SetOutput(os.Stderr)

	return &Hook{capturer: c, node: node, fallback: fallback}
}

func (h *Hook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire reports entry synchronously. It always returns nil so a failed
// delivery never breaks the log pipeline; failures go to a separate logger.
func (h *Hook) Fire(entry *logrus.Entry) error {
	defer func() {
		if rec := recover(); rec != nil {
			h.fallback.WithField("panic", rec).WithField("message", entry.Message).Warning("Raygun capture panicked")
		}
	}()

	if node, ok := entry.Data[NodeKey]; ok && node != h.node {
		return nil
	}

	extra := lo.MapValues(lo.OmitByKeys(entry.Data, []string{logrus.ErrorKey, NodeKey}), func(v any, _ string) any {
		if err, ok := v.(error); ok {
			return err.Error()
		}
		return v
	})
	extra["level"] = entry.Level.String()

	var err error
	if cause, ok := entry.Data[logrus.ErrorKey].(error); ok && cause != nil {
		extra["logMessage"] = entry.Message
		err = h.capturer.CaptureException(cause, trace(entry, cause), extra)
	} else {
		err = h.capturer.CaptureMessage(entry.Message, extra)
	}

	if err != nil {
		fields := logrus.Fields{"message": entry.Message}
		var deliveryErr *delivery.Error
		if errors.As(err, &deliveryErr) && deliveryErr.StatusCode != 0 {
			fields["status"] = deliveryErr.StatusCode
		}
		h.fallback.WithError(err).WithFields(fields).Warning("Can't report log entry to raygun")
	}
	return nil
}

// trace prefers the stack carried by the error, then the logging call site.
func trace(entry *logrus.Entry, err error) []frames.RawFrame {
	if t := frames.FromError(err); t != nil {
		return t
	}
	if !entry.HasCaller() {
		return nil
	}
	return []frames.RawFrame{frames.FromFunction(entry.Caller.Function, entry.Caller.File, entry.Caller.Line)}
}
