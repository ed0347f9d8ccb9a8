// Package middleware reports failures that escape HTTP handlers. Reporting is
// observational: panics are re-raised with the same value and returned
// errors are passed back unchanged.
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/assembler"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/delivery"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/frames"
)

// FallbackStatus is reported for panics, which the host answers with a 500.
const FallbackStatus = http.StatusInternalServerError

// Capturer receives request-scoped failures.
type Capturer interface {
	CaptureRequestException(req assembler.RequestContext, err error, trace []frames.RawFrame, extra map[string]any) error
}

// ErrorHandlerFunc is a handler that reports failure by returning an error.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Recoverer reports panics raised by next and re-panics with the original
// value. It can be mounted with chi's Router.Use.
func Recoverer(c Capturer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec != http.ErrAbortHandler {
					capturePanic(c, r, rec)
				}
				panic(rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WrapErrorHandler reports any error returned by h and returns it unchanged.
func WrapErrorHandler(c Capturer, h ErrorHandlerFunc) ErrorHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		wrapped := &responseWriter{ResponseWriter: w}
		err := h(wrapped, r)
		if err == nil {
			return nil
		}

		status := wrapped.statusCode
		if status < http.StatusBadRequest {
			status = FallbackStatus
		}
		trace := frames.FromError(err)
		if trace == nil {
			trace = frames.Callers(1)
		}
		report(c, assembler.NewRequestContext(r, status), err, trace)
		return err
	}
}

func capturePanic(c Capturer, r *http.Request, rec any) {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec)
	}
	report(c, assembler.NewRequestContext(r, FallbackStatus), err, panicTrace(err))
}

// report delivers one capture. Nothing raised by the capture itself, including
// a panic, may escape: the caller still has to propagate the original failure.
func report(c Capturer, req assembler.RequestContext, err error, trace []frames.RawFrame) {
	defer func() {
		if rec := recover(); rec != nil {
			// Warning keeps this out of any raygun hook on the same logger.
			log.WithField("panic", rec).Warning("Raygun capture panicked")
		}
	}()

	if sendErr := c.CaptureRequestException(req, err, trace, nil); sendErr != nil {
		logDeliveryFailure(sendErr).WithField("url", req.URL).Warning("Can't report error to raygun")
	}
}

func logDeliveryFailure(err error) *log.Entry {
	entry := log.WithError(err)
	var deliveryErr *delivery.Error
	if errors.As(err, &deliveryErr) && deliveryErr.StatusCode != 0 {
		entry = entry.WithField("status", deliveryErr.StatusCode)
	}
	return entry
}

// panicTrace returns the stack of the panicking goroutine starting at the
// frame that panicked. Errors that carry their own stack keep it.
func panicTrace(err error) []frames.RawFrame {
	if trace := frames.FromError(err); trace != nil {
		return trace
	}

	trace := frames.Callers(1)
	for i, f := range trace {
		if f.Module != "runtime" || f.Function != "gopanic" {
			continue
		}
		rest := trace[i+1:]
		for len(rest) > 0 && rest[0].Module == "runtime" {
			rest = rest[1:]
		}
		return rest
	}
	return trace
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards Flush to the underlying ResponseWriter if it supports http.Flusher.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
