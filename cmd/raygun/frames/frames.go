// Package frames turns raw stack trace entries into the portable frame
// records carried by a crash report.
package frames

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/samber/lo"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

// SelfModule owns every frame that does not name a module of its own.
const SelfModule = "github.com/sthembisoo/raygun-reporter"

// maxDepth bounds the number of frames collected by Callers.
const maxDepth = 64

// Location is where a frame was executing. Either field may be unknown.
type Location struct {
	File string
	Line int
}

// RawFrame is one stack trace entry as produced by the runtime or the caller.
// A frame with an empty Module belongs to the reporting module itself.
// When Args is non-nil its length is the arity, otherwise Arity is used.
type RawFrame struct {
	Module   string
	Function string
	Arity    int
	Args     []any
	Location *Location
}

func (f RawFrame) arity() int {
	if f.Args != nil {
		return len(f.Args)
	}
	return f.Arity
}

// New normalizes a single raw frame. Missing location data degrades to an
// empty file name and line 0 instead of failing the whole report.
func New(raw RawFrame) types.StackFrame {
	module := raw.Module
	if module == "" {
		module = SelfModule
	}

	var file string
	var line int
	if raw.Location != nil {
		file = raw.Location.File
		line = max(raw.Location.Line, 0)
	}

	return types.StackFrame{
		LineNumber: line,
		ClassName:  module,
		FileName:   file,
		MethodName: fmt.Sprintf("%s/%d", raw.Function, raw.arity()),
	}
}

// Normalize converts a whole trace, preserving its order. The result is never nil.
func Normalize(trace []RawFrame) []types.StackFrame {
	if len(trace) == 0 {
		return []types.StackFrame{}
	}
	return lo.Map(trace, func(raw RawFrame, _ int) types.StackFrame {
		return New(raw)
	})
}

// FromError returns the trace recorded by a go-errors error anywhere in the
// chain of err, or nil when err carries no trace.
func FromError(err error) []RawFrame {
	var withStack *goerrors.Error
	if !errors.As(err, &withStack) {
		return nil
	}
	return fromStackFrames(withStack.StackFrames())
}

// Callers captures the trace of the calling goroutine. skip=0 starts at the
// caller of Callers.
func Callers(skip int) []RawFrame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var trace []RawFrame
	it := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := it.Next()
		trace = append(trace, FromFunction(frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return trace
}

// FromFunction builds a frame from a qualified Go function name as reported by
// the runtime, e.g. a logrus entry's caller.
func FromFunction(qualified, file string, line int) RawFrame {
	module, name := splitFunction(qualified)
	return RawFrame{
		Module:   module,
		Function: name,
		Location: &Location{File: file, Line: line},
	}
}

// splitFunction splits a qualified Go function name such as
// "github.com/acme/shop/orders.(*Repo).Get" into its package path and name.
func splitFunction(qualified string) (string, string) {
	pkg := ""
	name := qualified
	if slash := strings.LastIndex(name, "/"); slash >= 0 {
		pkg = name[:slash+1]
		name = name[slash+1:]
	}
	if dot := strings.Index(name, "."); dot >= 0 {
		pkg += name[:dot]
		name = name[dot+1:]
	}
	return pkg, name
}

func fromStackFrames(stack []goerrors.StackFrame) []RawFrame {
	return lo.Map(stack, func(sf goerrors.StackFrame, _ int) RawFrame {
		// Go frames carry no arity information.
		return RawFrame{
			Module:   sf.Package,
			Function: sf.Name,
			Location: &Location{File: sf.File, Line: sf.LineNumber},
		}
	})
}
