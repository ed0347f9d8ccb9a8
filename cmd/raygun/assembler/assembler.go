// Package assembler builds crash reports from an error or message plus the
// environment, request, user and custom data that accompany it.
//
// Sections are filled in a fixed order: base details, error, environment,
// request, response, user, then custom data. Each section has its own field
// in types.Details, so a later section can never clobber an earlier one.
package assembler

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/samber/lo"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/config"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/environment"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/frames"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

const (
	ClientName    = "raygun-reporter"
	ClientVersion = "0.3.0"
	ClientURL     = "https://github.com/sthembisoo/raygun-reporter"

	// TagsKey in the extra data is merged into the report tags instead of
	// the custom data.
	TagsKey = "tags"

	timeLayout = "2006-01-02T15:04:05Z"
)

// Assembler turns captured errors into reports. It is safe for concurrent use.
type Assembler struct {
	cfg config.Config
	env environment.Provider
	now func() time.Time
}

// New creates an assembler. A nil clock means time.Now.
func New(cfg config.Config, env environment.Provider, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{cfg: cfg, env: env, now: now}
}

// FromException builds a report for err raised with the given trace.
func (a *Assembler) FromException(trace []frames.RawFrame, err error, extra map[string]any) *types.Report {
	return a.build(errorInfo(err, trace), nil, nil, a.systemUser(), extra)
}

// FromMessage builds a report that carries only a message and no frames.
func (a *Assembler) FromMessage(message string, extra map[string]any) *types.Report {
	info := types.ErrorInfo{
		Message:    message,
		StackTrace: []types.StackFrame{},
	}
	return a.build(info, nil, nil, a.systemUser(), extra)
}

// FromRequest builds a report for err raised while serving req. The user is
// always anonymous: the request's session is not consulted.
func (a *Assembler) FromRequest(req RequestContext, trace []frames.RawFrame, err error, extra map[string]any) *types.Report {
	request := req.info()
	response := &types.ResponseInfo{StatusCode: req.Response.StatusCode}
	return a.build(errorInfo(err, trace), request, response, types.AnonymousUser(), extra)
}

func (a *Assembler) build(info types.ErrorInfo, request *types.RequestInfo, response *types.ResponseInfo, user types.User, extra map[string]any) *types.Report {
	hostname, _ := os.Hostname()

	details := types.Details{
		MachineName: hostname,
		Version:     a.cfg.Version,
		Client: types.ClientInfo{
			Name:      ClientName,
			Version:   ClientVersion,
			ClientURL: ClientURL,
		},
	}
	details.Error = info
	details.Environment = a.env.Snapshot()
	details.Request = request
	details.Response = response
	details.User = user
	details.Tags, details.UserCustomData = a.custom(extra)

	return &types.Report{
		OccurredOn: a.now().UTC().Format(timeLayout),
		Details:    details,
	}
}

// custom splits extra into tags and free form data. Tags are the union of
// the configured tags and any list supplied under TagsKey, sorted.
func (a *Assembler) custom(extra map[string]any) ([]string, map[string]any) {
	tags := slices.Clone(a.cfg.Tags)
	omit := []string{TagsKey}
	switch v := extra[TagsKey].(type) {
	case []string:
		tags = append(tags, v...)
	case string:
		tags = append(tags, v)
	case []any:
		tags = append(tags, lo.Map(v, func(item any, _ int) string { return fmt.Sprint(item) })...)
	default:
		// Anything else is not a tag list; keep it as custom data.
		omit = nil
	}
	tags = lo.Uniq(lo.Compact(tags))
	slices.Sort(tags)
	if tags == nil {
		tags = []string{}
	}

	data := lo.OmitByKeys(extra, omit)
	if data == nil {
		data = map[string]any{}
	}
	return tags, data
}

func (a *Assembler) systemUser() types.User {
	u := a.cfg.User
	if u == nil || u.Identifier == "" {
		return types.AnonymousUser()
	}
	return types.User{
		Identifier: u.Identifier,
		Email:      u.Email,
		FullName:   u.FullName,
		FirstName:  u.FirstName,
		UUID:       u.UUID,
	}
}

// errorInfo renders err and its trace. Inner errors from the unwrap chain are
// rendered without frames of their own.
func errorInfo(err error, trace []frames.RawFrame) types.ErrorInfo {
	stack := frames.Normalize(trace)
	info := types.ErrorInfo{
		ClassName:  className(err),
		StackTrace: stack,
	}
	if err != nil {
		// fmt recovers from an Error method that panics, e.g. on a typed nil.
		info.Message = fmt.Sprint(err)
	}
	if len(stack) > 0 {
		primary := stack[0]
		info.Data = &types.ErrorData{
			FileName:   primary.FileName,
			LineNumber: primary.LineNumber,
			Function:   primary.MethodName,
		}
	}
	if inner := unwrap(err); inner != nil {
		innerInfo := errorInfo(inner, nil)
		info.InnerError = &innerInfo
	}
	return info
}

// unwrap skips go-errors wrappers, which only attach a stack trace.
func unwrap(err error) error {
	if withStack, ok := err.(*goerrors.Error); ok {
		err = withStack.Err
	}
	if err == nil {
		return nil
	}
	return errors.Unwrap(err)
}

func className(err error) string {
	if err == nil {
		return ""
	}
	if withStack, ok := err.(*goerrors.Error); ok && withStack.Err != nil {
		return fmt.Sprintf("%T", withStack.Err)
	}
	return fmt.Sprintf("%T", err)
}
