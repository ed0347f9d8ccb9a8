package assembler

import (
	"fmt"
	"maps"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

// Header is one request header. Repeated headers appear once per value.
type Header struct {
	Name  string
	Value string
}

// RequestContext is the request a failure happened in.
type RequestContext struct {
	HostName    string
	URL         string
	Method      string
	RemoteIP    string
	QueryParams map[string]string
	FormParams  map[string]string
	Headers     []Header
	Response    ResponseContext
}

// ResponseContext is what the host answered, or is about to answer, with.
type ResponseContext struct {
	StatusCode int
}

// NewRequestContext snapshots r. Form values are only read when the handler
// already parsed them, so the body is never consumed here.
func NewRequestContext(r *http.Request, statusCode int) RequestContext {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
		port = ""
	}
	hostPort := host
	if port != "" {
		hostPort = net.JoinHostPort(host, port)
	}

	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	var headers []Header
	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		for _, v := range r.Header[name] {
			headers = append(headers, Header{Name: name, Value: v})
		}
	}

	return RequestContext{
		HostName:    host,
		URL:         fmt.Sprintf("%s://%s%s", scheme, hostPort, r.URL.Path),
		Method:      r.Method,
		RemoteIP:    remoteIP,
		QueryParams: flatten(r.URL.Query()),
		FormParams:  flatten(r.PostForm),
		Headers:     headers,
		Response:    ResponseContext{StatusCode: statusCode},
	}
}

func (rc RequestContext) info() *types.RequestInfo {
	headers := make(map[string]string, len(rc.Headers))
	for _, h := range rc.Headers {
		if prev, ok := headers[h.Name]; ok {
			headers[h.Name] = prev + ", " + h.Value
			continue
		}
		headers[h.Name] = h.Value
	}

	form := orEmpty(rc.FormParams)
	raw := make(url.Values, len(form))
	for k, v := range form {
		raw.Set(k, v)
	}

	return &types.RequestInfo{
		HostName:    rc.HostName,
		URL:         rc.URL,
		Method:      rc.Method,
		IPAddress:   rc.RemoteIP,
		QueryString: orEmpty(rc.QueryParams),
		Form:        form,
		Headers:     headers,
		RawData:     raw.Encode(),
	}
}

func flatten(values url.Values) map[string]string {
	return lo.MapValues(values, func(v []string, _ string) string {
		return strings.Join(v, ",")
	})
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
