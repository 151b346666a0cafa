// Package dispatch fetches the JSON document behind a WebApi URL, either
// directly or through a SharePoint app web proxy.
//
// Mode selection is by URL: SharePoint web and site API URLs
// ("/_api/web/", "/_api/site/") go through the proxy, everything else is a
// plain GET.
//
//	d := dispatch.New(env,
//	    dispatch.WithHTTPClient(httpClient),
//	    dispatch.WithProxyExecutor(executor),
//	)
//	res, err := d.Dispatch(ctx, dispatch.Request{TargetURL: url})
//
// Failures are always *RequestError.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/usestring/formjson-mcp/internal/hostenv"
	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// DefaultMaxResponseBytes bounds response bodies unless overridden.
const DefaultMaxResponseBytes int64 = 10 << 20

// Accept headers sent per mode.
const (
	DirectAccept = "application/json"
	ProxyAccept  = "application/json; odata=verbose"
)

// ErrBodyTooLarge is returned when a response body exceeds the byte limit.
var ErrBodyTooLarge = errors.New("response body exceeds limit")

var errNoProxyResponse = errors.New("proxy executor returned no response")

// Request describes one fetch.
type Request struct {
	TargetURL string
	// Headers are applied to direct requests. Accept is always overridden.
	Headers map[string]string
	// IntegratedAuth sends the ambient credentials with direct requests.
	IntegratedAuth bool
}

// Result is a successful fetch: a 200 response with a valid JSON body.
type Result struct {
	Mode        Mode
	URL         string
	Status      int
	ContentType Category
	Body        jsonvalue.Value
	Raw         []byte
}

// Dispatcher executes Requests.
type Dispatcher struct {
	env        *hostenv.Environment
	httpClient *http.Client
	jar        http.CookieJar
	proxy      ProxyExecutor
	maxBytes   int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the client used for direct requests.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = c
	}
}

// WithCredentialJar sets the cookie jar attached to integrated-auth requests.
func WithCredentialJar(jar http.CookieJar) Option {
	return func(d *Dispatcher) {
		d.jar = jar
	}
}

// WithProxyExecutor sets the executor used in proxy mode.
func WithProxyExecutor(x ProxyExecutor) Option {
	return func(d *Dispatcher) {
		d.proxy = x
	}
}

// WithMaxResponseBytes bounds the bytes read from a response body.
func WithMaxResponseBytes(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// New creates a Dispatcher for the given host environment.
func New(env *hostenv.Environment, opts ...Option) *Dispatcher {
	if env == nil {
		env = hostenv.Empty
	}
	d := &Dispatcher{
		env:        env,
		httpClient: http.DefaultClient,
		maxBytes:   DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.proxy == nil {
		d.proxy = &HTTPProxyExecutor{Client: d.httpClient, MaxResponseBytes: d.maxBytes}
	}
	return d
}

// Dispatch performs a single attempt of req. Errors are *RequestError.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if ResolveMode(req.TargetURL) == ModeProxy {
		return d.dispatchProxy(ctx, req)
	}
	return d.dispatchDirect(ctx, req)
}

func (d *Dispatcher) dispatchDirect(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.TargetURL, nil)
	if err != nil {
		return nil, d.transportError(ModeDirect, req.TargetURL, start, err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Accept", DirectAccept)

	client := *d.httpClient
	client.Jar = nil
	if req.IntegratedAuth {
		client.Jar = d.jar
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, d.transportError(ModeDirect, req.TargetURL, start, err)
	}
	defer resp.Body.Close()

	category := Classify(resp.Header.Get("Content-Type"))
	if resp.StatusCode != http.StatusOK {
		return nil, d.statusError(ModeDirect, req.TargetURL, start, strconv.Itoa(resp.StatusCode), statusText(resp), category)
	}

	body, err := readBody(resp.Body, d.maxBytes)
	if err != nil && !errors.Is(err, ErrBodyTooLarge) {
		return nil, d.transportError(ModeDirect, req.TargetURL, start, fmt.Errorf("reading response: %w", err))
	}
	return d.decode(ModeDirect, req.TargetURL, start, resp.StatusCode, category, body, err)
}

func (d *Dispatcher) dispatchProxy(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	hostWebURL, hostOK := d.env.HostWebURL()
	appWebURL, appOK := d.env.AppWebURL()
	if !hostOK || !appOK {
		return nil, &RequestError{
			Kind:    KindConfiguration,
			Mode:    ModeProxy,
			Message: "Missing " + hostenv.ParamHostURL + " or " + hostenv.ParamAppWebURL + " page parameter",
		}
	}

	target := RewriteURL(req.TargetURL, hostWebURL, appWebURL)
	resp, err := d.proxy.Execute(ctx, appWebURL, ProxyRequest{
		URL:     target,
		Method:  http.MethodGet,
		Headers: map[string]string{"Accept": ProxyAccept},
	})
	var tooLarge error
	if err != nil {
		if resp == nil || !errors.Is(err, ErrBodyTooLarge) {
			return nil, d.transportError(ModeProxy, target, start, err)
		}
		tooLarge = err
	}
	if resp == nil {
		return nil, d.transportError(ModeProxy, target, start, errNoProxyResponse)
	}

	category := Classify(resp.ContentType)
	if resp.StatusCode != http.StatusOK || resp.Body == nil {
		return nil, d.statusError(ModeProxy, target, start, strconv.Itoa(resp.StatusCode), resp.StatusText, category)
	}
	return d.decode(ModeProxy, target, start, resp.StatusCode, category, resp.Body, tooLarge)
}

func (d *Dispatcher) decode(mode Mode, target string, start time.Time, status int, category Category, body []byte, readErr error) (*Result, error) {
	if readErr != nil {
		return nil, d.invalidJSON(mode, target, start, category, readErr)
	}
	doc, err := jsonvalue.Parse(body)
	if err != nil {
		return nil, d.invalidJSON(mode, target, start, category, err)
	}

	slog.Debug("WebApi request completed",
		slog.String("mode", mode.String()),
		slog.String("url", target),
		slog.Int("status", status),
		slog.String("content_type", string(category)),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &Result{
		Mode:        mode,
		URL:         target,
		Status:      status,
		ContentType: category,
		Body:        doc,
		Raw:         body,
	}, nil
}

func (d *Dispatcher) transportError(mode Mode, target string, start time.Time, cause error) error {
	hint := DirectFailureHint
	if mode == ModeProxy {
		hint = ProxyFailureHint
	}
	slog.Debug("WebApi request failed",
		slog.String("mode", mode.String()),
		slog.String("url", target),
		slog.String("error", cause.Error()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &RequestError{
		Kind:    KindTransport,
		Mode:    mode,
		Status:  TransportFailureStatus,
		Message: cause.Error() + hint,
		Cause:   cause,
	}
}

func (d *Dispatcher) statusError(mode Mode, target string, start time.Time, status, text string, category Category) error {
	slog.Debug("WebApi request returned error",
		slog.String("mode", mode.String()),
		slog.String("url", target),
		slog.String("status", status),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &RequestError{
		Kind:            KindStatus,
		Mode:            mode,
		Status:          status,
		Message:         text,
		ContentCategory: category,
	}
}

func (d *Dispatcher) invalidJSON(mode Mode, target string, start time.Time, category Category, cause error) error {
	slog.Debug("WebApi response is not JSON",
		slog.String("mode", mode.String()),
		slog.String("url", target),
		slog.String("content_type", string(category)),
		slog.String("error", cause.Error()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &RequestError{
		Kind:            KindInvalidJSON,
		Mode:            mode,
		Status:          strconv.Itoa(http.StatusOK),
		Message:         "Invalid JSON response",
		ContentCategory: category,
		Cause:           cause,
	}
}

// readBody reads at most limit bytes. When the body is longer it returns the
// truncated bytes with ErrBodyTooLarge.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxResponseBytes
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return body[:limit], ErrBodyTooLarge
	}
	return body, nil
}

// statusText returns the reason phrase of resp, which may be empty.
func statusText(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
