package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ProxyRequest is a request executed in the app web context.
type ProxyRequest struct {
	URL     string
	Method  string
	Headers map[string]string
}

// ProxyResponse is the raw reply of a ProxyExecutor.
type ProxyResponse struct {
	StatusCode  int
	StatusText  string
	ContentType string
	Body        []byte
}

// ProxyExecutor executes requests on behalf of an app web, the way the
// SharePoint cross-domain request executor does. A returned error means the
// executor rejected the request.
type ProxyExecutor interface {
	Execute(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error)
}

// ProxyExecutorFunc adapts a function to ProxyExecutor.
type ProxyExecutorFunc func(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error)

func (f ProxyExecutorFunc) Execute(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
	return f(ctx, appWebURL, req)
}

// ErrOutsideAppWeb is returned when a proxied URL does not belong to the app
// web the executor is bound to.
var ErrOutsideAppWeb = errors.New("request url is outside the app web")

// HTTPProxyExecutor is a ProxyExecutor that performs the request itself with
// an http.Client. Like the SharePoint executor it rejects non-2xx responses.
type HTTPProxyExecutor struct {
	Client *http.Client
	// MaxResponseBytes bounds the body read; 0 means DefaultMaxResponseBytes.
	MaxResponseBytes int64
}

// Execute implements ProxyExecutor.
func (x *HTTPProxyExecutor) Execute(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
	if appWebURL == "" || !strings.HasPrefix(req.URL, appWebURL) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideAppWeb, req.URL)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	client := x.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("app web returned %s", resp.Status)
	}

	body, err := readBody(resp.Body, x.MaxResponseBytes)
	if err != nil && !errors.Is(err, ErrBodyTooLarge) {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &ProxyResponse{
		StatusCode:  resp.StatusCode,
		StatusText:  statusText(resp),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, err
}
