package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/formjson-mcp/internal/hostenv"
	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

func TestResolveMode(t *testing.T) {
	assert.Equal(t, ModeProxy, ResolveMode("https://host/site/_api/web/lists"))
	assert.Equal(t, ModeProxy, ResolveMode("https://host/site/_api/site/usage"))
	assert.Equal(t, ModeDirect, ResolveMode("https://api.example.com/users"))
	assert.Equal(t, ModeDirect, ResolveMode("https://host/site/_api/search/query"))
	assert.Equal(t, "proxy", ModeProxy.String())
}

func TestRewriteURL(t *testing.T) {
	got := RewriteURL("https://host/site/_api/web/lists", "https://host/site", "https://apphost/app")
	assert.Equal(t, "https://apphost/app/_api/SP.AppContextSite(@target)/web/lists?@target='https://host/site'", got)

	got = RewriteURL("https://host/site/_api/web/lists?$select=Title", "https://host/site", "https://apphost/app")
	assert.Equal(t, "https://apphost/app/_api/SP.AppContextSite(@target)/web/lists?$select=Title&@target='https://host/site'", got)
}

func TestDispatch_DirectSuccess(t *testing.T) {
	var gotAccept, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Tenant")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"items":["a","b"]}`))
	}))
	defer srv.Close()

	d := New(hostenv.Empty, WithHTTPClient(srv.Client()))
	res, err := d.Dispatch(context.Background(), Request{
		TargetURL: srv.URL + "/items",
		Headers:   map[string]string{"X-Tenant": "acme", "Accept": "text/plain"},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeDirect, res.Mode)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, CategoryJSON, res.ContentType)
	assert.Equal(t, jsonvalue.Object{"items": jsonvalue.Array{jsonvalue.String("a"), jsonvalue.String("b")}}, res.Body)
	assert.Equal(t, DirectAccept, gotAccept)
	assert.Equal(t, "acme", gotCustom)
}

func TestDispatch_DirectStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	d := New(hostenv.Empty, WithHTTPClient(srv.Client()))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: srv.URL})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindStatus, reqErr.Kind)
	assert.Equal(t, "404", reqErr.Status)
	assert.Equal(t, "WebApi request failed: 404 - Not Found", reqErr.Display())
}

func TestDispatch_DirectInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>login</html>`))
	}))
	defer srv.Close()

	d := New(hostenv.Empty, WithHTTPClient(srv.Client()))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: srv.URL})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindInvalidJSON, reqErr.Kind)
	assert.Equal(t, CategoryHTML, reqErr.ContentCategory)
	assert.Equal(t, "Invalid JSON response", reqErr.Display())
}

func TestDispatch_DirectBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":"` + strings.Repeat("x", 64) + `"}`))
	}))
	defer srv.Close()

	d := New(hostenv.Empty, WithHTTPClient(srv.Client()), WithMaxResponseBytes(16))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: srv.URL})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindInvalidJSON, reqErr.Kind)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestDispatch_DirectTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	d := New(hostenv.Empty)
	_, err := d.Dispatch(context.Background(), Request{TargetURL: target})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindTransport, reqErr.Kind)
	assert.Equal(t, "500", reqErr.Status)
	assert.True(t, strings.HasSuffix(reqErr.Message, DirectFailureHint))
	assert.Contains(t, reqErr.Display(), "WebApi request failed: 500 - ")
	assert.Contains(t, reqErr.Display(), "Try checking authentication")
}

func TestDispatch_IntegratedAuthSendsCredentials(t *testing.T) {
	var cookies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("FedAuth")
		if err == nil {
			cookies = append(cookies, c.Value)
		} else {
			cookies = append(cookies, "")
		}
		_, _ = w.Write([]byte(`true`))
	}))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "FedAuth", Value: "token"}})

	d := New(hostenv.Empty, WithHTTPClient(srv.Client()), WithCredentialJar(jar))

	_, err = d.Dispatch(context.Background(), Request{TargetURL: srv.URL})
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), Request{TargetURL: srv.URL, IntegratedAuth: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "token"}, cookies)
}

func proxyEnv() *hostenv.Environment {
	return hostenv.FromSearch("SPHostUrl=https%3A%2F%2Fhost%2Fsite&SPAppWebUrl=https%3A%2F%2Fapphost%2Fapp")
}

func TestDispatch_ProxySuccess(t *testing.T) {
	var gotAppWeb string
	var gotReq ProxyRequest
	executor := ProxyExecutorFunc(func(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
		gotAppWeb = appWebURL
		gotReq = req
		return &ProxyResponse{StatusCode: 200, StatusText: "OK", ContentType: "application/json", Body: []byte(`{"d":{"results":[]}}`)}, nil
	})

	d := New(proxyEnv(), WithProxyExecutor(executor))
	res, err := d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/lists"})
	require.NoError(t, err)

	assert.Equal(t, ModeProxy, res.Mode)
	assert.Equal(t, "https://apphost/app", gotAppWeb)
	assert.Equal(t, "https://apphost/app/_api/SP.AppContextSite(@target)/web/lists?@target='https://host/site'", gotReq.URL)
	assert.Equal(t, ProxyAccept, gotReq.Headers["Accept"])
	assert.Equal(t, http.MethodGet, gotReq.Method)
}

func TestDispatch_ProxyExecutorRejects(t *testing.T) {
	executor := ProxyExecutorFunc(func(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
		return nil, errors.New("Access denied")
	})

	d := New(proxyEnv(), WithProxyExecutor(executor))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/lists"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindTransport, reqErr.Kind)
	assert.Equal(t, "WebApi request failed: 500 - Access denied, Try checking end point", reqErr.Display())
}

func TestDispatch_ProxyNilResponse(t *testing.T) {
	executor := ProxyExecutorFunc(func(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
		return nil, nil
	})

	d := New(proxyEnv(), WithProxyExecutor(executor))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/lists"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindTransport, reqErr.Kind)
	assert.Equal(t, "500", reqErr.Status)
	assert.Equal(t, "WebApi request failed: 500 - proxy executor returned no response, Try checking end point", reqErr.Display())
}

func TestDispatch_ProxyNon200(t *testing.T) {
	executor := ProxyExecutorFunc(func(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
		return &ProxyResponse{StatusCode: 204, Body: []byte{}}, nil
	})

	d := New(proxyEnv(), WithProxyExecutor(executor))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/lists"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindStatus, reqErr.Kind)
	assert.Equal(t, "WebApi request failed: 204 - Error!", reqErr.Display())
}

func TestDispatch_ProxyMissingHostParams(t *testing.T) {
	called := false
	executor := ProxyExecutorFunc(func(ctx context.Context, appWebURL string, req ProxyRequest) (*ProxyResponse, error) {
		called = true
		return nil, nil
	})

	d := New(hostenv.FromSearch("mode=1"), WithProxyExecutor(executor))
	_, err := d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/lists"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindConfiguration, reqErr.Kind)
	assert.False(t, called)
}

func TestHTTPProxyExecutor(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		if strings.Contains(r.URL.Path, "denied") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json;odata=verbose")
		_, _ = w.Write([]byte(`{"d":{"Title":"Tasks"}}`))
	}))
	defer srv.Close()

	env := hostenv.FromSearch("SPHostUrl=https%3A%2F%2Fhost%2Fsite&SPAppWebUrl=" + url.QueryEscape(srv.URL+"/app"))
	d := New(env, WithHTTPClient(srv.Client()))

	res, err := d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/title"})
	require.NoError(t, err)
	assert.Equal(t, "/app/_api/SP.AppContextSite(@target)/web/title", gotPath)
	assert.Equal(t, "@target='https://host/site'", gotQuery)
	assert.Equal(t, ProxyAccept, gotAccept)
	assert.Equal(t, CategoryJSON, res.ContentType)

	_, err = d.Dispatch(context.Background(), Request{TargetURL: "https://host/site/_api/web/denied"})
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindTransport, reqErr.Kind)
	assert.Contains(t, reqErr.Message, "403")
	assert.True(t, strings.HasSuffix(reqErr.Message, ProxyFailureHint))
}

func TestHTTPProxyExecutor_RejectsForeignURL(t *testing.T) {
	x := &HTTPProxyExecutor{}
	_, err := x.Execute(context.Background(), "https://apphost/app", ProxyRequest{URL: "https://elsewhere/_api/web"})
	assert.ErrorIs(t, err, ErrOutsideAppWeb)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		want        Category
	}{
		{"application/json", CategoryJSON},
		{"application/json;odata=verbose", CategoryJSON},
		{"application/vnd.api+json", CategoryJSON},
		{"text/html; charset=utf-8", CategoryHTML},
		{"application/atom+xml", CategoryXML},
		{"text/plain", CategoryText},
		{"image/png", CategoryBinary},
		{"", CategoryBinary},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}
