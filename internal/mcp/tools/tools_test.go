package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/formjson-mcp/internal/config"
	"github.com/usestring/formjson-mcp/internal/widgets"
	"github.com/usestring/formjson-mcp/pkg/types"
)

const newFormPage = "https://tenant.example.com/Lists/Orders/NewForm.aspx?mode=0"

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	reg, err := widgets.New(8)
	require.NoError(t, err)
	return &Deps{
		Config:  &config.Config{},
		Widgets: reg,
		Paths:   reg.Extractor(),
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var coded *CodedError
	require.True(t, errors.As(err, &coded), "expected CodedError, got %v", err)
	assert.Equal(t, code, coded.Code)
}

func TestRegister_OutputSchemas(t *testing.T) {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test", Version: "0.0.0"}, nil)
	assert.NotPanics(t, func() {
		Register(srv, newTestDeps(t))
	})
}

func TestToolRun_Label(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	_, out, err := ToolRun(d)(ctx, nil, WidgetRunInput{
		WidgetID: "w1",
		Config: types.WidgetConfig{
			JSONResponse: `{"customer":{"name":"Ada"}}`,
			JSONPath:     "$.customer.name.",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "w1", out.WidgetID)
	assert.Equal(t, "Display", out.Mode)
	assert.Contains(t, out.Markup, "Ada")
	assert.True(t, out.HasOutcome)
	assert.Equal(t, "Ada", out.Outcome)
	assert.Nil(t, out.Error)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "ntx-value-change", out.Events[0].Name)
	assert.Equal(t, "run", out.Events[0].Trigger)
	assert.Equal(t, "Ada", out.Events[0].Value)
	assert.NotEmpty(t, out.Events[0].ID)
}

func TestToolRun_InlineErrorIsNotToolError(t *testing.T) {
	d := newTestDeps(t)

	_, out, err := ToolRun(d)(context.Background(), nil, WidgetRunInput{
		WidgetID: "w1",
		Config:   types.WidgetConfig{DisplayAs: "Label"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Equal(t, "CONFIGURATION", out.Error.Code)
	assert.Equal(t, "Please configure control", out.Error.Message)
	assert.Empty(t, out.Events)
}

func TestToolRun_MissingWidgetID(t *testing.T) {
	d := newTestDeps(t)
	_, _, err := ToolRun(d)(context.Background(), nil, WidgetRunInput{WidgetID: "  "})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolSelect_Dropdown(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	_, out, err := ToolRun(d)(ctx, nil, WidgetRunInput{
		WidgetID: "status",
		PageURL:  newFormPage,
		Config: types.WidgetConfig{
			JSONResponse: `["Open","Closed"]`,
			DisplayAs:    types.DisplayDropdown,
			SortOrder:    types.SortAsc,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "New", out.Mode)
	assert.True(t, out.Selectable)
	assert.Equal(t, []string{"Closed", "Open"}, out.Options)

	_, out, err = ToolSelect(d)(ctx, nil, WidgetSelectInput{WidgetID: "status", Value: "Open"})
	require.NoError(t, err)
	assert.Equal(t, "Open", out.Outcome)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "select", out.Events[0].Trigger)

	_, _, err = ToolSelect(d)(ctx, nil, WidgetSelectInput{WidgetID: "status", Value: "Pending"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = ToolSelect(d)(ctx, nil, WidgetSelectInput{WidgetID: "missing", Value: "Open"})
	requireCode(t, err, ErrCodeNotFound)
}

func TestToolSelect_NotSelectable(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	_, _, err := ToolRun(d)(ctx, nil, WidgetRunInput{
		WidgetID: "w1",
		Config:   types.WidgetConfig{JSONResponse: `"x"`},
	})
	require.NoError(t, err)

	_, _, err = ToolSelect(d)(ctx, nil, WidgetSelectInput{WidgetID: "w1", Value: "x"})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolState(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	_, _, err := ToolState(d)(ctx, nil, WidgetStateInput{WidgetID: "w1"})
	requireCode(t, err, ErrCodeNotFound)

	cfg := types.WidgetConfig{JSONResponse: `[1,2]`, JSONPath: "$[1]."}
	_, _, err = ToolRun(d)(ctx, nil, WidgetRunInput{WidgetID: "w1", Config: cfg})
	require.NoError(t, err)

	_, out, err := ToolState(d)(ctx, nil, WidgetStateInput{WidgetID: "w1"})
	require.NoError(t, err)
	assert.Empty(t, out.Events)
	require.NotNil(t, out.Config)
	assert.Equal(t, cfg, *out.Config)
	assert.Equal(t, "2", out.Outcome)
}

func TestToolFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "tags": ["a"]}`))
	}))
	defer srv.Close()

	d := newTestDeps(t)
	_, out, err := ToolFetch(d)(context.Background(), nil, WidgetRunInput{
		WidgetID: "api",
		Config:   types.WidgetConfig{WebAPIURL: srv.URL + "/items/7"},
	})
	require.NoError(t, err)
	require.Nil(t, out.Error)
	assert.Equal(t, `{"id":7,"tags":["a"]}`, out.Outcome)
	assert.Contains(t, out.Markup, "<pre>")
	require.Len(t, out.Events, 1)
	assert.Equal(t, "fetch", out.Events[0].Trigger)
}

func TestToolFetch_StatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := newTestDeps(t)
	_, out, err := ToolFetch(d)(context.Background(), nil, WidgetRunInput{
		WidgetID: "api",
		Config:   types.WidgetConfig{WebAPIURL: srv.URL},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Equal(t, "TRANSPORT", out.Error.Code)
	assert.Equal(t, "503", out.Error.Status)
	assert.Empty(t, out.Events)
}

func TestToolQueryPath(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	doc := `{"items":[{"n":"a"},{"n":"b"}],"one":{"n":"c"}}`

	tests := []struct {
		name      string
		path      string
		values    []any
		collapsed bool
		value     any
	}{
		{"sequence", "$.items[*].n", []any{"a", "b"}, false, []any{"a", "b"}},
		{"collapsed", "$.one.n.", []any{"c"}, true, "c"},
		{"single not collapsed", "$.one.n", []any{"c"}, false, []any{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := ToolQueryPath(d)(ctx, nil, QueryPathInput{JSON: doc, Path: tt.path})
			require.NoError(t, err)
			assert.True(t, out.Defined)
			assert.Equal(t, tt.values, out.Values)
			assert.Equal(t, len(tt.values), out.Count)
			assert.Equal(t, tt.collapsed, out.Collapsed)
			assert.Equal(t, tt.value, out.Value)
		})
	}
}

func TestToolQueryPath_Defaults(t *testing.T) {
	d := newTestDeps(t)
	_, out, err := ToolQueryPath(d)(context.Background(), nil, QueryPathInput{JSON: `{"a":1}`})
	require.NoError(t, err)
	assert.Equal(t, "$.", out.Path)
	assert.True(t, out.Collapsed)
	assert.Equal(t, map[string]any{"a": 1.0}, out.Value)
}

func TestToolQueryPath_InvalidInput(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	_, _, err := ToolQueryPath(d)(ctx, nil, QueryPathInput{JSON: `{"a":`})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = ToolQueryPath(d)(ctx, nil, QueryPathInput{JSON: `{}`, Path: "$.a["})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolValidateConfig(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		input  ValidateConfigInput
		valid  bool
		format string
	}{
		{"json", ValidateConfigInput{Config: `{"jsonResponse":"[]","displayAs":"Dropdown"}`}, true, "json"},
		{"bad variant", ValidateConfigInput{Config: `{"displayAs":"Grid"}`}, false, "json"},
		{"toml", ValidateConfigInput{Config: "webApiUrl = \"https://x\"\nsortOrder = \"Asc\"\n", Format: "toml"}, true, "toml"},
		{"yaml wrong type", ValidateConfigInput{Config: "isIntegratedAuth: [1]\n", Format: "yml"}, false, "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := ToolValidateConfig(d)(ctx, nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, out.Valid)
			assert.Equal(t, tt.format, out.Format)
			if !tt.valid {
				assert.NotEmpty(t, out.Errors)
			}
			assert.Nil(t, out.Schema)
		})
	}
}

func TestToolValidateConfig_Schema(t *testing.T) {
	d := newTestDeps(t)
	_, out, err := ToolValidateConfig(d)(context.Background(), nil, ValidateConfigInput{
		Config:        `{}`,
		IncludeSchema: true,
	})
	require.NoError(t, err)
	schema, ok := out.Schema.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, schema, "properties")
}

func TestToolValidateConfig_InvalidInput(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()

	_, _, err := ToolValidateConfig(d)(ctx, nil, ValidateConfigInput{Config: `{}`, Format: "ini"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = ToolValidateConfig(d)(ctx, nil, ValidateConfigInput{Config: `{`})
	requireCode(t, err, ErrCodeInvalidInput)
}
