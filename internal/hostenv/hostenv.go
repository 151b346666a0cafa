// Package hostenv models the read-only page environment a widget runs in:
// the query string of the hosting form page.
package hostenv

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// Query parameter names read from the host page.
const (
	ParamMode       = "mode"
	ParamHostURL    = "SPHostUrl"
	ParamAppWebURL  = "SPAppWebUrl"
	escapedAmpToken = "amp;"
)

// PageMode is the form page's mode.
type PageMode int

const (
	Display PageMode = iota
	New
	Edit
)

func (m PageMode) String() string {
	switch m {
	case New:
		return "New"
	case Edit:
		return "Edit"
	default:
		return "Display"
	}
}

// ParsePageMode maps "New", "Edit" and "Display" to a PageMode.
func ParsePageMode(s string) (PageMode, error) {
	switch s {
	case "New":
		return New, nil
	case "Edit":
		return Edit, nil
	case "Display":
		return Display, nil
	}
	return Display, fmt.Errorf("unknown page mode %q", s)
}

// Environment is an immutable view of the host page location.
type Environment struct {
	path   string
	search string
}

// Empty is an environment with no query parameters.
var Empty = &Environment{}

// FromPageURL builds an Environment from the full page URL.
func FromPageURL(pageURL string) (*Environment, error) {
	if pageURL == "" {
		return Empty, nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	env := &Environment{path: u.Path}
	if u.RawQuery != "" {
		env.search = "?" + u.RawQuery
	}
	return env, nil
}

// FromSearch builds an Environment from a raw location search string, with
// or without the leading "?".
func FromSearch(search string) *Environment {
	if search != "" && !strings.HasPrefix(search, "?") {
		search = "?" + search
	}
	return &Environment{search: search}
}

// Search returns the raw search string including the leading "?".
func (e *Environment) Search() string {
	return e.search
}

// Path returns the page path, or "" when the environment was built from a
// search string.
func (e *Environment) Path() string {
	return e.path
}

// QueryParam returns the first value of the named query parameter. The search
// string has every "amp;" removed and is url-decoded once before parsing, so
// doubly encoded SharePoint redirect parameters resolve.
func (e *Environment) QueryParam(name string) (string, bool) {
	if e == nil || e.search == "" {
		return "", false
	}
	raw := strings.ReplaceAll(e.search, escapedAmpToken, "")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	raw = strings.TrimPrefix(raw, "?")
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(raw)
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// PageMode derives the page mode from the "mode" parameter: a value loosely
// equal to 0 is New, to 1 is Edit, and anything else, including an absent
// parameter, is Display.
func (e *Environment) PageMode() PageMode {
	raw, ok := e.QueryParam(ParamMode)
	if !ok {
		return Display
	}
	v := jsonvalue.String(raw)
	switch {
	case jsonvalue.LooseEqual(v, jsonvalue.Number(0)):
		return New
	case jsonvalue.LooseEqual(v, jsonvalue.Number(1)):
		return Edit
	default:
		return Display
	}
}

// HostWebURL returns the SharePoint host web URL parameter.
func (e *Environment) HostWebURL() (string, bool) {
	return e.QueryParam(ParamHostURL)
}

// AppWebURL returns the SharePoint app web URL parameter.
func (e *Environment) AppWebURL() (string, bool) {
	return e.QueryParam(ParamAppWebURL)
}
