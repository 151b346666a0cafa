package dispatch

import "strings"

const (
	apiSegment      = "/_api/"
	proxiedSegment  = "/_api/SP.AppContextSite(@target)/"
	targetParamName = "@target"
)

// proxyMarkers select proxy mode when found in a target URL.
var proxyMarkers = []string{"/_api/web/", "/_api/site/"}

// Mode is the transport used for a request.
type Mode int

const (
	ModeDirect Mode = iota
	ModeProxy
)

func (m Mode) String() string {
	if m == ModeProxy {
		return "proxy"
	}
	return "direct"
}

// ResolveMode returns ModeProxy for SharePoint web or site API URLs and
// ModeDirect for everything else.
func ResolveMode(targetURL string) Mode {
	for _, marker := range proxyMarkers {
		if strings.Contains(targetURL, marker) {
			return ModeProxy
		}
	}
	return ModeDirect
}

// RewriteURL rewrites a host web API URL into the app web cross-site form:
// the host URL is removed, the first "/_api/" becomes
// "/_api/SP.AppContextSite(@target)/", the app web URL is prefixed and
// @target is bound to the host URL.
func RewriteURL(targetURL, hostWebURL, appWebURL string) string {
	rewritten := strings.Replace(targetURL, hostWebURL, "", 1)
	rewritten = appWebURL + strings.Replace(rewritten, apiSegment, proxiedSegment, 1)

	sep := "?"
	if strings.Contains(targetURL, "?") {
		sep = "&"
	}
	return rewritten + sep + targetParamName + "='" + hostWebURL + "'"
}
