package dispatch

import (
	"mime"
	"strings"
)

// Category is a broad content-type classification of a response.
type Category string

const (
	CategoryJSON   Category = "json"
	CategoryXML    Category = "xml"
	CategoryHTML   Category = "html"
	CategoryText   Category = "text"
	CategoryBinary Category = "binary"
)

// Classify returns the category for a Content-Type header value. Parameters
// such as charset are ignored. Empty values are binary.
func Classify(contentType string) Category {
	if contentType == "" {
		return CategoryBinary
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case strings.Contains(mediaType, "json"):
		return CategoryJSON
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return CategoryHTML
	case strings.Contains(mediaType, "xml"):
		return CategoryXML
	case strings.HasPrefix(mediaType, "text/"):
		return CategoryText
	default:
		return CategoryBinary
	}
}
