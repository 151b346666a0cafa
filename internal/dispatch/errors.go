package dispatch

import "fmt"

// Kind classifies a failed request.
type Kind int

const (
	// KindTransport is a network or proxy executor failure.
	KindTransport Kind = iota
	// KindStatus is a response whose status is not 200.
	KindStatus
	// KindInvalidJSON is a 200 response whose body is not valid JSON.
	KindInvalidJSON
	// KindConfiguration is a request that could not be built.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindInvalidJSON:
		return "invalid_json"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Hints appended to transport failures.
const (
	DirectFailureHint = ", Try checking authentication"
	ProxyFailureHint  = ", Try checking end point"
)

// TransportFailureStatus is the status reported when no response was received.
const TransportFailureStatus = "500"

// RequestError is the failure side of a dispatched request.
type RequestError struct {
	Kind Kind
	Mode Mode
	// Status is the HTTP status code as text, or "500" for transport failures.
	Status string
	// Message is the status text for KindStatus and the failure cause plus
	// hint for KindTransport.
	Message string
	// ContentCategory classifies the response Content-Type when a response
	// was received.
	ContentCategory Category
	Cause           error
}

func (e *RequestError) Error() string {
	if e.Cause != nil && e.Kind != KindTransport {
		return fmt.Sprintf("%s request %s: %s: %v", e.Mode, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s request %s: %s", e.Mode, e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Display returns the user-facing message for the failure.
func (e *RequestError) Display() string {
	switch e.Kind {
	case KindInvalidJSON:
		return "Invalid JSON response"
	case KindConfiguration:
		return e.Message
	}
	text := e.Message
	if text == "" {
		text = "Error!"
	}
	return fmt.Sprintf("WebApi request failed: %s - %s", e.Status, text)
}
