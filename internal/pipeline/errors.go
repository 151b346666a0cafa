package pipeline

import "fmt"

// Kind classifies a pipeline failure.
type Kind int

const (
	KindConfiguration Kind = iota
	KindTransport
	KindParse
	KindShape
)

// Code returns the stable error code for k.
func (k Kind) Code() string {
	switch k {
	case KindConfiguration:
		return "CONFIGURATION"
	case KindTransport:
		return "TRANSPORT"
	case KindParse:
		return "PARSE"
	case KindShape:
		return "SHAPE"
	default:
		return "UNKNOWN"
	}
}

// User-facing messages.
const (
	MsgProvideJSON     = "Please provide valid jsonResponse"
	MsgConfigure       = "Please configure control"
	MsgInvalidURL      = "Invalid WebApi Url"
	MsgInvalidHeaders  = "Invalid Headers"
	MsgInvalidPath     = "Invalid JSON Path"
	MsgInvalidTemplate = "Invalid Mustache Template"
	MsgInvalidResponse = "Invalid JSON response"
)

// Error is a recovered pipeline failure. Message is shown to the user.
type Error struct {
	Kind    Kind
	Message string
	// Status is the request status for transport failures.
	Status string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func configError(msg string, cause error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Cause: cause}
}
