package types

// WidgetError is a failure a widget rendered inline instead of returning.
type WidgetError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// ChangeEvent is a change notification emitted by a widget.
type ChangeEvent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Trigger string `json:"trigger"`
	At      string `json:"at"`
}

// WidgetState is the current render of a widget.
type WidgetState struct {
	WidgetID   string `json:"widget_id"`
	Mode       string `json:"mode"`
	Markup     string `json:"markup"`
	HasOutcome bool   `json:"has_outcome"`
	// Outcome is omitted when unset or null.
	Outcome    any           `json:"outcome,omitempty"`
	Options    []string      `json:"options,omitzero"`
	Selectable bool          `json:"selectable,omitempty"`
	Error      *WidgetError  `json:"error,omitempty"`
	Events     []ChangeEvent `json:"events,omitzero"`
	Config     *WidgetConfig `json:"config,omitempty"`
}

// PathQueryResponse is the result of evaluating a JSONPath expression.
type PathQueryResponse struct {
	Path      string `json:"path"`
	Values    []any  `json:"values,omitzero"`
	Count     int    `json:"count"`
	Collapsed bool   `json:"collapsed"`
	Defined   bool   `json:"defined"`
	// Value is the single value a widget would display.
	Value any `json:"value,omitempty"`
}

// ConfigValidationResponse is the result of validating a widget document.
type ConfigValidationResponse struct {
	Valid  bool     `json:"valid"`
	Format string   `json:"format"`
	Errors []string `json:"errors,omitempty"`
	Schema any      `json:"schema,omitempty"`
}
