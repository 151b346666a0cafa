// Package pipeline is the composition root of a widget: it fetches or parses
// the JSON document, extracts and renders the configured value, owns the
// current render and outcome, and emits change events.
//
// A Pipeline serves two controls. Run is the Parse JSON control: inline or
// remote JSON, path extraction and one of the display variants. Fetch is the
// WebApi Request control: the fetched document shown as JSON with its
// compact text as the outcome.
//
// Failures never escape as Go errors from Run or Fetch. They are rendered
// inline and reported on the returned State.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/usestring/formjson-mcp/internal/dispatch"
	"github.com/usestring/formjson-mcp/internal/hostenv"
	"github.com/usestring/formjson-mcp/internal/jsonpath"
	"github.com/usestring/formjson-mcp/internal/render"
	"github.com/usestring/formjson-mcp/internal/schema"
	"github.com/usestring/formjson-mcp/internal/sorter"
	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// Errors returned by Select.
var (
	ErrNotSelectable = errors.New("widget has no selectable options")
	ErrUnknownOption = errors.New("value is not one of the options")
)

// State is a snapshot of a widget.
type State struct {
	Markup string
	// Outcome is nil until a run or selection sets it.
	Outcome    jsonvalue.Value
	Options    []string
	Selectable bool
	Mode       hostenv.PageMode
	Err        *Error
}

// Pipeline runs widget configurations. It is safe for concurrent use; when
// runs overlap the last one to finish wins.
type Pipeline struct {
	env        *hostenv.Environment
	dispatcher *dispatch.Dispatcher
	extractor  *jsonpath.Extractor
	emitter    Emitter
	now        func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDispatcher sets the request dispatcher used for remote sources.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(p *Pipeline) {
		p.dispatcher = d
	}
}

// WithExtractor sets the path extractor.
func WithExtractor(x *jsonpath.Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = x
	}
}

// WithEmitter sets the receiver of change events.
func WithEmitter(e Emitter) Option {
	return func(p *Pipeline) {
		p.emitter = e
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline for a host environment.
func New(env *hostenv.Environment, opts ...Option) (*Pipeline, error) {
	if env == nil {
		env = hostenv.Empty
	}
	p := &Pipeline{
		env: env,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.extractor == nil {
		engine, err := jsonpath.NewEngine(jsonpath.DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating path engine: %w", err)
		}
		p.extractor = jsonpath.NewExtractor(engine)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.New(env)
	}
	if p.emitter == nil {
		p.emitter = EmitterFunc(func(ChangeEvent) {})
	}
	p.state.Mode = env.PageMode()
	p.state.Markup = render.Message("Loading...")
	return p, nil
}

// Environment returns the host environment of the pipeline.
func (p *Pipeline) Environment() *hostenv.Environment {
	return p.env
}

// State returns the current snapshot.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Run executes the Parse JSON control for cfg.
func (p *Pipeline) Run(ctx context.Context, cfg types.WidgetConfig) State {
	p.seedOutcome(cfg)

	variant, err := render.ParseVariant(cfg.DisplayAs)
	if err != nil {
		return p.fail(configError(MsgConfigure, err), "")
	}

	doc, perr := p.document(ctx, cfg)
	if perr != nil {
		return p.fail(perr, "")
	}

	extraction, err := p.extractor.Extract(doc, cfg.JSONPath)
	if err != nil {
		return p.fail(configError(MsgInvalidPath, err), "")
	}

	p.mu.Lock()
	current := p.state.Outcome
	p.mu.Unlock()

	out, err := render.Render(render.Input{
		Variant:        variant,
		Value:          extraction.Value(),
		Defined:        extraction.Defined,
		Mode:           p.env.PageMode(),
		Current:        current,
		Template:       cfg.MustacheTemplate,
		DefaultMessage: cfg.DefaultMessage,
		Order:          sorter.ParseOrder(cfg.SortOrder),
	})
	switch {
	case errors.Is(err, render.ErrNotArray):
		return p.fail(&Error{Kind: KindShape, Message: render.ErrNotArray.Error()}, out.Markup)
	case errors.Is(err, render.ErrTemplate):
		return p.fail(configError(MsgInvalidTemplate, err), out.Markup)
	case err != nil:
		return p.fail(configError(MsgConfigure, err), "")
	}

	p.mu.Lock()
	p.state.Markup = out.Markup
	p.state.Options = out.Options
	p.state.Selectable = out.Selectable
	p.state.Err = nil
	if out.HasOutcome {
		p.state.Outcome = out.Outcome
	}
	snap := p.snapshot()
	p.mu.Unlock()

	p.emit(snap.Outcome, TriggerRun)
	return snap
}

// Fetch executes the WebApi Request control for cfg: the fetched document is
// shown as indented JSON and its compact text becomes the outcome.
func (p *Pipeline) Fetch(ctx context.Context, cfg types.WidgetConfig) State {
	if cfg.WebAPIURL == "" {
		return p.fail(configError(MsgInvalidURL, nil), "")
	}
	doc, perr := p.fetch(ctx, cfg)
	if perr != nil {
		return p.fail(perr, "")
	}

	outcome := jsonvalue.String(jsonvalue.Compact(doc))

	p.mu.Lock()
	p.state.Markup = render.JSONBlock(doc)
	p.state.Options = nil
	p.state.Selectable = false
	p.state.Err = nil
	p.state.Outcome = outcome
	snap := p.snapshot()
	p.mu.Unlock()

	p.emit(outcome, TriggerFetch)
	return snap
}

// Select records a dropdown choice. value must be one of the current
// options.
func (p *Pipeline) Select(value string) (State, error) {
	p.mu.Lock()
	if !p.state.Selectable {
		p.mu.Unlock()
		return State{}, ErrNotSelectable
	}
	found := false
	for _, opt := range p.state.Options {
		if opt == value {
			found = true
			break
		}
	}
	if !found {
		p.mu.Unlock()
		return State{}, fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}
	p.state.Outcome = jsonvalue.String(value)
	snap := p.snapshot()
	p.mu.Unlock()

	p.emit(snap.Outcome, TriggerSelect)
	return snap, nil
}

// document resolves the JSON document from exactly one configured source.
func (p *Pipeline) document(ctx context.Context, cfg types.WidgetConfig) (jsonvalue.Value, *Error) {
	hasInline := cfg.JSONResponse != ""
	hasRemote := cfg.WebAPIURL != ""
	if hasInline == hasRemote {
		return nil, configError(MsgConfigure, nil)
	}
	if hasRemote {
		return p.fetch(ctx, cfg)
	}

	if strings.TrimSpace(cfg.JSONResponse) == "" {
		return nil, configError(MsgProvideJSON, nil)
	}
	doc, err := jsonvalue.Parse([]byte(cfg.JSONResponse))
	if err != nil {
		return nil, &Error{Kind: KindParse, Message: MsgProvideJSON, Cause: err}
	}
	return doc, nil
}

func (p *Pipeline) fetch(ctx context.Context, cfg types.WidgetConfig) (jsonvalue.Value, *Error) {
	headers, perr := parseHeaders(cfg.Headers)
	if perr != nil {
		return nil, perr
	}

	res, err := p.dispatcher.Dispatch(ctx, dispatch.Request{
		TargetURL:      cfg.WebAPIURL,
		Headers:        headers,
		IntegratedAuth: cfg.IsIntegratedAuth,
	})
	if err != nil {
		var reqErr *dispatch.RequestError
		if !errors.As(err, &reqErr) {
			return nil, &Error{Kind: KindTransport, Message: err.Error(), Cause: err}
		}
		switch reqErr.Kind {
		case dispatch.KindInvalidJSON:
			return nil, &Error{Kind: KindParse, Message: MsgInvalidResponse, Status: reqErr.Status, Cause: err}
		case dispatch.KindConfiguration:
			return nil, configError(reqErr.Display(), err)
		default:
			return nil, &Error{Kind: KindTransport, Message: reqErr.Display(), Status: reqErr.Status, Cause: err}
		}
	}
	return res.Body, nil
}

// parseHeaders validates the headers property, a JSON object of strings.
func parseHeaders(raw string) (map[string]string, *Error) {
	if strings.TrimSpace(raw) == "" {
		raw = types.DefaultHeaders
	}
	v, err := schema.Headers()
	if err != nil {
		return nil, configError(MsgInvalidHeaders, err)
	}
	if result := v.Validate([]byte(raw)); !result.Valid {
		return nil, configError(MsgInvalidHeaders, fmt.Errorf("%s", strings.Join(result.Errors, "; ")))
	}
	var headers map[string]string
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, configError(MsgInvalidHeaders, err)
	}
	return headers, nil
}

// seedOutcome applies a stored outcome from the configuration.
func (p *Pipeline) seedOutcome(cfg types.WidgetConfig) {
	if cfg.Outcome == nil {
		return
	}
	p.mu.Lock()
	p.state.Outcome = jsonvalue.FromAny(cfg.Outcome)
	p.mu.Unlock()
}

// fail records err as the current render. markup overrides the default
// message markup when set. No event is emitted.
func (p *Pipeline) fail(err *Error, markup string) State {
	slog.Warn("widget run failed",
		slog.String("code", err.Kind.Code()),
		slog.String("message", err.Message),
		slog.Any("error", err.Cause),
	)
	if markup == "" {
		markup = render.Message(err.Message)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Markup = markup
	p.state.Options = nil
	p.state.Selectable = false
	p.state.Err = err
	return p.snapshot()
}

func (p *Pipeline) emit(value jsonvalue.Value, trigger Trigger) {
	if value == nil {
		value = jsonvalue.Null{}
	}
	ev := ChangeEvent{
		ID:      uuid.NewString(),
		Name:    EventName,
		Value:   value,
		Trigger: trigger,
		At:      p.now(),
	}
	slog.Debug("change event emitted",
		slog.String("id", ev.ID),
		slog.String("trigger", string(trigger)),
	)
	p.emitter.Emit(ev)
}

// snapshot must be called with mu held.
func (p *Pipeline) snapshot() State {
	s := p.state
	if s.Options != nil {
		s.Options = append([]string(nil), s.Options...)
	}
	return s
}
