// Package widgets keeps the live widgets served by the MCP surface. Each
// widget owns a pipeline bound to its page environment and records the change
// events it emits.
package widgets

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/usestring/formjson-mcp/internal/cache"
	"github.com/usestring/formjson-mcp/internal/dispatch"
	"github.com/usestring/formjson-mcp/internal/hostenv"
	"github.com/usestring/formjson-mcp/internal/jsonpath"
	"github.com/usestring/formjson-mcp/internal/pipeline"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// ErrEmptyID is returned when a widget id is blank.
var ErrEmptyID = errors.New("widget id is required")

// Widget is a pipeline plus the events it has emitted.
type Widget struct {
	ID       string
	PageURL  string
	Pipeline *pipeline.Pipeline
	Events   *pipeline.Recorder

	mu     sync.Mutex
	config *types.WidgetConfig
}

// SetConfig records the configuration of the latest run.
func (w *Widget) SetConfig(cfg types.WidgetConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = &cfg
}

// Config returns the configuration of the latest run, or nil.
func (w *Widget) Config() *types.WidgetConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.config == nil {
		return nil
	}
	cfg := *w.config
	return &cfg
}

// Registry maps widget ids to widgets. The least recently used widget is
// dropped once the registry is full.
type Registry struct {
	widgets   *cache.LRU[string, *Widget]
	group     singleflight.Group
	pageURL   string
	extractor *jsonpath.Extractor
	dispatch  []dispatch.Option
	listener  pipeline.Emitter
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaultPageURL sets the page URL used when Open is given none.
func WithDefaultPageURL(u string) Option {
	return func(r *Registry) {
		r.pageURL = u
	}
}

// WithExtractor shares one path extractor between all widgets.
func WithExtractor(x *jsonpath.Extractor) Option {
	return func(r *Registry) {
		r.extractor = x
	}
}

// WithDispatchOptions sets the options of every widget's dispatcher.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(r *Registry) {
		r.dispatch = opts
	}
}

// WithListener receives the events of every widget in addition to its own
// recorder.
func WithListener(e pipeline.Emitter) Option {
	return func(r *Registry) {
		r.listener = e
	}
}

// New creates a registry holding at most maxItems widgets.
func New(maxItems int, opts ...Option) (*Registry, error) {
	widgets, err := cache.New[string, *Widget](maxItems)
	if err != nil {
		return nil, fmt.Errorf("creating widget cache: %w", err)
	}
	r := &Registry{widgets: widgets}
	for _, opt := range opts {
		opt(r)
	}
	if r.extractor == nil {
		engine, err := jsonpath.NewEngine(jsonpath.DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating path engine: %w", err)
		}
		r.extractor = jsonpath.NewExtractor(engine)
	}
	return r, nil
}

// Extractor returns the path extractor shared by the widgets.
func (r *Registry) Extractor() *jsonpath.Extractor {
	return r.extractor
}

// Get returns the widget with id, if it is live.
func (r *Registry) Get(id string) (*Widget, bool) {
	return r.widgets.Get(id)
}

// Open returns the widget with id, creating it when absent. An empty pageURL
// keeps the page of an existing widget, or uses the default page for a new
// one. A different pageURL replaces the widget, since the environment is
// fixed at construction.
func (r *Registry) Open(id, pageURL string) (*Widget, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if w, ok := r.widgets.Get(id); ok && (pageURL == "" || pageURL == w.PageURL) {
		return w, nil
	}
	if pageURL == "" {
		pageURL = r.pageURL
	}

	v, err, _ := r.group.Do(id+"\x00"+pageURL, func() (any, error) {
		if w, ok := r.widgets.Get(id); ok && w.PageURL == pageURL {
			return w, nil
		}
		w, err := r.create(id, pageURL)
		if err != nil {
			return nil, err
		}
		r.widgets.Put(id, w)
		slog.Debug("widget created",
			slog.String("widget_id", id),
			slog.String("page_url", pageURL),
		)
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Widget), nil
}

// Remove drops the widget with id.
func (r *Registry) Remove(id string) {
	r.widgets.Remove(id)
}

// Len returns the number of live widgets.
func (r *Registry) Len() int {
	return r.widgets.Len()
}

func (r *Registry) create(id, pageURL string) (*Widget, error) {
	env, err := hostenv.FromPageURL(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}
	events := &pipeline.Recorder{}
	p, err := pipeline.New(env,
		pipeline.WithExtractor(r.extractor),
		pipeline.WithDispatcher(dispatch.New(env, r.dispatch...)),
		pipeline.WithEmitter(pipeline.Broadcast{events, r.listener}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	return &Widget{
		ID:       id,
		PageURL:  pageURL,
		Pipeline: p,
		Events:   events,
	}, nil
}
