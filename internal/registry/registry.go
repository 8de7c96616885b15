package registry

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
)

// Handler owns one configuration group. Set receives the parameter name
// without the group segment: for "app/id/serial" handled by "app", args is
// ["id", "serial"].
//
// A handler may also implement Getter, Committer and Exporter.
type Handler interface {
	Name() string
	Set(args []string, value string) error
}

// Getter returns the current value of a parameter in string form. maxLen is
// the caller's buffer size including the terminator. ok is false when the
// parameter is unknown or its value does not fit.
type Getter interface {
	Get(args []string, maxLen int) (value string, ok bool)
}

// Committer applies previously set values, e.g. after a bulk load.
type Committer interface {
	Commit() error
}

// ExportFunc receives one parameter with its full group-prefixed name.
type ExportFunc func(name, value string) error

// Exporter emits parameters through fn. With no args it emits every
// parameter of the group; otherwise only the one addressed by args.
type Exporter interface {
	Export(fn ExportFunc, args []string) error
}

// Registry routes parameter operations to registered handlers and persists
// values through registered stores.
//
// Membership is guarded by a mutex and iterated as a snapshot, so handlers
// may call back into the registry. Calls into handlers are not serialized.
type Registry struct {
	mu       sync.RWMutex
	handlers []Handler
	sources  []Store
	dest     Store
	log      *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for registry events
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{log: logging.GetLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a handler. Names must be non-empty and free of the
// separator; duplicates are accepted but only the first one is reachable.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if name == "" || strings.Contains(name, Separator) {
		return &Error{Kind: KindInvalidFormat, Op: "register", Name: name, Message: "invalid handler name"}
	}

	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.mu.Unlock()

	r.log.Debug("Registered handler", zap.String("handler", name))
	return nil
}

// Lookup returns the first handler registered under name.
func (r *Registry) Lookup(name string) (Handler, error) {
	for _, h := range r.Handlers() {
		if h.Name() == name {
			return h, nil
		}
	}
	return nil, NewNotFoundError("lookup", name)
}

// Handlers returns the registered handlers in registration order.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// ParseAndLookup parses name and resolves its group handler. The returned
// args are the segments after the group name.
func (r *Registry) ParseAndLookup(name string) (Handler, []string, error) {
	segments, err := ParseName(name)
	if err != nil {
		return nil, nil, err
	}
	h, err := r.Lookup(segments[0])
	if err != nil {
		return nil, nil, err
	}
	return h, segments[1:], nil
}
