// Package group turns a set of Go variables into a registry handler.
//
// A Group owns the parameters of one configuration group. Each parameter is
// bound to a variable through a typed constructor (Int, Bool, Float, Double,
// String, Bytes) and is addressed as "<group>/<param>":
//
//	var period int16 = 60
//	app := group.New("app").
//	    Add(group.Int("data_send_period", &period))
//	if err := reg.Register(app); err != nil {
//	    return err
//	}
//
// Values are parsed before assignment, so a rejected set leaves the bound
// variable unchanged. The group serializes access to its variables; code
// reading them directly must use Lock/Unlock or go through the registry.
package group

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
	"github.com/muurk/devreg/internal/registry"
)

// Group is a registry handler over bound parameters.
type Group struct {
	mu       sync.Mutex
	name     string
	params   []Param
	onCommit func() error
	log      *zap.Logger
}

// Option configures a Group
type Option func(*Group)

// WithCommit sets the function run when the group is committed
func WithCommit(fn func() error) Option {
	return func(g *Group) {
		g.onCommit = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(g *Group) {
		g.log = l
	}
}

// New creates an empty group.
func New(name string, opts ...Option) *Group {
	g := &Group{name: name, log: logging.GetLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add appends parameters to the group. It panics on a duplicate or
// malformed parameter name, which is a programming error.
func (g *Group) Add(params ...Param) *Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range params {
		if p.Name() == "" || strings.Contains(p.Name(), registry.Separator) {
			panic(fmt.Sprintf("group %s: invalid parameter name %q", g.name, p.Name()))
		}
		if g.find(p.Name()) != nil {
			panic(fmt.Sprintf("group %s: duplicate parameter %q", g.name, p.Name()))
		}
		g.params = append(g.params, p)
	}
	return g
}

// Name returns the group name
func (g *Group) Name() string {
	return g.name
}

// Params returns the parameters in the order they were added
func (g *Group) Params() []Param {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Param, len(g.params))
	copy(out, g.params)
	return out
}

// Lock locks the bound variables against concurrent sets
func (g *Group) Lock() { g.mu.Lock() }

// Unlock releases Lock
func (g *Group) Unlock() { g.mu.Unlock() }

func (g *Group) find(name string) Param {
	for _, p := range g.params {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (g *Group) resolve(op string, args []string) (Param, error) {
	var p Param
	if len(args) == 1 {
		p = g.find(args[0])
	}
	if p == nil {
		return nil, &registry.Error{
			Kind:    registry.KindNotFound,
			Op:      op,
			Name:    registry.JoinName(append([]string{g.name}, args...)...),
			Message: "unknown parameter",
		}
	}
	return p, nil
}

// Set parses value into the parameter named by args.
func (g *Group) Set(args []string, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.resolve("set", args)
	if err != nil {
		return err
	}
	return p.Set(value)
}

// Get formats the parameter named by args.
func (g *Group) Get(args []string, bufLen int) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.resolve("get", args)
	if err != nil {
		return "", false
	}
	v, err := p.Get(bufLen)
	if err != nil {
		g.log.Debug("Get failed", zap.String("group", g.name), zap.String("param", p.Name()), zap.Error(err))
		return "", false
	}
	return v, true
}

// Export emits every parameter when args is empty, or the one it names.
// A parameter that cannot be formatted or a failing fn does not stop the
// remaining parameters.
// Values are formatted while holding the group lock and emitted after it
// is released, so fn may call back into the registry.
func (g *Group) Export(fn registry.ExportFunc, args []string) error {
	type entry struct{ name, value string }

	g.mu.Lock()
	var selected []Param
	if len(args) == 0 {
		selected = g.params
	} else {
		p, err := g.resolve("export", args)
		if err != nil {
			g.mu.Unlock()
			return err
		}
		selected = []Param{p}
	}

	var errs *multierror.Error
	entries := make([]entry, 0, len(selected))
	for _, p := range selected {
		name := registry.JoinName(g.name, p.Name())
		v, err := p.Get(registry.MaxValLen + 1)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("format %s: %w", name, err))
			continue
		}
		entries = append(entries, entry{name: name, value: v})
	}
	g.mu.Unlock()

	for _, e := range entries {
		if err := fn(e.name, e.value); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Commit runs the commit function, if any.
func (g *Group) Commit() error {
	if g.onCommit == nil {
		return nil
	}
	return g.onCommit()
}
