package registry

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
)

// SetValue sets the parameter addressed by name. A failure reported by the
// handler is returned as a handler error wrapping the handler's own error.
func (r *Registry) SetValue(name, value string) error {
	h, args, err := r.ParseAndLookup(name)
	if err != nil {
		return err
	}

	if err := h.Set(args, value); err != nil {
		return NewHandlerError("set", name, err)
	}

	logging.LogSet(r.log, name, value)
	return nil
}

// GetValue returns the current value of the parameter addressed by name.
// It reports false when the name does not resolve, the handler cannot get
// values, or the handler has nothing to return.
func (r *Registry) GetValue(name string, bufLen int) (string, bool) {
	h, args, err := r.ParseAndLookup(name)
	if err != nil {
		return "", false
	}

	getter, ok := h.(Getter)
	if !ok {
		return "", false
	}
	return getter.Get(args, bufLen)
}

// Commit runs the commit step of one group, or of every group when name is
// empty.
//
// For all groups the result is that of the last Committer invoked: an
// earlier failure is dropped if a later handler succeeds.
func (r *Registry) Commit(name string) error {
	if name != "" {
		h, _, err := r.ParseAndLookup(name)
		if err != nil {
			return err
		}
		c, ok := h.(Committer)
		if !ok {
			return nil
		}
		if err := c.Commit(); err != nil {
			return NewHandlerError("commit", h.Name(), err)
		}
		return nil
	}

	var last error
	for _, h := range r.Handlers() {
		c, ok := h.(Committer)
		if !ok {
			continue
		}
		last = c.Commit()
		if last != nil {
			r.log.Warn("Commit failed", zap.String("handler", h.Name()), zap.Error(last))
			last = NewHandlerError("commit", h.Name(), last)
		}
	}
	return last
}

// Export emits parameters through fn: the one addressed by name, or every
// parameter of every group when name is empty. Exporting everything keeps
// going past a failing group and returns the collected errors.
func (r *Registry) Export(fn ExportFunc, name string) error {
	if name != "" {
		h, args, err := r.ParseAndLookup(name)
		if err != nil {
			return err
		}
		e, ok := h.(Exporter)
		if !ok {
			return nil
		}
		if err := e.Export(fn, args); err != nil {
			return NewHandlerError("export", name, err)
		}
		return nil
	}

	return r.exportAll("export", fn)
}

func (r *Registry) exportAll(op string, fn ExportFunc) error {
	handlers := r.Handlers()
	if len(handlers) == 0 {
		return &Error{Kind: KindNotFound, Op: op, Message: "no handlers registered"}
	}

	var errs *multierror.Error
	for _, h := range handlers {
		e, ok := h.(Exporter)
		if !ok {
			continue
		}
		if err := e.Export(fn, nil); err != nil {
			r.log.Warn("Export failed", zap.String("op", op), zap.String("handler", h.Name()), zap.Error(err))
			errs = multierror.Append(errs, NewHandlerError(op, h.Name(), err))
		}
	}
	return errs.ErrorOrNil()
}
