package behavior

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tidepool/internal/script"
	"github.com/vovakirdan/tidepool/internal/sim"
)

// Binder attaches every applicable registered behavior to entities as they
// are added to a world. It implements sim.Binder.
type Binder struct {
	scripts *script.Engine
	logger  *log.Logger
	errs    []error
}

var _ sim.Binder = (*Binder)(nil)

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithScripts enables scripted entities.
func WithScripts(e *script.Engine) BinderOption {
	return func(b *Binder) { b.scripts = e }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) BinderOption {
	return func(b *Binder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBinder creates a binder.
func NewBinder(opts ...BinderOption) *Binder {
	b := &Binder{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind attaches behaviors in name order. Attach failures are collected and
// reported by Err; the entity keeps the behaviors that did attach.
func (b *Binder) Bind(w *sim.World, e *sim.Entity) {
	for _, d := range sorted() {
		if !d.Applies(e) {
			continue
		}
		if err := d.Attach(b, w, e); err != nil {
			b.logger.Error("behavior attach failed", "behavior", d.Name, "entity", e, "err", err)
			b.errs = append(b.errs, err)
			continue
		}
		b.logger.Debug("behavior attached", "behavior", d.Name, "entity", e)
	}
}

// Err joins every attach failure seen so far.
func (b *Binder) Err() error {
	return errors.Join(b.errs...)
}

// Scripts returns the script engine, which may be nil.
func (b *Binder) Scripts() *script.Engine {
	return b.scripts
}
