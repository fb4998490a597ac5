// Package pool maintains warm web-content engine instances, pre-navigated to
// an empty bootstrap document so first render skips engine cold start.
package pool

import (
	"context"
	"fmt"

	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/logging"
	"github.com/bnema/streamview/internal/mainloop"
	"github.com/bnema/streamview/pkg/webview"
)

// Config configures pool sizing.
type Config struct {
	// TargetSize is the number of warm instances kept per variant.
	TargetSize int
	// VariantTargets overrides TargetSize for specific variants.
	VariantTargets map[bundle.Variant]int
}

// DefaultConfig returns the default sizing: two warm instances per variant.
func DefaultConfig() Config {
	return Config{TargetSize: 2}
}

func (c Config) targetFor(variant bundle.Variant) int {
	if n, ok := c.VariantTargets[variant]; ok && n > 0 {
		return n
	}
	if c.TargetSize > 0 {
		return c.TargetSize
	}
	return 2
}

// Instance is one warm engine bound to a variant, already navigated to the
// variant's bootstrap document. Ownership transfers to the caller on dequeue.
type Instance struct {
	engine  webview.Engine
	variant bundle.Variant
	entry   *bundle.Entry
}

// Engine returns the underlying engine instance.
func (i *Instance) Engine() webview.Engine { return i.engine }

// Variant returns the bundle variant the instance was navigated with.
func (i *Instance) Variant() bundle.Variant { return i.variant }

// Entry returns the cached bundle payload backing the instance's document.
func (i *Instance) Entry() *bundle.Entry { return i.entry }

// Pool keeps warm instances per variant. The idle set is touched only from
// the dispatcher goroutine; the exported methods hop there and wait, so they
// must not be called from the dispatcher itself.
type Pool struct {
	loop    mainloop.Dispatcher
	factory webview.Factory
	cache   *bundle.Cache
	config  Config

	// Collapses duplicate replenish posts per variant.
	replenish *mainloop.Coalescer

	// Loop-affine state, no lock.
	idle   map[bundle.Variant][]*Instance
	closed bool
}

// New creates a pool over the given engine factory and bundle cache.
func New(loop mainloop.Dispatcher, factory webview.Factory, cache *bundle.Cache, cfg Config) *Pool {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultConfig().TargetSize
	}
	return &Pool{
		loop:      loop,
		factory:   factory,
		cache:     cache,
		config:    cfg,
		replenish: mainloop.NewCoalescer(loop.Post),
		idle:      make(map[bundle.Variant][]*Instance),
	}
}

// WarmUp populates the idle set for the variant up to its target size.
// Idempotent: a call while the set is already at target creates nothing, and
// calls are serialized on the dispatcher so two concurrent warm-ups cannot
// double-create. Returns once the set is populated.
func (p *Pool) WarmUp(ctx context.Context, variant bundle.Variant) error {
	log := logging.FromContext(ctx)

	entry, ok := p.cache.Get(ctx, variant)
	if !ok {
		return fmt.Errorf("pool: no bundle available for variant %s", variant)
	}

	var warmErr error
	done := make(chan struct{})
	p.loop.Post(func() {
		defer close(done)
		if p.closed {
			warmErr = webview.ErrEngineUnavailable
			return
		}
		target := p.config.targetFor(variant)
		for len(p.idle[variant]) < target {
			inst, err := p.createInstance(ctx, variant, entry)
			if err != nil {
				warmErr = err
				return
			}
			p.idle[variant] = append(p.idle[variant], inst)
			log.Debug().
				Uint64("id", uint64(inst.engine.ID())).
				Str("variant", variant.String()).
				Int("idle", len(p.idle[variant])).
				Msg("warmed instance added to pool")
		}
	})
	<-done
	return warmErr
}

// Dequeue removes and returns one idle instance for the variant. A miss
// returns false; the caller falls back to Create. A hit that drops the set
// below target schedules asynchronous replenishment.
func (p *Pool) Dequeue(ctx context.Context, variant bundle.Variant) (*Instance, bool) {
	log := logging.FromContext(ctx)

	var inst *Instance
	done := make(chan struct{})
	p.loop.Post(func() {
		defer close(done)
		if p.closed {
			return
		}
		set := p.idle[variant]
		for len(set) > 0 {
			candidate := set[len(set)-1]
			set = set[:len(set)-1]
			if candidate.engine.IsDestroyed() {
				continue
			}
			inst = candidate
			break
		}
		p.idle[variant] = set
		if inst != nil && len(set) < p.config.targetFor(variant) {
			p.scheduleReplenish(ctx, variant)
		}
	})
	<-done

	if inst == nil {
		log.Debug().Str("variant", variant.String()).Msg("pool miss")
		return nil, false
	}
	log.Debug().
		Uint64("id", uint64(inst.engine.ID())).
		Str("variant", variant.String()).
		Msg("dequeued warm instance")
	return inst, true
}

// Create builds one instance on demand, bypassing the idle set. Used when
// Dequeue misses.
func (p *Pool) Create(ctx context.Context, variant bundle.Variant) (*Instance, error) {
	entry, ok := p.cache.Get(ctx, variant)
	if !ok {
		return nil, fmt.Errorf("pool: no bundle available for variant %s", variant)
	}

	var (
		inst *Instance
		err  error
	)
	done := make(chan struct{})
	p.loop.Post(func() {
		defer close(done)
		if p.closed {
			err = webview.ErrEngineUnavailable
			return
		}
		inst, err = p.createInstance(ctx, variant, entry)
	})
	<-done
	return inst, err
}

// Recycle re-navigates the instance to the empty bootstrap document and
// returns it to the idle set, or destroys it when the set is already at
// target. Handler registrations are cleared so a pooled instance never
// carries a live session's handlers.
func (p *Pool) Recycle(ctx context.Context, inst *Instance) {
	if inst == nil {
		return
	}
	log := logging.FromContext(ctx)

	done := make(chan struct{})
	p.loop.Post(func() {
		defer close(done)
		if p.closed || inst.engine.IsDestroyed() {
			if !inst.engine.IsDestroyed() {
				inst.engine.Destroy()
			}
			return
		}

		inst.engine.ClearScriptMessageHandler()
		inst.engine.ClearNavigationPolicy()

		if len(p.idle[inst.variant]) >= p.config.targetFor(inst.variant) {
			log.Debug().
				Uint64("id", uint64(inst.engine.ID())).
				Msg("pool at target, destroying recycled instance")
			inst.engine.Destroy()
			return
		}

		if err := inst.engine.LoadHTML(ctx, inst.entry.Bootstrap, inst.entry.BaseAnchor); err != nil {
			log.Warn().Err(err).Msg("recycle navigation failed, destroying instance")
			inst.engine.Destroy()
			return
		}
		p.idle[inst.variant] = append(p.idle[inst.variant], inst)
		log.Debug().
			Uint64("id", uint64(inst.engine.ID())).
			Int("idle", len(p.idle[inst.variant])).
			Msg("instance recycled into pool")
	})
	<-done
}

// IdleCount reports the idle-set size for a variant.
func (p *Pool) IdleCount(variant bundle.Variant) int {
	var n int
	done := make(chan struct{})
	p.loop.Post(func() {
		n = len(p.idle[variant])
		close(done)
	})
	<-done
	return n
}

// Close destroys every idle instance and rejects further use.
func (p *Pool) Close(ctx context.Context) {
	log := logging.FromContext(ctx)

	done := make(chan struct{})
	p.loop.Post(func() {
		defer close(done)
		if p.closed {
			return
		}
		p.closed = true
		p.replenish.Destroy()
		for variant, set := range p.idle {
			for _, inst := range set {
				if !inst.engine.IsDestroyed() {
					inst.engine.Destroy()
				}
			}
			delete(p.idle, variant)
		}
	})
	<-done
	log.Debug().Msg("pool closed")
}

// scheduleReplenish queues background creation back up to target. Posts are
// coalesced per variant, and each replenish pass recomputes the shortfall,
// so a burst of dequeues yields one pass and cannot overshoot.
func (p *Pool) scheduleReplenish(ctx context.Context, variant bundle.Variant) {
	log := logging.FromContext(ctx)
	p.replenish.Post("replenish:"+variant.String(), func() {
		if p.closed {
			return
		}
		entry, ok := p.cache.Get(ctx, variant)
		if !ok {
			return
		}
		target := p.config.targetFor(variant)
		for len(p.idle[variant]) < target {
			inst, err := p.createInstance(ctx, variant, entry)
			if err != nil {
				log.Warn().Err(err).Str("variant", variant.String()).Msg("replenish failed")
				return
			}
			p.idle[variant] = append(p.idle[variant], inst)
		}
		log.Debug().
			Str("variant", variant.String()).
			Int("idle", len(p.idle[variant])).
			Msg("pool replenished")
	})
}

// createInstance runs on the dispatcher: builds an engine and navigates it to
// the variant's empty bootstrap document.
func (p *Pool) createInstance(ctx context.Context, variant bundle.Variant, entry *bundle.Entry) (*Instance, error) {
	engine, err := p.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("pool: engine creation failed: %w", err)
	}
	if err := engine.LoadHTML(ctx, entry.Bootstrap, entry.BaseAnchor); err != nil {
		engine.Destroy()
		return nil, fmt.Errorf("pool: bootstrap navigation failed: %w", err)
	}
	return &Instance{engine: engine, variant: variant, entry: entry}, nil
}
