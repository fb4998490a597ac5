// Package hostview bridges a coordinator session to the native binding
// model: content in, height/ready/link-tap out.
package hostview

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bnema/streamview/internal/bridge"
	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/logging"
	"github.com/bnema/streamview/internal/mainloop"
	"github.com/bnema/streamview/internal/pool"
	"github.com/bnema/streamview/pkg/webview"
)

// Options configures one host view attachment.
type Options struct {
	// Variant selects the bundle capability tier.
	Variant bundle.Variant
	// OnHeight receives progressive height reports.
	OnHeight func(height float64)
	// OnReady fires once per attach, when the page is usable.
	OnReady func()
	// OnLinkTap receives intercepted navigation targets. Nil means
	// intercepted links are dropped after cancellation.
	OnLinkTap func(uri string)
}

// View is one attached content view. It owns its pooled instance until
// Detach, which tears the session down and hands the instance back.
type View struct {
	loop     mainloop.Dispatcher
	pool     *pool.Pool
	inst     *pool.Instance
	session  *bridge.Session
	detached atomic.Bool
}

// Attach acquires an instance for the variant, preferring a warm one from
// the pool and falling back to on-demand creation, then brings the bridge
// session up on it.
func Attach(ctx context.Context, loop mainloop.Dispatcher, p *pool.Pool, opts Options) (*View, error) {
	log := logging.FromContext(ctx)

	inst, ok := p.Dequeue(ctx, opts.Variant)
	if !ok {
		log.Debug().Str("variant", opts.Variant.String()).Msg("pool miss, creating instance on demand")
		var err error
		inst, err = p.Create(ctx, opts.Variant)
		if err != nil {
			return nil, fmt.Errorf("hostview: no instance for variant %s: %w", opts.Variant, err)
		}
	}

	session := bridge.NewSession(ctx, loop, inst.Engine(), inst.Entry(), bridge.Callbacks{
		OnHeight:  opts.OnHeight,
		OnReady:   opts.OnReady,
		OnLinkTap: opts.OnLinkTap,
	})
	session.Attach(ctx)

	return &View{loop: loop, pool: p, inst: inst, session: session}, nil
}

// SetContent replaces the rendered content. Safe to call at any rate; the
// bridge coalesces updates that arrive before the page is ready.
func (v *View) SetContent(ctx context.Context, content string, animating bool) {
	if v.detached.Load() {
		return
	}
	v.session.SetContent(ctx, content, animating)
}

// ContentHeight returns the last height reported to the view.
func (v *View) ContentHeight() float64 {
	return v.session.ContentHeight()
}

// Ready reports whether the ready notification has fired for this attach.
func (v *View) Ready() bool {
	return v.session.Ready()
}

// Variant returns the bundle variant backing this view. It may be smaller
// than the requested one when artifact fallback kicked in.
func (v *View) Variant() bundle.Variant {
	return v.inst.Entry().Variant
}

// Engine exposes the backing engine for host-side inspection. Nil after
// Detach.
func (v *View) Engine() webview.Engine {
	if v.detached.Load() {
		return nil
	}
	return v.inst.Engine()
}

// Detach tears the session down and releases the instance. The session's
// handler registrations are revoked before the instance reaches the pool;
// that ordering is part of the teardown contract, not an optimization.
func (v *View) Detach(ctx context.Context) {
	if v.detached.Swap(true) {
		return
	}
	v.session.Detach(ctx)
	v.pool.Recycle(ctx, v.inst)
}
