// Package bridge owns the message-passing protocol between the native side
// and the embedded script environment for exactly one attached instance.
package bridge

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/logging"
	"github.com/bnema/streamview/internal/mainloop"
	"github.com/bnema/streamview/internal/template"
	"github.com/bnema/streamview/pkg/webview"
)

// Protocol timing. Polling is timer-driven state, not blocking waits; no
// reliable layout-complete signal exists across engine versions, so both
// loops carry a fixed attempt budget.
const (
	readinessInterval = 100 * time.Millisecond
	readinessAttempts = 50
	settleInterval    = 50 * time.Millisecond
	settleAttempts    = 5
	heightTolerance   = 1.0
)

const readinessProbe = "window.pageReady === true"

// State is the session lifecycle position.
type State int

const (
	// StateAttaching is the initial state, before handler registration.
	StateAttaching State = iota
	// StateAwaitingReady polls the page's readiness flag.
	StateAwaitingReady
	// StateReady accepts content updates immediately.
	StateReady
	// StateDetached is terminal; all handlers are revoked.
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateAttaching:
		return "attaching"
	case StateAwaitingReady:
		return "awaiting-ready"
	case StateReady:
		return "ready"
	case StateDetached:
		return "detached"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Callbacks are the native bindings a session drives. All of them are
// invoked on the dispatcher loop.
type Callbacks struct {
	// OnHeight receives progressive height reports, already jitter-filtered.
	OnHeight func(height float64)
	// OnReady fires exactly once per attach cycle.
	OnReady func()
	// OnLinkTap receives intercepted navigation targets.
	OnLinkTap func(uri string)
}

type pendingContent struct {
	content   string
	animating bool
}

// Session coordinates one engine instance. All mutable state is loop-affine;
// engine callbacks hop to the loop before touching it, and in-flight timer
// callbacks check the state against StateDetached before acting.
type Session struct {
	ctx    context.Context
	loop   mainloop.Dispatcher
	engine webview.Engine
	entry  *bundle.Entry
	cb     Callbacks
	log    zerolog.Logger

	// Loop-affine state.
	state         State
	pending       *pendingContent
	lastHeight    float64
	heightSeen    bool
	readyNotified bool
	styleInjected bool

	readinessTries  int
	cancelReadiness func()

	settleTries   int
	settlePrev    float64
	settleHasPrev bool
	cancelSettle  func()

	// Cadence, initialized from the protocol constants. Tests compress them.
	readinessEvery  time.Duration
	readinessBudget int
	settleEvery     time.Duration
	settleBudget    int
}

// NewSession creates a session over an engine already navigated to its
// bootstrap document. Attach must be called before content flows.
func NewSession(ctx context.Context, loop mainloop.Dispatcher, engine webview.Engine, entry *bundle.Entry, cb Callbacks) *Session {
	return &Session{
		ctx:    ctx,
		loop:   loop,
		engine: engine,
		entry:  entry,
		cb:     cb,
		log: logging.FromContext(ctx).With().
			Str("component", "bridge").
			Uint64("instance", uint64(engine.ID())).
			Logger(),
		readinessEvery:  readinessInterval,
		readinessBudget: readinessAttempts,
		settleEvery:     settleInterval,
		settleBudget:    settleAttempts,
	}
}

// Attach registers the message, navigation and load handlers, then probes
// readiness: a warm instance that already bootstrapped goes straight to
// Ready, anything else enters the readiness poll. Returns once registration
// is complete; the probe itself is asynchronous.
func (s *Session) Attach(_ context.Context) {
	done := make(chan struct{})
	s.loop.Post(func() {
		defer close(done)
		if s.state != StateAttaching {
			return
		}
		s.engine.SetScriptMessageHandler(s.onScriptMessage)
		s.engine.SetNavigationPolicy(s.onNavigate)
		s.engine.SetLoadFailedHandler(s.onLoadFailed)
		s.probeReadiness()
	})
	<-done
}

// SetContent delivers a content update. Before the session is Ready the
// update lands in the pending buffer, last write wins; once Ready it is sent
// immediately and a height-settle sequence follows.
func (s *Session) SetContent(_ context.Context, content string, animating bool) {
	s.loop.Post(func() {
		switch s.state {
		case StateDetached:
			return
		case StateReady:
			s.deliver(content, animating)
		default:
			s.pending = &pendingContent{content: content, animating: animating}
		}
	})
}

// Detach revokes every handler registration and stops the polling loops.
// The revocation happens before Detach returns, so the caller can hand the
// instance back to the pool without a window where stale messages could
// reach a dead session.
func (s *Session) Detach(_ context.Context) {
	done := make(chan struct{})
	s.loop.Post(func() {
		defer close(done)
		if s.state == StateDetached {
			return
		}
		s.state = StateDetached
		if s.cancelReadiness != nil {
			s.cancelReadiness()
			s.cancelReadiness = nil
		}
		if s.cancelSettle != nil {
			s.cancelSettle()
			s.cancelSettle = nil
		}
		s.engine.ClearScriptMessageHandler()
		s.engine.ClearNavigationPolicy()
		s.engine.SetLoadFailedHandler(nil)
		s.log.Debug().Msg("session detached")
	})
	<-done
}

// State reports the session state.
func (s *Session) State() State {
	var state State
	done := make(chan struct{})
	s.loop.Post(func() {
		state = s.state
		close(done)
	})
	<-done
	return state
}

// ContentHeight reports the last height forwarded to the native binding.
func (s *Session) ContentHeight() float64 {
	var h float64
	done := make(chan struct{})
	s.loop.Post(func() {
		h = s.lastHeight
		close(done)
	})
	<-done
	return h
}

// Ready reports whether the ready notification has fired.
func (s *Session) Ready() bool {
	var ready bool
	done := make(chan struct{})
	s.loop.Post(func() {
		ready = s.readyNotified
		close(done)
	})
	<-done
	return ready
}

// --- readiness ---

// probeReadiness runs on the loop during attach: one immediate check before
// committing to the poll cadence.
func (s *Session) probeReadiness() {
	s.engine.Evaluate(s.ctx, readinessProbe, func(result any, err error) {
		s.loop.Post(func() {
			if s.state != StateAttaching {
				return
			}
			if err == nil && result == true {
				s.log.Debug().Msg("warm instance ready on attach")
				s.becomeReady()
				return
			}
			s.state = StateAwaitingReady
			s.readinessTries = 0
			s.cancelReadiness = s.loop.PostDelayed(s.readinessEvery, s.pollReadiness)
		})
	})
}

func (s *Session) pollReadiness() {
	if s.state != StateAwaitingReady {
		return
	}
	s.engine.Evaluate(s.ctx, readinessProbe, func(result any, err error) {
		s.loop.Post(func() {
			if s.state != StateAwaitingReady {
				return
			}
			if err == nil && result == true {
				s.becomeReady()
				return
			}
			s.readinessTries++
			if s.readinessTries >= s.readinessBudget {
				// Fail open: treat the page as usable rather than hanging
				// the host view forever.
				s.log.Warn().
					Int("attempts", s.readinessTries).
					Msg("readiness budget exhausted, proceeding anyway")
				s.becomeReady()
				return
			}
			s.cancelReadiness = s.loop.PostDelayed(s.readinessEvery, s.pollReadiness)
		})
	})
}

// becomeReady runs on the loop. Pending content is delivered first; the
// ready notification then rides on the settle sequence that delivery
// triggers, or fires immediately when there is nothing to deliver.
func (s *Session) becomeReady() {
	if s.state == StateReady || s.state == StateDetached {
		return
	}
	s.state = StateReady
	if s.cancelReadiness != nil {
		s.cancelReadiness()
		s.cancelReadiness = nil
	}
	if s.pending != nil {
		p := s.pending
		s.pending = nil
		s.deliver(p.content, p.animating)
		return
	}
	s.notifyReady()
}

// notifyReady runs on the loop, fires the native ready binding exactly once
// per attach cycle, and triggers the deferred stylesheet injection that must
// not delay first paint.
func (s *Session) notifyReady() {
	if s.readyNotified || s.state == StateDetached {
		return
	}
	s.readyNotified = true
	if s.cb.OnReady != nil {
		s.cb.OnReady()
	}
	if s.entry.Style != "" && !s.styleInjected {
		s.styleInjected = true
		s.injectDeferredStyle()
	}
}

// --- content delivery ---

// deliver runs on the loop: evaluates the update call, then starts the
// height-settle sequence once the evaluation completed, preserving the
// update-before-poll ordering.
func (s *Session) deliver(content string, animating bool) {
	script := fmt.Sprintf("window.updateMarkdown(`%s`, %t); true",
		template.EscapeForScriptLiteral(content), animating)
	s.engine.Evaluate(s.ctx, script, func(_ any, err error) {
		s.loop.Post(func() {
			if s.state == StateDetached {
				return
			}
			if err != nil {
				s.log.Warn().Err(err).Msg("content update evaluation failed")
			}
			s.startSettle()
		})
	})
}

// injectDeferredStyle appends the full variant's companion stylesheet after
// first paint, then re-runs settle once since injected styling can change
// layout.
func (s *Session) injectDeferredStyle() {
	script := fmt.Sprintf(
		"(function(){var s=document.createElement('style');s.textContent=`%s`;document.head.appendChild(s);})(); true",
		template.EscapeForScriptLiteral(s.entry.Style))
	s.engine.Evaluate(s.ctx, script, func(_ any, err error) {
		s.loop.Post(func() {
			if s.state == StateDetached {
				return
			}
			if err != nil {
				s.log.Warn().Err(err).Msg("deferred style injection failed")
				return
			}
			s.log.Debug().Msg("deferred stylesheet injected")
			s.startSettle()
		})
	})
}

// --- height settle ---

// startSettle runs on the loop. A new sequence supersedes any in-flight one.
func (s *Session) startSettle() {
	if s.cancelSettle != nil {
		s.cancelSettle()
	}
	s.settleTries = 0
	s.settleHasPrev = false
	s.cancelSettle = s.loop.PostDelayed(s.settleEvery, s.settleTick)
}

func (s *Session) settleTick() {
	if s.state == StateDetached {
		return
	}
	s.engine.Evaluate(s.ctx, "window.getContentHeight()", func(result any, err error) {
		s.loop.Post(func() {
			if s.state == StateDetached {
				return
			}
			s.settleTries++
			height, ok := result.(float64)
			if err != nil || !ok {
				if err != nil {
					s.log.Warn().Err(err).Msg("height poll failed")
				}
				s.continueOrFinishSettle(false)
				return
			}
			// Progressive reporting: every intermediate reading reaches the
			// binding so the host view grows rather than jumping at the end.
			s.reportHeight(height)

			settled := s.settleHasPrev && math.Abs(height-s.settlePrev) <= heightTolerance
			s.settlePrev = height
			s.settleHasPrev = true
			s.continueOrFinishSettle(settled)
		})
	})
}

func (s *Session) continueOrFinishSettle(settled bool) {
	if settled || s.settleTries >= s.settleBudget {
		s.cancelSettle = nil
		s.notifyReady()
		return
	}
	s.cancelSettle = s.loop.PostDelayed(s.settleEvery, s.settleTick)
}

// reportHeight runs on the loop and forwards a height only when it moved by
// more than the tolerance, suppressing sub-pixel jitter.
func (s *Session) reportHeight(height float64) {
	if s.heightSeen && math.Abs(height-s.lastHeight) <= heightTolerance {
		return
	}
	s.heightSeen = true
	s.lastHeight = height
	if s.cb.OnHeight != nil {
		s.cb.OnHeight(height)
	}
}

// --- engine callbacks ---

// onScriptMessage may arrive on any engine context; state mutation hops to
// the loop first.
func (s *Session) onScriptMessage(raw string) {
	s.loop.Post(func() {
		if s.state == StateDetached {
			return
		}
		msg, err := decodeMessage(raw)
		if err != nil {
			s.log.Debug().Err(err).Msg("dropping malformed message")
			return
		}
		switch msg.Type {
		case msgHeightChanged:
			height, ok := decodeHeight(msg.Payload)
			if !ok {
				s.log.Debug().Msg("dropping heightChanged without numeric height")
				return
			}
			s.reportHeight(height)
		case msgContentReady:
			s.becomeReady()
			s.notifyReady()
		default:
			s.log.Debug().Str("type", msg.Type).Msg("dropping unknown message type")
		}
	})
}

// onNavigate decides synchronously on whatever context the engine runs the
// policy check; the link-tap redirection is dispatched back onto the loop.
func (s *Session) onNavigate(action webview.NavigationAction) webview.NavigationDecision {
	if classifyNavigation(s.engine.URI(), action) == navAllow {
		return webview.NavigationAllow
	}
	s.loop.Post(func() {
		if s.state == StateDetached {
			return
		}
		s.log.Debug().Str("uri", action.URI).Msg("navigation intercepted")
		if s.cb.OnLinkTap != nil {
			s.cb.OnLinkTap(action.URI)
		}
	})
	return webview.NavigationCancel
}

// onLoadFailed treats navigation failure as non-fatal: log and fail open so
// the host view is never blocked indefinitely.
func (s *Session) onLoadFailed(uri string, err error) {
	s.loop.Post(func() {
		if s.state == StateDetached {
			return
		}
		s.log.Warn().Err(err).Str("uri", uri).Msg("load failed, failing open")
		s.becomeReady()
		s.notifyReady()
	})
}
