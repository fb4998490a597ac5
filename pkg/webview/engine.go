// Package webview abstracts the embedded web-content engine that renders
// streaming Markdown. Two backends implement Engine: a headless one built on
// an embedded JavaScript runtime (always available, used by tests and the
// CLI) and a WebKitGTK one behind the webkit_cgo build tag.
package webview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// InstanceID identifies one engine instance for the lifetime of the process.
type InstanceID uint64

// LoadEvent mirrors the engine's page-load lifecycle.
type LoadEvent int

const (
	LoadStarted LoadEvent = iota
	LoadCommitted
	LoadFinished
	LoadFailed
)

// NavigationDecision is the outcome of a navigation policy check.
type NavigationDecision int

const (
	// NavigationAllow lets the engine perform the navigation.
	NavigationAllow NavigationDecision = iota
	// NavigationCancel blocks the navigation inside the engine. The policy
	// owner is responsible for any redirection to native handling.
	NavigationCancel
)

// NavigationAction describes an outbound navigation request the engine is
// about to perform.
type NavigationAction struct {
	// URI is the navigation target.
	URI string
	// IsUserGesture reports whether a user-level activation (link tap)
	// triggered the request, as opposed to a programmatic load.
	IsUserGesture bool
	// HasTargetFrame is false for requests with no owning frame, the
	// embedded-document equivalent of "open in new tab".
	HasTargetFrame bool
}

// NavigationPolicyFunc decides whether the engine may perform an outbound
// navigation. It may run on any engine-internal context; implementations
// must hop to the UI-affinity loop before touching native state.
type NavigationPolicyFunc func(NavigationAction) NavigationDecision

// ScriptMessageHandlerName is the message channel the bootstrap document
// posts to (window.webkit.messageHandlers.<name>.postMessage).
const ScriptMessageHandlerName = "streamview"

// Engine is one embedded web-content instance. All methods are safe to call
// from the UI-affinity loop; Destroy and IsDestroyed are safe from any
// goroutine.
type Engine interface {
	// ID returns the process-unique instance identifier.
	ID() InstanceID

	// LoadHTML navigates the instance to the given document. baseURI
	// resolves relative asset references; empty means about:blank. The load
	// completes asynchronously; observe it via SetLoadChangedHandler.
	LoadHTML(ctx context.Context, document, baseURI string) error

	// Evaluate runs script in the page and delivers the exported result
	// (float64, bool, string or nil) to fn. Fire-and-forget when fn is nil.
	Evaluate(ctx context.Context, script string, fn func(result any, err error))

	// SetScriptMessageHandler registers the receiver for messages posted on
	// the ScriptMessageHandlerName channel. raw is the JSON-encoded message
	// body. Only one handler is held at a time.
	SetScriptMessageHandler(fn func(raw string))
	// ClearScriptMessageHandler revokes the message handler. Messages
	// arriving afterwards are dropped.
	ClearScriptMessageHandler()

	// SetNavigationPolicy installs the navigation interception check.
	SetNavigationPolicy(fn NavigationPolicyFunc)
	// ClearNavigationPolicy removes it; subsequent navigations are allowed.
	ClearNavigationPolicy()

	// SetLoadChangedHandler observes page-load lifecycle events.
	SetLoadChangedHandler(fn func(LoadEvent))
	// SetLoadFailedHandler observes load and provisional-load errors.
	SetLoadFailedHandler(fn func(uri string, err error))

	// URI returns the current page location.
	URI() string

	// Destroy tears the instance down. Idempotent.
	Destroy()
	// IsDestroyed reports whether Destroy has run.
	IsDestroyed() bool
}

// Factory creates engine instances. The pool holds one per bundle variant.
type Factory func(ctx context.Context) (Engine, error)

// Dispatcher is the slice of the UI-affinity loop the engine backends need.
// internal/mainloop.Loop satisfies it.
type Dispatcher interface {
	Post(fn func())
	PostDelayed(d time.Duration, fn func()) (cancel func())
}

// instance id allocation shared by all backends.
var idCounter atomic.Uint64

func nextInstanceID() InstanceID {
	return InstanceID(idCounter.Add(1))
}

// handlerSet holds the per-instance callback registrations. Registration and
// revocation are explicit so the attach/detach lifecycle stays auditable.
type handlerSet struct {
	mu            sync.RWMutex
	scriptMessage func(raw string)
	navPolicy     NavigationPolicyFunc
	loadChanged   func(LoadEvent)
	loadFailed    func(uri string, err error)
}

func (h *handlerSet) setScriptMessage(fn func(string)) {
	h.mu.Lock()
	h.scriptMessage = fn
	h.mu.Unlock()
}

func (h *handlerSet) getScriptMessage() func(string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.scriptMessage
}

func (h *handlerSet) setNavPolicy(fn NavigationPolicyFunc) {
	h.mu.Lock()
	h.navPolicy = fn
	h.mu.Unlock()
}

func (h *handlerSet) getNavPolicy() NavigationPolicyFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.navPolicy
}

func (h *handlerSet) setLoadChanged(fn func(LoadEvent)) {
	h.mu.Lock()
	h.loadChanged = fn
	h.mu.Unlock()
}

func (h *handlerSet) getLoadChanged() func(LoadEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadChanged
}

func (h *handlerSet) setLoadFailed(fn func(string, error)) {
	h.mu.Lock()
	h.loadFailed = fn
	h.mu.Unlock()
}

func (h *handlerSet) getLoadFailed() func(string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadFailed
}
