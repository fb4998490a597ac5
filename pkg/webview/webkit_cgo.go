//go:build webkit_cgo

package webview

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bnema/puregotk-webkit/javascriptcore"
	"github.com/bnema/puregotk-webkit/webkit"
	"github.com/jwijenbergh/puregotk/v4/gio"
	"github.com/rs/zerolog"
)

// WebKitEngine backs Engine with a WebKitGTK WebView. Construction and every
// method except Destroy/IsDestroyed must happen on the GTK main thread, which
// is the UI-affinity loop of GTK embedders.
type WebKitEngine struct {
	id    InstanceID
	inner *webkit.WebView
	ucm   *webkit.UserContentManager
	log   zerolog.Logger

	handlers  handlerSet
	destroyed atomic.Bool

	mu sync.Mutex
	// keep signal closures and async JS callbacks alive for the engine's
	// lifetime; WebKit holds only unsafe pointers to them
	callbacks         []interface{}
	signalIDs         []uint32
	messageRegistered bool
}

// NewWebKit creates a WebKitGTK-backed engine. Must run on the GTK main
// thread after the application has initialized.
func NewWebKit(_ context.Context, logger zerolog.Logger) (*WebKitEngine, error) {
	inner := webkit.NewWebView()
	if inner == nil {
		return nil, fmt.Errorf("webview: failed to create webkit webview: %w", ErrEngineUnavailable)
	}

	e := &WebKitEngine{
		id:    nextInstanceID(),
		inner: inner,
		ucm:   inner.GetUserContentManager(),
		log:   logger.With().Str("component", "webkit-engine").Logger(),
	}

	e.connectSignals()
	e.log.Debug().Uint64("id", uint64(e.id)).Msg("webkit engine created")
	return e, nil
}

// NewWebKitFactory returns a Factory producing WebKitGTK engines.
func NewWebKitFactory(logger zerolog.Logger) Factory {
	return func(ctx context.Context) (Engine, error) {
		return NewWebKit(ctx, logger)
	}
}

func (e *WebKitEngine) connectSignals() {
	loadCb := func(_ webkit.WebView, event webkit.LoadEvent) {
		fn := e.handlers.getLoadChanged()
		if fn == nil {
			return
		}
		switch event {
		case webkit.LoadStartedValue:
			fn(LoadStarted)
		case webkit.LoadCommittedValue:
			fn(LoadCommitted)
		case webkit.LoadFinishedValue:
			fn(LoadFinished)
		}
	}
	e.keepAlive(loadCb, e.inner.ConnectLoadChanged(&loadCb))

	failedCb := func(_ webkit.WebView, _ webkit.LoadEvent, failingURI string, _ uintptr) bool {
		if fn := e.handlers.getLoadFailed(); fn != nil {
			fn(failingURI, fmt.Errorf("webview: load failed for %s", failingURI))
		}
		if fn := e.handlers.getLoadChanged(); fn != nil {
			fn(LoadFailed)
		}
		return true // handled; do not show the default error page
	}
	e.keepAlive(failedCb, e.inner.ConnectLoadFailed(&failedCb))

	policyCb := func(_ webkit.WebView, decisionPtr uintptr, decisionType webkit.PolicyDecisionType) bool {
		newWindow := decisionType == webkit.PolicyDecisionTypeNewWindowActionValue
		if decisionType != webkit.PolicyDecisionTypeNavigationActionValue && !newWindow {
			return false
		}
		policy := e.handlers.getNavPolicy()
		if policy == nil {
			return false
		}

		decision := webkit.NavigationPolicyDecisionNewFromInternalPtr(decisionPtr)
		if decision == nil {
			return false
		}
		navAction := decision.GetNavigationAction()
		if navAction == nil {
			return false
		}
		var uri string
		if req := navAction.GetRequest(); req != nil {
			uri = req.GetUri()
		}

		action := NavigationAction{
			URI:            uri,
			IsUserGesture:  navAction.IsUserGesture(),
			HasTargetFrame: !newWindow,
		}
		if policy(action) == NavigationCancel {
			decision.Ignore()
			return true
		}
		return false
	}
	e.keepAlive(policyCb, e.inner.ConnectDecidePolicy(&policyCb))
}

func (e *WebKitEngine) keepAlive(cb interface{}, signalID uint32) {
	e.mu.Lock()
	e.callbacks = append(e.callbacks, cb)
	e.signalIDs = append(e.signalIDs, signalID)
	e.mu.Unlock()
}

// ID returns the instance identifier.
func (e *WebKitEngine) ID() InstanceID { return e.id }

// URI returns the current page location.
func (e *WebKitEngine) URI() string {
	if e.destroyed.Load() {
		return ""
	}
	return e.inner.GetUri()
}

// Widget returns the underlying WebView for GTK embedding.
func (e *WebKitEngine) Widget() *webkit.WebView { return e.inner }

// LoadHTML navigates the view to the given document.
func (e *WebKitEngine) LoadHTML(_ context.Context, document, baseURI string) error {
	if e.destroyed.Load() {
		return ErrEngineDestroyed
	}
	var baseURIPtr *string
	if baseURI != "" {
		baseURIPtr = &baseURI
	}
	e.inner.LoadHtml(document, baseURIPtr)
	return nil
}

// Evaluate runs script in the main world and delivers the JSON-decoded
// result to fn.
func (e *WebKitEngine) Evaluate(_ context.Context, script string, fn func(result any, err error)) {
	if e.destroyed.Load() {
		if fn != nil {
			fn(nil, ErrEngineDestroyed)
		}
		return
	}

	cb := gio.AsyncReadyCallback(func(_ uintptr, resPtr uintptr, _ uintptr) {
		if resPtr == 0 {
			if fn != nil {
				fn(nil, fmt.Errorf("webview: nil async result"))
			}
			return
		}
		res := &gio.AsyncResultBase{Ptr: resPtr}
		value, err := e.inner.EvaluateJavascriptFinish(res)
		if err != nil {
			e.log.Warn().Err(err).Uint64("id", uint64(e.id)).Msg("evaluate failed")
			if fn != nil {
				fn(nil, err)
			}
			return
		}
		if fn == nil {
			return
		}
		fn(decodeJSCValue(value))
	})

	e.mu.Lock()
	e.callbacks = append(e.callbacks, cb)
	e.mu.Unlock()

	e.inner.EvaluateJavascript(script, -1, nil, nil, nil, &cb, 0)
}

// decodeJSCValue converts a JavaScriptCore value through its JSON form, the
// same path the script-message bridge uses. Numbers come back as float64.
func decodeJSCValue(value *javascriptcore.Value) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw := value.ToJson(0)
	if raw == "" || raw == "undefined" || raw == "null" {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode script result: %w", err)
	}
	return decoded, nil
}

// SetScriptMessageHandler registers the receiver for bridge messages. The
// WebKit-side handler registration happens once; revocation only detaches the
// Go receiver so pooled re-registration stays cheap.
func (e *WebKitEngine) SetScriptMessageHandler(fn func(raw string)) {
	e.handlers.setScriptMessage(fn)

	e.mu.Lock()
	registered := e.messageRegistered
	e.messageRegistered = true
	e.mu.Unlock()
	if registered {
		return
	}

	cb := func(_ webkit.UserContentManager, valuePtr uintptr) {
		handler := e.handlers.getScriptMessage()
		if handler == nil || valuePtr == 0 {
			return
		}
		jscValue := javascriptcore.ValueNewFromInternalPtr(valuePtr)
		if jscValue == nil {
			return
		}
		raw := jscValue.ToJson(0)
		if raw == "" {
			return
		}
		handler(raw)
	}

	// Connect before registering, per WebKit's documented ordering.
	e.keepAlive(cb, e.ucm.ConnectScriptMessageReceivedWithDetail(ScriptMessageHandlerName, &cb))
	if ok := e.ucm.RegisterScriptMessageHandler(ScriptMessageHandlerName, nil); !ok {
		e.log.Warn().Str("handler", ScriptMessageHandlerName).Msg("RegisterScriptMessageHandler returned false")
	}
}

// ClearScriptMessageHandler detaches the Go receiver; further messages drop.
func (e *WebKitEngine) ClearScriptMessageHandler() {
	e.handlers.setScriptMessage(nil)
}

// SetNavigationPolicy installs the navigation interception check.
func (e *WebKitEngine) SetNavigationPolicy(fn NavigationPolicyFunc) {
	e.handlers.setNavPolicy(fn)
}

// ClearNavigationPolicy removes the navigation interception check.
func (e *WebKitEngine) ClearNavigationPolicy() {
	e.handlers.setNavPolicy(nil)
}

// SetLoadChangedHandler observes page-load lifecycle events.
func (e *WebKitEngine) SetLoadChangedHandler(fn func(LoadEvent)) {
	e.handlers.setLoadChanged(fn)
}

// SetLoadFailedHandler observes load and provisional-load errors.
func (e *WebKitEngine) SetLoadFailedHandler(fn func(uri string, err error)) {
	e.handlers.setLoadFailed(fn)
}

// Destroy tears the instance down. GTK reference counting reclaims the
// native view once the widget leaves the tree.
func (e *WebKitEngine) Destroy() {
	if e.destroyed.Swap(true) {
		return
	}
	e.log.Debug().Uint64("id", uint64(e.id)).Msg("webkit engine destroyed")
}

// IsDestroyed reports whether Destroy has run.
func (e *WebKitEngine) IsDestroyed() bool {
	return e.destroyed.Load()
}
