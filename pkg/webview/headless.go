package webview

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grafana/sobek"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// HeadlessOptions configures the headless engine backend.
type HeadlessOptions struct {
	// Render, when set, is bound into the page as window.__streamviewRender
	// so the bundle script can delegate Markdown-to-HTML conversion to the
	// host. Must not panic across the boundary; wrap with renderer.Safe.
	Render func(markdown string) string
	// Highlight, when set, is bound as window.__streamviewHighlight for the
	// balanced and full bundles to colorize fenced code blocks.
	Highlight func(code, lang string) string
	// Logger receives page console output and script failures.
	Logger zerolog.Logger
}

// HeadlessEngine hosts the bootstrap document in an embedded JavaScript
// runtime with a small DOM shim. Page state only mutates on the dispatcher
// loop; that is the single-threaded affinity contract every Engine backend
// shares.
type HeadlessEngine struct {
	id       InstanceID
	loop     Dispatcher
	opts     HeadlessOptions
	log      zerolog.Logger
	handlers handlerSet

	destroyed atomic.Bool

	uriMu sync.RWMutex
	uri   string

	// Loop-affine page state. Replaced wholesale on every LoadHTML.
	vm   *sobek.Runtime
	page *headlessPage
}

type headlessPage struct {
	bodyHTML    string
	height      float64
	injectedCSS []string
}

// NewHeadless creates a headless engine bound to the given loop.
func NewHeadless(loop Dispatcher, opts HeadlessOptions) *HeadlessEngine {
	e := &HeadlessEngine{
		id:   nextInstanceID(),
		loop: loop,
		opts: opts,
		log:  opts.Logger.With().Str("component", "headless-engine").Logger(),
		uri:  "about:blank",
	}
	e.log.Debug().Uint64("id", uint64(e.id)).Msg("headless engine created")
	return e
}

// NewHeadlessFactory returns a Factory producing headless engines, one per
// call, all sharing the loop and options.
func NewHeadlessFactory(loop Dispatcher, opts HeadlessOptions) Factory {
	return func(_ context.Context) (Engine, error) {
		return NewHeadless(loop, opts), nil
	}
}

// ID returns the instance identifier.
func (e *HeadlessEngine) ID() InstanceID { return e.id }

// URI returns the current page location.
func (e *HeadlessEngine) URI() string {
	e.uriMu.RLock()
	defer e.uriMu.RUnlock()
	return e.uri
}

func (e *HeadlessEngine) setURI(uri string) {
	e.uriMu.Lock()
	e.uri = uri
	e.uriMu.Unlock()
}

// LoadHTML navigates to the given document. The parse and script execution
// happen asynchronously on the loop.
func (e *HeadlessEngine) LoadHTML(_ context.Context, document, baseURI string) error {
	if e.destroyed.Load() {
		return ErrEngineDestroyed
	}
	e.loop.Post(func() {
		e.loadDocument(document, baseURI)
	})
	return nil
}

func (e *HeadlessEngine) loadDocument(document, baseURI string) {
	if e.destroyed.Load() {
		return
	}

	uri := baseURI
	if uri == "" {
		uri = "about:blank"
	}
	e.setURI(uri)

	if fn := e.handlers.getLoadChanged(); fn != nil {
		fn(LoadStarted)
	}

	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		e.log.Warn().Err(err).Str("uri", uri).Msg("document parse failed")
		if fn := e.handlers.getLoadFailed(); fn != nil {
			fn(uri, err)
		}
		return
	}

	e.vm = sobek.New()
	e.page = &headlessPage{}
	e.installGlobals()

	if fn := e.handlers.getLoadChanged(); fn != nil {
		fn(LoadCommitted)
	}

	for i, script := range collectInlineScripts(doc) {
		if _, err := e.vm.RunString(script); err != nil {
			// Script failure is non-fatal; later scripts still run and the
			// load still finishes.
			e.log.Warn().Err(err).Int("script_index", i).Msg("inline script failed")
			if fn := e.handlers.getLoadFailed(); fn != nil {
				fn(uri, err)
			}
		}
	}

	if fn := e.handlers.getLoadChanged(); fn != nil {
		fn(LoadFinished)
	}
}

// installGlobals builds the window/document shim the bundle script runs
// against. The shim covers exactly what the bootstrap document uses: body
// innerHTML and scrollHeight, style-element injection into head, console,
// setTimeout, and the script-message bridge.
func (e *HeadlessEngine) installGlobals() {
	vm := e.vm
	page := e.page
	global := vm.GlobalObject()

	_ = global.Set("window", global)
	_ = global.Set("self", global)

	// console
	console := vm.NewObject()
	consoleFn := func(level string) func(call sobek.FunctionCall) sobek.Value {
		return func(call sobek.FunctionCall) sobek.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, a := range call.Arguments {
				parts = append(parts, a.String())
			}
			e.log.Debug().
				Str("level", level).
				Str("message", strings.Join(parts, " ")).
				Msg("page console")
			return sobek.Undefined()
		}
	}
	_ = console.Set("log", consoleFn("log"))
	_ = console.Set("warn", consoleFn("warn"))
	_ = console.Set("error", consoleFn("error"))
	_ = global.Set("console", console)

	// setTimeout: timer-driven, posted back through the loop. Callbacks from
	// a superseded page are dropped.
	_ = global.Set("setTimeout", func(call sobek.FunctionCall) sobek.Value {
		fn, ok := sobek.AssertFunction(call.Argument(0))
		if !ok {
			return sobek.Undefined()
		}
		delay := call.Argument(1).ToInteger()
		e.loop.PostDelayed(time.Duration(delay)*time.Millisecond, func() {
			if e.destroyed.Load() || e.vm != vm {
				return
			}
			if _, err := fn(sobek.Undefined()); err != nil {
				e.log.Warn().Err(err).Msg("setTimeout callback failed")
			}
		})
		return sobek.Undefined()
	})

	// location
	location := vm.NewObject()
	_ = location.Set("href", e.URI())
	_ = global.Set("location", location)

	// document: body with measured scrollHeight, head accepting injected
	// style elements.
	docObj := vm.NewObject()

	heightGetter := vm.ToValue(func(_ sobek.FunctionCall) sobek.Value {
		return vm.ToValue(page.height)
	})

	body := vm.NewObject()
	_ = body.DefineAccessorProperty("innerHTML",
		vm.ToValue(func(_ sobek.FunctionCall) sobek.Value {
			return vm.ToValue(page.bodyHTML)
		}),
		vm.ToValue(func(call sobek.FunctionCall) sobek.Value {
			page.bodyHTML = call.Argument(0).String()
			page.height = measureContentHeight(page.bodyHTML)
			return sobek.Undefined()
		}),
		sobek.FLAG_FALSE, sobek.FLAG_TRUE)
	_ = body.DefineAccessorProperty("scrollHeight",
		heightGetter, nil, sobek.FLAG_FALSE, sobek.FLAG_TRUE)
	_ = body.Set("style", vm.NewObject())
	_ = docObj.Set("body", body)

	docElem := vm.NewObject()
	_ = docElem.DefineAccessorProperty("scrollHeight",
		heightGetter, nil, sobek.FLAG_FALSE, sobek.FLAG_TRUE)
	_ = docElem.Set("style", vm.NewObject())
	_ = docObj.Set("documentElement", docElem)

	head := vm.NewObject()
	_ = head.Set("appendChild", func(call sobek.FunctionCall) sobek.Value {
		if obj, ok := call.Argument(0).(*sobek.Object); ok {
			if css := obj.Get("textContent"); css != nil {
				page.injectedCSS = append(page.injectedCSS, css.String())
			}
		}
		return call.Argument(0)
	})
	_ = docObj.Set("head", head)

	_ = docObj.Set("createElement", func(call sobek.FunctionCall) sobek.Value {
		elem := vm.NewObject()
		_ = elem.Set("tagName", strings.ToUpper(call.Argument(0).String()))
		_ = elem.Set("textContent", "")
		_ = elem.Set("setAttribute", func(_ sobek.FunctionCall) sobek.Value {
			return sobek.Undefined()
		})
		return elem
	})
	_ = global.Set("document", docObj)

	// window.webkit.messageHandlers.streamview.postMessage
	postTarget := vm.NewObject()
	_ = postTarget.Set("postMessage", func(call sobek.FunctionCall) sobek.Value {
		e.dispatchScriptMessage(call.Argument(0))
		return sobek.Undefined()
	})
	handlersObj := vm.NewObject()
	_ = handlersObj.Set(ScriptMessageHandlerName, postTarget)
	webkitObj := vm.NewObject()
	_ = webkitObj.Set("messageHandlers", handlersObj)
	_ = global.Set("webkit", webkitObj)

	// Host-side renderer hook, mirrors the host-injected globals pattern the
	// GTK backend uses for theme preferences.
	if e.opts.Render != nil {
		render := e.opts.Render
		_ = global.Set("__streamviewRender", func(call sobek.FunctionCall) sobek.Value {
			return vm.ToValue(render(call.Argument(0).String()))
		})
	}
	if e.opts.Highlight != nil {
		highlight := e.opts.Highlight
		_ = global.Set("__streamviewHighlight", func(call sobek.FunctionCall) sobek.Value {
			return vm.ToValue(highlight(call.Argument(0).String(), call.Argument(1).String()))
		})
	}

	// User-level link activation entry point used by tests and the CLI.
	_ = global.Set("__streamviewNavigate", func(call sobek.FunctionCall) sobek.Value {
		e.requestNavigation(NavigationAction{
			URI:            call.Argument(0).String(),
			IsUserGesture:  true,
			HasTargetFrame: true,
		})
		return sobek.Undefined()
	})
}

func (e *HeadlessEngine) dispatchScriptMessage(v sobek.Value) {
	handler := e.handlers.getScriptMessage()
	if handler == nil {
		e.log.Debug().Msg("script message dropped: no handler attached")
		return
	}
	raw, err := json.Marshal(v.Export())
	if err != nil {
		e.log.Warn().Err(err).Msg("script message payload not serializable")
		return
	}
	handler(string(raw))
}

// requestNavigation runs the policy check and, when allowed, moves the page
// location. Same-document jumps do not reload; the headless page has no
// network, so a cross-document allow also just moves the location.
func (e *HeadlessEngine) requestNavigation(action NavigationAction) {
	if policy := e.handlers.getNavPolicy(); policy != nil {
		if policy(action) == NavigationCancel {
			return
		}
	}
	e.setURI(action.URI)
	if e.vm != nil {
		if loc, ok := e.vm.GlobalObject().Get("location").(*sobek.Object); ok {
			_ = loc.Set("href", action.URI)
		}
	}
}

// SimulateLinkActivation feeds a user-level navigation request through the
// policy check, as a tapped link in a real engine would.
func (e *HeadlessEngine) SimulateLinkActivation(uri string, hasTargetFrame bool) {
	if e.destroyed.Load() {
		return
	}
	e.loop.Post(func() {
		if e.destroyed.Load() {
			return
		}
		e.requestNavigation(NavigationAction{
			URI:            uri,
			IsUserGesture:  true,
			HasTargetFrame: hasTargetFrame,
		})
	})
}

// Evaluate runs script against the current page on the loop.
func (e *HeadlessEngine) Evaluate(_ context.Context, script string, fn func(result any, err error)) {
	if e.destroyed.Load() {
		if fn != nil {
			fn(nil, ErrEngineDestroyed)
		}
		return
	}
	e.loop.Post(func() {
		if e.destroyed.Load() {
			if fn != nil {
				fn(nil, ErrEngineDestroyed)
			}
			return
		}
		if e.vm == nil {
			if fn != nil {
				fn(nil, ErrNoDocument)
			}
			return
		}
		v, err := e.vm.RunString(script)
		if err != nil {
			e.log.Warn().Err(err).Msg("evaluate failed")
			if fn != nil {
				fn(nil, err)
			}
			return
		}
		if fn != nil {
			fn(exportValue(v), nil)
		}
	})
}

// exportValue normalizes a script value for native consumers: numbers come
// back as float64, undefined and null as nil.
func exportValue(v sobek.Value) any {
	if v == nil || sobek.IsUndefined(v) || sobek.IsNull(v) {
		return nil
	}
	switch exported := v.Export().(type) {
	case int64:
		return float64(exported)
	default:
		return exported
	}
}

// InjectedStyles returns CSS text appended to the page head since the last
// load. Test observability for the deferred-stylesheet path.
func (e *HeadlessEngine) InjectedStyles() []string {
	if e.page == nil {
		return nil
	}
	return append([]string(nil), e.page.injectedCSS...)
}

// BodyHTML returns the page body markup. Test observability.
func (e *HeadlessEngine) BodyHTML() string {
	if e.page == nil {
		return ""
	}
	return e.page.bodyHTML
}

// SetScriptMessageHandler registers the script-message receiver.
func (e *HeadlessEngine) SetScriptMessageHandler(fn func(raw string)) {
	e.handlers.setScriptMessage(fn)
}

// ClearScriptMessageHandler revokes the script-message receiver.
func (e *HeadlessEngine) ClearScriptMessageHandler() {
	e.handlers.setScriptMessage(nil)
}

// SetNavigationPolicy installs the navigation interception check.
func (e *HeadlessEngine) SetNavigationPolicy(fn NavigationPolicyFunc) {
	e.handlers.setNavPolicy(fn)
}

// ClearNavigationPolicy removes the navigation interception check.
func (e *HeadlessEngine) ClearNavigationPolicy() {
	e.handlers.setNavPolicy(nil)
}

// SetLoadChangedHandler observes page-load lifecycle events.
func (e *HeadlessEngine) SetLoadChangedHandler(fn func(LoadEvent)) {
	e.handlers.setLoadChanged(fn)
}

// SetLoadFailedHandler observes load errors.
func (e *HeadlessEngine) SetLoadFailedHandler(fn func(uri string, err error)) {
	e.handlers.setLoadFailed(fn)
}

// Destroy tears the instance down. Idempotent; pending loop work against the
// instance becomes a no-op.
func (e *HeadlessEngine) Destroy() {
	if e.destroyed.Swap(true) {
		return
	}
	e.loop.Post(func() {
		e.vm = nil
		e.page = nil
	})
	e.log.Debug().Uint64("id", uint64(e.id)).Msg("headless engine destroyed")
}

// IsDestroyed reports whether Destroy has run.
func (e *HeadlessEngine) IsDestroyed() bool {
	return e.destroyed.Load()
}
