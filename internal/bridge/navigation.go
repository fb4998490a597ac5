package bridge

import (
	"net/url"

	"github.com/bnema/streamview/pkg/webview"
)

// navOutcome classifies an outbound navigation request.
type navOutcome int

const (
	// navAllow lets the engine perform the navigation (initial loads,
	// same-document fragment jumps).
	navAllow navOutcome = iota
	// navForward cancels the navigation and hands the target to the
	// link-tap callback.
	navForward
)

// classifyNavigation decides what happens to a navigation request given the
// page's current location. Pure; safe to call from any engine context.
func classifyNavigation(current string, action webview.NavigationAction) navOutcome {
	// Requests without an owning frame are "open in new tab" equivalents;
	// the embedded view never grows a second document.
	if !action.HasTargetFrame {
		return navForward
	}
	// Programmatic loads (bootstrap navigation, recycling) pass through.
	if !action.IsUserGesture {
		return navAllow
	}
	if isFragmentJump(current, action.URI) {
		return navAllow
	}
	return navForward
}

// isFragmentJump reports whether target differs from current only by its
// fragment. Unparseable references are treated as cross-document.
func isFragmentJump(current, target string) bool {
	cur, err := url.Parse(current)
	if err != nil {
		return false
	}
	tgt, err := url.Parse(target)
	if err != nil {
		return false
	}
	return cur.Scheme == tgt.Scheme &&
		cur.Opaque == tgt.Opaque &&
		cur.Host == tgt.Host &&
		cur.Path == tgt.Path &&
		cur.RawQuery == tgt.RawQuery
}
