package webview

import "errors"

var (
	ErrEngineDestroyed   = errors.New("webview: engine destroyed")
	ErrEngineUnavailable = errors.New("webview: engine backend unavailable in this build")
	ErrNoDocument        = errors.New("webview: no document loaded")
)
