package assets

import _ "embed"

// Streamdown renderer bundles embedded at compile time, one per variant.

//go:embed bundle/minimal.js
var MinimalBundle string

//go:embed bundle/balanced.js
var BalancedBundle string

//go:embed bundle/full.js
var FullBundle string

// Companion stylesheet for the full variant, injected after first paint.
//
//go:embed bundle/full.css
var FullStylesheet string
