package template

import "strings"

// scriptLiteralEscaper escapes content embedded as a template literal in a
// script-evaluation call. Backslash must come first; backtick and dollar stop
// premature literal termination and interpolation; bare newlines and carriage
// returns would otherwise split the literal mid-call on some engine versions.
var scriptLiteralEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
)

// EscapeForScriptLiteral makes content safe to embed inside a backtick
// template literal passed across the native-to-page boundary.
func EscapeForScriptLiteral(content string) string {
	return scriptLiteralEscaper.Replace(content)
}
