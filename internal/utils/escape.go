package utils

import (
	"errors"
	"strings"
)

// ErrUnsafePath marks a path that cannot be embedded in an AppleScript
// string literal.
var ErrUnsafePath = errors.New("path not representable in AppleScript")

// appleScriptLiteral prepares a path for embedding in a double-quoted
// AppleScript string. Backslashes double before quotes so the second rewrite
// cannot touch characters the first one produced.
func appleScriptLiteral(path string) (string, error) {
	if strings.ContainsAny(path, "\n\r") {
		return "", ErrUnsafePath
	}
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `"`, `\"`)
	return path, nil
}
