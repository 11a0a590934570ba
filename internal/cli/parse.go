package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitKV splits a "key=value" flag argument at the first equals sign.
func SplitKV(arg string) (key, value string, err error) {
	idx := strings.Index(arg, "=")
	if idx <= 0 {
		return "", "", fmt.Errorf("expected key=value, got %q", arg)
	}
	return arg[:idx], arg[idx+1:], nil
}

// ParseValue interprets a flag value string as the most specific scalar it
// can represent: int, then float, then bool, falling back to text. Quoting a
// value with single quotes forces text ('42' binds the string "42").
func ParseValue(s string) any {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s[1 : len(s)-1]
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
