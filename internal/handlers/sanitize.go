package handlers

import "strings"

// stringValue normalizes a loosely typed field: non-strings become absent
// and oversize values are truncated.
func stringValue(v any, max int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return truncate(s, max)
}

// stringList keeps the first max string entries, discarding anything of
// another type entry by entry.
func stringList(vs []any, max int) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

// clampText trims and length-caps a chat message. Whitespace-only
// messages are rejected.
func clampText(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return truncate(s, max), true
}

// truncate caps a string at max runes. Cutting on a byte offset could
// split a multi-byte sequence and leave invalid UTF-8 on the wire.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
