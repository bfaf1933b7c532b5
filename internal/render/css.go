package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Style bags are open maps authored by operators; values are inlined into
// the surface document, so they are validated here at the renderer boundary
// rather than closed off at the type level. Unknown keys pass through when
// their values look safe.

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	safeCSSValue  = regexp.MustCompile(`^[a-zA-Z0-9#%.,()\s/_-]+$`)
	safeCSSName   = regexp.MustCompile(`^[a-zA-Z-]+$`)
)

// reserved style keys that are metadata, not presentation.
var nonCSSKeys = map[string]struct{}{
	"name": {},
}

// cssName converts a bag key like "backgroundColor" to "background-color".
func cssName(key string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(key, "${1}-${2}"))
}

// cssValue stringifies a bag value; numbers are treated as pixel lengths,
// matching how the editor stores bare numeric sizes.
func cssValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return fmt.Sprintf("%gpx", val)
	case int:
		return fmt.Sprintf("%dpx", val)
	}
	return ""
}

// inlineStyle flattens a style bag into a CSS declaration list, dropping
// metadata keys and anything that does not survive validation. Keys are
// emitted in sorted order so output is deterministic.
func inlineStyle(style map[string]any) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if _, skip := nonCSSKeys[k]; skip {
			continue
		}
		name := cssName(k)
		value := cssValue(style[k])
		if value == "" || !safeCSSName.MatchString(name) || !safeCSSValue.MatchString(value) {
			continue
		}
		fmt.Fprintf(&b, "%s: %s; ", name, value)
	}
	return strings.TrimSpace(b.String())
}
