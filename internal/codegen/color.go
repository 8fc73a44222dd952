package codegen

import "strings"

// glowAlpha is roughly 60% opacity as a hex byte.
const glowAlpha = "99"

// glowColor returns c at ~60% alpha for use in a box-shadow. Hex colors get
// a literal 99 alpha byte (replacing any existing alpha); other CSS color
// syntaxes are mixed with transparent, which every modern engine accepts.
func glowColor(c string) string {
	h, ok := strings.CutPrefix(c, "#")
	if ok && isHex(h) {
		switch len(h) {
		case 3:
			return "#" + expandShortHex(h) + glowAlpha
		case 4:
			return "#" + expandShortHex(h[:3]) + glowAlpha
		case 6:
			return c + glowAlpha
		case 8:
			return "#" + h[:6] + glowAlpha
		}
	}
	return "color-mix(in srgb, " + c + " 60%, transparent)"
}

func expandShortHex(h string) string {
	var b strings.Builder
	for i := 0; i < len(h); i++ {
		b.WriteByte(h[i])
		b.WriteByte(h[i])
	}
	return b.String()
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
