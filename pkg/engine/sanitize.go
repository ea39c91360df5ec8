package engine

import "strings"

// Sanitize strips terminal escape sequences and control characters from
// scene text so content can be displayed literally. Newlines and tabs
// survive; CSI/OSC sequences and the rest of the control range do not.
func Sanitize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == 0x1b { // ESC: swallow the whole sequence
			i += escapeLen(runes[i+1:])
			continue
		}
		if r == '\n' || r == '\t' {
			sb.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// escapeLen returns how many runes after ESC belong to the sequence.
func escapeLen(rest []rune) int {
	if len(rest) == 0 {
		return 0
	}
	switch rest[0] {
	case '[': // CSI: parameters then a final byte in @-~
		for i := 1; i < len(rest); i++ {
			if rest[i] >= 0x40 && rest[i] <= 0x7e {
				return i + 1
			}
		}
		return len(rest)
	case ']': // OSC: terminated by BEL or ST
		for i := 1; i < len(rest); i++ {
			if rest[i] == 0x07 {
				return i + 1
			}
			if rest[i] == 0x1b && i+1 < len(rest) && rest[i+1] == '\\' {
				return i + 2
			}
		}
		return len(rest)
	}
	return 1
}
