package terminal

import "unicode/utf8"

// splitIncompleteRune splits b before a trailing, not yet complete UTF-8
// sequence so output chunks always end on a rune boundary. Bytes are never
// altered, only regrouped.
func splitIncompleteRune(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b, nil
		}
		return b[:i], b[i:]
	}
	return b, nil
}
