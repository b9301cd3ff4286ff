// Package textfix repairs text that was UTF-8 encoded but decoded as a
// single-byte Western encoding (mojibake such as "cafÃ©" or "itâ€™s").
package textfix

import (
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// MojibakePattern matches a UTF-8 lead byte rendered as Latin-1 followed by
// a continuation byte rendered as Latin-1 or as a Windows-1252 glyph.
var MojibakePattern = regexp.MustCompile(
	"[Â-ô][\u0080-¿€‚ƒ„…†‡ˆ‰Š‹ŒŽ‘’“”•–—˜™š›œžŸ]",
)

// Repairer detects and undoes one mis-encoding pattern.
// Encodings are tried in order; the first that maps every rune back to a
// byte and yields valid UTF-8 wins.
type Repairer struct {
	Pattern   *regexp.Regexp
	Encodings []encoding.Encoding
}

// Default returns the Latin-1 / Windows-1252 repairer.
func Default() *Repairer {
	return &Repairer{
		Pattern:   MojibakePattern,
		Encodings: []encoding.Encoding{charmap.ISO8859_1, charmap.Windows1252},
	}
}

// Repair returns s with the mis-encoding undone, or s unchanged when the
// pattern is absent or no encoding round-trips cleanly.
func (r *Repairer) Repair(s string) (out string) {
	if r == nil || r.Pattern == nil || s == "" || !utf8.ValidString(s) {
		return s
	}
	defer func() {
		if recover() != nil {
			out = s
		}
	}()

	if !r.Pattern.MatchString(s) {
		return s
	}

	for _, enc := range r.Encodings {
		raw, err := enc.NewEncoder().String(s)
		if err != nil {
			continue
		}
		if utf8.ValidString(raw) {
			return raw
		}
	}
	return s
}
