package charset

import (
	"strings"
	"unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
)

// isUTF16 reports whether a charset name is one of the UTF-16 variants and
// whether it is big endian.
func isUTF16(name string) (bool, bool) {
	switch strings.ToLower(name) {
	case "utf-16le", "utf-16":
		return true, false
	case "utf-16be":
		return true, true
	}
	return false, false
}

// hanCompanions may appear next to Han without the text counting as mixed.
var hanCompanions = map[string]bool{"Hiragana": true, "Katakana": true, "Bopomofo": true}

// plausibleUTF16 reports whether head decodes to something that reads as
// text. A byte order mark is enough for content sniffers to claim UTF-16, so
// arbitrary bytes behind FF FE need a stricter look: the prefix must decode
// without replacement characters, contain only printable runes or whitespace,
// and draw its letters from at most one non-Latin writing system.
func plausibleUTF16(head []byte, truncated, bigEndian bool) bool {
	if truncated {
		if len(head)%2 == 1 {
			head = head[:len(head)-1]
		}
		// a surrogate pair cut by the read limit
		if n := len(head); n >= 2 {
			unit := uint16(head[n-2]) | uint16(head[n-1])<<8
			if bigEndian {
				unit = uint16(head[n-2])<<8 | uint16(head[n-1])
			}
			if unit >= 0xD800 && unit < 0xDC00 {
				head = head[:n-2]
			}
		}
	}

	endian := xunicode.LittleEndian
	if bigEndian {
		endian = xunicode.BigEndian
	}
	decoded, err := xunicode.UTF16(endian, xunicode.UseBOM).NewDecoder().Bytes(head)
	if err != nil {
		return false
	}

	scripts := map[string]bool{}
	for len(decoded) > 0 {
		r, size := utf8.DecodeRune(decoded)
		decoded = decoded[size:]

		switch {
		case r == utf8.RuneError:
			return false
		case unicode.IsSpace(r):
			continue
		case !unicode.IsGraphic(r) && !unicode.Is(unicode.Cf, r):
			return false
		}
		if s := scriptOf(r); s != "" {
			scripts[s] = true
		}
	}

	if scripts["Han"] {
		for k := range hanCompanions {
			delete(scripts, k)
		}
	}
	return len(scripts) <= 1
}

// scriptOf names the writing system of a letter, or "" for Latin, common
// punctuation and combining marks.
func scriptOf(r rune) string {
	if r < utf8.RuneSelf || unicode.In(r, unicode.Latin, unicode.Common, unicode.Inherited) {
		return ""
	}
	for name, table := range unicode.Scripts {
		if unicode.Is(table, r) {
			return name
		}
	}
	return ""
}
