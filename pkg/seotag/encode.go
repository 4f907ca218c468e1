package seotag

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// wideText encodes s for the Windows XP* EXIF fields: UTF-16LE with a trailing NUL.
func wideText(s string) ([]byte, error) {
	bs, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return append(bs, 0, 0), nil
}

// decodeWideText reverses wideText.
func decodeWideText(bs []byte) (string, error) {
	if len(bs)%2 == 1 {
		bs = bs[:len(bs)-1]
	}
	out, err := utf16le.NewDecoder().Bytes(bs)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\x00"), nil
}

// latinSafe drops characters that have no Latin-1 representation.
func latinSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xff || r == 0 {
			return -1
		}
		return r
	}, s)
}

// latinText converts s to ISO-8859-1 for ASCII EXIF fields.
func latinText(s string) string {
	s = latinSafe(s)
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		// unreachable after latinSafe
		return s
	}
	return out
}

// decodeLatinText reverses latinText.
func decodeLatinText(s string) string {
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// asciiText drops everything outside printable 7-bit ASCII.
func asciiText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, s)
}
