package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// UnescapeJSString decodes the body of a JavaScript string literal (without
// its quotes). It understands the single-character escapes, \xHH, \uHHHH
// including surrogate pairs, \u{...} and line continuations. Unknown escapes
// yield the escaped character itself.
func UnescapeJSString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("unterminated escape at end of literal")
		}
		c = s[i]
		i++
		switch c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 > len(s) {
				return "", errors.New("short \\x escape")
			}
			v, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape %q", s[i:i+2])
			}
			b.WriteRune(rune(v))
			i += 2
		case 'u':
			r, n, err := readUnicodeEscape(s[i:])
			if err != nil {
				return "", err
			}
			i += n
			if utf16.IsSurrogate(r) {
				// a high surrogate pairs with an immediately following \uDC00-\uDFFF
				if i+1 < len(s) && s[i] == '\\' && s[i+1] == 'u' {
					if r2, n2, err := readUnicodeEscape(s[i+2:]); err == nil {
						if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
							b.WriteRune(dec)
							i += 2 + n2
							continue
						}
					}
				}
				b.WriteRune(utf8.RuneError)
				continue
			}
			b.WriteRune(r)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// readUnicodeEscape parses the part after `\u`: either four hex digits or a
// braced code point. It returns the rune and the bytes consumed.
func readUnicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, errors.New("bad \\u{} escape")
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, fmt.Errorf("bad \\u{} escape %q", s[:end+1])
		}
		return rune(v), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, errors.New("short \\u escape")
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad \\u escape %q", s[:4])
	}
	return rune(v), 4, nil
}
