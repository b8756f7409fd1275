package css

import "strings"

// Serialize re-emits a token slice as CSS text. Whitespace tokens are not
// written; a single space separates consecutive tokens instead, except
// directly after a function's "(" and directly before a ")". Strings are
// always single-quoted with non-safe characters hex-escaped, and url(...)
// values are always emitted as url('...') with the interior
// percent-encoded. The output is a fixed point: Serialize(Lex(out)) equals
// out. Re-lexing it does not reproduce the input token stream exactly,
// though: Whitespace tokens appear wherever the separator was written, and
// url('...') lexes as a url Function token with a String argument rather
// than as a URL token.
func Serialize(toks []Token) string {
	var b strings.Builder
	prev, wrote := EOF, false
	for _, t := range toks {
		if t.Type == Whitespace {
			continue
		}
		if wrote && prev != Function && t.Type != RightParen {
			b.WriteByte(' ')
		}
		writeToken(&b, t)
		prev, wrote = t.Type, true
	}
	return b.String()
}

func writeToken(b *strings.Builder, t Token) {
	switch t.Type {
	case Ident:
		b.WriteString(t.Value)
	case Function:
		b.WriteString(t.Value)
		b.WriteByte('(')
	case AtKeyword:
		b.WriteByte('@')
		b.WriteString(t.Value)
	case HashID, HashUnrestricted:
		b.WriteByte('#')
		b.WriteString(t.Value)
	case String:
		b.WriteString(serializeString(t.Value))
	case URL:
		b.WriteString("url(")
		b.WriteString(serializeURLInterior(t.Value))
		b.WriteByte(')')
	case Number:
		b.WriteString(t.Value)
	case Dimension:
		b.WriteString(t.Value)
		b.WriteString(t.Unit)
	case Percentage:
		b.WriteString(t.Value)
		b.WriteByte('%')
	case UnicodeRange:
		b.WriteString(t.Value)
	case Delim:
		b.WriteString(t.Value)
	case Whitespace:
		// never reached from Serialize, which skips whitespace and writes
		// its own separator
	case Colon:
		b.WriteByte(':')
	case Semicolon:
		b.WriteByte(';')
	case Comma:
		b.WriteByte(',')
	case LeftParen:
		b.WriteByte('(')
	case RightParen:
		b.WriteByte(')')
	case LeftSquare:
		b.WriteByte('[')
	case RightSquare:
		b.WriteByte(']')
	case LeftCurly:
		b.WriteByte('{')
	case RightCurly:
		b.WriteByte('}')
	case Match:
		b.WriteString(t.Value)
	case Column:
		b.WriteString("||")
	}
}

// serializeString renders s as a single-quoted CSS string, hex-escaping the
// quote character, backslash, and any other byte that isn't a safe ASCII
// printable.
func serializeString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\'' || r == '\\':
			hexEscape(&b, r)
		case r >= 0x20 && r < 0x7F:
			b.WriteRune(r)
		default:
			hexEscape(&b, r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func hexEscape(b *strings.Builder, r rune) {
	b.WriteByte('\\')
	b.WriteString(lowerHex(uint32(r)))
	b.WriteByte(' ')
}

// lowerHex formats v as lowercase hex without pulling in strconv's full
// surface just for this one conversion.
func lowerHex(v uint32) string {
	if v == 0 {
		return "0"
	}
	const digits = "0123456789abcdef"
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf[i:])
}

func serializeURLInterior(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if urlByteNeedsPercentEscape(c) {
			b.WriteByte('%')
			b.WriteByte(hexDigitsUpper[c>>4])
			b.WriteByte(hexDigitsUpper[c&0xF])
		} else {
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

const hexDigitsUpper = "0123456789ABCDEF"

func urlByteNeedsPercentEscape(c byte) bool {
	if c < 0x21 || c > 0x7E {
		return true
	}
	switch c {
	case '\'', '"', '(', ')', '\\':
		return true
	}
	return false
}
