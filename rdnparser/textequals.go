package rdnparser

import (
	"bytes"
	"sync"
	"unicode/utf16"
	"unicode/utf8"
)

// maxEscapeExpansion: a \uXXXX escape is six source bytes for at most four
// bytes of UTF-8, so unescaped text is never longer than its escaped form
// and never shorter than a sixth of it.
const maxEscapeExpansion = 6

var scratchPool = sync.Pool{
	New: func() any { return new([]byte) },
}

// ValueTextEquals compares the unescaped form of the current String or
// PropertyName token against text without materializing it, with cheap
// length-based early-outs. Other token kinds compare as false.
func (r *Reader) ValueTextEquals(text []byte) bool {
	if r.kind != KindString && r.kind != KindPropertyName {
		return false
	}
	span, release := r.valueBytesForCompare()
	if release != nil {
		defer release()
	}
	if !r.valueIsEscaped {
		return bytes.Equal(span, text)
	}
	if len(text) > len(span) || len(span) > len(text)*maxEscapeExpansion {
		return false
	}
	return unescapedEquals(span, text)
}

// ValueTextEqualsString is ValueTextEquals for a string target, compared by
// its UTF-8 bytes without copying.
func (r *Reader) ValueTextEqualsString(text string) bool {
	if r.kind != KindString && r.kind != KindPropertyName {
		return false
	}
	span, release := r.valueBytesForCompare()
	if release != nil {
		defer release()
	}
	if !r.valueIsEscaped {
		return string(span) == text
	}
	if len(text) > len(span) || len(span) > len(text)*maxEscapeExpansion {
		return false
	}
	return unescapedEqualsString(span, text)
}

// valueBytesForCompare returns the token content as one contiguous slice;
// a cross-segment value is concatenated into pooled scratch, released via
// the returned function.
func (r *Reader) valueBytesForCompare() ([]byte, func()) {
	if !r.hasValueSequence {
		return r.buffer[r.valueStart:r.valueEnd], nil
	}
	bufp := scratchPool.Get().(*[]byte)
	b := (*bufp)[:0]
	for _, part := range r.valueSequence {
		b = append(b, part...)
	}
	*bufp = b
	return b, func() { scratchPool.Put(bufp) }
}

func unescapedEquals(src, target []byte) bool {
	return unescapeWalk(src, func(c byte) bool {
		if len(target) == 0 || target[0] != c {
			return false
		}
		target = target[1:]
		return true
	}) && len(target) == 0
}

func unescapedEqualsString(src []byte, target string) bool {
	return unescapeWalk(src, func(c byte) bool {
		if len(target) == 0 || target[0] != c {
			return false
		}
		target = target[1:]
		return true
	}) && len(target) == 0
}

// unescapeWalk feeds the unescaped bytes of src to emit one at a time,
// stopping early when emit reports a mismatch. src has already been
// validated by the string lexer.
func unescapeWalk(src []byte, emit func(byte) bool) bool {
	var enc [utf8.UTFMax]byte
	i := 0
	for i < len(src) {
		c := src[i]
		if c != '\\' {
			if !emit(c) {
				return false
			}
			i++
			continue
		}
		i++
		switch src[i] {
		case '"':
			c = '"'
		case '\\':
			c = '\\'
		case '/':
			c = '/'
		case 'b':
			c = '\b'
		case 'f':
			c = '\f'
		case 'n':
			c = '\n'
		case 'r':
			c = '\r'
		case 't':
			c = '\t'
		case 'u':
			ru := rune(hex4(src[i+1 : i+5]))
			i += 5
			if utf16.IsSurrogate(ru) {
				if i+5 < len(src) && src[i] == '\\' && src[i+1] == 'u' {
					lo := rune(hex4(src[i+2 : i+6]))
					if dec := utf16.DecodeRune(ru, lo); dec != utf8.RuneError {
						ru = dec
						i += 6
					} else {
						ru = utf8.RuneError
					}
				} else {
					ru = utf8.RuneError
				}
			}
			n := utf8.EncodeRune(enc[:], ru)
			for _, eb := range enc[:n] {
				if !emit(eb) {
					return false
				}
			}
			continue
		}
		if !emit(c) {
			return false
		}
		i++
	}
	return true
}

func hex4(b []byte) uint16 {
	var v uint16
	for _, c := range b[:4] {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint16(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint16(c-'a'+10)
		default:
			v |= uint16(c-'A'+10)
		}
	}
	return v
}
