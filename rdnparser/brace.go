package rdnparser

// consumeBrace resolves the overloaded '{' in value position into an
// object, set or map frame via bounded lookahead. Lookahead never consumes;
// when it cannot decide within the buffer the conservative default is
// object, which keeps the common case resumable.
func (r *Reader) consumeBrace() (bool, error) {
	switch r.classifyBrace() {
	case frameSet:
		return r.openFrame(frameSet, KindStartSet, 1)
	case frameMap:
		return r.openFrame(frameMap, KindStartMap, 1)
	default:
		return r.openFrame(frameObject, KindStartObject, 1)
	}
}

// classifyBrace looks at the first element after '{': a quoted string is
// scanned past and the separator decides (':' object, '=>' map, ',' or '}'
// set); anything else is scanned past as a non-string value and only '=>'
// makes it a map, otherwise a set. Empty braces are an object.
func (r *Reader) classifyBrace() containerKind {
	buf := r.buffer
	i := skipLookaheadWhitespace(buf, r.consumed+1)
	if i >= len(buf) {
		return frameObject
	}
	switch buf[i] {
	case '}':
		return frameObject
	case '"':
		j := scanPastQuoted(buf, i)
		if j < 0 {
			return frameObject
		}
		j = skipLookaheadWhitespace(buf, j)
		if j >= len(buf) {
			return frameObject
		}
		switch buf[j] {
		case ':':
			return frameObject
		case ',', '}':
			return frameSet
		case '=':
			if j+1 < len(buf) && buf[j+1] == '>' {
				return frameMap
			}
			return frameObject
		default:
			return frameObject
		}
	default:
		j := scanPastNonStringValue(buf, i)
		if j < 0 {
			return frameObject
		}
		j = skipLookaheadWhitespace(buf, j)
		if j >= len(buf) {
			return frameObject
		}
		if buf[j] == '=' && j+1 < len(buf) && buf[j+1] == '>' {
			return frameMap
		}
		return frameSet
	}
}

func skipLookaheadWhitespace(buf []byte, i int) int {
	for i < len(buf) {
		switch buf[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// scanPastQuoted returns the index just after the closing quote of the
// string opening at i, treating backslash as "skip the next byte". -1 when
// the buffer ends first.
func scanPastQuoted(buf []byte, i int) int {
	i++
	for i < len(buf) {
		switch buf[i] {
		case '"':
			return i + 1
		case '\\':
			i += 2
		default:
			i++
		}
	}
	return -1
}

// scanPastNonStringValue returns the index just after one non-string value
// starting at i: numbers and keywords up to the next terminator, @-literal
// bodies, binary literals, and nested containers (including the Set{/Map{
// prefixes) with string-aware depth tracking. -1 when indeterminate before
// the end of the buffer.
func scanPastNonStringValue(buf []byte, i int) int {
	switch {
	case buf[i] == '@':
		i++
		for i < len(buf) && !terminators.contains(buf[i]) {
			i++
		}
		if i >= len(buf) {
			return -1
		}
		return i
	case buf[i] == '{' || buf[i] == '[' || buf[i] == '(':
		return scanPastBalanced(buf, i)
	case (buf[i] == 'b' || buf[i] == 'x') && i+1 < len(buf) && buf[i+1] == '"':
		return scanPastQuoted(buf, i+1)
	default:
		j := i
		for j < len(buf) && !terminators.contains(buf[j]) && buf[j] != '{' {
			j++
		}
		if j < len(buf) && buf[j] == '{' {
			// a Set{ or Map{ prefix
			return scanPastBalanced(buf, j)
		}
		if j >= len(buf) || j == i {
			return -1
		}
		return j
	}
}

func scanPastBalanced(buf []byte, i int) int {
	depth := 0
	for i < len(buf) {
		switch buf[i] {
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"':
			j := scanPastQuoted(buf, i)
			if j < 0 {
				return -1
			}
			i = j
			continue
		}
		i++
	}
	return -1
}
