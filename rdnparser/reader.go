package rdnparser

// Pos is a 1-based line/column position in the input. Col counts bytes from
// the start of the line.
type Pos struct {
	Line, Col int
}

// Reader is a forward-only, zero-copy tokenizer over a single UTF-8 buffer.
// Token values are sub-slices of the caller's buffer; the buffer must not be
// mutated while the Reader is live.
//
// Read returns (false, nil) when the buffer ends mid-token and more data may
// follow ("need more data"); all observable state is rolled back so the
// caller can resume with CurrentState() and a fresh buffer holding the
// unconsumed tail plus new bytes.
type Reader struct {
	buffer       []byte
	isFinalBlock bool
	opts         ReaderOptions

	consumed   int // index of the next unread byte
	tokenStart int // first significant byte of the current token

	line      int // newlines seen so far
	posInLine int // bytes since the last newline

	kind         TokenKind
	previousKind TokenKind // the kind before a surfaced comment

	valueStart, valueEnd int
	valueIsEscaped       bool
	hasValueSequence     bool
	valueSequence        [][]byte

	inObject                   bool
	isNotPrimitive             bool
	trailingCommaBeforeComment bool

	bits   bitStack
	frames frameStack
}

// NewReader creates a Reader over buffer. isFinalBlock tells the reader that
// no bytes follow this buffer. state carries position, container stack and
// options across buffers; use NewReaderState for a fresh parse.
func NewReader(buffer []byte, isFinalBlock bool, state ReaderState) *Reader {
	return &Reader{
		buffer:                     buffer,
		isFinalBlock:               isFinalBlock,
		opts:                       state.options,
		line:                       state.lineNumber,
		posInLine:                  state.bytePositionInLine,
		kind:                       state.tokenKind,
		previousKind:               state.previousKind,
		inObject:                   state.inObject,
		isNotPrimitive:             state.isNotPrimitive,
		valueIsEscaped:             state.valueIsEscaped,
		trailingCommaBeforeComment: state.trailingCommaBeforeComment,
		bits:                       state.bitStack.clone(),
		frames:                     state.frames.clone(),
	}
}

func (r *Reader) TokenKind() TokenKind { return r.kind }

// ValueSpan returns the content bytes of the current token as a sub-slice of
// the input buffer, or nil when HasValueSequence reports true.
func (r *Reader) ValueSpan() []byte {
	if r.hasValueSequence {
		return nil
	}
	return r.buffer[r.valueStart:r.valueEnd]
}

// ValueSequence returns the content of a token that straddled buffer
// segments, as one chunk per segment. Empty unless HasValueSequence.
func (r *Reader) ValueSequence() [][]byte { return r.valueSequence }

func (r *Reader) HasValueSequence() bool { return r.hasValueSequence }

// ValueIsEscaped reports that a string or property name contains backslash
// escapes. For KindBinary it is overloaded as the encoding marker:
// false = base64, true = hex.
func (r *Reader) ValueIsEscaped() bool { return r.valueIsEscaped }

// TokenStartIndex is the buffer offset of the token's first significant
// byte: the opening quote for strings, the '@' for temporal literals, the
// first '/' for comments and regexes.
func (r *Reader) TokenStartIndex() int { return r.tokenStart }

func (r *Reader) BytesConsumed() int { return r.consumed }

// ValueStartIndex is the buffer offset of the first content byte of the
// current token (the byte after the opening quote for strings).
func (r *Reader) ValueStartIndex() int { return r.valueStart }

// CurrentDepth is the number of unclosed containers enclosing the current
// token; a Start token reports the depth of its enclosing container.
func (r *Reader) CurrentDepth() int {
	d := r.bits.depth
	if r.kind.IsStartContainer() {
		d--
	}
	return d
}

func (r *Reader) Position() Pos { return Pos{Line: r.line + 1, Col: r.posInLine + 1} }

func (r *Reader) IsFinalBlock() bool { return r.isFinalBlock }

// IsInArray reports whether the innermost open container is array-like
// (array, set, tuple, or a map entry position).
func (r *Reader) IsInArray() bool { return r.bits.depth > 0 && !r.inObject }

// CurrentState snapshots everything needed to resume on a fresh buffer. The
// returned value is independent of the Reader and may be copied freely.
func (r *Reader) CurrentState() ReaderState {
	return ReaderState{
		options:                    r.opts,
		lineNumber:                 r.line,
		bytePositionInLine:         r.posInLine,
		tokenKind:                  r.kind,
		previousKind:               r.previousKind,
		inObject:                   r.inObject,
		isNotPrimitive:             r.isNotPrimitive,
		valueIsEscaped:             r.valueIsEscaped,
		trailingCommaBeforeComment: r.trailingCommaBeforeComment,
		bitStack:                   r.bits.clone(),
		frames:                     r.frames.clone(),
	}
}

// clone deep-copies the reader; used for TrySkip rollback.
func (r *Reader) clone() Reader {
	c := *r
	c.bits = r.bits.clone()
	c.frames = r.frames.clone()
	return c
}

// rollbackState captures the scalar reader state at the top of a read step.
// Container pushes and pops only happen at the moment a token is
// successfully emitted, so restoring the depths and the top frame is enough
// to undo a partial step.
type rollbackState struct {
	consumed, tokenStart int
	line, posInLine      int
	kind, previousKind   TokenKind
	valueStart, valueEnd int
	valueIsEscaped       bool
	inObject             bool
	isNotPrimitive       bool
	trailingComma        bool
	depth                int
	topFrame             frame
}

func (r *Reader) snapshot() rollbackState {
	s := rollbackState{
		consumed:       r.consumed,
		tokenStart:     r.tokenStart,
		line:           r.line,
		posInLine:      r.posInLine,
		kind:           r.kind,
		previousKind:   r.previousKind,
		valueStart:     r.valueStart,
		valueEnd:       r.valueEnd,
		valueIsEscaped: r.valueIsEscaped,
		inObject:       r.inObject,
		isNotPrimitive: r.isNotPrimitive,
		trailingComma:  r.trailingCommaBeforeComment,
		depth:          r.bits.depth,
	}
	if f := r.frames.top(); f != nil {
		s.topFrame = *f
	}
	return s
}

func (r *Reader) restore(s rollbackState) {
	r.consumed = s.consumed
	r.tokenStart = s.tokenStart
	r.line = s.line
	r.posInLine = s.posInLine
	r.kind = s.kind
	r.previousKind = s.previousKind
	r.valueStart = s.valueStart
	r.valueEnd = s.valueEnd
	r.valueIsEscaped = s.valueIsEscaped
	r.inObject = s.inObject
	r.isNotPrimitive = s.isNotPrimitive
	r.trailingCommaBeforeComment = s.trailingComma
	r.bits.depth = s.depth
	if len(r.frames.frames) > s.depth {
		r.frames.frames = r.frames.frames[:s.depth]
	}
	if f := r.frames.top(); f != nil {
		*f = s.topFrame
	}
}

// Read advances to the next token. It returns (true, nil) on success,
// (false, nil) when the buffer ends mid-token (state rolled back; also the
// clean end-of-input signal on the final block), and (false, *SyntaxError)
// on a fatal syntax error.
func (r *Reader) Read() (bool, error) {
	r.hasValueSequence = false
	r.valueSequence = nil
	snap := r.snapshot()
	ok, err := r.readToken()
	if err != nil {
		return false, err
	}
	if !ok {
		r.restore(snap)
		return false, nil
	}
	return true, nil
}

func (r *Reader) readToken() (bool, error) {
	if ok, err := r.skipWhitespaceAndComments(); !ok || err != nil {
		return ok, err
	}
	if r.consumed >= len(r.buffer) {
		return r.readAtEndOfBuffer()
	}
	// a lone CR at the end of a non-final buffer may be half of a CRLF
	if r.buffer[r.consumed] == '\r' && r.consumed+1 >= len(r.buffer) && !r.isFinalBlock {
		return false, nil
	}
	b := r.buffer[r.consumed]

	switch effective := r.effectiveKind(); effective {
	case KindNone:
		return r.consumeValue(b)
	case KindStartObject:
		if b == '}' {
			return r.closeObjectLike(false)
		}
		if b == '"' {
			r.tokenStart = r.consumed
			return r.consumePropertyName()
		}
		if b == '/' && r.opts.CommentHandling == CommentsAllow {
			return r.consumeSurfacedComment()
		}
		return false, r.errHere(ReasonExpectedStartOfPropertyNotFound)
	case KindStartArray:
		// covers arrays and tuples; the frame kind picks the close byte
		if b == ']' || b == ')' {
			return r.closeArrayLike(b)
		}
		return r.consumeValue(b)
	case KindStartSet, KindStartMap:
		if b == '}' {
			return r.closeObjectLike(false)
		}
		return r.consumeValue(b)
	case KindPropertyName:
		return r.consumeValue(b)
	default:
		return r.consumeNextToken(b)
	}
}

// effectiveKind is the kind driving the state machine: a surfaced comment is
// transparent, the token before it routes the next read.
func (r *Reader) effectiveKind() TokenKind {
	if r.kind == KindComment {
		return r.previousKind
	}
	return r.kind
}

func (r *Reader) readAtEndOfBuffer() (bool, error) {
	if !r.isFinalBlock {
		return false, nil
	}
	effective := r.effectiveKind()
	if r.kind == KindNone {
		return false, r.errHere(ReasonExpectedRdnTokens)
	}
	if r.bits.depth != 0 {
		return false, r.errHere(ReasonZeroDepthAtEnd)
	}
	if r.isNotPrimitive && !effective.IsEndContainer() && !r.opts.AllowMultipleValues {
		return false, r.errHere(ReasonInvalidEndOfRdnNonPrimitive)
	}
	return false, nil
}

// consumeNextToken handles the position after a completed value or End
// token: separators, closers, the map arrow, structural comments, and
// additional top-level values.
func (r *Reader) consumeNextToken(b byte) (bool, error) {
	top := r.frames.top()

	if r.trailingCommaBeforeComment {
		// a comma was consumed before the comment(s) we just surfaced
		r.trailingCommaBeforeComment = false
		ok, err := r.consumeAfterComma(top, b)
		if ok && r.kind == KindComment {
			r.trailingCommaBeforeComment = true
		}
		return ok, err
	}
	if top != nil && top.kind == frameMap && top.pendingValue {
		// arrow consumed, value still outstanding (comments in between)
		return r.consumeMapEntryValue(b)
	}

	switch b {
	case ',':
		if top == nil {
			if r.opts.AllowMultipleValues {
				return false, r.errHere(ReasonFoundInvalidCharacter)
			}
			return false, r.errHere(ReasonExpectedEndAfterSingleRdn)
		}
		if top.kind == frameMap {
			// the next entry starts with a key again
			top.expectKey = true
			top.pendingValue = false
		}
		kind := top.kind
		r.advance(1)
		if ok, err := r.skipWhitespaceAndComments(); !ok || err != nil {
			return ok, err
		}
		if r.consumed >= len(r.buffer) {
			if !r.isFinalBlock {
				return false, nil
			}
			if kind == frameObject {
				return false, r.errHere(ReasonExpectedStartOfPropertyNotFound)
			}
			return false, r.errHere(ReasonExpectedStartOfValueNotFound)
		}
		ok, err := r.consumeAfterComma(r.frames.top(), r.buffer[r.consumed])
		if ok && r.kind == KindComment {
			// remember the comma across the surfaced comment
			r.trailingCommaBeforeComment = true
		}
		return ok, err
	case '}':
		return r.closeObjectLike(false)
	case ']', ')':
		return r.closeArrayLike(b)
	case '=':
		if top != nil && top.kind == frameMap && top.expectKey {
			return r.consumeMapArrow()
		}
		return false, r.errHere(ReasonFoundInvalidCharacter)
	case '/':
		if r.opts.CommentHandling == CommentsAllow {
			return r.consumeSurfacedComment()
		}
		return false, r.errHere(ReasonFoundInvalidCharacter)
	default:
		if top == nil {
			if r.opts.AllowMultipleValues {
				return r.consumeValue(b)
			}
			return false, r.errHere(ReasonExpectedEndAfterSingleRdn)
		}
		if top.kind == frameMap && top.expectKey {
			// a key was read but no arrow followed
			return false, r.errHere(ReasonExpectedSeparatorAfterPropertyNameNotFound)
		}
		return false, r.errHere(ReasonFoundInvalidCharacter)
	}
}

func (r *Reader) consumeAfterComma(top *frame, b byte) (bool, error) {
	switch top.kind {
	case frameObject:
		if b == '}' {
			if r.opts.AllowTrailingCommas {
				return r.closeObjectLike(true)
			}
			return false, r.errHere(ReasonTrailingCommaNotAllowedBeforeObjectEnd)
		}
		if b == '"' {
			r.tokenStart = r.consumed
			return r.consumePropertyName()
		}
		if b == '/' && r.opts.CommentHandling == CommentsAllow {
			return r.consumeSurfacedComment()
		}
		return false, r.errHere(ReasonExpectedStartOfPropertyNotFound)
	case frameSet, frameMap:
		if b == '}' {
			if r.opts.AllowTrailingCommas {
				return r.closeObjectLike(true)
			}
			return false, r.errHere(ReasonTrailingCommaNotAllowedBeforeObjectEnd)
		}
	case frameArray:
		if b == ']' {
			if r.opts.AllowTrailingCommas {
				return r.closeArrayLike(b)
			}
			return false, r.errHere(ReasonTrailingCommaNotAllowedBeforeArrayEnd)
		}
	case frameTuple:
		if b == ')' {
			if r.opts.AllowTrailingCommas {
				return r.closeArrayLike(b)
			}
			return false, r.errHere(ReasonTrailingCommaNotAllowedBeforeArrayEnd)
		}
	}
	return r.consumeValue(b)
}

// consumeMapEntryValue reads the value of a map entry whose arrow has
// already been consumed, clearing pendingValue once a real token lands.
func (r *Reader) consumeMapEntryValue(b byte) (bool, error) {
	idx := r.frames.depth() - 1
	ok, err := r.consumeValue(b)
	if ok && r.kind != KindComment {
		r.frames.frames[idx].pendingValue = false
	}
	return ok, err
}

// consumeMapArrow consumes the two-byte '=>' separator after a map key and
// then the entry's value in the same step.
func (r *Reader) consumeMapArrow() (bool, error) {
	r.tokenStart = r.consumed
	if r.consumed+1 >= len(r.buffer) {
		if !r.isFinalBlock {
			return false, nil
		}
		return false, r.errAt(ReasonFoundInvalidCharacter, r.consumed+1)
	}
	if r.buffer[r.consumed+1] != '>' {
		return false, r.errAt(ReasonFoundInvalidCharacter, r.consumed+1)
	}
	r.advance(2)
	top := r.frames.top()
	top.expectKey = false
	top.pendingValue = true
	if ok, err := r.skipWhitespaceAndComments(); !ok || err != nil {
		return ok, err
	}
	if r.consumed >= len(r.buffer) {
		if !r.isFinalBlock {
			return false, nil
		}
		return false, r.errHere(ReasonExpectedStartOfValueNotFound)
	}
	return r.consumeMapEntryValue(r.buffer[r.consumed])
}

// consumeValue reads any token legal in value position.
func (r *Reader) consumeValue(b byte) (bool, error) {
	r.tokenStart = r.consumed
	switch {
	case b == '"':
		return r.consumeStringToken(KindString)
	case b == '{':
		return r.consumeBrace()
	case b == '[':
		return r.openFrame(frameArray, KindStartArray, 1)
	case b == '(':
		return r.openFrame(frameTuple, KindStartArray, 1)
	case b == '-' || isDigit(b):
		return r.consumeNumber()
	case b == 't':
		return r.consumeKeyword(literalTrue, KindTrue)
	case b == 'f':
		return r.consumeKeyword(literalFalse, KindFalse)
	case b == 'n':
		return r.consumeKeyword(literalNull, KindNull)
	case b == 'N':
		return r.consumeKeyword(literalNaN, KindNumber)
	case b == 'I':
		return r.consumeKeyword(literalInfinity, KindNumber)
	case b == 'S':
		return r.consumeExplicitContainer(prefixSet, frameSet, KindStartSet)
	case b == 'M':
		return r.consumeExplicitContainer(prefixMap, frameMap, KindStartMap)
	case b == '@':
		return r.consumeTemporal()
	case b == '/':
		return r.consumeValueSlash()
	case b == 'b':
		return r.consumeBinary(false)
	case b == 'x':
		return r.consumeBinary(true)
	}
	return false, r.errHere(ReasonExpectedStartOfValueNotFound)
}

// openFrame pushes a container frame and emits its Start token. width is the
// token's byte length (1, or 4 for the Set{/Map{ prefixes).
func (r *Reader) openFrame(kind containerKind, tok TokenKind, width int) (bool, error) {
	if r.bits.depth >= r.opts.maxDepth() {
		if kind == frameArray || kind == frameTuple {
			return false, r.errHere(ReasonArrayDepthTooLarge)
		}
		return false, r.errHere(ReasonObjectDepthTooLarge)
	}
	r.setToken(tok, r.consumed, r.consumed+width, false)
	r.advance(width)
	objectLike := kind == frameObject
	r.bits.push(objectLike)
	r.frames.push(kind)
	r.inObject = objectLike
	r.isNotPrimitive = true
	return true, nil
}

// closeObjectLike handles '}' against the top frame. afterComma suppresses
// the missing-arrow check so that a permitted trailing comma can close a
// map whose frame has flipped back to key position.
func (r *Reader) closeObjectLike(afterComma bool) (bool, error) {
	top := r.frames.top()
	if top == nil {
		return false, r.errHere(ReasonMismatchedObjectArray)
	}
	var kind TokenKind
	switch top.kind {
	case frameObject:
		kind = KindEndObject
	case frameSet:
		kind = KindEndSet
	case frameMap:
		if !afterComma && top.expectKey && r.effectiveKind() != KindStartMap {
			return false, r.errHere(ReasonExpectedSeparatorAfterPropertyNameNotFound)
		}
		kind = KindEndMap
	default:
		return false, r.errHere(ReasonMismatchedObjectArray)
	}
	return r.emitClose(kind)
}

func (r *Reader) closeArrayLike(b byte) (bool, error) {
	top := r.frames.top()
	if top == nil {
		return false, r.errHere(ReasonMismatchedObjectArray)
	}
	if b == ']' && top.kind != frameArray {
		return false, r.errHere(ReasonMismatchedObjectArray)
	}
	if b == ')' && top.kind != frameTuple {
		return false, r.errHere(ReasonMismatchedObjectArray)
	}
	return r.emitClose(KindEndArray)
}

func (r *Reader) emitClose(kind TokenKind) (bool, error) {
	r.tokenStart = r.consumed
	r.setToken(kind, r.consumed, r.consumed+1, false)
	r.advance(1)
	r.frames.pop()
	r.inObject = r.bits.pop()
	r.isNotPrimitive = true
	return true, nil
}

// consumeStringToken scans a quoted string starting at the opening quote.
func (r *Reader) consumeStringToken(kind TokenKind) (bool, error) {
	start := r.consumed
	i := start + 1
	for i < len(r.buffer) {
		c := r.buffer[i]
		if c == '"' {
			r.setToken(kind, start+1, i, false)
			r.advance(i + 1 - start)
			return true, nil
		}
		if c == '\\' {
			return r.consumeEscapedString(kind, start, i)
		}
		if c < 0x20 {
			return false, r.errAt(ReasonInvalidCharacterWithinString, i)
		}
		i++
	}
	if r.isFinalBlock {
		return false, r.errAt(ReasonEndOfStringNotFound, i)
	}
	return false, nil
}

// consumeEscapedString is the slow path entered at the first backslash.
func (r *Reader) consumeEscapedString(kind TokenKind, start, i int) (bool, error) {
	for i < len(r.buffer) {
		c := r.buffer[i]
		switch {
		case c == '"':
			r.setToken(kind, start+1, i, true)
			r.advance(i + 1 - start)
			return true, nil
		case c == '\\':
			i++
			if i >= len(r.buffer) {
				return r.unterminatedString(i)
			}
			switch r.buffer[i] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				i++
			case 'u':
				i++
				for k := 0; k < 4; k++ {
					if i >= len(r.buffer) {
						return r.unterminatedString(i)
					}
					if !hexDigits.contains(r.buffer[i]) {
						return false, r.errAt(ReasonInvalidHexCharacterWithinString, i)
					}
					i++
				}
			default:
				return false, r.errAt(ReasonInvalidCharacterAfterEscapeWithinString, i)
			}
		case c < 0x20:
			return false, r.errAt(ReasonInvalidCharacterWithinString, i)
		default:
			i++
		}
	}
	return r.unterminatedString(i)
}

func (r *Reader) unterminatedString(i int) (bool, error) {
	if r.isFinalBlock {
		return false, r.errAt(ReasonEndOfStringNotFound, i)
	}
	return false, nil
}

// consumePropertyName reads a quoted name and its ':' separator as one
// token.
func (r *Reader) consumePropertyName() (bool, error) {
	ok, err := r.consumeStringToken(KindPropertyName)
	if !ok || err != nil {
		return ok, err
	}
	if ok, err := r.skipSeparatorGap(); !ok || err != nil {
		return ok, err
	}
	if r.consumed >= len(r.buffer) {
		if !r.isFinalBlock {
			return false, nil
		}
		return false, r.errHere(ReasonExpectedSeparatorAfterPropertyNameNotFound)
	}
	if r.buffer[r.consumed] != ':' {
		return false, r.errHere(ReasonExpectedSeparatorAfterPropertyNameNotFound)
	}
	r.advance(1)
	return true, nil
}

// consumeValueSlash disambiguates '/' in value position: a comment when
// comments are enabled and the next byte says so, a regex otherwise.
func (r *Reader) consumeValueSlash() (bool, error) {
	if r.opts.CommentHandling == CommentsAllow && r.isCommentStart() {
		return r.consumeSurfacedComment()
	}
	return r.consumeRegex()
}

func (r *Reader) isCommentStart() bool {
	if r.consumed+1 >= len(r.buffer) {
		return false
	}
	c := r.buffer[r.consumed+1]
	return c == '/' || c == '*'
}

func (r *Reader) setToken(kind TokenKind, valueStart, valueEnd int, escaped bool) {
	if kind == KindComment && r.kind != KindComment {
		r.previousKind = r.kind
	}
	r.kind = kind
	r.valueStart = valueStart
	r.valueEnd = valueEnd
	r.valueIsEscaped = escaped
}

// advance moves past n bytes that are known to contain no newlines.
func (r *Reader) advance(n int) {
	r.consumed += n
	r.posInLine += n
}

func (r *Reader) skipWhitespace() {
	for r.consumed < len(r.buffer) {
		switch r.buffer[r.consumed] {
		case ' ', '\t':
			r.consumed++
			r.posInLine++
		case '\n':
			r.consumed++
			r.line++
			r.posInLine = 0
		case '\r':
			if r.consumed+1 >= len(r.buffer) && !r.isFinalBlock {
				// possibly half of a CRLF; leave it for the next buffer
				return
			}
			r.consumed++
			if r.consumed < len(r.buffer) && r.buffer[r.consumed] == '\n' {
				r.consumed++
			}
			r.line++
			r.posInLine = 0
		default:
			return
		}
	}
}

func (r *Reader) errHere(reason ErrorReason) *SyntaxError {
	return r.errAt(reason, r.consumed)
}

func (r *Reader) errAt(reason ErrorReason, index int) *SyntaxError {
	col := r.posInLine + (index - r.consumed)
	return &SyntaxError{Reason: reason, Pos: Pos{Line: r.line + 1, Col: col + 1}}
}
