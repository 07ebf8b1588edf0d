package rdnparser

// ReaderState is an opaque, copyable snapshot of a Reader: position,
// container stack, token context and options. It is what survives across
// buffer boundaries; a caller suspending on NeedMoreData stores
// CurrentState() and hands it to NewReader together with a buffer holding
// the unconsumed tail plus the newly arrived bytes.
type ReaderState struct {
	options ReaderOptions

	lineNumber         int
	bytePositionInLine int

	tokenKind    TokenKind
	previousKind TokenKind

	inObject                   bool
	isNotPrimitive             bool
	valueIsEscaped             bool
	trailingCommaBeforeComment bool

	bitStack bitStack
	frames   frameStack
}

// NewReaderState returns the initial state for a fresh parse with the given
// options.
func NewReaderState(options ReaderOptions) ReaderState {
	return ReaderState{options: options}
}

func (s ReaderState) Options() ReaderOptions { return s.options }
