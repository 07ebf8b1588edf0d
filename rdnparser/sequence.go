package rdnparser

// SequenceReader layers the single-buffer Reader over a sequence of byte
// segments. When the current segment ends mid-token it snapshots the reader
// state, copies the unconsumed tail together with the next segment into a
// straddle buffer, and re-attempts; tokens whose bytes came from more than
// one segment report HasValueSequence with one chunk per segment.
type SequenceReader struct {
	segments     [][]byte
	next         int // index of the first segment not yet part of the window
	isFinalBlock bool

	reader *Reader

	// window is the buffer the inner reader currently runs over: either a
	// segment aliased directly, or an owned straddle buffer.
	window     []byte
	boundaries []int // segment boundaries inside a straddle window
	base       int64 // absolute offset of window[0]
}

// NewSequenceReader creates a reader over segments. isFinalBlock tells the
// reader that no bytes follow the last segment.
func NewSequenceReader(segments [][]byte, isFinalBlock bool, state ReaderState) *SequenceReader {
	s := &SequenceReader{
		segments:     segments,
		isFinalBlock: isFinalBlock,
	}
	var first []byte
	if len(segments) > 0 {
		first = segments[0]
		s.next = 1
	}
	s.window = first
	s.reader = NewReader(first, s.windowIsFinal(), state)
	return s
}

func (s *SequenceReader) windowIsFinal() bool {
	return s.isFinalBlock && s.next >= len(s.segments)
}

// Read advances to the next token, transparently hopping segment
// boundaries. The (bool, error) contract matches Reader.Read; (false, nil)
// with all segments consumed is the clean end-of-input signal, and with a
// non-final sequence it means more segments are needed.
func (s *SequenceReader) Read() (bool, error) {
	for {
		ok, err := s.reader.Read()
		if err != nil {
			return false, err
		}
		if ok {
			s.markSequence()
			return true, nil
		}
		if s.next >= len(s.segments) {
			return false, nil
		}
		s.grow()
	}
}

// grow rebases the window onto the unconsumed tail plus the next segment.
func (s *SequenceReader) grow() {
	state := s.reader.CurrentState()
	consumed := s.reader.BytesConsumed()
	tail := s.window[consumed:]
	seg := s.segments[s.next]
	s.next++

	s.base += int64(consumed)
	if len(tail) == 0 {
		// nothing straddles; alias the segment directly
		s.window = seg
		s.boundaries = nil
	} else {
		w := make([]byte, 0, len(tail)+len(seg))
		w = append(w, tail...)
		w = append(w, seg...)
		// carry over boundaries still inside the tail
		var bounds []int
		for _, b := range s.boundaries {
			if b > consumed {
				bounds = append(bounds, b-consumed)
			}
		}
		bounds = append(bounds, len(tail))
		s.window = w
		s.boundaries = bounds
	}
	s.reader = NewReader(s.window, s.windowIsFinal(), state)
}

// markSequence flags a token whose bytes span a segment boundary and splits
// its value at each boundary.
func (s *SequenceReader) markSequence() {
	if len(s.boundaries) == 0 {
		return
	}
	r := s.reader
	start, end := r.valueStart, r.valueEnd
	var parts [][]byte
	prev := start
	for _, b := range s.boundaries {
		if b > start && b < end {
			parts = append(parts, s.window[prev:b])
			prev = b
		}
	}
	if parts == nil {
		return
	}
	parts = append(parts, s.window[prev:end])
	r.hasValueSequence = true
	r.valueSequence = parts
}

func (s *SequenceReader) TokenKind() TokenKind      { return s.reader.TokenKind() }
func (s *SequenceReader) ValueSpan() []byte         { return s.reader.ValueSpan() }
func (s *SequenceReader) ValueSequence() [][]byte   { return s.reader.ValueSequence() }
func (s *SequenceReader) HasValueSequence() bool    { return s.reader.HasValueSequence() }
func (s *SequenceReader) ValueIsEscaped() bool      { return s.reader.ValueIsEscaped() }
func (s *SequenceReader) CurrentDepth() int         { return s.reader.CurrentDepth() }
func (s *SequenceReader) Position() Pos             { return s.reader.Position() }
func (s *SequenceReader) CurrentState() ReaderState { return s.reader.CurrentState() }

// BytesConsumed is the absolute offset from the start of the sequence.
func (s *SequenceReader) BytesConsumed() int64 {
	return s.base + int64(s.reader.BytesConsumed())
}

// TokenStartIndex is the absolute offset of the token's first significant
// byte.
func (s *SequenceReader) TokenStartIndex() int64 {
	return s.base + int64(s.reader.TokenStartIndex())
}
