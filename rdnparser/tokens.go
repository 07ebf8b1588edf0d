package rdnparser

// TokenKind classifies the token most recently produced by Reader.Read.
type TokenKind byte

const (
	KindNone TokenKind = iota

	KindStartObject
	KindEndObject
	KindStartArray
	KindEndArray
	KindStartSet
	KindEndSet
	KindStartMap
	KindEndMap

	KindPropertyName
	KindString
	KindNumber
	KindBigInteger
	KindTrue
	KindFalse
	KindNull

	KindComment

	// KindDateTime covers both RFC3339-style bodies and bare Unix-epoch
	// millisecond bodies; the tokenizer slices, it does not range-check.
	KindDateTime
	KindTimeOnly
	KindDuration

	KindRegex
	KindBinary

	kindSentinel
)

func (k TokenKind) String() string {
	return kindToDescription[k]
}

var kindToDescription = map[TokenKind]string{
	KindNone:         "none",
	KindStartObject:  "start-object",
	KindEndObject:    "end-object",
	KindStartArray:   "start-array",
	KindEndArray:     "end-array",
	KindStartSet:     "start-set",
	KindEndSet:       "end-set",
	KindStartMap:     "start-map",
	KindEndMap:       "end-map",
	KindPropertyName: "property-name",
	KindString:       "string",
	KindNumber:       "number",
	KindBigInteger:   "big-integer",
	KindTrue:         "true",
	KindFalse:        "false",
	KindNull:         "null",
	KindComment:      "comment",
	KindDateTime:     "date-time",
	KindTimeOnly:     "time-only",
	KindDuration:     "duration",
	KindRegex:        "regex",
	KindBinary:       "binary",
}

func init() {
	// make sure we panic if a description isn't declared
	for k := KindNone; k != kindSentinel; k++ {
		if kindToDescription[k] == "" {
			panic("you have not updated kindToDescription")
		}
	}
}

// IsStartContainer reports whether k opens a container frame.
func (k TokenKind) IsStartContainer() bool {
	switch k {
	case KindStartObject, KindStartArray, KindStartSet, KindStartMap:
		return true
	}
	return false
}

// IsEndContainer reports whether k closes a container frame.
func (k TokenKind) IsEndContainer() bool {
	switch k {
	case KindEndObject, KindEndArray, KindEndSet, KindEndMap:
		return true
	}
	return false
}
