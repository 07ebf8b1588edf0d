package rdnparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	kind  TokenKind
	value string
}

func readAll(input string, opts ReaderOptions) ([]tok, error) {
	r := NewReader([]byte(input), true, NewReaderState(opts))
	var result []tok
	for {
		ok, err := r.Read()
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, tok{r.TokenKind(), string(r.ValueSpan())})
	}
}

func TestReadTokens(t *testing.T) {
	testOpts := func(opts ReaderOptions, input string, expected ...tok) func(*testing.T) {
		return func(t *testing.T) {
			got, err := readAll(input, opts)
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		}
	}
	test := func(input string, expected ...tok) func(*testing.T) {
		return testOpts(ReaderOptions{}, input, expected...)
	}

	// primitives
	t.Run("", test(`123`, tok{KindNumber, "123"}))
	t.Run("", test(`-0.5e+10`, tok{KindNumber, "-0.5e+10"}))
	t.Run("", test(`0`, tok{KindNumber, "0"}))
	t.Run("", test(`NaN`, tok{KindNumber, "NaN"}))
	t.Run("", test(`Infinity`, tok{KindNumber, "Infinity"}))
	t.Run("", test(`-Infinity`, tok{KindNumber, "-Infinity"}))
	t.Run("", test(`true`, tok{KindTrue, "true"}))
	t.Run("", test(`false`, tok{KindFalse, "false"}))
	t.Run("", test(`null`, tok{KindNull, "null"}))
	t.Run("", test(`"hello"`, tok{KindString, "hello"}))
	t.Run("", test(`""`, tok{KindString, ""}))
	t.Run("", test(`"a\nb"`, tok{KindString, `a\nb`}))
	t.Run("", test(`12345678901234567890n`, tok{KindBigInteger, "12345678901234567890"}))
	t.Run("", test(`-42n`, tok{KindBigInteger, "-42"}))

	// objects and arrays
	t.Run("", test(`{"a":1, "b": [2, 3]}`,
		tok{KindStartObject, "{"},
		tok{KindPropertyName, "a"},
		tok{KindNumber, "1"},
		tok{KindPropertyName, "b"},
		tok{KindStartArray, "["},
		tok{KindNumber, "2"},
		tok{KindNumber, "3"},
		tok{KindEndArray, "]"},
		tok{KindEndObject, "}"}))
	t.Run("", test(`{}`, tok{KindStartObject, "{"}, tok{KindEndObject, "}"}))
	t.Run("", test(`[]`, tok{KindStartArray, "["}, tok{KindEndArray, "]"}))

	// brace disambiguation
	t.Run("", test(`{1, 2, 3}`,
		tok{KindStartSet, "{"},
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindNumber, "3"},
		tok{KindEndSet, "}"}))
	t.Run("", test(`{"k" => 1, "v" => 2}`,
		tok{KindStartMap, "{"},
		tok{KindString, "k"},
		tok{KindNumber, "1"},
		tok{KindString, "v"},
		tok{KindNumber, "2"},
		tok{KindEndMap, "}"}))
	t.Run("", test(`{"a", "b"}`,
		tok{KindStartSet, "{"},
		tok{KindString, "a"},
		tok{KindString, "b"},
		tok{KindEndSet, "}"}))
	t.Run("", test(`{1 => "one"}`,
		tok{KindStartMap, "{"},
		tok{KindNumber, "1"},
		tok{KindString, "one"},
		tok{KindEndMap, "}"}))
	t.Run("", test(`{{1 => 2} => 3}`,
		tok{KindStartMap, "{"},
		tok{KindStartMap, "{"},
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindEndMap, "}"},
		tok{KindNumber, "3"},
		tok{KindEndMap, "}"}))

	// explicit container prefixes and tuples
	t.Run("", test(`Set{1, 2}`,
		tok{KindStartSet, "Set{"},
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindEndSet, "}"}))
	t.Run("", test(`Map{}`, tok{KindStartMap, "Map{"}, tok{KindEndMap, "}"}))
	t.Run("", test(`Map{"k" => [1]}`,
		tok{KindStartMap, "Map{"},
		tok{KindString, "k"},
		tok{KindStartArray, "["},
		tok{KindNumber, "1"},
		tok{KindEndArray, "]"},
		tok{KindEndMap, "}"}))
	t.Run("", test(`(1, "two", @2024-01-15T10:30:00Z)`,
		tok{KindStartArray, "("},
		tok{KindNumber, "1"},
		tok{KindString, "two"},
		tok{KindDateTime, "2024-01-15T10:30:00Z"},
		tok{KindEndArray, ")"}))
	t.Run("", test(`()`, tok{KindStartArray, "("}, tok{KindEndArray, ")"}))

	// temporal literals
	t.Run("", test(`@P3Y6M`, tok{KindDuration, "P3Y6M"}))
	t.Run("", test(`@PT1.5S`, tok{KindDuration, "PT1.5S"}))
	t.Run("", test(`@14:30:05.123`, tok{KindTimeOnly, "14:30:05.123"}))
	t.Run("", test(`@2024-01-15T10:30:00+01:00`, tok{KindDateTime, "2024-01-15T10:30:00+01:00"}))
	t.Run("", test(`@1718236800000`, tok{KindDateTime, "1718236800000"}))

	// regex and binary
	t.Run("", test(`/ab\/c/gi`, tok{KindRegex, `ab\/c/gi`}))
	t.Run("", test(`/x/`, tok{KindRegex, "x/"}))
	t.Run("", test(`b"SGVsbG8="`, tok{KindBinary, "SGVsbG8="}))
	t.Run("", test(`b""`, tok{KindBinary, ""}))
	t.Run("", test(`x"0aFF"`, tok{KindBinary, "0aFF"}))

	// comments
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsSkip},
		`[1, /* c */ 2]`,
		tok{KindStartArray, "["},
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindEndArray, "]"}))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		`[1, /* c */ 2]`,
		tok{KindStartArray, "["},
		tok{KindNumber, "1"},
		tok{KindComment, " c "},
		tok{KindNumber, "2"},
		tok{KindEndArray, "]"}))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		"// hi\n1",
		tok{KindComment, " hi"},
		tok{KindNumber, "1"}))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		`//`,
		tok{KindComment, ""}))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsSkip},
		"{ // open\n \"a\": /* mid */ 1 } // done",
		tok{KindStartObject, "{"},
		tok{KindPropertyName, "a"},
		tok{KindNumber, "1"},
		tok{KindEndObject, "}"}))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		"{ /* a */ \"k\": 1 }",
		tok{KindStartObject, "{"},
		tok{KindComment, " a "},
		tok{KindPropertyName, "k"},
		tok{KindNumber, "1"},
		tok{KindEndObject, "}"}))

	// trailing commas
	t.Run("", testOpts(ReaderOptions{AllowTrailingCommas: true},
		`[1, 2,]`,
		tok{KindStartArray, "["},
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindEndArray, "]"}))
	t.Run("", testOpts(ReaderOptions{AllowTrailingCommas: true},
		`{"a": 1,}`,
		tok{KindStartObject, "{"},
		tok{KindPropertyName, "a"},
		tok{KindNumber, "1"},
		tok{KindEndObject, "}"}))
	t.Run("", testOpts(ReaderOptions{AllowTrailingCommas: true},
		`Map{1 => 2,}`,
		tok{KindStartMap, "Map{"},
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindEndMap, "}"}))

	// multiple top-level values
	t.Run("", testOpts(ReaderOptions{AllowMultipleValues: true},
		"1 2 \"x\"\n[3]",
		tok{KindNumber, "1"},
		tok{KindNumber, "2"},
		tok{KindString, "x"},
		tok{KindStartArray, "["},
		tok{KindNumber, "3"},
		tok{KindEndArray, "]"}))
}

func TestReadErrors(t *testing.T) {
	testOpts := func(opts ReaderOptions, input string, reason ErrorReason) func(*testing.T) {
		return func(t *testing.T) {
			_, err := readAll(input, opts)
			require.Error(t, err)
			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, reason, serr.Reason, "input %q gave %q", input, serr.Reason)
		}
	}
	test := func(input string, reason ErrorReason) func(*testing.T) {
		return testOpts(ReaderOptions{}, input, reason)
	}

	t.Run("", test(``, ReasonExpectedRdnTokens))
	t.Run("", test(`   `, ReasonExpectedRdnTokens))
	t.Run("", test(`01`, ReasonInvalidLeadingZeroInNumber))
	t.Run("", test(`-x`, ReasonRequiredDigitNotFoundAfterSign))
	t.Run("", test(`1.`, ReasonRequiredDigitNotFoundAfterDecimal))
	t.Run("", test(`1.x`, ReasonRequiredDigitNotFoundAfterDecimal))
	t.Run("", test(`1e`, ReasonRequiredDigitNotFoundAfterSign))
	t.Run("", test(`1e+`, ReasonRequiredDigitNotFoundAfterSign))
	t.Run("", test(`123abc`, ReasonExpectedEndOfDigitNotFound))
	t.Run("", test(`"abc`, ReasonEndOfStringNotFound))
	t.Run("", test(`"a`+"\x01"+`b"`, ReasonInvalidCharacterWithinString))
	t.Run("", test(`"a\x"`, ReasonInvalidCharacterAfterEscapeWithinString))
	t.Run("", test(`"a\u12G4"`, ReasonInvalidHexCharacterWithinString))
	t.Run("", test(`tru`, ReasonExpectedStartOfValueNotFound))
	t.Run("", test(`truth`, ReasonExpectedStartOfValueNotFound))
	t.Run("", test(`truefalse`, ReasonFoundInvalidCharacter))
	t.Run("", test(`[}`, ReasonExpectedStartOfValueNotFound))
	t.Run("", test(`[1}`, ReasonMismatchedObjectArray))
	t.Run("", test(`(1]`, ReasonMismatchedObjectArray))
	t.Run("", test(`{1, 2]`, ReasonMismatchedObjectArray))
	t.Run("", test(`]`, ReasonExpectedStartOfValueNotFound))
	t.Run("", test(`[1`, ReasonZeroDepthAtEnd))
	t.Run("", test(`{"a"`, ReasonExpectedSeparatorAfterPropertyNameNotFound))
	t.Run("", test(`{"a" 1}`, ReasonExpectedSeparatorAfterPropertyNameNotFound))
	t.Run("", test(`{x: 1}`, ReasonExpectedStartOfValueNotFound))
	t.Run("", test(`[1 2]`, ReasonFoundInvalidCharacter))
	t.Run("", test(`[1,]`, ReasonTrailingCommaNotAllowedBeforeArrayEnd))
	t.Run("", test(`(1,)`, ReasonTrailingCommaNotAllowedBeforeArrayEnd))
	t.Run("", test(`{"a": 1,}`, ReasonTrailingCommaNotAllowedBeforeObjectEnd))
	t.Run("", test(`{"a": 1, 2}`, ReasonExpectedStartOfPropertyNotFound))
	t.Run("", test(`{1, 2,}`, ReasonTrailingCommaNotAllowedBeforeObjectEnd))
	t.Run("", test(`1 2`, ReasonExpectedEndAfterSingleRdn))
	t.Run("", test(`@x`, ReasonFoundInvalidCharacter))
	t.Run("", test(`@P`, ReasonFoundInvalidCharacter))
	t.Run("", test(`@`, ReasonFoundInvalidCharacter))
	t.Run("", test(`//`, ReasonFoundInvalidCharacter))
	t.Run("", test(`/a`, ReasonEndOfStringNotFound))
	t.Run("", test(`/a/x`, ReasonFoundInvalidCharacter))
	t.Run("", test(`b"QQ="`, ReasonFoundInvalidCharacter))
	t.Run("", test(`b"Q!Q="`, ReasonInvalidCharacterWithinString))
	t.Run("", test(`x"0aF"`, ReasonFoundInvalidCharacter))
	t.Run("", test(`x"0g"`, ReasonInvalidCharacterWithinString))
	t.Run("", test(`Map{1}`, ReasonExpectedSeparatorAfterPropertyNameNotFound))
	t.Run("", test(`Map{1 => }`, ReasonExpectedStartOfValueNotFound))
	t.Run("", test(`Map{1 = 2}`, ReasonFoundInvalidCharacter))
	t.Run("", test(`1 //x`, ReasonFoundInvalidCharacter))

	t.Run("", testOpts(ReaderOptions{MaxDepth: 4}, `[[[[[1]]]]]`, ReasonArrayDepthTooLarge))
	t.Run("", testOpts(ReaderOptions{MaxDepth: 4}, `{"a":{"b":{"c":{"d":{}}}}}`, ReasonObjectDepthTooLarge))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		`/* open`, ReasonEndOfCommentNotFound))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		"// a\u2028b\n1", ReasonUnexpectedEndOfLineSeparator))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		`1 /`, ReasonUnexpectedEndOfDataWhileReadingComment))
	t.Run("", testOpts(ReaderOptions{CommentHandling: CommentsAllow},
		`1 /x`, ReasonInvalidCharacterAtStartOfComment))
	t.Run("", testOpts(ReaderOptions{AllowMultipleValues: true},
		`1, 2`, ReasonFoundInvalidCharacter))
}

func TestNeedMoreData(t *testing.T) {
	// every prefix that ends mid-token must report NeedMoreData with all
	// observable state rolled back
	test := func(input string, expectedTokens int, expectedConsumed int) func(*testing.T) {
		return func(t *testing.T) {
			r := NewReader([]byte(input), false, NewReaderState(ReaderOptions{}))
			n := 0
			for {
				ok, err := r.Read()
				require.NoError(t, err)
				if !ok {
					break
				}
				n++
			}
			assert.Equal(t, expectedTokens, n)
			assert.Equal(t, expectedConsumed, r.BytesConsumed())
		}
	}

	t.Run("", test(`"`, 0, 0))
	t.Run("", test(`"abc`, 0, 0))
	t.Run("", test(`tru`, 0, 0))
	t.Run("", test(`12`, 0, 0))
	t.Run("", test(`12.`, 0, 0))
	t.Run("", test(`@2024`, 0, 0))
	t.Run("", test(`/ab\`, 0, 0))
	t.Run("", test(`/ab/g`, 0, 0)) // more flags may follow
	t.Run("", test(`b"SGV`, 0, 0))
	t.Run("", test(`Se`, 0, 0))
	t.Run("", test(`[1, `, 2, 2))
	t.Run("", test(`{"a": `, 2, 5))
	t.Run("", test(`[1]`, 3, 3)) // complete; next read is a clean no
}

// streaming equivalence: feeding any chunking of the input through the
// resume-with-state protocol must give the same token stream as one shot
func TestStreamingEquivalence(t *testing.T) {
	inputs := []string{
		`{"a": 1, "b": [true, null, "x\ny"], "c": Set{1, 2}, "d": Map{"k" => @P1Y}}`,
		`(1, "two", -3.5e2, b"QUJD")`,
		`[@12:30:45, @1700000000000, 12345678901234567890n]`,
		"  [ 1 ,\t2 ]  ",
	}
	for _, input := range inputs {
		expected, err := readAll(input, ReaderOptions{})
		require.NoError(t, err, input)
		for chunk := 1; chunk <= len(input); chunk++ {
			got := readStreaming(t, input, chunk)
			assert.Equal(t, expected, got, "input %q chunk %d", input, chunk)
		}
	}
}

func readStreaming(t *testing.T, input string, chunk int) []tok {
	data := []byte(input)
	state := NewReaderState(ReaderOptions{})
	var result []tok
	var pending []byte
	pos := 0
	for {
		end := pos + chunk
		final := false
		if end >= len(data) {
			end = len(data)
			final = true
		}
		buf := append(append([]byte{}, pending...), data[pos:end]...)
		pos = end
		r := NewReader(buf, final, state)
		for {
			ok, err := r.Read()
			require.NoError(t, err)
			if !ok {
				break
			}
			result = append(result, tok{r.TokenKind(), string(r.ValueSpan())})
		}
		pending = buf[r.BytesConsumed():]
		state = r.CurrentState()
		if final {
			return result
		}
	}
}

func TestBraceDefaultsToObjectAtBufferEnd(t *testing.T) {
	// indeterminate lookahead defaults to object, which keeps the common
	// case resumable
	r := NewReader([]byte(`{`), false, NewReaderState(ReaderOptions{}))
	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindStartObject, r.TokenKind())
}

func TestPositionTracking(t *testing.T) {
	r := NewReader([]byte("[1,\n 2]"), true, NewReaderState(ReaderOptions{}))
	for i := 0; i < 3; i++ {
		ok, err := r.Read()
		require.NoError(t, err)
		require.True(t, ok)
	}
	// the token "2" sits on line 2, after one leading space
	assert.Equal(t, KindNumber, r.TokenKind())
	assert.Equal(t, Pos{Line: 2, Col: 3}, r.Position())

	_, err := readAll("[1,\nx]", ReaderOptions{})
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, Pos{Line: 2, Col: 1}, serr.Pos)
}

func TestDeepNestingBeyondSixtyFour(t *testing.T) {
	depth := 100
	input := strings.Repeat("[", depth) + "1" + strings.Repeat("]", depth)
	toks, err := readAll(input, ReaderOptions{MaxDepth: 128})
	require.NoError(t, err)
	assert.Len(t, toks, 2*depth+1)

	input = strings.Repeat("Set{", depth) + strings.Repeat("}", depth)
	toks, err = readAll(input, ReaderOptions{MaxDepth: 128})
	require.NoError(t, err)
	assert.Equal(t, KindStartSet, toks[0].kind)
	assert.Equal(t, KindEndSet, toks[len(toks)-1].kind)
}

func TestCurrentDepth(t *testing.T) {
	r := NewReader([]byte(`{"a": [1]}`), true, NewReaderState(ReaderOptions{}))
	depths := []int{0, 1, 1, 2, 1, 0}
	kinds := []TokenKind{KindStartObject, KindPropertyName, KindStartArray, KindNumber, KindEndArray, KindEndObject}
	for i, want := range depths {
		ok, err := r.Read()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, kinds[i], r.TokenKind())
		assert.Equal(t, want, r.CurrentDepth(), "token %d (%s)", i, r.TokenKind())
	}
}
