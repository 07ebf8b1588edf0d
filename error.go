package rdn

import (
	"fmt"

	"github.com/rdnformat/rdn/rdnparser"
)

// ParseError wraps a tokenizer error with the path of the document builder's
// cursor at the time of failure.
type ParseError struct {
	Path string
	Err  *rdnparser.SyntaxError
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rdn syntax error at %s: %s", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
