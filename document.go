// Package rdn provides the high-level surface over the rdnparser tokenizer:
// one-shot validation, and a Document holding an indexed metadata table of
// the token stream for random-access replay.
package rdn

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/rdnformat/rdn/rdnparser"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// TokenMeta is one row of the document's metadata table.
type TokenMeta struct {
	Kind   rdnparser.TokenKind
	Start  int // offset of the first content byte in the document data
	Length int

	// HasComplexChildren marks strings and property names containing
	// escapes, so duplicate-property checks know to unescape before
	// comparing. For KindBinary it carries the hex-encoding marker.
	HasComplexChildren bool

	Depth int
}

// Document is the parsed metadata table over a byte buffer. The buffer is
// borrowed; it must stay alive and unmodified for the document's lifetime.
type Document struct {
	data []byte
	rows []TokenMeta
}

// Options aliases the tokenizer options for the high-level entry points.
type Options = rdnparser.ReaderOptions

// Parse drives the tokenizer over data (a complete document; a UTF-8 BOM is
// stripped) and builds the metadata table. Errors are *ParseError values
// carrying the path of the last token read before the failure.
func Parse(data []byte, opts Options) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	d := &Document{data: data}

	r := rdnparser.NewReader(data, true, rdnparser.NewReaderState(opts))
	var path pathTracker
	for {
		ok, err := r.Read()
		if err != nil {
			return nil, &ParseError{Path: path.String(), Err: err.(*rdnparser.SyntaxError)}
		}
		if !ok {
			break
		}
		d.rows = append(d.rows, TokenMeta{
			Kind:               r.TokenKind(),
			Start:              r.ValueStartIndex(),
			Length:             len(r.ValueSpan()),
			HasComplexChildren: r.ValueIsEscaped(),
			Depth:              r.CurrentDepth(),
		})
		path.step(r)
	}
	return d, nil
}

// Valid reports whether data is a single syntactically valid RDN value.
func Valid(data []byte) bool {
	return Check(data) == nil
}

// Check validates data and returns the first error, or nil.
func Check(data []byte) error {
	_, err := Parse(data, Options{})
	return err
}

// Tokens returns the metadata rows in document order.
func (d *Document) Tokens() []TokenMeta { return d.rows }

// At returns row i.
func (d *Document) At(i int) TokenMeta { return d.rows[i] }

// Len returns the number of rows.
func (d *Document) Len() int { return len(d.rows) }

// Text returns the content bytes of row i, sliced from the document data.
func (d *Document) Text(i int) []byte {
	row := d.rows[i]
	return d.data[row.Start : row.Start+row.Length]
}

// pathTracker maintains the path of the cursor while the builder drains the
// reader, for error enrichment.
type pathTracker struct {
	segs []pathSeg
}

type pathSeg struct {
	name     string // last property name seen, when inside an object
	index    int    // element index otherwise
	inObject bool
}

func (p *pathTracker) step(r *rdnparser.Reader) {
	switch r.TokenKind() {
	case rdnparser.KindPropertyName:
		if len(p.segs) > 0 {
			top := &p.segs[len(p.segs)-1]
			top.name = string(r.ValueSpan())
			top.inObject = true
		}
	case rdnparser.KindStartObject, rdnparser.KindStartArray,
		rdnparser.KindStartSet, rdnparser.KindStartMap:
		p.segs = append(p.segs, pathSeg{index: -1})
	case rdnparser.KindEndObject, rdnparser.KindEndArray,
		rdnparser.KindEndSet, rdnparser.KindEndMap:
		if len(p.segs) > 0 {
			p.segs = p.segs[:len(p.segs)-1]
		}
		p.bumpValue()
	case rdnparser.KindComment:
		// transparent
	default:
		p.bumpValue()
	}
}

func (p *pathTracker) bumpValue() {
	if len(p.segs) == 0 {
		return
	}
	top := &p.segs[len(p.segs)-1]
	if !top.inObject {
		top.index++
	}
}

func (p *pathTracker) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, seg := range p.segs {
		if seg.inObject {
			sb.WriteString(".")
			sb.WriteString(seg.name)
		} else if seg.index >= 0 {
			sb.WriteString("[")
			sb.WriteString(strconv.Itoa(seg.index))
			sb.WriteString("]")
		}
	}
	return sb.String()
}
