// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/creachadair/jdom/storage"
	"github.com/creachadair/jdom/value"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// state is the grammar production a Parser expects next.
type state byte

const (
	stValue     state = iota // any value
	stObjFirst               // after "{": a key or "}"
	stObjKey                 // after ",": a key
	stObjColon               // after a key: ":"
	stObjNext                // after a member value: "," or "}"
	stArrFirst               // after "[": a value or "]"
	stArrValue               // after ",": a value
	stArrNext                // after an element: "," or "]"
	stString                 // in a string
	stEscape                 // after "\" in a string
	stHex                    // in the digits of a \u escape
	stSurrogate              // after a high surrogate escape, expecting "\"
	stSurrogateU             // after a high surrogate escape and "\", expecting "u"
	stUTF8                   // in a multi-byte UTF-8 sequence
	stNumSign                // after "-"
	stNumZero                // after a leading "0"
	stNumInt                 // in integer digits
	stNumDot                 // after "."
	stNumFrac                // in fraction digits
	stNumExp                 // after "e" or "E"
	stNumExpSign             // after an exponent sign
	stNumExpDigits           // in exponent digits
	stLiteral                // in true, false, or null
	stComment                // after "/"
	stLineComment            // in a line comment
	stBlockComment           // in a block comment
	stBlockStar              // in a block comment, after "*"
	stDone                   // after a complete top-level value
	stFailed                 // after an error
)

// A frame is an array or object under construction.
type frame struct {
	val value.Value
	arr *value.Array
	obj *value.Object
	key int // offset of the pending member key in the key buffer
}

// A Parser is an incremental JSON parser. It consumes input in chunks of
// any size, and builds a value.Value tree whose storage comes from the
// storage pointer given when the parser was constructed.
//
// The parser keeps its entire state in the Parser value, so it can stop at
// the end of any chunk, including in the middle of a token, and continue
// when more input is written. The result does not depend on how the input
// is divided into chunks.
//
// Once a Parser reports an error, it remains failed: all further calls
// report the same error until the parser is Reset.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	sp   storage.Pointer
	opts *Options
	log  log.Logger

	state  state
	resume state // state to restore at the end of a comment
	stack  []frame
	slease storage.Lease
	tok    buffer  // text of the current string or number
	keys   buffer  // pending member keys, innermost last
	dst    *buffer // destination of string contents
	isKey  bool    // the current string is a member key
	result value.Value
	err    *Error

	// String decoding.
	hexN   int  // hex digits read in the current \u escape
	code   rune // value of the current \u escape
	hi     rune // pending high surrogate, or 0
	need   int  // continuation bytes remaining in a UTF-8 sequence
	lo, up byte // bounds on the next continuation byte

	// Number lexing.
	neg      bool
	isFloat  bool
	overflow bool
	mant     uint64

	// Literals.
	lit    string
	litPos int

	// Input position.
	off       int64 // offset of the first byte of the current chunk
	line      int
	lineStart int64
	start     Location // start of the current top-level value
	last      Location // location of the last complete top-level value
}

// NewParser constructs a Parser that builds values using sp. A nil opts
// provides default options. The caller must ensure the resource of sp
// remains valid while the parser and its results are in use.
func NewParser(sp storage.Pointer, opts *Options) *Parser {
	p := &Parser{
		sp:   sp,
		opts: opts,
		log:  opts.logger(),
		tok:  buffer{sp: opts.temp()},
		keys: buffer{sp: opts.temp()},
		line: 1,
	}
	return p
}

// Reset discards the state of p, including any partial or unclaimed
// result, and prepares it to parse a new document using sp.
func (p *Parser) Reset(sp storage.Pointer) {
	p.Close()
	*p = Parser{
		sp:   sp,
		opts: p.opts,
		log:  p.log,
		tok:  buffer{sp: p.opts.temp()},
		keys: buffer{sp: p.opts.temp()},
		line: 1,
	}
}

// Close releases the partial tree, any unclaimed result, and the internal
// buffers of p. After Close, p must be Reset before it is used again.
func (p *Parser) Close() {
	p.discard()
	p.tok.release()
	p.keys.release()
	p.dropStack()
}

// Done reports whether p has parsed a complete top-level value.
func (p *Parser) Done() bool { return p.state == stDone }

// Depth reports the current nesting depth of p.
func (p *Parser) Depth() int { return len(p.stack) }

// Offset reports the number of input bytes p has consumed.
func (p *Parser) Offset() int64 { return p.off }

// Err reports the error that caused p to fail, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// Location reports the location of the most recent complete top-level
// value parsed by p.
func (p *Parser) Location() Location { return p.last }

// Write consumes data as the next chunk of input. If data completes the
// value, any remaining bytes must be whitespace (or comments, if enabled).
// Write always consumes all of data unless it reports an error.
func (p *Parser) Write(data []byte) (int, error) { return p.write(data, false) }

// WriteSome consumes data as the next chunk of input, but stops once a
// complete top-level value has been parsed. It returns the number of bytes
// consumed. This permits parsing a stream of values: after each value, call
// Result to claim it and continue with the unconsumed input.
//
// A top-level number is complete only when the byte following it is seen,
// and that byte is not consumed.
func (p *Parser) WriteSome(data []byte) (int, error) { return p.write(data, true) }

// Finish reports the end of input. A top-level number still in progress is
// completed. If the input does not contain a complete value, Finish reports
// an error of kind Incomplete.
func (p *Parser) Finish() error {
	if p.err != nil {
		return p.err
	}
	switch p.state {
	case stDone:
		return nil
	case stNumZero, stNumInt, stNumFrac, stNumExpDigits:
		if len(p.stack) == 0 {
			return p.finishNumber(0)
		}
	case stLineComment:
		if p.resume == stDone {
			p.state = stDone
			return nil
		}
	}
	return p.fail(Incomplete, 0, nil, "unexpected end of input")
}

// Result returns the value parsed by p, and transfers its ownership to the
// caller. After a successful call to Result, p is ready to parse another
// value from the same input stream.
func (p *Parser) Result() (value.Value, error) {
	if p.err != nil {
		return value.Value{}, p.err
	} else if p.state != stDone {
		return value.Value{}, &Error{
			Kind:    Incomplete,
			Offset:  p.off,
			LineCol: p.lineCol(0),
			Message: "no complete value",
		}
	}
	v := p.result
	p.result = value.Value{}
	p.state = stValue
	return v, nil
}

func (p *Parser) lineCol(i int) LineCol {
	return LineCol{Line: p.line, Column: int(p.off + int64(i) - p.lineStart)}
}

func (p *Parser) mark(i int) Location {
	lc := p.lineCol(i)
	pos := p.off + int64(i)
	return Location{Span: Span{Pos: pos, End: pos}, First: lc, Last: lc}
}

// newline records a line break at offset i of the current chunk.
func (p *Parser) newline(i int) {
	p.line++
	p.lineStart = p.off + int64(i) + 1
}

// fail puts p into the failed state with an error at offset i of the
// current chunk, and releases any partial result.
func (p *Parser) fail(kind ErrorKind, i int, err error, msg string, args ...any) error {
	p.err = &Error{
		Kind:    kind,
		Offset:  p.off + int64(i),
		LineCol: p.lineCol(i),
		Message: fmt.Sprintf(msg, args...),
		err:     err,
	}
	p.state = stFailed
	p.discard()
	level.Debug(p.log).Log("msg", "parse failed", "offset", p.err.Offset, "kind", kind, "err", p.err.Message)
	return p.err
}

// failAlloc reports a failed allocation at offset i.
func (p *Parser) failAlloc(i int, err error) error {
	kind := OutOfMemory
	if errorIsSizeLimit(err) {
		kind = SizeLimit
	}
	return p.fail(kind, i, err, "%v", err)
}

func (p *Parser) syntax(i int, msg string, args ...any) error {
	return p.fail(Syntax, i, nil, msg, args...)
}

// discard releases the partial tree and any unclaimed result.
func (p *Parser) discard() {
	for i := range p.stack {
		p.stack[i].val.Release()
		p.stack[i] = frame{}
	}
	p.stack = p.stack[:0]
	p.result.Release()
	p.keys.reset()
	p.tok.reset()
}

func (p *Parser) dropStack() {
	storage.Free(p.slease)
	p.stack, p.slease = nil, storage.Lease{}
}

// push adds a new container frame, enforcing the depth limit.
func (p *Parser) push(i int, f frame) error {
	if len(p.stack) >= p.opts.maxDepth() {
		f.val.Release()
		return p.fail(TooDeep, i, nil, "nesting depth exceeds %d", p.opts.maxDepth())
	}
	if len(p.stack) == cap(p.stack) {
		n := min(max(2*cap(p.stack), 8), p.opts.maxDepth())
		stack, lease, err := storage.Make[frame](p.opts.temp(), n)
		if err != nil {
			f.val.Release()
			return p.failAlloc(i, err)
		}
		stack = stack[:copy(stack, p.stack)]
		clear(p.stack)
		storage.Free(p.slease)
		p.stack, p.slease = stack, lease
	}
	p.stack = append(p.stack, f)
	return nil
}

// emit adds a complete value v, ending at offset i, to its container, or
// records it as the result.
func (p *Parser) emit(i int, v value.Value) error {
	n := len(p.stack)
	if n == 0 {
		p.result = v
		p.last = p.start
		p.last.End = p.off + int64(i)
		p.last.Last = p.lineCol(i)
		p.state = stDone
		level.Debug(p.log).Log("msg", "parsed value", "kind", v.Kind(), "offset", p.last.Pos, "end", p.last.End)
		return nil
	}
	f := &p.stack[n-1]
	var err error
	if f.arr != nil {
		err = f.arr.Push(v)
		p.state = stArrNext
	} else {
		err = f.obj.SetBytes(p.keys.bytes()[f.key:], v)
		p.keys.truncate(f.key)
		p.state = stObjNext
	}
	if err != nil {
		v.Release()
		return p.failAlloc(i, err)
	}
	return nil
}

// endContainer completes the innermost container at offset i.
func (p *Parser) endContainer(i int) error {
	n := len(p.stack)
	v := p.stack[n-1].val
	p.stack[n-1] = frame{}
	p.stack = p.stack[:n-1]
	return p.emit(i+1, v)
}

// beginValue starts a value whose first byte is c, at offset i.
func (p *Parser) beginValue(i int, c byte) error {
	if len(p.stack) == 0 {
		p.start = p.mark(i)
	}
	switch c {
	case '{':
		v, err := value.NewObject(p.sp)
		if err != nil {
			return p.failAlloc(i, err)
		}
		obj, _ := v.Obj()
		if err := p.push(i, frame{val: v, obj: obj}); err != nil {
			return err
		}
		p.state = stObjFirst
	case '[':
		v, err := value.NewArray(p.sp)
		if err != nil {
			return p.failAlloc(i, err)
		}
		arr, _ := v.Arr()
		if err := p.push(i, frame{val: v, arr: arr}); err != nil {
			return err
		}
		p.state = stArrFirst
	case '"':
		p.beginString(false)
	case '-':
		p.beginNumber(true)
		p.state = stNumSign
		return p.numByte(i, c)
	case '0':
		p.beginNumber(false)
		p.state = stNumZero
		return p.numByte(i, c)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		p.beginNumber(false)
		p.mant = uint64(c - '0')
		p.state = stNumInt
		return p.numByte(i, c)
	case 't':
		p.lit, p.litPos, p.state = "true", 1, stLiteral
	case 'f':
		p.lit, p.litPos, p.state = "false", 1, stLiteral
	case 'n':
		p.lit, p.litPos, p.state = "null", 1, stLiteral
	default:
		return p.syntax(i, "unexpected %s, expected a value", quoteByte(c))
	}
	return nil
}

func (p *Parser) beginString(isKey bool) {
	p.isKey = isKey
	if isKey {
		p.stack[len(p.stack)-1].key = p.keys.len()
		p.dst = &p.keys
	} else {
		p.tok.reset()
		p.dst = &p.tok
	}
	p.hi = 0
	p.state = stString
}

func (p *Parser) endString(i int) error {
	if p.isKey {
		p.state = stObjColon
		return nil
	}
	v, err := value.NewStringBytes(p.tok.bytes(), p.sp)
	if err != nil {
		return p.failAlloc(i, err)
	}
	p.tok.reset()
	return p.emit(i+1, v)
}

func (p *Parser) beginNumber(neg bool) {
	p.tok.reset()
	p.neg, p.isFloat, p.overflow, p.mant = neg, false, false, 0
}

func (p *Parser) numByte(i int, c byte) error {
	if err := p.tok.writeByte(c); err != nil {
		return p.failAlloc(i, err)
	}
	return nil
}

// addDigit accumulates a decimal digit of the integer part.
func (p *Parser) addDigit(c byte) {
	d := uint64(c - '0')
	if p.mant > (math.MaxUint64-d)/10 {
		p.overflow = true
	} else {
		p.mant = p.mant*10 + d
	}
}

// finishNumber completes the current number at offset i, which is the
// offset of the byte following it.
func (p *Parser) finishNumber(i int) error {
	var v value.Value
	switch {
	case !p.isFloat && !p.overflow && !p.neg && p.mant <= math.MaxInt64:
		v = value.NewInt64(int64(p.mant), p.sp)
	case !p.isFloat && !p.overflow && !p.neg:
		v = value.NewUint64(p.mant, p.sp)
	case !p.isFloat && !p.overflow && p.mant <= 1<<63:
		v = value.NewInt64(int64(-p.mant), p.sp) // wraps correctly for -2^63
	default:
		f, err := strconv.ParseFloat(string(p.tok.bytes()), 64)
		if err != nil {
			return p.fail(NumberRange, i-p.tok.len(), strconv.ErrRange, "number %s exceeds float64", p.tok.bytes())
		}
		v = value.NewFloat64(f, p.sp)
	}
	p.tok.reset()
	return p.emit(i, v)
}

// decodeHex applies a complete \u escape at offset i.
func (p *Parser) decodeHex(i int) error {
	r := p.code
	switch {
	case p.hi != 0:
		hi := p.hi
		p.hi = 0
		if r >= 0xdc00 && r <= 0xdfff {
			return p.putRune(i, utf16.DecodeRune(hi, r))
		} else if !p.opts.invalidUTF16() {
			return p.syntax(i, "unpaired surrogate \\u%04x", hi)
		}
		if err := p.putRune(i, utf8.RuneError); err != nil {
			return err
		}
		return p.decodeHex(i) // r is not part of a pair
	case r >= 0xd800 && r <= 0xdbff:
		p.hi = r
		p.state = stSurrogate
		return nil
	case r >= 0xdc00 && r <= 0xdfff:
		if !p.opts.invalidUTF16() {
			return p.syntax(i, "unpaired surrogate \\u%04x", r)
		}
		r = utf8.RuneError
	}
	return p.putRune(i, r)
}

func (p *Parser) putRune(i int, r rune) error {
	if err := p.dst.writeRune(r); err != nil {
		return p.failAlloc(i, err)
	}
	p.state = stString
	return nil
}

// beginUTF8 starts a multi-byte UTF-8 sequence whose lead byte is c.
// It reports false if c cannot begin a valid sequence.
func (p *Parser) beginUTF8(c byte) bool {
	p.lo, p.up = 0x80, 0xbf
	switch {
	case c >= 0xc2 && c <= 0xdf:
		p.need = 1
	case c == 0xe0:
		p.need, p.lo = 2, 0xa0
	case c == 0xed:
		p.need, p.up = 2, 0x9f // excludes surrogates
	case c >= 0xe1 && c <= 0xef:
		p.need = 2
	case c == 0xf0:
		p.need, p.lo = 3, 0x90
	case c >= 0xf1 && c <= 0xf3:
		p.need = 3
	case c == 0xf4:
		p.need, p.up = 3, 0x8f
	default:
		return false
	}
	return true
}

// write implements Write and WriteSome.
func (p *Parser) write(data []byte, some bool) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.step(data, some)
	p.off += int64(n)
	return n, err
}

// step consumes bytes of data, and returns the number consumed. In case of
// error it returns the offset of the offending byte.
func (p *Parser) step(data []byte, some bool) (int, error) {
	i := 0
	for i < len(data) {
		if some && p.state == stDone {
			return i, nil
		}
		c := data[i]
		switch p.state {
		case stValue, stArrFirst, stArrValue, stObjFirst, stObjKey, stObjColon, stObjNext, stArrNext, stDone:
			if isSpace(c) {
				for i < len(data) && isSpace(data[i]) {
					if data[i] == '\n' {
						p.newline(i)
					}
					i++
				}
				continue
			} else if c == '/' && p.opts.comments() {
				p.resume, p.state = p.state, stComment
				i++
				continue
			}
			if err := p.structural(i, c); err != nil {
				return i, err
			}
			i++

		case stString:
			j := i
			for j < len(data) {
				b := data[j]
				if b >= utf8.RuneSelf {
					if r, n := utf8.DecodeRune(data[j:]); r != utf8.RuneError || n > 1 {
						j += n
						continue
					}
					break
				} else if b < ' ' || b == '"' || b == '\\' {
					break
				}
				j++
			}
			if j > i {
				if err := p.dst.write(data[i:j]); err != nil {
					return i, p.failAlloc(i, err)
				}
				i = j
				continue
			}
			switch {
			case c == '"':
				if err := p.endString(i); err != nil {
					return i, err
				}
			case c == '\\':
				p.state = stEscape
			case c < ' ':
				return i, p.syntax(i, "control character %s in string", quoteByte(c))
			default:
				if !p.beginUTF8(c) {
					return i, p.syntax(i, "invalid UTF-8 byte %s in string", quoteByte(c))
				}
				if err := p.dst.writeByte(c); err != nil {
					return i, p.failAlloc(i, err)
				}
				p.state = stUTF8
			}
			i++

		case stUTF8:
			if c < p.lo || c > p.up {
				return i, p.syntax(i, "invalid UTF-8 byte %s in string", quoteByte(c))
			}
			if err := p.dst.writeByte(c); err != nil {
				return i, p.failAlloc(i, err)
			}
			p.lo, p.up = 0x80, 0xbf
			if p.need--; p.need == 0 {
				p.state = stString
			}
			i++

		case stEscape:
			var b byte
			switch c {
			case '"', '\\', '/':
				b = c
			case 'b':
				b = '\b'
			case 'f':
				b = '\f'
			case 'n':
				b = '\n'
			case 'r':
				b = '\r'
			case 't':
				b = '\t'
			case 'u':
				p.hexN, p.code, p.state = 0, 0, stHex
				i++
				continue
			default:
				return i, p.syntax(i, "invalid escape %s", quoteByte(c))
			}
			if err := p.dst.writeByte(b); err != nil {
				return i, p.failAlloc(i, err)
			}
			p.state = stString
			i++

		case stHex:
			d, ok := hexValue(c)
			if !ok {
				return i, p.syntax(i, "invalid hex digit %s in escape", quoteByte(c))
			}
			p.code = p.code<<4 | d
			if p.hexN++; p.hexN == 4 {
				if err := p.decodeHex(i); err != nil {
					return i, err
				}
			}
			i++

		case stSurrogate, stSurrogateU:
			want := byte('\\')
			if p.state == stSurrogateU {
				want = 'u'
			}
			if c == want {
				if p.state == stSurrogate {
					p.state = stSurrogateU
				} else {
					p.hexN, p.code, p.state = 0, 0, stHex
				}
				i++
				continue
			}
			if !p.opts.invalidUTF16() {
				return i, p.syntax(i, "unpaired surrogate \\u%04x", p.hi)
			}
			wasU := p.state == stSurrogateU
			p.hi = 0
			if err := p.putRune(i, utf8.RuneError); err != nil {
				return i, err
			}
			if wasU {
				p.state = stEscape // the "\" began some other escape
			}
			// Reprocess c in the new state.

		case stNumSign:
			switch {
			case c == '0':
				p.state = stNumZero
			case isDigit(c):
				p.addDigit(c)
				p.state = stNumInt
			default:
				return i, p.syntax(i, "unexpected %s, expected a digit", quoteByte(c))
			}
			if err := p.numByte(i, c); err != nil {
				return i, err
			}
			i++

		case stNumZero, stNumInt, stNumFrac, stNumExpDigits:
			if isDigit(c) {
				if p.state == stNumZero {
					return i, p.syntax(i, "leading zero in number")
				}
				j := i
				for j < len(data) && isDigit(data[j]) {
					if p.state == stNumInt {
						p.addDigit(data[j])
					}
					j++
				}
				if err := p.tok.write(data[i:j]); err != nil {
					return i, p.failAlloc(i, err)
				}
				i = j
				continue
			}
			switch {
			case c == '.' && (p.state == stNumZero || p.state == stNumInt):
				p.isFloat, p.state = true, stNumDot
			case (c == 'e' || c == 'E') && p.state != stNumExpDigits:
				p.isFloat, p.state = true, stNumExp
			default:
				if err := p.finishNumber(i); err != nil {
					return i, err
				}
				continue // reprocess c after the number
			}
			if err := p.numByte(i, c); err != nil {
				return i, err
			}
			i++

		case stNumDot, stNumExp, stNumExpSign:
			switch {
			case isDigit(c):
				if p.state == stNumDot {
					p.state = stNumFrac
				} else {
					p.state = stNumExpDigits
				}
			case (c == '+' || c == '-') && p.state == stNumExp:
				p.state = stNumExpSign
			default:
				return i, p.syntax(i, "unexpected %s, expected a digit", quoteByte(c))
			}
			if err := p.numByte(i, c); err != nil {
				return i, err
			}
			i++

		case stLiteral:
			if c != p.lit[p.litPos] {
				return i, p.syntax(i, "unexpected %s in literal %q", quoteByte(c), p.lit)
			}
			i++
			if p.litPos++; p.litPos == len(p.lit) {
				var v value.Value
				switch p.lit {
				case "true":
					v = value.NewBool(true, p.sp)
				case "false":
					v = value.NewBool(false, p.sp)
				default:
					v = value.NewNull(p.sp)
				}
				if err := p.emit(i, v); err != nil {
					return i - 1, err
				}
			}

		case stComment:
			switch c {
			case '/':
				p.state = stLineComment
			case '*':
				p.state = stBlockComment
			default:
				return i, p.syntax(i, "unexpected %s after \"/\"", quoteByte(c))
			}
			i++

		case stLineComment:
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				p.newline(i)
				p.state = p.resume
				i++
			}

		case stBlockComment, stBlockStar:
			if c == '/' && p.state == stBlockStar {
				p.state = p.resume
			} else if c == '*' {
				p.state = stBlockStar
			} else {
				if c == '\n' {
					p.newline(i)
				}
				p.state = stBlockComment
			}
			i++

		default:
			panic(fmt.Sprintf("jdom: invalid parser state %d", p.state))
		}
	}
	return i, nil
}

// structural handles a non-space byte c at offset i in a state between
// tokens.
func (p *Parser) structural(i int, c byte) error {
	switch p.state {
	case stValue:
		return p.beginValue(i, c)
	case stArrFirst, stArrValue:
		if c == ']' && (p.state == stArrFirst || p.opts.trailingCommas()) {
			return p.endContainer(i)
		}
		return p.beginValue(i, c)
	case stArrNext:
		switch c {
		case ',':
			p.state = stArrValue
			return nil
		case ']':
			return p.endContainer(i)
		}
		return p.syntax(i, "unexpected %s, expected \",\" or \"]\"", quoteByte(c))
	case stObjFirst, stObjKey:
		if c == '"' {
			p.beginString(true)
			return nil
		} else if c == '}' && (p.state == stObjFirst || p.opts.trailingCommas()) {
			return p.endContainer(i)
		}
		return p.syntax(i, "unexpected %s, expected a string key", quoteByte(c))
	case stObjColon:
		if c == ':' {
			p.state = stValue
			return nil
		}
		return p.syntax(i, "unexpected %s, expected \":\"", quoteByte(c))
	case stObjNext:
		switch c {
		case ',':
			p.state = stObjKey
			return nil
		case '}':
			return p.endContainer(i)
		}
		return p.syntax(i, "unexpected %s, expected \",\" or \"}\"", quoteByte(c))
	default: // stDone
		return p.syntax(i, "unexpected %s after value", quoteByte(c))
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func hexValue(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}

func quoteByte(c byte) string {
	if c >= ' ' && c < utf8.RuneSelf {
		return strconv.QuoteRune(rune(c))
	}
	return fmt.Sprintf("byte %#02x", c)
}
