package core

import (
	"bytes"
	"strconv"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenBoolean          TokenType = iota // true, false
	TokenInteger                           // 123
	TokenReal                              // 3.14
	TokenString                            // (hello)
	TokenHexString                         // <48656C6C6F>
	TokenName                              // /Type
	TokenNull                              // null
	TokenArrayStart                        // [
	TokenArrayEnd                          // ]
	TokenDictStart                         // <<
	TokenDictEnd                           // >>
	TokenIndirectRef                       // 1 0 R
	TokenIndirectObjStart                  // 1 0 obj
	TokenIndirectObjEnd                    // endobj, or the dictionary end before stream
	TokenStreamObjStart                    // stream<EOL>
)

// String returns the name of the token type
func (t TokenType) String() string {
	switch t {
	case TokenBoolean:
		return "Boolean"
	case TokenInteger:
		return "Integer"
	case TokenReal:
		return "Real"
	case TokenString:
		return "String"
	case TokenHexString:
		return "HexString"
	case TokenName:
		return "Name"
	case TokenNull:
		return "Null"
	case TokenArrayStart:
		return "ArrayStart"
	case TokenArrayEnd:
		return "ArrayEnd"
	case TokenDictStart:
		return "DictStart"
	case TokenDictEnd:
		return "DictEnd"
	case TokenIndirectRef:
		return "IndirectRef"
	case TokenIndirectObjStart:
		return "IndirectObjStart"
	case TokenIndirectObjEnd:
		return "IndirectObjEnd"
	case TokenStreamObjStart:
		return "StreamObjStart"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token. Only the fields relevant to Type are set.
type Token struct {
	Type TokenType
	Pos  int64 // absolute byte offset of the token's first byte

	Value      []byte  // String, HexString and Name payloads, already decoded
	Int        int64   // Integer
	Real       float64 // Real
	Bool       bool    // Boolean
	Number     int     // IndirectRef, IndirectObjStart
	Generation int     // IndirectRef, IndirectObjStart
	DataOffset int64   // StreamObjStart: first byte of the raw stream content
}

// Lexer tokenizes a byte window of a PDF file. The window is expected to
// start on an object boundary. Lexing stops after the first endobj or
// stream keyword, so one Lexer never covers more than one indirect object.
type Lexer struct {
	buf    []byte
	base   int64
	i      int
	tokens []Token
	open   int // obj keywords not yet matched by endobj/stream
}

// NewLexer creates a lexer for buf, which begins at byte offset base of the file.
func NewLexer(buf []byte, base int64) *Lexer {
	return &Lexer{buf: buf, base: base}
}

// Tokenize is shorthand for NewLexer(buf, base).Tokenize().
func Tokenize(buf []byte, base int64) ([]Token, error) {
	return NewLexer(buf, base).Tokenize()
}

// Tokens returns the tokens produced so far.
func (l *Lexer) Tokens() []Token {
	return l.tokens
}

// HasUnbalancedIndirectObj reports whether an obj keyword was seen without
// the endobj (or stream) that closes it.
func (l *Lexer) HasUnbalancedIndirectObj() bool {
	return l.open != 0
}

// Tokenize runs the lexer over the whole window and returns the tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.i < len(l.buf) {
		b := l.buf[l.i]

		switch {
		case isWhitespace(b):
			l.i++
		case b == '%':
			l.skipComment()
		case isNumberByte(b):
			if err := l.readNumber(); err != nil {
				return nil, err
			}
		case b == '/':
			if err := l.readName(); err != nil {
				return nil, err
			}
		case b == '<':
			if err := l.readAngleOpen(); err != nil {
				return nil, err
			}
		case b == '>':
			if err := l.readDictEnd(); err != nil {
				return nil, err
			}
		case b == '(':
			if err := l.readString(); err != nil {
				return nil, err
			}
		case b == '[':
			l.emit(Token{Type: TokenArrayStart, Pos: l.offset(l.i)})
			l.i++
		case b == ']':
			l.emit(Token{Type: TokenArrayEnd, Pos: l.offset(l.i)})
			l.i++
		case isRegular(b):
			done, err := l.readKeyword()
			if err != nil {
				return nil, err
			}
			if done {
				return l.tokens, nil
			}
		default:
			return nil, offsetErr(ErrInvalidObjectHead, l.offset(l.i), "byte %q", b)
		}
	}

	return l.tokens, nil
}

func (l *Lexer) offset(i int) int64 {
	return l.base + int64(i)
}

func (l *Lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

// skipComment skips from % up to, but not including, the end of line.
func (l *Lexer) skipComment() {
	for l.i < len(l.buf) && l.buf[l.i] != '\r' && l.buf[l.i] != '\n' {
		l.i++
	}
}

// readNumber reads a run of number bytes as an integer, or failing that a real.
func (l *Lexer) readNumber() error {
	start := l.i
	for l.i < len(l.buf) && isNumberByte(l.buf[l.i]) {
		l.i++
	}
	text := string(l.buf[start:l.i])

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		l.emit(Token{Type: TokenInteger, Int: n, Pos: l.offset(start)})
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		l.emit(Token{Type: TokenReal, Real: f, Pos: l.offset(start)})
		return nil
	}
	if l.i == len(l.buf) && isNumberPrefix(text) {
		return offsetErr(ErrFinishInObject, l.offset(start), "number %q", text)
	}
	return offsetErr(ErrParseNumber, l.offset(start), "%q", text)
}

// isNumberPrefix reports whether more digits could still make text a
// number, as with a lone sign or point.
func isNumberPrefix(text string) bool {
	_, err := strconv.ParseFloat(text+"0", 64)
	return err == nil
}

// readName reads a name object /Type
func (l *Lexer) readName() error {
	start := l.i
	l.i++ // '/'

	var buf bytes.Buffer
	for l.i < len(l.buf) && isRegular(l.buf[l.i]) {
		b := l.buf[l.i]
		// #xx escapes a byte by its hex code
		if b == '#' && l.i+2 < len(l.buf) && isHexDigit(l.buf[l.i+1]) && isHexDigit(l.buf[l.i+2]) {
			buf.WriteByte(hexValue(l.buf[l.i+1])<<4 | hexValue(l.buf[l.i+2]))
			l.i += 3
			continue
		}
		buf.WriteByte(b)
		l.i++
	}

	for _, b := range buf.Bytes() {
		if b < 0x20 || b > 0x7e {
			return offsetErr(ErrParseName, l.offset(start), "non printable byte %#02x", b)
		}
	}

	l.emit(Token{Type: TokenName, Value: buf.Bytes(), Pos: l.offset(start)})
	return nil
}

// readAngleOpen reads either << or a hex string <48656C6C6F>.
func (l *Lexer) readAngleOpen() error {
	start := l.i
	if l.i+1 >= len(l.buf) {
		return offsetErr(ErrFinishInObject, l.offset(start), "after '<'")
	}
	if l.buf[l.i+1] == '<' {
		l.emit(Token{Type: TokenDictStart, Pos: l.offset(start)})
		l.i += 2
		return nil
	}

	var digits []byte
	for l.i++; ; l.i++ {
		if l.i >= len(l.buf) {
			return offsetErr(ErrFinishInObject, l.offset(start), "in hex string")
		}
		b := l.buf[l.i]
		if b == '>' {
			l.i++
			break
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return offsetErr(ErrParseHexString, l.offset(l.i), "byte %q", b)
		}
		digits = append(digits, b)
	}

	// an odd trailing digit is padded with 0
	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}
	value := make([]byte, len(digits)/2)
	for k := range value {
		value[k] = hexValue(digits[2*k])<<4 | hexValue(digits[2*k+1])
	}

	l.emit(Token{Type: TokenHexString, Value: value, Pos: l.offset(start)})
	return nil
}

func (l *Lexer) readDictEnd() error {
	start := l.i
	if l.i+1 >= len(l.buf) {
		return offsetErr(ErrFinishInObject, l.offset(start), "after '>'")
	}
	if l.buf[l.i+1] != '>' {
		return offsetErr(ErrUnexpectedByte, l.offset(l.i+1), "got %q, want '>'", l.buf[l.i+1])
	}
	l.emit(Token{Type: TokenDictEnd, Pos: l.offset(start)})
	l.i += 2
	return nil
}

// readString reads a literal string (hello). Unescaped parentheses must
// balance; escape sequences are decoded here.
func (l *Lexer) readString() error {
	start := l.i
	depth := 0

	var buf bytes.Buffer
	for l.i++; ; l.i++ {
		if l.i >= len(l.buf) {
			return offsetErr(ErrFinishInObject, l.offset(start), "in literal string")
		}

		b := l.buf[l.i]
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			if depth == 0 {
				l.i++
				l.emit(Token{Type: TokenString, Value: buf.Bytes(), Pos: l.offset(start)})
				return nil
			}
			depth--
			buf.WriteByte(b)
		case '\\':
			if l.i+1 >= len(l.buf) {
				return offsetErr(ErrFinishInObject, l.offset(start), "in literal string")
			}
			l.i++
			l.readEscape(&buf)
		default:
			buf.WriteByte(b)
		}
	}
}

// readEscape decodes the escape sequence whose first byte after the
// backslash is at l.i, leaving l.i on its last byte.
func (l *Lexer) readEscape(buf *bytes.Buffer) {
	next := l.buf[l.i]
	switch next {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '(', ')', '\\':
		buf.WriteByte(next)
	case '\r':
		// line continuation
		if l.i+1 < len(l.buf) && l.buf[l.i+1] == '\n' {
			l.i++
		}
	case '\n':
	case '0', '1', '2', '3', '4', '5', '6', '7':
		val := next - '0'
		for k := 0; k < 2 && l.i+1 < len(l.buf) && isOctalDigit(l.buf[l.i+1]); k++ {
			l.i++
			val = val<<3 | (l.buf[l.i] - '0')
		}
		buf.WriteByte(val)
	default:
		// unknown escape: the backslash is dropped
		buf.WriteByte(next)
	}
}

var keywords = []string{"true", "false", "null", "R", "obj", "endobj", "stream"}

// readKeyword reads a run of regular bytes and handles it as a keyword.
// It reports done when lexing must stop (after endobj or stream).
func (l *Lexer) readKeyword() (bool, error) {
	start := l.i
	for l.i < len(l.buf) && isRegular(l.buf[l.i]) {
		l.i++
	}
	word := string(l.buf[start:l.i])
	pos := l.offset(start)

	switch word {
	case "true", "false":
		l.emit(Token{Type: TokenBoolean, Bool: word == "true", Pos: pos})
	case "null":
		l.emit(Token{Type: TokenNull, Pos: pos})
	case "R":
		num, gen, first, err := l.popObjectHeader(pos, word)
		if err != nil {
			return false, err
		}
		l.emit(Token{Type: TokenIndirectRef, Number: num, Generation: gen, Pos: first})
	case "obj":
		num, gen, first, err := l.popObjectHeader(pos, word)
		if err != nil {
			return false, err
		}
		l.emit(Token{Type: TokenIndirectObjStart, Number: num, Generation: gen, Pos: first})
		l.open++
	case "endobj":
		l.emit(Token{Type: TokenIndirectObjEnd, Pos: pos})
		l.open--
		return true, nil
	case "stream":
		data, err := l.streamDataStart(pos)
		if err != nil {
			return false, err
		}
		// the dictionary before stream closes the object header
		l.emit(Token{Type: TokenIndirectObjEnd, Pos: pos})
		l.open--
		l.emit(Token{Type: TokenStreamObjStart, DataOffset: l.offset(data), Pos: pos})
		return true, nil
	default:
		if l.i == len(l.buf) && isKeywordPrefix(word) {
			return false, offsetErr(ErrFinishInObject, pos, "keyword %q", word)
		}
		return false, offsetErr(ErrUndefinedKeyword, pos, "%q", word)
	}
	return false, nil
}

// popObjectHeader replaces the two trailing Integer tokens that precede
// R or obj. The object number must be positive and the generation not negative.
func (l *Lexer) popObjectHeader(pos int64, keyword string) (int, int, int64, error) {
	n := len(l.tokens)
	if n < 2 {
		return 0, 0, 0, offsetErr(ErrInvalidIndirectRef, pos, "%s needs two preceding integers", keyword)
	}
	numTok, genTok := l.tokens[n-2], l.tokens[n-1]
	l.tokens = l.tokens[:n-2]

	if numTok.Type != TokenInteger || genTok.Type != TokenInteger {
		return 0, 0, 0, offsetErr(ErrInvalidIndirectRef, pos, "%s preceded by %v %v", keyword, numTok.Type, genTok.Type)
	}
	if numTok.Int <= 0 || genTok.Int < 0 {
		return 0, 0, 0, offsetErr(ErrInvalidIndirectRef, pos, "%d %d %s", numTok.Int, genTok.Int, keyword)
	}
	return int(numTok.Int), int(genTok.Int), numTok.Pos, nil
}

// streamDataStart checks the line boundary after the stream keyword, which
// must be LF or CR LF, and returns the index of the first content byte.
func (l *Lexer) streamDataStart(pos int64) (int, error) {
	if l.i >= len(l.buf) {
		return 0, offsetErr(ErrFinishInObject, pos, "no line boundary after stream")
	}
	switch l.buf[l.i] {
	case '\n':
		return l.i + 1, nil
	case '\r':
		if l.i+1 >= len(l.buf) {
			return 0, offsetErr(ErrFinishInObject, pos, "no line boundary after stream")
		}
		if l.buf[l.i+1] == '\n' {
			return l.i + 2, nil
		}
		return 0, offsetErr(ErrUnexpectedByte, l.offset(l.i), "bare CR after stream")
	default:
		return 0, offsetErr(ErrUnexpectedByte, l.offset(l.i), "got %q after stream, want EOL", l.buf[l.i])
	}
}

func isKeywordPrefix(word string) bool {
	for _, k := range keywords {
		if len(word) < len(k) && k[:len(word)] == word {
			return true
		}
	}
	return false
}

// Helper functions

func isWhitespace(b byte) bool {
	// PDF whitespace: space, tab, LF, CR, FF, null
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isRegular(b byte) bool {
	return !isWhitespace(b) && !isDelimiter(b)
}

func isNumberByte(b byte) bool {
	return isDigit(b) || b == '+' || b == '-' || b == '.'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	if b >= '0' && b <= '9' {
		return b - '0'
	}
	if b >= 'a' && b <= 'f' {
		return b - 'a' + 10
	}
	if b >= 'A' && b <= 'F' {
		return b - 'A' + 10
	}
	return 0
}
