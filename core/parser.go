package core

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfstruct/logging"
)

// Parser builds one Object from the tokens of a byte window.
type Parser struct {
	tokens []Token
	i      int
	end    int64 // offset just past the window, for errors at exhaustion
}

// NewParser tokenizes buf, which begins at byte offset base of the file.
// It fails with ErrIndirectObjMismatch when the window opens an indirect
// object without closing it, which means the window is too small rather
// than the bytes being wrong.
func NewParser(buf []byte, base int64) (*Parser, error) {
	if len(buf) == 0 {
		return nil, offsetErr(ErrEmptyBuffer, base, "")
	}

	lexer := NewLexer(buf, base)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, fmt.Errorf("cannot tokenize: %w", err)
	}
	if lexer.HasUnbalancedIndirectObj() {
		return nil, offsetErr(ErrIndirectObjMismatch, base, "")
	}

	return &Parser{tokens: tokens, end: base + int64(len(buf))}, nil
}

// Parse returns the single object the tokens describe. Tokens left over
// after that object are an error.
func (p *Parser) Parse() (Object, error) {
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, offsetErr(ErrUnexpectedToken, tok.Pos, "%v after complete object", tok.Type)
	}
	return obj, nil
}

// awaitingHeader reports whether the window ended before an "N G obj"
// header was complete: no tokens at all, or leading tokens that are not a
// header and never reached endobj or stream.
func (p *Parser) awaitingHeader() bool {
	if len(p.tokens) == 0 {
		return true
	}
	if p.tokens[0].Type == TokenIndirectObjStart {
		return false
	}
	switch p.tokens[len(p.tokens)-1].Type {
	case TokenIndirectObjEnd, TokenStreamObjStart:
		return false
	}
	return true
}

func (p *Parser) peek() (Token, bool) {
	if p.i >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.i], true
}

func (p *Parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.i++
	}
	return tok, ok
}

func (p *Parser) parseObject() (Object, error) {
	tok, ok := p.next()
	if !ok {
		return nil, offsetErr(ErrNoToken, p.end, "")
	}

	switch tok.Type {
	case TokenBoolean:
		return Bool{Value: tok.Bool, Pos: tok.Pos}, nil
	case TokenInteger:
		return Int{Value: tok.Int, Pos: tok.Pos}, nil
	case TokenReal:
		return Real{Value: tok.Real, Pos: tok.Pos}, nil
	case TokenName:
		return Name{Value: string(tok.Value), Pos: tok.Pos}, nil
	case TokenString:
		return String{Value: tok.Value, Pos: tok.Pos}, nil
	case TokenHexString:
		return String{Value: tok.Value, Hex: true, Pos: tok.Pos}, nil
	case TokenNull:
		return Null{Pos: tok.Pos}, nil
	case TokenIndirectRef:
		return IndirectRef{Number: tok.Number, Generation: tok.Generation, Pos: tok.Pos}, nil
	case TokenArrayStart:
		return p.parseArray(tok)
	case TokenDictStart:
		return p.parseDict(tok)
	case TokenIndirectObjStart:
		return p.parseIndirectObject(tok)
	default:
		return nil, offsetErr(ErrUnexpectedToken, tok.Pos, "%v", tok.Type)
	}
}

// parseArray parses a PDF array "[obj1 obj2 ...]".
func (p *Parser) parseArray(start Token) (Object, error) {
	arr := Array{Pos: start.Pos}
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, offsetErr(ErrNoToken, p.end, "array opened at %d is not closed", start.Pos)
		}
		if tok.Type == TokenArrayEnd {
			p.i++
			return arr, nil
		}

		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, obj)
	}
}

// parseDict parses a PDF dictionary "<< /Key value ... >>".
func (p *Parser) parseDict(start Token) (Object, error) {
	dict := Dict{Entries: make(map[string]Object), Pos: start.Pos}
	for {
		tok, ok := p.next()
		if !ok {
			return nil, offsetErr(ErrNoToken, p.end, "dictionary opened at %d is not closed", start.Pos)
		}
		if tok.Type == TokenDictEnd {
			return dict, nil
		}
		if tok.Type != TokenName {
			return nil, offsetErr(ErrUnexpectedToken, tok.Pos, "%v where a dictionary key is expected", tok.Type)
		}

		key := string(tok.Value)
		if _, ok := p.peek(); !ok {
			return nil, offsetErr(ErrUnexpectedToken, tok.Pos, "key /%s has no value", key)
		}
		value, err := p.parseObject()
		if err != nil {
			return nil, err
		}

		if _, dup := dict.Entries[key]; dup {
			// the later value wins
			logging.Logger().Debug("duplicate dictionary key",
				slog.String("key", key), slog.Int64("offset", tok.Pos))
		}
		dict.Entries[key] = value
	}
}

// parseIndirectObject parses the payload after "N G obj", the closing
// endobj and, when the payload is a stream dictionary, the stream start.
func (p *Parser) parseIndirectObject(start Token) (Object, error) {
	payload, err := p.parseObject()
	if err != nil {
		return nil, err
	}

	end, ok := p.next()
	if !ok {
		return nil, offsetErr(ErrNoToken, p.end, "object %d %d has no endobj", start.Number, start.Generation)
	}
	if end.Type != TokenIndirectObjEnd {
		return nil, offsetErr(ErrUnexpectedToken, end.Pos, "%v where endobj is expected", end.Type)
	}

	tok, ok := p.peek()
	if !ok || tok.Type != TokenStreamObjStart {
		return IndirectObject{
			Number:     start.Number,
			Generation: start.Generation,
			Object:     payload,
			Pos:        start.Pos,
		}, nil
	}
	p.i++

	dict, ok := payload.(Dict)
	if !ok {
		return nil, offsetErr(ErrInvalidStreamObj, start.Pos, "stream follows %v, not a dictionary", payload.Type())
	}
	if !dict.Has("Length") {
		return nil, offsetErr(ErrInvalidStreamObj, start.Pos, "stream dictionary has no /Length")
	}

	return Stream{
		Number:     start.Number,
		Generation: start.Generation,
		Dict:       dict,
		DataOffset: tok.DataOffset,
		Pos:        start.Pos,
	}, nil
}
