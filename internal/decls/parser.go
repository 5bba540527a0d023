package decls

import (
	"errors"
	"strconv"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/types"
)

// parser turns one type expression into a types.Type:
//
//	type := name | '*' type | '[' [int] ']' type | 'fn' '(' [type {',' type}] ')' type | '?' type
type parser struct {
	b     *Builder
	lx    *lexer
	tok   token.Token
	tokID token.ID
}

// ParseType parses src, which starts at offset base of file.
func (b *Builder) ParseType(src string, file source.FileID, base uint32) (types.Type, error) {
	p := &parser{b: b, lx: newLexer(src, file, base)}
	p.advance()
	if p.tok.Kind == token.EOF {
		return types.Invalid, errorf(diag.SynExpectType, p.tok.Span, "empty type expression")
	}
	ty, err := p.parseType()
	if err != nil {
		return types.Invalid, err
	}
	if p.tok.Kind != token.EOF {
		return types.Invalid, errorf(diag.SynTrailingTokens, p.tok.Span, "unexpected %q after type", p.tok.Text)
	}
	return ty, nil
}

func (p *parser) advance() {
	p.tok = p.lx.next()
	p.tokID = p.b.Tokens.Add(p.tok)
}

func (p *parser) expect(kind token.Kind) error {
	if p.tok.Kind != kind {
		code := diag.SynUnexpectedToken
		if p.tok.Kind == token.EOF {
			code = diag.SynUnclosedDelimiter
		}
		return errorf(code, p.tok.Span, "expected %q, found %q", kind.String(), p.describe())
	}
	p.advance()
	return nil
}

func (p *parser) describe() string {
	if p.tok.Kind == token.EOF {
		return "end of type"
	}
	return p.tok.Text
}

func (p *parser) parseType() (types.Type, error) {
	tab := p.b.Types
	tok, tokID := p.tok, p.tokID
	switch tok.Kind {
	case token.Star:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return types.Invalid, err
		}
		return tab.Pointer(elem, tokID), nil

	case token.Question:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return types.Invalid, err
		}
		return tab.Optional(elem, tokID), nil

	case token.LBracket:
		p.advance()
		size := ast.NoExprID
		if p.tok.Kind == token.IntLit {
			if _, err := strconv.ParseUint(p.tok.Text, 10, 32); err != nil {
				return types.Invalid, errorf(diag.SynBadArrayLength, p.tok.Span, "array length %s out of range", p.tok.Text)
			}
			size = p.b.Exprs.NewLiteral(p.tok.Span, ast.ExprLitInt, p.b.Strings.Intern(p.tok.Text))
			p.advance()
		}
		if err := p.expect(token.RBracket); err != nil {
			return types.Invalid, err
		}
		elem, err := p.parseType()
		if err != nil {
			return types.Invalid, err
		}
		return tab.Array(elem, size, !size.IsValid(), tokID), nil

	case token.KwFn:
		p.advance()
		if err := p.expect(token.LParen); err != nil {
			return types.Invalid, err
		}
		var params []types.Type
		for p.tok.Kind != token.RParen {
			if len(params) > 0 {
				if err := p.expect(token.Comma); err != nil {
					return types.Invalid, err
				}
			}
			param, err := p.parseType()
			if err != nil {
				return types.Invalid, err
			}
			params = append(params, param)
		}
		p.advance()
		result, err := p.parseType()
		if err != nil {
			return types.Invalid, err
		}
		return tab.Function(result, params, tokID), nil

	case token.Ident:
		p.advance()
		ty, err := tab.Resolve(tok.Text, tokID)
		if err != nil {
			code := diag.SemaUnknownType
			if errors.Is(err, types.ErrReservedName) {
				code = diag.SemaReservedName
			}
			return types.Invalid, errorf(code, tok.Span, "unknown type %q", tok.Text)
		}
		return ty, nil

	case token.EOF:
		return types.Invalid, errorf(diag.SynExpectType, tok.Span, "expected a type, found end of type")
	default:
		return types.Invalid, errorf(diag.SynExpectType, tok.Span, "expected a type, found %q", tok.Text)
	}
}

// arrayLen evaluates the integer literal lengths the parser creates.
func arrayLen(exprs *ast.Exprs, strs *source.Interner) types.ArrayLenFunc {
	return func(id ast.ExprID) (uint64, bool) {
		lit, ok := exprs.Literal(id)
		if !ok || lit.Kind != ast.ExprLitInt {
			return 0, false
		}
		text, ok := strs.Lookup(lit.Value)
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseUint(text, 10, 64)
		return n, err == nil
	}
}
