package sexpr

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/wakame-lang/sform/internal/ast"
	"github.com/wakame-lang/sform/internal/errors"
)

// Loader reads the contents of an included source file by path, resolved
// however the caller sees fit (relative to the including file, an embedded
// FS, ...). A nil Loader leaves `include` forms as literal ast.Include
// nodes instead of splicing them — expansion lives here, in the parser,
// rather than in the CLI driver.
type Loader func(path string) (string, error)

// Parser turns a token stream into internal/ast nodes via recursive
// descent — the grammar is fully parenthesized, so there is no operator
// precedence to resolve, only which keyword (if any) heads a form.
type Parser struct {
	toks   []Token
	pos    int
	file   string
	dir    string
	loader Loader
}

// NewParser lexes src fully upfront and prepares a Parser over it. file is
// used for diagnostics and to resolve relative `include` paths.
func NewParser(src, file string, loader Loader) (*Parser, error) {
	lx := NewLexer(src, file)
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return &Parser{toks: toks, file: file, dir: filepath.Dir(file), loader: loader}, nil
}

func (p *Parser) peek() Token { return p.toks[p.pos] }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	t := p.peek()
	if t.Type != tt {
		return Token{}, p.errf(t, "expected %s, got %s %q", tt, t.Type, t.Literal)
	}
	return p.advance(), nil
}

func (p *Parser) expectSymbol(lit string) error {
	t := p.peek()
	if t.Type != SYMBOL || t.Literal != lit {
		return p.errf(t, "expected %q, got %s %q", lit, t.Type, t.Literal)
	}
	p.advance()
	return nil
}

func (p *Parser) errf(t Token, format string, args ...any) error {
	return errors.WrapReport(errors.New("parser", errors.PAR001,
		fmt.Sprintf(format, args...), &ast.Pos{Line: t.Line, Column: t.Column, File: t.File}, nil))
}

// ParseProgram parses every top-level form in src until EOF, splicing
// `include` forms inline when the Parser has a Loader.
func ParseProgram(src, file string, loader Loader) (*ast.Program, error) {
	p, err := NewParser(src, file, loader)
	if err != nil {
		return nil, err
	}
	var forms []ast.Expr
	for p.peek().Type != EOF {
		form, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if inc, ok := form.(*ast.Include); ok && p.loader != nil {
			spliced, err := p.loadInclude(inc)
			if err != nil {
				return nil, err
			}
			forms = append(forms, spliced...)
			continue
		}
		forms = append(forms, form)
	}
	return &ast.Program{Forms: forms}, nil
}

func (p *Parser) loadInclude(inc *ast.Include) ([]ast.Expr, error) {
	path := inc.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}
	src, err := p.loader(path)
	if err != nil {
		return nil, errors.WrapReport(errors.New("parser", errors.PAR001,
			fmt.Sprintf("include %q: %v", inc.Path, err), &inc.Pos, nil))
	}
	prog, err := ParseProgram(src, path, p.loader)
	if err != nil {
		return nil, err
	}
	return prog.Forms, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	t := p.peek()
	switch t.Type {
	case NUMBER:
		p.advance()
		n, err := strconv.ParseInt(t.Literal, 10, 64)
		if err != nil {
			return nil, p.errf(t, "invalid integer literal %q", t.Literal)
		}
		return ast.NewNumber(n, posOf(t)), nil
	case STRING:
		p.advance()
		return ast.NewString(t.Literal, posOf(t)), nil
	case ATOM:
		p.advance()
		return ast.NewAtom(t.Literal, posOf(t)), nil
	case SYMBOL:
		p.advance()
		switch t.Literal {
		case "true":
			return ast.NewBool(true, posOf(t)), nil
		case "false":
			return ast.NewBool(false, posOf(t)), nil
		}
		return &ast.Variable{Name: t.Literal, Pos: posOf(t)}, nil
	case LPAREN:
		return p.parseForm()
	default:
		return nil, p.errf(t, "unexpected token %s %q", t.Type, t.Literal)
	}
}

func posOf(t Token) ast.Pos { return ast.Pos{Line: t.Line, Column: t.Column, File: t.File} }

func (p *Parser) parseForm() (ast.Expr, error) {
	open := p.peek()
	p.advance() // '('
	pos := posOf(open)

	if head := p.peek(); head.Type == SYMBOL {
		switch head.Literal {
		case "let":
			p.advance()
			return p.parseLet(pos)
		case "fn":
			p.advance()
			return p.parseFnDef(pos)
		case "type":
			p.advance()
			return p.parseTypeDef(pos)
		case "case":
			p.advance()
			return p.parseCase(pos)
		case "record":
			p.advance()
			return p.parseRecord(pos)
		case "vec":
			p.advance()
			return p.parseVec(pos)
		case "external":
			p.advance()
			return p.parseExternal(pos)
		case "include":
			p.advance()
			return p.parseInclude(pos)
		}
	}

	fun, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.peek().Type != RPAREN {
		if p.peek().Type == EOF {
			return nil, p.errf(p.peek(), "unterminated application starting at %s", pos)
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.FnApp{Fun: fun, Args: args, Pos: pos}, nil
}

// parseLet handles `(let name [: type] value)`.
func (p *Parser) parseLet(pos ast.Pos) (ast.Expr, error) {
	name, err := p.expect(SYMBOL)
	if err != nil {
		return nil, err
	}
	var typ ast.TypeExpr
	if p.peek().Type == COLON {
		p.advance()
		typ, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Let{Name: name.Literal, Type: typ, Value: value, Pos: pos}, nil
}

// parseFnDef handles `(fn x body)` (sugar for a single untyped parameter)
// and `(fn (p1 p2 ...) body)`, where each pi is a bare name or a
// `(name : type)` pair.
func (p *Parser) parseFnDef(pos ast.Pos) (ast.Expr, error) {
	var params []ast.Param

	if p.peek().Type == SYMBOL {
		name := p.advance()
		params = []ast.Param{{Name: name.Literal, Pos: posOf(name)}}
	} else {
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		for p.peek().Type != RPAREN {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.FnDef{Params: params, Body: body, Pos: pos}, nil
}

func (p *Parser) parseParam() (ast.Param, error) {
	if p.peek().Type == LPAREN {
		p.advance()
		name, err := p.expect(SYMBOL)
		if err != nil {
			return ast.Param{}, err
		}
		if _, err := p.expect(COLON); err != nil {
			return ast.Param{}, err
		}
		typ, err := p.parseTypeExpr()
		if err != nil {
			return ast.Param{}, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return ast.Param{}, err
		}
		return ast.Param{Name: name.Literal, Type: typ, Pos: posOf(name)}, nil
	}
	name, err := p.expect(SYMBOL)
	if err != nil {
		return ast.Param{}, err
	}
	return ast.Param{Name: name.Literal, Pos: posOf(name)}, nil
}

// parseTypeDef handles `(type name : t)`.
func (p *Parser) parseTypeDef(pos ast.Pos) (ast.Expr, error) {
	name, err := p.expect(SYMBOL)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.TypeDef{Name: name.Literal, Type: typ, Pos: pos}, nil
}

// parseCase handles `(case (guard => body) ...)`.
func (p *Parser) parseCase(pos ast.Pos) (ast.Expr, error) {
	var branches []ast.CaseBranch
	for p.peek().Type != RPAREN {
		branchPos := posOf(p.peek())
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		guard, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("=>"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		branches = append(branches, ast.CaseBranch{Guard: guard, Body: body, Pos: branchPos})
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Case{Branches: branches, Pos: pos}, nil
}

// parseRecord handles `(record (k : v) ...)`.
func (p *Parser) parseRecord(pos ast.Pos) (ast.Expr, error) {
	var order []string
	fields := map[string]ast.Expr{}
	for p.peek().Type != RPAREN {
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		key, err := p.expect(SYMBOL)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		order = append(order, key.Literal)
		fields[key.Literal] = val
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return ast.NewRecord(order, fields, pos), nil
}

// parseVec handles `(vec e1 e2 ...)`.
func (p *Parser) parseVec(pos ast.Pos) (ast.Expr, error) {
	var elems []ast.Expr
	for p.peek().Type != RPAREN {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return ast.NewList(elems, pos), nil
}

// parseExternal handles `(external name)`.
func (p *Parser) parseExternal(pos ast.Pos) (ast.Expr, error) {
	name, err := p.expect(SYMBOL)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return ast.NewExternal(name.Literal, pos), nil
}

// parseInclude handles `(include "path")`.
func (p *Parser) parseInclude(pos ast.Pos) (ast.Expr, error) {
	path, err := p.expect(STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ast.Include{Path: path.Literal, Pos: pos}, nil
}

// parseTypeExpr parses surface type syntax: primitives and type variables
// are bare identifiers; `((t1 t2 ...) -> t)` is a function type; `(record
// (k : t) ...)` a record type; `(head t ...)` a container (vec being the
// common case); `([] container :key)` a field projection; `(| t1 t2 ...)`
// a union.
func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	t := p.peek()
	switch t.Type {
	case SYMBOL:
		p.advance()
		return &ast.TypeName{Name: t.Literal}, nil
	case ATOM:
		p.advance()
		return &ast.TypeName{Name: ":" + t.Literal}, nil
	case NUMBER:
		p.advance()
		return &ast.TypeName{Name: t.Literal}, nil
	case STRING:
		p.advance()
		return &ast.TypeName{Name: fmt.Sprintf("%q", t.Literal)}, nil
	case LPAREN:
		return p.parseCompoundTypeExpr()
	default:
		return nil, p.errf(t, "unexpected token %s %q in type expression", t.Type, t.Literal)
	}
}

func (p *Parser) parseCompoundTypeExpr() (ast.TypeExpr, error) {
	p.advance() // '('

	if p.peek().Type == LPAREN {
		// `((t1 t2 ...) -> t)`
		p.advance()
		var args []ast.TypeExpr
		for p.peek().Type != RPAREN {
			arg, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if err := p.expectSymbol("->"); err != nil {
			return nil, err
		}
		ret, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &ast.TypeFunc{Args: args, Ret: ret}, nil
	}

	head := p.peek()
	switch {
	case head.Type == SYMBOL && head.Literal == "record":
		p.advance()
		var fields []ast.TypeRecordField
		for p.peek().Type != RPAREN {
			if _, err := p.expect(LPAREN); err != nil {
				return nil, err
			}
			key, err := p.expect(SYMBOL)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON); err != nil {
				return nil, err
			}
			typ, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			fields = append(fields, ast.TypeRecordField{Name: key.Literal, Type: typ})
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &ast.TypeRecord{Fields: fields}, nil

	case head.Type == SYMBOL && head.Literal == "[]":
		p.advance()
		container, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		key, err := p.expect(ATOM)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &ast.TypeProject{Container: container, Key: key.Literal}, nil

	case head.Type == SYMBOL && head.Literal == "|":
		p.advance()
		var members []ast.TypeExpr
		for p.peek().Type != RPAREN {
			m, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &ast.TypeUnion{Members: members}, nil

	case head.Type == SYMBOL:
		// A general parameterised constructor, `(head t1 t2 ...)` — `vec`
		// is the only one the core ships, but the surface syntax does not
		// special-case the name.
		p.advance()
		var elems []ast.TypeExpr
		for p.peek().Type != RPAREN {
			e, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &ast.TypeContainer{Head: head.Literal, Elems: elems}, nil

	default:
		return nil, p.errf(head, "unexpected token %s %q in type expression", head.Type, head.Literal)
	}
}
