package expr

// The condition grammar is a small Python-like expression language:
//
//	expr       = or
//	or         = and { "or" and }
//	and        = not { "and" not }
//	not        = "not" not | comparison
//	comparison = sum [ ("==" | "!=" | "<" | "<=" | ">" | ">=" | "in" | "not" "in") sum ]
//	sum        = term { ("+" | "-") term }
//	term       = unary { ("*" | "/" | "%") unary }
//	unary      = "-" unary | postfix
//	postfix    = primary { "." ident [ "(" args ")" ] | "[" expr "]" }
//	primary    = number | string | "True" | "False" | "None" | ident | "(" expr ")"
//
// Names resolve against a fixed environment; there is no assignment, no
// user-defined functions, and no way to reach outside the environment.

// Node is a parsed expression, ready to be evaluated against an Env.
type Node interface {
	eval(env Env) (Value, error)
}

type parser struct {
	lex  *lexer
	tok  token
	peek *token
}

// Parse compiles a single expression. The result is immutable and safe to
// evaluate against any number of environments.
func Parse(src string) (Node, error) {
	p := &parser{lex: &lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errf("unexpected %q after expression", p.tok.text)
	}
	return n, nil
}

func (p *parser) errf(format string, args ...any) error {
	return p.lex.errf(p.tok.pos, format, args...)
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) peekTok() (token, error) {
	if p.peek == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peek = &t
	}
	return *p.peek, nil
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokIdent && p.tok.text == kw
}

func (p *parser) isOp(op string) bool {
	return p.tok.kind == tokOp && p.tok.text == op
}

func (p *parser) expectOp(op string) error {
	if !p.isOp(op) {
		return p.errf("expected %q, found %q", op, p.tok.text)
	}
	return p.advance()
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.isKeyword("not") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notNode{operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	var op string
	switch {
	case p.tok.kind == tokOp &&
		(p.tok.text == "==" || p.tok.text == "!=" ||
			p.tok.text == "<" || p.tok.text == "<=" ||
			p.tok.text == ">" || p.tok.text == ">="):
		op = p.tok.text
	case p.isKeyword("in"):
		op = "in"
	case p.isKeyword("not"):
		// "not in" is the only place "not" appears infix.
		next, err := p.peekTok()
		if err != nil {
			return nil, err
		}
		if next.kind != tokIdent || next.text != "in" {
			return nil, p.errf("expected \"in\" after \"not\"")
		}
		if err := p.advance(); err != nil { // consume "not"
			return nil, err
		}
		op = "not in"
	default:
		return left, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return &compareNode{src: p.lex.src, op: op, left: left, right: right}, nil
}

func (p *parser) parseSum() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &arithNode{src: p.lex.src, op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &arithNode{src: p.lex.src, op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.isOp("-") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{src: p.lex.src, operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, p.errf("expected attribute name after \".\"")
			}
			name := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isOp("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				n = &callNode{src: p.lex.src, recv: n, method: name, args: args}
			} else {
				n = &attrNode{src: p.lex.src, recv: n, name: name}
			}

		case p.isOp("["):
			if err := p.advance(); err != nil {
				return nil, err
			}
			key, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			n = &indexNode{src: p.lex.src, recv: n, key: key}

		default:
			return n, nil
		}
	}
}

func (p *parser) parseArgs() ([]Node, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var args []Node
	if p.isOp(")") {
		return args, p.advance()
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (Node, error) {
	switch {
	case p.tok.kind == tokNumber:
		n := &litNode{val: parseNumber(p.tok.text)}
		return n, p.advance()

	case p.tok.kind == tokString:
		n := &litNode{val: p.tok.text}
		return n, p.advance()

	case p.tok.kind == tokIdent:
		switch p.tok.text {
		case "True":
			return &litNode{val: true}, p.advance()
		case "False":
			return &litNode{val: false}, p.advance()
		case "None":
			return &litNode{val: nil}, p.advance()
		case "and", "or", "not", "in":
			return nil, p.errf("unexpected keyword %q", p.tok.text)
		}
		n := &nameNode{src: p.lex.src, name: p.tok.text, pos: p.tok.pos}
		return n, p.advance()

	case p.isOp("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return n, nil
	}

	return nil, p.errf("unexpected %q", p.tok.text)
}
