package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp // punctuation and operators: ( ) [ ] , . + - * / % == != < <= > >=
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the source expression
}

// Error is a parse or evaluation failure for a condition expression.
// Expressions are authored in content files, so these are content errors.
type Error struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("expression %q: %s (at offset %d)", e.Expr, e.Msg, e.Pos)
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) errf(pos int, format string, args ...any) error {
	return &Error{Expr: l.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case unicode.IsLetter(r) || r == '_':
		for l.pos < len(l.src) {
			r, size = utf8.DecodeRuneInString(l.src[l.pos:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			l.pos += size
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil

	case unicode.IsDigit(r):
		seenDot := false
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if c == '.' && !seenDot && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
				seenDot = true
				l.pos++
				continue
			}
			if !isDigit(c) {
				break
			}
			l.pos++
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}, nil

	case r == '\'' || r == '"':
		quote := byte(r)
		l.pos++
		var sb strings.Builder
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if c == '\\' && l.pos+1 < len(l.src) {
				esc := l.src[l.pos+1]
				switch esc {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case '\\', '\'', '"':
					sb.WriteByte(esc)
				default:
					return token{}, l.errf(l.pos, "unknown escape \\%c", esc)
				}
				l.pos += 2
				continue
			}
			if c == quote {
				l.pos++
				return token{kind: tokString, text: sb.String(), pos: start}, nil
			}
			sb.WriteByte(c)
			l.pos++
		}
		return token{}, l.errf(start, "unterminated string")

	case strings.ContainsRune("()[],.+-*/%", r):
		l.pos++
		return token{kind: tokOp, text: string(r), pos: start}, nil

	case r == '=' || r == '!' || r == '<' || r == '>':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '=' {
			l.pos++
			return token{kind: tokOp, text: l.src[start:l.pos], pos: start}, nil
		}
		if r == '=' || r == '!' {
			return token{}, l.errf(start, "unexpected %q", string(r))
		}
		return token{kind: tokOp, text: string(r), pos: start}, nil
	}

	return token{}, l.errf(start, "unexpected character %q", string(r))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
