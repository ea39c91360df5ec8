package engine

import (
	"fmt"
	"strings"

	"github.com/GD-alt/hoofd/pkg/expr"
)

// Format substitutes {expression} placeholders in scene text against the
// pass environment. Doubled braces escape literals: {{ renders { and }}
// renders }. An unresolved placeholder is a content error.
func Format(text string, env expr.Env) (string, error) {
	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				sb.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			placeholder := text[i+1 : i+end]
			v, err := expr.Eval(placeholder, env)
			if err != nil {
				return "", fmt.Errorf("placeholder {%s}: %w", placeholder, err)
			}
			sb.WriteString(expr.String(v))
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				sb.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("stray } at offset %d", i)
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}

// Placeholders lists the expression of every {placeholder} in text without
// evaluating it. Content tooling uses this to parse-check templates ahead
// of play.
func Placeholders(text string) ([]string, error) {
	var out []string
	for i := 0; i < len(text); {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				i += 2
				continue
			}
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			out = append(out, text[i+1:i+end])
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				i += 2
				continue
			}
			return nil, fmt.Errorf("stray } at offset %d", i)
		default:
			i++
		}
	}
	return out, nil
}

// format applies the eval policy: in lenient mode a broken placeholder
// leaves the text untouched instead of failing the pass.
func (e *evaluator) format(text string, env expr.Env) (string, error) {
	out, err := Format(text, env)
	if err != nil {
		if e.policy == EvalLenient {
			e.logger.Warn("template formatting failed, leaving text as-is", "error", err)
			return text, nil
		}
		return "", &ContentError{Err: err}
	}
	return out, nil
}
