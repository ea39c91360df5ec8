// Package expr implements the sandboxed condition language used by scene
// content. Expressions are parsed and evaluated fresh on every use against a
// read-only environment with a fixed set of bound names; evaluation never
// mutates the environment and content has no way to call arbitrary code.
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression: nil, bool, float64,
// string, []string, Dict, or an Object.
type Value any

// Dict is a string-keyed mapping exposed to expressions (invdict, modsdict,
// vars, MY). Lookups go through .get(key, default) or [key] indexing.
type Dict map[string]Value

// Object exposes named attributes to expressions (player, SYS, scene refs).
type Object interface {
	Attr(name string) (Value, bool)
}

// Env binds the fixed set of names an expression may reference.
type Env map[string]Value

// Eval parses and evaluates a single expression. Results are not cached;
// content is the source of truth on every pass.
func Eval(src string, env Env) (Value, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return n.eval(env)
}

// EvalBool evaluates an expression as a condition, using truthiness rules
// for non-boolean results (empty string, zero, empty list and nil are false).
func EvalBool(src string, env Env) (bool, error) {
	v, err := Eval(src, env)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Run evaluates an already-parsed expression.
func Run(n Node, env Env) (Value, error) {
	return n.eval(env)
}

// Truthy reports whether a value counts as true in a condition.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case Dict:
		return len(t) > 0
	default:
		return true
	}
}

// String renders a value the way formatted scene text should display it.
func String(v Value) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func parseNumber(text string) float64 {
	f, _ := strconv.ParseFloat(text, 64)
	return f
}

type litNode struct{ val Value }

func (n *litNode) eval(Env) (Value, error) { return n.val, nil }

type nameNode struct {
	src  string
	name string
	pos  int
}

func (n *nameNode) eval(env Env) (Value, error) {
	v, ok := env[n.name]
	if !ok {
		return nil, &Error{Expr: n.src, Pos: n.pos, Msg: fmt.Sprintf("unknown name %q", n.name)}
	}
	return v, nil
}

type logicalNode struct {
	op          string // "and" | "or"
	left, right Node
}

func (n *logicalNode) eval(env Env) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	// Short-circuit like the source language: the operand itself is the
	// result, not a coerced boolean.
	if n.op == "and" {
		if !Truthy(left) {
			return left, nil
		}
	} else {
		if Truthy(left) {
			return left, nil
		}
	}
	return n.right.eval(env)
}

type notNode struct{ operand Node }

func (n *notNode) eval(env Env) (Value, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

type negNode struct {
	src     string
	operand Node
}

func (n *negNode) eval(env Env) (Value, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return nil, err
	}
	f, ok := v.(float64)
	if !ok {
		return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("cannot negate %s", typeName(v))}
	}
	return -f, nil
}

type compareNode struct {
	src         string
	op          string
	left, right Node
}

func (n *compareNode) eval(env Env) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "in":
		return contains(n.src, right, left)
	case "not in":
		ok, err := contains(n.src, right, left)
		if err != nil {
			return nil, err
		}
		return !ok, nil
	}

	// Ordering comparisons work on two numbers or two strings.
	if lf, ok := left.(float64); ok {
		rf, ok := right.(float64)
		if !ok {
			return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("cannot compare number with %s", typeName(right))}
		}
		switch n.op {
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("cannot compare string with %s", typeName(right))}
		}
		switch n.op {
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}
	return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("cannot order %s and %s", typeName(left), typeName(right))}
}

type arithNode struct {
	src         string
	op          string
	left, right Node
}

func (n *arithNode) eval(env Env) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}

	if ls, ok := left.(string); ok && n.op == "+" {
		rs, ok := right.(string)
		if !ok {
			return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("cannot concatenate string with %s", typeName(right))}
		}
		return ls + rs, nil
	}

	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("arithmetic on %s and %s", typeName(left), typeName(right))}
	}
	switch n.op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, &Error{Expr: n.src, Msg: "division by zero"}
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, &Error{Expr: n.src, Msg: "division by zero"}
		}
		return float64(int64(lf) % int64(rf)), nil
	}
	return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("unknown operator %q", n.op)}
}

type attrNode struct {
	src  string
	recv Node
	name string
}

func (n *attrNode) eval(env Env) (Value, error) {
	recv, err := n.recv.eval(env)
	if err != nil {
		return nil, err
	}
	obj, ok := recv.(Object)
	if !ok {
		return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("%s has no attributes", typeName(recv))}
	}
	v, ok := obj.Attr(n.name)
	if !ok {
		return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("unknown attribute %q", n.name)}
	}
	return v, nil
}

type indexNode struct {
	src  string
	recv Node
	key  Node
}

func (n *indexNode) eval(env Env) (Value, error) {
	recv, err := n.recv.eval(env)
	if err != nil {
		return nil, err
	}
	key, err := n.key.eval(env)
	if err != nil {
		return nil, err
	}
	switch t := recv.(type) {
	case Dict:
		name, ok := key.(string)
		if !ok {
			return nil, &Error{Expr: n.src, Msg: "mapping index must be a string"}
		}
		v, ok := t[name]
		if !ok {
			return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("key %q not found", name)}
		}
		return v, nil
	case []string:
		idx, ok := key.(float64)
		if !ok {
			return nil, &Error{Expr: n.src, Msg: "list index must be a number"}
		}
		i := int(idx)
		if i < 0 || i >= len(t) {
			return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("index %d out of range", i)}
		}
		return t[i], nil
	}
	return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("%s is not indexable", typeName(recv))}
}

type callNode struct {
	src    string
	recv   Node
	method string
	args   []Node
}

func (n *callNode) eval(env Env) (Value, error) {
	recv, err := n.recv.eval(env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		if args[i], err = a.eval(env); err != nil {
			return nil, err
		}
	}

	d, ok := recv.(Dict)
	if !ok {
		return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("%s has no method %q", typeName(recv), n.method)}
	}
	switch n.method {
	case "get":
		if len(args) < 1 || len(args) > 2 {
			return nil, &Error{Expr: n.src, Msg: "get takes a key and an optional default"}
		}
		key, ok := args[0].(string)
		if !ok {
			return nil, &Error{Expr: n.src, Msg: "get key must be a string"}
		}
		if v, ok := d[key]; ok {
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, nil
	}
	return nil, &Error{Expr: n.src, Msg: fmt.Sprintf("unknown method %q", n.method)}
}

func equal(a, b Value) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case float64:
		bt, ok := b.(float64)
		return ok && at == bt
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	}
	return false
}

func contains(src string, container, item Value) (bool, error) {
	switch t := container.(type) {
	case []string:
		s, ok := item.(string)
		if !ok {
			return false, &Error{Expr: src, Msg: "list containment needs a string operand"}
		}
		for _, v := range t {
			if v == s {
				return true, nil
			}
		}
		return false, nil
	case Dict:
		s, ok := item.(string)
		if !ok {
			return false, &Error{Expr: src, Msg: "mapping containment needs a string key"}
		}
		_, present := t[s]
		return present, nil
	case string:
		s, ok := item.(string)
		if !ok {
			return false, &Error{Expr: src, Msg: "substring test needs a string operand"}
		}
		return strings.Contains(t, s), nil
	}
	return false, &Error{Expr: src, Msg: fmt.Sprintf("%s is not a container", typeName(container))}
}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []string:
		return "list"
	case Dict:
		return "mapping"
	case Object:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
