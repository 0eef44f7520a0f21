package query

import (
	"fmt"
	"strconv"
)

// PathError reports where a path expression stopped making sense.
type PathError struct {
	Expr     string
	Position int
	Message  string
}

func createPathError(expr string, pos int, msg string) error {
	return PathError{
		Expr:     expr,
		Position: pos,
		Message:  msg,
	}
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s: offset %d: %s", e.Expr, e.Position, e.Message)
}

// Define compiles a compact path expression onto the automaton and
// assigns tag to its terminal. The syntax is a small XPath subset:
//
//	/a/b          child steps, leading slash optional
//	//b           descendant axis, also mid-path a//b
//	*             any element
//	a[2]          third sibling named a
//	a[1:3]        sibling index range, half open
//	a[@id]        gate on attribute presence
//	a[@id='x']    gate on attribute value
//	a/@id         select an attribute value
//	a/text()      select element content
func (a *Automaton) Define(expr string, tag int) error {
	p := pathParser{expr: expr}
	cur, err := p.run(a.Root())
	if err != nil {
		return err
	}
	cur.Assign(tag)
	return nil
}

type pathParser struct {
	expr string
	pos  int
}

func (p *pathParser) run(cur *Cursor) (*Cursor, error) {
	if p.done() {
		return nil, p.failed("empty expression")
	}
	for !p.done() {
		follow := false
		if p.accept('/') && p.accept('/') {
			follow = true
		}
		if p.done() {
			return nil, p.failed("step expected")
		}
		if follow {
			cur = cur.Follow()
		}
		next, last, err := p.step(cur)
		if err != nil {
			return nil, err
		}
		cur = next
		if last && !p.done() {
			return nil, p.failed("expression continues past a value step")
		}
	}
	return cur, nil
}

// step parses one path step. Attribute and text() steps terminate the
// expression.
func (p *pathParser) step(cur *Cursor) (*Cursor, bool, error) {
	if p.accept('@') {
		name, err := p.name()
		if err != nil {
			return nil, false, err
		}
		return cur.Attr(name), true, nil
	}
	name, err := p.name()
	if err != nil {
		return nil, false, err
	}
	if name == "text" && p.accept('(') {
		if !p.accept(')') {
			return nil, false, p.failed("')' expected")
		}
		return cur.Content(), true, nil
	}
	cur = cur.Child(name)
	for p.accept('[') {
		if cur, err = p.predicate(cur); err != nil {
			return nil, false, err
		}
	}
	return cur, false, nil
}

func (p *pathParser) predicate(cur *Cursor) (*Cursor, error) {
	if p.accept('@') {
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		var value string
		if p.accept('=') {
			if value, err = p.literal(); err != nil {
				return nil, err
			}
		}
		if !p.accept(']') {
			return nil, p.failed("']' expected")
		}
		return cur.IfAttr(name, value), nil
	}
	from, err := p.number()
	if err != nil {
		return nil, err
	}
	cur = cur.From(from).To(from + 1)
	if p.accept(':') {
		cur = cur.To(-1)
		if !p.check(']') {
			to, err := p.number()
			if err != nil {
				return nil, err
			}
			cur = cur.To(to)
		}
	}
	if !p.accept(']') {
		return nil, p.failed("']' expected")
	}
	return cur, nil
}

func (p *pathParser) name() (string, error) {
	beg := p.pos
	if p.accept('*') {
		return "*", nil
	}
	for !p.done() && isName(p.expr[p.pos]) {
		p.pos++
	}
	if beg == p.pos {
		return "", p.failed("name expected")
	}
	return p.expr[beg:p.pos], nil
}

func (p *pathParser) number() (int, error) {
	beg := p.pos
	for !p.done() && p.expr[p.pos] >= '0' && p.expr[p.pos] <= '9' {
		p.pos++
	}
	if beg == p.pos {
		return 0, p.failed("number expected")
	}
	n, err := strconv.Atoi(p.expr[beg:p.pos])
	if err != nil {
		return 0, p.failed("number expected")
	}
	return n, nil
}

func (p *pathParser) literal() (string, error) {
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return "", p.failed("quote expected")
	}
	p.pos++
	beg := p.pos
	for !p.done() && p.expr[p.pos] != quote {
		p.pos++
	}
	if p.done() {
		return "", p.failed("unterminated literal")
	}
	str := p.expr[beg:p.pos]
	p.pos++
	return str, nil
}

func (p *pathParser) accept(ch byte) bool {
	if p.check(ch) {
		p.pos++
		return true
	}
	return false
}

func (p *pathParser) check(ch byte) bool {
	return !p.done() && p.expr[p.pos] == ch
}

func (p *pathParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.expr[p.pos]
}

func (p *pathParser) done() bool {
	return p.pos >= len(p.expr)
}

func (p *pathParser) failed(msg string) error {
	return createPathError(p.expr, p.pos, msg)
}

func isName(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z':
	case ch >= 'A' && ch <= 'Z':
	case ch >= '0' && ch <= '9':
	case ch == '-' || ch == '_' || ch == '.' || ch == ':':
	case ch >= 0x80:
	default:
		return false
	}
	return true
}
