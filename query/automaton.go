// Package query compiles a fixed set of path expressions into an
// automaton evaluated against the event stream of the xml scanner.
// The automaton is built once, then shared read-only by any number of
// Select runtimes.
package query

type nodeKind int8

const (
	kindTag     nodeKind = iota // descend on a matching element
	kindAttr                    // select the value of an attribute
	kindGate                    // condition on an attribute, no output
	kindContent                 // select element text content
	kindFollow                  // descendant axis, matches at any depth
)

type node struct {
	kind  nodeKind
	name  string // tag or attribute name; empty matches any element
	value string // required attribute value for gates; empty = any

	from int
	to   int // half open [from, to); negative = unbounded

	tags []terminal
	kids []*node
}

func createNode(kind nodeKind, name, value string) *node {
	return &node{
		kind:  kind,
		name:  name,
		value: value,
		to:    -1,
	}
}

func (n *node) inRange(ix int) bool {
	if ix < n.from {
		return false
	}
	return n.to < 0 || ix < n.to
}

// terminal couples a user type tag with its registration order so
// matches within one event emit in a stable order.
type terminal struct {
	id  int
	seq int
}

type Automaton struct {
	root *node
	seq  int
}

func New() *Automaton {
	return &Automaton{
		root: createNode(kindTag, "", ""),
	}
}

// Root returns a cursor on the synthetic source node. All expressions
// are built by refining cursors from here.
func (a *Automaton) Root() *Cursor {
	return &Cursor{atm: a, node: a.root}
}

// Cursor is a position in the path tree under construction. Each
// refinement returns a cursor on the refined node; identical
// refinements of the same node collapse, so defining the same
// expression twice yields one node carrying the union of type tags.
type Cursor struct {
	atm  *Automaton
	node *node
}

// Child descends on elements named name; "*" or the empty string
// match any element.
func (c *Cursor) Child(name string) *Cursor {
	if name == "*" {
		name = ""
	}
	return c.extend(kindTag, name, "")
}

// Attr selects the value of the named attribute.
func (c *Cursor) Attr(name string) *Cursor {
	return c.extend(kindAttr, name, "")
}

// IfAttr gates the current position on the presence of an attribute,
// and on its value when value is not empty. The gate observes
// attributes in document order: refinements chained after it only see
// what follows the gating attribute.
func (c *Cursor) IfAttr(name, value string) *Cursor {
	return c.extend(kindGate, name, value)
}

// Content selects the text content of the current element.
func (c *Cursor) Content() *Cursor {
	return c.extend(kindContent, "", "")
}

// Follow switches to the descendant axis: refinements chained after
// it match at any depth below the current node.
func (c *Cursor) Follow() *Cursor {
	return c.extend(kindFollow, "", "")
}

// From restricts the match to sibling indices >= i, counted per
// parent and tag filter from 0.
func (c *Cursor) From(i int) *Cursor {
	c.node.from = i
	return c
}

// To restricts the match to sibling indices < j.
func (c *Cursor) To(j int) *Cursor {
	c.node.to = j
	return c
}

// Assign marks the current node terminal with the given type tag.
// Assigning several tags to one node is allowed and ORs them.
func (c *Cursor) Assign(tag int) *Cursor {
	for _, t := range c.node.tags {
		if t.id == tag {
			return c
		}
	}
	c.atm.seq++
	c.node.tags = append(c.node.tags, terminal{id: tag, seq: c.atm.seq})
	return c
}

func (c *Cursor) extend(kind nodeKind, name, value string) *Cursor {
	for _, k := range c.node.kids {
		if k.kind == kind && k.name == name && k.value == value {
			return &Cursor{atm: c.atm, node: k}
		}
	}
	n := createNode(kind, name, value)
	c.node.kids = append(c.node.kids, n)
	return &Cursor{atm: c.atm, node: n}
}
