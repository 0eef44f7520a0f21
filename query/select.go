package query

import (
	"iter"
	"slices"

	"github.com/midbel/xmlstream/xml"
)

// Match is one emission of a terminal node. Content aliases the
// scanner buffer of the event that produced it: it is valid until the
// scanner advances, copy to retain.
type Match struct {
	Type    int
	Content []byte
}

// Select advances automaton positions with scanner events. Matches
// produced while handling one event are drained through Matches and
// cleared by the next Push. The runtime adds no error kinds of its
// own: scanner errors pass through the event stream untouched.
type Select struct {
	atm    *Automaton
	active []*position
	depth  int

	pending []*node // attribute nodes between name and value events
	hits    []hit
}

type position struct {
	node   *node
	depth  int
	counts []int // sibling index per kid, counted per tag filter
}

type hit struct {
	seq   int
	match Match
}

func NewSelect(atm *Automaton) *Select {
	s := Select{atm: atm}
	s.activate(atm.root, 0)
	return &s
}

// Reset forgets all positions so the runtime can take a new document.
func (s *Select) Reset() {
	s.active = s.active[:0]
	s.pending = s.pending[:0]
	s.hits = s.hits[:0]
	s.depth = 0
	s.activate(s.atm.root, 0)
}

// Push feeds one scanner event into the automaton.
func (s *Select) Push(ev xml.Event) {
	s.hits = s.hits[:0]
	switch ev.Kind {
	case xml.OpenTag:
		s.openTag(ev.Content)
	case xml.TagAttribName:
		s.attribName(ev.Content)
	case xml.TagAttribValue:
		s.attribValue(ev.Content)
	case xml.Content:
		s.content(ev.Content)
	case xml.CloseTag, xml.CloseTagIm:
		s.closeTag()
	default:
		s.pending = s.pending[:0]
		return
	}
	slices.SortStableFunc(s.hits, func(a, b hit) int {
		return a.seq - b.seq
	})
}

// Matches iterates the type tags emitted by the last Push, in
// terminal registration order.
func (s *Select) Matches() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, h := range s.hits {
			if !yield(h.match) {
				return
			}
		}
	}
}

func (s *Select) openTag(name []byte) {
	s.pending = s.pending[:0]
	var (
		next = s.depth + 1
		tag  = string(name)
	)
	// iterate over a snapshot: activations must not be visited again
	// within this event
	for _, p := range slices.Clone(s.active) {
		if p.depth != s.depth {
			continue
		}
		if p.node.kind == kindFollow {
			// self loop: the descendant axis stays armed below
			s.activate(p.node, next)
		}
		for ki, k := range p.node.kids {
			if k.kind != kindTag {
				continue
			}
			if k.name != "" && k.name != tag {
				continue
			}
			ix := p.counts[ki]
			p.counts[ki]++
			if !k.inRange(ix) {
				continue
			}
			if s.activate(k, next) {
				s.emitTerminals(k, name)
			}
		}
	}
	s.depth = next
}

func (s *Select) attribName(name []byte) {
	s.pending = s.pending[:0]
	attr := string(name)
	for _, p := range s.active {
		if p.depth != s.depth {
			continue
		}
		for _, k := range p.node.kids {
			if k.kind != kindAttr && k.kind != kindGate {
				continue
			}
			if k.name == attr {
				s.pending = append(s.pending, k)
			}
		}
	}
}

func (s *Select) attribValue(value []byte) {
	for _, k := range s.pending {
		switch k.kind {
		case kindAttr:
			s.emitTerminals(k, value)
		case kindGate:
			if k.value != "" && k.value != string(value) {
				continue
			}
			if s.activate(k, s.depth) {
				s.emitTerminals(k, value)
			}
		}
	}
	s.pending = s.pending[:0]
}

func (s *Select) content(data []byte) {
	s.pending = s.pending[:0]
	for _, p := range slices.Clone(s.active) {
		if p.depth != s.depth {
			continue
		}
		for _, k := range p.node.kids {
			if k.kind == kindContent {
				s.emitTerminals(k, data)
			}
		}
	}
}

func (s *Select) closeTag() {
	s.pending = s.pending[:0]
	s.active = slices.DeleteFunc(s.active, func(p *position) bool {
		return p.depth == s.depth
	})
	if s.depth > 0 {
		s.depth--
	}
}

// activate adds a position for n at the given depth unless one
// already exists; positions are identified by (node, depth). Follow
// kids of a fresh position activate alongside it at the same depth so
// their subtrees are reachable without consuming an event. Gate kids
// are not activated here: attribValue activates them once a matching
// attribute value is seen.
func (s *Select) activate(n *node, depth int) bool {
	for _, p := range s.active {
		if p.node == n && p.depth == depth {
			return false
		}
	}
	p := position{
		node:  n,
		depth: depth,
	}
	if len(n.kids) > 0 {
		p.counts = make([]int, len(n.kids))
	}
	s.active = append(s.active, &p)
	for _, k := range n.kids {
		if k.kind == kindFollow {
			s.activate(k, depth)
		}
	}
	return true
}

func (s *Select) emitTerminals(n *node, content []byte) {
	for _, t := range n.tags {
		s.hits = append(s.hits, hit{
			seq: t.seq,
			match: Match{
				Type:    t.id,
				Content: content,
			},
		})
	}
}
