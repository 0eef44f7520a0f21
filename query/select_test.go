package query_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/midbel/xmlstream/query"
	"github.com/midbel/xmlstream/xml"
)

type found struct {
	Type    int
	Content string
}

func run(t *testing.T, atm *query.Automaton, doc string) []found {
	t.Helper()
	var (
		scan = xml.NewScanner(xml.Bytes([]byte(doc)))
		sel  = query.NewSelect(atm)
		all  []found
	)
	scan.Tokenize = true
	for ev := range scan.Events() {
		if ev.Kind == xml.ErrorOccurred {
			t.Fatalf("scan error: %s", ev.Content)
		}
		sel.Push(ev)
		for m := range sel.Matches() {
			all = append(all, found{
				Type:    m.Type,
				Content: string(m.Content),
			})
		}
	}
	return all
}

func TestSelectTag(t *testing.T) {
	atm := query.New()
	atm.Root().Child("a").Child("b").Assign(7)

	got := run(t, atm, `<a><b/></a>`)
	want := []found{{Type: 7, Content: "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}

	// the same path does not match at another depth
	got = run(t, atm, `<a><c><b/></c></a>`)
	if len(got) != 0 {
		t.Errorf("unexpected matches: %+v", got)
	}
}

func TestSelectAttributeRange(t *testing.T) {
	atm := query.New()
	atm.Root().Child("r").Child("i").From(1).Attr("id").Assign(9)

	got := run(t, atm, `<r><i id="1"/><i id="2"/></r>`)
	want := []found{{Type: 9, Content: "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectContent(t *testing.T) {
	atm := query.New()
	atm.Root().Child("address").Child("name").Content().Assign(1)

	doc := `<address><name>midbel</name><street>main</street></address>`
	want := []found{{Type: 1, Content: "midbel"}}
	if diff := cmp.Diff(want, run(t, atm, doc)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectFollow(t *testing.T) {
	atm := query.New()
	atm.Root().Follow().Child("b").Content().Assign(3)

	doc := `<a><b>one</b><c><b>two</b><d><b>three</b></d></c></a>`
	want := []found{
		{Type: 3, Content: "one"},
		{Type: 3, Content: "two"},
		{Type: 3, Content: "three"},
	}
	if diff := cmp.Diff(want, run(t, atm, doc)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectGate(t *testing.T) {
	atm := query.New()
	atm.Root().Child("r").Child("i").IfAttr("kind", "x").Content().Assign(5)

	doc := `<r><i kind="x">yes</i><i kind="y">no</i><i>none</i></r>`
	want := []found{{Type: 5, Content: "yes"}}
	if diff := cmp.Diff(want, run(t, atm, doc)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectGatePresence(t *testing.T) {
	atm := query.New()
	atm.Root().Child("r").Child("i").IfAttr("id", "").Assign(2)

	doc := `<r><i id="a"/><i/><i id="b"/></r>`
	want := []found{
		{Type: 2, Content: "a"},
		{Type: 2, Content: "b"},
	}
	if diff := cmp.Diff(want, run(t, atm, doc)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectAnyElement(t *testing.T) {
	atm := query.New()
	atm.Root().Child("r").Child("*").Assign(4)

	doc := `<r><x/><y/></r>`
	want := []found{
		{Type: 4, Content: "x"},
		{Type: 4, Content: "y"},
	}
	if diff := cmp.Diff(want, run(t, atm, doc)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectOrder(t *testing.T) {
	// several terminals firing on one event emit in registration order
	atm := query.New()
	atm.Root().Child("r").Child("i").Attr("id").Assign(1)
	atm.Root().Follow().Child("i").Attr("id").Assign(2)

	doc := `<r><i id="7"/></r>`
	want := []found{
		{Type: 1, Content: "7"},
		{Type: 2, Content: "7"},
	}
	if diff := cmp.Diff(want, run(t, atm, doc)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectDuplicateCollapse(t *testing.T) {
	// identical expressions share one node carrying both tags
	atm := query.New()
	atm.Root().Child("a").Child("b").Assign(1)
	atm.Root().Child("a").Child("b").Assign(6)

	want := []found{
		{Type: 1, Content: "b"},
		{Type: 6, Content: "b"},
	}
	if diff := cmp.Diff(want, run(t, atm, `<a><b/></a>`)); diff != "" {
		t.Errorf("matches mismatched (-want +got):\n%s", diff)
	}
}

func TestSelectMatchesCleared(t *testing.T) {
	atm := query.New()
	atm.Root().Child("a").Assign(1)
	sel := query.NewSelect(atm)

	sel.Push(xml.Event{Kind: xml.OpenTag, Content: []byte("a")})
	var count int
	for range sel.Matches() {
		count++
	}
	if count != 1 {
		t.Fatalf("want 1 match, got %d", count)
	}
	sel.Push(xml.Event{Kind: xml.Content, Content: []byte("x")})
	for range sel.Matches() {
		count++
	}
	if count != 1 {
		t.Errorf("matches of previous push not cleared")
	}
}

func TestSelectReset(t *testing.T) {
	atm := query.New()
	atm.Root().Child("a").Child("b").Assign(7)
	sel := query.NewSelect(atm)

	feed := func() int {
		var (
			scan  = xml.NewScanner(xml.Bytes([]byte(`<a><b/></a>`)))
			count int
		)
		for ev := range scan.Events() {
			sel.Push(ev)
			for range sel.Matches() {
				count++
			}
		}
		return count
	}
	if got := feed(); got != 1 {
		t.Fatalf("want 1 match, got %d", got)
	}
	sel.Reset()
	if got := feed(); got != 1 {
		t.Errorf("runtime not reusable after reset: got %d", got)
	}
}
