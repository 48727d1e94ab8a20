package extract

import (
	"reflect"
	"testing"
)

func TestFragmentsFlattensTableRows(t *testing.T) {
	html := `<html><body>
	<table class="games">
	  <tr><td>BOS @ NYK</td><td>Tony Smith</td></tr>
	  <tr><td>LAL @ DEN</td><td>Marc Davis</td></tr>
	</table>
	</body></html>`

	res := Fragments(html, []string{".games"}, 20)
	if len(res.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(res.Sections))
	}
	want := []string{"BOS @ NYK | Tony Smith", "LAL @ DEN | Marc Davis"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsHandlesDirectRowSelection(t *testing.T) {
	html := `<table>
	  <tr><td>A</td><td>B</td></tr>
	  <tr></tr>
	  <tr><th>H</th></tr>
	</table>`

	res := Fragments(html, []string{"tr"}, 20)
	want := []string{"A | B", "H"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q (cell-less rows skipped)", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsTreatsRowContainersAsTables(t *testing.T) {
	// Not a table tag itself, but it holds rows somewhere below.
	html := `<div class="wrap"><section><table>
	  <tr><td>only</td><td>row</td></tr>
	</table></section></div>`

	res := Fragments(html, []string{".wrap"}, 20)
	want := []string{"only | row"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsMixedCellTypes(t *testing.T) {
	html := `<table class="t"><tr><th>Game</th><td>Crew</td></tr></table>`

	res := Fragments(html, []string{".t"}, 20)
	want := []string{"Game | Crew"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q (th and td both count)", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsSplitsBudgetAcrossSelectors(t *testing.T) {
	html := `<ul class="a"><li>a1</li><li>a2</li><li>a3</li></ul>
	<ul class="b"><li>b1</li><li>b2</li><li>b3</li></ul>`

	res := Fragments(html, []string{".a li", ".b li"}, 5)
	if got := len(res.Sections[0].Fragments); got != 2 {
		t.Fatalf("first selector got %d fragments, want 2 (5/2 rounds down)", got)
	}
	if got := len(res.Sections[1].Fragments); got != 2 {
		t.Fatalf("second selector got %d fragments, want 2", got)
	}
	if res.Total() != 4 {
		t.Fatalf("total = %d, want 4 (remainder dropped)", res.Total())
	}
}

func TestFragmentsZeroBudgetYieldsNothing(t *testing.T) {
	html := `<p class="x">text</p>`
	res := Fragments(html, []string{".x", ".x", ".x"}, 2)
	if res.Total() != 0 {
		t.Fatalf("total = %d, want 0 (2/3 rounds down to zero)", res.Total())
	}
	if len(res.Sections) != 3 {
		t.Fatalf("got %d sections, want 3 (sections survive empty)", len(res.Sections))
	}
}

func TestFragmentsStopsAtBudgetInsideTable(t *testing.T) {
	html := `<table class="big">
	  <tr><td>r1</td></tr>
	  <tr><td>r2</td></tr>
	  <tr><td>r3</td></tr>
	  <tr><td>r4</td></tr>
	  <tr><td>r5</td></tr>
	</table>`

	res := Fragments(html, []string{".big"}, 3)
	want := []string{"r1", "r2", "r3"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsDefaultsToWholeDocument(t *testing.T) {
	res := Fragments(`<html><body><p>hello world</p></body></html>`, nil, 20)
	if len(res.Sections) != 1 || res.Sections[0].Selector != "body" {
		t.Fatalf("sections = %+v, want a single body section", res.Sections)
	}
	want := []string{"hello world"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsAnnotatesOwnLink(t *testing.T) {
	html := `<a class="l" href="https://example.com/a">Crew A</a>`
	res := Fragments(html, []string{".l"}, 20)
	want := []string{"Crew A — https://example.com/a"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsAnnotatesFirstDescendantLink(t *testing.T) {
	html := `<li class="g">Game one <a href="https://example.com/1">box</a> <a href="https://example.com/2">recap</a></li>`
	res := Fragments(html, []string{".g"}, 20)
	want := []string{"Game one box recap — https://example.com/1"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsIgnoresLaterLinksWhenFirstAnchorHasNoHref(t *testing.T) {
	html := `<li class="g">See <a name="x">here</a> or <a href="https://example.com/2">there</a></li>`
	res := Fragments(html, []string{".g"}, 20)
	want := []string{"See here or there"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q (only the first anchor counts)", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsTreatsEmptyHrefAsNoLink(t *testing.T) {
	html := `<a class="l" href="">Nowhere</a>`
	res := Fragments(html, []string{".l"}, 20)
	want := []string{"Nowhere"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsSuppressesLinksForReplaySelector(t *testing.T) {
	html := `<div class="replay-center-assignment">Replay Center <a href="https://example.com/replay">crew</a></div>`
	res := Fragments(html, []string{".replay-center-assignment"}, 20)
	want := []string{"Replay Center crew"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q (no link annotation)", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsSkipsEmptyNodesWithoutSpendingBudget(t *testing.T) {
	html := `<ul class="l"><li></li><li> </li><li>first</li><li>second</li></ul>`
	res := Fragments(html, []string{".l li"}, 2)
	want := []string{"first", "second"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q (empty nodes are free)", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsKeepsSelectorOrder(t *testing.T) {
	html := `<p class="b">beta</p><p class="a">alpha</p>`
	res := Fragments(html, []string{".a", ".b"}, 20)
	if got := res.Selectors(); !reflect.DeepEqual(got, []string{".a", ".b"}) {
		t.Fatalf("selectors = %q, want input order", got)
	}
	if res.Sections[0].Fragments[0] != "alpha" || res.Sections[1].Fragments[0] != "beta" {
		t.Fatalf("sections follow selector order, got %+v", res.Sections)
	}
}

func TestFragmentsMatchlessSelectorYieldsEmptySection(t *testing.T) {
	res := Fragments(`<p>something</p>`, []string{".missing"}, 20)
	if len(res.Sections) != 1 || len(res.Sections[0].Fragments) != 0 {
		t.Fatalf("sections = %+v, want one empty section", res.Sections)
	}
	if !res.Empty() {
		t.Fatal("Empty() = false, want true")
	}
}

func TestFragmentsSurvivesInvalidSelector(t *testing.T) {
	res := Fragments(`<p class="x">fine</p>`, []string{"!!!", ".x"}, 20)
	if len(res.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(res.Sections))
	}
	if len(res.Sections[0].Fragments) != 0 {
		t.Fatalf("invalid selector produced %q, want nothing", res.Sections[0].Fragments)
	}
	if len(res.Sections[1].Fragments) != 1 {
		t.Fatalf("valid selector produced %q, want one fragment", res.Sections[1].Fragments)
	}
}

func TestFragmentsNormalizesWhitespace(t *testing.T) {
	html := "<li class=\"l\">  A \t lot\n\nof    space </li>"
	res := Fragments(html, []string{".l"}, 20)
	want := []string{"A lot of space"}
	if !reflect.DeepEqual(res.Sections[0].Fragments, want) {
		t.Fatalf("fragments = %q, want %q", res.Sections[0].Fragments, want)
	}
}

func TestFragmentsIsDeterministic(t *testing.T) {
	html := `<table class="t"><tr><td>a</td><td>b</td></tr></table>
	<ul class="u"><li>one <a href="https://example.com">x</a></li></ul>`
	selectors := []string{".t", ".u li"}

	first := Fragments(html, selectors, 10)
	second := Fragments(html, selectors, 10)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different results:\n%+v\n%+v", first, second)
	}
}
