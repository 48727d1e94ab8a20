package extract

import "strings"

// SelectorFlags captures the special handling a selector opts into,
// keyed by reserved substrings in the selector text. The zero value
// means plain handling.
type SelectorFlags struct {
	// Title is the display heading for the selector's section.
	Title string
	// SuppressLinks keeps link targets out of the selector's fragments.
	SuppressLinks bool
	// SuppressHeader treats the first fragment as data even when it
	// looks like a header row.
	SuppressHeader bool
	// DropLastColumn removes the trailing cell of every delimited row.
	DropLastColumn bool
}

// selectorRules is consulted in order for every selector. Each matching
// rule applies its adjustments; the first title set wins.
var selectorRules = []struct {
	substr string
	apply  func(*SelectorFlags)
}{
	{"nba-refs-content", func(f *SelectorFlags) {
		f.SuppressHeader = true
		f.setTitle("NBA Assignments")
	}},
	{"replay-center-assignment", func(f *SelectorFlags) {
		f.SuppressLinks = true
		f.setTitle("Replay Assignments")
	}},
	{"gl-refs-content", func(f *SelectorFlags) {
		f.DropLastColumn = true
		f.setTitle("G League Assignments")
	}},
}

// FlagsFor resolves the handling for one selector. Selectors matching no
// rule keep plain handling and render under their own text as the title.
func FlagsFor(selector string) SelectorFlags {
	var flags SelectorFlags
	for _, r := range selectorRules {
		if strings.Contains(selector, r.substr) {
			r.apply(&flags)
		}
	}
	if flags.Title == "" {
		flags.Title = selector
	}
	return flags
}

func (f *SelectorFlags) setTitle(title string) {
	if f.Title == "" {
		f.Title = title
	}
}
