// Package splice applies offset-addressed replacements to immutable text.
package splice

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces the half-open rune span [Start, End) with Replacement.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// Apply returns text with every edit applied. Offsets address rune
// positions in the original text; edits may be given in any order but
// must not overlap. The output is rebuilt gap by gap against the
// original, so replacement length never shifts later offsets.
func Apply(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	runes := []rune(text)
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var b strings.Builder
	pos := 0
	for _, e := range ordered {
		if e.Start < 0 || e.End < e.Start || e.End > len(runes) {
			return "", fmt.Errorf("splice: span [%d,%d) out of range for text of length %d", e.Start, e.End, len(runes))
		}
		if e.Start < pos {
			return "", fmt.Errorf("splice: span [%d,%d) overlaps a previous edit", e.Start, e.End)
		}
		b.WriteString(string(runes[pos:e.Start]))
		b.WriteString(e.Replacement)
		pos = e.End
	}
	b.WriteString(string(runes[pos:]))

	return b.String(), nil
}
