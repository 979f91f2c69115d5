// internal/domain/schedule/fold.go
package schedule

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Folded is a lower-cased, accent-free view of a text that keeps a byte map back
// to the original, so matches found on the folded text can be cut out of the
// original without losing its casing or accents.
type Folded struct {
	Text     string
	original string
	offsets  []int // offsets[i] is the original byte offset of Text[i]; one extra entry for len(Text)
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Fold folds s rune by rune: "Reunión MAÑANA" becomes "reunion manana".
func Fold(s string) Folded {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		f := foldRune(r)
		for k := 0; k < utf8.RuneLen(f); k++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(f)
	}
	offsets = append(offsets, len(s))
	return Folded{Text: b.String(), original: s, offsets: offsets}
}

func foldRune(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	r = unicode.ToLower(r)
	if r < utf8.RuneSelf {
		return r
	}
	stripped, _, err := transform.String(stripMarks, norm.NFD.String(string(r)))
	if err != nil || utf8.RuneCountInString(stripped) != 1 {
		return r
	}
	f, _ := utf8.DecodeRuneInString(stripped)
	return f
}

// Original returns the original text behind the folded byte range [start, end).
func (f Folded) Original(start, end int) string {
	return f.original[f.offsets[start]:f.offsets[end]]
}

// OriginalOffset maps a folded byte offset to the original text.
func (f Folded) OriginalOffset(i int) int {
	return f.offsets[i]
}

// TrimPrefix reports whether the folded text starts with prefix (which must
// already be folded) and returns the original text that follows it.
func (f Folded) TrimPrefix(prefix string) (string, bool) {
	if !strings.HasPrefix(f.Text, prefix) {
		return "", false
	}
	return f.original[f.offsets[len(prefix)]:], true
}
