// Package compose renders tag records back into the title and description
// strings a backend stores alongside each image. Every function is total: an
// empty record yields a sparse but well-formed string.
package compose

import (
	"strconv"
	"strings"

	"github.com/biketag/biketag-go/internal/biketag"
)

// FoundDescription renders the proof image description:
// "#N proof found at (LOCATION)by PLAYER". There is no space before "by";
// stored descriptions have this shape ("#N proofby PLAYER" without a
// location) and the credit extractor reads it. The location clause is omitted
// when empty and the credit clause when includeCredit is false.
func FoundDescription(t biketag.Tag, includeCredit bool) string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(strconv.Itoa(t.TagNumber))
	b.WriteString(" proof")
	if t.FoundLocation != "" {
		b.WriteString(" found at (")
		b.WriteString(t.FoundLocation)
		b.WriteString(")")
	}
	if includeCredit {
		b.WriteString("by ")
		b.WriteString(t.FoundPlayer)
	}
	return b.String()
}

// MysteryDescription renders the mystery image description. The hint clause
// opens a parenthesis that the credit clause closes, so a record without a
// hint still gets ") by PLAYER". Stored descriptions already use this shape
// and the credit extractor reads both forms.
func MysteryDescription(t biketag.Tag, includeCredit, includeHint bool) string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(strconv.Itoa(t.TagNumber))
	b.WriteString(" tag ")
	if includeHint && t.Hint != "" {
		b.WriteString("(hint: ")
		b.WriteString(t.Hint)
	}
	if includeCredit {
		b.WriteString(") by ")
		b.WriteString(t.MysteryPlayer)
	}
	return b.String()
}

// FoundTitle renders the proof image title: the GPS triple, or "" when the
// record has no position.
func FoundTitle(t biketag.Tag) string {
	return gpsTriple(t.GPS)
}

// MysteryTitle renders the mystery image title: "(lat, long, alt) {URL}".
// Either part may be empty; the separating space is always present.
func MysteryTitle(t biketag.Tag) string {
	title := gpsTriple(t.GPS) + " "
	if t.DiscussionURL != "" {
		title += "{" + t.DiscussionURL + "}"
	}
	return title
}

func gpsTriple(p *biketag.GeoPoint) string {
	if p == nil || (p.Lat == 0 && p.Long == 0) {
		return ""
	}
	return "(" + formatCoord(p.Lat) + ", " + formatCoord(p.Long) + ", " + formatCoord(p.Alt) + ")"
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
