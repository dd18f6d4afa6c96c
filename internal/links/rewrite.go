package links

import (
	"fmt"
	"html"
	"strings"
)

// Rewrite replaces each link's original markdown substring in message with an
// in-page anchor to its source card, and synthesizes the card container
// fragment. Replacement is first-remaining-occurrence per link, so duplicate
// links map to distinct cards in order of appearance. Every interpolated
// string is HTML-escaped. With no links the message is returned unchanged
// and the fragment is empty.
func Rewrite(message string, ls []Link) (updated, fragment string) {
	if len(ls) == 0 {
		return message, ""
	}

	updated = message
	for i, l := range ls {
		anchor := fmt.Sprintf(`<a href="#source-card-%d" class="source-ref">%s</a>`, i, html.EscapeString(l.Text))
		updated = strings.Replace(updated, l.Original, anchor, 1)
	}

	var b strings.Builder
	b.WriteString(`<div class="source-cards-container">`)
	for i, l := range ls {
		fmt.Fprintf(&b,
			`<div class="source-card" id="source-card-%d"><div class="card-icon">&#128196;</div><div class="card-title">%s</div><a href="%s" class="card-link" target="_blank" rel="noopener">Download</a></div>`,
			i, html.EscapeString(l.Filename), html.EscapeString(l.URL))
	}
	b.WriteString(`</div>`)

	return updated, "\n\n" + b.String()
}

// Apply runs Rewrite and returns the full rewritten message with the card
// fragment appended after all inline replacements.
func Apply(message string, ls []Link) string {
	updated, fragment := Rewrite(message, ls)
	return updated + fragment
}
