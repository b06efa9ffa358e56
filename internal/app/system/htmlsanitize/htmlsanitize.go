// Package htmlsanitize cleans operator-supplied HTML.
//
// Rich text fields (blog content, FAQ answers) go through Sanitize before
// they are saved. Email bodies handed to a mail client are reduced to
// plain text with PlainText, since a mailto: body cannot carry markup.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	return p
}

// Sanitize removes scripts, event handlers and unsafe URLs while keeping
// ordinary formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richPolicy.Sanitize(s)
}

// PlainText strips every tag and decodes entities. Block-level breaks are
// kept as newlines.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	r := strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "</p>\n")
	out := html.UnescapeString(plainPolicy.Sanitize(r.Replace(s)))
	return strings.TrimSpace(out)
}

// IsPlainText reports whether s looks like it contains no markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
