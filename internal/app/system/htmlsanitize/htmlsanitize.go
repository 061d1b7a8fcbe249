// Package htmlsanitize cleans operator-supplied HTML before it is rendered
// into a public page. Raw "html" sections are the one place a mini-site can
// carry arbitrary markup, so everything that can execute script is stripped
// here; this is a hard requirement, not a presentation nicety.
package htmlsanitize

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		// UGC policy: formatting, lists, links, images; no scripts, no
		// event handlers, no iframes.
		policy = bluemonday.UGCPolicy()

		// Tables are common in pasted business content (price lists,
		// schedules).
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")

		// Common inline formatting beyond the UGC base.
		policy.AllowElements("u", "s", "sub", "sup", "mark")

		// Class hooks so embedded blocks can pick up the site theme.
		policy.AllowAttrs("class").OnElements("div", "span", "p", "table", "th", "td", "tr")
	})
	return policy
}

// Sanitize removes script-executing constructs and unsafe attributes from
// html, preserving safe formatting.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// SanitizeToHTML sanitizes html and returns it as template.HTML, safe to
// place directly into a rendered document without re-escaping.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}
