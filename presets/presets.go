// Package presets offers ready-made PolicyFactory bundles for common
// trust levels, composable with And the same way chtml composes small
// components into larger pages.
package presets

import (
	"github.com/htmlguard/htmlguard"
	"github.com/htmlguard/htmlguard/engine/css"
	"github.com/htmlguard/htmlguard/policybuilder"
)

func must(f *htmlguard.PolicyFactory, err error) *htmlguard.PolicyFactory {
	if err != nil {
		panic(err)
	}
	return f
}

// Formatting allows the minimal set of inline text-formatting elements
// (b, i, em, strong, u, s, sub, sup, br) with no attributes at all.
func Formatting() *htmlguard.PolicyFactory {
	return must(policybuilder.New().
		AllowElements("b", "i", "em", "strong", "u", "s", "sub", "sup", "br").
		Build())
}

// Blocks allows structural block elements -- paragraphs, headings, lists,
// quotes -- again with no attributes, layered on top of Formatting by
// callers via And.
func Blocks() *htmlguard.PolicyFactory {
	return must(policybuilder.New().
		AllowElements(
			"p", "div", "span", "blockquote", "pre", "code",
			"ul", "ol", "li", "dl", "dt", "dd",
			"h1", "h2", "h3", "h4", "h5", "h6", "hr",
		).
		Build())
}

// Tables allows the table family with the attributes needed for basic
// layout (colspan/rowspan/scope), dropping everything else about a table
// cell or row.
func Tables() *htmlguard.PolicyFactory {
	b := policybuilder.New().
		AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption", "colgroup", "col")
	b.AllowAttributes("colspan", "rowspan").OnElements("td", "th")
	b.AllowAttributes("scope").OnElements("th")
	return must(b.Build())
}

// Links allows <a> with href/title/target, gated to the standard URL
// protocols, with nofollow and noopener/noreferrer injected automatically.
func Links() *htmlguard.PolicyFactory {
	b := policybuilder.New().
		AllowElements("a").
		AllowStandardURLProtocols().
		RequireRelNofollowOnLinks().
		AutoNoopenerOnTargetedLinks()
	b.AllowAttributes("href", "title", "target").OnElements("a")
	return must(b.Build())
}

// Images allows <img> with src/alt/width/height/srcset, gated to the
// standard URL protocols (data: is deliberately not included; callers that
// want inline images should layer their own factory with And).
func Images() *htmlguard.PolicyFactory {
	b := policybuilder.New().
		AllowElements("img").
		AllowStandardURLProtocols()
	b.AllowAttributes("src", "alt", "width", "height", "srcset").OnElements("img")
	return must(b.Build())
}

// Styles allows the style attribute on any element already kept by another
// factory, and the <style> element itself (its text content sanitized as a
// CSS declaration list), under the built-in moderate CSS property schema,
// with no url(...) references permitted inside style values.
func Styles() *htmlguard.PolicyFactory {
	return must(policybuilder.New().
		AllowStyling(css.DefaultSchema()).
		Build())
}
