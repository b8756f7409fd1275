package policybuilder

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/htmlguard/htmlguard"
	"github.com/htmlguard/htmlguard/engine/css"
)

// LoadXML reads a policy document from r, in the spirit of the policy XML
// format OWASP's Java sanitizer ships but built from this package's own
// verbs, and returns the equivalent Builder. The document root is
// <policy>, holding <allow-elements>, <drop-elements>,
// <drop-elements-and-content>, <allow-attributes>, <allow-url-protocols>,
// <require-rel>, <skip-rel>, <auto-noopener/>, <max-depth>, and
// <allow-styling/> children. List directives carry their names as <item>
// children; <allow-attributes> applies to the space-separated elements in
// its on-elements attribute, or globally without one; <max-depth> holds an
// integer. Any other child is an error.
func LoadXML(r io.Reader) (*Builder, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("policybuilder: read policy xml: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "policy" {
		return nil, fmt.Errorf("policybuilder: policy xml missing <policy> root")
	}

	b := New()
	for _, child := range root.ChildElements() {
		if err := applyXMLDirective(b, child); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func applyXMLDirective(b *Builder, el *etree.Element) error {
	switch el.Tag {
	case "allow-elements":
		b.AllowElements(xmlNameList(el)...)
	case "drop-elements":
		b.DropElements(xmlNameList(el)...)
	case "drop-elements-and-content":
		b.DropElementsAndContent(xmlNameList(el)...)
	case "allow-attributes":
		names := xmlNameList(el)
		scope := b.AllowAttributes(names...)
		if onAttr := el.SelectAttrValue("on-elements", ""); onAttr != "" {
			scope.OnElements(strings.Fields(onAttr)...)
		} else {
			scope.Globally()
		}
	case "allow-url-protocols":
		b.AllowURLProtocols(xmlNameList(el)...)
	case "require-rel":
		b.RequireRelsOnLinks(xmlNameList(el)...)
	case "skip-rel":
		b.SkipRelsOnLinks(xmlNameList(el)...)
	case "auto-noopener":
		b.AutoNoopenerOnTargetedLinks()
	case "max-depth":
		n, err := strconv.Atoi(strings.TrimSpace(el.Text()))
		if err != nil {
			return fmt.Errorf("policybuilder: max-depth: %w", err)
		}
		b.MaxDepth(n)
	case "allow-styling":
		b.AllowStyling(css.DefaultSchema())
	default:
		return fmt.Errorf("policybuilder: unrecognized policy xml element <%s>", el.Tag)
	}
	return nil
}

func xmlNameList(el *etree.Element) []string {
	var out []string
	for _, item := range el.SelectElements("item") {
		out = append(out, strings.TrimSpace(item.Text()))
	}
	return out
}

// WriteXML serializes factory's element surface as a policy document w can
// reload with LoadXML's <allow-elements> directive. This is not a full
// round-trip of LoadXML's read side, and deliberately so: PolicyFactory
// cannot be made a method receiver from this package (PolicyFactory is
// defined in htmlguard, not policybuilder), and even from inside htmlguard
// the only thing it can introspect is ElementNames -- which element names
// have a directly registered policy, not whether that policy allows,
// drops, renames, or conditionally keeps each one, because AttributePolicy
// and ElementPolicy are opaque Go closures with no declarative form to
// serialize. The attribute policies, URL protocol whitelist, rel
// requirements, and CSS schema LoadXML can configure are not retained on
// PolicyFactory in any introspectable shape either, so WriteXML does not
// attempt to emit <allow-attributes>, <allow-url-protocols>,
// <require-rel>/<skip-rel>, or <allow-styling> elements -- writing those
// out would either be wrong (guessing at intent from an opaque func value)
// or silently empty, and a disguised partial round-trip is worse than an
// honest one. A document WriteXML produces and LoadXML reloads recovers
// the configured element names and nothing else.
func WriteXML(factory *htmlguard.PolicyFactory, w io.Writer) error {
	doc := etree.NewDocument()
	doc.Indent(2)
	root := doc.CreateElement("policy")

	if names := factory.ElementNames(); len(names) > 0 {
		elementsEl := root.CreateElement("allow-elements")
		for _, name := range names {
			elementsEl.CreateElement("item").SetText(name)
		}
	}

	_, err := doc.WriteTo(w)
	return err
}
