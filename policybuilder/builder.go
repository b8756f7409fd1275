// Package policybuilder is the fluent construction API for a
// htmlguard.PolicyFactory: a chain of method calls that accumulate
// configuration and finish with Build, mirroring the way chtml's component
// tree is assembled from a sequence of small, composable steps rather than
// one large literal.
package policybuilder

import (
	"log/slog"

	"github.com/htmlguard/htmlguard"
	"github.com/htmlguard/htmlguard/engine/css"
)

// Builder accumulates policy configuration. Start one with New; the zero
// value has no factory and is not usable.
type Builder struct {
	factory *htmlguard.PolicyFactory
	err     error
}

// New starts a fresh, empty Builder.
func New() *Builder {
	return &Builder{factory: htmlguard.NewPolicyFactory()}
}

// Err returns the first error recorded by any builder method, or nil.
// Build also returns this error, so most callers never need to call Err
// directly; it exists for chains that want to check failure mid-sequence.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// AllowElements permits the named elements under htmlguard.AllowElement,
// with no attributes unless a later AllowAttributes call grants them.
func (b *Builder) AllowElements(names ...string) *Builder {
	for _, n := range names {
		b.factory.SetElementPolicy(n, htmlguard.AllowElement)
	}
	return b
}

// AllowElementsAs renames each key to its value while keeping it (e.g.
// {"b": "strong"}).
func (b *Builder) AllowElementsAs(renames map[string]string) *Builder {
	for from, to := range renames {
		b.factory.SetElementPolicy(from, htmlguard.RenameElement(to))
	}
	return b
}

// DropElements unwraps the named elements, keeping their content.
func (b *Builder) DropElements(names ...string) *Builder {
	for _, n := range names {
		b.factory.SetElementPolicy(n, htmlguard.DropElement)
	}
	return b
}

// DropElementsAndContent removes the named elements and everything inside
// them (e.g. "script", "style" when styling is not separately allowed).
func (b *Builder) DropElementsAndContent(names ...string) *Builder {
	for _, n := range names {
		b.factory.SetElementPolicy(n, htmlguard.DropElementAndContent)
	}
	return b
}

// AttributeScope restricts the attribute policy that follows to a set of
// element names, returned by AllowAttributes for chaining with OnElements.
type AttributeScope struct {
	b      *Builder
	policy htmlguard.AttributePolicy
}

// AllowAttributes starts an attribute grant for the given names, continued
// with .OnElements(...) or .Globally().
func (b *Builder) AllowAttributes(names ...string) *AttributeScope {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	policy := func(element, attr, value string) (string, bool) {
		return value, set[attr]
	}
	return &AttributeScope{b: b, policy: policy}
}

// OnElements restricts the attribute grant to the given elements. Repeated
// AllowAttributes(...).OnElements(...) calls for the same element accumulate
// (the attribute is kept if any grant approves it), rather than narrowing,
// since each call is additive authoring ("also allow these").
func (s *AttributeScope) OnElements(names ...string) *Builder {
	for _, n := range names {
		existing := s.b.factory.ElementAttrPolicy(n)
		s.b.factory.SetElementAttrPolicy(n, orAttributePolicies(existing, s.policy))
	}
	return s.b
}

// Globally grants the attributes on every element, regardless of name.
func (s *AttributeScope) Globally() *Builder {
	s.b.factory.SetGlobalAttrPolicy(orAttributePolicies(s.b.factory.GlobalAttrPolicy(), s.policy))
	return s.b
}

// orAttributePolicies keeps an attribute if either a or b would keep it,
// preferring a's (possibly rewritten) value when both approve. This is the
// union an AttributeScope needs when accumulating across repeated builder
// calls, as opposed to JoinAttributePolicies' intersection semantics used
// when composing two independently-built factories with And.
func orAttributePolicies(a, b htmlguard.AttributePolicy) htmlguard.AttributePolicy {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(element, attr, value string) (string, bool) {
		if v, ok := a(element, attr, value); ok {
			return v, true
		}
		return b(element, attr, value)
	}
}

// Matching narrows the attribute grant to values an expr-lang predicate
// accepts, with "value" bound to the attribute's current string value. A
// compile error is recorded on the builder and surfaces from Build.
func (s *AttributeScope) Matching(predicate string) *AttributeScope {
	pred, err := compileAttrPredicate(predicate)
	if err != nil {
		s.b.fail(err)
		return s
	}
	inner := s.policy
	s.policy = func(element, attr, value string) (string, bool) {
		v, keep := inner(element, attr, value)
		if !keep {
			return v, false
		}
		ok, err := pred(v)
		if err != nil || !ok {
			return v, false
		}
		return v, true
	}
	return s
}

// AllowURLProtocols sets the URL protocol whitelist for href/src/etc.
// attributes to exactly the given set.
func (b *Builder) AllowURLProtocols(protocols ...string) *Builder {
	b.factory.SetURLProtocolPolicy(htmlguard.AllowProtocols(protocols...))
	return b
}

// AllowStandardURLProtocols sets the whitelist to http/https/mailto/tel.
func (b *Builder) AllowStandardURLProtocols() *Builder {
	return b.AllowURLProtocols("http", "https", "mailto", "tel")
}

// RequireRelNofollowOnLinks adds rel="nofollow" to every <a>/<area> the
// factory keeps.
func (b *Builder) RequireRelNofollowOnLinks() *Builder {
	return b.RequireRelsOnLinks("nofollow")
}

// RequireRelsOnLinks adds the given rel tokens to every kept link.
func (b *Builder) RequireRelsOnLinks(tokens ...string) *Builder {
	for _, t := range tokens {
		if err := b.factory.RequireRelToken(t); err != nil {
			b.fail(err)
		}
	}
	return b
}

// SkipRelsOnLinks prevents the given rel tokens from ever being injected or
// kept, overriding any RequireRelsOnLinks call for the same token (spec's
// "skip wins over require" resolution).
func (b *Builder) SkipRelsOnLinks(tokens ...string) *Builder {
	for _, t := range tokens {
		if err := b.factory.SkipRelToken(t); err != nil {
			b.fail(err)
		}
	}
	return b
}

// AutoNoopenerOnTargetedLinks enables automatic noopener/noreferrer
// injection on any kept link carrying a non-"_self" target.
func (b *Builder) AutoNoopenerOnTargetedLinks() *Builder {
	b.factory.SetAutoNoopener(true)
	return b
}

// AllowStyling enables the style attribute under the given CSS property
// schema, on every element the factory otherwise keeps, and also allows the
// <style> element itself, sanitizing its text content as a CSS declaration
// list under the same schema (spec's "Style-attribute and <style> handling"
// component covers both surfaces, not just the attribute: SetCSSSchema is
// what the pipeline checks to decide whether <style> itself survives, so
// setting it here is sufficient -- no separate element grant needed). Pass
// css.DefaultSchema() for the built-in moderate schema.
func (b *Builder) AllowStyling(schema *css.Schema) *Builder {
	b.factory.SetCSSSchema(schema)
	b.AllowAttributes("style").Globally()
	return b
}

// AllowURLsInStyles sets the policy gating url(...) references inside style
// attribute values; without this call, every url()-bearing declaration is
// dropped even when AllowStyling is in effect.
func (b *Builder) AllowURLsInStyles(policy func(rawURL string) bool) *Builder {
	b.factory.SetCSSURLPolicy(policy)
	return b
}

// MaxDepth overrides the nesting cap (0 keeps the engine default).
func (b *Builder) MaxDepth(n int) *Builder {
	b.factory.SetMaxDepth(n)
	return b
}

// WithLogger sets the structured logger the factory uses for diagnostic
// output; a nil logger falls back to slog.Default() at sanitize time.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.factory.SetLogger(l)
	return b
}

// WithChangeListener registers a listener notified of every dropped
// element, attribute, URL and rel adjustment.
func (b *Builder) WithChangeListener(l htmlguard.ChangeListener) *Builder {
	b.factory.SetListener(l)
	return b
}

// WithPreprocessor runs fn over the raw fragment before tokenizing.
func (b *Builder) WithPreprocessor(fn func(string) string) *Builder {
	if fn == nil {
		b.fail(htmlguard.ErrNilArgument)
		return b
	}
	b.factory.SetPreprocessor(fn)
	return b
}

// WithPostprocessor runs fn over the serialized output before it is
// returned from Sanitize.
func (b *Builder) WithPostprocessor(fn func(string) string) *Builder {
	if fn == nil {
		b.fail(htmlguard.ErrNilArgument)
		return b
	}
	b.factory.SetPostprocessor(fn)
	return b
}

// And merges another already-built factory into this builder's with
// htmlguard.PolicyFactory.And, whose doc describes how each policy is
// joined.
func (b *Builder) And(other *htmlguard.PolicyFactory) *Builder {
	b.factory = b.factory.And(other)
	return b
}

// Build finalizes the factory, returning the first error recorded by any
// builder method, if any.
func (b *Builder) Build() (*htmlguard.PolicyFactory, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.factory, nil
}
