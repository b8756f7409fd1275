package htmlguard

import (
	"log/slog"
	"sort"

	"github.com/htmlguard/htmlguard/engine"
	"github.com/htmlguard/htmlguard/engine/css"
)

// PolicyFactory is an immutable, composable bundle of the policies the
// pipeline applies to one sanitize call (spec §4.4 "PolicyFactory"). The
// zero value is usable (it keeps nothing: every element falls through to
// defaultDecision and every URL/rel/style policy is absent), but callers
// normally build one with policybuilder or NewPolicyFactory.
type PolicyFactory struct {
	elements      map[string]ElementPolicy
	globalElement ElementPolicy

	attrs       map[string]AttributePolicy
	globalAttrs AttributePolicy

	urlProtocols URLProtocolPolicy
	rel          *relPolicy

	cssSchema    *css.Schema
	cssURLPolicy css.URLPolicy

	maxDepth int
	logger   *slog.Logger
	listener ChangeListener

	preprocessor  func(string) string
	postprocessor func(string) string
}

// NewPolicyFactory returns an empty PolicyFactory ready for incremental
// configuration by its Set*/RequireRelToken/SkipRelToken methods (used by
// policybuilder.Builder, which is the supported public entry point for
// constructing one).
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{
		elements: make(map[string]ElementPolicy),
		attrs:    make(map[string]AttributePolicy),
		rel:      newRelPolicy(),
	}
}

// And returns a new factory joining f and other. Elements are unioned by
// name: a name registered on both sides is kept only if both policies keep
// it, and a name registered on one side only keeps that side's policy
// (combined with the other side's global element policy, if it has one).
// Attribute policies for the same element compose so the stricter of the
// two always wins; URL protocols and CSS schemas intersect when both sides
// set them; required and skipped rel tokens union; maxDepth takes the
// smaller non-zero bound. Neither operand is mutated.
func (f *PolicyFactory) And(other *PolicyFactory) *PolicyFactory {
	out := NewPolicyFactory()

	// A factory that configures no element policy at all (no per-element
	// entries, no global fallback) is read as "no opinion on elements" --
	// e.g. a bundle that only turns on style support via AllowStyling --
	// rather than as "rejects everything". Such a factory passes the
	// other side's element decisions through unchanged when joined.
	fHasOpinion := len(f.elements) > 0 || f.globalElement != nil
	oHasOpinion := len(other.elements) > 0 || other.globalElement != nil

	switch {
	case !fHasOpinion && !oHasOpinion:
		// neither factory restricts elements; leave out.elements empty so
		// defaultDecision applies everywhere, same as either side alone.
	case !fHasOpinion:
		for name, ep := range other.elements {
			out.elements[name] = ep
		}
		out.globalElement = other.globalElement
	case !oHasOpinion:
		for name, ep := range f.elements {
			out.elements[name] = ep
		}
		out.globalElement = f.globalElement
	default:
		names := make(map[string]bool, len(f.elements)+len(other.elements))
		for name := range f.elements {
			names[name] = true
		}
		for name := range other.elements {
			names[name] = true
		}
		for name := range names {
			fp, fok := f.elements[name]
			op, ook := other.elements[name]
			switch {
			case fok && ook:
				out.elements[name] = andElementPolicies(fp, op)
			case fok && other.globalElement != nil:
				out.elements[name] = andElementPolicies(fp, other.globalElement)
			case ook && f.globalElement != nil:
				out.elements[name] = andElementPolicies(f.globalElement, op)
			case fok:
				// the other side neither names this element nor has a
				// global fallback: f's own policy applies unchanged.
				out.elements[name] = fp
			default:
				out.elements[name] = op
			}
		}
		out.globalElement = andElementPolicyPtrs(f.globalElement, other.globalElement)
	}

	for name := range f.attrs {
		out.attrs[name] = JoinAttributePolicies(f.attrs[name], other.attrs[name])
	}
	for name := range other.attrs {
		if _, ok := out.attrs[name]; !ok {
			out.attrs[name] = JoinAttributePolicies(f.attrs[name], other.attrs[name])
		}
	}
	out.globalAttrs = JoinAttributePolicies(f.globalAttrs, other.globalAttrs)

	out.urlProtocols = joinURLPolicies(f.urlProtocols, other.urlProtocols)
	out.rel = f.rel.and(other.rel)

	out.cssSchema = joinSchemas(f.cssSchema, other.cssSchema)
	out.cssURLPolicy = joinCSSURLPolicies(f.cssURLPolicy, other.cssURLPolicy)

	out.maxDepth = minNonZero(f.maxDepth, other.maxDepth)
	out.logger = firstNonNilLogger(f.logger, other.logger)
	out.listener = firstListener(f.listener, other.listener)

	out.preprocessor = chainStringFuncs(f.preprocessor, other.preprocessor)
	out.postprocessor = chainStringFuncs(f.postprocessor, other.postprocessor)

	return out
}

// andElementPolicies applies a then b and keeps the element only if both
// keep it, taking a's renamed Name as the name b sees (so a rename by the
// first factory is visible to the second's own renaming decision).
func andElementPolicies(a, b ElementPolicy) ElementPolicy {
	return func(name string, attrs []engine.Attr) ElementDecision {
		da := a(name, attrs)
		if !da.Keep {
			return da
		}
		n := da.Name
		if n == "" {
			n = name
		}
		db := b(n, attrs)
		return ElementDecision{
			Name:        db.Name,
			Keep:        da.Keep && db.Keep,
			SkipContent: da.SkipContent || db.SkipContent,
		}
	}
}

func andElementPolicyPtrs(a, b ElementPolicy) ElementPolicy {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return andElementPolicies(a, b)
}

func joinURLPolicies(a, b URLProtocolPolicy) URLProtocolPolicy {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return IntersectProtocolPolicies(a, b)
}

func joinCSSURLPolicies(a, b css.URLPolicy) css.URLPolicy {
	if a == nil || b == nil {
		return nil
	}
	return func(raw string) bool { return a(raw) && b(raw) }
}

func joinSchemas(a, b *css.Schema) *css.Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return css.Intersect(a, b)
}

func minNonZero(a, b int) int {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func firstNonNilLogger(a, b *slog.Logger) *slog.Logger {
	if a != nil {
		return a
	}
	return b
}

func firstListener(a, b ChangeListener) ChangeListener {
	if a != nil {
		return a
	}
	return b
}

func chainStringFuncs(a, b func(string) string) func(string) string {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(s string) string { return b(a(s)) }
}

// The methods below are the mutation surface policybuilder.Builder is
// written against. PolicyFactory's fields stay unexported, so outside this
// package a factory is configured only through these methods on a factory
// from NewPolicyFactory (which sets up the maps and relPolicy they write
// to), or produced by And.

// SetElementPolicy registers ep as the policy for name, overwriting any
// previous one.
func (f *PolicyFactory) SetElementPolicy(name string, ep ElementPolicy) {
	f.elements[name] = ep
}

// ElementNames returns the sorted names of elements with a directly
// registered element policy (via SetElementPolicy). It says nothing about
// whether that policy allows, drops, renames, or conditionally keeps the
// element -- ElementPolicy is an opaque closure, so the name list is the
// only thing about the elements map a caller outside this package can
// honestly introspect (policybuilder.WriteXML uses exactly this, and only
// this, to serialize a factory's element surface).
func (f *PolicyFactory) ElementNames() []string {
	names := make([]string, 0, len(f.elements))
	for name := range f.elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ElementAttrPolicy returns the attribute policy currently registered for
// name, or nil.
func (f *PolicyFactory) ElementAttrPolicy(name string) AttributePolicy {
	return f.attrs[name]
}

// SetElementAttrPolicy registers policy as the attribute policy for name.
func (f *PolicyFactory) SetElementAttrPolicy(name string, policy AttributePolicy) {
	f.attrs[name] = policy
}

// GlobalAttrPolicy returns the attribute policy applied to every element
// regardless of name, or nil.
func (f *PolicyFactory) GlobalAttrPolicy() AttributePolicy { return f.globalAttrs }

// SetGlobalAttrPolicy sets the attribute policy applied to every element.
func (f *PolicyFactory) SetGlobalAttrPolicy(policy AttributePolicy) { f.globalAttrs = policy }

// SetURLProtocolPolicy sets the whitelist URL-valued attributes are gated
// against.
func (f *PolicyFactory) SetURLProtocolPolicy(policy URLProtocolPolicy) { f.urlProtocols = policy }

// RequireRelToken adds token to the set every kept <a>/<area> must carry,
// unless the same token is also in the skip set.
func (f *PolicyFactory) RequireRelToken(token string) error {
	if containsWhitespace(token) {
		return ErrRelTokenHasWhitespace
	}
	f.rel.required[asciiLower(token)] = true
	return nil
}

// SkipRelToken adds token to the set that is always stripped from rel,
// overriding RequireRelToken for the same token.
func (f *PolicyFactory) SkipRelToken(token string) error {
	if containsWhitespace(token) {
		return ErrRelTokenHasWhitespace
	}
	f.rel.skip[asciiLower(token)] = true
	return nil
}

// SetAutoNoopener toggles automatic noopener/noreferrer injection on
// targeted links.
func (f *PolicyFactory) SetAutoNoopener(on bool) { f.rel.autoNoopener = on }

// SetCSSSchema sets the property schema the style attribute is validated
// against. A nil schema disables style-attribute support entirely.
func (f *PolicyFactory) SetCSSSchema(schema *css.Schema) { f.cssSchema = schema }

// SetCSSURLPolicy sets the policy gating url(...) references inside style
// values.
func (f *PolicyFactory) SetCSSURLPolicy(policy css.URLPolicy) { f.cssURLPolicy = policy }

// SetMaxDepth overrides the nesting cap; 0 selects the engine default.
func (f *PolicyFactory) SetMaxDepth(n int) { f.maxDepth = n }

// SetLogger sets the structured logger used for diagnostic output.
func (f *PolicyFactory) SetLogger(l *slog.Logger) { f.logger = l }

// SetListener registers the change listener notified of policy drops.
func (f *PolicyFactory) SetListener(l ChangeListener) { f.listener = l }

// SetPreprocessor sets the function run over raw input before tokenizing.
func (f *PolicyFactory) SetPreprocessor(fn func(string) string) { f.preprocessor = fn }

// SetPostprocessor sets the function run over serialized output before it
// is returned from Sanitize.
func (f *PolicyFactory) SetPostprocessor(fn func(string) string) { f.postprocessor = fn }

func containsWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			return true
		}
	}
	return false
}
