package htmlguard

import "github.com/htmlguard/htmlguard/engine"

// AttributePolicy decides whether a single attribute survives, and may
// rewrite its value. element is the element's canonical name, attr is the
// attribute's canonical name, value is its current (already entity-decoded)
// value. Returning keep=false drops both name and value together -- never
// one without the other (spec §4.4).
type AttributePolicy func(element, attr, value string) (newValue string, keep bool)

// IdentityAttributePolicy keeps every value unchanged. It is the identity
// element of attribute-policy joining.
func IdentityAttributePolicy(_, _, value string) (string, bool) { return value, true }

// RejectAllAttributePolicy drops every attribute it sees. It is the
// absorbing element of attribute-policy joining.
func RejectAllAttributePolicy(_, _, _ string) (string, bool) { return "", false }

// JoinAttributePolicies composes a then b: b only runs if a did not drop
// the attribute, and sees a's (possibly rewritten) value. Joining this way
// is associative, so callers may fold an arbitrary slice of policies with
// repeated calls (spec §3 "Policies compose by ordered joining").
func JoinAttributePolicies(a, b AttributePolicy) AttributePolicy {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(element, attr, value string) (string, bool) {
		v, ok := a(element, attr, value)
		if !ok {
			return "", false
		}
		return b(element, attr, v)
	}
}

// ElementDecision is the outcome of routing a start tag through the
// element-policy stage.
type ElementDecision struct {
	// Name is the (possibly renamed) element name to emit. Ignored if Keep
	// is false.
	Name string
	// Keep, when false, drops the start/end tag pair for this element
	// while still emitting its children -- unless SkipContent is also set,
	// in which case children are dropped too (spec §4.4).
	Keep bool
	// SkipContent drops every descendant event until the matching close,
	// regardless of Keep.
	SkipContent bool
}

// ElementPolicy decides what to do with a start tag and its (already
// attribute-filtered) attribute list.
type ElementPolicy func(name string, attrs []engine.Attr) ElementDecision

// AllowElement is an ElementPolicy that keeps the element under its
// current name, unchanged, with whatever attributes the attribute-filter
// stage already approved.
func AllowElement(name string, attrs []engine.Attr) ElementDecision {
	return ElementDecision{Name: name, Keep: true}
}

// RenameElement returns an ElementPolicy that keeps the element but renders
// it under newName (e.g. mapping <b> to <strong>).
func RenameElement(newName string) ElementPolicy {
	return func(name string, attrs []engine.Attr) ElementDecision {
		return ElementDecision{Name: newName, Keep: true}
	}
}

// DropElement is an ElementPolicy that unwraps the element: its tags are
// removed but its children are still emitted.
func DropElement(name string, attrs []engine.Attr) ElementDecision {
	return ElementDecision{Keep: false}
}

// DropElementAndContent is an ElementPolicy that removes the element and
// everything inside it.
func DropElementAndContent(name string, attrs []engine.Attr) ElementDecision {
	return ElementDecision{Keep: false, SkipContent: true}
}
