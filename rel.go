package htmlguard

import (
	"sort"
	"strings"

	"github.com/htmlguard/htmlguard/engine"
)

// relTokens splits a rel attribute value on ASCII whitespace into a
// lowercase set, per the space-separated-tokens microsyntax HTML uses for
// rel, ping, class and similar attributes.
func relTokens(val string) map[string]bool {
	fields := strings.Fields(val)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[strings.ToLower(f)] = true
	}
	return set
}

// relPolicy is the resolved, per-factory rel configuration: required tells
// which tokens every matching <a>/<area> must carry, skip wins over
// required when a token appears in both (an author who explicitly wants to
// allow an opener relationship should not have it silently re-added), and
// autoNoopener adds noopener+noreferrer whenever a target attribute would
// otherwise open a new browsing context with access to window.opener.
type relPolicy struct {
	required     map[string]bool
	skip         map[string]bool
	autoNoopener bool
}

func newRelPolicy() *relPolicy {
	return &relPolicy{required: map[string]bool{}, skip: map[string]bool{}}
}

func (p *relPolicy) clone() *relPolicy {
	out := &relPolicy{
		required:     make(map[string]bool, len(p.required)),
		skip:         make(map[string]bool, len(p.skip)),
		autoNoopener: p.autoNoopener,
	}
	for k := range p.required {
		out.required[k] = true
	}
	for k := range p.skip {
		out.skip[k] = true
	}
	return out
}

// and merges two rel policies the way PolicyFactory.And merges everything
// else: required tokens union (either factory's requirement still binds),
// skip tokens union, autoNoopener union -- then skip wins over required
// per-token so a factory that explicitly skips a token can loosen a
// stricter partner instead of being overridden by it.
func (p *relPolicy) and(o *relPolicy) *relPolicy {
	out := p.clone()
	for k := range o.required {
		out.required[k] = true
	}
	for k := range o.skip {
		out.skip[k] = true
	}
	out.autoNoopener = out.autoNoopener || o.autoNoopener
	return out
}

// apply computes the final rel attribute value for one <a>/<area> start
// tag and returns it, or ("", false) if the attribute should be removed
// entirely because the resulting token set is empty.
func (p *relPolicy) apply(attrs []engine.Attr) (string, bool) {
	existing, _ := attrsGet(attrs, "rel")
	tokens := relTokens(existing)

	want := make(map[string]bool, len(tokens)+len(p.required))
	for t := range tokens {
		want[t] = true
	}
	for t := range p.required {
		want[t] = true
	}

	if p.autoNoopener {
		if target, ok := attrsGet(attrs, "target"); ok && !strings.EqualFold(target, "_self") && target != "" {
			want["noopener"] = true
			want["noreferrer"] = true
		}
	}

	for t := range p.skip {
		delete(want, t)
	}

	if len(want) == 0 {
		return "", false
	}

	out := make([]string, 0, len(want))
	for t := range want {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, " "), true
}

// applyRelPolicy mutates attrs in place for the given element, adding,
// adjusting or removing rel as required. It reports the outcome to
// listener when non-nil so callers can audit injected tokens the same way
// they audit dropped attributes.
func applyRelPolicy(p *relPolicy, elem string, attrs []engine.Attr, listener ChangeListener, lctx any) []engine.Attr {
	if p == nil || (elem != "a" && elem != "area") {
		return attrs
	}
	before, hadRel := attrsGet(attrs, "rel")
	after, keep := p.apply(attrs)
	if !keep {
		if hadRel {
			attrs = attrsRemove(attrs, "rel")
		}
		return attrs
	}
	if after != before {
		attrs = attrsSet(attrs, "rel", after)
		if listener != nil {
			listener.OnChange(lctx, Change{Kind: RelTokenAdjusted, Element: elem, Attribute: "rel", Detail: after})
		}
	}
	return attrs
}
