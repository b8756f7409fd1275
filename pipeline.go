package htmlguard

import (
	"log/slog"

	"github.com/htmlguard/htmlguard/engine"
	"github.com/htmlguard/htmlguard/engine/css"
)

// pipelineFrame tracks, for one currently-open element, whether its tags
// are being emitted at all and whether its subtree is being suppressed --
// the two independent axes an ElementDecision can set (spec §4.4) -- plus
// whether its text content is a CSS declaration list that needs sanitizing
// rather than ordinary CDATA passthrough (a kept <style> element).
type pipelineFrame struct {
	emitTags bool
	skipping bool
	cssText  bool
}

// applyPolicy runs the already-balanced token stream through a factory's
// attribute policies (with URL gating and style sanitizing), element
// policy and rel policy, in that order per start tag, and returns the
// resulting filtered token stream ready for the renderer. It never reorders
// or unbalances tags: every non-void StartTagToken this emits (when
// emitTags is true) is matched by exactly one EndTagToken later, because
// the decision made at open time is remembered on a stack and replayed
// unchanged at the matching close. Void elements get no frame, since the
// balancer emits no close for them.
func applyPolicy(f *PolicyFactory, tokens []engine.Token, table *engine.ContainmentTable, ctx any) []engine.Token {
	out := make([]engine.Token, 0, len(tokens))
	var stack []pipelineFrame
	skipDepth := 0

	logger := f.logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, tok := range tokens {
		switch tok.Type {
		case engine.DocStartToken, engine.DocEndToken:
			out = append(out, tok)

		case engine.StartTagToken:
			void := table.Lookup(tok.Name).Void
			if skipDepth > 0 {
				if !void {
					skipDepth++
					stack = append(stack, pipelineFrame{})
				}
				continue
			}

			attrs := filterAttributes(f, tok.Name, tok.Attrs, ctx)

			decision := defaultDecision(tok.Name, table)
			if ep, ok := f.elements[tok.Name]; ok {
				decision = ep(tok.Name, attrs)
			} else if f.globalElement != nil {
				decision = f.globalElement(tok.Name, attrs)
			} else if tok.Name == "style" && f.cssSchema != nil {
				// <style> has no attribute-only analogue: a factory that
				// enables style-attribute support via SetCSSSchema is making
				// a cross-cutting styling decision, not an element-allowlist
				// one, so this rides the same join as cssSchema in And
				// rather than the elements map (spec's "Style-attribute and
				// <style> handling" component covers both surfaces).
				decision = ElementDecision{Name: "style", Keep: true}
			}

			frame := pipelineFrame{
				emitTags: decision.Keep,
				skipping: decision.SkipContent,
				cssText:  decision.Keep && !decision.SkipContent && tok.Name == "style" && f.cssSchema != nil,
			}
			if !void {
				stack = append(stack, frame)
			}

			if decision.SkipContent {
				if !void {
					skipDepth = 1
				}
				if f.listener != nil {
					f.listener.OnChange(ctx, Change{Kind: ElementSkippedWithContent, Element: tok.Name})
				}
				continue
			}
			if !decision.Keep {
				if f.listener != nil {
					f.listener.OnChange(ctx, Change{Kind: ElementDropped, Element: tok.Name})
				}
				continue
			}
			attrs = applyRelPolicy(f.rel, tok.Name, attrs, f.listener, ctx)
			name := decision.Name
			if name == "" {
				name = tok.Name
			}
			out = append(out, engine.Token{Type: engine.StartTagToken, Name: name, Attrs: attrs})

		case engine.EndTagToken:
			if len(stack) == 0 {
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if frame.emitTags {
				out = append(out, tok)
			}

		case engine.TextToken:
			if skipDepth > 0 {
				continue
			}
			if len(stack) > 0 && stack[len(stack)-1].cssText {
				sanitized := css.SanitizeStyle(tok.Text, f.cssSchema, f.cssURLPolicy)
				if sanitized == "" {
					if f.listener != nil {
						f.listener.OnChange(ctx, Change{Kind: CSSPropertyDropped, Element: "style"})
					}
					continue
				}
				out = append(out, engine.Token{Type: engine.TextToken, Text: sanitized})
				continue
			}
			out = append(out, tok)

		default:
			logger.Debug("htmlguard: unrecognized token type in pipeline", "type", tok.Type)
		}
	}
	return out
}

// defaultDecision is what an element with no element policy configured for
// its name, and no global fallback, receives. Ordinary elements unwrap
// (Keep=false, SkipContent=false): their tags vanish but their text
// survives, matching how an unknown attribute is dropped without voiding
// its element. Elements whose containment descriptor marks them CDATA or
// RCDATA are the one exception -- their content is not safe to re-parent
// as PCDATA text, so it is dropped along with the tags.
func defaultDecision(name string, table *engine.ContainmentTable) ElementDecision {
	d := table.Lookup(name)
	if d.Escaping == engine.CDATA || d.Escaping == engine.RCDATA {
		return ElementDecision{Keep: false, SkipContent: true}
	}
	return ElementDecision{Keep: false, SkipContent: false}
}

// filterAttributes runs every attribute on a start tag through the
// factory's attribute policies (an attribute is approved when either the
// element's own policy or the global policy keeps it), the URL gate for
// URL-valued attributes, and the style sanitizer for the style attribute.
// Duplicate attribute names are resolved to the first candidate that
// survives every gate, not the first occurrence in source order: a
// policy-rejected (or URL-rejected) first duplicate must not shadow a later
// duplicate that would otherwise be approved (spec §4.4 "deduplicated to
// the first non-null policy-approved value").
func filterAttributes(f *PolicyFactory, elem string, attrs []engine.Attr, ctx any) []engine.Attr {
	out := make([]engine.Attr, 0, len(attrs))
	approved := make(map[string]bool, len(attrs))

	policy := f.attrs[elem]
	if elemPolicy, global := policy, f.globalAttrs; global != nil {
		policy = global
		if elemPolicy != nil {
			policy = func(element, attr, value string) (string, bool) {
				if v, ok := elemPolicy(element, attr, value); ok {
					return v, true
				}
				return global(element, attr, value)
			}
		}
	}

	for _, a := range attrs {
		if approved[a.Key] {
			continue
		}

		val := a.Val
		// No configured policy for this element (and no global one) means no
		// attribute is approved, matching defaultDecision's deny-by-default
		// for elements: a PolicyFactory only keeps what it explicitly names.
		keep := false

		if policy != nil {
			val, keep = policy(elem, a.Key, val)
		}
		if !keep {
			if f.listener != nil {
				f.listener.OnChange(ctx, Change{Kind: AttributeDropped, Element: elem, Attribute: a.Key})
			}
			continue
		}

		if urlAttrs[elem][a.Key] {
			gated, ok := GateURL(val, f.urlProtocols)
			if !ok {
				if f.listener != nil {
					f.listener.OnChange(ctx, Change{Kind: URLRejected, Element: elem, Attribute: a.Key, Detail: val})
				}
				continue
			}
			val = gated
		} else if elem == "img" && a.Key == "srcset" {
			srcset, ok := sanitizeSrcset(val, f.urlProtocols)
			if !ok {
				if f.listener != nil {
					f.listener.OnChange(ctx, Change{Kind: URLRejected, Element: elem, Attribute: a.Key, Detail: val})
				}
				continue
			}
			val = srcset
		} else if a.Key == "style" {
			sanitized := ""
			if f.cssSchema != nil {
				sanitized = css.SanitizeStyle(val, f.cssSchema, f.cssURLPolicy)
			}
			if sanitized == "" {
				if f.listener != nil {
					f.listener.OnChange(ctx, Change{Kind: CSSPropertyDropped, Element: elem, Attribute: "style"})
				}
				continue
			}
			val = sanitized
		}

		approved[a.Key] = true
		out = append(out, engine.Attr{Key: a.Key, Val: val})
	}
	return out
}

// urlAttrs names the attributes, per element, whose value is a URL subject
// to protocol gating (spec §4.4's named set: href, src, srcset, action,
// formaction, cite, data, poster, background, longdesc, usemap). href/src
// are the common case; the rest cover form actions, media posters, object
// data, quote citations, legacy table/body backgrounds, and image maps.
var urlAttrs = map[string]map[string]bool{
	"a":          {"href": true},
	"area":       {"href": true},
	"link":       {"href": true},
	"base":       {"href": true},
	"img":        {"src": true, "longdesc": true, "usemap": true},
	"source":     {"src": true},
	"track":      {"src": true},
	"audio":      {"src": true},
	"video":      {"src": true, "poster": true},
	"iframe":     {"src": true},
	"embed":      {"src": true},
	"object":     {"data": true, "usemap": true},
	"form":       {"action": true},
	"input":      {"src": true, "formaction": true},
	"button":     {"formaction": true},
	"blockquote": {"cite": true},
	"q":          {"cite": true},
	"del":        {"cite": true},
	"ins":        {"cite": true},
	"body":       {"background": true},
	"table":      {"background": true},
	"td":         {"background": true},
	"th":         {"background": true},
}
