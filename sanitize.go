package htmlguard

import (
	"log/slog"

	"github.com/htmlguard/htmlguard/engine"
)

// Sanitize runs fragment through StandardFactory and returns the resulting
// well-formed, policy-conformant markup. It is the zero-configuration
// entry point for callers who want a reasonable default rather than
// building their own PolicyFactory (spec's "Supplemented features").
func Sanitize(fragment string) string {
	return StandardFactory().Sanitize(fragment, nil)
}

// Sanitize transforms fragment per f's policies, reporting dropped units to
// lctx-scoped change listeners when f has one configured. lctx is passed
// through to every ChangeListener.OnChange call unchanged, letting one
// listener implementation disambiguate concurrent callers (spec §6).
func (f *PolicyFactory) Sanitize(fragment string, lctx any) string {
	if f.preprocessor != nil {
		fragment = f.preprocessor(fragment)
	}

	table := engine.NewHTMLContainmentTable()

	tokens := engine.Tokenize(fragment)
	tokens = engine.NewBalancer(table, f.maxDepth).Balance(tokens)
	tokens = applyPolicy(f, tokens, table, lctx)

	logger := f.logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := engine.NewRenderer(table, func(msg string) {
		logger.Warn("htmlguard: renderer contract violation", "detail", msg)
	})
	out := renderer.Render(tokens)

	if f.postprocessor != nil {
		out = f.postprocessor(out)
	}
	return out
}

// VerifyIdempotent reports whether sanitizing fragment a second time (with
// the same factory) changes nothing, the property spec §1 calls out as the
// sanitizer's core safety guarantee: Sanitize(Sanitize(x)) == Sanitize(x).
// It is a testing/diagnostic helper, not something production code needs to
// call on every request.
func (f *PolicyFactory) VerifyIdempotent(fragment string) bool {
	once := f.Sanitize(fragment, nil)
	twice := f.Sanitize(once, nil)
	return once == twice
}

// StandardFactory returns a moderate, dependency-free default policy:
// common text-formatting and block elements, the standard URL protocol
// whitelist, automatic nofollow/noopener/noreferrer on links, and no CSS
// styling support. It exists so Sanitize has something to call, and as a
// starting point policybuilder.New().And(htmlguard.StandardFactory()) can
// narrow further.
func StandardFactory() *PolicyFactory {
	f := NewPolicyFactory()
	f.maxDepth = engine.DefaultMaxDepth
	f.urlProtocols = AllowProtocols("http", "https", "mailto", "tel")
	f.rel = &relPolicy{
		required:     map[string]bool{"nofollow": true},
		skip:         map[string]bool{},
		autoNoopener: true,
	}
	f.globalAttrs = func(element, attr, value string) (string, bool) {
		switch attr {
		case "id", "title", "lang", "dir":
			return value, true
		}
		return value, false
	}
	for _, name := range []string{
		"p", "br", "hr", "b", "i", "u", "strong", "em", "small", "mark",
		"sub", "sup", "blockquote", "pre", "code", "ul", "ol", "li",
		"h1", "h2", "h3", "h4", "h5", "h6", "span", "div",
	} {
		f.elements[name] = AllowElement
	}
	f.elements["a"] = func(name string, attrs []engine.Attr) ElementDecision {
		return ElementDecision{Name: "a", Keep: true}
	}
	f.attrs["a"] = func(element, attr, value string) (string, bool) {
		if attr == "href" || attr == "target" || attr == "rel" {
			return value, true
		}
		return value, false
	}
	return f
}
