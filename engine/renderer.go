package engine

import (
	"regexp"
	"strings"
)

// nameRe is the element/attribute name grammar the renderer enforces (spec
// §4.5): a letter, then letters/digits/underscore/hyphen. No colons, no
// "@", no leading digit or hyphen -- nothing a downstream parser could
// mistake for a namespaced or data-bound name.
var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)

func validName(s string) bool { return nameRe.MatchString(s) }

// substituteObsoleteCDATA are the obsolete CDATA-mode elements the renderer
// downgrades to <pre> (spec §4.5): they would mis-parse under an XHTML-style
// parser since this renderer always emits self-closed void elements and
// double-quoted attributes.
var substituteObsoleteCDATA = map[string]bool{
	"xmp": true, "listing": true, "plaintext": true,
}

type renderFrame struct {
	name     string
	escaping EscapingMode
	valid    bool
}

// Renderer serializes a balanced Token stream to XHTML-compatible markup.
// It owns no state beyond one Render call's output buffer and frame stack,
// so a *Renderer is safe to reuse sequentially or to construct fresh per
// call (spec §5).
type Renderer struct {
	table   *ContainmentTable
	onError func(string)
}

// NewRenderer builds a Renderer. onError receives a human-readable message
// for every dropped renderer-contract-violation (spec §4.5, §7); it may be
// nil, in which case violations are silently dropped.
func NewRenderer(table *ContainmentTable, onError func(string)) *Renderer {
	if onError == nil {
		onError = func(string) {}
	}
	return &Renderer{table: table, onError: onError}
}

// Render consumes a balanced Token stream (as produced by Balancer.Balance)
// and returns the serialized fragment.
func (r *Renderer) Render(tokens []Token) string {
	var b strings.Builder
	var stack []renderFrame

	for _, tok := range tokens {
		switch tok.Type {
		case DocStartToken, DocEndToken:
			continue

		case StartTagToken:
			if len(stack) > 0 && stack[len(stack)-1].escaping == CDATA {
				// Tags cannot appear inside CDATA content: drop the tag and
				// keep its text (if any) under the parent's escaping.
				parent := stack[len(stack)-1]
				r.onError("dropped tag inside cdata element <" + parent.name + ">: " + tok.Name)
				if !r.table.Lookup(tok.Name).Void {
					stack = append(stack, renderFrame{name: parent.name, escaping: parent.escaping, valid: false})
				}
				continue
			}
			name := tok.Name
			escaping := r.table.Lookup(name).Escaping
			if substituteObsoleteCDATA[name] {
				name = "pre"
				escaping = PCDATA
			}
			valid := validName(name)
			if !valid {
				r.onError("dropped element with invalid name: " + tok.Name)
			}
			if valid {
				b.WriteByte('<')
				b.WriteString(name)
				r.renderAttrs(&b, tok.Name, tok.Attrs)
				if r.table.Lookup(tok.Name).Void {
					b.WriteString(" />")
				} else {
					b.WriteByte('>')
				}
			}
			if !r.table.Lookup(tok.Name).Void {
				stack = append(stack, renderFrame{name: name, escaping: escaping, valid: valid})
			}

		case EndTagToken:
			if len(stack) == 0 {
				continue
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.valid {
				b.WriteString("</")
				b.WriteString(f.name)
				b.WriteByte('>')
			}

		case TextToken:
			text := tok.Text
			var mode EscapingMode = PCDATA
			var cdataName string
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				mode = top.escaping
				cdataName = top.name
			}
			switch mode {
			case CDATA:
				if idx := findClosingSequence(text, cdataName); idx != -1 {
					r.onError("dropped cdata content containing closing tag for <" + cdataName + ">")
					continue
				}
				b.WriteString(stripTextBanned(text))
			case RCDATA:
				b.WriteString(escapeRCDATA(text))
			case PlainText:
				b.WriteString(stripTextBanned(text))
			default:
				b.WriteString(escapePCDATA(text))
			}
		}
	}
	return b.String()
}

func (r *Renderer) renderAttrs(b *strings.Builder, elem string, attrs []Attr) {
	for _, a := range attrs {
		if !validName(a.Key) {
			r.onError("dropped attribute with invalid name: " + a.Key)
			continue
		}
		val := a.Val
		if urlValuedAttrs[elem][a.Key] {
			val = percentEncodeURL(val)
		}
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(val))
		b.WriteByte('"')
	}
}

// urlValuedAttrs names the attributes, per element, whose value the
// renderer percent-encodes before attribute-escaping (spec §4.5 "URL
// attribute values"). This mirrors the policy layer's own urlAttrs table in
// pipeline.go, which gates the same attributes against a protocol
// whitelist; the renderer's copy exists independently because engine has
// no notion of policy and must percent-encode correctly even when driven
// directly, without going through a PolicyFactory at all.
var urlValuedAttrs = map[string]map[string]bool{
	"a":    {"href": true},
	"area": {"href": true},
	"link": {"href": true},
	"base": {"href": true},
	// srcset is deliberately excluded: it is a comma/space-separated list of
	// URL+descriptor pairs, not a single URL, and percent-encoding the whole
	// value would corrupt its descriptor syntax. The policy layer gates each
	// candidate URL within it against the protocol whitelist individually;
	// the candidates are not percent-encoded.
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

// findClosingSequence returns the index of the first case-insensitive
// "</name" substring in text followed by a whitespace/">"/"/" delimiter (or
// end of string), or -1. This is the check that keeps CDATA-mode content
// (script/style/etc.) from smuggling its own closing tag past the renderer.
func findClosingSequence(text, name string) int {
	if name == "" {
		return -1
	}
	lower := strings.ToLower(text)
	needle := "</" + strings.ToLower(name)
	from := 0
	for {
		i := strings.Index(lower[from:], needle)
		if i == -1 {
			return -1
		}
		pos := from + i
		after := pos + len(needle)
		if after >= len(lower) || isDelimiterByte(lower[after]) {
			return pos
		}
		from = pos + 1
	}
}

func isDelimiterByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '>', '/':
		return true
	}
	return false
}
