package engine

// Group is a bitset of element categories used to decide what an element
// may contain and what may contain it. An element's TypeMask records which
// groups it belongs to; a potential parent's ContentMask records which
// groups it may hold directly.
type Group uint32

const (
	GroupBlock Group = 1 << iota
	GroupInline
	GroupInlineMinusA // inline, except <a> (used inside <a> itself)
	GroupTableContent
	GroupHeadContent
	GroupLI
	GroupDLPart
	GroupP
	GroupOptions
	GroupParam
	GroupTable
	GroupTR
	GroupTD
	GroupCol
	GroupCharacterData
)

// Scope is a bitset of the HTML5 "element in scope" categories an element
// can act as a boundary for: a close-tag search stops when it meets an
// element whose InScopes intersects the scope being searched.
type Scope uint8

const (
	ScopeCommon Scope = 1 << iota
	ScopeButton
	ScopeListItem
	ScopeTable
	ScopeSelect
	ScopeAll
)

// EscapingMode selects how the renderer treats an element's text content.
type EscapingMode int

const (
	PCDATA EscapingMode = iota
	CDATA
	RCDATA
	PlainText
	voidText // elements that can hold no content at all
)

// Descriptor is the static, immutable containment record for one element
// name. Descriptors never change after table construction; sharing one
// across concurrent sanitize calls is always safe.
type Descriptor struct {
	Name string

	TypeMask    Group
	ContentMask Group

	// Transparent is the set of groups this element defers to an ancestor
	// for, rather than gating itself (spec: <a>, <ins>, <del>, <object>,
	// media elements).
	Transparent Group

	Void      bool
	Resumable bool

	// BlockContainerChild is the element implicitly opened when content
	// arrives that the current top of stack cannot hold directly but this
	// child can (e.g. "tbody" for "table", "dd" for "dl").
	BlockContainerChild string

	InScopes Scope
	Escaping EscapingMode
}

// ContainmentTable is a read-only name -> Descriptor map, built in one
// pass. BlockContainerChild is stored as a name and resolved through Lookup
// only when it is used, so a descriptor may name a child registered after
// it. A later registration of the same name replaces the earlier one.
type ContainmentTable struct {
	byName map[string]*Descriptor
}

// Lookup returns the descriptor for name, or the fallback "unknown inline"
// descriptor if name is not recognized. The fallback treats the element as
// an opaque, non-void, PCDATA-escaped inline element, so unrecognized tags
// degrade safely rather than panicking downstream.
func (t *ContainmentTable) Lookup(name string) *Descriptor {
	if d, ok := t.byName[name]; ok {
		return d
	}
	return &unknownDescriptor
}

var unknownDescriptor = Descriptor{
	Name:        "",
	TypeMask:    GroupInline,
	ContentMask: GroupInline | GroupCharacterData,
	Escaping:    PCDATA,
}

func desc(name string, typeMask, contentMask Group, opts ...func(*Descriptor)) *Descriptor {
	d := &Descriptor{Name: name, TypeMask: typeMask, ContentMask: contentMask}
	for _, o := range opts {
		o(d)
	}
	return d
}

func void() func(*Descriptor)       { return func(d *Descriptor) { d.Void = true; d.Escaping = voidText } }
func resumable() func(*Descriptor)  { return func(d *Descriptor) { d.Resumable = true } }
func transparent(g Group) func(*Descriptor) {
	return func(d *Descriptor) { d.Transparent = g }
}
func blockChild(name string) func(*Descriptor) {
	return func(d *Descriptor) { d.BlockContainerChild = name }
}
func inScopes(s Scope) func(*Descriptor) { return func(d *Descriptor) { d.InScopes = s } }
func escaping(m EscapingMode) func(*Descriptor) {
	return func(d *Descriptor) { d.Escaping = m }
}

// NewHTMLContainmentTable builds the static table describing the HTML
// elements this module understands. It mirrors the element groups and
// transparency/resumability rules of the original source's containment
// model (spec §3), simplified to the subset this sanitizer needs.
func NewHTMLContainmentTable() *ContainmentTable {
	t := &ContainmentTable{byName: make(map[string]*Descriptor, 128)}

	add := func(ds ...*Descriptor) {
		for _, d := range ds {
			t.byName[d.Name] = d
		}
	}

	blockContent := GroupBlock | GroupInline | GroupP | GroupDLPart | GroupLI | GroupCharacterData

	// Formatting (resumable) inline elements.
	for _, name := range []string{
		"b", "i", "em", "strong", "u", "s", "font", "tt", "q", "sub", "sup",
		"code", "kbd", "samp", "var", "cite", "small", "big", "nobr", "abbr",
		"acronym", "bdo", "bdi", "dfn", "blink", "strike", "del", "ins",
	} {
		add(desc(name, GroupInline, GroupInline|GroupCharacterData, resumable(), inScopes(ScopeCommon)))
	}
	// del/ins are also transparent containers per spec.
	add(desc("del", GroupInline, blockContent, resumable(), transparent(GroupBlock), inScopes(ScopeCommon)))
	add(desc("ins", GroupInline, blockContent, resumable(), transparent(GroupBlock), inScopes(ScopeCommon)))

	// Plain (non-resumable) inline elements.
	for _, name := range []string{"span", "mark", "time", "data", "ruby", "rt", "rp", "wbr", "output", "label"} {
		add(desc(name, GroupInline, GroupInline|GroupCharacterData, inScopes(ScopeCommon)))
	}

	// <a> is transparent to block content but may not nest <a>.
	add(desc("a", GroupInline, blockContent, transparent(GroupBlock), inScopes(ScopeCommon)))

	// Void elements.
	for _, name := range []string{"br", "img", "hr", "input", "area", "base", "col", "embed", "keygen", "link", "meta", "param", "source", "track", "wbr"} {
		add(desc(name, GroupInline, 0, void()))
	}
	// <hr> is block-level.
	t.byName["hr"].TypeMask = GroupBlock
	t.byName["col"].TypeMask = GroupCol

	// Block containers.
	for _, name := range []string{
		"div", "p", "blockquote", "pre", "address", "article", "aside",
		"details", "dialog", "fieldset", "figcaption", "figure", "footer",
		"header", "hgroup", "main", "nav", "section", "summary", "center",
	} {
		add(desc(name, GroupBlock, blockContent, inScopes(ScopeButton|ScopeCommon)))
	}
	add(desc("p", GroupBlock|GroupP, GroupInline|GroupCharacterData, inScopes(ScopeButton|ScopeCommon)))

	for i := 1; i <= 6; i++ {
		name := string([]byte{'h', byte('0' + i)})
		add(desc(name, GroupBlock, GroupInline|GroupCharacterData, inScopes(ScopeButton|ScopeCommon)))
	}

	add(desc("ul", GroupBlock, GroupLI, inScopes(ScopeListItem|ScopeCommon)))
	add(desc("ol", GroupBlock, GroupLI, inScopes(ScopeListItem|ScopeCommon)))
	add(desc("li", GroupLI, blockContent, inScopes(ScopeCommon)))

	add(desc("dl", GroupBlock, GroupDLPart, blockChild("dd"), inScopes(ScopeCommon)))
	add(desc("dt", GroupDLPart, GroupInline|GroupCharacterData, inScopes(ScopeCommon)))
	add(desc("dd", GroupDLPart, blockContent, inScopes(ScopeCommon)))

	add(desc("button", GroupInline, blockContent, inScopes(ScopeCommon)))
	add(desc("label", GroupInline, GroupInline|GroupCharacterData, inScopes(ScopeCommon)))

	// Tables.
	add(desc("table", GroupBlock|GroupTable, GroupTableContent, blockChild("tbody"), inScopes(ScopeTable|ScopeCommon)))
	add(desc("caption", GroupTableContent, blockContent, inScopes(ScopeCommon)))
	add(desc("colgroup", GroupTableContent, GroupCol, inScopes(ScopeCommon)))
	add(desc("thead", GroupTableContent, GroupTR, blockChild("tr"), inScopes(ScopeCommon)))
	add(desc("tbody", GroupTableContent, GroupTR, blockChild("tr"), inScopes(ScopeCommon)))
	add(desc("tfoot", GroupTableContent, GroupTR, blockChild("tr"), inScopes(ScopeCommon)))
	add(desc("tr", GroupTR, GroupTD, blockChild("td"), inScopes(ScopeTable|ScopeCommon)))
	add(desc("td", GroupTD, blockContent, inScopes(ScopeCommon)))
	add(desc("th", GroupTD, blockContent, inScopes(ScopeCommon)))

	// Forms/options (select widgets).
	add(desc("select", GroupInline, GroupOptions, inScopes(ScopeSelect|ScopeCommon)))
	add(desc("optgroup", GroupOptions, GroupOptions, inScopes(ScopeCommon)))
	add(desc("option", GroupOptions, GroupCharacterData, inScopes(ScopeCommon)))
	add(desc("datalist", GroupInline, GroupOptions|GroupCharacterData, inScopes(ScopeCommon)))

	add(desc("object", GroupInline, GroupParam|blockContent, transparent(GroupBlock), inScopes(ScopeCommon)))
	add(desc("param", GroupParam, 0, void()))
	for _, name := range []string{"video", "audio", "picture"} {
		add(desc(name, GroupInline, blockContent, transparent(GroupBlock), inScopes(ScopeCommon)))
	}

	// Document/head skeleton: recognized so they don't fall through to the
	// "unknown" opaque-inline fallback, but no fragment sanitizer output is
	// expected to retain them (policies typically disallow html/head/body).
	add(desc("html", GroupBlock, GroupHeadContent|blockContent, inScopes(ScopeAll)))
	add(desc("head", GroupHeadContent, GroupHeadContent, inScopes(ScopeAll)))
	add(desc("body", GroupBlock, blockContent, inScopes(ScopeAll)))
	add(desc("title", GroupHeadContent, GroupCharacterData, escaping(RCDATA)))
	add(desc("textarea", GroupInline, GroupCharacterData, escaping(RCDATA)))

	// CDATA-mode elements.
	add(desc("script", GroupHeadContent, GroupCharacterData, escaping(CDATA)))
	add(desc("style", GroupHeadContent, GroupCharacterData, escaping(CDATA)))
	add(desc("xmp", GroupBlock, GroupCharacterData, escaping(CDATA)))
	add(desc("iframe", GroupInline, GroupCharacterData, escaping(CDATA)))
	add(desc("plaintext", GroupBlock, GroupCharacterData, escaping(PlainText)))
	add(desc("listing", GroupBlock, GroupCharacterData, escaping(CDATA)))

	return t
}

// CanContain reports whether parent (via d) may directly hold a child whose
// TypeMask is childType, taking Transparent groups into account only when
// the caller supplies the actual ancestor chain via Transparent resolution
// (the balancer does that walk; this is the one-level primitive).
func (d *Descriptor) CanContain(childType Group) bool {
	return d.ContentMask&childType != 0
}
