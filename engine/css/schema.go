package css

// ValueKind classifies what a property's value tokens are allowed to be.
type ValueKind int

const (
	KindIdent ValueKind = iota
	KindColor
	KindLength
	KindPercentage
	KindNumber
	KindInteger
	KindString
	KindURL
)

// FunctionSchema describes one function name a property value may invoke
// (e.g. "rgb", "linear-gradient") and the kinds its arguments may take.
type FunctionSchema struct {
	Args []ValueKind
}

// PropertyDescriptor is the per-property grammar a style declaration's
// value is checked against (spec §3 "CSS Schema"). Disallowed marks the
// sentinel DISALLOWED properties (display, position, float, clear, cursor,
// -moz-binding, etc.) that are dropped regardless of value.
type PropertyDescriptor struct {
	Disallowed bool
	Keywords   map[string]bool
	Functions  map[string]FunctionSchema
	Kinds      []ValueKind
}

func (d *PropertyDescriptor) allowsKind(k ValueKind) bool {
	for _, x := range d.Kinds {
		if x == k {
			return true
		}
	}
	return false
}

// Schema maps a lowercase property name to its descriptor.
type Schema struct {
	props map[string]*PropertyDescriptor
}

// Lookup returns the descriptor for a lowercase property name, or nil if
// the property is unknown (treated the same as DISALLOWED).
func (s *Schema) Lookup(name string) *PropertyDescriptor {
	return s.props[name]
}

var colorKeywords = []string{
	"transparent", "currentcolor", "black", "silver", "gray", "grey",
	"white", "maroon", "red", "purple", "fuchsia", "green", "lime",
	"olive", "yellow", "navy", "blue", "teal", "aqua", "orange",
}

func keywordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Intersect returns a schema allowing a property only when both a and b
// allow it, with the stricter (smaller) keyword/function/kind sets of the
// two taken for each surviving property (spec §4.4 "and" joining applied
// to the CSS schema).
func Intersect(a, b *Schema) *Schema {
	out := &Schema{props: make(map[string]*PropertyDescriptor)}
	for name, da := range a.props {
		db, ok := b.props[name]
		if !ok || da.Disallowed || db.Disallowed {
			continue
		}
		out.props[name] = &PropertyDescriptor{
			Keywords:  intersectStringSets(da.Keywords, db.Keywords),
			Functions: intersectFunctionSets(da.Functions, db.Functions),
			Kinds:     intersectKinds(da.Kinds, db.Kinds),
		}
	}
	return out
}

func intersectStringSets(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func intersectFunctionSets(a, b map[string]FunctionSchema) map[string]FunctionSchema {
	out := make(map[string]FunctionSchema)
	for k, fa := range a {
		if fb, ok := b[k]; ok {
			out[k] = FunctionSchema{Args: intersectKinds(fa.Args, fb.Args)}
		}
	}
	return out
}

func intersectKinds(a, b []ValueKind) []ValueKind {
	var out []ValueKind
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// DefaultSchema returns the baseline style-property schema: a moderate set
// of layout/typography/color properties allowed with constrained value
// grammars, and the well-known script/behavior-smuggling properties mapped
// to DISALLOWED (spec §4.2 "Dangerous properties").
func DefaultSchema() *Schema {
	s := &Schema{props: make(map[string]*PropertyDescriptor)}

	disallowed := []string{
		"display", "position", "float", "clear", "cursor", "-moz-binding",
		"behavior", "content", "counter-reset", "counter-increment",
		"pointer-events", "z-index", "visibility",
	}
	for _, name := range disallowed {
		s.props[name] = &PropertyDescriptor{Disallowed: true}
	}

	colorFuncs := map[string]FunctionSchema{
		"rgb":  {Args: []ValueKind{KindNumber, KindPercentage}},
		"rgba": {Args: []ValueKind{KindNumber, KindPercentage}},
		"hsl":  {Args: []ValueKind{KindNumber, KindPercentage}},
		"hsla": {Args: []ValueKind{KindNumber, KindPercentage}},
	}
	for _, name := range []string{"color", "background-color", "border-color", "outline-color", "text-decoration-color"} {
		s.props[name] = &PropertyDescriptor{
			Keywords:  keywordSet(append([]string{}, colorKeywords...)...),
			Functions: colorFuncs,
			Kinds:     []ValueKind{KindColor},
		}
	}

	for _, name := range []string{
		"width", "height", "min-width", "min-height", "max-width", "max-height",
		"margin", "margin-top", "margin-right", "margin-bottom", "margin-left",
		"padding", "padding-top", "padding-right", "padding-bottom", "padding-left",
		"border-width", "border-radius", "font-size", "line-height", "letter-spacing",
		"top", "left", "right", "bottom",
	} {
		s.props[name] = &PropertyDescriptor{
			Keywords: keywordSet("auto", "inherit", "initial"),
			Kinds:    []ValueKind{KindLength, KindPercentage, KindNumber},
		}
	}

	s.props["font-weight"] = &PropertyDescriptor{
		Keywords: keywordSet("normal", "bold", "bolder", "lighter", "inherit"),
		Kinds:    []ValueKind{KindInteger},
	}
	s.props["font-style"] = &PropertyDescriptor{Keywords: keywordSet("normal", "italic", "oblique", "inherit")}
	s.props["font-family"] = &PropertyDescriptor{Kinds: []ValueKind{KindIdent, KindString}}
	s.props["text-align"] = &PropertyDescriptor{Keywords: keywordSet("left", "right", "center", "justify", "inherit")}
	s.props["text-decoration"] = &PropertyDescriptor{Keywords: keywordSet("none", "underline", "overline", "line-through", "inherit")}
	s.props["text-transform"] = &PropertyDescriptor{Keywords: keywordSet("none", "capitalize", "uppercase", "lowercase", "inherit")}
	s.props["white-space"] = &PropertyDescriptor{Keywords: keywordSet("normal", "nowrap", "pre", "pre-wrap", "pre-line", "inherit")}
	s.props["vertical-align"] = &PropertyDescriptor{
		Keywords: keywordSet("baseline", "top", "middle", "bottom", "text-top", "text-bottom", "inherit"),
		Kinds:    []ValueKind{KindLength, KindPercentage},
	}

	for _, name := range []string{"border-style", "border-top-style", "border-right-style", "border-bottom-style", "border-left-style"} {
		s.props[name] = &PropertyDescriptor{Keywords: keywordSet("none", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset", "inherit")}
	}

	s.props["background-image"] = &PropertyDescriptor{
		Functions: map[string]FunctionSchema{
			"linear-gradient": {Args: []ValueKind{KindColor, KindLength, KindPercentage, KindNumber}},
			"image":           {Args: []ValueKind{KindURL}},
		},
		Kinds: []ValueKind{KindURL},
	}
	s.props["background-repeat"] = &PropertyDescriptor{Keywords: keywordSet("repeat", "repeat-x", "repeat-y", "no-repeat", "inherit")}
	s.props["background-position"] = &PropertyDescriptor{
		Keywords: keywordSet("left", "right", "top", "bottom", "center"),
		Kinds:    []ValueKind{KindLength, KindPercentage},
	}
	s.props["opacity"] = &PropertyDescriptor{Kinds: []ValueKind{KindNumber}}

	return s
}
