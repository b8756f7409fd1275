package css

import "strings"

// Declaration is one "property: value" pair from a style attribute or
// <style> rule body, still in raw token form.
type Declaration struct {
	Property string
	Value    []Token
}

// ParseDeclarations splits a style string into declarations at top-level
// semicolons (semicolons inside brackets, e.g. inside a url() or function
// argument list, do not split).
func ParseDeclarations(style string) []Declaration {
	toks := Lex(style)

	var decls []Declaration
	depth := 0
	start := 0
	flush := func(end int) {
		d := parseOneDeclaration(toks[start:end])
		if d.Property != "" {
			decls = append(decls, d)
		}
	}
	for i, t := range toks {
		switch t.Type {
		case LeftParen, LeftSquare, LeftCurly, Function:
			depth++
		case RightParen, RightSquare, RightCurly:
			if depth > 0 {
				depth--
			}
		case Semicolon:
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(toks))
	return decls
}

func parseOneDeclaration(toks []Token) Declaration {
	i := 0
	for i < len(toks) && toks[i].Type == Whitespace {
		i++
	}
	if i >= len(toks) || toks[i].Type != Ident {
		return Declaration{}
	}
	name := strings.ToLower(toks[i].Value)
	i++
	for i < len(toks) && toks[i].Type == Whitespace {
		i++
	}
	if i >= len(toks) || toks[i].Type != Colon {
		return Declaration{}
	}
	i++
	value := trimWhitespace(toks[i:])
	return Declaration{Property: name, Value: value}
}

func trimWhitespace(toks []Token) []Token {
	start, end := 0, len(toks)
	for start < end && toks[start].Type == Whitespace {
		start++
	}
	for end > start && toks[end-1].Type == Whitespace {
		end--
	}
	return toks[start:end]
}

// URLPolicy gates a URL encountered inside a style value. A nil policy
// disallows every url() unconditionally (spec §4.2 "if url() is disabled
// globally, any URL-bearing declaration is dropped").
type URLPolicy func(rawURL string) bool

// SanitizeStyle validates every declaration in style against schema,
// dropping declarations wholesale rather than individual tokens -- "partial
// retention risks smuggling" (spec §4.2 step 3) -- and re-serializes the
// survivors in canonical form.
func SanitizeStyle(style string, schema *Schema, urls URLPolicy) string {
	decls := ParseDeclarations(style)
	var kept []string
	for _, d := range decls {
		desc := schema.Lookup(d.Property)
		if desc == nil || desc.Disallowed {
			continue
		}
		if !validateValue(d.Value, desc.Kinds, desc.Keywords, desc.Functions, urls) {
			continue
		}
		kept = append(kept, d.Property+": "+Serialize(stripWhitespaceTokens(d.Value)))
	}
	return strings.Join(kept, "; ")
}

func stripWhitespaceTokens(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Type != Whitespace {
			out = append(out, t)
		}
	}
	return out
}

// validateValue checks every top-level token in toks against the allowed
// kinds/keywords/functions, recursing into function argument lists using
// that function's own Args as the allowed-kinds scope. Any token it cannot
// classify drops the whole declaration (caller's responsibility).
func validateValue(toks []Token, kinds []ValueKind, keywords map[string]bool, funcs map[string]FunctionSchema, urls URLPolicy) bool {
	allows := func(k ValueKind) bool {
		for _, x := range kinds {
			if x == k {
				return true
			}
		}
		return false
	}

	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.Type {
		case Whitespace, Comma:
			i++
			continue
		case Ident:
			if keywords[strings.ToLower(t.Value)] || allows(KindIdent) {
				i++
				continue
			}
			return false
		case Function:
			name := strings.ToLower(t.Value)
			fn, ok := funcs[name]
			if !ok {
				return false
			}
			end := t.PairIndex
			if end == -1 {
				return false
			}
			if !validateValue(toks[i+1:end], fn.Args, keywords, funcs, urls) {
				return false
			}
			i = end + 1
			continue
		case Number:
			if allows(KindNumber) || allows(KindInteger) {
				i++
				continue
			}
			return false
		case Dimension:
			if allows(KindLength) {
				i++
				continue
			}
			return false
		case Percentage:
			if allows(KindPercentage) {
				i++
				continue
			}
			return false
		case String:
			if allows(KindString) {
				i++
				continue
			}
			return false
		case HashID, HashUnrestricted:
			if allows(KindColor) {
				i++
				continue
			}
			return false
		case URL:
			if !allows(KindURL) {
				return false
			}
			if urls == nil || !urls(t.Value) {
				return false
			}
			i++
			continue
		default:
			return false
		}
	}
	return true
}
