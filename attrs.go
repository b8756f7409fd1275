package htmlguard

import "github.com/htmlguard/htmlguard/engine"

func attrsGet(attrs []engine.Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attrsSet(attrs []engine.Attr, key, val string) []engine.Attr {
	for i, a := range attrs {
		if a.Key == key {
			attrs[i].Val = val
			return attrs
		}
	}
	return append(attrs, engine.Attr{Key: key, Val: val})
}

func attrsRemove(attrs []engine.Attr, key string) []engine.Attr {
	out := make([]engine.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key != key {
			out = append(out, a)
		}
	}
	return out
}
