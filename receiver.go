package htmlguard

import "github.com/htmlguard/htmlguard/engine"

// HtmlStreamEventReceiver is a push-based event-sink interface (spec §6).
// Neither the policies nor engine.Renderer implement it: the sanitize
// pipeline is slice-based internally (engine.Token
// streams transformed stage to stage) for the same reason go-pages renders
// its component tree by direct traversal rather than a visitor interface --
// it is simpler to reason about and to test in isolation -- but any code
// that wants to plug in a third event sink (a logger, a second renderer, a
// live preview) can consume a Token stream through this interface via
// ReplayTokens.
type HtmlStreamEventReceiver interface {
	OpenDocument()
	CloseDocument()
	OpenTag(name string, attrs []engine.Attr)
	CloseTag(name string)
	Text(chunk string)
}

// ReplayTokens drives recv with the events represented by tokens, in order.
func ReplayTokens(tokens []engine.Token, recv HtmlStreamEventReceiver) {
	for _, t := range tokens {
		switch t.Type {
		case engine.DocStartToken:
			recv.OpenDocument()
		case engine.DocEndToken:
			recv.CloseDocument()
		case engine.StartTagToken:
			recv.OpenTag(t.Name, t.Attrs)
		case engine.EndTagToken:
			recv.CloseTag(t.Name)
		case engine.TextToken:
			recv.Text(t.Text)
		}
	}
}

// recordingReceiver is a HtmlStreamEventReceiver that rebuilds the Token
// slice it was fed, letting any HtmlStreamEventReceiver-shaped producer
// (a custom preprocessor written against the public interface, say) feed
// back into the slice-based pipeline.
type recordingReceiver struct {
	tokens []engine.Token
}

func (r *recordingReceiver) OpenDocument() {
	r.tokens = append(r.tokens, engine.Token{Type: engine.DocStartToken})
}

func (r *recordingReceiver) CloseDocument() {
	r.tokens = append(r.tokens, engine.Token{Type: engine.DocEndToken})
}

func (r *recordingReceiver) OpenTag(name string, attrs []engine.Attr) {
	r.tokens = append(r.tokens, engine.Token{Type: engine.StartTagToken, Name: name, Attrs: attrs})
}

func (r *recordingReceiver) CloseTag(name string) {
	r.tokens = append(r.tokens, engine.Token{Type: engine.EndTagToken, Name: name})
}

func (r *recordingReceiver) Text(chunk string) {
	r.tokens = append(r.tokens, engine.Token{Type: engine.TextToken, Text: chunk})
}
