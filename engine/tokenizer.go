package engine

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Tokenize lexes src into the Token stream described by spec §4.1. It never
// fails: malformed input degrades to text, exactly as golang.org/x/net/html's
// own resilient tokenizer does, since that tokenizer is what drives this
// one. Entity decoding, NUL handling, attribute/tag-name lowercasing, and
// raw-text (CDATA/RCDATA) sinking for <script>/<style>/<textarea>/<title>/
// <iframe>/<xmp>/<noscript>/<noembed>/<noframes>/<plaintext> are all
// inherited from that tokenizer rather than re-implemented.
//
// The returned slice always starts with a DocStartToken and ends with a
// DocEndToken.
func Tokenize(src string) []Token {
	z := html.NewTokenizer(strings.NewReader(src))

	out := make([]Token, 0, len(src)/4+2)
	out = append(out, Token{Type: DocStartToken})

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && err != io.EOF {
				// A read error ends the stream at that point, keeping the
				// tokens already read, rather than propagating the error;
				// the tokenizer contract (§4.1) never fails.
			}
			out = append(out, Token{Type: DocEndToken})
			return out

		case html.TextToken:
			txt := z.Token().Data
			if txt == "" {
				continue
			}
			out = append(out, Token{Type: TextToken, Text: txt})

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			out = append(out, Token{
				Type:        StartTagToken,
				Name:        tok.Data,
				Attrs:       convertAttrs(tok.Attr),
				SelfClosing: tt == html.SelfClosingTagToken,
			})

		case html.EndTagToken:
			tok := z.Token()
			out = append(out, Token{Type: EndTagToken, Name: tok.Data})

		case html.CommentToken, html.DoctypeToken:
			// Non-goal (spec §1): DOCTYPE/comment/PI preservation is
			// explicitly out of scope, so these are dropped at the
			// tokenizer boundary rather than threaded through the rest
			// of the pipeline.
		}
	}
}

func convertAttrs(attrs []html.Attribute) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i, a := range attrs {
		out[i] = Attr{Key: a.Key, Val: a.Val}
	}
	return out
}
