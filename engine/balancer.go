package engine

import "strings"

// DefaultMaxDepth is the nesting cap enforced when a Balancer is built with
// maxDepth <= 0. It bounds both the open-element stack and pathological
// inputs like 20,000 unclosed <div>s from producing unbounded output
// (spec §4.3 "Nesting limit").
const DefaultMaxDepth = 256

type openElement struct {
	tok  Token
	desc *Descriptor
}

// Balancer consumes a Token stream from Tokenize and emits a well-nested
// Token stream: every StartTagToken it lets through is matched by exactly
// one EndTagToken by DocEndToken, except for void elements. It is the only
// stateful object in the pipeline (spec §5): its open-element stack and
// resume queue are local to one Balance call and never shared.
type Balancer struct {
	table    *ContainmentTable
	maxDepth int

	stack []openElement
	// resumeQueue holds formatting elements closed by mis-nesting,
	// outermost first, waiting to be reopened
	// around the content that caused the close (spec §4.3 step 5).
	resumeQueue []openElement

	out []Token
}

// NewBalancer constructs a Balancer over table. maxDepth <= 0 selects
// DefaultMaxDepth.
func NewBalancer(table *ContainmentTable, maxDepth int) *Balancer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Balancer{table: table, maxDepth: maxDepth}
}

// Balance runs the full algorithm of spec §4.3 over tokens and returns a
// well-nested token stream.
func (b *Balancer) Balance(tokens []Token) []Token {
	b.stack = b.stack[:0]
	b.resumeQueue = b.resumeQueue[:0]
	b.out = make([]Token, 0, len(tokens)+8)

	for _, tok := range tokens {
		switch tok.Type {
		case DocStartToken:
			b.out = append(b.out, tok)
		case DocEndToken:
			b.closeAll()
			b.out = append(b.out, tok)
		case StartTagToken:
			b.openTag(tok)
		case EndTagToken:
			b.closeTag(tok.Name)
		case TextToken:
			b.addText(tok.Text)
		}
	}
	return b.out
}

func (b *Balancer) top() *openElement {
	if len(b.stack) == 0 {
		return nil
	}
	return &b.stack[len(b.stack)-1]
}

// canHoldDirectly reports whether the current top of stack can hold a
// child of childType, walking up through Transparent ancestors the way
// spec §4.3/§3 describes for <a>/<ins>/<del>/<object>/media elements. An
// empty stack (fragment root) can hold anything.
func (b *Balancer) canHoldDirectly(childType Group) bool {
	if len(b.stack) == 0 {
		return true
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		d := b.stack[i].desc
		if d.CanContain(childType) {
			return true
		}
		if d.Transparent&childType != 0 {
			continue // defer to the next ancestor up
		}
		return false
	}
	return true
}

func isWhitespace(s string) bool {
	return strings.TrimLeft(s, " \t\r\n\f") == ""
}

func (b *Balancer) atDepthLimit() bool {
	return len(b.stack) >= b.maxDepth
}

func (b *Balancer) openTag(tok Token) {
	d := b.table.Lookup(tok.Name)

	// Special rule: an <a> inside another <a> closes the outer one first.
	if tok.Name == "a" {
		for i := len(b.stack) - 1; i >= 0; i-- {
			if b.stack[i].tok.Name == "a" {
				b.closeTag("a")
				break
			}
		}
	}

	b.prepareForContent(d.TypeMask)
	b.drainResumeQueue(d)

	if b.atDepthLimit() {
		// Resource-exhaustion path (spec §7): silently suppress the open.
		// Its eventual close tag closes a same-named element that is still
		// open further out, or is dropped if there is none.
		return
	}

	out := tok
	out.Attrs = append([]Attr(nil), tok.Attrs...)
	b.out = append(b.out, out)

	if !d.Void {
		b.stack = append(b.stack, openElement{tok: out, desc: d})
	}
}

// prepareForContent auto-opens implied wrappers and closes elements that
// cannot hold childType until the top of stack can, per spec §4.3 steps
// 1-3 (reused for both start tags and non-whitespace text).
func (b *Balancer) prepareForContent(childType Group) {
	for {
		if b.canHoldDirectly(childType) {
			return
		}
		top := b.top()
		if top != nil && top.desc.BlockContainerChild != "" {
			if b.atDepthLimit() {
				return
			}
			child := top.desc.BlockContainerChild
			cd := b.table.Lookup(child)
			synth := Token{Type: StartTagToken, Name: child, Synthetic: true}
			b.out = append(b.out, synth)
			b.stack = append(b.stack, openElement{tok: synth, desc: cd})
			continue
		}
		if top == nil {
			return
		}
		b.popOne()
	}
}

// popOne pops the innermost open element, emitting its close tag and
// remembering it in the resume queue if resumable. Each popped element is
// further out than the ones popped before it, so it goes to the front of
// the queue.
func (b *Balancer) popOne() {
	e := b.popOneNoResume()
	if e.desc.Resumable {
		b.resumeQueue = append([]openElement{e}, b.resumeQueue...)
	}
}

// popOneNoResume pops the innermost open element, emitting its close tag,
// without ever queueing it for resumption. This is the primitive closeTag
// uses for the tag it was actually asked to close: spec §4.3 only resumes
// elements closed incidentally "above" the target, never the target itself.
func (b *Balancer) popOneNoResume() openElement {
	i := len(b.stack) - 1
	e := b.stack[i]
	b.stack = b.stack[:i]
	b.out = append(b.out, Token{Type: EndTagToken, Name: e.tok.Name, Synthetic: true})
	return e
}

// drainResumeQueue reopens queued formatting elements, outermost first, as
// long as the current top can contain the reopened element and the
// reopened element can contain the upcoming tag d (spec §4.3 step 5).
func (b *Balancer) drainResumeQueue(d *Descriptor) {
	for len(b.resumeQueue) > 0 {
		e := b.resumeQueue[0]
		if !b.canHoldDirectly(e.desc.TypeMask) || !e.desc.CanContain(d.TypeMask) {
			return
		}
		if b.atDepthLimit() {
			return
		}
		b.resumeQueue = b.resumeQueue[1:]
		synth := Token{Type: StartTagToken, Name: e.tok.Name, Synthetic: true}
		b.out = append(b.out, synth)
		b.stack = append(b.stack, openElement{tok: synth, desc: e.desc})
	}
}

// drainResumeQueueForText is like drainResumeQueue but the upcoming content
// is CHARACTER_DATA rather than a specific element's TypeMask.
func (b *Balancer) drainResumeQueueForText() {
	for len(b.resumeQueue) > 0 {
		e := b.resumeQueue[0]
		if !b.canHoldDirectly(e.desc.TypeMask) || !e.desc.CanContain(GroupCharacterData) {
			return
		}
		if b.atDepthLimit() {
			return
		}
		b.resumeQueue = b.resumeQueue[1:]
		synth := Token{Type: StartTagToken, Name: e.tok.Name, Synthetic: true}
		b.out = append(b.out, synth)
		b.stack = append(b.stack, openElement{tok: synth, desc: e.desc})
	}
}

func headerClass(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

func (b *Balancer) closeTag(name string) {
	matchesName := func(n string) bool {
		if headerClass(name) {
			return headerClass(n)
		}
		return n == name
	}
	d := b.table.Lookup(name)

	found := -1
	for i := len(b.stack) - 1; i >= 0; i-- {
		e := b.stack[i]
		if matchesName(e.tok.Name) {
			found = i
			break
		}
		if blockedBoundary(e.desc, d.TypeMask) {
			break
		}
	}
	if found == -1 {
		return // not found: drop the close tag
	}
	for len(b.stack) > found+1 {
		b.popOne()
	}
	b.popOneNoResume()
}

// blockedBoundary reports whether open (an ancestor encountered while
// searching for a close match) blocks the search from going any higher,
// per spec §4.3 ("such a close is dropped, e.g. </p> does not cross a
// <table> boundary").
func blockedBoundary(open *Descriptor, closingType Group) bool {
	switch open.Name {
	case "table":
		return closingType&(GroupTable|GroupTableContent|GroupTR|GroupTD) == 0
	case "select":
		return closingType&GroupOptions == 0
	}
	return open.InScopes&ScopeAll != 0
}

func (b *Balancer) addText(text string) {
	if isWhitespace(text) {
		if b.canHoldDirectly(GroupCharacterData) {
			b.out = append(b.out, Token{Type: TextToken, Text: text})
		}
		return
	}
	b.prepareForContent(GroupCharacterData)
	b.drainResumeQueueForText()
	b.out = append(b.out, Token{Type: TextToken, Text: text})
}

func (b *Balancer) closeAll() {
	for len(b.stack) > 0 {
		b.popOne()
	}
}
