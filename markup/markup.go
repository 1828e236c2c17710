// Package markup scans raw tagged strings and emits primitive tokens
// annotated with the stack of currently-active tags.
//
// The grammar is deliberately small: <name attr="value" ...>...</name>,
// plus self-closing <name/>. Anything angle-bracketed that does not form a
// well-formed known tag is kept as literal text, so free-form "<" in prose
// survives parsing.
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Warning codes reported through the onWarn sink.
const (
	WarnUnknownTag    = "unknown-tag"
	WarnMismatchedTag = "mismatched-tag"
)

// EmojiTag is the reserved tag name wrapped around emoji runs when emoji
// auto-wrapping is enabled. Style tables may define it to give emoji a
// dedicated font family.
const EmojiTag = "__emoji__"

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Newline", Pattern: `\n`},
		{Name: "Tag", Pattern: `</?[A-Za-z_][A-Za-z0-9_-]*(?:\s+[A-Za-z_][A-Za-z0-9_-]*\s*=\s*"(?:\\.|[^"\\])*")*\s*/?>`},
		{Name: "Text", Pattern: `[^<\n]+`},
		{Name: "Stray", Pattern: `<`},
	})

	newlineTokenType = mustTokenType("Newline")
	tagTokenType     = mustTokenType("Tag")

	tagNamePattern = regexp.MustCompile(`^</?\s*([A-Za-z_][A-Za-z0-9_-]*)`)
	tagAttrPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*"((?:\\.|[^"\\])*)"`)
)

// TokenKind distinguishes the primitive token variants.
type TokenKind int

const (
	TextToken TokenKind = iota
	NewlineToken
)

func (k TokenKind) String() string {
	switch k {
	case TextToken:
		return "text"
	case NewlineToken:
		return "newline"
	default:
		return "unknown"
	}
}

// Tag records one open tag instance. Index is the ordinal of the opening tag
// in source order, so two occurrences of the same tag name stay
// distinguishable downstream (one sprite per occurrence, for example).
type Tag struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Index      int               `json:"index"`
}

// Token is a primitive token: a literal text run or an explicit newline,
// together with a snapshot of the active tag stack at that point.
type Token struct {
	Kind    TokenKind `json:"kind"`
	Content string    `json:"content"`
	Tags    []Tag     `json:"tags,omitempty"`
}

// Parse scans raw and returns the flat primitive token sequence.
//
// known is the set of recognized tag names; nil accepts every well-formed
// tag. Unrecognized tags and mismatched closers are reported through onWarn
// and kept as literal text, never rejected. When wrapEmoji is set, emoji
// code point runs are wrapped in the reserved EmojiTag.
func Parse(raw string, known map[string]bool, wrapEmoji bool, onWarn func(code, message string)) []Token {
	if onWarn == nil {
		onWarn = func(string, string) {}
	}
	raw = strings.ReplaceAll(raw, "\r", "")

	lx, err := markupLexer.LexString("", raw)
	if err != nil {
		// The lexer rules cover every byte, so this cannot happen for any
		// input; fall back to one literal text token to stay total.
		return []Token{{Kind: TextToken, Content: raw}}
	}

	p := &parser{known: known, wrapEmoji: wrapEmoji, onWarn: onWarn}
	for {
		tok, err := lx.Next()
		if err != nil || tok.EOF() {
			break
		}
		switch tok.Type {
		case newlineTokenType:
			p.flush()
			p.emit(Token{Kind: NewlineToken, Content: "\n", Tags: p.snapshot()})
			p.markBody()
		case tagTokenType:
			p.handleTag(tok.Value)
		default: // Text, Stray
			p.pending.WriteString(tok.Value)
		}
	}
	p.flush()
	return p.out
}

// RemoveTags strips all tag markup and returns only literal text content.
// It shares the parser's recovery rules, so concatenating the text contents
// of Parse(raw, nil, ...) yields the same string.
func RemoveTags(raw string) string {
	var b strings.Builder
	for _, tok := range Parse(raw, nil, false, nil) {
		b.WriteString(tok.Content)
	}
	return b.String()
}

type parser struct {
	known     map[string]bool
	wrapEmoji bool
	onWarn    func(code, message string)

	out     []Token
	stack   []Tag
	body    []bool // whether any content was emitted under each open tag
	opened  int
	pending strings.Builder
}

func (p *parser) handleTag(raw string) {
	m := tagNamePattern.FindStringSubmatch(raw)
	if m == nil {
		p.pending.WriteString(raw)
		return
	}
	name := m[1]

	if strings.HasPrefix(raw, "</") {
		if n := len(p.stack); n > 0 && p.stack[n-1].Name == name {
			p.flush()
			if !p.body[n-1] {
				// Empty tag bodies still produce one token so that
				// image-reference tags without a label reach the classifier.
				p.emit(Token{Kind: TextToken, Content: "", Tags: p.snapshot()})
			}
			p.stack = p.stack[:n-1]
			p.body = p.body[:n-1]
			return
		}
		p.onWarn(WarnMismatchedTag,
			fmt.Sprintf("closing tag %q does not match the innermost open tag; kept as text", name))
		p.pending.WriteString(raw)
		return
	}

	if p.known != nil && !p.known[name] {
		p.onWarn(WarnUnknownTag, fmt.Sprintf("unknown tag %q kept as text", name))
		p.pending.WriteString(raw)
		return
	}

	p.flush()
	p.markBody()
	p.stack = append(p.stack, Tag{Name: name, Attributes: parseAttributes(raw), Index: p.opened})
	p.body = append(p.body, false)
	p.opened++

	if strings.HasSuffix(raw, "/>") {
		p.emit(Token{Kind: TextToken, Content: "", Tags: p.snapshot()})
		p.stack = p.stack[:len(p.stack)-1]
		p.body = p.body[:len(p.body)-1]
	}
}

// flush turns pending literal text into text tokens under the current stack.
func (p *parser) flush() {
	if p.pending.Len() == 0 {
		return
	}
	text := p.pending.String()
	p.pending.Reset()
	p.markBody()

	if !p.wrapEmoji {
		p.emit(Token{Kind: TextToken, Content: text, Tags: p.snapshot()})
		return
	}
	for _, run := range splitEmojiRuns(text) {
		tags := p.snapshot()
		if run.emoji {
			tags = append(tags, Tag{Name: EmojiTag, Index: p.opened})
			p.opened++
		}
		p.emit(Token{Kind: TextToken, Content: run.text, Tags: tags})
	}
}

func (p *parser) emit(tok Token) {
	p.out = append(p.out, tok)
}

func (p *parser) markBody() {
	for i := range p.body {
		p.body[i] = true
	}
}

func (p *parser) snapshot() []Tag {
	if len(p.stack) == 0 {
		return nil
	}
	out := make([]Tag, len(p.stack))
	copy(out, p.stack)
	return out
}

func parseAttributes(raw string) map[string]string {
	matches := tagAttrPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(matches))
	for _, m := range matches {
		attrs[m[1]] = unescapeAttr(m[2])
	}
	return attrs
}

func unescapeAttr(v string) string {
	if !strings.ContainsRune(v, '\\') {
		return v
	}
	var b strings.Builder
	escaped := false
	for _, r := range v {
		if escaped {
			switch r {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mustTokenType(name string) lexer.TokenType {
	symbols := markupLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
