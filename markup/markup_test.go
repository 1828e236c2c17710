package markup_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/inkline/markup"
)

func collectWarnings(codes *[]string) func(code, message string) {
	return func(code, message string) {
		*codes = append(*codes, code)
	}
}

func TestParsePlainText(t *testing.T) {
	tokens := markup.Parse("hello world", nil, false, nil)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Kind != markup.TextToken || tokens[0].Content != "hello world" {
		t.Fatalf("unexpected token: %+v", tokens[0])
	}
	if len(tokens[0].Tags) != 0 {
		t.Fatalf("expected no tags, got %+v", tokens[0].Tags)
	}
}

func TestParseNestedTags(t *testing.T) {
	known := map[string]bool{"a": true, "b": true}
	tokens := markup.Parse(`pre <a>one <b attr="v">two</b></a> post`, known, false, nil)

	var inner *markup.Token
	for i := range tokens {
		if tokens[i].Content == "two" {
			inner = &tokens[i]
		}
	}
	if inner == nil {
		t.Fatalf("token for inner text missing: %+v", tokens)
	}
	if len(inner.Tags) != 2 {
		t.Fatalf("expected 2 active tags, got %+v", inner.Tags)
	}
	if inner.Tags[0].Name != "a" || inner.Tags[1].Name != "b" {
		t.Fatalf("tag order should be outermost first: %+v", inner.Tags)
	}
	if inner.Tags[1].Attributes["attr"] != "v" {
		t.Fatalf("attribute lost: %+v", inner.Tags[1])
	}
}

func TestParseNewlineToken(t *testing.T) {
	known := map[string]bool{"a": true}
	tokens := markup.Parse("<a>x\ny</a>", known, false, nil)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %+v", tokens)
	}
	nl := tokens[1]
	if nl.Kind != markup.NewlineToken {
		t.Fatalf("middle token should be a newline: %+v", nl)
	}
	if len(nl.Tags) != 1 || nl.Tags[0].Name != "a" {
		t.Fatalf("newline should carry the active tag stack: %+v", nl.Tags)
	}
}

func TestParseUnknownTagKeptAsText(t *testing.T) {
	var codes []string
	known := map[string]bool{"b": true}
	tokens := markup.Parse("5 < 6 and <nope>literal</nope>", known, false, collectWarnings(&codes))

	var all strings.Builder
	for _, tok := range tokens {
		all.WriteString(tok.Content)
	}
	if got := all.String(); got != "5 < 6 and <nope>literal</nope>" {
		t.Fatalf("unknown tags must survive as literal text, got %q", got)
	}
	if len(codes) == 0 || codes[0] != markup.WarnUnknownTag {
		t.Fatalf("expected an unknown-tag warning, got %v", codes)
	}
}

func TestParseMismatchedCloserKeptAsText(t *testing.T) {
	var codes []string
	known := map[string]bool{"a": true, "b": true}
	tokens := markup.Parse("<a>text</b>", known, false, collectWarnings(&codes))

	var all strings.Builder
	for _, tok := range tokens {
		all.WriteString(tok.Content)
	}
	if got := all.String(); got != "text</b>" {
		t.Fatalf("mismatched closer should stay literal, got %q", got)
	}
	found := false
	for _, c := range codes {
		if c == markup.WarnMismatchedTag {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a mismatched-tag warning, got %v", codes)
	}
}

func TestParseEmptyTagBodyEmitsToken(t *testing.T) {
	known := map[string]bool{"icon": true}
	for _, raw := range []string{"<icon></icon>", "<icon/>"} {
		tokens := markup.Parse(raw, known, false, nil)
		if len(tokens) != 1 {
			t.Fatalf("%q: expected 1 token, got %+v", raw, tokens)
		}
		tok := tokens[0]
		if tok.Content != "" || len(tok.Tags) != 1 || tok.Tags[0].Name != "icon" {
			t.Fatalf("%q: unexpected token %+v", raw, tok)
		}
	}
}

func TestParseTagIndexDistinguishesOccurrences(t *testing.T) {
	known := map[string]bool{"i": true}
	tokens := markup.Parse("<i>x</i><i>y</i>", known, false, nil)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %+v", tokens)
	}
	if tokens[0].Tags[0].Index == tokens[1].Tags[0].Index {
		t.Fatalf("two occurrences of the same tag must get distinct indices: %+v", tokens)
	}
}

func TestParseWrapEmoji(t *testing.T) {
	tokens := markup.Parse("hi \U0001F600 there", nil, true, nil)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %+v", tokens)
	}
	emoji := tokens[1]
	if emoji.Content != "\U0001F600" {
		t.Fatalf("middle token should be the emoji run: %+v", emoji)
	}
	if len(emoji.Tags) != 1 || emoji.Tags[0].Name != markup.EmojiTag {
		t.Fatalf("emoji run should carry the reserved tag: %+v", emoji.Tags)
	}
	if len(tokens[0].Tags) != 0 || len(tokens[2].Tags) != 0 {
		t.Fatalf("surrounding text must stay untagged: %+v", tokens)
	}
}

func TestParseWrapEmojiKeepsJoinedSequence(t *testing.T) {
	// thumbs up + skin tone modifier stays one run
	seq := "\U0001F44D\U0001F3FD"
	tokens := markup.Parse(seq, nil, true, nil)
	if len(tokens) != 1 || tokens[0].Content != seq {
		t.Fatalf("joined emoji sequence split: %+v", tokens)
	}
}

func TestRemoveTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<a>styled</a>", "styled"},
		{`<a x="1">one</a> two <b>three</b>`, "one two three"},
		{"5 < 6", "5 < 6"},
		{"line\nbreak", "line\nbreak"},
	}
	for _, c := range cases {
		if got := markup.RemoveTags(c.in); got != c.want {
			t.Fatalf("RemoveTags(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAttributeEscapes(t *testing.T) {
	known := map[string]bool{"a": true}
	tokens := markup.Parse(`<a v="say \"hi\"">x</a>`, known, false, nil)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %+v", tokens)
	}
	if got := tokens[0].Tags[0].Attributes["v"]; got != `say "hi"` {
		t.Fatalf("escaped quote lost: %q", got)
	}
}
