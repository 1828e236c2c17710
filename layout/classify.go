package layout

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/inkline/markup"
)

// WarnMissingImage 在图片引用样式指向未提供的图片模板时上报。
const WarnMissingImage = "missing-image"

// Classify 把原始 token 归类为带类型、带样式、未定位的片段：
// 逐 token 解析样式，空白串保留为一等片段，
// 文本按词或字素粒度切分，图片引用样式转换为图片片段。
func Classify(tokens []markup.Token, table StyleTable, opts Options) []*Segment {
	warn := opts.warn()
	var out []*Segment
	spriteSeen := map[int]bool{}

	for _, tok := range tokens {
		style := ResolveStyle(tok.Tags, table, warn)
		names := tagNames(tok.Tags)

		if tok.Kind == markup.NewlineToken {
			out = append(out, &Segment{Kind: KindNewline, Content: "\n", Raw: "\n", Tags: names, Style: style})
			continue
		}

		if style.ImgSrc != "" {
			if idx, ok := spriteOccurrence(tok.Tags, table); ok {
				if spriteSeen[idx] {
					// 每次标签出现只产生一个图片片段，剩余的标签文本仅作标注，不参与渲染。
					continue
				}
				spriteSeen[idx] = true
			}
			tpl, found := opts.Images[style.ImgSrc]
			if !found {
				warn(WarnMissingImage, "image template "+strconv.Quote(style.ImgSrc)+" not found; using empty sprite")
				tpl = ImageTemplate{Name: style.ImgSrc}
			}
			out = append(out, &Segment{
				Kind:    KindSprite,
				Content: style.ImgSrc,
				Raw:     tok.Content,
				Tags:    names,
				Style:   style,
				Sprite:  &tpl,
			})
			continue
		}

		if tok.Content == "" {
			continue
		}
		for _, run := range splitSpaceRuns(tok.Content) {
			if run.space {
				out = append(out, &Segment{Kind: KindWhitespace, Content: run.text, Raw: run.text, Tags: names, Style: style})
				continue
			}
			// 测量前先做大小写变换，变换后的字形宽度可能与原文不同。
			transformed := transformText(run.text, style.TextTransform)
			if opts.SplitStyle == SplitCharacters {
				out = append(out, splitIntoGraphemes(transformed, run.text, names, style)...)
			} else {
				out = append(out, &Segment{Kind: KindText, Content: transformed, Raw: run.text, Tags: names, Style: style})
			}
		}
	}
	return out
}

// spriteOccurrence 找到最内层贡献了 imgSrc 的激活标签，确定该图片片段所属的标签出现。
func spriteOccurrence(tags []markup.Tag, table StyleTable) (int, bool) {
	for i := len(tags) - 1; i >= 0; i-- {
		tag := tags[i]
		if _, ok := tag.Attributes[propImgSrc]; ok {
			return tag.Index, true
		}
		if props, ok := table[tag.Name]; ok {
			if _, ok := props[propImgSrc]; ok {
				return tag.Index, true
			}
		}
	}
	return 0, false
}

func tagNames(tags []markup.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

type spaceRun struct {
	text  string
	space bool
}

// splitSpaceRuns 把文本串切分为空白与非空白交替的块。
// 换行不会出现在这里，解析器把它作为独立 token 输出。
func splitSpaceRuns(s string) []spaceRun {
	var (
		runs    []spaceRun
		builder strings.Builder
		space   bool
	)
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		runs = append(runs, spaceRun{text: builder.String(), space: space})
		builder.Reset()
	}
	for _, r := range s {
		isSpace := unicode.IsSpace(r)
		if builder.Len() > 0 && isSpace != space {
			flush()
		}
		space = isSpace
		builder.WriteRune(r)
	}
	flush()
	return runs
}

// splitIntoGraphemes 按字素簇逐个输出片段，字符粒度切分下 emoji 与组合序列保持完整。
func splitIntoGraphemes(transformed, original string, names []string, style Style) []*Segment {
	var raws []string
	g := graphemes.FromString(original)
	for g.Next() {
		raws = append(raws, g.Value())
	}
	var vals []string
	t := graphemes.FromString(transformed)
	for t.Next() {
		vals = append(vals, t.Value())
	}

	// 大小写变换可能改变簇数量（ß -> SS），数量仍对齐时才回映射到原文簇。
	aligned := len(vals) == len(raws)
	out := make([]*Segment, 0, len(vals))
	for i, v := range vals {
		raw := v
		if aligned {
			raw = raws[i]
		}
		out = append(out, &Segment{Kind: KindText, Content: v, Raw: raw, Tags: names, Style: style})
	}
	return out
}

func transformText(s, transform string) string {
	switch transform {
	case "lowercase":
		return strings.ToLower(s)
	case "uppercase":
		return strings.ToUpper(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	default:
		return s
	}
}
