package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/inkline/markup"
)

// WarnHiddenWhitespaceDecoration 在空白片段带有装饰、
// 但空白绘制被关闭导致装饰无法绘出时上报。
const WarnHiddenWhitespaceDecoration = "hidden-whitespace-decoration"

// Build 执行一次完整布局：解析、归类、测量、折行、定位、装饰。
// 返回完整段落树或致命错误；输入文本格式错误不会让布局失败，只会产生警告。
func Build(text string, table StyleTable, opts Options) (*Paragraph, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: missing Typesetter")
	}
	if table == nil || table[DefaultStyleName] == nil {
		return nil, fmt.Errorf("layout: style table must define %q", DefaultStyleName)
	}
	warn := opts.warn()

	known := make(map[string]bool, len(table))
	for name := range table {
		if name != DefaultStyleName {
			known[name] = true
		}
	}
	known[markup.EmojiTag] = true

	tokens := markup.Parse(text, known, opts.WrapEmoji, warn)
	segments := Classify(tokens, table, opts)
	if err := measure(segments, opts); err != nil {
		return nil, err
	}

	defaultStyle := ResolveStyle(nil, table, nil)
	return assemble(segments, defaultStyle, opts, warn), nil
}

// measure 为每个片段填充宽高与字体度量。
// Typesetter 失败是致命的：那说明字体后端坏了，而不是输入文本有问题。
func measure(segments []*Segment, opts Options) error {
	for _, seg := range segments {
		switch seg.Kind {
		case KindSprite:
			w, h, fontSize := spriteSize(seg, opts)
			seg.Bounds.Width = w
			seg.Bounds.Height = h
			seg.Font = FontProperties{Ascent: h, FontSize: fontSize}
		case KindNewline:
			// 几何上零宽，但其样式的度量仍决定空行的高度。
			m, err := opts.Typesetter.Measure("", seg.Style)
			if err != nil {
				return fmt.Errorf("layout: measure newline metrics: %w", err)
			}
			seg.Font = FontProperties{Ascent: m.Ascent, Descent: m.Descent, FontSize: seg.Style.FontSize}
		default:
			m, err := opts.Typesetter.Measure(seg.Content, seg.Style)
			if err != nil {
				return fmt.Errorf("layout: measure %q: %w", seg.Content, err)
			}
			seg.Bounds.Width = m.Width
			seg.Bounds.Height = m.Ascent + m.Descent
			seg.Font = FontProperties{Ascent: m.Ascent, Descent: m.Descent, FontSize: seg.Style.FontSize}
		}
	}
	return nil
}

// normalizeScale 归一化一对缩放值，让较大的轴折算为等价的字号放大：
// 当 max(w, h) > 1 时，两轴同除以最大值，最大值作为字号因子返回。
// (2.0, 1.0) 归一为因子 2 与缩放 (1.0, 0.5)；两轴都不超过 1 时保持原样，因子为 1。
func normalizeScale(w, h float64) (fontFactor, outW, outH float64) {
	m := math.Max(w, h)
	if m <= 1 {
		return 1, w, h
	}
	return m, w / m, h / m
}

func spriteSize(seg *Segment, opts Options) (w, h, fontSize float64) {
	fontFactor, sw, sh := normalizeScale(seg.Style.FontScaleWidth, seg.Style.FontScaleHeight)
	fontSize = seg.Style.FontSize * fontFactor
	w, h = seg.Sprite.Width, seg.Sprite.Height
	if opts.ScaleIcons && fontSize > 0 && h > 0 {
		f := fontSize * PtToMm / h
		w *= f * sw
		h *= f * sh
		return w, h, fontSize
	}
	// 不按字号缩放图标时字号因子仍然生效，同一组作者缩放的两种表达保持等价。
	w *= fontFactor * sw
	h *= fontFactor * sh
	return w, h, fontSize
}

type pendingLine struct {
	words Line
	// hard 行由显式换行（或段落结尾）提交，不参与两端对齐。
	hard bool
}

// assemble 是折行与定位的状态机：行、词、片段三层累加器自左向右推进。
func assemble(segments []*Segment, def Style, opts Options, warn func(code, message string)) *Paragraph {
	wrapLimit := math.MaxFloat64
	if def.WordWrap && def.WordWrapWidth > 0 {
		wrapLimit = def.WordWrapWidth
	}

	var (
		lines []pendingLine
		line  Line
		lineW float64
		word  Word
		wordW float64
	)
	commitLine := func(hard bool) {
		lines = append(lines, pendingLine{words: line, hard: hard})
		line = nil
		lineW = 0
	}
	commitWord := func() {
		if len(word) == 0 {
			return
		}
		// 词在折行时不可拆分：超长的词整体独占一行，而不是被截断。
		if len(line) > 0 && lineW+wordW > wrapLimit {
			commitLine(false)
		}
		line = append(line, word)
		lineW += wordW
		word = nil
		wordW = 0
	}

	for _, seg := range segments {
		switch seg.Kind {
		case KindNewline:
			commitWord()
			line = append(line, Word{seg})
			commitLine(true)
		case KindWhitespace:
			commitWord()
			// 空白本身绝不触发折行，行尾空格悬挂在限宽之外而不是另起一行。
			line = append(line, Word{seg})
			lineW += seg.Bounds.Width
		default:
			word = append(word, seg)
			wordW += seg.Bounds.Width
		}
	}
	commitWord()
	if len(line) > 0 {
		commitLine(true)
	}

	naturals := make([]float64, len(lines))
	maxNatural := 0.0
	for i, pl := range lines {
		w := 0.0
		for _, wd := range pl.words {
			for _, s := range wd {
				w += s.Bounds.Width
			}
		}
		naturals[i] = w
		if w > maxNatural {
			maxNatural = w
		}
	}
	paraWidth := maxNatural
	if wrapLimit != math.MaxFloat64 {
		paraWidth = wrapLimit
	}

	out := make([]Line, len(lines))
	y := 0.0
	for i, pl := range lines {
		maxAscent, maxDescent := 0.0, 0.0
		for _, wd := range pl.words {
			for _, s := range wd {
				maxAscent = math.Max(maxAscent, s.Font.Ascent)
				maxDescent = math.Max(maxDescent, s.Font.Descent)
			}
		}
		lineHeight := maxAscent + maxDescent

		slack := paraWidth - naturals[i]
		if slack < 0 {
			slack = 0
		}
		x := 0.0
		justifyExtra := 0.0
		switch def.Align {
		case "center":
			x = slack / 2
		case "right":
			x = slack
		case "justify":
			if !pl.hard {
				if n := interiorWhitespace(pl.words); n > 0 {
					justifyExtra = slack / float64(n)
				}
			}
		}

		lastContent := lastContentWord(pl.words)
		for wi, wd := range pl.words {
			for _, s := range wd {
				s.Bounds.X = x
				switch s.Kind {
				case KindNewline:
					s.Bounds.Y = y
				case KindSprite:
					if opts.AdjustFontBaseline {
						// 图片底边落在文本基线上。
						s.Bounds.Y = y + maxAscent - s.Bounds.Height
					} else {
						s.Bounds.Y = y + lineHeight - s.Bounds.Height
					}
				default:
					s.Bounds.Y = y + maxAscent - s.Font.Ascent
				}
				x += s.Bounds.Width
				if justifyExtra > 0 && s.Kind == KindWhitespace && wi <= lastContent {
					s.Bounds.Width += justifyExtra
					x += justifyExtra
				}
				decorate(s, opts, warn)
			}
		}

		out[i] = pl.words
		y += lineHeight
		if i < len(lines)-1 {
			y += def.LineSpacing
		}
	}

	return &Paragraph{Lines: out, Width: paraWidth, Height: y}
}

// interiorWhitespace 统计最后一个内容词之前的空白词数量，行尾空格不分摊两端对齐的余量。
func interiorWhitespace(words Line) int {
	last := lastContentWord(words)
	n := 0
	for i, wd := range words {
		if i > last {
			break
		}
		if len(wd) == 1 && wd[0].Kind == KindWhitespace {
			n++
		}
	}
	return n
}

func lastContentWord(words Line) int {
	for i := len(words) - 1; i >= 0; i-- {
		for _, s := range words[i] {
			if s.Kind == KindText || s.Kind == KindSprite {
				return i
			}
		}
	}
	return -1
}

// decorate 根据片段样式与最终位置推导装饰矩形。
// 外扩作用于左右两边，宽度钳制为不小于零。
func decorate(seg *Segment, opts Options, warn func(code, message string)) {
	if seg.Style.TextDecoration == "" {
		return
	}
	switch seg.Kind {
	case KindNewline, KindSprite:
		return
	case KindWhitespace:
		if !opts.DrawWhitespace {
			warn(WarnHiddenWhitespaceDecoration,
				"whitespace segment has a text decoration but whitespace drawing is disabled")
			return
		}
	}

	baseline := seg.Bounds.Y + seg.Font.Ascent
	thickness := math.Max(seg.Style.FontSize*PtToMm/14, 0.2)
	width := seg.Bounds.Width + 2*opts.OverdrawDecorations
	x := seg.Bounds.X - opts.OverdrawDecorations
	if width < 0 {
		width = 0
		x = seg.Bounds.X + seg.Bounds.Width/2
	}

	for _, kind := range strings.Fields(seg.Style.TextDecoration) {
		var top float64
		switch kind {
		case "underline":
			top = baseline + seg.Font.Descent*0.5
		case "overline":
			top = seg.Bounds.Y - thickness
		case "line-through":
			top = baseline - seg.Font.Ascent*0.35 - thickness/2
		default:
			continue
		}
		seg.Decorations = append(seg.Decorations, Decoration{
			Bounds: Rect{X: x, Y: top, Width: width, Height: thickness},
			Color:  seg.Style.Fill,
		})
	}
}
