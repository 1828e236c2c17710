package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/inkline/markup"
)

// DefaultStyleName 是样式表必须携带的保留键。
const DefaultStyleName = "default"

// 样式解析阶段上报的警告码。
const (
	WarnImgSrcOnDefault  = "imgsrc-on-default"
	WarnUnsupportedColor = "unsupported-color"
	WarnUnsupportedAlign = "unsupported-align"
)

// Props 是作者书写形态的一条样式记录：字符串键到字符串值。
// 字符串记录让级联就是一次浅合并，天然区分已设置与未设置。
type Props map[string]string

// StyleTable 把标签名（含 DefaultStyleName）映射到样式记录。
type StyleTable map[string]Props

// 样式属性键。
const (
	propFontFamily      = "fontFamily"
	propFontSize        = "fontSize"
	propFontWeight      = "fontWeight"
	propFontStyle       = "fontStyle"
	propFill            = "fill"
	propAlign           = "align"
	propWordWrap        = "wordWrap"
	propWordWrapWidth   = "wordWrapWidth"
	propLetterSpacing   = "letterSpacing"
	propLineSpacing     = "lineSpacing"
	propTextDecoration  = "textDecoration"
	propTextTransform   = "textTransform"
	propFontScaleWidth  = "fontScaleWidth"
	propFontScaleHeight = "fontScaleHeight"
	propImgSrc          = "imgSrc"
)

// defaultInk 是 fill 缺失或不被支持时使用的兜底文字颜色。
var defaultInk = Color{R: 30, G: 30, B: 30}

// CombineProps 从左到右合并记录，同名键后者整体覆盖前者。
// 它是级联的基本操作，导出后调用方可以查询任意标签序列的合并结果。
func CombineProps(records ...Props) Props {
	out := Props{}
	for _, r := range records {
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}

// ResolveProps 计算给定激活标签的合并记录：default 在最前，
// 然后按由外到内的顺序叠各标签的样式，再按同样顺序叠各标签的属性。
// default 样式上不允许 imgSrc，发现时清除并告警。
func ResolveProps(tags []markup.Tag, table StyleTable, onWarn func(code, message string)) Props {
	if onWarn == nil {
		onWarn = func(string, string) {}
	}
	merged := CombineProps(table[DefaultStyleName])
	if _, ok := merged[propImgSrc]; ok {
		onWarn(WarnImgSrcOnDefault, "imgSrc is not allowed on the default style; ignored")
		delete(merged, propImgSrc)
	}
	for _, tag := range tags {
		if props, ok := table[tag.Name]; ok {
			for k, v := range props {
				merged[k] = v
			}
		}
	}
	for _, tag := range tags {
		for k, v := range tag.Attributes {
			merged[k] = v
		}
	}
	return merged
}

// ResolveStyle 在样式表上级联激活标签，返回扁平化的类型化样式。
func ResolveStyle(tags []markup.Tag, table StyleTable, onWarn func(code, message string)) Style {
	return styleFromProps(ResolveProps(tags, table, onWarn), onWarn)
}

// styleFromProps 把合并记录转换为类型化 Style：归一对齐方式、解析颜色、钳制非法数值。
func styleFromProps(props Props, onWarn func(code, message string)) Style {
	if onWarn == nil {
		onWarn = func(string, string) {}
	}
	s := Style{
		FontFamily:      props[propFontFamily],
		FontWeight:      props[propFontWeight],
		FontStyle:       props[propFontStyle],
		Fill:            defaultInk,
		Align:           "left",
		TextDecoration:  normalizeDecoration(props[propTextDecoration]),
		TextTransform:   normalizeTransform(props[propTextTransform]),
		FontScaleWidth:  1,
		FontScaleHeight: 1,
		ImgSrc:          props[propImgSrc],
	}

	s.FontSize = parseFontSizePT(props[propFontSize])
	if s.FontSize <= 0 {
		s.FontSize = 12
	}
	s.WordWrapWidth = nonNegative(parseLengthMM(props[propWordWrapWidth]))
	s.LetterSpacing = parseLengthMM(props[propLetterSpacing])
	s.LineSpacing = parseLengthMM(props[propLineSpacing])

	if v, ok := props[propWordWrap]; ok {
		s.WordWrap = parseBool(v)
	}
	if v, ok := props[propAlign]; ok {
		s.Align = normalizeAlign(v, onWarn)
	}
	if v, ok := props[propFill]; ok {
		s.Fill = parseFill(v, onWarn)
	}
	if v, ok := props[propFontScaleWidth]; ok {
		s.FontScaleWidth = clampScale(v)
	}
	if v, ok := props[propFontScaleHeight]; ok {
		s.FontScaleHeight = clampScale(v)
	}
	return s
}

// normalizeAlign 在测量发生前把对齐关键字归一到支持集合；不支持的关键字告警并退回 left。
func normalizeAlign(v string, onWarn func(code, message string)) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return "left"
	case "right", "end":
		return "right"
	case "center", "middle":
		return "center"
	case "justify":
		return "justify"
	default:
		onWarn(WarnUnsupportedAlign, "unsupported align "+strconv.Quote(v)+"; using left")
		return "left"
	}
}

func normalizeDecoration(v string) string {
	var kinds []string
	for _, part := range strings.Fields(strings.ToLower(v)) {
		switch part {
		case "underline", "overline", "line-through":
			kinds = append(kinds, part)
		case "strikethrough":
			kinds = append(kinds, "line-through")
		}
	}
	return strings.Join(kinds, " ")
}

func normalizeTransform(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lowercase":
		return "lowercase"
	case "uppercase":
		return "uppercase"
	case "capitalize":
		return "capitalize"
	default:
		return ""
	}
}

var namedColors = map[string]Color{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"orange": {255, 165, 0},
	"purple": {128, 0, 128},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
}

// parseFill 接受 #rgb、#rrggbb、#rrggbbaa 与一张小型命名色表，其余值告警并使用默认墨色。
func parseFill(value string, onWarn func(code, message string)) Color {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c
	}
	if strings.HasPrefix(v, "#") {
		if c, ok := parseHexColor(v); ok {
			return c
		}
	}
	onWarn(WarnUnsupportedColor, "unsupported color "+strconv.Quote(value))
	return defaultInk
}

func parseHexColor(value string) (Color, bool) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r, okR := hexByte(strings.Repeat(string(value[0]), 2))
		g, okG := hexByte(strings.Repeat(string(value[1]), 2))
		b, okB := hexByte(strings.Repeat(string(value[2]), 2))
		return Color{R: r, G: g, B: b}, okR && okG && okB
	case 6, 8:
		r, okR := hexByte(value[0:2])
		g, okG := hexByte(value[2:4])
		b, okB := hexByte(value[4:6])
		return Color{R: r, G: g, B: b}, okR && okG && okB
	default:
		return Color{}, false
	}
}

func hexByte(s string) (int, bool) {
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// clampScale 把缩放因子钳制到安全值：非有限或无法解析取 1，负值取 0。
func clampScale(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
