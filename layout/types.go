package layout

// 该文件定义一次布局产出的段落树，供布局计算、渲染与调试 JSON 共用。

// SegmentKind 区分片段的种类。
type SegmentKind int

const (
	KindText SegmentKind = iota
	KindSprite
	KindWhitespace
	KindNewline
)

func (k SegmentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSprite:
		return "sprite"
	case KindWhitespace:
		return "whitespace"
	case KindNewline:
		return "newline"
	default:
		return "unknown"
	}
}

// MarshalText 使种类在调试 JSON 中可读。
func (k SegmentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Rect 是布局坐标系下的绝对包围盒（毫米）。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 保存 0-255 的 RGB 分量。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// FontProperties 记录片段测得的字体度量（毫米）与生效字号（pt）。
// 图片片段只填充对其有意义的字段。
type FontProperties struct {
	Ascent   float64 `json:"ascent"`
	Descent  float64 `json:"descent"`
	FontSize float64 `json:"fontSize"`
}

// Decoration 是一条文本装饰矩形（例如一段下划线），
// 独立于字形包围盒定位，便于外扩绘制而不影响字形本身。
type Decoration struct {
	Bounds Rect  `json:"bounds"`
	Color  Color `json:"color"`
}

// ImageTemplate 命名一个可被图片引用样式使用的图片句柄，并记录其原始尺寸（毫米）。
type ImageTemplate struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Segment 是最小的带样式且已测量的单元：文本串、行内图片、空白串或显式换行标记。
type Segment struct {
	Kind    SegmentKind `json:"kind"`
	Content string      `json:"content"`
	// Raw 保留变换前的原始文本，纯文本访问可据此恢复原大小写与被替换的图片标签。
	Raw         string         `json:"raw,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Style       Style          `json:"style"`
	Bounds      Rect           `json:"bounds"`
	Font        FontProperties `json:"fontProperties"`
	Decorations []Decoration   `json:"textDecorations,omitempty"`
	Sprite      *ImageTemplate `json:"sprite,omitempty"`
}

// Word 是折行不可拆分的片段序列：要么是一段空白，要么是一段连续的非空白片段。
// 布局绝不会把一个 Word 拆到两行。
type Word []*Segment

// Line 是提交到同一视觉行的有序 Word 序列。
type Line []Word

// Paragraph 是一次布局的完整产出。每次布局都整体重建，从不增量修补。
type Paragraph struct {
	Lines  []Line  `json:"lines"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Segments 按布局顺序返回段落内的全部片段。
func (p *Paragraph) Segments() []*Segment {
	var out []*Segment
	for _, line := range p.Lines {
		for _, word := range line {
			out = append(out, word...)
		}
	}
	return out
}

// Text 返回段落片段拼接出的原始文本，发生过大小写变换的片段使用变换前内容。
func (p *Paragraph) Text() string {
	var b []byte
	for _, seg := range p.Segments() {
		b = append(b, seg.Raw...)
	}
	return string(b)
}

// Style 是挂在每个片段上的完全解析、扁平化的样式记录，绘制时无需再查表。
// 字号为 pt，长度为毫米。
type Style struct {
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
	FontWeight      string  `json:"fontWeight,omitempty"`
	FontStyle       string  `json:"fontStyle,omitempty"`
	Fill            Color   `json:"fill"`
	Align           string  `json:"align,omitempty"`
	WordWrap        bool    `json:"wordWrap,omitempty"`
	WordWrapWidth   float64 `json:"wordWrapWidth,omitempty"`
	LetterSpacing   float64 `json:"letterSpacing,omitempty"`
	LineSpacing     float64 `json:"lineSpacing,omitempty"`
	TextDecoration  string  `json:"textDecoration,omitempty"`
	TextTransform   string  `json:"textTransform,omitempty"`
	FontScaleWidth  float64 `json:"fontScaleWidth,omitempty"`
	FontScaleHeight float64 `json:"fontScaleHeight,omitempty"`
	ImgSrc          string  `json:"imgSrc,omitempty"`
}
