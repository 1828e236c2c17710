package layout

// SplitStyle 选择文本串切分为片段的粒度。
type SplitStyle int

const (
	// SplitWords 只在空白处切分文本串。
	SplitWords SplitStyle = iota
	// SplitCharacters 让每个字素成为独立片段，用于逐字效果，代价是片段更细碎。
	SplitCharacters
)

// Metrics 是测量一段文本的结果：前进宽度、上伸与下沉，均为毫米。
type Metrics struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// Typesetter 基于具体字体后端测量文本。渲染器实现该接口，
// 布局因此无需接触字体文件。
type Typesetter interface {
	Measure(content string, style Style) (Metrics, error)
}

// Options 配置一次布局。所有开关的零值对应引擎的保守默认行为。
type Options struct {
	Typesetter Typesetter
	SplitStyle SplitStyle

	// WrapEmoji 把 emoji 码点包进保留标签 markup.EmojiTag，使其可以使用独立字体族。
	WrapEmoji bool
	// ScaleIcons 让图片片段按周围字号定尺寸。
	ScaleIcons bool
	// AdjustFontBaseline 让图片底边落在文本基线而非行底。
	AdjustFontBaseline bool
	// DrawWhitespace 允许空白片段携带文本装饰。布局计算不受该开关影响。
	DrawWhitespace bool
	// OverdrawDecorations 把每条装饰矩形向左右各外扩该毫米数；
	// 负值收缩，宽度钳制为不小于零。
	OverdrawDecorations float64

	// Images 列出图片引用样式可使用的图片句柄。
	Images map[string]ImageTemplate

	// OnWarning 接收所有可恢复的非致命情况，为 nil 时静默。
	OnWarning func(code, message string)
}

func (o Options) warn() func(code, message string) {
	if o.OnWarning != nil {
		return o.OnWarning
	}
	return func(string, string) {}
}
