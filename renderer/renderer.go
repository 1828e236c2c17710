package renderer

import "github.com/ByLCY/inkline/layout"

// Renderer 把布局好的段落树转成最终输出字节，例如单页 PDF。
// 实现必须把树视为只读。
type Renderer interface {
	Render(p *layout.Paragraph) ([]byte, error)
}
