// Package tagged 是引擎的可变入口：Text 组件持有待排版的文本、
// 样式与选项，唯一的 Recompute 入口产出不可变的段落树。
package tagged

import (
	"errors"
	"fmt"

	"github.com/ByLCY/inkline/layout"
	"github.com/ByLCY/inkline/markup"
)

// ErrDestroyed 在 Destroy 之后继续使用 Text 时返回，属于调用方生命周期错误而非输入问题。
var ErrDestroyed = errors.New("tagged: use of destroyed Text")

// Text 是显式两态组件：脏（文本/样式待排）或净（段落树已缓存）。
// 修改方法把组件置脏，Recompute 执行整次布局并缓存结果。非并发安全。
type Text struct {
	text   string
	styles layout.StyleTable
	opts   layout.Options

	dirty     bool
	paragraph *layout.Paragraph
	destroyed bool
}

// New 创建一个脏的 Text，首次 Recompute 或 Paragraph 调用执行初次布局。
func New(text string, styles layout.StyleTable, opts layout.Options) *Text {
	return &Text{text: text, styles: styles, opts: opts, dirty: true}
}

// Text 返回带标签的原始字符串。
func (t *Text) Text() string { return t.text }

// UntaggedText 返回剥去全部标签后的原文。
func (t *Text) UntaggedText() string { return markup.RemoveTags(t.text) }

// NeedsUpdate 报告缓存的段落树是否已过期。
func (t *Text) NeedsUpdate() bool { return t.dirty }

// SetText 替换源字符串并把组件置脏。
func (t *Text) SetText(text string) {
	if t.text == text {
		return
	}
	t.text = text
	t.dirty = true
}

// SetStyles 整体替换样式表。
func (t *Text) SetStyles(styles layout.StyleTable) {
	t.styles = styles
	t.dirty = true
}

// SetStyleForTag 设置或替换单个标签的样式记录。
func (t *Text) SetStyleForTag(name string, props layout.Props) {
	if t.styles == nil {
		t.styles = layout.StyleTable{}
	}
	t.styles[name] = props
	t.dirty = true
}

// RemoveStyleForTag 删除标签的样式记录。删掉 default 会让样式表失效，由下次 Recompute 报告。
func (t *Text) RemoveStyleForTag(name string) {
	delete(t.styles, name)
	t.dirty = true
}

// GetStyleForTag 返回级联对携带这些标签的片段会算出的合并记录，从左到右，后者优先。
func (t *Text) GetStyleForTag(names ...string) layout.Props {
	records := make([]layout.Props, 0, len(names)+1)
	records = append(records, t.styles[layout.DefaultStyleName])
	for _, n := range names {
		records = append(records, t.styles[n])
	}
	return layout.CombineProps(records...)
}

// SetOptions 替换布局选项。
func (t *Text) SetOptions(opts layout.Options) {
	t.opts = opts
	t.dirty = true
}

// Recompute 在组件为脏时执行整次布局并返回段落树。
// 返回的树在下次布局前归调用方使用，必须视为只读。
func (t *Text) Recompute() (*layout.Paragraph, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	if !t.dirty && t.paragraph != nil {
		return t.paragraph, nil
	}
	p, err := layout.Build(t.text, t.styles, t.opts)
	if err != nil {
		return nil, fmt.Errorf("tagged: recompute: %w", err)
	}
	t.paragraph = p
	t.dirty = false
	return p, nil
}

// Paragraph 返回当前段落树，脏时惰性重算。
func (t *Text) Paragraph() (*layout.Paragraph, error) {
	return t.Recompute()
}

// Destroy 释放组件，之后的任何使用都返回 ErrDestroyed。
func (t *Text) Destroy() {
	t.destroyed = true
	t.paragraph = nil
	t.styles = nil
}
