// Package fonts 暴露内建兜底字体，供样式未指定字体族、
// 或指定的字体族没有注册字体文件时使用。
package fonts

import (
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// Fallback 返回常规兜底字体数据（Latin Modern Roman）。
func Fallback() []byte { return lmroman10regular.TTF }

// FallbackBold 返回粗体兜底字体数据。
func FallbackBold() []byte { return lmroman10bold.TTF }

// FallbackItalic 返回斜体兜底字体数据。
func FallbackItalic() []byte { return lmroman10italic.TTF }

// FallbackBoldItalic 返回粗斜体兜底字体数据。
func FallbackBoldItalic() []byte { return lmroman10bolditalic.TTF }
