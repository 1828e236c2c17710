package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// WriteDebugJSON 把段落树写成 JSON，用于调试与可视化。
func WriteDebugJSON(p *Paragraph, path string) error {
	if p == nil {
		return nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Dump 把段落树渲染为可读的缩进清单：行、词、片段索引，
// 标签列表、样式摘要、几何与字体度量。纯粹由树推导，没有副作用。
func Dump(p *Paragraph) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "paragraph: %d lines, %.2fx%.2f\n", len(p.Lines), p.Width, p.Height)
	for li, line := range p.Lines {
		fmt.Fprintf(&b, "  line %d: %d words\n", li, len(line))
		for wi, word := range line {
			fmt.Fprintf(&b, "    word %d\n", wi)
			for si, seg := range word {
				fmt.Fprintf(&b, "      [%d] %s %q", si, seg.Kind, seg.Content)
				if len(seg.Tags) > 0 {
					fmt.Fprintf(&b, " tags=%s", strings.Join(seg.Tags, ","))
				}
				fmt.Fprintf(&b, " %s", styleSummary(seg.Style))
				fmt.Fprintf(&b, " bounds=(%.2f,%.2f %.2fx%.2f)",
					seg.Bounds.X, seg.Bounds.Y, seg.Bounds.Width, seg.Bounds.Height)
				fmt.Fprintf(&b, " font=(asc %.2f, desc %.2f, size %.2f)",
					seg.Font.Ascent, seg.Font.Descent, seg.Font.FontSize)
				for _, d := range seg.Decorations {
					fmt.Fprintf(&b, " deco=(%.2f,%.2f %.2fx%.2f %s)",
						d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height, hexColor(d.Color))
				}
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func styleSummary(s Style) string {
	parts := []string{fmt.Sprintf("size=%.4g", s.FontSize)}
	if s.FontFamily != "" {
		parts = append(parts, "family="+s.FontFamily)
	}
	if s.FontWeight != "" {
		parts = append(parts, "weight="+s.FontWeight)
	}
	if s.FontStyle != "" {
		parts = append(parts, "style="+s.FontStyle)
	}
	parts = append(parts, "fill="+hexColor(s.Fill))
	if s.Align != "" {
		parts = append(parts, "align="+s.Align)
	}
	if s.TextDecoration != "" {
		parts = append(parts, "decoration="+s.TextDecoration)
	}
	if s.TextTransform != "" {
		parts = append(parts, "transform="+s.TextTransform)
	}
	if s.ImgSrc != "" {
		parts = append(parts, "imgSrc="+s.ImgSrc)
	}
	return "style={" + strings.Join(parts, " ") + "}"
}

func hexColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
