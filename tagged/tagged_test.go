package tagged_test

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/inkline/layout"
	"github.com/ByLCY/inkline/tagged"
)

type stubTypesetter struct{}

func (stubTypesetter) Measure(content string, style layout.Style) (layout.Metrics, error) {
	size := style.FontSize
	if size <= 0 {
		size = 12
	}
	return layout.Metrics{
		Width:   float64(utf8.RuneCountInString(content)) * size * 0.5 * layout.PtToMm,
		Ascent:  size * 0.8 * layout.PtToMm,
		Descent: size * 0.2 * layout.PtToMm,
	}, nil
}

func newText(raw string) *tagged.Text {
	return tagged.New(raw, layout.StyleTable{
		layout.DefaultStyleName: layout.Props{"fontSize": "10"},
		"b":                     layout.Props{"fontWeight": "bold"},
	}, layout.Options{Typesetter: stubTypesetter{}})
}

// TestDirtyCleanLifecycle 验证脏/净两态与缓存复用。
func TestDirtyCleanLifecycle(t *testing.T) {
	text := newText("hello <b>world</b>")
	if !text.NeedsUpdate() {
		t.Fatalf("新建组件应为脏")
	}

	p1, err := text.Recompute()
	if err != nil {
		t.Fatalf("Recompute 失败: %v", err)
	}
	if text.NeedsUpdate() {
		t.Fatalf("布局后应为净")
	}

	p2, err := text.Recompute()
	if err != nil {
		t.Fatalf("Recompute 失败: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("净态下应返回缓存的段落树")
	}

	text.SetText("changed")
	if !text.NeedsUpdate() {
		t.Fatalf("SetText 应置脏")
	}
	p3, err := text.Recompute()
	if err != nil {
		t.Fatalf("Recompute 失败: %v", err)
	}
	if p3 == p2 {
		t.Fatalf("置脏后应重建段落树")
	}
}

// TestSetTextNoopWhenEqual 验证设置相同文本不置脏。
func TestSetTextNoopWhenEqual(t *testing.T) {
	text := newText("same")
	if _, err := text.Recompute(); err != nil {
		t.Fatalf("Recompute 失败: %v", err)
	}
	text.SetText("same")
	if text.NeedsUpdate() {
		t.Fatalf("相同文本不应置脏")
	}
}

// TestStyleMutators 验证逐标签样式修改与组合查询。
func TestStyleMutators(t *testing.T) {
	text := newText("a <b>c</b>")
	text.SetStyleForTag("em", layout.Props{"fontStyle": "italic"})
	if !text.NeedsUpdate() {
		t.Fatalf("SetStyleForTag 应置脏")
	}

	got := text.GetStyleForTag("b", "em")
	if got["fontWeight"] != "bold" || got["fontStyle"] != "italic" {
		t.Fatalf("组合查询错误: %+v", got)
	}
	if got["fontSize"] != "10" {
		t.Fatalf("组合查询应包含 default: %+v", got)
	}

	text.RemoveStyleForTag("b")
	if text.GetStyleForTag("b")["fontWeight"] != "" {
		t.Fatalf("删除后样式仍可见")
	}
}

// TestRemoveDefaultFailsNextRecompute 验证删除 default 由下次布局报告。
func TestRemoveDefaultFailsNextRecompute(t *testing.T) {
	text := newText("x")
	text.RemoveStyleForTag(layout.DefaultStyleName)
	if _, err := text.Recompute(); err == nil {
		t.Fatalf("缺少 default 应返回错误")
	}
}

// TestUntaggedText 验证剥标签访问不触发布局。
func TestUntaggedText(t *testing.T) {
	text := newText("one <b>two</b>")
	if got := text.UntaggedText(); got != "one two" {
		t.Fatalf("UntaggedText = %q", got)
	}
	if !text.NeedsUpdate() {
		t.Fatalf("剥标签访问不应触发布局")
	}
}

// TestDestroy 验证销毁后的使用返回哨兵错误。
func TestDestroy(t *testing.T) {
	text := newText("x")
	text.Destroy()
	if _, err := text.Recompute(); !errors.Is(err, tagged.ErrDestroyed) {
		t.Fatalf("期望 ErrDestroyed，实际 %v", err)
	}
	if _, err := text.Paragraph(); !errors.Is(err, tagged.ErrDestroyed) {
		t.Fatalf("期望 ErrDestroyed，实际 %v", err)
	}
}
