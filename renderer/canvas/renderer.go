package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/inkline/fonts"
	"github.com/ByLCY/inkline/layout"
	"github.com/ByLCY/inkline/renderer"
)

const fallbackFamilyName = "inkline-fallback"

// Renderer 基于 github.com/tdewolff/canvas 绘制段落树，同时实现布局引擎的测量接口。
type Renderer struct {
	baseDir string
	margin  float64

	// 注入的资源
	fontBlobs  map[string][]byte // 按字体族名索引
	imageBlobs map[string][]byte // 按图片模板名索引

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
	loadedStyles map[string]bool // 已加载的 family|style 组合
	fallback     *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options 配置 canvas 渲染器。
type Options struct {
	// BaseDir 用于解析按路径引用的图片；为空时禁止路径引用。
	BaseDir string
	// Margin 是段落四周的页边距（毫米）。
	Margin float64
	Fonts  map[string]Resource // 字体文件，按字体族名索引
	Images map[string]Resource // 图片文件，按模板名索引
}

// Resource 可以通过 Bytes 或 Path 两种方式提供。
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer 创建以 baseDir 为图片根目录的 canvas 渲染器。
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions 创建带注入资源的渲染器。
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		margin:       opts.Margin,
		fontBlobs:    map[string][]byte{},
		imageBlobs:   map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
		loadedStyles: map[string]bool{},
	}
	for name, res := range opts.Fonts {
		if data := resourceBytes(res); len(data) > 0 && name != "" {
			r.fontBlobs[name] = data
		}
	}
	for name, res := range opts.Images {
		if data := resourceBytes(res); len(data) > 0 && name != "" {
			r.imageBlobs[name] = data
		}
	}
	return r
}

func resourceBytes(res Resource) []byte {
	if len(res.Bytes) > 0 {
		return res.Bytes
	}
	if res.Path != "" {
		data, _ := os.ReadFile(res.Path) // 路径错误延迟到实际使用时暴露
		return data
	}
	return nil
}

// ImageTemplates 从已注册的图片资源推导布局用的图片模板，
// 按给定密度把像素尺寸换算为毫米。
func (r *Renderer) ImageTemplates(dpmm float64) (map[string]layout.ImageTemplate, error) {
	if dpmm <= 0 {
		dpmm = 4
	}
	out := make(map[string]layout.ImageTemplate, len(r.imageBlobs))
	for name, blob := range r.imageBlobs {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("decode image %q: %w", name, err)
		}
		out[name] = layout.ImageTemplate{
			Name:   name,
			Width:  float64(cfg.Width) / dpmm,
			Height: float64(cfg.Height) / dpmm,
		}
	}
	return out, nil
}

// Measure 实现 layout.Typesetter。宽度与度量以毫米为单位，字号按 pt 创建字面。
func (r *Renderer) Measure(content string, style layout.Style) (layout.Metrics, error) {
	face, err := r.fontFace(style)
	if err != nil {
		return layout.Metrics{}, err
	}
	m := face.Metrics()
	width := face.TextWidth(content)
	if style.LetterSpacing != 0 && content != "" {
		width += style.LetterSpacing * float64(utf8.RuneCountInString(content))
	}
	return layout.Metrics{Width: width, Ascent: m.Ascent, Descent: m.Descent}, nil
}

// Render 把段落树渲染为单页 PDF 字节流。
func (r *Renderer) Render(p *layout.Paragraph) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("render: nil paragraph")
	}
	width := p.Width + 2*r.margin
	height := p.Height + 2*r.margin
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	for _, seg := range p.Segments() {
		if err := r.drawSegment(ctx, seg); err != nil {
			return nil, err
		}
	}

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawSegment(ctx *canvas.Context, seg *layout.Segment) error {
	switch seg.Kind {
	case layout.KindNewline:
		return nil
	case layout.KindSprite:
		return r.drawSprite(ctx, seg)
	}

	if strings.TrimSpace(seg.Content) != "" {
		face, err := r.fontFace(seg.Style)
		if err != nil {
			return err
		}
		baseline := seg.Bounds.Y + seg.Font.Ascent
		if seg.Style.LetterSpacing != 0 {
			r.drawSpacedText(ctx, face, seg, baseline)
		} else {
			line := canvas.NewTextLine(face, seg.Content, canvas.Left)
			ctx.DrawText(r.margin+seg.Bounds.X, r.margin+baseline, line)
		}
	}
	for _, d := range seg.Decorations {
		ctx.SetFillColor(colorFromLayout(d.Color))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(r.margin+d.Bounds.X, r.margin+d.Bounds.Y,
			canvas.Rectangle(d.Bounds.Width, d.Bounds.Height))
	}
	return nil
}

// drawSpacedText 逐字符推进绘制，使实际走位与测量阶段的字距宽度一致。
func (r *Renderer) drawSpacedText(ctx *canvas.Context, face *canvas.FontFace, seg *layout.Segment, baseline float64) {
	x := seg.Bounds.X
	for _, ch := range seg.Content {
		s := string(ch)
		line := canvas.NewTextLine(face, s, canvas.Left)
		ctx.DrawText(r.margin+x, r.margin+baseline, line)
		x += face.TextWidth(s) + seg.Style.LetterSpacing
	}
}

func (r *Renderer) drawSprite(ctx *canvas.Context, seg *layout.Segment) error {
	if seg.Bounds.Width <= 0 || seg.Bounds.Height <= 0 {
		return nil // 模板缺失时产生的空占位
	}
	var (
		img image.Image
		err error
	)
	if blob, ok := r.imageBlobs[seg.Content]; ok {
		img, _, err = image.Decode(bytes.NewReader(blob))
		if err != nil {
			return fmt.Errorf("decode image %q: %w", seg.Content, err)
		}
	} else {
		if r.baseDir == "" {
			return fmt.Errorf("image %q is not registered and no base directory is set", seg.Content)
		}
		file, err := os.Open(filepath.Join(r.baseDir, seg.Content))
		if err != nil {
			return fmt.Errorf("open image %q: %w", seg.Content, err)
		}
		img, _, err = image.Decode(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("decode image %q: %w", seg.Content, err)
		}
	}

	dpmm := float64(img.Bounds().Dx()) / seg.Bounds.Width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(r.margin+seg.Bounds.X, r.margin+seg.Bounds.Y, img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) fontFace(style layout.Style) (*canvas.FontFace, error) {
	st := faceStyle(style.FontWeight, style.FontStyle)
	family, err := r.ensureFamily(style.FontFamily, st)
	if err != nil {
		return nil, err
	}
	return family.Face(style.FontSize, colorFromLayout(style.Fill), st, canvas.FontNormal), nil
}

func (r *Renderer) ensureFamily(name string, st canvas.FontStyle) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	blob, ok := r.fontBlobs[name]
	if name == "" || !ok {
		return r.ensureFallback()
	}

	family, ok := r.fontFamilies[name]
	if !ok {
		family = canvas.NewFontFamily(name)
		r.fontFamilies[name] = family
	}
	key := name + "|" + strconv.Itoa(int(st))
	if !r.loadedStyles[key] {
		if err := family.LoadFont(blob, 0, st); err != nil {
			return nil, fmt.Errorf("load font %q: %w", name, err)
		}
		r.loadedStyles[key] = true
	}
	return family, nil
}

func (r *Renderer) ensureFallback() (*canvas.FontFamily, error) {
	if r.fallback != nil {
		return r.fallback, nil
	}
	family := canvas.NewFontFamily(fallbackFamilyName)
	variants := []struct {
		data []byte
		st   canvas.FontStyle
	}{
		{fonts.Fallback(), canvas.FontRegular},
		{fonts.FallbackBold(), canvas.FontBold},
		{fonts.FallbackItalic(), canvas.FontItalic},
		{fonts.FallbackBoldItalic(), canvas.FontBold | canvas.FontItalic},
	}
	for _, v := range variants {
		if err := family.LoadFont(v.data, 0, v.st); err != nil {
			return nil, fmt.Errorf("load fallback font: %w", err)
		}
	}
	r.fallback = family
	return family, nil
}

// faceStyle 把样式字符串归一到 regular/bold × italic 四格，
// 每个字体文件都注册在四格之一，保证请求的字面总能解析。
func faceStyle(weight, fstyle string) canvas.FontStyle {
	result := canvas.FontRegular
	w := strings.ToLower(weight)
	switch {
	case strings.Contains(w, "black"), strings.Contains(w, "extrabold"),
		strings.Contains(w, "semibold"), strings.Contains(w, "demibold"),
		strings.Contains(w, "bold"):
		result = canvas.FontBold
	default:
		if n, err := strconv.Atoi(strings.TrimSpace(w)); err == nil && n >= 600 {
			result = canvas.FontBold
		}
	}
	s := strings.ToLower(fstyle)
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
