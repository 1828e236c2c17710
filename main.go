package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/inkline/layout"
	"github.com/ByLCY/inkline/renderer"
	canvasrenderer "github.com/ByLCY/inkline/renderer/canvas"
	"github.com/ByLCY/inkline/tagged"
)

func main() {
	input := flag.String("in", "examples/demo.txt", "标签文本文件路径")
	stylesPath := flag.String("styles", "", "样式表 JSON 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dump := flag.Bool("dump", false, "在标准输出打印布局清单")
	fontsDir := flag.String("fonts", "", "字体目录（按文件名注册字体族）")
	imagesDir := flag.String("images", "", "图片目录（按文件名注册图片模板）")
	margin := flag.Float64("margin", 10, "页边距（毫米）")
	splitChars := flag.Bool("split-chars", false, "按字素而非按词切分片段")
	wrapEmoji := flag.Bool("wrap-emoji", false, "把 emoji 包进保留标签以便独立设置字体")
	scaleIcons := flag.Bool("scale-icons", false, "行内图片按周围字号定尺寸")
	flag.Parse()

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: *imagesDir,
		Margin:  *margin,
		Fonts:   scanResources(*fontsDir, fontExts, true),
		Images:  scanResources(*imagesDir, imageExts, false),
	})
	opts := layout.Options{
		Typesetter: r,
		WrapEmoji:  *wrapEmoji,
		ScaleIcons: *scaleIcons,
		OnWarning: func(code, message string) {
			log.Printf("警告 [%s]: %s", code, message)
		},
	}
	if *splitChars {
		opts.SplitStyle = layout.SplitCharacters
	}

	if err := run(*input, *stylesPath, *output, *debug, *dump, opts, r); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

var (
	fontExts  = map[string]bool{".ttf": true, ".otf": true}
	imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}
)

// scanResources 扫描目录并把匹配扩展名的文件注册为资源。
// stripExt 为真时资源名去掉扩展名（字体族名），否则保留完整文件名（图片模板名）。
func scanResources(dir string, exts map[string]bool, stripExt bool) map[string]canvasrenderer.Resource {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("警告: 无法读取资源目录 %s: %v", dir, err)
		return nil
	}
	out := map[string]canvasrenderer.Resource{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !exts[ext] {
			continue
		}
		name := e.Name()
		if stripExt {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		out[name] = canvasrenderer.Resource{Path: filepath.Join(dir, e.Name())}
	}
	return out
}

// run 串联解析、布局与渲染。
func run(inputPath, stylesPath, outputPath, debugPath string, dump bool, opts layout.Options, r *canvasrenderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("无法读取文本文件 %s: %w", inputPath, err)
	}

	table, err := loadStyles(stylesPath)
	if err != nil {
		return err
	}

	templates, err := r.ImageTemplates(4)
	if err != nil {
		return fmt.Errorf("解析图片资源失败: %w", err)
	}
	opts.Images = templates

	text := tagged.New(string(raw), table, opts)
	para, err := text.Recompute()
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(para, debugPath); err != nil {
			return err
		}
	}
	if dump {
		fmt.Print(layout.Dump(para))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	var rr renderer.Renderer = r
	pdfBytes, err := rr.Render(para)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}

	return nil
}

// loadStyles 读取样式表 JSON。未提供路径时回退到只含 default 的最小样式表。
func loadStyles(path string) (layout.StyleTable, error) {
	if path == "" {
		return layout.StyleTable{
			layout.DefaultStyleName: layout.Props{"fontSize": "12"},
		}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取样式表 %s: %w", path, err)
	}
	var table layout.StyleTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("解析样式表 JSON 失败: %w", err)
	}
	return table, nil
}

func writeDebug(para *layout.Paragraph, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(para, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
