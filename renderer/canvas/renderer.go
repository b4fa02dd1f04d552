package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/pinshu/fonts"
	"github.com/ByLCY/pinshu/layout"
	"github.com/ByLCY/pinshu/renderer"
)

// 基字基线相对行底的抬升量（正文字号的倍数），给下伸部留出空间。
const baselineLiftFactor = 0.4

var textColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}

// Renderer 基于 github.com/tdewolff/canvas 绘制分页结果并输出 PDF。
// 同时实现 layout.Measurer，为布局提供拉丁文本的真实宽度。
type Renderer struct {
	family *canvas.FontFamily

	faceMu sync.Mutex
	faces  map[float64]*canvas.FontFace // 按字号(pt)缓存
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// NewRenderer 查找并装载系统 CJK 字体。
// 找不到可用字体时返回 fonts.ErrNoCJKFont，调用方按输出格式决定降级或退出。
func NewRenderer() (*Renderer, error) {
	path, err := fonts.Find()
	if err != nil {
		return nil, err
	}
	data, err := fonts.Load(path)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("pinshu")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("装载字体 %s 失败: %w", path, err)
	}
	return &Renderer{family: family, faces: map[float64]*canvas.FontFace{}}, nil
}

// face 返回指定字号（mm）的字体面，内部按 pt 缓存。
func (r *Renderer) face(fontSize float64) *canvas.FontFace {
	sizePt := fontSize * layout.MmToPt
	r.faceMu.Lock()
	defer r.faceMu.Unlock()
	if f, ok := r.faces[sizePt]; ok {
		return f
	}
	f := r.family.Face(sizePt, textColor, canvas.FontRegular, canvas.FontNormal)
	r.faces[sizePt] = f
	return f
}

// TextWidth 实现 layout.Measurer，返回文本按给定字号（mm）渲染的宽度（mm）。
func (r *Renderer) TextWidth(text string, fontSize float64) float64 {
	if text == "" {
		return 0
	}
	return r.face(fontSize).TextWidth(text)
}

// Render 将分页结果渲染为 PDF 字节切片。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	writer.SetInfo(result.Meta.Title, "", "", result.Meta.Author, "pinshu")
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		for _, block := range page.Blocks {
			r.drawBlock(ctx, block)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBlock 逐行绘制文本块。每行内部以统一字格对齐：
// 注音段与汉字居中于字格，注音以小字号绘制在基字上方；
// 拉丁文本按测量宽度从左往右排。
func (r *Renderer) drawBlock(ctx *canvas.Context, block layout.PlacedBlock) {
	bodyFace := r.face(block.Style.FontSize)
	rubyFace := r.face(block.Style.FontSize * layout.RubySizeFactor)

	for i, line := range block.Lines {
		lineTop := block.Y + float64(i)*block.LineHeight
		baseline := lineTop + block.LineHeight - block.Style.FontSize*baselineLiftFactor
		rubyBaseline := baseline - block.Style.FontSize*layout.RubyRaiseFactor

		x := block.X
		if block.Style.Align == "center" {
			x = block.X + (block.Width-line.Width())/2
		}
		for _, placed := range line {
			switch s := placed.Segment.(type) {
			case layout.RubySegment:
				center := x + placed.Width/2
				ctx.DrawText(center, baseline, canvas.NewTextLine(bodyFace, s.Base, canvas.Center))
				if s.Pinyin != "" {
					ctx.DrawText(center, rubyBaseline, canvas.NewTextLine(rubyFace, s.Pinyin, canvas.Center))
				}
			case layout.TextSegment:
				if s.Compressed || occupiesCell(s.Content) {
					center := x + placed.Width/2
					ctx.DrawText(center, baseline, canvas.NewTextLine(bodyFace, s.Content, canvas.Center))
				} else {
					ctx.DrawText(x, baseline, canvas.NewTextLine(bodyFace, s.Content, canvas.Left))
				}
			}
			x += placed.Width
		}
	}
}

// occupiesCell 判断文本段是否是占统一字格的单字符（汉字或中文标点）。
func occupiesCell(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && (layout.IsCJKPunct(runes[0]) || runes[0] >= 0x4e00 && runes[0] <= 0x9fff)
}
