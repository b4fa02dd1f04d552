package converter

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"golang.org/x/net/html"

	"github.com/ByLCY/pinshu/epub"
	"github.com/ByLCY/pinshu/layout"
	"github.com/ByLCY/pinshu/renderer"
)

// MaxChunkSegments 是单个流式单元允许的最大分段数，超出后按句切块。
const MaxChunkSegments = 100

// 同一元素切出的相邻块之间的垂直间隔（pt）。
const chunkGapPt = 3.0

// Backend 同时承担渲染与文本测量，canvas 渲染器实现这两个角色。
type Backend interface {
	renderer.Renderer
	layout.Measurer
}

// Converter 把解压后的 EPUB 按 spine 顺序排版为 PDF。
type Converter struct {
	parser  *epub.Parser
	backend Backend

	// DebugPath 非空时把分页结果额外输出为 JSON。
	DebugPath string
}

// NewConverter 构造转换器，parser 必须已完成 Extract。
func NewConverter(parser *epub.Parser, backend Backend) (*Converter, error) {
	if parser.Structure() == nil {
		return nil, epub.ErrNotParsed
	}
	return &Converter{parser: parser, backend: backend}, nil
}

// 正文、章节标题与书名页的固定样式。尺寸在边界处统一换算为 mm。
func titleStyle() layout.TextStyle {
	return layout.TextStyle{
		Name:       "title",
		FontSize:   layout.Pt(24),
		Align:      "center",
		SpaceAfter: layout.Pt(30),
		Heading:    true,
	}
}

func chapterStyle() layout.TextStyle {
	return layout.TextStyle{
		Name:        "chapter",
		FontSize:    layout.Pt(18),
		SpaceBefore: layout.Pt(20),
		SpaceAfter:  layout.Pt(12),
		Heading:     true,
	}
}

func bodyStyle() layout.TextStyle {
	return layout.TextStyle{
		Name:       "body",
		FontSize:   layout.Pt(16),
		SpaceAfter: layout.Pt(6),
	}
}

// pageOptions 返回 A4 页面与页边距（左右 0.75 英寸，上下 0.5 英寸）。
func pageOptions() layout.PageOptions {
	return layout.PageOptions{
		Width:  210,
		Height: 297,
		Margin: layout.Margin{
			Top:    layout.In(0.5),
			Right:  layout.In(0.75),
			Bottom: layout.In(0.5),
			Left:   layout.In(0.75),
		},
	}
}

// Convert 把 EPUB 内容排版为 PDF 写入 outputPath。
// 单个章节处理失败只告警跳过，不中断整本书。
func (c *Converter) Convert(outputPath string) error {
	files, err := c.parser.HTMLFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("EPUB 中没有可转换的 HTML 文件")
	}

	md := c.parser.Structure().Metadata
	meta := layout.DocumentMeta{
		Title:      md.Title,
		Author:     md.Creator,
		Publisher:  md.Publisher,
		Language:   md.Language,
		Identifier: md.Identifier,
	}

	flow := c.buildFlow(files, md)
	flow = layout.Filter(flow)
	if len(flow) == 0 {
		flow = []layout.Flowable{layout.NewBlock(
			[]layout.Segment{layout.TextSegment{Content: "No content found"}}, bodyStyle())}
	}

	result := layout.Paginate(flow, pageOptions(), meta, c.backend)
	if c.DebugPath != "" {
		if err := layout.WriteDebugJSON(result, c.DebugPath); err != nil {
			log.Printf("警告：输出调试 JSON 失败: %v", err)
		}
	}

	data, err := c.backend.Render(result)
	if err != nil {
		return fmt.Errorf("生成 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("写入 PDF %s 失败: %w", outputPath, err)
	}
	return nil
}

// buildFlow 构建完整的流式序列：书名页、各章节内容、章节间分页符。
func (c *Converter) buildFlow(files []string, md epub.Metadata) []layout.Flowable {
	var flow []layout.Flowable

	// 书名页
	flow = append(flow,
		layout.NewBlock([]layout.Segment{layout.TextSegment{Content: md.Title}}, titleStyle()),
		layout.Spacer{Height: layout.Pt(20)},
		layout.NewBlock([]layout.Segment{layout.TextSegment{Content: "作者: " + md.Creator}}, bodyStyle()),
		layout.NewBlock([]layout.Segment{layout.TextSegment{Content: "出版社: " + md.Publisher}}, bodyStyle()),
		layout.PageBreak{},
	)

	for i, file := range files {
		blocks, err := c.fileFlow(file)
		if err != nil {
			log.Printf("警告：处理 %s 失败: %v", file, err)
			continue
		}
		flow = append(flow, blocks...)
		if i < len(files)-1 {
			flow = append(flow, layout.PageBreak{})
		}
	}
	return flow
}

// fileFlow 解析单个章节文件，按文档顺序产出标题/正文块。
func (c *Converter) fileFlow(path string) ([]layout.Flowable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	var flow []layout.Flowable
	// 只处理最外层的标题与段落，嵌套的块级元素归属外层元素，避免重复产出。
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isBlockTag(n.Data) {
			segs := extractSegments(n)
			if len(segs) == 0 {
				return
			}
			style := bodyStyle()
			if isHeadingTag(n.Data) {
				style = chapterStyle()
			}
			if !hasRuby(segs) {
				// 无注音的元素合并为单个普通段落，不走切块
				if text := joinText(segs); text != "" {
					flow = append(flow, layout.NewBlock(
						[]layout.Segment{layout.TextSegment{Content: text}}, style))
				}
				return
			}
			chunks := chunkSegments(segs, MaxChunkSegments)
			for _, chunk := range chunks {
				flow = append(flow, layout.NewBlock(chunk, style))
				if len(chunks) > 1 {
					flow = append(flow, layout.Spacer{Height: layout.Pt(chunkGapPt)})
				}
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(body)
	return flow, nil
}

func isHeadingTag(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

func isBlockTag(name string) bool {
	return name == "p" || isHeadingTag(name)
}

// findElement 深度优先查找第一个指定元素。
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
