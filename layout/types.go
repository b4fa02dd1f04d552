package layout

import "encoding/json"

// 该文件定义布局结果与样式描述，供分页计算、渲染与调试 JSON 共用。
// 所有坐标与尺寸单位均为毫米（mm），与渲染后端在边界处做 mm↔pt 换算。

// 与原文/注音排版相关的固定参数。
const (
	// LineSpaceFactor 行高 = 字号 × 该系数，保证基字与上一行注音之间留足间距。
	LineSpaceFactor = 2.2
	// RubySizeFactor 注音字号 = 正文字号 × 该系数。
	RubySizeFactor = 0.6
	// RubyRaiseFactor 注音基线相对正文基线的抬升量 = 正文字号 × 该系数。
	RubyRaiseFactor = 0.96
	// CellWidthPt 统一字格宽度（pt）：所有汉字与注音段占用同一宽度以对齐网格。
	CellWidthPt = 24.0
)

// CellWidth 返回统一字格宽度（mm）。
func CellWidth() float64 { return CellWidthPt * PtToMm }

// TextStyle 描述一个文本流的样式。尺寸单位均为 mm。
type TextStyle struct {
	Name        string  `json:"name"`
	FontSize    float64 `json:"fontSize"`
	Align       string  `json:"align,omitempty"` // left（默认）/center
	SpaceBefore float64 `json:"spaceBefore,omitempty"`
	SpaceAfter  float64 `json:"spaceAfter,omitempty"`
	Heading     bool    `json:"heading,omitempty"`
}

// LineHeight 返回该样式的行高（mm）。
func (s TextStyle) LineHeight() float64 { return s.FontSize * LineSpaceFactor }

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// PageOptions 描述页面尺寸与边距。
type PageOptions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// ContentWidth 返回去除左右边距后的内容宽度。
func (p PageOptions) ContentWidth() float64 { return p.Width - p.Margin.Left - p.Margin.Right }

// ContentHeight 返回去除上下边距后的内容高度。
func (p PageOptions) ContentHeight() float64 { return p.Height - p.Margin.Top - p.Margin.Bottom }

// PlacedSegment 是带有已计算显示宽度的段。
type PlacedSegment struct {
	Segment Segment
	Width   float64
}

// MarshalJSON 输出调试 JSON 时标注段的具体变体。
func (p PlacedSegment) MarshalJSON() ([]byte, error) {
	switch s := p.Segment.(type) {
	case TextSegment:
		return json.Marshal(struct {
			Type       string  `json:"type"`
			Content    string  `json:"content"`
			Compressed bool    `json:"compressed,omitempty"`
			Width      float64 `json:"width"`
		}{"text", s.Content, s.Compressed, p.Width})
	case RubySegment:
		return json.Marshal(struct {
			Type   string  `json:"type"`
			Base   string  `json:"base"`
			Pinyin string  `json:"pinyin"`
			Width  float64 `json:"width"`
		}{"ruby", s.Base, s.Pinyin, p.Width})
	}
	return json.Marshal(nil)
}

// Line 是排好的一行段序列。
type Line []PlacedSegment

// Width 返回整行宽度。
func (l Line) Width() float64 {
	total := 0.0
	for _, seg := range l {
		total += seg.Width
	}
	return total
}

// PlacedBlock 表示一个已经确定页面坐标的文本块。
type PlacedBlock struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Style      TextStyle `json:"style"`
	Lines      []Line    `json:"lines"`
	LineHeight float64   `json:"lineHeight"`
}

// Page 记录页面尺寸、边距与可以直接渲染的文本块。
type Page struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Margin Margin        `json:"margin"`
	Blocks []PlacedBlock `json:"blocks"`
}

// DocumentMeta 保存 PDF 元信息，来自 EPUB 的 OPF 元数据。
type DocumentMeta struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Publisher  string `json:"publisher"`
	Language   string `json:"language"`
	Identifier string `json:"identifier"`
}

// Result 保存分页后的页面与元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}
