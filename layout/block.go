package layout

// Block 是注音排版的核心流式单元：一段压缩后的分段序列加上样式。
// 生命周期：构造 → Wrap/Split 产生行 → 渲染，产出后不再修改。
type Block struct {
	Segments []Segment
	Style    TextStyle

	lines  []Line
	width  float64
	height float64
}

// NewBlock 构造文本块，构造时即做标点压缩预处理。
func NewBlock(segments []Segment, style TextStyle) *Block {
	return &Block{Segments: CompressPunctuation(segments), Style: style}
}

func (b *Block) flowable() {}

// Lines 返回折行结果，仅在 Wrap/Split 之后有效。
func (b *Block) Lines() []Line { return b.lines }

// Width 返回折行后的占用宽度（mm）。
func (b *Block) Width() float64 { return b.width }

// Height 返回折行后的占用高度（mm）。
func (b *Block) Height() float64 { return b.height }

// HasContent 判断块是否含有可见内容。
func (b *Block) HasContent() bool {
	if len(b.lines) > 0 {
		return linesHaveContent(b.lines)
	}
	for _, seg := range b.Segments {
		if !segmentBlank(seg) {
			return true
		}
	}
	return false
}

// buildLines 做不受高度约束的全量折行：
//   - 注音段恒占一个统一字格；
//   - 含汉字或中文标点的文本段先炸成单字符再放置（折行必须按字符粒度）；
//   - 压缩标点段作为一个原子字格单元，不再拆分；
//   - 纯拉丁段整体放置，仅当超出整行宽度时按字符拆分。
//
// 最后经过一次纯函数的行首标点修正，保证禁入标点不出现在行首。
func (b *Block) buildLines(availWidth float64, m Measurer) []Line {
	cell := CellWidth()
	var lines []Line
	var cur Line
	curWidth := 0.0

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
			cur = nil
			curWidth = 0
		}
	}
	place := func(seg Segment, w float64) {
		if curWidth > 0 && curWidth+w > availWidth {
			flush()
		}
		cur = append(cur, PlacedSegment{Segment: seg, Width: w})
		curWidth += w
	}

	for _, seg := range b.Segments {
		switch s := seg.(type) {
		case RubySegment:
			place(s, cell)
		case TextSegment:
			if s.Compressed {
				place(s, cell)
				continue
			}
			if containsCellRune(s.Content) {
				for _, r := range s.Content {
					if needsCellWidth(r) {
						place(TextSegment{Content: string(r)}, cell)
					} else {
						place(TextSegment{Content: string(r)}, m.TextWidth(string(r), b.Style.FontSize))
					}
				}
				continue
			}
			w := m.TextWidth(s.Content, b.Style.FontSize)
			if w > availWidth {
				for _, r := range s.Content {
					place(TextSegment{Content: string(r)}, m.TextWidth(string(r), b.Style.FontSize))
				}
				continue
			}
			place(s, w)
		}
	}
	flush()
	return fixLeadingPunctuation(lines)
}

// fixLeadingPunctuation 修正行首的禁入标点，产出新的行列表：
// 把前一行行尾的段拉到标点之前；当前一行仅剩一个段时，
// 改为把标点并回前一行，避免掏空前一行。被掏空的行整体移除。
func fixLeadingPunctuation(lines []Line) []Line {
	if len(lines) < 2 {
		return lines
	}
	out := make([]Line, len(lines))
	for i := range lines {
		out[i] = append(Line(nil), lines[i]...)
	}
	for i := 1; i < len(out); i++ {
		for len(out[i]) > 0 && leadingForbidden(out[i][0].Segment) {
			prev := out[i-1]
			if len(prev) == 0 {
				break
			}
			if len(prev) == 1 {
				out[i-1] = append(prev, out[i][0])
				out[i] = out[i][1:]
				continue
			}
			last := prev[len(prev)-1]
			out[i-1] = prev[:len(prev)-1]
			out[i] = append(Line{last}, out[i]...)
		}
	}
	compact := out[:0]
	for _, line := range out {
		if len(line) > 0 {
			compact = append(compact, line)
		}
	}
	return compact
}

// Wrap 在给定宽高内折行，返回实际占用的宽高。
// 当全部行放得下时 fits 为真；否则仅保留放得下的前若干行，
// 调用方需用 Split 处理溢出的内容。空输入产出零行零高。
func (b *Block) Wrap(availWidth, availHeight float64, m Measurer) (width, height float64, fits bool) {
	lines := b.buildLines(availWidth, m)
	lineH := b.Style.LineHeight()
	if len(lines) == 0 {
		b.lines, b.width, b.height = nil, availWidth, 0
		return availWidth, 0, true
	}
	maxLines := int(availHeight / lineH)
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) <= maxLines {
		b.lines = lines
		b.width, b.height = availWidth, float64(len(lines))*lineH
		return b.width, b.height, true
	}
	b.lines = lines[:maxLines]
	b.width, b.height = availWidth, float64(maxLines)*lineH
	return b.width, b.height, false
}

// Split 重新做全量折行，当前块保留可用高度内的行，
// 剩余行按整页行数预算打包成后续块返回；没有可见内容的块被丢弃，
// 绝不产出空白的尾页片段。全部放得下时返回 nil。
func (b *Block) Split(availWidth, availHeight, pageHeight float64, m Measurer) []*Block {
	lines := b.buildLines(availWidth, m)
	lineH := b.Style.LineHeight()
	maxLines := int(availHeight / lineH)
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) <= maxLines {
		b.lines = lines
		b.width, b.height = availWidth, float64(len(lines))*lineH
		return nil
	}
	b.lines = lines[:maxLines]
	b.width, b.height = availWidth, float64(maxLines)*lineH

	perPage := int(pageHeight / lineH)
	if perPage < 1 {
		perPage = 1
	}
	rest := lines[maxLines:]
	var out []*Block
	for len(rest) > 0 {
		n := perPage
		if n > len(rest) {
			n = len(rest)
		}
		chunk := rest[:n]
		rest = rest[n:]
		if !linesHaveContent(chunk) {
			continue
		}
		out = append(out, &Block{
			Style:  b.Style,
			lines:  chunk,
			width:  availWidth,
			height: float64(len(chunk)) * lineH,
		})
	}
	return out
}

// containsCellRune 判断文本是否含有需要统一字格的字符。
func containsCellRune(s string) bool {
	for _, r := range s {
		if needsCellWidth(r) {
			return true
		}
	}
	return false
}

// linesHaveContent 判断一组行中是否存在可见内容。
func linesHaveContent(lines []Line) bool {
	for _, line := range lines {
		for _, seg := range line {
			if !segmentBlank(seg.Segment) {
				return true
			}
		}
	}
	return false
}
