package layout

import (
	"strings"
	"testing"
)

// stubMeasurer 是测试用的最小测量实现：每个字符固定 4mm 宽。
type stubMeasurer struct{}

func (stubMeasurer) TextWidth(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * 4.0
}

func bodyTestStyle() TextStyle {
	return TextStyle{Name: "body", FontSize: Pt(16)}
}

// flattenText 把行序列还原为可见文本，用于完整性断言。
func flattenText(lines []Line) string {
	var b strings.Builder
	for _, line := range lines {
		for _, placed := range line {
			switch s := placed.Segment.(type) {
			case TextSegment:
				b.WriteString(s.Content)
			case RubySegment:
				b.WriteString(s.Base)
			}
		}
	}
	return b.String()
}

func rubyRun(chars string) []Segment {
	var segs []Segment
	for _, r := range chars {
		segs = append(segs, RubySegment{Base: string(r), Pinyin: "x"})
	}
	return segs
}

func TestWrapRubyCellWidths(t *testing.T) {
	b := NewBlock(rubyRun("一二三四五"), bodyTestStyle())
	avail := CellWidth()*2 + 0.1
	_, height, fits := b.Wrap(avail, 1000, stubMeasurer{})
	if !fits {
		t.Fatal("高度充足时应完全放下")
	}
	if len(b.Lines()) != 3 {
		t.Fatalf("行数 = %d，期望 3（每行 2 个字格）", len(b.Lines()))
	}
	for i, line := range b.Lines() {
		if line.Width() > avail {
			t.Errorf("第 %d 行宽 %.2f 超出可用宽度 %.2f", i, line.Width(), avail)
		}
		for _, placed := range line {
			if placed.Width != CellWidth() {
				t.Errorf("注音段宽 = %.2f，期望统一字格 %.2f", placed.Width, CellWidth())
			}
		}
	}
	wantHeight := 3 * bodyTestStyle().LineHeight()
	if height != wantHeight {
		t.Errorf("高度 = %.2f，期望 %.2f", height, wantHeight)
	}
}

func TestWrapExplodesChineseText(t *testing.T) {
	b := NewBlock([]Segment{TextSegment{Content: "你好吗"}}, bodyTestStyle())
	avail := CellWidth()*2 + 0.1
	b.Wrap(avail, 1000, stubMeasurer{})
	if len(b.Lines()) != 2 {
		t.Fatalf("中文文本应按字符折行，行数 = %d，期望 2", len(b.Lines()))
	}
	if got := flattenText(b.Lines()); got != "你好吗" {
		t.Errorf("折行后文本 = %q，期望 你好吗", got)
	}
}

func TestWrapLatinMeasuredWhole(t *testing.T) {
	b := NewBlock([]Segment{TextSegment{Content: "hello"}}, bodyTestStyle())
	b.Wrap(100, 1000, stubMeasurer{})
	if len(b.Lines()) != 1 || len(b.Lines()[0]) != 1 {
		t.Fatalf("拉丁文本放得下时不应拆分：%#v", b.Lines())
	}
	if w := b.Lines()[0][0].Width; w != 20 {
		t.Errorf("拉丁段宽 = %.2f，期望 20（测量宽度）", w)
	}
}

func TestWrapCompressedSegmentAtomic(t *testing.T) {
	segs := []Segment{
		RubySegment{Base: "好", Pinyin: "hǎo"},
		TextSegment{Content: "。"},
		TextSegment{Content: "”"},
	}
	b := NewBlock(segs, bodyTestStyle())
	b.Wrap(1000, 1000, stubMeasurer{})
	line := b.Lines()[0]
	if len(line) != 2 {
		t.Fatalf("段数 = %d，期望 2（标点串压缩为一段）", len(line))
	}
	if line[1].Width != CellWidth() {
		t.Errorf("压缩段宽 = %.2f，期望一个字格 %.2f", line[1].Width, CellWidth())
	}
}

func TestWrapLineStartPunctuationInvariant(t *testing.T) {
	segs := []Segment{
		RubySegment{Base: "一", Pinyin: "yī"},
		RubySegment{Base: "二", Pinyin: "èr"},
		TextSegment{Content: "。"},
		RubySegment{Base: "三", Pinyin: "sān"},
		RubySegment{Base: "四", Pinyin: "sì"},
		TextSegment{Content: "！"},
		RubySegment{Base: "五", Pinyin: "wǔ"},
	}
	b := NewBlock(segs, bodyTestStyle())
	b.Wrap(CellWidth()*2+0.1, 1000, stubMeasurer{})
	for i, line := range b.Lines() {
		if len(line) == 0 {
			t.Fatalf("第 %d 行为空", i)
		}
		if leadingForbidden(line[0].Segment) {
			t.Errorf("第 %d 行以禁入标点开头：%#v", i, line[0].Segment)
		}
	}
	if got := flattenText(b.Lines()); got != "一二。三四！五" {
		t.Errorf("行首修正不应丢失内容，实际 %q", got)
	}
}

func TestWrapEmptyInput(t *testing.T) {
	b := NewBlock(nil, bodyTestStyle())
	_, height, fits := b.Wrap(100, 100, stubMeasurer{})
	if !fits || height != 0 || len(b.Lines()) != 0 {
		t.Errorf("空输入应产出零行零高：height=%.2f fits=%v lines=%d", height, fits, len(b.Lines()))
	}
}

func TestSplitCompleteness(t *testing.T) {
	const chars = "甲乙丙丁戊己庚辛壬癸子丑寅卯辰巳午未申酉戌亥一二三四五六七八九十"
	style := bodyTestStyle()
	b := NewBlock(rubyRun(chars), style)
	avail := CellWidth()*5 + 0.1
	lineH := style.LineHeight()

	conts := b.Split(avail, lineH*2+0.1, lineH*3+0.1, stubMeasurer{})
	if len(conts) == 0 {
		t.Fatal("内容超出首块高度时应产出后续块")
	}
	if len(b.Lines()) != 2 {
		t.Errorf("首块行数 = %d，期望 2", len(b.Lines()))
	}

	all := flattenText(b.Lines())
	for _, c := range conts {
		if len(c.Lines()) > 3 {
			t.Errorf("后续块行数 = %d，超出整页预算 3", len(c.Lines()))
		}
		if !c.HasContent() {
			t.Error("后续块不应为空白")
		}
		all += flattenText(c.Lines())
	}
	if all != chars {
		t.Errorf("拆分后拼接 = %q，期望完整保留 %q", all, chars)
	}
}

func TestSplitFitsReturnsNil(t *testing.T) {
	b := NewBlock(rubyRun("一二三"), bodyTestStyle())
	if conts := b.Split(1000, 1000, 1000, stubMeasurer{}); conts != nil {
		t.Errorf("全部放得下时 Split 应返回 nil，实际 %d 块", len(conts))
	}
}
