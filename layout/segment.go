package layout

import (
	"strings"
)

// 该文件定义布局引擎操作的分段模型与中文标点规则。

// Segment 是布局引擎的基本单元：普通文本段或注音段。
// 使用封闭的和类型，布局算法对两种变体做穷尽匹配。
type Segment interface {
	segment()
}

// TextSegment 表示一段普通文本；Compressed 为真时表示
// 已被压缩的连续标点串，渲染时只占一个字格。
type TextSegment struct {
	Content    string `json:"content"`
	Compressed bool   `json:"compressed,omitempty"`
}

// RubySegment 表示一个带注音的汉字：Base 恒为单个汉字。
type RubySegment struct {
	Base   string `json:"base"`
	Pinyin string `json:"pinyin"`
}

func (TextSegment) segment() {}
func (RubySegment) segment() {}

// 参与压缩与统一字格的中文标点集合。
const cjkPunctuation = "。，！？；：“”‘’（）【】《》"

// 禁止出现在行首的标点（开括号与开引号除外）。
const forbiddenLeading = "，、；：。？！…—”’）》】〉〕·‧/"

// IsCJKPunct 判断字符是否属于统一字格标点集合。
func IsCJKPunct(r rune) bool {
	return strings.ContainsRune(cjkPunctuation, r)
}

// IsForbiddenLeading 判断字符是否禁止作为行首。
func IsForbiddenLeading(r rune) bool {
	return strings.ContainsRune(forbiddenLeading, r)
}

// isChinese 判断字符是否落在 CJK 统一表意文字区。
func isChinese(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

// needsCellWidth 判断字符是否使用统一字格宽度（汉字或中文标点）。
func needsCellWidth(r rune) bool {
	return isChinese(r) || IsCJKPunct(r)
}

// singlePunct 判断一个段是否为未压缩的单个标点文本段。
func singlePunct(seg Segment) (rune, bool) {
	ts, ok := seg.(TextSegment)
	if !ok || ts.Compressed {
		return 0, false
	}
	runes := []rune(ts.Content)
	if len(runes) != 1 || !IsCJKPunct(runes[0]) {
		return 0, false
	}
	return runes[0], true
}

// CompressPunctuation 将 ≥2 个连续的单字符标点段合并为一个压缩段，
// 压缩段渲染时只占一个字格。单个标点不压缩。
func CompressPunctuation(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for i := 0; i < len(segments); {
		if _, ok := singlePunct(segments[i]); !ok {
			out = append(out, segments[i])
			i++
			continue
		}
		var run strings.Builder
		j := i
		for j < len(segments) {
			r, ok := singlePunct(segments[j])
			if !ok {
				break
			}
			run.WriteRune(r)
			j++
		}
		if j-i >= 2 {
			out = append(out, TextSegment{Content: run.String(), Compressed: true})
		} else {
			out = append(out, segments[i])
		}
		i = j
	}
	return out
}

// leadingForbidden 判断一个段是否是禁止行首的标点：
// 单字符标点文本段，或注音段的基字本身是标点。
func leadingForbidden(seg Segment) bool {
	switch s := seg.(type) {
	case TextSegment:
		if s.Compressed {
			return false
		}
		runes := []rune(s.Content)
		return len(runes) == 1 && IsForbiddenLeading(runes[0])
	case RubySegment:
		runes := []rune(s.Base)
		return len(runes) == 1 && IsForbiddenLeading(runes[0])
	}
	return false
}

// segmentBlank 判断段是否没有可见内容。
func segmentBlank(seg Segment) bool {
	switch s := seg.(type) {
	case TextSegment:
		return strings.TrimSpace(s.Content) == ""
	case RubySegment:
		return strings.TrimSpace(s.Base) == ""
	}
	return true
}
