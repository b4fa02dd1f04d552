package converter

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ByLCY/pinshu/layout"
)

// 该文件负责把注音后的 HTML 块级元素还原为布局分段序列。

// extractSegments 按文档顺序遍历元素子树，把 <ruby> 还原为注音段，
// 其余文本合并为普通文本段（前后空白剔除，空文本丢弃）。
func extractSegments(n *html.Node) []layout.Segment {
	var segs []layout.Segment
	var pending strings.Builder

	flush := func() {
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		if text != "" {
			segs = append(segs, layout.TextSegment{Content: text})
		}
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "ruby" {
			base, pinyin := rubyParts(node)
			if base != "" {
				flush()
				segs = append(segs, layout.RubySegment{Base: base, Pinyin: pinyin})
			}
			return
		}
		if node.Type == html.TextNode {
			pending.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	flush()
	return segs
}

// rubyParts 提取 ruby 元素的基字与注音：rt 子树是注音，其余文本是基字。
func rubyParts(ruby *html.Node) (base, pinyin string) {
	var baseBuf, rtBuf strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inRT bool) {
		if n.Type == html.ElementNode && n.Data == "rt" {
			inRT = true
		}
		if n.Type == html.TextNode {
			if inRT {
				rtBuf.WriteString(n.Data)
			} else {
				baseBuf.WriteString(n.Data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inRT)
		}
	}
	for c := ruby.FirstChild; c != nil; c = c.NextSibling {
		walk(c, false)
	}
	return strings.TrimSpace(baseBuf.String()), strings.TrimSpace(rtBuf.String())
}

// hasRuby 判断分段序列中是否含有注音段。
func hasRuby(segs []layout.Segment) bool {
	for _, seg := range segs {
		if _, ok := seg.(layout.RubySegment); ok {
			return true
		}
	}
	return false
}

// joinText 把纯文本分段合并为一个段落文本，段间以空格连接。
func joinText(segs []layout.Segment) string {
	var parts []string
	for _, seg := range segs {
		if ts, ok := seg.(layout.TextSegment); ok && ts.Content != "" {
			parts = append(parts, ts.Content)
		}
	}
	return strings.Join(parts, " ")
}

// 句末标点，过长分段序列优先在这些边界切块。
const sentenceEnders = "。！？；"

// chunkSegments 把超过 maxSegments 的分段序列切成多块：
// 达到上限后在下一个含句末标点的文本段处切开，
// 避免单个流式单元过大；结尾不足一块的余量单独成块。
func chunkSegments(segs []layout.Segment, maxSegments int) [][]layout.Segment {
	if len(segs) <= maxSegments {
		return [][]layout.Segment{segs}
	}
	var chunks [][]layout.Segment
	var cur []layout.Segment
	for _, seg := range segs {
		cur = append(cur, seg)
		if len(cur) < maxSegments {
			continue
		}
		ts, ok := seg.(layout.TextSegment)
		if !ok || !strings.ContainsAny(ts.Content, sentenceEnders) {
			continue
		}
		chunks = append(chunks, cur)
		cur = nil
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}
