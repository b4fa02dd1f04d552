package pinyin

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Annotate 为文本中的每个汉字包上 <ruby>字<rt>拼音</rt></ruby> 注音，
// 非汉字字符原样保留，整体保持原有字符顺序。
func (r *Resolver) Annotate(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for i, ch := range runes {
		if IsChinese(ch) {
			fmt.Fprintf(&b, "<ruby>%c<rt>%s</rt></ruby>", ch, r.resolve(runes, i))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// 注音时整体跳过的元素：脚本、样式、已有注音与一级标题。
var skipElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Rt:     true,
	atom.H1:     true,
}

// ProcessHTML 解析一个章节的 HTML 内容，返回标题与加注后的正文片段。
// 没有 body 时返回占位正文而不报错。
func (r *Resolver) ProcessHTML(content string) (title, body string, err error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("解析 HTML 失败: %w", err)
	}

	title = "Untitled"
	if node := findElement(doc, atom.Title); node != nil {
		if t := strings.TrimSpace(textContent(node)); t != "" {
			title = t
		}
	}

	bodyNode := findElement(doc, atom.Body)
	if bodyNode == nil {
		return title, "<p>No content</p>", nil
	}

	for child := bodyNode.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			if skipElements[child.DataAtom] {
				continue
			}
			r.annotateTextNodes(child)
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				r.replaceTextNode(child)
			}
		}
	}

	var b strings.Builder
	for child := bodyNode.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&b, child); err != nil {
			return "", "", fmt.Errorf("序列化正文失败: %w", err)
		}
	}
	// 解析器会为任何输入合成 body 元素，无内容的文档在这里兜底
	body = b.String()
	if strings.TrimSpace(body) == "" {
		body = "<p>No content</p>"
	}
	return title, body, nil
}

// annotateTextNodes 递归处理元素内的文本节点，跳过已有注音内部的文本。
func (r *Resolver) annotateTextNodes(node *html.Node) {
	if node.Type == html.ElementNode {
		if node.DataAtom == atom.Ruby || node.DataAtom == atom.Rt {
			return
		}
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
	}
	child := node.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.TextNode {
			r.replaceTextNode(child)
		} else {
			r.annotateTextNodes(child)
		}
		child = next
	}
}

// replaceTextNode 将文本节点替换为加注后的节点序列。
func (r *Resolver) replaceTextNode(node *html.Node) {
	annotated := r.Annotate(node.Data)
	if annotated == node.Data {
		return
	}
	parent := node.Parent
	if parent == nil {
		return
	}
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	fragments, err := html.ParseFragment(strings.NewReader(annotated), context)
	if err != nil {
		return
	}
	for _, frag := range fragments {
		parent.InsertBefore(frag, node)
	}
	parent.RemoveChild(node)
}

// BuildXHTML 将标题与正文组装成写回 EPUB 的最小 XHTML 文档。
func BuildXHTML(title, body string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="zh-CN">
<head>
    <title>%s</title>
    <link rel="stylesheet" type="text/css" href="styles.css"/>
</head>
<body>
%s
</body>
</html>`, title, body)
}

// AnnotateFile 就地改写一个 HTML 文件：抽取标题与正文，加注后写回。
func (r *Resolver) AnnotateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	title, body, err := r.ProcessHTML(string(content))
	if err != nil {
		return fmt.Errorf("处理 %s 失败: %w", path, err)
	}
	out := BuildXHTML(title, body)
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("写回 %s 失败: %w", path, err)
	}
	return nil
}

// findElement 深度优先查找第一个指定元素。
func findElement(node *html.Node, a atom.Atom) *html.Node {
	if node.Type == html.ElementNode && node.DataAtom == a {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

// textContent 拼接节点下的全部文本。
func textContent(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return b.String()
}
