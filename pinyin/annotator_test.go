package pinyin

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestAnnotateNonChineseUnchanged(t *testing.T) {
	r := newTestResolver(t)
	for _, text := range []string{"", "hello world", "abc 123!?", "English only."} {
		if got := r.Annotate(text); got != text {
			t.Errorf("Annotate(%q) = %q，无汉字文本应原样返回", text, got)
		}
	}
}

func TestAnnotateEndToEnd(t *testing.T) {
	r := newTestResolver(t)
	want := "<ruby>我<rt>wǒ</rt></ruby><ruby>长<rt>zhǎng</rt></ruby><ruby>大<rt>dà</rt></ruby><ruby>了<rt>le</rt></ruby>"
	if got := r.Annotate("我长大了"); got != want {
		t.Errorf("Annotate(我长大了) =\n%s\n期望\n%s", got, want)
	}
}

var rubyPattern = regexp.MustCompile(`<ruby>(.)<rt>[^<]*</rt></ruby>`)

func TestAnnotateCoverageAndOrder(t *testing.T) {
	r := newTestResolver(t)
	text := "你好，world！长大123了"
	got := r.Annotate(text)

	// 去掉注音标记后应还原出原文
	stripped := rubyPattern.ReplaceAllString(got, "$1")
	if stripped != text {
		t.Errorf("去除注音后 = %q，期望原文 %q", stripped, text)
	}

	// 每个汉字都应被包裹，且不残留裸汉字
	outside := rubyPattern.ReplaceAllString(got, "")
	for _, ch := range outside {
		if IsChinese(ch) {
			t.Errorf("汉字 %c 未被注音包裹", ch)
		}
	}
}

func TestProcessHTMLBasics(t *testing.T) {
	r := newTestResolver(t)
	content := `<html><head><title>第一章</title></head><body><h1>第一章</h1><p>长大</p></body></html>`
	title, body, err := r.ProcessHTML(content)
	if err != nil {
		t.Fatalf("ProcessHTML 失败: %v", err)
	}
	if title != "第一章" {
		t.Errorf("标题 = %q，期望 第一章", title)
	}
	// h1 整体跳过，不注音
	if !strings.Contains(body, "<h1>第一章</h1>") {
		t.Errorf("一级标题不应被注音，实际正文：%s", body)
	}
	if !strings.Contains(body, "<ruby>长<rt>zhǎng</rt></ruby>") {
		t.Errorf("段落应被注音，实际正文：%s", body)
	}
}

func TestProcessHTMLDefaults(t *testing.T) {
	r := newTestResolver(t)
	cases := []struct {
		name    string
		content string
	}{
		{"空文件", ""},
		{"仅 XML 声明", `<?xml version="1.0"?>`},
		{"无正文", `<html><head><title>x</title></head></html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, body, err := r.ProcessHTML(tc.content)
			if err != nil {
				t.Fatalf("ProcessHTML 失败: %v", err)
			}
			if body != "<p>No content</p>" {
				t.Errorf("无内容文档的正文 = %q，期望占位段落", body)
			}
			if tc.content == "" && title != "Untitled" {
				t.Errorf("缺失标题时应为 Untitled，实际 %q", title)
			}
		})
	}
}

func TestProcessHTMLSkipsExistingRuby(t *testing.T) {
	r := newTestResolver(t)
	content := `<html><body><p><ruby>长<rt>zhǎng</rt></ruby>大</p></body></html>`
	_, body, err := r.ProcessHTML(content)
	if err != nil {
		t.Fatalf("ProcessHTML 失败: %v", err)
	}
	if strings.Count(body, "<rt>zhǎng</rt>") != 1 {
		t.Errorf("已有注音不应被二次加注，实际正文：%s", body)
	}
	if !strings.Contains(body, "<ruby>大<rt>dà</rt></ruby>") {
		t.Errorf("注音外的汉字仍应加注，实际正文：%s", body)
	}
}

func TestBuildXHTMLShape(t *testing.T) {
	out := BuildXHTML("第一章", "<p>内容</p>")
	for _, want := range []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`DTD XHTML 1.1`,
		`xml:lang="zh-CN"`,
		`<link rel="stylesheet" type="text/css" href="styles.css"/>`,
		`<title>第一章</title>`,
		"<p>内容</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("XHTML 输出缺少 %q", want)
		}
	}
}

func TestAnnotateFileRoundTrip(t *testing.T) {
	r := newTestResolver(t)
	path := filepath.Join(t.TempDir(), "chapter.html")
	content := `<html><head><title>章节</title></head><body><p>行走</p></body></html>`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	if err := r.AnnotateFile(path); err != nil {
		t.Fatalf("AnnotateFile 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取结果失败: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "<ruby>行<rt>xíng</rt></ruby>") {
		t.Errorf("注音结果缺少 ruby 标记：%s", out)
	}
	if !strings.Contains(out, `xml:lang="zh-CN"`) {
		t.Error("写回文件应使用 XHTML 模板")
	}
}
