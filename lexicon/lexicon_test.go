package lexicon

import (
	"strings"
	"testing"
)

const sampleDict = `
// 测试词库
char 长 {
  reading "zhǎng" { "长大" "成长" }
  reading "cháng" { "长度" "长江" }
}

char 行 {
  reading "háng" { "银行" }
  reading "xíng" { "行走" "步行" }
}
`

func buildSample(t *testing.T) *Lexicon {
	t.Helper()
	file, err := ParseString(sampleDict)
	if err != nil {
		t.Fatalf("解析词库失败: %v", err)
	}
	lex, err := Build(file)
	if err != nil {
		t.Fatalf("构建词库失败: %v", err)
	}
	return lex
}

func TestParseEntryStructure(t *testing.T) {
	file, err := ParseString(sampleDict)
	if err != nil {
		t.Fatalf("解析词库失败: %v", err)
	}
	if len(file.Entries) != 2 {
		t.Fatalf("条目数 = %d，期望 2", len(file.Entries))
	}
	entry := file.Entries[0]
	if entry.Char != "长" {
		t.Errorf("首条目字符 = %q，期望 长", entry.Char)
	}
	if len(entry.Readings) != 2 {
		t.Fatalf("长 的读音数 = %d，期望 2", len(entry.Readings))
	}
	if string(entry.Readings[0].Pinyin) != "zhǎng" {
		t.Errorf("首个读音 = %q，期望 zhǎng（声明顺序必须保持）", entry.Readings[0].Pinyin)
	}
	if got := string(entry.Readings[1].Phrases[0]); got != "长度" {
		t.Errorf("cháng 的首个词组 = %q，期望 长度", got)
	}
}

func TestBuildReadingLookup(t *testing.T) {
	lex := buildSample(t)
	entry, ok := lex.Entry('长')
	if !ok {
		t.Fatal("词库中找不到 长")
	}
	if !entry.Readings[0].HasPhrase("长大") {
		t.Error("zhǎng 应包含词组 长大")
	}
	if entry.Readings[0].HasPhrase("长度") {
		t.Error("zhǎng 不应包含词组 长度")
	}
	if _, ok := lex.Entry('好'); ok {
		t.Error("未声明的字符不应出现在词库中")
	}
}

func TestBuildRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"重复条目", `char 长 { reading "a" {} reading "b" {} } char 长 { reading "a" {} reading "b" {} }`},
		{"单一读音", `char 行 { reading "xíng" { "行走" } }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			file, err := ParseString(tc.src)
			if err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if _, err := Build(file); err == nil {
				t.Fatalf("%s 应当构建失败", tc.name)
			}
		})
	}
}

func TestParseReader(t *testing.T) {
	file, err := Parse(strings.NewReader(sampleDict))
	if err != nil {
		t.Fatalf("从 Reader 解析失败: %v", err)
	}
	if len(file.Entries) != 2 {
		t.Fatalf("条目数 = %d，期望 2", len(file.Entries))
	}
}

func TestDefaultLexicon(t *testing.T) {
	lex, err := Default()
	if err != nil {
		t.Fatalf("装载内置词库失败: %v", err)
	}
	if lex.Len() < 20 {
		t.Errorf("内置词库条目数 = %d，期望至少 20", lex.Len())
	}
	for _, ch := range []rune{'长', '行', '了', '还'} {
		entry, ok := lex.Entry(ch)
		if !ok {
			t.Errorf("内置词库缺少 %c", ch)
			continue
		}
		if len(entry.Readings) < 2 {
			t.Errorf("%c 的读音数 = %d，期望至少 2", ch, len(entry.Readings))
		}
	}

	again, err := Default()
	if err != nil || again != lex {
		t.Error("Default 应返回同一词库实例")
	}
}

func TestCustomWordsOrderedAndUnique(t *testing.T) {
	lex := buildSample(t)
	words := lex.CustomWords()
	if len(words) == 0 {
		t.Fatal("自定义词列表为空")
	}
	if words[0] != "长大" {
		t.Errorf("首个自定义词 = %q，期望 长大（按声明顺序）", words[0])
	}
	seen := map[string]bool{}
	for _, w := range words {
		if seen[w] {
			t.Errorf("自定义词 %q 重复", w)
		}
		seen[w] = true
	}
}
