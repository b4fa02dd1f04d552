// Package pinyin 实现多音字注音解析与 HTML 文本的 ruby 注音改写。
package pinyin

import (
	"strings"
	"unicode/utf8"

	gopinyin "github.com/mozillazg/go-pinyin"

	"github.com/ByLCY/pinshu/lexicon"
)

// IsChinese 判断字符是否落在 CJK 统一表意文字区（U+4E00–U+9FFF）。
func IsChinese(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

// Segmenter 是解析器消费的分词能力：对一段文本返回按原文顺序的词串。
type Segmenter interface {
	Cut(text string) []string
}

// Resolver 负责为文本中某个位置的汉字解析唯一读音。
// 词库与分词器在构造后均视为只读，可跨多次调用共享。
type Resolver struct {
	lex *lexicon.Lexicon
	seg Segmenter

	tone      gopinyin.Args
	heteronym gopinyin.Args
}

// NewResolver 组装解析器。seg 为空时跳过分词匹配，直接走词组子串与默认读音回退。
func NewResolver(lex *lexicon.Lexicon, seg Segmenter) *Resolver {
	tone := gopinyin.NewArgs()
	tone.Style = gopinyin.Tone

	het := gopinyin.NewArgs()
	het.Style = gopinyin.Tone
	het.Heteronym = true

	return &Resolver{lex: lex, seg: seg, tone: tone, heteronym: het}
}

// Resolve 返回 text 中第 index 个字符（按字符计）的读音。
// 非汉字原样返回；多音字按上下文消歧；任何情况下都不报错，
// 最坏情形退化为返回字符本身。
func (r *Resolver) Resolve(text string, index int) string {
	return r.resolve([]rune(text), index)
}

func (r *Resolver) resolve(runes []rune, index int) string {
	if index < 0 || index >= len(runes) {
		return ""
	}
	ch := runes[index]
	if !IsChinese(ch) {
		return string(ch)
	}
	entry, ok := r.lex.Entry(ch)
	if !ok {
		return r.plainPinyin(ch)
	}
	return r.disambiguate(runes, index, ch, entry)
}

// plainPinyin 返回单音字的读音（带声调）。
func (r *Resolver) plainPinyin(ch rune) string {
	out := gopinyin.Pinyin(string(ch), r.tone)
	if len(out) > 0 && len(out[0]) > 0 {
		return out[0][0]
	}
	return string(ch)
}

// disambiguate 对多音字做三级消歧：
//  1. ±10 字符窗口分词，命中某读音的已知词组即返回；
//  2. ±20 字符窗口内按词库顺序查找词组子串，并校验目标字符的位置对齐；
//  3. 回退到字典的最常用读音，再退化为字符本身。
func (r *Resolver) disambiguate(runes []rune, index int, ch rune, entry *lexicon.Entry) string {
	start := index - 10
	if start < 0 {
		start = 0
	}
	end := index + 10
	if end > len(runes) {
		end = len(runes)
	}
	if r.seg != nil {
		for _, word := range r.seg.Cut(string(runes[start:end])) {
			if !strings.ContainsRune(word, ch) {
				continue
			}
			for _, reading := range entry.Readings {
				if reading.HasPhrase(word) {
					return reading.Pinyin
				}
			}
		}
	}

	wideStart := index - 20
	if wideStart < 0 {
		wideStart = 0
	}
	wideEnd := index + 20
	if wideEnd > len(runes) {
		wideEnd = len(runes)
	}
	wide := string(runes[wideStart:wideEnd])
	for _, reading := range entry.Readings {
		for _, phrase := range reading.Phrases {
			byteIdx := strings.Index(wide, phrase)
			if byteIdx < 0 {
				continue
			}
			phrasePos := utf8.RuneCountInString(wide[:byteIdx])
			charInPhrase := runeIndex(phrase, ch)
			if charInPhrase < 0 {
				continue
			}
			// 相对位置按窗口左端 index-20 计算；文首截断时不做修正，
			// 沿用既有行为：位置不对齐的巧合子串命中会被拒绝。
			if phrasePos+charInPhrase == index-(index-20) {
				return reading.Pinyin
			}
		}
	}

	het := gopinyin.Pinyin(string(ch), r.heteronym)
	if len(het) > 0 && len(het[0]) > 0 {
		return het[0][0]
	}
	return string(ch)
}

// runeIndex 返回 ch 在 s 中首次出现的字符偏移，未出现时返回 -1。
func runeIndex(s string, ch rune) int {
	for i, r := range []rune(s) {
		if r == ch {
			return i
		}
	}
	return -1
}
