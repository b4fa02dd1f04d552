package lexicon

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed polyphonic.dict
var embeddedDict string

// Reading 表示一个读音以及该读音下的已知词组。
// Phrases 保持词库中的声明顺序，消歧时按序匹配。
type Reading struct {
	Pinyin  string
	Phrases []string

	phraseSet map[string]struct{}
}

// HasPhrase 判断词组是否属于该读音的已知词组集合。
func (r *Reading) HasPhrase(word string) bool {
	_, ok := r.phraseSet[word]
	return ok
}

// Entry 表示一个多音字条目，Readings 保持词库声明顺序。
type Entry struct {
	Char     rune
	Readings []*Reading
}

// Lexicon 是多音字词库，构建后只读，可在多次解析调用间共享。
type Lexicon struct {
	entries map[rune]*Entry
	order   []rune
}

// Build 将解析出的 AST 转换为只读词库。
func Build(file *File) (*Lexicon, error) {
	if file == nil {
		return nil, fmt.Errorf("词库内容为空")
	}
	lex := &Lexicon{entries: map[rune]*Entry{}}
	for _, node := range file.Entries {
		runes := []rune(node.Char)
		if len(runes) != 1 {
			return nil, fmt.Errorf("词库条目 %q 必须是单个汉字", node.Char)
		}
		ch := runes[0]
		if _, dup := lex.entries[ch]; dup {
			return nil, fmt.Errorf("词库条目 %q 重复定义", node.Char)
		}
		entry := &Entry{Char: ch}
		for _, rd := range node.Readings {
			reading := &Reading{
				Pinyin:    string(rd.Pinyin),
				phraseSet: make(map[string]struct{}, len(rd.Phrases)),
			}
			for _, p := range rd.Phrases {
				phrase := string(p)
				reading.Phrases = append(reading.Phrases, phrase)
				reading.phraseSet[phrase] = struct{}{}
			}
			entry.Readings = append(entry.Readings, reading)
		}
		if len(entry.Readings) < 2 {
			return nil, fmt.Errorf("多音字 %q 至少需要两个读音", node.Char)
		}
		lex.entries[ch] = entry
		lex.order = append(lex.order, ch)
	}
	return lex, nil
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
	defaultErr  error
)

// Default 返回内置词库，进程内仅解析一次。
func Default() (*Lexicon, error) {
	defaultOnce.Do(func() {
		file, err := ParseString(embeddedDict)
		if err != nil {
			defaultErr = fmt.Errorf("解析内置词库失败: %w", err)
			return
		}
		defaultLex, defaultErr = Build(file)
	})
	return defaultLex, defaultErr
}

// Entry 查询某个汉字的多音字条目。
func (l *Lexicon) Entry(ch rune) (*Entry, bool) {
	e, ok := l.entries[ch]
	return e, ok
}

// Len 返回词库条目数。
func (l *Lexicon) Len() int { return len(l.entries) }

// CustomWords 返回所有读音的示例词组（按词库声明顺序去重），
// 供分词器注册自定义词，提高多字词的切分质量。
func (l *Lexicon) CustomWords() []string {
	seen := map[string]struct{}{}
	var words []string
	for _, ch := range l.order {
		for _, rd := range l.entries[ch].Readings {
			for _, phrase := range rd.Phrases {
				if _, dup := seen[phrase]; dup {
					continue
				}
				seen[phrase] = struct{}{}
				words = append(words, phrase)
			}
		}
	}
	return words
}
