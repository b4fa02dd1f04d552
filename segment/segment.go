// Package segment 基于 go-ego/gse 提供中文分词能力。
// 分词器在进程启动时初始化一次，之后只读使用。
package segment

import (
	"fmt"

	"github.com/go-ego/gse"
)

// Segmenter 封装 gse 分词器，对外只暴露切词与注册自定义词两个操作。
type Segmenter struct {
	seg gse.Segmenter
}

// New 加载内置中文词典并返回分词器。
func New() (*Segmenter, error) {
	s := &Segmenter{}
	if err := s.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("加载分词词典失败: %w", err)
	}
	return s, nil
}

// Cut 对文本做分词，返回按原文顺序排列的词串。
func (s *Segmenter) Cut(text string) []string {
	return s.seg.Cut(text, true)
}

// AddWords 注册自定义词，提升领域词汇的切分质量。
// 仅应在初始化阶段调用一次，之后分词器视为不可变。
func (s *Segmenter) AddWords(words []string) error {
	for _, w := range words {
		if err := s.seg.AddToken(w, 100); err != nil {
			return fmt.Errorf("注册自定义词 %q 失败: %w", w, err)
		}
	}
	return nil
}
