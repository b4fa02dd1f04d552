package lexicon

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dictLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Keyword", Pattern: `char|reading`},
		{Name: "Han", Pattern: `[\p{Han}]`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dictLexer),
		participle.Elide("Whitespace", "LineComment"),
	)
)

// File 是词库文件的根 AST 节点。
type File struct {
	Pos     lexer.Position `parser:""`
	Entries []*EntryNode   `parser:"@@*"`
}

// EntryNode 描述一个多音字条目：char <汉字> { reading ... }。
type EntryNode struct {
	Pos      lexer.Position `parser:""`
	Char     string         `parser:"'char' @Han"`
	Readings []*ReadingNode `parser:"'{' @@* '}'"`
}

// ReadingNode 描述一个读音及其示例词组集合，词组顺序即声明顺序。
type ReadingNode struct {
	Pinyin  StringLiteral   `parser:"'reading' @String"`
	Phrases []StringLiteral `parser:"'{' @String* '}'"`
}

// StringLiteral 在捕获时去除 Go 风格引号。
type StringLiteral string

// Capture 实现 participle.Capture。
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串捕获缺少内容")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 从 io.Reader 解析词库内容。
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString 从字符串解析词库内容。
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}
