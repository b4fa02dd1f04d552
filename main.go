package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/pinshu/converter"
	"github.com/ByLCY/pinshu/epub"
	"github.com/ByLCY/pinshu/fonts"
	"github.com/ByLCY/pinshu/lexicon"
	"github.com/ByLCY/pinshu/pinyin"
	canvasrenderer "github.com/ByLCY/pinshu/renderer/canvas"
	"github.com/ByLCY/pinshu/segment"
)

func main() {
	output := flag.String("o", "", "输出路径（留空时在输入名后缀 _annotated/_converted）")
	format := flag.String("f", "epub", "输出格式：epub、pdf 或 both")
	noPinyin := flag.Bool("no-pinyin", false, "只转换格式，不添加拼音注音")
	debug := flag.String("debug", "", "分页调试 JSON 输出路径")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "用法: pinshu [选项] <输入 EPUB>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *output, *format, !*noPinyin, *debug); err != nil {
		log.Fatalf("处理失败: %v", err)
	}
	fmt.Println("完成！")
}

// run 串联解压、注音、打包与 PDF 排版。
func run(input, output, format string, addPinyin bool, debugPath string) error {
	switch format {
	case "epub", "pdf", "both":
	default:
		return fmt.Errorf("不支持的输出格式 %q，可选 epub、pdf、both", format)
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("输入文件 %s 不存在", input)
	}
	epubOut, pdfOut := outputPaths(input, output, addPinyin)

	extractDir, err := os.MkdirTemp("", "pinshu-*")
	if err != nil {
		return fmt.Errorf("创建临时目录失败: %w", err)
	}
	parser := epub.NewParser(extractDir)
	defer parser.Cleanup()

	fmt.Printf("解压 %s ...\n", input)
	if err := parser.Extract(input); err != nil {
		return err
	}

	files, err := parser.HTMLFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Printf("警告：EPUB 中没有 HTML 文件")
	} else if addPinyin {
		resolver, err := newResolver()
		if err != nil {
			return err
		}
		fmt.Printf("注音 %d 个 HTML 文件 ...\n", len(files))
		for _, file := range files {
			fmt.Printf("  注音 %s ...\n", filepath.Base(file))
			if err := resolver.AnnotateFile(file); err != nil {
				return fmt.Errorf("注音 %s 失败: %w", filepath.Base(file), err)
			}
		}
	}

	if format == "epub" || format == "both" {
		fmt.Printf("生成 EPUB：%s\n", epubOut)
		if err := parser.Package(epubOut); err != nil {
			return err
		}
	}

	if format == "pdf" || format == "both" {
		if !fonts.Available() {
			if format == "pdf" {
				return fmt.Errorf("PDF 输出不可用: %w", fonts.ErrNoCJKFont)
			}
			log.Printf("警告：%v，跳过 PDF 生成", fonts.ErrNoCJKFont)
			return nil
		}
		rend, err := canvasrenderer.NewRenderer()
		if err != nil {
			if format == "pdf" {
				return fmt.Errorf("PDF 输出不可用: %w", err)
			}
			log.Printf("警告：%v，跳过 PDF 生成", err)
			return nil
		}
		conv, err := converter.NewConverter(parser, rend)
		if err != nil {
			return err
		}
		conv.DebugPath = debugPath
		fmt.Printf("生成 PDF：%s\n", pdfOut)
		if err := conv.Convert(pdfOut); err != nil {
			return err
		}
	}
	return nil
}

// newResolver 装配词典、分词器与注音解析器。
func newResolver() (*pinyin.Resolver, error) {
	lex, err := lexicon.Default()
	if err != nil {
		return nil, fmt.Errorf("装载多音字词典失败: %w", err)
	}
	seg, err := segment.New()
	if err != nil {
		return nil, fmt.Errorf("初始化分词器失败: %w", err)
	}
	if err := seg.AddWords(lex.CustomWords()); err != nil {
		return nil, fmt.Errorf("注册自定义词失败: %w", err)
	}
	return pinyin.NewResolver(lex, seg), nil
}

// outputPaths 根据输入名与 -o 推导 EPUB 与 PDF 输出路径。
func outputPaths(input, output string, addPinyin bool) (epubOut, pdfOut string) {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if addPinyin {
		base += "_annotated"
	} else {
		base += "_converted"
	}
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return base + ".epub", base + ".pdf"
}
