package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// 注音 PDF 需要同时覆盖汉字与带声调拉丁字母的字体。
// 没有内置字体，从系统常见安装位置查找 CJK 字体。

// ErrNoCJKFont 表示系统中找不到可用的 CJK 字体。
var ErrNoCJKFont = errors.New("找不到可用的中文字体")

// 常见发行版/系统的候选字体路径，按优先级排列。
var searchPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/noto/NotoSerifCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/arphic/uming.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
	"/usr/share/fonts/wenquanyi/wqy-zenhei/wqy-zenhei.ttc",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
	"C:\\Windows\\Fonts\\msyh.ttc",
	"C:\\Windows\\Fonts\\simsun.ttc",
	"C:\\Windows\\Fonts\\simhei.ttf",
}

// Find 返回第一个存在的 CJK 字体路径。
// 设置环境变量 PINSHU_FONT 可以强制指定字体文件。
func Find() (string, error) {
	if p := os.Getenv("PINSHU_FONT"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("PINSHU_FONT 指定的字体 %s 不可用: %w", p, err)
		}
		return p, nil
	}
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoCJKFont
}

// Load 读取字体文件的字节数据。
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", filepath.Base(path), err)
	}
	return data, nil
}

// Available 判断系统是否有可用的 CJK 字体，PDF 输出依赖该条件。
func Available() bool {
	_, err := Find()
	return err == nil
}
