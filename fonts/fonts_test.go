package fonts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindHonorsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("写入测试字体失败: %v", err)
	}
	t.Setenv("PINSHU_FONT", path)

	got, err := Find()
	if err != nil {
		t.Fatalf("Find 失败: %v", err)
	}
	if got != path {
		t.Errorf("Find = %q，期望环境变量指定的 %q", got, path)
	}
	if !Available() {
		t.Error("字体可定位时 Available 应为真")
	}
}

func TestFindEnvOverrideMissingFile(t *testing.T) {
	t.Setenv("PINSHU_FONT", filepath.Join(t.TempDir(), "missing.ttf"))
	if _, err := Find(); err == nil {
		t.Error("指定字体不存在时 Find 应报错")
	}
	if Available() {
		t.Error("指定字体不存在时 Available 应为假")
	}
}

func TestLoadReadsBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, []byte("bytes"), 0o644); err != nil {
		t.Fatalf("写入测试字体失败: %v", err)
	}
	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if string(data) != "bytes" {
		t.Errorf("Load 内容 = %q", data)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.ttf")); err == nil {
		t.Error("文件缺失时 Load 应报错")
	}
}
