package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidEPUB 表示压缩包里找不到 content.opf，不是有效的 EPUB。
var ErrInvalidEPUB = errors.New("EPUB 中找不到 content.opf，结构无效")

// ErrNotParsed 表示尚未调用 Extract 解析 EPUB 结构。
var ErrNotParsed = errors.New("EPUB 结构尚未解析，请先调用 Extract")

// MediaType 是 OPF 清单项的媒体类型。
type MediaType string

const (
	MediaXHTML   MediaType = "application/xhtml+xml"
	MediaCSS     MediaType = "text/css"
	MediaNCX     MediaType = "application/x-dtbncx+xml"
	MediaJPEG    MediaType = "image/jpeg"
	MediaPNG     MediaType = "image/png"
	MediaGIF     MediaType = "image/gif"
	MediaSVG     MediaType = "image/svg+xml"
	MediaUnknown MediaType = "unknown"
)

// mediaTypeFrom 将清单里的字符串归类为已知媒体类型。
func mediaTypeFrom(s string) MediaType {
	switch MediaType(s) {
	case MediaXHTML, MediaCSS, MediaNCX, MediaJPEG, MediaPNG, MediaGIF, MediaSVG:
		return MediaType(s)
	}
	return MediaUnknown
}

// ManifestItem 是 OPF 清单中的一项。AbsPath 指向解压目录内的实际文件。
type ManifestItem struct {
	ID        string
	Href      string
	MediaType MediaType
	AbsPath   string
}

// Metadata 保存 OPF 的 dc 元数据，缺失项填默认值。
type Metadata struct {
	Title      string
	Language   string
	Creator    string
	Publisher  string
	Identifier string
}

// Structure 是解析后的 EPUB 结构。
type Structure struct {
	Metadata Metadata
	Manifest map[string]ManifestItem
	Spine    []string // 按阅读顺序排列的清单项 ID
	HTML     []ManifestItem
	CSS      []ManifestItem
	NCX      *ManifestItem
}

// Parser 负责 EPUB 的解压、结构解析与重新打包。
// 一次处理一个 EPUB，解压目录由调用方指定并通过 Cleanup 回收。
type Parser struct {
	extractDir string
	structure  *Structure
}

// NewParser 以解压目录构造 Parser。
func NewParser(extractDir string) *Parser {
	abs, err := filepath.Abs(extractDir)
	if err != nil {
		abs = extractDir
	}
	return &Parser{extractDir: abs}
}

// Extract 解压 EPUB 并解析其结构。找不到 content.opf 时返回 ErrInvalidEPUB。
func (p *Parser) Extract(epubPath string) error {
	if err := p.unzip(epubPath); err != nil {
		return err
	}
	opfPath, err := p.findContentOPF()
	if err != nil {
		return err
	}
	structure, err := parseOPF(opfPath)
	if err != nil {
		return err
	}
	p.structure = structure
	return nil
}

// Structure 返回解析结果，未解析时为 nil。
func (p *Parser) Structure() *Structure { return p.structure }

// HTMLFiles 返回按 spine 顺序排列的 XHTML 文件绝对路径。
func (p *Parser) HTMLFiles() ([]string, error) {
	if p.structure == nil {
		return nil, ErrNotParsed
	}
	var files []string
	for _, id := range p.structure.Spine {
		item, ok := p.structure.Manifest[id]
		if !ok {
			continue
		}
		if item.MediaType == MediaXHTML {
			files = append(files, item.AbsPath)
		}
	}
	return files, nil
}

// CSSFiles 返回全部 CSS 文件绝对路径。
func (p *Parser) CSSFiles() ([]string, error) {
	if p.structure == nil {
		return nil, ErrNotParsed
	}
	var files []string
	for _, item := range p.structure.CSS {
		files = append(files, item.AbsPath)
	}
	return files, nil
}

// NCXFile 返回目录 NCX 文件路径，不存在时返回空串。
func (p *Parser) NCXFile() string {
	if p.structure == nil || p.structure.NCX == nil {
		return ""
	}
	return p.structure.NCX.AbsPath
}

// Package 将解压目录重新打包为 EPUB：
// mimetype 条目必须是压缩包第一项且不压缩，缺失时补写标准值。
func (p *Parser) Package(outputPath string) error {
	if err := os.RemoveAll(outputPath); err != nil {
		return fmt.Errorf("清理旧输出 %s 失败: %w", outputPath, err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建输出文件 %s 失败: %w", outputPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	mimeWriter, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	mime := []byte("application/epub+zip")
	if data, err := os.ReadFile(filepath.Join(p.extractDir, "mimetype")); err == nil {
		mime = data
	}
	if _, err := mimeWriter.Write(mime); err != nil {
		return err
	}

	err = filepath.WalkDir(p.extractDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.extractDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if name == "mimetype" {
			return nil
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})
	if err != nil {
		return fmt.Errorf("打包 EPUB 失败: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("写入 EPUB %s 失败: %w", outputPath, err)
	}
	return nil
}

// Cleanup 删除临时解压目录，所有退出路径都应调用。
func (p *Parser) Cleanup() error {
	return os.RemoveAll(p.extractDir)
}

// unzip 将 EPUB 解压到解压目录，拒绝越界路径。
func (p *Parser) unzip(epubPath string) error {
	r, err := zip.OpenReader(epubPath)
	if err != nil {
		return fmt.Errorf("打开 EPUB %s 失败: %w", epubPath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(p.extractDir, 0o755); err != nil {
		return err
	}
	for _, f := range r.File {
		dest := filepath.Join(p.extractDir, f.Name)
		if !strings.HasPrefix(dest, p.extractDir+string(os.PathSeparator)) {
			return fmt.Errorf("EPUB 条目 %s 路径越界", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		w, err := os.Create(dest)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(w, src)
		src.Close()
		w.Close()
		if err != nil {
			return fmt.Errorf("解压 %s 失败: %w", f.Name, err)
		}
	}
	return nil
}

// containerXML 对应 META-INF/container.xml。
type containerXML struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// findContentOPF 先查 container.xml 的 rootfile，失败时回退为目录遍历。
func (p *Parser) findContentOPF() (string, error) {
	containerPath := filepath.Join(p.extractDir, "META-INF", "container.xml")
	if data, err := os.ReadFile(containerPath); err == nil {
		var c containerXML
		if err := xml.Unmarshal(data, &c); err == nil {
			for _, rf := range c.Rootfiles {
				if rf.FullPath == "" {
					continue
				}
				opfPath := filepath.Join(p.extractDir, filepath.FromSlash(rf.FullPath))
				if _, err := os.Stat(opfPath); err == nil {
					return opfPath, nil
				}
			}
		}
	}

	var found string
	filepath.WalkDir(p.extractDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if found == "" && !d.IsDir() && d.Name() == "content.opf" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found == "" {
		return "", ErrInvalidEPUB
	}
	return found, nil
}

// opfPackage 对应 content.opf 的 package 元素，dc 元数据按命名空间匹配。
type opfPackage struct {
	Metadata struct {
		Title      string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Language   string `xml:"http://purl.org/dc/elements/1.1/ language"`
		Creator    string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Publisher  string `xml:"http://purl.org/dc/elements/1.1/ publisher"`
		Identifier string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Itemrefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// parseOPF 解析 content.opf，产出完整的结构描述。
func parseOPF(opfPath string) (*Structure, error) {
	data, err := os.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", opfPath, err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", opfPath, err)
	}

	opfDir := filepath.Dir(opfPath)
	s := &Structure{
		Metadata: Metadata{
			Title:      defaultIfEmpty(strings.TrimSpace(pkg.Metadata.Title), "Unknown Title"),
			Language:   defaultIfEmpty(strings.TrimSpace(pkg.Metadata.Language), "en"),
			Creator:    defaultIfEmpty(strings.TrimSpace(pkg.Metadata.Creator), "Unknown Author"),
			Publisher:  defaultIfEmpty(strings.TrimSpace(pkg.Metadata.Publisher), "Unknown Publisher"),
			Identifier: defaultIfEmpty(strings.TrimSpace(pkg.Metadata.Identifier), "Unknown ID"),
		},
		Manifest: map[string]ManifestItem{},
	}
	for _, it := range pkg.Manifest.Items {
		item := ManifestItem{
			ID:        it.ID,
			Href:      it.Href,
			MediaType: mediaTypeFrom(it.MediaType),
			AbsPath:   filepath.Join(opfDir, filepath.FromSlash(it.Href)),
		}
		s.Manifest[it.ID] = item
		switch item.MediaType {
		case MediaXHTML:
			s.HTML = append(s.HTML, item)
		case MediaCSS:
			s.CSS = append(s.CSS, item)
		case MediaNCX:
			ncx := item
			s.NCX = &ncx
		}
	}
	for _, ref := range pkg.Spine.Itemrefs {
		s.Spine = append(s.Spine, ref.IDRef)
	}
	return s, nil
}

func defaultIfEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
