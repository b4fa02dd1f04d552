package layout

// pt 与 mm 之间的换算常量。布局内部统一使用 mm，
// 字体系统（canvas）使用 pt，在渲染边界换算。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4
)

// Pt 将 pt 转换为 mm。
func Pt(v float64) float64 { return v * PtToMm }

// In 将英寸转换为 mm。
func In(v float64) float64 { return v * InToMm }
