package layout

// Measurer 负责测量一段文本按正文字体渲染时的宽度（mm）。
// 汉字与中文标点不经过测量（统一字格），只有拉丁/数字等
// 变宽内容需要真实字体度量，由渲染后端实现。
type Measurer interface {
	TextWidth(text string, fontSize float64) float64
}
