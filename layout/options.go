package layout

import "github.com/ByLCY/storeshot/locale"

// ScreenshotState 是截图区域的输入状态，由调用方根据资源与尺寸校验决定。
type ScreenshotState int

const (
	ScreenshotNone       ScreenshotState = iota // 未上传
	ScreenshotOK                                // 可直接绘制
	ScreenshotMismatch                          // 尺寸不符
	ScreenshotUnreadable                        // 无法解码
)

// BuildOptions 配置布局阶段所需的输入与依赖。
type BuildOptions struct {
	// Scale 是显示像素与原生像素之比，0 视为 1。
	Scale float64
	// Text 为已按语言解析的文案；为空时使用幻灯片原文。
	Text       *locale.Text
	Screenshot ScreenshotState
	Typesetter Typesetter
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
type Typesetter interface {
	LayoutLines(content string, width float64, font string, weight int, fontSize float64, lineHeight float64) ([]TextLine, error)
}
