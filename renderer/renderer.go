package renderer

import (
	"context"

	"github.com/ByLCY/storeshot/layout"
)

// ImageSet 按引用保存布局中用到的图片字节（截图、背景图）。
type ImageSet map[string][]byte

// Renderer 将布局结果合成为位图，返回编码后的 PNG 字节。
// 输出像素尺寸等于 result.Canvas 的宽高（四舍五入）。
type Renderer interface {
	Render(ctx context.Context, result *layout.Result, images ImageSet) ([]byte, error)
}
