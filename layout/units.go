package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 该文件提供百分比、钳制、单位与颜色换算。

// tdewolff/canvas 以毫米为长度单位，字号以 pt 为单位；
// 渲染时 1 个画布单位对应 1 像素，因此像素字号需按 mm→pt 换算。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// PxToPt 将像素字号换算为画布字号。
func PxToPt(px float64) float64 { return px * MmToPt }

// Clamp 将 v 限制在 [lo, hi]；NaN 返回 lo。
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Percent 返回 extent 的 p%。
func Percent(p, extent float64) float64 { return p / 100 * extent }

// AlignOffset 返回宽度为 width 的内容在 container 中按 align 对齐时的左偏移。
func AlignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch strings.ToLower(align) {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end":
		return container - width
	default:
		return 0
	}
}

// ParseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA（忽略透明度）。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6, 8:
		v = v[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// colorOr 解析颜色，失败时返回 fallback。
func colorOr(value string, fallback Color) Color {
	if c, err := ParseColor(value); err == nil {
		return c
	}
	return fallback
}
