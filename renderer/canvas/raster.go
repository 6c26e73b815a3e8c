package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/storeshot/layout"
)

// 该文件包含按像素处理的合成步骤：渐变、cover 裁剪、圆角、投影。

func toColor(c layout.Color, opacity float64) color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(math.Round(clamp01(opacity) * 255))}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fillSolid(dst *image.NRGBA, c color.NRGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// paintGradient 以画布坐标计算渐变，origin 为 dst 左上角在画布中的位置。
func paintGradient(dst *image.NRGBA, g *layout.Gradient, origin layout.Point) {
	if g == nil || len(g.Stops) == 0 {
		return
	}
	dx, dy := g.End.X-g.Start.X, g.End.Y-g.Start.Y
	lenSq := dx*dx + dy*dy
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		py := origin.Y + float64(y-b.Min.Y) + 0.5
		for x := b.Min.X; x < b.Max.X; x++ {
			px := origin.X + float64(x-b.Min.X) + 0.5
			t := 0.0
			if lenSq > 0 {
				t = clamp01(((px-g.Start.X)*dx + (py-g.Start.Y)*dy) / lenSq)
			}
			dst.SetNRGBA(x, y, gradientAt(g.Stops, t))
		}
	}
}

func gradientAt(stops []layout.GradientStop, t float64) color.NRGBA {
	if t <= stops[0].Offset {
		return toColor(stops[0].Color, 1)
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			f := 0.0
			if span > 0 {
				f = (t - a.Offset) / span
			}
			return color.NRGBA{
				R: lerp8(a.Color.R, b.Color.R, f),
				G: lerp8(a.Color.G, b.Color.G, f),
				B: lerp8(a.Color.B, b.Color.B, f),
				A: 255,
			}
		}
	}
	return toColor(stops[len(stops)-1].Color, 1)
}

func lerp8(a, b int, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

// coverFit 等比缩放并居中裁剪到 w×h（object-fit: cover）。
func coverFit(src image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
}

// applyCornerTransparency 将四个圆角外的像素变为透明，边缘做 1px 抗锯齿。
func applyCornerTransparency(img *image.NRGBA, radius float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	r := math.Min(radius, math.Min(w, h)/2)
	if r <= 0 {
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cov := cornerCoverage(float64(x-b.Min.X)+0.5, float64(y-b.Min.Y)+0.5, w, h, r)
			if cov >= 1 {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i+3] = uint8(float64(img.Pix[i+3]) * cov)
		}
	}
}

// cornerCoverage 返回像素中心 (px,py) 被圆角矩形覆盖的比例。
func cornerCoverage(px, py, w, h, r float64) float64 {
	var cx, cy float64
	switch {
	case px < r && py < r:
		cx, cy = r, r
	case px > w-r && py < r:
		cx, cy = w-r, r
	case px < r && py > h-r:
		cx, cy = r, h-r
	case px > w-r && py > h-r:
		cx, cy = w-r, h-r
	default:
		return 1
	}
	d := math.Hypot(px-cx, py-cy)
	return clamp01(r - d + 0.5)
}

// castShadow 根据 src 的 alpha 生成模糊投影，返回投影图与其相对 src 左上角的偏移。
func castShadow(src *image.NRGBA, sh layout.Shadow) (*image.NRGBA, image.Point) {
	pad := int(math.Ceil(sh.Blur * 1.5))
	b := src.Bounds()
	sil := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	c := toColor(sh.Color, 1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := src.Pix[src.PixOffset(x, y)+3]
			if a == 0 {
				continue
			}
			sil.SetNRGBA(x-b.Min.X+pad, y-b.Min.Y+pad, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(a) * clamp01(sh.Opacity))})
		}
	}
	if sh.Blur > 0 {
		sil = imaging.Blur(sil, sh.Blur/2)
	}
	off := image.Pt(int(math.Round(sh.OffsetX))-pad, int(math.Round(sh.OffsetY))-pad)
	return sil, off
}

// drawOver 将 src 按 alpha 叠加到 dst 的 at 位置，超出部分被裁掉。
func drawOver(dst draw.Image, src image.Image, at image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(at)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

func round(v float64) int { return int(math.Round(v)) }
