package canvasrenderer

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/storeshot/fonts"
	"github.com/ByLCY/storeshot/layout"
	"github.com/ByLCY/storeshot/renderer"
)

var (
	bodyColor        = layout.Color{R: 0x1c, G: 0x1c, B: 0x1e}
	noticeColor      = layout.Color{R: 0x2c, G: 0x2c, B: 0x2e}
	placeholderLabel = layout.Color{R: 0x6b, G: 0x72, B: 0x80}
	noticeLabel      = layout.Color{R: 0xf5, G: 0xf5, B: 0xf7}
)

// drawDevice 合成设备组（截图 + 外框），按相机角度变形后连同投影叠加到 dst。
func (r *Renderer) drawDevice(dst *image.NRGBA, d layout.DeviceBox, images renderer.ImageSet) error {
	group, err := r.composeDevice(d, images)
	if err != nil || group == nil {
		return err
	}

	gw, gh := group.Bounds().Dx(), group.Bounds().Dy()
	ww := max(round(float64(gw)*math.Cos(d.Angle.RotateY*math.Pi/180)), 1)
	wh := max(round(float64(gh)*math.Cos(d.Angle.RotateX*math.Pi/180)), 1)
	if ww != gw || wh != gh {
		group = imaging.Resize(group, ww, wh, imaging.Lanczos)
	}
	at := image.Pt(round(d.X+(d.Width-float64(ww))/2), round(d.Y+(d.Height-float64(wh))/2))

	shadow, off := castShadow(group, d.Angle.Shadow)
	drawOver(dst, shadow, at.Add(off))
	drawOver(dst, group, at)
	return nil
}

// composeDevice 生成未变形的设备组图层，大小为外框的显示尺寸。
func (r *Renderer) composeDevice(d layout.DeviceBox, images renderer.ImageSet) (*image.NRGBA, error) {
	gw, gh := round(d.Width), round(d.Height)
	if gw <= 0 || gh <= 0 {
		return nil, nil
	}
	frame, err := r.frameImage(d.FrameSrc)
	if err != nil {
		return nil, err
	}

	group := image.NewNRGBA(image.Rect(0, 0, gw, gh))
	if frame == nil {
		fillSolid(group, toColor(bodyColor, 1))
	}

	screen, err := r.composeScreen(d.Screen, images)
	if err != nil {
		return nil, err
	}
	if screen != nil {
		drawOver(group, screen, image.Pt(round(d.Screen.X-d.X), round(d.Screen.Y-d.Y)))
	}
	if frame != nil {
		drawOver(group, imaging.Resize(frame, gw, gh, imaging.Lanczos), image.Point{})
	}
	applyCornerTransparency(group, d.BodyRadius)
	return group, nil
}

func (r *Renderer) composeScreen(s layout.ScreenBox, images renderer.ImageSet) (*image.NRGBA, error) {
	sw, sh := round(s.Width), round(s.Height)
	if sw <= 0 || sh <= 0 {
		return nil, nil
	}
	var img *image.NRGBA
	switch s.Content {
	case layout.ScreenImage:
		data, ok := images[s.Ref]
		if !ok {
			return nil, fmt.Errorf("缺少截图 %s", s.Ref)
		}
		src, err := decodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("截图 %s: %w", s.Ref, err)
		}
		img = coverFit(src, sw, sh)
	case layout.ScreenPlaceholder:
		img = image.NewNRGBA(image.Rect(0, 0, sw, sh))
		paintGradient(img, s.Fill, layout.Point{X: s.X, Y: s.Y})
		if err := r.drawLabel(img, s.Label, placeholderLabel); err != nil {
			return nil, err
		}
	default:
		img = image.NewNRGBA(image.Rect(0, 0, sw, sh))
		fillSolid(img, toColor(noticeColor, 1))
		if err := r.drawLabel(img, s.Label, noticeLabel); err != nil {
			return nil, err
		}
	}
	applyCornerTransparency(img, s.Radius)
	return img, nil
}

// drawLabel 在图层中央绘制一行提示文字，字号随截图宽度变化。
func (r *Renderer) drawLabel(img *image.NRGBA, label string, col layout.Color) error {
	if label == "" {
		return nil
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	size := math.Max(float64(w)*0.05, 8)
	face, err := r.fontFace("inter", fonts.WeightMedium, size, col, 1)
	if err != nil {
		return err
	}
	c := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	m := face.Metrics()
	baseline := float64(h)/2 + (m.Ascent-math.Abs(m.Descent))/2
	ctx.DrawText(float64(w)/2, baseline, canvas.NewTextLine(face, label, canvas.Center))
	drawOver(img, rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace), image.Point{})
	return nil
}
