package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/storeshot/locale"
	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
)

// 原生像素下的排版常量。
const (
	textPadding          = 65.0
	headlineLineHeight   = 1.2
	subCaptionLineHeight = 1.3
	headlineWeight       = 700
	subCaptionWeight     = 500
	subCaptionOpacity    = 0.9
)

// 截图区域的占位文案。
const (
	LabelDropScreenshot  = "Drop screenshot"
	LabelWrongSize       = "Wrong screenshot size"
	LabelUnreadableImage = "Unreadable screenshot"
)

var (
	colorBlack = Color{0, 0, 0}
	colorWhite = Color{255, 255, 255}
)

// Build 根据幻灯片配置生成各图层的像素几何。纯函数，不修改输入。
// slide 必须已经过 model.NormalizeSlide。
func Build(slide model.Slide, target registry.TargetSpec, device registry.DeviceSpec, opts BuildOptions) (*Result, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("layout: renderScale 非法: %g", opts.Scale)
	}
	if target.DefaultSize.Width <= 0 || target.DefaultSize.Height <= 0 {
		return nil, fmt.Errorf("layout: target %s 默认尺寸非法", target.ID)
	}
	if device.FrameWidth <= 0 || device.FrameHeight <= 0 {
		return nil, fmt.Errorf("layout: 外框 %s 尺寸非法", device.Model)
	}

	canvas := Canvas{
		Width:        float64(target.DefaultSize.Width) * scale,
		Height:       float64(target.DefaultSize.Height) * scale,
		Scale:        scale,
		NativeWidth:  target.DefaultSize.Width,
		NativeHeight: target.DefaultSize.Height,
	}

	text := locale.Text{Content: slide.Text.Content, SubCaption: slide.Text.SubCaption}
	if opts.Text != nil {
		text = *opts.Text
	}
	texts, err := buildTexts(slide, text, canvas, opts.Typesetter)
	if err != nil {
		return nil, err
	}

	return &Result{
		Canvas:     canvas,
		Background: buildBackground(slide.Background, canvas),
		Texts:      texts,
		Device:     buildDevice(slide, device, canvas, opts.Screenshot),
		Meta: Meta{
			SlideID: slide.ID,
			Target:  string(target.ID),
			Device:  string(device.Model),
		},
	}, nil
}

func buildBackground(bg model.Background, c Canvas) Background {
	switch b := bg.(type) {
	case model.SolidBackground:
		return Background{Kind: BackgroundSolid, Color: colorOr(b.Color, colorWhite)}
	case model.GradientBackground:
		from := colorOr(b.Colors[0], colorWhite)
		to := colorOr(b.Colors[1], colorWhite)
		g := linearGradient(b.Direction, 0, 0, c.Width, c.Height, []GradientStop{{0, from}, {1, to}})
		return Background{Kind: BackgroundGradient, Color: from, Gradient: &g}
	case model.ImageBackground:
		out := Background{Kind: BackgroundImage, Color: colorWhite}
		if b.Ref != "" {
			out.Image = &ImageFill{Ref: b.Ref, Blur: math.Max(b.Blur, 0) * c.Scale}
		}
		return out
	default:
		return Background{Kind: BackgroundSolid, Color: colorWhite}
	}
}

// linearGradient 按 CSS linear-gradient(<deg>) 计算渐变线：
// 0° 指向上方，90° 指向右方，长度为 |w·sin a| + |h·cos a|，过矩形中心。
func linearGradient(deg, x, y, w, h float64, stops []GradientStop) Gradient {
	a := deg * math.Pi / 180
	dx, dy := math.Sin(a), -math.Cos(a)
	half := (math.Abs(w*math.Sin(a)) + math.Abs(h*math.Cos(a))) / 2
	cx, cy := x+w/2, y+h/2
	return Gradient{
		Angle: deg,
		Start: Point{cx - dx*half, cy - dy*half},
		End:   Point{cx + dx*half, cy + dy*half},
		Stops: stops,
	}
}

func buildTexts(slide model.Slide, text locale.Text, c Canvas, ts Typesetter) ([]TextBox, error) {
	cfg := slide.Text
	s := c.Scale
	pad := textPadding * s
	width := math.Max(c.Width-2*pad, 0)

	shift := 0.0
	if slide.Device.AllowOffCanvasPosition {
		shift = Percent(Clamp(cfg.HorizontalOffset, -30, 30), c.Width)
	}
	x := pad + shift

	color := colorBlack
	var shadow *Shadow
	if cfg.Color == model.TextLight {
		color = colorWhite
		shadow = &Shadow{OffsetY: 11 * s, Blur: 22 * s, Color: colorBlack, Opacity: 0.4}
	}

	// 空标题（包括语言覆盖为空）显示占位文案，与编辑器预览一致。
	content := text.Content
	if content == "" {
		content = model.DefaultHeadline
	}
	fontSize := cfg.Size * s
	headline, err := composeTextBox(RoleHeadline, content, string(cfg.Font), headlineWeight,
		fontSize, fontSize*headlineLineHeight, x, width, ts)
	if err != nil {
		return nil, err
	}
	headline.Color, headline.Opacity, headline.Shadow = color, 1, shadow
	headline.Align = string(cfg.Align)

	boxes := []TextBox{headline}
	blockHeight := headline.Height
	margin := 0.0
	if cfg.ShowSubCaption && strings.TrimSpace(text.SubCaption) != "" {
		ratio := Clamp(cfg.SubCaptionSize, 25, 65)
		spacing := Clamp(cfg.SubCaptionSpacing, 6, 24)
		subSize := Clamp(cfg.Size*ratio/100, 24, 72) * s
		margin = Clamp(cfg.Size*spacing/100, 8, 36) * s

		sub, err := composeTextBox(RoleSubCaption, text.SubCaption, string(cfg.SubCaptionFont), subCaptionWeight,
			subSize, subSize*subCaptionLineHeight, x, width, ts)
		if err != nil {
			return nil, err
		}
		sub.Color, sub.Opacity, sub.Shadow = color, subCaptionOpacity, shadow
		sub.Align = string(cfg.Align)
		boxes = append(boxes, sub)
		blockHeight += margin + sub.Height
	}

	// 标题块整体以 verticalPosition 为垂直中心。
	top := Percent(Clamp(cfg.VerticalPosition, 5, 90), c.Height) - blockHeight/2
	boxes[0].Y = top
	if len(boxes) > 1 {
		boxes[1].Y = top + boxes[0].Height + margin
	}
	return boxes, nil
}

func composeTextBox(role TextRole, content, font string, weight int, fontSize, lineHeight, x, width float64, ts Typesetter) (TextBox, error) {
	lines, err := layoutLines(content, width, font, weight, fontSize, lineHeight, ts)
	if err != nil {
		return TextBox{}, fmt.Errorf("排版 %s 失败: %w", role, err)
	}
	total := 0.0
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = lineHeight
		}
		if i == 0 {
			lines[i].GapBefore = 0
		}
		total += lines[i].GapBefore + lines[i].Height
	}
	return TextBox{
		Role:       role,
		Content:    content,
		X:          x,
		Width:      width,
		LineHeight: lineHeight,
		Font:       font,
		Weight:     weight,
		FontSize:   fontSize,
		Lines:      lines,
		Height:     total,
	}, nil
}

func layoutLines(content string, width float64, font string, weight int, fontSize, lineHeight float64, ts Typesetter) ([]TextLine, error) {
	if ts == nil {
		parts := strings.Split(content, "\n")
		out := make([]TextLine, 0, len(parts))
		for _, l := range parts {
			out = append(out, TextLine{Content: l, Width: width, Height: lineHeight})
		}
		return out, nil
	}
	lines, err := ts.LayoutLines(content, width, font, weight, fontSize, lineHeight)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: lineHeight}}
	}
	return lines, nil
}

func buildDevice(slide model.Slide, spec registry.DeviceSpec, c Canvas, state ScreenshotState) DeviceBox {
	cfg := slide.Device

	frameW := Percent(Clamp(cfg.FrameScale, 40, 80), c.Width)
	frameH := frameW * spec.AspectRatio()

	centerPct := 50.0
	topPct := Clamp(cfg.VerticalPosition, 0, 80)
	if cfg.AllowOffCanvasPosition {
		centerPct = Clamp(cfg.HorizontalPosition, -30, 130)
		topPct = Clamp(cfg.VerticalPosition, -30, 120)
	}
	left := Percent(centerPct, c.Width) - frameW/2
	top := Percent(topPct, c.Height)

	k := frameW / float64(spec.FrameWidth)
	screen := ScreenBox{
		X:      left + float64(spec.Screen.X)*k,
		Y:      top + float64(spec.Screen.Y)*k,
		Width:  float64(spec.Screen.Width) * k,
		Height: float64(spec.Screen.Height) * k,
	}
	screen.Radius = screen.Width * spec.ScreenCornerRadiusRatio
	fillScreen(&screen, slide, state)

	return DeviceBox{
		Model:      string(spec.Model),
		FrameSrc:   spec.FrameSrc,
		X:          left,
		Y:          top,
		Width:      frameW,
		Height:     frameH,
		BodyRadius: frameW * spec.BodyRadiusRatio,
		Screen:     screen,
		Angle:      angleFor(cfg.Angle, c.Scale),
	}
}

func fillScreen(screen *ScreenBox, slide model.Slide, state ScreenshotState) {
	if !slide.HasScreenshot() || state == ScreenshotNone {
		screen.Content = ScreenPlaceholder
		screen.Label = LabelDropScreenshot
		g := linearGradient(180, screen.X, screen.Y, screen.Width, screen.Height, []GradientStop{
			{0, Color{0x1a, 0x1a, 0x2e}},
			{0.5, Color{0x16, 0x21, 0x3e}},
			{1, Color{0x0f, 0x0f, 0x23}},
		})
		screen.Fill = &g
		return
	}
	switch state {
	case ScreenshotUnreadable:
		screen.Content, screen.Label = ScreenNotice, LabelUnreadableImage
	case ScreenshotMismatch:
		if !slide.AllowMismatchedScreenshot {
			screen.Content, screen.Label = ScreenNotice, LabelWrongSize
			return
		}
		screen.Content, screen.Ref = ScreenImage, slide.ScreenshotRef
	default:
		screen.Content, screen.Ref = ScreenImage, slide.ScreenshotRef
	}
}

type anglePreset struct {
	rotX, rotY, perspective float64
	shadow                  Shadow
}

// 阴影与透视距离为原生像素。
var anglePresets = map[model.AnglePreset]anglePreset{
	model.AngleStraight:      {0, 0, 0, Shadow{0, 40, 80, colorBlack, 0.30}},
	model.AngleSlightLeft:    {2, 8, 1200, Shadow{25, 35, 60, colorBlack, 0.35}},
	model.AngleSlightRight:   {2, -8, 1200, Shadow{-25, 35, 60, colorBlack, 0.35}},
	model.AngleDramaticLeft:  {5, 18, 1000, Shadow{40, 50, 80, colorBlack, 0.40}},
	model.AngleDramaticRight: {5, -18, 1000, Shadow{-40, 50, 80, colorBlack, 0.40}},
}

func angleFor(a model.AnglePreset, scale float64) Angle {
	p, ok := anglePresets[a]
	if !ok {
		a, p = model.AngleStraight, anglePresets[model.AngleStraight]
	}
	sh := p.shadow
	sh.OffsetX *= scale
	sh.OffsetY *= scale
	sh.Blur *= scale
	return Angle{
		Preset:      string(a),
		RotateX:     p.rotX,
		RotateY:     p.rotY,
		Perspective: p.perspective * scale,
		Shadow:      sh,
	}
}
