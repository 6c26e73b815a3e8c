package layout

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/storeshot/locale"
	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每两个单词折一行，行宽按字号粗略估算。
type stubTypesetter struct{}

func (s *stubTypesetter) LayoutLines(content string, width float64, font string, weight int, fontSize float64, lineHeight float64) ([]TextLine, error) {
	words := strings.Fields(content)
	var lines []TextLine
	for i := 0; i < len(words); i += 2 {
		end := min(i+2, len(words))
		seg := strings.Join(words[i:end], " ")
		lines = append(lines, TextLine{Content: seg, Width: float64(len(seg)) * fontSize * 0.5, Height: lineHeight})
	}
	return lines, nil
}

const eps = 1e-6

func phoneSpecs(t *testing.T) (registry.TargetSpec, registry.DeviceSpec) {
	t.Helper()
	target := registry.MustTargetSpec(registry.TargetIPhone69)
	device, err := registry.GetActiveDeviceSpec(target.ID, registry.ModelIPhone17Pro)
	if err != nil {
		t.Fatal(err)
	}
	return target, device
}

func build(t *testing.T, slide model.Slide, opts BuildOptions) *Result {
	t.Helper()
	target, device := phoneSpecs(t)
	if opts.Typesetter == nil {
		opts.Typesetter = &stubTypesetter{}
	}
	res, err := Build(slide, target, device, opts)
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func approx(a, b float64) bool { return math.Abs(a-b) <= eps }

func TestCanvasUsesTargetDefaultSize(t *testing.T) {
	res := build(t, model.NewSlide(), BuildOptions{})
	if res.Canvas.Width != 1320 || res.Canvas.Height != 2868 || res.Canvas.Scale != 1 {
		t.Fatalf("canvas: %+v", res.Canvas)
	}

	tablet := registry.MustTargetSpec(registry.TargetIPad13)
	dev, _ := registry.GetActiveDeviceSpec(tablet.ID, registry.ModelIPhone17Pro)
	tres, err := Build(model.NewSlide(), tablet, dev, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tres.Canvas.Width != 2064 || tres.Canvas.Height != 2752 || tres.Device.Model != string(registry.ModelIPadPro13) {
		t.Fatalf("tablet: %+v model=%s", tres.Canvas, tres.Device.Model)
	}
}

// TestTextBoxTotalHeightInvariant 断言：TextBox.Height == Σ(line.Height + line.GapBefore)。
func TestTextBoxTotalHeightInvariant(t *testing.T) {
	s := model.NewSlide()
	s.Text.Content = "long long long long long long long"
	s.Text.ShowSubCaption = true
	s.Text.SubCaption = "sub caption words here"
	res := build(t, s, BuildOptions{})
	if len(res.Texts) != 2 {
		t.Fatalf("应有标题与副标题: %d", len(res.Texts))
	}
	for _, tb := range res.Texts {
		total := 0.0
		for _, ln := range tb.Lines {
			total += ln.GapBefore + ln.Height
		}
		if !approx(total, tb.Height) {
			t.Fatalf("%s: Height 不变式不成立: got=%g want=%g", tb.Role, tb.Height, total)
		}
	}
	if n := len(res.Texts[0].Lines); n != 4 {
		t.Fatalf("标题行数: %d", n)
	}
}

func TestHeadlineVerticalCenterIsClamped(t *testing.T) {
	for _, v := range []float64{-1e6, -5, 0, 5, 12, 50, 90, 91, 1e6} {
		s := model.NewSlide()
		s.Text.VerticalPosition = v
		res := build(t, s, BuildOptions{})
		h := res.Texts[0]
		center := (h.Y + h.Height/2) / res.Canvas.Height * 100
		want := Clamp(v, 5, 90)
		if center < 5-eps || center > 90+eps || !approx(center, want) {
			t.Errorf("v=%g: center=%g want %g", v, center, want)
		}
	}
}

func TestHeadlineBlockCentredWithSubCaption(t *testing.T) {
	s := model.NewSlide()
	s.Text.VerticalPosition = 20
	s.Text.ShowSubCaption = true
	s.Text.SubCaption = "Track everything"
	res := build(t, s, BuildOptions{})
	head, sub := res.Texts[0], res.Texts[1]
	bottom := sub.Y + sub.Height
	if !approx((head.Y+bottom)/2, 0.2*res.Canvas.Height) {
		t.Fatalf("标题块未居中: top=%g bottom=%g", head.Y, bottom)
	}
	// 96 × 12% = 11.52 → 钳制到 [8,36]
	if !approx(sub.Y-(head.Y+head.Height), 11.52) {
		t.Fatalf("副标题间距: %g", sub.Y-(head.Y+head.Height))
	}
	if sub.Opacity != 0.9 || sub.Weight != 500 || head.Weight != 700 {
		t.Fatalf("样式: head=%+v sub=%+v", head, sub)
	}
}

func TestSubCaptionDoubleClamp(t *testing.T) {
	cases := []struct {
		size, ratio, spacing float64
		wantFont, wantMargin float64
	}{
		{200, 65, 24, 72, 36},
		{200, 100, 100, 72, 36},
		{48, 25, 6, 24, 8},
		{48, 0, 0, 24, 8},
		{96, 42, 12, 40.32, 11.52},
	}
	for _, c := range cases {
		s := model.NewSlide()
		s.Text.Size = c.size
		s.Text.SubCaptionSize = c.ratio
		s.Text.SubCaptionSpacing = c.spacing
		s.Text.ShowSubCaption = true
		s.Text.SubCaption = "x"
		res := build(t, s, BuildOptions{Scale: 0.5})
		head, sub := res.Texts[0], res.Texts[1]
		if !approx(sub.FontSize, c.wantFont*0.5) {
			t.Errorf("size=%g ratio=%g: font=%g want %g", c.size, c.ratio, sub.FontSize, c.wantFont*0.5)
		}
		if margin := sub.Y - head.Y - head.Height; !approx(margin, c.wantMargin*0.5) {
			t.Errorf("size=%g spacing=%g: margin=%g want %g", c.size, c.spacing, margin, c.wantMargin*0.5)
		}
	}
}

func TestSubCaptionHiddenWhenBlank(t *testing.T) {
	s := model.NewSlide()
	s.Text.ShowSubCaption = true
	s.Text.SubCaption = "   "
	if res := build(t, s, BuildOptions{}); len(res.Texts) != 1 {
		t.Fatalf("空白副标题不应渲染")
	}
	s.Text.SubCaption = "hidden"
	s.Text.ShowSubCaption = false
	if res := build(t, s, BuildOptions{}); len(res.Texts) != 1 {
		t.Fatalf("关闭副标题后不应渲染")
	}
}

func TestResolvedTextOverridesBase(t *testing.T) {
	s := model.NewSlide()
	s.Text.ShowSubCaption = true
	s.Text.SubCaption = "base sub"
	txt := locale.Text{Content: "Bonjour", SubCaption: ""}
	res := build(t, s, BuildOptions{Text: &txt})
	if res.Texts[0].Content != "Bonjour" || len(res.Texts) != 1 {
		t.Fatalf("texts: %+v", res.Texts)
	}

	empty := locale.Text{}
	res = build(t, s, BuildOptions{Text: &empty})
	if res.Texts[0].Content != model.DefaultHeadline {
		t.Fatalf("空标题应显示占位文案: %q", res.Texts[0].Content)
	}
}

func TestHeadlineHorizontalShift(t *testing.T) {
	s := model.NewSlide()
	s.Text.HorizontalOffset = 100
	res := build(t, s, BuildOptions{})
	if !approx(res.Texts[0].X, 65) {
		t.Fatalf("锁定时不应平移: x=%g", res.Texts[0].X)
	}
	s.Device.AllowOffCanvasPosition = true
	res = build(t, s, BuildOptions{})
	if want := 65 + 0.30*1320; !approx(res.Texts[0].X, want) {
		t.Fatalf("解锁后应钳制到 30%%: x=%g want %g", res.Texts[0].X, want)
	}
}

func TestFrameScaleIsClamped(t *testing.T) {
	for _, v := range []float64{-10, 0, 40, 55, 80, 81, 500} {
		s := model.NewSlide()
		s.Device.FrameScale = v
		res := build(t, s, BuildOptions{})
		ratio := res.Device.Width / res.Canvas.Width * 100
		if ratio < 40-eps || ratio > 80+eps || !approx(ratio, Clamp(v, 40, 80)) {
			t.Errorf("frameScale=%g: ratio=%g", v, ratio)
		}
		if !approx(res.Device.Height, res.Device.Width*2760/1350) {
			t.Errorf("外框高度应取素材宽高比: %g", res.Device.Height)
		}
	}
}

func TestLockedDeviceIgnoresCorruptHorizontal(t *testing.T) {
	s := model.NewSlide()
	s.Device.HorizontalPosition = 200
	res := build(t, s, BuildOptions{})
	if center := res.Device.X + res.Device.Width/2; !approx(center, 660) {
		t.Fatalf("锁定时应按 50%% 居中: center=%g", center)
	}
}

func TestDevicePositionRanges(t *testing.T) {
	cases := []struct {
		unlock       bool
		h, v         float64
		wantH, wantV float64
	}{
		{false, 200, -50, 50, 0},
		{false, 10, 95, 50, 80},
		{true, 200, -50, 130, -30},
		{true, -50, 150, -30, 120},
		{true, 20, 40, 20, 40},
	}
	for _, c := range cases {
		s := model.NewSlide()
		s.Device.AllowOffCanvasPosition = c.unlock
		s.Device.HorizontalPosition = c.h
		s.Device.VerticalPosition = c.v
		res := build(t, s, BuildOptions{})
		center := (res.Device.X + res.Device.Width/2) / res.Canvas.Width * 100
		top := res.Device.Y / res.Canvas.Height * 100
		if !approx(center, c.wantH) || !approx(top, c.wantV) {
			t.Errorf("%+v: center=%g top=%g", c, center, top)
		}
	}
}

func TestScreenRectInsideFrame(t *testing.T) {
	res := build(t, model.NewSlide(), BuildOptions{})
	d := res.Device
	k := d.Width / 1350
	if !approx(d.Screen.X, d.X+72*k) || !approx(d.Screen.Y, d.Y+69*k) {
		t.Fatalf("screen 偏移: %+v frame=(%g,%g)", d.Screen, d.X, d.Y)
	}
	if !approx(d.Screen.Width, 1206*k) || !approx(d.Screen.Height, 2622*k) {
		t.Fatalf("screen 尺寸: %+v", d.Screen)
	}
	if !approx(d.Screen.Radius, d.Screen.Width*0.062) || !approx(d.BodyRadius, d.Width*0.08) {
		t.Fatalf("圆角: screen=%g body=%g", d.Screen.Radius, d.BodyRadius)
	}
}

func TestRenderScaleMultipliesGeometry(t *testing.T) {
	s := model.NewSlide()
	s.Text.Color = model.TextLight
	s.Device.Angle = model.AngleDramaticLeft
	full := build(t, s, BuildOptions{Scale: 1})
	quarter := build(t, s, BuildOptions{Scale: 0.25})

	pairs := [][2]float64{
		{full.Canvas.Width * 0.25, quarter.Canvas.Width},
		{full.Device.Width * 0.25, quarter.Device.Width},
		{full.Device.Screen.Y * 0.25, quarter.Device.Screen.Y},
		{full.Texts[0].FontSize * 0.25, quarter.Texts[0].FontSize},
		{full.Texts[0].Shadow.OffsetY * 0.25, quarter.Texts[0].Shadow.OffsetY},
		{full.Device.Angle.Shadow.Blur * 0.25, quarter.Device.Angle.Shadow.Blur},
	}
	for i, p := range pairs {
		if !approx(p[0], p[1]) {
			t.Errorf("#%d: %g != %g", i, p[0], p[1])
		}
	}
	if full.Texts[0].Shadow.OffsetY != 11 || full.Texts[0].Shadow.Blur != 22 {
		t.Fatalf("浅色文字投影: %+v", full.Texts[0].Shadow)
	}

	target, device := phoneSpecs(t)
	if _, err := Build(s, target, device, BuildOptions{Scale: -1}); err == nil {
		t.Fatalf("负 scale 应报错")
	}
}

func TestDarkTextHasNoShadow(t *testing.T) {
	res := build(t, model.NewSlide(), BuildOptions{})
	if res.Texts[0].Shadow != nil || res.Texts[0].Color != (Color{}) {
		t.Fatalf("深色文字: %+v", res.Texts[0])
	}
}

func TestScreenStates(t *testing.T) {
	cases := []struct {
		name    string
		ref     string
		allow   bool
		state   ScreenshotState
		content ScreenContent
		label   string
	}{
		{"无截图", "", false, ScreenshotOK, ScreenPlaceholder, LabelDropScreenshot},
		{"正常", "shot", false, ScreenshotOK, ScreenImage, ""},
		{"尺寸不符", "shot", false, ScreenshotMismatch, ScreenNotice, LabelWrongSize},
		{"尺寸不符但允许", "shot", true, ScreenshotMismatch, ScreenImage, ""},
		{"无法解码", "shot", true, ScreenshotUnreadable, ScreenNotice, LabelUnreadableImage},
	}
	for _, c := range cases {
		s := model.NewSlide()
		s.ScreenshotRef = c.ref
		s.AllowMismatchedScreenshot = c.allow
		res := build(t, s, BuildOptions{Screenshot: c.state})
		sc := res.Device.Screen
		if sc.Content != c.content || sc.Label != c.label {
			t.Errorf("%s: content=%s label=%q", c.name, sc.Content, sc.Label)
		}
		if c.content == ScreenImage && sc.Ref != c.ref {
			t.Errorf("%s: ref=%q", c.name, sc.Ref)
		}
		if c.content == ScreenPlaceholder && (sc.Fill == nil || len(sc.Fill.Stops) != 3) {
			t.Errorf("%s: 占位渐变缺失", c.name)
		}
	}
}

func TestGradientGeometry(t *testing.T) {
	cases := []struct {
		deg        float64
		start, end Point
	}{
		{180, Point{660, 0}, Point{660, 2868}},
		{0, Point{660, 2868}, Point{660, 0}},
		{90, Point{0, 1434}, Point{1320, 1434}},
	}
	for _, c := range cases {
		s := model.NewSlide()
		s.Background = model.GradientBackground{Colors: [2]string{"#000000", "#FFFFFF"}, Direction: c.deg}
		g := build(t, s, BuildOptions{}).Background.Gradient
		if g == nil {
			t.Fatalf("缺少渐变")
		}
		if !approx(g.Start.X, c.start.X) || !approx(g.Start.Y, c.start.Y) || !approx(g.End.X, c.end.X) || !approx(g.End.Y, c.end.Y) {
			t.Errorf("%g°: start=%v end=%v", c.deg, g.Start, g.End)
		}
	}
}

func TestImageBackgroundBlurScales(t *testing.T) {
	s := model.NewSlide()
	s.Background = model.ImageBackground{Ref: "bg-image-1", Blur: 8}
	bg := build(t, s, BuildOptions{Scale: 0.5}).Background
	if bg.Kind != BackgroundImage || bg.Image == nil || bg.Image.Blur != 4 || bg.Color != colorWhite {
		t.Fatalf("bg: %+v", bg)
	}

	s.Background = model.ImageBackground{}
	if bg := build(t, s, BuildOptions{}).Background; bg.Image != nil {
		t.Fatalf("空引用只绘制白底: %+v", bg)
	}
}

func TestAnglePresets(t *testing.T) {
	for _, a := range model.AnglePresets() {
		s := model.NewSlide()
		s.Device.Angle = a
		base := build(t, model.NewSlide(), BuildOptions{})
		res := build(t, s, BuildOptions{})
		if res.Device.Angle.Preset != string(a) {
			t.Errorf("preset: %s", res.Device.Angle.Preset)
		}
		if res.Device.X != base.Device.X || res.Device.Width != base.Device.Width {
			t.Errorf("%s: 角度不应改变几何", a)
		}
	}
	s := model.NewSlide()
	s.Device.Angle = model.AngleSlightRight
	ang := build(t, s, BuildOptions{}).Device.Angle
	if ang.RotateY != -8 || ang.RotateX != 2 || ang.Perspective != 1200 || ang.Shadow.OffsetX != -25 {
		t.Fatalf("slight-right: %+v", ang)
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res := build(t, model.NewSlide(), BuildOptions{})
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Canvas.NativeWidth != 1320 || back.Device.Screen.Content != ScreenPlaceholder {
		t.Fatalf("back: %+v", back.Canvas)
	}
}
