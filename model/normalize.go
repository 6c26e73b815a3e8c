package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ByLCY/storeshot/registry"
)

// 规范化是加载或新建项目时唯一的缺省值填充入口。
// 之后的布局、校验、导出逻辑都假设配置已完整。

// legacyDeviceModels 将已下线的外框 id 映射到最接近的现役外框（1:1）。
var legacyDeviceModels = map[registry.DeviceModel]registry.DeviceModel{
	"iphone-16-pro-max": registry.ModelIPhone16Pro,
	"iphone-17-pro-max": registry.ModelIPhone17Pro,
	"iphone-15-pro-max": registry.ModelIPhone16Pro,
	"iphone-15-pro":     registry.ModelIPhone16Pro,
}

// CanonicalDeviceModel 返回 model 对应的现役手机外框。
// 第二个返回值报告输入是否已经是现役 id；未知 id 回退到默认外框。
func CanonicalDeviceModel(model registry.DeviceModel) (registry.DeviceModel, bool) {
	if registry.IsPhoneModel(model) {
		return model, true
	}
	if mapped, ok := legacyDeviceModels[model]; ok {
		return mapped, false
	}
	return registry.DefaultPhoneModel, false
}

// IsLegacyDeviceModel 报告 model 是否为已下线、会被重新映射的外框 id。
func IsLegacyDeviceModel(model registry.DeviceModel) bool {
	_, ok := legacyDeviceModels[model]
	return ok
}

// NormalizeTarget 将持久化的 target 字符串转换为受支持的 id。
func NormalizeTarget(value string) registry.TargetID {
	if registry.IsSupportedTarget(value) {
		return registry.TargetID(value)
	}
	return registry.DefaultTarget
}

// NormalizeProject 就地规范化项目，可重复调用。
func NormalizeProject(p *Project) {
	if p == nil {
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = DefaultProjectName
	}
	now := time.Now().Truncate(time.Millisecond)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	p.ScreenshotTarget = NormalizeTarget(string(p.ScreenshotTarget))
	p.Locales = normalizeLocales(p.Locales)
	p.DefaultLocale = strings.TrimSpace(p.DefaultLocale)
	if p.DefaultLocale != "" && !containsString(p.Locales, p.DefaultLocale) {
		p.DefaultLocale = ""
	}
	if len(p.Slides) == 0 {
		p.Slides = []Slide{NewSlide()}
	}
	for i := range p.Slides {
		NormalizeSlide(&p.Slides[i])
	}
}

// NormalizeSlide 就地规范化单张幻灯片。
func NormalizeSlide(s *Slide) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Background = normalizeBackground(s.Background)
	normalizeText(&s.Text)
	normalizeDevice(&s.Device)
	if len(s.LocalizedText) == 0 {
		s.LocalizedText = nil
	}
}

func normalizeBackground(bg Background) Background {
	switch b := bg.(type) {
	case SolidBackground:
		if strings.TrimSpace(b.Color) == "" {
			b.Color = DefaultBackgroundColor
		}
		return b
	case GradientBackground:
		for i := range b.Colors {
			if strings.TrimSpace(b.Colors[i]) == "" {
				b.Colors[i] = "#FFFFFF"
			}
		}
		b.Direction = finiteOr(b.Direction, 180)
		return b
	case ImageBackground:
		b.Blur = finiteOr(b.Blur, 0)
		if b.Blur < 0 {
			b.Blur = 0
		}
		return b
	default:
		return SolidBackground{Color: DefaultBackgroundColor}
	}
}

func normalizeText(t *TextConfig) {
	t.Font = normalizeFont(t.Font, FontInter)
	t.SubCaptionFont = normalizeFont(t.SubCaptionFont, t.Font)
	if t.Size = finiteOr(t.Size, DefaultTextSize); t.Size <= 0 {
		t.Size = DefaultTextSize
	}
	t.Color = normalizeTextColor(string(t.Color))
	switch t.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		t.Align = AlignCenter
	}
	t.VerticalPosition = finiteOr(t.VerticalPosition, DefaultHeadlineVertical)
	t.HorizontalOffset = finiteOr(t.HorizontalOffset, DefaultHeadlineHorizontal)
	t.SubCaptionSize = finiteOr(t.SubCaptionSize, DefaultSubCaptionSize)
	t.SubCaptionSpacing = finiteOr(t.SubCaptionSpacing, DefaultSubCaptionSpacing)
}

func normalizeDevice(d *DeviceConfig) {
	d.Model, _ = CanonicalDeviceModel(d.Model)
	if !isAngle(d.Angle) {
		d.Angle = AngleStraight
	}
	d.VerticalPosition = finiteOr(d.VerticalPosition, DefaultDeviceVerticalPosition)
	d.FrameScale = finiteOr(d.FrameScale, DefaultDeviceFrameScale)
	d.HorizontalPosition = finiteOr(d.HorizontalPosition, DefaultDeviceHorizontalPosition)
}

func normalizeFont(f FontID, fallback FontID) FontID {
	for _, known := range Fonts() {
		if f == known {
			return f
		}
	}
	return fallback
}

func normalizeTextColor(v string) TextColor {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "light", "white":
		return TextLight
	default:
		// dark / black / auto
		return TextDark
	}
}

func isAngle(a AnglePreset) bool {
	for _, known := range AnglePresets() {
		if a == known {
			return true
		}
	}
	return false
}

func normalizeLocales(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || containsString(out, c) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
