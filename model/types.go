package model

import (
	"time"

	"github.com/ByLCY/storeshot/registry"
)

// 该文件定义项目与幻灯片的内存模型。所有字段在 Normalize 之后均已填充，
// 下游的布局与校验逻辑不再处理缺省值。

// Project 是一组按顺序导出的幻灯片。
type Project struct {
	ID               string
	Name             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ScreenshotTarget registry.TargetID
	Slides           []Slide
	Locales          []string
	DefaultLocale    string
}

// Slide 描述一张截图的全部可编辑配置。
type Slide struct {
	ID                        string
	Background                Background
	Text                      TextConfig
	Device                    DeviceConfig
	ScreenshotRef             string // 空字符串表示未上传
	AllowMismatchedScreenshot bool
	LocalizedText             map[string]LocalizedText
}

// HasScreenshot 报告是否已关联截图。
func (s Slide) HasScreenshot() bool { return s.ScreenshotRef != "" }

// LocalizedText 是某个语言下的标题与副标题覆盖。空字符串是有效值。
type LocalizedText struct {
	Content    string
	SubCaption string
}

// Background 是背景配置的封闭和类型：SolidBackground / GradientBackground / ImageBackground。
type Background interface {
	background()
}

type SolidBackground struct {
	Color string
}

type GradientBackground struct {
	Colors    [2]string
	Direction float64 // 角度，CSS linear-gradient 语义
}

type ImageBackground struct {
	Ref  string
	Blur float64 // 原生像素
}

func (SolidBackground) background()    {}
func (GradientBackground) background() {}
func (ImageBackground) background()    {}

// FontID 标识可选字体。
type FontID string

const (
	FontSFPro        FontID = "sf-pro"
	FontInter        FontID = "inter"
	FontPoppins      FontID = "poppins"
	FontDMSans       FontID = "dm-sans"
	FontPlayfair     FontID = "playfair"
	FontSpaceGrotesk FontID = "space-grotesk"
)

// Fonts 返回全部可选字体 id。
func Fonts() []FontID {
	return []FontID{FontSFPro, FontInter, FontPoppins, FontDMSans, FontPlayfair, FontSpaceGrotesk}
}

// TextColor 是文字颜色极性。
type TextColor string

const (
	TextDark  TextColor = "dark"
	TextLight TextColor = "light"
)

// Align 是水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TextConfig 是标题与副标题配置。百分比字段均为 0-100 语义，夹取在布局阶段完成。
type TextConfig struct {
	Content           string
	Font              FontID
	Size              float64 // 原生像素字号
	Color             TextColor
	Align             Align
	VerticalPosition  float64 // 标题垂直中心，画布高度百分比
	HorizontalOffset  float64 // 仅在解锁画布外定位时生效，画布宽度百分比
	ShowSubCaption    bool
	SubCaption        string
	SubCaptionFont    FontID
	SubCaptionSize    float64 // 标题字号百分比
	SubCaptionSpacing float64 // 标题字号百分比
}

// AnglePreset 是相机角度预设。
type AnglePreset string

const (
	AngleStraight      AnglePreset = "straight"
	AngleSlightLeft    AnglePreset = "slight-left"
	AngleSlightRight   AnglePreset = "slight-right"
	AngleDramaticLeft  AnglePreset = "dramatic-left"
	AngleDramaticRight AnglePreset = "dramatic-right"
)

// AnglePresets 返回全部角度预设。
func AnglePresets() []AnglePreset {
	return []AnglePreset{AngleStraight, AngleSlightLeft, AngleSlightRight, AngleDramaticLeft, AngleDramaticRight}
}

// DeviceConfig 是设备外框的摆放配置。
type DeviceConfig struct {
	Model                  registry.DeviceModel
	Angle                  AnglePreset
	VerticalPosition       float64 // 外框顶部，画布高度百分比
	FrameScale             float64 // 外框宽度，画布宽度百分比
	HorizontalPosition     float64 // 外框中心，画布宽度百分比
	AllowOffCanvasPosition bool
}
