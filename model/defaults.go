package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ByLCY/storeshot/registry"
)

const (
	DefaultProjectName              = "Untitled Project"
	DefaultHeadline                 = "Your headline here"
	DefaultBackgroundColor          = "#F0F4F8"
	DefaultTextSize                 = 96
	DefaultHeadlineVertical         = 12
	DefaultSubCaptionSize           = 42
	DefaultSubCaptionSpacing        = 12
	DefaultHeadlineHorizontal       = 0
	DefaultDeviceVerticalPosition   = 35
	DefaultDeviceFrameScale         = 55
	DefaultDeviceHorizontalPosition = 50
)

// NewSlide 创建一张填充了全部默认值的幻灯片。
func NewSlide() Slide {
	return Slide{
		ID:         uuid.NewString(),
		Background: SolidBackground{Color: DefaultBackgroundColor},
		Text: TextConfig{
			Content:           DefaultHeadline,
			Font:              FontInter,
			Size:              DefaultTextSize,
			Color:             TextDark,
			Align:             AlignCenter,
			VerticalPosition:  DefaultHeadlineVertical,
			HorizontalOffset:  DefaultHeadlineHorizontal,
			SubCaptionFont:    FontInter,
			SubCaptionSize:    DefaultSubCaptionSize,
			SubCaptionSpacing: DefaultSubCaptionSpacing,
		},
		Device: DeviceConfig{
			Model:              registry.DefaultPhoneModel,
			Angle:              AngleStraight,
			VerticalPosition:   DefaultDeviceVerticalPosition,
			FrameScale:         DefaultDeviceFrameScale,
			HorizontalPosition: DefaultDeviceHorizontalPosition,
		},
	}
}

// NewProject 创建只包含一张默认幻灯片的新项目。
func NewProject(name string) *Project {
	if name == "" {
		name = DefaultProjectName
	}
	now := time.Now().Truncate(time.Millisecond)
	return &Project{
		ID:               uuid.NewString(),
		Name:             name,
		CreatedAt:        now,
		UpdatedAt:        now,
		ScreenshotTarget: registry.DefaultTarget,
		Slides:           []Slide{NewSlide()},
	}
}

// Preset 是命名的背景预设。
type Preset struct {
	Name       string
	Background Background
}

// SolidPresets 为柔和的纯色背景。
var SolidPresets = []string{
	"#FFFFFF",
	"#F8F8F8",
	"#F5F5F0",
	"#F0F4F8",
	"#E8F4F8",
	"#FFF9E6",
	"#E8F5E9",
	"#FCE4EC",
	"#1E3A5F",
	"#1A1A1A",
}

// GradientPresets 为内置渐变背景。
var GradientPresets = []Preset{
	{"Soft Peach", GradientBackground{Colors: [2]string{"#FFECD2", "#FCB69F"}, Direction: 180}},
	{"Mint Cream", GradientBackground{Colors: [2]string{"#E0F2E9", "#A8E6CF"}, Direction: 180}},
	{"Lavender", GradientBackground{Colors: [2]string{"#E8E0F0", "#D4C4E3"}, Direction: 180}},
	{"Sky", GradientBackground{Colors: [2]string{"#E0F7FA", "#B2EBF2"}, Direction: 180}},
	{"Blush", GradientBackground{Colors: [2]string{"#FDE2E4", "#FAD2CF"}, Direction: 180}},
	{"Sage", GradientBackground{Colors: [2]string{"#E8F0E8", "#C8DCC8"}, Direction: 180}},
	{"Ocean", GradientBackground{Colors: [2]string{"#667EEA", "#764BA2"}, Direction: 135}},
	{"Sunset", GradientBackground{Colors: [2]string{"#FA709A", "#FEE140"}, Direction: 135}},
	{"Deep Blue", GradientBackground{Colors: [2]string{"#1E3A5F", "#2E5A7F"}, Direction: 180}},
	{"Charcoal", GradientBackground{Colors: [2]string{"#2C3E50", "#1A1A2E"}, Direction: 180}},
}
