package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ByLCY/storeshot/registry"
)

// 持久化格式沿用编辑器的 camelCase JSON。可选字段使用指针或 optNumber，
// 以区分"缺失"与"零值"；缺失字段在解码时填入默认值。

type projectJSON struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	CreatedAt        int64       `json:"createdAt"`
	UpdatedAt        int64       `json:"updatedAt"`
	ScreenshotTarget string      `json:"screenshotTarget,omitempty"`
	Slides           []slideJSON `json:"slides"`
	Locales          []string    `json:"locales,omitempty"`
	DefaultLocale    string      `json:"defaultLocale,omitempty"`
}

type slideJSON struct {
	ID                        string                       `json:"id"`
	Background                backgroundJSON               `json:"background"`
	Text                      textJSON                     `json:"text"`
	Device                    deviceJSON                   `json:"device"`
	ScreenshotRef             *string                      `json:"screenshotRef"`
	AllowMismatchedScreenshot *bool                        `json:"allowMismatchedScreenshot,omitempty"`
	LocalizedText             map[string]localizedTextJSON `json:"localizedText,omitempty"`
}

type localizedTextJSON struct {
	Content    string `json:"content"`
	SubCaption string `json:"subCaption"`
}

type backgroundJSON struct {
	Type     string        `json:"type"`
	Color    string        `json:"color,omitempty"`
	Gradient *gradientJSON `json:"gradient,omitempty"`
	ImageRef string        `json:"imageRef,omitempty"`
	Blur     optNumber     `json:"blur,omitzero"`
}

type gradientJSON struct {
	Colors    []string  `json:"colors"`
	Direction optNumber `json:"direction"`
}

type textJSON struct {
	Content           *string   `json:"content,omitempty"`
	Font              string    `json:"font,omitempty"`
	Size              optNumber `json:"size,omitzero"`
	Color             string    `json:"color,omitempty"`
	Align             string    `json:"align,omitempty"`
	VerticalPosition  optNumber `json:"verticalPosition,omitzero"`
	HorizontalOffset  optNumber `json:"horizontalOffset,omitzero"`
	ShowSubCaption    *bool     `json:"showSubCaption,omitempty"`
	SubCaption        string    `json:"subCaption,omitempty"`
	SubCaptionFont    string    `json:"subCaptionFont,omitempty"`
	SubCaptionSize    optNumber `json:"subCaptionSize,omitzero"`
	SubCaptionSpacing optNumber `json:"subCaptionSpacing,omitzero"`
}

type deviceJSON struct {
	Model                  string    `json:"model,omitempty"`
	Angle                  string    `json:"angle,omitempty"`
	VerticalPosition       optNumber `json:"verticalPosition,omitzero"`
	FrameScale             optNumber `json:"frameScale,omitzero"`
	HorizontalPosition     optNumber `json:"horizontalPosition,omitzero"`
	AllowOffCanvasPosition *bool     `json:"allowOffCanvasPosition,omitempty"`
}

// optNumber 只接受 JSON 数字；字符串、null 或其他类型一律视为缺失。
type optNumber struct {
	Value float64
	Set   bool
}

func num(v float64) optNumber { return optNumber{Value: v, Set: true} }

func (n *optNumber) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = optNumber{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = optNumber{}
		return nil
	}
	*n = optNumber{Value: f, Set: true}
	return nil
}

func (n optNumber) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// IsZero lets encoding/json's omitzero skip unset values.
func (n optNumber) IsZero() bool { return !n.Set }

func (n optNumber) or(fallback float64) float64 {
	if !n.Set {
		return fallback
	}
	return n.Value
}

// DecodeProject 读取持久化项目并完成规范化。
func DecodeProject(r io.Reader) (*Project, error) {
	var raw projectJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析项目 JSON 失败: %w", err)
	}
	p := &Project{
		ID:               raw.ID,
		Name:             raw.Name,
		CreatedAt:        fromMillis(raw.CreatedAt),
		UpdatedAt:        fromMillis(raw.UpdatedAt),
		ScreenshotTarget: registry.TargetID(raw.ScreenshotTarget),
		Locales:          raw.Locales,
		DefaultLocale:    raw.DefaultLocale,
	}
	for _, rs := range raw.Slides {
		p.Slides = append(p.Slides, rs.toSlide())
	}
	NormalizeProject(p)
	return p, nil
}

// DecodeProjectBytes 是 DecodeProject 的便捷形式。
func DecodeProjectBytes(data []byte) (*Project, error) {
	return DecodeProject(bytes.NewReader(data))
}

// EncodeProject 以持久化格式写出项目，所有字段显式输出。
func EncodeProject(w io.Writer, p *Project) error {
	if p == nil {
		return fmt.Errorf("项目为空")
	}
	raw := projectJSON{
		ID:               p.ID,
		Name:             p.Name,
		CreatedAt:        p.CreatedAt.UnixMilli(),
		UpdatedAt:        p.UpdatedAt.UnixMilli(),
		ScreenshotTarget: string(p.ScreenshotTarget),
		Locales:          p.Locales,
		DefaultLocale:    p.DefaultLocale,
		Slides:           make([]slideJSON, 0, len(p.Slides)),
	}
	for _, s := range p.Slides {
		raw.Slides = append(raw.Slides, slideToJSON(s))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}

func (rs slideJSON) toSlide() Slide {
	s := Slide{
		ID:         rs.ID,
		Background: rs.Background.toBackground(),
		Text: TextConfig{
			Content:           DefaultHeadline,
			Font:              FontID(rs.Text.Font),
			Size:              rs.Text.Size.or(DefaultTextSize),
			Color:             TextColor(rs.Text.Color),
			Align:             Align(rs.Text.Align),
			VerticalPosition:  rs.Text.VerticalPosition.or(DefaultHeadlineVertical),
			HorizontalOffset:  rs.Text.HorizontalOffset.or(DefaultHeadlineHorizontal),
			SubCaption:        rs.Text.SubCaption,
			SubCaptionFont:    FontID(rs.Text.SubCaptionFont),
			SubCaptionSize:    rs.Text.SubCaptionSize.or(DefaultSubCaptionSize),
			SubCaptionSpacing: rs.Text.SubCaptionSpacing.or(DefaultSubCaptionSpacing),
		},
		Device: DeviceConfig{
			Model:              registry.DeviceModel(rs.Device.Model),
			Angle:              AnglePreset(rs.Device.Angle),
			VerticalPosition:   rs.Device.VerticalPosition.or(DefaultDeviceVerticalPosition),
			FrameScale:         rs.Device.FrameScale.or(DefaultDeviceFrameScale),
			HorizontalPosition: rs.Device.HorizontalPosition.or(DefaultDeviceHorizontalPosition),
		},
	}
	if rs.Text.Content != nil {
		s.Text.Content = *rs.Text.Content
	}
	if rs.Text.ShowSubCaption != nil {
		s.Text.ShowSubCaption = *rs.Text.ShowSubCaption
	}
	if rs.Device.AllowOffCanvasPosition != nil {
		s.Device.AllowOffCanvasPosition = *rs.Device.AllowOffCanvasPosition
	}
	if rs.ScreenshotRef != nil {
		s.ScreenshotRef = *rs.ScreenshotRef
	}
	if rs.AllowMismatchedScreenshot != nil {
		s.AllowMismatchedScreenshot = *rs.AllowMismatchedScreenshot
	}
	if len(rs.LocalizedText) > 0 {
		s.LocalizedText = make(map[string]LocalizedText, len(rs.LocalizedText))
		for code, lt := range rs.LocalizedText {
			s.LocalizedText[code] = LocalizedText{Content: lt.Content, SubCaption: lt.SubCaption}
		}
	}
	return s
}

func (rb backgroundJSON) toBackground() Background {
	switch rb.Type {
	case "gradient":
		g := GradientBackground{Direction: 180}
		if rb.Gradient != nil {
			for i := 0; i < len(rb.Gradient.Colors) && i < 2; i++ {
				g.Colors[i] = rb.Gradient.Colors[i]
			}
			g.Direction = rb.Gradient.Direction.or(180)
		}
		return g
	case "image":
		return ImageBackground{Ref: rb.ImageRef, Blur: rb.Blur.or(0)}
	case "solid":
		return SolidBackground{Color: rb.Color}
	default:
		return nil
	}
}

func slideToJSON(s Slide) slideJSON {
	content := s.Text.Content
	show := s.Text.ShowSubCaption
	allowOff := s.Device.AllowOffCanvasPosition
	allowMismatch := s.AllowMismatchedScreenshot
	out := slideJSON{
		ID:         s.ID,
		Background: backgroundToJSON(s.Background),
		Text: textJSON{
			Content:           &content,
			Font:              string(s.Text.Font),
			Size:              num(s.Text.Size),
			Color:             string(s.Text.Color),
			Align:             string(s.Text.Align),
			VerticalPosition:  num(s.Text.VerticalPosition),
			HorizontalOffset:  num(s.Text.HorizontalOffset),
			ShowSubCaption:    &show,
			SubCaption:        s.Text.SubCaption,
			SubCaptionFont:    string(s.Text.SubCaptionFont),
			SubCaptionSize:    num(s.Text.SubCaptionSize),
			SubCaptionSpacing: num(s.Text.SubCaptionSpacing),
		},
		Device: deviceJSON{
			Model:                  string(s.Device.Model),
			Angle:                  string(s.Device.Angle),
			VerticalPosition:       num(s.Device.VerticalPosition),
			FrameScale:             num(s.Device.FrameScale),
			HorizontalPosition:     num(s.Device.HorizontalPosition),
			AllowOffCanvasPosition: &allowOff,
		},
		AllowMismatchedScreenshot: &allowMismatch,
	}
	if s.ScreenshotRef != "" {
		ref := s.ScreenshotRef
		out.ScreenshotRef = &ref
	}
	if len(s.LocalizedText) > 0 {
		out.LocalizedText = make(map[string]localizedTextJSON, len(s.LocalizedText))
		for code, lt := range s.LocalizedText {
			out.LocalizedText[code] = localizedTextJSON{Content: lt.Content, SubCaption: lt.SubCaption}
		}
	}
	return out
}

func backgroundToJSON(bg Background) backgroundJSON {
	switch b := bg.(type) {
	case SolidBackground:
		return backgroundJSON{Type: "solid", Color: b.Color}
	case GradientBackground:
		return backgroundJSON{Type: "gradient", Gradient: &gradientJSON{
			Colors:    []string{b.Colors[0], b.Colors[1]},
			Direction: num(b.Direction),
		}}
	case ImageBackground:
		return backgroundJSON{Type: "image", ImageRef: b.Ref, Blur: num(b.Blur)}
	default:
		return backgroundJSON{Type: "solid", Color: DefaultBackgroundColor}
	}
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
