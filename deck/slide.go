package deck

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ByLCY/storeshot/dsl"
	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
)

type slideFiles struct {
	screenshot string
	background string
}

func buildSlide(b *dsl.Block) (model.Slide, slideFiles, error) {
	s := model.NewSlide()
	var files slideFiles
	if a := b.Assignments(); len(a) > 0 {
		return s, files, fmt.Errorf("%s: slide 块内只允许指令", a[0].Pos)
	}

	for _, cmd := range b.Commands("") {
		var err error
		switch cmd.Name {
		case "background":
			files.background, err = applyBackground(&s, cmd)
		case "headline":
			err = applyHeadline(&s, cmd)
		case "sub-caption":
			err = applySubCaption(&s, cmd)
		case "device":
			err = applyDevice(&s, cmd)
		case "screenshot":
			files.screenshot, err = applyScreenshot(&s, cmd)
		case "localized":
			err = applyLocalized(&s, cmd)
		default:
			err = fmt.Errorf("%s: 未知的指令 %q", cmd.Pos, cmd.Name)
		}
		if err != nil {
			return s, files, err
		}
	}
	return s, files, nil
}

func argValues(cmd *dsl.Command) []string {
	out := make([]string, 0, len(cmd.Args))
	for _, a := range cmd.Args {
		out = append(out, a.Value)
	}
	return out
}

// applyBackground 支持：
//
//	background solid <color>
//	background gradient <from> <to> [deg]
//	background image "<path>" [blur <px>]
//	background preset "<name>"
func applyBackground(s *model.Slide, cmd *dsl.Command) (string, error) {
	args := argValues(cmd)
	if len(args) == 0 {
		return "", fmt.Errorf("%s: background 缺少类型", cmd.Pos)
	}
	switch args[0] {
	case "solid":
		if len(args) != 2 {
			return "", fmt.Errorf("%s: 用法 background solid <color>", cmd.Pos)
		}
		s.Background = model.SolidBackground{Color: args[1]}
	case "gradient":
		if len(args) != 3 && len(args) != 4 {
			return "", fmt.Errorf("%s: 用法 background gradient <from> <to> [deg]", cmd.Pos)
		}
		g := model.GradientBackground{Colors: [2]string{args[1], args[2]}, Direction: 180}
		if len(args) == 4 {
			deg, err := dsl.ParseNumber(args[3])
			if err != nil {
				return "", fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			g.Direction = deg
		}
		s.Background = g
	case "image":
		if len(args) != 2 && len(args) != 4 {
			return "", fmt.Errorf("%s: 用法 background image \"<path>\" [blur <px>]", cmd.Pos)
		}
		img := model.ImageBackground{}
		if len(args) == 4 {
			if args[2] != "blur" {
				return "", fmt.Errorf("%s: 未知参数 %q", cmd.Pos, args[2])
			}
			blur, err := dsl.ParseNumber(args[3])
			if err != nil {
				return "", fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			img.Blur = blur
		}
		s.Background = img
		return args[1], nil
	case "preset":
		if len(args) != 2 {
			return "", fmt.Errorf("%s: 用法 background preset \"<name>\"", cmd.Pos)
		}
		i := slices.IndexFunc(model.GradientPresets, func(p model.Preset) bool {
			return strings.EqualFold(p.Name, args[1])
		})
		if i < 0 {
			return "", fmt.Errorf("%s: 未知的背景预设 %q", cmd.Pos, args[1])
		}
		s.Background = model.GradientPresets[i].Background
	default:
		return "", fmt.Errorf("%s: 未知的背景类型 %q", cmd.Pos, args[0])
	}
	return "", nil
}

func applyHeadline(s *model.Slide, cmd *dsl.Command) error {
	if len(cmd.Args) > 1 {
		return fmt.Errorf("%s: headline 只接受一个文本参数", cmd.Pos)
	}
	if len(cmd.Args) == 1 {
		s.Text.Content = cmd.Args[0].Value
	}
	for _, a := range cmd.Block.Assignments() {
		var err error
		switch a.Key {
		case "font":
			s.Text.Font, err = fontID(a.Value)
		case "size":
			s.Text.Size, err = a.Value.Float()
		case "color":
			switch v := a.Value.Text(); v {
			case "dark", "black":
				s.Text.Color = model.TextDark
			case "light", "white":
				s.Text.Color = model.TextLight
			default:
				err = fmt.Errorf("未知的文字颜色 %q", v)
			}
		case "align":
			s.Text.Align = model.Align(a.Value.Text())
			if !slices.Contains([]model.Align{model.AlignLeft, model.AlignCenter, model.AlignRight}, s.Text.Align) {
				err = fmt.Errorf("未知的对齐方式 %q", s.Text.Align)
			}
		case "vertical":
			s.Text.VerticalPosition, err = a.Value.Float()
		case "offset":
			s.Text.HorizontalOffset, err = a.Value.Float()
		default:
			err = fmt.Errorf("未知的标题设置 %q", a.Key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a.Pos, err)
		}
	}
	return nil
}

func applySubCaption(s *model.Slide, cmd *dsl.Command) error {
	if len(cmd.Args) > 1 {
		return fmt.Errorf("%s: sub-caption 只接受一个文本参数", cmd.Pos)
	}
	s.Text.ShowSubCaption = true
	if len(cmd.Args) == 1 {
		s.Text.SubCaption = cmd.Args[0].Value
	}
	fontSet := false
	for _, a := range cmd.Block.Assignments() {
		var err error
		switch a.Key {
		case "font":
			s.Text.SubCaptionFont, err = fontID(a.Value)
			fontSet = true
		case "size":
			s.Text.SubCaptionSize, err = a.Value.Float()
		case "spacing":
			s.Text.SubCaptionSpacing, err = a.Value.Float()
		case "show":
			s.Text.ShowSubCaption, err = a.Value.Bool()
		default:
			err = fmt.Errorf("未知的副标题设置 %q", a.Key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a.Pos, err)
		}
	}
	if !fontSet {
		// 未指定时跟随标题字体，由规范化填充
		s.Text.SubCaptionFont = ""
	}
	return nil
}

func applyDevice(s *model.Slide, cmd *dsl.Command) error {
	if len(cmd.Args) > 1 {
		return fmt.Errorf("%s: device 只接受一个外框参数", cmd.Pos)
	}
	if len(cmd.Args) == 1 {
		m := registry.DeviceModel(cmd.Args[0].Value)
		if !registry.IsPhoneModel(m) && !model.IsLegacyDeviceModel(m) {
			return fmt.Errorf("%s: 未知的外框 %q", cmd.Pos, m)
		}
		s.Device.Model = m
	}
	for _, a := range cmd.Block.Assignments() {
		var err error
		switch a.Key {
		case "angle":
			s.Device.Angle = model.AnglePreset(a.Value.Text())
			if !slices.Contains(model.AnglePresets(), s.Device.Angle) {
				err = fmt.Errorf("未知的角度 %q", s.Device.Angle)
			}
		case "vertical":
			s.Device.VerticalPosition, err = a.Value.Float()
		case "scale":
			s.Device.FrameScale, err = a.Value.Float()
		case "horizontal":
			s.Device.HorizontalPosition, err = a.Value.Float()
		case "off-canvas":
			s.Device.AllowOffCanvasPosition, err = a.Value.Bool()
		default:
			err = fmt.Errorf("未知的外框设置 %q", a.Key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a.Pos, err)
		}
	}
	return nil
}

func applyScreenshot(s *model.Slide, cmd *dsl.Command) (string, error) {
	if len(cmd.Args) != 1 || cmd.Args[0].Type != "String" {
		return "", fmt.Errorf("%s: 用法 screenshot \"<path>\"", cmd.Pos)
	}
	for _, a := range cmd.Block.Assignments() {
		if a.Key != "allow-mismatch" {
			return "", fmt.Errorf("%s: 未知的截图设置 %q", a.Pos, a.Key)
		}
		v, err := a.Value.Bool()
		if err != nil {
			return "", err
		}
		s.AllowMismatchedScreenshot = v
	}
	return cmd.Args[0].Value, nil
}

func applyLocalized(s *model.Slide, cmd *dsl.Command) error {
	if len(cmd.Args) != 1 {
		return fmt.Errorf("%s: 用法 localized \"<code>\" { ... }", cmd.Pos)
	}
	var lt model.LocalizedText
	for _, a := range cmd.Block.Assignments() {
		switch a.Key {
		case "headline":
			lt.Content = a.Value.Text()
		case "sub-caption":
			lt.SubCaption = a.Value.Text()
		default:
			return fmt.Errorf("%s: 未知的本地化设置 %q", a.Pos, a.Key)
		}
	}
	s.SetLocalizedText(cmd.Args[0].Value, lt)
	return nil
}

func fontID(v *dsl.Value) (model.FontID, error) {
	f := model.FontID(v.Text())
	if !slices.Contains(model.Fonts(), f) {
		return "", fmt.Errorf("未知的字体 %q", f)
	}
	return f, nil
}
