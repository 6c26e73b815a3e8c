package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DuplicateSlide 在 index 之后插入一张配置相同、id 不同的幻灯片，返回新幻灯片的下标。
// 截图引用会被共享，调用方如需独立副本应自行复制资源后改写 ScreenshotRef。
func (p *Project) DuplicateSlide(index int) (int, error) {
	if index < 0 || index >= len(p.Slides) {
		return 0, fmt.Errorf("幻灯片下标越界: %d", index)
	}
	src := p.Slides[index]
	dup := src
	dup.ID = uuid.NewString()
	if src.LocalizedText != nil {
		dup.LocalizedText = make(map[string]LocalizedText, len(src.LocalizedText))
		for k, v := range src.LocalizedText {
			dup.LocalizedText[k] = v
		}
	}
	p.Slides = append(p.Slides, Slide{})
	copy(p.Slides[index+2:], p.Slides[index+1:])
	p.Slides[index+1] = dup
	return index + 1, nil
}

// OrphanedRefs 是删除幻灯片后不再被引用的资源。
type OrphanedRefs struct {
	Screenshot      string
	BackgroundImage string
}

// DeleteSlide 删除 index 处的幻灯片。项目至少保留一张幻灯片。
// 返回值列出已无任何幻灯片引用的截图与背景图，供调用方清理资源。
func (p *Project) DeleteSlide(index int) (OrphanedRefs, error) {
	if index < 0 || index >= len(p.Slides) {
		return OrphanedRefs{}, fmt.Errorf("幻灯片下标越界: %d", index)
	}
	if len(p.Slides) <= 1 {
		return OrphanedRefs{}, fmt.Errorf("不能删除最后一张幻灯片")
	}
	removed := p.Slides[index]
	p.Slides = append(p.Slides[:index], p.Slides[index+1:]...)

	var orphans OrphanedRefs
	if ref := removed.ScreenshotRef; ref != "" && !p.referencesScreenshot(ref) {
		orphans.Screenshot = ref
	}
	if bg, ok := removed.Background.(ImageBackground); ok && bg.Ref != "" && !p.referencesBackground(bg.Ref) {
		orphans.BackgroundImage = bg.Ref
	}
	return orphans, nil
}

// ApplyBackgroundToAll 将 index 处的背景复制到所有幻灯片。
func (p *Project) ApplyBackgroundToAll(index int) error {
	if index < 0 || index >= len(p.Slides) {
		return fmt.Errorf("幻灯片下标越界: %d", index)
	}
	bg := p.Slides[index].Background
	for i := range p.Slides {
		p.Slides[i].Background = bg
	}
	return nil
}

// AddLocale 追加一个语言代码；第一个加入的语言成为默认语言。
func (p *Project) AddLocale(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("语言代码为空")
	}
	if containsString(p.Locales, code) {
		return fmt.Errorf("语言 %s 已存在", code)
	}
	p.Locales = append(p.Locales, code)
	if p.DefaultLocale == "" {
		p.DefaultLocale = code
	}
	return nil
}

// RemoveLocale 删除语言代码。幻灯片上的翻译保留，以便重新加入时恢复。
func (p *Project) RemoveLocale(code string) {
	out := p.Locales[:0]
	for _, c := range p.Locales {
		if c != code {
			out = append(out, c)
		}
	}
	p.Locales = out
	if len(p.Locales) == 0 {
		p.Locales = nil
	}
	if p.DefaultLocale == code {
		p.DefaultLocale = ""
		if len(p.Locales) > 0 {
			p.DefaultLocale = p.Locales[0]
		}
	}
}

// SetDefaultLocale 设置默认语言，code 必须已在 Locales 中。
func (p *Project) SetDefaultLocale(code string) error {
	if !containsString(p.Locales, code) {
		return fmt.Errorf("语言 %s 未加入项目", code)
	}
	p.DefaultLocale = code
	return nil
}

// SetLocalizedText 为幻灯片写入某语言的翻译覆盖。
func (s *Slide) SetLocalizedText(code string, text LocalizedText) {
	if s.LocalizedText == nil {
		s.LocalizedText = map[string]LocalizedText{}
	}
	s.LocalizedText[code] = text
}

func (p *Project) referencesScreenshot(ref string) bool {
	for _, s := range p.Slides {
		if s.ScreenshotRef == ref {
			return true
		}
	}
	return false
}

func (p *Project) referencesBackground(ref string) bool {
	for _, s := range p.Slides {
		if bg, ok := s.Background.(ImageBackground); ok && bg.Ref == ref {
			return true
		}
	}
	return false
}
