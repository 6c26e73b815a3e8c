// Package locale 解析幻灯片在指定语言下实际渲染的文案。
package locale

import "github.com/ByLCY/storeshot/model"

// Text 是某语言下生效的标题与副标题。
type Text struct {
	Content    string
	SubCaption string
}

// Resolve 按 语言 → 默认语言 → 原文 的顺序取文案。
// 存在的覆盖项原样返回，即使内容为空字符串（表示尚未翻译）。
func Resolve(slide model.Slide, code, defaultLocale string) Text {
	base := Text{Content: slide.Text.Content, SubCaption: slide.Text.SubCaption}
	if code == "" || slide.LocalizedText == nil {
		return base
	}
	if lt, ok := slide.LocalizedText[code]; ok {
		return Text{Content: lt.Content, SubCaption: lt.SubCaption}
	}
	if defaultLocale != "" {
		if lt, ok := slide.LocalizedText[defaultLocale]; ok {
			return Text{Content: lt.Content, SubCaption: lt.SubCaption}
		}
	}
	return base
}

// Locale 是常用的 App Store 语言。
type Locale struct {
	Code string
	Name string
}

// CommonLocales 是添加语言时提供的候选列表。
var CommonLocales = []Locale{
	{"en-US", "English (US)"},
	{"en-GB", "English (UK)"},
	{"es-ES", "Spanish (Spain)"},
	{"es-MX", "Spanish (Mexico)"},
	{"fr-FR", "French"},
	{"de-DE", "German"},
	{"it-IT", "Italian"},
	{"pt-BR", "Portuguese (Brazil)"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh-Hans", "Chinese (Simplified)"},
	{"zh-Hant", "Chinese (Traditional)"},
	{"ar-SA", "Arabic"},
	{"nl-NL", "Dutch"},
	{"ru", "Russian"},
	{"tr", "Turkish"},
	{"hi", "Hindi"},
	{"th", "Thai"},
}

// Name 返回语言的显示名，未收录时返回 code 本身。
func Name(code string) string {
	for _, l := range CommonLocales {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
