// Package deck 把 deck 清单转换为规范化的 model.Project，并可把清单引用的
// 图片文件导入资源存储。
//
// 清单示例：
//
//	deck "Habit Tracker" {
//	  target: iphone-6_9
//	  locales: ["en-US", "de-DE"]
//	  default-locale: "en-US"
//
//	  slide {
//	    background gradient #667EEA #764BA2 135
//	    headline "Build better habits" { color: light }
//	    sub-caption "Track every day"
//	    device iphone-17-pro { angle: slight-left }
//	    screenshot "shots/home.png"
//	    localized "de-DE" { headline: "Bessere Gewohnheiten" }
//	  }
//	}
package deck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ByLCY/storeshot/assets"
	"github.com/ByLCY/storeshot/binding"
	"github.com/ByLCY/storeshot/dsl"
	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
	"github.com/ByLCY/storeshot/validate"
)

// Manifest 是解析后的清单：项目本身加上尚未导入的图片文件路径。
type Manifest struct {
	Project *model.Project
	// 幻灯片序号 → 清单中的文件路径（相对清单所在目录）
	Screenshots map[int]string
	Backgrounds map[int]string
}

// LoadFile 读取并解析清单文件。
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(path, f)
}

// Load 解析清单并返回规范化后的项目。
func Load(filename string, r io.Reader) (*Manifest, error) {
	doc, err := dsl.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("解析清单失败: %w", err)
	}
	return fromAST(doc)
}

func fromAST(doc *dsl.Deck) (*Manifest, error) {
	p := model.NewProject(string(doc.Name))
	p.Slides = nil
	m := &Manifest{Project: p, Screenshots: map[int]string{}, Backgrounds: map[int]string{}}

	for _, a := range doc.Body.Assignments() {
		switch a.Key {
		case "target":
			id := a.Value.Text()
			if !registry.IsSupportedTarget(id) {
				return nil, fmt.Errorf("%s: 未知的 target %q", a.Pos, id)
			}
			p.ScreenshotTarget = registry.TargetID(id)
		case "locales":
			for _, code := range a.Value.Strings() {
				if err := p.AddLocale(code); err != nil {
					return nil, fmt.Errorf("%s: %w", a.Pos, err)
				}
			}
		case "default-locale":
			p.DefaultLocale = a.Value.Text()
		default:
			return nil, fmt.Errorf("%s: 未知的设置 %q", a.Pos, a.Key)
		}
	}
	if p.DefaultLocale != "" && !slices.Contains(p.Locales, p.DefaultLocale) {
		return nil, fmt.Errorf("默认语言 %q 不在 locales 中", p.DefaultLocale)
	}

	for _, cmd := range doc.Body.Commands("") {
		if cmd.Name != "slide" {
			return nil, fmt.Errorf("%s: 未知的指令 %q", cmd.Pos, cmd.Name)
		}
		idx := len(p.Slides)
		slide, files, err := buildSlide(cmd.Block)
		if err != nil {
			return nil, fmt.Errorf("第 %d 张幻灯片: %w", idx+1, err)
		}
		p.Slides = append(p.Slides, slide)
		if files.screenshot != "" {
			m.Screenshots[idx] = files.screenshot
		}
		if files.background != "" {
			m.Backgrounds[idx] = files.background
		}
	}

	model.NormalizeProject(p)
	return m, nil
}

// Mismatch 是尺寸与 target 不符、且未设置 allow-mismatch 的截图。
type Mismatch struct {
	Slide  int // 从 1 开始
	Path   string
	Result validate.Result
}

// Import 把清单引用的截图与背景图写入资源存储，并把生成的 ref 写回项目。
// 相对路径以 baseDir 为基准。
//
// 截图在写入前按项目 target 校验：无法解码时返回 validate.ErrUnreadableImage；
// 尺寸不符的截图照常导入，通过返回值报告。出错时本次已写入的资源会被删除，项目保持不变。
func (m *Manifest) Import(ctx context.Context, baseDir string, store *assets.Store) (mismatches []Mismatch, err error) {
	target, err := registry.GetTargetSpec(m.Project.ScreenshotTarget)
	if err != nil {
		return nil, err
	}

	type blob struct {
		kind assets.Kind
		ref  string
	}
	var written []blob
	defer func() {
		if err == nil {
			return
		}
		for _, b := range written {
			if derr := store.Delete(context.WithoutCancel(ctx), b.kind, b.ref); derr != nil {
				err = errors.Join(err, fmt.Errorf("清理资源 %s: %w", b.ref, derr))
			}
		}
	}()
	save := func(kind assets.Kind, data []byte) (string, error) {
		ref, err := store.Save(ctx, kind, data)
		if err != nil {
			return "", err
		}
		written = append(written, blob{kind, ref})
		return ref, nil
	}
	load := func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return os.ReadFile(path)
	}

	shots := make(map[int]string, len(m.Screenshots))
	for _, idx := range sortedKeys(m.Screenshots) {
		path := m.Screenshots[idx]
		data, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("读取截图: %w", err)
		}
		slide := m.Project.Slides[idx]
		device, err := registry.GetActiveDeviceSpec(target.ID, slide.Device.Model)
		if err != nil {
			return nil, fmt.Errorf("第 %d 张幻灯片: %w", idx+1, err)
		}
		res, err := validate.ValidateImage(data, target, device)
		if err != nil {
			return nil, fmt.Errorf("第 %d 张幻灯片截图 %s: unreadable image, please upload another screenshot: %w", idx+1, path, err)
		}
		if !res.IsCompatible && !slide.AllowMismatchedScreenshot {
			mismatches = append(mismatches, Mismatch{Slide: idx + 1, Path: path, Result: res})
		}
		if shots[idx], err = save(assets.KindScreenshot, data); err != nil {
			return nil, err
		}
	}
	bgs := make(map[int]string, len(m.Backgrounds))
	for _, idx := range sortedKeys(m.Backgrounds) {
		data, err := load(m.Backgrounds[idx])
		if err != nil {
			return nil, fmt.Errorf("读取背景图: %w", err)
		}
		if bgs[idx], err = save(assets.KindBackground, data); err != nil {
			return nil, err
		}
	}

	for idx, ref := range shots {
		m.Project.Slides[idx].ScreenshotRef = ref
	}
	for idx, ref := range bgs {
		bg, _ := m.Project.Slides[idx].Background.(model.ImageBackground)
		bg.Ref = ref
		m.Project.Slides[idx].Background = bg
	}
	return mismatches, nil
}

// Bind 用 data 展开全部文案（标题、副标题、各语言覆盖）中的 ${path} 占位符。
func (m *Manifest) Bind(data any) error {
	for i := range m.Project.Slides {
		s := &m.Project.Slides[i]
		fields := []*string{&s.Text.Content, &s.Text.SubCaption}
		for code, lt := range s.LocalizedText {
			content, err := binding.Expand(lt.Content, data)
			if err != nil {
				return fmt.Errorf("第 %d 张幻灯片 %s: %w", i+1, code, err)
			}
			sub, err := binding.Expand(lt.SubCaption, data)
			if err != nil {
				return fmt.Errorf("第 %d 张幻灯片 %s: %w", i+1, code, err)
			}
			s.LocalizedText[code] = model.LocalizedText{Content: content, SubCaption: sub}
		}
		for _, f := range fields {
			out, err := binding.Expand(*f, data)
			if err != nil {
				return fmt.Errorf("第 %d 张幻灯片: %w", i+1, err)
			}
			*f = out
		}
	}
	return nil
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LocaleCodes 拆分逗号分隔的语言列表，去掉空项。
func LocaleCodes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
