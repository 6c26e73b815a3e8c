// Package export 把项目中的幻灯片渲染为商店尺寸的 PNG，并打包为 ZIP。
//
// 每次截取都基于独立的 layout.Result，语言只作为参数传入，不修改任何共享状态，
// 因此本地化导出不需要"切换语言再恢复"的步骤。同一批次内的截取严格顺序执行。
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/storeshot/assets"
	"github.com/ByLCY/storeshot/layout"
	"github.com/ByLCY/storeshot/locale"
	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
	"github.com/ByLCY/storeshot/renderer"
	"github.com/ByLCY/storeshot/validate"
)

// ErrExportFailed 包装批次中任一截取的失败。
var ErrExportFailed = errors.New("export failed")

// Assets 按引用读取截图与背景图，*assets.Store 满足该接口。
type Assets interface {
	Get(ctx context.Context, kind assets.Kind, ref string) ([]byte, error)
}

// Exporter 串联资源读取、尺寸校验、布局与渲染。
type Exporter struct {
	Renderer   renderer.Renderer
	Typesetter layout.Typesetter // 可为 nil，仅按换行符分行
	Assets     Assets
	Logger     *slog.Logger
}

// File 是单张导出结果。
type File struct {
	Name string
	Data []byte
}

// FileName 返回第 index 张（从 0 开始）幻灯片的文件名。
func FileName(index int) string { return fmt.Sprintf("screenshot-%d.png", index+1) }

func (e *Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// ProjectTarget 返回项目的截图 target 规格。
func ProjectTarget(p *model.Project) (registry.TargetSpec, error) {
	return registry.GetTargetSpec(p.ScreenshotTarget)
}

// CaptureSlide 渲染第 index 张幻灯片在 loc 语言下的 PNG，尺寸恰为 target 默认尺寸。
// loc 为空时使用幻灯片的基础文本。
func (e *Exporter) CaptureSlide(ctx context.Context, p *model.Project, target registry.TargetSpec, index int, loc string) ([]byte, error) {
	if e.Renderer == nil {
		return nil, fmt.Errorf("未配置渲染器")
	}
	if index < 0 || index >= len(p.Slides) {
		return nil, fmt.Errorf("幻灯片序号越界: %d", index)
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	slide := p.Slides[index]
	device, err := registry.GetActiveDeviceSpec(target.ID, slide.Device.Model)
	if err != nil {
		return nil, err
	}

	images, err := e.loadImages(ctx, slide)
	if err != nil {
		return nil, err
	}
	state := e.screenshotState(slide, target, device, images)

	opts := layout.BuildOptions{Scale: 1, Screenshot: state, Typesetter: e.Typesetter}
	if loc != "" {
		text := locale.Resolve(slide, loc, p.DefaultLocale)
		opts.Text = &text
	}
	res, err := layout.Build(slide, target, device, opts)
	if err != nil {
		return nil, err
	}
	out, err := e.Renderer.Render(ctx, res, images)
	if err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	return ensureSize(out, target.DefaultSize)
}

// loadImages 并发读取截图与背景图，两者互不依赖。
func (e *Exporter) loadImages(ctx context.Context, slide model.Slide) (renderer.ImageSet, error) {
	var shot, bg []byte
	bgRef := ""
	if b, ok := slide.Background.(model.ImageBackground); ok {
		bgRef = b.Ref
	}
	if (slide.HasScreenshot() || bgRef != "") && e.Assets == nil {
		return nil, fmt.Errorf("未配置资源存储")
	}

	g, gctx := errgroup.WithContext(ctx)
	if slide.HasScreenshot() {
		g.Go(func() error {
			data, err := e.Assets.Get(gctx, assets.KindScreenshot, slide.ScreenshotRef)
			if err != nil {
				return fmt.Errorf("读取截图 %s: %w", slide.ScreenshotRef, err)
			}
			shot = data
			return nil
		})
	}
	if bgRef != "" {
		g.Go(func() error {
			data, err := e.Assets.Get(gctx, assets.KindBackground, bgRef)
			if err != nil {
				return fmt.Errorf("读取背景图 %s: %w", bgRef, err)
			}
			bg = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := renderer.ImageSet{}
	if shot != nil {
		images[slide.ScreenshotRef] = shot
	}
	if bg != nil {
		images[bgRef] = bg
	}
	return images, nil
}

func (e *Exporter) screenshotState(slide model.Slide, target registry.TargetSpec, device registry.DeviceSpec, images renderer.ImageSet) layout.ScreenshotState {
	data, ok := images[slide.ScreenshotRef]
	if !slide.HasScreenshot() || !ok {
		return layout.ScreenshotNone
	}
	res, err := validate.ValidateImage(data, target, device)
	if err != nil {
		e.logger().Warn("截图无法读取", "slide", slide.ID, "err", err)
		return layout.ScreenshotUnreadable
	}
	if !res.IsCompatible {
		e.logger().Warn("截图尺寸不符", "slide", slide.ID, "size", res.Dimensions.String(),
			"override", slide.AllowMismatchedScreenshot)
		return layout.ScreenshotMismatch
	}
	return layout.ScreenshotOK
}

// ensureSize 保证 PNG 的像素尺寸恰为 size，不一致时重新采样。
func ensureSize(data []byte, size registry.Size) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("渲染结果无法解码: %w", err)
	}
	if cfg.Width == size.Width && cfg.Height == size.Height {
		return data, nil
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("渲染结果无法解码: %w", err)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportSlide 导出单张幻灯片。
func (e *Exporter) ExportSlide(ctx context.Context, p *model.Project, target registry.TargetSpec, index int) (File, error) {
	if err := target.Validate(); err != nil {
		return File{}, err
	}
	data, err := e.CaptureSlide(ctx, p, target, index, "")
	if err != nil {
		return File{}, fmt.Errorf("%w: %s: %w", ErrExportFailed, FileName(index), err)
	}
	return File{Name: FileName(index), Data: data}, nil
}

// ExportAll 按顺序导出全部幻灯片并打包为 ZIP。任一张失败则整体失败。
func (e *Exporter) ExportAll(ctx context.Context, p *model.Project, target registry.TargetSpec) ([]byte, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	files := make([]File, 0, len(p.Slides))
	for i := range p.Slides {
		data, err := e.CaptureSlide(ctx, p, target, i, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrExportFailed, FileName(i), err)
		}
		e.logger().Info("已截取", "file", FileName(i))
		files = append(files, File{Name: FileName(i), Data: data})
	}
	return writeArchive(files)
}

// ExportAllLocales 按 locales 顺序逐语言导出，每个语言一个子目录。
func (e *Exporter) ExportAllLocales(ctx context.Context, p *model.Project, target registry.TargetSpec, locales []string) ([]byte, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if len(locales) == 0 {
		return nil, fmt.Errorf("没有可导出的语言")
	}
	seen := map[string]bool{}
	for _, code := range locales {
		if code == "" {
			return nil, fmt.Errorf("语言代码为空")
		}
		if seen[code] {
			return nil, fmt.Errorf("重复的语言代码 %q", code)
		}
		seen[code] = true
	}

	files := make([]File, 0, len(p.Slides)*len(locales))
	for _, code := range locales {
		for i := range p.Slides {
			name := code + "/" + FileName(i)
			data, err := e.CaptureSlide(ctx, p, target, i, code)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrExportFailed, name, err)
			}
			e.logger().Info("已截取", "file", name, "locale", code)
			files = append(files, File{Name: name, Data: data})
		}
	}
	return writeArchive(files)
}
