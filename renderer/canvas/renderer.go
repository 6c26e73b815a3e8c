package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/storeshot/fonts"
	"github.com/ByLCY/storeshot/layout"
	"github.com/ByLCY/storeshot/renderer"
)

// Renderer composes layout results into PNG bitmaps via github.com/tdewolff/canvas
// (text) and imaging (raster layers).
type Renderer struct {
	frameDir string
	fonts    fonts.Source
	logger   *slog.Logger

	// injected frame artwork, keyed by DeviceSpec.FrameSrc
	frameBlobs map[string][]byte

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily

	frameMu    sync.Mutex
	frameCache map[string]image.Image
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options 为渲染器注入外框与字体资源，均可为空。
type Options struct {
	FrameDir string              // directory holding device frame PNGs
	FontDir  string              // directory holding <font>-<Weight>.ttf files
	Frames   map[string]Resource // frame artwork by FrameSrc, takes precedence over FrameDir
	Logger   *slog.Logger
}

// Resource 优先使用 Bytes，否则读取 Path。
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer that falls back to built-in fonts and drawn frames.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		frameDir:     opts.FrameDir,
		fonts:        fonts.Source{Dir: opts.FontDir},
		logger:       opts.Logger,
		frameBlobs:   map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
		frameCache:   map[string]image.Image{},
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for name, res := range opts.Frames {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.frameBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // ignore error here; missing frames are drawn programmatically
			if len(data) > 0 {
				r.frameBlobs[name] = data
			}
		}
	}
	return r
}

// Render 合成一张幻灯片并编码为 PNG。
// 图层顺序：背景 → 设备投影 → 设备（截图、外框） → 文字。
func (r *Renderer) Render(ctx context.Context, result *layout.Result, images renderer.ImageSet) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	w, h := round(result.Canvas.Width), round(result.Canvas.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("画布尺寸非法: %dx%d", w, h)
	}

	base := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := r.paintBackground(base, result.Background, images); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.drawDevice(base, result.Device, images); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.drawTexts(base, result.Texts); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, base, imaging.PNG); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) paintBackground(dst *image.NRGBA, bg layout.Background, images renderer.ImageSet) error {
	fillSolid(dst, toColor(bg.Color, 1))
	switch bg.Kind {
	case layout.BackgroundGradient:
		paintGradient(dst, bg.Gradient, layout.Point{})
	case layout.BackgroundImage:
		if bg.Image == nil {
			return nil
		}
		data, ok := images[bg.Image.Ref]
		if !ok {
			return fmt.Errorf("缺少背景图 %s", bg.Image.Ref)
		}
		src, err := decodeImage(data)
		if err != nil {
			return fmt.Errorf("背景图 %s: %w", bg.Image.Ref, err)
		}
		b := dst.Bounds()
		img := coverFit(src, b.Dx(), b.Dy())
		if bg.Image.Blur > 0 {
			img = imaging.Blur(img, bg.Image.Blur)
		}
		drawOver(dst, img, image.Point{})
	}
	return nil
}

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 约定：width/fontSize/lineHeight 均为像素；创建字体面时按 px→pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font string, weight int, fontSize, lineHeight float64) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, weight, fontSize, layout.Color{}, 1)
	if err != nil {
		return nil, err
	}
	lines := greedyWrapTokens(content, width, face)
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: ""}}
	}
	for i := range lines {
		lines[i].Height = lineHeight
		lines[i].GapBefore = 0
	}
	return lines, nil
}

func (r *Renderer) drawTexts(dst *image.NRGBA, boxes []layout.TextBox) error {
	if len(boxes) == 0 {
		return nil
	}
	b := dst.Bounds()
	for _, tb := range boxes {
		if tb.Shadow == nil {
			continue
		}
		sh := *tb.Shadow
		shadowBox := tb
		shadowBox.X += sh.OffsetX
		shadowBox.Y += sh.OffsetY
		shadowBox.Color = sh.Color
		shadowBox.Opacity = sh.Opacity * tb.Opacity
		layer, err := r.rasterizeText(b.Dx(), b.Dy(), []layout.TextBox{shadowBox})
		if err != nil {
			return err
		}
		if sh.Blur > 0 {
			drawOver(dst, imaging.Blur(layer, sh.Blur/2), image.Point{})
		} else {
			drawOver(dst, layer, image.Point{})
		}
	}
	layer, err := r.rasterizeText(b.Dx(), b.Dy(), boxes)
	if err != nil {
		return err
	}
	drawOver(dst, layer, image.Point{})
	return nil
}

// rasterizeText 将文本框绘制到透明图层。坐标与布局一致，左上角为原点。
func (r *Renderer) rasterizeText(w, h int, boxes []layout.TextBox) (*image.NRGBA, error) {
	c := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	for _, tb := range boxes {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return nil, err
		}
	}
	return imaging.Clone(rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)), nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	face, err := r.fontFace(tb.Font, tb.Weight, tb.FontSize, tb.Color, tb.Opacity)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	metrics := face.Metrics()
	content := metrics.Ascent + math.Abs(metrics.Descent)
	cursorY := tb.Y
	for _, line := range lines {
		cursorY += line.GapBefore
		lineHeight := line.Height
		if lineHeight <= 0 {
			lineHeight = tb.LineHeight
		}
		// 字形在行盒内垂直居中（半行距）
		baseline := cursorY + (lineHeight-content)/2 + metrics.Ascent
		ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line.Content, textAlign))
		cursorY += lineHeight
	}
	return nil
}

// fontFace 返回指定字体、字重与像素字号的字体面。
func (r *Renderer) fontFace(font string, weight int, sizePx float64, col layout.Color, opacity float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font, weight)
	if err != nil {
		return nil, err
	}
	return family.Face(layout.PxToPt(sizePx), toColor(col, opacity), canvas.FontRegular, canvas.FontNormal), nil
}

// ensureFontFamily 每个 (字体, 字重) 加载为一个独立的 family。
func (r *Renderer) ensureFontFamily(font string, weight int) (*canvas.FontFamily, error) {
	key := fmt.Sprintf("%s|%s", font, fonts.WeightName(weight))
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}
	data, fromDir, err := r.fonts.Load(font, weight)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(key)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		if !fromDir {
			return nil, fmt.Errorf("加载内置字体失败: %w", err)
		}
		r.logger.Warn("字体文件无法解析，改用内置字体", "font", font, "error", err)
		family = canvas.NewFontFamily(key + "|builtin")
		if err := family.LoadFont(fonts.Builtin(weight), 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载内置字体失败: %w", err)
		}
	}
	r.fontFamilies[key] = family
	return family, nil
}

func greedyWrapTokens(content string, width float64, face *canvas.FontFace) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	tokens := tokenizeContent(content)
	var lines []layout.TextLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		line := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		builder.Reset()
		currentWidth = 0
		if line == "" && !force {
			return
		}
		lines = append(lines, layout.TextLine{Content: line, Width: face.TextWidth(line)})
	}

	appendToken := func(token string) {
		// 行首空白折叠
		if builder.Len() == 0 && strings.TrimSpace(token) == "" {
			return
		}
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}

		tokenWidth := face.TextWidth(token)
		isSpace := strings.TrimSpace(token) == ""
		if !isSpace && currentWidth > 0 && currentWidth+tokenWidth > limit {
			emit(false)
		}
		if tokenWidth <= limit || isSpace {
			appendToken(token)
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
		}
	}

	emit(true)
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}

func (r *Renderer) frameImage(src string) (image.Image, error) {
	if src == "" {
		return nil, nil
	}
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	if img, ok := r.frameCache[src]; ok {
		return img, nil
	}
	data, ok := r.frameBlobs[src]
	if !ok && r.frameDir != "" {
		var err error
		data, err = os.ReadFile(filepath.Join(r.frameDir, filepath.FromSlash(strings.TrimPrefix(src, "/"))))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取外框 %s 失败: %w", src, err)
		}
	}
	var img image.Image
	if len(data) > 0 {
		decoded, err := decodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("外框 %s: %w", src, err)
		}
		img = decoded
	} else {
		r.logger.Debug("未找到外框素材，使用绘制外框", "frame", src)
	}
	r.frameCache[src] = img
	return img, nil
}
