package deck

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/storeshot/assets"
	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
	"github.com/ByLCY/storeshot/validate"
)

const sample = `
deck "Habit Tracker" {
  target: ipad-13
  locales: ["en-US", "de-DE"]
  default-locale: "de-DE"

  slide {
    background gradient #667EEA #764BA2 135
    headline "Build better habits" {
      font: poppins
      size: 120
      color: white
      align: left
      vertical: 20
    }
    sub-caption "Track every day" { size: 50 }
    device iphone-15-pro-max { angle: dramatic-right; scale: 70; off-canvas: true; horizontal: -10 }
    screenshot "shots/home.png" { allow-mismatch: true }
    localized "de-DE" {
      headline: "Bessere Gewohnheiten"
      sub-caption: ""
    }
  }

  slide {
    background image "bg.png" blur 12
  }

  slide {
    background preset "sunset"
  }
}
`

func TestLoadManifest(t *testing.T) {
	m, err := Load("sample.deck", strings.NewReader(sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := m.Project
	if p.Name != "Habit Tracker" || p.ScreenshotTarget != registry.TargetIPad13 {
		t.Fatalf("project header: %s %s", p.Name, p.ScreenshotTarget)
	}
	if len(p.Locales) != 2 || p.DefaultLocale != "de-DE" {
		t.Fatalf("locales=%v default=%s", p.Locales, p.DefaultLocale)
	}
	if len(p.Slides) != 3 {
		t.Fatalf("slides=%d", len(p.Slides))
	}

	s := p.Slides[0]
	g, ok := s.Background.(model.GradientBackground)
	if !ok || g.Colors[0] != "#667EEA" || g.Direction != 135 {
		t.Fatalf("background=%#v", s.Background)
	}
	if s.Text.Font != model.FontPoppins || s.Text.Size != 120 || s.Text.Color != model.TextLight || s.Text.Align != model.AlignLeft {
		t.Fatalf("text=%+v", s.Text)
	}
	if !s.Text.ShowSubCaption || s.Text.SubCaption != "Track every day" || s.Text.SubCaptionSize != 50 {
		t.Fatalf("sub-caption=%+v", s.Text)
	}
	// 副标题字体跟随标题
	if s.Text.SubCaptionFont != model.FontPoppins {
		t.Fatalf("sub-caption font=%s", s.Text.SubCaptionFont)
	}
	// 旧外框 id 在规范化时重新映射
	if s.Device.Model != registry.ModelIPhone16Pro || s.Device.Angle != model.AngleDramaticRight {
		t.Fatalf("device=%+v", s.Device)
	}
	if !s.Device.AllowOffCanvasPosition || s.Device.HorizontalPosition != -10 || s.Device.FrameScale != 70 {
		t.Fatalf("device=%+v", s.Device)
	}
	if !s.AllowMismatchedScreenshot || s.HasScreenshot() {
		t.Fatalf("screenshot flags: %+v", s)
	}
	lt, ok := s.LocalizedText["de-DE"]
	if !ok || lt.Content != "Bessere Gewohnheiten" || lt.SubCaption != "" {
		t.Fatalf("localized=%+v", s.LocalizedText)
	}
	if m.Screenshots[0] != "shots/home.png" {
		t.Fatalf("screenshots=%v", m.Screenshots)
	}

	img, ok := p.Slides[1].Background.(model.ImageBackground)
	if !ok || img.Blur != 12 || img.Ref != "" || m.Backgrounds[1] != "bg.png" {
		t.Fatalf("image background=%#v files=%v", p.Slides[1].Background, m.Backgrounds)
	}
	if sunset, ok := p.Slides[2].Background.(model.GradientBackground); !ok || sunset.Colors[0] != "#FA709A" {
		t.Fatalf("preset=%#v", p.Slides[2].Background)
	}
	// 未写 headline 的幻灯片保留默认文案
	if p.Slides[1].Text.Content != model.DefaultHeadline {
		t.Fatalf("default headline=%q", p.Slides[1].Text.Content)
	}
}

func TestLoadRejectsInvalidManifest(t *testing.T) {
	cases := map[string]string{
		"unknown target":   `deck "x" { target: android }`,
		"unknown setting":  `deck "x" { theme: dark }`,
		"default locale":   `deck "x" { locales: ["en"]; default-locale: "fr" }`,
		"duplicate locale": `deck "x" { locales: ["en", "en"] }`,
		"unknown command":  `deck "x" { page { } }`,
		"unknown device":   "deck \"x\" {\n slide { device pixel-9 }\n}",
		"bad angle":        "deck \"x\" {\n slide { device { angle: upside-down } }\n}",
		"bad font":         "deck \"x\" {\n slide { headline \"a\" { font: comic-sans } }\n}",
		"bad background":   "deck \"x\" {\n slide { background plaid }\n}",
		"bad preset":       "deck \"x\" {\n slide { background preset \"nope\" }\n}",
		"screenshot ident": "deck \"x\" {\n slide { screenshot home }\n}",
		"syntax":           `deck "x" {`,
	}
	for name, src := range cases {
		if _, err := Load(name, strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEmptyDeckGetsDefaultSlide(t *testing.T) {
	m, err := Load("", strings.NewReader(`deck "empty" {}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Project.Slides) != 1 || m.Project.ScreenshotTarget != registry.DefaultTarget {
		t.Fatalf("project=%+v", m.Project)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportStoresFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "shots", "home.png"), 20, 40)
	writePNG(t, filepath.Join(dir, "bg.png"), 8, 8)

	m, err := Load("", strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	store := assets.NewStore(assets.NewMemory(), nil)
	ctx := context.Background()
	mismatches, err := m.Import(ctx, dir, store)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("allow-mismatch slide reported: %+v", mismatches)
	}
	shot := m.Project.Slides[0].ScreenshotRef
	if shot == "" {
		t.Fatalf("screenshot ref not set")
	}
	if _, err := store.Get(ctx, assets.KindScreenshot, shot); err != nil {
		t.Fatalf("stored screenshot: %v", err)
	}
	bg := m.Project.Slides[1].Background.(model.ImageBackground)
	if !strings.HasPrefix(bg.Ref, "bg-image-") || bg.Blur != 12 {
		t.Fatalf("background=%+v", bg)
	}
	if _, err := store.Get(ctx, assets.KindBackground, bg.Ref); err != nil {
		t.Fatalf("stored background: %v", err)
	}
}

func TestImportMissingFile(t *testing.T) {
	m, err := Load("", strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Import(context.Background(), t.TempDir(), assets.NewStore(assets.NewMemory(), nil)); err == nil {
		t.Fatalf("expected missing file error")
	}
}

const twoShots = `
deck "Shots" {
  slide { screenshot "a.png" }
  slide { screenshot "b.png" }
}
`

func TestImportReportsMismatchedScreenshots(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 1290, 2796)
	writePNG(t, filepath.Join(dir, "b.png"), 500, 500)

	m, err := Load("", strings.NewReader(twoShots))
	if err != nil {
		t.Fatal(err)
	}
	mismatches, err := m.Import(context.Background(), dir, assets.NewStore(assets.NewMemory(), nil))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(mismatches) != 1 || mismatches[0].Slide != 2 || mismatches[0].Path != "b.png" {
		t.Fatalf("mismatches=%+v", mismatches)
	}
	if !strings.Contains(mismatches[0].Result.Message, "This screenshot is 500 x 500.") {
		t.Fatalf("message=%q", mismatches[0].Result.Message)
	}
	// 尺寸不符不阻止导入
	if !m.Project.Slides[1].HasScreenshot() {
		t.Fatalf("mismatched screenshot should still be stored")
	}
}

func TestImportRejectsUnreadableScreenshot(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 1290, 2796)
	if err := os.WriteFile(filepath.Join(dir, "b.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load("", strings.NewReader(twoShots))
	if err != nil {
		t.Fatal(err)
	}
	mem := assets.NewMemory()
	_, err = m.Import(context.Background(), dir, assets.NewStore(mem, nil))
	if !errors.Is(err, validate.ErrUnreadableImage) {
		t.Fatalf("err=%v, want ErrUnreadableImage", err)
	}
	if !strings.Contains(err.Error(), "please upload another screenshot") {
		t.Fatalf("err=%v", err)
	}
	// 第一张已写入的截图应被清理，项目不引用任何资源
	if keys := mem.Keys(); len(keys) != 0 {
		t.Fatalf("leftover blobs: %v", keys)
	}
	if m.Project.Slides[0].HasScreenshot() {
		t.Fatalf("failed import must not set refs")
	}
}

func TestLocaleCodes(t *testing.T) {
	got := LocaleCodes(" en-US, ,de-DE,")
	if len(got) != 2 || got[0] != "en-US" || got[1] != "de-DE" {
		t.Fatalf("got %v", got)
	}
}

func TestBindExpandsPlaceholders(t *testing.T) {
	src := "deck \"x\" {\n slide {\n  headline \"Meet ${app.name}\"\n  sub-caption \"${app.tagline}\"\n  localized \"de\" { headline: \"Hallo ${app.name}\" }\n }\n}"
	m, err := Load("", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	data := map[string]any{"app": map[string]any{"name": "Habits", "tagline": "Daily"}}
	if err := m.Bind(data); err != nil {
		t.Fatal(err)
	}
	s := m.Project.Slides[0]
	if s.Text.Content != "Meet Habits" || s.Text.SubCaption != "Daily" || s.LocalizedText["de"].Content != "Hallo Habits" {
		t.Fatalf("text=%+v localized=%+v", s.Text, s.LocalizedText)
	}
	if err := m.Bind(map[string]any{}); err != nil {
		t.Fatalf("already expanded text should bind cleanly: %v", err)
	}

	m2, _ := Load("", strings.NewReader(src))
	if err := m2.Bind(nil); err == nil {
		t.Fatalf("expected undefined variable error")
	}
}
