package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/storeshot/dsl"
)

const sampleDeck = `
// 应用商店截图
deck "Habit Tracker" {
  target: iphone-6_9
  locales: ["en-US", "de-DE"]
  default-locale: "en-US"

  slide {
    background gradient #667EEA #764BA2 135
    headline "Build better habits" {
      size: 96
      color: light
      vertical: 12%
    }
    /* 副标题 */
    sub-caption "Track every day"
    device iphone-17-pro { angle: slight-left; scale: 60 }
    screenshot "shots/home.png"
    localized "de-DE" {
      headline: "Bessere Gewohnheiten"
    }
  }

  slide {
    background solid #FFF
    device iphone-16-pro {
      off-canvas: true
      horizontal: -10
    }
  }
}
`

func TestParseDeck(t *testing.T) {
	d, err := dsl.ParseString(sampleDeck)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if d.Name != "Habit Tracker" {
		t.Fatalf("expected deck name, got %s", d.Name)
	}

	settings := d.Body.Assignments()
	if len(settings) != 3 {
		t.Fatalf("expected 3 settings, got %d", len(settings))
	}
	if settings[0].Key != "target" || settings[0].Value.Text() != "iphone-6_9" {
		t.Fatalf("unexpected target: %+v", settings[0])
	}
	if got := settings[1].Value.Strings(); strings.Join(got, ",") != "en-US,de-DE" {
		t.Fatalf("unexpected locales: %v", got)
	}

	slides := d.Body.Commands("slide")
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	first := slides[0].Block
	bg := first.Commands("background")
	if len(bg) != 1 || len(bg[0].Args) != 4 {
		t.Fatalf("unexpected background: %+v", bg)
	}
	if bg[0].Args[1].Type != "Color" || bg[0].Args[3].Value != "135" {
		t.Fatalf("unexpected background args: %+v", bg[0].Args)
	}

	headline := first.Commands("headline")[0]
	if headline.Args[0].Type != "String" || headline.Args[0].Value != "Build better habits" {
		t.Fatalf("unexpected headline args: %+v", headline.Args)
	}
	assigns := headline.Block.Assignments()
	if len(assigns) != 3 {
		t.Fatalf("expected 3 headline settings, got %d", len(assigns))
	}
	if v, err := assigns[2].Value.Float(); err != nil || v != 12 {
		t.Fatalf("vertical=%v err=%v", v, err)
	}

	device := first.Commands("device")[0]
	if device.Args[0].Value != "iphone-17-pro" || len(device.Block.Assignments()) != 2 {
		t.Fatalf("unexpected device: %+v", device)
	}

	loc := first.Commands("localized")[0]
	if loc.Args[0].Value != "de-DE" || loc.Block.Assignments()[0].Value.Text() != "Bessere Gewohnheiten" {
		t.Fatalf("unexpected localized block: %+v", loc)
	}

	second := slides[1].Block.Commands("device")[0].Block.Assignments()
	if on, err := second[0].Value.Bool(); err != nil || !on {
		t.Fatalf("off-canvas=%v err=%v", on, err)
	}
	if v, err := second[1].Value.Float(); err != nil || v != -10 {
		t.Fatalf("horizontal=%v err=%v", v, err)
	}
}

func TestParseDeckSyntaxError(t *testing.T) {
	if _, err := dsl.ParseString(`deck "x" { slide { `); err == nil {
		t.Fatalf("expected syntax error for unterminated block")
	}
	if _, err := dsl.ParseString(`deck x {}`); err == nil {
		t.Fatalf("deck name must be a string")
	}
	if _, err := dsl.ParseString("deck \"x\" {\n  \"stray text\"\n}"); err == nil {
		t.Fatalf("bare string statements are not allowed")
	}
}

func TestValueHelpers(t *testing.T) {
	if _, err := dsl.ParseNumber("abc"); err == nil {
		t.Fatalf("expected invalid number")
	}
	if n, _ := dsl.ParseNumber("42%"); n != 42 {
		t.Fatalf("n=%v", n)
	}
	var v *dsl.Value
	if v.Text() != "" || v.Strings() != nil {
		t.Fatalf("nil value helpers")
	}
}
