package validate

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/ByLCY/storeshot/registry"
)

func phone(t *testing.T) (registry.TargetSpec, registry.DeviceSpec) {
	t.Helper()
	target := registry.MustTargetSpec(registry.TargetIPhone69)
	device, err := registry.GetActiveDeviceSpec(target.ID, registry.ModelIPhone17Pro)
	if err != nil {
		t.Fatal(err)
	}
	return target, device
}

func TestExactMatch(t *testing.T) {
	for _, id := range []registry.DeviceModel{registry.ModelIPhone17Pro, registry.ModelIPhone16Pro} {
		res, err := Validate(registry.Size{Width: 1290, Height: 2796}, registry.TargetIPhone69, id)
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsCompatible || res.Message != "" {
			t.Fatalf("%s: 精确匹配应通过: %+v", id, res)
		}
	}
}

func TestExpectedSizesIncludeDeviceScreen(t *testing.T) {
	target, device := phone(t)
	sizes := ExpectedSizes(target, device)
	if len(sizes) != 4 || sizes[3] != (registry.Size{Width: 1206, Height: 2622}) {
		t.Fatalf("sizes: %v", sizes)
	}
	if target.AcceptedSizes[0] != sizes[0] || len(target.AcceptedSizes) != 3 {
		t.Fatalf("不应修改 target 的可接受尺寸")
	}

	tablet := registry.MustTargetSpec(registry.TargetIPad13)
	tdev, _ := registry.GetActiveDeviceSpec(tablet.ID, "")
	if got := ExpectedSizes(tablet, tdev); len(got) != 2 {
		t.Fatalf("平板不应并入外框尺寸: %v", got)
	}
}

func TestAspectTolerance(t *testing.T) {
	target, device := phone(t)
	cases := []struct {
		size registry.Size
		want bool
	}{
		{registry.Size{Width: 1289, Height: 2795}, true},
		{registry.Size{Width: 1206, Height: 2622}, true},
		{registry.Size{Width: 481, Height: 1000}, true},
		{registry.Size{Width: 482, Height: 1000}, false},
		{registry.Size{Width: 440, Height: 1000}, true},
		{registry.Size{Width: 439, Height: 1000}, false},
		{registry.Size{Width: 1080, Height: 1920}, false},
		{registry.Size{Width: 0, Height: 0}, false},
	}
	for _, c := range cases {
		if got := Check(c.size, target, device).IsCompatible; got != c.want {
			t.Errorf("%s: got %v want %v", c.size, got, c.want)
		}
	}
}

func TestToleranceBoundaryIsInclusive(t *testing.T) {
	expected := []registry.Size{{Width: 1, Height: 2}}
	// 13/25 = 0.52，与 0.5 恰好相差 0.02
	if d := aspectDelta(registry.Size{Width: 13, Height: 25}, expected); d > AspectTolerance+aspectEpsilon {
		t.Fatalf("边界差值应被接受: %v", d)
	}
	if d := aspectDelta(registry.Size{Width: 521, Height: 1000}, expected); d <= AspectTolerance+aspectEpsilon {
		t.Fatalf("超出容差应被拒绝: %v", d)
	}
}

func TestMismatchMessage(t *testing.T) {
	target, device := phone(t)
	res := Check(registry.Size{Width: 1080, Height: 1920}, target, device)
	if res.IsCompatible {
		t.Fatalf("应不兼容")
	}
	if !strings.Contains(res.Message, "1320 x 2868, 1290 x 2796, 1260 x 2736") {
		t.Fatalf("message: %q", res.Message)
	}
	if !strings.HasPrefix(res.Message, "This screenshot is 1080 x 1920. Upload a iPhone screenshot") {
		t.Fatalf("message: %q", res.Message)
	}

	res, err := Validate(registry.Size{Width: 1000, Height: 1000}, registry.TargetIPad13, registry.ModelIPhone17Pro)
	if err != nil {
		t.Fatal(err)
	}
	want := "This screenshot is 1000 x 1000. Upload a iPad screenshot (2064 x 2752, 2048 x 2732)."
	if res.Message != want {
		t.Fatalf("got %q\nwant %q", res.Message, want)
	}
}

func TestUnknownTarget(t *testing.T) {
	if _, err := Validate(registry.Size{Width: 1, Height: 1}, "watch", ""); !errors.Is(err, registry.ErrUnknownTarget) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateImage(t *testing.T) {
	target, device := phone(t)
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 603, 1311))); err != nil {
		t.Fatal(err)
	}
	res, err := ValidateImage(buf.Bytes(), target, device)
	if err != nil {
		t.Fatal(err)
	}
	if res.Dimensions != (registry.Size{Width: 603, Height: 1311}) || !res.IsCompatible {
		t.Fatalf("res: %+v", res)
	}

	if _, err := ValidateImage([]byte("not an image"), target, device); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("损坏图片应返回 ErrUnreadableImage, got %v", err)
	}
}
