// Package validate 检查上传截图的像素尺寸是否属于当前 target 的尺寸族。
package validate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	// 注册可识别的截图格式
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/ByLCY/storeshot/registry"
)

// ErrUnreadableImage 表示无法从图片中读取像素尺寸，需要用户重新上传。
var ErrUnreadableImage = errors.New("unreadable screenshot")

// AspectTolerance 是宽高比匹配允许的最大差值（含边界）。
const AspectTolerance = 0.02

// 浮点误差余量，保证十进制恰好 0.02 的差值被接受。
const aspectEpsilon = 1e-9

// Result 是一次尺寸校验的结论。
type Result struct {
	Dimensions    registry.Size   `json:"dimensions"`
	ExpectedSizes []registry.Size `json:"expectedSizes"`
	IsCompatible  bool            `json:"isCompatible"`
	Message       string          `json:"message,omitempty"`
}

// ExpectedSizes 返回参与比较的尺寸：target 的可接受尺寸，
// 手机 target 额外并入当前外框屏幕区域的尺寸（若尚未包含）。
func ExpectedSizes(target registry.TargetSpec, device registry.DeviceSpec) []registry.Size {
	sizes := append([]registry.Size(nil), target.AcceptedSizes...)
	if target.Class != registry.ClassPhone {
		return sizes
	}
	screen := device.Screen.Size()
	for _, s := range sizes {
		if s == screen {
			return sizes
		}
	}
	return append(sizes, screen)
}

// Validate 按 target id 与外框 model 校验尺寸。
// 只有未知的 target / model 才返回错误，尺寸不符通过 Result 表达。
func Validate(dims registry.Size, target registry.TargetID, model registry.DeviceModel) (Result, error) {
	spec, err := registry.GetTargetSpec(target)
	if err != nil {
		return Result{}, err
	}
	device, err := registry.GetActiveDeviceSpec(target, model)
	if err != nil {
		return Result{}, err
	}
	return Check(dims, spec, device), nil
}

// Check 是 Validate 的纯函数核心，直接接收规格。
func Check(dims registry.Size, target registry.TargetSpec, device registry.DeviceSpec) Result {
	expected := ExpectedSizes(target, device)
	res := Result{Dimensions: dims, ExpectedSizes: expected}

	if matchesExactly(dims, expected) || aspectDelta(dims, expected) <= AspectTolerance+aspectEpsilon {
		res.IsCompatible = true
		return res
	}

	labels := make([]string, len(expected))
	for i, s := range expected {
		labels[i] = s.String()
	}
	res.Message = fmt.Sprintf("This screenshot is %s. Upload a %s screenshot (%s).",
		dims, target.Class.Label(), strings.Join(labels, ", "))
	return res
}

func matchesExactly(dims registry.Size, expected []registry.Size) bool {
	for _, s := range expected {
		if s == dims {
			return true
		}
	}
	return false
}

// aspectDelta 返回上传尺寸与各期望尺寸宽高比之差的最小值。
func aspectDelta(dims registry.Size, expected []registry.Size) float64 {
	if dims.Width <= 0 || dims.Height <= 0 {
		return math.Inf(1)
	}
	uploaded := dims.AspectRatio()
	best := math.Inf(1)
	for _, s := range expected {
		if d := math.Abs(uploaded - s.AspectRatio()); d < best {
			best = d
		}
	}
	return best
}

// ReadDimensions 只解码图片头部读取像素尺寸。
func ReadDimensions(data []byte) (registry.Size, error) {
	if len(data) == 0 {
		return registry.Size{}, fmt.Errorf("%w: 数据为空", ErrUnreadableImage)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return registry.Size{}, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return registry.Size{}, fmt.Errorf("%w: 尺寸为 %dx%d", ErrUnreadableImage, cfg.Width, cfg.Height)
	}
	return registry.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

// ValidateImage 读取图片尺寸并校验。无法解码时返回 ErrUnreadableImage。
func ValidateImage(data []byte, target registry.TargetSpec, device registry.DeviceSpec) (Result, error) {
	dims, err := ReadDimensions(data)
	if err != nil {
		return Result{}, err
	}
	return Check(dims, target, device), nil
}
