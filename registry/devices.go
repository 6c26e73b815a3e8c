package registry

import (
	"errors"
	"fmt"
)

var ErrUnknownDevice = errors.New("unknown device model")

// DeviceModel 标识一个设备外框模型。
type DeviceModel string

const (
	ModelIPhone17Pro DeviceModel = "iphone-17-pro"
	ModelIPhone16Pro DeviceModel = "iphone-16-pro"
	ModelIPadPro13   DeviceModel = "ipad-pro-13"
)

// DefaultPhoneModel 是手机 target 下的默认外框。
const DefaultPhoneModel = ModelIPhone17Pro

// Rect 是外框图片内的像素矩形。
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size 返回矩形的宽高。
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// DeviceSpec 描述预渲染外框素材的几何信息。
// Screen 为截图合成区域，坐标相对外框图片左上角。
type DeviceSpec struct {
	Model       DeviceModel `json:"model"`
	Name        string      `json:"name"`
	Class       DeviceClass `json:"class"`
	FrameSrc    string      `json:"frameSrc"`
	FrameWidth  int         `json:"frameWidth"`
	FrameHeight int         `json:"frameHeight"`
	Screen      Rect        `json:"screen"`
	// 截图裁剪圆角 = screen.width × ScreenCornerRadiusRatio
	ScreenCornerRadiusRatio float64 `json:"screenCornerRadiusRatio"`
	// 外框整体裁剪圆角 = frameWidth × BodyRadiusRatio
	BodyRadiusRatio float64 `json:"bodyRadiusRatio"`
}

// AspectRatio 返回外框素材的 高/宽。
func (d DeviceSpec) AspectRatio() float64 {
	if d.FrameWidth == 0 {
		return 0
	}
	return float64(d.FrameHeight) / float64(d.FrameWidth)
}

func (d DeviceSpec) validate() error {
	s := d.Screen
	if d.FrameWidth <= 0 || d.FrameHeight <= 0 {
		return fmt.Errorf("外框 %s 尺寸非法", d.Model)
	}
	if s.X < 0 || s.Y < 0 || s.Width <= 0 || s.Height <= 0 || s.X+s.Width > d.FrameWidth || s.Y+s.Height > d.FrameHeight {
		return fmt.Errorf("外框 %s 的屏幕区域超出外框范围", d.Model)
	}
	return nil
}

var phoneSpecs = []DeviceSpec{
	{
		Model:                   ModelIPhone17Pro,
		Name:                    "iPhone 17 Pro",
		Class:                   ClassPhone,
		FrameSrc:                "frames/iphone-17-pro.png",
		FrameWidth:              1350,
		FrameHeight:             2760,
		Screen:                  Rect{X: 72, Y: 69, Width: 1206, Height: 2622},
		ScreenCornerRadiusRatio: 0.062,
		BodyRadiusRatio:         0.08,
	},
	{
		Model:                   ModelIPhone16Pro,
		Name:                    "iPhone 16 Pro",
		Class:                   ClassPhone,
		FrameSrc:                "frames/iphone-16-pro.png",
		FrameWidth:              1350,
		FrameHeight:             2760,
		Screen:                  Rect{X: 72, Y: 69, Width: 1206, Height: 2622},
		ScreenCornerRadiusRatio: 0.062,
		BodyRadiusRatio:         0.08,
	},
}

// 平板 target 只有一个外框，与请求的 model 无关。
var tabletSpec = DeviceSpec{
	Model:                   ModelIPadPro13,
	Name:                    `iPad Pro 13"`,
	Class:                   ClassTablet,
	FrameSrc:                "frames/ipad-pro-13.png",
	FrameWidth:              2224,
	FrameHeight:             2912,
	Screen:                  Rect{X: 80, Y: 80, Width: 2064, Height: 2752},
	ScreenCornerRadiusRatio: 0.03,
	BodyRadiusRatio:         0.045,
}

func init() {
	for _, d := range append(append([]DeviceSpec(nil), phoneSpecs...), tabletSpec) {
		if err := d.validate(); err != nil {
			panic(err)
		}
	}
	for _, t := range targetSpecs {
		if err := t.Validate(); err != nil {
			panic(err)
		}
	}
}

// PhoneModels 返回可选的手机外框，按展示顺序。
func PhoneModels() []DeviceSpec {
	return append([]DeviceSpec(nil), phoneSpecs...)
}

// GetDeviceSpec 按 model 查找外框规格（含平板外框）。
func GetDeviceSpec(model DeviceModel) (DeviceSpec, error) {
	if model == tabletSpec.Model {
		return tabletSpec, nil
	}
	for _, d := range phoneSpecs {
		if d.Model == model {
			return d, nil
		}
	}
	return DeviceSpec{}, fmt.Errorf("%w: %q", ErrUnknownDevice, model)
}

// IsPhoneModel 判断 model 是否为当前可选的手机外框。
func IsPhoneModel(model DeviceModel) bool {
	for _, d := range phoneSpecs {
		if d.Model == model {
			return true
		}
	}
	return false
}

// GetActiveDeviceSpec 返回 (target, model) 实际使用的外框。
// 平板 target 始终返回唯一的平板外框；手机 target 按 model 查找。
func GetActiveDeviceSpec(target TargetID, model DeviceModel) (DeviceSpec, error) {
	spec, err := GetTargetSpec(target)
	if err != nil {
		return DeviceSpec{}, err
	}
	if spec.Class == ClassTablet {
		return tabletSpec, nil
	}
	if !IsPhoneModel(model) {
		return DeviceSpec{}, fmt.Errorf("%w: %q 不是 %s 可用的外框", ErrUnknownDevice, model, target)
	}
	return GetDeviceSpec(model)
}
