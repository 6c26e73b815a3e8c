package registry

import (
	"errors"
	"fmt"
)

// 该文件定义 App Store 截图提交规格（target），所有尺寸均为像素。

var (
	ErrUnknownTarget = errors.New("unknown screenshot target")
	ErrInvalidTarget = errors.New("invalid screenshot target")
)

// TargetID 标识一种商店截图提交规格。
type TargetID string

const (
	TargetIPhone69 TargetID = "iphone-6_9"
	TargetIPad13   TargetID = "ipad-13"
)

// DefaultTarget 是新建项目与无法识别的持久化值所回退的 target。
const DefaultTarget = TargetIPhone69

// DeviceClass 区分手机与平板，决定设备外框的选择方式。
type DeviceClass int

const (
	ClassPhone DeviceClass = iota
	ClassTablet
)

// Label 返回用于提示文案的设备族名称。
func (c DeviceClass) Label() string {
	if c == ClassTablet {
		return "iPad"
	}
	return "iPhone"
}

// Size 是像素宽高。
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string { return fmt.Sprintf("%d x %d", s.Width, s.Height) }

// AspectRatio 返回宽高比；高度为 0 时返回 0。
func (s Size) AspectRatio() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// TargetSpec 描述一种 target 的默认导出尺寸与商店接受的全部尺寸。
type TargetSpec struct {
	ID                TargetID    `json:"id"`
	Name              string      `json:"name"`
	Class             DeviceClass `json:"class"`
	DefaultSize       Size        `json:"defaultSize"`
	LegacyDefaultSize Size        `json:"legacyDefaultSize,omitempty"`
	AcceptedSizes     []Size      `json:"acceptedSizes"`
}

// Accepts 判断 size 是否为商店接受的尺寸之一（精确匹配）。
func (t TargetSpec) Accepts(size Size) bool {
	for _, s := range t.AcceptedSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Validate 检查 defaultSize ∈ acceptedSizes，导出前必须通过。
func (t TargetSpec) Validate() error {
	if len(t.AcceptedSizes) == 0 {
		return fmt.Errorf("%w: %s 没有可接受的尺寸", ErrInvalidTarget, t.ID)
	}
	if t.DefaultSize.Width <= 0 || t.DefaultSize.Height <= 0 {
		return fmt.Errorf("%w: %s 默认尺寸非法 (%s)", ErrInvalidTarget, t.ID, t.DefaultSize)
	}
	if !t.Accepts(t.DefaultSize) {
		return fmt.Errorf("%w: %s 默认尺寸 %s 不在可接受尺寸中", ErrInvalidTarget, t.ID, t.DefaultSize)
	}
	return nil
}

// Clone 返回可安全修改的副本。
func (t TargetSpec) Clone() TargetSpec {
	t.AcceptedSizes = append([]Size(nil), t.AcceptedSizes...)
	return t
}

// Sizes from App Store Connect screenshot specifications.
var targetSpecs = []TargetSpec{
	{
		ID:                TargetIPhone69,
		Name:              `iPhone 6.9" Display`,
		Class:             ClassPhone,
		DefaultSize:       Size{1320, 2868},
		LegacyDefaultSize: Size{1290, 2796},
		AcceptedSizes: []Size{
			{1320, 2868},
			{1290, 2796},
			{1260, 2736},
		},
	},
	{
		ID:          TargetIPad13,
		Name:        `iPad 13" Display`,
		Class:       ClassTablet,
		DefaultSize: Size{2064, 2752},
		AcceptedSizes: []Size{
			{2064, 2752},
			{2048, 2732},
		},
	},
}

// Targets 按展示顺序返回全部 target 规格的副本。
func Targets() []TargetSpec {
	out := make([]TargetSpec, 0, len(targetSpecs))
	for _, t := range targetSpecs {
		out = append(out, t.Clone())
	}
	return out
}

// GetTargetSpec 查找 target 规格。未知 id 属于调用方错误。
func GetTargetSpec(id TargetID) (TargetSpec, error) {
	for _, t := range targetSpecs {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return TargetSpec{}, fmt.Errorf("%w: %q", ErrUnknownTarget, id)
}

// MustTargetSpec 与 GetTargetSpec 相同，但未知 id 时 panic。
func MustTargetSpec(id TargetID) TargetSpec {
	spec, err := GetTargetSpec(id)
	if err != nil {
		panic(err)
	}
	return spec
}

// IsSupportedTarget 是反序列化持久化数据时的边界检查。
func IsSupportedTarget(value string) bool {
	for _, t := range targetSpecs {
		if string(t.ID) == value {
			return true
		}
	}
	return false
}
