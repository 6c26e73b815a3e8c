package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。
// 坐标以画布左上角为原点，单位为显示像素（原生像素 × Scale）。

// Result 保存一张幻灯片布局后的全部图层几何。
type Result struct {
	Canvas     Canvas     `json:"canvas"`
	Background Background `json:"background"`
	Texts      []TextBox  `json:"texts"`
	Device     DeviceBox  `json:"device"`
	Meta       Meta       `json:"meta"`
}

// Canvas 是画布尺寸。原生尺寸恒等于 target 的默认尺寸。
type Canvas struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Scale        float64 `json:"scale"`
	NativeWidth  int     `json:"nativeWidth"`
	NativeHeight int     `json:"nativeHeight"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Point 是画布坐标中的点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BackgroundKind 区分背景的填充方式。
type BackgroundKind string

const (
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
	BackgroundImage    BackgroundKind = "image"
)

// Background 描述画布底层填充。Color 对纯色为填充色，对图片为垫底色。
type Background struct {
	Kind     BackgroundKind `json:"kind"`
	Color    Color          `json:"color"`
	Gradient *Gradient      `json:"gradient,omitempty"`
	Image    *ImageFill     `json:"image,omitempty"`
}

// Gradient 是线性渐变，Start/End 为渐变线两端（画布坐标）。
type Gradient struct {
	Angle float64        `json:"angle"`
	Start Point          `json:"start"`
	End   Point          `json:"end"`
	Stops []GradientStop `json:"stops"`
}

// GradientStop 是渐变色标，Offset 取值 [0,1]。
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// ImageFill 以 cover 方式铺满画布，Blur 为显示像素半径。
type ImageFill struct {
	Ref  string  `json:"ref"`
	Blur float64 `json:"blur"`
}

// TextRole 标记文本块的用途。
type TextRole string

const (
	RoleHeadline   TextRole = "headline"
	RoleSubCaption TextRole = "sub-caption"
)

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Role       TextRole   `json:"role"`
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	Weight     int        `json:"weight"`
	FontSize   float64    `json:"fontSize"`
	Color      Color      `json:"color"`
	Opacity    float64    `json:"opacity"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align"`
	Shadow     *Shadow    `json:"shadow,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Shadow 是投影描述，数值为显示像素。
type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   Color   `json:"color"`
	Opacity float64 `json:"opacity"`
}

// DeviceBox 是设备外框在画布中的位置，Screen 嵌套在外框内。
type DeviceBox struct {
	Model      string    `json:"model"`
	FrameSrc   string    `json:"frameSrc"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	BodyRadius float64   `json:"bodyRadius"`
	Screen     ScreenBox `json:"screen"`
	Angle      Angle     `json:"angle"`
}

// ScreenContent 决定截图区域绘制什么。
type ScreenContent string

const (
	ScreenImage       ScreenContent = "image"
	ScreenPlaceholder ScreenContent = "placeholder"
	ScreenNotice      ScreenContent = "notice"
)

// ScreenBox 是截图裁剪区域（画布坐标）。
type ScreenBox struct {
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Radius  float64       `json:"radius"`
	Content ScreenContent `json:"content"`
	Ref     string        `json:"ref,omitempty"`
	Label   string        `json:"label,omitempty"`
	Fill    *Gradient     `json:"fill,omitempty"`
}

// Angle 是相机角度预设给合成器的装饰性描述，不影响上面的几何。
type Angle struct {
	Preset      string  `json:"preset"`
	RotateX     float64 `json:"rotateX"`
	RotateY     float64 `json:"rotateY"`
	Perspective float64 `json:"perspective,omitempty"`
	Shadow      Shadow  `json:"shadow"`
}

// Meta 记录生成该布局的输入标识。
type Meta struct {
	SlideID string `json:"slideId"`
	Target  string `json:"target"`
	Device  string `json:"device"`
}
