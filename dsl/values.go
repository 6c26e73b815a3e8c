package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// 取值辅助函数，供语义层把语法树转换为具体配置。

// Text 返回值的文本形式：字符串去引号，其余为原始记号。
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Float 解析数值，允许 % 后缀。
func (v *Value) Float() (float64, error) {
	if v == nil || v.Number == nil {
		return 0, fmt.Errorf("%s: 需要数字，得到 %q", v.position(), v.Text())
	}
	return ParseNumber(*v.Number)
}

// Bool 解析 true/false/yes/no/on/off。
func (v *Value) Bool() (bool, error) {
	switch strings.ToLower(v.Text()) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%s: 需要布尔值，得到 %q", v.position(), v.Text())
}

// Strings 返回数组中每一项的文本；单个值视为只有一项的数组。
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		return []string{v.Text()}
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		out = append(out, item.Text())
	}
	return out
}

func (v *Value) position() string {
	if v == nil {
		return "?"
	}
	return v.Pos.String()
}

// ParseNumber 解析数字记号，去掉可选的 % 后缀。
func ParseNumber(raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("无效数字 %q", raw)
	}
	return n, nil
}

// Assignments 返回块内的全部赋值语句，按出现顺序。
func (b *Block) Assignments() []*Assignment {
	if b == nil {
		return nil
	}
	var out []*Assignment
	for _, st := range b.Statements {
		if st.Assignment != nil {
			out = append(out, st.Assignment)
		}
	}
	return out
}

// Commands 返回块内名为 name 的命令；name 为空时返回全部命令。
func (b *Block) Commands(name string) []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, st := range b.Statements {
		if st.Command != nil && (name == "" || st.Command.Name == name) {
			out = append(out, st.Command)
		}
	}
	return out
}
