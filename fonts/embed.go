package fonts

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// 常用字重。
const (
	WeightRegular = 400
	WeightMedium  = 500
	WeightBold    = 700
)

// Builtin 返回按字重选取的内置 Go 字体。
func Builtin(weight int) []byte {
	switch {
	case weight >= WeightBold:
		return gobold.TTF
	case weight >= WeightMedium:
		return gomedium.TTF
	default:
		return goregular.TTF
	}
}

// WeightName 返回字重对应的文件名后缀。
func WeightName(weight int) string {
	switch {
	case weight >= WeightBold:
		return "Bold"
	case weight >= WeightMedium:
		return "Medium"
	default:
		return "Regular"
	}
}

// Source 从字体目录加载字体，目录中缺失时退回内置字体。
// 文件按 "<font>-<Weight>.ttf" 或 "<font>.ttf" 查找，例如 inter-Bold.ttf。
type Source struct {
	Dir string
}

// Load 返回字体字节与是否来自字体目录。
func (s Source) Load(font string, weight int) ([]byte, bool, error) {
	if s.Dir == "" || font == "" {
		return Builtin(weight), false, nil
	}
	candidates := []string{
		filepath.Join(s.Dir, fmt.Sprintf("%s-%s.ttf", font, WeightName(weight))),
		filepath.Join(s.Dir, fmt.Sprintf("%s-%s.otf", font, WeightName(weight))),
		filepath.Join(s.Dir, font+".ttf"),
		filepath.Join(s.Dir, font+".otf"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, true, nil
		}
		if !os.IsNotExist(err) {
			return nil, false, fmt.Errorf("读取字体 %s 失败: %w", path, err)
		}
	}
	return Builtin(weight), false, nil
}
