package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ByLCY/storeshot/model"
)

func readProject(path string) (*model.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开项目文件 %s: %w", path, err)
	}
	defer f.Close()
	return model.DecodeProject(f)
}

func writeProject(path string, p *model.Project) error {
	p.UpdatedAt = time.Now().Truncate(time.Millisecond)
	var buf bytes.Buffer
	if err := model.EncodeProject(&buf, p); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入项目文件失败: %w", err)
	}
	return nil
}

// slideIndex 把 1 起始的命令行序号转换为下标。
func slideIndex(p *model.Project, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(p.Slides) {
		return 0, fmt.Errorf("幻灯片序号应在 1-%d 之间: %q", len(p.Slides), arg)
	}
	return n - 1, nil
}
