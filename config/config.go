// Package config 汇总命令行工具的运行配置。
//
// 优先级：命令行参数 > 环境变量 STORESHOT_* > .env 文件 > 默认值。
// 命令行参数的覆盖由 commands 包完成。
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "STORESHOT_"

// Config 是运行配置。
type Config struct {
	AssetDir  string // 资源目录，AssetDB 为空时使用
	AssetDB   string // SQLite 资源库路径，非空时优先
	FrameDir  string // 外框 PNG 根目录（包含 frames/）
	FontDir   string
	OutDir    string
	LogLevel  string // debug / info / warn / error
	LogFormat string // text / json
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		AssetDir:  ".storeshot/assets",
		OutDir:    "out",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// fields 把环境变量名映射到配置字段。
func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"ASSET_DIR":  &c.AssetDir,
		"ASSET_DB":   &c.AssetDB,
		"FRAME_DIR":  &c.FrameDir,
		"FONT_DIR":   &c.FontDir,
		"OUT_DIR":    &c.OutDir,
		"LOG_LEVEL":  &c.LogLevel,
		"LOG_FORMAT": &c.LogFormat,
	}
}

// Load 读取 envFile（可不存在）与进程环境变量。envFile 为空时跳过文件。
// 结果未经校验，调用方合并命令行参数后再调用 Validate。
func Load(envFile string) (Config, error) {
	cfg := Default()
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("读取 %s 失败: %w", envFile, err)
		}
		fileVars = vars
	}
	for name, field := range cfg.fields() {
		key := envPrefix + name
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		} else if v, ok := fileVars[key]; ok {
			*field = v
		}
	}
	return cfg, nil
}

// Validate 检查枚举类配置。
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("未知的日志格式 %q", c.LogFormat)
	}
	return nil
}

// ParseLevel 解析日志级别名称。
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("未知的日志级别 %q", s)
	}
	return lvl, nil
}

// Logger 按配置构造写入 w 的 slog.Logger。
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
